package check_doctor_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
)

const doctorID = "64b7f0c2a1b2c3d4e5f60703"

var colombo = time.FixedZone("+0530", 5*3600+30*60)

func newUseCase(t *testing.T) *UseCase {
	t.Helper()
	doctor := &domain.Doctor{
		ID:            doctorID,
		AvailableDays: []string{"Monday", "Wednesday"},
		Leaves: []domain.Leave{{
			StartDate: time.Date(2025, 6, 11, 0, 0, 0, 0, colombo),
			EndDate:   time.Date(2025, 6, 18, 0, 0, 0, 0, colombo),
		}},
	}

	store := testutil.NewAppointments(30 * time.Minute)
	store.Put(&domain.Appointment{ID: "a1", DoctorID: ptr.Ptr(doctorID), Status: domain.StatusInProgress,
		Date: time.Date(2025, 6, 9, 10, 0, 0, 0, colombo)})
	store.Put(&domain.Appointment{ID: "a2", DoctorID: ptr.Ptr(doctorID), Status: domain.StatusCancelled,
		Date: time.Date(2025, 6, 9, 11, 0, 0, 0, colombo)})

	return NewUseCase(testutil.NewDoctors(doctor), store, scheduling.NewValidator(scheduling.DefaultRules(colombo)), &testutil.Logger{})
}

func TestExecute(t *testing.T) {
	tests := []struct {
		name      string
		date      string
		timeSlot  *string
		available bool
		message   string
	}{
		{name: "free slot", date: "2025-06-09", timeSlot: ptr.Ptr("10:30"), available: true, message: msgAvailable},
		{name: "day only", date: "2025-06-09", available: true, message: msgAvailable},
		{name: "busy with in-progress visit", date: "2025-06-09", timeSlot: ptr.Ptr("10:00"), message: msgAlreadyBusy},
		{name: "busy by full timestamp", date: "2025-06-09T04:30:00Z", message: msgAlreadyBusy},
		{name: "cancelled visit frees the slot", date: "2025-06-09", timeSlot: ptr.Ptr("11:00"), available: true, message: msgAvailable},
		{name: "non-service day", date: "2025-06-10", timeSlot: ptr.Ptr("10:00"), message: "Doctor is not available on Tuesday"},
		{name: "leave end bound", date: "2025-06-18", message: msgOnLeave},
		{name: "after leave", date: "2025-06-23", available: true, message: msgAvailable},
	}

	uc := newUseCase(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := uc.Execute(context.Background(), &Request{DoctorID: doctorID, Date: tt.date, TimeSlot: tt.timeSlot})

			require.NoError(t, err)
			assert.Equal(t, tt.available, resp.Available)
			assert.Equal(t, tt.message, resp.Message)
		})
	}
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newUseCase(t)

	_, err := uc.Execute(context.Background(), &Request{DoctorID: doctorID, Date: "tomorrow", TimeSlot: ptr.Ptr("25:00")})

	var verr *scheduling.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, scheduling.KindInvalidDate, verr.Kind("date"))
	assert.Equal(t, scheduling.KindInvalidValue, verr.Kind("timeSlot"))

	_, err = uc.Execute(context.Background(), &Request{DoctorID: "64b7f0c2a1b2c3d4e5f60799", Date: "2025-06-09"})
	assert.ErrorIs(t, err, ErrDoctorNotFound)
}
