package get_available_slots

import (
	"context"
	"errors"
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

func newDoctor() *domain.Doctor {
	return &domain.Doctor{
		ID:            doctorID,
		FullName:      "Dr. Perera",
		AvailableDays: []string{"Monday", "wednesday"},
		Leaves: []domain.Leave{{
			ID:        "l1",
			StartDate: time.Date(2025, 6, 11, 0, 0, 0, 0, colombo),
			EndDate:   time.Date(2025, 6, 11, 0, 0, 0, 0, colombo),
		}},
	}
}

func newUseCase(store AppointmentRepository) *UseCase {
	rules := scheduling.DefaultRules(colombo)
	return NewUseCase(testutil.NewDoctors(newDoctor()), store, scheduling.NewValidator(rules), &testutil.Logger{})
}

func booked(id string, at time.Time, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{ID: id, DoctorID: ptr.Ptr(doctorID), Date: at, Status: status,
		HospitalID: "h", DepartmentID: id}
}

func TestExecute_FreeSlots(t *testing.T) {
	store := testutil.NewAppointments(30 * time.Minute)
	// Monday 2025-06-09
	store.Put(booked("a1", time.Date(2025, 6, 9, 9, 15, 0, 0, colombo), domain.StatusBooked))
	store.Put(booked("a2", time.Date(2025, 6, 9, 4, 0, 0, 0, time.UTC), domain.StatusConfirmed)) // 09:30 local
	store.Put(booked("a3", time.Date(2025, 6, 9, 10, 0, 0, 0, colombo), domain.StatusCancelled))

	resp, err := newUseCase(store).Execute(context.Background(), &Request{DoctorID: doctorID, Date: "2025-06-09"})

	require.NoError(t, err)
	require.Len(t, resp.Slots, 32-2)
	assert.Equal(t, "09:00", resp.Slots[0].Start.String())
	assert.Equal(t, "09:15", resp.Slots[0].End.String())
	assert.Equal(t, "09:45", resp.Slots[1].Start.String())
	assert.Equal(t, "16:45", resp.Slots[len(resp.Slots)-1].Start.String())
	assert.True(t, resp.Date.Equal(time.Date(2025, 6, 9, 0, 0, 0, 0, colombo)))
}

func TestExecute_EmptyDays(t *testing.T) {
	tests := []struct {
		name string
		date string
	}{
		{name: "non-service weekday", date: "2025-06-10"},
		{name: "leave day", date: "2025-06-11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := newUseCase(failingStore{}).Execute(context.Background(), &Request{DoctorID: doctorID, Date: tt.date})

			require.NoError(t, err)
			assert.NotNil(t, resp.Slots)
			assert.Empty(t, resp.Slots)
		})
	}
}

func TestExecute_Errors(t *testing.T) {
	uc := newUseCase(testutil.NewAppointments(30 * time.Minute))

	_, err := uc.Execute(context.Background(), &Request{DoctorID: "bad", Date: "09/06/2025"})
	var verr *scheduling.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, scheduling.KindInvalidReference, verr.Kind("doctorId"))
	assert.Equal(t, scheduling.KindInvalidDate, verr.Kind("date"))

	_, err = uc.Execute(context.Background(), &Request{DoctorID: "64b7f0c2a1b2c3d4e5f60799", Date: "2025-06-09"})
	assert.ErrorIs(t, err, ErrDoctorNotFound)

	_, err = newUseCase(failingStore{}).Execute(context.Background(), &Request{DoctorID: doctorID, Date: "2025-06-09"})
	assert.ErrorIs(t, err, ErrInternal)
}

type failingStore struct{}

func (failingStore) ListDoctorDates(context.Context, string, time.Time, time.Time, []domain.AppointmentStatus) ([]time.Time, error) {
	return nil, errors.New("connection reset")
}
