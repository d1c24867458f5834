package reschedule_appointment

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	"github.com/m04kA/SMC-AppointmentService/pkg/clock"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

const (
	hospitalID   = "64b7f0c2a1b2c3d4e5f60701"
	departmentID = "64b7f0c2a1b2c3d4e5f60702"
	patientHex   = "64b7f0c2a1b2c3d4e5f60700"
	apptID       = "64b7f0c2a1b2c3d4e5f60799"
	otherID      = "64b7f0c2a1b2c3d4e5f60798"
)

var colombo = time.FixedZone("+0530", 5*3600+30*60)

// Sunday 2025-06-01 09:00 local
var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, colombo)

var patient = domain.Actor{UserID: patientHex, UserType: domain.UserTypePatient}

type fixture struct {
	uc       *UseCase
	store    *testutil.Appointments
	notifier *testutil.Notifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	rules := scheduling.DefaultRules(colombo)
	store := testutil.NewAppointments(rules.ConflictWindow)
	notifier := &testutil.Notifier{}

	uc := NewUseCase(store, scheduling.NewDetector(rules, store), scheduling.NewValidator(rules), lock.NoopLocker{},
		&testutil.TxManager{}, notifier, clock.NewFixed(testNow), nil, &testutil.Logger{})

	return &fixture{uc: uc, store: store, notifier: notifier}
}

func booked(id string, date time.Time, status domain.AppointmentStatus) *domain.Appointment {
	return &domain.Appointment{
		ID:                id,
		AppointmentNumber: "APT-20250601-00042",
		PatientID:         patientHex,
		HospitalID:        hospitalID,
		DepartmentID:      departmentID,
		Date:              date,
		TimeSlot:          domain.NewTimeSlot(date, 15),
		Status:            status,
	}
}

func TestExecute_MovesInPlace(t *testing.T) {
	f := newFixture(t)
	original := time.Date(2025, 6, 10, 10, 0, 0, 0, colombo)
	f.store.Put(booked(apptID, original, domain.StatusConfirmed))

	appt, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: apptID,
		NewDate:       "2025-06-12T14:30:00+05:30",
		Actor:         patient,
	})

	require.NoError(t, err)
	assert.Equal(t, apptID, appt.ID)
	assert.Equal(t, "APT-20250601-00042", appt.AppointmentNumber)
	assert.Equal(t, domain.StatusBooked, appt.Status)
	assert.True(t, appt.Date.Equal(time.Date(2025, 6, 12, 14, 30, 0, 0, colombo)))
	assert.Equal(t, types.MustTimeString("14:45"), appt.TimeSlot.End)

	stored, _ := f.store.Get(apptID)
	assert.Equal(t, domain.StatusBooked, stored.Status)
	assert.Equal(t, 1, f.store.Len())

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAppointmentRescheduled, events[0].Event)
	assert.Equal(t, domain.NotificationRescheduled, events[0].Payload.Type)
	require.NotNil(t, events[0].Payload.PreviousDate)
	assert.True(t, events[0].Payload.PreviousDate.Equal(original))
	assert.Contains(t, events[0].Payload.Message, "2025-06-10 10:00")
	assert.Contains(t, events[0].Payload.Message, "2025-06-12 14:30")
}

func TestExecute_SameBucketDoesNotSelfConflict(t *testing.T) {
	f := newFixture(t)
	f.store.Put(booked(apptID, time.Date(2025, 6, 10, 10, 0, 0, 0, colombo), domain.StatusBooked))

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: apptID, NewDate: "2025-06-10T10:00:00+05:30", Actor: patient})
	require.NoError(t, err)

	_, err = f.uc.Execute(context.Background(), &Request{AppointmentID: apptID, NewDate: "2025-06-10T10:10:00+05:30", Actor: patient})
	assert.NoError(t, err)
}

func TestExecute_ConflictWithAnotherAppointment(t *testing.T) {
	f := newFixture(t)
	f.store.Put(booked(apptID, time.Date(2025, 6, 10, 10, 0, 0, 0, colombo), domain.StatusBooked))
	f.store.Put(booked(otherID, time.Date(2025, 6, 11, 10, 0, 0, 0, colombo), domain.StatusConfirmed))

	_, err := f.uc.Execute(context.Background(), &Request{AppointmentID: apptID, NewDate: "2025-06-11T10:20:00+05:30", Actor: patient})

	assert.ErrorIs(t, err, ErrSlotConflict)
	stored, _ := f.store.Get(apptID)
	assert.True(t, stored.Date.Equal(time.Date(2025, 6, 10, 10, 0, 0, 0, colombo)))
	assert.Empty(t, f.notifier.Events())
}

func TestExecute_Rejections(t *testing.T) {
	future := time.Date(2025, 6, 10, 10, 0, 0, 0, colombo)

	tests := []struct {
		name    string
		stored  *domain.Appointment
		req     *Request
		wantErr error
	}{
		{
			name:    "not found",
			req:     &Request{AppointmentID: apptID, NewDate: "2025-06-12T10:00:00+05:30", Actor: patient},
			wantErr: ErrAppointmentNotFound,
		},
		{
			name:    "cancelled",
			stored:  booked(apptID, future, domain.StatusCancelled),
			req:     &Request{AppointmentID: apptID, NewDate: "2025-06-12T10:00:00+05:30", Actor: patient},
			wantErr: ErrInvalidState,
		},
		{
			name:    "completed",
			stored:  booked(apptID, future, domain.StatusCompleted),
			req:     &Request{AppointmentID: apptID, NewDate: "2025-06-12T10:00:00+05:30", Actor: patient},
			wantErr: ErrInvalidState,
		},
		{
			name:   "other patient",
			stored: booked(apptID, future, domain.StatusBooked),
			req: &Request{AppointmentID: apptID, NewDate: "2025-06-12T10:00:00+05:30",
				Actor: domain.Actor{UserID: "someone-else", UserType: domain.UserTypePatient}},
			wantErr: ErrAccessDenied,
		},
		{
			name:    "outside business hours",
			stored:  booked(apptID, future, domain.StatusBooked),
			req:     &Request{AppointmentID: apptID, NewDate: "2025-06-12T21:00:00+05:30", Actor: patient},
			wantErr: scheduling.ErrValidation,
		},
		{
			name:    "already passed",
			stored:  booked(apptID, testNow.Add(-time.Hour), domain.StatusBooked),
			req:     &Request{AppointmentID: apptID, NewDate: "2025-06-12T10:00:00+05:30", Actor: patient},
			wantErr: scheduling.ErrValidation,
		},
		{
			name:    "malformed id",
			req:     &Request{AppointmentID: "42", NewDate: "2025-06-12T10:00:00+05:30", Actor: patient},
			wantErr: scheduling.ErrValidation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			if tt.stored != nil {
				f.store.Put(tt.stored)
			}

			_, err := f.uc.Execute(context.Background(), tt.req)

			assert.ErrorIs(t, err, tt.wantErr)
			assert.Empty(t, f.notifier.Events())
		})
	}
}

func TestExecute_StaffMayRescheduleAnyPatient(t *testing.T) {
	f := newFixture(t)
	f.store.Put(booked(apptID, time.Date(2025, 6, 10, 10, 0, 0, 0, colombo), domain.StatusBooked))

	_, err := f.uc.Execute(context.Background(), &Request{
		AppointmentID: apptID,
		NewDate:       "2025-06-12T10:00:00+05:30",
		Actor:         domain.Actor{UserID: "staff-1", UserType: domain.UserTypeStaff},
	})

	assert.NoError(t, err)
}

// deadlockDetector отвечает взаимоблокировкой на первый вызов
type deadlockDetector struct {
	mu    sync.Mutex
	calls int
}

func (d *deadlockDetector) FindConflict(context.Context, string, string, time.Time, *string) (*domain.Appointment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.calls == 1 {
		return nil, &pq.Error{Code: "40P01", Message: "deadlock detected"}
	}
	return nil, nil
}

func TestExecute_RetriesDeadlock(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	rules := scheduling.DefaultRules(colombo)
	store := testutil.NewAppointments(rules.ConflictWindow)
	store.Put(booked(apptID, time.Date(2025, 6, 10, 10, 0, 0, 0, colombo), domain.StatusBooked))
	detector := &deadlockDetector{}
	tx := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil)).WithRetry(3, time.Millisecond)

	uc := NewUseCase(store, detector, scheduling.NewValidator(rules), lock.NoopLocker{},
		tx, &testutil.Notifier{}, clock.NewFixed(testNow), nil, &testutil.Logger{})

	appt, err := uc.Execute(context.Background(), &Request{
		AppointmentID: apptID,
		NewDate:       "2025-06-12T14:30:00+05:30",
		Actor:         patient,
	})

	require.NoError(t, err)
	assert.True(t, appt.Date.Equal(time.Date(2025, 6, 12, 14, 30, 0, 0, colombo)))
	assert.Equal(t, 2, detector.calls)
	require.NoError(t, mock.ExpectationsWereMet())
}
