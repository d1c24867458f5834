package create_appointment

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/lock"
	appointmentRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/appointment"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/internal/testutil"
	"github.com/m04kA/SMC-AppointmentService/pkg/clock"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const (
	hospitalID   = "64b7f0c2a1b2c3d4e5f60701"
	departmentID = "64b7f0c2a1b2c3d4e5f60702"
	otherDeptID  = "64b7f0c2a1b2c3d4e5f60704"
	patientHex   = "64b7f0c2a1b2c3d4e5f60700"
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
	return newFixtureWith(t, nil, &testutil.TxManager{})
}

func newFixtureWith(t *testing.T, detector ConflictDetector, tx TransactionManager) *fixture {
	t.Helper()
	rules := scheduling.DefaultRules(colombo)
	store := testutil.NewAppointments(rules.ConflictWindow)
	if detector == nil {
		detector = scheduling.NewDetector(rules, store)
	}
	notifier := &testutil.Notifier{}

	uc := NewUseCase(store, detector, scheduling.NewValidator(rules), lock.NoopLocker{}, tx,
		notifier, clock.NewFixed(testNow), nil, &testutil.Logger{})

	return &fixture{uc: uc, store: store, notifier: notifier}
}

func request(date string) *Request {
	return &Request{
		Actor: patient,
		Input: scheduling.BookingInput{
			HospitalID:   hospitalID,
			DepartmentID: departmentID,
			Date:         date,
		},
	}
}

func TestExecute_CreatesBookedAppointment(t *testing.T) {
	f := newFixture(t)

	appt, err := f.uc.Execute(context.Background(), request("2025-06-10T10:00:00+05:30"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, appt.Status)
	assert.Equal(t, patientHex, appt.PatientID)
	assert.Equal(t, "10:00", appt.TimeSlot.Start.String())
	assert.Equal(t, "10:15", appt.TimeSlot.End.String())
	assert.Regexp(t, `^APT-20250601-\d{5}$`, appt.AppointmentNumber)
	assert.Equal(t, domain.DefaultReason, appt.Reason)
	assert.Equal(t, domain.PriorityNormal, appt.Priority)
	assert.Equal(t, patient, appt.CreatedBy)
	assert.Len(t, appt.ID, domain.ObjectIDLength)

	events := f.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, domain.EventAppointmentCreated, events[0].Event)
	assert.Equal(t, domain.NotificationConfirmed, events[0].Payload.Type)
	assert.Equal(t, appt.AppointmentNumber, events[0].Payload.AppointmentNumber)
}

func TestExecute_BlankDoctorStoredAsAbsent(t *testing.T) {
	f := newFixture(t)
	req := request("2025-06-10T10:00:00+05:30")
	req.Input.DoctorID = ptr.Ptr("")

	appt, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Nil(t, appt.DoctorID)
	stored, ok := f.store.Get(appt.ID)
	require.True(t, ok)
	assert.Nil(t, stored.DoctorID)
}

func TestExecute_ConflictWindow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request("2025-06-10T10:00:00+05:30"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request("2025-06-10T10:20:00+05:30"))
	assert.ErrorIs(t, err, ErrSlotConflict)

	_, err = f.uc.Execute(ctx, request("2025-06-10T09:30:00+05:30"))
	assert.ErrorIs(t, err, ErrSlotConflict, "the window is inclusive")

	_, err = f.uc.Execute(ctx, request("2025-06-10T11:00:00+05:30"))
	assert.NoError(t, err)

	assert.Equal(t, 2, f.store.Len())
	assert.Len(t, f.notifier.Events(), 2)
}

func TestExecute_OtherDepartmentDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request("2025-06-10T10:00:00+05:30"))
	require.NoError(t, err)

	req := request("2025-06-10T10:00:00+05:30")
	req.Input.DepartmentID = otherDeptID
	_, err = f.uc.Execute(ctx, req)
	assert.NoError(t, err)
}

func TestExecute_CancelledAppointmentDoesNotConflict(t *testing.T) {
	f := newFixture(t)
	f.store.Put(&domain.Appointment{
		ID:           "64b7f0c2a1b2c3d4e5f60790",
		HospitalID:   hospitalID,
		DepartmentID: departmentID,
		Date:         time.Date(2025, 6, 10, 10, 0, 0, 0, colombo),
		Status:       domain.StatusCancelled,
	})

	_, err := f.uc.Execute(context.Background(), request("2025-06-10T10:10:00+05:30"))

	assert.NoError(t, err)
}

func TestExecute_ConcurrentRequests(t *testing.T) {
	tests := []struct {
		name        string
		dates       []string
		wantSuccess int
	}{
		{
			name:        "same instant",
			dates:       []string{"2025-06-10T10:00:00+05:30", "2025-06-10T10:00:00+05:30", "2025-06-10T10:00:00+05:30", "2025-06-10T10:00:00+05:30"},
			wantSuccess: 1,
		},
		{
			name:        "within 30 minutes",
			dates:       []string{"2025-06-10T10:00:00+05:30", "2025-06-10T10:25:00+05:30"},
			wantSuccess: 1,
		},
		{
			name:        "61 minutes apart",
			dates:       []string{"2025-06-10T10:00:00+05:30", "2025-06-10T11:01:00+05:30"},
			wantSuccess: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)

			var wg sync.WaitGroup
			errs := make([]error, len(tt.dates))
			for i, date := range tt.dates {
				wg.Add(1)
				go func(i int, date string) {
					defer wg.Done()
					_, errs[i] = f.uc.Execute(context.Background(), request(date))
				}(i, date)
			}
			wg.Wait()

			success := 0
			for _, err := range errs {
				if err == nil {
					success++
					continue
				}
				assert.ErrorIs(t, err, ErrSlotConflict)
			}
			assert.Equal(t, tt.wantSuccess, success)
			assert.Equal(t, tt.wantSuccess, f.store.Len())
		})
	}
}

type blindDetector struct{}

func (blindDetector) FindConflict(context.Context, string, string, time.Time, *string) (*domain.Appointment, error) {
	return nil, nil
}

func TestExecute_StorageConstraintIsLastGuard(t *testing.T) {
	f := newFixtureWith(t, blindDetector{}, testutil.PassthroughTxManager{})
	ctx := context.Background()

	_, err := f.uc.Execute(ctx, request("2025-06-10T10:00:00+05:30"))
	require.NoError(t, err)

	_, err = f.uc.Execute(ctx, request("2025-06-10T10:15:00+05:30"))
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, 1, f.store.Len())
}

// flakyDetector отвечает ошибкой сериализации на первые failures вызовов
type flakyDetector struct {
	mu       sync.Mutex
	calls    int
	failures int
}

func (d *flakyDetector) FindConflict(context.Context, string, string, time.Time, *string) (*domain.Appointment, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls++
	if d.calls <= d.failures {
		return nil, &pq.Error{Code: "40001", Message: "could not serialize access"}
	}
	return nil, nil
}

func TestExecute_RetriesSerializationFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// первая попытка откатывается, вторая фиксируется
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	detector := &flakyDetector{failures: 1}
	tx := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil)).WithRetry(3, time.Millisecond)
	f := newFixtureWith(t, detector, tx)

	appt, err := f.uc.Execute(context.Background(), request("2025-06-10T10:00:00+05:30"))

	require.NoError(t, err)
	assert.Equal(t, domain.StatusBooked, appt.Status)
	assert.Equal(t, 2, detector.calls)
	assert.Equal(t, 1, f.store.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_SerializationFailureKeepsCause(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
	}

	detector := &flakyDetector{failures: 10}
	tx := txmanager.NewTransactionManager(dbmetrics.Wrap(db, nil)).WithRetry(2, time.Millisecond)
	f := newFixtureWith(t, detector, tx)

	_, err = f.uc.Execute(context.Background(), request("2025-06-10T10:00:00+05:30"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.True(t, txmanager.IsSerializationFailure(err))
	assert.Equal(t, 2, detector.calls)
	assert.Equal(t, 0, f.store.Len())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestExecute_RetriesDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	f.store.CreateErr = appointmentRepo.ErrDuplicateNumber

	appt, err := f.uc.Execute(context.Background(), request("2025-06-10T10:00:00+05:30"))

	require.NoError(t, err)
	assert.NotEmpty(t, appt.AppointmentNumber)
}

func TestExecute_StorageFailureIsInternal(t *testing.T) {
	f := newFixture(t)
	f.store.CreateErr = errors.New("connection reset")

	_, err := f.uc.Execute(context.Background(), request("2025-06-10T10:00:00+05:30"))

	assert.ErrorIs(t, err, ErrInternal)
	assert.Empty(t, f.notifier.Events())
}

func TestExecute_ValidationReportsAllFields(t *testing.T) {
	f := newFixture(t)
	req := &Request{
		Actor:    domain.Actor{UserID: "staff-1", UserType: domain.UserTypeStaff},
		Priority: ptr.Ptr("whenever"),
		Input: scheduling.BookingInput{
			HospitalID: "bad",
			Date:       "2025-06-01T10:00:00+05:30",
		},
	}

	_, err := f.uc.Execute(context.Background(), req)

	var verr *scheduling.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, scheduling.KindInvalidReference, verr.Kind("hospital"))
	assert.Equal(t, scheduling.KindRequired, verr.Kind("department"))
	assert.Equal(t, scheduling.KindInsufficientNotice, verr.Kind("date"))
	assert.Equal(t, scheduling.KindRequired, verr.Kind("patient"))
	assert.Equal(t, scheduling.KindInvalidValue, verr.Kind("priority"))
	assert.Equal(t, 0, f.store.Len())
	assert.Empty(t, f.notifier.Events())
}

func TestExecute_StaffBooksForPatient(t *testing.T) {
	f := newFixture(t)
	staff := domain.Actor{UserID: "staff-1", UserType: domain.UserTypeStaff}
	req := request("2025-06-10T10:00:00+05:30")
	req.Actor = staff
	req.PatientID = patientHex
	req.Priority = ptr.Ptr("urgent")
	req.Input.Reason = ptr.Ptr("  Chest pain  ")

	appt, err := f.uc.Execute(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, patientHex, appt.PatientID)
	assert.Equal(t, staff, appt.CreatedBy)
	assert.Equal(t, domain.PriorityUrgent, appt.Priority)
	assert.Equal(t, "Chest pain", appt.Reason)
}
