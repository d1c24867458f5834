package appointments

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/patientservice"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
	UpdateStatus(ctx context.Context, id string, status domain.AppointmentStatus) error
	ListByPatient(ctx context.Context, filter domain.PatientAppointmentsFilter) ([]*domain.Appointment, error)
	ListByHospital(ctx context.Context, filter domain.HospitalAppointmentsFilter) ([]*domain.Appointment, error)
}

// PatientServiceClient интерфейс клиента сервиса пациентов
type PatientServiceClient interface {
	GetPatientWithGracefulDegradation(ctx context.Context, patientID string) (*patientservice.Patient, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправляет события по принципу best-effort
type Notifier interface {
	Emit(ctx context.Context, event string, payload domain.AppointmentEvent)
}

// TimeProvider интерфейс для получения текущего времени
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
