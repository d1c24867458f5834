package reschedule_appointment

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Appointment, error)
	Update(ctx context.Context, appt *domain.Appointment) (*domain.Appointment, error)
}

// ConflictDetector ищет конкурирующую запись в окне конфликта
type ConflictDetector interface {
	FindConflict(ctx context.Context, hospitalID, departmentID string, at time.Time, excludeID *string) (*domain.Appointment, error)
}

// Locker распределённая блокировка отделения
type Locker interface {
	WithDepartmentLock(ctx context.Context, hospitalID, departmentID string, fn func(ctx context.Context) error) error
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// Notifier отправляет события по принципу best-effort
type Notifier interface {
	Emit(ctx context.Context, event string, payload domain.AppointmentEvent)
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
