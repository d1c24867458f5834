package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// DoctorRepository интерфейс справочника врачей
type DoctorRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Doctor, error)
}

// AppointmentRepository интерфейс репозитория записей
type AppointmentRepository interface {
	// ListDoctorDates возвращает даты записей врача в [from, to) с указанными статусами
	ListDoctorDates(ctx context.Context, doctorID string, from, to time.Time, statuses []domain.AppointmentStatus) ([]time.Time, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
