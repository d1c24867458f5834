package check_doctor_availability

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
	// ExistsForDoctorAt проверяет, есть ли у врача запись ровно на date с одним из статусов
	ExistsForDoctorAt(ctx context.Context, doctorID string, date time.Time, statuses []domain.AppointmentStatus) (bool, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
