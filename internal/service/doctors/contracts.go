package doctors

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// DoctorRepository интерфейс справочника врачей
type DoctorRepository interface {
	AddLeave(ctx context.Context, doctorID string, leave domain.Leave) ([]domain.Leave, error)
	GetLeaves(ctx context.Context, doctorID string) ([]domain.Leave, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
