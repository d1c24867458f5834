package get_doctor_leaves

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

type DoctorService interface {
	GetLeaves(ctx context.Context, doctorID string) (*models.LeaveListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
