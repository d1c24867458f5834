package add_doctor_leave

import (
	"context"

	"github.com/m04kA/SMC-AppointmentService/internal/service/doctors/models"
)

type DoctorService interface {
	AddLeave(ctx context.Context, doctorID string, req *models.AddLeaveRequest) (*models.LeaveListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
