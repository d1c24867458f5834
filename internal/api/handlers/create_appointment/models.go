package create_appointment

import (
	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	createAppointment "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_appointment"
)

// CreateAppointmentRequest HTTP request model
type CreateAppointmentRequest struct {
	PatientID  *string `json:"patientId,omitempty"` // Обязателен для персонала
	Hospital   string  `json:"hospital"`
	Department string  `json:"department"`
	Doctor     *string `json:"doctor,omitempty"`
	Date       string  `json:"date"`
	Reason     *string `json:"reason,omitempty"`
	Notes      *string `json:"notes,omitempty"`
	Priority   *string `json:"priority,omitempty"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateAppointmentRequest) ToUseCaseRequest(actor domain.Actor) *createAppointment.Request {
	req := &createAppointment.Request{
		Actor: actor,
		Input: scheduling.BookingInput{
			HospitalID:   r.Hospital,
			DepartmentID: r.Department,
			DoctorID:     r.Doctor,
			Date:         r.Date,
			Notes:        r.Notes,
			Reason:       r.Reason,
		},
		Priority: r.Priority,
	}
	if r.PatientID != nil {
		req.PatientID = *r.PatientID
	}
	return req
}
