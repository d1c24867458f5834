package check_doctor_availability

import (
	checkAvailability "github.com/m04kA/SMC-AppointmentService/internal/usecase/check_doctor_availability"
)

// AvailabilityCheckRequest тело запроса проверки доступности
type AvailabilityCheckRequest struct {
	Date     string  `json:"date"`
	TimeSlot *string `json:"timeSlot,omitempty"`
}

// AvailabilityCheckResponse результат проверки
type AvailabilityCheckResponse struct {
	Available bool   `json:"available"`
	Message   string `json:"message"`
}

func (r *AvailabilityCheckRequest) ToUseCaseRequest(doctorID string) *checkAvailability.Request {
	return &checkAvailability.Request{
		DoctorID: doctorID,
		Date:     r.Date,
		TimeSlot: r.TimeSlot,
	}
}
