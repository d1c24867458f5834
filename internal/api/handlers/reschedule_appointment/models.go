package reschedule_appointment

// RescheduleAppointmentRequest HTTP request model
type RescheduleAppointmentRequest struct {
	NewDate string `json:"newDate"`
}
