package cancel_appointment

// CancelAppointmentRequest HTTP request model. Тело не обязательно.
type CancelAppointmentRequest struct {
	Reason *string `json:"reason,omitempty"`
}
