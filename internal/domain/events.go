package domain

import "time"

// Event names published by the scheduler
const (
	EventAppointmentCreated     = "appointment.created"
	EventAppointmentUpdated     = "appointment.updated"
	EventAppointmentRescheduled = "appointment.rescheduled"
)

// NotificationType is the patient-facing notification kind
type NotificationType string

const (
	NotificationConfirmed     NotificationType = "APPOINTMENT_CONFIRMED"
	NotificationCancelled     NotificationType = "APPOINTMENT_CANCELLED"
	NotificationRescheduled   NotificationType = "APPOINTMENT_RESCHEDULED"
	NotificationStatusChanged NotificationType = "APPOINTMENT_STATUS_CHANGED"
)

// AppointmentEvent is the payload handed to the notifier
type AppointmentEvent struct {
	Type              NotificationType  `json:"type"`
	AppointmentID     string            `json:"appointmentId"`
	AppointmentNumber string            `json:"appointmentNumber"`
	PatientID         string            `json:"patientId"`
	HospitalID        string            `json:"hospitalId"`
	DepartmentID      string            `json:"departmentId"`
	DoctorID          *string           `json:"doctorId,omitempty"`
	Status            AppointmentStatus `json:"status"`
	Date              time.Time         `json:"date"`
	PreviousDate      *time.Time        `json:"previousDate,omitempty"`
	Recipient         Actor             `json:"recipient"`
	Message           string            `json:"message"`
	OccurredAt        time.Time         `json:"occurredAt"`
}

// NewAppointmentEvent fills the common fields from an appointment
func NewAppointmentEvent(t NotificationType, a *Appointment, message string, at time.Time) AppointmentEvent {
	return AppointmentEvent{
		Type:              t,
		AppointmentID:     a.ID,
		AppointmentNumber: a.AppointmentNumber,
		PatientID:         a.PatientID,
		HospitalID:        a.HospitalID,
		DepartmentID:      a.DepartmentID,
		DoctorID:          a.DoctorID,
		Status:            a.Status,
		Date:              a.Date,
		Recipient:         Actor{UserID: a.PatientID, UserType: UserTypePatient},
		Message:           message,
		OccurredAt:        at,
	}
}
