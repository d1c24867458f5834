package domain

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// AppointmentStatus is the lifecycle state of an appointment
type AppointmentStatus string

const (
	StatusBooked     AppointmentStatus = "BOOKED"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusCheckedIn  AppointmentStatus = "CHECKED_IN"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
	// StatusRescheduled is accepted on input for compatibility. Reschedules happen in place
	// and reset the status to BOOKED, so no transition leads here.
	StatusRescheduled AppointmentStatus = "RESCHEDULED"
)

// transitions lists the allowed target states for each source state.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusBooked:     {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed:  {StatusBooked, StatusCheckedIn, StatusCancelled, StatusNoShow},
	StatusCheckedIn:  {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

// IsValid reports whether s is a known status
func (s AppointmentStatus) IsValid() bool {
	switch s {
	case StatusBooked, StatusConfirmed, StatusCheckedIn, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusNoShow, StatusRescheduled:
		return true
	}
	return false
}

// IsMutable reports whether cancel and reschedule may act on this status
func (s AppointmentStatus) IsMutable() bool {
	return s == StatusBooked || s == StatusConfirmed
}

// OccupiesWindow reports whether an appointment in this status blocks the conflict window
func (s AppointmentStatus) OccupiesWindow() bool {
	return s == StatusBooked || s == StatusConfirmed
}

// CanTransitionTo reports whether the state machine allows s -> target
func (s AppointmentStatus) CanTransitionTo(target AppointmentStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// UserType distinguishes patient and staff actors
type UserType string

const (
	UserTypePatient UserType = "PATIENT"
	UserTypeStaff   UserType = "STAFF"
)

func (u UserType) IsValid() bool {
	return u == UserTypePatient || u == UserTypeStaff
}

// Actor identifies who performed an action
type Actor struct {
	UserID   string   `json:"userId"`
	UserType UserType `json:"userType"`
}

func (a Actor) IsPatient() bool { return a.UserType == UserTypePatient }
func (a Actor) IsStaff() bool   { return a.UserType == UserTypeStaff }

// TimeSlot is the denormalized "HH:MM" view of an appointment date
type TimeSlot struct {
	Start types.TimeString
	End   types.TimeString
}

// NewTimeSlot derives the slot from date's wall clock in date's location.
// End is always Start + widthMinutes, wrapping past midnight.
func NewTimeSlot(date time.Time, widthMinutes int) TimeSlot {
	start := types.NewTimeString(date)
	return TimeSlot{Start: start, End: start.AddMinutes(widthMinutes)}
}

// Cancellation records who cancelled an appointment, when and why
type Cancellation struct {
	Reason      string
	CancelledBy Actor
	CancelledAt time.Time
}

// Appointment is a reservation of a (hospital, department, doctor?) resource for one patient
type Appointment struct {
	ID                string
	AppointmentNumber string
	PatientID         string
	HospitalID        string
	DepartmentID      string
	DoctorID          *string
	Date              time.Time
	TimeSlot          TimeSlot
	Status            AppointmentStatus
	Priority          Priority
	Reason            string
	Notes             *string
	Cancellation      *Cancellation
	CreatedBy         Actor

	CreatedAt time.Time
	UpdatedAt time.Time
}

// CanBeCancelled returns true if the appointment can be cancelled
func (a *Appointment) CanBeCancelled() bool {
	return a.Status.IsMutable()
}

// CanBeRescheduled returns true if the appointment can be moved
func (a *Appointment) CanBeRescheduled() bool {
	return a.Status.IsMutable()
}

// IsActive returns true while the appointment still holds its window
func (a *Appointment) IsActive() bool {
	return a.Status.OccupiesWindow()
}

// IsOwnedBy reports whether the patient owns the appointment
func (a *Appointment) IsOwnedBy(patientID string) bool {
	return a.PatientID == patientID
}

// Cancel moves the appointment to CANCELLED and records the metadata
func (a *Appointment) Cancel(actor Actor, reason string, at time.Time) error {
	if !a.CanBeCancelled() {
		return ErrInvalidTransition
	}
	a.Status = StatusCancelled
	a.Cancellation = &Cancellation{
		Reason:      reason,
		CancelledBy: actor,
		CancelledAt: at,
	}
	return nil
}

// Reschedule moves the appointment in place and resets it to BOOKED
func (a *Appointment) Reschedule(newDate time.Time, slot TimeSlot) error {
	if !a.CanBeRescheduled() {
		return ErrInvalidTransition
	}
	a.Date = newDate
	a.TimeSlot = slot
	a.Status = StatusBooked
	return nil
}

// TransitionTo applies a state machine transition
func (a *Appointment) TransitionTo(target AppointmentStatus) error {
	if !a.Status.CanTransitionTo(target) {
		return ErrInvalidTransition
	}
	a.Status = target
	return nil
}

// Priority of the visit
type Priority string

const (
	PriorityNormal    Priority = "NORMAL"
	PriorityUrgent    Priority = "URGENT"
	PriorityEmergency Priority = "EMERGENCY"
)

func (p Priority) IsValid() bool {
	return p == PriorityNormal || p == PriorityUrgent || p == PriorityEmergency
}

// PatientAppointmentsFilter фильтр списка записей пациента
type PatientAppointmentsFilter struct {
	PatientID string
	Status    *AppointmentStatus
	// UpcomingFrom restricts to BOOKED/CONFIRMED appointments dated at or after this instant
	UpcomingFrom *time.Time
}

// HospitalAppointmentsFilter фильтр для получения записей больницы
type HospitalAppointmentsFilter struct {
	HospitalID      string             // Обязательный параметр
	DepartmentID    *string            // Фильтр по отделению (опционально)
	DoctorID        *string            // Фильтр по врачу (опционально)
	From            *time.Time         // Начало периода (включительно)
	To              *time.Time         // Конец периода (не включительно)
	Status          *AppointmentStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли неактивные записи
}
