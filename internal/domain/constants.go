package domain

import "errors"

// Default scheduling values
const (
	DefaultSlotMinutes              = 15
	DefaultConflictWindowMinutes    = 30
	DefaultMinNoticeHours           = 24
	DefaultMaxAdvanceMonths         = 3
	DefaultBusinessHourStart        = 8
	DefaultBusinessHourEnd          = 20
	DefaultPatientCancelNoticeHours = 24
	DefaultDayStart                 = "09:00"
	DefaultDayEnd                   = "17:00"
)

// Business validation constants
const (
	MaxTextLength        = 500
	ObjectIDLength       = 24
	DefaultReason        = "General consultation"
	DefaultPatientCancel = "Cancelled by patient"
	DefaultStaffCancel   = "Cancelled by staff"
)

// DateFormat is the calendar day layout (YYYY-MM-DD)
const DateFormat = "2006-01-02"

// ErrInvalidTransition is returned by state changes the state machine forbids
var ErrInvalidTransition = errors.New("domain: invalid status transition")

// ConflictStatuses are the statuses that occupy a (hospital, department) window
var ConflictStatuses = []AppointmentStatus{
	StatusBooked,
	StatusConfirmed,
}

// DoctorBusyStatuses are the statuses that make a doctor unavailable at an exact slot
var DoctorBusyStatuses = []AppointmentStatus{
	StatusBooked,
	StatusConfirmed,
	StatusInProgress,
}

// InactiveStatuses are hidden from staff listings unless explicitly requested
var InactiveStatuses = []AppointmentStatus{
	StatusCancelled,
	StatusNoShow,
}
