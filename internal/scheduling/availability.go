package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/timewindow"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Resolver derives doctor availability from the weekday set and leave intervals.
// It is read-only: writes still go through the conflict check.
type Resolver struct {
	rules Rules
}

func NewResolver(rules Rules) *Resolver {
	return &Resolver{rules: rules}
}

// IsServiceDay reports whether the local weekday of date is in the doctor's service set.
func (r *Resolver) IsServiceDay(doctor *domain.Doctor, date time.Time) bool {
	return doctor.WorksOn(r.rules.Local(date).Weekday())
}

// IsOnLeave reports whether the local calendar day of date falls in any leave, bounds included.
// Leave bounds are compared by calendar day too, so a leave ending on the 12th covers the whole 12th.
func (r *Resolver) IsOnLeave(doctor *domain.Doctor, date time.Time) bool {
	day := r.rules.StartOfDay(date)
	for _, leave := range doctor.Leaves {
		span := domain.Leave{
			StartDate: r.rules.StartOfDay(leave.StartDate),
			EndDate:   r.rules.StartOfDay(leave.EndDate),
		}
		if span.Covers(day) {
			return true
		}
	}
	return false
}

// IsAvailableOn combines the weekday and leave checks.
func (r *Resolver) IsAvailableOn(doctor *domain.Doctor, date time.Time) bool {
	return r.IsServiceDay(doctor, date) && !r.IsOnLeave(doctor, date)
}

// AvailableSlots returns the grid slot starts of date that are not in bookedStarts, ascending.
// The result is empty on a non-service day or a leave day regardless of bookings.
func (r *Resolver) AvailableSlots(doctor *domain.Doctor, date time.Time, bookedStarts []types.TimeString) ([]types.TimeString, error) {
	if doctor == nil {
		return nil, ErrDoctorNotFound
	}
	if date.IsZero() {
		return nil, ErrInvalidArgument
	}

	free := make([]types.TimeString, 0)
	if !r.IsAvailableOn(doctor, date) {
		return free, nil
	}

	grid, err := timewindow.GenerateDaily(r.rules.DayStart, r.rules.DayEnd, r.rules.SlotMinutes)
	if err != nil {
		return nil, err
	}

	booked := make(map[int]struct{}, len(bookedStarts))
	for _, start := range bookedStarts {
		booked[start.Minutes()] = struct{}{}
	}

	for _, slot := range grid {
		if _, taken := booked[slot.Start.Minutes()]; taken {
			continue
		}
		free = append(free, slot.Start)
	}

	return free, nil
}
