// Package scheduling holds the pure booking rules: availability, request validation,
// the conflict window and the cancellation policy. Storage is reached only through small interfaces.
package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Rules are the tunable scheduling parameters.
// Location is the single timezone used for every weekday, hour and calendar-day decision.
type Rules struct {
	Location            *time.Location
	DayStart            types.TimeString
	DayEnd              types.TimeString
	SlotMinutes         int
	ConflictWindow      time.Duration
	MinNotice           time.Duration
	MaxAdvanceMonths    int
	BusinessHourStart   int
	BusinessHourEnd     int
	MaxTextLength       int
	PatientCancelNotice time.Duration
}

// DefaultRules returns the stock hospital rules in loc.
func DefaultRules(loc *time.Location) Rules {
	if loc == nil {
		loc = time.UTC
	}
	return Rules{
		Location:            loc,
		DayStart:            types.MustTimeString(domain.DefaultDayStart),
		DayEnd:              types.MustTimeString(domain.DefaultDayEnd),
		SlotMinutes:         domain.DefaultSlotMinutes,
		ConflictWindow:      domain.DefaultConflictWindowMinutes * time.Minute,
		MinNotice:           domain.DefaultMinNoticeHours * time.Hour,
		MaxAdvanceMonths:    domain.DefaultMaxAdvanceMonths,
		BusinessHourStart:   domain.DefaultBusinessHourStart,
		BusinessHourEnd:     domain.DefaultBusinessHourEnd,
		MaxTextLength:       domain.MaxTextLength,
		PatientCancelNotice: domain.DefaultPatientCancelNoticeHours * time.Hour,
	}
}

// Local converts t into the scheduling timezone.
func (r Rules) Local(t time.Time) time.Time {
	return t.In(r.Location)
}

// StartOfDay returns local midnight of t's calendar day.
func (r Rules) StartOfDay(t time.Time) time.Time {
	y, m, d := t.In(r.Location).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, r.Location)
}

// DayBounds returns [midnight, next midnight) of t's local calendar day.
func (r Rules) DayBounds(t time.Time) (time.Time, time.Time) {
	start := r.StartOfDay(t)
	return start, start.AddDate(0, 0, 1)
}

// SlotFor derives the denormalized time slot of an appointment date.
func (r Rules) SlotFor(date time.Time) domain.TimeSlot {
	return domain.NewTimeSlot(r.Local(date), r.SlotMinutes)
}

// ConflictWindowAround returns the inclusive [at-w, at+w] range searched for competing appointments.
func (r Rules) ConflictWindowAround(at time.Time) (time.Time, time.Time) {
	return at.Add(-r.ConflictWindow), at.Add(r.ConflictWindow)
}

// ConflictRange returns the closed half-width range [at-w/2, at+w/2] stored with an appointment.
// Two such ranges intersect exactly when the dates are at most w apart.
func (r Rules) ConflictRange(at time.Time) (time.Time, time.Time) {
	half := r.ConflictWindow / 2
	return at.Add(-half), at.Add(half)
}
