package scheduling

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// ConflictFinder looks up an active appointment of a department dated inside [from, to].
type ConflictFinder interface {
	FindConflict(ctx context.Context, hospitalID, departmentID string, from, to time.Time, excludeID *string) (*domain.Appointment, error)
}

// Detector applies the conflict window to a candidate instant.
type Detector struct {
	rules  Rules
	finder ConflictFinder
}

func NewDetector(rules Rules, finder ConflictFinder) *Detector {
	return &Detector{rules: rules, finder: finder}
}

// FindConflict returns the first BOOKED or CONFIRMED appointment of (hospital, department) whose
// date lies within the conflict window around at, ignoring excludeID. It returns nil when the slot is free.
func (d *Detector) FindConflict(ctx context.Context, hospitalID, departmentID string, at time.Time, excludeID *string) (*domain.Appointment, error) {
	from, to := d.rules.ConflictWindowAround(at)
	return d.finder.FindConflict(ctx, hospitalID, departmentID, from, to, excludeID)
}
