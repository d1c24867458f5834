package domain

import (
	"strings"
	"time"
)

// Doctor is the read model used for availability: weekday set and leave intervals
type Doctor struct {
	ID             string
	FullName       string
	Specialization string
	HospitalID     string
	DepartmentID   string
	AvailableDays  []string // English weekday names, e.g. "Monday"
	Leaves         []Leave
}

// Leave is an inclusive [StartDate, EndDate] absence
type Leave struct {
	ID        string
	StartDate time.Time
	EndDate   time.Time
	Reason    *string
}

// WorksOn reports whether the weekday is in the doctor's service set (case-insensitive)
func (d *Doctor) WorksOn(day time.Weekday) bool {
	name := day.String()
	for _, available := range d.AvailableDays {
		if strings.EqualFold(strings.TrimSpace(available), name) {
			return true
		}
	}
	return false
}

// Covers reports whether t lies inside the leave, bounds included
func (l Leave) Covers(t time.Time) bool {
	return !t.Before(l.StartDate) && !t.After(l.EndDate)
}
