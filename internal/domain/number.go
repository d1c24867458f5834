package domain

import (
	"fmt"
	"math/rand/v2"
	"time"
)

const appointmentNumberSpace = 100000

// GenerateAppointmentNumber builds "APT-YYYYMMDD-NNNNN" from the calendar date of now.
// The suffix is random and not collision-free; storage enforces uniqueness.
func GenerateAppointmentNumber(now time.Time) string {
	return FormatAppointmentNumber(now, rand.IntN(appointmentNumberSpace))
}

// FormatAppointmentNumber formats a number with an explicit suffix
func FormatAppointmentNumber(date time.Time, suffix int) string {
	return fmt.Sprintf("APT-%s-%05d", date.Format("20060102"), suffix%appointmentNumberSpace)
}
