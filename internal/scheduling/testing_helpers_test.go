package scheduling

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// colombo is a fixed +05:30 zone so tests do not depend on the system tz database.
var colombo = time.FixedZone("+0530", 5*3600+30*60)

// testNow is Sunday 2025-06-01 09:00 local.
var testNow = time.Date(2025, 6, 1, 9, 0, 0, 0, colombo)

func testRules() Rules {
	return DefaultRules(colombo)
}

func local(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, colombo)
}

func monWedFri() *domain.Doctor {
	return &domain.Doctor{
		ID:            "64b7f0c2a1b2c3d4e5f60718",
		FullName:      "Dr. Perera",
		AvailableDays: []string{"Monday", "Wednesday", "Friday"},
	}
}
