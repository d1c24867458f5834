package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	minutesPerHour = 60
	minutesPerDay  = 24 * minutesPerHour
)

// ErrInvalidTimeString is returned when a value is not a valid "HH:MM" time of day.
var ErrInvalidTimeString = errors.New("invalid time string format")

// TimeString is a time of day in 24-hour "HH:MM" form.
// Internally it is kept as minutes since midnight; the string form exists only at the boundary.
type TimeString struct {
	minutes int
	set     bool
}

// NewTimeString builds a TimeString from the hour and minute of t in t's location.
func NewTimeString(t time.Time) TimeString {
	return TimeString{minutes: t.Hour()*minutesPerHour + t.Minute(), set: true}
}

// NewTimeStringFromMinutes builds a TimeString from minutes since midnight, wrapping around the day.
func NewTimeStringFromMinutes(minutes int) TimeString {
	return TimeString{minutes: wrap(minutes), set: true}
}

// NewTimeStringFromString parses "HH:MM" (24-hour clock).
func NewTimeStringFromString(s string) (TimeString, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 || len(parts[0]) != 2 || len(parts[1]) != 2 {
		return TimeString{}, ErrInvalidTimeString
	}

	hours, err := strconv.Atoi(parts[0])
	if err != nil || hours < 0 || hours > 23 {
		return TimeString{}, ErrInvalidTimeString
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return TimeString{}, ErrInvalidTimeString
	}

	return TimeString{minutes: hours*minutesPerHour + minutes, set: true}, nil
}

// MustTimeString parses s and panics on error. Intended for constants and tests.
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(fmt.Sprintf("types: %q: %v", s, err))
	}
	return ts
}

// Minutes returns minutes since midnight.
func (t TimeString) Minutes() int {
	return t.minutes
}

// Hour returns the hour component.
func (t TimeString) Hour() int {
	return t.minutes / minutesPerHour
}

// Minute returns the minute component.
func (t TimeString) Minute() int {
	return t.minutes % minutesPerHour
}

// AddMinutes returns t shifted by the given number of minutes.
// The result wraps past midnight in both directions, so "23:50" + 15 is "00:05".
func (t TimeString) AddMinutes(minutes int) TimeString {
	return TimeString{minutes: wrap(t.minutes + minutes), set: true}
}

// IsBefore reports whether t is strictly earlier in the day than other.
func (t TimeString) IsBefore(other TimeString) bool {
	return t.minutes < other.minutes
}

// IsAfter reports whether t is strictly later in the day than other.
func (t TimeString) IsAfter(other TimeString) bool {
	return t.minutes > other.minutes
}

// Equal reports whether both values denote the same time of day.
func (t TimeString) Equal(other TimeString) bool {
	return t.set == other.set && t.minutes == other.minutes
}

// IsZero reports whether the value was never set.
func (t TimeString) IsZero() bool {
	return !t.set
}

// Validate checks the value is set and in range.
func (t TimeString) Validate() error {
	if !t.set || t.minutes < 0 || t.minutes >= minutesPerDay {
		return ErrInvalidTimeString
	}
	return nil
}

// On places the time of day on the calendar date of day, in day's location.
func (t TimeString) On(day time.Time) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, day.Location())
}

func (t TimeString) String() string {
	if !t.set {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText implements encoding.TextMarshaler.
func (t TimeString) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *TimeString) UnmarshalText(data []byte) error {
	if len(data) == 0 {
		*t = TimeString{}
		return nil
	}
	parsed, err := NewTimeStringFromString(string(data))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Scan implements sql.Scanner. Accepts text "HH:MM", "HH:MM:SS" and time.Time values.
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = TimeString{}
		return nil
	case time.Time:
		*t = NewTimeString(v)
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	if len(s) == len("15:04:05") {
		s = s[:5]
	}
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Value implements driver.Valuer.
func (t TimeString) Value() (driver.Value, error) {
	if !t.set {
		return nil, nil
	}
	return t.String(), nil
}

func wrap(minutes int) int {
	minutes %= minutesPerDay
	if minutes < 0 {
		minutes += minutesPerDay
	}
	return minutes
}
