// Package timewindow holds pure helpers for fixed-size time-of-day slots.
package timewindow

import (
	"errors"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DefaultSlotMinutes is the width of a slot when none is given.
const DefaultSlotMinutes = 15

// ErrInvalidStep is returned for a non-positive slot width.
var ErrInvalidStep = errors.New("timewindow: step must be positive")

// Slot is a half-open [Start, End) time-of-day interval.
type Slot struct {
	Start types.TimeString `json:"start"`
	End   types.TimeString `json:"end"`
}

// SlotEnd returns start + durationMinutes, wrapping past midnight.
func SlotEnd(start types.TimeString, durationMinutes int) types.TimeString {
	return start.AddMinutes(durationMinutes)
}

// ComputeSlotEnd is SlotEnd over the "HH:MM" wire form.
func ComputeSlotEnd(start string, durationMinutes int) (string, error) {
	ts, err := types.NewTimeStringFromString(start)
	if err != nil {
		return "", err
	}
	return SlotEnd(ts, durationMinutes).String(), nil
}

// GenerateDaily enumerates consecutive slots of stepMinutes from dayStart up to, but not past, dayEnd.
// The result is empty when dayStart is not before dayEnd. A trailing remainder shorter than
// one step is dropped.
func GenerateDaily(dayStart, dayEnd types.TimeString, stepMinutes int) ([]Slot, error) {
	if stepMinutes <= 0 {
		return nil, ErrInvalidStep
	}

	slots := make([]Slot, 0)
	for cur := dayStart.Minutes(); cur+stepMinutes <= dayEnd.Minutes(); cur += stepMinutes {
		start := types.NewTimeStringFromMinutes(cur)
		slots = append(slots, Slot{Start: start, End: SlotEnd(start, stepMinutes)})
	}

	return slots, nil
}

// GenerateDailySlots is GenerateDaily over the "HH:MM" wire form.
func GenerateDailySlots(dayStart, dayEnd string, stepMinutes int) ([]Slot, error) {
	start, err := types.NewTimeStringFromString(dayStart)
	if err != nil {
		return nil, err
	}
	end, err := types.NewTimeStringFromString(dayEnd)
	if err != nil {
		return nil, err
	}
	return GenerateDaily(start, end, stepMinutes)
}
