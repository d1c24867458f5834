// Package clock is the single source of "now" for the scheduling code.
package clock

import (
	"sync"
	"time"
)

// Zoned returns the wall clock converted to a fixed location.
type Zoned struct {
	loc *time.Location
}

func NewZoned(loc *time.Location) *Zoned {
	if loc == nil {
		loc = time.UTC
	}
	return &Zoned{loc: loc}
}

func (z *Zoned) Now() time.Time {
	return time.Now().In(z.loc)
}

// Fixed always returns the same instant until moved. Safe for concurrent use.
type Fixed struct {
	mu  sync.RWMutex
	now time.Time
}

func NewFixed(now time.Time) *Fixed {
	return &Fixed{now: now}
}

func (f *Fixed) Now() time.Time {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.now
}

// Set moves the clock to t.
func (f *Fixed) Set(t time.Time) {
	f.mu.Lock()
	f.now = t
	f.mu.Unlock()
}

// Advance moves the clock forward by d.
func (f *Fixed) Advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}
