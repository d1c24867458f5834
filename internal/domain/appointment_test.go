package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppointmentStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to AppointmentStatus
		want     bool
	}{
		{StatusBooked, StatusConfirmed, true},
		{StatusConfirmed, StatusBooked, true},
		{StatusConfirmed, StatusCheckedIn, true},
		{StatusCheckedIn, StatusInProgress, true},
		{StatusInProgress, StatusCompleted, true},
		{StatusBooked, StatusCancelled, true},
		{StatusConfirmed, StatusNoShow, true},

		{StatusBooked, StatusCheckedIn, false},
		{StatusBooked, StatusRescheduled, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusBooked, false},
		{StatusNoShow, StatusConfirmed, false},
		{StatusInProgress, StatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestAppointmentStatus_Predicates(t *testing.T) {
	for _, s := range []AppointmentStatus{StatusBooked, StatusConfirmed} {
		assert.True(t, s.IsMutable(), s)
		assert.True(t, s.OccupiesWindow(), s)
	}
	for _, s := range []AppointmentStatus{StatusCheckedIn, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow} {
		assert.False(t, s.IsMutable(), s)
		assert.False(t, s.OccupiesWindow(), s)
	}
	assert.True(t, StatusRescheduled.IsValid())
	assert.False(t, AppointmentStatus("PENDING").IsValid())
}

func TestNewTimeSlot(t *testing.T) {
	tests := []struct {
		name      string
		date      time.Time
		wantStart string
		wantEnd   string
	}{
		{"regular", time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC), "10:00", "10:15"},
		{"hour boundary", time.Date(2025, 6, 10, 10, 50, 0, 0, time.UTC), "10:50", "11:05"},
		{"midnight wrap", time.Date(2025, 6, 10, 23, 50, 0, 0, time.UTC), "23:50", "00:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot := NewTimeSlot(tt.date, DefaultSlotMinutes)
			assert.Equal(t, tt.wantStart, slot.Start.String())
			assert.Equal(t, tt.wantEnd, slot.End.String())
		})
	}
}

func TestAppointment_Cancel(t *testing.T) {
	at := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	actor := Actor{UserID: "p1", UserType: UserTypePatient}

	appt := &Appointment{Status: StatusConfirmed}
	require.NoError(t, appt.Cancel(actor, "sick", at))
	assert.Equal(t, StatusCancelled, appt.Status)
	require.NotNil(t, appt.Cancellation)
	assert.Equal(t, "sick", appt.Cancellation.Reason)
	assert.Equal(t, actor, appt.Cancellation.CancelledBy)
	assert.Equal(t, at, appt.Cancellation.CancelledAt)

	// second cancel must fail loudly
	assert.ErrorIs(t, appt.Cancel(actor, "again", at), ErrInvalidTransition)

	completed := &Appointment{Status: StatusCompleted}
	assert.ErrorIs(t, completed.Cancel(actor, "", at), ErrInvalidTransition)
}

func TestAppointment_Reschedule(t *testing.T) {
	newDate := time.Date(2025, 6, 12, 11, 0, 0, 0, time.UTC)
	slot := NewTimeSlot(newDate, DefaultSlotMinutes)

	appt := &Appointment{ID: "a1", Status: StatusConfirmed}
	require.NoError(t, appt.Reschedule(newDate, slot))
	assert.Equal(t, "a1", appt.ID)
	assert.Equal(t, StatusBooked, appt.Status)
	assert.Equal(t, newDate, appt.Date)
	assert.Equal(t, "11:00", appt.TimeSlot.Start.String())

	cancelled := &Appointment{Status: StatusCancelled}
	assert.ErrorIs(t, cancelled.Reschedule(newDate, slot), ErrInvalidTransition)
}

func TestDoctor_WorksOn(t *testing.T) {
	d := &Doctor{AvailableDays: []string{"Monday", "wednesday", " Friday "}}

	assert.True(t, d.WorksOn(time.Monday))
	assert.True(t, d.WorksOn(time.Wednesday))
	assert.True(t, d.WorksOn(time.Friday))
	assert.False(t, d.WorksOn(time.Tuesday))
	assert.False(t, d.WorksOn(time.Sunday))
}

func TestLeave_Covers(t *testing.T) {
	leave := Leave{
		StartDate: time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 6, 12, 0, 0, 0, 0, time.UTC),
	}

	assert.True(t, leave.Covers(leave.StartDate))
	assert.True(t, leave.Covers(leave.EndDate))
	assert.True(t, leave.Covers(time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)))
	assert.False(t, leave.Covers(time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)))
	assert.False(t, leave.Covers(time.Date(2025, 6, 12, 0, 0, 1, 0, time.UTC)))
}

func TestFormatAppointmentNumber(t *testing.T) {
	date := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, "APT-20250610-00042", FormatAppointmentNumber(date, 42))
	assert.Equal(t, "APT-20250610-99999", FormatAppointmentNumber(date, 99999))
	assert.Regexp(t, `^APT-20250610-\d{5}$`, GenerateAppointmentNumber(date))
}
