package timewindow

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

func TestComputeSlotEnd(t *testing.T) {
	tests := []struct {
		start    string
		duration int
		want     string
	}{
		{"09:00", 15, "09:15"},
		{"23:50", 15, "00:05"},
		{"10:45", 15, "11:00"},
		{"16:30", 30, "17:00"},
	}

	for _, tt := range tests {
		t.Run(tt.start, func(t *testing.T) {
			got, err := ComputeSlotEnd(tt.start, tt.duration)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := ComputeSlotEnd("25:00", 15)
	assert.ErrorIs(t, err, types.ErrInvalidTimeString)
}

func TestGenerateDailySlots(t *testing.T) {
	slots, err := GenerateDailySlots("09:00", "09:30", 15)
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Equal(t, "09:00", slots[0].Start.String())
	assert.Equal(t, "09:15", slots[0].End.String())
	assert.Equal(t, "09:15", slots[1].Start.String())
	assert.Equal(t, "09:30", slots[1].End.String())
}

func TestGenerateDailySlots_Empty(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
	}{
		{name: "equal bounds", start: "09:00", end: "09:00"},
		{name: "reversed bounds", start: "17:00", end: "09:00"},
		{name: "shorter than one step", start: "09:00", end: "09:10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateDailySlots(tt.start, tt.end, 15)
			require.NoError(t, err)
			assert.Empty(t, slots)
		})
	}
}

func TestGenerateDaily_FullDefaultGrid(t *testing.T) {
	slots, err := GenerateDaily(types.MustTimeString("09:00"), types.MustTimeString("17:00"), DefaultSlotMinutes)
	require.NoError(t, err)

	require.Len(t, slots, 32)
	assert.Equal(t, "16:45", slots[len(slots)-1].Start.String())
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].End.Equal(slots[i].Start), "slots must be contiguous")
	}
}

func TestGenerateDaily_InvalidStep(t *testing.T) {
	_, err := GenerateDailySlots("09:00", "10:00", 0)
	assert.ErrorIs(t, err, ErrInvalidStep)
}
