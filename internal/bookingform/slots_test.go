package bookingform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartSlots(t *testing.T) {
	slots := StartSlots()
	require.Len(t, slots, 19)
	assert.Equal(t, "09:00", slots[0])
	assert.Equal(t, "09:30", slots[1])
	assert.Equal(t, "18:00", slots[18])
}

func TestEndSlots(t *testing.T) {
	end := EndSlots("09:00")
	require.Len(t, end, 18)
	assert.Equal(t, "09:30", end[0])
	assert.Equal(t, "18:00", end[17])
	assert.NotContains(t, end, "18:30")

	assert.Equal(t, []string{"18:00"}, EndSlots("17:30"))
	assert.Empty(t, EndSlots("18:00"))
	assert.Equal(t, EndSlots("09:00"), EndSlots(""))
	assert.Equal(t, EndSlots("09:00"), EndSlots("nine"))
}

func TestIsSlot(t *testing.T) {
	for _, s := range []string{"09:00", "12:30", "18:00"} {
		assert.True(t, IsSlot(s), s)
	}
	for _, s := range []string{"08:30", "18:30", "10:15", "", "9"} {
		assert.False(t, IsSlot(s), s)
	}
}
