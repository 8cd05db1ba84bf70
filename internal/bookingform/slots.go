package bookingform

import "github.com/nekogravitycat/workplace-booking/internal/booking"

// StartSlots returns the 19 half-hour boundaries from 09:00 to 18:00 inclusive.
func StartSlots() []string {
	return slotsBetween(booking.OpeningMinutes, booking.ClosingMinutes)
}

// EndSlots returns the end options for start: every slot from 30 minutes
// after start up to 18:00. An unset or malformed start is treated as 09:00.
func EndSlots(start string) []string {
	from := booking.OpeningMinutes
	if m, err := booking.ParseClock(start); err == nil && m > from {
		from = m
	}
	return slotsBetween(from+booking.SlotMinutes, booking.ClosingMinutes)
}

// IsSlot reports whether t is one of StartSlots.
func IsSlot(t string) bool {
	m, err := booking.ParseClock(t)
	if err != nil {
		return false
	}
	return m >= booking.OpeningMinutes && m <= booking.ClosingMinutes && m%booking.SlotMinutes == 0
}

func slotsBetween(from, to int) []string {
	out := []string{}
	for m := from; m <= to; m += booking.SlotMinutes {
		out = append(out, booking.FormatClock(m))
	}
	return out
}
