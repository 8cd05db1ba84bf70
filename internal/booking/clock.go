package booking

import (
	"fmt"
	"time"
)

const (
	// DateLayout is the wire format of booking dates.
	DateLayout = "02.01.2006"

	OpeningMinutes = 9 * 60
	ClosingMinutes = 18 * 60
	SlotMinutes    = 30
)

// ParseDate parses a DD.MM.YYYY date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// FormatDate renders t as DD.MM.YYYY.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// ParseClock converts an HH:MM 24-hour time into minutes since midnight.
func ParseClock(s string) (int, error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, ErrInvalidTime
	}
	h, ok1 := twoDigits(s[0:2])
	m, ok2 := twoDigits(s[3:5])
	if !ok1 || !ok2 || h > 23 || m > 59 {
		return 0, ErrInvalidTime
	}
	return h*60 + m, nil
}

func twoDigits(s string) (int, bool) {
	if s[0] < '0' || s[0] > '9' || s[1] < '0' || s[1] > '9' {
		return 0, false
	}
	return int(s[0]-'0')*10 + int(s[1]-'0'), true
}

// FormatClock renders minutes since midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
// Touching ranges (e1 == s2) do not overlap.
func Overlaps(s1, e1, s2, e2 int) bool {
	return s1 < e2 && s2 < e1
}

// ValidateRange checks a start/end pair against the opening hours and the
// minimum duration, returning the first violated rule.
func ValidateRange(startTime, endTime string) error {
	start, err := ParseClock(startTime)
	if err != nil {
		return err
	}
	end, err := ParseClock(endTime)
	if err != nil {
		return err
	}
	switch {
	case start < OpeningMinutes || end > ClosingMinutes:
		return ErrOutsideHours
	case start >= end:
		return ErrInvalidTimeRange
	case end-start < SlotMinutes:
		return ErrTooShort
	}
	return nil
}
