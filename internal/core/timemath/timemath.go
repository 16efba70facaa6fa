// Package timemath implements minute-of-day arithmetic for the scheduling engine.
// All reasoning uses integer minutes since midnight; nothing here rounds
package timemath

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay bounds every valid minute-of-day value
const MinutesPerDay = 24 * 60

// ToMinutes parses "HH:MM" or "HH:MM:SS" into minutes since midnight.
// Seconds are accepted at the repository boundary but must be zero
func ToMinutes(s string) (int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("timemath: malformed time %q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, fmt.Errorf("timemath: malformed hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil {
		return 0, fmt.Errorf("timemath: malformed minute in %q", s)
	}
	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec != 0 {
			return 0, fmt.Errorf("timemath: non-zero seconds in %q", s)
		}
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("timemath: time out of range %q", s)
	}
	return h*60 + m, nil
}

// ToHHMM formats minutes since midnight as zero-padded "HH:MM"
func ToHHMM(m int) string {
	return fmt.Sprintf("%02d:%02d", m/60, m%60)
}

// ToHHMMSS formats minutes since midnight as "HH:MM:SS" for the row layout
func ToHHMMSS(m int) string {
	return fmt.Sprintf("%02d:%02d:00", m/60, m%60)
}

// To12H formats minutes since midnight for display, e.g. 510 -> "8:30 AM"
func To12H(m int) string {
	h := m / 60
	mm := m % 60
	suffix := "AM"
	switch {
	case h == 0:
		h = 12
	case h == 12:
		suffix = "PM"
	case h > 12:
		h -= 12
		suffix = "PM"
	}
	return fmt.Sprintf("%d:%02d %s", h, mm, suffix)
}

// IntervalsOverlap reports whether [aStart,aEnd) and [bStart,bEnd) intersect
func IntervalsOverlap(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && bStart < aEnd
}

// CrossesLunch reports whether a block starting at start with the given
// duration intersects the lunch interval [lunchStart,lunchEnd)
func CrossesLunch(start, duration, lunchStart, lunchEnd int) bool {
	return IntervalsOverlap(start, start+duration, lunchStart, lunchEnd)
}

// FitsDay reports whether [start,start+duration) stays strictly before midnight.
// The engine rejects any computed end at or past 24:00
func FitsDay(start, duration int) bool {
	return start >= 0 && duration > 0 && start+duration < MinutesPerDay
}
