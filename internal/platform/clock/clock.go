// Package clock provides an injectable wall clock for scheduling decisions
package clock

import "time"

// Clock yields the current instant
// inject Fixed in tests to make time-dependent logic deterministic
type Clock interface {
	Now() time.Time
}

// System reads the real wall clock
type System struct{}

// Now returns the current local time
func (System) Now() time.Time { return time.Now() }

// Fixed is a clock pinned to a single instant
type Fixed struct {
	T time.Time
}

// Now returns the pinned instant
func (f Fixed) Now() time.Time { return f.T }

// At builds a Fixed clock from a date and minute of day
func At(dateISO string, minute int) Fixed {
	d, err := time.ParseInLocation("2006-01-02", dateISO, time.Local)
	if err != nil {
		return Fixed{}
	}
	return Fixed{T: d.Add(time.Duration(minute) * time.Minute)}
}

// TodayISO formats the clock's current date as YYYY-MM-DD
func TodayISO(c Clock) string {
	return c.Now().Format("2006-01-02")
}

// MinuteOfDay returns the clock's current local time as minutes since midnight
func MinuteOfDay(c Clock) int {
	t := c.Now()
	return t.Hour()*60 + t.Minute()
}
