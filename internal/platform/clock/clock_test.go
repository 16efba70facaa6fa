package clock

import (
	"testing"
	"time"
)

func TestFixed_NowPinned(t *testing.T) {
	t.Parallel()

	want := time.Date(2025, 10, 10, 9, 15, 0, 0, time.Local)
	c := Fixed{T: want}

	if got := c.Now(); !got.Equal(want) {
		t.Fatalf("Now got %v want %v", got, want)
	}
}

func TestAt_BuildsDateAndMinute(t *testing.T) {
	t.Parallel()

	c := At("2025-10-10", 510) // 08:30

	if got := TodayISO(c); got != "2025-10-10" {
		t.Fatalf("TodayISO got %q want %q", got, "2025-10-10")
	}
	if got := MinuteOfDay(c); got != 510 {
		t.Fatalf("MinuteOfDay got %d want 510", got)
	}
}

func TestAt_BadDateYieldsZero(t *testing.T) {
	t.Parallel()

	c := At("not-a-date", 0)
	if !c.Now().IsZero() {
		t.Fatalf("expected zero time for unparseable date, got %v", c.Now())
	}
}

func TestMinuteOfDay_System(t *testing.T) {
	t.Parallel()

	m := MinuteOfDay(System{})
	if m < 0 || m > 1439 {
		t.Fatalf("MinuteOfDay out of range: %d", m)
	}
}
