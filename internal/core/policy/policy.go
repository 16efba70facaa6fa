// Package policy holds the admission rules and tunable constants for booking.
// Checks are pure; the coordinator applies them before touching the store
package policy

import (
	"trimline/internal/core/timemath"

	perr "trimline/internal/platform/errors"
)

// BarberStatus mirrors the presence states the engine admits against
type BarberStatus string

// Barber presence states
const (
	BarberAvailable BarberStatus = "available"
	BarberBusy      BarberStatus = "busy"
	BarberOffline   BarberStatus = "offline"
)

// Policy bundles the tunable scheduling constants.
// All minute fields are minutes since midnight
type Policy struct {
	WorkStart          int
	WorkEnd            int
	LunchStart         int
	LunchEnd           int
	SlotGranularity    int
	MinServiceDuration int
	MaxActiveQueue     int
	SameDayCutoff      int
	EventBufferSize    int
}

// Default returns the stock barbershop policy:
// 08:00-17:00 working day, 12:00-13:00 lunch, 30 minute grid,
// 16:30 same-day cutoff, 15 queue seats
func Default() Policy {
	return Policy{
		WorkStart:          8 * 60,
		WorkEnd:            17 * 60,
		LunchStart:         12 * 60,
		LunchEnd:           13 * 60,
		SlotGranularity:    30,
		MinServiceDuration: 30,
		MaxActiveQueue:     15,
		SameDayCutoff:      16*60 + 30,
		EventBufferSize:    64,
	}
}

// Validate rejects internally inconsistent policies at boot
func (p Policy) Validate() error {
	if p.WorkStart < 0 || p.WorkEnd >= timemath.MinutesPerDay || p.WorkStart >= p.WorkEnd {
		return perr.Internalf("policy: bad working window [%d,%d)", p.WorkStart, p.WorkEnd)
	}
	if p.LunchStart < p.WorkStart || p.LunchEnd > p.WorkEnd || p.LunchStart >= p.LunchEnd {
		return perr.Internalf("policy: lunch [%d,%d) outside working window", p.LunchStart, p.LunchEnd)
	}
	if p.SlotGranularity <= 0 {
		return perr.Internalf("policy: non-positive slot granularity %d", p.SlotGranularity)
	}
	if p.MinServiceDuration <= 0 {
		return perr.Internalf("policy: non-positive min service duration %d", p.MinServiceDuration)
	}
	if p.MaxActiveQueue <= 0 {
		return perr.Internalf("policy: non-positive queue cap %d", p.MaxActiveQueue)
	}
	if p.SameDayCutoff < p.WorkStart || p.SameDayCutoff > p.WorkEnd {
		return perr.Internalf("policy: cutoff %d outside working window", p.SameDayCutoff)
	}
	return nil
}

// WorkingMinutes is the bookable minute budget of a day (working minus lunch)
func (p Policy) WorkingMinutes() int {
	return (p.WorkEnd - p.WorkStart) - (p.LunchEnd - p.LunchStart)
}

// CheckDuration enforces the minimum total service duration
func (p Policy) CheckDuration(totalMin int) error {
	if totalMin < p.MinServiceDuration {
		return perr.InvalidRequestf("total duration %d min is below the %d min minimum", totalMin, p.MinServiceDuration)
	}
	return nil
}

// CheckWindow rejects past dates and same-day requests after the cutoff
func (p Policy) CheckWindow(dateISO, todayISO string, nowMinute int) error {
	if dateISO < todayISO {
		return perr.OutsideWindowf("date %s is in the past", dateISO)
	}
	if dateISO == todayISO && nowMinute >= p.SameDayCutoff {
		return perr.OutsideWindowf("same-day booking closed at %s", timemath.ToHHMM(p.SameDayCutoff))
	}
	return nil
}

// CheckWorkingFit enforces that a scheduled interval ends inside working hours
func (p Policy) CheckWorkingFit(startMinute, durationMin int) error {
	if !timemath.FitsDay(startMinute, durationMin) {
		return perr.WorkingHoursf("interval %s+%dmin runs past midnight", timemath.ToHHMM(startMinute), durationMin)
	}
	if startMinute < p.WorkStart || startMinute+durationMin > p.WorkEnd {
		return perr.WorkingHoursf(
			"interval %s-%s falls outside working hours %s-%s",
			timemath.ToHHMM(startMinute), timemath.ToHHMM(startMinute+durationMin),
			timemath.ToHHMM(p.WorkStart), timemath.ToHHMM(p.WorkEnd),
		)
	}
	return nil
}

// CheckLunch rejects scheduled intervals crossing the lunch break
func (p Policy) CheckLunch(startMinute, durationMin int) error {
	if timemath.CrossesLunch(startMinute, durationMin, p.LunchStart, p.LunchEnd) {
		return perr.LunchConflictf(
			"interval %s-%s crosses lunch %s-%s",
			timemath.ToHHMM(startMinute), timemath.ToHHMM(startMinute+durationMin),
			timemath.ToHHMM(p.LunchStart), timemath.ToHHMM(p.LunchEnd),
		)
	}
	return nil
}

// CheckQueueCap enforces the active queue length limit
func (p Policy) CheckQueueCap(activeQueueLen int) error {
	if activeQueueLen >= p.MaxActiveQueue {
		return perr.QueueFullf("queue already holds %d of %d seats", activeQueueLen, p.MaxActiveQueue)
	}
	return nil
}

// CheckQueueBudget enforces that queued work fits the day's remaining gap budget:
// working minutes minus scheduled minutes must cover queue minutes plus the new job
func (p Policy) CheckQueueBudget(scheduledMin, queuedMin, newDurationMin int) error {
	remaining := p.WorkingMinutes() - scheduledMin
	if queuedMin+newDurationMin > remaining {
		return perr.QueueFullf("no gap fits %d min; %d min remain unscheduled", newDurationMin, maxInt(remaining-queuedMin, 0))
	}
	return nil
}

// CheckBarber rejects offline barbers and day-off dates
func (p Policy) CheckBarber(status BarberStatus, dayOff bool) error {
	if dayOff {
		return perr.Newf(perr.ErrorCodeDayOff, "barber is off that day")
	}
	if status == BarberOffline {
		return perr.Newf(perr.ErrorCodeBarberOffline, "barber is offline")
	}
	if status != BarberAvailable && status != BarberBusy {
		return perr.Newf(perr.ErrorCodeBarberOffline, "barber status %q is not bookable", status)
	}
	return nil
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
