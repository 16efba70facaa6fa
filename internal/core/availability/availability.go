// Package availability classifies candidate slots and ranks alternative
// barbers. Everything here is pure; callers supply the built timeline
package availability

import (
	"sort"

	"trimline/internal/core/policy"
	"trimline/internal/core/timeline"
	"trimline/internal/core/timemath"
)

// SlotKind classifies one candidate grid point
type SlotKind string

// Slot kinds
const (
	SlotAvailable SlotKind = "available"
	SlotScheduled SlotKind = "scheduled"
	SlotQueue     SlotKind = "queue"
	SlotLunch     SlotKind = "lunch"
	SlotPast      SlotKind = "past"
	SlotFull      SlotKind = "full"
)

// Slot is one candidate grid point of the day
type Slot struct {
	StartMinute  int
	Kind         SlotKind
	Bookable     bool
	Reason       string
	QueuePreview int // position of the occupying queue row, 0 otherwise
}

// Barber is the minimal barber view availability needs
type Barber struct {
	ID          string
	DisplayName string
	Status      policy.BarberStatus
	AvgRating   float64
	RatingCount int
}

// BarberOption is one ranked alternative for a requested duration
type BarberOption struct {
	Barber         Barber
	NextAvailable  int // minute of day, NoNext when none
	AvailableCount int
	QueueLength    int
	Score          float64
}

// NoNext marks a BarberOption with no bookable slot left
const NoNext = -1

// Candidate pairs a barber with their built timeline for ranking
type Candidate struct {
	Barber      Barber
	Blocks      []timeline.Block
	QueueLength int
}

// UnifiedSlots walks the candidate grid across working hours and classifies
// every point. Bookable is true only for available slots where the whole
// service interval fits without touching another block or lunch
func UnifiedSlots(blocks []timeline.Block, p policy.Policy, serviceDuration, nowMinute int, isToday bool) []Slot {
	out := make([]Slot, 0, (p.WorkEnd-p.WorkStart)/p.SlotGranularity)
	for start := p.WorkStart; start < p.WorkEnd; start += p.SlotGranularity {
		out = append(out, classify(blocks, p, start, serviceDuration, nowMinute, isToday))
	}
	return out
}

func classify(blocks []timeline.Block, p policy.Policy, start, dur, nowMinute int, isToday bool) Slot {
	if isToday && start < nowMinute {
		return Slot{StartMinute: start, Kind: SlotPast, Reason: "already passed"}
	}

	if b, ok := blockAt(blocks, start); ok {
		switch b.Type {
		case timeline.BlockScheduled:
			return Slot{StartMinute: start, Kind: SlotScheduled, Reason: "booked"}
		case timeline.BlockQueue:
			return Slot{StartMinute: start, Kind: SlotQueue, Reason: "queued work", QueuePreview: b.QueuePosition}
		case timeline.BlockLunch:
			return Slot{StartMinute: start, Kind: SlotLunch, Reason: "lunch break"}
		}
	}

	if reason, ok := placeable(blocks, p, start, dur); !ok {
		return Slot{StartMinute: start, Kind: SlotFull, Reason: reason}
	}
	return Slot{StartMinute: start, Kind: SlotAvailable, Bookable: true}
}

// Conflicts reports whether the interval overlaps an existing scheduled or
// queued block. Lunch and working-hour fit are judged separately
func Conflicts(blocks []timeline.Block, start, dur int) bool {
	for _, b := range blocks {
		if b.Type != timeline.BlockScheduled && b.Type != timeline.BlockQueue {
			continue
		}
		if timemath.IntervalsOverlap(start, start+dur, b.StartMinute, b.EndMinute) {
			return true
		}
	}
	return false
}

// Placeable reports whether a scheduled appointment of the given duration can
// start at the given minute on this timeline. It is the single source of
// truth the coordinator re-checks under its lock before inserting
func Placeable(blocks []timeline.Block, p policy.Policy, start, dur, nowMinute int, isToday bool) bool {
	if isToday && start < nowMinute {
		return false
	}
	if b, ok := blockAt(blocks, start); ok && b.Type != timeline.BlockGap {
		return false
	}
	_, ok := placeable(blocks, p, start, dur)
	return ok
}

func placeable(blocks []timeline.Block, p policy.Policy, start, dur int) (string, bool) {
	if !timemath.FitsDay(start, dur) || start+dur > p.WorkEnd {
		return "runs past closing", false
	}
	if timemath.CrossesLunch(start, dur, p.LunchStart, p.LunchEnd) {
		return "crosses lunch", false
	}
	for _, b := range blocks {
		if b.Type == timeline.BlockGap {
			continue
		}
		if timemath.IntervalsOverlap(start, start+dur, b.StartMinute, b.EndMinute) {
			return "overlaps " + string(b.Type), false
		}
	}
	return "", true
}

// blockAt finds the non-gap block covering a minute, if any
func blockAt(blocks []timeline.Block, minute int) (timeline.Block, bool) {
	for _, b := range blocks {
		if b.Type == timeline.BlockGap {
			continue
		}
		if minute >= b.StartMinute && minute < b.EndMinute {
			return b, true
		}
	}
	return timeline.Block{}, false
}

// NextAvailable returns the earliest bookable grid point, if any
func NextAvailable(blocks []timeline.Block, p policy.Policy, serviceDuration, nowMinute int, isToday bool) (int, bool) {
	for _, s := range UnifiedSlots(blocks, p, serviceDuration, nowMinute, isToday) {
		if s.Bookable {
			return s.StartMinute, true
		}
	}
	return 0, false
}

// FindAlternatives ranks candidate barbers for the requested duration.
// Order: bookable slot count desc, queue length asc, rating desc, id asc
func FindAlternatives(cands []Candidate, p policy.Policy, serviceDuration, nowMinute int, isToday bool) []BarberOption {
	out := make([]BarberOption, 0, len(cands))
	for _, c := range cands {
		slots := UnifiedSlots(c.Blocks, p, serviceDuration, nowMinute, isToday)
		opt := BarberOption{
			Barber:        c.Barber,
			NextAvailable: NoNext,
			QueueLength:   c.QueueLength,
		}
		for _, s := range slots {
			if !s.Bookable {
				continue
			}
			if opt.NextAvailable == NoNext {
				opt.NextAvailable = s.StartMinute
			}
			opt.AvailableCount++
		}
		opt.Score = score(opt)
		out = append(out, opt)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.AvailableCount != b.AvailableCount {
			return a.AvailableCount > b.AvailableCount
		}
		if a.QueueLength != b.QueueLength {
			return a.QueueLength < b.QueueLength
		}
		if a.Barber.AvgRating != b.Barber.AvgRating {
			return a.Barber.AvgRating > b.Barber.AvgRating
		}
		return a.Barber.ID < b.Barber.ID
	})
	return out
}

// score folds the ranking signals into one number for clients that want a bar
func score(o BarberOption) float64 {
	return float64(o.AvailableCount)*10 - float64(o.QueueLength)*2 + o.Barber.AvgRating
}
