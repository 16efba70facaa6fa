// Package timeline reconstructs the unified day view for one (barber, date).
// Build is pure and deterministic: same snapshot and policy, same blocks
package timeline

import (
	"sort"

	"trimline/internal/core/policy"
	"trimline/internal/core/timemath"

	perr "trimline/internal/platform/errors"
)

// BlockType classifies a stretch of the day
type BlockType string

// Block types
const (
	BlockScheduled BlockType = "scheduled"
	BlockQueue     BlockType = "queue"
	BlockLunch     BlockType = "lunch"
	BlockGap       BlockType = "gap"
)

// Block is one stretch of the unified timeline.
// Queue blocks carry estimated times only; their stored rows stay timeless
type Block struct {
	Type          BlockType
	StartMinute   int
	EndMinute     int
	AppointmentID string
	QueuePosition int
	Estimated     bool
}

// Duration is the block length in minutes
func (b Block) Duration() int { return b.EndMinute - b.StartMinute }

// Build assembles the ordered block sequence for one day from the active
// rows of a snapshot. Inactive rows are ignored. A snapshot violating the
// storage invariants is reported as Internal and never silently corrected
func Build(appts []Appointment, p policy.Policy) ([]Block, error) {
	scheduled, queue, err := partition(appts, p)
	if err != nil {
		return nil, err
	}

	// lunch sits in the obstacle list like a fixed appointment
	type obstacle struct {
		start, end int
		id         string
		lunch      bool
	}
	obs := make([]obstacle, 0, len(scheduled)+1)
	for _, a := range scheduled {
		obs = append(obs, obstacle{start: a.StartMinute, end: a.EndMinute(), id: a.ID})
	}
	obs = append(obs, obstacle{start: p.LunchStart, end: p.LunchEnd, lunch: true})
	sort.Slice(obs, func(i, j int) bool { return obs[i].start < obs[j].start })

	blocks := make([]Block, 0, len(appts)+len(obs)+2)
	cursor := p.WorkStart
	qi := 0

	// placeQueue fills [cursor,limit) with queue blocks in order, stopping at
	// the first one that does not fit entirely
	placeQueue := func(limit int) {
		for qi < len(queue) {
			a := queue[qi]
			if cursor+a.DurationMin > limit {
				return
			}
			blocks = append(blocks, Block{
				Type:          BlockQueue,
				StartMinute:   cursor,
				EndMinute:     cursor + a.DurationMin,
				AppointmentID: a.ID,
				QueuePosition: a.QueuePosition,
				Estimated:     true,
			})
			cursor += a.DurationMin
			qi++
		}
	}

	for _, ob := range obs {
		if cursor < ob.start {
			placeQueue(ob.start)
			if cursor < ob.start {
				blocks = append(blocks, Block{Type: BlockGap, StartMinute: cursor, EndMinute: ob.start})
				cursor = ob.start
			}
		}
		bt := BlockScheduled
		if ob.lunch {
			bt = BlockLunch
		}
		blocks = append(blocks, Block{Type: bt, StartMinute: ob.start, EndMinute: ob.end, AppointmentID: ob.id})
		if ob.end > cursor {
			cursor = ob.end
		}
	}

	// remaining queue rows run out past the last obstacle; admission policy
	// keeps them inside the day, but the builder stays total if they spill
	for qi < len(queue) {
		a := queue[qi]
		blocks = append(blocks, Block{
			Type:          BlockQueue,
			StartMinute:   cursor,
			EndMinute:     cursor + a.DurationMin,
			AppointmentID: a.ID,
			QueuePosition: a.QueuePosition,
			Estimated:     true,
		})
		cursor += a.DurationMin
		qi++
	}

	if cursor < p.WorkEnd {
		blocks = append(blocks, Block{Type: BlockGap, StartMinute: cursor, EndMinute: p.WorkEnd})
	}

	return blocks, nil
}

// partition splits active rows by kind, sorts them, and verifies the snapshot
func partition(appts []Appointment, p policy.Policy) (scheduled, queue []Appointment, err error) {
	for _, a := range appts {
		if !a.Status.Active() {
			continue
		}
		switch a.Kind {
		case KindScheduled:
			if a.StartMinute < 0 || a.QueuePosition != 0 {
				return nil, nil, perr.Internalf("corrupt snapshot: scheduled row %s start=%d pos=%d", a.ID, a.StartMinute, a.QueuePosition)
			}
			scheduled = append(scheduled, a)
		case KindQueue:
			if a.QueuePosition < 1 || a.StartMinute != NoStart {
				return nil, nil, perr.Internalf("corrupt snapshot: queue row %s start=%d pos=%d", a.ID, a.StartMinute, a.QueuePosition)
			}
			queue = append(queue, a)
		default:
			return nil, nil, perr.Internalf("corrupt snapshot: row %s has kind %q", a.ID, a.Kind)
		}
	}

	sort.SliceStable(scheduled, func(i, j int) bool { return scheduled[i].StartMinute < scheduled[j].StartMinute })
	sort.SliceStable(queue, func(i, j int) bool {
		ri, rj := PriorityRank(queue[i].Priority), PriorityRank(queue[j].Priority)
		if ri != rj {
			return ri < rj
		}
		return queue[i].QueuePosition < queue[j].QueuePosition
	})

	for i, a := range scheduled {
		if a.StartMinute < p.WorkStart || a.EndMinute() > p.WorkEnd {
			return nil, nil, perr.Internalf("corrupt snapshot: row %s outside working hours", a.ID)
		}
		if timemath.CrossesLunch(a.StartMinute, a.DurationMin, p.LunchStart, p.LunchEnd) {
			return nil, nil, perr.Internalf("corrupt snapshot: row %s crosses lunch", a.ID)
		}
		if i > 0 && timemath.IntervalsOverlap(scheduled[i-1].StartMinute, scheduled[i-1].EndMinute(), a.StartMinute, a.EndMinute()) {
			return nil, nil, perr.Internalf("corrupt snapshot: rows %s and %s overlap", scheduled[i-1].ID, a.ID)
		}
	}

	return scheduled, queue, nil
}

// EstimateFor returns the estimated or committed interval of an appointment
// on the built timeline
func EstimateFor(blocks []Block, apptID string) (start, end int, ok bool) {
	for _, b := range blocks {
		if b.AppointmentID == apptID && (b.Type == BlockScheduled || b.Type == BlockQueue) {
			return b.StartMinute, b.EndMinute, true
		}
	}
	return 0, 0, false
}

// ScheduledMinutes sums the committed durations of active scheduled rows
func ScheduledMinutes(appts []Appointment) int {
	n := 0
	for _, a := range appts {
		if a.Kind == KindScheduled && a.Status.Active() {
			n += a.DurationMin
		}
	}
	return n
}

// QueueMinutes sums the durations of active queue rows
func QueueMinutes(appts []Appointment) int {
	n := 0
	for _, a := range appts {
		if a.Kind == KindQueue && a.Status.Active() {
			n += a.DurationMin
		}
	}
	return n
}

// ActiveQueue returns the active queue rows sorted by position
func ActiveQueue(appts []Appointment) []Appointment {
	var out []Appointment
	for _, a := range appts {
		if a.Kind == KindQueue && a.Status.Active() {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].QueuePosition < out[j].QueuePosition })
	return out
}
