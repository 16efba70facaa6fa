package events

import (
	"sync"

	"trimline/internal/platform/logger"
)

// Publisher is the seam the coordinator writes through
type Publisher interface {
	Publish(e Event)
}

// Bus is an in-process fan-out with bounded per-subscriber buffers.
// Publish never blocks on slow subscribers
type Bus struct {
	mu     sync.Mutex
	seq    map[string]uint64
	subs   map[int]*subscriber
	nextID int
	buf    int
	log    logger.Logger
}

type subscriber struct {
	ch  chan Event
	gap bool // events were dropped since the last delivery
}

// NewBus builds a bus with the given per-subscriber buffer size
func NewBus(bufferSize int, log logger.Logger) *Bus {
	if bufferSize < 1 {
		bufferSize = 1
	}
	return &Bus{
		seq:  make(map[string]uint64),
		subs: make(map[int]*subscriber),
		buf:  bufferSize,
		log:  log,
	}
}

// Subscribe registers a new stream; the returned cancel func closes it.
// Events published before Subscribe are not replayed
func (b *Bus) Subscribe() (<-chan Event, func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	s := &subscriber{ch: make(chan Event, b.buf)}
	b.subs[id] = s

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if cur, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(cur.ch)
		}
	}
	return s.ch, cancel
}

// Publish stamps the per-(barber, date) sequence and fans the event out.
// A full subscriber loses its oldest buffered event; the replacement event
// carries GapBefore on that stream
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	key := e.BarberID + "|" + e.ServiceDate
	b.seq[key]++
	e.Sequence = b.seq[key]

	for _, s := range b.subs {
		ev := e
		if s.gap {
			ev.GapBefore = true
		}
		select {
		case s.ch <- ev:
			s.gap = false
		default:
			// drop the oldest buffered event to make room
			select {
			case <-s.ch:
			default:
			}
			s.gap = true
			ev.GapBefore = true
			select {
			case s.ch <- ev:
				s.gap = false
			default:
			}
			b.log.Warn().
				Str("barber_id", e.BarberID).
				Str("service_date", e.ServiceDate).
				Uint64("sequence", e.Sequence).
				Msg("event subscriber lagging; dropped oldest")
		}
	}
}

// Seq returns the last sequence issued for a (barber, date), zero when none
func (b *Bus) Seq(barberID, dateISO string) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.seq[barberID+"|"+dateISO]
}
