// Package events carries appointment change notifications to live views and
// notifiers. Delivery is at-least-once and ordered per (barber, date);
// subscribers that fall behind lose oldest events and see a gap marker
package events

import (
	"time"

	"trimline/internal/core/timeline"

	"github.com/google/uuid"
)

// Type names one kind of change event
type Type string

// Event types
const (
	TypeAppointmentCreated       Type = "AppointmentCreated"
	TypeAppointmentCancelled     Type = "AppointmentCancelled"
	TypeAppointmentStatusChanged Type = "AppointmentStatusChanged"
	TypeQueuePositionChanged     Type = "QueuePositionChanged"
	TypeQueuePriorityChanged     Type = "QueuePriorityChanged"
	TypeScheduledTimeChanged     Type = "ScheduledTimeChanged"
)

// Change is the before/after projection of the mutable appointment fields
type Change struct {
	Status        timeline.Status   `json:"status,omitempty"`
	StartMinute   int               `json:"start_minute"`
	QueuePosition int               `json:"queue_position"`
	Priority      timeline.Priority `json:"priority,omitempty"`
	Kind          timeline.Kind     `json:"kind,omitempty"`
}

// Snapshot projects an appointment into its Change form
func Snapshot(a timeline.Appointment) Change {
	return Change{
		Status:        a.Status,
		StartMinute:   a.StartMinute,
		QueuePosition: a.QueuePosition,
		Priority:      a.Priority,
		Kind:          a.Kind,
	}
}

// Event is one change record on the stream.
// Sequence increases strictly per (barber, date); GapBefore is set on the
// first event a lagging subscriber receives after drops
type Event struct {
	ID            string    `json:"id"`
	Type          Type      `json:"event_type"`
	BarberID      string    `json:"barber_id"`
	ServiceDate   string    `json:"service_date"`
	AppointmentID string    `json:"appointment_id"`
	Sequence      uint64    `json:"sequence"`
	Before        *Change   `json:"before,omitempty"`
	After         *Change   `json:"after,omitempty"`
	Version       int64     `json:"version"`
	OccurredAt    time.Time `json:"occurred_at"`
	GapBefore     bool      `json:"gap_before,omitempty"`
}

// New builds an event for an appointment mutation; before may be nil on create
func New(t Type, after timeline.Appointment, before *Change, at time.Time) Event {
	a := Snapshot(after)
	return Event{
		ID:            uuid.NewString(),
		Type:          t,
		BarberID:      after.BarberID,
		ServiceDate:   after.ServiceDate,
		AppointmentID: after.ID,
		Before:        before,
		After:         &a,
		Version:       after.Version,
		OccurredAt:    at,
	}
}
