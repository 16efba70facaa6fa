package timeline

import "time"

// Kind splits appointments into time-bound and position-bound
type Kind string

// Appointment kinds
const (
	KindScheduled Kind = "scheduled"
	KindQueue     Kind = "queue"
)

// Priority orders queue appointments; urgent jumps the line
type Priority string

// Queue priorities
const (
	PriorityUrgent Priority = "urgent"
	PriorityHigh   Priority = "high"
	PriorityNormal Priority = "normal"
	PriorityLow    Priority = "low"
)

// PriorityRank maps a priority to its sort rank, urgent first.
// Unknown values rank as normal
func PriorityRank(p Priority) int {
	switch p {
	case PriorityUrgent:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Status is the appointment lifecycle state
type Status string

// Appointment statuses
const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusOngoing   Status = "ongoing"
	StatusDone      Status = "done"
	StatusCancelled Status = "cancelled"
	StatusNoShow    Status = "no_show"
)

// Active reports whether the status keeps the row on the live timeline
func (s Status) Active() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusOngoing:
		return true
	}
	return false
}

var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled, StatusNoShow},
	StatusConfirmed: {StatusOngoing, StatusCancelled, StatusNoShow},
	StatusOngoing:   {StatusDone},
}

// CanTransition reports whether the status state machine permits from -> to
func CanTransition(from, to Status) bool {
	for _, t := range transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// AllowedTransitions lists the states reachable from the given status
func AllowedTransitions(from Status) []Status {
	out := make([]Status, len(transitions[from]))
	copy(out, transitions[from])
	return out
}

// NoStart marks the start minute of queue appointments
const NoStart = -1

// FriendBlock carries contact details when booking for someone else
type FriendBlock struct {
	Name              string
	Phone             string
	Email             string
	PrimaryCustomerID string
}

// Appointment is the engine's view of one stored row.
// StartMinute is NoStart for queue kind; QueuePosition is 0 for scheduled kind
type Appointment struct {
	ID            string
	BarberID      string
	CustomerID    string
	ServiceDate   string
	Kind          Kind
	StartMinute   int
	QueuePosition int
	Priority      Priority
	Status        Status
	DurationMin   int
	ServiceIDs    []string
	AddOnIDs      []string
	TotalPrice    int64
	Notes         string
	Friend        *FriendBlock
	CreatedAt     time.Time
	UpdatedAt     time.Time
	Version       int64
}

// EndMinute is the exclusive end of a scheduled appointment's interval
func (a Appointment) EndMinute() int {
	if a.Kind != KindScheduled {
		return NoStart
	}
	return a.StartMinute + a.DurationMin
}
