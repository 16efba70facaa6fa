package domain

import "context"

// ServicePort defines the coordinator contract for booking mutations
type ServicePort interface {
	Book(ctx context.Context, in BookInput) (BookingResult, error)
	Cancel(ctx context.Context, appointmentID string) (MutationResult, error)
	TransitionStatus(ctx context.Context, appointmentID, newStatus string) (MutationResult, error)
	ChangePriority(ctx context.Context, appointmentID, newPriority string) (MutationResult, error)
	MoveQueuePosition(ctx context.Context, appointmentID string, newPosition int) (MutationResult, error)
	PromoteQueueToScheduled(ctx context.Context, appointmentID string) (MutationResult, error)
	DemoteScheduledToQueue(ctx context.Context, appointmentID string) (MutationResult, error)
	Reschedule(ctx context.Context, appointmentID, newStart string) (MutationResult, error)
	History(ctx context.Context, appointmentID string) ([]HistoryEntry, error)
}
