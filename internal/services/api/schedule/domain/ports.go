package domain

import "context"

// ServicePort defines the read facade contract for schedules
type ServicePort interface {
	Slots(ctx context.Context, barberID, dateISO string, serviceDuration int) ([]Slot, error)
	Alternatives(ctx context.Context, dateISO string, serviceDuration int, excludeBarberID string) ([]BarberOption, error)
	Queue(ctx context.Context, barberID, dateISO string) (QueueInfo, error)
	Timeline(ctx context.Context, barberID, dateISO string) (Timeline, error)
	NextAvailable(ctx context.Context, barberID, dateISO string, serviceDuration int) (NextAvailable, error)
	Summary(ctx context.Context, barberID, dateISO string) (DaySummary, error)
}
