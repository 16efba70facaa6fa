// Package service implements the schedule read facade. Everything here is
// lock-free: reads run against repository snapshots and the pure core
package service

import (
	"context"

	"trimline/internal/core/availability"
	"trimline/internal/core/policy"
	"trimline/internal/core/timeline"
	"trimline/internal/core/timemath"
	"trimline/internal/modkit/repokit"
	"trimline/internal/platform/clock"
	perr "trimline/internal/platform/errors"
	bookingrepo "trimline/internal/services/api/booking/repo"
	"trimline/internal/services/api/schedule/domain"
)

// Service defines the facade contract
type Service interface{ domain.ServicePort }

// Svc implements the Service interface
type Svc struct {
	db     repokit.TxRunner
	binder repokit.Binder[bookingrepo.Repo]
	pol    policy.Policy
	clk    clock.Clock
}

// New creates a new schedule facade over the booking repository
func New(db repokit.TxRunner, binder repokit.Binder[bookingrepo.Repo], pol policy.Policy, clk clock.Clock) *Svc {
	if db == nil {
		panic("schedule.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("schedule.Service requires a non nil Repo binder")
	}
	return &Svc{db: db, binder: binder, pol: pol, clk: clk}
}

func (s *Svc) now() (todayISO string, nowMin int) {
	return clock.TodayISO(s.clk), clock.MinuteOfDay(s.clk)
}

// dayBlocks loads one (barber, date) and builds its timeline inside a
// read transaction
func (s *Svc) dayBlocks(ctx context.Context, barberID, dateISO string) (day []timeline.Appointment, blocks []timeline.Block, err error) {
	err = s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if _, gerr := r.GetBarber(ctx, barberID); gerr != nil {
			return gerr
		}
		var derr error
		day, derr = r.ListDay(ctx, barberID, dateISO)
		return derr
	})
	if err != nil {
		return nil, nil, err
	}
	blocks, err = timeline.Build(day, s.pol)
	if err != nil {
		return nil, nil, err
	}
	return day, blocks, nil
}

// Slots classifies every candidate grid point of the day
func (s *Svc) Slots(ctx context.Context, barberID, dateISO string, serviceDuration int) ([]domain.Slot, error) {
	if err := validDate(dateISO); err != nil {
		return nil, err
	}
	if serviceDuration <= 0 {
		serviceDuration = s.pol.MinServiceDuration
	}
	_, blocks, err := s.dayBlocks(ctx, barberID, dateISO)
	if err != nil {
		return nil, err
	}
	today, nowMin := s.now()
	slots := availability.UnifiedSlots(blocks, s.pol, serviceDuration, nowMin, today == dateISO)
	out := make([]domain.Slot, 0, len(slots))
	for _, sl := range slots {
		out = append(out, domain.Slot{
			StartTime:    timemath.ToHHMM(sl.StartMinute),
			StartTime12H: timemath.To12H(sl.StartMinute),
			StartMinute:  sl.StartMinute,
			Kind:         string(sl.Kind),
			Bookable:     sl.Bookable,
			Reason:       sl.Reason,
			QueuePreview: sl.QueuePreview,
		})
	}
	return out, nil
}

// Alternatives ranks the other active, non-day-off barbers for a duration
func (s *Svc) Alternatives(ctx context.Context, dateISO string, serviceDuration int, excludeBarberID string) ([]domain.BarberOption, error) {
	if err := validDate(dateISO); err != nil {
		return nil, err
	}
	if serviceDuration <= 0 {
		serviceDuration = s.pol.MinServiceDuration
	}

	var cands []availability.Candidate
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		barbers, berr := r.ListActiveBarbers(ctx)
		if berr != nil {
			return berr
		}
		for _, b := range barbers {
			if b.ID == excludeBarberID {
				continue
			}
			off, derr := r.IsDayOff(ctx, b.ID, dateISO)
			if derr != nil {
				return derr
			}
			if off {
				continue
			}
			day, derr := r.ListDay(ctx, b.ID, dateISO)
			if derr != nil {
				return derr
			}
			blocks, terr := timeline.Build(day, s.pol)
			if terr != nil {
				return terr
			}
			cands = append(cands, availability.Candidate{
				Barber:      b,
				Blocks:      blocks,
				QueueLength: len(timeline.ActiveQueue(day)),
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	today, nowMin := s.now()
	opts := availability.FindAlternatives(cands, s.pol, serviceDuration, nowMin, today == dateISO)
	out := make([]domain.BarberOption, 0, len(opts))
	for _, o := range opts {
		dto := domain.BarberOption{
			BarberID:       o.Barber.ID,
			DisplayName:    o.Barber.DisplayName,
			Status:         string(o.Barber.Status),
			AvgRating:      o.Barber.AvgRating,
			RatingCount:    o.Barber.RatingCount,
			AvailableCount: o.AvailableCount,
			QueueLength:    o.QueueLength,
			Score:          o.Score,
		}
		if o.NextAvailable != availability.NoNext {
			dto.NextAvailable = timemath.ToHHMM(o.NextAvailable)
		}
		out = append(out, dto)
	}
	return out, nil
}

// Queue reports the active queue with estimated windows
func (s *Svc) Queue(ctx context.Context, barberID, dateISO string) (domain.QueueInfo, error) {
	if err := validDate(dateISO); err != nil {
		return domain.QueueInfo{}, err
	}
	day, blocks, err := s.dayBlocks(ctx, barberID, dateISO)
	if err != nil {
		return domain.QueueInfo{}, err
	}

	active := timeline.ActiveQueue(day)
	info := domain.QueueInfo{
		BarberID:    barberID,
		ServiceDate: dateISO,
		Length:      len(active),
		Capacity:    s.pol.MaxActiveQueue,
		WaitMin:     timeline.QueueMinutes(day),
		Entries:     make([]domain.QueueEntry, 0, len(active)),
	}
	for _, a := range active {
		e := domain.QueueEntry{
			AppointmentID: a.ID,
			Position:      a.QueuePosition,
			Priority:      string(a.Priority),
			Status:        string(a.Status),
			DurationMin:   a.DurationMin,
		}
		if start, end, ok := timeline.EstimateFor(blocks, a.ID); ok {
			e.EstimatedStart = timemath.ToHHMM(start)
			e.EstimatedEnd = timemath.ToHHMM(end)
		}
		info.Entries = append(info.Entries, e)
	}
	return info, nil
}

// Timeline returns the unified block view of the day
func (s *Svc) Timeline(ctx context.Context, barberID, dateISO string) (domain.Timeline, error) {
	if err := validDate(dateISO); err != nil {
		return domain.Timeline{}, err
	}
	_, blocks, err := s.dayBlocks(ctx, barberID, dateISO)
	if err != nil {
		return domain.Timeline{}, err
	}
	out := domain.Timeline{BarberID: barberID, ServiceDate: dateISO, Blocks: make([]domain.Block, 0, len(blocks))}
	for _, b := range blocks {
		out.Blocks = append(out.Blocks, domain.Block{
			Type:          string(b.Type),
			StartTime:     timemath.ToHHMM(b.StartMinute),
			EndTime:       timemath.ToHHMM(b.EndMinute),
			DurationMin:   b.Duration(),
			AppointmentID: b.AppointmentID,
			QueuePosition: b.QueuePosition,
			Estimated:     b.Estimated,
		})
	}
	return out, nil
}

// NextAvailable finds the earliest bookable grid point for a duration
func (s *Svc) NextAvailable(ctx context.Context, barberID, dateISO string, serviceDuration int) (domain.NextAvailable, error) {
	if err := validDate(dateISO); err != nil {
		return domain.NextAvailable{}, err
	}
	if serviceDuration <= 0 {
		serviceDuration = s.pol.MinServiceDuration
	}
	_, blocks, err := s.dayBlocks(ctx, barberID, dateISO)
	if err != nil {
		return domain.NextAvailable{}, err
	}
	today, nowMin := s.now()
	start, ok := availability.NextAvailable(blocks, s.pol, serviceDuration, nowMin, today == dateISO)
	if !ok {
		return domain.NextAvailable{}, nil
	}
	return domain.NextAvailable{Found: true, StartTime: timemath.ToHHMM(start)}, nil
}

// Summary aggregates the day for dashboards
func (s *Svc) Summary(ctx context.Context, barberID, dateISO string) (domain.DaySummary, error) {
	if err := validDate(dateISO); err != nil {
		return domain.DaySummary{}, err
	}
	day, blocks, err := s.dayBlocks(ctx, barberID, dateISO)
	if err != nil {
		return domain.DaySummary{}, err
	}

	scheduledCount := 0
	for _, a := range day {
		if a.Kind == timeline.KindScheduled && a.Status.Active() {
			scheduledCount++
		}
	}
	today, nowMin := s.now()
	bookable := 0
	for _, sl := range availability.UnifiedSlots(blocks, s.pol, s.pol.MinServiceDuration, nowMin, today == dateISO) {
		if sl.Bookable {
			bookable++
		}
	}

	scheduledMin := timeline.ScheduledMinutes(day)
	queuedMin := timeline.QueueMinutes(day)
	return domain.DaySummary{
		BarberID:       barberID,
		ServiceDate:    dateISO,
		ScheduledCount: scheduledCount,
		QueueLength:    len(timeline.ActiveQueue(day)),
		ScheduledMin:   scheduledMin,
		QueuedMin:      queuedMin,
		FreeMin:        s.pol.WorkingMinutes() - scheduledMin - queuedMin,
		BookableSlots:  bookable,
	}, nil
}

func validDate(dateISO string) error {
	if len(dateISO) != 10 || dateISO[4] != '-' || dateISO[7] != '-' {
		return perr.InvalidRequestf("date %q is not YYYY-MM-DD", dateISO)
	}
	return nil
}
