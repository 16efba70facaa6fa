// Package service implements the booking coordinator. Every mutation on a
// (barber, date) timeline is serialized by a keyed mutex, validated against
// policy, applied in one transaction, and announced on the event bus
package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"trimline/internal/core/availability"
	"trimline/internal/core/policy"
	"trimline/internal/core/timeline"
	"trimline/internal/core/timemath"
	"trimline/internal/events"
	"trimline/internal/modkit/repokit"
	"trimline/internal/platform/clock"
	perr "trimline/internal/platform/errors"
	"trimline/internal/platform/keymutex"
	"trimline/internal/platform/logger"
	"trimline/internal/platform/store"
	"trimline/internal/services/api/booking/domain"
	"trimline/internal/services/api/booking/repo"
	"trimline/internal/services/catalog"
)

// Service defines the coordinator contract
type Service interface{ domain.ServicePort }

// conflictRetries bounds re-reads after a VersionConflict before surfacing it
const conflictRetries = 2

// suggestion payload limits keep rejections cheap
const (
	maxSlotSuggestions   = 5
	maxBarberSuggestions = 3
	nextDateScanDays     = 14
)

// Svc implements the Service interface
type Svc struct {
	db      repokit.TxRunner
	binder  repokit.Binder[repo.Repo]
	catalog *catalog.Cache
	pol     policy.Policy
	clk     clock.Clock
	locks   *keymutex.KeyMutex
	bus     events.Publisher
	log     logger.Logger
}

// New creates a new booking coordinator
func New(
	db repokit.TxRunner,
	binder repokit.Binder[repo.Repo],
	cat *catalog.Cache,
	pol policy.Policy,
	clk clock.Clock,
	bus events.Publisher,
	log logger.Logger,
) *Svc {
	if db == nil {
		panic("booking.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("booking.Service requires a non nil Repo binder")
	}
	if cat == nil {
		panic("booking.Service requires a catalog cache")
	}
	return &Svc{
		db: db, binder: binder, catalog: cat,
		pol: pol, clk: clk,
		locks: keymutex.New(),
		bus:   bus,
		log:   log,
	}
}

func dayKey(barberID, dateISO string) string { return barberID + "|" + dateISO }

func (s *Svc) lockDay(ctx context.Context, barberID, dateISO string) (func(), error) {
	unlock, err := s.locks.Lock(ctx, dayKey(barberID, dateISO))
	if err != nil {
		return nil, perr.Timeoutf("gave up waiting for the %s/%s timeline", barberID, dateISO)
	}
	return unlock, nil
}

func (s *Svc) publish(evs []events.Event) {
	if s.bus == nil {
		return
	}
	for _, e := range evs {
		s.bus.Publish(e)
	}
}

// Book admits a new appointment, scheduled or queued
func (s *Svc) Book(ctx context.Context, in domain.BookInput) (domain.BookingResult, error) {
	snap, err := s.catalog.Snapshot(ctx)
	if err != nil {
		return domain.BookingResult{}, err
	}
	addonIDs := snap.CanonicalAddOnIDs(in.AddOnIDs)
	dur, price, err := snap.ResolveDuration(in.ServiceIDs, addonIDs)
	if err != nil {
		return domain.BookingResult{}, err
	}
	if err := s.pol.CheckDuration(dur); err != nil {
		return domain.BookingResult{}, err
	}

	now := s.clk.Now()
	today := clock.TodayISO(s.clk)
	nowMin := clock.MinuteOfDay(s.clk)
	if err := s.pol.CheckWindow(in.ServiceDate, today, nowMin); err != nil {
		return domain.BookingResult{}, s.withNextDate(ctx, in.BarberID, in.ServiceDate, dur, err)
	}

	unlock, err := s.lockDay(ctx, in.BarberID, in.ServiceDate)
	if err != nil {
		return domain.BookingResult{}, err
	}
	defer unlock()

	var (
		res domain.BookingResult
		evs []events.Event
	)
	scope := store.DayScope{BarberID: in.BarberID, DateISO: in.ServiceDate}
	err = store.RunInDay(ctx, s.db, scope, func(ctx context.Context, q store.RowQuerier) error {
		r := s.binder.Bind(q)

		if in.IdempotencyKey != "" {
			prev, found, lerr := r.ByIdempotencyKey(ctx, in.IdempotencyKey)
			if lerr != nil {
				return lerr
			}
			if found {
				day, derr := r.ListDay(ctx, prev.BarberID, prev.ServiceDate)
				if derr != nil {
					return derr
				}
				res, derr = s.resultFor(prev, day)
				return derr
			}
		}

		barber, berr := r.GetBarber(ctx, in.BarberID)
		if berr != nil {
			return berr
		}
		off, oerr := r.IsDayOff(ctx, in.BarberID, in.ServiceDate)
		if oerr != nil {
			return oerr
		}
		if perr2 := s.pol.CheckBarber(barber.Status, off); perr2 != nil {
			return s.withBarberAlternatives(ctx, r, in, dur, nowMin, perr2)
		}

		day, derr := r.ListDay(ctx, in.BarberID, in.ServiceDate)
		if derr != nil {
			return derr
		}

		row := timeline.Appointment{
			ID:          uuid.NewString(),
			BarberID:    in.BarberID,
			CustomerID:  in.CustomerID,
			ServiceDate: in.ServiceDate,
			Priority:    priorityOrNormal(in.Priority),
			Status:      timeline.StatusPending,
			DurationMin: dur,
			ServiceIDs:  in.ServiceIDs,
			AddOnIDs:    addonIDs,
			TotalPrice:  price,
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
			Version:     1,
		}
		if in.Friend != nil {
			row.Friend = &timeline.FriendBlock{
				Name:              in.Friend.Name,
				Phone:             in.Friend.Phone,
				Email:             in.Friend.Email,
				PrimaryCustomerID: in.Friend.PrimaryCustomerID,
			}
		}

		var renumber map[string]int
		switch in.Kind {
		case "scheduled":
			start, serr := s.scheduledStart(ctx, r, in, day, dur, nowMin, today == in.ServiceDate)
			if serr != nil {
				return serr
			}
			row.Kind = timeline.KindScheduled
			row.StartMinute = start
		case "queue":
			pos, mapping, qerr := s.queueSeat(ctx, in, day, dur, row.Priority)
			if qerr != nil {
				return qerr
			}
			row.Kind = timeline.KindQueue
			row.StartMinute = timeline.NoStart
			row.QueuePosition = pos
			renumber = mapping
		default:
			return perr.InvalidRequestf("kind %q is not bookable", in.Kind)
		}

		created, ierr := r.Insert(ctx, row, in.IdempotencyKey)
		if ierr != nil {
			// a concurrent call with the same key got there first
			if in.IdempotencyKey != "" && perr.IsDuplicateKey(ierr) {
				prev, found, lerr := r.ByIdempotencyKey(ctx, in.IdempotencyKey)
				if lerr == nil && found {
					day2, derr := r.ListDay(ctx, prev.BarberID, prev.ServiceDate)
					if derr != nil {
						return derr
					}
					res, derr = s.resultFor(prev, day2)
					return derr
				}
			}
			return ierr
		}
		if len(renumber) > 0 {
			if rerr := r.RenumberQueue(ctx, in.BarberID, in.ServiceDate, renumber); rerr != nil {
				return rerr
			}
		}
		if herr := r.AppendHistory(ctx, created.ID, "created", fmt.Sprintf("kind=%s", created.Kind), now); herr != nil {
			return herr
		}

		posEvs := positionEvents(day, renumber, now)
		day = applyRenumber(day, renumber)
		day = append(day, created)
		res, derr = s.resultFor(created, day)
		if derr != nil {
			return derr
		}

		evs = append(evs, events.New(events.TypeAppointmentCreated, created, nil, now))
		evs = append(evs, posEvs...)
		return nil
	})
	if err != nil {
		return domain.BookingResult{}, err
	}

	s.publish(evs)
	s.log.Info().
		Str("barber_id", in.BarberID).
		Str("service_date", in.ServiceDate).
		Str("appointment_id", res.AppointmentID).
		Str("kind", res.Kind).
		Msg("appointment booked")
	return res, nil
}

// scheduledStart validates a requested scheduled slot against policy and the
// built timeline, attaching suggestions on rejection
func (s *Svc) scheduledStart(
	ctx context.Context,
	r repo.Repo,
	in domain.BookInput,
	day []timeline.Appointment,
	dur, nowMin int,
	isToday bool,
) (int, error) {
	if in.StartTime == "" {
		return 0, perr.InvalidRequestf("scheduled bookings require start_time")
	}
	start, err := timemath.ToMinutes(in.StartTime)
	if err != nil {
		return 0, perr.InvalidRequestf("bad start_time %q", in.StartTime)
	}
	blocks, err := timeline.Build(day, s.pol)
	if err != nil {
		return 0, err
	}
	// occupancy is reported ahead of lunch and closing
	if availability.Conflicts(blocks, start, dur) {
		err := perr.SlotNotAvailablef("slot %s is already taken", in.StartTime)
		return 0, s.withSlotAlternatives(ctx, r, in, day, dur, nowMin, isToday, err)
	}
	if err := s.pol.CheckWorkingFit(start, dur); err != nil {
		return 0, s.withSlotAlternatives(ctx, r, in, day, dur, nowMin, isToday, err)
	}
	if err := s.pol.CheckLunch(start, dur); err != nil {
		return 0, s.withSlotAlternatives(ctx, r, in, day, dur, nowMin, isToday, err)
	}
	if !availability.Placeable(blocks, s.pol, start, dur, nowMin, isToday) {
		err := perr.SlotNotAvailablef("slot %s does not fit a %d min service", in.StartTime, dur)
		return 0, s.withSlotAlternatives(ctx, r, in, day, dur, nowMin, isToday, err)
	}
	return start, nil
}

// queueSeat assigns the next queue position, or seat 1 with a shift mapping
// for urgent requests
func (s *Svc) queueSeat(
	ctx context.Context,
	in domain.BookInput,
	day []timeline.Appointment,
	dur int,
	prio timeline.Priority,
) (int, map[string]int, error) {
	active := timeline.ActiveQueue(day)
	if err := s.pol.CheckQueueCap(len(active)); err != nil {
		return 0, nil, s.withNextDate(ctx, in.BarberID, in.ServiceDate, dur, err)
	}
	scheduledMin := timeline.ScheduledMinutes(day)
	queuedMin := timeline.QueueMinutes(day)
	if err := s.pol.CheckQueueBudget(scheduledMin, queuedMin, dur); err != nil {
		return 0, nil, s.withNextDate(ctx, in.BarberID, in.ServiceDate, dur, err)
	}

	if prio == timeline.PriorityUrgent {
		mapping := make(map[string]int, len(active))
		for _, a := range active {
			mapping[a.ID] = a.QueuePosition + 1
		}
		return 1, mapping, nil
	}

	maxPos := 0
	for _, a := range active {
		if a.QueuePosition > maxPos {
			maxPos = a.QueuePosition
		}
	}
	return maxPos + 1, nil, nil
}

// Cancel moves a row to cancelled and closes the queue gap it leaves
func (s *Svc) Cancel(ctx context.Context, appointmentID string) (domain.MutationResult, error) {
	return s.mutate(ctx, appointmentID, "cancelled", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if !timeline.CanTransition(cur.Status, timeline.StatusCancelled) {
			return cur, nil, perr.InvalidTransitionf("cannot cancel a %s appointment", cur.Status)
		}
		before := events.Snapshot(cur)
		wasQueue := cur.Kind == timeline.KindQueue

		next := cur
		next.Status = timeline.StatusCancelled
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}

		evs := []events.Event{events.New(events.TypeAppointmentCancelled, updated, &before, now)}
		if wasQueue {
			mapping, merr := s.closeQueueGap(ctx, r, cur, day)
			if merr != nil {
				return cur, nil, merr
			}
			evs = append(evs, positionEvents(day, mapping, now)...)
		}
		return updated, evs, nil
	})
}

// TransitionStatus applies the lifecycle state machine
func (s *Svc) TransitionStatus(ctx context.Context, appointmentID, newStatus string) (domain.MutationResult, error) {
	to := timeline.Status(newStatus)
	return s.mutate(ctx, appointmentID, "status_changed", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if !timeline.CanTransition(cur.Status, to) {
			return cur, nil, perr.InvalidTransitionf("%s -> %s is not allowed", cur.Status, to)
		}
		before := events.Snapshot(cur)
		wasActiveQueue := cur.Kind == timeline.KindQueue && cur.Status.Active()

		next := cur
		next.Status = to
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}

		evs := []events.Event{events.New(events.TypeAppointmentStatusChanged, updated, &before, now)}
		if wasActiveQueue && !to.Active() {
			mapping, merr := s.closeQueueGap(ctx, r, cur, day)
			if merr != nil {
				return cur, nil, merr
			}
			evs = append(evs, positionEvents(day, mapping, now)...)
		}
		return updated, evs, nil
	})
}

// ChangePriority updates a queue row's priority and re-derives the order
func (s *Svc) ChangePriority(ctx context.Context, appointmentID, newPriority string) (domain.MutationResult, error) {
	prio := timeline.Priority(newPriority)
	return s.mutate(ctx, appointmentID, "priority_changed", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if cur.Kind != timeline.KindQueue {
			return cur, nil, perr.InvalidRequestf("only queue appointments carry a priority")
		}
		before := events.Snapshot(cur)

		next := cur
		next.Priority = prio
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}

		// position events for this row must start from the stored state,
		// which Update already bumped
		posDay := make([]timeline.Appointment, len(day))
		copy(posDay, day)
		for i := range posDay {
			if posDay[i].ID == updated.ID {
				posDay[i] = updated
			}
		}

		// stable re-sort of the whole active queue by (rank, created_at)
		active := timeline.ActiveQueue(day)
		for i := range active {
			if active[i].ID == updated.ID {
				active[i].Priority = prio
			}
		}
		sort.SliceStable(active, func(i, j int) bool {
			ri, rj := timeline.PriorityRank(active[i].Priority), timeline.PriorityRank(active[j].Priority)
			if ri != rj {
				return ri < rj
			}
			return active[i].CreatedAt.Before(active[j].CreatedAt)
		})
		mapping := make(map[string]int)
		for i, a := range active {
			if a.QueuePosition != i+1 {
				mapping[a.ID] = i + 1
			}
		}
		// the updated row was just bumped by Update; keep its renumber in sync
		if err := r.RenumberQueue(ctx, cur.BarberID, cur.ServiceDate, mapping); err != nil {
			return cur, nil, err
		}
		if p, ok := mapping[updated.ID]; ok {
			updated.QueuePosition = p
			updated.Version++
		}

		evs := []events.Event{events.New(events.TypeQueuePriorityChanged, updated, &before, now)}
		evs = append(evs, positionEvents(posDay, mapping, now)...)
		return updated, evs, nil
	})
}

// MoveQueuePosition moves a queue row to an explicit position, shifting the
// contiguous run between old and new seats
func (s *Svc) MoveQueuePosition(ctx context.Context, appointmentID string, newPosition int) (domain.MutationResult, error) {
	return s.mutate(ctx, appointmentID, "position_moved", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if cur.Kind != timeline.KindQueue {
			return cur, nil, perr.InvalidRequestf("only queue appointments have a position")
		}
		active := timeline.ActiveQueue(day)
		if newPosition < 1 || newPosition > len(active) {
			return cur, nil, perr.InvalidRequestf("position %d is outside 1..%d", newPosition, len(active))
		}

		// reorder locally, then diff into a renumber mapping
		order := make([]timeline.Appointment, 0, len(active))
		for _, a := range active {
			if a.ID != cur.ID {
				order = append(order, a)
			}
		}
		idx := newPosition - 1
		order = append(order[:idx], append([]timeline.Appointment{cur}, order[idx:]...)...)
		mapping := make(map[string]int)
		for i, a := range order {
			if a.QueuePosition != i+1 {
				mapping[a.ID] = i + 1
			}
		}
		if err := r.RenumberQueue(ctx, cur.BarberID, cur.ServiceDate, mapping); err != nil {
			return cur, nil, err
		}

		updated := cur
		if p, ok := mapping[cur.ID]; ok {
			updated.QueuePosition = p
			updated.Version++
			updated.UpdatedAt = now
		}
		return updated, positionEvents(day, mapping, now), nil
	})
}

// PromoteQueueToScheduled commits a queue row to the earliest bookable slot
func (s *Svc) PromoteQueueToScheduled(ctx context.Context, appointmentID string) (domain.MutationResult, error) {
	return s.mutate(ctx, appointmentID, "promoted", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if cur.Kind != timeline.KindQueue {
			return cur, nil, perr.InvalidRequestf("appointment %s is not queued", cur.ID)
		}
		before := events.Snapshot(cur)
		today := clock.TodayISO(s.clk)
		nowMin := clock.MinuteOfDay(s.clk)

		// the row leaves the queue, so find its slot on a timeline without it
		blocks, err := timeline.Build(exclude(day, cur.ID), s.pol)
		if err != nil {
			return cur, nil, err
		}
		slot, ok := availability.NextAvailable(blocks, s.pol, cur.DurationMin, nowMin, today == cur.ServiceDate)
		if !ok {
			return cur, nil, perr.SlotNotAvailablef("no bookable slot fits %d min today", cur.DurationMin)
		}

		next := cur
		next.Kind = timeline.KindScheduled
		next.StartMinute = slot
		next.QueuePosition = 0
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}

		mapping, merr := s.closeQueueGap(ctx, r, cur, day)
		if merr != nil {
			return cur, nil, merr
		}
		evs := []events.Event{events.New(events.TypeScheduledTimeChanged, updated, &before, now)}
		evs = append(evs, positionEvents(day, mapping, now)...)
		return updated, evs, nil
	})
}

// DemoteScheduledToQueue sends a scheduled row to the queue tail
func (s *Svc) DemoteScheduledToQueue(ctx context.Context, appointmentID string) (domain.MutationResult, error) {
	return s.mutate(ctx, appointmentID, "demoted", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if cur.Kind != timeline.KindScheduled {
			return cur, nil, perr.InvalidRequestf("appointment %s is not scheduled", cur.ID)
		}
		before := events.Snapshot(cur)

		active := timeline.ActiveQueue(day)
		if err := s.pol.CheckQueueCap(len(active)); err != nil {
			return cur, nil, err
		}
		maxPos := 0
		for _, a := range active {
			if a.QueuePosition > maxPos {
				maxPos = a.QueuePosition
			}
		}

		next := cur
		next.Kind = timeline.KindQueue
		next.StartMinute = timeline.NoStart
		next.QueuePosition = maxPos + 1
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}
		return updated, []events.Event{events.New(events.TypeScheduledTimeChanged, updated, &before, now)}, nil
	})
}

// Reschedule moves a scheduled row to a new start time
func (s *Svc) Reschedule(ctx context.Context, appointmentID, newStart string) (domain.MutationResult, error) {
	return s.mutate(ctx, appointmentID, "rescheduled", func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error) {
		if cur.Kind != timeline.KindScheduled {
			return cur, nil, perr.InvalidRequestf("appointment %s is not scheduled", cur.ID)
		}
		start, err := timemath.ToMinutes(newStart)
		if err != nil {
			return cur, nil, perr.InvalidRequestf("bad start_time %q", newStart)
		}
		today := clock.TodayISO(s.clk)
		nowMin := clock.MinuteOfDay(s.clk)
		blocks, err := timeline.Build(exclude(day, cur.ID), s.pol)
		if err != nil {
			return cur, nil, err
		}
		if availability.Conflicts(blocks, start, cur.DurationMin) {
			return cur, nil, perr.SlotNotAvailablef("slot %s is already taken", newStart)
		}
		if err := s.pol.CheckWorkingFit(start, cur.DurationMin); err != nil {
			return cur, nil, err
		}
		if err := s.pol.CheckLunch(start, cur.DurationMin); err != nil {
			return cur, nil, err
		}
		if !availability.Placeable(blocks, s.pol, start, cur.DurationMin, nowMin, today == cur.ServiceDate) {
			return cur, nil, perr.SlotNotAvailablef("slot %s does not fit a %d min service", newStart, cur.DurationMin)
		}
		before := events.Snapshot(cur)

		next := cur
		next.StartMinute = start
		next.UpdatedAt = now
		updated, err := r.Update(ctx, next, cur.Version)
		if err != nil {
			return cur, nil, err
		}
		return updated, []events.Event{events.New(events.TypeScheduledTimeChanged, updated, &before, now)}, nil
	})
}

// History returns the audit trail of an appointment
func (s *Svc) History(ctx context.Context, appointmentID string) ([]domain.HistoryEntry, error) {
	var out []domain.HistoryEntry
	err := s.db.Tx(ctx, func(q repokit.Queryer) error {
		r := s.binder.Bind(q)
		if _, err := r.Get(ctx, appointmentID); err != nil {
			return err
		}
		var e error
		out, e = r.History(ctx, appointmentID)
		return e
	})
	return out, err
}

// mutate wraps the shared choreography of all non-book mutations: locate the
// row, lock its day, run fn in a transaction with a fresh snapshot, retry on
// version conflicts, record history, publish events
func (s *Svc) mutate(
	ctx context.Context,
	appointmentID, action string,
	fn func(r repo.Repo, cur timeline.Appointment, day []timeline.Appointment, now time.Time) (timeline.Appointment, []events.Event, error),
) (domain.MutationResult, error) {
	probe, err := s.binder.Bind(s.db).Get(ctx, appointmentID)
	if err != nil {
		return domain.MutationResult{}, err
	}

	unlock, err := s.lockDay(ctx, probe.BarberID, probe.ServiceDate)
	if err != nil {
		return domain.MutationResult{}, err
	}
	defer unlock()

	scope := store.DayScope{BarberID: probe.BarberID, DateISO: probe.ServiceDate}
	var (
		final timeline.Appointment
		evs   []events.Event
	)
	for attempt := 0; ; attempt++ {
		evs = evs[:0]
		err = store.RunInDay(ctx, s.db, scope, func(ctx context.Context, q store.RowQuerier) error {
			r := s.binder.Bind(q)
			cur, gerr := r.Get(ctx, appointmentID)
			if gerr != nil {
				return gerr
			}
			day, derr := r.ListDay(ctx, cur.BarberID, cur.ServiceDate)
			if derr != nil {
				return derr
			}
			now := s.clk.Now()
			updated, es, ferr := fn(r, cur, day, now)
			if ferr != nil {
				return ferr
			}
			if herr := r.AppendHistory(ctx, appointmentID, action, "", now); herr != nil {
				return herr
			}
			final = updated
			evs = es
			return nil
		})
		if err == nil || !perr.IsCode(err, perr.ErrorCodeVersionConflict) || attempt >= conflictRetries {
			break
		}
		s.log.Warn().Str("appointment_id", appointmentID).Int("attempt", attempt+1).Msg("version conflict, retrying with fresh snapshot")
	}
	if err != nil {
		return domain.MutationResult{}, err
	}

	s.publish(evs)
	return mutationResult(final), nil
}

// closeQueueGap renumbers the active queue to stay contiguous after one row
// left it. The leaving row must already be updated or excluded
func (s *Svc) closeQueueGap(ctx context.Context, r repo.Repo, left timeline.Appointment, day []timeline.Appointment) (map[string]int, error) {
	active := timeline.ActiveQueue(exclude(day, left.ID))
	mapping := make(map[string]int)
	for i, a := range active {
		if a.QueuePosition != i+1 {
			mapping[a.ID] = i + 1
		}
	}
	if err := r.RenumberQueue(ctx, left.BarberID, left.ServiceDate, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// resultFor computes the booking response, estimating times from the rebuilt
// timeline
func (s *Svc) resultFor(a timeline.Appointment, day []timeline.Appointment) (domain.BookingResult, error) {
	blocks, err := timeline.Build(day, s.pol)
	if err != nil {
		return domain.BookingResult{}, err
	}
	res := domain.BookingResult{
		AppointmentID: a.ID,
		Kind:          string(a.Kind),
		Version:       a.Version,
	}
	if a.Kind == timeline.KindScheduled {
		res.StartTime = timemath.ToHHMMSS(a.StartMinute)
	} else {
		res.QueuePosition = a.QueuePosition
	}
	if start, end, ok := timeline.EstimateFor(blocks, a.ID); ok {
		res.EstimatedStartTime = timemath.ToHHMM(start)
		res.EstimatedEndTime = timemath.ToHHMM(end)
	}
	return res, nil
}

// withSlotAlternatives attaches same-day slots and other barbers to a
// scheduled-slot rejection, best effort
func (s *Svc) withSlotAlternatives(
	ctx context.Context,
	r repo.Repo,
	in domain.BookInput,
	day []timeline.Appointment,
	dur, nowMin int,
	isToday bool,
	cause error,
) error {
	sug := domain.Suggestions{}

	if blocks, err := timeline.Build(day, s.pol); err == nil {
		for _, sl := range availability.UnifiedSlots(blocks, s.pol, dur, nowMin, isToday) {
			if sl.Bookable {
				sug.AlternativeSlots = append(sug.AlternativeSlots, timemath.ToHHMM(sl.StartMinute))
				if len(sug.AlternativeSlots) == maxSlotSuggestions {
					break
				}
			}
		}
	}

	sug.AlternativeBarbers = s.barberAlternatives(ctx, r, in, dur, nowMin, isToday)
	if len(sug.AlternativeSlots) == 0 && len(sug.AlternativeBarbers) == 0 {
		return cause
	}
	return perr.WithSuggestions(cause, sug)
}

// withBarberAlternatives attaches other barbers to a day-off or offline
// rejection
func (s *Svc) withBarberAlternatives(
	ctx context.Context,
	r repo.Repo,
	in domain.BookInput,
	dur, nowMin int,
	cause error,
) error {
	today := clock.TodayISO(s.clk)
	alts := s.barberAlternatives(ctx, r, in, dur, nowMin, today == in.ServiceDate)
	if len(alts) == 0 {
		return cause
	}
	return perr.WithSuggestions(cause, domain.Suggestions{AlternativeBarbers: alts})
}

func (s *Svc) barberAlternatives(
	ctx context.Context,
	r repo.Repo,
	in domain.BookInput,
	dur, nowMin int,
	isToday bool,
) []domain.BarberSuggestion {
	barbers, err := r.ListActiveBarbers(ctx)
	if err != nil {
		return nil
	}
	var cands []availability.Candidate
	for _, b := range barbers {
		if b.ID == in.BarberID {
			continue
		}
		if off, derr := r.IsDayOff(ctx, b.ID, in.ServiceDate); derr != nil || off {
			continue
		}
		day, derr := r.ListDay(ctx, b.ID, in.ServiceDate)
		if derr != nil {
			continue
		}
		blocks, berr := timeline.Build(day, s.pol)
		if berr != nil {
			continue
		}
		cands = append(cands, availability.Candidate{
			Barber:      b,
			Blocks:      blocks,
			QueueLength: len(timeline.ActiveQueue(day)),
		})
	}

	var out []domain.BarberSuggestion
	for _, opt := range availability.FindAlternatives(cands, s.pol, dur, nowMin, isToday) {
		if opt.AvailableCount == 0 {
			continue
		}
		bs := domain.BarberSuggestion{
			BarberID:       opt.Barber.ID,
			DisplayName:    opt.Barber.DisplayName,
			AvailableCount: opt.AvailableCount,
			QueueLength:    opt.QueueLength,
			Score:          opt.Score,
		}
		if opt.NextAvailable != availability.NoNext {
			bs.NextAvailable = timemath.ToHHMM(opt.NextAvailable)
		}
		out = append(out, bs)
		if len(out) == maxBarberSuggestions {
			break
		}
	}
	return out
}

// withNextDate scans forward for the first date with enough free minutes and
// attaches it to a window or capacity rejection
func (s *Svc) withNextDate(ctx context.Context, barberID, fromDate string, dur int, cause error) error {
	from, err := time.Parse("2006-01-02", fromDate)
	if err != nil {
		return cause
	}
	today, terr := time.Parse("2006-01-02", clock.TodayISO(s.clk))
	if terr == nil && today.After(from) {
		from = today
	}

	r := s.binder.Bind(s.db)
	budget := s.pol.WorkingMinutes()
	for d := 1; d <= nextDateScanDays; d++ {
		date := from.AddDate(0, 0, d).Format("2006-01-02")
		if off, derr := r.IsDayOff(ctx, barberID, date); derr != nil || off {
			continue
		}
		day, derr := r.ListDay(ctx, barberID, date)
		if derr != nil {
			continue
		}
		free := budget - timeline.ScheduledMinutes(day) - timeline.QueueMinutes(day)
		if free >= dur {
			return perr.WithSuggestions(cause, domain.Suggestions{NextAvailableDate: date})
		}
	}
	return cause
}

// helpers

func priorityOrNormal(p string) timeline.Priority {
	if p == "" {
		return timeline.PriorityNormal
	}
	return timeline.Priority(p)
}

func exclude(day []timeline.Appointment, id string) []timeline.Appointment {
	out := make([]timeline.Appointment, 0, len(day))
	for _, a := range day {
		if a.ID != id {
			out = append(out, a)
		}
	}
	return out
}

func applyRenumber(day []timeline.Appointment, mapping map[string]int) []timeline.Appointment {
	if len(mapping) == 0 {
		return day
	}
	out := make([]timeline.Appointment, len(day))
	copy(out, day)
	for i := range out {
		if p, ok := mapping[out[i].ID]; ok {
			out[i].QueuePosition = p
			out[i].Version++
		}
	}
	return out
}

// positionEvents emits one QueuePositionChanged per renumbered row.
// day is the pre-renumber snapshot, so before positions are the stored ones
func positionEvents(day []timeline.Appointment, mapping map[string]int, now time.Time) []events.Event {
	if len(mapping) == 0 {
		return nil
	}
	byID := make(map[string]timeline.Appointment, len(day))
	for _, a := range day {
		byID[a.ID] = a
	}
	// deterministic order for subscribers
	ids := make([]string, 0, len(mapping))
	for id := range mapping {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]events.Event, 0, len(ids))
	for _, id := range ids {
		a, ok := byID[id]
		if !ok {
			continue
		}
		before := events.Snapshot(a)
		after := a
		after.QueuePosition = mapping[id]
		after.Version++
		out = append(out, events.New(events.TypeQueuePositionChanged, after, &before, now))
	}
	return out
}

func mutationResult(a timeline.Appointment) domain.MutationResult {
	res := domain.MutationResult{
		AppointmentID: a.ID,
		Kind:          string(a.Kind),
		Status:        string(a.Status),
		Priority:      string(a.Priority),
		Version:       a.Version,
	}
	if a.Kind == timeline.KindScheduled && a.StartMinute != timeline.NoStart {
		res.StartTime = timemath.ToHHMMSS(a.StartMinute)
	}
	if a.Kind == timeline.KindQueue {
		res.QueuePosition = a.QueuePosition
	}
	return res
}
