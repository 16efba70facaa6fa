package availability

import (
	"testing"

	"trimline/internal/core/policy"
	"trimline/internal/core/timeline"
)

func mustBuild(t *testing.T, appts []timeline.Appointment, p policy.Policy) []timeline.Block {
	t.Helper()
	blocks, err := timeline.Build(appts, p)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return blocks
}

func sched(id string, start, dur int) timeline.Appointment {
	return timeline.Appointment{
		ID: id, Kind: timeline.KindScheduled, StartMinute: start, DurationMin: dur,
		Priority: timeline.PriorityNormal, Status: timeline.StatusPending,
	}
}

func queued(id string, pos, dur int) timeline.Appointment {
	return timeline.Appointment{
		ID: id, Kind: timeline.KindQueue, StartMinute: timeline.NoStart, QueuePosition: pos,
		DurationMin: dur, Priority: timeline.PriorityNormal, Status: timeline.StatusPending,
	}
}

func slotAt(slots []Slot, minute int) Slot {
	for _, s := range slots {
		if s.StartMinute == minute {
			return s
		}
	}
	return Slot{StartMinute: -1}
}

func TestUnifiedSlots_EmptyDay(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, nil, p)
	slots := UnifiedSlots(blocks, p, 30, 0, false)

	if len(slots) != 18 {
		t.Fatalf("expected 18 grid points for a 9h day, got %d", len(slots))
	}
	if s := slotAt(slots, 480); s.Kind != SlotAvailable || !s.Bookable {
		t.Fatalf("08:00 should be bookable, got %+v", s)
	}
	if s := slotAt(slots, 720); s.Kind != SlotLunch || s.Bookable {
		t.Fatalf("12:00 should be lunch, got %+v", s)
	}
	if s := slotAt(slots, 750); s.Kind != SlotLunch {
		t.Fatalf("12:30 should be lunch, got %+v", s)
	}
	if s := slotAt(slots, 990); s.Kind != SlotAvailable || !s.Bookable {
		t.Fatalf("16:30 should be bookable for 30 min, got %+v", s)
	}
}

func TestUnifiedSlots_ScheduledAndQueueMarking(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, []timeline.Appointment{
		sched("s1", 540, 60),  // 09:00-10:00
		queued("q1", 1, 30),   // estimated 08:00-08:30
	}, p)
	slots := UnifiedSlots(blocks, p, 30, 0, false)

	if s := slotAt(slots, 540); s.Kind != SlotScheduled {
		t.Fatalf("09:00 should be scheduled, got %+v", s)
	}
	if s := slotAt(slots, 570); s.Kind != SlotScheduled {
		t.Fatalf("09:30 is inside the scheduled hour, got %+v", s)
	}
	if s := slotAt(slots, 480); s.Kind != SlotQueue || s.QueuePreview != 1 {
		t.Fatalf("08:00 should show the queued row, got %+v", s)
	}
	if s := slotAt(slots, 510); s.Kind != SlotAvailable || !s.Bookable {
		t.Fatalf("08:30 should be bookable, got %+v", s)
	}
}

func TestUnifiedSlots_PastToday(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, nil, p)
	slots := UnifiedSlots(blocks, p, 30, 600, true) // now 10:00

	if s := slotAt(slots, 480); s.Kind != SlotPast {
		t.Fatalf("08:00 should be past at 10:00, got %+v", s)
	}
	if s := slotAt(slots, 570); s.Kind != SlotPast {
		t.Fatalf("09:30 should be past, got %+v", s)
	}
	if s := slotAt(slots, 600); s.Kind != SlotAvailable || !s.Bookable {
		t.Fatalf("10:00 itself should be bookable, got %+v", s)
	}
}

func TestUnifiedSlots_TooLongForGap(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, []timeline.Appointment{sched("s1", 540, 60)}, p)
	slots := UnifiedSlots(blocks, p, 60, 0, false)

	// 08:30 + 60 overlaps the 09:00 appointment
	if s := slotAt(slots, 510); s.Kind != SlotFull || s.Bookable {
		t.Fatalf("08:30 cannot host 60 min, got %+v", s)
	}
	if s := slotAt(slots, 480); s.Kind != SlotAvailable || !s.Bookable {
		t.Fatalf("08:00 hosts 60 min exactly, got %+v", s)
	}
	// 11:30 + 60 crosses lunch
	if s := slotAt(slots, 690); s.Kind != SlotFull {
		t.Fatalf("11:30 for 60 min crosses lunch, got %+v", s)
	}
	// 16:30 + 60 runs past closing
	if s := slotAt(slots, 990); s.Kind != SlotFull {
		t.Fatalf("16:30 for 60 min runs past close, got %+v", s)
	}
}

func TestPlaceable_MatchesBookableSlots(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, []timeline.Appointment{sched("s1", 540, 45)}, p)

	for _, s := range UnifiedSlots(blocks, p, 30, 0, false) {
		got := Placeable(blocks, p, s.StartMinute, 30, 0, false)
		if got != s.Bookable {
			t.Fatalf("Placeable(%d) = %v but slot says %v", s.StartMinute, got, s.Bookable)
		}
	}
}

func TestConflicts_OccupancyOnly(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, []timeline.Appointment{sched("s1", 660, 60)}, p) // 11:00-12:00

	if !Conflicts(blocks, 690, 45) {
		t.Fatal("11:30-12:15 overlaps the 11:00 appointment")
	}
	// crossing lunch alone is not a conflict here
	if Conflicts(blocks, 705, 45) {
		t.Fatal("11:45-12:30 only touches lunch, not another block")
	}
	if Conflicts(blocks, 600, 60) {
		t.Fatal("10:00-11:00 abuts but does not overlap")
	}
}

func TestNextAvailable(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	blocks := mustBuild(t, []timeline.Appointment{sched("s1", 480, 120)}, p) // 08:00-10:00

	next, ok := NextAvailable(blocks, p, 30, 0, false)
	if !ok || next != 600 {
		t.Fatalf("next available = %d ok=%v, want 600", next, ok)
	}

	// fully booked day has no bookable slot for 480 min
	_, ok = NextAvailable(blocks, p, 480, 0, false)
	if ok {
		t.Fatalf("oversized request should have no slot")
	}
}

func TestFindAlternatives_Ordering(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	free := mustBuild(t, nil, p)
	halfBooked := mustBuild(t, []timeline.Appointment{
		sched("s1", 480, 240), // 08:00-12:00
		sched("s2", 780, 120), // 13:00-15:00
	}, p)

	cands := []Candidate{
		{Barber: Barber{ID: "b-busy", Status: policy.BarberAvailable, AvgRating: 5.0}, Blocks: halfBooked},
		{Barber: Barber{ID: "b-free2", Status: policy.BarberAvailable, AvgRating: 4.0}, Blocks: free, QueueLength: 2},
		{Barber: Barber{ID: "b-free1", Status: policy.BarberAvailable, AvgRating: 4.0}, Blocks: free, QueueLength: 1},
	}
	opts := FindAlternatives(cands, p, 30, 0, false)

	if opts[0].Barber.ID != "b-free1" || opts[1].Barber.ID != "b-free2" || opts[2].Barber.ID != "b-busy" {
		t.Fatalf("order = %s, %s, %s", opts[0].Barber.ID, opts[1].Barber.ID, opts[2].Barber.ID)
	}
	if opts[0].NextAvailable != 480 {
		t.Fatalf("free barber next = %d, want 480", opts[0].NextAvailable)
	}
	if opts[2].AvailableCount >= opts[0].AvailableCount {
		t.Fatalf("half-booked barber should expose fewer slots")
	}
	if opts[0].Score <= opts[2].Score {
		t.Fatalf("ranking and score disagree: %v vs %v", opts[0].Score, opts[2].Score)
	}
}

func TestFindAlternatives_TieBreakByID(t *testing.T) {
	t.Parallel()

	p := policy.Default()
	free := mustBuild(t, nil, p)
	cands := []Candidate{
		{Barber: Barber{ID: "zeta", AvgRating: 4.5}, Blocks: free},
		{Barber: Barber{ID: "alpha", AvgRating: 4.5}, Blocks: free},
	}
	opts := FindAlternatives(cands, p, 30, 0, false)
	if opts[0].Barber.ID != "alpha" {
		t.Fatalf("equal candidates should order by id, got %s first", opts[0].Barber.ID)
	}
}
