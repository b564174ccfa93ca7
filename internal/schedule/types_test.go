package schedule

import (
	"testing"
	"time"
)

func mustDay(t *testing.T, block *DayBlock, fallback time.Time, loc *time.Location) Day {
	t.Helper()
	day, err := ParseDay(block, fallback, loc)
	if err != nil {
		t.Fatalf("ParseDay: %v", err)
	}
	return day
}

func TestParseDayNilBlock(t *testing.T) {
	fallback := time.Date(2026, 1, 15, 13, 45, 0, 0, time.UTC)
	day := mustDay(t, nil, fallback, time.UTC)

	want := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	if !day.Date.Equal(want) {
		t.Errorf("date = %v, want local midnight %v", day.Date, want)
	}
	if day.Status != "" || len(day.Outages) != 0 {
		t.Errorf("nil block produced content: %+v", day)
	}
}

func TestParseDayOutageIntervals(t *testing.T) {
	block := &DayBlock{
		Status: "ScheduleApplies",
		Date:   "2026-01-15",
		Slots: []Slot{
			{StartMin: 480, EndMin: 600, Type: SlotDefinite},
			{StartMin: 600, EndMin: 660, Type: SlotNotPlanned},
			{StartMin: 720, EndMin: 780, Type: SlotPossible},
		},
	}
	day := mustDay(t, block, time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC), time.UTC)

	// The block's own date wins over the fallback.
	if day.Date.Day() != 15 {
		t.Errorf("date = %v, want the block's date", day.Date)
	}
	if len(day.Outages) != 2 {
		t.Fatalf("got %d outage intervals, want 2 (NotPlanned excluded)", len(day.Outages))
	}
	wantStart := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	if !day.Outages[0].Start.Equal(wantStart) || !day.Outages[0].End.Equal(wantEnd) {
		t.Errorf("interval = %v-%v, want %v-%v", day.Outages[0].Start, day.Outages[0].End, wantStart, wantEnd)
	}
}

func TestParseDayNonApplyingStatusKeepsSlotsOutOfIntervals(t *testing.T) {
	block := &DayBlock{
		Status: "WaitingForSchedule",
		Date:   "2026-01-16",
		Slots:  []Slot{{StartMin: 480, EndMin: 600, Type: SlotDefinite}},
	}
	day := mustDay(t, block, time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC), time.UTC)

	if len(day.Outages) != 0 {
		t.Errorf("non-applying day produced intervals: %v", day.Outages)
	}
	if len(day.RawSlots) != 1 {
		t.Errorf("raw slots lost: %v", day.RawSlots)
	}
}

func TestParseDayInvalidDate(t *testing.T) {
	block := &DayBlock{Status: "ScheduleApplies", Date: "15/01/2026"}
	if _, err := ParseDay(block, time.Now(), time.UTC); err == nil {
		t.Fatal("expected error for malformed date")
	}
}

func TestSignatureIgnoresDate(t *testing.T) {
	slots := []Slot{{StartMin: 480, EndMin: 600, Type: SlotDefinite}}
	a := mustDay(t, &DayBlock{Status: "ScheduleApplies", Date: "2026-01-15", Slots: slots}, time.Now(), time.UTC)
	b := mustDay(t, &DayBlock{Status: "ScheduleApplies", Date: "2026-01-16", Slots: slots}, time.Now(), time.UTC)

	if a.Signature() != b.Signature() {
		t.Errorf("identical content on different dates must share a signature:\n%q\n%q", a.Signature(), b.Signature())
	}
}

func TestSignatureChangesWithContent(t *testing.T) {
	base := mustDay(t, &DayBlock{
		Status: "ScheduleApplies",
		Date:   "2026-01-15",
		Slots:  []Slot{{StartMin: 480, EndMin: 600, Type: SlotDefinite}},
	}, time.Now(), time.UTC)

	cases := []*DayBlock{
		{Status: "WaitingForSchedule", Date: "2026-01-15", Slots: []Slot{{StartMin: 480, EndMin: 600, Type: SlotDefinite}}},
		{Status: "ScheduleApplies", Date: "2026-01-15", Slots: []Slot{{StartMin: 480, EndMin: 660, Type: SlotDefinite}}},
		{Status: "ScheduleApplies", Date: "2026-01-15", Slots: []Slot{{StartMin: 480, EndMin: 600, Type: SlotPossible}}},
		{Status: "ScheduleApplies", Date: "2026-01-15"},
	}
	for i, block := range cases {
		other := mustDay(t, block, time.Now(), time.UTC)
		if other.Signature() == base.Signature() {
			t.Errorf("case %d: expected different signature", i)
		}
	}
}
