package schedule

import (
	"testing"
	"time"
)

func TestMergeOutagesCoalescesAdjacent(t *testing.T) {
	today := applyingDay(t, "2026-01-15",
		Slot{StartMin: 480, EndMin: 600, Type: SlotDefinite},
		Slot{StartMin: 600, EndMin: 660, Type: SlotPossible},
		Slot{StartMin: 900, EndMin: 960, Type: SlotDefinite})

	merged := MergeOutages(today)
	if len(merged) != 2 {
		t.Fatalf("got %d intervals, want 2: %v", len(merged), merged)
	}
	if !merged[0].Start.Equal(at(8, 0)) || !merged[0].End.Equal(at(11, 0)) {
		t.Errorf("first = %v-%v, want 08:00-11:00", merged[0].Start, merged[0].End)
	}
	if !merged[1].Start.Equal(at(15, 0)) || !merged[1].End.Equal(at(16, 0)) {
		t.Errorf("second = %v-%v, want 15:00-16:00", merged[1].Start, merged[1].End)
	}
}

func TestMergeOutagesOverlap(t *testing.T) {
	today := applyingDay(t, "2026-01-15",
		Slot{StartMin: 480, EndMin: 630, Type: SlotDefinite},
		Slot{StartMin: 600, EndMin: 660, Type: SlotPossible})

	merged := MergeOutages(today)
	if len(merged) != 1 {
		t.Fatalf("got %d intervals, want 1", len(merged))
	}
	if !merged[0].End.Equal(at(11, 0)) {
		t.Errorf("end = %v, want 11:00", merged[0].End)
	}
}

func TestMergeOutagesAcrossDays(t *testing.T) {
	today := applyingDay(t, "2026-01-15", Slot{StartMin: 1380, EndMin: 1440, Type: SlotDefinite})
	tomorrow := applyingDay(t, "2026-01-16", Slot{StartMin: 0, EndMin: 120, Type: SlotDefinite})

	merged := MergeOutages(today, tomorrow)
	if len(merged) != 1 {
		t.Fatalf("got %d intervals, want 1 spanning midnight", len(merged))
	}
	wantEnd := time.Date(2026, 1, 16, 2, 0, 0, 0, time.UTC)
	if !merged[0].Start.Equal(at(23, 0)) || !merged[0].End.Equal(wantEnd) {
		t.Errorf("merged = %v-%v, want 23:00-02:00", merged[0].Start, merged[0].End)
	}
}

func TestMergeOutagesSkipsNonApplyingDays(t *testing.T) {
	waiting := statusDay(t, "2026-01-16", StatusWaitingForSchedule)
	if merged := MergeOutages(Day{}, waiting); merged != nil {
		t.Errorf("got %v, want nil", merged)
	}
}
