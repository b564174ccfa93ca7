package monitor

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/svitlo4u/power-server/internal/schedule"
	"github.com/svitlo4u/power-server/pkg/config"
)

func newTestReminderScheduler(src *fakeSource, power PowerStateSource, notifier *fakeNotifier, now time.Time) *ReminderScheduler {
	r := NewReminderScheduler(src, power, notifier, &config.ReminderConfig{
		Interval:      20 * time.Second,
		TriggerWindow: 45 * time.Second,
		Retention:     6 * time.Hour,
		LeadMinutes:   []int{10, 20, 30, 60},
	})
	r.now = func() time.Time { return now }
	return r
}

func TestReminderFiresOnceWithinWindow(t *testing.T) {
	// Outage 08:00-10:00; at 07:50 the 10-minute lead is due.
	now := time.Date(2026, 1, 15, 7, 50, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite}),
	}
	notifier := &fakeNotifier{}

	r := newTestReminderScheduler(src, &fixedState{state: StateUp}, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.texts) != 1 {
		t.Fatalf("got %d notifications, want 1: %v", len(notifier.texts), notifier.texts)
	}
	text := notifier.texts[0]
	if !strings.Contains(text, "go out at 08:00") || !strings.Contains(text, "in 10 min") {
		t.Errorf("unexpected reminder text: %q", text)
	}

	// Successive cycles inside the same window stay silent.
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	r.now = func() time.Time { return now.Add(20 * time.Second) }
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 1 {
		t.Errorf("got %d notifications, want 1", len(notifier.texts))
	}
}

func TestReminderOutsideWindowIsSilent(t *testing.T) {
	now := time.Date(2026, 1, 15, 7, 48, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite}),
	}
	notifier := &fakeNotifier{}

	r := newTestReminderScheduler(src, &fixedState{state: StateUp}, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}

	if len(notifier.texts) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.texts)
	}
}

func TestReminderMergesAdjacentIntervals(t *testing.T) {
	// Slots 08:00-10:00 and 10:00-11:00 coalesce, so no restore reminder
	// exists for the 10:00 boundary. At 09:50 with a 10-minute lead the
	// scheduler must stay silent.
	now := time.Date(2026, 1, 15, 9, 50, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite},
			schedule.Slot{StartMin: 600, EndMin: 660, Type: schedule.SlotPossible}),
	}
	notifier := &fakeNotifier{}

	r := newTestReminderScheduler(src, &fixedState{state: StateDown}, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 0 {
		t.Fatalf("unexpected notifications: %v", notifier.texts)
	}

	// The merged interval's real end is 11:00.
	r.now = func() time.Time { return time.Date(2026, 1, 15, 10, 50, 0, 0, time.UTC) }
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 1 || !strings.Contains(notifier.texts[0], "back at 11:00") {
		t.Fatalf("unexpected notifications: %v", notifier.texts)
	}
}

func TestReminderVetoConsumesTrigger(t *testing.T) {
	// Power already out: the outage warning is stale and must be consumed,
	// not deferred to a later cycle.
	now := time.Date(2026, 1, 15, 7, 50, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite}),
	}
	notifier := &fakeNotifier{}
	power := &fixedState{state: StateDown}

	r := newTestReminderScheduler(src, power, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 0 {
		t.Fatalf("vetoed reminder must be silent, got %v", notifier.texts)
	}

	// Power comes back while still inside the window: already consumed.
	power.state = StateUp
	r.now = func() time.Time { return now.Add(30 * time.Second) }
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 0 {
		t.Errorf("consumed reminder fired anyway: %v", notifier.texts)
	}
}

func TestReminderRestoreVeto(t *testing.T) {
	// Power already on at 09:50: the "back at 10:00" countdown is stale.
	now := time.Date(2026, 1, 15, 9, 50, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite}),
	}
	notifier := &fakeNotifier{}

	r := newTestReminderScheduler(src, &fixedState{state: StateUp}, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 0 {
		t.Errorf("unexpected notifications: %v", notifier.texts)
	}
}

func TestReminderPastIntervalsIgnored(t *testing.T) {
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	src := &fakeSource{
		today: dayAt(time.UTC, "2026-01-15", schedule.StatusScheduleApplies,
			schedule.Slot{StartMin: 480, EndMin: 600, Type: schedule.SlotDefinite}),
	}
	notifier := &fakeNotifier{}

	r := newTestReminderScheduler(src, &fixedState{state: StateUp}, notifier, now)
	if err := r.step(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(notifier.texts) != 0 {
		t.Errorf("past interval produced reminders: %v", notifier.texts)
	}
}
