package monitor

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/svitlo4u/power-server/internal/database"
	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/schedule"
)

// DayTarget selects which published day a schedule monitor watches.
type DayTarget int

const (
	TargetToday DayTarget = iota
	TargetTomorrow
)

func (t DayTarget) String() string {
	if t == TargetTomorrow {
		return "tomorrow"
	}
	return "today"
}

// ScheduleMonitor polls one published day, persists snapshots and reports
// content changes. Two instances run side by side, one per day target.
type ScheduleMonitor struct {
	target   DayTarget
	sched    ScheduleSource
	store    SnapshotStore
	notifier Notifier

	interval time.Duration
	now      func() time.Time

	hasBaseline    bool
	baselineDate   time.Time
	baselineSig    string
	baselineStatus schedule.DayStatus
}

// NewScheduleMonitor creates a monitor for the given day target.
func NewScheduleMonitor(target DayTarget, sched ScheduleSource, store SnapshotStore, notifier Notifier, interval time.Duration) *ScheduleMonitor {
	return &ScheduleMonitor{
		target:   target,
		sched:    sched,
		store:    store,
		notifier: notifier,
		interval: interval,
		now:      time.Now,
	}
}

// Run polls until the context is canceled.
func (m *ScheduleMonitor) Run(ctx context.Context) {
	fmt.Printf("📅 Schedule monitor (%s) started, poll every %s\n", m.target, m.interval)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Printf("📅 Schedule monitor (%s) stopped\n", m.target)
			return
		case <-ticker.C:
			if err := m.step(ctx); err != nil {
				log.Printf("❌ Schedule monitor (%s): %v", m.target, err)
			}
		}
	}
}

func (m *ScheduleMonitor) step(ctx context.Context) error {
	now := m.now()
	today, tomorrow, err := m.sched.Days(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}

	day := today
	if m.target == TargetTomorrow {
		day = tomorrow
	}
	sig := day.Signature()

	// Day rollover (or first observation): rebase silently. Yesterday's
	// tomorrow becoming today's today is not a content change.
	if !m.hasBaseline || !day.Date.Equal(m.baselineDate) {
		if err := m.persist(day); err != nil {
			log.Printf("❌ Schedule monitor (%s): snapshot write failed: %v", m.target, err)
		}
		m.setBaseline(day, sig)
		return nil
	}

	if sig == m.baselineSig {
		return nil
	}

	var text string
	if m.target == TargetTomorrow && m.baselineStatus == schedule.StatusWaitingForSchedule && day.Status == schedule.StatusScheduleApplies {
		text = "🔔 Tomorrow's schedule is out!\n\n" + day.Summary()
	} else if m.target == TargetTomorrow {
		text = "🔔 Tomorrow's schedule was updated!\n\n" + day.Summary()
	} else {
		text = "🔔 Today's schedule was updated!\n\n" + day.Summary()
	}

	// Persist first; notify only once the snapshot is durable. A failed
	// write keeps the baseline so the next cycle retries the same change.
	if err := m.persist(day); err != nil {
		return fmt.Errorf("snapshot write: %w", err)
	}
	m.setBaseline(day, sig)

	m.notifier.Notify(ctx, text)
	ev := events.New(events.TypeScheduleUpdated, "Schedule updated", day.Summary())
	ev.Data = map[string]string{
		"day":    m.target.String(),
		"date":   day.Date.Format("2006-01-02"),
		"status": string(day.Status),
	}
	m.notifier.WebNotify(ctx, ev)
	return nil
}

func (m *ScheduleMonitor) setBaseline(day schedule.Day, sig string) {
	m.hasBaseline = true
	m.baselineDate = day.Date
	m.baselineSig = sig
	m.baselineStatus = day.Status
}

func (m *ScheduleMonitor) persist(day schedule.Day) error {
	slots, err := json.Marshal(day.RawSlots)
	if err != nil {
		return err
	}
	type outage struct {
		Start time.Time `json:"start"`
		End   time.Time `json:"end"`
		Type  string    `json:"type"`
	}
	outages := make([]outage, 0, len(day.Outages))
	for _, iv := range day.Outages {
		outages = append(outages, outage{Start: iv.Start, End: iv.End, Type: string(iv.Type)})
	}
	outagesJSON, err := json.Marshal(outages)
	if err != nil {
		return err
	}

	return m.store.UpsertScheduleDay(&database.ScheduleSnapshot{
		ScheduleDate: day.Date.Format("2006-01-02"),
		Status:       string(day.Status),
		SlotsJSON:    string(slots),
		OutagesJSON:  string(outagesJSON),
		UpdatedAt:    m.now().UTC(),
	})
}
