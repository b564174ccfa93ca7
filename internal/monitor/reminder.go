package monitor

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/schedule"
	"github.com/svitlo4u/power-server/pkg/config"
)

// PowerStateSource exposes the live power state for reminder vetoing.
type PowerStateSource interface {
	State() PowerState
}

// ReminderScheduler fires lead-time reminders ahead of scheduled outage
// starts and expected restores. Reminders contradicted by the observed
// power state are consumed silently.
type ReminderScheduler struct {
	sched    ScheduleSource
	power    PowerStateSource
	notifier Notifier

	interval time.Duration
	window   time.Duration
	leads    []int
	history  *ReminderHistory
	now      func() time.Time
}

// NewReminderScheduler creates a reminder scheduler from config.
func NewReminderScheduler(sched ScheduleSource, power PowerStateSource, notifier Notifier, cfg *config.ReminderConfig) *ReminderScheduler {
	return &ReminderScheduler{
		sched:    sched,
		power:    power,
		notifier: notifier,
		interval: cfg.Interval,
		window:   cfg.TriggerWindow,
		leads:    cfg.LeadMinutes,
		history:  NewReminderHistory(cfg.Retention),
		now:      time.Now,
	}
}

// Run evaluates reminder triggers until the context is canceled.
func (r *ReminderScheduler) Run(ctx context.Context) {
	fmt.Printf("⏳ Reminder scheduler started (leads %v, window ±%s)\n", r.leads, r.window)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("⏳ Reminder scheduler stopped")
			return
		case <-ticker.C:
			if err := r.step(ctx); err != nil {
				log.Printf("❌ Reminder scheduler: %v", err)
			}
		}
	}
}

func (r *ReminderScheduler) step(ctx context.Context) error {
	now := r.now()
	defer r.history.Prune(now)

	today, tomorrow, err := r.sched.Days(ctx, now)
	if err != nil {
		return fmt.Errorf("fetch schedule: %w", err)
	}

	for _, iv := range schedule.MergeOutages(today, tomorrow) {
		if !iv.End.After(now) {
			continue
		}
		for _, lead := range r.leads {
			offset := time.Duration(lead) * time.Minute
			r.consider(ctx, now, "outage", iv, lead, iv.Start.Add(-offset))
			r.consider(ctx, now, "restore", iv, lead, iv.End.Add(-offset))
		}
	}
	return nil
}

func (r *ReminderScheduler) consider(ctx context.Context, now time.Time, kind string, iv schedule.Interval, lead int, trigger time.Time) {
	if math.Abs(now.Sub(trigger).Seconds()) > r.window.Seconds() {
		return
	}

	key := fmt.Sprintf("%s|%d|%d", kind, iv.Start.Unix(), lead)
	if r.history.Contains(key) {
		return
	}

	// Contradicting reminders are consumed, not deferred: power already
	// out makes an outage warning stale, power already on makes a restore
	// countdown stale.
	state := r.power.State()
	if (kind == "outage" && state == StateDown) || (kind == "restore" && state == StateUp) {
		r.history.Record(key, now)
		return
	}

	var text string
	if kind == "outage" {
		text = fmt.Sprintf("⏳ Power is scheduled to go out at %s (in %d min).\nOutage window %s – %s (%s).",
			iv.Start.Format("15:04"), lead,
			iv.Start.Format("15:04"), iv.End.Format("15:04"),
			formatDuration(iv.End.Sub(iv.Start)))
	} else {
		text = fmt.Sprintf("⏳ Power is expected back at %s (in %d min).", iv.End.Format("15:04"), lead)
	}

	r.notifier.Notify(ctx, text)
	ev := events.New(events.TypeReminder, "Reminder", text)
	ev.Data = map[string]string{
		"kind":         kind,
		"lead_min":     fmt.Sprintf("%d", lead),
		"interval_start": iv.Start.Format(time.RFC3339),
	}
	r.notifier.WebNotify(ctx, ev)
	r.history.Record(key, now)
}
