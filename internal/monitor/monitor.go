package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/svitlo4u/power-server/internal/database"
	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/schedule"
)

// Notifier delivers user-facing and machine-facing notifications.
type Notifier interface {
	Notify(ctx context.Context, text string)
	WebNotify(ctx context.Context, ev events.Event)
}

// Ledger is the monitors' view of the outage store.
type Ledger interface {
	OpenOutage(start time.Time) (int64, error)
	CloseOutage(end time.Time) (*time.Time, error)
	ActiveOutage() (*database.OutageRecord, error)
}

// SnapshotStore persists daily schedule snapshots.
type SnapshotStore interface {
	UpsertScheduleDay(snap *database.ScheduleSnapshot) error
}

// ScheduleSource provides normalized schedule data and rendered
// nearest-event messages.
type ScheduleSource interface {
	Days(ctx context.Context, now time.Time) (today, tomorrow schedule.Day, err error)
	RestoreMessage(ctx context.Context, now time.Time) (string, error)
	OutageMessage(ctx context.Context, now time.Time) (string, error)
}

// formatDuration renders a duration as "2h 15m 3s", omitting zero hour
// and minute components.
func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d.Seconds())
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60

	out := ""
	if h > 0 {
		out += fmt.Sprintf("%dh ", h)
	}
	if m > 0 {
		out += fmt.Sprintf("%dm ", m)
	}
	return out + fmt.Sprintf("%ds", s)
}
