package monitor

import (
	"context"
	"fmt"
	"log"
	"math"
	"sync/atomic"
	"time"

	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/presence"
	"github.com/svitlo4u/power-server/pkg/config"
)

// PowerState is the monitor's view of mains power.
type PowerState int32

const (
	StateUnknown PowerState = iota
	StateUp
	StateDown
)

func (s PowerState) String() string {
	switch s {
	case StateUp:
		return "up"
	case StateDown:
		return "down"
	default:
		return "unknown"
	}
}

// PowerMonitor derives power state from heartbeat age and drives the
// outage ledger and notifications on transitions.
type PowerMonitor struct {
	tracker  presence.Tracker
	ledger   Ledger
	sched    ScheduleSource
	notifier Notifier

	tick          time.Duration
	thresholdBits atomic.Uint64
	state         atomic.Int32

	startedAt time.Time
	now       func() time.Time
}

// NewPowerMonitor creates a power monitor with the configured threshold
// and tick interval.
func NewPowerMonitor(tracker presence.Tracker, ledger Ledger, sched ScheduleSource, notifier Notifier, cfg *config.PowerConfig) *PowerMonitor {
	m := &PowerMonitor{
		tracker:   tracker,
		ledger:    ledger,
		sched:     sched,
		notifier:  notifier,
		tick:      cfg.TickInterval,
		startedAt: time.Now(),
		now:       time.Now,
	}
	m.SetThreshold(cfg.ThresholdSec)
	return m
}

// State returns the current power state snapshot.
func (m *PowerMonitor) State() PowerState {
	return PowerState(m.state.Load())
}

// Threshold returns the heartbeat-age threshold in seconds.
func (m *PowerMonitor) Threshold() float64 {
	return math.Float64frombits(m.thresholdBits.Load())
}

// SetThreshold adjusts the heartbeat-age threshold at runtime.
func (m *PowerMonitor) SetThreshold(sec float64) {
	m.thresholdBits.Store(math.Float64bits(sec))
}

// Recover initializes the state from the outage ledger so a restart
// during an outage does not report a fresh one.
func (m *PowerMonitor) Recover() {
	rec, err := m.ledger.ActiveOutage()
	if err != nil {
		log.Printf("❌ Power monitor: active outage lookup failed: %v", err)
		return
	}
	if rec != nil {
		m.state.Store(int32(StateDown))
		fmt.Printf("🔄 Power monitor: resuming with open outage since %s\n", rec.StartTs.Format(time.RFC3339))
	}
}

// Run evaluates the power state every tick until the context is canceled.
func (m *PowerMonitor) Run(ctx context.Context) {
	fmt.Printf("⚡ Power monitor started (threshold %.1fs, tick %s)\n", m.Threshold(), m.tick)

	ticker := time.NewTicker(m.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			fmt.Println("⚡ Power monitor stopped")
			return
		case <-ticker.C:
			m.step(ctx)
		}
	}
}

func (m *PowerMonitor) step(ctx context.Context) {
	age := m.tracker.SecondsSinceLastHeartbeat()
	now := m.now()
	threshold := m.Threshold()

	down := false
	var startCandidate time.Time
	if math.IsInf(age, 1) {
		// No heartbeat ever seen: only the process uptime bounds the
		// outage start.
		if now.Sub(m.startedAt).Seconds() > threshold {
			down = true
			startCandidate = m.startedAt
		}
	} else if age > threshold {
		down = true
		startCandidate = now.Add(-time.Duration(age * float64(time.Second)))
	}

	prev := m.State()

	switch {
	case down && prev != StateDown:
		m.state.Store(int32(StateDown))
		m.onOutage(ctx, now, startCandidate)
	case !down && !math.IsInf(age, 1):
		// A finite heartbeat age is the only positive evidence of power.
		if prev == StateDown {
			m.state.Store(int32(StateUp))
			m.onRestore(ctx, now)
		} else if prev == StateUnknown {
			m.state.Store(int32(StateUp))
		}
	}
}

func (m *PowerMonitor) onOutage(ctx context.Context, now, start time.Time) {
	if _, err := m.ledger.OpenOutage(start); err != nil {
		log.Printf("❌ Power monitor: open outage failed: %v", err)
	}

	text := "🔔⚠️ Power is OUT."
	body := ""
	if msg, err := m.sched.RestoreMessage(ctx, now); err != nil {
		log.Printf("❌ Power monitor: restore lookup failed: %v", err)
	} else {
		text += "\n" + msg
		body = msg
	}

	m.notifier.Notify(ctx, text)
	ev := events.New(events.TypeOutageStarted, "Power is OUT", body)
	ev.Data = map[string]string{"started_at": start.Format(time.RFC3339)}
	m.notifier.WebNotify(ctx, ev)
}

func (m *PowerMonitor) onRestore(ctx context.Context, now time.Time) {
	start, err := m.ledger.CloseOutage(now)
	if err != nil {
		log.Printf("❌ Power monitor: close outage failed: %v", err)
	}

	var downtime time.Duration
	if start != nil {
		downtime = now.Sub(*start)
	}

	text := fmt.Sprintf("🔔✅ Power RESTORED.\nDowntime: %s", formatDuration(downtime))
	if msg, err := m.sched.OutageMessage(ctx, now); err != nil {
		log.Printf("❌ Power monitor: outage lookup failed: %v", err)
	} else {
		text += "\n" + msg
	}

	m.notifier.Notify(ctx, text)
	ev := events.New(events.TypePowerRestored, "Power RESTORED", formatDuration(downtime))
	ev.Data = map[string]string{"downtime_sec": fmt.Sprintf("%.0f", downtime.Seconds())}
	m.notifier.WebNotify(ctx, ev)
}
