package monitor

import (
	"context"
	"time"

	"github.com/svitlo4u/power-server/internal/database"
	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/schedule"
)

type fakeNotifier struct {
	texts  []string
	events []events.Event
}

func (f *fakeNotifier) Notify(_ context.Context, text string) {
	f.texts = append(f.texts, text)
}

func (f *fakeNotifier) WebNotify(_ context.Context, ev events.Event) {
	f.events = append(f.events, ev)
}

type fakeLedger struct {
	opened    []time.Time
	closed    []time.Time
	openErr   error
	closeErr  error
	closeFrom *time.Time
	active    *database.OutageRecord
	activeErr error
}

func (f *fakeLedger) OpenOutage(start time.Time) (int64, error) {
	if f.openErr != nil {
		return 0, f.openErr
	}
	f.opened = append(f.opened, start)
	return int64(len(f.opened)), nil
}

func (f *fakeLedger) CloseOutage(end time.Time) (*time.Time, error) {
	if f.closeErr != nil {
		return nil, f.closeErr
	}
	f.closed = append(f.closed, end)
	return f.closeFrom, nil
}

func (f *fakeLedger) ActiveOutage() (*database.OutageRecord, error) {
	return f.active, f.activeErr
}

type fakeSource struct {
	today      schedule.Day
	tomorrow   schedule.Day
	daysErr    error
	restoreMsg string
	outageMsg  string
	msgErr     error
}

func (f *fakeSource) Days(context.Context, time.Time) (schedule.Day, schedule.Day, error) {
	return f.today, f.tomorrow, f.daysErr
}

func (f *fakeSource) RestoreMessage(context.Context, time.Time) (string, error) {
	return f.restoreMsg, f.msgErr
}

func (f *fakeSource) OutageMessage(context.Context, time.Time) (string, error) {
	return f.outageMsg, f.msgErr
}

type fakeTracker struct {
	age float64
}

func (f *fakeTracker) SecondsSinceLastHeartbeat() float64 {
	return f.age
}

type fakeStore struct {
	snaps []*database.ScheduleSnapshot
	err   error
}

func (f *fakeStore) UpsertScheduleDay(snap *database.ScheduleSnapshot) error {
	if f.err != nil {
		return f.err
	}
	f.snaps = append(f.snaps, snap)
	return nil
}

type fixedState struct {
	state PowerState
}

func (f *fixedState) State() PowerState {
	return f.state
}

func dayAt(loc *time.Location, date string, status schedule.DayStatus, slots ...schedule.Slot) schedule.Day {
	midnight, err := time.ParseInLocation("2006-01-02", date, loc)
	if err != nil {
		panic(err)
	}
	day := schedule.Day{Date: midnight, Status: status, RawSlots: slots}
	if status != schedule.StatusScheduleApplies {
		return day
	}
	for _, slot := range slots {
		if !slot.IsOutage() {
			continue
		}
		start, end := slot.TimeRange(midnight, loc)
		day.Outages = append(day.Outages, schedule.Interval{Start: start, End: end, Type: slot.Type})
	}
	return day
}
