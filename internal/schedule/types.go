package schedule

import (
	"fmt"
	"strings"
	"time"
)

// DayStatus is the publisher's status for one calendar day. Unknown values
// are carried verbatim so they can still be shown to the user.
type DayStatus string

const (
	StatusScheduleApplies    DayStatus = "ScheduleApplies"
	StatusEmergencyShutdowns DayStatus = "EmergencyShutdowns"
	StatusWaitingForSchedule DayStatus = "WaitingForSchedule"
)

// SlotType classifies a schedule slot. Anything other than NotPlanned
// counts as an outage slot.
type SlotType string

const (
	SlotDefinite   SlotType = "Definite"
	SlotPossible   SlotType = "Possible"
	SlotNotPlanned SlotType = "NotPlanned"
)

// Slot is a minute range within one calendar day, offsets from local
// midnight. EndMin is exclusive.
type Slot struct {
	StartMin int      `json:"start"`
	EndMin   int      `json:"end"`
	Type     SlotType `json:"type"`
}

// IsOutage reports whether the slot represents a planned outage.
func (s Slot) IsOutage() bool {
	return s.Type != SlotNotPlanned
}

// TimeRange converts the slot into an absolute [start, end) interval for the
// given date in the given location.
func (s Slot) TimeRange(date time.Time, loc *time.Location) (time.Time, time.Time) {
	midnight := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, loc)
	start := midnight.Add(time.Duration(s.StartMin) * time.Minute)
	end := midnight.Add(time.Duration(s.EndMin) * time.Minute)
	return start, end
}

// DayBlock is the wire format for one day as published by the upstream API.
type DayBlock struct {
	Status string `json:"status"`
	Date   string `json:"date"`
	Slots  []Slot `json:"slots"`
}

// GroupDays holds the two day blocks published for one subscriber group.
type GroupDays struct {
	Today    *DayBlock `json:"today"`
	Tomorrow *DayBlock `json:"tomorrow"`
}

// Interval is an absolute outage interval derived from a slot.
type Interval struct {
	Start time.Time
	End   time.Time
	Type  SlotType
}

// Day is a normalized day block: typed status, absolute outage intervals
// (populated only when the schedule applies) and the raw slots for
// signature computation and persistence.
type Day struct {
	Date     time.Time // local midnight of the owning calendar date
	Status   DayStatus
	Outages  []Interval
	RawSlots []Slot
}

// ParseDay normalizes a raw day block. A nil block yields an empty status
// and the fallback date. Outage intervals are computed only when the status
// is ScheduleApplies; any other status keeps an empty interval list while
// preserving the status for display.
func ParseDay(block *DayBlock, fallbackDate time.Time, loc *time.Location) (Day, error) {
	day := Day{
		Date: time.Date(fallbackDate.Year(), fallbackDate.Month(), fallbackDate.Day(), 0, 0, 0, 0, loc),
	}
	if block == nil {
		return day, nil
	}

	day.Status = DayStatus(block.Status)
	day.RawSlots = block.Slots

	if block.Date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", block.Date, loc)
		if err != nil {
			return Day{}, fmt.Errorf("invalid day date %q: %w", block.Date, err)
		}
		day.Date = parsed
	}

	if day.Status == StatusScheduleApplies {
		for _, slot := range block.Slots {
			if !slot.IsOutage() {
				continue
			}
			start, end := slot.TimeRange(day.Date, loc)
			day.Outages = append(day.Outages, Interval{Start: start, End: end, Type: slot.Type})
		}
	}

	return day, nil
}

// Signature is a comparable fingerprint of the day's content: status plus
// the ordered slot tuples. The calendar date is excluded so a midnight
// rollover with identical content compares equal.
func (d Day) Signature() string {
	var b strings.Builder
	b.WriteString(string(d.Status))
	for _, slot := range d.RawSlots {
		fmt.Fprintf(&b, "|%d-%d-%s", slot.StartMin, slot.EndMin, slot.Type)
	}
	return b.String()
}
