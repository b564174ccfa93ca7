package schedule

import (
	"sort"
	"time"

	"github.com/svitlo4u/power-server/pkg/config"
)

// RestoreKind classifies the nearest-restore answer.
type RestoreKind int

const (
	// RestoreExpected: now is inside a scheduled interval (with early-start
	// grace); At is the merged end of all chained intervals.
	RestoreExpected RestoreKind = iota
	// RestoreOverdue: the latest scheduled interval ended within the restore
	// delay grace; power should already be back.
	RestoreOverdue
	// RestoreOffSchedule: the outage does not match the schedule; possibly
	// an emergency one.
	RestoreOffSchedule
	// RestoreEmergency: emergency shutdowns are active, schedule suspended.
	RestoreEmergency
	// RestoreScheduleUnavailable: no day with an applying schedule.
	RestoreScheduleUnavailable
	// RestoreScheduleEmpty: the schedule applies but lists no outages.
	RestoreScheduleEmpty
)

// RestoreFact is the nearest-restore answer for a moment in time.
type RestoreFact struct {
	Kind           RestoreKind
	At             time.Time
	TodayStatus    DayStatus
	TomorrowStatus DayStatus
}

// OutageKind classifies the nearest-outage answer.
type OutageKind int

const (
	// OutageUpcoming: the next outage starts at At; Tomorrow marks whether
	// that is on the next calendar day.
	OutageUpcoming OutageKind = iota
	// OutageOverdue: the nearest start is already in the past within the
	// missed-start grace; expect it shortly.
	OutageOverdue
	// OutageNonePlanned: an applying schedule exists but holds no future
	// outage.
	OutageNonePlanned
	// OutageEmergency: emergency shutdowns are active, schedule suspended.
	OutageEmergency
	// OutageNotYetPublished: the schedule is still waiting for publication.
	OutageNotYetPublished
	// OutageScheduleUnavailable: neither day has an applying schedule.
	OutageScheduleUnavailable
)

// OutageFact is the nearest-outage answer for a moment in time.
type OutageFact struct {
	Kind        OutageKind
	At          time.Time
	Tomorrow    bool
	TodayStatus DayStatus
}

// Resolver computes nearest-transition facts from parsed day blocks. All
// comparisons happen in the configured local time zone.
type Resolver struct {
	loc               *time.Location
	earlyStartGrace   time.Duration
	missedStartGrace  time.Duration
	restoreDelayGrace time.Duration
}

// NewResolver creates a resolver with the configured grace tolerances.
func NewResolver(loc *time.Location, cfg *config.ScheduleConfig) *Resolver {
	return &Resolver{
		loc:               loc,
		earlyStartGrace:   time.Duration(cfg.EarlyStartGraceMin) * time.Minute,
		missedStartGrace:  time.Duration(cfg.MissedStartGraceMin) * time.Minute,
		restoreDelayGrace: time.Duration(cfg.RestoreDelayGraceMin) * time.Minute,
	}
}

// NearestRestore computes when power is expected back given that it is
// currently out.
func (r *Resolver) NearestRestore(now time.Time, today, tomorrow Day) RestoreFact {
	now = now.In(r.loc)

	if today.Status == StatusEmergencyShutdowns {
		return RestoreFact{Kind: RestoreEmergency}
	}

	var upcoming []Interval
	var past []Interval
	scheduleAvailable := false

	for _, day := range []Day{today, tomorrow} {
		if day.Status != StatusScheduleApplies {
			continue
		}
		scheduleAvailable = true
		for _, iv := range day.Outages {
			if !iv.End.After(now) {
				past = append(past, iv)
			} else {
				upcoming = append(upcoming, iv)
			}
		}
	}

	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].Start.Before(upcoming[j].Start) })

	if len(upcoming) == 0 && len(past) == 0 {
		if !scheduleAvailable {
			return RestoreFact{
				Kind:           RestoreScheduleUnavailable,
				TodayStatus:    today.Status,
				TomorrowStatus: tomorrow.Status,
			}
		}
		return RestoreFact{Kind: RestoreScheduleEmpty}
	}

	// If now falls inside any interval (with early-start grace), merge all
	// chained overlapping intervals from the earliest match and report the
	// merged end.
	for i, iv := range upcoming {
		if iv.Start.Add(-r.earlyStartGrace).After(now) || now.After(iv.End) {
			continue
		}
		mergedEnd := iv.End
		for _, next := range upcoming[i+1:] {
			if next.Start.After(mergedEnd) {
				break
			}
			if next.End.After(mergedEnd) {
				mergedEnd = next.End
			}
		}
		return RestoreFact{Kind: RestoreExpected, At: mergedEnd}
	}

	if len(past) > 0 {
		latestEnd := past[0].End
		for _, iv := range past[1:] {
			if iv.End.After(latestEnd) {
				latestEnd = iv.End
			}
		}
		if now.Sub(latestEnd) <= r.restoreDelayGrace {
			return RestoreFact{Kind: RestoreOverdue, At: latestEnd}
		}
	}

	return RestoreFact{Kind: RestoreOffSchedule}
}

// NearestOutage computes the next expected outage start.
func (r *Resolver) NearestOutage(now time.Time, today, tomorrow Day) OutageFact {
	now = now.In(r.loc)

	if today.Status == StatusEmergencyShutdowns {
		return OutageFact{Kind: OutageEmergency}
	}

	if today.Status != StatusScheduleApplies && tomorrow.Status != StatusScheduleApplies {
		if today.Status == StatusWaitingForSchedule || tomorrow.Status == StatusWaitingForSchedule {
			return OutageFact{Kind: OutageNotYetPublished}
		}
		return OutageFact{Kind: OutageScheduleUnavailable, TodayStatus: today.Status}
	}

	nearest := r.nearestStart(now, today, tomorrow)
	if nearest != nil && !nearest.After(now) {
		if now.Sub(*nearest) <= r.missedStartGrace {
			return OutageFact{Kind: OutageOverdue, At: *nearest}
		}
	}

	var future []time.Time
	for _, day := range []Day{today, tomorrow} {
		if day.Status != StatusScheduleApplies {
			continue
		}
		for _, iv := range day.Outages {
			if iv.Start.After(now) {
				future = append(future, iv.Start)
			}
		}
	}
	sort.Slice(future, func(i, j int) bool { return future[i].Before(future[j]) })

	if len(future) == 0 {
		return OutageFact{Kind: OutageNonePlanned}
	}

	next := future[0]
	nextDay := next.In(r.loc)
	followingDay := now.AddDate(0, 0, 1)
	isTomorrow := nextDay.Year() == followingDay.Year() && nextDay.YearDay() == followingDay.YearDay()
	return OutageFact{Kind: OutageUpcoming, At: next, Tomorrow: isTomorrow}
}

// nearestStart finds the start of the nearest outage: an in-progress interval
// counts as its own start and wins immediately.
func (r *Resolver) nearestStart(now time.Time, today, tomorrow Day) *time.Time {
	var candidates []time.Time

	if today.Status == StatusScheduleApplies {
		for _, iv := range today.Outages {
			if !iv.End.After(now) {
				continue
			}
			if iv.Start.After(now) {
				candidates = append(candidates, iv.Start)
			} else {
				// Already in progress: this is the nearest start.
				start := iv.Start
				return &start
			}
		}
	}

	if tomorrow.Status == StatusScheduleApplies {
		for _, iv := range tomorrow.Outages {
			if iv.Start.After(now) {
				candidates = append(candidates, iv.Start)
			}
		}
	}

	if len(candidates) == 0 {
		return nil
	}
	min := candidates[0]
	for _, c := range candidates[1:] {
		if c.Before(min) {
			min = c
		}
	}
	return &min
}
