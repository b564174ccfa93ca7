package schedule

import (
	"context"
	"sort"
	"time"
)

// Service bundles fetching, parsing and resolving behind one handle for the
// monitor loops.
type Service struct {
	fetcher  Fetcher
	resolver *Resolver
	loc      *time.Location
}

// NewService creates a schedule service.
func NewService(fetcher Fetcher, resolver *Resolver, loc *time.Location) *Service {
	return &Service{fetcher: fetcher, resolver: resolver, loc: loc}
}

// Location returns the configured local time zone.
func (s *Service) Location() *time.Location {
	return s.loc
}

// Days fetches and normalizes both day blocks.
func (s *Service) Days(ctx context.Context, now time.Time) (today, tomorrow Day, err error) {
	days, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return Day{}, Day{}, err
	}
	return ParseGroupDays(days, now, s.loc)
}

// RestoreMessage fetches the schedule and renders the nearest-restore text.
func (s *Service) RestoreMessage(ctx context.Context, now time.Time) (string, error) {
	today, tomorrow, err := s.Days(ctx, now)
	if err != nil {
		return "", err
	}
	return s.resolver.NearestRestore(now, today, tomorrow).Message(), nil
}

// OutageMessage fetches the schedule and renders the nearest-outage text.
func (s *Service) OutageMessage(ctx context.Context, now time.Time) (string, error) {
	today, tomorrow, err := s.Days(ctx, now)
	if err != nil {
		return "", err
	}
	return s.resolver.NearestOutage(now, today, tomorrow).Message(), nil
}

// MergeOutages collects outage intervals from days with an applying
// schedule, sorts them by start and coalesces adjacent or overlapping
// intervals into one.
func MergeOutages(days ...Day) []Interval {
	var intervals []Interval
	for _, day := range days {
		if day.Status != StatusScheduleApplies {
			continue
		}
		intervals = append(intervals, day.Outages...)
	}
	if len(intervals) == 0 {
		return nil
	}

	sort.Slice(intervals, func(i, j int) bool { return intervals[i].Start.Before(intervals[j].Start) })

	merged := []Interval{intervals[0]}
	for _, iv := range intervals[1:] {
		last := &merged[len(merged)-1]
		if !iv.Start.After(last.End) {
			if iv.End.After(last.End) {
				last.End = iv.End
			}
			continue
		}
		merged = append(merged, iv)
	}
	return merged
}
