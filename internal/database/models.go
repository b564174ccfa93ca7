package database

import (
	"time"
)

// OutageRecord is one power-outage interval. An open record (EndTs == nil)
// means power is currently believed to be out; at most one record is open at
// any time.
type OutageRecord struct {
	ID        int64
	StartTs   time.Time
	EndTs     *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ScheduleSnapshot is the latest known schedule content for one calendar
// date, overwritten whenever the published content changes.
type ScheduleSnapshot struct {
	ScheduleDate string // ISO date (YYYY-MM-DD)
	Status       string
	SlotsJSON    string
	OutagesJSON  string
	UpdatedAt    time.Time
}
