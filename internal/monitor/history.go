package monitor

import (
	"sync"
	"time"
)

// ReminderHistory is a bounded dedup set for fired reminders. Entries are
// grouped into one-minute buckets by recording time so pruning drops whole
// buckets instead of scanning every key.
type ReminderHistory struct {
	mu        sync.Mutex
	retention time.Duration
	keys      map[string]int64          // key -> owning bucket minute
	buckets   map[int64]map[string]bool // unix minute -> keys recorded then
}

// NewReminderHistory creates a history that retains entries for the given
// duration.
func NewReminderHistory(retention time.Duration) *ReminderHistory {
	return &ReminderHistory{
		retention: retention,
		keys:      make(map[string]int64),
		buckets:   make(map[int64]map[string]bool),
	}
}

// Contains reports whether the key was recorded and not yet pruned.
func (h *ReminderHistory) Contains(key string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	_, ok := h.keys[key]
	return ok
}

// Record marks the key as fired at the given time.
func (h *ReminderHistory) Record(key string, at time.Time) {
	minute := at.Unix() / 60

	h.mu.Lock()
	defer h.mu.Unlock()

	if old, ok := h.keys[key]; ok {
		delete(h.buckets[old], key)
	}
	h.keys[key] = minute
	bucket, ok := h.buckets[minute]
	if !ok {
		bucket = make(map[string]bool)
		h.buckets[minute] = bucket
	}
	bucket[key] = true
}

// Prune drops every entry older than the retention window.
func (h *ReminderHistory) Prune(now time.Time) {
	cutoff := now.Add(-h.retention).Unix() / 60

	h.mu.Lock()
	defer h.mu.Unlock()

	for minute, bucket := range h.buckets {
		if minute >= cutoff {
			continue
		}
		for key := range bucket {
			delete(h.keys, key)
		}
		delete(h.buckets, minute)
	}
}

// Len returns the number of live entries.
func (h *ReminderHistory) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.keys)
}
