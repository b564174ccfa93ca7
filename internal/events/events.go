package events

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is the structured notification published to the events topic and
// forwarded to the web application (cache invalidation, SSE fan-out, PWA
// push).
type Event struct {
	ID        string            `json:"id"`
	Type      string            `json:"type"`
	Title     string            `json:"title"`
	Body      string            `json:"body"`
	Data      map[string]string `json:"data,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Event types
const (
	TypeOutageStarted   = "power_outage_started"
	TypePowerRestored   = "power_restored"
	TypeScheduleUpdated = "schedule_updated"
	TypeReminder        = "reminder"
	TypeCustom          = "custom"
)

// New creates an event with a fresh id and the current timestamp.
func New(eventType, title, body string) Event {
	return Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Title:     title,
		Body:      body,
		CreatedAt: time.Now().UTC(),
	}
}

// Encode encodes an event to JSON.
func Encode(ev *Event) ([]byte, error) {
	return json.Marshal(ev)
}

// Decode decodes JSON to an event.
func Decode(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}
