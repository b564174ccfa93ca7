package schedule

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/svitlo4u/power-server/pkg/config"
)

// Fetcher retrieves the current schedule document for one subscriber group.
type Fetcher interface {
	Fetch(ctx context.Context) (*GroupDays, error)
}

// Client fetches the planned-outage document from the upstream HTTP API.
type Client struct {
	baseURL string
	group   string
	http    *http.Client
}

// NewClient creates an upstream schedule client.
func NewClient(cfg *config.ScheduleConfig) *Client {
	return &Client{
		baseURL: cfg.BaseURL,
		group:   cfg.Group,
		http:    &http.Client{Timeout: cfg.FetchTimeout},
	}
}

// Fetch performs the HTTP GET and extracts this client's group block.
// A group key absent from the response is a fetch error.
func (c *Client) Fetch(ctx context.Context) (*GroupDays, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create schedule request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch schedule: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch schedule: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read schedule response: %w", err)
	}

	return ExtractGroup(body, c.group)
}

// ExtractGroup decodes a raw schedule document and returns the block for
// the given group.
func ExtractGroup(raw []byte, group string) (*GroupDays, error) {
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decode schedule document: %w", err)
	}

	groupRaw, ok := doc[group]
	if !ok {
		return nil, fmt.Errorf("group %q not found in schedule response", group)
	}

	var days GroupDays
	if err := json.Unmarshal(groupRaw, &days); err != nil {
		return nil, fmt.Errorf("decode group %q: %w", group, err)
	}
	return &days, nil
}

// ParseGroupDays normalizes both day blocks relative to now: today falls
// back to now's date, tomorrow to the next day.
func ParseGroupDays(days *GroupDays, now time.Time, loc *time.Location) (today, tomorrow Day, err error) {
	today, err = ParseDay(days.Today, now.In(loc), loc)
	if err != nil {
		return Day{}, Day{}, fmt.Errorf("parse today: %w", err)
	}
	tomorrow, err = ParseDay(days.Tomorrow, now.In(loc).AddDate(0, 0, 1), loc)
	if err != nil {
		return Day{}, Day{}, fmt.Errorf("parse tomorrow: %w", err)
	}
	return today, tomorrow, nil
}
