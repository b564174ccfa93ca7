package notify

import (
	"bytes"
	"context"
	"log"
	"net/http"
	"time"

	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/pkg/config"
)

// EventPublisher publishes encoded events to the events topic.
type EventPublisher interface {
	Publish(ctx context.Context, key string, value []byte) error
}

// Dispatcher fans out notifications to the configured chat targets and
// forwards structured events to the web application. All delivery is
// best-effort: a failing destination is logged and skipped, never fatal.
type Dispatcher struct {
	sender    Sender
	targets   []ChatTarget
	sendDelay time.Duration

	webURL   string
	webToken string
	webHTTP  *http.Client

	producer EventPublisher // may be nil when Kafka is disabled
}

// NewDispatcher creates a dispatcher. producer may be nil.
func NewDispatcher(cfg *config.NotifyConfig, sender Sender, targets []ChatTarget, producer EventPublisher) *Dispatcher {
	return &Dispatcher{
		sender:    sender,
		targets:   targets,
		sendDelay: cfg.SendDelay,
		webURL:    cfg.WebNotifyURL,
		webToken:  cfg.WebNotifyToken,
		webHTTP:   &http.Client{Timeout: 2500 * time.Millisecond},
		producer:  producer,
	}
}

// Notify delivers a text message to every configured chat target, with a
// small delay between sends to respect rate limits.
func (d *Dispatcher) Notify(ctx context.Context, text string) {
	for i, target := range d.targets {
		if err := d.sender.SendText(ctx, target, text); err != nil {
			log.Printf("notify failed (%s): %v", target, err)
		}
		if i < len(d.targets)-1 {
			select {
			case <-time.After(d.sendDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// NotifyPhoto delivers a photo with a caption to every configured target.
func (d *Dispatcher) NotifyPhoto(ctx context.Context, caption string, photo []byte) {
	for i, target := range d.targets {
		if err := d.sender.SendPhoto(ctx, target, caption, photo); err != nil {
			log.Printf("notify photo failed (%s): %v", target, err)
		}
		if i < len(d.targets)-1 {
			select {
			case <-time.After(d.sendDelay):
			case <-ctx.Done():
				return
			}
		}
	}
}

// WebNotify forwards a structured event to the web application: a direct
// HTTP POST for immediate cache invalidation and a Kafka publish for the
// push bridge. Fire-and-forget; failures are logged and swallowed.
func (d *Dispatcher) WebNotify(ctx context.Context, ev events.Event) {
	encoded, err := events.Encode(&ev)
	if err != nil {
		log.Printf("web notify encode failed: %v", err)
		return
	}

	if d.producer != nil {
		if err := d.producer.Publish(ctx, ev.Type, encoded); err != nil {
			log.Printf("event publish failed: %v", err)
		}
	}

	if d.webURL == "" || d.webToken == "" {
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webURL, bytes.NewReader(encoded))
	if err != nil {
		log.Printf("web notify request failed: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-bot-token", d.webToken)

	resp, err := d.webHTTP.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}
