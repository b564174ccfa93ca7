package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/svitlo4u/power-server/internal/events"
	"github.com/svitlo4u/power-server/internal/queue"
	"github.com/svitlo4u/power-server/pkg/config"
)

// The push bridge: consumes structured events from the events topic and
// forwards them to the web application's notify endpoint.
func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Push Bridge...")

	if cfg.Notify.WebNotifyURL == "" {
		log.Fatal("WEB_NOTIFY_URL is required")
	}

	consumer := queue.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, "web-push")
	defer consumer.Close()
	fmt.Println("Kafka consumer initialized")

	httpClient := &http.Client{Timeout: 5 * time.Second}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fmt.Println("\n✓ Push Bridge is running")
	fmt.Println("✓ Press Ctrl+C to stop")

	go func() {
		for {
			msg, err := consumer.Consume(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				log.Printf("Failed to consume message: %v", err)
				continue
			}

			ev, err := events.Decode(msg.Value)
			if err != nil {
				// Malformed payloads never become deliverable; skip them
				log.Printf("Failed to decode event: %v", err)
				consumer.Commit(ctx, msg)
				continue
			}

			if err := forward(ctx, httpClient, &cfg.Notify, msg.Value); err != nil {
				log.Printf("Failed to forward event %s (%s): %v", ev.ID, ev.Type, err)
				// No commit: the message is retried
				continue
			}

			if err := consumer.Commit(ctx, msg); err != nil {
				log.Printf("Failed to commit offset: %v", err)
			}
		}
	}()

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	cancel()
}

func forward(ctx context.Context, client *http.Client, cfg *config.NotifyConfig, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebNotifyURL, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if cfg.WebNotifyToken != "" {
		req.Header.Set("x-bot-token", cfg.WebNotifyToken)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
