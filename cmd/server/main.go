package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/svitlo4u/power-server/internal/database"
	"github.com/svitlo4u/power-server/internal/monitor"
	"github.com/svitlo4u/power-server/internal/notify"
	"github.com/svitlo4u/power-server/internal/presence"
	"github.com/svitlo4u/power-server/internal/queue"
	"github.com/svitlo4u/power-server/internal/schedule"
	"github.com/svitlo4u/power-server/pkg/config"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	fmt.Println("Starting Power Server...")

	loc, err := time.LoadLocation(cfg.Schedule.Timezone)
	if err != nil {
		log.Fatalf("Failed to load time zone %q: %v", cfg.Schedule.Timezone, err)
	}

	// Connect to database
	db, err := database.Connect(cfg.Database.ConnectionString())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	fmt.Println("Connected to database")

	// Run migrations
	if err := db.RunMigrations("migrations"); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis cache for schedule fetches
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer redisClient.Close()

	// Create the events topic; a single partition keeps event order
	if err := queue.CreateTopic(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents, 1, 1); err != nil {
		fmt.Printf("Note: Topic creation failed (may already exist): %v\n", err)
	}

	producer := queue.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.TopicEvents)
	defer producer.Close()
	fmt.Printf("Kafka producer initialized (topic %s)\n", cfg.Kafka.TopicEvents)

	// Notification fan-out
	sender := notify.NewTelegramSender(cfg.Notify.BotToken)
	if err := sender.Validate(); err != nil {
		log.Fatalf("Invalid notify configuration: %v", err)
	}
	targets, err := notify.ParseChatTargets(cfg.Notify.ChatTargets)
	if err != nil {
		log.Fatalf("Invalid ALERT_CHAT_ID: %v", err)
	}
	dispatcher := notify.NewDispatcher(&cfg.Notify, sender, targets, producer)
	fmt.Printf("Dispatcher initialized (%d chat targets)\n", len(targets))

	// Heartbeat listener
	clock := presence.NewClock()
	listener := presence.NewUDPListener(&cfg.UDP, clock)
	if err := listener.Start(); err != nil {
		log.Fatalf("Failed to start UDP listener: %v", err)
	}
	defer listener.Stop()

	// Schedule pipeline: HTTP client behind a short-TTL Redis cache shared
	// by every polling loop
	client := schedule.NewClient(&cfg.Schedule)
	cached := schedule.NewCachedFetcher(client, redisClient, cfg.Schedule.Group, cfg.Schedule.CacheTTL)
	resolver := schedule.NewResolver(loc, &cfg.Schedule)
	svc := schedule.NewService(cached, resolver, loc)

	// Restore context from the last run
	if snap, err := db.GetScheduleDay(time.Now().In(loc).Format("2006-01-02")); err != nil {
		log.Printf("Failed to read stored schedule: %v", err)
	} else if snap != nil {
		fmt.Printf("Last known schedule for %s: %s (updated %s)\n",
			snap.ScheduleDate, snap.Status, snap.UpdatedAt.Format(time.RFC3339))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	run := func(loop func(context.Context)) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			loop(ctx)
		}()
	}

	powerMonitor := monitor.NewPowerMonitor(clock, db, svc, dispatcher, &cfg.Power)
	powerMonitor.Recover()
	run(powerMonitor.Run)

	todayMonitor := monitor.NewScheduleMonitor(monitor.TargetToday, svc, db, dispatcher, cfg.Schedule.PollInterval)
	run(todayMonitor.Run)

	// De-phased by a second so both monitors never hit the upstream in the
	// same tick when the cache entry just expired
	tomorrowMonitor := monitor.NewScheduleMonitor(monitor.TargetTomorrow, svc, db, dispatcher, cfg.Schedule.PollInterval+time.Second)
	run(tomorrowMonitor.Run)

	reminders := monitor.NewReminderScheduler(svc, powerMonitor, dispatcher, &cfg.Reminder)
	run(reminders.Run)

	dispatcher.Notify(ctx, "🟢 Power server started.")

	fmt.Println("\n✓ Power Server is running")
	fmt.Printf("✓ UDP heartbeats on port %d\n", cfg.UDP.Port)
	fmt.Printf("✓ Watching group %s (%s)\n", cfg.Schedule.Group, cfg.Schedule.Timezone)
	fmt.Println("✓ Press Ctrl+C to stop")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	fmt.Println("\nShutting down gracefully...")
	cancel()
	wg.Wait()
	listener.Stop()
}
