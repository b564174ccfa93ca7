package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	UDP      UDPConfig
	Schedule ScheduleConfig
	Power    PowerConfig
	Reminder ReminderConfig
	Notify   NotifyConfig
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

func (d DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode)
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KafkaConfig struct {
	Brokers     []string
	TopicEvents string
}

type UDPConfig struct {
	Port       int
	BufferSize int
}

type ScheduleConfig struct {
	BaseURL      string
	Group        string
	Timezone     string
	PollInterval time.Duration
	FetchTimeout time.Duration
	CacheTTL     time.Duration

	// Grace tolerances around nominal schedule boundaries, in minutes.
	EarlyStartGraceMin   int
	MissedStartGraceMin  int
	RestoreDelayGraceMin int
}

type PowerConfig struct {
	ThresholdSec float64
	TickInterval time.Duration
}

type ReminderConfig struct {
	Interval      time.Duration
	TriggerWindow time.Duration
	Retention     time.Duration
	LeadMinutes   []int
}

type NotifyConfig struct {
	BotToken string
	// ChatTargets is the raw ALERT_CHAT_ID value: chat ids, optionally with
	// a thread suffix ("123456" or "123456_789"), comma or space separated.
	ChatTargets string
	SendDelay   time.Duration

	WebNotifyURL   string
	WebNotifyToken string
}

func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvAsInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "svitlo_user"),
			Password: getEnv("DB_PASSWORD", "svitlo_pass"),
			DBName:   getEnv("DB_NAME", "svitlo_db"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers:     strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			TopicEvents: getEnv("KAFKA_TOPIC_EVENTS", "power.events"),
		},
		UDP: UDPConfig{
			Port:       getEnvAsInt("UDP_PORT", 5005),
			BufferSize: getEnvAsInt("UDP_BUFFER_SIZE", 1024),
		},
		Schedule: ScheduleConfig{
			BaseURL:              getEnv("SCHEDULE_BASE_URL", "https://app.yasno.ua/api/blackout-service/public/shutdowns/regions/25/dsos/902/planned-outages"),
			Group:                getEnv("SCHEDULE_GROUP", "6.2"),
			Timezone:             getEnv("SCHEDULE_TIMEZONE", "Europe/Kyiv"),
			PollInterval:         getEnvAsDuration("SCHEDULE_POLL_INTERVAL", 60*time.Second),
			FetchTimeout:         getEnvAsDuration("SCHEDULE_FETCH_TIMEOUT", 15*time.Second),
			CacheTTL:             getEnvAsDuration("SCHEDULE_CACHE_TTL", 20*time.Second),
			EarlyStartGraceMin:   getEnvAsInt("SCHEDULE_EARLY_START_GRACE_MIN", 45),
			MissedStartGraceMin:  getEnvAsInt("SCHEDULE_MISSED_START_GRACE_MIN", 60),
			RestoreDelayGraceMin: getEnvAsInt("SCHEDULE_RESTORE_DELAY_GRACE_MIN", 60),
		},
		Power: PowerConfig{
			ThresholdSec: getEnvAsFloat("THRESHOLD_SEC", 6),
			TickInterval: getEnvAsDuration("POWER_TICK_INTERVAL", time.Second),
		},
		Reminder: ReminderConfig{
			Interval:      getEnvAsDuration("REMINDER_INTERVAL", 20*time.Second),
			TriggerWindow: getEnvAsDuration("REMINDER_TRIGGER_WINDOW", 45*time.Second),
			Retention:     getEnvAsDuration("REMINDER_RETENTION", 6*time.Hour),
			LeadMinutes:   getEnvAsIntList("REMINDER_LEAD_MINUTES", []int{10, 20, 30, 60}),
		},
		Notify: NotifyConfig{
			BotToken:       getEnv("BOT_TOKEN", ""),
			ChatTargets:    getEnv("ALERT_CHAT_ID", ""),
			SendDelay:      getEnvAsDuration("NOTIFY_SEND_DELAY", 50*time.Millisecond),
			WebNotifyURL:   getEnv("WEB_NOTIFY_URL", "http://127.0.0.1:3000/api/notify"),
			WebNotifyToken: getEnv("NOTIFY_BOT_TOKEN", ""),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsIntList(key string, defaultValue []int) []int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return defaultValue
	}

	var values []int
	for _, part := range strings.Split(valueStr, ",") {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return defaultValue
		}
		values = append(values, value)
	}
	return values
}
