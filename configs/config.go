package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	SchedulerBackendEventBridge = "eventbridge"
	SchedulerBackendAsynq       = "asynq"

	EventDispatchSync  = "sync"
	EventDispatchQueue = "queue"
)

type AWS struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type Scheduler struct {
	Backend   string
	Group     string
	TargetArn string
	RoleArn   string
	Queue     string
}

type Config struct {
	Port                string
	PostgresURI         string
	RedisURI            string
	SecretKey           string
	AWS                 AWS
	Scheduler           Scheduler
	PublishEndpoint     string
	InstagramBaseURL    string
	EventDispatch       string
	OutboxRelayInterval time.Duration
	OutboxGracePeriod   time.Duration
	OutboxMaxAttempts   int
	RetractionWindow    time.Duration
	RetractionWorkers   int
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "3000"),
		PostgresURI: getEnv("POSTGRES_URI", ""),
		RedisURI:    getEnv("REDIS_URI", "localhost:6379"),
		SecretKey:   getEnv("SECRET_KEY", ""),
		AWS: AWS{
			Region:          getEnv("AWS_REGION", "eu-west-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
		},
		Scheduler: Scheduler{
			Backend:   getEnv("SCHEDULER_BACKEND", SchedulerBackendEventBridge),
			Group:     getEnv("SCHEDULER_GROUP", "default"),
			TargetArn: getEnv("SCHEDULER_TARGET_ARN", ""),
			RoleArn:   getEnv("SCHEDULER_ROLE_ARN", ""),
			Queue:     getEnv("SCHEDULER_QUEUE", "stories"),
		},
		PublishEndpoint:     getEnv("PUBLISH_ENDPOINT", ""),
		InstagramBaseURL:    getEnv("INSTAGRAM_BASE_URL", "https://i.instagram.com"),
		EventDispatch:       getEnv("EVENT_DISPATCH", EventDispatchSync),
		OutboxRelayInterval: getDuration("OUTBOX_RELAY_INTERVAL", time.Minute),
		OutboxGracePeriod:   getDuration("OUTBOX_GRACE_PERIOD", 2*time.Minute),
		OutboxMaxAttempts:   getInt("OUTBOX_MAX_ATTEMPTS", 5),
		RetractionWindow:    getDuration("RETRACTION_WINDOW", 24*time.Hour),
		RetractionWorkers:   getInt("RETRACTION_WORKERS", 10),
	}
}

// ScheduleTarget is what a schedule invokes when it fires: the target ARN for
// EventBridge, the publish endpoint for the asynq backend.
func (c *Config) ScheduleTarget() string {
	if c.Scheduler.Backend == SchedulerBackendAsynq {
		return c.PublishEndpoint
	}
	return c.Scheduler.TargetArn
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		slog.Warn("invalid duration, using default", "key", key, "value", value, "default", defaultValue.String())
		return defaultValue
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		slog.Warn("invalid integer, using default", "key", key, "value", value, "default", defaultValue)
		return defaultValue
	}
	return n
}
