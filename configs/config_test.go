package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"SCHEDULER_BACKEND", "EVENT_DISPATCH", "OUTBOX_RELAY_INTERVAL", "OUTBOX_MAX_ATTEMPTS", "RETRACTION_WINDOW", "PORT"} {
		t.Setenv(key, "")
	}

	cfg := LoadConfig()
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, SchedulerBackendEventBridge, cfg.Scheduler.Backend)
	assert.Equal(t, EventDispatchSync, cfg.EventDispatch)
	assert.Equal(t, time.Minute, cfg.OutboxRelayInterval)
	assert.Equal(t, 5, cfg.OutboxMaxAttempts)
	assert.Equal(t, 24*time.Hour, cfg.RetractionWindow)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("SCHEDULER_BACKEND", SchedulerBackendAsynq)
	t.Setenv("PUBLISH_ENDPOINT", "http://publisher.local/publish")
	t.Setenv("SCHEDULER_TARGET_ARN", "arn:aws:lambda:eu-west-1:1:function:publish")
	t.Setenv("OUTBOX_RELAY_INTERVAL", "30s")
	t.Setenv("OUTBOX_MAX_ATTEMPTS", "not-a-number")
	t.Setenv("RETRACTION_WINDOW", "12h")

	cfg := LoadConfig()
	assert.Equal(t, "http://publisher.local/publish", cfg.ScheduleTarget())
	assert.Equal(t, 30*time.Second, cfg.OutboxRelayInterval)
	assert.Equal(t, 5, cfg.OutboxMaxAttempts)
	assert.Equal(t, 12*time.Hour, cfg.RetractionWindow)

	cfg.Scheduler.Backend = SchedulerBackendEventBridge
	assert.Equal(t, "arn:aws:lambda:eu-west-1:1:function:publish", cfg.ScheduleTarget())
}
