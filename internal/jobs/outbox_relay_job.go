package job

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/service"
)

// OutboxRelayJob republishes story events that were never handled, either
// because the process died after commit or because handling failed.
type OutboxRelayJob struct {
	er          repository.StoryEventRepository
	pub         service.EventPublisher
	grace       time.Duration
	maxAttempts int
	batch       int
	now         func() time.Time
}

func NewOutboxRelayJob(
	er repository.StoryEventRepository,
	pub service.EventPublisher,
	grace time.Duration,
	maxAttempts int) *OutboxRelayJob {
	return &OutboxRelayJob{
		er:          er,
		pub:         pub,
		grace:       grace,
		maxAttempts: maxAttempts,
		batch:       100,
		now:         time.Now,
	}
}

func (c *OutboxRelayJob) Relay() {
	ctx := context.Background()

	// Events younger than the grace period are still being published inline.
	before := c.now().Add(-c.grace)

	events, err := c.er.ListPending(ctx, before, c.maxAttempts, c.batch)
	if err != nil {
		slog.Info(err.Error())
		return
	}
	if len(events) == 0 {
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, ev := range events {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(ev *models.StoryEvent) {
			defer wg.Done()
			defer func() { <-semaphore }()

			if err := c.pub.Publish(ctx, ev); err != nil {
				slog.Info("unable to relay story event", "event_id", ev.ID, "story_id", ev.StoryID, "attempts", ev.Attempts, "error", err)
			}
		}(ev)
	}

	wg.Wait()
	slog.Info("outbox relayed", "events", len(events))
}
