package queue

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/scheduler"
)

// Publisher hands story events to the worker through asynq. Retries are left
// to the outbox relay, so tasks are enqueued without asynq retries.
type Publisher struct {
	client scheduler.TaskEnqueuer
	queue  string
}

func NewPublisher(client scheduler.TaskEnqueuer, queue string) *Publisher {
	if queue == "" {
		queue = "default"
	}
	return &Publisher{client: client, queue: queue}
}

func (p *Publisher) Publish(ctx context.Context, ev *models.StoryEvent) error {
	payload, err := json.Marshal(StoryChangedPayload{EventID: ev.ID})
	if err != nil {
		return err
	}

	task := asynq.NewTask(TaskTypeStoryChanged, payload)
	_, err = p.client.EnqueueContext(ctx, task,
		asynq.TaskID(taskID(ev)),
		asynq.Queue(p.queue),
		asynq.MaxRetry(0),
	)
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			slog.Info("story event already queued", "event_id", ev.ID)
			return nil
		}
		return fmt.Errorf("failed to enqueue story event %s: %w", ev.ID, err)
	}

	slog.Info("story event queued", "event_id", ev.ID, "story_id", ev.StoryID, "operation", ev.Operation)
	return nil
}

// taskID includes the attempt count so a relayed event is not rejected as a
// duplicate of its archived first attempt.
func taskID(ev *models.StoryEvent) string {
	return fmt.Sprintf("story-event-%s-%d", ev.ID, ev.Attempts)
}
