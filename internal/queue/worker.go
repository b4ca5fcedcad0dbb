package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/scheduler"
)

func (q *Queue) HandleStoryChangedTask(ctx context.Context, task *asynq.Task) error {
	var payload StoryChangedPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}

	ev, err := q.er.GetByID(ctx, payload.EventID)
	if err != nil {
		return err
	}
	if ev == nil {
		slog.Info("story event no longer exists", "event_id", payload.EventID)
		return nil
	}
	if ev.Status == models.EventStatusDone {
		slog.Info("story event already handled", "event_id", ev.ID)
		return nil
	}

	_, err = q.d.Dispatch(ctx, ev)
	return err
}

// HandleStoryPublishTask fires a schedule kept by the asynq backend by posting
// the stored payload to its target.
func (q *Queue) HandleStoryPublishTask(ctx context.Context, task *asynq.Task) error {
	var payload scheduler.PublishTaskPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
	if payload.Target == "" {
		return fmt.Errorf("schedule %s has no target: %w", payload.Name, asynq.SkipRetry)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, payload.Target, bytes.NewReader(payload.Payload))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Schedule-Name", payload.Name)

	resp, err := q.client.Do(req)
	if err != nil {
		slog.Info(err.Error())
		return fmt.Errorf("publish request for schedule %s failed: %w", payload.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("publish endpoint returned %d for schedule %s: %s", resp.StatusCode, payload.Name, body)
	}

	slog.Info("schedule fired", "schedule", payload.Name, "target", payload.Target)
	return nil
}
