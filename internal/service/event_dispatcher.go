package service

import (
	"context"
	"log/slog"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
)

// EventPublisher hands a committed story event to the status handler, either
// directly or through a queue.
type EventPublisher interface {
	Publish(ctx context.Context, ev *models.StoryEvent) error
}

// EventDispatcher runs the status handler for an event and records the
// outcome on the outbox row. It is also the synchronous EventPublisher.
type EventDispatcher struct {
	h  StatusHandler
	er repository.StoryEventRepository
}

func NewEventDispatcher(h StatusHandler, er repository.StoryEventRepository) *EventDispatcher {
	return &EventDispatcher{h: h, er: er}
}

func (d *EventDispatcher) Publish(ctx context.Context, ev *models.StoryEvent) error {
	_, err := d.Dispatch(ctx, ev)
	return err
}

func (d *EventDispatcher) Dispatch(ctx context.Context, ev *models.StoryEvent) (*HandleResult, error) {
	result, err := d.h.HandleEvent(ctx, ev)
	if err != nil {
		slog.Error("story event failed", "event_id", ev.ID, "story_id", ev.StoryID, "operation", ev.Operation, "error", err)
		if markErr := d.er.MarkFailed(ctx, ev.ID, err.Error()); markErr != nil {
			slog.Error("failed to mark story event", "event_id", ev.ID, "error", markErr)
		}
		return result, err
	}

	if err := d.er.MarkDone(ctx, ev.ID); err != nil {
		slog.Error("failed to mark story event", "event_id", ev.ID, "error", err)
	}
	return result, nil
}
