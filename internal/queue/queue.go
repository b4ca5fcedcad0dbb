package queue

import (
	"context"
	"net/http"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/service"
)

const TaskTypeStoryChanged = "story:changed"

type StoryChangedPayload struct {
	EventID string `json:"event_id"`
}

// Dispatcher runs the status handler for a stored event.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev *models.StoryEvent) (*service.HandleResult, error)
}

type Queue struct {
	er     repository.StoryEventRepository
	d      Dispatcher
	client *http.Client
}

func NewQueue(
	er repository.StoryEventRepository,
	d Dispatcher,
	client *http.Client) *Queue {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &Queue{
		er:     er,
		d:      d,
		client: client,
	}
}
