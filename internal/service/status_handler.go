package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/scheduler"
)

// DefaultRetractionWindow is how long after publishing the platform still
// allows media to be deleted.
const DefaultRetractionWindow = 24 * time.Hour

// StatusHandler reacts to story mutations by keeping the external schedule
// and the published content in line with the story's status.
type StatusHandler interface {
	Handle(ctx context.Context, storyID int64, op string) (*HandleResult, error)
	HandleEvent(ctx context.Context, ev *models.StoryEvent) (*HandleResult, error)
}

type HandleResult struct {
	StoryID         int64             `json:"story_id"`
	Operation       string            `json:"operation"`
	ScheduleCleared bool              `json:"schedule_cleared"`
	Scheduled       bool              `json:"scheduled"`
	Retraction      *RetractionReport `json:"retraction,omitempty"`
}

type HandlerOption func(*statusHandler)

func WithClock(now func() time.Time) HandlerOption {
	return func(h *statusHandler) { h.now = now }
}

func WithRetractionWindow(window time.Duration) HandlerOption {
	return func(h *statusHandler) { h.window = window }
}

type statusHandler struct {
	sr     repository.StoryRepository
	pr     repository.PlatformRepository
	rr     repository.RestaurantRepository
	ss     ScheduleService
	rt     RetractionService
	locks  *storyLocks
	now    func() time.Time
	window time.Duration
}

func NewStatusHandler(
	sr repository.StoryRepository,
	pr repository.PlatformRepository,
	rr repository.RestaurantRepository,
	ss ScheduleService,
	rt RetractionService,
	opts ...HandlerOption) StatusHandler {
	h := &statusHandler{
		sr:     sr,
		pr:     pr,
		rr:     rr,
		ss:     ss,
		rt:     rt,
		locks:  newStoryLocks(),
		now:    time.Now,
		window: DefaultRetractionWindow,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle runs the transition for op against the currently stored story. For
// deletes the story row must still exist.
func (h *statusHandler) Handle(ctx context.Context, storyID int64, op string) (*HandleResult, error) {
	unlock := h.locks.Lock(storyID)
	defer unlock()

	switch op {
	case models.OperationCreate, models.OperationUpdate:
		return h.handleUpsert(ctx, storyID, op)
	case models.OperationDelete:
		story, err := h.loadStory(ctx, storyID)
		if err != nil {
			return nil, err
		}
		return h.handleDelete(ctx, story, h.now())
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownOperation, op)
	}
}

// HandleEvent is Handle for an outbox event. Delete events carry a snapshot
// taken before the row was removed, and the retraction window is measured at
// the event's creation so relay delays do not push a story out of it.
func (h *statusHandler) HandleEvent(ctx context.Context, ev *models.StoryEvent) (*HandleResult, error) {
	if ev.Operation != models.OperationDelete {
		return h.Handle(ctx, ev.StoryID, ev.Operation)
	}

	deletedAt := h.now()
	if !ev.CreatedAt.IsZero() && ev.CreatedAt.Before(deletedAt) {
		deletedAt = ev.CreatedAt
	}

	if len(ev.Snapshot) == 0 {
		unlock := h.locks.Lock(ev.StoryID)
		defer unlock()

		story, err := h.loadStory(ctx, ev.StoryID)
		if err != nil {
			return nil, err
		}
		return h.handleDelete(ctx, story, deletedAt)
	}

	var story models.Story
	if err := json.Unmarshal(ev.Snapshot, &story); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot of story %d: %w", ev.StoryID, err)
	}
	if story.ID == 0 {
		story.ID = ev.StoryID
	}

	unlock := h.locks.Lock(story.ID)
	defer unlock()

	return h.handleDelete(ctx, &story, deletedAt)
}

func (h *statusHandler) handleUpsert(ctx context.Context, storyID int64, op string) (*HandleResult, error) {
	result := &HandleResult{StoryID: storyID, Operation: op}

	// Clear whatever was scheduled before; the story may never have had one.
	if err := h.ss.DeleteStorySchedule(ctx, storyID); err != nil {
		if errors.Is(err, scheduler.ErrScheduleNotFound) {
			slog.Info("no schedule to clear", "story_id", storyID)
		} else {
			slog.Warn("failed to clear schedule", "story_id", storyID, "error", err)
		}
	} else {
		result.ScheduleCleared = true
	}

	story, err := h.loadStory(ctx, storyID)
	if err != nil {
		return result, err
	}

	if story.PublishedAt == nil || story.Status == models.StoryStatusDraft {
		slog.Info("story needs no schedule", "story_id", storyID, "status", story.Status)
		return result, nil
	}

	sc, err := h.loadContext(ctx, story.PlatformID)
	if err != nil {
		return result, err
	}

	if err := h.ss.ScheduleStory(ctx, story, sc); err != nil {
		return result, err
	}
	result.Scheduled = true

	return result, nil
}

// handleDelete retracts published content when deletedAt is still inside the
// retraction window.
func (h *statusHandler) handleDelete(ctx context.Context, story *models.Story, deletedAt time.Time) (*HandleResult, error) {
	result := &HandleResult{StoryID: story.ID, Operation: models.OperationDelete}

	switch story.Status {
	case models.StoryStatusScheduled:
		err := h.ss.DeleteStorySchedule(ctx, story.ID)
		if err != nil && !errors.Is(err, scheduler.ErrScheduleNotFound) {
			return result, err
		}
		if err != nil {
			slog.Info("scheduled story had no schedule", "story_id", story.ID)
		} else {
			result.ScheduleCleared = true
		}

	case models.StoryStatusPublished:
		if story.PublishedAt == nil {
			return result, nil
		}
		elapsed := deletedAt.Sub(*story.PublishedAt)
		if elapsed >= h.window {
			slog.Info("story published too long ago to retract", "story_id", story.ID, "elapsed", elapsed.String())
			return result, nil
		}

		// Snapshots never carry the platform password.
		if story.Platform == nil || story.Platform.Password == "" {
			platform, err := h.pr.FindByID(ctx, story.PlatformID)
			if err != nil {
				return result, err
			}
			if platform == nil {
				return result, fmt.Errorf("platform %d: %w", story.PlatformID, ErrPlatformNotFound)
			}
			story.Platform = platform
		}

		report, err := h.rt.RetractStory(ctx, story)
		result.Retraction = report
		if err != nil {
			return result, err
		}
	}

	return result, nil
}

func (h *statusHandler) loadStory(ctx context.Context, storyID int64) (*models.Story, error) {
	story, err := h.sr.FindByID(ctx, storyID)
	if err != nil {
		return nil, fmt.Errorf("error loading story %d: %w", storyID, err)
	}
	if story == nil {
		return nil, fmt.Errorf("story %d: %w", storyID, ErrStoryNotFound)
	}
	return story, nil
}

func (h *statusHandler) loadContext(ctx context.Context, platformID int64) (*StoryContext, error) {
	platform, err := h.pr.FindByID(ctx, platformID)
	if err != nil {
		return nil, fmt.Errorf("error loading platform %d: %w", platformID, err)
	}
	if platform == nil {
		return nil, fmt.Errorf("platform %d: %w", platformID, ErrPlatformNotFound)
	}

	restaurant, err := h.rr.FindByID(ctx, platform.RestaurantID)
	if err != nil {
		return nil, fmt.Errorf("error loading restaurant %d: %w", platform.RestaurantID, err)
	}
	if restaurant == nil {
		return nil, fmt.Errorf("restaurant %d: %w", platform.RestaurantID, ErrRestaurantNotFound)
	}
	platform.Restaurant = restaurant

	return &StoryContext{
		Platform:     platform,
		Restaurant:   restaurant,
		Organization: restaurant.Organization,
	}, nil
}
