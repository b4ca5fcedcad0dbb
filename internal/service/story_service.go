package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/h2non/filetype"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/maheshrc27/storyflow/internal/transfer"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

// StoryService is the write path for stories. Every mutation stores an
// outbox event in the same transaction and publishes it after commit.
type StoryService interface {
	Get(ctx context.Context, id int64) (*models.Story, error)
	Create(ctx context.Context, sc *transfer.StoryCreation) (int64, error)
	Update(ctx context.Context, id int64, sc *transfer.StoryCreation) error
	Remove(ctx context.Context, id int64) error
}

type storyService struct {
	db  *sql.DB
	sr  repository.StoryRepository
	pr  repository.PostRepository
	er  repository.StoryEventRepository
	pub EventPublisher
}

func NewStoryService(
	db *sql.DB,
	sr repository.StoryRepository,
	pr repository.PostRepository,
	er repository.StoryEventRepository,
	pub EventPublisher) StoryService {
	return &storyService{
		db:  db,
		sr:  sr,
		pr:  pr,
		er:  er,
		pub: pub,
	}
}

func (s *storyService) Get(ctx context.Context, id int64) (*models.Story, error) {
	if id == 0 {
		err := errors.New("story id is not valid")
		slog.Info(err.Error())
		return nil, fmt.Errorf("%w: %v", ErrInvalidStory, err)
	}

	story, err := s.sr.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting story: %w", err)
	}
	if story == nil {
		return nil, ErrStoryNotFound
	}
	return story, nil
}

func (s *storyService) Create(ctx context.Context, sc *transfer.StoryCreation) (int64, error) {
	story, err := BuildStory(sc)
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	var ev *models.StoryEvent
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		id, err := s.sr.Create(ctx, tx, story)
		if err != nil {
			return fmt.Errorf("error creating story: %w", err)
		}
		story.ID = id

		if err := s.savePosts(ctx, tx, story); err != nil {
			return err
		}

		ev, err = newStoryEvent(id, models.OperationCreate, nil)
		if err != nil {
			return err
		}
		return s.er.Create(ctx, tx, ev)
	})
	if err != nil {
		return 0, err
	}

	return story.ID, s.publish(ctx, ev)
}

func (s *storyService) Update(ctx context.Context, id int64, sc *transfer.StoryCreation) error {
	existing, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	story, err := BuildStory(sc)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	story.ID = existing.ID

	var ev *models.StoryEvent
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.sr.Update(ctx, tx, story); err != nil {
			return fmt.Errorf("error updating story: %w", err)
		}
		if err := s.pr.RemoveByStoryID(ctx, tx, story.ID); err != nil {
			return fmt.Errorf("error replacing posts: %w", err)
		}
		if err := s.savePosts(ctx, tx, story); err != nil {
			return err
		}

		ev, err = newStoryEvent(story.ID, models.OperationUpdate, nil)
		if err != nil {
			return err
		}
		return s.er.Create(ctx, tx, ev)
	})
	if err != nil {
		return err
	}

	return s.publish(ctx, ev)
}

// Remove deletes the story. The delete event keeps a snapshot of the story so
// the status handler can still see its posts and status.
func (s *storyService) Remove(ctx context.Context, id int64) error {
	story, err := s.Get(ctx, id)
	if err != nil {
		return err
	}

	snapshot, err := json.Marshal(story)
	if err != nil {
		return fmt.Errorf("error encoding story snapshot: %w", err)
	}

	var ev *models.StoryEvent
	err = s.inTx(ctx, func(tx *sql.Tx) error {
		ev, err = newStoryEvent(story.ID, models.OperationDelete, snapshot)
		if err != nil {
			return err
		}
		if err := s.er.Create(ctx, tx, ev); err != nil {
			return err
		}
		if err := s.pr.RemoveByStoryID(ctx, tx, story.ID); err != nil {
			return fmt.Errorf("error removing posts: %w", err)
		}
		if err := s.sr.Remove(ctx, tx, story.ID); err != nil {
			return fmt.Errorf("error removing story: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	return s.publish(ctx, ev)
}

func (s *storyService) savePosts(ctx context.Context, tx *sql.Tx, story *models.Story) error {
	for _, p := range story.Posts {
		p.StoryID = story.ID
		postID, err := s.pr.Create(ctx, tx, p)
		if err != nil {
			return fmt.Errorf("error saving post %d: %w", p.Position, err)
		}
		p.ID = postID
	}
	return nil
}

// publish failures leave the event pending for the outbox relay.
func (s *storyService) publish(ctx context.Context, ev *models.StoryEvent) error {
	if err := s.pub.Publish(ctx, ev); err != nil {
		return fmt.Errorf("%w: story %d %s: %w", ErrEventNotHandled, ev.StoryID, ev.Operation, err)
	}
	return nil
}

func (s *storyService) inTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		} else if err != nil {
			tx.Rollback()
		}
	}()

	if err = fn(tx); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func newStoryEvent(storyID int64, op string, snapshot []byte) (*models.StoryEvent, error) {
	id, err := gonanoid.New()
	if err != nil {
		return nil, fmt.Errorf("error generating event id: %w", err)
	}
	return &models.StoryEvent{
		ID:        id,
		StoryID:   storyID,
		Operation: op,
		Snapshot:  snapshot,
		Status:    models.EventStatusPending,
		CreatedAt: time.Now(),
	}, nil
}

// BuildStory validates the request and turns it into a story whose posts are
// positioned in request order.
func BuildStory(sc *transfer.StoryCreation) (*models.Story, error) {
	if sc == nil {
		return nil, fmt.Errorf("%w: story data is nil", ErrInvalidStory)
	}
	if strings.TrimSpace(sc.Name) == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidStory)
	}
	if sc.PlatformID == 0 {
		return nil, fmt.Errorf("%w: platform_id is required", ErrInvalidStory)
	}

	status := strings.ToUpper(strings.TrimSpace(sc.Status))
	if status == "" {
		status = models.StoryStatusDraft
	}
	if !models.IsValidStoryStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStory, sc.Status)
	}

	story := &models.Story{
		Name:       sc.Name,
		Status:     status,
		PlatformID: sc.PlatformID,
	}

	if status != models.StoryStatusDraft {
		if sc.PublishedAt == "" {
			return nil, fmt.Errorf("%w: published_at is required for status %s", ErrInvalidStory, status)
		}
		publishedAt, err := time.Parse(time.RFC3339, sc.PublishedAt)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid published_at: %v", ErrInvalidStory, err)
		}
		publishedAt = publishedAt.UTC()
		story.PublishedAt = &publishedAt
	}

	if len(sc.Posts) == 0 && status != models.StoryStatusDraft {
		return nil, fmt.Errorf("%w: at least one post is required", ErrInvalidStory)
	}

	for i, pc := range sc.Posts {
		if pc.URL == "" {
			return nil, fmt.Errorf("%w: post %d has no url", ErrInvalidStory, i)
		}
		mediaType, err := resolveMediaType(pc)
		if err != nil {
			return nil, fmt.Errorf("%w: post %d: %v", ErrInvalidStory, i, err)
		}
		story.Posts = append(story.Posts, &models.Post{
			URL:            pc.URL,
			ConvertedURL:   pc.ConvertedURL,
			MediaType:      mediaType,
			Position:       i,
			ExternalPostID: pc.ExternalPostID,
		})
	}

	return story, nil
}

// resolveMediaType uses the declared type or falls back to the extension of
// the media url.
func resolveMediaType(pc transfer.PostCreation) (string, error) {
	switch strings.ToUpper(pc.MediaType) {
	case models.MediaTypeImage:
		return models.MediaTypeImage, nil
	case models.MediaTypeVideo:
		return models.MediaTypeVideo, nil
	case "":
	default:
		return "", fmt.Errorf("unknown media type %q", pc.MediaType)
	}

	u, err := url.Parse(pc.URL)
	if err != nil {
		return "", err
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(u.Path), "."))

	kind := filetype.GetType(ext)
	switch kind.MIME.Type {
	case "image":
		return models.MediaTypeImage, nil
	case "video":
		return models.MediaTypeVideo, nil
	}
	return "", fmt.Errorf("cannot infer media type from %q", pc.URL)
}
