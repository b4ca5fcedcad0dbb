package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/pkg/utils"
	"golang.org/x/sync/errgroup"
)

type RetractionOutcome string

const (
	RetractionSucceeded RetractionOutcome = "succeeded"
	RetractionFailed    RetractionOutcome = "failed"
	RetractionSkipped   RetractionOutcome = "skipped"
)

type PostRetraction struct {
	PostID         int64             `json:"post_id"`
	ExternalPostID string            `json:"external_post_id"`
	Outcome        RetractionOutcome `json:"outcome"`
	Error          string            `json:"error,omitempty"`
}

// RetractionReport has one entry per post, in publish order.
type RetractionReport struct {
	StoryID  int64            `json:"story_id"`
	Platform string           `json:"platform"`
	Results  []PostRetraction `json:"results"`
}

func (r *RetractionReport) Count(outcome RetractionOutcome) int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == outcome {
			n++
		}
	}
	return n
}

func (r *RetractionReport) Failed() []PostRetraction {
	var failed []PostRetraction
	for _, res := range r.Results {
		if res.Outcome == RetractionFailed {
			failed = append(failed, res)
		}
	}
	return failed
}

type RetractionService interface {
	RetractStory(ctx context.Context, story *models.Story) (*RetractionReport, error)
}

type retractionService struct {
	codec       *utils.CredentialCodec
	clients     map[string]PlatformClient
	concurrency int
}

// NewRetractionService takes one client per platform key. Stories on a
// platform without a client are reported as skipped.
func NewRetractionService(codec *utils.CredentialCodec, clients map[string]PlatformClient, concurrency int) RetractionService {
	if concurrency <= 0 {
		concurrency = 10
	}
	return &retractionService{
		codec:       codec,
		clients:     clients,
		concurrency: concurrency,
	}
}

// RetractStory logs in once and deletes every published post concurrently.
// Every post is attempted; the report says which ones went through. Media the
// platform no longer has counts as retracted, so replays converge. The
// returned error wraps ErrPartialRetraction when at least one delete failed.
func (s *retractionService) RetractStory(ctx context.Context, story *models.Story) (*RetractionReport, error) {
	if story.Platform == nil {
		return nil, fmt.Errorf("story %d: %w", story.ID, ErrPlatformNotFound)
	}

	posts := story.Posts
	if sorted, err := SortPosts(story.Posts); err == nil {
		posts = sorted
	}

	report := &RetractionReport{
		StoryID:  story.ID,
		Platform: story.Platform.Key,
		Results:  make([]PostRetraction, len(posts)),
	}
	for i, p := range posts {
		report.Results[i] = PostRetraction{PostID: p.ID, ExternalPostID: p.ExternalPostID, Outcome: RetractionSkipped}
	}

	client, ok := s.clients[story.Platform.Key]
	if !ok {
		slog.Info("retraction not supported for platform", "story_id", story.ID, "platform", story.Platform.Key)
		for i := range report.Results {
			report.Results[i].Error = "platform not supported"
		}
		return report, nil
	}

	pending := 0
	for _, p := range posts {
		if p.ExternalPostID != "" {
			pending++
		}
	}
	if pending == 0 {
		return report, nil
	}

	password, err := s.codec.Decrypt(story.Platform.Password)
	if err != nil {
		return report, fmt.Errorf("failed to decrypt platform credentials: %w", err)
	}

	session, err := client.Login(ctx, story.Platform.Login, password)
	if err != nil {
		return report, fmt.Errorf("failed to log in to %s: %w", story.Platform.Key, err)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, p := range posts {
		if p.ExternalPostID == "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			err := client.DeleteMedia(gctx, session, p.ExternalPostID)

			mu.Lock()
			defer mu.Unlock()
			if errors.Is(err, ErrMediaNotFound) {
				// Gone already, most likely from an earlier partial run.
				slog.Info("post already retracted", "story_id", story.ID, "post_id", p.ID, "external_post_id", p.ExternalPostID)
				report.Results[i].Outcome = RetractionSucceeded
				report.Results[i].Error = "already deleted"
				return nil
			}
			if err != nil {
				slog.Warn("failed to retract post", "story_id", story.ID, "post_id", p.ID, "external_post_id", p.ExternalPostID, "error", err)
				report.Results[i].Outcome = RetractionFailed
				report.Results[i].Error = err.Error()
				return nil
			}
			report.Results[i].Outcome = RetractionSucceeded
			return nil
		})
	}
	_ = g.Wait()

	if failed := report.Count(RetractionFailed); failed > 0 {
		return report, fmt.Errorf("%w: %d of %d posts of story %d", ErrPartialRetraction, failed, pending, story.ID)
	}

	slog.Info("story retracted", "story_id", story.ID, "posts", pending)
	return report, nil
}
