package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/scheduler"
	"github.com/maheshrc27/storyflow/internal/transfer"
)

type ScheduleService interface {
	ScheduleStory(ctx context.Context, story *models.Story, sc *StoryContext) error
	DeleteStorySchedule(ctx context.Context, storyID int64) error
}

// StoryContext is the account information the publisher needs at fire time.
type StoryContext struct {
	Platform     *models.Platform
	Restaurant   *models.Restaurant
	Organization *models.Organization
}

type scheduleService struct {
	s       scheduler.Scheduler
	target  string
	roleArn string
}

func NewScheduleService(s scheduler.Scheduler, target, roleArn string) ScheduleService {
	return &scheduleService{
		s:       s,
		target:  target,
		roleArn: roleArn,
	}
}

// ScheduleStory creates the one-shot schedule for story. Any previous schedule
// for the same story must have been deleted by the caller.
func (s *scheduleService) ScheduleStory(ctx context.Context, story *models.Story, sc *StoryContext) error {
	if story.PublishedAt == nil {
		return fmt.Errorf("story %d: %w", story.ID, ErrMissingPublishTime)
	}
	if sc == nil || sc.Platform == nil {
		return fmt.Errorf("story %d: %w", story.ID, ErrPlatformNotFound)
	}

	posts, err := SortPosts(story.Posts)
	if err != nil {
		return fmt.Errorf("story %d: %w", story.ID, err)
	}

	payload := transfer.SchedulePayload{
		StoryID:   story.ID,
		StoryName: story.Name,
		Platform:  sc.Platform.Key,
		Login:     sc.Platform.Login,
		Password:  sc.Platform.Password,
		Posts:     make([]transfer.SchedulePost, 0, len(posts)),
	}
	if sc.Restaurant != nil {
		payload.RestaurantID = sc.Restaurant.ID
		payload.RestaurantName = sc.Restaurant.Name
	}
	if sc.Organization != nil {
		payload.OrganizationID = sc.Organization.ID
		payload.OrganizationName = sc.Organization.Name
	}
	for _, p := range posts {
		url := p.ConvertedURL
		if url == "" {
			url = p.URL
		}
		payload.Posts = append(payload.Posts, transfer.SchedulePost{PostID: p.ID, URL: url, Type: p.MediaType})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("error marshalling schedule payload: %w", err)
	}

	handle := scheduler.HandleFor(story.ID)
	expr := scheduler.CronExpression(*story.PublishedAt)

	err = s.s.CreateSchedule(ctx, scheduler.CreateScheduleInput{
		Name:       handle.Name(),
		Expression: expr,
		Target:     s.target,
		RoleArn:    s.roleArn,
		Payload:    body,
	})
	if err != nil {
		return fmt.Errorf("failed to schedule story %d: %w", story.ID, err)
	}

	slog.Info("story scheduled", "story_id", story.ID, "schedule", handle.Name(), "expression", expr, "posts", len(posts))
	return nil
}

// DeleteStorySchedule removes the story's schedule. A missing schedule is
// reported as scheduler.ErrScheduleNotFound.
func (s *scheduleService) DeleteStorySchedule(ctx context.Context, storyID int64) error {
	handle := scheduler.HandleFor(storyID)
	if err := s.s.DeleteSchedule(ctx, handle.Name()); err != nil {
		return err
	}
	slog.Info("story schedule deleted", "story_id", storyID, "schedule", handle.Name())
	return nil
}

// SortPosts returns the posts ordered by position. Positions must form the
// sequence 0..n-1.
func SortPosts(posts []*models.Post) ([]*models.Post, error) {
	if len(posts) == 0 {
		return nil, ErrStoryHasNoPosts
	}

	sorted := make([]*models.Post, len(posts))
	copy(sorted, posts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Position < sorted[j].Position
	})

	for i, p := range sorted {
		if p.Position != i {
			return nil, fmt.Errorf("%w: post %d has position %d, expected %d", ErrInvalidPostPositions, p.ID, p.Position, i)
		}
	}
	return sorted, nil
}
