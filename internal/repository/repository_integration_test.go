package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/maheshrc27/storyflow/internal/database/dbtest"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type RepositorySuite struct {
	suite.Suite
	ctx context.Context
	pg  *dbtest.Postgres

	posts       repository.PostRepository
	stories     repository.StoryRepository
	events      repository.StoryEventRepository
	platforms   repository.PlatformRepository
	restaurants repository.RestaurantRepository

	platformID int64
}

func (s *RepositorySuite) SetupSuite() {
	s.ctx = context.Background()

	pg, err := dbtest.Start(s.ctx)
	require.NoError(s.T(), err)
	s.pg = pg

	s.posts = repository.NewPostRepository(pg.DB)
	s.stories = repository.NewStoryRepository(pg.DB, s.posts)
	s.events = repository.NewStoryEventRepository(pg.DB)
	s.platforms = repository.NewPlatformRepository(pg.DB)
	s.restaurants = repository.NewRestaurantRepository(pg.DB)
}

func (s *RepositorySuite) TearDownSuite() {
	if s.pg != nil {
		s.pg.Close(s.ctx)
	}
}

func (s *RepositorySuite) SetupTest() {
	require.NoError(s.T(), s.pg.Reset(s.ctx))

	id, err := s.pg.SeedPlatform(s.ctx, models.PlatformInstagram, "bistro", "ciphertext")
	require.NoError(s.T(), err)
	s.platformID = id
}

func TestRepositorySuite(t *testing.T) {
	dbtest.RequireDocker(t)
	suite.Run(t, new(RepositorySuite))
}

func (s *RepositorySuite) createStory(status string, publishedAt *time.Time, externalIDs ...string) int64 {
	t := s.T()
	story := &models.Story{Name: "Spring menu", Status: status, PublishedAt: publishedAt, PlatformID: s.platformID}

	id, err := s.stories.Create(s.ctx, nil, story)
	require.NoError(t, err)

	// Insert out of order to check FindByID sorts by position.
	for i := len(externalIDs) - 1; i >= 0; i-- {
		_, err := s.posts.Create(s.ctx, nil, &models.Post{
			StoryID:        id,
			URL:            "https://cdn.example.com/p.jpg",
			MediaType:      models.MediaTypeImage,
			Position:       i,
			ExternalPostID: externalIDs[i],
		})
		require.NoError(t, err)
	}
	return id
}

func (s *RepositorySuite) setEventCreatedAt(id string, at time.Time) {
	_, err := s.pg.DB.ExecContext(s.ctx, `UPDATE story_events SET created_at = $1 WHERE id = $2`, at, id)
	require.NoError(s.T(), err)
}

func (s *RepositorySuite) TestStory_FindByIDLoadsPlatformAndOrderedPosts() {
	t := s.T()
	published := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	id := s.createStory(models.StoryStatusPublished, &published, "ig_1", "", "ig_3")

	story, err := s.stories.FindByID(s.ctx, id)
	require.NoError(t, err)
	require.NotNil(t, story)

	assert.Equal(t, models.StoryStatusPublished, story.Status)
	require.NotNil(t, story.PublishedAt)
	assert.True(t, published.Equal(*story.PublishedAt))

	require.NotNil(t, story.Platform)
	assert.Equal(t, "ciphertext", story.Platform.Password)

	require.Len(t, story.Posts, 3)
	for i, p := range story.Posts {
		assert.Equal(t, i, p.Position)
	}
	assert.Equal(t, "ig_1", story.Posts[0].ExternalPostID)
	assert.Empty(t, story.Posts[1].ExternalPostID)
}

func (s *RepositorySuite) TestStory_FindByIDMissing() {
	story, err := s.stories.FindByID(s.ctx, 404)
	require.NoError(s.T(), err)
	assert.Nil(s.T(), story)
}

func (s *RepositorySuite) TestStory_UpdateAndRemoveInTx() {
	t := s.T()
	id := s.createStory(models.StoryStatusDraft, nil, "ig_1")

	tx, err := s.pg.DB.BeginTx(s.ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.stories.Update(s.ctx, tx, &models.Story{ID: id, Name: "Renamed", Status: models.StoryStatusDraft, PlatformID: s.platformID}))
	require.NoError(t, tx.Rollback())

	story, err := s.stories.FindByID(s.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Spring menu", story.Name)

	tx, err = s.pg.DB.BeginTx(s.ctx, nil)
	require.NoError(t, err)
	require.NoError(t, s.posts.RemoveByStoryID(s.ctx, tx, id))
	require.NoError(t, s.stories.Remove(s.ctx, tx, id))
	require.NoError(t, tx.Commit())

	story, err = s.stories.FindByID(s.ctx, id)
	require.NoError(t, err)
	assert.Nil(t, story)

	posts, err := s.posts.ListByStoryID(s.ctx, id)
	require.NoError(t, err)
	assert.Empty(t, posts)
}

func (s *RepositorySuite) TestEvent_CreateStoresSnapshotAndCreatedAt() {
	t := s.T()
	ev := &models.StoryEvent{ID: "ev_snap", StoryID: 9, Operation: models.OperationDelete, Snapshot: []byte(`{"id":9,"posts":[]}`), Status: models.EventStatusPending}
	require.NoError(t, s.events.Create(s.ctx, nil, ev))
	assert.False(t, ev.CreatedAt.IsZero())

	got, err := s.events.GetByID(s.ctx, "ev_snap")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.JSONEq(t, `{"id":9,"posts":[]}`, string(got.Snapshot))
	assert.Equal(t, 0, got.Attempts)
	assert.Nil(t, got.ProcessedAt)

	plain := &models.StoryEvent{ID: "ev_plain", StoryID: 9, Operation: models.OperationCreate, Status: models.EventStatusPending}
	require.NoError(t, s.events.Create(s.ctx, nil, plain))
	got, err = s.events.GetByID(s.ctx, "ev_plain")
	require.NoError(t, err)
	assert.Empty(t, got.Snapshot)

	missing, err := s.events.GetByID(s.ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func (s *RepositorySuite) TestEvent_ListPendingRespectsBeforeAndMaxAttempts() {
	t := s.T()
	now := time.Now().UTC()

	for _, id := range []string{"old_pending", "old_failed", "exhausted", "done", "fresh"} {
		require.NoError(t, s.events.Create(s.ctx, nil, &models.StoryEvent{ID: id, StoryID: 1, Operation: models.OperationUpdate, Status: models.EventStatusPending}))
	}
	s.setEventCreatedAt("old_pending", now.Add(-10*time.Minute))
	s.setEventCreatedAt("old_failed", now.Add(-9*time.Minute))
	s.setEventCreatedAt("exhausted", now.Add(-8*time.Minute))
	s.setEventCreatedAt("done", now.Add(-7*time.Minute))
	s.setEventCreatedAt("fresh", now)

	require.NoError(t, s.events.MarkFailed(s.ctx, "old_failed", "redis down"))
	for i := 0; i < 3; i++ {
		require.NoError(t, s.events.MarkFailed(s.ctx, "exhausted", "still failing"))
	}
	require.NoError(t, s.events.MarkDone(s.ctx, "done"))

	pending, err := s.events.ListPending(s.ctx, now.Add(-time.Minute), 3, 100)
	require.NoError(t, err)

	var ids []string
	for _, ev := range pending {
		ids = append(ids, ev.ID)
	}
	assert.Equal(t, []string{"old_pending", "old_failed"}, ids)
	assert.Equal(t, "redis down", pending[1].LastError)

	pending, err = s.events.ListPending(s.ctx, now.Add(-time.Minute), 4, 100)
	require.NoError(t, err)
	assert.Len(t, pending, 3)

	pending, err = s.events.ListPending(s.ctx, now.Add(-time.Minute), 3, 1)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "old_pending", pending[0].ID)
}

func (s *RepositorySuite) TestEvent_MarkDoneAndFailed() {
	t := s.T()
	require.NoError(t, s.events.Create(s.ctx, nil, &models.StoryEvent{ID: "ev1", StoryID: 1, Operation: models.OperationCreate, Status: models.EventStatusPending}))

	require.NoError(t, s.events.MarkFailed(s.ctx, "ev1", "boom"))
	ev, err := s.events.GetByID(s.ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusFailed, ev.Status)
	assert.Equal(t, 1, ev.Attempts)
	assert.Equal(t, "boom", ev.LastError)

	require.NoError(t, s.events.MarkDone(s.ctx, "ev1"))
	ev, err = s.events.GetByID(s.ctx, "ev1")
	require.NoError(t, err)
	assert.Equal(t, models.EventStatusDone, ev.Status)
	assert.Equal(t, 2, ev.Attempts)
	assert.Empty(t, ev.LastError)
	assert.NotNil(t, ev.ProcessedAt)

	assert.Error(t, s.events.MarkDone(s.ctx, "missing"))
	assert.Error(t, s.events.MarkFailed(s.ctx, "missing", "x"))
}

func (s *RepositorySuite) TestPlatform_FindAndUpdateCredentials() {
	t := s.T()

	platform, err := s.platforms.FindByID(s.ctx, s.platformID)
	require.NoError(t, err)
	require.NotNil(t, platform)
	assert.Equal(t, models.PlatformInstagram, platform.Key)
	require.NotNil(t, platform.Restaurant)
	assert.Equal(t, "Bistro", platform.Restaurant.Name)

	require.NoError(t, s.platforms.UpdateCredentials(s.ctx, s.platformID, "bistro2", "newcipher"))
	platform, err = s.platforms.FindByID(s.ctx, s.platformID)
	require.NoError(t, err)
	assert.Equal(t, "bistro2", platform.Login)
	assert.Equal(t, "newcipher", platform.Password)

	missing, err := s.platforms.FindByID(s.ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func (s *RepositorySuite) TestRestaurant_FindByIDWithOrganization() {
	t := s.T()
	platform, err := s.platforms.FindByID(s.ctx, s.platformID)
	require.NoError(t, err)

	restaurant, err := s.restaurants.FindByID(s.ctx, platform.RestaurantID)
	require.NoError(t, err)
	require.NotNil(t, restaurant)
	require.NotNil(t, restaurant.Organization)
	assert.Equal(t, "Bistro Group", restaurant.Organization.Name)
}
