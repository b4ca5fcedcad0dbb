package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/maheshrc27/storyflow/internal/mocks"
	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/maheshrc27/storyflow/internal/transfer"
	"github.com/maheshrc27/storyflow/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newRetraction(t *testing.T) (service.RetractionService, *mocks.MockPlatformClient, string) {
	t.Helper()
	codec, err := utils.NewCredentialCodec([]byte(testSecretKey))
	require.NoError(t, err)
	password, err := codec.Encrypt("hunter2")
	require.NoError(t, err)

	client := &mocks.MockPlatformClient{}
	t.Cleanup(func() { client.AssertExpectations(t) })

	rs := service.NewRetractionService(codec, map[string]service.PlatformClient{models.PlatformInstagram: client}, 2)
	return rs, client, password
}

func publishedStory(password string, externalIDs ...string) *models.Story {
	published := time.Now().Add(-time.Hour)
	story := &models.Story{
		ID:          testStoryID,
		Status:      models.StoryStatusPublished,
		PublishedAt: &published,
		PlatformID:  testPlatformID,
		Platform:    testPlatform(),
	}
	story.Platform.Password = password
	for i, ext := range externalIDs {
		story.Posts = append(story.Posts, &models.Post{ID: int64(i + 1), Position: i, ExternalPostID: ext})
	}
	return story
}

func TestRetractStory_AllPostsDeleted(t *testing.T) {
	rs, client, password := newRetraction(t)
	session := &transfer.PlatformSession{UserID: "1"}

	client.On("Login", mock.Anything, "bistro", "hunter2").Return(session, nil).Once()
	for _, id := range []string{"a", "b", "c"} {
		client.On("DeleteMedia", mock.Anything, session, id).Return(nil).Once()
	}

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "a", "b", "c"))
	require.NoError(t, err)
	assert.Equal(t, models.PlatformInstagram, report.Platform)
	assert.Equal(t, 3, report.Count(service.RetractionSucceeded))
	assert.Empty(t, report.Failed())
}

func TestRetractStory_PartialFailure(t *testing.T) {
	rs, client, password := newRetraction(t)
	session := &transfer.PlatformSession{UserID: "1"}

	client.On("Login", mock.Anything, "bistro", "hunter2").Return(session, nil).Once()
	client.On("DeleteMedia", mock.Anything, session, "a").Return(nil).Once()
	client.On("DeleteMedia", mock.Anything, session, "b").Return(errors.New("rate limited")).Once()
	client.On("DeleteMedia", mock.Anything, session, "c").Return(nil).Once()

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "a", "b", "c"))
	assert.ErrorIs(t, err, service.ErrPartialRetraction)
	require.NotNil(t, report)

	assert.Equal(t, 2, report.Count(service.RetractionSucceeded))
	failed := report.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, "b", failed[0].ExternalPostID)
	assert.Equal(t, "rate limited", failed[0].Error)
	client.AssertNumberOfCalls(t, "DeleteMedia", 3)
}

func TestRetractStory_ReplayCountsGoneMediaAsRetracted(t *testing.T) {
	rs, client, password := newRetraction(t)
	session := &transfer.PlatformSession{UserID: "1"}
	gone := fmt.Errorf("media a: %w: 404", service.ErrMediaNotFound)

	// "a" went through on the previous attempt, "b" did not.
	client.On("Login", mock.Anything, "bistro", "hunter2").Return(session, nil).Once()
	client.On("DeleteMedia", mock.Anything, session, "a").Return(gone).Once()
	client.On("DeleteMedia", mock.Anything, session, "b").Return(nil).Once()

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "a", "b"))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(service.RetractionSucceeded))
	assert.Empty(t, report.Failed())
	assert.Equal(t, "already deleted", report.Results[0].Error)
}

func TestRetractStory_SkipsPostsWithoutExternalID(t *testing.T) {
	rs, client, password := newRetraction(t)
	session := &transfer.PlatformSession{UserID: "1"}

	client.On("Login", mock.Anything, "bistro", "hunter2").Return(session, nil).Once()
	client.On("DeleteMedia", mock.Anything, session, "b").Return(nil).Once()

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "", "b"))
	require.NoError(t, err)
	assert.Equal(t, service.RetractionSkipped, report.Results[0].Outcome)
	assert.Equal(t, service.RetractionSucceeded, report.Results[1].Outcome)
}

func TestRetractStory_NothingToRetractSkipsLogin(t *testing.T) {
	rs, client, password := newRetraction(t)

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "", ""))
	require.NoError(t, err)
	assert.Equal(t, 2, report.Count(service.RetractionSkipped))
	client.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetractStory_UnsupportedPlatform(t *testing.T) {
	rs, client, password := newRetraction(t)
	story := publishedStory(password, "a", "b")
	story.Platform.Key = models.PlatformTiktok

	report, err := rs.RetractStory(context.Background(), story)
	require.NoError(t, err)
	assert.Equal(t, models.PlatformTiktok, report.Platform)
	assert.Equal(t, 2, report.Count(service.RetractionSkipped))
	client.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetractStory_LoginFailure(t *testing.T) {
	rs, client, password := newRetraction(t)
	boom := errors.New("checkpoint required")
	client.On("Login", mock.Anything, "bistro", "hunter2").Return(nil, boom).Once()

	report, err := rs.RetractStory(context.Background(), publishedStory(password, "a"))
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, service.ErrPartialRetraction)
	require.NotNil(t, report)
	assert.Equal(t, service.RetractionSkipped, report.Results[0].Outcome)
	client.AssertNotCalled(t, "DeleteMedia", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetractStory_UndecryptablePassword(t *testing.T) {
	rs, client, _ := newRetraction(t)

	_, err := rs.RetractStory(context.Background(), publishedStory("not-base64!", "a"))
	assert.Error(t, err)
	client.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestRetractStory_MissingPlatform(t *testing.T) {
	rs, _, password := newRetraction(t)
	story := publishedStory(password, "a")
	story.Platform = nil

	_, err := rs.RetractStory(context.Background(), story)
	assert.ErrorIs(t, err, service.ErrPlatformNotFound)
}
