package mocks

import (
	"context"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/maheshrc27/storyflow/internal/service"
	"github.com/maheshrc27/storyflow/internal/transfer"
	"github.com/stretchr/testify/mock"
)

type MockScheduleService struct {
	mock.Mock
}

func (m *MockScheduleService) ScheduleStory(ctx context.Context, story *models.Story, sc *service.StoryContext) error {
	args := m.Called(ctx, story, sc)
	return args.Error(0)
}

func (m *MockScheduleService) DeleteStorySchedule(ctx context.Context, storyID int64) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}

type MockRetractionService struct {
	mock.Mock
}

func (m *MockRetractionService) RetractStory(ctx context.Context, story *models.Story) (*service.RetractionReport, error) {
	args := m.Called(ctx, story)
	if v := args.Get(0); v != nil {
		return v.(*service.RetractionReport), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockPlatformClient struct {
	mock.Mock
}

func (m *MockPlatformClient) Login(ctx context.Context, username, password string) (*transfer.PlatformSession, error) {
	args := m.Called(ctx, username, password)
	if v := args.Get(0); v != nil {
		return v.(*transfer.PlatformSession), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlatformClient) DeleteMedia(ctx context.Context, session *transfer.PlatformSession, mediaID string) error {
	args := m.Called(ctx, session, mediaID)
	return args.Error(0)
}

type MockStatusHandler struct {
	mock.Mock
}

func (m *MockStatusHandler) Handle(ctx context.Context, storyID int64, op string) (*service.HandleResult, error) {
	args := m.Called(ctx, storyID, op)
	if v := args.Get(0); v != nil {
		return v.(*service.HandleResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStatusHandler) HandleEvent(ctx context.Context, ev *models.StoryEvent) (*service.HandleResult, error) {
	args := m.Called(ctx, ev)
	if v := args.Get(0); v != nil {
		return v.(*service.HandleResult), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, ev *models.StoryEvent) error {
	args := m.Called(ctx, ev)
	return args.Error(0)
}

type MockStoryService struct {
	mock.Mock
}

func (m *MockStoryService) Get(ctx context.Context, id int64) (*models.Story, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Story), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryService) Create(ctx context.Context, sc *transfer.StoryCreation) (int64, error) {
	args := m.Called(ctx, sc)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoryService) Update(ctx context.Context, id int64, sc *transfer.StoryCreation) error {
	args := m.Called(ctx, id, sc)
	return args.Error(0)
}

func (m *MockStoryService) Remove(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockPlatformService struct {
	mock.Mock
}

func (m *MockPlatformService) Get(ctx context.Context, id int64) (*models.Platform, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Platform), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlatformService) SetCredentials(ctx context.Context, id int64, pc *transfer.PlatformCredentials) error {
	args := m.Called(ctx, id, pc)
	return args.Error(0)
}
