package mocks

import (
	"context"
	"database/sql"
	"time"

	"github.com/maheshrc27/storyflow/internal/models"
	"github.com/stretchr/testify/mock"
)

type MockStoryRepository struct {
	mock.Mock
}

func (m *MockStoryRepository) FindByID(ctx context.Context, id int64) (*models.Story, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Story), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryRepository) Create(ctx context.Context, tx *sql.Tx, story *models.Story) (int64, error) {
	args := m.Called(ctx, tx, story)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockStoryRepository) Update(ctx context.Context, tx *sql.Tx, story *models.Story) error {
	args := m.Called(ctx, tx, story)
	return args.Error(0)
}

func (m *MockStoryRepository) Remove(ctx context.Context, tx *sql.Tx, id int64) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

type MockPlatformRepository struct {
	mock.Mock
}

func (m *MockPlatformRepository) FindByID(ctx context.Context, id int64) (*models.Platform, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Platform), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPlatformRepository) UpdateCredentials(ctx context.Context, id int64, login, password string) error {
	args := m.Called(ctx, id, login, password)
	return args.Error(0)
}

type MockRestaurantRepository struct {
	mock.Mock
}

func (m *MockRestaurantRepository) FindByID(ctx context.Context, id int64) (*models.Restaurant, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.Restaurant), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockStoryEventRepository struct {
	mock.Mock
}

func (m *MockStoryEventRepository) Create(ctx context.Context, tx *sql.Tx, ev *models.StoryEvent) error {
	args := m.Called(ctx, tx, ev)
	return args.Error(0)
}

func (m *MockStoryEventRepository) GetByID(ctx context.Context, id string) (*models.StoryEvent, error) {
	args := m.Called(ctx, id)
	if v := args.Get(0); v != nil {
		return v.(*models.StoryEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryEventRepository) ListPending(ctx context.Context, before time.Time, maxAttempts, limit int) ([]*models.StoryEvent, error) {
	args := m.Called(ctx, before, maxAttempts, limit)
	if v := args.Get(0); v != nil {
		return v.([]*models.StoryEvent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockStoryEventRepository) MarkDone(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryEventRepository) MarkFailed(ctx context.Context, id string, reason string) error {
	args := m.Called(ctx, id, reason)
	return args.Error(0)
}
