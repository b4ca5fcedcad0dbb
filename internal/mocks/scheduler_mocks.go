package mocks

import (
	"context"

	"github.com/maheshrc27/storyflow/internal/scheduler"
	"github.com/stretchr/testify/mock"
)

type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) CreateSchedule(ctx context.Context, in scheduler.CreateScheduleInput) error {
	args := m.Called(ctx, in)
	return args.Error(0)
}

func (m *MockScheduler) DeleteSchedule(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}
