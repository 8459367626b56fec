package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finlearn/finflash/internal/models"
)

// MockScheduleStore is a mock implementation of repository.ScheduleStore
type MockScheduleStore struct {
	mock.Mock
}

func (m *MockScheduleStore) Get(ctx context.Context, learnerID, cardID int64) (*models.CardSchedule, error) {
	args := m.Called(ctx, learnerID, cardID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CardSchedule), args.Error(1)
}

func (m *MockScheduleStore) ListByLearner(ctx context.Context, learnerID int64) ([]models.CardSchedule, error) {
	args := m.Called(ctx, learnerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CardSchedule), args.Error(1)
}

func (m *MockScheduleStore) Save(ctx context.Context, s *models.CardSchedule) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}
