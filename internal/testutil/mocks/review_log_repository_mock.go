package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finlearn/finflash/internal/models"
)

// MockReviewLogRepository is a mock implementation of repository.ReviewLogRepository
type MockReviewLogRepository struct {
	mock.Mock
}

func (m *MockReviewLogRepository) Insert(ctx context.Context, log models.ReviewLog) (int64, error) {
	args := m.Called(ctx, log)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLog, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ReviewLog), args.Error(1)
}
