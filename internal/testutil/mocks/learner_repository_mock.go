package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/finlearn/finflash/internal/models"
)

// MockLearnerRepository is a mock implementation of repository.LearnerRepository
type MockLearnerRepository struct {
	mock.Mock
}

func (m *MockLearnerRepository) Get(ctx context.Context, id int64) (*models.Learner, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) List(ctx context.Context) ([]models.Learner, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) Upsert(ctx context.Context, username string) (*models.Learner, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Learner), args.Error(1)
}

func (m *MockLearnerRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
