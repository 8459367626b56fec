package services

import (
	"context"
	"strings"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/repository/memory"
)

// LearnerService handles learner accounts
type LearnerService interface {
	GetLearner(ctx context.Context, id int64) (*models.Learner, error)
	ListLearners(ctx context.Context) ([]models.Learner, error)
	CreateLearner(ctx context.Context, username string) (*models.Learner, error)
	DeleteLearner(ctx context.Context, id int64) error
}

type learnerService struct {
	learners repository.LearnerRepository
	cache    *memory.ScheduleCache
}

// NewLearnerService creates a new LearnerService. cache may be nil.
func NewLearnerService(learners repository.LearnerRepository, cache *memory.ScheduleCache) LearnerService {
	return &learnerService{learners: learners, cache: cache}
}

func (s *learnerService) GetLearner(ctx context.Context, id int64) (*models.Learner, error) {
	learner, err := s.learners.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return learner, nil
}

func (s *learnerService) ListLearners(ctx context.Context) ([]models.Learner, error) {
	learners, err := s.learners.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return learners, nil
}

func (s *learnerService) CreateLearner(ctx context.Context, username string) (*models.Learner, error) {
	log := logger.FromContext(ctx)

	username = strings.TrimSpace(strings.ToLower(username))
	if username == "" {
		return nil, errors.NewValidationError("username", "cannot be empty")
	}
	if len(username) > 64 {
		return nil, errors.NewValidationError("username", "must be at most 64 characters")
	}

	learner, err := s.learners.Upsert(ctx, username)
	if err != nil {
		log.Error("failed to upsert learner: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("learner ready: id=%d, username=%s", learner.ID, learner.Username)
	return learner, nil
}

func (s *learnerService) DeleteLearner(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx)

	learner, err := s.learners.Get(ctx, id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if learner == nil {
		return errors.NewNotFoundError("learner", id)
	}

	if err := s.learners.Delete(ctx, id); err != nil {
		log.Error("failed to delete learner: %v", err)
		return errors.NewInternalError(err)
	}
	if s.cache != nil {
		s.cache.Evict(id)
	}
	log.Info("learner deleted: id=%d", id)
	return nil
}
