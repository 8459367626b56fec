package services

import (
	"context"
	"time"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/srs"
)

// StatsService aggregates a learner's scheduling state for the dashboard.
type StatsService interface {
	Overview(ctx context.Context, learnerID int64) (*models.ReviewStats, error)
	RecentReviews(ctx context.Context, learnerID, cardID int64, limit int) ([]models.ReviewLog, error)
}

type statsService struct {
	schedules repository.ScheduleStore
	logs      repository.ReviewLogRepository
	now       func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(schedules repository.ScheduleStore, logs repository.ReviewLogRepository) StatsService {
	return &statsService{schedules: schedules, logs: logs, now: time.Now}
}

func (s *statsService) Overview(ctx context.Context, learnerID int64) (*models.ReviewStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("computing review stats: learner_id=%d", learnerID)

	schedules, err := s.schedules.ListByLearner(ctx, learnerID)
	if err != nil {
		log.Error("failed to list schedules: %v", err)
		return nil, errors.NewInternalError(err)
	}

	stats := srs.ComputeStats(schedules, s.now())
	return &stats, nil
}

func (s *statsService) RecentReviews(ctx context.Context, learnerID, cardID int64, limit int) ([]models.ReviewLog, error) {
	if limit <= 0 {
		limit = 50
	}

	schedule, err := s.schedules.Get(ctx, learnerID, cardID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if schedule == nil {
		return nil, errors.NewNotFoundError("schedule", cardID)
	}

	logs, err := s.logs.List(ctx, models.ReviewLogFilter{ScheduleID: schedule.ID, Limit: limit})
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return logs, nil
}
