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

// ReviewService drives review sessions: building the due worklist, applying
// review outcomes to schedules, and recording history.
type ReviewService interface {
	Queue(ctx context.Context, learnerID int64, limit int) ([]models.ReviewCard, error)
	NextCard(ctx context.Context, learnerID int64) (*models.ReviewCard, error)
	SubmitResponse(ctx context.Context, learnerID, cardID int64, correct bool, confidence int, timeSeconds float64) (*models.CardSchedule, error)
	SubmitQuality(ctx context.Context, learnerID, cardID int64, quality int, timeSeconds float64) (*models.CardSchedule, error)
	Retention(ctx context.Context, learnerID, cardID int64) (float64, error)
}

type reviewService struct {
	schedules repository.ScheduleStore
	cards     repository.CardRepository
	logs      repository.ReviewLogRepository
	now       func() time.Time
}

// NewReviewService creates a new ReviewService
func NewReviewService(schedules repository.ScheduleStore, cards repository.CardRepository, logs repository.ReviewLogRepository) ReviewService {
	return &reviewService{
		schedules: schedules,
		cards:     cards,
		logs:      logs,
		now:       time.Now,
	}
}

// Queue returns the learner's session worklist: overdue cards first, most
// overdue leading, then upcoming soonest-first. Cards the learner has never
// met get a fresh (immediately due) schedule on the way through.
func (s *reviewService) Queue(ctx context.Context, learnerID int64, limit int) ([]models.ReviewCard, error) {
	log := logger.FromContext(ctx)
	log.Debug("building review queue: learner_id=%d, limit=%d", learnerID, limit)

	cards, err := s.cards.List(ctx, models.CardFilter{})
	if err != nil {
		log.Error("failed to list cards: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(cards) == 0 {
		return nil, nil
	}

	schedules, err := s.schedules.ListByLearner(ctx, learnerID)
	if err != nil {
		log.Error("failed to list schedules: %v", err)
		return nil, errors.NewInternalError(err)
	}

	now := s.now()
	byCard := make(map[int64]models.CardSchedule, len(schedules))
	for _, sc := range schedules {
		byCard[sc.CardID] = sc
	}
	cardByID := make(map[int64]models.Card, len(cards))
	for _, c := range cards {
		cardByID[c.ID] = c
		if _, ok := byCard[c.ID]; ok {
			continue
		}
		// First encounter with this card.
		fresh := srs.NewSchedule(learnerID, c.ID, now)
		if err := s.schedules.Save(ctx, &fresh); err != nil {
			log.Error("failed to save new schedule: %v", err)
			return nil, errors.NewInternalError(err)
		}
		byCard[c.ID] = fresh
		schedules = append(schedules, fresh)
	}

	ordered := srs.SelectDue(schedules, now)
	if limit > 0 && len(ordered) > limit {
		ordered = ordered[:limit]
	}

	queue := make([]models.ReviewCard, 0, len(ordered))
	for _, cardID := range ordered {
		card, ok := cardByID[cardID]
		if !ok {
			// Schedule for a card that was since removed from its deck.
			continue
		}
		sc := byCard[cardID]
		queue = append(queue, models.ReviewCard{
			Card:      card,
			Schedule:  sc,
			Retention: srs.PredictRetention(sc, now),
		})
	}
	log.Debug("review queue built: %d cards", len(queue))
	return queue, nil
}

func (s *reviewService) NextCard(ctx context.Context, learnerID int64) (*models.ReviewCard, error) {
	queue, err := s.Queue(ctx, learnerID, 0)
	if err != nil {
		return nil, err
	}

	now := s.now()
	for i := range queue {
		if srs.IsDue(queue[i].Schedule, now) {
			return &queue[i], nil
		}
	}
	return nil, nil
}

func (s *reviewService) SubmitResponse(ctx context.Context, learnerID, cardID int64, correct bool, confidence int, timeSeconds float64) (*models.CardSchedule, error) {
	if confidence < 1 || confidence > 5 {
		return nil, errors.NewValidationError("confidence", "must be between 1 and 5")
	}
	quality := srs.QualityFromResponse(correct, confidence)
	return s.submit(ctx, learnerID, cardID, quality, correct, confidence, timeSeconds)
}

func (s *reviewService) SubmitQuality(ctx context.Context, learnerID, cardID int64, quality int, timeSeconds float64) (*models.CardSchedule, error) {
	if quality < 0 || quality > 5 {
		return nil, errors.NewValidationError("quality", "must be between 0 and 5")
	}
	return s.submit(ctx, learnerID, cardID, quality, quality >= srs.PassQuality, 0, timeSeconds)
}

func (s *reviewService) submit(ctx context.Context, learnerID, cardID int64, quality int, correct bool, confidence int, timeSeconds float64) (*models.CardSchedule, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting review: learner_id=%d, card_id=%d, quality=%d", learnerID, cardID, quality)

	card, err := s.cards.Get(ctx, cardID)
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if card == nil {
		return nil, errors.NewNotFoundError("card", cardID)
	}

	now := s.now()
	schedule, err := s.schedules.Get(ctx, learnerID, cardID)
	if err != nil {
		log.Error("failed to load schedule: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if schedule == nil {
		fresh := srs.NewSchedule(learnerID, cardID, now)
		schedule = &fresh
	}

	updated := srs.ApplyReview(*schedule, quality, now)
	if err := s.schedules.Save(ctx, &updated); err != nil {
		if err == repository.ErrVersionConflict {
			return nil, errors.NewConflictError("card was reviewed concurrently, reload and retry", err)
		}
		log.Error("failed to save schedule: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Debug("review applied: interval=%d days, ease=%.2f, repetitions=%d",
		updated.IntervalDays, updated.EaseFactor, updated.Repetitions)

	// History is best-effort; a review must not fail because its log write did.
	if _, err := s.logs.Insert(ctx, models.ReviewLog{
		ScheduleID:  updated.ID,
		Quality:     updated.LastQuality,
		Correct:     correct,
		Confidence:  confidence,
		TimeSeconds: timeSeconds,
		ReviewedAt:  now,
	}); err != nil {
		log.Warn("failed to store review log: %v", err)
	}

	return &updated, nil
}

func (s *reviewService) Retention(ctx context.Context, learnerID, cardID int64) (float64, error) {
	schedule, err := s.schedules.Get(ctx, learnerID, cardID)
	if err != nil {
		return 0, errors.NewInternalError(err)
	}
	if schedule == nil {
		return 0, errors.NewNotFoundError("schedule", cardID)
	}
	return srs.PredictRetention(*schedule, s.now()), nil
}
