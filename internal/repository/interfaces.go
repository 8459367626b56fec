package repository

import (
	"context"
	"errors"

	"github.com/finlearn/finflash/internal/models"
)

// ErrVersionConflict is returned by ScheduleStore.Save when the row's
// version no longer matches the one the schedule was loaded with, meaning
// a concurrent review already updated it.
var ErrVersionConflict = errors.New("schedule version conflict")

// LearnerRepository handles learner data access
type LearnerRepository interface {
	Get(ctx context.Context, id int64) (*models.Learner, error)
	List(ctx context.Context) ([]models.Learner, error)
	Upsert(ctx context.Context, username string) (*models.Learner, error)
	Delete(ctx context.Context, id int64) error
}

// DeckRepository handles deck data access
type DeckRepository interface {
	Get(ctx context.Context, id int64) (*models.Deck, error)
	List(ctx context.Context) ([]models.Deck, error)
	Insert(ctx context.Context, deck models.Deck) (int64, error)
	Delete(ctx context.Context, id int64) error
}

// CardRepository handles card data access
type CardRepository interface {
	Get(ctx context.Context, id int64) (*models.Card, error)
	List(ctx context.Context, filter models.CardFilter) ([]models.Card, error)
	Count(ctx context.Context, filter models.CardFilter) (int, error)
	Insert(ctx context.Context, card models.Card) (int64, error)
	InsertBatch(ctx context.Context, cards []models.Card) ([]int64, error)
}

// ScheduleStore is the persistence port for per-learner card schedules.
// Both the durable store and the in-process cache implement it, and the
// write-through store composes the two behind the same interface.
type ScheduleStore interface {
	// Get returns the schedule for one learner and card, or nil when the
	// learner has not met the card yet.
	Get(ctx context.Context, learnerID, cardID int64) (*models.CardSchedule, error)
	ListByLearner(ctx context.Context, learnerID int64) ([]models.CardSchedule, error)
	// Save inserts or updates the schedule. On update the write is guarded
	// by s.Version; a stale version yields ErrVersionConflict. The stored
	// row's new ID and version are written back into s.
	Save(ctx context.Context, s *models.CardSchedule) error
}

// ReviewLogRepository handles the append-only review history
type ReviewLogRepository interface {
	Insert(ctx context.Context, log models.ReviewLog) (int64, error)
	List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLog, error)
}
