// Package dual provides the write-through ScheduleStore that pairs the
// durable database with the in-process cache. Reads prefer the cache and
// fall back to the database; writes go to both, and a failed durable write
// keeps the updated schedule in the cache and hands it to a retry queue so
// a review is never silently dropped.
package dual

import (
	"context"
	"errors"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/repository/memory"
)

// EnqueueFunc hands a schedule whose durable write failed to the retry
// machinery.
type EnqueueFunc func(models.CardSchedule) error

type Store struct {
	durable repository.ScheduleStore
	cache   *memory.ScheduleCache
	enqueue EnqueueFunc
}

var _ repository.ScheduleStore = (*Store)(nil)

// New creates the write-through store. enqueue may be nil, in which case a
// failed durable write is surfaced to the caller instead of retried.
func New(durable repository.ScheduleStore, cache *memory.ScheduleCache, enqueue EnqueueFunc) *Store {
	return &Store{durable: durable, cache: cache, enqueue: enqueue}
}

func (s *Store) Get(ctx context.Context, learnerID, cardID int64) (*models.CardSchedule, error) {
	cached, err := s.cache.Get(ctx, learnerID, cardID)
	if err == nil && cached != nil {
		return cached, nil
	}

	loaded, err := s.durable.Get(ctx, learnerID, cardID)
	if err != nil {
		return nil, err
	}
	if loaded != nil {
		_ = s.cache.Save(ctx, loaded)
	}
	return loaded, nil
}

func (s *Store) ListByLearner(ctx context.Context, learnerID int64) ([]models.CardSchedule, error) {
	log := logger.FromContext(ctx).WithPrefix("dual_store")

	schedules, err := s.durable.ListByLearner(ctx, learnerID)
	if err != nil {
		// Serve the cached copies rather than failing the whole session.
		log.Warn("durable list failed, serving cache: %v", err)
		return s.cache.ListByLearner(ctx, learnerID)
	}
	for i := range schedules {
		_ = s.cache.Save(ctx, &schedules[i])
	}
	return schedules, nil
}

func (s *Store) Save(ctx context.Context, schedule *models.CardSchedule) error {
	log := logger.FromContext(ctx).WithPrefix("dual_store")

	err := s.durable.Save(ctx, schedule)
	if err == nil {
		return s.cache.Save(ctx, schedule)
	}
	if errors.Is(err, repository.ErrVersionConflict) {
		// The caller raced another write; refresh the cache from durable so
		// the reload-and-retry sees the winning row instead of the stale
		// cached copy, then surface the conflict.
		if fresh, loadErr := s.durable.Get(ctx, schedule.LearnerID, schedule.CardID); loadErr == nil && fresh != nil {
			_ = s.cache.Save(ctx, fresh)
		} else if loadErr != nil {
			log.Warn("failed to refresh cache after conflict: %v", loadErr)
		}
		return err
	}
	if s.enqueue == nil {
		return err
	}

	// Keep the updated schedule as the best-known state and catch the
	// durable copy up in the background.
	if cacheErr := s.cache.Save(ctx, schedule); cacheErr != nil {
		return err
	}
	if qErr := s.enqueue(*schedule); qErr != nil {
		log.Error("failed to enqueue schedule flush: %v", qErr)
		return err
	}
	log.Warn("durable save failed, schedule cached and flush queued: %v", err)
	return nil
}
