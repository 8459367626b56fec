// Package memory holds the in-process ScheduleStore used as the fast local
// side of the write-through store.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

type key struct {
	learnerID int64
	cardID    int64
}

// ScheduleCache keeps schedules in memory, keyed by learner and card.
// Values are stored and returned by copy so callers never share state.
type ScheduleCache struct {
	mu        sync.RWMutex
	schedules map[key]models.CardSchedule
}

var _ repository.ScheduleStore = (*ScheduleCache)(nil)

// NewScheduleCache creates an empty cache.
func NewScheduleCache() *ScheduleCache {
	return &ScheduleCache{schedules: make(map[key]models.CardSchedule)}
}

func (c *ScheduleCache) Get(_ context.Context, learnerID, cardID int64) (*models.CardSchedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.schedules[key{learnerID, cardID}]
	if !ok {
		return nil, nil
	}
	out := s
	return &out, nil
}

func (c *ScheduleCache) ListByLearner(_ context.Context, learnerID int64) ([]models.CardSchedule, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []models.CardSchedule
	for k, s := range c.schedules {
		if k.learnerID == learnerID {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CardID < out[j].CardID })
	return out, nil
}

func (c *ScheduleCache) Save(_ context.Context, s *models.CardSchedule) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.schedules[key{s.LearnerID, s.CardID}] = *s
	return nil
}

// Evict drops one learner's entries, used when a learner is deleted.
func (c *ScheduleCache) Evict(learnerID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for k := range c.schedules {
		if k.learnerID == learnerID {
			delete(c.schedules, k)
		}
	}
}

// Len returns the number of cached schedules.
func (c *ScheduleCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.schedules)
}
