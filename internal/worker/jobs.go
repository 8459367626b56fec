package worker

import (
	"context"
	"errors"
	"time"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

// Submitter is the subset of Pool that jobs use to requeue themselves.
type Submitter interface {
	Submit(Job) error
}

// FlushScheduleJob retries a schedule write that previously failed against
// the durable store. The cache already holds the updated schedule, so the
// review itself was not lost; this job only catches the durable copy up.
// After a successful flush the durable row carries a new ID and version,
// which must land back in the cache or every later cached read would feed
// a stale version into the next save.
type FlushScheduleJob struct {
	Durable  repository.ScheduleStore
	Cache    repository.ScheduleStore
	Queue    Submitter
	Schedule models.CardSchedule
	Attempt  int
}

const (
	maxFlushAttempts = 5
	flushBackoff     = 2 * time.Second
)

func (j *FlushScheduleJob) Name() string { return "flush_schedule" }

func (j *FlushScheduleJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"learner_id": j.Schedule.LearnerID,
		"card_id":    j.Schedule.CardID,
		"attempt":    j.Attempt,
	})

	s := j.Schedule
	err := j.Durable.Save(ctx, &s)
	if err == nil {
		if j.Cache != nil {
			if cacheErr := j.Cache.Save(ctx, &s); cacheErr != nil {
				log.Warn("failed to write flushed schedule back to cache: %v", cacheErr)
			}
		}
		log.Debug("schedule flushed to durable store")
		return nil
	}
	if errors.Is(err, repository.ErrVersionConflict) {
		// A newer write already landed; this copy is obsolete.
		log.Debug("dropping stale schedule flush")
		return nil
	}

	if j.Attempt+1 >= maxFlushAttempts {
		log.Error("giving up on schedule flush: %v", err)
		return err
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(flushBackoff):
	}

	retry := &FlushScheduleJob{
		Durable:  j.Durable,
		Cache:    j.Cache,
		Queue:    j.Queue,
		Schedule: j.Schedule,
		Attempt:  j.Attempt + 1,
	}
	if qErr := j.Queue.Submit(retry); qErr != nil {
		log.Error("failed to requeue schedule flush: %v", qErr)
		return err
	}
	log.Warn("durable save failed, requeued flush: %v", err)
	return nil
}
