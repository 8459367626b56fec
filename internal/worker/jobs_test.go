package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/repository/memory"
	"github.com/finlearn/finflash/internal/testutil/mocks"
)

type fakeSubmitter struct {
	jobs []Job
	err  error
}

func (f *fakeSubmitter) Submit(j Job) error {
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, j)
	return nil
}

func flushSchedule() models.CardSchedule {
	return models.CardSchedule{
		ID:        5,
		LearnerID: 7,
		CardID:    1,
		DueAt:     time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Version:   2,
	}
}

func TestFlushScheduleJobSucceeds(t *testing.T) {
	durable := new(mocks.MockScheduleStore)
	queue := &fakeSubmitter{}
	schedule := flushSchedule()

	durable.On("Save", context.Background(), &schedule).Return(nil)

	job := &FlushScheduleJob{Durable: durable, Queue: queue, Schedule: schedule}
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, queue.jobs)
	durable.AssertExpectations(t)
}

func TestFlushScheduleJobWritesBumpedVersionToCache(t *testing.T) {
	ctx := context.Background()
	durable := new(mocks.MockScheduleStore)
	cache := memory.NewScheduleCache()
	schedule := flushSchedule()

	// The cache still holds the pre-flush copy.
	stale := schedule
	require.NoError(t, cache.Save(ctx, &stale))

	// The durable save bumps the row's version, like the real store does.
	durable.On("Save", ctx, mock.AnythingOfType("*models.CardSchedule")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.CardSchedule).Version++
	}).Return(nil)

	job := &FlushScheduleJob{Durable: durable, Cache: cache, Queue: &fakeSubmitter{}, Schedule: schedule}
	require.NoError(t, job.Run(ctx))

	cached, err := cache.Get(ctx, schedule.LearnerID, schedule.CardID)
	require.NoError(t, err)
	require.NotNil(t, cached)
	assert.Equal(t, schedule.Version+1, cached.Version, "cache must carry the post-flush version")
}

func TestFlushScheduleJobDropsStaleConflict(t *testing.T) {
	durable := new(mocks.MockScheduleStore)
	queue := &fakeSubmitter{}
	schedule := flushSchedule()

	durable.On("Save", context.Background(), &schedule).Return(repository.ErrVersionConflict)

	job := &FlushScheduleJob{Durable: durable, Queue: queue, Schedule: schedule}
	// A conflict means a newer write already landed; the job is done.
	require.NoError(t, job.Run(context.Background()))
	assert.Empty(t, queue.jobs)
}

func TestFlushScheduleJobRequeuesWithBumpedAttempt(t *testing.T) {
	durable := new(mocks.MockScheduleStore)
	queue := &fakeSubmitter{}
	schedule := flushSchedule()

	durable.On("Save", context.Background(), &schedule).Return(errors.New("disk full"))

	job := &FlushScheduleJob{Durable: durable, Queue: queue, Schedule: schedule}
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, queue.jobs, 1)
	retry, ok := queue.jobs[0].(*FlushScheduleJob)
	require.True(t, ok)
	assert.Equal(t, 1, retry.Attempt)
	assert.Equal(t, schedule, retry.Schedule)
}

func TestFlushScheduleJobGivesUpAfterMaxAttempts(t *testing.T) {
	durable := new(mocks.MockScheduleStore)
	queue := &fakeSubmitter{}
	schedule := flushSchedule()

	saveErr := errors.New("disk full")
	durable.On("Save", context.Background(), &schedule).Return(saveErr)

	job := &FlushScheduleJob{Durable: durable, Queue: queue, Schedule: schedule, Attempt: maxFlushAttempts - 1}
	err := job.Run(context.Background())
	require.ErrorIs(t, err, saveErr)
	assert.Empty(t, queue.jobs)
}

func TestFlushScheduleJobStopsOnCancelledContext(t *testing.T) {
	durable := new(mocks.MockScheduleStore)
	queue := &fakeSubmitter{}
	schedule := flushSchedule()

	ctx, cancel := context.WithCancel(context.Background())
	durable.On("Save", ctx, &schedule).Return(errors.New("disk full"))
	cancel()

	job := &FlushScheduleJob{Durable: durable, Queue: queue, Schedule: schedule}
	err := job.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, queue.jobs)
}
