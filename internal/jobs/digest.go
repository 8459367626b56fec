// Package jobs runs the periodic background tasks that are not tied to a
// single HTTP request.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/srs"
)

// Digest logs a daily summary of due cards per learner. It is the hook
// point for future reminder notifications.
type Digest struct {
	scheduler *gocron.Scheduler
	learners  repository.LearnerRepository
	schedules repository.ScheduleStore
	hour      int
	log       *logger.Logger
}

// NewDigest creates a digest that fires once a day at the given hour (UTC).
func NewDigest(learners repository.LearnerRepository, schedules repository.ScheduleStore, hour int) *Digest {
	return &Digest{
		scheduler: gocron.NewScheduler(time.UTC),
		learners:  learners,
		schedules: schedules,
		hour:      hour,
		log:       logger.Default().WithPrefix("digest"),
	}
}

// Start schedules the daily run and returns immediately.
func (d *Digest) Start() error {
	at := fmt.Sprintf("%02d:00", d.hour)
	if _, err := d.scheduler.Every(1).Day().At(at).Do(d.run); err != nil {
		return err
	}
	d.scheduler.StartAsync()
	d.log.Info("daily due digest scheduled at %s UTC", at)
	return nil
}

// Stop halts the scheduler and waits for a running job to finish.
func (d *Digest) Stop() {
	d.scheduler.Stop()
}

func (d *Digest) run() {
	ctx := logger.NewContext(context.Background(), d.log)
	now := time.Now()

	learners, err := d.learners.List(ctx)
	if err != nil {
		d.log.Error("failed to list learners: %v", err)
		return
	}

	for _, learner := range learners {
		schedules, err := d.schedules.ListByLearner(ctx, learner.ID)
		if err != nil {
			d.log.Error("failed to list schedules for learner %d: %v", learner.ID, err)
			continue
		}
		stats := srs.ComputeStats(schedules, now)
		if stats.DueNow == 0 {
			continue
		}
		d.log.Info("learner %s has %d cards due (%d due today, %d this week)",
			learner.Username, stats.DueNow, stats.DueToday, stats.DueThisWeek)
	}
}
