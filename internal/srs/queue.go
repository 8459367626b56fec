package srs

import (
	"math"
	"sort"
	"time"

	"github.com/finlearn/finflash/internal/models"
)

// IsDue reports whether the card should be shown now. A card whose due
// time equals now exactly is due.
func IsDue(s models.CardSchedule, now time.Time) bool {
	return !now.Before(s.DueAt)
}

// DaysUntilDue returns the number of days until the card is due, rounding
// partial days away from zero. Negative values mean the card is overdue by
// that many days; zero means due at this exact instant.
func DaysUntilDue(s models.CardSchedule, now time.Time) int {
	diff := s.DueAt.Sub(now)
	switch {
	case diff > 0:
		return int(math.Ceil(diff.Hours() / 24))
	case diff < 0:
		return -int(math.Ceil((-diff).Hours() / 24))
	default:
		return 0
	}
}

// SelectDue orders a learner's schedules into a review worklist and
// returns the card IDs. Overdue cards come first, most overdue leading, so
// neglected cards are never buried behind recently-due ones; upcoming
// cards follow soonest-first. The sort is stable, so ties keep the input
// order and repeated calls with the same inputs yield the same sequence.
func SelectDue(schedules []models.CardSchedule, now time.Time) []int64 {
	type entry struct {
		cardID int64
		days   int
	}
	entries := make([]entry, len(schedules))
	for i, s := range schedules {
		entries[i] = entry{cardID: s.CardID, days: DaysUntilDue(s, now)}
	}
	// Overdue (days < 0) ascending, then upcoming ascending: a single
	// stable sort on days gives exactly that order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].days < entries[j].days
	})
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.cardID
	}
	return ids
}

// ComputeStats aggregates a learner's collection. The learning/young/mature
// categories partition the collection; the due counts overlap with each
// other and with the maturity tiers.
func ComputeStats(schedules []models.CardSchedule, now time.Time) models.ReviewStats {
	stats := models.ReviewStats{
		TotalCards:    len(schedules),
		AvgEaseFactor: InitialEaseFactor,
	}
	if len(schedules) == 0 {
		return stats
	}

	// Exclusive bound: anything due before the next local midnight is due today.
	nextMidnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
	weekOut := now.Add(7 * day)

	var easeSum float64
	for _, s := range schedules {
		if IsDue(s, now) {
			stats.DueNow++
		}
		if s.DueAt.Before(nextMidnight) {
			stats.DueToday++
		}
		if !s.DueAt.After(weekOut) {
			stats.DueThisWeek++
		}
		switch {
		case s.Repetitions < LearningRepetitions:
			stats.LearningCards++
		case s.IntervalDays < MatureIntervalDays:
			stats.YoungCards++
		default:
			stats.MatureCards++
		}
		easeSum += s.EaseFactor
	}
	stats.AvgEaseFactor = easeSum / float64(len(schedules))
	return stats
}

// PredictRetention estimates the probability (0-100) that the learner still
// recalls the card. Overdue cards decay from a 90% baseline by 5 points
// per day overdue, floored at 20%; cards not yet due get an ease bonus
// capped at 99%. Display only; the estimate never feeds the scheduler.
func PredictRetention(s models.CardSchedule, now time.Time) float64 {
	if now.After(s.DueAt) {
		daysOverdue := float64(-DaysUntilDue(s, now))
		return math.Max(20, 90-5*daysOverdue)
	}
	return math.Min(99, 90+(s.EaseFactor-MinEaseFactor)*10)
}
