// Package srs implements SM-2 spaced-repetition scheduling for flashcards.
//
// All functions are pure: callers own the CardSchedule, pass it in together
// with the current time, and get an updated copy back. Persistence and
// review-quality elicitation live elsewhere.
package srs

import (
	"math"
	"time"

	"github.com/finlearn/finflash/internal/models"
)

const (
	// MinEaseFactor and MaxEaseFactor bound the ease factor after every
	// update so intervals can neither collapse nor run away.
	MinEaseFactor = 1.3
	MaxEaseFactor = 2.5

	// InitialEaseFactor is the ease assigned to a freshly created schedule.
	InitialEaseFactor = 2.5

	// PassQuality is the lowest quality counted as a successful recall.
	PassQuality = 3

	// MatureIntervalDays marks the interval at which a card counts as mature.
	MatureIntervalDays = 21

	// LearningRepetitions is the repetition count below which a card is
	// still considered to be in the learning phase.
	LearningRepetitions = 3
)

const day = 24 * time.Hour

// NewSchedule creates the scheduling state for a card the learner has not
// met before. The card is immediately due.
func NewSchedule(learnerID, cardID int64, now time.Time) models.CardSchedule {
	return models.CardSchedule{
		LearnerID:      learnerID,
		CardID:         cardID,
		EaseFactor:     InitialEaseFactor,
		IntervalDays:   0,
		Repetitions:    0,
		DueAt:          now,
		LastReviewedAt: now,
		CreatedAt:      now,
	}
}

// QualityFromResponse maps the review UI's correct/confidence judgment onto
// the 0-5 SM-2 quality scale. Confidence is the learner's self-reported
// certainty on a 1-5 scale.
//
// A wrong answer scores max(0, confidence-3): overconfidence when wrong
// never reaches the pass threshold. A correct answer scores
// min(5, confidence+2): a hesitant correct answer still counts as a
// "barely remembered" pass.
//
// This mapping is app policy, not part of SM-2 itself; callers with a
// direct 0-5 rating can skip it and call ApplyReview directly.
func QualityFromResponse(correct bool, confidence int) int {
	if correct {
		return clampQuality(confidence + 2)
	}
	return clampQuality(confidence - 3)
}

// ApplyReview folds one review into the schedule and returns the updated
// copy. Quality outside [0, 5] is clamped, never rejected; the function is
// total and never errors.
func ApplyReview(s models.CardSchedule, quality int, now time.Time) models.CardSchedule {
	q := clampQuality(quality)

	// Canonical SM-2 ease adjustment: rewards quality above 3, penalizes
	// quality below it.
	ef := s.EaseFactor + 0.1 - float64(5-q)*(0.08+float64(5-q)*0.02)
	ef = clampEase(ef)

	interval := 1
	reps := 0
	if q >= PassQuality {
		reps = s.Repetitions + 1
		switch reps {
		case 1:
			interval = 1
		case 2:
			interval = 6
		default:
			interval = int(math.Round(float64(s.IntervalDays) * ef))
		}
	}
	// A failed card always comes back tomorrow, whatever its history.

	s.EaseFactor = ef
	s.IntervalDays = interval
	s.Repetitions = reps
	s.LastReviewedAt = now
	s.DueAt = now.Add(time.Duration(interval) * day)
	s.TotalReviews++
	s.LastQuality = q
	return s
}

// Normalize re-clamps a schedule loaded from storage so a corrupt row can
// never feed invalid state into ApplyReview.
func Normalize(s models.CardSchedule) models.CardSchedule {
	s.EaseFactor = clampEase(s.EaseFactor)
	if s.IntervalDays < 0 {
		s.IntervalDays = 0
	}
	if s.Repetitions < 0 {
		s.Repetitions = 0
	}
	if s.TotalReviews < 0 {
		s.TotalReviews = 0
	}
	s.LastQuality = clampQuality(s.LastQuality)
	return s
}

func clampQuality(q int) int {
	if q < 0 {
		return 0
	}
	if q > 5 {
		return 5
	}
	return q
}

func clampEase(ef float64) float64 {
	if ef < MinEaseFactor {
		return MinEaseFactor
	}
	if ef > MaxEaseFactor {
		return MaxEaseFactor
	}
	return ef
}
