package models

import "time"

// CardSchedule holds the spaced-repetition state for one card and one
// learner. Timestamps serialize as RFC 3339 so stored records compare
// identically after a round-trip.
type CardSchedule struct {
	ID             int64     `json:"id"`
	LearnerID      int64     `json:"learner_id"`
	CardID         int64     `json:"card_id"`
	EaseFactor     float64   `json:"ease_factor"`
	IntervalDays   int       `json:"interval_days"`
	Repetitions    int       `json:"repetitions"`
	DueAt          time.Time `json:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at"`
	TotalReviews   int       `json:"total_reviews"`
	LastQuality    int       `json:"last_quality"`
	Version        int64     `json:"version"`
	CreatedAt      time.Time `json:"created_at"`
}

type ReviewLog struct {
	ID          int64     `json:"id"`
	ScheduleID  int64     `json:"schedule_id"`
	Quality     int       `json:"quality"`
	Correct     bool      `json:"correct"`
	Confidence  int       `json:"confidence"`
	TimeSeconds float64   `json:"time_seconds"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

type ReviewLogFilter struct {
	ScheduleID int64
	MinQuality int
	MaxQuality int
	Limit      int
	Offset     int
}

// ReviewStats aggregates a learner's collection for the dashboard.
// Learning/young/mature partition the collection; the due counts overlap.
type ReviewStats struct {
	TotalCards    int     `json:"total_cards"`
	DueNow        int     `json:"due_now"`
	DueToday      int     `json:"due_today"`
	DueThisWeek   int     `json:"due_this_week"`
	LearningCards int     `json:"learning_cards"`
	YoungCards    int     `json:"young_cards"`
	MatureCards   int     `json:"mature_cards"`
	AvgEaseFactor float64 `json:"avg_ease_factor"`
}
