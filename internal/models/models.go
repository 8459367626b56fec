package models

import "time"

type Learner struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

type Deck struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Topic     string    `json:"topic"`
	CreatedAt time.Time `json:"created_at"`
}

type Card struct {
	ID        int64     `json:"id"`
	DeckID    int64     `json:"deck_id"`
	Front     string    `json:"front"`
	Back      string    `json:"back"`
	Hint      string    `json:"hint,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CardFilter struct {
	DeckID  int64
	Topic   string
	Search  string
	Limit   int
	Offset  int
	OrderBy string
}

// ReviewCard is a card joined with the learner's scheduling state,
// as served to the review UI.
type ReviewCard struct {
	Card
	Schedule  CardSchedule `json:"schedule"`
	Retention float64      `json:"retention_estimate"`
}
