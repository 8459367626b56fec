package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/repository/sqlite"
	"github.com/finlearn/finflash/internal/testutil"
)

type ScheduleRepositorySuite struct {
	suite.Suite
	db    *sql.DB
	store repository.ScheduleStore
}

func (s *ScheduleRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.store = sqlite.NewScheduleRepository(s.db)
}

func (s *ScheduleRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func (s *ScheduleRepositorySuite) setupLearnerAndCard() (int64, int64) {
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, `INSERT INTO learners (username) VALUES (?)`, "testlearner")
	s.Require().NoError(err)

	var learnerID int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM learners WHERE username = ?`, "testlearner").Scan(&learnerID)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(ctx, `INSERT INTO decks (name, topic) VALUES (?, ?)`, "Budgeting Basics", "budgeting")
	s.Require().NoError(err)

	var deckID int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM decks WHERE name = ?`, "Budgeting Basics").Scan(&deckID)
	s.Require().NoError(err)

	_, err = s.db.ExecContext(ctx, `INSERT INTO cards (deck_id, front, back) VALUES (?, ?, ?)`,
		deckID, "What is the 50/30/20 rule?", "50% needs, 30% wants, 20% savings")
	s.Require().NoError(err)

	var cardID int64
	err = s.db.QueryRowContext(ctx, `SELECT id FROM cards WHERE deck_id = ?`, deckID).Scan(&cardID)
	s.Require().NoError(err)

	return learnerID, cardID
}

func (s *ScheduleRepositorySuite) TestInsertAndGet() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC().Truncate(time.Second)

	schedule := models.CardSchedule{
		LearnerID:      learnerID,
		CardID:         cardID,
		EaseFactor:     2.5,
		IntervalDays:   0,
		Repetitions:    0,
		DueAt:          now,
		LastReviewedAt: now,
		CreatedAt:      now,
	}

	err := s.store.Save(ctx, &schedule)
	s.Require().NoError(err)
	s.Assert().Greater(schedule.ID, int64(0))
	s.Assert().Equal(int64(1), schedule.Version)

	got, err := s.store.Get(ctx, learnerID, cardID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(schedule.ID, got.ID)
	s.Assert().Equal(learnerID, got.LearnerID)
	s.Assert().Equal(cardID, got.CardID)
	s.Assert().InDelta(2.5, got.EaseFactor, 0.001)
	s.Assert().Equal(int64(1), got.Version)
	s.Assert().True(got.DueAt.Equal(now), "due_at round-trip: want %v, got %v", now, got.DueAt)
}

func (s *ScheduleRepositorySuite) TestGetMissingReturnsNil() {
	ctx := context.Background()
	learnerID, _ := s.setupLearnerAndCard()

	got, err := s.store.Get(ctx, learnerID, 9999)
	s.Require().NoError(err)
	s.Assert().Nil(got)
}

func (s *ScheduleRepositorySuite) TestUpdateBumpsVersion() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC().Truncate(time.Second)

	schedule := models.CardSchedule{
		LearnerID:      learnerID,
		CardID:         cardID,
		EaseFactor:     2.5,
		DueAt:          now,
		LastReviewedAt: now,
		CreatedAt:      now,
	}
	s.Require().NoError(s.store.Save(ctx, &schedule))

	schedule.EaseFactor = 2.36
	schedule.IntervalDays = 6
	schedule.Repetitions = 2
	schedule.TotalReviews = 2
	schedule.LastQuality = 4
	schedule.DueAt = now.Add(6 * 24 * time.Hour)

	s.Require().NoError(s.store.Save(ctx, &schedule))
	s.Assert().Equal(int64(2), schedule.Version)

	got, err := s.store.Get(ctx, learnerID, cardID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().Equal(6, got.IntervalDays)
	s.Assert().Equal(2, got.Repetitions)
	s.Assert().Equal(4, got.LastQuality)
	s.Assert().Equal(int64(2), got.Version)
	s.Assert().InDelta(2.36, got.EaseFactor, 0.001)
}

func (s *ScheduleRepositorySuite) TestStaleVersionRejected() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC()

	schedule := models.CardSchedule{
		LearnerID:      learnerID,
		CardID:         cardID,
		EaseFactor:     2.5,
		DueAt:          now,
		LastReviewedAt: now,
		CreatedAt:      now,
	}
	s.Require().NoError(s.store.Save(ctx, &schedule))

	// Two readers load the same row.
	first := schedule
	second := schedule

	first.IntervalDays = 1
	s.Require().NoError(s.store.Save(ctx, &first))

	second.IntervalDays = 6
	err := s.store.Save(ctx, &second)
	s.Require().ErrorIs(err, repository.ErrVersionConflict)

	// The winning write is the one that stuck.
	got, err := s.store.Get(ctx, learnerID, cardID)
	s.Require().NoError(err)
	s.Assert().Equal(1, got.IntervalDays)
	s.Assert().Equal(int64(2), got.Version)
}

func (s *ScheduleRepositorySuite) TestDuplicateFirstInsertIsConflict() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC()

	// Two first-ever reviews of the same card race; both try to insert.
	first := models.CardSchedule{
		LearnerID:      learnerID,
		CardID:         cardID,
		EaseFactor:     2.5,
		DueAt:          now,
		LastReviewedAt: now,
		CreatedAt:      now,
	}
	second := first

	s.Require().NoError(s.store.Save(ctx, &first))

	err := s.store.Save(ctx, &second)
	s.Require().ErrorIs(err, repository.ErrVersionConflict)

	// Only the winner's row exists.
	var count int
	s.Require().NoError(s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM card_schedules WHERE learner_id = ? AND card_id = ?`, learnerID, cardID).Scan(&count))
	s.Assert().Equal(1, count)
}

func (s *ScheduleRepositorySuite) TestListByLearner() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC()

	var deckID int64
	err := s.db.QueryRowContext(ctx, `SELECT deck_id FROM cards WHERE id = ?`, cardID).Scan(&deckID)
	s.Require().NoError(err)

	res, err := s.db.ExecContext(ctx, `INSERT INTO cards (deck_id, front, back) VALUES (?, ?, ?)`,
		deckID, "What does APR stand for?", "Annual Percentage Rate")
	s.Require().NoError(err)
	secondCardID, err := res.LastInsertId()
	s.Require().NoError(err)

	for _, id := range []int64{cardID, secondCardID} {
		sc := models.CardSchedule{
			LearnerID:      learnerID,
			CardID:         id,
			EaseFactor:     2.5,
			DueAt:          now,
			LastReviewedAt: now,
			CreatedAt:      now,
		}
		s.Require().NoError(s.store.Save(ctx, &sc))
	}

	schedules, err := s.store.ListByLearner(ctx, learnerID)
	s.Require().NoError(err)
	s.Require().Len(schedules, 2)
	s.Assert().Equal(cardID, schedules[0].CardID)
	s.Assert().Equal(secondCardID, schedules[1].CardID)

	// No rows for an unknown learner.
	schedules, err = s.store.ListByLearner(ctx, learnerID+100)
	s.Require().NoError(err)
	s.Assert().Empty(schedules)
}

func (s *ScheduleRepositorySuite) TestReadNormalizesCorruptRow() {
	ctx := context.Background()
	learnerID, cardID := s.setupLearnerAndCard()
	now := time.Now().UTC()

	// Bypass the store to plant an out-of-bounds row.
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO card_schedules (learner_id, card_id, ease_factor, interval_days, repetitions, due_at, last_reviewed_at, total_reviews, last_quality, version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)
	`, learnerID, cardID, 9.9, -3, -1, now, now, -2, 42)
	s.Require().NoError(err)

	got, err := s.store.Get(ctx, learnerID, cardID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Assert().InDelta(2.5, got.EaseFactor, 0.001)
	s.Assert().Equal(0, got.IntervalDays)
	s.Assert().Equal(0, got.Repetitions)
	s.Assert().Equal(0, got.TotalReviews)
	s.Assert().Equal(5, got.LastQuality)
}

func TestScheduleRepositorySuite(t *testing.T) {
	suite.Run(t, new(ScheduleRepositorySuite))
}
