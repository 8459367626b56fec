package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
	"github.com/finlearn/finflash/internal/srs"
)

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
		sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
}

type scheduleRepository struct {
	db *sql.DB
}

// NewScheduleRepository creates the durable ScheduleStore implementation.
func NewScheduleRepository(db *sql.DB) repository.ScheduleStore {
	return &scheduleRepository{db: db}
}

const scheduleColumns = `id, learner_id, card_id, ease_factor, interval_days, repetitions, due_at, last_reviewed_at, total_reviews, last_quality, version, created_at`

func scanSchedule(row interface {
	Scan(dest ...any) error
}) (models.CardSchedule, error) {
	var s models.CardSchedule
	err := row.Scan(&s.ID, &s.LearnerID, &s.CardID, &s.EaseFactor, &s.IntervalDays, &s.Repetitions,
		&s.DueAt, &s.LastReviewedAt, &s.TotalReviews, &s.LastQuality, &s.Version, &s.CreatedAt)
	if err != nil {
		return s, err
	}
	// Stored rows may predate tighter bounds; never let a corrupt row feed
	// invalid state into the scheduler.
	return srs.Normalize(s), nil
}

func (r *scheduleRepository) Get(ctx context.Context, learnerID, cardID int64) (*models.CardSchedule, error) {
	log := logger.FromContext(ctx).WithPrefix("schedule_repo")
	log.Debug("getting schedule: learner_id=%d, card_id=%d", learnerID, cardID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+scheduleColumns+`
FROM card_schedules
WHERE learner_id = ? AND card_id = ?
`, learnerID, cardID)
	s, err := scanSchedule(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("schedule not found: learner_id=%d, card_id=%d", learnerID, cardID)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get schedule: %v", err)
		return nil, err
	}
	return &s, nil
}

func (r *scheduleRepository) ListByLearner(ctx context.Context, learnerID int64) ([]models.CardSchedule, error) {
	log := logger.FromContext(ctx).WithPrefix("schedule_repo")
	log.Debug("listing schedules: learner_id=%d", learnerID)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+scheduleColumns+`
FROM card_schedules
WHERE learner_id = ?
ORDER BY id
`, learnerID)
	if err != nil {
		log.Error("failed to query schedules: %v", err)
		return nil, err
	}
	defer rows.Close()

	var schedules []models.CardSchedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			log.Error("failed to scan schedule row: %v", err)
			return nil, err
		}
		schedules = append(schedules, s)
	}
	log.Debug("found %d schedules", len(schedules))
	return schedules, rows.Err()
}

func (r *scheduleRepository) Save(ctx context.Context, s *models.CardSchedule) error {
	log := logger.FromContext(ctx).WithPrefix("schedule_repo")

	if s.ID == 0 {
		log.Debug("inserting schedule: learner_id=%d, card_id=%d", s.LearnerID, s.CardID)
		res, err := r.db.ExecContext(ctx, `
INSERT INTO card_schedules (learner_id, card_id, ease_factor, interval_days, repetitions, due_at, last_reviewed_at, total_reviews, last_quality, version, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1, ?)
`, s.LearnerID, s.CardID, s.EaseFactor, s.IntervalDays, s.Repetitions, s.DueAt, s.LastReviewedAt, s.TotalReviews, s.LastQuality, s.CreatedAt)
		if isUniqueViolation(err) {
			// A concurrent first review already created this row. Not a
			// transient failure: the caller must reload and retry.
			log.Warn("duplicate schedule insert rejected: learner_id=%d, card_id=%d", s.LearnerID, s.CardID)
			return repository.ErrVersionConflict
		}
		if err != nil {
			log.Error("failed to insert schedule: %v", err)
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			log.Error("failed to get schedule id: %v", err)
			return err
		}
		s.ID = id
		s.Version = 1
		return nil
	}

	log.Debug("updating schedule: id=%d, interval=%d, ease=%.2f, version=%d", s.ID, s.IntervalDays, s.EaseFactor, s.Version)
	res, err := r.db.ExecContext(ctx, `
UPDATE card_schedules
SET ease_factor = ?, interval_days = ?, repetitions = ?, due_at = ?, last_reviewed_at = ?, total_reviews = ?, last_quality = ?, version = version + 1
WHERE id = ? AND version = ?
`, s.EaseFactor, s.IntervalDays, s.Repetitions, s.DueAt, s.LastReviewedAt, s.TotalReviews, s.LastQuality, s.ID, s.Version)
	if err != nil {
		log.Error("failed to update schedule: %v", err)
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		log.Warn("stale schedule write rejected: id=%d, version=%d", s.ID, s.Version)
		return repository.ErrVersionConflict
	}
	s.Version++
	return nil
}
