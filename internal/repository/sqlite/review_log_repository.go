package sqlite

import (
	"context"
	"database/sql"

	"github.com/Masterminds/squirrel"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

type reviewLogRepository struct {
	db *sql.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository implementation
func NewReviewLogRepository(db *sql.DB) repository.ReviewLogRepository {
	return &reviewLogRepository{db: db}
}

func (r *reviewLogRepository) Insert(ctx context.Context, l models.ReviewLog) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("inserting review log: schedule_id=%d, quality=%d", l.ScheduleID, l.Quality)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO review_logs (schedule_id, quality, correct, confidence, time_seconds, reviewed_at)
VALUES (?, ?, ?, ?, ?, ?)
`, l.ScheduleID, l.Quality, l.Correct, l.Confidence, l.TimeSeconds, l.ReviewedAt)
	if err != nil {
		log.Error("failed to insert review log: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get review log id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *reviewLogRepository) List(ctx context.Context, filter models.ReviewLogFilter) ([]models.ReviewLog, error) {
	log := logger.FromContext(ctx).WithPrefix("review_log_repo")
	log.Debug("listing review logs: schedule_id=%d", filter.ScheduleID)

	query := sqlBuilder.Select("id", "schedule_id", "quality", "correct", "confidence", "time_seconds", "reviewed_at").
		From("review_logs").
		OrderBy("reviewed_at DESC")

	if filter.ScheduleID != 0 {
		query = query.Where(squirrel.Eq{"schedule_id": filter.ScheduleID})
	}
	if filter.MinQuality > 0 {
		query = query.Where(squirrel.GtOrEq{"quality": filter.MinQuality})
	}
	if filter.MaxQuality > 0 {
		query = query.Where(squirrel.LtOrEq{"quality": filter.MaxQuality})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build review log query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query review logs: %v", err)
		return nil, err
	}
	defer rows.Close()

	var logs []models.ReviewLog
	for rows.Next() {
		var l models.ReviewLog
		if err := rows.Scan(&l.ID, &l.ScheduleID, &l.Quality, &l.Correct, &l.Confidence, &l.TimeSeconds, &l.ReviewedAt); err != nil {
			log.Error("failed to scan review log row: %v", err)
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
