package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

type learnerRepository struct {
	db *sql.DB
}

// NewLearnerRepository creates a new LearnerRepository implementation
func NewLearnerRepository(db *sql.DB) repository.LearnerRepository {
	return &learnerRepository{db: db}
}

func (r *learnerRepository) Get(ctx context.Context, id int64) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("getting learner: id=%d", id)

	var l models.Learner
	err := r.db.QueryRowContext(ctx, `
SELECT id, username, created_at FROM learners WHERE id = ?
`, id).Scan(&l.ID, &l.Username, &l.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("learner not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get learner: %v", err)
		return nil, err
	}
	return &l, nil
}

func (r *learnerRepository) List(ctx context.Context) ([]models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("listing learners")

	rows, err := r.db.QueryContext(ctx, `SELECT id, username, created_at FROM learners ORDER BY username`)
	if err != nil {
		log.Error("failed to query learners: %v", err)
		return nil, err
	}
	defer rows.Close()

	var learners []models.Learner
	for rows.Next() {
		var l models.Learner
		if err := rows.Scan(&l.ID, &l.Username, &l.CreatedAt); err != nil {
			log.Error("failed to scan learner row: %v", err)
			return nil, err
		}
		learners = append(learners, l)
	}
	return learners, rows.Err()
}

func (r *learnerRepository) Upsert(ctx context.Context, username string) (*models.Learner, error) {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("upserting learner: username=%s", username)

	_, err := r.db.ExecContext(ctx, `
INSERT INTO learners (username) VALUES (?)
ON CONFLICT(username) DO NOTHING
`, username)
	if err != nil {
		log.Error("failed to upsert learner: %v", err)
		return nil, err
	}

	var l models.Learner
	err = r.db.QueryRowContext(ctx, `
SELECT id, username, created_at FROM learners WHERE username = ?
`, username).Scan(&l.ID, &l.Username, &l.CreatedAt)
	if err != nil {
		log.Error("failed to load upserted learner: %v", err)
		return nil, err
	}
	return &l, nil
}

func (r *learnerRepository) Delete(ctx context.Context, id int64) error {
	log := logger.FromContext(ctx).WithPrefix("learner_repo")
	log.Debug("deleting learner: id=%d", id)

	_, err := r.db.ExecContext(ctx, `DELETE FROM learners WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete learner: %v", err)
	}
	return err
}
