package sqlite

import (
	"context"
	"database/sql"

	"github.com/finlearn/finflash/internal/logger"
)

// Helper shared across repository implementations.

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	txn, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(txn); err != nil {
		_ = txn.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := txn.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	return nil
}
