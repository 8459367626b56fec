package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Masterminds/squirrel"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

type cardRepository struct {
	db *sql.DB
}

// NewCardRepository creates a new CardRepository implementation
func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &cardRepository{db: db}
}

func (r *cardRepository) Get(ctx context.Context, id int64) (*models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("getting card: id=%d", id)

	var c models.Card
	err := r.db.QueryRowContext(ctx, `
SELECT id, deck_id, front, back, hint, created_at FROM cards WHERE id = ?
`, id).Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Hint, &c.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("card not found: id=%d", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get card: %v", err)
		return nil, err
	}
	return &c, nil
}

func (r *cardRepository) cardQuery(filter models.CardFilter) squirrel.SelectBuilder {
	query := sqlBuilder.Select("c.id", "c.deck_id", "c.front", "c.back", "c.hint", "c.created_at").
		From("cards c")

	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"c.deck_id": filter.DeckID})
	}
	if filter.Topic != "" {
		query = query.Join("decks d ON d.id = c.deck_id").Where(squirrel.Eq{"d.topic": filter.Topic})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"c.front": like},
			squirrel.Like{"c.back": like},
		})
	}
	return query
}

func (r *cardRepository) List(ctx context.Context, filter models.CardFilter) ([]models.Card, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("listing cards: deck_id=%d, topic=%s, search=%s", filter.DeckID, filter.Topic, filter.Search)

	query := r.cardQuery(filter)

	orderBy := "c.id"
	if filter.OrderBy == "created_at" {
		orderBy = "c.created_at"
	}
	query = query.OrderBy(orderBy)

	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build card query: %v", err)
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query cards: %v", err)
		return nil, err
	}
	defer rows.Close()

	var cards []models.Card
	for rows.Next() {
		var c models.Card
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Front, &c.Back, &c.Hint, &c.CreatedAt); err != nil {
			log.Error("failed to scan card row: %v", err)
			return nil, err
		}
		cards = append(cards, c)
	}
	log.Debug("found %d cards", len(cards))
	return cards, rows.Err()
}

func (r *cardRepository) Count(ctx context.Context, filter models.CardFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")

	query := sqlBuilder.Select("COUNT(*)").From("cards c")
	if filter.DeckID != 0 {
		query = query.Where(squirrel.Eq{"c.deck_id": filter.DeckID})
	}
	if filter.Topic != "" {
		query = query.Join("decks d ON d.id = c.deck_id").Where(squirrel.Eq{"d.topic": filter.Topic})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(squirrel.Or{
			squirrel.Like{"c.front": like},
			squirrel.Like{"c.back": like},
		})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count cards: %v", err)
		return 0, err
	}
	return count, nil
}

func (r *cardRepository) Insert(ctx context.Context, c models.Card) (int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting card: deck_id=%d", c.DeckID)

	res, err := r.db.ExecContext(ctx, `
INSERT INTO cards (deck_id, front, back, hint) VALUES (?, ?, ?, ?)
`, c.DeckID, c.Front, c.Back, c.Hint)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		log.Error("failed to get card id: %v", err)
		return 0, err
	}
	return id, nil
}

func (r *cardRepository) InsertBatch(ctx context.Context, cards []models.Card) ([]int64, error) {
	log := logger.FromContext(ctx).WithPrefix("card_repo")
	log.Debug("inserting %d cards", len(cards))

	ids := make([]int64, 0, len(cards))
	err := tx(ctx, r.db, func(txn *sql.Tx) error {
		stmt, err := txn.PrepareContext(ctx, `INSERT INTO cards (deck_id, front, back, hint) VALUES (?, ?, ?, ?)`)
		if err != nil {
			return err
		}
		defer stmt.Close()

		for _, c := range cards {
			res, err := stmt.ExecContext(ctx, c.DeckID, c.Front, c.Back, c.Hint)
			if err != nil {
				return err
			}
			id, err := res.LastInsertId()
			if err != nil {
				return err
			}
			ids = append(ids, id)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert card batch: %v", err)
		return nil, err
	}
	return ids, nil
}
