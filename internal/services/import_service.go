package services

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

// ImportService loads deck content in bulk from spreadsheets authored by
// the content team. Expected columns: front, back, hint (optional).
type ImportService interface {
	ImportDeck(ctx context.Context, deckID int64, r io.Reader) (*ImportResult, error)
}

type ImportResult struct {
	BatchID  string `json:"batch_id"`
	Imported int    `json:"imported"`
	Skipped  int    `json:"skipped"`
}

type importService struct {
	decks    repository.DeckRepository
	cards    repository.CardRepository
	rowLimit int
}

// NewImportService creates a new ImportService
func NewImportService(decks repository.DeckRepository, cards repository.CardRepository, rowLimit int) ImportService {
	if rowLimit <= 0 {
		rowLimit = 1000
	}
	return &importService{decks: decks, cards: cards, rowLimit: rowLimit}
}

func (s *importService) ImportDeck(ctx context.Context, deckID int64, r io.Reader) (*ImportResult, error) {
	batchID := uuid.New().String()
	log := logger.FromContext(ctx).WithField("batch_id", batchID)
	log.Debug("importing deck: deck_id=%d", deckID)

	deck, err := s.decks.Get(ctx, deckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", deckID)
	}

	f, err := excelize.OpenReader(r)
	if err != nil {
		log.Warn("failed to open spreadsheet: %v", err)
		return nil, errors.NewBadRequestError("file is not a readable spreadsheet")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.NewBadRequestError("spreadsheet has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errors.NewBadRequestError("failed to read spreadsheet rows")
	}

	var cards []models.Card
	skipped := 0
	for i, row := range rows {
		if i == 0 && isHeaderRow(row) {
			continue
		}
		if len(cards) >= s.rowLimit {
			log.Warn("row limit %d reached, ignoring remaining rows", s.rowLimit)
			skipped += len(rows) - i
			break
		}

		front, back, hint := cell(row, 0), cell(row, 1), cell(row, 2)
		if front == "" || back == "" {
			skipped++
			continue
		}
		cards = append(cards, models.Card{
			DeckID: deckID,
			Front:  front,
			Back:   back,
			Hint:   hint,
		})
	}

	if len(cards) == 0 {
		return nil, errors.NewBadRequestError("spreadsheet contains no usable rows")
	}

	if _, err := s.cards.InsertBatch(ctx, cards); err != nil {
		log.Error("failed to insert imported cards: %v", err)
		return nil, errors.NewInternalError(err)
	}

	log.Info("deck import complete: deck_id=%d, imported=%d, skipped=%d", deckID, len(cards), skipped)
	return &ImportResult{BatchID: batchID, Imported: len(cards), Skipped: skipped}, nil
}

func isHeaderRow(row []string) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(row[0]), "front")
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
