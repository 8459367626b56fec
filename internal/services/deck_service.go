package services

import (
	"context"
	"strings"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository"
)

// DeckService handles deck and card content management
type DeckService interface {
	GetDeck(ctx context.Context, id int64) (*models.Deck, error)
	ListDecks(ctx context.Context) ([]models.Deck, error)
	CreateDeck(ctx context.Context, name, topic string) (*models.Deck, error)
	DeleteDeck(ctx context.Context, id int64) error
	DeckCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error)
	CreateCard(ctx context.Context, card models.Card) (*models.Card, error)
}

type deckService struct {
	decks repository.DeckRepository
	cards repository.CardRepository
}

// NewDeckService creates a new DeckService
func NewDeckService(decks repository.DeckRepository, cards repository.CardRepository) DeckService {
	return &deckService{decks: decks, cards: cards}
}

func (s *deckService) GetDeck(ctx context.Context, id int64) (*models.Deck, error) {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", id)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context) ([]models.Deck, error) {
	decks, err := s.decks.List(ctx)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return decks, nil
}

func (s *deckService) CreateDeck(ctx context.Context, name, topic string) (*models.Deck, error) {
	log := logger.FromContext(ctx)

	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.NewValidationError("name", "cannot be empty")
	}

	deck := models.Deck{Name: name, Topic: strings.TrimSpace(topic)}
	id, err := s.decks.Insert(ctx, deck)
	if err != nil {
		log.Error("failed to insert deck: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.decks.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	log.Info("deck created: id=%d, name=%s", id, name)
	return created, nil
}

func (s *deckService) DeleteDeck(ctx context.Context, id int64) error {
	deck, err := s.decks.Get(ctx, id)
	if err != nil {
		return errors.NewInternalError(err)
	}
	if deck == nil {
		return errors.NewNotFoundError("deck", id)
	}
	if err := s.decks.Delete(ctx, id); err != nil {
		return errors.NewInternalError(err)
	}
	return nil
}

// DeckCards returns one page of cards plus the total matching count, so
// the UI can paginate.
func (s *deckService) DeckCards(ctx context.Context, filter models.CardFilter) ([]models.Card, int, error) {
	cards, err := s.cards.List(ctx, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	total, err := s.cards.Count(ctx, filter)
	if err != nil {
		return nil, 0, errors.NewInternalError(err)
	}
	return cards, total, nil
}

func (s *deckService) CreateCard(ctx context.Context, card models.Card) (*models.Card, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(card.Front) == "" {
		return nil, errors.NewValidationError("front", "cannot be empty")
	}
	if strings.TrimSpace(card.Back) == "" {
		return nil, errors.NewValidationError("back", "cannot be empty")
	}

	deck, err := s.decks.Get(ctx, card.DeckID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if deck == nil {
		return nil, errors.NewNotFoundError("deck", card.DeckID)
	}

	id, err := s.cards.Insert(ctx, card)
	if err != nil {
		log.Error("failed to insert card: %v", err)
		return nil, errors.NewInternalError(err)
	}

	created, err := s.cards.Get(ctx, id)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	return created, nil
}
