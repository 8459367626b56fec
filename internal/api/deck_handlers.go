package api

import (
	"net/http"
	"strconv"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
)

func (s *Server) handleListDecks(w http.ResponseWriter, r *http.Request) {
	decks, err := s.DeckService.ListDecks(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"decks": decks})
}

func (s *Server) handleCreateDeck(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name  string `json:"name"`
		Topic string `json:"topic"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.CreateDeck(r.Context(), body.Name, body.Topic)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, deck)
}

func (s *Server) handleGetDeck(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	deck, err := s.DeckService.GetDeck(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, deck)
}

func (s *Server) handleDeleteDeck(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.DeckService.DeleteDeck(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeckCards(w http.ResponseWriter, r *http.Request) {
	deckID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	filter := models.CardFilter{DeckID: deckID}
	if v := r.URL.Query().Get("search"); v != "" {
		filter.Search = v
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil && limit > 0 {
			filter.Limit = limit
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil && offset > 0 {
			filter.Offset = offset
		}
	}

	cards, total, err := s.DeckService.DeckCards(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"cards": cards, "total": total})
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DeckID int64  `json:"deck_id"`
		Front  string `json:"front"`
		Back   string `json:"back"`
		Hint   string `json:"hint"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	card, err := s.DeckService.CreateCard(r.Context(), models.Card{
		DeckID: body.DeckID,
		Front:  body.Front,
		Back:   body.Back,
		Hint:   body.Hint,
	})
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, card)
}

const maxImportBytes = 10 << 20 // 10 MiB upload cap

func (s *Server) handleImportDeck(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	deckID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("invalid multipart upload"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()

	log.Debug("importing deck upload: deck_id=%d, filename=%s, size=%d", deckID, header.Filename, header.Size)

	result, err := s.ImportService.ImportDeck(r.Context(), deckID, file)
	if err != nil {
		handleError(w, r, err)
		return
	}

	log.Info("deck import finished: deck_id=%d, imported=%d", deckID, result.Imported)
	respondJSON(w, http.StatusOK, result)
}
