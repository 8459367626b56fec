package api

import (
	"net/http"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
)

func (s *Server) handleReviewQueue(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	queue, err := s.ReviewService.Queue(r.Context(), learner.ID, s.SessionLimit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"queue": queue})
}

func (s *Server) handleNextCard(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	card, err := s.ReviewService.NextCard(r.Context(), learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if card == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	respondJSON(w, http.StatusOK, card)
}

type reviewRequest struct {
	// Either correct+confidence or quality must be supplied.
	Correct     *bool    `json:"correct,omitempty"`
	Confidence  *int     `json:"confidence,omitempty"`
	Quality     *int     `json:"quality,omitempty"`
	TimeSeconds *float64 `json:"time_seconds,omitempty"`
}

func (s *Server) handleReviewCard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())
	learner := learnerFromContext(r.Context())

	cardID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	var body reviewRequest
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	timeSeconds := 0.0
	if body.TimeSeconds != nil && *body.TimeSeconds > 0 {
		timeSeconds = *body.TimeSeconds
	}

	switch {
	case body.Quality != nil:
		log.Debug("reviewing card with direct quality: card_id=%d, quality=%d", cardID, *body.Quality)
		schedule, err := s.ReviewService.SubmitQuality(r.Context(), learner.ID, cardID, *body.Quality, timeSeconds)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, schedule)
	case body.Correct != nil && body.Confidence != nil:
		log.Debug("reviewing card: card_id=%d, correct=%t, confidence=%d", cardID, *body.Correct, *body.Confidence)
		schedule, err := s.ReviewService.SubmitResponse(r.Context(), learner.ID, cardID, *body.Correct, *body.Confidence, timeSeconds)
		if err != nil {
			handleError(w, r, err)
			return
		}
		respondJSON(w, http.StatusOK, schedule)
	default:
		handleError(w, r, errors.NewBadRequestError("supply either quality or correct+confidence"))
	}
}

func (s *Server) handleCardRetention(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	cardID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	retention, err := s.ReviewService.Retention(r.Context(), learner.ID, cardID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"card_id":   cardID,
		"retention": retention,
	})
}
