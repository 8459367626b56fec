package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/finlearn/finflash/internal/errors"
	"github.com/finlearn/finflash/internal/logger"
)

func (s *Server) handleListLearners(w http.ResponseWriter, r *http.Request) {
	learners, err := s.LearnerService.ListLearners(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"learners": learners})
}

func (s *Server) handleCreateLearner(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Username string `json:"username"`
	}
	if err := decodeJSON(r, &body); err != nil {
		handleError(w, r, err)
		return
	}

	learner, err := s.LearnerService.CreateLearner(r.Context(), body.Username)
	if err != nil {
		handleError(w, r, err)
		return
	}

	setLearnerCookie(w, learner.ID)
	respondJSON(w, http.StatusCreated, learner)
}

func (s *Server) handleSelectLearner(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	learner, err := s.LearnerService.GetLearner(r.Context(), id)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if learner == nil {
		handleError(w, r, errors.NewNotFoundError("learner", id))
		return
	}

	log.Info("learner selected: id=%d", id)
	setLearnerCookie(w, id)
	respondJSON(w, http.StatusOK, learner)
}

func (s *Server) handleDeleteLearner(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	if err := s.LearnerService.DeleteLearner(r.Context(), id); err != nil {
		handleError(w, r, err)
		return
	}

	clearLearnerCookie(w)
	respondJSON(w, http.StatusNoContent, nil)
}

func parseID(r *http.Request, param string) (int64, error) {
	raw := chi.URLParam(r, param)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequestError("invalid " + param)
	}
	return id, nil
}
