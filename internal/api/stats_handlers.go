package api

import (
	"net/http"
	"strconv"
)

func (s *Server) handleReviewStats(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	stats, err := s.StatsService.Overview(r.Context(), learner.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, stats)
}

func (s *Server) handleCardHistory(w http.ResponseWriter, r *http.Request) {
	learner := learnerFromContext(r.Context())

	cardID, err := parseID(r, "id")
	if err != nil {
		handleError(w, r, err)
		return
	}

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}

	logs, err := s.StatsService.RecentReviews(r.Context(), learner.ID, cardID, limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"reviews": logs})
}
