package api

import (
	"net/http"

	"github.com/finlearn/finflash/internal/logger"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		if err := s.DB.PingContext(r.Context()); err != nil {
			logger.FromContext(r.Context()).Error("health check failed: %v", err)
			respondJSON(w, http.StatusServiceUnavailable, map[string]any{"status": "degraded"})
			return
		}
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}
