package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
)

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.size += n
	return n, err
}

type contextKey string

const (
	learnerContextKey contextKey = "learner"
	learnerCookieName            = "learner_id"
)

func learnerFromContext(ctx context.Context) *models.Learner {
	if v := ctx.Value(learnerContextKey); v != nil {
		if l, ok := v.(*models.Learner); ok {
			return l
		}
	}
	return nil
}

// learnerMiddleware resolves the selected learner from the cookie and
// rejects requests without one.
func (s *Server) learnerMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		log := logger.FromContext(r.Context())

		cookie, err := r.Cookie(learnerCookieName)
		if err != nil || cookie.Value == "" {
			log.Debug("no learner cookie")
			respondError(w, http.StatusUnauthorized, "NO_LEARNER", "select a learner first")
			return
		}

		learnerID, err := strconv.ParseInt(cookie.Value, 10, 64)
		if err != nil {
			log.Warn("invalid learner cookie, clearing")
			clearLearnerCookie(w)
			respondError(w, http.StatusUnauthorized, "NO_LEARNER", "select a learner first")
			return
		}

		learner, err := s.LearnerService.GetLearner(r.Context(), learnerID)
		if err != nil {
			log.Error("failed to load learner: %v", err)
			handleError(w, r, err)
			return
		}
		if learner == nil {
			log.Warn("learner not found for cookie, clearing")
			clearLearnerCookie(w)
			respondError(w, http.StatusUnauthorized, "NO_LEARNER", "select a learner first")
			return
		}

		ctx := context.WithValue(r.Context(), learnerContextKey, learner)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func clearLearnerCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:    learnerCookieName,
		Value:   "",
		Path:    "/",
		Expires: time.Unix(0, 0),
		MaxAge:  -1,
	})
}

func setLearnerCookie(w http.ResponseWriter, id int64) {
	http.SetCookie(w, &http.Cookie{
		Name:     learnerCookieName,
		Value:    strconv.FormatInt(id, 10),
		Path:     "/",
		Expires:  time.Now().Add(30 * 24 * time.Hour),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// loggingMiddleware logs HTTP requests with timing, status codes, and request IDs.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		log := logger.Default().WithFields(map[string]any{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
		})

		ctx := logger.NewContext(r.Context(), log)
		r = r.WithContext(ctx)
		w.Header().Set("X-Request-ID", requestID)

		wrapped := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		duration := time.Since(start)
		log = log.WithFields(map[string]any{
			"status":      wrapped.status,
			"size":        wrapped.size,
			"duration_ms": duration.Milliseconds(),
		})

		if wrapped.status >= 500 {
			log.Error("request completed with server error")
		} else if wrapped.status >= 400 {
			log.Warn("request completed with client error")
		} else {
			log.Info("request completed")
		}
	})
}

// recoveryMiddleware recovers from panics and logs them.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log := logger.FromContext(r.Context())
				log.Error("panic recovered: %v", rec)
				http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
