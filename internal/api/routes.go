package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(recoveryMiddleware)
	r.Use(loggingMiddleware)

	r.Get("/health", s.handleHealth)

	r.Get("/learners", s.handleListLearners)
	r.Post("/learners", s.handleCreateLearner)
	r.Post("/learners/{id}/select", s.handleSelectLearner)
	r.Post("/learners/{id}/delete", s.handleDeleteLearner)

	// Everything below requires a selected learner.
	r.Group(func(r chi.Router) {
		r.Use(s.learnerMiddleware)

		r.Get("/decks", s.handleListDecks)
		r.Post("/decks", s.handleCreateDeck)
		r.Get("/decks/{id}", s.handleGetDeck)
		r.Post("/decks/{id}/delete", s.handleDeleteDeck)
		r.Get("/decks/{id}/cards", s.handleDeckCards)
		r.Post("/decks/{id}/import", s.handleImportDeck)
		r.Post("/cards", s.handleCreateCard)

		r.Get("/review/queue", s.handleReviewQueue)
		r.Get("/review/next", s.handleNextCard)
		r.Get("/review/stats", s.handleReviewStats)
		r.Post("/cards/{id}/review", s.handleReviewCard)
		r.Get("/cards/{id}/retention", s.handleCardRetention)
		r.Get("/cards/{id}/history", s.handleCardHistory)
	})

	return r
}
