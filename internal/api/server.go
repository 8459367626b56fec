package api

import (
	"database/sql"

	"github.com/finlearn/finflash/internal/services"
)

// Server bundles the services the HTTP handlers depend on.
type Server struct {
	LearnerService services.LearnerService
	DeckService    services.DeckService
	ReviewService  services.ReviewService
	StatsService   services.StatsService
	ImportService  services.ImportService
	DB             *sql.DB
	SessionLimit   int
}
