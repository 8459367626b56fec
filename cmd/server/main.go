package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/finlearn/finflash/internal/api"
	"github.com/finlearn/finflash/internal/config"
	"github.com/finlearn/finflash/internal/db"
	"github.com/finlearn/finflash/internal/jobs"
	"github.com/finlearn/finflash/internal/logger"
	"github.com/finlearn/finflash/internal/models"
	"github.com/finlearn/finflash/internal/repository/dual"
	"github.com/finlearn/finflash/internal/repository/memory"
	"github.com/finlearn/finflash/internal/repository/sqlite"
	"github.com/finlearn/finflash/internal/services"
	"github.com/finlearn/finflash/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.New(
		logger.WithLevel(logger.ParseLevel(cfg.LogLevel)),
		logger.WithColors(true),
	)
	logger.SetDefault(log)

	log.Info("===========================================")
	log.Info("FinFlash Server Starting")
	log.Info("===========================================")

	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration: %v", err)
		os.Exit(1)
	}
	log.Info("configuration loaded")
	log.Debug("addr=%s", cfg.Addr)
	log.Debug("db_path=%s", cfg.DBPath)
	log.Debug("log_level=%s", cfg.LogLevel)
	log.Debug("sync_worker_count=%d", cfg.SyncWorkerCount)
	log.Debug("sync_queue_size=%d", cfg.SyncQueueSize)
	log.Debug("digest_hour=%d", cfg.DigestHour)
	log.Debug("session_limit=%d", cfg.SessionLimit)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		log.Error("failed to open database: %v", err)
		os.Exit(1)
	}
	defer func() {
		log.Debug("closing database connection")
		database.Close()
	}()

	// Repositories
	learnerRepo := sqlite.NewLearnerRepository(database)
	deckRepo := sqlite.NewDeckRepository(database)
	cardRepo := sqlite.NewCardRepository(database)
	durableSchedules := sqlite.NewScheduleRepository(database)
	reviewLogRepo := sqlite.NewReviewLogRepository(database)

	// Dual schedule store: durable SQLite plus in-process cache, with a
	// worker pool retrying failed durable writes.
	syncPool := worker.NewPool(cfg.SyncWorkerCount, cfg.SyncQueueSize)
	scheduleCache := memory.NewScheduleCache()
	scheduleStore := dual.New(durableSchedules, scheduleCache, func(s models.CardSchedule) error {
		return syncPool.Submit(&worker.FlushScheduleJob{
			Durable:  durableSchedules,
			Cache:    scheduleCache,
			Queue:    syncPool,
			Schedule: s,
		})
	})

	// Services
	learnerService := services.NewLearnerService(learnerRepo, scheduleCache)
	deckService := services.NewDeckService(deckRepo, cardRepo)
	reviewService := services.NewReviewService(scheduleStore, cardRepo, reviewLogRepo)
	statsService := services.NewStatsService(scheduleStore, reviewLogRepo)
	importService := services.NewImportService(deckRepo, cardRepo, cfg.ImportRowLimit)

	srv := &api.Server{
		LearnerService: learnerService,
		DeckService:    deckService,
		ReviewService:  reviewService,
		StatsService:   statsService,
		ImportService:  importService,
		DB:             database,
		SessionLimit:   cfg.SessionLimit,
	}

	ctx, cancel := context.WithCancel(context.Background())
	syncPool.Start(ctx)

	digest := jobs.NewDigest(learnerRepo, scheduleStore, cfg.DigestHour)
	if err := digest.Start(); err != nil {
		log.Error("failed to start due digest: %v", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         cfg.Addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("HTTP server listening on %s", cfg.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	sig := <-stop

	log.Info("received signal %v, initiating graceful shutdown", sig)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	log.Debug("stopping due digest")
	digest.Stop()

	log.Debug("shutting down HTTP server")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP server shutdown error: %v", err)
	}

	// Let pending schedule flushes drain before cancelling workers.
	log.Debug("stopping sync pool")
	cancel()
	syncPool.Stop()

	log.Info("===========================================")
	log.Info("FinFlash Server Stopped")
	log.Info("===========================================")
}
