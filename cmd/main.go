package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"drivon-backend/internal/api"
	"drivon-backend/internal/config"
	"drivon-backend/internal/db"
	"drivon-backend/internal/logging"
	"drivon-backend/internal/notify"
	"drivon-backend/internal/providers"
	"drivon-backend/internal/services"
)

func main() {
	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Dir)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer logger.Close()

	// Connect to database; a missing or broken pool only disables the
	// services listing, the request intake keeps working.
	var source api.ServicesSource
	if cfg.DB.URL != "" {
		store, err := db.New(cfg.DB.URL)
		if err != nil {
			logger.Errorf("Database pool init failed, services listing disabled: %v", err)
		} else {
			defer store.Close()
			source = services.NewCache(store, services.DefaultTTL)
		}
	}

	// Initialize Telegram fan-out
	var notifier api.Notifier
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.AdminIDs) > 0 {
		sender, err := providers.NewTelegramSender(cfg.Telegram.BotToken, cfg.Telegram.ThreadID, cfg.Telegram.RatePerSecond, logger)
		if err != nil {
			logger.Errorf("Telegram sender init failed, request intake disabled: %v", err)
		} else {
			notifier = notify.New(sender, cfg.Telegram.AdminIDs, logger)
		}
	}

	// Start API server
	h := api.NewHandler(cfg, logger, notifier, source)
	router := api.NewRouter(cfg, logger, h)
	srv := &http.Server{Addr: cfg.Addr(), Handler: router}

	go func() {
		logger.Infof("DRIVON server started: http://%s", cfg.Addr())
		logger.Infof("Endpoints: POST /api/request, GET /api/services")
		logger.Infof("Required env for /api/request: BOT_TOKEN, ADMIN_IDS")
		logger.Infof("Required env for /api/services: DATABASE_URL")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("API server failed: %v", err)
		}
	}()

	// Handle graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Infof("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Shutdown failed: %v", err)
	}
	logger.Infof("Service stopped")
}
