package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/skylarktravel/skylark/internal/config"
	"github.com/skylarktravel/skylark/internal/database"
	"github.com/skylarktravel/skylark/internal/logging"
	"github.com/skylarktravel/skylark/internal/server"
)

func main() {
	// Optional .env for local development; real deployments set the
	// environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger := logging.Setup(cfg.LogLevel)

	db, err := database.Open(cfg.DBPath)
	if err != nil {
		logger.Error("open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	srv, err := server.New(cfg, db, logger)
	if err != nil {
		logger.Error("build server", "error", err)
		os.Exit(1)
	}

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Router(),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Housekeeping: expired sessions, abandoned drafts and flows, stale
	// rate-limit windows.
	cleanupDone := make(chan struct{})
	cleanupStop := make(chan struct{})
	go func() {
		defer close(cleanupDone)
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n, err := srv.SessionStore().DeleteExpired(); err != nil {
					logger.Error("session cleanup", "error", err)
				} else if n > 0 {
					logger.Debug("session cleanup", "removed", n)
				}
				if n, err := srv.DraftStore().DeleteExpired(); err != nil {
					logger.Error("draft cleanup", "error", err)
				} else if n > 0 {
					logger.Debug("draft cleanup", "removed", n)
				}
				if n := srv.Flows().Cleanup(30 * time.Minute); n > 0 {
					logger.Debug("flow cleanup", "removed", n)
				}
				srv.RateLimiter().Cleanup()
			case <-cleanupStop:
				return
			}
		}
	}()

	go func() {
		logger.Info("skylark running", "addr", "http://localhost:"+cfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down")
	close(cleanupStop)
	<-cleanupDone

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
		os.Exit(1)
	}
}
