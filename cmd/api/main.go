// Command api serves basketball-reference tables over HTTP: live extraction
// behind an in-memory cache, plus tables the seeder stored when a database
// is configured.
//
// Usage:
//
//	bbref-api
//	API_PORT=8080 DATABASE_URL=postgres://... bbref-api
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"github.com/albapepper/bbref-tables/internal/api"
	"github.com/albapepper/bbref-tables/internal/api/handler"
	"github.com/albapepper/bbref-tables/internal/cache"
	"github.com/albapepper/bbref-tables/internal/config"
	"github.com/albapepper/bbref-tables/internal/db"
	"github.com/albapepper/bbref-tables/internal/provider/bbref"
)

func main() {
	// Load .env if present
	_ = godotenv.Load(".env")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Context with signal handling
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	// Connect to database when configured; stored routes answer 503 otherwise.
	var store handler.Store
	if cfg.DatabaseURL != "" {
		logger.Info("Connecting to database...")
		pool, err := db.New(ctx, cfg)
		if err != nil {
			logger.Error("Failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer pool.Close()
		store = pool
		logger.Info("Database connected",
			"min_conns", cfg.DBPoolMinConns,
			"max_conns", cfg.DBPoolMaxConns)
	} else {
		logger.Info("No DATABASE_URL, serving live extraction only")
	}

	// Site handler
	ext, err := bbref.FromConfig(cfg, logger)
	if err != nil {
		logger.Error("Failed to build site handler", "error", err)
		os.Exit(1)
	}
	logger.Info("Site handler ready",
		"base_url", cfg.BaseURL,
		"requests_per_minute", cfg.RequestsPerMinute,
		"headless", cfg.Headless)

	// Initialize cache
	appCache := cache.New(cfg.CacheEnabled)
	logger.Info("Cache initialized", "enabled", cfg.CacheEnabled)

	// Create router
	router := api.NewRouter(ext, store, appCache, cfg, logger)

	// Create HTTP server. Live extraction waits on the site rate limit, so
	// the write timeout leaves room for a few upstream requests.
	addr := fmt.Sprintf("%s:%d", cfg.APIHost, cfg.APIPort)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		logger.Info("Starting bbref-tables API",
			"addr", addr,
			"environment", cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Server failed", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt
	<-ctx.Done()
	logger.Info("Shutting down...")

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", "error", err)
	}
	logger.Info("Server stopped")
}
