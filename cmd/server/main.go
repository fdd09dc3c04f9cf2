// Package main implements the entry point for the renshu API server,
// which composes spaced-repetition translation drill sessions and
// integrates with an LLM provider for drill generation.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/renshuapp/renshu-api/internal/config"
	"github.com/renshuapp/renshu-api/internal/platform/logger"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	cfg, appLogger, err := initializeApp()
	if err != nil {
		log.Fatalf("Failed to initialize application: %v", err)
	}

	if *migrateCmd != "" {
		if err := runMigrations(cfg, *migrateCmd); err != nil {
			appLogger.Error("migration failed",
				slog.String("command", *migrateCmd),
				slog.String("error", err.Error()))
			os.Exit(1)
		}
		return
	}

	db, err := setupAppDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Error("database setup failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()
	app, err := newApplication(ctx, cfg, appLogger, db)
	if err != nil {
		appLogger.Error("application setup failed", slog.String("error", err.Error()))
		if closeErr := db.Close(); closeErr != nil {
			appLogger.Error("closing database failed", slog.String("error", closeErr.Error()))
		}
		os.Exit(1)
	}

	if err := app.Run(ctx); err != nil {
		appLogger.Error("server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// initializeApp loads configuration and sets up structured logging.
func initializeApp() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	appLogger.Info("server configuration loaded",
		slog.Int("port", cfg.Server.Port),
		slog.String("log_level", cfg.Server.LogLevel),
		slog.Bool("reuse_pool", cfg.Session.ReusePool))

	return cfg, appLogger, nil
}
