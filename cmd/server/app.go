package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/renshuapp/renshu-api/internal/config"
	"github.com/renshuapp/renshu-api/internal/domain/srs"
	"github.com/renshuapp/renshu-api/internal/generation"
	"github.com/renshuapp/renshu-api/internal/platform/gemini"
	"github.com/renshuapp/renshu-api/internal/platform/postgres"
	"github.com/renshuapp/renshu-api/internal/service/session"
	"github.com/renshuapp/renshu-api/internal/store"
)

// application holds the shared dependencies so wiring and shutdown live
// in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	contentStore    store.ContentStore
	assignmentStore store.AssignmentStore

	generator      generation.Generator
	sessionService session.Service
}

// newApplication wires all application dependencies. The configuration,
// logger, and database connection must already be established.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	appLogger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: appLogger,
		db:     db,
	}

	app.contentStore = postgres.NewContentStore(db, appLogger)
	app.assignmentStore = postgres.NewAssignmentStore(db, appLogger)

	var err error
	app.generator, err = gemini.NewGenerator(
		ctx,
		appLogger.With(slog.String("component", "llm_generator")),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM generator: %w", err)
	}
	appLogger.Info("LLM generator initialized",
		slog.String("model", cfg.LLM.ModelName))

	app.sessionService = session.NewService(
		app.contentStore,
		app.assignmentStore,
		app.generator,
		srs.NewScheduler(),
		session.Options{
			GenerationTimeout: time.Duration(cfg.Session.GenerationTimeoutSeconds) * time.Second,
			ReusePool:         cfg.Session.ReusePool,
			DB:                db,
		},
		appLogger,
	)

	appLogger.Info("application initialized")
	return app, nil
}

// Run starts the HTTP server and blocks until shutdown.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases application resources during shutdown.
func (app *application) cleanup() {
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection",
				slog.String("error", err.Error()))
		}
	}
	app.logger.Info("application shutdown completed")
}
