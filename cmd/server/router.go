package main

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/renshuapp/renshu-api/internal/api"
	apiMiddleware "github.com/renshuapp/renshu-api/internal/api/middleware"
)

// setupRouter configures all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.config.Auth.JWTSecret, app.logger)

	drillHandler := api.NewDrillHandler(
		app.generator,
		app.contentStore,
		time.Duration(app.config.Session.GenerationTimeoutSeconds)*time.Second,
		app.logger,
	)
	sessionHandler := api.NewSessionHandler(app.sessionService, app.logger)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)

			r.Post("/drills/generate", drillHandler.GenerateDrills)

			r.Post("/sessions", sessionHandler.CreateSession)
			r.Post("/assignments/{contentID}/rating", sessionHandler.SubmitRating)
			r.Post("/content/{contentID}/downvote", sessionHandler.Downvote)
		})

		// Dashboard reads work without a token and return empty stats.
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.AuthenticateOptional)
			r.Get("/dashboard", sessionHandler.Dashboard)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
