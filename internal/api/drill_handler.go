// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/renshuapp/renshu-api/internal/api/shared"
	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/generation"
	"github.com/renshuapp/renshu-api/internal/platform/logger"
	"github.com/renshuapp/renshu-api/internal/sanitize"
	"github.com/renshuapp/renshu-api/internal/store"
)

// GenerateDrillsRequest is the payload for the drill generation endpoint.
type GenerateDrillsRequest struct {
	Count   int            `json:"count"   validate:"required,oneof=5 10 20"`
	Level   string         `json:"level"   validate:"required,oneof=beginner intermediate advanced"`
	Profile ProfileRequest `json:"profile" validate:"required"`
}

// GenerateDrillsResponse is the success envelope for generated drills.
type GenerateDrillsResponse struct {
	Success bool            `json:"success"`
	Drills  []DrillResponse `json:"drills"`
}

// DrillHandler serves direct drill generation requests.
type DrillHandler struct {
	generator generation.Generator
	contents  store.ContentStore
	timeout   time.Duration
	logger    *slog.Logger
}

// NewDrillHandler creates a DrillHandler. Generated drills are written
// into the shared content pool as a side effect so later sessions can
// reuse them.
func NewDrillHandler(
	generator generation.Generator,
	contents store.ContentStore,
	timeout time.Duration,
	log *slog.Logger,
) *DrillHandler {
	if generator == nil {
		panic("generator cannot be nil for DrillHandler")
	}
	if contents == nil {
		panic("contents cannot be nil for DrillHandler")
	}
	if log == nil {
		panic("logger cannot be nil for DrillHandler")
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &DrillHandler{
		generator: generator,
		contents:  contents,
		timeout:   timeout,
		logger:    log.With(slog.String("component", "drill_handler")),
	}
}

// GenerateDrills handles POST /api/drills/generate requests.
func (h *DrillHandler) GenerateDrills(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req GenerateDrillsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"count must be 5, 10, or 20; level must be beginner, intermediate, or advanced; profile fields are required and at most 100 characters")
		return
	}

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid level")
		return
	}

	// Profile text feeds the provider prompt; reject anything that
	// sanitizes away to nothing before spending a provider call.
	job, jobErr := sanitize.ForPrompt(req.Profile.Job)
	interests, intErr := sanitize.ForPrompt(req.Profile.Interests)
	if jobErr != nil || intErr != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"Profile job and interests must contain usable text")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	items, err := h.generator.GenerateDrills(ctx, generation.Request{
		Count:     req.Count,
		Level:     level,
		Job:       job,
		Interests: interests,
	})
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	// Pool writes are best effort here; the client already has its
	// drills and a failed save only costs future reuse.
	if saveErr := h.contents.SaveContent(r.Context(), items); saveErr != nil {
		log.Warn("saving generated drills to pool failed",
			slog.String("error", saveErr.Error()),
			slog.Int("count", len(items)))
	}

	drills := make([]DrillResponse, 0, len(items))
	for _, item := range items {
		drills = append(drills, drillToResponse(item))
	}

	log.Debug("drills generated",
		slog.Int("count", len(drills)),
		slog.String("level", string(level)))
	shared.RespondWithJSON(w, r, http.StatusOK, GenerateDrillsResponse{
		Success: true,
		Drills:  drills,
	})
}
