package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/api/shared"
	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/platform/logger"
	"github.com/renshuapp/renshu-api/internal/service/session"
)

// CreateSessionRequest is the payload for composing a session queue.
type CreateSessionRequest struct {
	SessionSize int            `json:"session_size" validate:"required,oneof=5 10 20"`
	Level       string         `json:"level"        validate:"required,oneof=beginner intermediate advanced"`
	Profile     ProfileRequest `json:"profile"      validate:"required"`
}

// CreateSessionResponse carries the composed queue in drill order.
type CreateSessionResponse struct {
	Queue []QueueEntryResponse `json:"queue"`
}

// SubmitRatingRequest is the payload for rating one drilled item.
type SubmitRatingRequest struct {
	Rating string `json:"rating" validate:"required"`
}

// SubmitRatingResponse returns the updated schedule after a rating.
type SubmitRatingResponse struct {
	Assignment AssignmentResponse `json:"assignment"`
}

// DownvoteResponse acknowledges a content downvote.
type DownvoteResponse struct {
	Success bool `json:"success"`
}

// DashboardResponse summarizes the user's review workload.
type DashboardResponse struct {
	TotalAssignments int `json:"total_assignments"`
	DueNow           int `json:"due_now"`
}

// SessionHandler handles session composition, rating, downvote, and
// dashboard requests.
type SessionHandler struct {
	sessions session.Service
	logger   *slog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions session.Service, log *slog.Logger) *SessionHandler {
	if sessions == nil {
		panic("sessions cannot be nil for SessionHandler")
	}
	if log == nil {
		panic("logger cannot be nil for SessionHandler")
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   log.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /api/sessions requests.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req CreateSessionRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest,
			"session_size must be 5, 10, or 20; level must be beginner, intermediate, or advanced; profile fields are required and at most 100 characters")
		return
	}

	level, err := domain.ParseLevel(req.Level)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid level")
		return
	}

	profile := domain.Profile{
		Job:         req.Profile.Job,
		Interests:   req.Profile.Interests,
		Level:       level,
		SessionSize: req.SessionSize,
	}

	queue, err := h.sessions.BuildQueue(r.Context(), userID, profile, req.SessionSize)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("session created",
		slog.String("user_id", userID.String()),
		slog.Int("queue_length", len(queue)))
	shared.RespondWithJSON(w, r, http.StatusOK, CreateSessionResponse{
		Queue: queueToResponse(queue),
	})
}

// SubmitRating handles POST /api/assignments/{contentID}/rating requests.
func (h *SessionHandler) SubmitRating(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Content ID is required")
		return
	}

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Warn("user ID not found or invalid in request context")
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found or invalid")
		return
	}

	var req SubmitRatingRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		log.Warn("invalid request format", slog.String("error", err.Error()))
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	rating, err := domain.ParseRating(req.Rating)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Rating must be one of: hard, good, easy")
		return
	}

	updated, err := h.sessions.SubmitRating(r.Context(), userID, contentID, rating)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("rating submitted",
		slog.String("user_id", userID.String()),
		slog.String("content_id", contentID),
		slog.String("rating", string(rating)))
	shared.RespondWithJSON(w, r, http.StatusOK, SubmitRatingResponse{
		Assignment: *assignmentToResponse(updated),
	})
}

// Downvote handles POST /api/content/{contentID}/downvote requests.
func (h *SessionHandler) Downvote(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	contentID := chi.URLParam(r, "contentID")
	if contentID == "" {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Content ID is required")
		return
	}

	if err := h.sessions.Downvote(r.Context(), contentID); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Debug("content downvoted", slog.String("content_id", contentID))
	shared.RespondWithJSON(w, r, http.StatusOK, DownvoteResponse{Success: true})
}

// Dashboard handles GET /api/dashboard requests. Anonymous requests get
// an empty dashboard rather than a rejection so the read-only view works
// without a token; writes still require authentication.
func (h *SessionHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	if !ok || userID == uuid.Nil {
		log.Debug("anonymous dashboard request, returning empty stats")
		shared.RespondWithJSON(w, r, http.StatusOK, DashboardResponse{})
		return
	}

	stats, err := h.sessions.DashboardStats(r.Context(), userID, time.Now().UTC())
	if err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DashboardResponse{
		TotalAssignments: stats.TotalAssignments,
		DueNow:           stats.DueNow,
	})
}
