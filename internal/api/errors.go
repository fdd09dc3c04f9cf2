package api

import (
	"errors"
	"net/http"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/generation"
	"github.com/renshuapp/renshu-api/internal/sanitize"
	"github.com/renshuapp/renshu-api/internal/service/session"
	"github.com/renshuapp/renshu-api/internal/store"
)

// MapErrorToStatusCode maps internal errors to HTTP status codes so
// handlers never leak internal error types to clients. Generation
// failures keep their distinct upstream codes: timeouts are 504 and
// provider or parse failures 503, so callers can tell a slow provider
// from a broken one.
func MapErrorToStatusCode(err error) int {
	switch {
	// Bad request errors
	case errors.Is(err, session.ErrInvalidProfile),
		errors.Is(err, session.ErrInvalidTarget),
		errors.Is(err, domain.ErrInvalidRating),
		errors.Is(err, sanitize.ErrInvalidInput),
		errors.Is(err, store.ErrInvalidEntity):
		return http.StatusBadRequest

	// Not found errors
	case errors.Is(err, session.ErrAssignmentNotFound),
		store.IsNotFoundError(err):
		return http.StatusNotFound

	// Upstream generation errors
	case errors.Is(err, generation.ErrTimeout):
		return http.StatusGatewayTimeout
	case errors.Is(err, generation.ErrContentBlocked),
		errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrGenerationFailed):
		return http.StatusServiceUnavailable

	// Misconfiguration is on us, not the upstream
	case errors.Is(err, generation.ErrInvalidConfig):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// GetSafeErrorMessage returns a sanitized, user-facing message for the
// given error.
func GetSafeErrorMessage(err error) string {
	if err == nil {
		return "An unexpected error occurred"
	}

	switch {
	case errors.Is(err, session.ErrInvalidProfile):
		return "Profile job and interests must contain usable text"
	case errors.Is(err, session.ErrInvalidTarget):
		return "Session size must be 5, 10, or 20"
	case errors.Is(err, domain.ErrInvalidRating):
		return "Rating must be one of: hard, good, easy"
	case errors.Is(err, sanitize.ErrInvalidInput):
		return "Input is empty after sanitization"
	case errors.Is(err, session.ErrAssignmentNotFound):
		return "Assignment not found"
	case errors.Is(err, store.ErrContentNotFound):
		return "Content not found"
	case store.IsNotFoundError(err):
		return "Resource not found"
	case errors.Is(err, generation.ErrTimeout):
		return "Drill generation timed out"
	case errors.Is(err, generation.ErrContentBlocked):
		return "Drill generation was blocked by the provider"
	case errors.Is(err, generation.ErrInvalidResponse),
		errors.Is(err, generation.ErrTransientFailure),
		errors.Is(err, generation.ErrGenerationFailed):
		return "Drill generation is temporarily unavailable"
	case errors.Is(err, generation.ErrInvalidConfig):
		return "Drill generation is not configured"
	default:
		return "An unexpected error occurred"
	}
}
