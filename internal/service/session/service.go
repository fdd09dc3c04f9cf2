// Package session implements the session composition and review flow:
// merging due reviews with freshly generated drills into a bounded queue,
// and recording review outcomes back into the schedule.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// Common error types for the session service.
var (
	// ErrInvalidProfile indicates the profile failed validation or its
	// free-text fields were empty after prompt sanitization. Rejected
	// immediately; no provider call is made.
	ErrInvalidProfile = errors.New("invalid profile")

	// ErrInvalidTarget indicates an unsupported session size.
	ErrInvalidTarget = errors.New("invalid session target count")

	// ErrAssignmentNotFound indicates a rating was submitted for content
	// the user has no assignment to.
	ErrAssignmentNotFound = errors.New("assignment not found")
)

// Stats summarizes a user's assignments for the dashboard.
type Stats struct {
	TotalAssignments int `json:"total_assignments"`
	DueNow           int `json:"due_now"`
}

// Service composes drill sessions and records review outcomes.
type Service interface {
	// BuildQueue composes a session queue of at most targetCount entries:
	// due reviews first (oldest next-review instant first, content ID as
	// tie-break), then new items from the pool or the generation
	// provider. Provider failures are recovered internally with fallback
	// content and never surface to the caller; store failures on the
	// due-set read do. A zero targetCount yields an empty queue.
	BuildQueue(ctx context.Context, userID uuid.UUID, profile domain.Profile, targetCount int) ([]domain.SessionQueueEntry, error)

	// SubmitRating records a review outcome for one assignment: the
	// rating is validated, the next review instant computed, and the
	// assignment persisted. Persistence failures propagate to the caller
	// so the interface can retry or warn; they are never swallowed.
	SubmitRating(ctx context.Context, userID uuid.UUID, contentID string, rating domain.Rating) (*domain.Assignment, error)

	// Downvote atomically increments a content item's downvote counter.
	Downvote(ctx context.Context, contentID string) error

	// DashboardStats returns assignment totals for the dashboard view.
	DashboardStats(ctx context.Context, userID uuid.UUID, now time.Time) (Stats, error)
}

// ServiceError wraps session service failures with operation context so
// consumers can differentiate with errors.As instead of string matching.
type ServiceError struct {
	Operation string
	Message   string
	Err       error
}

// Error implements the error interface for ServiceError.
func (e *ServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s operation failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("%s operation failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *ServiceError) Unwrap() error {
	return e.Err
}
