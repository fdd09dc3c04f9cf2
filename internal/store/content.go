package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// ContentStore defines persistence for the shared content pool.
// Pool items are shared across users: they are created once, reused many
// times, and mutated only through the increment operations below.
type ContentStore interface {
	// SaveContent writes items into the pool, deduplicating by content ID:
	// an item whose ID already exists is left untouched rather than
	// overwritten, so concurrent generators cannot clobber each other.
	// All items must pass domain validation; malformed records are
	// rejected at this boundary with ErrInvalidEntity.
	SaveContent(ctx context.Context, items []*domain.ContentItem) error

	// GetContentByIDs retrieves pool items by ID in one round trip.
	// Missing IDs are simply absent from the result; it is the caller's
	// job to decide whether that is an error.
	GetContentByIDs(ctx context.Context, ids []string) ([]*domain.ContentItem, error)

	// GetCandidatePool returns reusable pool items for the given level,
	// excluding content at or above the moderation downvote threshold and
	// anything the user already has an assignment for. Results are capped
	// at limit, usage-count ascending so cold content circulates first.
	GetCandidatePool(ctx context.Context, userID uuid.UUID, level domain.Level, limit int) ([]*domain.ContentItem, error)

	// IncrementUsage atomically bumps an item's usage counter.
	// Unknown IDs return ErrContentNotFound.
	IncrementUsage(ctx context.Context, contentID string) error

	// IncrementDownvote atomically bumps an item's downvote counter,
	// capped at domain.DownvoteCeiling. The increment and the cap happen
	// in a single storage-layer operation; there is no read-then-write
	// window for concurrent downvotes to lose updates in.
	// Unknown IDs return ErrContentNotFound.
	IncrementDownvote(ctx context.Context, contentID string) error

	// WithTx returns a ContentStore bound to the given transaction.
	WithTx(tx *sql.Tx) ContentStore
}

// AssignmentStore defines persistence for per-user content assignments.
type AssignmentStore interface {
	// GetDueAssignments returns the caller's assignments whose next review
	// instant is at or before now, each joined with its content item, in a
	// single batched read. Ordered by next review instant ascending with
	// content ID as tie-break so composition is deterministic.
	GetDueAssignments(ctx context.Context, userID uuid.UUID, now time.Time) ([]*domain.DueAssignment, error)

	// Get retrieves one assignment by its (user, content) key.
	// Returns ErrAssignmentNotFound if the pair has no assignment.
	Get(ctx context.Context, userID uuid.UUID, contentID string) (*domain.Assignment, error)

	// Upsert creates the assignment on first exposure or replaces its
	// schedule fields on subsequent writes. The (user, content) key is
	// unique; the row is never deleted while the relationship is active.
	Upsert(ctx context.Context, a *domain.Assignment) error

	// CountForUser returns the user's total assignment count and how many
	// of those are due at the given instant, for the dashboard view.
	CountForUser(ctx context.Context, userID uuid.UUID, now time.Time) (total, due int, err error)

	// WithTx returns an AssignmentStore bound to the given transaction.
	WithTx(tx *sql.Tx) AssignmentStore
}
