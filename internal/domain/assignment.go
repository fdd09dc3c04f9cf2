package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assignment-specific validation errors
var (
	// ErrAssignmentUserIDEmpty is returned when an assignment's user ID is nil.
	ErrAssignmentUserIDEmpty = errors.New("assignment user ID cannot be empty")

	// ErrAssignmentContentIDEmpty is returned when an assignment's content ID is empty.
	ErrAssignmentContentIDEmpty = errors.New("assignment content ID cannot be empty")

	// ErrAssignmentReviewCountNegative is returned when a review count is below zero.
	ErrAssignmentReviewCountNegative = errors.New("assignment review count cannot be negative")

	// ErrInvalidRating is returned when a rating is not hard, good, or easy.
	ErrInvalidRating = errors.New("invalid rating")
)

// Rating is the learner's difficulty verdict on a reviewed drill.
type Rating string

// Possible rating values.
const (
	RatingHard Rating = "hard"
	RatingGood Rating = "good"
	RatingEasy Rating = "easy"
)

// Valid reports whether r is one of the recognized ratings.
func (r Rating) Valid() bool {
	switch r {
	case RatingHard, RatingGood, RatingEasy:
		return true
	default:
		return false
	}
}

// ParseRating converts raw input into a Rating. Unrecognized values are
// rejected rather than defaulted: a bad rating scheduled as "due now"
// would requeue the same card forever.
func ParseRating(s string) (Rating, error) {
	r := Rating(s)
	if !r.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidRating, s)
	}
	return r, nil
}

// Assignment links one user to one content item and carries the spaced
// repetition schedule for that pair. Unique per (user, content); created
// on first exposure, mutated on every rating, never deleted while the
// relationship is active.
type Assignment struct {
	UserID       uuid.UUID `json:"user_id"`
	ContentID    string    `json:"content_id"`
	NextReviewAt time.Time `json:"next_review_at"`
	LastReviewAt time.Time `json:"last_review_at"` // zero until first real review
	LastRating   Rating    `json:"last_rating"`    // empty until first real review
	ReviewCount  int       `json:"review_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// NewAssignment creates an assignment for a user's first exposure to a
// content item. The first interval is scheduled optimistically: new items
// start a full "easy" interval out so a fresh session is not immediately
// re-flooded with its own cards.
func NewAssignment(userID uuid.UUID, contentID string, now, nextReviewAt time.Time) (*Assignment, error) {
	a := &Assignment{
		UserID:       userID,
		ContentID:    contentID,
		NextReviewAt: nextReviewAt,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := a.Validate(); err != nil {
		return nil, err
	}

	return a, nil
}

// Validate checks if the Assignment has valid data.
// Returns an error if any field fails validation.
func (a *Assignment) Validate() error {
	if a.UserID == uuid.Nil {
		return ErrAssignmentUserIDEmpty
	}

	if a.ContentID == "" {
		return ErrAssignmentContentIDEmpty
	}

	if a.ReviewCount < 0 {
		return ErrAssignmentReviewCountNegative
	}

	if a.LastRating != "" && !a.LastRating.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidRating, a.LastRating)
	}

	return nil
}

// WithReview returns a copy of the assignment updated for a completed
// review. The original is left untouched.
func (a *Assignment) WithReview(rating Rating, now, nextReviewAt time.Time) (*Assignment, error) {
	if !rating.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidRating, rating)
	}

	updated := *a
	updated.NextReviewAt = nextReviewAt
	updated.LastReviewAt = now
	updated.LastRating = rating
	updated.ReviewCount = a.ReviewCount + 1
	updated.UpdatedAt = now
	return &updated, nil
}
