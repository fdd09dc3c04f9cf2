package domain

import (
	"errors"
	"fmt"
	"time"
)

// Content-specific validation errors
var (
	// ErrContentIDEmpty is returned when a content item's ID is empty.
	ErrContentIDEmpty = errors.New("content ID cannot be empty")

	// ErrContentTextEmpty is returned when either side of a drill is empty.
	ErrContentTextEmpty = errors.New("content source and target text cannot be empty")

	// ErrContentLevelInvalid is returned when the proficiency level is not
	// one of the known levels.
	ErrContentLevelInvalid = errors.New("content level must be beginner, intermediate, or advanced")

	// ErrContentOriginInvalid is returned when the origin marker is not a
	// known generation source.
	ErrContentOriginInvalid = errors.New("content origin must be a known generation source")

	// ErrContentDownvotesNegative is returned when a downvote count is below zero.
	ErrContentDownvotesNegative = errors.New("content downvote count cannot be negative")
)

// ContentOrigin marks where a content item came from.
type ContentOrigin string

const (
	// OriginProvider marks content returned by the generation provider.
	OriginProvider ContentOrigin = "gemini"

	// OriginFallback marks locally synthesized placeholder content used
	// when the provider is unavailable.
	OriginFallback ContentOrigin = "fallback"
)

// Moderation constants for the shared content pool.
const (
	// DownvoteThreshold is the downvote count at or above which content is
	// excluded from candidate pools for future reuse.
	DownvoteThreshold = 5

	// DownvoteCeiling bounds the downvote counter so concurrent abuse
	// cannot grow it without limit.
	DownvoteCeiling = 1000
)

// ContentItem is a single translation drill owned by the shared content
// pool. Items are shared across users: once written they are mutated only
// by usage-count and downvote increments, never deleted in normal
// operation.
type ContentItem struct {
	ID              string        `json:"id"`
	SourceText      string        `json:"source_text"`
	TargetText      string        `json:"target_text"`
	Context         string        `json:"context"`
	Grammar         string        `json:"grammar"`
	Level           Level         `json:"level"`
	JobRoles        []string      `json:"job_roles"`
	Interests       []string      `json:"interests"`
	GrammarPatterns []string      `json:"grammar_patterns"`
	Contexts        []string      `json:"contexts"`
	GeneratedBy     ContentOrigin `json:"generated_by"`
	CreatedAt       time.Time     `json:"created_at"`
	UsageCount      int           `json:"usage_count"`
	Downvotes       int           `json:"downvotes"`
}

// Validate checks if the ContentItem has valid data.
// Returns an error if any field fails validation.
func (c *ContentItem) Validate() error {
	if c.ID == "" {
		return ErrContentIDEmpty
	}

	if c.SourceText == "" || c.TargetText == "" {
		return ErrContentTextEmpty
	}

	if !c.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrContentLevelInvalid, c.Level)
	}

	switch c.GeneratedBy {
	case OriginProvider, OriginFallback:
	default:
		return fmt.Errorf("%w: %q", ErrContentOriginInvalid, c.GeneratedBy)
	}

	if c.Downvotes < 0 {
		return ErrContentDownvotesNegative
	}

	return nil
}

// Excluded reports whether the item has accumulated enough downvotes to be
// held out of candidate pools for users who do not already have it.
func (c *ContentItem) Excluded() bool {
	return c.Downvotes >= DownvoteThreshold
}
