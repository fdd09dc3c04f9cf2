package generation

import (
	"context"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// Request describes one drill generation call. Job and Interests must
// already be prompt-sanitized; the Generator trusts them into the prompt
// verbatim.
type Request struct {
	Count     int          `json:"count"      validate:"required,oneof=5 10 20"`
	Level     domain.Level `json:"level"      validate:"required,oneof=beginner intermediate advanced"`
	Job       string       `json:"job"        validate:"required,min=2,max=100"`
	Interests string       `json:"interests"  validate:"required,min=2,max=100"`
}

// Generator produces translation drills for a learner profile. It is the
// boundary between the application core and the external provider: the
// composer calls it, recovers from any failure via the fallback
// synthesizer, and never lets a provider error reach the user flow.
type Generator interface {
	// GenerateDrills returns exactly req.Count content items, or an error.
	// Implementations must honor ctx cancellation: the composer bounds
	// every call with a timeout and abandons the request on expiry.
	GenerateDrills(ctx context.Context, req Request) ([]*domain.ContentItem, error)
}
