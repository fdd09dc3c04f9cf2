package generation

import "errors"

// Common errors returned by drill generators.
var (
	// ErrGenerationFailed is returned when generation fails for any general reason.
	ErrGenerationFailed = errors.New("failed to generate drills")

	// ErrInvalidResponse is returned when the provider response cannot be
	// parsed or is malformed.
	ErrInvalidResponse = errors.New("invalid response from generation provider")

	// ErrContentBlocked is returned when the provider blocks the content
	// through its safety filters.
	ErrContentBlocked = errors.New("content blocked by provider safety filters")

	// ErrTimeout is returned when the bounded generation call expires
	// before the provider responds.
	ErrTimeout = errors.New("generation request timed out")

	// ErrTransientFailure is returned for temporary errors that might
	// resolve on retry.
	ErrTransientFailure = errors.New("transient error during drill generation")

	// ErrInvalidConfig is returned when the generator configuration is invalid.
	ErrInvalidConfig = errors.New("invalid generator configuration")
)
