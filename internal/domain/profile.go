package domain

import (
	"errors"
	"fmt"
)

// Profile-specific validation errors
var (
	// ErrProfileJobTooLong is returned when the job field exceeds the limit.
	ErrProfileJobTooLong = errors.New("profile job cannot exceed 100 characters")

	// ErrProfileInterestsTooLong is returned when the interests field exceeds the limit.
	ErrProfileInterestsTooLong = errors.New("profile interests cannot exceed 100 characters")

	// ErrInvalidLevel is returned when a proficiency level is not recognized.
	ErrInvalidLevel = errors.New("invalid proficiency level")

	// ErrInvalidSessionSize is returned when a requested session size is not
	// one of the supported counts.
	ErrInvalidSessionSize = errors.New("session size must be 5, 10, or 20")
)

// MaxProfileFieldLength bounds the free-text profile fields.
const MaxProfileFieldLength = 100

// Level is a learner's proficiency level.
type Level string

// Recognized proficiency levels.
const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
)

// Valid reports whether l is a recognized level.
func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced:
		return true
	default:
		return false
	}
}

// ParseLevel converts raw input into a Level, rejecting unknown values.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLevel, s)
	}
	return l, nil
}

// SessionSizes are the supported session sizes.
var SessionSizes = []int{5, 10, 20}

// ValidSessionSize reports whether n is a supported session size.
func ValidSessionSize(n int) bool {
	for _, s := range SessionSizes {
		if n == s {
			return true
		}
	}
	return false
}

// Profile carries the free-text learner profile used to steer generation.
// The job and interests fields are raw user input and must pass through
// the sanitize package before reaching any prompt.
type Profile struct {
	Job         string `json:"job"`
	Interests   string `json:"interests"`
	Level       Level  `json:"level"`
	SessionSize int    `json:"session_size"`
}

// Validate checks if the Profile has valid data.
// Returns an error if any field fails validation.
func (p *Profile) Validate() error {
	if len(p.Job) > MaxProfileFieldLength {
		return ErrProfileJobTooLong
	}

	if len(p.Interests) > MaxProfileFieldLength {
		return ErrProfileInterestsTooLong
	}

	if !p.Level.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidLevel, p.Level)
	}

	if !ValidSessionSize(p.SessionSize) {
		return fmt.Errorf("%w: got %d", ErrInvalidSessionSize, p.SessionSize)
	}

	return nil
}
