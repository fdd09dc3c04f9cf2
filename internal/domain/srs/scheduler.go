// Package srs implements the spaced repetition scheduler: a pure mapping
// from a review rating to the next review instant. It performs no I/O and
// never reads the wall clock; callers pass the current instant in, which
// keeps scheduling deterministic and testable.
package srs

import (
	"fmt"
	"time"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// Params defines the review intervals, in days, for each rating.
type Params struct {
	IntervalDays map[domain.Rating]int
}

// NewDefaultParams returns the standard interval table: struggled cards
// come back tomorrow, known cards in three days, mastered cards in a week.
func NewDefaultParams() *Params {
	return &Params{
		IntervalDays: map[domain.Rating]int{
			domain.RatingHard: 1,
			domain.RatingGood: 3,
			domain.RatingEasy: 7,
		},
	}
}

// Scheduler computes review schedules from ratings.
type Scheduler struct {
	params *Params
}

// NewScheduler creates a Scheduler with the default interval table.
func NewScheduler() *Scheduler {
	return &Scheduler{params: NewDefaultParams()}
}

// NewSchedulerWithParams creates a Scheduler with a custom interval table.
func NewSchedulerWithParams(params *Params) *Scheduler {
	return &Scheduler{params: params}
}

// NextReviewAt maps a rating to the next review instant relative to now.
// Unrecognized ratings are rejected: the historical behavior of falling
// back to "due immediately" would requeue a card forever if a caller ever
// passed a bad value.
func (s *Scheduler) NextReviewAt(rating domain.Rating, now time.Time) (time.Time, error) {
	days, ok := s.params.IntervalDays[rating]
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %q", domain.ErrInvalidRating, rating)
	}
	return now.AddDate(0, 0, days), nil
}

// FirstExposureAt returns the initial review instant for a brand-new
// assignment. First exposure is scheduled optimistically as a full "easy"
// interval so a just-composed session does not immediately re-surface its
// own new items.
func (s *Scheduler) FirstExposureAt(now time.Time) time.Time {
	return now.AddDate(0, 0, s.params.IntervalDays[domain.RatingEasy])
}

// IsDue reports whether the assignment's next review instant has passed.
func IsDue(a *domain.Assignment, now time.Time) bool {
	if a == nil {
		return false
	}
	return !a.NextReviewAt.After(now)
}
