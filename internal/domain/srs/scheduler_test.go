package srs

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshuapp/renshu-api/internal/domain"
)

func TestNextReviewAt(t *testing.T) {
	t.Parallel()
	s := NewScheduler()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	testCases := []struct {
		name     string
		rating   domain.Rating
		wantDays int
		wantErr  bool
	}{
		{name: "hard reschedules one day out", rating: domain.RatingHard, wantDays: 1},
		{name: "good reschedules three days out", rating: domain.RatingGood, wantDays: 3},
		{name: "easy reschedules seven days out", rating: domain.RatingEasy, wantDays: 7},
		{name: "unknown rating is rejected", rating: domain.Rating("soso"), wantErr: true},
		{name: "empty rating is rejected", rating: domain.Rating(""), wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, err := s.NextReviewAt(tc.rating, now)
			if tc.wantErr {
				require.ErrorIs(t, err, domain.ErrInvalidRating)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, now.AddDate(0, 0, tc.wantDays), got)
			assert.Equal(t, time.Duration(tc.wantDays)*24*time.Hour, got.Sub(now))
		})
	}
}

func TestNextReviewAtIsDeterministic(t *testing.T) {
	t.Parallel()
	s := NewScheduler()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	first, err := s.NextReviewAt(domain.RatingGood, now)
	require.NoError(t, err)
	second, err := s.NextReviewAt(domain.RatingGood, now)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestFirstExposureAt(t *testing.T) {
	t.Parallel()
	s := NewScheduler()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, now.AddDate(0, 0, 7), s.FirstExposureAt(now))
}

func TestIsDue(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	newAssignment := func(next time.Time) *domain.Assignment {
		a, err := domain.NewAssignment(uuid.New(), "c1", now.AddDate(0, 0, -8), next)
		require.NoError(t, err)
		return a
	}

	assert.True(t, IsDue(newAssignment(now.Add(-time.Hour)), now), "past instant is due")
	assert.True(t, IsDue(newAssignment(now), now), "exact instant is due")
	assert.False(t, IsDue(newAssignment(now.Add(time.Hour)), now), "future instant is not due")
	assert.False(t, IsDue(nil, now))
}

func TestCustomParams(t *testing.T) {
	t.Parallel()
	s := NewSchedulerWithParams(&Params{
		IntervalDays: map[domain.Rating]int{domain.RatingHard: 2},
	})
	now := time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

	got, err := s.NextReviewAt(domain.RatingHard, now)
	require.NoError(t, err)
	assert.Equal(t, now.AddDate(0, 0, 2), got)

	// Ratings absent from a custom table are invalid for that scheduler.
	_, err = s.NextReviewAt(domain.RatingEasy, now)
	assert.ErrorIs(t, err, domain.ErrInvalidRating)
}
