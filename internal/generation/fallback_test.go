package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshuapp/renshu-api/internal/domain"
)

func TestFallbackDrills(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	profile := domain.Profile{
		Job:         "Designer",
		Interests:   "Art",
		Level:       domain.LevelIntermediate,
		SessionSize: 5,
	}

	items := FallbackDrills(profile, 5, now)
	require.Len(t, items, 5)

	seen := map[string]bool{}
	for i, item := range items {
		require.NoError(t, item.Validate(), "item %d must pass domain validation", i)
		assert.Equal(t, domain.OriginFallback, item.GeneratedBy)
		assert.Equal(t, domain.LevelIntermediate, item.Level)
		assert.Equal(t, []string{"designer"}, item.JobRoles)
		assert.Equal(t, []string{"culture"}, item.Interests)
		assert.Contains(t, item.TargetText, "Designer")
		assert.False(t, seen[item.ID], "IDs must be unique within a batch")
		seen[item.ID] = true
	}
}

func TestFallbackDrillsAreDeterministic(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	profile := domain.Profile{Job: "Sales", Interests: "Travel", Level: domain.LevelBeginner, SessionSize: 5}

	first := FallbackDrills(profile, 3, now)
	second := FallbackDrills(profile, 3, now)
	require.Equal(t, first, second)
}
