package generation

import (
	"fmt"
	"time"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// FallbackDrills synthesizes count deterministic placeholder drills for
// the given profile. They have the same shape as provider content, carry
// the fallback origin marker, and are persisted and assigned exactly like
// real drills so the session flow never stalls on a provider outage.
//
// IDs are derived from now and the item index, so two composers running in
// the same instant for the same user produce the same IDs and the pool
// dedup makes the writes idempotent.
func FallbackDrills(profile domain.Profile, count int, now time.Time) []*domain.ContentItem {
	jobTag := domain.NormalizeJobRole(profile.Job)
	interestTag := domain.NormalizeInterest(profile.Interests)

	items := make([]*domain.ContentItem, 0, count)
	for i := 0; i < count; i++ {
		items = append(items, &domain.ContentItem{
			ID:              fmt.Sprintf("fallback_%d_%d", now.Unix(), i),
			SourceText:      fmt.Sprintf("これは%s向けのデモです(%d)。", profile.Job, i),
			TargetText:      fmt.Sprintf("This is a demo sentence for a %s (%d).", profile.Job, i),
			Context:         "Demo",
			Grammar:         "SVO Pattern",
			Level:           profile.Level,
			JobRoles:        []string{jobTag},
			Interests:       []string{interestTag},
			GrammarPatterns: []string{"SVO Pattern"},
			Contexts:        []string{"Demo"},
			GeneratedBy:     domain.OriginFallback,
			CreatedAt:       now,
		})
	}
	return items
}
