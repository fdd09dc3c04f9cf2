package gemini

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/generation"
)

func TestBuildPrompt(t *testing.T) {
	t.Parallel()
	req := generation.Request{
		Count:     5,
		Level:     domain.LevelBeginner,
		Job:       "Software Engineer",
		Interests: "Technology",
	}

	prompt, err := buildPrompt(req)
	require.NoError(t, err)

	assert.Contains(t, prompt, "exactly 5 unique English drill exercises")
	assert.Contains(t, prompt, "beginner level student")
	assert.Contains(t, prompt, "Job/Role: Software Engineer")
	assert.Contains(t, prompt, "Interests: Technology")
	assert.Contains(t, prompt, "Target CEFR A2", "level guidance must match the level")
}

func TestParseDrills(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{
			name:    "plain JSON array",
			input:   `[{"jp":"例","en":"example","context":"General","grammar":"SVO"}]`,
			wantLen: 1,
		},
		{
			name:    "markdown fenced array",
			input:   "```json\n[{\"jp\":\"例\",\"en\":\"example\"}]\n```",
			wantLen: 1,
		},
		{
			name:    "leading prose before array",
			input:   "Here are your drills:\n[{\"jp\":\"例\",\"en\":\"example\"}]",
			wantLen: 1,
		},
		{name: "no array", input: "I cannot help with that.", wantErr: true},
		{name: "malformed JSON", input: `[{"jp": }]`, wantErr: true},
		{name: "empty array", input: `[]`, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			drills, err := parseDrills(tc.input)
			if tc.wantErr {
				require.ErrorIs(t, err, generation.ErrInvalidResponse)
				return
			}
			require.NoError(t, err)
			assert.Len(t, drills, tc.wantLen)
		})
	}
}

func TestToContentItems(t *testing.T) {
	t.Parallel()
	g := &Generator{}
	req := generation.Request{
		Count:     5,
		Level:     domain.LevelIntermediate,
		Job:       "Designer",
		Interests: "Art",
	}

	drills := []rawDrill{
		{JP: "これは例です。", EN: "This is an example.", Context: "Business Meeting", Grammar: "Present Simple"},
		{JP: "", EN: "", Context: "", Grammar: ""},
	}

	now := time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC)
	items := g.toContentItems(drills, req, now)
	require.Len(t, items, 2)

	first := items[0]
	require.NoError(t, first.Validate())
	assert.Equal(t, fmt.Sprintf("gen_%d_0", now.UnixMilli()), first.ID)
	assert.True(t, now.Equal(first.CreatedAt))
	assert.Equal(t, "これは例です。", first.SourceText)
	assert.Equal(t, domain.OriginProvider, first.GeneratedBy)
	assert.Equal(t, []string{"designer"}, first.JobRoles)
	assert.Zero(t, first.UsageCount)
	assert.Zero(t, first.Downvotes)

	// Empty provider fields get placeholders, not empty strings.
	second := items[1]
	require.NoError(t, second.Validate())
	assert.Equal(t, "N/A", second.SourceText)
	assert.Equal(t, "N/A", second.TargetText)
	assert.Equal(t, "General", second.Context)
	assert.Equal(t, "Grammar", second.Grammar)
}

func TestTimeNowUsesInjectedClock(t *testing.T) {
	t.Parallel()
	fixed := time.Unix(1747742400, 0).UTC()
	g := &Generator{now: func() time.Time { return fixed }}
	assert.True(t, fixed.Equal(g.timeNow()))
}

func TestToContentItemsCapsAtRequestedCount(t *testing.T) {
	t.Parallel()
	g := &Generator{}
	req := generation.Request{Count: 5, Level: domain.LevelBeginner, Job: "Sales", Interests: "Travel"}

	drills := make([]rawDrill, 8)
	for i := range drills {
		drills[i] = rawDrill{JP: "例", EN: "example"}
	}

	items := g.toContentItems(drills, req, time.Unix(1747742400, 0).UTC())
	assert.Len(t, items, 5)

	ids := map[string]bool{}
	for _, item := range items {
		assert.False(t, ids[item.ID])
		ids[item.ID] = true
	}
}

func TestToContentItemsSanitizesModelOutput(t *testing.T) {
	t.Parallel()
	g := &Generator{}
	req := generation.Request{Count: 5, Level: domain.LevelBeginner, Job: "Sales", Interests: "Travel"}

	items := g.toContentItems([]rawDrill{
		{JP: "<b>例</b>", EN: "hello <script>alert(1)</script>", Context: strings.Repeat("x", 300), Grammar: "SVO"},
	}, req, time.Unix(1747742400, 0).UTC())
	require.Len(t, items, 1)

	assert.NotContains(t, items[0].TargetText, "<")
	assert.LessOrEqual(t, len(items[0].Context), 100)
}
