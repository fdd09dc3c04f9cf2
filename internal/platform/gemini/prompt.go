package gemini

import (
	"bytes"
	"text/template"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/generation"
)

// promptTemplate is the drill generation prompt. Job and Interests are
// inserted only after prompt sanitization; the template itself never sees
// raw user input.
const promptTemplate = `You are an English language teacher specializing in Japanese-to-English translation drills.

Generate exactly {{.Count}} unique English drill exercises for a {{.Level}} level student.

Student Profile:
- Job/Role: {{.Job}}
- Interests: {{.Interests}}

Level Guidance: {{.LevelInstruction}}

For each drill, provide ONLY valid JSON (no markdown, no code blocks, pure JSON array):
[
  {
    "jp": "Japanese sentence here",
    "en": "English translation",
    "context": "Context of use",
    "grammar": "Grammar pattern or structure"
  }
]

Requirements:
1. Make drills relevant to the student's job and interests
2. Include variety in contexts and grammar patterns
3. Keep English translations natural and idiomatic
4. Each drill should be a standalone exercise`

var parsedPromptTemplate = template.Must(template.New("drills").Parse(promptTemplate))

// promptData carries the values inserted into the prompt template.
type promptData struct {
	Count            int
	Level            domain.Level
	LevelInstruction string
	Job              string
	Interests        string
}

// buildPrompt renders the generation prompt for a request.
func buildPrompt(req generation.Request) (string, error) {
	var buf bytes.Buffer
	err := parsedPromptTemplate.Execute(&buf, promptData{
		Count:            req.Count,
		Level:            req.Level,
		LevelInstruction: domain.LevelInstruction(req.Level),
		Job:              req.Job,
		Interests:        req.Interests,
	})
	if err != nil {
		return "", err
	}
	return buf.String(), nil
}
