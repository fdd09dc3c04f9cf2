package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"strings"
	"time"

	"google.golang.org/genai"

	"github.com/renshuapp/renshu-api/internal/config"
	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/generation"
	"github.com/renshuapp/renshu-api/internal/sanitize"
)

// Generation tuning, matching the provider contract the frontend was
// built against.
const (
	generationTemperature     = 0.7
	generationTopK            = 40
	generationTopP            = 0.95
	generationMaxOutputTokens = 2000

	// maxDrillTextLength caps provider-returned drill text fields.
	maxDrillTextLength = 500

	// maxDrillTagLength caps provider-returned context/grammar fields.
	maxDrillTagLength = 100
)

// rawDrill is the JSON shape the provider is asked to produce.
type rawDrill struct {
	JP      string `json:"jp"`
	EN      string `json:"en"`
	Context string `json:"context"`
	Grammar string `json:"grammar"`
}

// Generator implements generation.Generator using the Gemini API.
type Generator struct {
	logger *slog.Logger
	cfg    config.LLMConfig
	client *genai.Client
	rng    *rand.Rand

	// now supplies the instant stamped onto generated items; nil falls
	// back to the wall clock. Injected so item IDs and CreatedAt are
	// deterministic under test.
	now func() time.Time
}

func (g *Generator) timeNow() time.Time {
	if g.now != nil {
		return g.now()
	}
	return time.Now().UTC()
}

// NewGenerator creates a Gemini-backed drill generator.
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", generation.ErrInvalidConfig)
	}
	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", generation.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", generation.ErrInvalidConfig, err)
	}

	return &Generator{
		logger: logger.With(slog.String("component", "gemini_generator")),
		cfg:    cfg,
		client: client,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

// Ensure Generator implements generation.Generator
var _ generation.Generator = (*Generator)(nil)

// GenerateDrills implements generation.Generator.GenerateDrills
func (g *Generator) GenerateDrills(ctx context.Context, req generation.Request) ([]*domain.ContentItem, error) {
	prompt, err := buildPrompt(req)
	if err != nil {
		return nil, fmt.Errorf("%w: prompt construction: %v", generation.ErrGenerationFailed, err)
	}

	text, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	drills, err := parseDrills(text)
	if err != nil {
		return nil, err
	}

	return g.toContentItems(drills, req, g.timeNow()), nil
}

// callWithRetry calls Gemini with exponential backoff and jitter for
// transient failures. Permanent failures (blocked content, unparseable
// responses) return immediately; context expiry surfaces as ErrTimeout so
// the composer can distinguish it.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (string, error) {
	maxRetries := g.cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	baseDelay := time.Duration(g.cfg.RetryDelaySeconds) * time.Second
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}

	genConfig := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(generationTemperature)),
		TopK:            genai.Ptr(float32(generationTopK)),
		TopP:            genai.Ptr(float32(generationTopP)),
		MaxOutputTokens: generationMaxOutputTokens,
	}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return "", fmt.Errorf("%w: %v", generation.ErrTimeout, ctx.Err())
		}

		g.logger.DebugContext(ctx, "calling gemini",
			slog.Int("attempt", attempt+1),
			slog.Int("max_attempts", maxRetries+1))

		resp, err := g.client.Models.GenerateContent(ctx, g.cfg.ModelName, genai.Text(prompt), genConfig)
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return "", fmt.Errorf("%w: %v", generation.ErrTimeout, ctx.Err())
			}
			lastErr = fmt.Errorf("%w: %v", generation.ErrTransientFailure, err)
		case resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil:
			return "", fmt.Errorf("%w: no content generated", generation.ErrInvalidResponse)
		case resp.Candidates[0].FinishReason == genai.FinishReasonSafety:
			return "", fmt.Errorf("%w: safety filter", generation.ErrContentBlocked)
		default:
			text := resp.Text()
			if text == "" {
				return "", fmt.Errorf("%w: empty response text", generation.ErrInvalidResponse)
			}
			return text, nil
		}

		g.logger.WarnContext(ctx, "gemini call failed",
			slog.Int("attempt", attempt+1),
			slog.String("error", lastErr.Error()))

		if attempt == maxRetries {
			break
		}

		// backoff = base * 2^attempt, jittered into [0.5, 1.0] of itself.
		backoff := float64(baseDelay) * math.Pow(2, float64(attempt))
		delay := time.Duration(backoff * (0.5 + g.rng.Float64()*0.5))
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("%w: %v", generation.ErrTimeout, ctx.Err())
		case <-time.After(delay):
		}
	}

	return "", lastErr
}

// parseDrills extracts the JSON drill array from the model output,
// tolerating markdown fences around it.
func parseDrills(text string) ([]rawDrill, error) {
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("%w: no JSON array in response", generation.ErrInvalidResponse)
	}

	var drills []rawDrill
	if err := json.Unmarshal([]byte(text[start:end+1]), &drills); err != nil {
		return nil, fmt.Errorf("%w: %v", generation.ErrInvalidResponse, err)
	}
	if len(drills) == 0 {
		return nil, fmt.Errorf("%w: empty drill array", generation.ErrInvalidResponse)
	}

	return drills, nil
}

// toContentItems sanitizes provider output and shapes it into pool items.
// Model text is untrusted input: every field passes the generic firewall
// stage and falls back to a placeholder rather than an empty value.
func (g *Generator) toContentItems(drills []rawDrill, req generation.Request, now time.Time) []*domain.ContentItem {
	if len(drills) > req.Count {
		drills = drills[:req.Count]
	}

	items := make([]*domain.ContentItem, 0, len(drills))
	for i, d := range drills {
		grammar := orDefault(sanitize.Input(d.Grammar, maxDrillTagLength), "Grammar")
		context := orDefault(sanitize.Input(d.Context, maxDrillTagLength), "General")

		items = append(items, &domain.ContentItem{
			ID:              fmt.Sprintf("gen_%d_%d", now.UnixMilli(), i),
			SourceText:      orDefault(sanitize.Input(d.JP, maxDrillTextLength), "N/A"),
			TargetText:      orDefault(sanitize.Input(d.EN, maxDrillTextLength), "N/A"),
			Context:         context,
			Grammar:         grammar,
			Level:           req.Level,
			JobRoles:        []string{domain.NormalizeJobRole(req.Job)},
			Interests:       []string{domain.NormalizeInterest(req.Interests)},
			GrammarPatterns: []string{grammar},
			Contexts:        []string{context},
			GeneratedBy:     domain.OriginProvider,
			CreatedAt:       now,
			UsageCount:      0,
			Downvotes:       0,
		})
	}

	return items
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
