package session

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/domain/srs"
	"github.com/renshuapp/renshu-api/internal/generation"
	"github.com/renshuapp/renshu-api/internal/platform/logger"
	"github.com/renshuapp/renshu-api/internal/sanitize"
	"github.com/renshuapp/renshu-api/internal/store"
)

// Verify interface compliance at compile time
var _ Service = (*composer)(nil)

// Options tunes composition behavior.
type Options struct {
	// GenerationTimeout bounds the provider call. On expiry the in-flight
	// request is abandoned and fallback content is synthesized so the
	// composer always completes.
	GenerationTimeout time.Duration

	// ReusePool tops sessions up from the shared content pool before
	// calling the provider.
	ReusePool bool

	// Now supplies the current instant; defaults to time.Now in UTC.
	// Injected so composition is deterministic under test.
	Now func() time.Time

	// DB, when set, makes the persist-and-assign step transactional:
	// pool writes and the user's new assignments commit together. Left
	// nil by tests using fake stores.
	DB *sql.DB
}

// composer implements the Service interface.
type composer struct {
	contents    store.ContentStore
	assignments store.AssignmentStore
	generator   generation.Generator
	scheduler   *srs.Scheduler
	opts        Options
	logger      *slog.Logger
}

// NewService creates the session service. The store handles, generator,
// and scheduler are explicit dependencies; there is no module-level state.
func NewService(
	contents store.ContentStore,
	assignments store.AssignmentStore,
	generator generation.Generator,
	scheduler *srs.Scheduler,
	opts Options,
	log *slog.Logger,
) Service {
	if contents == nil {
		panic("contents cannot be nil")
	}
	if assignments == nil {
		panic("assignments cannot be nil")
	}
	if generator == nil {
		panic("generator cannot be nil")
	}
	if scheduler == nil {
		panic("scheduler cannot be nil")
	}
	if opts.GenerationTimeout <= 0 {
		opts.GenerationTimeout = 15 * time.Second
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if log == nil {
		log = slog.Default()
	}

	return &composer{
		contents:    contents,
		assignments: assignments,
		generator:   generator,
		scheduler:   scheduler,
		opts:        opts,
		logger:      log.With(slog.String("component", "session_service")),
	}
}

// BuildQueue implements Service.BuildQueue.
func (c *composer) BuildQueue(
	ctx context.Context,
	userID uuid.UUID,
	profile domain.Profile,
	targetCount int,
) ([]domain.SessionQueueEntry, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)

	if targetCount == 0 {
		return nil, nil
	}
	if targetCount < 0 || !domain.ValidSessionSize(targetCount) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidTarget, targetCount)
	}

	now := c.opts.Now()

	due, err := c.assignments.GetDueAssignments(ctx, userID, now)
	if err != nil {
		// Fatal to session start; the caller returns to the dashboard.
		return nil, &ServiceError{Operation: "build_queue", Message: "due-set read failed", Err: err}
	}

	sortDue(due)

	reviews := due
	if len(reviews) > targetCount {
		reviews = reviews[:targetCount]
	}
	remaining := targetCount - len(reviews)

	queue := make([]domain.SessionQueueEntry, 0, targetCount)
	for _, d := range reviews {
		queue = append(queue, domain.SessionQueueEntry{
			Kind:       domain.EntryReview,
			Content:    d.Content,
			Assignment: d.Assignment,
		})
	}

	if remaining == 0 {
		log.Debug("session filled from due reviews",
			slog.String("user_id", userID.String()),
			slog.Int("reviews", len(reviews)))
		return queue, nil
	}

	// Fail fast on a profile that cannot produce a usable prompt; no
	// network call is made for garbage input.
	job, jobErr := sanitize.ForPrompt(profile.Job)
	interests, intErr := sanitize.ForPrompt(profile.Interests)
	if jobErr != nil || intErr != nil {
		return nil, fmt.Errorf("%w: job and interests must have at least %d usable characters",
			ErrInvalidProfile, sanitize.MinPromptLength)
	}
	if err := profile.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}

	if c.opts.ReusePool {
		reused, err := c.fillFromPool(ctx, userID, profile, remaining, now)
		if err != nil {
			// Pool reuse is an optimization; log and fall through to
			// generation rather than failing the session.
			log.Warn("content pool reuse failed",
				slog.String("user_id", userID.String()),
				slog.String("error", err.Error()))
		} else {
			queue = append(queue, reused...)
			remaining -= len(reused)
		}
	}

	if remaining > 0 {
		fresh := c.generate(ctx, userID, profile, job, interests, remaining, now)
		created, err := c.persistAndAssign(ctx, userID, fresh, now)
		if err != nil {
			return nil, &ServiceError{Operation: "build_queue", Message: "persisting new drills failed", Err: err}
		}
		queue = append(queue, created...)
	}

	log.Info("session composed",
		slog.String("user_id", userID.String()),
		slog.Int("target", targetCount),
		slog.Int("reviews", len(reviews)),
		slog.Int("new", len(queue)-len(reviews)))

	return queue, nil
}

// generate calls the provider under the configured timeout and falls back
// to deterministic local content on any failure. Provider errors never
// escape this method.
func (c *composer) generate(
	ctx context.Context,
	userID uuid.UUID,
	profile domain.Profile,
	job, interests string,
	count int,
	now time.Time,
) []*domain.ContentItem {
	log := logger.FromContextOrDefault(ctx, c.logger)

	genCtx, cancel := context.WithTimeout(ctx, c.opts.GenerationTimeout)
	defer cancel()

	// The provider contract only accepts the session-size counts, so the
	// request carries the full size and the result is capped to what the
	// queue still needs.
	items, err := c.generator.GenerateDrills(genCtx, generation.Request{
		Count:     profile.SessionSize,
		Level:     profile.Level,
		Job:       job,
		Interests: interests,
	})
	if err != nil {
		log.Warn("drill generation failed, using fallback content",
			slog.String("user_id", userID.String()),
			slog.Int("count", count),
			slog.String("error", err.Error()))
		return generation.FallbackDrills(profile, count, now)
	}

	if len(items) > count {
		items = items[:count]
	}
	if len(items) < count {
		// Short responses are topped up rather than failing the session.
		items = append(items, generation.FallbackDrills(profile, count-len(items), now)...)
	}
	return items
}

// fillFromPool tops the session up with moderation-filtered pool content
// the user has not seen yet.
func (c *composer) fillFromPool(
	ctx context.Context,
	userID uuid.UUID,
	profile domain.Profile,
	count int,
	now time.Time,
) ([]domain.SessionQueueEntry, error) {
	items, err := c.contents.GetCandidatePool(ctx, userID, profile.Level, count)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	entries := make([]domain.SessionQueueEntry, 0, len(items))
	for _, item := range items {
		if err := c.assign(ctx, userID, item.ID, now); err != nil {
			return entries, err
		}
		entries = append(entries, domain.SessionQueueEntry{Kind: domain.EntryNew, Content: item})
	}
	return entries, nil
}

// persistAndAssign writes generated or fallback items into the pool
// (deduplicating by ID) and creates the user's assignments for them.
// With a database handle configured both writes share one transaction.
func (c *composer) persistAndAssign(
	ctx context.Context,
	userID uuid.UUID,
	items []*domain.ContentItem,
	now time.Time,
) ([]domain.SessionQueueEntry, error) {
	if len(items) == 0 {
		return nil, nil
	}

	if c.opts.DB != nil {
		var entries []domain.SessionQueueEntry
		err := store.RunInTransaction(ctx, c.opts.DB, func(ctx context.Context, tx *sql.Tx) error {
			var txErr error
			entries, txErr = persistAndAssignWith(ctx, c.contents.WithTx(tx), c.assignments.WithTx(tx), c.scheduler, c.logger, userID, items, now)
			return txErr
		})
		if err != nil {
			return nil, err
		}
		return entries, nil
	}

	return persistAndAssignWith(ctx, c.contents, c.assignments, c.scheduler, c.logger, userID, items, now)
}

func persistAndAssignWith(
	ctx context.Context,
	contents store.ContentStore,
	assignments store.AssignmentStore,
	scheduler *srs.Scheduler,
	log *slog.Logger,
	userID uuid.UUID,
	items []*domain.ContentItem,
	now time.Time,
) ([]domain.SessionQueueEntry, error) {
	if err := contents.SaveContent(ctx, items); err != nil {
		return nil, err
	}

	entries := make([]domain.SessionQueueEntry, 0, len(items))
	for _, item := range items {
		if err := assignWith(ctx, contents, assignments, scheduler, log, userID, item.ID, now); err != nil {
			return nil, err
		}
		entries = append(entries, domain.SessionQueueEntry{Kind: domain.EntryNew, Content: item})
	}
	return entries, nil
}

// assign creates the first-exposure assignment for one content item and
// bumps its usage counter.
func (c *composer) assign(ctx context.Context, userID uuid.UUID, contentID string, now time.Time) error {
	return assignWith(ctx, c.contents, c.assignments, c.scheduler, c.logger, userID, contentID, now)
}

func assignWith(
	ctx context.Context,
	contents store.ContentStore,
	assignments store.AssignmentStore,
	scheduler *srs.Scheduler,
	log *slog.Logger,
	userID uuid.UUID,
	contentID string,
	now time.Time,
) error {
	a, err := domain.NewAssignment(userID, contentID, now, scheduler.FirstExposureAt(now))
	if err != nil {
		return err
	}
	if err := assignments.Upsert(ctx, a); err != nil {
		return err
	}
	if err := contents.IncrementUsage(ctx, contentID); err != nil {
		// Usage counts tolerate eventual consistency; a failed bump is
		// not worth failing the session over.
		log.Warn("usage increment failed",
			slog.String("content_id", contentID),
			slog.String("error", err.Error()))
	}
	return nil
}

// SubmitRating implements Service.SubmitRating.
func (c *composer) SubmitRating(
	ctx context.Context,
	userID uuid.UUID,
	contentID string,
	rating domain.Rating,
) (*domain.Assignment, error) {
	log := logger.FromContextOrDefault(ctx, c.logger)
	now := c.opts.Now()

	next, err := c.scheduler.NextReviewAt(rating, now)
	if err != nil {
		return nil, err
	}

	current, err := c.assignments.Get(ctx, userID, contentID)
	if err != nil {
		if store.IsNotFoundError(err) {
			return nil, fmt.Errorf("%w: content %s", ErrAssignmentNotFound, contentID)
		}
		return nil, &ServiceError{Operation: "submit_rating", Message: "assignment read failed", Err: err}
	}

	updated, err := current.WithReview(rating, now, next)
	if err != nil {
		return nil, err
	}

	// The write must complete before the caller advances; persistence
	// failures propagate, never get swallowed.
	if err := c.assignments.Upsert(ctx, updated); err != nil {
		log.Error("rating save failed",
			slog.String("user_id", userID.String()),
			slog.String("content_id", contentID),
			slog.String("error", err.Error()))
		return nil, &ServiceError{Operation: "submit_rating", Message: "rating save failed", Err: err}
	}

	log.Debug("rating recorded",
		slog.String("user_id", userID.String()),
		slog.String("content_id", contentID),
		slog.String("rating", string(rating)),
		slog.Time("next_review_at", updated.NextReviewAt))

	return updated, nil
}

// Downvote implements Service.Downvote.
func (c *composer) Downvote(ctx context.Context, contentID string) error {
	if err := c.contents.IncrementDownvote(ctx, contentID); err != nil {
		return &ServiceError{Operation: "downvote", Message: "increment failed", Err: err}
	}
	return nil
}

// DashboardStats implements Service.DashboardStats.
func (c *composer) DashboardStats(ctx context.Context, userID uuid.UUID, now time.Time) (Stats, error) {
	total, dueCount, err := c.assignments.CountForUser(ctx, userID, now)
	if err != nil {
		return Stats{}, &ServiceError{Operation: "dashboard_stats", Message: "count failed", Err: err}
	}
	return Stats{TotalAssignments: total, DueNow: dueCount}, nil
}

// sortDue orders due assignments by next review instant ascending with
// content ID as tie-break, so composition is deterministic regardless of
// store iteration order.
func sortDue(due []*domain.DueAssignment) {
	sort.SliceStable(due, func(i, j int) bool {
		a, b := due[i].Assignment, due[j].Assignment
		if !a.NextReviewAt.Equal(b.NextReviewAt) {
			return a.NextReviewAt.Before(b.NextReviewAt)
		}
		return a.ContentID < b.ContentID
	})
}
