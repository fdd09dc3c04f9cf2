package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/store"
)

// AssignmentStore implements store.AssignmentStore against PostgreSQL.
type AssignmentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewAssignmentStore creates a PostgreSQL implementation of store.AssignmentStore.
func NewAssignmentStore(db store.DBTX, logger *slog.Logger) *AssignmentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &AssignmentStore{
		db:     db,
		logger: logger.With(slog.String("component", "assignment_store")),
	}
}

// Ensure AssignmentStore implements store.AssignmentStore
var _ store.AssignmentStore = (*AssignmentStore)(nil)

// WithTx implements store.AssignmentStore.WithTx
func (s *AssignmentStore) WithTx(tx *sql.Tx) store.AssignmentStore {
	return &AssignmentStore{db: tx, logger: s.logger}
}

// GetDueAssignments implements store.AssignmentStore.GetDueAssignments.
// One joined query returns assignments and their content together; a
// fetch-per-item loop would degrade linearly with the due-set size.
func (s *AssignmentStore) GetDueAssignments(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*domain.DueAssignment, error) {
	query := `
		SELECT a.user_id, a.content_id, a.next_review_at, a.last_review_at,
		       a.last_rating, a.review_count, a.created_at, a.updated_at,
		       ` + prefixedContentColumns("c") + `
		FROM assignments a
		JOIN content_pool c ON c.id = a.content_id
		WHERE a.user_id = $1 AND a.next_review_at <= $2
		ORDER BY a.next_review_at ASC, a.content_id ASC`

	rows, err := s.db.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, store.NewStoreError("assignment", "get_due", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	var due []*domain.DueAssignment
	for rows.Next() {
		var (
			a            domain.Assignment
			item         domain.ContentItem
			lastReviewAt sql.NullTime
			lastRating   string
			level        string
			generatedBy  string
			tagCols      [4][]byte
		)

		err := rows.Scan(
			&a.UserID, &a.ContentID, &a.NextReviewAt, &lastReviewAt,
			&lastRating, &a.ReviewCount, &a.CreatedAt, &a.UpdatedAt,
			&item.ID, &item.SourceText, &item.TargetText, &item.Context, &item.Grammar, &level,
			&tagCols[0], &tagCols[1], &tagCols[2], &tagCols[3],
			&generatedBy, &item.CreatedAt, &item.UsageCount, &item.Downvotes,
		)
		if err != nil {
			return nil, store.NewStoreError("assignment", "get_due", "scan failed", MapError(err))
		}

		if lastReviewAt.Valid {
			a.LastReviewAt = lastReviewAt.Time
		}
		a.LastRating = domain.Rating(lastRating)
		item.Level = domain.Level(level)
		item.GeneratedBy = domain.ContentOrigin(generatedBy)
		if err := unmarshalTags(&item, tagCols); err != nil {
			return nil, err
		}

		if err := a.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
		if err := item.Validate(); err != nil {
			return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}

		due = append(due, &domain.DueAssignment{Assignment: &a, Content: &item})
	}
	if err := rows.Err(); err != nil {
		return nil, store.NewStoreError("assignment", "get_due", "iteration failed", MapError(err))
	}

	return due, nil
}

// Get implements store.AssignmentStore.Get
func (s *AssignmentStore) Get(
	ctx context.Context,
	userID uuid.UUID,
	contentID string,
) (*domain.Assignment, error) {
	query := `
		SELECT user_id, content_id, next_review_at, last_review_at,
		       last_rating, review_count, created_at, updated_at
		FROM assignments
		WHERE user_id = $1 AND content_id = $2`

	var (
		a            domain.Assignment
		lastReviewAt sql.NullTime
		lastRating   string
	)
	err := s.db.QueryRowContext(ctx, query, userID, contentID).Scan(
		&a.UserID, &a.ContentID, &a.NextReviewAt, &lastReviewAt,
		&lastRating, &a.ReviewCount, &a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrAssignmentNotFound
		}
		return nil, store.NewStoreError("assignment", "get", "query failed", MapError(err))
	}

	if lastReviewAt.Valid {
		a.LastReviewAt = lastReviewAt.Time
	}
	a.LastRating = domain.Rating(lastRating)

	return &a, nil
}

// Upsert implements store.AssignmentStore.Upsert
func (s *AssignmentStore) Upsert(ctx context.Context, a *domain.Assignment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	var lastReviewAt sql.NullTime
	if !a.LastReviewAt.IsZero() {
		lastReviewAt = sql.NullTime{Time: a.LastReviewAt, Valid: true}
	}

	query := `
		INSERT INTO assignments
			(user_id, content_id, next_review_at, last_review_at,
			 last_rating, review_count, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (user_id, content_id) DO UPDATE SET
			next_review_at = EXCLUDED.next_review_at,
			last_review_at = EXCLUDED.last_review_at,
			last_rating = EXCLUDED.last_rating,
			review_count = EXCLUDED.review_count,
			updated_at = EXCLUDED.updated_at`

	_, err := s.db.ExecContext(ctx, query,
		a.UserID, a.ContentID, a.NextReviewAt, lastReviewAt,
		string(a.LastRating), a.ReviewCount, a.CreatedAt, a.UpdatedAt,
	)
	if err != nil {
		s.logger.Error("failed to upsert assignment",
			slog.String("user_id", a.UserID.String()),
			slog.String("content_id", a.ContentID),
			slog.String("error", err.Error()))
		return store.NewStoreError("assignment", "upsert", "write failed", MapError(err))
	}

	return nil
}

// CountForUser implements store.AssignmentStore.CountForUser
func (s *AssignmentStore) CountForUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) (int, int, error) {
	query := `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE next_review_at <= $2)
		FROM assignments
		WHERE user_id = $1`

	var total, due int
	err := s.db.QueryRowContext(ctx, query, userID, now).Scan(&total, &due)
	if err != nil {
		return 0, 0, store.NewStoreError("assignment", "count", "query failed", MapError(err))
	}

	return total, due, nil
}

// prefixedContentColumns returns the content column list qualified with a
// table alias for join queries.
func prefixedContentColumns(alias string) string {
	return alias + `.id, ` + alias + `.source_text, ` + alias + `.target_text, ` +
		alias + `.context, ` + alias + `.grammar, ` + alias + `.level, ` +
		alias + `.job_roles, ` + alias + `.interests, ` + alias + `.grammar_patterns, ` +
		alias + `.contexts, ` + alias + `.generated_by, ` + alias + `.created_at, ` +
		alias + `.usage_count, ` + alias + `.downvotes`
}

func unmarshalTags(item *domain.ContentItem, cols [4][]byte) error {
	dests := []*[]string{&item.JobRoles, &item.Interests, &item.GrammarPatterns, &item.Contexts}
	for i, raw := range cols {
		if len(raw) == 0 {
			continue
		}
		if err := json.Unmarshal(raw, dests[i]); err != nil {
			return fmt.Errorf("%w: malformed tag column: %v", store.ErrInvalidEntity, err)
		}
	}
	return nil
}
