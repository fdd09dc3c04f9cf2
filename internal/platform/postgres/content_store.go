package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/store"
)

// ContentStore implements store.ContentStore against PostgreSQL.
// Tag sets are stored as JSONB so the row shape stays stable as the tag
// vocabulary evolves.
type ContentStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewContentStore creates a PostgreSQL implementation of store.ContentStore.
// The database handle is initialized and owned by the caller.
func NewContentStore(db store.DBTX, logger *slog.Logger) *ContentStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &ContentStore{
		db:     db,
		logger: logger.With(slog.String("component", "content_store")),
	}
}

// Ensure ContentStore implements store.ContentStore
var _ store.ContentStore = (*ContentStore)(nil)

// WithTx implements store.ContentStore.WithTx
func (s *ContentStore) WithTx(tx *sql.Tx) store.ContentStore {
	return &ContentStore{db: tx, logger: s.logger}
}

const contentColumns = `id, source_text, target_text, context, grammar, level,
	job_roles, interests, grammar_patterns, contexts,
	generated_by, created_at, usage_count, downvotes`

// SaveContent implements store.ContentStore.SaveContent.
// Inserts deduplicate on ID: an existing row wins, so re-persisting an
// item another user already generated is a no-op.
func (s *ContentStore) SaveContent(ctx context.Context, items []*domain.ContentItem) error {
	for _, item := range items {
		if err := item.Validate(); err != nil {
			return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
		}
	}

	query := `
		INSERT INTO content_pool (` + contentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO NOTHING`

	for _, item := range items {
		jobRoles, err := json.Marshal(item.JobRoles)
		if err != nil {
			return fmt.Errorf("%w: job_roles: %v", store.ErrInvalidEntity, err)
		}
		interests, err := json.Marshal(item.Interests)
		if err != nil {
			return fmt.Errorf("%w: interests: %v", store.ErrInvalidEntity, err)
		}
		grammarPatterns, err := json.Marshal(item.GrammarPatterns)
		if err != nil {
			return fmt.Errorf("%w: grammar_patterns: %v", store.ErrInvalidEntity, err)
		}
		contexts, err := json.Marshal(item.Contexts)
		if err != nil {
			return fmt.Errorf("%w: contexts: %v", store.ErrInvalidEntity, err)
		}

		_, err = s.db.ExecContext(ctx, query,
			item.ID, item.SourceText, item.TargetText, item.Context, item.Grammar,
			string(item.Level), jobRoles, interests, grammarPatterns, contexts,
			string(item.GeneratedBy), item.CreatedAt, item.UsageCount, item.Downvotes,
		)
		if err != nil {
			s.logger.Error("failed to save content item",
				slog.String("content_id", item.ID),
				slog.String("error", err.Error()))
			return store.NewStoreError("content", "save", "insert failed", MapError(err))
		}
	}

	return nil
}

// GetContentByIDs implements store.ContentStore.GetContentByIDs
func (s *ContentStore) GetContentByIDs(ctx context.Context, ids []string) ([]*domain.ContentItem, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	query := `SELECT ` + contentColumns + ` FROM content_pool WHERE id = ANY($1)`

	rows, err := s.db.QueryContext(ctx, query, ids)
	if err != nil {
		return nil, store.NewStoreError("content", "get_by_ids", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return scanContentRows(rows)
}

// GetCandidatePool implements store.ContentStore.GetCandidatePool.
// The moderation gate lives in this query: items at or above the downvote
// threshold never reach users who do not already have them.
func (s *ContentStore) GetCandidatePool(
	ctx context.Context,
	userID uuid.UUID,
	level domain.Level,
	limit int,
) ([]*domain.ContentItem, error) {
	query := `
		SELECT ` + contentColumns + `
		FROM content_pool c
		WHERE c.level = $2
		  AND c.downvotes < $3
		  AND NOT EXISTS (
			SELECT 1 FROM assignments a
			WHERE a.user_id = $1 AND a.content_id = c.id
		  )
		ORDER BY c.usage_count ASC, c.created_at DESC
		LIMIT $4`

	rows, err := s.db.QueryContext(ctx, query, userID, string(level), domain.DownvoteThreshold, limit)
	if err != nil {
		return nil, store.NewStoreError("content", "candidate_pool", "query failed", MapError(err))
	}
	defer func() { _ = rows.Close() }()

	return scanContentRows(rows)
}

// IncrementUsage implements store.ContentStore.IncrementUsage
func (s *ContentStore) IncrementUsage(ctx context.Context, contentID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE content_pool SET usage_count = usage_count + 1 WHERE id = $1`, contentID)
	if err != nil {
		return store.NewStoreError("content", "increment_usage", "update failed", MapError(err))
	}

	return requireRow(result, store.ErrContentNotFound)
}

// IncrementDownvote implements store.ContentStore.IncrementDownvote.
// Increment and cap happen in one statement, so concurrent downvotes from
// different users cannot lose updates.
func (s *ContentStore) IncrementDownvote(ctx context.Context, contentID string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE content_pool SET downvotes = LEAST(downvotes + 1, $2) WHERE id = $1`,
		contentID, domain.DownvoteCeiling)
	if err != nil {
		return store.NewStoreError("content", "increment_downvote", "update failed", MapError(err))
	}

	return requireRow(result, store.ErrContentNotFound)
}

// requireRow converts a zero-rows-affected result into notFound.
func requireRow(result sql.Result, notFound error) error {
	n, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func scanContentRows(rows *sql.Rows) ([]*domain.ContentItem, error) {
	var items []*domain.ContentItem
	for rows.Next() {
		item, err := scanContentItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return items, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanContentItem(row rowScanner) (*domain.ContentItem, error) {
	var (
		item                                        domain.ContentItem
		level, generatedBy                          string
		jobRoles, interests, grammarPatterns, ctxts []byte
	)

	err := row.Scan(
		&item.ID, &item.SourceText, &item.TargetText, &item.Context, &item.Grammar, &level,
		&jobRoles, &interests, &grammarPatterns, &ctxts,
		&generatedBy, &item.CreatedAt, &item.UsageCount, &item.Downvotes,
	)
	if err != nil {
		return nil, MapError(err)
	}

	item.Level = domain.Level(level)
	item.GeneratedBy = domain.ContentOrigin(generatedBy)

	for _, col := range []struct {
		raw  []byte
		dest *[]string
	}{
		{jobRoles, &item.JobRoles},
		{interests, &item.Interests},
		{grammarPatterns, &item.GrammarPatterns},
		{ctxts, &item.Contexts},
	} {
		if len(col.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(col.raw, col.dest); err != nil {
			return nil, fmt.Errorf("%w: malformed tag column: %v", store.ErrInvalidEntity, err)
		}
	}

	// Reject malformed rows at the boundary instead of defaulting fields.
	if err := item.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	return &item, nil
}
