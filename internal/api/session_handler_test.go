package api

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/renshuapp/renshu-api/internal/api/shared"
	"github.com/renshuapp/renshu-api/internal/domain"
	"github.com/renshuapp/renshu-api/internal/service/session"
)

type stubSessionService struct {
	queue      []domain.SessionQueueEntry
	buildErr   error
	assignment *domain.Assignment
	ratingErr  error
	downvotes  []string
	stats      session.Stats

	gotProfile domain.Profile
	gotTarget  int
	gotRating  domain.Rating
}

func (s *stubSessionService) BuildQueue(
	_ context.Context, _ uuid.UUID, profile domain.Profile, targetCount int,
) ([]domain.SessionQueueEntry, error) {
	s.gotProfile = profile
	s.gotTarget = targetCount
	if s.buildErr != nil {
		return nil, s.buildErr
	}
	return s.queue, nil
}

func (s *stubSessionService) SubmitRating(
	_ context.Context, _ uuid.UUID, _ string, rating domain.Rating,
) (*domain.Assignment, error) {
	s.gotRating = rating
	if s.ratingErr != nil {
		return nil, s.ratingErr
	}
	return s.assignment, nil
}

func (s *stubSessionService) Downvote(_ context.Context, contentID string) error {
	s.downvotes = append(s.downvotes, contentID)
	return nil
}

func (s *stubSessionService) DashboardStats(context.Context, uuid.UUID, time.Time) (session.Stats, error) {
	return s.stats, nil
}

var _ session.Service = (*stubSessionService)(nil)

// sessionRouter wires the handler into a chi router with an
// authenticated user already in context.
func sessionRouter(svc session.Service, userID uuid.UUID) http.Handler {
	h := NewSessionHandler(svc, slog.Default())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
			next.ServeHTTP(w, req.WithContext(ctx))
		})
	})
	r.Post("/api/sessions", h.CreateSession)
	r.Post("/api/assignments/{contentID}/rating", h.SubmitRating)
	r.Post("/api/content/{contentID}/downvote", h.Downvote)
	r.Get("/api/dashboard", h.Dashboard)
	return r
}

func postJSON(t *testing.T, router http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestCreateSession(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	reviewAssignment, err := domain.NewAssignment(userID, "due_00", now.AddDate(0, 0, -3), now)
	require.NoError(t, err)

	svc := &stubSessionService{
		queue: []domain.SessionQueueEntry{
			{
				Kind:       domain.EntryReview,
				Content:    &domain.ContentItem{ID: "due_00", SourceText: "復習", TargetText: "review", Level: domain.LevelIntermediate},
				Assignment: reviewAssignment,
			},
			{
				Kind:    domain.EntryNew,
				Content: &domain.ContentItem{ID: "gen_0", SourceText: "新しい", TargetText: "new", Level: domain.LevelIntermediate},
			},
		},
	}
	router := sessionRouter(svc, userID)

	rec := postJSON(t, router, "/api/sessions", CreateSessionRequest{
		SessionSize: 5,
		Level:       "intermediate",
		Profile:     ProfileRequest{Job: "Engineer", Interests: "Technology"},
	})

	require.Equal(t, http.StatusOK, rec.Code)

	var resp CreateSessionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Queue, 2)
	assert.Equal(t, "review", resp.Queue[0].Kind)
	require.NotNil(t, resp.Queue[0].Assignment)
	assert.Equal(t, "due_00", resp.Queue[0].Assignment.ContentID)
	assert.Equal(t, "new", resp.Queue[1].Kind)
	assert.Nil(t, resp.Queue[1].Assignment)

	assert.Equal(t, 5, svc.gotTarget)
	assert.Equal(t, domain.LevelIntermediate, svc.gotProfile.Level)
}

func TestCreateSessionValidation(t *testing.T) {
	t.Parallel()
	router := sessionRouter(&stubSessionService{}, uuid.New())

	tests := []struct {
		name string
		body CreateSessionRequest
	}{
		{"bad size", CreateSessionRequest{SessionSize: 3, Level: "beginner", Profile: ProfileRequest{Job: "Chef", Interests: "Food"}}},
		{"bad level", CreateSessionRequest{SessionSize: 5, Level: "expert", Profile: ProfileRequest{Job: "Chef", Interests: "Food"}}},
		{"missing profile", CreateSessionRequest{SessionSize: 5, Level: "beginner"}},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			rec := postJSON(t, router, "/api/sessions", tc.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}

func TestCreateSessionServiceErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid profile", session.ErrInvalidProfile, http.StatusBadRequest},
		{"store failure", &session.ServiceError{Operation: "build_queue", Message: "read failed"}, http.StatusInternalServerError},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			router := sessionRouter(&stubSessionService{buildErr: tc.err}, uuid.New())
			rec := postJSON(t, router, "/api/sessions", CreateSessionRequest{
				SessionSize: 5,
				Level:       "beginner",
				Profile:     ProfileRequest{Job: "Chef", Interests: "Food"},
			})
			assert.Equal(t, tc.want, rec.Code)
		})
	}
}

func TestSubmitRating(t *testing.T) {
	t.Parallel()
	userID := uuid.New()
	now := time.Date(2025, 5, 20, 8, 0, 0, 0, time.UTC)

	base, err := domain.NewAssignment(userID, "gen_0", now.AddDate(0, 0, -7), now)
	require.NoError(t, err)
	updated, err := base.WithReview(domain.RatingEasy, now, now.AddDate(0, 0, 7))
	require.NoError(t, err)

	svc := &stubSessionService{assignment: updated}
	router := sessionRouter(svc, userID)

	rec := postJSON(t, router, "/api/assignments/gen_0/rating", SubmitRatingRequest{Rating: "easy"})

	require.Equal(t, http.StatusOK, rec.Code)
	var resp SubmitRatingResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "gen_0", resp.Assignment.ContentID)
	assert.Equal(t, "easy", resp.Assignment.LastRating)
	assert.Equal(t, 1, resp.Assignment.ReviewCount)
	assert.Equal(t, now.AddDate(0, 0, 7), resp.Assignment.NextReviewAt)
	assert.Equal(t, domain.RatingEasy, svc.gotRating)
}

func TestSubmitRatingRejectsUnknownRating(t *testing.T) {
	t.Parallel()
	svc := &stubSessionService{}
	router := sessionRouter(svc, uuid.New())

	rec := postJSON(t, router, "/api/assignments/gen_0/rating", SubmitRatingRequest{Rating: "soso"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, svc.gotRating, "service must not be called with an invalid rating")
}

func TestSubmitRatingNotFound(t *testing.T) {
	t.Parallel()
	router := sessionRouter(&stubSessionService{ratingErr: session.ErrAssignmentNotFound}, uuid.New())

	rec := postJSON(t, router, "/api/assignments/missing/rating", SubmitRatingRequest{Rating: "good"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDownvote(t *testing.T) {
	t.Parallel()
	svc := &stubSessionService{}
	router := sessionRouter(svc, uuid.New())

	rec := postJSON(t, router, "/api/content/gen_0/downvote", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DownvoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, []string{"gen_0"}, svc.downvotes)
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	svc := &stubSessionService{stats: session.Stats{TotalAssignments: 42, DueNow: 7}}
	router := sessionRouter(svc, uuid.New())

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 42, resp.TotalAssignments)
	assert.Equal(t, 7, resp.DueNow)
}

func TestAnonymousRequests(t *testing.T) {
	// Writes without a user are rejected; the dashboard read degrades
	// to empty stats instead.
	t.Parallel()
	h := NewSessionHandler(&stubSessionService{stats: session.Stats{TotalAssignments: 9, DueNow: 3}}, slog.Default())

	r := chi.NewRouter()
	r.Post("/api/sessions", h.CreateSession)
	r.Get("/api/dashboard", h.Dashboard)

	payload, err := json.Marshal(CreateSessionRequest{
		SessionSize: 5,
		Level:       "beginner",
		Profile:     ProfileRequest{Job: "Chef", Interests: "Food"},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/sessions", bytes.NewReader(payload)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dashboard", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp DashboardResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Zero(t, resp.TotalAssignments, "anonymous dashboard reads return empty stats")
	assert.Zero(t, resp.DueNow)
}
