package api

import (
	"time"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// Common request/response structures

// ProfileRequest carries the learner profile fields shared by the
// generation and session endpoints.
type ProfileRequest struct {
	Job       string `json:"job"       validate:"required,max=100"`
	Interests string `json:"interests" validate:"required,max=100"`
}

// DrillResponse is the wire shape of one content item.
type DrillResponse struct {
	ID              string    `json:"id"`
	SourceText      string    `json:"source_text"`
	TargetText      string    `json:"target_text"`
	Context         string    `json:"context"`
	Grammar         string    `json:"grammar"`
	Level           string    `json:"level"`
	JobRoles        []string  `json:"job_roles"`
	Interests       []string  `json:"interests"`
	GrammarPatterns []string  `json:"grammar_patterns"`
	Contexts        []string  `json:"contexts"`
	GeneratedBy     string    `json:"generated_by"`
	CreatedAt       time.Time `json:"created_at"`
	UsageCount      int       `json:"usage_count"`
	Downvotes       int       `json:"downvotes"`
}

// AssignmentResponse is the wire shape of one user/content assignment.
type AssignmentResponse struct {
	ContentID    string     `json:"content_id"`
	NextReviewAt time.Time  `json:"next_review_at"`
	LastReviewAt *time.Time `json:"last_review_at,omitempty"`
	LastRating   string     `json:"last_rating,omitempty"`
	ReviewCount  int        `json:"review_count"`
}

// QueueEntryResponse is one slot of a composed session queue.
type QueueEntryResponse struct {
	Kind       string              `json:"kind"`
	Content    DrillResponse       `json:"content"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
}

func drillToResponse(item *domain.ContentItem) DrillResponse {
	return DrillResponse{
		ID:              item.ID,
		SourceText:      item.SourceText,
		TargetText:      item.TargetText,
		Context:         item.Context,
		Grammar:         item.Grammar,
		Level:           string(item.Level),
		JobRoles:        emptyIfNil(item.JobRoles),
		Interests:       emptyIfNil(item.Interests),
		GrammarPatterns: emptyIfNil(item.GrammarPatterns),
		Contexts:        emptyIfNil(item.Contexts),
		GeneratedBy:     string(item.GeneratedBy),
		CreatedAt:       item.CreatedAt,
		UsageCount:      item.UsageCount,
		Downvotes:       item.Downvotes,
	}
}

func assignmentToResponse(a *domain.Assignment) *AssignmentResponse {
	if a == nil {
		return nil
	}
	resp := &AssignmentResponse{
		ContentID:    a.ContentID,
		NextReviewAt: a.NextReviewAt,
		LastRating:   string(a.LastRating),
		ReviewCount:  a.ReviewCount,
	}
	if !a.LastReviewAt.IsZero() {
		last := a.LastReviewAt
		resp.LastReviewAt = &last
	}
	return resp
}

func queueToResponse(queue []domain.SessionQueueEntry) []QueueEntryResponse {
	out := make([]QueueEntryResponse, 0, len(queue))
	for _, entry := range queue {
		out = append(out, QueueEntryResponse{
			Kind:       string(entry.Kind),
			Content:    drillToResponse(entry.Content),
			Assignment: assignmentToResponse(entry.Assignment),
		})
	}
	return out
}

// Tag arrays serialize as [] rather than null so clients can iterate
// without nil checks.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
