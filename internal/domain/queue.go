package domain

// QueueEntryKind tags a session queue entry as a due review or a freshly
// generated item.
type QueueEntryKind string

const (
	// EntryReview marks an entry backed by an existing due assignment.
	EntryReview QueueEntryKind = "review"

	// EntryNew marks an entry the learner is seeing for the first time.
	EntryNew QueueEntryKind = "new"
)

// SessionQueueEntry is one slot in a composed session queue. Reviews carry
// the assignment they came from; new items carry only content (their
// assignment was just created with the optimistic first interval).
// Ordering within a queue is significant: reviews precede new items.
type SessionQueueEntry struct {
	Kind       QueueEntryKind `json:"kind"`
	Content    *ContentItem   `json:"content"`
	Assignment *Assignment    `json:"assignment,omitempty"`
}

// DueAssignment pairs an assignment with its content item, as returned by
// the store's batched due-set read.
type DueAssignment struct {
	Assignment *Assignment
	Content    *ContentItem
}
