// Package session models the drill-session flow as a pure finite-state
// machine. The machine owns the queue, cursor, and reveal flag; rendering
// layers observe it and feed it transitions. Persistence happens through
// an injected saver so the machine itself never touches storage.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/renshuapp/renshu-api/internal/domain"
)

// State identifies one node of the session flow.
type State string

const (
	// StateDashboard is the resting state between sessions.
	StateDashboard State = "DASHBOARD"
	// StateLoading covers queue composition; it always resolves to
	// either StateDrill or StateDashboard.
	StateLoading State = "LOADING"
	// StateDrill is the active card loop.
	StateDrill State = "DRILL"
	// StateComplete is reached after the last card is rated.
	StateComplete State = "COMPLETE"
)

var (
	// ErrInvalidTransition is returned when an event is not legal in
	// the current state.
	ErrInvalidTransition = errors.New("invalid session transition")

	// ErrNoCurrentEntry is returned when the cursor has nothing to
	// point at.
	ErrNoCurrentEntry = errors.New("no current queue entry")
)

// RatingSaver persists one rating. Rate calls it before advancing and
// refuses to advance if it fails, so a dropped write can never silently
// skip a card.
type RatingSaver func(ctx context.Context, contentID string, rating domain.Rating) error

// Machine is the session state machine. It is not safe for concurrent
// use; each session runs on a single goroutine.
type Machine struct {
	state    State
	queue    []domain.SessionQueueEntry
	cursor   int
	revealed bool
	save     RatingSaver
}

// NewMachine returns a machine in StateDashboard.
func NewMachine(save RatingSaver) *Machine {
	if save == nil {
		panic("save cannot be nil")
	}
	return &Machine{state: StateDashboard, save: save}
}

// State returns the current state.
func (m *Machine) State() State {
	return m.state
}

// Revealed reports whether the current card's answer side is showing.
func (m *Machine) Revealed() bool {
	return m.revealed
}

// Progress returns the number of rated cards and the queue length.
func (m *Machine) Progress() (done, total int) {
	return m.cursor, len(m.queue)
}

// Current returns the entry under the cursor. Only valid in StateDrill.
func (m *Machine) Current() (domain.SessionQueueEntry, error) {
	if m.state != StateDrill || m.cursor >= len(m.queue) {
		return domain.SessionQueueEntry{}, ErrNoCurrentEntry
	}
	return m.queue[m.cursor], nil
}

// Start enters the drill loop directly with an already-composed queue.
// An empty queue is a no-op and the machine stays on the dashboard.
func (m *Machine) Start(queue []domain.SessionQueueEntry) error {
	if m.state != StateDashboard {
		return fmt.Errorf("%w: start from %s", ErrInvalidTransition, m.state)
	}
	if len(queue) == 0 {
		return nil
	}
	m.enterDrill(queue)
	return nil
}

// BeginComposition marks the queue as being built.
func (m *Machine) BeginComposition() error {
	if m.state != StateDashboard {
		return fmt.Errorf("%w: begin composition from %s", ErrInvalidTransition, m.state)
	}
	m.state = StateLoading
	return nil
}

// Resolve finishes composition. A failed build or an empty queue returns
// the machine to the dashboard with everything cleared; a non-empty
// queue starts the drill. Loading never persists past this call.
func (m *Machine) Resolve(queue []domain.SessionQueueEntry, buildErr error) error {
	if m.state != StateLoading {
		return fmt.Errorf("%w: resolve from %s", ErrInvalidTransition, m.state)
	}
	if buildErr != nil || len(queue) == 0 {
		m.reset()
		return nil
	}
	m.enterDrill(queue)
	return nil
}

// Reveal shows the answer side of the current card.
func (m *Machine) Reveal() error {
	if m.state != StateDrill {
		return fmt.Errorf("%w: reveal from %s", ErrInvalidTransition, m.state)
	}
	m.revealed = true
	return nil
}

// Rate persists the rating for the current card and advances the cursor,
// completing the session after the last card. If the save fails the
// cursor does not move and the caller may retry.
func (m *Machine) Rate(ctx context.Context, rating domain.Rating) error {
	if m.state != StateDrill {
		return fmt.Errorf("%w: rate from %s", ErrInvalidTransition, m.state)
	}

	entry, err := m.Current()
	if err != nil {
		return err
	}

	if err := m.save(ctx, entry.Content.ID, rating); err != nil {
		return fmt.Errorf("saving rating for %s: %w", entry.Content.ID, err)
	}

	m.cursor++
	m.revealed = false
	if m.cursor == len(m.queue) {
		m.state = StateComplete
	}
	return nil
}

// ReturnToDashboard leaves the drill loop or the completion screen and
// clears all session state.
func (m *Machine) ReturnToDashboard() error {
	if m.state != StateDrill && m.state != StateComplete {
		return fmt.Errorf("%w: return to dashboard from %s", ErrInvalidTransition, m.state)
	}
	m.reset()
	return nil
}

func (m *Machine) enterDrill(queue []domain.SessionQueueEntry) {
	m.state = StateDrill
	m.queue = queue
	m.cursor = 0
	m.revealed = false
}

func (m *Machine) reset() {
	m.state = StateDashboard
	m.queue = nil
	m.cursor = 0
	m.revealed = false
}
