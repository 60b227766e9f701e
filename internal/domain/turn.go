package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// TurnStatus tracks the lifecycle of a single turn.
type TurnStatus int

const (
	TurnPending TurnStatus = iota
	TurnRevealing
	TurnComplete
	TurnFailed
)

// String returns a human-readable turn status.
func (s TurnStatus) String() string {
	switch s {
	case TurnPending:
		return "pending"
	case TurnRevealing:
		return "revealing"
	case TurnComplete:
		return "complete"
	case TurnFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolved reports whether the status is terminal.
func (s TurnStatus) Resolved() bool {
	return s == TurnComplete || s == TurnFailed
}

// Turn is one user submission paired with its eventual (or failed) reply.
// Input is immutable; the reply and status are guarded and move strictly
// forward: Pending -> Revealing -> Complete, or Pending|Revealing -> Failed.
type Turn struct {
	ID          string
	Input       string
	SubmittedAt time.Time

	mu     sync.RWMutex
	status TurnStatus
	reply  string
	err    error
	done   chan struct{}
}

// NewTurn creates a pending turn for the given input.
func NewTurn(input string) *Turn {
	return &Turn{
		ID:          uuid.NewString(),
		Input:       input,
		SubmittedAt: time.Now(),
		status:      TurnPending,
		done:        make(chan struct{}),
	}
}

// Status returns the current status.
func (t *Turn) Status() TurnStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status
}

// Reply returns the reply text, empty until the turn starts revealing.
func (t *Turn) Reply() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.reply
}

// Err returns the failure cause of a failed turn.
func (t *Turn) Err() error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.err
}

// Done is closed once the turn is Complete or Failed.
func (t *Turn) Done() <-chan struct{} { return t.done }

// BeginReveal records the reply and moves Pending -> Revealing.
// Returns false if the turn was not pending.
func (t *Turn) BeginReveal(reply string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TurnPending {
		return false
	}
	t.reply = reply
	t.status = TurnRevealing
	return true
}

// Complete moves Revealing -> Complete.
func (t *Turn) Complete() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status != TurnRevealing {
		return false
	}
	t.status = TurnComplete
	close(t.done)
	return true
}

// Fail moves an unresolved turn to Failed.
func (t *Turn) Fail(err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.status.Resolved() {
		return false
	}
	t.status = TurnFailed
	t.err = err
	close(t.done)
	return true
}
