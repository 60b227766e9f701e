// Package transcript holds the append-only chat log shown to the user.
// Entries are never removed or reordered; an assistant entry is mutated
// in place through its Bubble until it settles (complete or failed).
package transcript

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hammamikhairi/smarthub/internal/domain"
)

// Role tells who authored an entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Entry is a snapshot of one transcript line.
type Entry struct {
	ID        string
	Role      Role
	Content   string
	CreatedAt time.Time
	Typing    bool // waiting for the reply
	Speaking  bool // avatar "speaking" marker
	Failed    bool
	Complete  bool
}

// Settled reports whether the entry will not change any more.
func (e Entry) Settled() bool { return e.Complete || e.Failed }

// Transcript is safe for concurrent use. Every mutation signals the
// change channel; bursts of changes coalesce into one signal.
type Transcript struct {
	mu      sync.Mutex
	entries []Entry
	changed chan struct{}
}

// Compile-time interface check.
var _ domain.Transcript = (*Transcript)(nil)

// New creates an empty transcript.
func New() *Transcript {
	return &Transcript{changed: make(chan struct{}, 1)}
}

// AppendUser adds a settled user entry and returns its ID.
func (t *Transcript) AppendUser(text string) string {
	id := uuid.NewString()
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		ID:        id,
		Role:      RoleUser,
		Content:   text,
		CreatedAt: time.Now(),
		Complete:  true,
	})
	t.mu.Unlock()
	t.signal()
	return id
}

// AppendReply adds an empty assistant entry in the typing state.
func (t *Transcript) AppendReply() domain.ReplyBubble {
	id := uuid.NewString()
	t.mu.Lock()
	t.entries = append(t.entries, Entry{
		ID:        id,
		Role:      RoleAssistant,
		CreatedAt: time.Now(),
		Typing:    true,
	})
	idx := len(t.entries) - 1
	t.mu.Unlock()
	t.signal()
	return &Bubble{t: t, idx: idx, id: id}
}

// Entries returns a copy of every entry in order.
func (t *Transcript) Entries() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Entry(nil), t.entries...)
}

// Len returns the number of entries.
func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Changes delivers a value after one or more mutations.
func (t *Transcript) Changes() <-chan struct{} { return t.changed }

func (t *Transcript) signal() {
	select {
	case t.changed <- struct{}{}:
	default:
	}
}

func (t *Transcript) update(idx int, fn func(*Entry)) {
	t.mu.Lock()
	fn(&t.entries[idx])
	t.mu.Unlock()
	t.signal()
}

// ── Bubble ───────────────────────────────────────────────────────

// Bubble is the handle on one assistant entry. It is the target of the
// reveal animation.
type Bubble struct {
	t   *Transcript
	idx int
	id  string
}

// Compile-time interface check.
var _ domain.ReplyBubble = (*Bubble)(nil)

// ID returns the entry ID.
func (b *Bubble) ID() string { return b.id }

// SetText replaces the visible content.
func (b *Bubble) SetText(text string) {
	b.t.update(b.idx, func(e *Entry) { e.Content = text })
}

// ClearTyping removes the typing indicator.
func (b *Bubble) ClearTyping() {
	b.t.update(b.idx, func(e *Entry) { e.Typing = false })
}

// SetSpeaking toggles the speaking marker.
func (b *Bubble) SetSpeaking(on bool) {
	b.t.update(b.idx, func(e *Entry) { e.Speaking = on })
}

// Fail replaces the content with message and settles the entry.
func (b *Bubble) Fail(message string) {
	b.t.update(b.idx, func(e *Entry) {
		e.Content = message
		e.Typing = false
		e.Speaking = false
		e.Failed = true
	})
}

// MarkComplete settles the entry with its current content.
func (b *Bubble) MarkComplete() {
	b.t.update(b.idx, func(e *Entry) {
		e.Typing = false
		e.Complete = true
	})
}
