// Package reveal renders a finished string progressively, one character
// at a time, into a target. A new reveal on a target supersedes the one
// already running there: the old reveal never writes again.
package reveal

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/smarthub/internal/logger"
)

// MinStep is the smallest delay between two reveal steps. Non-positive
// speeds are raised to it.
const MinStep = time.Millisecond

// ErrSuperseded is delivered to a reveal that was replaced by a newer one
// on the same target.
var ErrSuperseded = errors.New("reveal: superseded")

// Target receives the growing prefix. Implementations must be comparable
// (pointer receivers are the norm) since targets key the ownership table.
type Target interface {
	SetText(text string)
}

// Option configures the Animator.
type Option func(*Animator)

// WithAfter replaces time.After as the step scheduler.
func WithAfter(fn func(time.Duration) <-chan time.Time) Option {
	return func(a *Animator) { a.after = fn }
}

// owner is the reveal currently allowed to write into a target.
type owner struct {
	gen  uint64
	stop chan struct{}
}

// Animator schedules reveals. One Animator may drive any number of
// targets; each target has at most one live reveal.
type Animator struct {
	after func(time.Duration) <-chan time.Time
	log   *logger.Logger

	mu     sync.Mutex
	owners map[Target]owner
	gen    uint64
}

// New creates an animator.
func New(log *logger.Logger, opts ...Option) *Animator {
	a := &Animator{
		after:  time.After,
		log:    log,
		owners: make(map[Target]owner),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Reveal writes text into target one rune per step, speed apart: after
// step k the target holds the first k runes. The returned channel gets
// exactly one value: nil on completion, ErrSuperseded if another reveal
// took the target over, or ctx.Err() on cancellation. Empty text completes
// at once without writing.
func (a *Animator) Reveal(ctx context.Context, target Target, text string, speed time.Duration) <-chan error {
	done := make(chan error, 1)
	runes := []rune(text)
	if speed < MinStep {
		speed = MinStep
	}

	a.mu.Lock()
	if prev, ok := a.owners[target]; ok {
		close(prev.stop)
		a.log.Debug("reveal %d superseded by %d", prev.gen, a.gen+1)
	}
	a.gen++
	me := owner{gen: a.gen, stop: make(chan struct{})}
	a.owners[target] = me
	a.mu.Unlock()

	if len(runes) == 0 {
		a.release(target, me.gen)
		done <- nil
		return done
	}

	go a.run(ctx, target, me, runes, speed, done)
	return done
}

func (a *Animator) run(ctx context.Context, target Target, me owner, runes []rune, speed time.Duration, done chan<- error) {
	for k := 1; k <= len(runes); k++ {
		select {
		case <-ctx.Done():
			a.release(target, me.gen)
			done <- ctx.Err()
			return
		case <-me.stop:
			done <- ErrSuperseded
			return
		case <-a.after(speed):
		}

		// Ownership check and write happen under one lock so a newer
		// reveal can never be interleaved with a stale step.
		a.mu.Lock()
		if cur, ok := a.owners[target]; !ok || cur.gen != me.gen {
			a.mu.Unlock()
			done <- ErrSuperseded
			return
		}
		target.SetText(string(runes[:k]))
		a.mu.Unlock()
	}

	a.release(target, me.gen)
	done <- nil
}

// release drops the ownership entry if gen still owns the target.
func (a *Animator) release(target Target, gen uint64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if cur, ok := a.owners[target]; ok && cur.gen == gen {
		delete(a.owners, target)
	}
}

// Active reports whether a reveal currently owns target.
func (a *Animator) Active(target Target) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.owners[target]
	return ok
}
