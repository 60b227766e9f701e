package reveal

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/smarthub/internal/logger"
)

// recorder is a Target that keeps every write.
type recorder struct {
	mu     sync.Mutex
	writes []string
}

func (r *recorder) SetText(text string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, text)
}

func (r *recorder) mark(m string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.writes = append(r.writes, m)
}

func (r *recorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.writes...)
}

// instantClock fires every step immediately and counts them.
type instantClock struct {
	mu    sync.Mutex
	calls int
	last  time.Duration
}

func (c *instantClock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.calls++
	c.last = d
	c.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Now()
	return ch
}

// manualClock fires steps only when told to.
type manualClock struct {
	mu      sync.Mutex
	waiters []chan time.Time
}

func (c *manualClock) After(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	c.mu.Lock()
	c.waiters = append(c.waiters, ch)
	c.mu.Unlock()
	return ch
}

func (c *manualClock) pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.waiters)
}

func (c *manualClock) Fire() {
	c.mu.Lock()
	ws := c.waiters
	c.waiters = nil
	c.mu.Unlock()
	for _, w := range ws {
		w <- time.Now()
	}
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func result(t *testing.T, ch <-chan error) error {
	t.Helper()
	select {
	case err := <-ch:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("reveal did not finish")
		return nil
	}
}

func TestRevealStepsAndMonotonicGrowth(t *testing.T) {
	clock := &instantClock{}
	a := New(logger.Nop(), WithAfter(clock.After))
	target := &recorder{}

	text := "Привет, мир"
	if err := result(t, a.Reveal(context.Background(), target, text, 18*time.Millisecond)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	n := len([]rune(text))
	writes := target.snapshot()
	if len(writes) != n {
		t.Fatalf("expected %d writes, got %d", n, len(writes))
	}
	if clock.calls != n {
		t.Fatalf("expected %d scheduled steps, got %d", n, clock.calls)
	}
	for i := 1; i < len(writes); i++ {
		if len([]rune(writes[i])) <= len([]rune(writes[i-1])) || !strings.HasPrefix(writes[i], writes[i-1]) {
			t.Fatalf("prefix did not grow at step %d: %q -> %q", i, writes[i-1], writes[i])
		}
	}
	if writes[n-1] != text {
		t.Fatalf("final text %q, want %q", writes[n-1], text)
	}
	if a.Active(target) {
		t.Fatal("target still owned after completion")
	}
}

func TestRevealEmptyTextCompletesImmediately(t *testing.T) {
	clock := &instantClock{}
	a := New(logger.Nop(), WithAfter(clock.After))
	target := &recorder{}

	ch := a.Reveal(context.Background(), target, "", 10*time.Millisecond)
	select {
	case err := <-ch:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	default:
		t.Fatal("empty reveal did not complete synchronously")
	}
	if len(target.snapshot()) != 0 || clock.calls != 0 {
		t.Fatalf("empty reveal produced events: writes=%v steps=%d", target.snapshot(), clock.calls)
	}
}

func TestRevealNonPositiveSpeedUsesMinStep(t *testing.T) {
	for _, speed := range []time.Duration{0, -5 * time.Millisecond} {
		clock := &instantClock{}
		a := New(logger.Nop(), WithAfter(clock.After))
		if err := result(t, a.Reveal(context.Background(), &recorder{}, "ab", speed)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if clock.last != MinStep {
			t.Fatalf("speed %s scheduled with %s, want %s", speed, clock.last, MinStep)
		}
	}
}

func TestRevealSupersededNeverWritesAgain(t *testing.T) {
	clock := &manualClock{}
	a := New(logger.Nop(), WithAfter(clock.After))
	target := &recorder{}
	ctx := context.Background()

	first := a.Reveal(ctx, target, "aaaa", time.Millisecond)
	waitFor(t, "first step scheduled", func() bool { return clock.pending() == 1 })
	clock.Fire()
	waitFor(t, "first write", func() bool { return len(target.snapshot()) == 1 })
	waitFor(t, "second step scheduled", func() bool { return clock.pending() == 1 })

	second := a.Reveal(ctx, target, "bb", time.Millisecond)
	if err := result(t, first); !errors.Is(err, ErrSuperseded) {
		t.Fatalf("first reveal: expected ErrSuperseded, got %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		select {
		case err := <-second:
			if err != nil {
				t.Fatalf("second reveal: %v", err)
			}
			got := target.snapshot()
			want := []string{"a", "b", "bb"}
			if fmt.Sprint(got) != fmt.Sprint(want) {
				t.Fatalf("writes = %q, want %q", got, want)
			}
			return
		default:
		}
		if time.Now().After(deadline) {
			t.Fatal("second reveal did not finish")
		}
		clock.Fire()
		time.Sleep(time.Millisecond)
	}
}

func TestRevealSupersessionUnderLoad(t *testing.T) {
	a := New(logger.Nop())
	target := &recorder{}
	ctx := context.Background()

	var chans []<-chan error
	for i := 0; i < 20; i++ {
		text := strings.Repeat(string(rune('a'+i)), 30)
		chans = append(chans, a.Reveal(ctx, target, text, 0))
		time.Sleep(time.Duration(i%3) * time.Millisecond)
	}
	lastText := strings.Repeat("z", 30)
	last := a.Reveal(ctx, target, lastText, 0)
	target.mark("|")

	if err := result(t, last); err != nil {
		t.Fatalf("last reveal: %v", err)
	}
	for i, ch := range chans {
		if err := result(t, ch); err != nil && !errors.Is(err, ErrSuperseded) {
			t.Fatalf("reveal %d: unexpected error %v", i, err)
		}
	}

	writes := target.snapshot()
	seenMark := false
	for _, w := range writes {
		if w == "|" {
			seenMark = true
			continue
		}
		if seenMark && !strings.HasPrefix(lastText, w) {
			t.Fatalf("stale write %q after the last reveal started", w)
		}
	}
	if writes[len(writes)-1] != lastText {
		t.Fatalf("final text %q, want %q", writes[len(writes)-1], lastText)
	}
}

func TestRevealContextCancel(t *testing.T) {
	clock := &manualClock{}
	a := New(logger.Nop(), WithAfter(clock.After))
	target := &recorder{}

	ctx, cancel := context.WithCancel(context.Background())
	ch := a.Reveal(ctx, target, "abc", time.Millisecond)
	waitFor(t, "first step scheduled", func() bool { return clock.pending() == 1 })
	cancel()

	if err := result(t, ch); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(target.snapshot()) != 0 {
		t.Fatalf("cancelled reveal wrote %v", target.snapshot())
	}
	if a.Active(target) {
		t.Fatal("cancelled reveal still owns target")
	}
}
