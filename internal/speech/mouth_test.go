package speech

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// ── fakes ────────────────────────────────────────────────────────

type fakeSynth struct {
	mu     sync.Mutex
	reqs   []SynthesisRequest
	voices []domain.VoiceCandidate
	err    error
}

func (s *fakeSynth) Synthesize(_ context.Context, req SynthesisRequest) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	return []byte(req.Text), nil
}

func (s *fakeSynth) ListVoices(context.Context) ([]domain.VoiceCandidate, error) {
	return s.voices, s.err
}

func (s *fakeSynth) requests() []SynthesisRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]SynthesisRequest(nil), s.reqs...)
}

// fakePlayer blocks in Play until released or cancelled.
type fakePlayer struct {
	started chan string
	release chan struct{}

	mu    sync.Mutex
	stops int
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{started: make(chan string, 16), release: make(chan struct{})}
}

func (p *fakePlayer) Play(ctx context.Context, wav []byte) error {
	p.started <- string(wav)
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.release:
		return nil
	}
}

func (p *fakePlayer) Stop() {
	p.mu.Lock()
	p.stops++
	p.mu.Unlock()
}

func (p *fakePlayer) stopCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stops
}

func awaitStart(t *testing.T, p *fakePlayer) string {
	t.Helper()
	select {
	case s := <-p.started:
		return s
	case <-time.After(2 * time.Second):
		t.Fatal("playback never started")
		return ""
	}
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	require.Eventually(t, cond, 2*time.Second, time.Millisecond)
}

// ── tests ────────────────────────────────────────────────────────

func TestSpeakSupersedesActiveUtterance(t *testing.T) {
	player := newFakePlayer()
	m := NewMouth(&fakeSynth{}, player, logger.Nop())
	ctx := context.Background()

	require.NoError(t, m.Speak(ctx, "first", nil, 1))
	assert.Equal(t, "first", awaitStart(t, player))

	require.NoError(t, m.Speak(ctx, "second", nil, 1))
	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "second", active.Text)
	assert.Equal(t, uint64(2), active.ID)
	assert.Equal(t, 1, player.stopCount(), "speak must stop the previous utterance")

	assert.Equal(t, "second", awaitStart(t, player))

	// The first utterance's completion has run by now; it must not have
	// cleared the newer one.
	active, ok = m.Active()
	require.True(t, ok)
	assert.Equal(t, uint64(2), active.ID)

	player.release <- struct{}{}
	eventually(t, func() bool { return !m.IsSpeaking() })
}

// livePlayer counts playbacks that have started and not yet returned.
// Each one holds the output until its context is cancelled.
type livePlayer struct {
	mu   sync.Mutex
	live int
}

func (p *livePlayer) Play(ctx context.Context, _ []byte) error {
	p.mu.Lock()
	p.live++
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.live--
		p.mu.Unlock()
	}()
	<-ctx.Done()
	return ctx.Err()
}

func (p *livePlayer) Stop() {}

func (p *livePlayer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

func TestConcurrentSpeakLeavesOneUtterance(t *testing.T) {
	player := &livePlayer{}
	m := NewMouth(&fakeSynth{}, player, logger.Nop())
	ctx := context.Background()

	require.NoError(t, m.Speak(ctx, "already playing", nil, 1))
	eventually(t, func() bool { return player.count() == 1 })

	for i := 0; i < 50; i++ {
		var wg sync.WaitGroup
		for _, text := range []string{"auto reply", "speak last"} {
			wg.Add(1)
			go func(text string) {
				defer wg.Done()
				assert.NoError(t, m.Speak(ctx, text, nil, 1))
			}(text)
		}
		wg.Wait()

		// A superseded utterance whose context was never cancelled would
		// keep playing forever.
		eventually(t, func() bool { return player.count() == 1 })
		active, ok := m.Active()
		require.True(t, ok)
		assert.Contains(t, []string{"auto reply", "speak last"}, active.Text)
	}

	m.Stop()
	eventually(t, func() bool { return player.count() == 0 })
	assert.False(t, m.IsSpeaking())
}

func TestStaleCompletionIsIgnored(t *testing.T) {
	player := newFakePlayer()
	m := NewMouth(&fakeSynth{}, player, logger.Nop())

	require.NoError(t, m.Speak(context.Background(), "one", nil, 1))
	awaitStart(t, player)
	require.NoError(t, m.Speak(context.Background(), "two", nil, 1))
	awaitStart(t, player)

	m.finish(1)
	active, ok := m.Active()
	require.True(t, ok)
	assert.Equal(t, "two", active.Text)

	m.Stop()
}

func TestStopIsIdempotent(t *testing.T) {
	player := newFakePlayer()
	m := NewMouth(&fakeSynth{}, player, logger.Nop())

	m.Stop()
	assert.Equal(t, 0, player.stopCount(), "stop while idle must not touch the player")

	require.NoError(t, m.Speak(context.Background(), "hello", nil, 1))
	awaitStart(t, player)

	m.Stop()
	m.Stop()
	assert.Equal(t, 1, player.stopCount())
	assert.False(t, m.IsSpeaking())
}

func TestSpeakRequestVoiceAndRate(t *testing.T) {
	svetlana := &domain.VoiceCandidate{ID: "ru-RU-SvetlanaNeural", Name: "Svetlana", Lang: "ru-RU"}
	jenny := &domain.VoiceCandidate{ID: "en-US-JennyNeural", Name: "Jenny", Lang: "en-US"}

	tests := []struct {
		name      string
		voice     *domain.VoiceCandidate
		rate      float64
		wantVoice string
		wantLang  string
		wantRate  float64
	}{
		{"no voice uses fallback language", nil, 1.25, "", domain.FallbackLang, 1.25},
		{"chosen voice", svetlana, 0.8, "ru-RU-SvetlanaNeural", "ru-RU", 0.8},
		{"voice language wins", jenny, 1, "en-US-JennyNeural", "en-US", 1},
		{"non-positive rate", nil, 0, "", domain.FallbackLang, domain.DefaultSpeechRate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			synth := &fakeSynth{}
			player := newFakePlayer()
			m := NewMouth(synth, player, logger.Nop())

			require.NoError(t, m.Speak(context.Background(), "текст", tt.voice, tt.rate))
			awaitStart(t, player)
			m.Stop()

			reqs := synth.requests()
			require.Len(t, reqs, 1)
			assert.Equal(t, tt.wantVoice, reqs[0].Voice)
			assert.Equal(t, tt.wantLang, reqs[0].Lang)
			assert.Equal(t, tt.wantRate, reqs[0].Rate)
		})
	}
}

func TestSpeakEmptyTextOnlyStops(t *testing.T) {
	synth := &fakeSynth{}
	player := newFakePlayer()
	m := NewMouth(synth, player, logger.Nop())

	require.NoError(t, m.Speak(context.Background(), "playing", nil, 1))
	awaitStart(t, player)

	require.NoError(t, m.Speak(context.Background(), "  **  ", nil, 1))
	assert.False(t, m.IsSpeaking())
	assert.Len(t, synth.requests(), 1)
}

func TestSpeakUsesCache(t *testing.T) {
	synth := &fakeSynth{}
	player := newFakePlayer()
	cache := NewAudioCache("", false, logger.Nop())
	m := NewMouth(synth, player, logger.Nop(), WithCache(cache))

	for i := 0; i < 2; i++ {
		require.NoError(t, m.Speak(context.Background(), "повтор", nil, 1))
		awaitStart(t, player)
		player.release <- struct{}{}
		eventually(t, func() bool { return !m.IsSpeaking() })
	}

	assert.Len(t, synth.requests(), 1)
	hits, misses := cache.Stats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(1), misses)
}

func TestLongTextIsChunkedAndPlayedInOrder(t *testing.T) {
	synth := &fakeSynth{}
	player := newFakePlayer()
	m := NewMouth(synth, player, logger.Nop(), WithChunkSize(10))

	require.NoError(t, m.Speak(context.Background(), "One two. Three four! Five six?", nil, 1))
	for _, want := range []string{"One two.", "Three four!", "Five six?"} {
		assert.Equal(t, want, awaitStart(t, player))
		player.release <- struct{}{}
	}
	eventually(t, func() bool { return !m.IsSpeaking() })
	assert.Len(t, synth.requests(), 3)
}

func TestRefreshVoices(t *testing.T) {
	voices := []domain.VoiceCandidate{{ID: "ru-RU-DmitryNeural", Name: "Dmitry", Lang: "ru-RU"}}
	synth := &fakeSynth{voices: voices}
	m := NewMouth(synth, newFakePlayer(), logger.Nop())

	assert.Empty(t, m.Voices(), "list is empty before the first refresh")
	require.NoError(t, m.RefreshVoices(context.Background()))
	assert.Equal(t, voices, m.Voices())

	synth.err = errors.New("offline")
	assert.Error(t, m.RefreshVoices(context.Background()))
	assert.Equal(t, voices, m.Voices(), "a failed refresh keeps the previous list")
}

func TestCleanForSpeech(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain text", "plain text"},
		{"**bold** and _it_", "bold and it"},
		{"# Title\n\n- item", "Title - item"},
		{"see [docs](https://example.com)", "see docs"},
		{"\x1b[31mred\x1b[0m", "red"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, cleanForSpeech(tt.in), "input %q", tt.in)
	}
}

func TestSplitChunks(t *testing.T) {
	m := NewMouth(&fakeSynth{}, newFakePlayer(), logger.Nop(), WithChunkSize(20))

	assert.Equal(t, []string{"short"}, m.splitChunks("short"))

	text := "Первое предложение. Второе! Третье?"
	chunks := m.splitChunks(text)
	require.Greater(t, len(chunks), 1)
	assert.Equal(t, strings.Join(strings.Fields(text), " "), strings.Join(chunks, " "))
}
