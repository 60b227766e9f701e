package speech

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"unicode"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Synthesizer turns text into WAV audio and lists the voices it offers.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
	ListVoices(ctx context.Context) ([]domain.VoiceCandidate, error)
}

// AudioPlayer plays WAV audio synchronously. Stop interrupts whatever is
// playing; a cancelled ctx must end Play promptly.
type AudioPlayer interface {
	Play(ctx context.Context, wav []byte) error
	Stop()
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the approximate max character count per TTS chunk.
// Longer text is split at sentence boundaries and the chunks are
// synthesized in parallel.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) {
		m.chunkSize = n
	}
}

// WithCache sets the audio cache. Without one every utterance is
// synthesized afresh.
func WithCache(c *AudioCache) MouthOption {
	return func(m *Mouth) {
		m.cache = c
	}
}

// Mouth owns the single active utterance. Speak replaces whatever is
// playing; a completion only clears the active utterance if it is still
// the one that finished.
type Mouth struct {
	tts    Synthesizer
	player AudioPlayer
	log    *logger.Logger
	cache  *AudioCache

	chunkSize int

	mu     sync.Mutex
	gen    uint64
	active *domain.ActiveUtterance
	cancel context.CancelFunc
	voices []domain.VoiceCandidate
}

// Compile-time interface check.
var _ domain.Speaker = (*Mouth)(nil)

// NewMouth creates the speech controller.
func NewMouth(tts Synthesizer, player AudioPlayer, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		chunkSize: 200,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Speak stops the current utterance and starts a new one. It returns as
// soon as the utterance is registered; synthesis and playback run in the
// background under ctx.
func (m *Mouth) Speak(ctx context.Context, text string, voice *domain.VoiceCandidate, rate float64) error {
	text = cleanForSpeech(text)

	m.mu.Lock()
	m.stopLocked()
	if text == "" {
		m.mu.Unlock()
		return nil
	}

	req := requestFor(text, voice, rate)
	uctx, cancel := context.WithCancel(ctx)
	m.gen++
	u := domain.ActiveUtterance{ID: m.gen, Text: text, Voice: voice, Lang: req.Lang, Rate: req.Rate}
	m.active = &u
	m.cancel = cancel
	m.mu.Unlock()

	m.log.Debug("mouth: utterance %d (lang=%s rate=%.2f): %s", u.ID, u.Lang, u.Rate, truncate(text, 60))
	go m.run(uctx, u.ID, req)
	return nil
}

// Stop cancels the active utterance. Calling it while idle does nothing.
func (m *Mouth) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopLocked()
}

// stopLocked cancels and silences the active utterance. m.mu must be held.
func (m *Mouth) stopLocked() {
	if m.active == nil {
		return
	}
	m.log.Debug("mouth: stopping utterance %d", m.active.ID)
	m.active = nil
	m.cancel()
	m.cancel = nil
	m.player.Stop()
}

// Active returns the utterance currently owning the output.
func (m *Mouth) Active() (domain.ActiveUtterance, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return domain.ActiveUtterance{}, false
	}
	return *m.active, true
}

// IsSpeaking reports whether an utterance is active.
func (m *Mouth) IsSpeaking() bool {
	_, ok := m.Active()
	return ok
}

// Voices returns the last fetched voice list. It is empty until
// RefreshVoices has succeeded once.
func (m *Mouth) Voices() []domain.VoiceCandidate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.VoiceCandidate(nil), m.voices...)
}

// RefreshVoices fetches the voice list from the synthesizer.
func (m *Mouth) RefreshVoices(ctx context.Context) error {
	vs, err := m.tts.ListVoices(ctx)
	if err != nil {
		m.log.Warn("mouth: voice list unavailable: %v", err)
		return err
	}
	m.mu.Lock()
	m.voices = vs
	m.mu.Unlock()
	m.log.Info("mouth: %d voices available", len(vs))
	return nil
}

// Cache returns the audio cache, nil when caching is off.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// ── Playback ─────────────────────────────────────────────────────

func (m *Mouth) run(ctx context.Context, id uint64, req SynthesisRequest) {
	defer m.finish(id)

	chunks := m.splitChunks(req.Text)
	if len(chunks) <= 1 {
		audio, err := m.synthesize(ctx, req)
		if err != nil {
			m.logFailure(ctx, "synthesis", err)
			return
		}
		if err := m.player.Play(ctx, audio); err != nil {
			m.logFailure(ctx, "playback", err)
		}
		return
	}

	m.log.Debug("mouth: split into %d chunks for parallel synthesis", len(chunks))

	type result struct {
		idx   int
		audio []byte
		err   error
	}
	results := make(chan result, len(chunks))
	for i, chunk := range chunks {
		go func(idx int, text string) {
			r := req
			r.Text = text
			audio, err := m.synthesize(ctx, r)
			results <- result{idx: idx, audio: audio, err: err}
		}(i, chunk)
	}

	slots := make([][]byte, len(chunks))
	for range chunks {
		r := <-results
		if r.err != nil {
			m.logFailure(ctx, "chunk synthesis", r.err)
			continue
		}
		slots[r.idx] = r.audio
	}

	for i, audio := range slots {
		if ctx.Err() != nil {
			return
		}
		if audio == nil {
			m.log.Debug("mouth: skipping chunk %d (synthesis failed)", i)
			continue
		}
		if err := m.player.Play(ctx, audio); err != nil {
			m.logFailure(ctx, "chunk playback", err)
		}
	}
}

// finish clears the active utterance if id still owns it. Completions of
// superseded utterances are dropped.
func (m *Mouth) finish(id uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil || m.active.ID != id {
		m.log.Debug("mouth: stale completion of utterance %d ignored", id)
		return
	}
	m.active = nil
	m.cancel()
	m.cancel = nil
	m.log.Debug("mouth: utterance %d finished", id)
}

func (m *Mouth) logFailure(ctx context.Context, what string, err error) {
	if ctx.Err() != nil {
		return
	}
	m.log.Error("mouth: %s failed: %v", what, err)
}

func (m *Mouth) synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	if m.cache != nil {
		if audio, ok := m.cache.Get(req); ok {
			return audio, nil
		}
	}
	audio, err := m.tts.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}
	if m.cache != nil {
		m.cache.Put(req, audio)
	}
	return audio, nil
}

// ── Text preparation ─────────────────────────────────────────────

var (
	ansiCodes     = regexp.MustCompile(`\x1b\[[0-9;]*m`)
	markdownMarks = regexp.MustCompile("[*_`#>]+")
	mdLinks       = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
)

// cleanForSpeech strips terminal and markdown formatting that should
// not be read aloud.
func cleanForSpeech(msg string) string {
	s := ansiCodes.ReplaceAllString(msg, "")
	s = mdLinks.ReplaceAllString(s, "$1")
	s = markdownMarks.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// splitChunks breaks text into sentence-boundary chunks of roughly
// m.chunkSize bytes.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}

	var chunks []string
	var current strings.Builder
	for _, s := range splitSentences(text) {
		if current.Len() > 0 && current.Len()+len(s) > m.chunkSize {
			chunks = append(chunks, strings.TrimSpace(current.String()))
			current.Reset()
		}
		current.WriteString(s)
	}
	if current.Len() > 0 {
		chunks = append(chunks, strings.TrimSpace(current.String()))
	}

	out := chunks[:0]
	for _, c := range chunks {
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// splitSentences splits text after . ! ? and the whitespace following
// them.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		current.WriteRune(runes[i])
		if isSentenceEnd(runes[i]) {
			for i+1 < len(runes) && unicode.IsSpace(runes[i+1]) {
				i++
				current.WriteRune(runes[i])
			}
			sentences = append(sentences, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		sentences = append(sentences, current.String())
	}
	return sentences
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?' || r == '…'
}

// truncate shortens a string for logging without splitting a rune.
func truncate(s string, maxRunes int) string {
	r := []rune(s)
	if len(r) <= maxRunes {
		return s
	}
	return string(r[:maxRunes-3]) + "..."
}
