package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// ErrSessionActive is returned when Recognize is called while another
// session is still recording.
var ErrSessionActive = errors.New("speech: recognition session already running")

// envAnnotation matches whisper environmental annotations like
// "(keyboard clicking)", "[laughter]", "(speaking French)", etc.
var envAnnotation = regexp.MustCompile(`[\(\[][\p{L}][\p{L}\s]*[\)\]]`)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithMaxDuration caps how long one session records before it stops on
// its own.
func WithMaxDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.maxDuration = d }
}

// WithTranscribeTimeout bounds the wait for whisper after recording.
func WithTranscribeTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.transcribeTimeout = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithLanguage sets the language tag sessions are bound to.
func WithLanguage(tag string) EarOption {
	return func(e *Ear) { e.lang = tag }
}

// Ear is push-to-talk speech-to-text on a local Whisper model. One
// Recognize call is one session: it records until Stop, ctx
// cancellation or the max duration, then returns the cleaned transcript.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	lang       string
	log        *logger.Logger

	maxDuration       time.Duration
	transcribeTimeout time.Duration

	available bool

	mu   sync.Mutex
	stop chan struct{} // non-nil while a session records
}

// Compile-time interface check.
var _ domain.Recognizer = (*Ear)(nil)

// NewEar creates a recognizer. A missing whisper binary or model makes
// every session fail with domain.ErrUnavailable.
func NewEar(whisperBin, modelPath string, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:        whisperBin,
		modelPath:         modelPath,
		tempDir:           ".smarthub-stt",
		lang:              domain.FallbackLang,
		log:               log,
		maxDuration:       15 * time.Second,
		transcribeTimeout: 30 * time.Second,
		available:         true,
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Warn("ear: whisper binary %q not found: %v", e.whisperBin, err)
		e.available = false
	}
	if _, err := os.Stat(e.modelPath); err != nil {
		log.Warn("ear: whisper model %q not readable: %v", e.modelPath, err)
		e.available = false
	}
	return e
}

// Available reports whether sessions can run at all.
func (e *Ear) Available() bool { return e.available }

// Recognize records one utterance and returns its transcript. An empty
// string means nothing intelligible was heard.
func (e *Ear) Recognize(ctx context.Context) (string, error) {
	if !e.available {
		return "", domain.ErrUnavailable
	}

	e.mu.Lock()
	if e.stop != nil {
		e.mu.Unlock()
		return "", ErrSessionActive
	}
	stop := make(chan struct{})
	e.stop = stop
	e.mu.Unlock()
	defer e.endSession(stop)

	results := make(chan string, 1)
	callback := func(text string) {
		select {
		case results <- text:
		default:
		}
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(
		e.whisperBin,
		e.modelPath,
		e.tempDir,
		"wav",
		callback,
		verbose,
	)
	if err != nil {
		return "", fmt.Errorf("ear: transcriber init: %w", err)
	}
	if err := t.Start(); err != nil {
		return "", fmt.Errorf("ear: recording start: %w", err)
	}
	e.log.Info("ear: listening (lang=%s, max=%s)", e.lang, e.maxDuration)

	select {
	case <-stop:
	case <-ctx.Done():
	case <-time.After(e.maxDuration):
		e.log.Debug("ear: max duration reached")
	}
	t.Stop()

	select {
	case raw := <-results:
		text := cleanTranscription(raw)
		e.log.Info("ear: heard %q", text)
		return text, nil
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(e.transcribeTimeout):
		return "", fmt.Errorf("ear: transcription timed out after %s", e.transcribeTimeout)
	}
}

// Stop ends the running session early; its Recognize call then returns
// what was heard so far. No-op when idle.
func (e *Ear) Stop() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop != nil {
		close(e.stop)
		e.stop = nil
	}
}

func (e *Ear) endSession(stop chan struct{}) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.stop == stop {
		e.stop = nil
	}
}

// ── Transcription cleanup ────────────────────────────────────────

// junkPatterns are whisper artifacts stripped from anywhere in the text.
var junkPatterns = []string{
	"[BLANK_AUDIO]",
	"[BLANK AUDIO]",
	"(silence)",
	"[silence]",
	"(no speech)",
	"[no speech]",
	"[Music]",
	"(music)",
	"(inaudible)",
	"(unintelligible)",
	"(background noise)",
}

// hallucinations are whole transcripts whisper produces from silence.
var hallucinations = []string{
	"...",
	"you",
	"thank you.",
	"thanks for watching!",
	"thank you for watching.",
	"продолжение следует...",
	"субтитры сделал dimatorzok",
	"редактор субтитров а.синецкая корректор а.егорова",
}

// cleanTranscription normalizes whitespace, strips whisper artifacts and
// timestamp prefixes, and drops known silence hallucinations.
func cleanTranscription(s string) string {
	for _, j := range junkPatterns {
		s = strings.ReplaceAll(s, j, "")
		s = strings.ReplaceAll(s, strings.ToLower(j), "")
		s = strings.ReplaceAll(s, strings.ToUpper(j), "")
	}

	// "[00:00:00.000 --> 00:00:05.000]" prefixes.
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "[") {
		if idx := strings.Index(s, "]"); idx != -1 && idx < 40 && strings.Contains(s[:idx], "-->") {
			s = s[idx+1:]
		}
	}

	s = envAnnotation.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), " ")

	lower := strings.ToLower(s)
	for _, h := range hallucinations {
		if h == lower {
			return ""
		}
	}
	return s
}
