// Package chat implements the message lifecycle: one user submission in,
// one revealed (and optionally spoken) reply out.
package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
	"github.com/hammamikhairi/smarthub/internal/reveal"
	"github.com/hammamikhairi/smarthub/internal/voice"
)

// DefaultRequestTimeout bounds one network call.
const DefaultRequestTimeout = 60 * time.Second

// Option configures the controller.
type Option func(*Controller)

// WithRequestTimeout sets the per-turn network timeout.
func WithRequestTimeout(d time.Duration) Option {
	return func(c *Controller) {
		if d > 0 {
			c.requestTimeout = d
		}
	}
}

// WithSpeaker sets the speech output. Without one, speaking reports the
// capability as unavailable.
func WithSpeaker(s domain.Speaker) Option {
	return func(c *Controller) { c.speaker = s }
}

// WithRecognizer sets the speech input.
func WithRecognizer(r domain.Recognizer) Option {
	return func(c *Controller) { c.recognizer = r }
}

// WithNotifier sets where user-visible notices go.
func WithNotifier(n domain.Notifier) Option {
	return func(c *Controller) { c.notifier = n }
}

// WithInputSink sets the input field recognized speech is written to.
func WithInputSink(s domain.InputSink) Option {
	return func(c *Controller) { c.input = s }
}

// WithLanguage sets the language tag used for voice selection.
func WithLanguage(tag string) Option {
	return func(c *Controller) { c.lang = tag }
}

// Controller owns the turn in flight and the last reply. At most one
// turn is unresolved at any time; submissions during that window are
// rejected with domain.ErrTurnInFlight.
type Controller struct {
	requester  domain.Requester
	transcript domain.Transcript
	animator   *reveal.Animator
	prefs      domain.PreferenceSource
	log        *logger.Logger

	speaker    domain.Speaker
	recognizer domain.Recognizer
	notifier   domain.Notifier
	input      domain.InputSink

	requestTimeout time.Duration
	lang           string

	mu        sync.Mutex
	current   *domain.Turn
	lastReply string
	listening bool

	wg sync.WaitGroup
}

// New creates a controller.
func New(requester domain.Requester, transcript domain.Transcript, animator *reveal.Animator, prefs domain.PreferenceSource, log *logger.Logger, opts ...Option) *Controller {
	c := &Controller{
		requester:      requester,
		transcript:     transcript,
		animator:       animator,
		prefs:          prefs,
		log:            log,
		notifier:       logNotifier{log: log},
		requestTimeout: DefaultRequestTimeout,
		lang:           domain.FallbackLang,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Submit starts a turn for text. Blank input is ignored and returns a nil
// turn. The user entry and the typing reply entry are appended before
// Submit returns; the request, reveal and auto-speak run in the
// background under ctx.
func (c *Controller) Submit(ctx context.Context, text string) (*domain.Turn, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, nil
	}

	c.mu.Lock()
	if prev := c.current; prev != nil && !prev.Status().Resolved() {
		c.mu.Unlock()
		c.log.Debug("chat: rejected submit, turn %s still %s", prev.ID, prev.Status())
		return nil, domain.ErrTurnInFlight
	}
	turn := domain.NewTurn(text)
	c.current = turn
	c.mu.Unlock()

	c.transcript.AppendUser(text)
	bubble := c.transcript.AppendReply()
	bubble.SetSpeaking(true)

	c.log.Info("chat: turn %s submitted (%d chars)", turn.ID, len(text))

	c.wg.Add(1)
	go c.run(ctx, turn, bubble)
	return turn, nil
}

func (c *Controller) run(ctx context.Context, turn *domain.Turn, bubble domain.ReplyBubble) {
	defer c.wg.Done()

	rctx, cancel := context.WithTimeout(ctx, c.requestTimeout)
	reply, err := c.requester.Respond(rctx, turn.Input)
	cancel()
	if err != nil {
		c.fail(turn, bubble, err)
		return
	}

	bubble.ClearTyping()
	bubble.SetSpeaking(false)
	turn.BeginReveal(reply)

	speed := c.prefs.Current().RevealSpeed()
	if err := <-c.animator.Reveal(ctx, bubble, reply, speed); err != nil {
		c.fail(turn, bubble, err)
		return
	}
	bubble.MarkComplete()

	c.mu.Lock()
	c.lastReply = reply
	c.mu.Unlock()

	turn.Complete()
	c.log.Info("chat: turn %s complete (%d chars)", turn.ID, len(reply))

	if prefs := c.prefs.Current(); prefs.AutoSpeak {
		c.speak(ctx, reply, prefs)
	}
}

// fail resolves the turn and its placeholder. The typing state is always
// cleared.
func (c *Controller) fail(turn *domain.Turn, bubble domain.ReplyBubble, err error) {
	c.log.Warn("chat: turn %s failed: %v", turn.ID, err)
	bubble.Fail(LineRequestFailed())
	turn.Fail(err)
}

// ── Speech ───────────────────────────────────────────────────────

// SpeakLast speaks the most recent completed reply.
func (c *Controller) SpeakLast(ctx context.Context) {
	last := c.LastReply()
	if last == "" {
		c.notify(ctx, LineNothingToSpeak(), false)
		return
	}
	c.speak(ctx, last, c.prefs.Current())
}

// StopSpeech stops the active utterance, if any.
func (c *Controller) StopSpeech() {
	if c.speaker != nil {
		c.speaker.Stop()
	}
}

func (c *Controller) speak(ctx context.Context, text string, prefs domain.Preferences) {
	if c.speaker == nil {
		c.notify(ctx, LineSpeechUnavailable(), true)
		return
	}

	var chosen *domain.VoiceCandidate
	if v, ok := voice.Choose(c.speaker.Voices(), prefs.VoiceGender, c.lang); ok {
		chosen = &v
		c.log.Debug("chat: voice %s (%s) for gender %s", v.ID, v.Lang, prefs.VoiceGender)
	}

	if err := c.speaker.Speak(ctx, text, chosen, prefs.SpeechRate); err != nil {
		if errors.Is(err, domain.ErrUnavailable) {
			c.notify(ctx, LineSpeechUnavailable(), true)
			return
		}
		c.log.Warn("chat: speak failed: %v", err)
	}
}

// ── Recognition ──────────────────────────────────────────────────

// Listen starts a recognition session in the background. The transcript
// replaces the input field; the listening affordance resets when the
// session ends, however it ends. A second call while listening is a
// no-op.
func (c *Controller) Listen(ctx context.Context) {
	if c.recognizer == nil {
		c.notify(ctx, LineMicUnavailable(), true)
		return
	}

	c.mu.Lock()
	if c.listening {
		c.mu.Unlock()
		return
	}
	c.listening = true
	c.mu.Unlock()

	c.setListening(true)

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.listening = false
			c.mu.Unlock()
			c.setListening(false)
		}()

		text, err := c.recognizer.Recognize(ctx)
		switch {
		case errors.Is(err, domain.ErrUnavailable):
			c.notify(ctx, LineMicUnavailable(), true)
		case errors.Is(err, context.Canceled):
		case err != nil:
			c.log.Warn("chat: recognition failed: %v", err)
			c.notify(ctx, LineMicFailed(err), true)
		case text == "":
			c.notify(ctx, LineNothingHeard(), false)
		default:
			if c.input != nil {
				c.input.SetInput(text)
			}
		}
	}()
}

// StopListening ends the running recognition session early.
func (c *Controller) StopListening() {
	if c.recognizer != nil {
		c.recognizer.Stop()
	}
}

// Listening reports whether a recognition session is running.
func (c *Controller) Listening() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.listening
}

func (c *Controller) setListening(on bool) {
	if c.input != nil {
		c.input.SetListening(on)
	}
}

// ── State ────────────────────────────────────────────────────────

// InFlight reports whether a turn is Pending or Revealing.
func (c *Controller) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && !c.current.Status().Resolved()
}

// LastReply returns the text of the most recent completed reply.
func (c *Controller) LastReply() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastReply
}

// Wait blocks until every background turn and recognition session has
// finished.
func (c *Controller) Wait() { c.wg.Wait() }

func (c *Controller) notify(ctx context.Context, msg string, urgent bool) {
	var err error
	if urgent {
		err = c.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = c.notifier.Notify(ctx, msg)
	}
	if err != nil {
		c.log.Warn("chat: notify failed: %v", err)
	}
}

// logNotifier is used until a real notifier is wired.
type logNotifier struct{ log *logger.Logger }

func (n logNotifier) Notify(_ context.Context, msg string) error {
	n.log.Info("notice: %s", msg)
	return nil
}

func (n logNotifier) NotifyUrgent(_ context.Context, msg string) error {
	n.log.Warn("notice: %s", msg)
	return nil
}
