// Package settings owns the user's Preferences: loaded once at startup,
// saved on every mutation. Persistence is best-effort: failures are logged
// and the in-memory values stay authoritative.
package settings

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Key is the fixed key the preferences blob is stored under.
const Key = "smarthub_settings"

// KV is a flat key-value persistence backend.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Close() error
}

// Compile-time interface check.
var _ domain.PreferenceSource = (*Store)(nil)

// Option configures the Store.
type Option func(*Store)

// WithIOTimeout bounds every backend call so a slow disk never stalls the
// caller for long.
func WithIOTimeout(d time.Duration) Option {
	return func(s *Store) { s.ioTimeout = d }
}

// Store holds the current Preferences and persists them through a KV.
type Store struct {
	kv        KV
	log       *logger.Logger
	ioTimeout time.Duration

	writeMu sync.Mutex // serialises mutate+write pairs
	mu      sync.RWMutex
	current domain.Preferences
}

// NewStore creates a store over the given backend. Until Load is called
// the current preferences are the defaults.
func NewStore(kv KV, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		kv:        kv,
		log:       log,
		ioTimeout: 2 * time.Second,
		current:   domain.DefaultPreferences(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Load reads the stored blob and makes it current. Missing or corrupt data
// yields the defaults; errors are logged, never returned.
func (s *Store) Load(ctx context.Context) domain.Preferences {
	prefs := s.read(ctx)

	s.mu.Lock()
	s.current = prefs
	s.mu.Unlock()

	s.log.Debug("settings: loaded %+v", prefs)
	return prefs
}

func (s *Store) read(ctx context.Context) domain.Preferences {
	ctx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	raw, err := s.kv.Get(ctx, Key)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.log.Warn("settings: load failed, using defaults: %v", err)
		}
		return domain.DefaultPreferences()
	}

	var prefs domain.Preferences
	if err := json.Unmarshal([]byte(raw), &prefs); err != nil {
		s.log.Warn("settings: stored blob is corrupt, using defaults: %v", err)
		return domain.DefaultPreferences()
	}
	return prefs.Normalize()
}

// Save makes prefs current and writes them. Write errors are logged only.
func (s *Store) Save(ctx context.Context, prefs domain.Preferences) {
	prefs = prefs.Normalize()

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	s.current = prefs
	s.mu.Unlock()

	s.write(ctx, prefs)
}

func (s *Store) write(ctx context.Context, prefs domain.Preferences) {
	data, err := json.Marshal(prefs)
	if err != nil {
		s.log.Error("settings: marshal: %v", err)
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.ioTimeout)
	defer cancel()

	if err := s.kv.Set(ctx, Key, string(data)); err != nil {
		s.log.Warn("settings: save failed (keeping in-memory values): %v", err)
	}
}

// Current returns a copy of the current preferences.
func (s *Store) Current() domain.Preferences {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Flush writes the current preferences again. Called at shutdown.
func (s *Store) Flush(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	s.write(ctx, s.Current())
}

// ── Setters ──────────────────────────────────────────────────────
// Each setter mutates one field and saves. Invalid values fall back to
// the field's default.

// SetTheme changes the display theme.
func (s *Store) SetTheme(ctx context.Context, theme string) domain.Preferences {
	return s.update(ctx, func(p *domain.Preferences) { p.Theme = theme })
}

// SetAutoSpeak toggles speaking replies automatically.
func (s *Store) SetAutoSpeak(ctx context.Context, on bool) domain.Preferences {
	return s.update(ctx, func(p *domain.Preferences) { p.AutoSpeak = on })
}

// SetVoiceGender changes the preferred voice gender.
func (s *Store) SetVoiceGender(ctx context.Context, g domain.Gender) domain.Preferences {
	return s.update(ctx, func(p *domain.Preferences) { p.VoiceGender = g })
}

// SetRevealSpeed changes the reveal delay in milliseconds per character.
func (s *Store) SetRevealSpeed(ctx context.Context, ms int) domain.Preferences {
	return s.update(ctx, func(p *domain.Preferences) { p.RevealSpeedMs = ms })
}

// SetSpeechRate changes the playback rate multiplier.
func (s *Store) SetSpeechRate(ctx context.Context, rate float64) domain.Preferences {
	return s.update(ctx, func(p *domain.Preferences) { p.SpeechRate = rate })
}

func (s *Store) update(ctx context.Context, fn func(*domain.Preferences)) domain.Preferences {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	next := s.current
	fn(&next)
	next = next.Normalize()
	s.current = next
	s.mu.Unlock()

	s.write(ctx, next)
	return next
}
