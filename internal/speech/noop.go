// Package speech provides speech-to-text and text-to-speech implementations.
package speech

import (
	"context"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Compile-time interface checks.
var (
	_ domain.Speaker    = (*NoOp)(nil)
	_ domain.Recognizer = (*NoOp)(nil)
)

// NoOp stands in for a capability the platform does not have. Every
// operation that would produce output reports domain.ErrUnavailable.
type NoOp struct {
	log *logger.Logger
}

// NewNoOp creates a no-op speech provider.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

// Speak reports that synthesis is unavailable.
func (n *NoOp) Speak(_ context.Context, text string, _ *domain.VoiceCandidate, _ float64) error {
	n.log.Debug("speech no-op: would say %q", truncate(text, 60))
	return domain.ErrUnavailable
}

// Stop does nothing.
func (n *NoOp) Stop() {}

// Voices returns no candidates.
func (n *NoOp) Voices() []domain.VoiceCandidate { return nil }

// Recognize reports that recognition is unavailable.
func (n *NoOp) Recognize(context.Context) (string, error) {
	return "", domain.ErrUnavailable
}
