package settings

import (
	"context"
	"sync"

	"github.com/hammamikhairi/smarthub/internal/domain"
	"github.com/hammamikhairi/smarthub/internal/logger"
)

// Compile-time interface check.
var _ KV = (*MemoryKV)(nil)

// MemoryKV is an in-memory key-value backend. Safe for concurrent access.
// Used by tests and when persistence is disabled.
type MemoryKV struct {
	mu     sync.RWMutex
	values map[string]string
	log    *logger.Logger
}

// NewMemoryKV creates an empty in-memory backend.
func NewMemoryKV(log *logger.Logger) *MemoryKV {
	return &MemoryKV{
		values: make(map[string]string),
		log:    log,
	}
}

// Get returns the value stored under key.
func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	v, ok := m.values[key]
	if !ok {
		m.log.Debug("memory kv: key not found: %s", key)
		return "", domain.ErrNotFound
	}
	return v, nil
}

// Set stores value under key. Overwrites if it already exists.
func (m *MemoryKV) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.log.Debug("memory kv: set %s (%d bytes)", key, len(value))
	m.values[key] = value
	return nil
}

// Close is a no-op.
func (m *MemoryKV) Close() error { return nil }
