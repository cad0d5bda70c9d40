package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
)

// MemoryBackend is an in-process backend for tests and ephemeral runs.
type MemoryBackend struct {
	mu      sync.RWMutex
	entries map[string]json.RawMessage
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{entries: make(map[string]json.RawMessage)}
}

func (m *MemoryBackend) Lookup(ctx context.Context, key string) (json.RawMessage, bool, error) {
	if m == nil {
		return nil, false, errors.New("cache: nil memory backend")
	}
	if ctx == nil {
		return nil, false, errors.New("cache: nil context")
	}

	m.mu.RLock()
	v, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	out := make(json.RawMessage, len(v))
	copy(out, v)
	return out, true, nil
}

func (m *MemoryBackend) Store(ctx context.Context, key string, value json.RawMessage) error {
	if m == nil {
		return errors.New("cache: nil memory backend")
	}
	if ctx == nil {
		return errors.New("cache: nil context")
	}
	if key == "" {
		return errors.New("cache: empty key")
	}
	if len(value) == 0 {
		return errors.New("cache: empty value")
	}

	stored := make(json.RawMessage, len(value))
	copy(stored, value)

	m.mu.Lock()
	if m.entries == nil {
		m.entries = make(map[string]json.RawMessage)
	}
	m.entries[key] = stored
	m.mu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error { return nil }

// Len reports the number of stored entries.
func (m *MemoryBackend) Len() int {
	if m == nil {
		return 0
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
