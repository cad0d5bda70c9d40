package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"golang.org/x/sync/singleflight"
)

// Backend is an opaque key/value store holding raw provider responses.
type Backend interface {
	Lookup(ctx context.Context, key string) (json.RawMessage, bool, error)
	Store(ctx context.Context, key string, value json.RawMessage) error
	Close() error
}

// Fingerprint derives a stable hex digest from a cache-key mapping.
// encoding/json sorts map keys, so two semantically identical keys hash
// the same regardless of how they were assembled.
func Fingerprint(key map[string]any) (string, error) {
	if len(key) == 0 {
		return "", errors.New("cache: empty cache key")
	}
	b, err := json.Marshal(key)
	if err != nil {
		return "", fmt.Errorf("cache: marshal cache key: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}

// Cache wraps a Backend with get-or-compute semantics. Concurrent calls
// for the same key are collapsed into a single producer invocation.
type Cache struct {
	backend Backend
	group   singleflight.Group
}

func New(backend Backend) (*Cache, error) {
	if backend == nil {
		return nil, errors.New("cache: nil backend")
	}
	return &Cache{backend: backend}, nil
}

type getResult struct {
	value  json.RawMessage
	cached bool
}

// Get returns the entry stored under key, or runs compute, stores its
// result, and returns it. The second return value reports whether the
// value came from the store. A compute error is returned to the caller
// and nothing is stored.
func (c *Cache) Get(ctx context.Context, key string, compute func() (json.RawMessage, error)) (json.RawMessage, bool, error) {
	if c == nil || c.backend == nil {
		return nil, false, errors.New("cache: nil cache")
	}
	if ctx == nil {
		return nil, false, errors.New("cache: nil context")
	}
	if key == "" {
		return nil, false, errors.New("cache: empty key")
	}
	if compute == nil {
		return nil, false, errors.New("cache: nil compute")
	}

	if v, ok, err := c.backend.Lookup(ctx, key); err != nil {
		return nil, false, err
	} else if ok {
		return v, true, nil
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		// A concurrent call may have stored the entry between the
		// fast-path lookup and joining this flight.
		if v, ok, err := c.backend.Lookup(ctx, key); err != nil {
			return nil, err
		} else if ok {
			return getResult{value: v, cached: true}, nil
		}

		raw, err := compute()
		if err != nil {
			return nil, err
		}
		if len(raw) == 0 {
			return nil, errors.New("cache: compute returned empty value")
		}
		if err := c.backend.Store(ctx, key, raw); err != nil {
			return nil, err
		}
		return getResult{value: raw, cached: false}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res, ok := v.(getResult)
	if !ok {
		return nil, false, errors.New("cache: unexpected result type")
	}
	return res.value, res.cached, nil
}

// Close releases the underlying backend.
func (c *Cache) Close() error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
