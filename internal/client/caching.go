package client

import (
	"encoding/json"
	"fmt"
	"time"
)

// MakeCacheKey merges the raw provider request with client-level
// modifiers into the canonical cache-key mapping. A modifier that
// collides with a raw-request field is a configuration error, not
// something to silently override.
func MakeCacheKey(rawRequest map[string]any, modifiers map[string]any) (map[string]any, error) {
	if len(rawRequest) == 0 {
		return nil, fmt.Errorf("client: empty raw request")
	}

	out := make(map[string]any, len(rawRequest)+len(modifiers))
	for k, v := range rawRequest {
		out[k] = v
	}
	for k, v := range modifiers {
		if _, exists := out[k]; exists {
			return nil, fmt.Errorf("client: cache key modifier %q collides with raw request field", k)
		}
		out[k] = v
	}
	return out, nil
}

const (
	requestTimeField     = "request_time"
	requestDatetimeField = "request_datetime"
)

// wrapRequestTime decorates a producer so the stored raw response
// carries the duration and start time of the real call. Cache hits then
// report the original call's timing.
func wrapRequestTime(compute func() (map[string]any, error)) func() (json.RawMessage, error) {
	return func() (json.RawMessage, error) {
		start := time.Now()
		raw, err := compute()
		if err != nil {
			return nil, err
		}
		if raw == nil {
			raw = make(map[string]any, 2)
		}
		raw[requestTimeField] = time.Since(start).Seconds()
		raw[requestDatetimeField] = start.Unix()

		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("client: marshal raw response: %w", err)
		}
		return b, nil
	}
}
