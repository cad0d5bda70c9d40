package client

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestMakeCacheKey_MergesModifiers(t *testing.T) {
	raw := map[string]any{"model": "m", "prompt": "p"}
	mods := map[string]any{"safety_settings_preset": "block_none"}

	key, err := MakeCacheKey(raw, mods)
	if err != nil {
		t.Fatalf("MakeCacheKey: %v", err)
	}
	if len(key) != 3 {
		t.Fatalf("key size: got %d want 3", len(key))
	}
	if key["safety_settings_preset"] != "block_none" {
		t.Fatalf("modifier missing from key: %v", key)
	}
	// The inputs stay untouched.
	if len(raw) != 2 {
		t.Fatalf("raw request mutated: %v", raw)
	}
}

func TestMakeCacheKey_CollisionIsError(t *testing.T) {
	raw := map[string]any{"model": "m", "prompt": "p"}
	mods := map[string]any{"model": "other"}

	if _, err := MakeCacheKey(raw, mods); err == nil {
		t.Fatalf("colliding modifier: expected error")
	} else if !strings.Contains(err.Error(), "collides") {
		t.Fatalf("collision error: got %q", err)
	}
}

func TestMakeCacheKey_EmptyRequest(t *testing.T) {
	if _, err := MakeCacheKey(nil, nil); err == nil {
		t.Fatalf("empty raw request: expected error")
	}
}

func TestWrapRequestTime_AnnotatesResponse(t *testing.T) {
	compute := wrapRequestTime(func() (map[string]any, error) {
		return map[string]any{"text": "hi"}, nil
	})

	b, err := compute()
	if err != nil {
		t.Fatalf("compute: %v", err)
	}

	var stored map[string]any
	if err := json.Unmarshal(b, &stored); err != nil {
		t.Fatalf("unmarshal stored: %v", err)
	}
	if stored["text"] != "hi" {
		t.Fatalf("payload lost: %v", stored)
	}
	if _, ok := stored[requestTimeField]; !ok {
		t.Fatalf("missing %q in stored response: %v", requestTimeField, stored)
	}
	if _, ok := stored[requestDatetimeField]; !ok {
		t.Fatalf("missing %q in stored response: %v", requestDatetimeField, stored)
	}
}

func TestWrapRequestTime_PropagatesError(t *testing.T) {
	compute := wrapRequestTime(func() (map[string]any, error) {
		return nil, errTest
	})
	if _, err := compute(); err != errTest {
		t.Fatalf("compute error: got %v want %v", err, errTest)
	}
}
