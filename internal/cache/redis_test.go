package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
)

func TestRedisBackend_Roundtrip(t *testing.T) {
	srv := miniredis.RunT(t)

	backend, err := NewRedisBackend(srv.Addr(), "", 0, 0)
	if err != nil {
		t.Fatalf("NewRedisBackend: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()

	if _, ok, err := backend.Lookup(ctx, "missing"); err != nil || ok {
		t.Fatalf("Lookup(missing): got ok=%v err=%v, want miss", ok, err)
	}

	if err := backend.Store(ctx, "k", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("Store: %v", err)
	}
	v, ok, err := backend.Lookup(ctx, "k")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok || string(v) != `{"a":1}` {
		t.Fatalf("Lookup: got ok=%v value=%s", ok, v)
	}

	if !srv.Exists(redisKeyPrefix + "k") {
		t.Fatalf("expected prefixed key %q in redis", redisKeyPrefix+"k")
	}
}

func TestRedisBackend_TTL(t *testing.T) {
	srv := miniredis.RunT(t)

	backend, err := NewRedisBackend(srv.Addr(), "", 0, time.Minute)
	if err != nil {
		t.Fatalf("NewRedisBackend: %v", err)
	}
	defer backend.Close()

	ctx := context.Background()
	if err := backend.Store(ctx, "k", json.RawMessage(`{"a":1}`)); err != nil {
		t.Fatalf("Store: %v", err)
	}

	srv.FastForward(2 * time.Minute)

	if _, ok, err := backend.Lookup(ctx, "k"); err != nil || ok {
		t.Fatalf("Lookup after expiry: got ok=%v err=%v, want miss", ok, err)
	}
}

func TestNewRedisBackend_Validation(t *testing.T) {
	if _, err := NewRedisBackend("", "", 0, 0); err == nil {
		t.Fatalf("empty addr: expected error")
	}
	if _, err := NewRedisBackend("localhost:6379", "", 0, -time.Second); err == nil {
		t.Fatalf("negative ttl: expected error")
	}
}
