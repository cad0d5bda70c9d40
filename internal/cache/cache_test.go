package cache

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestFingerprint_Deterministic(t *testing.T) {
	a := map[string]any{"model": "m", "prompt": "p", "temperature": 0.5}
	b := map[string]any{"temperature": 0.5, "prompt": "p", "model": "m"}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint a: %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint b: %v", err)
	}
	if fa != fb {
		t.Fatalf("fingerprints differ for identical keys: %q vs %q", fa, fb)
	}
}

func TestFingerprint_DistinguishesKeys(t *testing.T) {
	a := map[string]any{"model": "m", "prompt": "p"}
	b := map[string]any{"model": "m", "prompt": "q"}

	fa, err := Fingerprint(a)
	if err != nil {
		t.Fatalf("Fingerprint a: %v", err)
	}
	fb, err := Fingerprint(b)
	if err != nil {
		t.Fatalf("Fingerprint b: %v", err)
	}
	if fa == fb {
		t.Fatalf("different keys collapsed to the same fingerprint %q", fa)
	}
}

func TestFingerprint_EmptyKey(t *testing.T) {
	if _, err := Fingerprint(nil); err == nil {
		t.Fatalf("Fingerprint(nil): expected error")
	}
}

func TestCache_GetComputesOnce(t *testing.T) {
	c, err := New(NewMemoryBackend())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	var calls int32
	compute := func() (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		return json.RawMessage(`{"text":"hi"}`), nil
	}

	v, cached, err := c.Get(ctx, "k", compute)
	if err != nil {
		t.Fatalf("Get first: %v", err)
	}
	if cached {
		t.Fatalf("first Get: cached = true, want false")
	}
	if string(v) != `{"text":"hi"}` {
		t.Fatalf("first Get value: got %s", v)
	}

	v, cached, err = c.Get(ctx, "k", compute)
	if err != nil {
		t.Fatalf("Get second: %v", err)
	}
	if !cached {
		t.Fatalf("second Get: cached = false, want true")
	}
	if string(v) != `{"text":"hi"}` {
		t.Fatalf("second Get value: got %s", v)
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute calls: got %d want 1", n)
	}
}

func TestCache_ComputeErrorNotStored(t *testing.T) {
	backend := NewMemoryBackend()
	c, err := New(backend)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	boom := errors.New("provider down")
	if _, _, err := c.Get(ctx, "k", func() (json.RawMessage, error) {
		return nil, boom
	}); !errors.Is(err, boom) {
		t.Fatalf("Get error: got %v want %v", err, boom)
	}
	if backend.Len() != 0 {
		t.Fatalf("failed compute was stored: %d entries", backend.Len())
	}

	// The key stays available for a later, successful attempt.
	v, cached, err := c.Get(ctx, "k", func() (json.RawMessage, error) {
		return json.RawMessage(`{"ok":true}`), nil
	})
	if err != nil {
		t.Fatalf("Get retry: %v", err)
	}
	if cached {
		t.Fatalf("retry Get: cached = true, want false")
	}
	if string(v) != `{"ok":true}` {
		t.Fatalf("retry Get value: got %s", v)
	}
}

func TestCache_ConcurrentSameKeySingleCompute(t *testing.T) {
	c, err := New(NewMemoryBackend())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()

	var calls int32
	release := make(chan struct{})
	compute := func() (json.RawMessage, error) {
		atomic.AddInt32(&calls, 1)
		<-release
		return json.RawMessage(`{"n":1}`), nil
	}

	const workers = 8
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = c.Get(ctx, "shared", compute)
		}()
	}

	close(release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("worker %d: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&calls); n != 1 {
		t.Fatalf("compute calls under contention: got %d want 1", n)
	}
}

func TestCache_GetValidation(t *testing.T) {
	c, err := New(NewMemoryBackend())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ctx := context.Background()
	compute := func() (json.RawMessage, error) { return json.RawMessage(`{}`), nil }

	if _, _, err := c.Get(ctx, "", compute); err == nil {
		t.Fatalf("empty key: expected error")
	}
	if _, _, err := c.Get(ctx, "k", nil); err == nil {
		t.Fatalf("nil compute: expected error")
	}
	if _, _, err := c.Get(nil, "k", compute); err == nil { //nolint:staticcheck
		t.Fatalf("nil context: expected error")
	}
}

func TestNew_NilBackend(t *testing.T) {
	if _, err := New(nil); err == nil {
		t.Fatalf("New(nil): expected error")
	}
}
