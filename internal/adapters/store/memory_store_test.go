package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

func TestMemoryStorePutConsumeRoundTrip(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	created := time.Now()
	payload := &core.SharePayload{
		ID:        "payload-1",
		Text:      "suspicious message text",
		CreatedAt: created,
		Origin:    core.OriginClipboard,
	}
	if err := s.Put(ctx, payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Consume(ctx, "payload-1", 5*time.Minute)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if got.Text != payload.Text || got.Origin != core.OriginClipboard {
		t.Fatalf("payload mangled: %+v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("timestamp mangled: %v vs %v", got.CreatedAt, created)
	}
}

func TestMemoryStoreConsumeUnknownID(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())

	if _, err := s.Consume(context.Background(), "missing", 5*time.Minute); err != core.ErrPayloadNotFound {
		t.Fatalf("expected ErrPayloadNotFound, got %v", err)
	}
}

func TestMemoryStoreConsumeExactlyOnce(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if err := s.Put(ctx, &core.SharePayload{
		ID:        "contested",
		Text:      "text",
		CreatedAt: time.Now(),
		Origin:    core.OriginExtensionShare,
	}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	var successes int64
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Consume(ctx, "contested", 5*time.Minute); err == nil {
				atomic.AddInt64(&successes, 1)
			}
		}()
	}
	wg.Wait()

	if successes != 1 {
		t.Fatalf("expected exactly one successful consume, got %d", successes)
	}
}

func TestMemoryStoreExpiredConsume(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if err := s.Put(ctx, &core.SharePayload{
		ID:        "stale",
		Text:      "old",
		CreatedAt: time.Now().Add(-10 * time.Minute),
		Origin:    core.OriginExtensionShare,
	}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, err := s.Consume(ctx, "stale", 5*time.Minute); err != core.ErrPayloadNotFound {
		t.Fatalf("expected ErrPayloadNotFound for expired payload, got %v", err)
	}
	// The expired entry is gone, not just skipped.
	if _, err := s.Consume(ctx, "stale", time.Hour); err != core.ErrPayloadNotFound {
		t.Fatalf("expired entry must be deleted on consume, got %v", err)
	}
}

func TestMemoryStoreCleanupExpired(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	s.Put(ctx, &core.SharePayload{ID: "old", Text: "a", CreatedAt: time.Now().Add(-10 * time.Minute)})
	s.Put(ctx, &core.SharePayload{ID: "fresh", Text: "b", CreatedAt: time.Now()})

	if err := s.CleanupExpired(ctx, 5*time.Minute); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, err := s.Consume(ctx, "old", time.Hour); err != core.ErrPayloadNotFound {
		t.Fatalf("expected old payload to be cleaned up")
	}
	if _, err := s.Consume(ctx, "fresh", time.Hour); err != nil {
		t.Fatalf("fresh payload must survive cleanup: %v", err)
	}
}

func TestMemoryStorePutLastWriteWins(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	s.Put(ctx, &core.SharePayload{ID: "dup", Text: "first", CreatedAt: time.Now()})
	s.Put(ctx, &core.SharePayload{ID: "dup", Text: "second", CreatedAt: time.Now()})

	got, err := s.Consume(ctx, "dup", 5*time.Minute)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if got.Text != "second" {
		t.Fatalf("expected last write to win, got %q", got.Text)
	}
}

func TestMemoryStoreTrustedRoundTrip(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	if err := s.ReplaceTrusted(ctx, []string{"1112223333", "4445556666"}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	got, err := s.LoadTrusted(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 numbers, got %v", got)
	}

	if err := s.ReplaceTrusted(ctx, nil); err != nil {
		t.Fatalf("replace with empty set failed: %v", err)
	}
	got, err = s.LoadTrusted(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty set after replace, got %v", got)
	}
}

func TestMemoryStoreFilterEnabledFlag(t *testing.T) {
	s := NewMemoryStore(zap.NewNop())
	ctx := context.Background()

	enabled, err := s.FilterEnabled(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if enabled {
		t.Fatalf("filtering must default to disabled")
	}

	if err := s.SetFilterEnabled(ctx, true); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	enabled, err = s.FilterEnabled(ctx)
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if !enabled {
		t.Fatalf("expected filtering enabled after set")
	}
}
