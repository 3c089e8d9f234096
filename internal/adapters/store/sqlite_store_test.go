package store

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "scamshield.db")
	s, err := NewSQLiteStore(dbPath, zap.NewNop(), 0, 0)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	t.Cleanup(s.Stop)
	return s
}

func TestSQLiteStorePutConsumeRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	created := time.Now().Add(-time.Second)
	payload := &core.SharePayload{
		ID:        "payload-1",
		Text:      "you won a prize, click here",
		CreatedAt: created,
		Origin:    core.OriginExtensionShare,
	}
	if err := s.Put(ctx, payload); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	got, err := s.Consume(ctx, "payload-1", 5*time.Minute)
	if err != nil {
		t.Fatalf("consume failed: %v", err)
	}
	if got.Text != payload.Text {
		t.Fatalf("text mangled: %q", got.Text)
	}
	if got.Origin != core.OriginExtensionShare {
		t.Fatalf("origin mangled: %q", got.Origin)
	}
	// Stored as RFC3339Nano, so the instant survives even though the
	// location comes back as UTC.
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("timestamp mangled: %v vs %v", got.CreatedAt, created)
	}
}

func TestSQLiteStoreConsumeUnknownID(t *testing.T) {
	s := newTestSQLiteStore(t)

	if _, err := s.Consume(context.Background(), "missing", 5*time.Minute); err != core.ErrPayloadNotFound {
		t.Fatalf("expected ErrPayloadNotFound, got %v", err)
	}
}

func TestSQLiteStoreConsumeExactlyOnce(t *testing.T) {
	s := newTestSQLiteStore(t)
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
	for i := 0; i < 8; i++ {
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

func TestSQLiteStoreExpiredConsume(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.Put(ctx, &core.SharePayload{
		ID:        "stale",
		Text:      "old",
		CreatedAt: time.Now().Add(-10 * time.Minute),
		Origin:    core.OriginClipboard,
	}); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	if _, err := s.Consume(ctx, "stale", 5*time.Minute); err != core.ErrPayloadNotFound {
		t.Fatalf("expected ErrPayloadNotFound for expired payload, got %v", err)
	}
	// The row is deleted, not merely filtered.
	if _, err := s.Consume(ctx, "stale", time.Hour); err != core.ErrPayloadNotFound {
		t.Fatalf("expired row must be deleted on consume, got %v", err)
	}
}

func TestSQLiteStoreCleanupExpired(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	s.Put(ctx, &core.SharePayload{ID: "old", Text: "a", CreatedAt: time.Now().Add(-10 * time.Minute)})
	s.Put(ctx, &core.SharePayload{ID: "fresh", Text: "b", CreatedAt: time.Now()})

	if err := s.CleanupExpired(ctx, 5*time.Minute); err != nil {
		t.Fatalf("cleanup failed: %v", err)
	}

	if _, err := s.Consume(ctx, "old", time.Hour); err != core.ErrPayloadNotFound {
		t.Fatalf("expected old payload cleaned up")
	}
	if _, err := s.Consume(ctx, "fresh", time.Hour); err != nil {
		t.Fatalf("fresh payload must survive cleanup: %v", err)
	}
}

func TestSQLiteStoreDurability(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "scamshield.db")
	ctx := context.Background()

	s, err := NewSQLiteStore(dbPath, zap.NewNop(), 0, 0)
	if err != nil {
		t.Fatalf("failed to open sqlite store: %v", err)
	}
	if err := s.Put(ctx, &core.SharePayload{
		ID:        "durable",
		Text:      "survives reopen",
		CreatedAt: time.Now(),
		Origin:    core.OriginExtensionShare,
	}); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.ReplaceTrusted(ctx, []string{"1112223333"}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := s.SetFilterEnabled(ctx, true); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	s.Stop()

	// Second open simulates the main app process after the extension
	// process exits.
	reopened, err := NewSQLiteStore(dbPath, zap.NewNop(), 0, 0)
	if err != nil {
		t.Fatalf("failed to reopen sqlite store: %v", err)
	}
	defer reopened.Stop()

	payload, err := reopened.Consume(ctx, "durable", 5*time.Minute)
	if err != nil {
		t.Fatalf("consume after reopen failed: %v", err)
	}
	if payload.Text != "survives reopen" {
		t.Fatalf("text mangled across reopen: %q", payload.Text)
	}

	numbers, err := reopened.LoadTrusted(ctx)
	if err != nil {
		t.Fatalf("load trusted after reopen failed: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != "1112223333" {
		t.Fatalf("trusted set not durable: %v", numbers)
	}

	enabled, err := reopened.FilterEnabled(ctx)
	if err != nil {
		t.Fatalf("filter flag read after reopen failed: %v", err)
	}
	if !enabled {
		t.Fatalf("filter flag not durable")
	}
}

func TestSQLiteStoreFilterEnabledDefault(t *testing.T) {
	s := newTestSQLiteStore(t)

	enabled, err := s.FilterEnabled(context.Background())
	if err != nil {
		t.Fatalf("read failed: %v", err)
	}
	if enabled {
		t.Fatalf("filtering must default to disabled until the user confirms")
	}
}

func TestSQLiteStoreReplaceTrusted(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	if err := s.ReplaceTrusted(ctx, []string{"1112223333", "4445556666"}); err != nil {
		t.Fatalf("replace failed: %v", err)
	}
	if err := s.ReplaceTrusted(ctx, []string{"7778889999"}); err != nil {
		t.Fatalf("second replace failed: %v", err)
	}

	numbers, err := s.LoadTrusted(ctx)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if len(numbers) != 1 || numbers[0] != "7778889999" {
		t.Fatalf("replace must fully swap the set, got %v", numbers)
	}
}
