package contacts

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

// Normalize reduces any raw phone-number representation to its decimal
// digits. Two numbers are equal iff their normalized forms are equal.
// Normalization is total and idempotent: it never fails, and empty
// input yields empty output.
func Normalize(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] >= '0' && raw[i] <= '9' {
			b.WriteByte(raw[i])
		}
	}
	return b.String()
}

// Index answers trusted-sender lookups against a cached snapshot of the
// synced contact set. Lookups are O(1) and never error: a missing or
// stale cache degrades to "not trusted", which is the conservative
// choice given that trust bypasses scoring downstream.
type Index struct {
	mu        sync.RWMutex
	trusted   map[string]struct{}
	cache     core.ContactCache
	directory core.ContactDirectory
	logger    *zap.Logger
}

// NewIndex creates an index over the given cache. The directory is an
// optional live fallback; pass nil in time-budget-constrained contexts.
// The initial snapshot load is best-effort: failures leave the index
// empty rather than erroring.
func NewIndex(cache core.ContactCache, directory core.ContactDirectory, logger *zap.Logger) *Index {
	idx := &Index{
		trusted:   make(map[string]struct{}),
		cache:     cache,
		directory: directory,
		logger:    logger,
	}
	idx.Refresh(context.Background())
	return idx
}

// NewStaticIndex creates an index over a fixed set of numbers, with no
// backing cache or directory. Used by tests and flag-driven CLIs.
func NewStaticIndex(numbers []string, logger *zap.Logger) *Index {
	idx := &Index{
		trusted: make(map[string]struct{}, len(numbers)),
		logger:  logger,
	}
	for _, n := range numbers {
		if normalized := Normalize(n); normalized != "" {
			idx.trusted[normalized] = struct{}{}
		}
	}
	return idx
}

// Refresh reloads the snapshot from the backing cache. Staleness is
// acceptable between refreshes; the external contacts sync decides when
// to call this.
func (idx *Index) Refresh(ctx context.Context) {
	if idx.cache == nil {
		return
	}

	numbers, err := idx.cache.LoadTrusted(ctx)
	if err != nil {
		idx.logger.Warn("Failed to load trusted contacts, keeping previous snapshot", zap.Error(err))
		return
	}

	trusted := make(map[string]struct{}, len(numbers))
	for _, n := range numbers {
		if normalized := Normalize(n); normalized != "" {
			trusted[normalized] = struct{}{}
		}
	}

	idx.mu.Lock()
	idx.trusted = trusted
	idx.mu.Unlock()

	idx.logger.Debug("Refreshed trusted contact snapshot", zap.Int("count", len(trusted)))
}

// IsTrusted reports whether the raw sender normalizes to a member of
// the cached set. Never errors.
func (idx *Index) IsTrusted(rawSender string) bool {
	normalized := Normalize(rawSender)
	if normalized == "" {
		return false
	}

	idx.mu.RLock()
	_, ok := idx.trusted[normalized]
	idx.mu.RUnlock()
	return ok
}

// IsTrustedLive checks the cache first and falls back to the live
// system directory on a miss. The directory lookup is explicitly
// slower; callers opt in by constructing the index with one.
func (idx *Index) IsTrustedLive(ctx context.Context, rawSender string) bool {
	if idx.IsTrusted(rawSender) {
		return true
	}
	if idx.directory == nil {
		return false
	}

	normalized := Normalize(rawSender)
	if normalized == "" {
		return false
	}

	found, err := idx.directory.Lookup(ctx, normalized)
	if err != nil {
		idx.logger.Debug("Directory lookup failed, treating sender as untrusted", zap.Error(err))
		return false
	}
	return found
}
