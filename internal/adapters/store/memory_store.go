package store

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/core"
)

// MemoryStore is an in-memory implementation of the SharedStore
// interfaces. It only spans a single process, so it serves tests and
// single-binary setups; cross-process deployments use SQLite or MySQL.
type MemoryStore struct {
	mu            sync.Mutex
	payloads      map[string]*core.SharePayload
	trusted       []string
	filterEnabled bool
	logger        *zap.Logger
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore(logger *zap.Logger) *MemoryStore {
	return &MemoryStore{
		payloads: make(map[string]*core.SharePayload),
		logger:   logger,
	}
}

// Put inserts the payload under its id, last write wins.
func (s *MemoryStore) Put(ctx context.Context, payload *core.SharePayload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *payload
	s.payloads[payload.ID] = &copied
	return nil
}

// Consume atomically removes and returns the payload. Expired entries
// are removed and reported as not found.
func (s *MemoryStore) Consume(ctx context.Context, id string, maxAge time.Duration) (*core.SharePayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	payload, ok := s.payloads[id]
	if !ok {
		return nil, core.ErrPayloadNotFound
	}
	delete(s.payloads, id)

	if time.Since(payload.CreatedAt) > maxAge {
		s.logger.Debug("Share payload expired", zap.String("payload_id", id))
		return nil, core.ErrPayloadNotFound
	}

	return payload, nil
}

// CleanupExpired removes entries older than maxAge.
func (s *MemoryStore) CleanupExpired(ctx context.Context, maxAge time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	expired := 0
	for id, payload := range s.payloads {
		if payload.CreatedAt.Before(cutoff) {
			delete(s.payloads, id)
			expired++
		}
	}

	s.logger.Debug("Cleaned up expired share payloads", zap.Int("expired_count", expired))
	return nil
}

// LoadTrusted returns the cached trusted numbers.
func (s *MemoryStore) LoadTrusted(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, len(s.trusted))
	copy(out, s.trusted)
	return out, nil
}

// ReplaceTrusted swaps the cached trusted set.
func (s *MemoryStore) ReplaceTrusted(ctx context.Context, numbers []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.trusted = make([]string, len(numbers))
	copy(s.trusted, numbers)
	return nil
}

// FilterEnabled reports the stored filter confirmation flag.
func (s *MemoryStore) FilterEnabled(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filterEnabled, nil
}

// SetFilterEnabled records the filter confirmation flag.
func (s *MemoryStore) SetFilterEnabled(ctx context.Context, enabled bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.filterEnabled = enabled
	return nil
}
