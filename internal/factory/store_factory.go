package factory

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/store"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
)

// StoreFactory creates shared stores based on configuration
type StoreFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewStoreFactory creates a new store factory
func NewStoreFactory(cfg *config.Config, logger *zap.Logger) *StoreFactory {
	return &StoreFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSharedStore creates a shared store based on the configuration
func (f *StoreFactory) CreateSharedStore() (core.SharedStore, error) {
	storeCfg := f.cfg.GetStore()
	cleanupFreq, err := f.cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		return nil, fmt.Errorf("invalid store cleanup frequency: %w", err)
	}
	maxAge, err := f.GetPayloadMaxAge()
	if err != nil {
		return nil, err
	}

	switch storeCfg.Type {
	case "memory":
		return store.NewMemoryStore(f.logger), nil
	case "sqlite":
		// Ensure directory exists
		if err := os.MkdirAll(filepath.Dir(storeCfg.SQLitePath), 0755); err != nil {
			return nil, fmt.Errorf("failed to create SQLite directory: %w", err)
		}
		return store.NewSQLiteStore(storeCfg.SQLitePath, f.logger, cleanupFreq, maxAge)
	case "mysql":
		return store.NewMySQLStore(storeCfg.MySQLDSN, f.logger, cleanupFreq, maxAge)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeCfg.Type)
	}
}

// GetPayloadMaxAge returns the configured payload validity window
func (f *StoreFactory) GetPayloadMaxAge() (time.Duration, error) {
	maxAge, err := f.cfg.GetDuration("handoff.max_age")
	if err != nil {
		return 0, fmt.Errorf("invalid handoff max age: %w", err)
	}
	return maxAge, nil
}
