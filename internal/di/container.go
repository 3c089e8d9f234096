package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/contacts"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/factory"
	"github.com/scamshield/scamshield/internal/handoff"
	"github.com/scamshield/scamshield/internal/logging"
	"github.com/scamshield/scamshield/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
// for the main application.
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewTextProcessorFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewStoreFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewAnalyzerFactory); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register shared store and its per-concern views
	if err := container.Provide(func(f *factory.StoreFactory) (core.SharedStore, error) {
		return f.CreateSharedStore()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s core.SharedStore) core.HandoffStore { return s }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s core.SharedStore) core.ContactCache { return s }); err != nil {
		return nil, err
	}
	if err := container.Provide(func(s core.SharedStore) core.SettingsStore { return s }); err != nil {
		return nil, err
	}

	// Register payload validity window
	if err := container.Provide(func(f *factory.StoreFactory) (time.Duration, error) {
		return f.GetPayloadMaxAge()
	}); err != nil {
		return nil, err
	}

	// Register payload text bound
	if err := container.Provide(func(cfg *config.Config) int {
		return cfg.GetHandoff().MaxText
	}); err != nil {
		return nil, err
	}

	// Register trusted contact index. The main application has no live
	// directory to fall back to; the cached snapshot is the source of truth.
	if err := container.Provide(func(cache core.ContactCache, logger *zap.Logger) *contacts.Index {
		return contacts.NewIndex(cache, nil, logger)
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(idx *contacts.Index) core.TrustedContacts { return idx }); err != nil {
		return nil, err
	}

	// Register pattern scorer
	if err := container.Provide(func(cfg *config.Config) (*core.PatternScorer, error) {
		rules, err := cfg.GetCategoryRules()
		if err != nil {
			return nil, err
		}
		return core.NewPatternScorer(rules), nil
	}); err != nil {
		return nil, err
	}

	// Register filtering policy
	if err := container.Provide(func(cfg *config.Config) core.Thresholds {
		filterCfg := cfg.GetFilter()
		return core.Thresholds{Junk: filterCfg.JunkThreshold, Flag: filterCfg.FlagThreshold}
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(cfg *config.Config) core.FlagAction {
		return core.FlagAction(cfg.GetFilter().FlagAction)
	}); err != nil {
		return nil, err
	}

	// Register decision engine
	if err := container.Provide(core.NewFilterDecisionEngine); err != nil {
		return nil, err
	}

	// Register scam analyzer
	if err := container.Provide(func(f *factory.AnalyzerFactory) (core.ScamAnalyzer, error) {
		return f.CreateAnalyzer()
	}); err != nil {
		return nil, err
	}

	// Register handoff producer and consumer
	if err := container.Provide(handoff.NewProducer); err != nil {
		return nil, err
	}
	if err := container.Provide(handoff.NewConsumer); err != nil {
		return nil, err
	}

	return container, nil
}
