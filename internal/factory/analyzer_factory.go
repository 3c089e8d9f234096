package factory

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/adapters/bedrock"
	"github.com/scamshield/scamshield/internal/adapters/gemini"
	"github.com/scamshield/scamshield/internal/adapters/openai"
	"github.com/scamshield/scamshield/internal/adapters/remote"
	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/core"
	"github.com/scamshield/scamshield/internal/utils"
)

// AnalyzerFactory creates scam analyzers based on configuration
type AnalyzerFactory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewAnalyzerFactory creates a new analyzer factory
func NewAnalyzerFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *AnalyzerFactory {
	return &AnalyzerFactory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a scam analyzer based on the configuration.
// Provider "none" returns nil: the app then stays local-only and never
// performs network calls.
func (f *AnalyzerFactory) CreateAnalyzer() (core.ScamAnalyzer, error) {
	analyzerCfg := f.cfg.GetAnalyzer()

	switch analyzerCfg.Provider {
	case "none":
		return nil, nil
	case "remote":
		remoteCfg := f.cfg.GetRemote()
		if remoteCfg.BaseURL == "" {
			f.logger.Warn("Remote analyzer selected but no base URL configured, staying local-only")
			return nil, nil
		}
		timeout, err := f.cfg.GetDuration("remote.timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid remote timeout: %w", err)
		}
		return remote.NewAnalyzer(remoteCfg.BaseURL, timeout, remoteCfg.MaxBodySize, f.textProcessor, f.logger), nil
	case "openai":
		factory := openai.NewFactory(f.cfg, f.logger, f.textProcessor)
		return factory.CreateAnalyzer()
	case "gemini":
		factory := gemini.NewFactory(f.cfg, f.logger, f.textProcessor)
		analyzer, err := factory.CreateAnalyzer()
		if err != nil {
			return nil, err
		}
		return analyzer, nil
	case "bedrock":
		factory := bedrock.NewFactory(f.cfg, f.logger, f.textProcessor)
		analyzer, err := factory.CreateAnalyzer()
		if err != nil {
			return nil, err
		}
		return analyzer, nil
	default:
		return nil, fmt.Errorf("unsupported analyzer provider: %s", analyzerCfg.Provider)
	}
}
