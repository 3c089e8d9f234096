package gemini

import (
	"go.uber.org/zap"

	"github.com/scamshield/scamshield/internal/config"
	"github.com/scamshield/scamshield/internal/utils"
)

// Factory creates Gemini analyzers
type Factory struct {
	cfg           *config.Config
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewFactory creates a new Gemini factory
func NewFactory(cfg *config.Config, logger *zap.Logger, textProcessor *utils.TextProcessor) *Factory {
	return &Factory{
		cfg:           cfg,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// CreateAnalyzer creates a new GeminiAnalyzer
func (f *Factory) CreateAnalyzer() (*GeminiAnalyzer, error) {
	geminiCfg := f.cfg.GetGemini()

	return NewGeminiAnalyzer(
		geminiCfg.APIKey,
		geminiCfg.ModelName,
		geminiCfg.MaxTokens,
		geminiCfg.Temperature,
		geminiCfg.TopP,
		geminiCfg.MaxBodySize,
		f.logger,
		f.textProcessor,
	)
}
