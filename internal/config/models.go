package config

import (
	"github.com/scamshield/scamshield/internal/core"
)

// FilterConfig represents the message-filtering policy
type FilterConfig struct {
	JunkThreshold  float64
	FlagThreshold  float64
	FlagAction     string
	TrustedNumbers []string
}

// StoreConfig represents the shared-store configuration
type StoreConfig struct {
	Type             string
	SQLitePath       string
	MySQLDSN         string
	CleanupFrequency string
}

// HandoffConfig represents the share-handoff policy
type HandoffConfig struct {
	MaxAge  string
	MaxText int
}

// AnalyzerConfig selects the remote analyzer provider
type AnalyzerConfig struct {
	Provider      string
	ContextWhoFor string
}

// RemoteConfig represents the native scam-analysis API configuration
type RemoteConfig struct {
	BaseURL     string
	Timeout     string
	MaxBodySize int
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxBodySize int
}

// GetFilter returns the filtering policy
func (c *Config) GetFilter() FilterConfig {
	return FilterConfig{
		JunkThreshold:  c.GetFloat64("filter.junk_threshold"),
		FlagThreshold:  c.GetFloat64("filter.flag_threshold"),
		FlagAction:     c.GetString("filter.flag_action"),
		TrustedNumbers: c.GetStringSlice("filter.trusted_numbers"),
	}
}

// GetCategoryRules returns the scoring category table, falling back to
// the built-in reference table when the config file does not override it.
func (c *Config) GetCategoryRules() ([]core.CategoryRule, error) {
	if !c.v.IsSet("filter.categories") {
		return core.DefaultCategoryRules(), nil
	}

	var rules []core.CategoryRule
	if err := c.v.UnmarshalKey("filter.categories", &rules); err != nil {
		return nil, err
	}
	return rules, nil
}

// GetStore returns the shared-store configuration
func (c *Config) GetStore() StoreConfig {
	return StoreConfig{
		Type:             c.GetString("store.type"),
		SQLitePath:       c.GetString("store.sqlite_path"),
		MySQLDSN:         c.GetString("store.mysql_dsn"),
		CleanupFrequency: c.GetString("store.cleanup_frequency"),
	}
}

// GetHandoff returns the handoff policy
func (c *Config) GetHandoff() HandoffConfig {
	return HandoffConfig{
		MaxAge:  c.GetString("handoff.max_age"),
		MaxText: c.GetInt("handoff.max_text"),
	}
}

// GetAnalyzer returns the analyzer selection
func (c *Config) GetAnalyzer() AnalyzerConfig {
	return AnalyzerConfig{
		Provider:      c.GetString("analyzer.provider"),
		ContextWhoFor: c.GetString("analyzer.context_who_for"),
	}
}

// GetRemote returns the native analyzer API configuration
func (c *Config) GetRemote() RemoteConfig {
	return RemoteConfig{
		BaseURL:     c.GetString("remote.base_url"),
		Timeout:     c.GetString("remote.timeout"),
		MaxBodySize: c.GetInt("remote.max_body_size"),
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxBodySize: c.GetInt("openai.max_body_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxBodySize: c.GetInt("gemini.max_body_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxBodySize: c.GetInt("bedrock.max_body_size"),
	}
}
