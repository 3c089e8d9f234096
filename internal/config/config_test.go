package config

import (
	"testing"
	"time"
)

func newDefaultConfig() *Config {
	return NewFromViper(NewEmptyViper())
}

func TestDefaults(t *testing.T) {
	cfg := newDefaultConfig()

	filter := cfg.GetFilter()
	if filter.JunkThreshold != 0.7 {
		t.Fatalf("expected default junk threshold 0.7, got %v", filter.JunkThreshold)
	}
	if filter.FlagThreshold != 0.4 {
		t.Fatalf("expected default flag threshold 0.4, got %v", filter.FlagThreshold)
	}
	if filter.FlagAction != "allow" {
		t.Fatalf("expected default flag action allow, got %q", filter.FlagAction)
	}
	if len(filter.TrustedNumbers) != 0 {
		t.Fatalf("expected no default trusted numbers, got %v", filter.TrustedNumbers)
	}

	store := cfg.GetStore()
	if store.Type != "sqlite" {
		t.Fatalf("expected default store type sqlite, got %q", store.Type)
	}

	handoff := cfg.GetHandoff()
	if handoff.MaxText != 8000 {
		t.Fatalf("expected default max text 8000, got %d", handoff.MaxText)
	}
	maxAge, err := time.ParseDuration(handoff.MaxAge)
	if err != nil {
		t.Fatalf("default handoff max_age does not parse: %v", err)
	}
	if maxAge != 5*time.Minute {
		t.Fatalf("expected default max age 5m, got %v", maxAge)
	}

	analyzer := cfg.GetAnalyzer()
	if analyzer.Provider != "remote" {
		t.Fatalf("expected default provider remote, got %q", analyzer.Provider)
	}
}

func TestGetDuration(t *testing.T) {
	cfg := newDefaultConfig()

	d, err := cfg.GetDuration("store.cleanup_frequency")
	if err != nil {
		t.Fatalf("default cleanup frequency does not parse: %v", err)
	}
	if d != time.Hour {
		t.Fatalf("expected 1h, got %v", d)
	}

	cfg.GetViper().Set("store.cleanup_frequency", "not-a-duration")
	if _, err := cfg.GetDuration("store.cleanup_frequency"); err == nil {
		t.Fatalf("expected error for malformed duration")
	}
}

func TestGetCategoryRulesDefault(t *testing.T) {
	cfg := newDefaultConfig()

	rules, err := cfg.GetCategoryRules()
	if err != nil {
		t.Fatalf("failed to load default rules: %v", err)
	}
	if len(rules) != 6 {
		t.Fatalf("expected 6 built-in categories, got %d", len(rules))
	}
	for _, rule := range rules {
		if rule.Name == "" || rule.Weight <= 0 || len(rule.Substrings) == 0 {
			t.Fatalf("malformed built-in rule: %+v", rule)
		}
	}
}

func TestGetCategoryRulesOverride(t *testing.T) {
	v := NewEmptyViper()
	v.Set("filter.categories", []map[string]interface{}{
		{
			"name":       "custom",
			"weight":     0.5,
			"substrings": []string{"magic phrase"},
		},
	})
	cfg := NewFromViper(v)

	rules, err := cfg.GetCategoryRules()
	if err != nil {
		t.Fatalf("failed to load overridden rules: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected override to replace the built-in table, got %d rules", len(rules))
	}
	if rules[0].Name != "custom" || rules[0].Weight != 0.5 {
		t.Fatalf("override mangled: %+v", rules[0])
	}
}

func TestFlagOverrides(t *testing.T) {
	v := NewEmptyViper()
	v.Set("filter.junk_threshold", 0.9)
	v.Set("filter.trusted_numbers", []string{"1112223333"})
	cfg := NewFromViper(v)

	filter := cfg.GetFilter()
	if filter.JunkThreshold != 0.9 {
		t.Fatalf("expected overridden threshold 0.9, got %v", filter.JunkThreshold)
	}
	if len(filter.TrustedNumbers) != 1 || filter.TrustedNumbers[0] != "1112223333" {
		t.Fatalf("trusted numbers override mangled: %v", filter.TrustedNumbers)
	}
	// Untouched keys keep their defaults.
	if filter.FlagThreshold != 0.4 {
		t.Fatalf("unrelated key lost its default: %v", filter.FlagThreshold)
	}
}
