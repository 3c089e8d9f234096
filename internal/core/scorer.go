package core

import (
	"math"
	"strings"
)

// CategoryRule maps one scam category to the substrings that indicate
// it and the weight each occurrence contributes to the risk score.
type CategoryRule struct {
	Name       string   `mapstructure:"name"`
	Weight     float64  `mapstructure:"weight"`
	Substrings []string `mapstructure:"substrings"`
}

// PatternScorer computes a bounded heuristic risk score from message
// text using pure substring containment. It performs no I/O and holds
// no mutable state, so it is safe to share across invocations of the
// host filter extension and always completes in O(n*k) for n bytes of
// text and k configured substrings.
type PatternScorer struct {
	rules []CategoryRule
}

// NewPatternScorer creates a scorer from the given category table.
// Substrings are lower-cased once up front; matching is case-insensitive.
func NewPatternScorer(rules []CategoryRule) *PatternScorer {
	prepared := make([]CategoryRule, len(rules))
	for i, rule := range rules {
		subs := make([]string, len(rule.Substrings))
		for j, s := range rule.Substrings {
			subs[j] = strings.ToLower(s)
		}
		prepared[i] = CategoryRule{Name: rule.Name, Weight: rule.Weight, Substrings: subs}
	}
	return &PatternScorer{rules: prepared}
}

// Score returns the clamped risk score for text and the names of the
// categories that matched. Every occurrence of a substring contributes
// its category weight: short messages with high-signal repetition score
// higher. Identical input always yields an identical result.
//
// Weights are accumulated in integer basis points so that sums land
// exactly on threshold values instead of drifting with float addition.
func (s *PatternScorer) Score(text string) (float64, []string) {
	if text == "" {
		return 0.0, nil
	}

	lowered := strings.ToLower(text)
	totalBp := 0
	var matched []string

	for _, rule := range s.rules {
		hits := 0
		for _, sub := range rule.Substrings {
			if sub == "" {
				continue
			}
			hits += strings.Count(lowered, sub)
		}
		if hits > 0 {
			totalBp += hits * int(math.Round(rule.Weight*10000))
			matched = append(matched, rule.Name)
		}
	}

	if totalBp > 10000 {
		totalBp = 10000
	}
	return float64(totalBp) / 10000, matched
}

// DefaultCategoryRules is the reference category table. Weights are a
// tunable policy: deployments override them via configuration without
// touching scoring logic.
func DefaultCategoryRules() []CategoryRule {
	return []CategoryRule{
		{
			Name:   "urgency",
			Weight: 0.15,
			Substrings: []string{
				"urgent",
				"act now",
				"immediately",
				"right away",
				"expires today",
				"final notice",
				"last chance",
				"within 24 hours",
			},
		},
		{
			Name:   "financial",
			Weight: 0.20,
			Substrings: []string{
				"wire transfer",
				"bank account",
				"gift card",
				"bitcoin",
				"western union",
				"send money",
				"routing number",
				"cashapp",
				"zelle",
				"moneygram",
			},
		},
		{
			Name:   "threat",
			Weight: 0.25,
			Substrings: []string{
				"arrested",
				"suspended",
				"lawsuit",
				"warrant",
				"police",
				"irs",
				"legal action",
				"deactivated",
				"unauthorized access",
			},
		},
		{
			Name:   "prize",
			Weight: 0.15,
			Substrings: []string{
				"you won",
				"you've won",
				"winner",
				"congratulations",
				"prize",
				"claim your",
				"free gift",
				"lottery",
				"sweepstakes",
			},
		},
		{
			Name:   "link",
			Weight: 0.20,
			Substrings: []string{
				"click here",
				"verify your",
				"http://",
				"bit.ly",
				"tinyurl",
				"log in here",
				"update your info",
			},
		},
		{
			Name:   "impersonation",
			Weight: 0.15,
			Substrings: []string{
				"amazon",
				"paypal",
				"apple support",
				"microsoft",
				"social security",
				"usps",
				"fedex",
				"netflix",
				"customs fee",
			},
		},
	}
}
