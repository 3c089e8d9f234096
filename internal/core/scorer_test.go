package core

import (
	"testing"
)

func newDefaultScorer() *PatternScorer {
	return NewPatternScorer(DefaultCategoryRules())
}

func TestScoreDeterminism(t *testing.T) {
	scorer := newDefaultScorer()
	inputs := []string{
		"",
		"hello there",
		"URGENT: wire transfer needed immediately",
		"you won a prize! claim your free gift: bit.ly/xyz",
	}

	for _, input := range inputs {
		first, _ := scorer.Score(input)
		second, _ := scorer.Score(input)
		if first != second {
			t.Fatalf("score not deterministic for %q: %v vs %v", input, first, second)
		}
	}
}

func TestScoreClamping(t *testing.T) {
	scorer := newDefaultScorer()
	inputs := []string{
		"",
		"plain message",
		"urgent urgent urgent wire transfer bitcoin gift card arrested warrant lawsuit irs you won prize lottery click here verify your http:// amazon paypal usps",
	}

	for _, input := range inputs {
		score, _ := scorer.Score(input)
		if score < 0.0 || score > 1.0 {
			t.Fatalf("score out of bounds for %q: %v", input, score)
		}
	}
}

func TestScoreEmptyText(t *testing.T) {
	scorer := newDefaultScorer()
	score, categories := scorer.Score("")
	if score != 0.0 {
		t.Fatalf("expected 0.0 for empty text, got %v", score)
	}
	if len(categories) != 0 {
		t.Fatalf("expected no categories for empty text, got %v", categories)
	}
}

func TestScoreCaseInsensitive(t *testing.T) {
	scorer := newDefaultScorer()
	lower, _ := scorer.Score("urgent wire transfer")
	upper, _ := scorer.Score("URGENT WIRE TRANSFER")
	if lower != upper {
		t.Fatalf("case sensitivity leaked into scoring: %v vs %v", lower, upper)
	}
	if lower == 0.0 {
		t.Fatalf("expected non-zero score")
	}
}

func TestScoreRepetitionAddsWeight(t *testing.T) {
	scorer := newDefaultScorer()
	once, _ := scorer.Score("urgent")
	thrice, _ := scorer.Score("urgent urgent urgent")

	if once != 0.15 {
		t.Fatalf("expected single urgency hit to score 0.15, got %v", once)
	}
	if thrice != 0.45 {
		t.Fatalf("expected three urgency hits to score 0.45, got %v", thrice)
	}
}

func TestScoreKnownScamMessage(t *testing.T) {
	scorer := newDefaultScorer()
	body := "URGENT: your account is suspended, click here to verify your bank account"

	score, categories := scorer.Score(body)
	if score != 1.0 {
		t.Fatalf("expected clamped score 1.0, got %v", score)
	}

	want := map[string]bool{"urgency": true, "financial": true, "threat": true, "link": true}
	if len(categories) != len(want) {
		t.Fatalf("unexpected categories: %v", categories)
	}
	for _, c := range categories {
		if !want[c] {
			t.Fatalf("unexpected category %q in %v", c, categories)
		}
	}
}

func TestScoreCustomRules(t *testing.T) {
	scorer := NewPatternScorer([]CategoryRule{
		{Name: "test", Weight: 0.5, Substrings: []string{"Magic Word"}},
	})

	score, categories := scorer.Score("the magic word appears twice: magic word")
	if score != 1.0 {
		t.Fatalf("expected 1.0 (two hits at 0.5), got %v", score)
	}
	if len(categories) != 1 || categories[0] != "test" {
		t.Fatalf("unexpected categories: %v", categories)
	}
}
