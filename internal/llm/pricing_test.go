package llm

import (
	"math"
	"testing"
)

func TestPriceOf(t *testing.T) {
	tests := []struct {
		model string
		want  Price
		ok    bool
	}{
		{"gemini-2.5-flash", Price{0.30, 2.50}, true},
		{"models/gemini-2.5-flash", Price{0.30, 2.50}, true},
		{"gemini-2.5-flash-lite-preview-09-2025", Price{0.10, 0.40}, true},
		{"claude-haiku-4-5-20251001", Price{1, 5}, true},
		{"gpt-4.1-nano-2025-04-14", Price{0.10, 0.40}, true},
		{"gemini-2.5", Price{}, false},
		{"mock", Price{}, false},
	}
	for _, tt := range tests {
		got, ok := PriceOf(tt.model)
		if ok != tt.ok || got != tt.want {
			t.Errorf("PriceOf(%q) = %v, %v; want %v, %v", tt.model, got, ok, tt.want, tt.ok)
		}
	}
}

func TestPriceEstimate(t *testing.T) {
	p := Price{Input: 0.30, Output: 2.50}
	got := p.Estimate(Usage{InputTokens: 1_000_000, OutputTokens: 200_000})
	if math.Abs(got-0.80) > 1e-9 {
		t.Errorf("Estimate = %f, want 0.80", got)
	}
}
