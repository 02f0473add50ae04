package llm

import "strings"

// Price is the list price of a model in USD per million tokens.
type Price struct {
	Input  float64
	Output float64
}

// Estimate returns the USD cost of usage at p.
func (p Price) Estimate(u Usage) float64 {
	return (float64(u.InputTokens)*p.Input + float64(u.OutputTokens)*p.Output) / 1e6
}

// prices covers the models nexus defaults to and their usual alternatives.
var prices = map[string]Price{
	"gemini-2.5-flash":      {Input: 0.30, Output: 2.50},
	"gemini-2.5-flash-lite": {Input: 0.10, Output: 0.40},
	"gemini-2.5-pro":        {Input: 1.25, Output: 10},
	"gemini-2.0-flash":      {Input: 0.10, Output: 0.40},
	"claude-haiku-4-5":      {Input: 1, Output: 5},
	"claude-sonnet-4-5":     {Input: 3, Output: 15},
	"claude-sonnet-4-0":     {Input: 3, Output: 15},
	"gpt-4.1":               {Input: 2, Output: 8},
	"gpt-4.1-mini":          {Input: 0.40, Output: 1.60},
	"gpt-4.1-nano":          {Input: 0.10, Output: 0.40},
	"gpt-4o-mini":           {Input: 0.15, Output: 0.60},
}

// PriceOf returns the price of model. Served model ids often carry a
// "models/" prefix or a dated suffix ("claude-haiku-4-5-20251001"); the
// longest known name the id starts with wins.
func PriceOf(model string) (Price, bool) {
	id := strings.TrimPrefix(model, "models/")
	if p, ok := prices[id]; ok {
		return p, true
	}
	best := ""
	for name := range prices {
		if strings.HasPrefix(id, name+"-") && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return Price{}, false
	}
	return prices[best], true
}
