package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Cost returns the USD cost of one request.
func (c ModelCost) Cost(inputTokens, outputTokens int) float64 {
	return (float64(inputTokens)*c.InputPerMTok + float64(outputTokens)*c.OutputPerMTok) / 1e6
}

// LookupCost prices a model ID. Dated snapshots ("claude-haiku-4-5-20251001")
// and OpenRouter slugs ("openai/gpt-4o-mini") resolve to the longest
// matching base name. Returns nil for unknown models.
func LookupCost(model string) *ModelCost {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	best := ""
	for name := range modelCosts {
		if strings.HasPrefix(model, name) && len(name) > len(best) {
			best = name
		}
	}
	if best == "" {
		return nil
	}
	c := modelCosts[best]
	return &c
}

// Published list prices, 2026-02. Only models worth pointing search at.
var modelCosts = map[string]ModelCost{
	"claude-haiku-4-5":  {1, 5},
	"claude-3-5-haiku":  {0.8, 4},
	"claude-sonnet-4-5": {3, 15},
	"claude-sonnet-4":   {3, 15},
	"claude-opus-4-5":   {5, 25},

	"gpt-4o-mini":  {0.15, 0.6},
	"gpt-4o":       {2.5, 10},
	"gpt-4.1-nano": {0.1, 0.4},
	"gpt-4.1-mini": {0.4, 1.6},
	"gpt-4.1":      {2, 8},
	"gpt-5-nano":   {0.05, 0.4},
	"gpt-5-mini":   {0.25, 2},
	"gpt-5":        {1.25, 10},

	"gemini-2.0-flash-lite": {0.075, 0.3},
	"gemini-2.0-flash":      {0.1, 0.4},
	"gemini-2.5-flash-lite": {0.1, 0.4},
	"gemini-2.5-flash":      {0.3, 2.5},
	"gemini-2.5-pro":        {1.25, 10},
}
