package llm

import "strings"

// ModelCost is USD per million tokens.
type ModelCost struct {
	Input  float64
	Output float64
}

// Cost prices one request.
func (c ModelCost) Cost(u Usage) float64 {
	return (float64(u.InputTokens)*c.Input + float64(u.OutputTokens)*c.Output) / 1e6
}

// LookupCost prices the models the aliases resolve to. Dated snapshots
// match their family prefix, so "claude-haiku-4-5-20251001" and
// "claude-haiku-4-5" share a row. OpenRouter IDs carry a vendor prefix
// which is ignored.
func LookupCost(model string) (ModelCost, bool) {
	if i := strings.LastIndexByte(model, '/'); i >= 0 {
		model = model[i+1:]
	}
	for _, row := range modelCosts {
		if strings.HasPrefix(model, row.prefix) {
			return row.cost, true
		}
	}
	return ModelCost{}, false
}

// modelCosts is ordered longest prefix first within each family.
var modelCosts = []struct {
	prefix string
	cost   ModelCost
}{
	{"claude-haiku-4-5", ModelCost{1, 5}},
	{"claude-sonnet-4-5", ModelCost{3, 15}},
	{"gpt-4o-mini", ModelCost{0.15, 0.6}},
	{"gpt-4o", ModelCost{2.5, 10}},
	{"gemini-2.0-flash", ModelCost{0.1, 0.4}},
	{"gemini-2.5-pro", ModelCost{1.25, 10}},
}
