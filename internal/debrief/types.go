// Package debrief asks an LLM for a short coaching debrief of a finished
// session.
package debrief

// Debrief is the coach's written feedback on one session.
type Debrief struct {
	Headline  string   `json:"headline"`
	Strengths []string `json:"strengths"`
	Focus     []string `json:"focus"`
	NextSteps []string `json:"next_steps"`
}

// Config holds debrief generation settings.
type Config struct {
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns sensible defaults for debrief generation.
func DefaultConfig() Config {
	return Config{
		MaxTokens:   512,
		Temperature: 0.4,
	}
}
