package debrief

import (
	"encoding/json"

	"github.com/abhisek/faultdrill/internal/llm"
)

// Schema is the structured output a provider must return for a debrief.
var Schema = llm.MustSchema(
	"session-debrief",
	"Coaching debrief for a fault-finding practice session",
	map[string]any{
		"type": "object",
		"properties": map[string]any{
			"headline": map[string]any{
				"type":        "string",
				"description": "One sentence verdict on the session (8-20 words)",
			},
			"strengths": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 things the candidate did well",
			},
			"focus": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 circuit types or habits to work on",
			},
			"next_steps": map[string]any{
				"type":        "array",
				"items":       map[string]any{"type": "string"},
				"description": "1-3 concrete practice actions",
			},
		},
		"required":             []any{"headline", "strengths", "focus", "next_steps"},
		"additionalProperties": false,
	},
	json.RawMessage(`{
		"headline": "Offline debrief: review the exercises you missed before your next session.",
		"strengths": ["Completed the session"],
		"focus": ["The circuit types marked wrong above"],
		"next_steps": ["Run a guided session and read each tip before testing"]
	}`),
)
