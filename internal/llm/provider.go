// Package llm sends single-turn, schema-constrained prompts to a hosted
// model and returns the validated JSON. The debrief coach is its only
// caller.
package llm

import (
	"context"
	"encoding/json"
)

// Provider generates one structured reply per call.
type Provider interface {
	Generate(ctx context.Context, req Request) (*Response, error)

	// Name identifies the backend and model, e.g. "anthropic/claude-haiku-4-5".
	Name() string
}

// Request is a single-turn prompt.
type Request struct {
	System string
	Prompt string

	// Schema, when set, is sent to the backend as its structured output
	// format and the reply is validated against it.
	Schema *Schema

	MaxTokens   int
	Temperature float64
}

// Response is a validated reply.
type Response struct {
	Content json.RawMessage
	Usage   Usage

	// Model is the model that served the request as reported by the backend.
	Model string
}

// Usage is the token count of one request.
type Usage struct {
	InputTokens  int
	OutputTokens int
}

// reply is what a backend hands back before validation.
type reply struct {
	text      string
	model     string
	usage     Usage
	truncated bool
}

// finish turns a backend reply into a Response. Truncated replies and
// replies that do not match the schema are rejected.
func finish(req Request, r reply) (*Response, error) {
	content := json.RawMessage(r.text)
	if r.truncated {
		return nil, &Error{Kind: KindTruncated, Content: content}
	}
	if err := req.Schema.Validate(content); err != nil {
		return nil, err
	}
	return &Response{Content: content, Usage: r.usage, Model: r.model}, nil
}
