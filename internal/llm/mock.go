package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one queued reply. Err, when set, is returned instead.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Err     error
}

// MockCall is one recorded Generate call.
type MockCall struct {
	Purpose string
	Request Request
}

// MockProvider replays queued responses in order and records every call.
// Replies are validated against the request schema like a real backend's.
// With the queue empty it replies with the schema's Example, so the mock
// provider works offline for any caller whose schema carries one.
type MockProvider struct {
	mu        sync.Mutex
	responses []MockResponse
	Calls     []MockCall
}

// NewMockProvider queues responses.
func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{responses: responses}
}

func (m *MockProvider) Name() string { return "mock" }

func (m *MockProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Purpose: PurposeFrom(ctx), Request: req})

	var next MockResponse
	switch {
	case len(m.responses) > 0:
		next = m.responses[0]
		m.responses = m.responses[1:]
	case req.Schema != nil && req.Schema.Example != nil:
		next = MockResponse{Content: req.Schema.Example}
	default:
		return nil, Unavailable(nil)
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return finish(req, reply{text: string(next.Content), model: "mock", usage: next.Usage})
}

// CallCount returns the number of Generate calls so far.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
