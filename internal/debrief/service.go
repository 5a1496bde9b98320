package debrief

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/llm"
)

// ErrDisabled is returned when no LLM provider is configured.
var ErrDisabled = errors.New("debrief disabled: no LLM provider configured")

// Service generates session debriefs, synchronously or in the background.
type Service struct {
	provider llm.Provider
	cfg      Config

	mu      sync.Mutex
	seq     uint64
	pending *Debrief
	err     error
	ready   bool
}

// NewService creates a debrief service. A nil provider yields a service
// whose calls fail with ErrDisabled.
func NewService(provider llm.Provider, cfg Config) *Service {
	return &Service{provider: provider, cfg: cfg}
}

// Enabled reports whether a provider is configured.
func (s *Service) Enabled() bool {
	return s != nil && s.provider != nil
}

// Generate produces a debrief for rec. a is the analytics over the stored
// history, rec included.
func (s *Service) Generate(ctx context.Context, rec history.SessionRecord, a history.Analytics) (*Debrief, error) {
	if !s.Enabled() {
		return nil, ErrDisabled
	}
	ctx = llm.WithPurpose(ctx, "debrief")

	req := llm.Request{
		System:      systemPrompt,
		Prompt:      buildUserMessage(rec, a),
		Schema:      Schema,
		MaxTokens:   s.cfg.MaxTokens,
		Temperature: s.cfg.Temperature,
	}

	resp, err := s.provider.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("debrief generation: %w", err)
	}

	var out Debrief
	if err := json.Unmarshal(resp.Content, &out); err != nil {
		return nil, fmt.Errorf("parse debrief response: %w", err)
	}
	if out.Headline == "" {
		return nil, errors.New("parse debrief response: empty headline")
	}
	return &out, nil
}

// Request starts generation in the background. Each call supersedes the
// previous one: a result from an older request that finishes later is
// dropped, and an unconsumed older result is discarded.
func (s *Service) Request(ctx context.Context, rec history.SessionRecord, a history.Analytics) {
	s.mu.Lock()
	s.seq++
	seq := s.seq
	s.pending, s.err, s.ready = nil, nil, false
	s.mu.Unlock()

	go func() {
		d, err := s.Generate(ctx, rec, a)
		s.mu.Lock()
		defer s.mu.Unlock()
		if seq != s.seq {
			return
		}
		s.pending = d
		s.err = err
		s.ready = true
	}()
}

// Result is the outcome of a background request.
type Result struct {
	Debrief *Debrief
	Err     error
}

// Consume returns the background result once it is ready, or false while
// generation is still running. After consumption the slot is cleared.
func (s *Service) Consume() (Result, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ready {
		return Result{}, false
	}
	r := Result{Debrief: s.pending, Err: s.err}
	s.pending = nil
	s.err = nil
	s.ready = false
	return r, true
}
