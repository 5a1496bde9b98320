package debrief

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/llm"
)

func validDebriefJSON() json.RawMessage {
	return json.RawMessage(`{
		"headline": "A solid pass with room to tighten up ring final testing.",
		"strengths": ["Methodical continuity testing from the origin"],
		"focus": ["Ring final insulation resistance"],
		"next_steps": ["Run two guided ring final exercises"]
	}`)
}

func testRecord() history.SessionRecord {
	return history.SessionRecord{
		Date:            time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC),
		Mode:            "exam",
		Score:           71,
		CorrectCount:    5,
		TotalCount:      7,
		TimeUsedSeconds: 1830,
		PerExercise: []history.ExerciseResult{
			{CircuitType: "ring_main", FaultType: "short_circuit", Correct: false, HintsUsed: 2, TestsPerformedCount: 4, TimeTakenSeconds: 300},
			{CircuitType: "lighting", FaultType: "open_circuit", Correct: true, TestsPerformedCount: 3, TimeTakenSeconds: 200},
		},
	}
}

func TestGenerate(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDebriefJSON()})
	svc := NewService(mock, DefaultConfig())

	records := []history.SessionRecord{testRecord(), testRecord()}
	d, err := svc.Generate(t.Context(), testRecord(), history.Aggregate(records))
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(d.Headline, "A solid pass") {
		t.Errorf("Headline = %q", d.Headline)
	}
	if len(d.NextSteps) != 1 {
		t.Errorf("NextSteps = %d, want 1", len(d.NextSteps))
	}

	if mock.CallCount() != 1 {
		t.Fatalf("calls = %d, want 1", mock.CallCount())
	}
	call := mock.Calls[0]
	if call.Request.Schema != Schema {
		t.Error("request does not carry the debrief schema")
	}
	if call.Purpose != "debrief" {
		t.Errorf("purpose = %q, want debrief", call.Purpose)
	}
	msg := call.Request.Prompt
	for _, want := range []string{"Score: 71% (5/7 correct, PASS)", "Ring Final", "Short Circuit", "Hints used: 2", "History: 2 sessions"} {
		if !strings.Contains(msg, want) {
			t.Errorf("prompt missing %q:\n%s", want, msg)
		}
	}
}

func TestGenerateSkipsHistoryForFirstSession(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDebriefJSON()})
	svc := NewService(mock, DefaultConfig())

	rec := testRecord()
	if _, err := svc.Generate(t.Context(), rec, history.Aggregate([]history.SessionRecord{rec})); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(mock.Calls[0].Request.Prompt, "History:") {
		t.Error("single-session prompt should not include history")
	}
}

func TestGenerateErrors(t *testing.T) {
	var nilSvc *Service
	if _, err := nilSvc.Generate(t.Context(), testRecord(), history.Analytics{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("nil service err = %v, want ErrDisabled", err)
	}
	if _, err := NewService(nil, DefaultConfig()).Generate(t.Context(), testRecord(), history.Analytics{}); !errors.Is(err, ErrDisabled) {
		t.Errorf("no provider err = %v, want ErrDisabled", err)
	}

	mock := llm.NewMockProvider(
		llm.MockResponse{Err: llm.Unavailable(errors.New("down"))},
		llm.MockResponse{Content: json.RawMessage(`not json`)},
		llm.MockResponse{Content: json.RawMessage(`{"headline":""}`)},
		llm.MockResponse{Content: json.RawMessage(`{"headline":"","strengths":[],"focus":[],"next_steps":[]}`)},
	)
	svc := NewService(mock, DefaultConfig())
	for i := 0; i < 4; i++ {
		if _, err := svc.Generate(t.Context(), testRecord(), history.Analytics{}); err == nil {
			t.Errorf("call %d: expected error", i)
		}
	}
}

func TestRequestConsume(t *testing.T) {
	mock := llm.NewMockProvider(llm.MockResponse{Content: validDebriefJSON()})
	svc := NewService(mock, DefaultConfig())

	if _, ok := svc.Consume(); ok {
		t.Fatal("Consume before Request should not be ready")
	}

	svc.Request(t.Context(), testRecord(), history.Analytics{})

	var res Result
	var ok bool
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok = svc.Consume(); ok {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if !ok {
		t.Fatal("expected debrief to be generated")
	}
	if res.Err != nil || res.Debrief == nil {
		t.Fatalf("result = %+v", res)
	}
	if _, ok := svc.Consume(); ok {
		t.Error("slot should be cleared after consumption")
	}
}

func TestGenerateOfflineUsesSchemaExample(t *testing.T) {
	svc := NewService(llm.NewMockProvider(), DefaultConfig())
	d, err := svc.Generate(t.Context(), testRecord(), history.Analytics{})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasPrefix(d.Headline, "Offline debrief") {
		t.Errorf("Headline = %q, want the schema example", d.Headline)
	}
}

// gatedProvider blocks calls whose prompt mentions "exam" until release is
// closed, so an older request can finish after a newer one.
type gatedProvider struct {
	release chan struct{}
}

func (g *gatedProvider) Name() string { return "gated" }

func (g *gatedProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	headline := "Practice debrief for the newer request."
	if strings.Contains(req.Prompt, "Mode: exam") {
		<-g.release
		headline = "Exam debrief for the older request."
	}
	body, _ := json.Marshal(Debrief{Headline: headline, Strengths: []string{}, Focus: []string{}, NextSteps: []string{}})
	return &llm.Response{Content: body, Model: "gated"}, nil
}

func TestRequestDropsSupersededResult(t *testing.T) {
	g := &gatedProvider{release: make(chan struct{})}
	svc := NewService(g, DefaultConfig())

	older := testRecord()
	svc.Request(t.Context(), older, history.Analytics{})

	newer := testRecord()
	newer.Mode = "practice"
	svc.Request(t.Context(), newer, history.Analytics{})

	res := waitForResult(t, svc)
	if res.Err != nil || !strings.HasPrefix(res.Debrief.Headline, "Practice") {
		t.Fatalf("first result = %+v, want the newer request", res)
	}

	close(g.release)
	time.Sleep(50 * time.Millisecond)
	if r, ok := svc.Consume(); ok {
		t.Errorf("superseded result surfaced: %+v", r.Debrief)
	}
}

func waitForResult(t *testing.T, svc *Service) Result {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if res, ok := svc.Consume(); ok {
			return res
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("no debrief result")
	return Result{}
}
