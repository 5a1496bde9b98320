package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/faultdrill/internal/events"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/store"
	"github.com/abhisek/faultdrill/internal/timer"
)

type recordingPublisher struct {
	types []string
}

func (p *recordingPublisher) Publish(_ context.Context, eventType string, _ any) error {
	p.types = append(p.types, eventType)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

type fixture struct {
	srv     *Server
	h       http.Handler
	repo    *history.Repo
	pub     *recordingPublisher
	tickers []*timer.Manual
	bank    *scenario.Bank
	// skew is added to the wall clock the server sees.
	skew time.Duration
}

func newFixture(t *testing.T, sup scenario.Supplier) *fixture {
	t.Helper()
	bank, err := scenario.DefaultBank()
	require.NoError(t, err)
	if sup == nil {
		sup = scenario.StaticSupplier(bank.All()[:7])
	}
	f := &fixture{
		repo: history.NewRepo(store.NewMemory(), nil),
		pub:  &recordingPublisher{},
		bank: bank,
	}
	f.srv = NewServer(Options{
		Supplier:  sup,
		History:   f.repo,
		Publisher: f.pub,
		NewTicker: func() timer.Ticker {
			m := &timer.Manual{}
			f.tickers = append(f.tickers, m)
			return m
		},
		CORSOrigins: []string{"http://localhost:3000"},
		FinishedTTL: 10 * time.Minute,
		Now:         func() time.Time { return time.Now().Add(f.skew) },
	})
	f.h = f.srv.Handler()
	t.Cleanup(f.srv.Close)
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func (f *fixture) start(t *testing.T, mode string) SessionView {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions", map[string]string{"mode": mode})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[SessionView](t, rec)
}

func (f *fixture) event(t *testing.T, id string, ev eventReq) SessionView {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/sessions/"+id+"/events", ev)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	return decode[SessionView](t, rec)
}

// play takes the first two tests of the active exercise and submits either
// the correct option or a wrong one.
func (f *fixture) play(t *testing.T, v SessionView, correct bool) SessionView {
	t.Helper()
	require.NotNil(t, v.Scenario)
	var stubs []TestStub
	for _, tp := range v.Scenario.TestPoints {
		stubs = append(stubs, tp.Tests...)
	}
	require.GreaterOrEqual(t, len(stubs), 2)
	for _, st := range stubs[:2] {
		f.event(t, v.ID, eventReq{Type: "set_mode", Mode: st.Mode})
		f.event(t, v.ID, eventReq{Type: "record_reading", ReadingID: st.ID})
	}
	v = f.event(t, v.ID, eventReq{Type: "ready"})
	require.Equal(t, "diagnosing", v.Phase)

	scn, ok := f.bank.Get(v.Scenario.ID)
	require.True(t, ok)
	opt, _ := scn.CorrectOption()
	choice := opt.ID
	if !correct {
		choice = "no-such-option"
	}
	v = f.event(t, v.ID, eventReq{Type: "submit", OptionID: choice})
	require.Equal(t, "feedback", v.Phase)
	require.NotNil(t, v.Outcome)
	assert.Equal(t, correct, v.Outcome.Correct)
	assert.Equal(t, opt.ID, v.Outcome.CorrectOption)
	return f.event(t, v.ID, eventReq{Type: "next"})
}

func TestHealthz(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestCreateSession(t *testing.T) {
	f := newFixture(t, nil)
	v := f.start(t, "exam")

	assert.NotEmpty(t, v.ID)
	assert.Equal(t, "testing", v.Phase)
	assert.Equal(t, 1, v.Exercise)
	assert.Equal(t, 7, v.Total)
	assert.Equal(t, "continuity", v.Instrument)
	assert.Equal(t, timer.ExamSeconds, v.Remaining)
	assert.True(t, v.TimerActive)
	assert.Empty(t, v.Performed)
	require.Len(t, f.tickers, 1)
	assert.True(t, f.tickers[0].Running())

	rec := f.do(t, http.MethodGet, "/api/sessions/"+v.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, v.ID, decode[SessionView](t, rec).ID)
}

func TestCreateSessionErrors(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/api/sessions", map[string]string{"mode": "marathon"}).Code)

	short := newFixture(t, scenario.StaticSupplier(nil))
	rec := short.do(t, http.MethodPost, "/api/sessions", map[string]string{"mode": "practice"})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "error")
}

func TestUnknownSession(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/sessions/nope", nil).Code)
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/api/sessions/nope/events", eventReq{Type: "hint"}).Code)
}

func TestEvents(t *testing.T) {
	f := newFixture(t, nil)
	v := f.start(t, "guided")
	assert.Contains(t, v.Tip, "Start at the origin")

	// Readiness needs two tests; the refused transition still answers 200.
	v = f.event(t, v.ID, eventReq{Type: "ready"})
	assert.Equal(t, "testing", v.Phase)

	v = f.event(t, v.ID, eventReq{Type: "hint"})
	assert.Equal(t, 1, v.HintLevel)
	assert.Equal(t, "-1 mark", v.HintPenalty)
	assert.NotEmpty(t, v.Hint)

	rec := f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/events", eventReq{Type: "teleport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	rec = f.do(t, http.MethodPost, "/api/sessions/"+v.ID+"/events", eventReq{Type: "set_mode", Mode: "voltage"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	stub := v.Scenario.TestPoints[0].Tests[0]
	f.event(t, v.ID, eventReq{Type: "set_mode", Mode: stub.Mode})
	v = f.event(t, v.ID, eventReq{Type: "record_reading", ReadingID: stub.ID})
	require.Len(t, v.Performed, 1)
	require.NotNil(t, v.Displayed)
	assert.Equal(t, stub.ID, v.Displayed.ID)
	assert.NotEmpty(t, v.Displayed.Value)

	v = f.event(t, v.ID, eventReq{Type: "reset"})
	assert.Equal(t, "intro", v.Phase)
	assert.Nil(t, v.Scenario)
}

func TestFullSessionRecordsHistory(t *testing.T) {
	f := newFixture(t, nil)
	v := f.start(t, "practice")
	for i := 0; i < 7; i++ {
		v = f.play(t, v, i < 5)
	}
	require.Equal(t, "results", v.Phase)
	require.NotNil(t, v.Record)
	assert.Equal(t, 71, v.Record.Score)
	assert.Equal(t, 5, v.Record.CorrectCount)

	rec := f.do(t, http.MethodGet, "/api/history", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	records := decode[[]history.SessionRecord](t, rec)
	require.Len(t, records, 1)
	assert.Equal(t, "practice", records[0].Mode)
	assert.Equal(t, []string{events.SessionCompleted}, f.pub.types)

	rec = f.do(t, http.MethodGet, "/api/analytics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var a struct {
		TotalSessions int  `json:"totalSessions"`
		AverageScore  int  `json:"averageScore"`
		ShowProgress  bool `json:"showProgress"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &a))
	assert.Equal(t, 1, a.TotalSessions)
	assert.Equal(t, 71, a.AverageScore)
	assert.False(t, a.ShowProgress)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/history", nil).Code)
	assert.Empty(t, f.repo.Load(context.Background()))
	assert.Equal(t, []string{events.SessionCompleted, events.HistoryCleared}, f.pub.types)
}

func TestExamExpiryOverHTTP(t *testing.T) {
	f := newFixture(t, nil)
	v := f.start(t, "exam")
	v = f.play(t, v, true)

	f.tickers[0].FireN(timer.ExamSeconds)

	rec := f.do(t, http.MethodGet, "/api/sessions/"+v.ID, nil)
	v = decode[SessionView](t, rec)
	assert.Equal(t, "results", v.Phase)
	require.NotNil(t, v.Record)
	assert.Equal(t, 1, v.Record.CorrectCount)
	assert.Equal(t, timer.ExamSeconds, v.Record.TimeUsedSeconds)
	assert.False(t, f.tickers[0].Running())
}

func TestDeleteSessionStopsTimer(t *testing.T) {
	f := newFixture(t, nil)
	v := f.start(t, "exam")
	require.True(t, f.tickers[0].Running())

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/api/sessions/"+v.ID, nil).Code)
	assert.False(t, f.tickers[0].Running())
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/sessions/"+v.ID, nil).Code)
}

func TestFinishedSessionsAreEvicted(t *testing.T) {
	f := newFixture(t, nil)
	done := f.start(t, "practice")
	for i := 0; i < 7; i++ {
		done = f.play(t, done, true)
	}
	require.Equal(t, "results", done.Phase)

	reset := f.start(t, "practice")
	for i := 0; i < 7; i++ {
		reset = f.play(t, reset, false)
	}
	require.Equal(t, "results", reset.Phase)
	assert.Equal(t, "intro", f.event(t, reset.ID, eventReq{Type: "reset"}).Phase)

	live := f.start(t, "guided")
	assert.Equal(t, 3, f.srv.Len())

	rec := f.do(t, http.MethodGet, "/api/sessions/"+done.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "results", decode[SessionView](t, rec).Phase)

	f.skew = 11 * time.Minute
	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodGet, "/api/sessions/"+done.ID, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/sessions/"+reset.ID, nil).Code)
	assert.Equal(t, http.StatusOK, f.do(t, http.MethodGet, "/api/sessions/"+live.ID, nil).Code)
	assert.Equal(t, 2, f.srv.Len())
}

func TestCORS(t *testing.T) {
	f := newFixture(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	rec := httptest.NewRecorder()
	f.h.ServeHTTP(rec, req)
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- f.srv.ListenAndServe(ctx, "127.0.0.1:0") }()
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
}
