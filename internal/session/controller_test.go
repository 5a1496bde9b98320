package session

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/store"
	"github.com/abhisek/faultdrill/internal/timer"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type failingRecorder struct{}

func (failingRecorder) Append(context.Context, history.SessionRecord) error {
	return errors.New("disk full")
}

type harness struct {
	ctrl   *Controller
	ticker *timer.Manual
	clock  *fakeClock
	repo   *history.Repo
	sink   *feedback.Recorder
	closed []history.SessionRecord
}

func newHarness(t *testing.T, sup scenario.Supplier) *harness {
	t.Helper()
	h := &harness{
		ticker: &timer.Manual{},
		clock:  &fakeClock{now: t0},
		repo:   history.NewRepo(store.NewMemory(), nil),
		sink:   &feedback.Recorder{},
	}
	if sup == nil {
		sup = scenario.StaticSupplier(testScenarios(7))
	}
	h.ctrl = NewController(Options{
		Supplier:  sup,
		Ticker:    h.ticker,
		Recorder:  h.repo,
		Sink:      h.sink,
		Scheduler: feedback.Immediate{},
		Now:       h.clock.Now,
		OnClose: []func(history.SessionRecord){
			func(rec history.SessionRecord) { h.closed = append(h.closed, rec) },
		},
	})
	t.Cleanup(h.ctrl.Close)
	return h
}

// answer plays the active exercise: two readings, then the given option.
func (h *harness) answer(t *testing.T, optionID string) {
	t.Helper()
	ex, ok := h.ctrl.ActiveExercise()
	require.True(t, ok)
	id := ex.Scenario.ID
	h.ctrl.RecordReading(id + "-c1")
	h.ctrl.RecordReading(id + "-c2")
	h.clock.Advance(30 * time.Second)
	s := h.ctrl.ReadyToDiagnose()
	require.Equal(t, PhaseDiagnosing, s.Phase)
	s = h.ctrl.Submit(optionID)
	require.Equal(t, PhaseFeedback, s.Phase)
}

func TestPracticeSessionFiveOfSeven(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Start(ModePractice))

	for i := 0; i < 7; i++ {
		opt := "a"
		if i >= 5 {
			opt = "b"
		}
		h.answer(t, opt)
		h.ctrl.Next()
	}

	s := h.ctrl.State()
	require.Equal(t, PhaseResults, s.Phase)
	require.NotNil(t, s.Record)
	rec := *s.Record
	assert.Equal(t, 5, rec.CorrectCount)
	assert.Equal(t, 7, rec.TotalCount)
	assert.Equal(t, 71, rec.Score)
	assert.Equal(t, "practice", rec.Mode)
	assert.Equal(t, 7*30, rec.TimeUsedSeconds)
	for _, ex := range rec.PerExercise {
		assert.Equal(t, 0, ex.HintsUsed)
		assert.Equal(t, 2, ex.TestsPerformedCount)
		assert.Equal(t, 30, ex.TimeTakenSeconds)
	}

	records := h.repo.Load(context.Background())
	require.Len(t, records, 1)
	a := history.Aggregate(records)
	assert.Empty(t, a.Weakest)
	assert.Empty(t, a.Strongest)
	assert.False(t, a.ShowProgress())

	assert.Len(t, h.closed, 1)
	assert.Equal(t, 0, h.ticker.Starts(), "practice must never start the countdown")
}

func TestExamExpiryAfterThreeAnswered(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Start(ModeExam))
	require.True(t, h.ticker.Running())

	h.answer(t, "a")
	h.ctrl.Next()
	h.answer(t, "b")
	h.ctrl.Next()
	h.answer(t, "a")
	h.ctrl.Next()
	h.ctrl.RecordReading("s3-c1")

	ran := h.ticker.FireN(timer.ExamSeconds + 10)
	assert.Equal(t, timer.ExamSeconds, ran, "ticker must stop on expiry")

	s := h.ctrl.State()
	require.Equal(t, PhaseResults, s.Phase)
	require.NotNil(t, s.Record)
	assert.Equal(t, 7, s.Record.TotalCount)
	assert.Equal(t, 2, s.Record.CorrectCount)
	assert.Equal(t, timer.ExamSeconds, s.Record.TimeUsedSeconds)
	assert.Equal(t, 29, s.Record.Score)

	// The unanswered exercise in progress counts as incorrect and keeps its
	// recorded reading; exercises never reached report no time.
	assert.False(t, s.Record.PerExercise[3].Correct)
	assert.Equal(t, 1, s.Record.PerExercise[3].TestsPerformedCount)
	assert.Equal(t, 0, s.Record.PerExercise[6].TimeTakenSeconds)

	assert.False(t, h.ticker.Running())
	assert.Len(t, h.repo.Load(context.Background()), 1)
	assert.Len(t, h.closed, 1)

	// Stale ticks and events after results change nothing.
	h.ctrl.Dispatch(Tick{At: h.clock.Now()})
	h.ctrl.Next()
	assert.Len(t, h.repo.Load(context.Background()), 1)
}

func TestExamExpiryWhileDiagnosingAndInFeedback(t *testing.T) {
	for _, phase := range []Phase{PhaseDiagnosing, PhaseFeedback} {
		h := newHarness(t, nil)
		require.NoError(t, h.ctrl.Start(ModeExam))
		h.ctrl.RecordReading("s0-c1")
		h.ctrl.RecordReading("s0-c2")
		h.ctrl.ReadyToDiagnose()
		if phase == PhaseFeedback {
			h.ctrl.Submit("a")
		}
		require.Equal(t, phase, h.ctrl.State().Phase)

		h.ticker.FireN(timer.ExamSeconds)
		s := h.ctrl.State()
		assert.Equal(t, PhaseResults, s.Phase, "expiry from %v", phase)
		assert.Equal(t, timer.ExamSeconds, s.Record.TimeUsedSeconds)
	}
}

func TestStartRefusesBadSupplier(t *testing.T) {
	dup := testScenarios(7)
	dup[3] = dup[1]

	for name, sup := range map[string]scenario.Supplier{
		"short":      scenario.StaticSupplier(testScenarios(5)),
		"duplicates": scenario.StaticSupplier(dup),
	} {
		h := newHarness(t, sup)
		err := h.ctrl.Start(ModePractice)
		assert.ErrorIs(t, err, scenario.ErrSupplyContract, name)
		assert.Equal(t, PhaseIntro, h.ctrl.State().Phase, name)
	}

	h := newHarness(t, nil)
	assert.Error(t, h.ctrl.Start("marathon"))
}

func TestRestartStopsCountdown(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Start(ModeExam))
	h.ticker.FireN(10)
	require.NoError(t, h.ctrl.Start(ModePractice))

	assert.False(t, h.ticker.Running())
	s := h.ctrl.State()
	assert.False(t, s.Timer.Active)
	assert.Equal(t, timer.ExamSeconds, s.Timer.Remaining)

	require.NoError(t, h.ctrl.Start(ModeExam))
	assert.Equal(t, timer.ExamSeconds, h.ctrl.State().Timer.Remaining)
	h.ctrl.Reset()
	assert.False(t, h.ticker.Running())
	assert.Empty(t, h.repo.Load(context.Background()))
}

func TestPersistenceFailureStillShowsResults(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	ctrl := NewController(Options{
		Supplier:  scenario.StaticSupplier(testScenarios(7)),
		Ticker:    &timer.Manual{},
		Recorder:  failingRecorder{},
		Scheduler: feedback.Immediate{},
		Logger:    zap.New(core),
	})
	require.NoError(t, ctrl.Start(ModePractice))
	for i := 0; i < 7; i++ {
		ex, _ := ctrl.ActiveExercise()
		ctrl.RecordReading(ex.Scenario.ID + "-c1")
		ctrl.RecordReading(ex.Scenario.ID + "-c2")
		ctrl.ReadyToDiagnose()
		ctrl.Submit("a")
		ctrl.Next()
	}

	s := ctrl.State()
	assert.Equal(t, PhaseResults, s.Phase)
	require.NotNil(t, s.Record)
	assert.Equal(t, 100, s.Record.Score)
	assert.Equal(t, 1, logs.FilterMessage("session record not saved").Len())
}

func TestHistoryCappedAcrossSessions(t *testing.T) {
	h := newHarness(t, nil)
	for n := 0; n < history.MaxRecords+1; n++ {
		require.NoError(t, h.ctrl.Start(ModePractice))
		for i := 0; i < 7; i++ {
			h.answer(t, "a")
			h.ctrl.Next()
		}
	}
	assert.Len(t, h.repo.Load(context.Background()), history.MaxRecords)
	assert.Len(t, h.closed, history.MaxRecords+1)
}

func TestFeedbackCues(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Start(ModePractice))
	h.ctrl.RecordReading("s0-c2")

	want := []string{
		"sound:session_start",
		"haptic:medium",
		"haptic:light",
		"sound:probe_tap",
		"sound:continuity_beep",
		"sound:abnormal_alert",
	}
	assert.Equal(t, want, h.sink.Events())
}

func TestHintTextAndTip(t *testing.T) {
	h := newHarness(t, scenario.StaticSupplier(testScenarios(7)))
	assert.Empty(t, h.ctrl.HintText())
	_, ok := h.ctrl.Tip()
	assert.False(t, ok, "no tip before a session starts")

	require.NoError(t, h.ctrl.Start(ModeGuided))
	tip, ok := h.ctrl.Tip()
	assert.True(t, ok)
	assert.Contains(t, tip, "Start at the origin")

	h.ctrl.UseHint()
	assert.Contains(t, h.ctrl.HintText(), "Open Circuit")
	h.ctrl.UseHint()
	assert.Contains(t, h.ctrl.HintText(), "Accessory")

	h.ctrl.RecordReading("s0-c2")
	tip, _ = h.ctrl.Tip()
	assert.Contains(t, tip, "Confirm it at other locations")
}

func TestStateIsACopy(t *testing.T) {
	h := newHarness(t, nil)
	require.NoError(t, h.ctrl.Start(ModePractice))
	s := h.ctrl.RecordReading("s0-c1")
	s.Exercises[0].TestsPerformed[0] = "tampered"

	again := h.ctrl.State()
	assert.Equal(t, "s0-c1", again.Exercises[0].TestsPerformed[0])
}

func TestWallTickerDrivesCountdown(t *testing.T) {
	ctrl := NewController(Options{
		Supplier:  scenario.StaticSupplier(testScenarios(7)),
		Ticker:    timer.NewWallTicker(time.Millisecond),
		Scheduler: feedback.Immediate{},
	})
	defer ctrl.Close()
	require.NoError(t, ctrl.Start(ModeExam))

	require.Eventually(t, func() bool {
		return ctrl.State().Timer.Remaining < timer.ExamSeconds-3
	}, 2*time.Second, 5*time.Millisecond)
}
