package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/hints"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/timer"
)

// Recorder persists closed session records.
type Recorder interface {
	Append(ctx context.Context, rec history.SessionRecord) error
}

// Options configures a Controller. Only Supplier is required.
type Options struct {
	// Supplier provides scenarios for each new session.
	Supplier scenario.Supplier

	// Ticker drives the exam countdown. Defaults to a one-second WallTicker.
	Ticker timer.Ticker

	// Recorder stores closed sessions (nil disables persistence).
	Recorder Recorder

	// Sink receives feedback cues. Defaults to feedback.Noop.
	Sink feedback.Sink

	// Scheduler runs delayed cues. Defaults to feedback.WallScheduler.
	Scheduler feedback.Scheduler

	// Logger for persistence failures. Defaults to a no-op logger.
	Logger *zap.Logger

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	// OnClose callbacks run after a closed session has been persisted.
	OnClose []func(history.SessionRecord)
}

// Controller owns one session's state and runs the reducer's effects.
// It is safe for concurrent use; the countdown ticks on its own goroutine.
type Controller struct {
	opts Options

	mu    sync.Mutex
	state State

	// gen identifies the current countdown schedule; ticks from an older
	// schedule are dropped.
	gen uint64
}

// NewController creates a Controller in the intro phase.
func NewController(opts Options) *Controller {
	if opts.Ticker == nil {
		opts.Ticker = timer.NewWallTicker(time.Second)
	}
	if opts.Sink == nil {
		opts.Sink = feedback.Noop{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = feedback.WallScheduler{}
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Controller{
		opts:  opts,
		state: State{Phase: PhaseIntro, Instrument: scenario.ModeContinuity},
	}
}

// Start requests scenarios and begins a new session in mode. It refuses to
// start when the supplier breaks its contract.
func (c *Controller) Start(mode Mode) error {
	if _, err := ParseMode(string(mode)); err != nil {
		return err
	}
	scenarios, err := c.opts.Supplier.Supply(scoring.TotalExercises)
	if err != nil {
		return fmt.Errorf("supply scenarios: %w", err)
	}
	if err := scenario.CheckSupply(scenarios, scoring.TotalExercises); err != nil {
		return err
	}
	c.Dispatch(Start{Mode: mode, Scenarios: scenarios, At: c.opts.Now()})
	return nil
}

// Dispatch applies ev and runs its effects. It returns a copy of the new
// state.
func (c *Controller) Dispatch(ev Event) State {
	return c.dispatch(ev, 0)
}

// dispatch runs ev. A non-zero gen drops the event unless it matches the
// current countdown schedule.
func (c *Controller) dispatch(ev Event, gen uint64) State {
	c.mu.Lock()
	if gen != 0 && gen != c.gen {
		snapshot := c.state.Clone()
		c.mu.Unlock()
		return snapshot
	}
	next, effects := Reduce(c.state, ev)
	c.state = next

	var deferred []Effect
	for _, e := range effects {
		switch e.(type) {
		case ArmTimer:
			c.gen++
			gen := c.gen
			c.opts.Ticker.Start(func() { c.tick(gen) })
		case StopTimer:
			c.gen++
			c.opts.Ticker.Stop()
		default:
			deferred = append(deferred, e)
		}
	}
	snapshot := next.Clone()
	c.mu.Unlock()

	c.runEffects(deferred)
	return snapshot
}

func (c *Controller) tick(gen uint64) {
	c.dispatch(Tick{At: c.opts.Now()}, gen)
}

func (c *Controller) runEffects(effects []Effect) {
	for _, e := range effects {
		switch e := e.(type) {
		case Persist:
			c.persist(e.Record)
		case PlaySound:
			c.play(e)
		case Haptic:
			c.opts.Sink.Haptic(e.Intensity)
		case Notify:
			c.opts.Sink.Notify(e.Type)
		}
	}
}

func (c *Controller) play(e PlaySound) {
	if e.Delay <= 0 {
		c.opts.Sink.Play(e.Sound)
		return
	}
	sink := c.opts.Sink
	c.opts.Scheduler.After(e.Delay, func() { sink.Play(e.Sound) })
}

func (c *Controller) persist(rec history.SessionRecord) {
	if c.opts.Recorder != nil {
		if err := c.opts.Recorder.Append(context.Background(), rec); err != nil {
			c.opts.Logger.Warn("session record not saved",
				zap.String("mode", rec.Mode),
				zap.Int("score", rec.Score),
				zap.Error(err))
		}
	}
	for _, fn := range c.opts.OnClose {
		fn(rec)
	}
}

// State returns a copy of the current state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// ActiveExercise returns a copy of the current exercise.
func (c *Controller) ActiveExercise() (ExerciseState, bool) {
	s := c.State()
	return s.ActiveExercise()
}

// HintText returns the hint for the active exercise at the current level,
// or "" when no hint has been used.
func (c *Controller) HintText() string {
	s := c.State()
	ex, ok := s.ActiveExercise()
	if !ok || !s.Phase.Running() {
		return ""
	}
	return hints.StaticHint(ex.Scenario, s.HintLevel)
}

// Tip returns the contextual tip for the active exercise.
func (c *Controller) Tip() (string, bool) {
	s := c.State()
	ex, ok := s.ActiveExercise()
	if !ok || (s.Phase != PhaseTesting && s.Phase != PhaseDiagnosing) {
		return "", false
	}
	return hints.ContextualTip(ex.TestsPerformed, ex.Scenario, s.Instrument, s.Phase == PhaseDiagnosing)
}

// RecordReading records a reading on the active exercise.
func (c *Controller) RecordReading(id string) State {
	return c.Dispatch(RecordReading{ID: id, At: c.opts.Now()})
}

// SetInstrument switches the meter mode.
func (c *Controller) SetInstrument(mode scenario.TestMode) State {
	return c.Dispatch(SetInstrument{Mode: mode})
}

// ReadyToDiagnose moves to the diagnosis step.
func (c *Controller) ReadyToDiagnose() State {
	return c.Dispatch(ReadyToDiagnose{})
}

// Back returns to testing from the diagnosis step.
func (c *Controller) Back() State {
	return c.Dispatch(Back{})
}

// Submit answers the active exercise with the given option.
func (c *Controller) Submit(optionID string) State {
	return c.Dispatch(SubmitDiagnosis{OptionID: optionID, At: c.opts.Now()})
}

// Next advances to the next exercise or closes the session.
func (c *Controller) Next() State {
	return c.Dispatch(Next{At: c.opts.Now()})
}

// UseHint reveals the next hint level.
func (c *Controller) UseHint() State {
	return c.Dispatch(UseHint{})
}

// Reset abandons the session.
func (c *Controller) Reset() State {
	return c.Dispatch(Reset{})
}

// Close stops the countdown ticker. Ticks already in flight are dropped.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.opts.Ticker.Stop()
}
