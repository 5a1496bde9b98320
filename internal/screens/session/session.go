package session

import (
	"time"

	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"

	"github.com/abhisek/faultdrill/internal/router"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/screen"
	"github.com/abhisek/faultdrill/internal/screens"
	"github.com/abhisek/faultdrill/internal/screens/results"
	sess "github.com/abhisek/faultdrill/internal/session"
	"github.com/abhisek/faultdrill/internal/ui/components"
	"github.com/abhisek/faultdrill/internal/ui/layout"
)

// clockInterval is how often the screen redraws while a session runs.
const clockInterval = time.Second

// SessionScreen drives one fault-finding session.
type SessionScreen struct {
	deps screens.Deps
	mode sess.Mode
	ctrl *sess.Controller

	// cursor indexes the tests available for the current instrument.
	cursor  int
	choices components.MultiChoice
	errMsg  string
}

var _ screen.Screen = (*SessionScreen)(nil)
var _ screen.KeyHintProvider = (*SessionScreen)(nil)
var _ screen.StatusProvider = (*SessionScreen)(nil)
var _ screen.Closer = (*SessionScreen)(nil)

// New creates a SessionScreen that starts a session in mode on Init.
func New(deps screens.Deps, mode sess.Mode) *SessionScreen {
	return &SessionScreen{
		deps: deps,
		mode: mode,
		ctrl: deps.NewController(),
	}
}

func (s *SessionScreen) Init() tea.Cmd {
	if err := s.ctrl.Start(s.mode); err != nil {
		s.errMsg = err.Error()
		return nil
	}
	s.resetChoices()
	return clock()
}

func clock() tea.Cmd {
	return tea.Tick(clockInterval, func(t time.Time) tea.Msg { return clockMsg(t) })
}

func (s *SessionScreen) Title() string {
	return "Fault Finding"
}

// Status shows the countdown in exam mode and the exercise number otherwise.
func (s *SessionScreen) Status() string {
	st := s.ctrl.State()
	if !st.Phase.Running() {
		return ""
	}
	if st.Mode.Timed() {
		return "EXAM " + layout.FormatClock(st.Timer.Remaining)
	}
	return modeLabel(st.Mode)
}

func (s *SessionScreen) KeyHints() []layout.KeyHint {
	if s.errMsg != "" {
		return []layout.KeyHint{{Key: "Esc", Description: "Back"}}
	}
	switch s.ctrl.State().Phase {
	case sess.PhaseTesting:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Test"},
			{Key: "Enter", Description: "Take reading"},
			{Key: "M", Description: "Meter"},
			{Key: "H", Description: "Hint"},
			{Key: "D", Description: "Diagnose"},
			{Key: "Esc", Description: "Abandon"},
		}
	case sess.PhaseDiagnosing:
		return []layout.KeyHint{
			{Key: "↑↓", Description: "Choose"},
			{Key: "Enter", Description: "Submit"},
			{Key: "H", Description: "Hint"},
			{Key: "B", Description: "Back to testing"},
		}
	case sess.PhaseFeedback:
		return []layout.KeyHint{{Key: "Enter", Description: "Next"}}
	}
	return nil
}

// Close stops the countdown when the screen leaves the stack.
func (s *SessionScreen) Close() {
	s.ctrl.Close()
}

// Controller exposes the underlying controller.
func (s *SessionScreen) Controller() *sess.Controller {
	return s.ctrl
}

func (s *SessionScreen) Update(msg tea.Msg) (screen.Screen, tea.Cmd) {
	switch msg := msg.(type) {
	case clockMsg:
		if cmd := s.closed(); cmd != nil {
			return s, cmd
		}
		return s, clock()

	case tea.KeyMsg:
		if s.errMsg != "" {
			return s, nil
		}
		return s.handleKey(msg)
	}
	return s, nil
}

func (s *SessionScreen) handleKey(msg tea.KeyMsg) (screen.Screen, tea.Cmd) {
	st := s.ctrl.State()
	switch st.Phase {
	case sess.PhaseTesting:
		tests := s.availableTests(st)
		switch {
		case key.Matches(msg, components.Keys.Up):
			if s.cursor > 0 {
				s.cursor--
			}
		case key.Matches(msg, components.Keys.Down):
			if s.cursor < len(tests)-1 {
				s.cursor++
			}
		case key.Matches(msg, components.Keys.Select):
			if s.cursor < len(tests) {
				s.ctrl.RecordReading(tests[s.cursor].ID)
			}
		case key.Matches(msg, components.Keys.Instrument):
			s.ctrl.SetInstrument(otherMode(st.Instrument))
			s.cursor = 0
		case key.Matches(msg, components.Keys.Hint):
			s.ctrl.UseHint()
		case key.Matches(msg, components.Keys.Diagnose):
			s.ctrl.ReadyToDiagnose()
		}

	case sess.PhaseDiagnosing:
		switch {
		case key.Matches(msg, components.Keys.Select):
			ex, _ := st.ActiveExercise()
			if s.choices.Selected < len(ex.Scenario.DiagnosisOptions) {
				chosen := ex.Scenario.DiagnosisOptions[s.choices.Selected].ID
				s.ctrl.Submit(chosen)
				s.choices.Reveal(s.choices.Selected, correctIndex(ex.Scenario))
			}
		case key.Matches(msg, components.Keys.Back):
			s.ctrl.Back()
		case key.Matches(msg, components.Keys.Hint):
			s.ctrl.UseHint()
		default:
			s.choices, _ = s.choices.Update(msg)
		}

	case sess.PhaseFeedback:
		if key.Matches(msg, components.Keys.Next) {
			s.ctrl.Next()
			s.cursor = 0
			s.resetChoices()
		}
	}
	return s, s.closed()
}

// closed hands over to the results screen once the session has a record.
func (s *SessionScreen) closed() tea.Cmd {
	st := s.ctrl.State()
	if st.Phase != sess.PhaseResults || st.Record == nil {
		return nil
	}
	next := results.New(s.deps, *st.Record)
	return func() tea.Msg { return router.ReplaceScreenMsg{Screen: next} }
}

func (s *SessionScreen) resetChoices() {
	ex, ok := s.ctrl.ActiveExercise()
	if !ok {
		return
	}
	labels := make([]string, len(ex.Scenario.DiagnosisOptions))
	for i, o := range ex.Scenario.DiagnosisOptions {
		labels[i] = o.Label
	}
	s.choices = components.NewMultiChoice("What is your diagnosis?", labels)
}

// testRef is one test the learner can take with the current instrument.
type testRef struct {
	Point   scenario.TestPoint
	Reading scenario.Reading
	ID      string
}

func (s *SessionScreen) availableTests(st sess.State) []testRef {
	ex, ok := st.ActiveExercise()
	if !ok {
		return nil
	}
	var out []testRef
	for _, tp := range ex.Scenario.TestPoints {
		for _, r := range tp.ReadingsFor(st.Instrument) {
			out = append(out, testRef{Point: tp, Reading: r, ID: r.ID})
		}
	}
	return out
}

func otherMode(m scenario.TestMode) scenario.TestMode {
	if m == scenario.ModeContinuity {
		return scenario.ModeInsulation
	}
	return scenario.ModeContinuity
}

func correctIndex(scn scenario.FaultScenario) int {
	for i, o := range scn.DiagnosisOptions {
		if o.Correct {
			return i
		}
	}
	return -1
}

func modeLabel(m sess.Mode) string {
	switch m {
	case sess.ModeExam:
		return "Exam"
	case sess.ModeGuided:
		return "Guided"
	}
	return "Practice"
}
