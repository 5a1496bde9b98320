package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/timer"
)

// Phase represents the current phase of the session.
type Phase int

const (
	PhaseIntro      Phase = iota // No session running
	PhaseTesting                 // Taking readings on the active exercise
	PhaseDiagnosing              // Choosing a diagnosis
	PhaseFeedback                // Showing the outcome of a diagnosis
	PhaseResults                 // Session closed and recorded
)

var phaseNames = [...]string{"intro", "testing", "diagnosing", "feedback", "results"}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// UnmarshalText decodes a phase name.
func (p *Phase) UnmarshalText(b []byte) error {
	for i, name := range phaseNames {
		if string(b) == name {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", b)
}

// Running reports whether the session is between start and close.
func (p Phase) Running() bool {
	return p == PhaseTesting || p == PhaseDiagnosing || p == PhaseFeedback
}

// Mode is the kind of session.
type Mode string

const (
	ModePractice Mode = "practice"
	ModeExam     Mode = "exam"
	ModeGuided   Mode = "guided"
)

// ParseMode converts a string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModePractice, ModeExam, ModeGuided:
		return m, nil
	}
	return "", fmt.Errorf("unknown session mode %q (want practice, exam or guided)", s)
}

// Timed reports whether the mode runs the exam countdown.
func (m Mode) Timed() bool {
	return m == ModeExam
}

// ExerciseState tracks the learner's progress on one scenario.
type ExerciseState struct {
	// Scenario is the puzzle for this exercise. It is never modified.
	Scenario scenario.FaultScenario `json:"scenario"`

	// TestsPerformed holds reading IDs in the order they were first taken.
	TestsPerformed []string `json:"testsPerformed"`

	// SelectedDiagnosis is the chosen option ID, empty until submitted.
	SelectedDiagnosis string `json:"selectedDiagnosis,omitempty"`

	// Answered is true once a diagnosis has been submitted.
	Answered bool `json:"answered"`

	// Correct is meaningful only when Answered is true.
	Correct bool `json:"correct"`

	// StartedAt is when this exercise last became active.
	StartedAt time.Time `json:"startedAt"`

	// ElapsedSeconds is frozen when the diagnosis is submitted.
	ElapsedSeconds int `json:"elapsedSeconds"`

	// HintsUsed mirrors the hint level reached on this exercise.
	HintsUsed int `json:"hintsUsed"`
}

// HasPerformed reports whether the reading has already been recorded.
func (e ExerciseState) HasPerformed(readingID string) bool {
	for _, id := range e.TestsPerformed {
		if id == readingID {
			return true
		}
	}
	return false
}

// AbnormalCount returns how many recorded readings are abnormal.
func (e ExerciseState) AbnormalCount() int {
	n := 0
	for _, id := range e.TestsPerformed {
		if r, ok := e.Scenario.FindReading(id); ok && r.Abnormal {
			n++
		}
	}
	return n
}

func (e ExerciseState) clone() ExerciseState {
	c := e
	if e.TestsPerformed != nil {
		c.TestsPerformed = make([]string, len(e.TestsPerformed))
		copy(c.TestsPerformed, e.TestsPerformed)
	}
	return c
}

// State is the complete, serializable session state.
type State struct {
	// Phase is the current session phase.
	Phase Phase `json:"phase"`

	// Mode is the session mode chosen at start.
	Mode Mode `json:"mode"`

	// Exercises holds one entry per scenario, in play order.
	Exercises []ExerciseState `json:"exercises"`

	// Active is the index of the current exercise.
	Active int `json:"active"`

	// Instrument is the selected meter mode.
	Instrument scenario.TestMode `json:"instrument"`

	// HintLevel is the hint level reached on the active exercise.
	HintLevel int `json:"hintLevel"`

	// DisplayedReading is the reading ID currently shown on the meter.
	DisplayedReading string `json:"displayedReading,omitempty"`

	// StartedAt is when the session began.
	StartedAt time.Time `json:"startedAt"`

	// Timer is the exam countdown.
	Timer timer.Countdown `json:"timer"`

	// Record is set once the session closes.
	Record *history.SessionRecord `json:"record,omitempty"`
}

// Clone returns a deep copy of s. Scenarios are shared since they are
// read-only.
func (s State) Clone() State {
	c := s
	if s.Exercises != nil {
		c.Exercises = make([]ExerciseState, len(s.Exercises))
		for i, e := range s.Exercises {
			c.Exercises[i] = e.clone()
		}
	}
	if s.Record != nil {
		rec := *s.Record
		if s.Record.PerExercise != nil {
			rec.PerExercise = make([]history.ExerciseResult, len(s.Record.PerExercise))
			copy(rec.PerExercise, s.Record.PerExercise)
		}
		c.Record = &rec
	}
	return c
}

// ActiveExercise returns the current exercise.
func (s State) ActiveExercise() (ExerciseState, bool) {
	if s.Active < 0 || s.Active >= len(s.Exercises) {
		return ExerciseState{}, false
	}
	return s.Exercises[s.Active], true
}

// IsLast reports whether the active exercise is the final one.
func (s State) IsLast() bool {
	return s.Active == len(s.Exercises)-1
}

// CorrectCount returns the number of exercises answered correctly.
func (s State) CorrectCount() int {
	n := 0
	for _, e := range s.Exercises {
		if e.Answered && e.Correct {
			n++
		}
	}
	return n
}

// Displayed returns the reading currently shown on the meter.
func (s State) Displayed() (scenario.Reading, bool) {
	if s.DisplayedReading == "" {
		return scenario.Reading{}, false
	}
	ex, ok := s.ActiveExercise()
	if !ok {
		return scenario.Reading{}, false
	}
	return ex.Scenario.FindReading(s.DisplayedReading)
}
