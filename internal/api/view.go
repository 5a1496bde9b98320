package api

import (
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/session"
)

// SessionView is the JSON shape returned for a session. It never reveals
// reading values that have not been taken or the correct option before a
// diagnosis is submitted.
type SessionView struct {
	ID          string                 `json:"id"`
	Phase       string                 `json:"phase"`
	Mode        string                 `json:"mode"`
	Exercise    int                    `json:"exercise"`
	Total       int                    `json:"total"`
	Instrument  string                 `json:"instrument"`
	Remaining   int                    `json:"remainingSeconds"`
	TimerActive bool                   `json:"timerActive"`
	Scenario    *ScenarioView          `json:"scenario,omitempty"`
	Performed   []ReadingView          `json:"performed"`
	Displayed   *ReadingView           `json:"displayed,omitempty"`
	HintLevel   int                    `json:"hintLevel"`
	HintPenalty string                 `json:"hintPenalty,omitempty"`
	Hint        string                 `json:"hint,omitempty"`
	Tip         string                 `json:"tip,omitempty"`
	Outcome     *OutcomeView           `json:"outcome,omitempty"`
	Record      *history.SessionRecord `json:"record,omitempty"`
}

// ScenarioView is the public part of the active scenario.
type ScenarioView struct {
	ID          string          `json:"id"`
	CircuitType string          `json:"circuitType"`
	CircuitName string          `json:"circuitName"`
	Symptom     string          `json:"symptom"`
	TestPoints  []TestPointView `json:"testPoints"`
	Options     []OptionView    `json:"options"`
}

// TestPointView lists the tests available at one location.
type TestPointView struct {
	ID          string     `json:"id"`
	Location    string     `json:"location"`
	Description string     `json:"description"`
	Tests       []TestStub `json:"tests"`
}

// TestStub names a test without its result.
type TestStub struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Mode  string `json:"mode"`
}

// ReadingView is a taken reading.
type ReadingView struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Mode     string `json:"mode"`
	Location string `json:"location"`
	Value    string `json:"value"`
	Abnormal bool   `json:"isAbnormal"`
}

// OptionView is a diagnosis choice.
type OptionView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// OutcomeView explains a submitted diagnosis.
type OutcomeView struct {
	Correct         bool   `json:"correct"`
	Selected        string `json:"selected"`
	CorrectOption   string `json:"correctOption"`
	CorrectLocation string `json:"correctLocation"`
	Rectification   string `json:"rectification"`
	Explanation     string `json:"explanation"`
	OptimalMethod   string `json:"optimalMethod"`
}

func newSessionView(id string, ctrl *session.Controller) SessionView {
	s := ctrl.State()
	v := SessionView{
		ID:          id,
		Phase:       s.Phase.String(),
		Mode:        string(s.Mode),
		Total:       len(s.Exercises),
		Instrument:  string(s.Instrument),
		Remaining:   s.Timer.Remaining,
		TimerActive: s.Timer.Active,
		Performed:   []ReadingView{},
		HintLevel:   s.HintLevel,
		HintPenalty: scoring.HintPenaltyLabel(s.HintLevel),
		Hint:        ctrl.HintText(),
		Record:      s.Record,
	}
	if tip, ok := ctrl.Tip(); ok {
		v.Tip = tip
	}
	if !s.Phase.Running() {
		return v
	}

	ex, ok := s.ActiveExercise()
	if !ok {
		return v
	}
	v.Exercise = s.Active + 1
	v.Scenario = newScenarioView(ex.Scenario)
	for _, id := range ex.TestsPerformed {
		if r, ok := readingView(ex.Scenario, id); ok {
			v.Performed = append(v.Performed, r)
		}
	}
	if r, ok := readingView(ex.Scenario, s.DisplayedReading); ok && s.DisplayedReading != "" {
		v.Displayed = &r
	}
	if ex.Answered {
		v.Outcome = newOutcomeView(ex)
	}
	return v
}

func newScenarioView(scn scenario.FaultScenario) *ScenarioView {
	sv := &ScenarioView{
		ID:          scn.ID,
		CircuitType: scn.CircuitType,
		CircuitName: scn.CircuitName,
		Symptom:     scn.Symptom,
		TestPoints:  make([]TestPointView, 0, len(scn.TestPoints)),
		Options:     make([]OptionView, 0, len(scn.DiagnosisOptions)),
	}
	for _, tp := range scn.TestPoints {
		tv := TestPointView{ID: tp.ID, Location: tp.Location, Description: tp.Description, Tests: make([]TestStub, 0, len(tp.Tests))}
		for _, r := range tp.Tests {
			tv.Tests = append(tv.Tests, TestStub{ID: r.ID, Label: r.Label, Mode: string(r.Mode)})
		}
		sv.TestPoints = append(sv.TestPoints, tv)
	}
	for _, o := range scn.DiagnosisOptions {
		sv.Options = append(sv.Options, OptionView{ID: o.ID, Label: o.Label})
	}
	return sv
}

func readingView(scn scenario.FaultScenario, id string) (ReadingView, bool) {
	r, ok := scn.FindReading(id)
	if !ok {
		return ReadingView{}, false
	}
	rv := ReadingView{
		ID:       r.ID,
		Label:    r.Label,
		Mode:     string(r.Mode),
		Value:    r.Display(),
		Abnormal: r.Abnormal,
	}
	if tp, ok := scn.PointOf(id); ok {
		rv.Location = tp.Location
	}
	return rv, true
}

func newOutcomeView(ex session.ExerciseState) *OutcomeView {
	scn := ex.Scenario
	o := &OutcomeView{
		Correct:         ex.Correct,
		Selected:        ex.SelectedDiagnosis,
		CorrectLocation: scn.CorrectLocation,
		Rectification:   scn.Rectification,
		Explanation:     scn.Explanation,
		OptimalMethod:   scn.OptimalMethod,
	}
	if opt, ok := scn.CorrectOption(); ok {
		o.CorrectOption = opt.ID
	}
	return o
}
