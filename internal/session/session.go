package session

import (
	"time"

	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/hints"
	"github.com/abhisek/faultdrill/internal/scenario"
	"github.com/abhisek/faultdrill/internal/scoring"
	"github.com/abhisek/faultdrill/internal/timer"
)

const (
	// ToneDelay is the gap between the tap sound and the reading tone.
	ToneDelay = 150 * time.Millisecond

	// AlertDelay is the further gap before the abnormal-reading alert.
	AlertDelay = 300 * time.Millisecond

	// MinTestsToDiagnose is the number of readings needed before diagnosing.
	MinTestsToDiagnose = 2
)

// Reduce applies ev to s and returns the next state with the side effects the
// caller must run. It never modifies s. Events that are not legal in the
// current phase return s unchanged and no effects.
func Reduce(s State, ev Event) (State, []Effect) {
	switch ev := ev.(type) {
	case Start:
		return reduceStart(s, ev)
	case RecordReading:
		return reduceRecordReading(s, ev)
	case SetInstrument:
		return reduceSetInstrument(s, ev)
	case ReadyToDiagnose:
		return reduceReady(s)
	case Back:
		return reduceBack(s)
	case SubmitDiagnosis:
		return reduceSubmit(s, ev)
	case Next:
		return reduceNext(s, ev)
	case UseHint:
		return reduceUseHint(s)
	case Tick:
		return reduceTick(s, ev)
	case Reset:
		return State{Phase: PhaseIntro, Instrument: scenario.ModeContinuity}, []Effect{StopTimer{}}
	}
	return s, nil
}

func reduceStart(s State, ev Start) (State, []Effect) {
	switch ev.Mode {
	case ModePractice, ModeExam, ModeGuided:
	default:
		return s, nil
	}
	if scenario.CheckSupply(ev.Scenarios, scoring.TotalExercises) != nil {
		return s, nil
	}

	next := State{
		Phase:      PhaseTesting,
		Mode:       ev.Mode,
		Exercises:  make([]ExerciseState, len(ev.Scenarios)),
		Active:     0,
		Instrument: scenario.ModeContinuity,
		StartedAt:  ev.At,
	}
	for i, scn := range ev.Scenarios {
		next.Exercises[i] = ExerciseState{
			Scenario:       scn,
			TestsPerformed: []string{},
			StartedAt:      ev.At,
		}
	}

	effects := []Effect{StopTimer{}}
	next.Timer.Arm(timer.ExamSeconds)
	if ev.Mode.Timed() {
		effects = append(effects, ArmTimer{Seconds: timer.ExamSeconds})
	} else {
		next.Timer.Disarm()
	}
	effects = append(effects,
		PlaySound{Sound: feedback.SoundSessionStart},
		Haptic{Intensity: feedback.IntensityMedium},
	)
	return next, effects
}

func reduceRecordReading(s State, ev RecordReading) (State, []Effect) {
	if s.Phase != PhaseTesting {
		return s, nil
	}
	ex, ok := s.ActiveExercise()
	if !ok {
		return s, nil
	}
	r, ok := ex.Scenario.FindReading(ev.ID)
	if !ok || r.Mode != s.Instrument {
		return s, nil
	}

	next := s.Clone()
	next.DisplayedReading = r.ID
	if !ex.HasPerformed(r.ID) {
		active := &next.Exercises[next.Active]
		active.TestsPerformed = append(active.TestsPerformed, r.ID)
	}

	tone := feedback.SoundContinuityBeep
	if r.Mode == scenario.ModeInsulation {
		tone = feedback.SoundInsulationTone
	}
	effects := []Effect{
		Haptic{Intensity: feedback.IntensityLight},
		PlaySound{Sound: feedback.SoundProbeTap},
		PlaySound{Sound: tone, Delay: ToneDelay},
	}
	if r.Abnormal {
		effects = append(effects, PlaySound{Sound: feedback.SoundAbnormalAlert, Delay: ToneDelay + AlertDelay})
	}
	return next, effects
}

func reduceSetInstrument(s State, ev SetInstrument) (State, []Effect) {
	if s.Phase != PhaseTesting || !ev.Mode.Valid() {
		return s, nil
	}
	next := s.Clone()
	next.Instrument = ev.Mode
	next.DisplayedReading = ""
	return next, []Effect{
		PlaySound{Sound: feedback.SoundModeClick},
		Haptic{Intensity: feedback.IntensityLight},
	}
}

func reduceReady(s State) (State, []Effect) {
	if s.Phase != PhaseTesting {
		return s, nil
	}
	ex, ok := s.ActiveExercise()
	if !ok || len(ex.TestsPerformed) < MinTestsToDiagnose {
		return s, nil
	}
	next := s.Clone()
	next.Phase = PhaseDiagnosing
	return next, []Effect{Haptic{Intensity: feedback.IntensityMedium}}
}

func reduceBack(s State) (State, []Effect) {
	if s.Phase != PhaseDiagnosing {
		return s, nil
	}
	next := s.Clone()
	next.Phase = PhaseTesting
	return next, []Effect{Haptic{Intensity: feedback.IntensityLight}}
}

func reduceSubmit(s State, ev SubmitDiagnosis) (State, []Effect) {
	if s.Phase != PhaseDiagnosing {
		return s, nil
	}
	ex, ok := s.ActiveExercise()
	if !ok {
		return s, nil
	}

	// Unknown option IDs score as incorrect.
	opt, _ := ex.Scenario.Option(ev.OptionID)

	next := s.Clone()
	next.Phase = PhaseFeedback
	active := &next.Exercises[next.Active]
	active.SelectedDiagnosis = ev.OptionID
	active.Answered = true
	active.Correct = opt.Correct
	active.ElapsedSeconds = wholeSeconds(ev.At.Sub(active.StartedAt))

	if opt.Correct {
		return next, []Effect{
			Notify{Type: feedback.NotifySuccess},
			PlaySound{Sound: feedback.SoundSuccessChime},
		}
	}
	return next, []Effect{
		Notify{Type: feedback.NotifyError},
		PlaySound{Sound: feedback.SoundFailBuzz},
	}
}

func reduceNext(s State, ev Next) (State, []Effect) {
	if s.Phase != PhaseFeedback {
		return s, nil
	}
	if s.IsLast() {
		return closeSession(s, ev.At, false)
	}

	next := s.Clone()
	next.Phase = PhaseTesting
	next.Active++
	next.Instrument = scenario.ModeContinuity
	next.HintLevel = 0
	next.DisplayedReading = ""
	next.Exercises[next.Active].StartedAt = ev.At
	return next, []Effect{Haptic{Intensity: feedback.IntensityLight}}
}

func reduceUseHint(s State) (State, []Effect) {
	if s.Phase != PhaseTesting && s.Phase != PhaseDiagnosing {
		return s, nil
	}
	if s.HintLevel >= hints.MaxLevel {
		return s, nil
	}
	if _, ok := s.ActiveExercise(); !ok {
		return s, nil
	}
	next := s.Clone()
	next.HintLevel++
	next.Exercises[next.Active].HintsUsed = next.HintLevel
	return next, []Effect{Haptic{Intensity: feedback.IntensityLight}}
}

func reduceTick(s State, ev Tick) (State, []Effect) {
	if !s.Phase.Running() || !s.Mode.Timed() || !s.Timer.Active {
		return s, nil
	}
	next := s.Clone()
	if !next.Timer.Tick() {
		return next, nil
	}
	return closeSession(next, ev.At, true)
}

// closeSession builds the record, moves to results and requests the timer
// stop and persistence.
func closeSession(s State, at time.Time, expired bool) (State, []Effect) {
	next := s.Clone()
	next.Phase = PhaseResults
	next.Timer.Disarm()
	next.DisplayedReading = ""
	rec := BuildRecord(next, at, expired)
	next.Record = &rec

	effects := []Effect{StopTimer{}, Persist{Record: rec}}
	if scoring.IsPass(rec.CorrectCount) {
		effects = append(effects,
			Notify{Type: feedback.NotifySuccess},
			PlaySound{Sound: feedback.SoundSuccessChime},
		)
	} else {
		effects = append(effects,
			Notify{Type: feedback.NotifyWarning},
			PlaySound{Sound: feedback.SoundFailBuzz},
		)
	}
	return next, effects
}

func wholeSeconds(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Second)
}
