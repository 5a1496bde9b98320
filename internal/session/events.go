package session

import (
	"time"

	"github.com/abhisek/faultdrill/internal/feedback"
	"github.com/abhisek/faultdrill/internal/history"
	"github.com/abhisek/faultdrill/internal/scenario"
)

// Event is an input to the session reducer.
type Event interface {
	isEvent()
}

// Start begins a new session, discarding any current one.
type Start struct {
	Mode      Mode
	Scenarios []scenario.FaultScenario
	At        time.Time
}

// RecordReading takes the reading with the given ID on the active exercise.
type RecordReading struct {
	ID string
	At time.Time
}

// SetInstrument switches the meter mode.
type SetInstrument struct {
	Mode scenario.TestMode
}

// ReadyToDiagnose moves from testing to diagnosing.
type ReadyToDiagnose struct{}

// Back returns from diagnosing to testing.
type Back struct{}

// SubmitDiagnosis answers the active exercise.
type SubmitDiagnosis struct {
	OptionID string
	At       time.Time
}

// Next advances to the next exercise or closes the session.
type Next struct {
	At time.Time
}

// UseHint reveals the next hint level.
type UseHint struct{}

// Tick is one second of the exam countdown.
type Tick struct {
	At time.Time
}

// Reset abandons the session and returns to intro.
type Reset struct{}

func (Start) isEvent()           {}
func (RecordReading) isEvent()   {}
func (SetInstrument) isEvent()   {}
func (ReadyToDiagnose) isEvent() {}
func (Back) isEvent()            {}
func (SubmitDiagnosis) isEvent() {}
func (Next) isEvent()            {}
func (UseHint) isEvent()         {}
func (Tick) isEvent()            {}
func (Reset) isEvent()           {}

// Effect is a side effect requested by the reducer. The controller runs
// effects after the state update.
type Effect interface {
	isEffect()
}

// ArmTimer starts the countdown ticker.
type ArmTimer struct {
	Seconds int
}

// StopTimer stops the countdown ticker.
type StopTimer struct{}

// Persist appends a closed session's record to history.
type Persist struct {
	Record history.SessionRecord
}

// PlaySound plays a sound after Delay.
type PlaySound struct {
	Sound feedback.Sound
	Delay time.Duration
}

// Haptic requests a haptic pulse.
type Haptic struct {
	Intensity feedback.Intensity
}

// Notify requests a notification cue.
type Notify struct {
	Type feedback.Notification
}

func (ArmTimer) isEffect()  {}
func (StopTimer) isEffect() {}
func (Persist) isEffect()   {}
func (PlaySound) isEffect() {}
func (Haptic) isEffect()    {}
func (Notify) isEffect()    {}
