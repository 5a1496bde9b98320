// Package feedback delivers fire-and-forget haptic, notification and sound
// cues raised by the session engine.
package feedback

import (
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Intensity is the strength of a haptic pulse.
type Intensity string

const (
	IntensityLight  Intensity = "light"
	IntensityMedium Intensity = "medium"
	IntensityHeavy  Intensity = "heavy"
)

// Notification is the kind of notification cue.
type Notification string

const (
	NotifySuccess Notification = "success"
	NotifyWarning Notification = "warning"
	NotifyError   Notification = "error"
)

// Sound is a discrete sound effect.
type Sound string

const (
	SoundSessionStart   Sound = "session_start"
	SoundProbeTap       Sound = "probe_tap"
	SoundContinuityBeep Sound = "continuity_beep"
	SoundInsulationTone Sound = "insulation_tone"
	SoundAbnormalAlert  Sound = "abnormal_alert"
	SoundModeClick      Sound = "mode_click"
	SoundSuccessChime   Sound = "success_chime"
	SoundFailBuzz       Sound = "fail_buzz"
)

// Sink receives feedback cues. Implementations must not block.
type Sink interface {
	Haptic(Intensity)
	Notify(Notification)
	Play(Sound)
}

// Noop discards every cue.
type Noop struct{}

func (Noop) Haptic(Intensity)    {}
func (Noop) Notify(Notification) {}
func (Noop) Play(Sound)          {}

// LogSink writes cues to a logger at debug level.
type LogSink struct {
	Logger *zap.Logger
}

func (s LogSink) Haptic(i Intensity) {
	s.logger().Debug("feedback", zap.String("kind", "haptic"), zap.String("intensity", string(i)))
}

func (s LogSink) Notify(n Notification) {
	s.logger().Debug("feedback", zap.String("kind", "notify"), zap.String("type", string(n)))
}

func (s LogSink) Play(snd Sound) {
	s.logger().Debug("feedback", zap.String("kind", "sound"), zap.String("sound", string(snd)))
}

func (s LogSink) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

// BellSink rings the terminal bell for alert and failure sounds.
type BellSink struct {
	mu sync.Mutex
	w  io.Writer
}

// NewBellSink creates a BellSink writing to w.
func NewBellSink(w io.Writer) *BellSink {
	return &BellSink{w: w}
}

func (b *BellSink) Haptic(Intensity)    {}
func (b *BellSink) Notify(Notification) {}

func (b *BellSink) Play(snd Sound) {
	switch snd {
	case SoundAbnormalAlert, SoundFailBuzz:
		b.mu.Lock()
		defer b.mu.Unlock()
		_, _ = b.w.Write([]byte{'\a'})
	}
}

// Multi fans every cue out to each sink in order.
type Multi []Sink

func (m Multi) Haptic(i Intensity) {
	for _, s := range m {
		s.Haptic(i)
	}
}

func (m Multi) Notify(n Notification) {
	for _, s := range m {
		s.Notify(n)
	}
}

func (m Multi) Play(snd Sound) {
	for _, s := range m {
		s.Play(snd)
	}
}

// Recorder keeps every cue it receives. It is safe for concurrent use.
type Recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *Recorder) Haptic(i Intensity)    { r.add("haptic:" + string(i)) }
func (r *Recorder) Notify(n Notification) { r.add("notify:" + string(n)) }
func (r *Recorder) Play(snd Sound)        { r.add("sound:" + string(snd)) }

func (r *Recorder) add(e string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded cues in arrival order.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// Scheduler runs a function after a delay.
type Scheduler interface {
	After(d time.Duration, fn func())
}

// WallScheduler schedules with time.AfterFunc.
type WallScheduler struct{}

func (WallScheduler) After(d time.Duration, fn func()) {
	time.AfterFunc(d, fn)
}

// Immediate runs scheduled functions synchronously, ignoring the delay.
type Immediate struct{}

func (Immediate) After(_ time.Duration, fn func()) {
	fn()
}
