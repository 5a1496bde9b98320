// Package timer provides the exam countdown and the tick sources that drive it.
package timer

import (
	"sync"
	"time"
)

// ExamSeconds is the exam time allowance.
const ExamSeconds = 7200

// Countdown is a one-shot countdown in whole seconds. The zero value is
// disarmed.
type Countdown struct {
	// Remaining is the number of seconds left.
	Remaining int `json:"remaining"`

	// Active is true while the countdown is running.
	Active bool `json:"active"`
}

// Arm resets the countdown to seconds and starts it.
func (c *Countdown) Arm(seconds int) {
	c.Remaining = seconds
	c.Active = seconds > 0
}

// Disarm stops the countdown without touching Remaining.
func (c *Countdown) Disarm() {
	c.Active = false
}

// Tick decrements an active countdown by one second. It returns true exactly
// once, on the tick that reaches zero; the countdown disarms itself then.
func (c *Countdown) Tick() bool {
	if !c.Active {
		return false
	}
	c.Remaining--
	if c.Remaining <= 0 {
		c.Remaining = 0
		c.Active = false
		return true
	}
	return false
}

// Ticker schedules a periodic callback.
type Ticker interface {
	// Start begins calling tick periodically, replacing any previous schedule.
	Start(tick func())

	// Stop cancels the schedule. It is idempotent and may be called from
	// inside the tick callback.
	Stop()
}

// WallTicker calls its callback on a wall-clock interval from its own
// goroutine.
type WallTicker struct {
	interval time.Duration

	mu   sync.Mutex
	stop chan struct{}
}

// NewWallTicker creates a ticker firing every interval. A non-positive
// interval means one second.
func NewWallTicker(interval time.Duration) *WallTicker {
	if interval <= 0 {
		interval = time.Second
	}
	return &WallTicker{interval: interval}
}

// Start begins ticking. A running schedule is stopped first.
func (w *WallTicker) Start(tick func()) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()

	stop := make(chan struct{})
	w.stop = stop
	go func() {
		t := time.NewTicker(w.interval)
		defer t.Stop()
		for {
			select {
			case <-stop:
				return
			case <-t.C:
				select {
				case <-stop:
					return
				default:
				}
				tick()
			}
		}
	}()
}

// Stop cancels the schedule. It does not wait for an in-flight callback.
func (w *WallTicker) Stop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopLocked()
}

func (w *WallTicker) stopLocked() {
	if w.stop != nil {
		close(w.stop)
		w.stop = nil
	}
}

// Manual is a Ticker driven by explicit Fire calls.
type Manual struct {
	mu     sync.Mutex
	tick   func()
	starts int
}

// Start installs the callback.
func (m *Manual) Start(tick func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = tick
	m.starts++
}

// Stop removes the callback.
func (m *Manual) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tick = nil
}

// Fire runs the callback once if the ticker is started. It reports whether a
// callback ran.
func (m *Manual) Fire() bool {
	m.mu.Lock()
	tick := m.tick
	m.mu.Unlock()
	if tick == nil {
		return false
	}
	tick()
	return true
}

// FireN calls Fire up to n times, stopping early once the ticker is stopped.
// It returns the number of callbacks that ran.
func (m *Manual) FireN(n int) int {
	ran := 0
	for i := 0; i < n; i++ {
		if !m.Fire() {
			break
		}
		ran++
	}
	return ran
}

// Running reports whether a callback is installed.
func (m *Manual) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.tick != nil
}

// Starts returns how many times Start has been called.
func (m *Manual) Starts() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.starts
}
