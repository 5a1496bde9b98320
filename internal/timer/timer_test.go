package timer

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestCountdownExpiresOnce(t *testing.T) {
	var c Countdown
	c.Arm(3)
	if !c.Active || c.Remaining != 3 {
		t.Fatalf("after Arm(3) = %+v", c)
	}

	expired := 0
	for i := 0; i < 10; i++ {
		if c.Tick() {
			expired++
		}
	}
	if expired != 1 {
		t.Errorf("expired %d times, want 1", expired)
	}
	if c.Active {
		t.Error("countdown still active after expiry")
	}
	if c.Remaining != 0 {
		t.Errorf("Remaining = %d, want 0", c.Remaining)
	}
}

func TestCountdownDisarmedDoesNotTick(t *testing.T) {
	var c Countdown
	if c.Tick() {
		t.Error("zero countdown should not expire")
	}

	c.Arm(ExamSeconds)
	c.Tick()
	c.Disarm()
	c.Tick()
	if c.Remaining != ExamSeconds-1 {
		t.Errorf("Remaining = %d, want %d", c.Remaining, ExamSeconds-1)
	}

	c.Arm(ExamSeconds)
	if c.Remaining != ExamSeconds || !c.Active {
		t.Errorf("re-arm = %+v, want full and active", c)
	}
}

func TestManualTicker(t *testing.T) {
	var m Manual
	n := 0
	if m.Fire() {
		t.Error("Fire before Start should not run")
	}

	m.Start(func() { n++ })
	m.FireN(3)
	if n != 3 {
		t.Errorf("ticks = %d, want 3", n)
	}

	m.Stop()
	m.Stop()
	if m.Fire() {
		t.Error("Fire after Stop should not run")
	}
	if m.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestManualTickerStopInsideCallback(t *testing.T) {
	var m Manual
	n := 0
	m.Start(func() {
		n++
		if n == 2 {
			m.Stop()
		}
	})
	if ran := m.FireN(5); ran != 2 {
		t.Errorf("FireN ran %d, want 2", ran)
	}
}

func TestWallTickerStopsGoroutine(t *testing.T) {
	defer goleak.VerifyNone(t)

	var ticks atomic.Int32
	w := NewWallTicker(5 * time.Millisecond)
	w.Start(func() { ticks.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for ticks.Load() < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if ticks.Load() < 3 {
		t.Errorf("ticks = %d, want at least 3", ticks.Load())
	}
}

func TestWallTickerStopFromCallback(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWallTicker(time.Millisecond)
	done := make(chan struct{})
	var once atomic.Bool
	w.Start(func() {
		w.Stop()
		if once.CompareAndSwap(false, true) {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("tick never fired")
	}
}

func TestWallTickerRestartReplacesSchedule(t *testing.T) {
	defer goleak.VerifyNone(t)

	w := NewWallTicker(time.Millisecond)
	var first, second atomic.Int32
	w.Start(func() { first.Add(1) })
	w.Start(func() { second.Add(1) })

	deadline := time.Now().Add(2 * time.Second)
	for second.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	w.Stop()

	before := first.Load()
	time.Sleep(10 * time.Millisecond)
	if first.Load() != before {
		t.Error("replaced schedule kept ticking")
	}
	if second.Load() == 0 {
		t.Error("new schedule never ticked")
	}
}
