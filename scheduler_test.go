// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock fires timers only when told to.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock { return &fakeClock{} }

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs every timer armed so far and returns how many ran. Timers
// armed by the callbacks wait for the next Fire.
func (c *fakeClock) Fire() int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.timers = nil
	c.mu.Unlock()

	for _, t := range due {
		t.f()
	}
	return len(due)
}

// Pending returns the number of armed timers.
func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// lastDelay returns the delay of the most recently armed timer.
func (c *fakeClock) lastDelay() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.timers) == 0 {
		return 0
	}
	return c.timers[len(c.timers)-1].d
}

type schedRig struct {
	loop     *Loop
	clock    *fakeClock
	signal   *FrameSignal
	sched    *Scheduler
	steps    int
	presents int
	active   int
	overlap  bool
	stepErr  error
}

func newSchedRig() *schedRig {
	r := &schedRig{loop: NewLoop(), clock: newFakeClock(), signal: NewFrameSignal()}
	r.sched = NewScheduler(SchedulerConfig{
		Loop:     r.loop,
		Clock:    r.clock,
		Refresh:  r.signal,
		Interval: 16 * time.Millisecond,
		Step: func() error {
			r.active++
			if r.active > 1 {
				r.overlap = true
			}
			r.steps++
			r.active--
			return r.stepErr
		},
		Present: func() error {
			r.active++
			if r.active > 1 {
				r.overlap = true
			}
			r.presents++
			r.active--
			return nil
		},
	})
	return r
}

func TestSchedulerStepChainRearms(t *testing.T) {
	r := newSchedRig()
	r.sched.Start()

	for i := 1; i <= 3; i++ {
		if n := r.clock.Pending(); n != 1 {
			t.Fatalf("before step %d: %d armed timers, want 1", i, n)
		}
		if d := r.clock.lastDelay(); d != 16*time.Millisecond {
			t.Errorf("timer delay = %v, want 16ms", d)
		}
		r.clock.Fire()
		r.loop.Drain()
		if r.steps != i {
			t.Fatalf("steps = %d, want %d", r.steps, i)
		}
	}
	if r.overlap {
		t.Error("step and present overlapped")
	}
}

func TestSchedulerPresentChainRearms(t *testing.T) {
	r := newSchedRig()
	r.sched.Start()

	for i := 1; i <= 3; i++ {
		if !r.signal.Requested() {
			t.Fatalf("frame %d not requested", i)
		}
		r.signal.Signal()
		r.loop.Drain()
		if r.presents != i {
			t.Fatalf("presents = %d, want %d", r.presents, i)
		}
	}
	if r.steps != 0 {
		t.Errorf("refresh triggered %d steps", r.steps)
	}
}

func TestSchedulerChainsAreIndependent(t *testing.T) {
	r := newSchedRig()
	r.sched.Start()

	for i := 0; i < 4; i++ {
		r.clock.Fire()
		r.loop.Drain()
	}
	r.signal.Signal()
	r.loop.Drain()

	if r.steps != 4 || r.presents != 1 {
		t.Errorf("steps=%d presents=%d, want 4 and 1", r.steps, r.presents)
	}
	if r.overlap {
		t.Error("step and present overlapped")
	}
}

func TestSchedulerStopHaltsBothChains(t *testing.T) {
	r := newSchedRig()
	r.sched.Start()
	r.clock.Fire()
	r.loop.Drain()

	// A step already posted to the loop when Stop is called is skipped.
	r.clock.Fire()
	r.sched.Stop()
	r.loop.Drain()

	if r.steps != 1 {
		t.Errorf("steps = %d, want 1", r.steps)
	}
	if r.clock.Pending() != 0 {
		t.Errorf("%d timers armed after Stop", r.clock.Pending())
	}

	r.signal.Signal()
	r.loop.Drain()
	if r.presents != 0 {
		t.Errorf("presents = %d after Stop, want 0", r.presents)
	}
	if r.signal.Requested() {
		t.Error("frame requested after Stop")
	}
	if r.sched.Running() {
		t.Error("Running() = true after Stop")
	}
}

func TestSchedulerStartIsIdempotent(t *testing.T) {
	r := newSchedRig()
	r.sched.Start()
	r.sched.Start()
	if n := r.clock.Pending(); n != 1 {
		t.Errorf("%d timers armed after double Start, want 1", n)
	}

	r.sched.Stop()
	r.sched.Stop()
	r.sched.Start()
	r.clock.Fire()
	r.loop.Drain()
	if r.steps != 1 {
		t.Errorf("steps after restart = %d, want 1", r.steps)
	}
}

func TestSchedulerContinuesAfterStepError(t *testing.T) {
	r := newSchedRig()
	r.stepErr = errors.New("device lost")
	r.sched.Start()

	for i := 0; i < 3; i++ {
		r.clock.Fire()
		r.loop.Drain()
	}
	if r.steps != 3 {
		t.Errorf("steps = %d, want 3", r.steps)
	}
}

func TestNewSchedulerDefaults(t *testing.T) {
	s := NewScheduler(SchedulerConfig{Loop: NewLoop()})
	if s.Interval() != DefaultInterval {
		t.Errorf("Interval() = %v, want %v", s.Interval(), DefaultInterval)
	}
	// No step or present: Start arms nothing and must not panic.
	s.Start()
	s.Stop()
}

func TestIntervalRefresh(t *testing.T) {
	clock := newFakeClock()
	r := NewIntervalRefresh(clock, 5*time.Millisecond)

	fired := 0
	r.RequestFrame(func() { fired++ })
	if d := clock.lastDelay(); d != 5*time.Millisecond {
		t.Errorf("delay = %v, want 5ms", d)
	}
	clock.Fire()
	if fired != 1 {
		t.Errorf("fired = %d, want 1", fired)
	}
	clock.Fire()
	if fired != 1 {
		t.Errorf("refresh fired %d times for one request", fired)
	}
}

func TestFrameSignal(t *testing.T) {
	s := NewFrameSignal()
	if s.Signal() {
		t.Error("Signal fired without a request")
	}
	n := 0
	s.RequestFrame(func() { n++ })
	s.RequestFrame(func() { n += 10 })
	if !s.Signal() {
		t.Fatal("Signal did not fire the pending request")
	}
	if n != 10 {
		t.Errorf("n = %d, want 10 (latest request only)", n)
	}
	if s.Signal() {
		t.Error("request fired twice")
	}
}
