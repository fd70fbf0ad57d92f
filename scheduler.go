// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"sync"
	"time"
)

// DefaultInterval is the delay between the end of one step and the start of
// the next.
const DefaultInterval = 16 * time.Millisecond

// SchedulerConfig wires a Scheduler to its collaborators.
type SchedulerConfig struct {
	// Loop runs every step and present. Required.
	Loop *Loop

	// Clock arms the step chain. Defaults to SystemClock.
	Clock Clock

	// Refresh arms the present chain. Nil disables presenting.
	Refresh RefreshSource

	// Interval is the fixed delay between steps. Defaults to
	// DefaultInterval.
	Interval time.Duration

	// Step advances one generation.
	Step func() error

	// Present draws the current generation.
	Present func() error
}

// Scheduler drives two independent self re-arming chains: a fixed-delay
// step chain and a refresh-aligned present chain. Each chain arms its next
// link only after the current one ran, so neither overlaps itself; both run
// on the loop goroutine, so they never overlap each other.
type Scheduler struct {
	loop     *Loop
	clock    Clock
	refresh  RefreshSource
	interval time.Duration
	step     func() error
	present  func() error

	mu      sync.Mutex
	running bool
	// epoch invalidates callbacks armed before the last Start or Stop.
	epoch uint64
	timer Timer
}

// NewScheduler creates a stopped scheduler.
func NewScheduler(cfg SchedulerConfig) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &Scheduler{
		loop:     cfg.Loop,
		clock:    cfg.Clock,
		refresh:  cfg.Refresh,
		interval: cfg.Interval,
		step:     cfg.Step,
		present:  cfg.Present,
	}
}

// Interval returns the step delay.
func (s *Scheduler) Interval() time.Duration { return s.interval }

// Running reports whether the chains are armed.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Start arms both chains. Calling Start on a running scheduler does nothing.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return
	}
	s.running = true
	s.epoch++
	s.armStepLocked(s.epoch)
	s.armFrameLocked(s.epoch)
	slogger().Info("gglife: scheduler started", "interval", s.interval)
}

// Stop halts both chains. Work already posted to the loop is skipped.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	s.epoch++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	slogger().Info("gglife: scheduler stopped")
}

// live reports whether callbacks of epoch may still run.
func (s *Scheduler) live(epoch uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running && s.epoch == epoch
}

func (s *Scheduler) armStepLocked(epoch uint64) {
	if s.step == nil {
		return
	}
	s.timer = s.clock.AfterFunc(s.interval, func() {
		s.loop.Post(func() { s.runStep(epoch) })
	})
}

func (s *Scheduler) armFrameLocked(epoch uint64) {
	if s.refresh == nil || s.present == nil {
		return
	}
	s.refresh.RequestFrame(func() {
		s.loop.Post(func() { s.runPresent(epoch) })
	})
}

func (s *Scheduler) runStep(epoch uint64) {
	if !s.live(epoch) {
		return
	}
	if err := s.step(); err != nil {
		slogger().Warn("gglife: step failed", "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.epoch == epoch {
		s.armStepLocked(epoch)
	}
}

func (s *Scheduler) runPresent(epoch uint64) {
	if !s.live(epoch) {
		return
	}
	if err := s.present(); err != nil {
		slogger().Warn("gglife: present failed", "err", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running && s.epoch == epoch {
		s.armFrameLocked(epoch)
	}
}
