// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"sync"
	"time"
)

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped it.
	Stop() bool
}

// Clock arms one-shot timers. *time.Timer satisfies Timer, so SystemClock
// is a thin wrapper over time.AfterFunc.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

// SystemClock is the wall clock.
type SystemClock struct{}

// AfterFunc calls f on its own goroutine after d.
func (SystemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// RefreshSource delivers display-refresh notifications. RequestFrame
// schedules f to be called once before the next refresh; it must be called
// again for every following frame.
type RefreshSource interface {
	RequestFrame(f func())
}

// IntervalRefresh is a RefreshSource that fires at a fixed rate. It stands
// in for a display when running headless.
type IntervalRefresh struct {
	clock    Clock
	interval time.Duration
}

// NewIntervalRefresh returns a refresh source with the given period. A nil
// clock uses SystemClock.
func NewIntervalRefresh(clock Clock, interval time.Duration) *IntervalRefresh {
	if clock == nil {
		clock = SystemClock{}
	}
	return &IntervalRefresh{clock: clock, interval: interval}
}

// RequestFrame calls f after one refresh interval.
func (r *IntervalRefresh) RequestFrame(f func()) {
	r.clock.AfterFunc(r.interval, f)
}

// FrameSignal is a RefreshSource driven by a host draw callback: the
// host calls Signal once per displayed frame.
type FrameSignal struct {
	mu      sync.Mutex
	pending func()
}

// NewFrameSignal creates a signal with no pending request.
func NewFrameSignal() *FrameSignal { return &FrameSignal{} }

// RequestFrame records f for the next Signal. A later request replaces an
// earlier one that has not fired.
func (s *FrameSignal) RequestFrame(f func()) {
	s.mu.Lock()
	s.pending = f
	s.mu.Unlock()
}

// Signal fires the pending request, if any. It reports whether one fired.
func (s *FrameSignal) Signal() bool {
	s.mu.Lock()
	f := s.pending
	s.pending = nil
	s.mu.Unlock()
	if f == nil {
		return false
	}
	f()
	return true
}

// Requested reports whether a frame request is pending.
func (s *FrameSignal) Requested() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending != nil
}
