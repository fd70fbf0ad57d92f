// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestLoopDrainOrder(t *testing.T) {
	l := NewLoop()
	var got []int
	for i := 0; i < 3; i++ {
		l.Post(func() {
			got = append(got, i)
			if i == 0 {
				l.Post(func() { got = append(got, 99) })
			}
		})
	}
	if n := l.Drain(); n != 4 {
		t.Errorf("Drain() = %d, want 4", n)
	}
	want := []int{0, 1, 2, 99}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if l.Pending() != 0 {
		t.Errorf("Pending() = %d after Drain", l.Pending())
	}
}

func TestLoopRunUntilCanceled(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())

	var ran atomic.Int32
	errc := make(chan error, 1)
	go func() { errc <- l.Run(ctx) }()

	done := make(chan struct{})
	l.Post(func() {
		ran.Add(1)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("posted task never ran")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
	if ran.Load() != 1 {
		t.Errorf("ran = %d, want 1", ran.Load())
	}
}

func TestLoopClose(t *testing.T) {
	l := NewLoop()
	errc := make(chan error, 1)
	go func() { errc <- l.Run(context.Background()) }()

	l.Close()
	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run after Close = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after Close")
	}
	if l.Post(func() {}) {
		t.Error("Post succeeded on a closed loop")
	}
}
