// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Chain labels of the failures counter.
const (
	chainStep    = "step"
	chainPresent = "present"
)

// Metrics holds the Prometheus collectors of one game.
type Metrics struct {
	// Generations counts completed steps.
	Generations prometheus.Counter

	// Frames counts presented frames.
	Frames prometheus.Counter

	// StepSeconds observes the time spent recording and submitting a step.
	StepSeconds prometheus.Histogram

	// Failures counts failed steps and presents by chain.
	Failures *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg. A nil
// reg leaves them unregistered. Collectors already registered with reg by
// an earlier game are reused, so their counts carry over.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gglife",
			Name:      "generations_total",
			Help:      "Number of completed simulation steps",
		}),
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "gglife",
			Name:      "frames_total",
			Help:      "Number of presented frames",
		}),
		StepSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "gglife",
			Name:      "step_seconds",
			Help:      "Time to record and submit one simulation step in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
		Failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "gglife",
			Name:      "failures_total",
			Help:      "Failed steps and presents by chain",
		}, []string{"chain"}),
	}
	if reg == nil {
		return m, nil
	}

	var err error
	if m.Generations, err = register(reg, m.Generations); err != nil {
		return nil, err
	}
	if m.Frames, err = register(reg, m.Frames); err != nil {
		return nil, err
	}
	if m.StepSeconds, err = register(reg, m.StepSeconds); err != nil {
		return nil, err
	}
	if m.Failures, err = register(reg, m.Failures); err != nil {
		return nil, err
	}
	return m, nil
}

// register adds c to reg, or returns the equal collector reg already holds.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	err := reg.Register(c)
	if err == nil {
		return c, nil
	}
	var are prometheus.AlreadyRegisteredError
	if errors.As(err, &are) {
		if existing, ok := are.ExistingCollector.(C); ok {
			return existing, nil
		}
	}
	return c, fmt.Errorf("gglife: register metrics: %w", err)
}
