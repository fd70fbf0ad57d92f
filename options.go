// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/gglife/shaders"
)

// DefaultProbability is the chance of a cell starting alive.
const DefaultProbability = 0.5

// ShaderIDs names the four program sources passed to the Loader.
type ShaderIDs struct {
	LogicFragment   string
	LogicVertex     string
	DisplayFragment string
	DisplayVertex   string
}

// DefaultShaderIDs returns the identifiers of the embedded programs.
func DefaultShaderIDs() ShaderIDs {
	return ShaderIDs{
		LogicFragment:   shaders.LogicFragment,
		LogicVertex:     shaders.LogicVertex,
		DisplayFragment: shaders.DisplayFragment,
		DisplayVertex:   shaders.DisplayVertex,
	}
}

// Option configures a Game during creation.
//
// Example:
//
//	g, err := gglife.New(dev, gglife.DefaultLoader(),
//	    gglife.WithSeed(42),
//	    gglife.WithCellSize(4),
//	    gglife.WithEdgeMode(gglife.EdgeClamp))
type Option func(*config)

type config struct {
	seed        uint64
	seeded      bool
	probability float64
	interval    time.Duration
	edges       EdgeMode
	shaderIDs   ShaderIDs

	// width and height of the grid; zero derives them from the surface.
	width, height int
	cellSize      int
	initial       *Grid

	registerer prometheus.Registerer
	clock      Clock
	refresh    RefreshSource
	limit      uint64
}

func defaultConfig() config {
	return config{
		probability: DefaultProbability,
		interval:    DefaultInterval,
		edges:       EdgeWrap,
		shaderIDs:   DefaultShaderIDs(),
		cellSize:    1,
		clock:       SystemClock{},
	}
}

// WithSeed makes the random initial state reproducible. Without it the
// seed is random.
func WithSeed(seed uint64) Option {
	return func(c *config) {
		c.seed = seed
		c.seeded = true
	}
}

// WithProbability sets the chance of each cell starting alive. Values are
// clamped to [0, 1].
func WithProbability(p float64) Option {
	return func(c *config) {
		c.probability = min(max(p, 0), 1)
	}
}

// WithInterval sets the delay between steps.
func WithInterval(d time.Duration) Option {
	return func(c *config) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithEdgeMode selects the border policy of the transition rule.
func WithEdgeMode(m EdgeMode) Option {
	return func(c *config) {
		c.edges = m
	}
}

// WithShaderIDs overrides the identifiers passed to the Loader.
func WithShaderIDs(ids ShaderIDs) Option {
	return func(c *config) {
		c.shaderIDs = ids
	}
}

// WithGridSize fixes the grid size in cells. By default the grid covers
// the surface at the configured cell size.
func WithGridSize(width, height int) Option {
	return func(c *config) {
		c.width, c.height = width, height
	}
}

// WithCellSize sets the on-screen size of one cell in pixels. It only
// affects the default grid size and snapshots; the display program scales
// the grid to whatever surface it is given.
func WithCellSize(px int) Option {
	return func(c *config) {
		c.cellSize = px
	}
}

// WithInitialGrid starts from g instead of a random state. The grid size
// is taken from g.
func WithInitialGrid(g *Grid) Option {
	return func(c *config) {
		c.initial = g
	}
}

// WithMetrics registers the game's collectors with reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(c *config) {
		c.registerer = reg
	}
}

// WithClock replaces the clock that arms the step chain.
func WithClock(clock Clock) Option {
	return func(c *config) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// WithRefresh sets the refresh source of the present chain. Without it
// the game presents at the step interval.
func WithRefresh(r RefreshSource) Option {
	return func(c *config) {
		c.refresh = r
	}
}

// WithGenerationLimit stops the scheduler after n generations. Zero runs
// until stopped.
func WithGenerationLimit(n uint64) Option {
	return func(c *config) {
		c.limit = n
	}
}
