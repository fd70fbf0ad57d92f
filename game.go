// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"context"
	"fmt"
	"io"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gogpu/gglife/gpucore"
)

// Game is a running automaton: both pipelines, the state pair and the
// scheduler that drives them.
//
// Step, Present, State and Snapshot touch the device and must be called on
// the loop goroutine, or while the scheduler is stopped. Close may be called
// from any goroutine except from inside a loop task.
type Game struct {
	cfg     config
	ctx     *DeviceContext
	metrics *Metrics

	simProgram     *Program
	displayProgram *Program
	state          *StateStore
	sim            *Simulation
	display        *Display

	loop      *Loop
	scheduler *Scheduler

	done     chan struct{}
	doneOnce sync.Once
	closed   atomic.Bool

	// mu guards the closing transition and the active Run.
	mu        sync.Mutex
	runCancel context.CancelFunc
	runDone   chan struct{}
}

// New loads and compiles both programs, then allocates the geometry, the
// state textures and the framebuffers, in that order. On failure
// everything created so far is released and one of ResourceError,
// ShaderCompileError, ProgramLinkError or AllocationError is returned.
// Metrics are registered only once initialization succeeded.
//
// The device stays owned by the caller.
func New(dev gpucore.Device, loader Loader, opts ...Option) (*Game, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if loader == nil {
		loader = DefaultLoader()
	}

	g := &Game{
		cfg:  cfg,
		ctx:  NewDeviceContext(dev),
		loop: NewLoop(),
		done: make(chan struct{}),
	}
	trackDevice(dev)
	if err := g.init(loader); err != nil {
		g.release()
		return nil, err
	}
	metrics, err := NewMetrics(cfg.registerer)
	if err != nil {
		g.release()
		return nil, err
	}
	g.metrics = metrics

	refresh := cfg.refresh
	if refresh == nil {
		refresh = NewIntervalRefresh(cfg.clock, cfg.interval)
	}
	g.scheduler = NewScheduler(SchedulerConfig{
		Loop:     g.loop,
		Clock:    cfg.clock,
		Refresh:  refresh,
		Interval: cfg.interval,
		Step:     g.Step,
		Present:  g.Present,
	})

	w, h := g.state.Size()
	slogger().Info("gglife: game created",
		"grid", fmt.Sprintf("%dx%d", w, h),
		"edges", cfg.edges,
		"interval", cfg.interval)
	return g, nil
}

func (g *Game) init(loader Loader) error {
	src, err := loadSources(loader, g.cfg.shaderIDs)
	if err != nil {
		return err
	}
	dev := g.ctx.Device()

	if g.simProgram, err = compileProgram(dev, simulationLayout(g.cfg.shaderIDs), src.logic); err != nil {
		return err
	}
	if g.displayProgram, err = compileProgram(dev, displayLayout(g.cfg.shaderIDs), src.display); err != nil {
		return err
	}
	if err = g.ctx.createGeometry(); err != nil {
		return err
	}
	if g.state, err = g.newState(); err != nil {
		return err
	}
	if g.sim, err = NewSimulation(g.ctx, g.state, g.simProgram, g.cfg.edges); err != nil {
		return err
	}
	g.display = NewDisplay(g.ctx, g.state, g.displayProgram)
	return nil
}

type sources struct {
	logic, display programSources
}

// loadSources fetches the four program sources.
func loadSources(loader Loader, ids ShaderIDs) (sources, error) {
	var src sources
	for _, l := range []struct {
		id  string
		dst *string
	}{
		{ids.LogicFragment, &src.logic.fragment},
		{ids.LogicVertex, &src.logic.vertex},
		{ids.DisplayFragment, &src.display.fragment},
		{ids.DisplayVertex, &src.display.vertex},
	} {
		text, err := loader.Load(l.id)
		if err != nil {
			return sources{}, err
		}
		*l.dst = text
	}
	return src, nil
}

func (g *Game) newState() (*StateStore, error) {
	if g.cfg.initial != nil {
		return NewStateStore(g.ctx, g.cfg.initial)
	}
	w, h := g.cfg.width, g.cfg.height
	if w == 0 && h == 0 {
		if g.cfg.cellSize <= 0 {
			return nil, &AllocationError{Resource: "state texture", Err: fmt.Errorf("%w: cell size %d", ErrInvalidSize, g.cfg.cellSize)}
		}
		sw, sh := g.ctx.SurfaceSize()
		w, h = max(sw/g.cfg.cellSize, 1), max(sh/g.cfg.cellSize, 1)
	}
	seed := g.cfg.seed
	if !g.cfg.seeded {
		seed = rand.Uint64() //nolint:gosec // simulation seed
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)) //nolint:gosec // simulation seed
	return InitializeRandom(g.ctx, w, h, g.cfg.probability, rng)
}

// Step advances the simulation by one generation.
func (g *Game) Step() error {
	if g.closed.Load() {
		return ErrClosed
	}
	start := time.Now()
	if err := g.sim.Step(); err != nil {
		g.metrics.Failures.WithLabelValues(chainStep).Inc()
		return err
	}
	g.metrics.StepSeconds.Observe(time.Since(start).Seconds())
	g.metrics.Generations.Inc()

	if g.cfg.limit > 0 && g.sim.Generation() >= g.cfg.limit {
		g.scheduler.Stop()
		g.doneOnce.Do(func() { close(g.done) })
	}
	return nil
}

// Present draws the current generation onto the surface.
func (g *Game) Present() error {
	if g.closed.Load() {
		return ErrClosed
	}
	if err := g.display.Present(); err != nil {
		g.metrics.Failures.WithLabelValues(chainPresent).Inc()
		return err
	}
	g.metrics.Frames.Inc()
	return nil
}

// Generation returns the number of completed steps.
func (g *Game) Generation() uint64 { return g.sim.Generation() }

// Size returns the grid size in cells.
func (g *Game) Size() (int, int) { return g.state.Size() }

// EdgeMode returns the border policy.
func (g *Game) EdgeMode() EdgeMode { return g.cfg.edges }

// Metrics returns the game's collectors.
func (g *Game) Metrics() *Metrics { return g.metrics }

// Loop returns the task loop the scheduler posts to.
func (g *Game) Loop() *Loop { return g.loop }

// Scheduler returns the game's scheduler.
func (g *Game) Scheduler() *Scheduler { return g.scheduler }

// StateStore returns the texture pair.
func (g *Game) StateStore() *StateStore { return g.state }

// Done is closed once the generation limit is reached.
func (g *Game) Done() <-chan struct{} { return g.done }

// State reads the current generation back to the host.
func (g *Game) State() (*Grid, error) {
	if g.closed.Load() {
		return nil, ErrClosed
	}
	return g.state.Read()
}

// Snapshot writes the current generation as a PNG, one cell per
// cell-size block.
func (g *Game) Snapshot(w io.Writer) error {
	grid, err := g.State()
	if err != nil {
		return err
	}
	return grid.WritePNG(w, max(g.cfg.cellSize, 1))
}

// Start arms the step and present chains.
func (g *Game) Start() {
	if !g.closed.Load() {
		g.scheduler.Start()
	}
}

// Stop halts both chains.
func (g *Game) Stop() {
	if g.scheduler != nil {
		g.scheduler.Stop()
	}
}

// Run starts the scheduler and executes the loop on the calling goroutine
// until ctx is done or the generation limit is reached. Reaching the limit
// returns nil; otherwise Run returns ctx.Err().
func (g *Game) Run(ctx context.Context) error {
	g.mu.Lock()
	if g.closed.Load() {
		g.mu.Unlock()
		return ErrClosed
	}
	ctx, cancel := context.WithCancel(ctx)
	finished := make(chan struct{})
	g.runCancel, g.runDone = cancel, finished
	g.mu.Unlock()
	defer func() {
		g.mu.Lock()
		g.runCancel, g.runDone = nil, nil
		g.mu.Unlock()
		close(finished)
	}()
	defer cancel()
	go func() {
		select {
		case <-g.done:
			cancel()
		case <-ctx.Done():
		}
	}()

	g.Start()
	defer g.Stop()

	err := g.loop.Run(ctx)
	select {
	case <-g.done:
		return nil
	default:
		return err
	}
}

// Close stops the scheduler and releases framebuffers, textures, geometry
// and programs in reverse creation order. The device is not destroyed.
//
// A Run in progress on another goroutine is canceled, and Close waits for
// it to return before releasing anything.
func (g *Game) Close() error {
	g.mu.Lock()
	if g.closed.Load() {
		g.mu.Unlock()
		return nil
	}
	g.closed.Store(true)
	cancel, running := g.runCancel, g.runDone
	g.mu.Unlock()
	if cancel != nil {
		cancel()
		<-running
	}

	g.Stop()
	g.loop.Close()
	g.release()
	slogger().Info("gglife: game closed", "generations", g.Generation())
	return nil
}

func (g *Game) release() {
	if g.sim != nil {
		g.sim.release()
	}
	if g.state != nil {
		g.state.release()
	}
	g.ctx.release()
	if g.displayProgram != nil {
		g.displayProgram.release()
	}
	if g.simProgram != nil {
		g.simProgram.release()
	}
	untrackDevice(g.ctx.Device())
}
