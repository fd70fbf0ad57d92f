// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Command gglife runs Conway's Game of Life on the GPU.
//
// Usage:
//
//	gglife [flags]
//
// By default a window is opened on the native backend. With -headless the
// simulation runs offscreen on any backend, typically until -generations
// is reached, and -snapshot writes the final generation as PNG.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gglife/backend"
	_ "github.com/gogpu/gglife/backend/native"   // Register native backend
	"github.com/gogpu/gglife/backend/software"
	"github.com/gogpu/gglife/gpucore"
)

type config struct {
	backend     string
	width       int
	height      int
	cell        int
	seed        uint64
	seeded      bool
	density     float64
	interval    time.Duration
	edges       gglife.EdgeMode
	shaders     string
	headless    bool
	refresh     time.Duration
	generations uint64
	snapshot    string
	metrics     string
	verbose     bool
}

func parseFlags(args []string, stderr io.Writer) (*config, error) {
	fs := flag.NewFlagSet("gglife", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		cfg   config
		edges string
		seed  int64
	)
	fs.StringVar(&cfg.backend, "backend", "", "device backend: native or software (default: best available)")
	fs.IntVar(&cfg.width, "width", 256, "grid width in cells")
	fs.IntVar(&cfg.height, "height", 192, "grid height in cells")
	fs.IntVar(&cfg.cell, "cell", 4, "cell size in pixels")
	fs.Int64Var(&seed, "seed", -1, "random seed (negative: random)")
	fs.Float64Var(&cfg.density, "density", gglife.DefaultProbability, "probability of a cell starting alive")
	fs.DurationVar(&cfg.interval, "interval", gglife.DefaultInterval, "delay between generations")
	fs.StringVar(&edges, "edges", "wrap", "edge policy: wrap or clamp")
	fs.StringVar(&cfg.shaders, "shaders", "", "shader directory or http(s) base URL (default: embedded)")
	fs.BoolVar(&cfg.headless, "headless", false, "run offscreen without a window")
	fs.DurationVar(&cfg.refresh, "refresh", 16*time.Millisecond, "headless present interval")
	fs.Uint64Var(&cfg.generations, "generations", 0, "stop after this many generations (0: run until interrupted)")
	fs.StringVar(&cfg.snapshot, "snapshot", "", "write the last generation to this PNG file")
	fs.StringVar(&cfg.metrics, "metrics", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&cfg.verbose, "v", false, "verbose logging")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s", strings.Join(fs.Args(), " "))
	}
	if cfg.width <= 0 || cfg.height <= 0 || cfg.cell <= 0 {
		return nil, fmt.Errorf("width, height and cell must be positive, got %d, %d, %d", cfg.width, cfg.height, cfg.cell)
	}
	if cfg.density < 0 || cfg.density > 1 {
		return nil, fmt.Errorf("density %v outside [0, 1]", cfg.density)
	}
	var err error
	if cfg.edges, err = gglife.ParseEdgeMode(edges); err != nil {
		return nil, err
	}
	if seed >= 0 {
		cfg.seed, cfg.seeded = uint64(seed), true
	}
	return &cfg, nil
}

// gameOptions maps the flags onto game options.
func (c *config) gameOptions(reg prometheus.Registerer) []gglife.Option {
	opts := []gglife.Option{
		gglife.WithGridSize(c.width, c.height),
		gglife.WithCellSize(c.cell),
		gglife.WithProbability(c.density),
		gglife.WithInterval(c.interval),
		gglife.WithEdgeMode(c.edges),
		gglife.WithGenerationLimit(c.generations),
		gglife.WithMetrics(reg),
	}
	if c.seeded {
		opts = append(opts, gglife.WithSeed(c.seed))
	}
	return opts
}

// newLoader resolves the -shaders flag.
func newLoader(src string) (gglife.Loader, error) {
	switch {
	case src == "":
		return gglife.DefaultLoader(), nil
	case strings.HasPrefix(src, "http://"), strings.HasPrefix(src, "https://"):
		return gglife.NewHTTPLoader(src, nil)
	default:
		info, err := os.Stat(src)
		if err != nil {
			return nil, fmt.Errorf("shader directory: %w", err)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("shader directory: %s is not a directory", src)
		}
		return gglife.FSLoader{FS: os.DirFS(src)}, nil
	}
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// setLoggers installs l in gglife and in the backends before any device
// is opened, so device creation is logged too.
func setLoggers(l *slog.Logger) {
	gglife.SetLogger(l)
	software.SetLogger(l)
	setNativeLogger(l)
}

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	return reg
}

// serveMetrics serves reg on addr until ctx is done.
func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()

	select {
	case err := <-errc:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("metrics server shutdown: %w", err)
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func saveSnapshot(g *gglife.Game, path string) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return err
	}
	if err := g.Snapshot(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// runHeadless runs the game offscreen. The loop and the metrics server
// share one errgroup; the loop finishing stops the server.
func runHeadless(ctx context.Context, cfg *config, loader gglife.Loader, reg *prometheus.Registry) error {
	devCfg := backend.Config{SurfaceWidth: cfg.width * cfg.cell, SurfaceHeight: cfg.height * cfg.cell}
	device, err := openDevice(cfg.backend, devCfg)
	if err != nil {
		return err
	}
	defer device.Destroy()

	opts := append(cfg.gameOptions(reg), gglife.WithRefresh(gglife.NewIntervalRefresh(nil, cfg.refresh)))
	g, err := gglife.New(device, loader, opts...)
	if err != nil {
		return err
	}
	defer func() { _ = g.Close() }()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		defer cancel()
		if err := g.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})
	if cfg.metrics != "" {
		eg.Go(func() error { return serveMetrics(ctx, cfg.metrics, reg) })
	}
	if err := eg.Wait(); err != nil {
		return err
	}

	gglife.Logger().Info("headless run finished", "generations", g.Generation())
	if cfg.snapshot != "" {
		if err := saveSnapshot(g, cfg.snapshot); err != nil {
			return fmt.Errorf("snapshot: %w", err)
		}
	}
	return nil
}

// openDevice opens the named backend, or the best available one when name
// is empty.
func openDevice(name string, cfg backend.Config) (gpucore.Device, error) {
	if name == "" {
		dev, chosen, err := backend.OpenDefault(cfg)
		if err != nil {
			return nil, err
		}
		gglife.Logger().Info("backend selected", "backend", chosen)
		return dev, nil
	}
	return backend.Open(name, cfg)
}

func run(ctx context.Context, args []string, stderr io.Writer) error {
	cfg, err := parseFlags(args, stderr)
	if err != nil {
		return err
	}
	setLoggers(newLogger(stderr, cfg.verbose))

	loader, err := newLoader(cfg.shaders)
	if err != nil {
		return err
	}
	reg := newRegistry()

	if cfg.headless {
		return runHeadless(ctx, cfg, loader, reg)
	}
	return runWindow(ctx, cfg, loader, reg)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "gglife:", err)
		os.Exit(1)
	}
}
