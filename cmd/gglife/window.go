// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/gogpu"
	"github.com/gogpu/gpucontext"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/gogpu/gglife"
	"github.com/gogpu/gglife/backend/native"
)

// window drives a game from a gogpu window. The window owns the thread:
// every loop task runs inside the draw callback, and each draw signals the
// refresh-aligned present chain.
type window struct {
	app    *gogpu.App
	cfg    *config
	loader gglife.Loader
	reg    *prometheus.Registry

	signal *gglife.FrameSignal
	dev    *native.Device
	game   *gglife.Game
	token  *gogpu.AnimationToken
	paused bool
	err    error
}

func runWindow(ctx context.Context, cfg *config, loader gglife.Loader, reg *prometheus.Registry) error {
	if cfg.backend != "" && cfg.backend != "native" {
		return fmt.Errorf("backend %q cannot open a window, use -headless", cfg.backend)
	}

	w := &window{
		app: gogpu.NewApp(gogpu.DefaultConfig().
			WithTitle("gglife").
			WithSize(cfg.width*cfg.cell, cfg.height*cfg.cell).
			WithContinuousRender(false)),
		cfg:    cfg,
		loader: loader,
		reg:    reg,
		signal: gglife.NewFrameSignal(),
	}
	w.app.OnDraw(w.draw)
	w.app.OnClose(w.close)
	w.app.EventSource().OnKeyPress(func(key gpucontext.Key, _ gpucontext.Modifiers) {
		if key == gpucontext.KeySpace {
			w.togglePause()
		}
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	metricsErr := make(chan error, 1)
	if cfg.metrics != "" {
		go func() { metricsErr <- serveMetrics(ctx, cfg.metrics, reg) }()
	}
	go func() {
		<-ctx.Done()
		w.app.Quit()
	}()

	if err := w.app.Run(); err != nil {
		return err
	}
	cancel()
	if cfg.metrics != "" {
		if err := <-metricsErr; err != nil {
			return err
		}
	}
	return w.err
}

// start opens a device on the window's GPU context and creates the game.
func (w *window) start(dc *gogpu.Context) error {
	provider := w.app.GPUContextProvider()
	if provider == nil {
		return errNotReady
	}
	dev, err := native.Open(native.Options{
		SurfaceWidth:  dc.Width(),
		SurfaceHeight: dc.Height(),
		Provider:      provider,
	})
	if err != nil {
		return err
	}
	opts := append(w.cfg.gameOptions(w.reg), gglife.WithRefresh(w.signal))
	g, err := gglife.New(dev, w.loader, opts...)
	if err != nil {
		dev.Destroy()
		return err
	}
	w.dev, w.game = dev, g
	g.Start()
	w.token = w.app.StartAnimation()
	return nil
}

var errNotReady = errors.New("gpu context not ready")

func (w *window) draw(dc *gogpu.Context) {
	if w.err != nil || dc.Width() <= 0 || dc.Height() <= 0 {
		return
	}
	if w.game == nil {
		if err := w.start(dc); err != nil {
			if errors.Is(err, errNotReady) {
				return
			}
			w.err = err
			w.app.Quit()
			return
		}
	}

	view := dc.SurfaceView()
	if view == nil {
		return
	}
	w.dev.SetSurfaceView(view.HalTextureView(), dc.Width(), dc.Height())
	if w.paused {
		if err := w.game.Present(); err != nil {
			gglife.Logger().Warn("present failed", "err", err)
		}
	} else {
		w.signal.Signal()
		w.game.Loop().Drain()
	}
	w.dev.SetSurfaceView(nil, 0, 0)

	select {
	case <-w.game.Done():
		w.app.Quit()
	default:
	}
}

// togglePause stops or restarts the scheduler. While paused the window
// stops animating and redraws the frozen generation on demand.
func (w *window) togglePause() {
	if w.game == nil {
		return
	}
	w.paused = !w.paused
	if w.paused {
		w.game.Stop()
		if w.token != nil {
			w.token.Stop()
			w.token = nil
		}
		gglife.Logger().Info("paused", "generation", w.game.Generation())
		return
	}
	w.game.Start()
	w.token = w.app.StartAnimation()
	gglife.Logger().Info("resumed")
}

func (w *window) close() {
	if w.token != nil {
		w.token.Stop()
	}
	if w.game == nil {
		return
	}
	w.game.Stop()
	if w.cfg.snapshot != "" {
		if err := saveSnapshot(w.game, w.cfg.snapshot); err != nil && w.err == nil {
			w.err = fmt.Errorf("snapshot: %w", err)
		}
	}
	_ = w.game.Close()
	w.dev.Destroy()
}

func setNativeLogger(l *slog.Logger) { native.SetLogger(l) }
