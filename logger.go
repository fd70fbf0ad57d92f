// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

// nopHandler is a slog.Handler that silently discards all log records.
// Enabled returns false so callers skip message formatting entirely.
type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (nopHandler) WithAttrs([]slog.Attr) slog.Handler        { return nopHandler{} }
func (nopHandler) WithGroup(string) slog.Handler             { return nopHandler{} }

// newNopLogger creates a logger that silently discards all output.
func newNopLogger() *slog.Logger { return slog.New(nopHandler{}) }

// loggerPtr stores the active logger. Accessed atomically so that
// SetLogger can be called concurrently with logging from any goroutine.
var loggerPtr atomic.Pointer[slog.Logger]

// devices counts the live games of each device so SetLogger can reach it.
var (
	devicesMu sync.Mutex
	devices   = make(map[any]int)
)

func init() {
	loggerPtr.Store(newNopLogger())
}

// SetLogger configures the logger for gglife and the devices of live games.
// By default, gglife produces no log output. Pass nil to restore the
// silent default.
//
// Log levels used by gglife:
//   - [slog.LevelDebug]: resource creation (shaders, programs, textures)
//   - [slog.LevelInfo]: lifecycle (game created, scheduler started/stopped)
//   - [slog.LevelWarn]: failed steps or presents; the chains keep running
//
// Example:
//
//	gglife.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = newNopLogger()
	}
	loggerPtr.Store(l)

	devicesMu.Lock()
	defer devicesMu.Unlock()
	for d := range devices {
		propagateLogger(d, l)
	}
}

// Logger returns the current logger used by gglife.
func Logger() *slog.Logger {
	return loggerPtr.Load()
}

// slogger is the package-internal shorthand for Logger.
func slogger() *slog.Logger { return loggerPtr.Load() }

// loggerSetter is implemented by devices that accept a logger.
type loggerSetter interface {
	SetLogger(*slog.Logger)
}

// propagateLogger passes the logger to d if it implements loggerSetter.
func propagateLogger(d any, l *slog.Logger) {
	if ls, ok := d.(loggerSetter); ok {
		ls.SetLogger(l)
	}
}

func trackDevice(d any) {
	devicesMu.Lock()
	devices[d]++
	devicesMu.Unlock()
	propagateLogger(d, Logger())
}

// untrackDevice drops one game's reference to d. The device keeps
// receiving loggers while other games still use it.
func untrackDevice(d any) {
	devicesMu.Lock()
	defer devicesMu.Unlock()
	if devices[d] <= 1 {
		delete(devices, d)
		return
	}
	devices[d]--
}
