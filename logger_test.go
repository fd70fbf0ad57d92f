// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestNopHandler_Enabled(t *testing.T) {
	h := nopHandler{}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
		if h.Enabled(context.Background(), level) {
			t.Errorf("nopHandler.Enabled(%v) = true, want false", level)
		}
	}
}

func TestNopHandler_WithAttrs(t *testing.T) {
	h := nopHandler{}
	if _, ok := h.WithAttrs([]slog.Attr{slog.String("key", "val")}).(nopHandler); !ok {
		t.Error("nopHandler.WithAttrs() did not return nopHandler")
	}
	if _, ok := h.WithGroup("group").(nopHandler); !ok {
		t.Error("nopHandler.WithGroup() did not return nopHandler")
	}
}

func TestLoggerDefaultSilent(t *testing.T) {
	l := Logger()
	if l == nil {
		t.Fatal("Logger() returned nil")
	}
	for _, level := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn} {
		if l.Enabled(context.Background(), level) {
			t.Errorf("default logger should not be enabled for %v", level)
		}
	}
}

func TestSetLogger(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	var buf bytes.Buffer
	custom := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	SetLogger(custom)

	if Logger() != custom {
		t.Error("Logger() did not return the custom logger set via SetLogger")
	}

	dev := newSoftwareDevice(t, 8, 8)
	newGame(t, dev, WithSeed(1))
	if !strings.Contains(buf.String(), "game created") {
		t.Errorf("expected lifecycle log, got: %s", buf.String())
	}
}

func TestSetLoggerNilRestoresSilent(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	SetLogger(slog.Default())
	SetLogger(nil)

	l := Logger()
	if l == nil {
		t.Fatal("SetLogger(nil) should set nop logger, not nil")
	}
	if l.Enabled(context.Background(), slog.LevelError) {
		t.Error("SetLogger(nil) should produce a disabled logger")
	}
}

type mockDevice struct {
	logger *slog.Logger
}

func (m *mockDevice) SetLogger(l *slog.Logger) { m.logger = l }

func TestSetLoggerPropagatesToTrackedDevices(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	mock := &mockDevice{}
	trackDevice(mock)
	if mock.logger != Logger() {
		t.Error("trackDevice did not pass the current logger")
	}

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)
	if mock.logger != custom {
		t.Error("SetLogger did not propagate to a tracked device")
	}

	untrackDevice(mock)
	SetLogger(nil)
	if mock.logger != custom {
		t.Error("SetLogger reached an untracked device")
	}
}

func TestSharedDeviceKeepsLoggerAfterOneGameCloses(t *testing.T) {
	orig := Logger()
	t.Cleanup(func() { SetLogger(orig) })

	mock := &mockDevice{}
	trackDevice(mock)
	trackDevice(mock)
	untrackDevice(mock)

	custom := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	SetLogger(custom)
	if mock.logger != custom {
		t.Error("closing one game stopped propagation to the shared device")
	}

	untrackDevice(mock)
	SetLogger(nil)
	if mock.logger != custom {
		t.Error("SetLogger reached a device with no live games")
	}
}
