// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSetLoggerLogsDeviceCreation(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))

	d := New(Options{SurfaceWidth: 4, SurfaceHeight: 4, Workers: 1})
	d.Destroy()

	if !strings.Contains(buf.String(), "software: device created") {
		t.Errorf("log output lacks device creation:\n%s", buf.String())
	}
}
