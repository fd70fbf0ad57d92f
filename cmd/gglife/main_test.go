// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gogpu/gglife"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, c *config)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, c *config) {
				if c.width != 256 || c.height != 192 || c.cell != 4 {
					t.Errorf("size = %dx%d cell %d", c.width, c.height, c.cell)
				}
				if c.seeded {
					t.Error("seeded without -seed")
				}
				if c.edges != gglife.EdgeWrap {
					t.Errorf("edges = %v", c.edges)
				}
			},
		},
		{
			name: "headless run",
			args: []string{"-headless", "-backend", "software", "-seed", "7", "-edges", "clamp", "-generations", "10"},
			check: func(t *testing.T, c *config) {
				if !c.headless || c.backend != "software" || c.generations != 10 {
					t.Errorf("config = %+v", c)
				}
				if !c.seeded || c.seed != 7 {
					t.Errorf("seed = %d, seeded = %v", c.seed, c.seeded)
				}
				if c.edges != gglife.EdgeClamp {
					t.Errorf("edges = %v", c.edges)
				}
			},
		},
		{name: "bad edges", args: []string{"-edges", "mirror"}, wantErr: true},
		{name: "zero cell", args: []string{"-cell", "0"}, wantErr: true},
		{name: "density above one", args: []string{"-density", "1.5"}, wantErr: true},
		{name: "positional argument", args: []string{"extra"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := parseFlags(tt.args, io.Discard)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseFlags error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.check != nil {
				tt.check(t, c)
			}
		})
	}
}

func TestNewLoader(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "shader", "vertex"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "shader", "vertex", "logic.vert"), []byte("src"), 0o600); err != nil {
		t.Fatal(err)
	}

	l, err := newLoader(dir)
	if err != nil {
		t.Fatalf("newLoader(dir): %v", err)
	}
	if got, err := l.Load("shader/vertex/logic.vert"); err != nil || got != "src" {
		t.Errorf("Load = %q, %v", got, err)
	}

	if _, err := newLoader(filepath.Join(dir, "missing")); err == nil {
		t.Error("newLoader accepted a missing directory")
	}
	if _, err := newLoader("https://example.com/assets"); err != nil {
		t.Errorf("newLoader(url): %v", err)
	}
	if _, err := newLoader(""); err != nil {
		t.Errorf("newLoader(\"\"): %v", err)
	}
}

func TestRunHeadlessWritesSnapshot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "life.png")
	args := []string{
		"-headless", "-backend", "software",
		"-width", "16", "-height", "8", "-cell", "2",
		"-seed", "1", "-interval", "1ms", "-refresh", "1ms",
		"-generations", "5", "-snapshot", out,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := run(ctx, args, io.Discard); err != nil {
		t.Fatalf("run: %v", err)
	}
	t.Cleanup(func() { setLoggers(nil) })

	f, err := os.Open(out)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 32 || b.Dy() != 16 {
		t.Errorf("snapshot bounds = %v, want 32x16", b)
	}
}

func TestRunHeadlessUnknownBackend(t *testing.T) {
	err := run(context.Background(), []string{"-headless", "-backend", "opencl"}, io.Discard)
	t.Cleanup(func() { setLoggers(nil) })
	if err == nil {
		t.Error("run accepted an unknown backend")
	}
}
