// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"
	"testing"

	"github.com/gogpu/gglife/gpucore"
)

var errNoAdapter = errors.New("no adapter")

// withFactories replaces the registry for the duration of a test.
func withFactories(t *testing.T, fs map[string]Factory) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = fs
	registryMu.Unlock()
	t.Cleanup(func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	})
}

func failing(Config) (gpucore.Device, error) { return nil, errNoAdapter }

func TestAvailableSorted(t *testing.T) {
	withFactories(t, map[string]Factory{"zeta": failing, Software: failing, Native: failing})

	got := Available()
	want := []string{Native, Software, "zeta"}
	if len(got) != len(want) {
		t.Fatalf("Available() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Available()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRegisterUnregister(t *testing.T) {
	withFactories(t, map[string]Factory{})

	Register("test", failing)
	if !IsRegistered("test") {
		t.Fatal("IsRegistered(test) = false after Register")
	}
	Unregister("test")
	if IsRegistered("test") {
		t.Error("IsRegistered(test) = true after Unregister")
	}
}

func TestOpenUnknown(t *testing.T) {
	withFactories(t, map[string]Factory{})

	_, err := Open("missing", Config{})
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("Open(missing) error = %v, want ErrBackendNotAvailable", err)
	}
}

func TestOpenPassesConfig(t *testing.T) {
	var got Config
	withFactories(t, map[string]Factory{
		Software: func(cfg Config) (gpucore.Device, error) {
			got = cfg
			return nil, nil
		},
	})

	if _, err := Open(Software, Config{SurfaceWidth: 64, SurfaceHeight: 32}); err != nil {
		t.Fatalf("Open: %v", err)
	}
	if got.SurfaceWidth != 64 || got.SurfaceHeight != 32 {
		t.Errorf("factory saw %+v, want 64x32", got)
	}
}

func TestOpenDefaultFallsBack(t *testing.T) {
	var opened []string
	record := func(name string, err error) Factory {
		return func(Config) (gpucore.Device, error) {
			opened = append(opened, name)
			return nil, err
		}
	}
	withFactories(t, map[string]Factory{
		Native:   record(Native, errNoAdapter),
		Software: record(Software, nil),
	})

	_, name, err := OpenDefault(Config{})
	if err != nil {
		t.Fatalf("OpenDefault: %v", err)
	}
	if name != Software {
		t.Errorf("OpenDefault picked %q, want %q", name, Software)
	}
	if len(opened) != 2 || opened[0] != Native {
		t.Errorf("open order = %v, want native first", opened)
	}
}

func TestOpenDefaultAllFail(t *testing.T) {
	withFactories(t, map[string]Factory{Native: failing})

	_, _, err := OpenDefault(Config{})
	if !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("error = %v, want ErrBackendNotAvailable", err)
	}
	if !errors.Is(err, errNoAdapter) {
		t.Errorf("error = %v, want it to carry the factory error", err)
	}
}

func TestOpenDefaultEmpty(t *testing.T) {
	withFactories(t, map[string]Factory{})

	if _, _, err := OpenDefault(Config{}); !errors.Is(err, ErrBackendNotAvailable) {
		t.Errorf("error = %v, want ErrBackendNotAvailable", err)
	}
}
