// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package backend

import (
	"errors"

	"github.com/gogpu/gglife/gpucore"
)

// Backend names.
const (
	Native   = "native"
	Software = "software"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not registered.
	ErrBackendNotAvailable = errors.New("backend: not available")
)

// Config carries the parameters a factory needs to open a device.
type Config struct {
	// SurfaceWidth and SurfaceHeight size the visible surface in pixels.
	SurfaceWidth, SurfaceHeight int

	// Provider optionally shares an existing GPU device, typically the one
	// owned by a gogpu window. It must expose HalDevice() any and
	// HalQueue() any. Backends that cannot share a device ignore it.
	Provider any
}

// Factory opens a device. It is registered by backend packages from init().
type Factory func(cfg Config) (gpucore.Device, error)
