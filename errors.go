// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"errors"
	"fmt"

	"github.com/gogpu/gglife/gpucore"
)

// Sentinel errors.
var (
	// ErrResourceUnavailable is matched by every loader failure.
	ErrResourceUnavailable = errors.New("gglife: resource unavailable")

	// ErrInvalidSize is returned for non-positive grid or cell sizes.
	ErrInvalidSize = errors.New("gglife: invalid size")

	// ErrExceedsLimits is returned when a texture is larger than the device
	// allows.
	ErrExceedsLimits = errors.New("gglife: exceeds device texture limits")

	// ErrClosed is returned by operations on a closed Game.
	ErrClosed = errors.New("gglife: game closed")
)

// ResourceError reports a failed Loader.Load. It matches
// ErrResourceUnavailable with errors.Is.
type ResourceError struct {
	ID  string
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("gglife: resource %q unavailable: %v", e.ID, e.Err)
}

// Unwrap returns the underlying cause.
func (e *ResourceError) Unwrap() error { return e.Err }

// Is reports whether target is ErrResourceUnavailable.
func (e *ResourceError) Is(target error) bool { return target == ErrResourceUnavailable }

// ShaderCompileError reports a shader stage the device rejected.
type ShaderCompileError struct {
	// Pipeline is "simulation" or "display".
	Pipeline string
	Stage    gpucore.Stage
	// ID is the resource identifier the source was loaded from.
	ID  string
	Err error
}

func (e *ShaderCompileError) Error() string {
	return fmt.Sprintf("gglife: %s pipeline: compile %s shader %q: %v", e.Pipeline, e.Stage, e.ID, e.Err)
}

// Unwrap returns the device error.
func (e *ShaderCompileError) Unwrap() error { return e.Err }

// ProgramLinkError reports a stage pair that failed to link.
type ProgramLinkError struct {
	Pipeline string
	Err      error
}

func (e *ProgramLinkError) Error() string {
	return fmt.Sprintf("gglife: %s pipeline: link program: %v", e.Pipeline, e.Err)
}

// Unwrap returns the device error.
func (e *ProgramLinkError) Unwrap() error { return e.Err }

// AllocationError reports a texture, framebuffer or buffer the device
// could not allocate.
type AllocationError struct {
	// Resource names what was being allocated.
	Resource      string
	Width, Height int
	Err           error
}

func (e *AllocationError) Error() string {
	if e.Width == 0 && e.Height == 0 {
		return fmt.Sprintf("gglife: allocate %s: %v", e.Resource, e.Err)
	}
	return fmt.Sprintf("gglife: allocate %s %dx%d: %v", e.Resource, e.Width, e.Height, e.Err)
}

// Unwrap returns the underlying cause.
func (e *AllocationError) Unwrap() error { return e.Err }
