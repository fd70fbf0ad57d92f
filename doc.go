// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gglife runs Conway's Game of Life on a GPU.
//
// # Overview
//
// Cell state lives in a pair of RGBA8 textures. Each step draws a
// full-screen quad through a transition program that samples the current
// texture and renders the next generation into a framebuffer bound to the
// other one; then the pair swaps. A separate display program samples the
// current texture onto the visible surface.
//
// Stepping and presenting run on independent cadences: a fixed-delay timer
// drives the simulation and the display refresh drives presentation. Both
// are serialized onto one [Loop].
//
// # Quick Start
//
//	import (
//	    "github.com/gogpu/gglife"
//	    "github.com/gogpu/gglife/backend/software"
//	)
//
//	dev := software.New(software.Options{SurfaceWidth: 512, SurfaceHeight: 512})
//	defer dev.Destroy()
//
//	g, err := gglife.New(dev, gglife.DefaultLoader(),
//	    gglife.WithCellSize(4),
//	    gglife.WithGenerationLimit(1000))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer g.Close()
//
//	if err := g.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Devices
//
// Game talks to the GPU through [gpucore.Device]. Two implementations ship
// with the module:
//   - backend/native: gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES)
//   - backend/software: CPU reference device, used by the tests
//
// Build with the nogpu tag to exclude the native backend.
//
// # Errors
//
// Initialization fails with one of [ResourceError], [ShaderCompileError],
// [ProgramLinkError] or [AllocationError]. Errors at runtime are logged at
// Warn and the chains keep running. See [SetLogger].
package gglife
