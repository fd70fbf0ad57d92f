// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package native implements gpucore.Device on the gogpu/wgpu HAL.
//
// A device either opens its own adapter (standalone, Vulkan by default) or
// shares the device of a host window through a provider exposing
// HalDevice() any and HalQueue() any, as gogpu.App does:
//
//	dev, err := native.Open(native.Options{
//		Provider:      app.GPUContextProvider(),
//		SurfaceWidth:  w,
//		SurfaceHeight: h,
//	})
//
// Standalone devices render the visible surface into an offscreen texture
// that ReadSurface copies back. Shared devices render into the view passed
// to SetSurfaceView each frame.
//
// Draw calls are submitted without waiting. Finished command buffers are
// reclaimed by polling the queue's completed submission index; readback
// and Destroy wait for the queue to drain.
//
// The package registers itself as backend.Native and is excluded by the
// nogpu build tag.
package native
