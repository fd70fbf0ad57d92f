// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package backend is a registry of gpucore.Device factories.
//
// Backends register themselves from init() functions and are selected by
// name at runtime:
//
//	import (
//		_ "github.com/gogpu/gglife/backend/native"
//		_ "github.com/gogpu/gglife/backend/software"
//	)
//
//	dev, err := backend.Open(backend.Software, backend.Config{
//		SurfaceWidth:  512,
//		SurfaceHeight: 512,
//	})
//
// OpenDefault tries the native GPU backend first and falls back to the
// software reference device:
//
//	dev, name, err := backend.OpenDefault(cfg)
//
// # Available Backends
//
//   - "native": gogpu/wgpu HAL (Vulkan, Metal, DX12, GLES). Excluded by the
//     nogpu build tag.
//   - "software": CPU reference device (always available)
package backend
