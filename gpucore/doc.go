// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package gpucore defines the GPU abstraction the Life pipelines run on.
//
// The [Device] interface is deliberately small: the simulation and the
// display each need one program, one shared full-screen quad, a pair of RGBA8
// textures and one draw per tick. Two implementations exist:
//
//	               +-----------------+
//	               |     gglife      |
//	               | (Game pipelines)|
//	               +--------+--------+
//	                        |
//	         +--------------+--------------+
//	         |                             |
//	+--------v--------+          +--------v--------+
//	| backend/native  |          |backend/software |
//	|  (hal.Device)   |          | (Go kernels)    |
//	+--------+--------+          +-----------------+
//	         |
//	+--------v--------+
//	|   gogpu/wgpu    |
//	|   (Pure Go)     |
//	+-----------------+
//
// # Resource Management
//
// Resources are addressed by opaque IDs ([TextureID], [ProgramID], ...).
// Implementations track the mapping between IDs and their own objects.
//
// # Bindings
//
// Every program shares one bind group shape: a uniform block at binding 0,
// the sampled state texture at binding 1 and a nearest sampler at binding 2.
// Vertex attributes are described by [VertexAttribute] locations.
package gpucore
