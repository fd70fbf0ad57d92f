// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

import (
	"encoding/binary"
	"math"
)

// Program labels of the reference kernels.
const (
	LogicProgram   = "logic"
	DisplayProgram = "display"
)

// Cell encodings written by the reference kernels.
var (
	aliveTexel = [4]byte{255, 0, 0, 255}
	deadTexel  = [4]byte{0, 0, 0, 255}
	whitePixel = [4]byte{255, 255, 255, 255}
	blackPixel = [4]byte{0, 0, 0, 255}
)

// Fragment is the input of a kernel invocation for one target pixel.
type Fragment struct {
	// X, Y is the target pixel, row 0 at the top.
	X, Y int

	// Width, Height is the size of the render target.
	Width, Height int

	// Texture is the texture bound at binding 1.
	Texture *Texture

	// Uniforms is the uniform block bound at binding 0. Empty when the
	// program has no uniform block.
	Uniforms []byte
}

// Kernel computes the color of one fragment. Kernels run concurrently on
// disjoint rows and must not retain the Fragment.
type Kernel func(f *Fragment) [4]byte

// Kernels maps program labels to the kernels that implement them.
type Kernels map[string]Kernel

// ReferenceKernels returns CPU equivalents of the shipped WGSL programs.
func ReferenceKernels() Kernels {
	return Kernels{
		LogicProgram:   LifeKernel,
		DisplayProgram: DisplayKernel,
	}
}

// LifeKernel applies the B3/S23 rule to one cell. It decodes the same
// uniform block as logic.frag:
//
//	offset 0:  u_size  vec2<f32>
//	offset 8:  u_state u32
//	offset 12: u_edges u32 (0 wraparound, 1 clamped)
func LifeKernel(f *Fragment) [4]byte {
	w := int(math.Float32frombits(binary.LittleEndian.Uint32(f.Uniforms[0:])))
	h := int(math.Float32frombits(binary.LittleEndian.Uint32(f.Uniforms[4:])))
	clamp := binary.LittleEndian.Uint32(f.Uniforms[12:]) != 0

	alive := func(x, y int) int {
		if clamp {
			if x < 0 || y < 0 || x >= w || y >= h {
				return 0
			}
		} else {
			x = (x + w) % w
			y = (y + h) % h
		}
		if f.Texture.Load(x, y)[0] > 127 {
			return 1
		}
		return 0
	}

	neighbors := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx != 0 || dy != 0 {
				neighbors += alive(f.X+dx, f.Y+dy)
			}
		}
	}
	if neighbors == 3 || (neighbors == 2 && alive(f.X, f.Y) == 1) {
		return aliveTexel
	}
	return deadTexel
}

// DisplayKernel samples the state texture with nearest filtering and paints
// live cells white.
func DisplayKernel(f *Fragment) [4]byte {
	u := (float32(f.X) + 0.5) / float32(f.Width)
	v := (float32(f.Y) + 0.5) / float32(f.Height)
	if f.Texture.SampleNearest(u, v)[0] > 127 {
		return whitePixel
	}
	return blackPixel
}
