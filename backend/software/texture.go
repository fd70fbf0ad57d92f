// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package software

// Texture is a CPU-resident RGBA8 texture, rows top to bottom.
type Texture struct {
	Width, Height int
	Pix           []byte
}

func newTexture(width, height int) *Texture {
	return &Texture{Width: width, Height: height, Pix: make([]byte, width*height*4)}
}

// Load returns the texel at integer coordinates. Coordinates outside the
// texture return transparent black, matching WGSL textureLoad robustness.
func (t *Texture) Load(x, y int) [4]byte {
	if x < 0 || y < 0 || x >= t.Width || y >= t.Height {
		return [4]byte{}
	}
	i := (y*t.Width + x) * 4
	return [4]byte{t.Pix[i], t.Pix[i+1], t.Pix[i+2], t.Pix[i+3]}
}

// SampleNearest samples normalized coordinates with nearest filtering and
// clamp-to-edge addressing.
func (t *Texture) SampleNearest(u, v float32) [4]byte {
	x := clampInt(int(u*float32(t.Width)), 0, t.Width-1)
	y := clampInt(int(v*float32(t.Height)), 0, t.Height-1)
	return t.Load(x, y)
}

func (t *Texture) store(x, y int, c [4]byte) {
	i := (y*t.Width + x) * 4
	copy(t.Pix[i:i+4], c[:])
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
