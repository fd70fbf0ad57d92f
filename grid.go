// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"bytes"
	"fmt"
	"math/rand/v2"
)

// Cell encoding. Channel 0 carries the state, channel 3 is opaque, the
// other channels are padding.
const (
	cellAlive = 255
	cellDead  = 0
)

// EdgeMode selects how the transition rule treats cells outside the grid.
type EdgeMode uint32

const (
	// EdgeWrap joins opposite edges (toroidal grid).
	EdgeWrap EdgeMode = iota
	// EdgeClamp treats cells outside the grid as dead.
	EdgeClamp
)

// String returns the flag spelling of the mode.
func (m EdgeMode) String() string {
	switch m {
	case EdgeWrap:
		return "wrap"
	case EdgeClamp:
		return "clamp"
	default:
		return fmt.Sprintf("EdgeMode(%d)", uint32(m))
	}
}

// ParseEdgeMode parses "wrap" or "clamp".
func ParseEdgeMode(s string) (EdgeMode, error) {
	switch s {
	case "wrap", "":
		return EdgeWrap, nil
	case "clamp":
		return EdgeClamp, nil
	default:
		return 0, fmt.Errorf("gglife: unknown edge mode %q", s)
	}
}

// Grid is a host-side copy of one generation, stored as tightly packed
// RGBA8 rows top to bottom, exactly as the state textures hold it.
type Grid struct {
	Width, Height int
	Pix           []byte
}

// NewGrid returns a grid of dead cells.
func NewGrid(width, height int) *Grid {
	g := &Grid{Width: width, Height: height, Pix: make([]byte, width*height*4)}
	for i := 3; i < len(g.Pix); i += 4 {
		g.Pix[i] = 255
	}
	return g
}

// RandomGrid returns a grid where each cell is alive with probability p.
func RandomGrid(width, height int, p float64, rng *rand.Rand) *Grid {
	g := NewGrid(width, height)
	for i := 0; i < len(g.Pix); i += 4 {
		if rng.Float64() < p {
			g.Pix[i] = cellAlive
		}
	}
	return g
}

// Alive reports whether the cell at x, y is alive.
func (g *Grid) Alive(x, y int) bool {
	return g.Pix[(y*g.Width+x)*4] > 127
}

// Set sets the state of the cell at x, y.
func (g *Grid) Set(x, y int, alive bool) {
	v := byte(cellDead)
	if alive {
		v = cellAlive
	}
	g.Pix[(y*g.Width+x)*4] = v
}

// Population returns the number of live cells.
func (g *Grid) Population() int {
	n := 0
	for i := 0; i < len(g.Pix); i += 4 {
		if g.Pix[i] > 127 {
			n++
		}
	}
	return n
}

// Equal reports whether both grids hold the same cells.
func (g *Grid) Equal(o *Grid) bool {
	if g.Width != o.Width || g.Height != o.Height {
		return false
	}
	for i := 0; i < len(g.Pix); i += 4 {
		if (g.Pix[i] > 127) != (o.Pix[i] > 127) {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (g *Grid) Clone() *Grid {
	return &Grid{Width: g.Width, Height: g.Height, Pix: bytes.Clone(g.Pix)}
}

// Next computes the following generation on the host with the B3/S23 rule.
// It is the reference the GPU transition program is checked against.
func (g *Grid) Next(edges EdgeMode) *Grid {
	w, h := g.Width, g.Height
	next := NewGrid(w, h)
	alive := func(x, y int) int {
		if edges == EdgeClamp {
			if x < 0 || y < 0 || x >= w || y >= h {
				return 0
			}
		} else {
			x = (x + w) % w
			y = (y + h) % h
		}
		if g.Alive(x, y) {
			return 1
		}
		return 0
	}
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					neighbors += alive(x+dx, y+dy)
				}
			}
			if neighbors == 3 || (neighbors == 2 && g.Alive(x, y)) {
				next.Set(x, y, true)
			}
		}
	}
	return next
}

// String renders the grid as rows of '#' and '.'.
func (g *Grid) String() string {
	var b bytes.Buffer
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			if g.Alive(x, y) {
				b.WriteByte('#')
			} else {
				b.WriteByte('.')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}
