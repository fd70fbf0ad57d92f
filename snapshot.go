// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"

	xdraw "golang.org/x/image/draw"
)

var (
	aliveColor = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	deadColor  = color.NRGBA{A: 255}
)

// Image renders the grid one pixel per cell, live cells white.
func (g *Grid) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, g.Width, g.Height))
	for y := 0; y < g.Height; y++ {
		for x := 0; x < g.Width; x++ {
			c := deadColor
			if g.Alive(x, y) {
				c = aliveColor
			}
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

// Scaled renders the grid with each cell as a cell x cell block.
func (g *Grid) Scaled(cell int) image.Image {
	src := g.Image()
	if cell <= 1 {
		return src
	}
	dst := image.NewNRGBA(image.Rect(0, 0, g.Width*cell, g.Height*cell))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Src, nil)
	return dst
}

// WritePNG encodes the grid scaled by cell as PNG.
func (g *Grid) WritePNG(w io.Writer, cell int) error {
	if err := png.Encode(w, g.Scaled(cell)); err != nil {
		return fmt.Errorf("gglife: encode snapshot: %w", err)
	}
	return nil
}

// SavePNG writes the grid scaled by cell to a PNG file.
func (g *Grid) SavePNG(path string, cell int) error {
	f, err := os.Create(path) //nolint:gosec // path is user-provided intentionally
	if err != nil {
		return fmt.Errorf("gglife: create snapshot: %w", err)
	}
	if err := g.WritePNG(f, cell); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
