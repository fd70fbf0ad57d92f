// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/gglife/gpucore"
)

// StateStore is the ping-pong pair of state textures. Exactly one texture
// is current (readable); the other is the write target of the next step.
//
// StateStore is not safe for concurrent use. All calls happen on the loop
// goroutine.
type StateStore struct {
	ctx           *DeviceContext
	width, height int
	textures      [2]gpucore.TextureID
	current       int
}

// InitializeRandom allocates both state textures, fills texture 0 with
// cells alive with probability p and uploads it. Texture 1 stays
// uninitialized; it is always written before it is read.
func InitializeRandom(ctx *DeviceContext, width, height int, p float64, rng *rand.Rand) (*StateStore, error) {
	if err := checkGridSize(ctx, width, height); err != nil {
		return nil, err
	}
	return newStateStore(ctx, RandomGrid(width, height, p, rng))
}

// NewStateStore allocates both state textures and uploads initial as the
// current generation.
func NewStateStore(ctx *DeviceContext, initial *Grid) (*StateStore, error) {
	if err := checkGridSize(ctx, initial.Width, initial.Height); err != nil {
		return nil, err
	}
	return newStateStore(ctx, initial)
}

func checkGridSize(ctx *DeviceContext, width, height int) error {
	if width <= 0 || height <= 0 {
		return &AllocationError{Resource: "state texture", Width: width, Height: height, Err: ErrInvalidSize}
	}
	maxDim := int(ctx.Limits().MaxTextureDimension2D)
	if width > maxDim || height > maxDim {
		return &AllocationError{
			Resource: "state texture", Width: width, Height: height,
			Err: fmt.Errorf("%w: max %d", ErrExceedsLimits, maxDim),
		}
	}
	return nil
}

func newStateStore(ctx *DeviceContext, initial *Grid) (*StateStore, error) {
	s := &StateStore{ctx: ctx, width: initial.Width, height: initial.Height}
	dev := ctx.Device()
	for i := range s.textures {
		id, err := dev.CreateTexture(&gpucore.TextureDesc{
			Label:  fmt.Sprintf("state_%d", i),
			Width:  s.width,
			Height: s.height,
		})
		if err != nil {
			s.release()
			return nil, &AllocationError{Resource: "state texture", Width: s.width, Height: s.height, Err: err}
		}
		s.textures[i] = id
	}
	if err := s.Upload(initial); err != nil {
		s.release()
		return nil, err
	}
	slogger().Debug("gglife: state textures allocated",
		"size", fmt.Sprintf("%dx%d", s.width, s.height),
		"population", initial.Population())
	return s, nil
}

// Size returns the grid size in cells.
func (s *StateStore) Size() (int, int) { return s.width, s.height }

// Current returns the texture holding the latest completed generation.
func (s *StateStore) Current() gpucore.TextureID { return s.textures[s.current] }

// WriteTarget returns the texture the next step writes into.
func (s *StateStore) WriteTarget() gpucore.TextureID { return s.textures[1-s.current] }

// CurrentIndex returns the index (0 or 1) of the current texture.
func (s *StateStore) CurrentIndex() int { return s.current }

// WriteIndex returns the index of the write target.
func (s *StateStore) WriteIndex() int { return 1 - s.current }

// Texture returns the texture at index i.
func (s *StateStore) Texture(i int) gpucore.TextureID { return s.textures[i&1] }

// Swap makes the write target current. It only updates host metadata; the
// device queue orders the draws around it.
func (s *StateStore) Swap() { s.current = 1 - s.current }

// Upload replaces the current generation with g.
func (s *StateStore) Upload(g *Grid) error {
	if g.Width != s.width || g.Height != s.height {
		return fmt.Errorf("gglife: upload %dx%d grid into %dx%d state: %w",
			g.Width, g.Height, s.width, s.height, gpucore.ErrSizeMismatch)
	}
	if err := s.ctx.Device().WriteTexture(s.Current(), g.Pix); err != nil {
		return fmt.Errorf("gglife: upload state: %w", err)
	}
	return nil
}

// Read reads the current generation back to the host.
func (s *StateStore) Read() (*Grid, error) {
	pix, err := s.ctx.Device().ReadTexture(s.Current())
	if err != nil {
		return nil, fmt.Errorf("gglife: read state: %w", err)
	}
	return &Grid{Width: s.width, Height: s.height, Pix: pix}, nil
}

func (s *StateStore) release() {
	for i, id := range s.textures {
		if id != gpucore.InvalidID {
			s.ctx.Device().DestroyTexture(id)
			s.textures[i] = gpucore.InvalidID
		}
	}
}
