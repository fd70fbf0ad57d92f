// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"fmt"

	"github.com/gogpu/gglife/gpucore"
)

func displayLayout(ids ShaderIDs) programLayout {
	return programLayout{
		pipeline:   pipelineDisplay,
		label:      programDisplay,
		vertexID:   ids.DisplayVertex,
		fragmentID: ids.DisplayFragment,
		output:     gpucore.OutputSurface,
	}
}

// Display renders the current generation onto the visible surface.
type Display struct {
	ctx     *DeviceContext
	state   *StateStore
	program *Program
	frames  uint64
}

// NewDisplay binds a linked display program to the state store.
func NewDisplay(ctx *DeviceContext, state *StateStore, program *Program) *Display {
	return &Display{ctx: ctx, state: state, program: program}
}

// Present draws the whole surface from StateStore.Current. Presenting
// without an intervening step renders the same image.
func (d *Display) Present() error {
	if err := d.ctx.drawQuad(d.program, gpucore.SurfaceFramebuffer, d.state.Current(), nil); err != nil {
		return fmt.Errorf("gglife: present frame %d: %w", d.frames+1, err)
	}
	d.frames++
	return nil
}

// Frames returns the number of presented frames.
func (d *Display) Frames() uint64 { return d.frames }
