// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"fmt"

	"github.com/gogpu/gglife/gpucore"
)

// simulationUniforms is the logic program's uniform block. The order
// matches the Params struct of logic.frag.
var simulationUniforms = []uniformField{
	{uniformSize, typeVec2F32},
	{uniformState, typeU32},
	{uniformEdges, typeU32},
}

func simulationLayout(ids ShaderIDs) programLayout {
	return programLayout{
		pipeline:   pipelineSimulation,
		label:      programLogic,
		vertexID:   ids.LogicVertex,
		fragmentID: ids.LogicFragment,
		uniforms:   simulationUniforms,
		output:     gpucore.OutputOffscreen,
	}
}

// Simulation advances the automaton one generation per Step.
type Simulation struct {
	ctx     *DeviceContext
	state   *StateStore
	program *Program
	edges   EdgeMode

	// framebuffers[i] renders into state texture i.
	framebuffers [2]gpucore.FramebufferID

	block                        []byte
	sizeSlot, stateSlot, edgeSlot uniformSlot

	generation uint64
}

// NewSimulation creates one framebuffer per state texture and resolves the
// program's uniform handles.
func NewSimulation(ctx *DeviceContext, state *StateStore, program *Program, edges EdgeMode) (*Simulation, error) {
	s := &Simulation{
		ctx:       ctx,
		state:     state,
		program:   program,
		edges:     edges,
		block:     program.newBlock(),
		sizeSlot:  program.mustUniform(uniformSize),
		stateSlot: program.mustUniform(uniformState),
		edgeSlot:  program.mustUniform(uniformEdges),
	}
	for i := range s.framebuffers {
		fb, err := ctx.Device().CreateFramebuffer(state.Texture(i))
		if err != nil {
			s.release()
			return nil, &AllocationError{Resource: fmt.Sprintf("framebuffer %d", i), Err: err}
		}
		s.framebuffers[i] = fb
	}

	w, h := state.Size()
	putVec2(s.block, s.sizeSlot, float32(w), float32(h))
	putU32(s.block, s.edgeSlot, uint32(edges))
	return s, nil
}

// Step draws the next generation into the write target, sampling the
// current texture, then swaps. The swap happens only after the draw was
// submitted.
func (s *Simulation) Step() error {
	putU32(s.block, s.stateSlot, uint32(s.state.CurrentIndex())) //nolint:gosec // 0 or 1
	target := s.framebuffers[s.state.WriteIndex()]
	if err := s.ctx.drawQuad(s.program, target, s.state.Current(), s.block); err != nil {
		return fmt.Errorf("gglife: step %d: %w", s.generation+1, err)
	}
	s.state.Swap()
	s.generation++
	return nil
}

// Generation returns the number of completed steps.
func (s *Simulation) Generation() uint64 { return s.generation }

// EdgeMode returns the border policy passed to the transition program.
func (s *Simulation) EdgeMode() EdgeMode { return s.edges }

func (s *Simulation) release() {
	for i, fb := range s.framebuffers {
		if fb != gpucore.InvalidID {
			s.ctx.Device().DestroyFramebuffer(fb)
			s.framebuffers[i] = gpucore.InvalidID
		}
	}
}
