// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gglife/gpucore"
)

// Pipeline names used in errors and logs.
const (
	pipelineSimulation = "simulation"
	pipelineDisplay    = "display"
)

// Program labels. The software device looks its kernels up by these.
const (
	programLogic   = "logic"
	programDisplay = "display"
)

// Handle names resolved once at link time.
const (
	attrPosition = "a_position"
	uniformSize  = "u_size"
	uniformState = "u_state"
	uniformEdges = "u_edges"
	uniformTex   = "u_texture"
)

// uniformType is a WGSL uniform member type.
type uniformType uint8

const (
	typeU32 uniformType = iota
	typeVec2F32
)

// size and align follow the WGSL host-shareable layout rules.
func (t uniformType) size() uint64 {
	if t == typeVec2F32 {
		return 8
	}
	return 4
}

func (t uniformType) align() uint64 { return t.size() }

type uniformField struct {
	name string
	typ  uniformType
}

// uniformSlot is a resolved uniform handle: a byte range in the block.
type uniformSlot struct {
	offset uint64
	typ    uniformType
}

// layoutUniforms assigns offsets to fields in declaration order and rounds
// the block up to 16 bytes, as a WGSL uniform struct is laid out.
func layoutUniforms(fields []uniformField) (map[string]uniformSlot, uint64) {
	slots := make(map[string]uniformSlot, len(fields))
	var off uint64
	for _, f := range fields {
		a := f.typ.align()
		off = (off + a - 1) &^ (a - 1)
		slots[f.name] = uniformSlot{offset: off, typ: f.typ}
		off += f.typ.size()
	}
	if off == 0 {
		return slots, 0
	}
	return slots, (off + 15) &^ 15
}

// programLayout describes one of the two programs.
type programLayout struct {
	pipeline   string
	label      string
	vertexID   string
	fragmentID string
	uniforms   []uniformField
	output     gpucore.Output
}

// programSources is the text of both stages.
type programSources struct {
	vertex, fragment string
}

// Program is a linked vertex/fragment pair with its handles resolved.
// A Program is immutable once linked.
type Program struct {
	dev      gpucore.Device
	pipeline string
	id       gpucore.ProgramID
	shaders  [2]gpucore.ShaderID

	attributes  map[string]uint32
	uniforms    map[string]uniformSlot
	uniformSize uint64
	// textureBinding is the binding slot of u_texture.
	textureBinding uint32
}

// compileProgram compiles the fragment stage, then the vertex stage, and
// links them. On failure everything created so far is released.
func compileProgram(dev gpucore.Device, layout programLayout, src programSources) (*Program, error) {
	slots, size := layoutUniforms(layout.uniforms)
	p := &Program{
		dev:            dev,
		pipeline:       layout.pipeline,
		attributes:     map[string]uint32{attrPosition: positionAttribute.Location},
		uniforms:       slots,
		uniformSize:    size,
		textureBinding: 1,
	}

	stages := []struct {
		stage gpucore.Stage
		id    string
		text  string
		slot  int
	}{
		{gpucore.StageFragment, layout.fragmentID, src.fragment, 1},
		{gpucore.StageVertex, layout.vertexID, src.vertex, 0},
	}
	for _, st := range stages {
		sid, err := dev.CompileShader(&gpucore.ShaderDesc{Label: st.id, Stage: st.stage, Source: st.text})
		if err != nil {
			p.release()
			return nil, &ShaderCompileError{Pipeline: layout.pipeline, Stage: st.stage, ID: st.id, Err: err}
		}
		p.shaders[st.slot] = sid
	}

	id, err := dev.LinkProgram(&gpucore.ProgramDesc{
		Label:       layout.label,
		Vertex:      p.shaders[0],
		Fragment:    p.shaders[1],
		Attributes:  []gpucore.VertexAttribute{positionAttribute},
		Stride:      quadStride,
		UniformSize: size,
		Output:      layout.output,
	})
	if err != nil {
		p.release()
		return nil, &ProgramLinkError{Pipeline: layout.pipeline, Err: err}
	}
	p.id = id
	slogger().Debug("gglife: program linked", "pipeline", layout.pipeline, "uniform_bytes", size)
	return p, nil
}

// Attribute returns the vertex location of a named attribute.
func (p *Program) Attribute(name string) (uint32, bool) {
	loc, ok := p.attributes[name]
	return loc, ok
}

// Uniform returns the byte offset of a named uniform in the block.
// u_texture resolves to its binding slot instead.
func (p *Program) Uniform(name string) (uint64, bool) {
	if name == uniformTex {
		return uint64(p.textureBinding), true
	}
	s, ok := p.uniforms[name]
	return s.offset, ok
}

// mustUniform resolves a uniform that the program layout always declares.
func (p *Program) mustUniform(name string) uniformSlot {
	s, ok := p.uniforms[name]
	if !ok {
		panic(fmt.Sprintf("gglife: %s program has no uniform %q", p.pipeline, name))
	}
	return s
}

// newBlock returns a zeroed uniform block for the program.
func (p *Program) newBlock() []byte {
	if p.uniformSize == 0 {
		return nil
	}
	return make([]byte, p.uniformSize)
}

func putU32(block []byte, s uniformSlot, v uint32) {
	binary.LittleEndian.PutUint32(block[s.offset:], v)
}

func putVec2(block []byte, s uniformSlot, x, y float32) {
	binary.LittleEndian.PutUint32(block[s.offset:], math.Float32bits(x))
	binary.LittleEndian.PutUint32(block[s.offset+4:], math.Float32bits(y))
}

// release destroys the program and its stages.
func (p *Program) release() {
	if p.id != gpucore.InvalidID {
		p.dev.DestroyProgram(p.id)
		p.id = gpucore.InvalidID
	}
	for i, sid := range p.shaders {
		if sid != gpucore.InvalidID {
			p.dev.DestroyShader(sid)
			p.shaders[i] = gpucore.InvalidID
		}
	}
}
