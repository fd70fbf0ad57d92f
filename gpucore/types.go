// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

// Resource IDs
//
// These opaque IDs represent GPU resources. Each device implementation
// maintains a mapping between IDs and its own backend objects.

// BufferID is an opaque handle to a vertex buffer.
type BufferID uint64

// TextureID is an opaque handle to a 2D RGBA8 texture.
type TextureID uint64

// ShaderID is an opaque handle to a compiled shader stage.
type ShaderID uint64

// ProgramID is an opaque handle to a linked vertex+fragment program.
type ProgramID uint64

// FramebufferID is an opaque handle to an offscreen render target.
type FramebufferID uint64

// InvalidID is the zero value, representing an invalid/null resource.
const InvalidID = 0

// SurfaceFramebuffer selects the visible surface as the draw target.
const SurfaceFramebuffer FramebufferID = InvalidID

// Stage identifies a programmable pipeline stage.
type Stage uint8

// Pipeline stages.
const (
	StageVertex Stage = iota + 1
	StageFragment
)

// String returns the lowercase stage name.
func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return "unknown"
	}
}

// EntryPoint returns the conventional WGSL entry point for the stage.
func (s Stage) EntryPoint() string {
	if s == StageVertex {
		return "vs_main"
	}
	return "fs_main"
}

// Output selects the color target a program renders into. The native device
// needs it at link time to pick the pipeline's color format.
type Output uint8

// Program outputs.
const (
	// OutputOffscreen renders into RGBA8 state textures via a framebuffer.
	OutputOffscreen Output = iota
	// OutputSurface renders into the visible surface.
	OutputSurface
)

// VertexFormat is the format of a single vertex attribute.
type VertexFormat uint8

// Vertex formats.
const (
	VertexFormatFloat32x2 VertexFormat = iota + 1
)

// Size returns the attribute size in bytes.
func (f VertexFormat) Size() uint64 {
	if f == VertexFormatFloat32x2 {
		return 8
	}
	return 0
}

// Limits reports the device limits the host checks before allocating.
type Limits struct {
	// MaxTextureDimension2D is the largest width or height of a 2D texture.
	MaxTextureDimension2D uint32
}

// ShaderDesc describes one shader stage to compile.
type ShaderDesc struct {
	// Label is a debug label, usually the resource identifier.
	Label string

	// Stage is the pipeline stage the source implements.
	Stage Stage

	// Source is WGSL text with a single entry point for Stage.
	Source string
}

// VertexAttribute binds one attribute of the vertex buffer to a shader location.
type VertexAttribute struct {
	Location uint32
	Format   VertexFormat
	Offset   uint64
}

// ProgramDesc describes a program to link.
//
// Every program uses the same bind group shape:
//
//	binding 0: uniform block (omitted when UniformSize is 0)
//	binding 1: sampled texture_2d<f32>
//	binding 2: sampler
type ProgramDesc struct {
	// Label is a debug label. The software device also uses it to look up
	// the fragment kernel that implements the program.
	Label string

	Vertex   ShaderID
	Fragment ShaderID

	// Attributes describe the vertex buffer layout.
	Attributes []VertexAttribute

	// Stride is the vertex buffer stride in bytes.
	Stride uint64

	// UniformSize is the size of the uniform block in bytes, a multiple of 16.
	UniformSize uint64

	// Output selects the color target format.
	Output Output
}

// BufferDesc describes a static vertex buffer.
type BufferDesc struct {
	Label string
	Data  []byte
}

// TextureDesc describes an RGBA8 texture usable as both a sampled texture
// and a render attachment.
type TextureDesc struct {
	Label  string
	Width  int
	Height int
}

// DrawCall is one non-indexed triangle-strip draw.
type DrawCall struct {
	// Program is the linked program to draw with.
	Program ProgramID

	// Target is the framebuffer to render into, or SurfaceFramebuffer.
	Target FramebufferID

	// Vertices is the vertex buffer and VertexCount the number of vertices.
	Vertices    BufferID
	VertexCount uint32

	// Texture is bound as the sampled texture. It must not be the texture
	// attached to Target.
	Texture TextureID

	// Uniforms is the packed uniform block, UniformSize bytes long.
	Uniforms []byte
}
