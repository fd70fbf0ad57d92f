// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gpucore

import "errors"

// Device errors shared by all implementations.
var (
	// ErrUnknownResource is returned when an ID does not name a live resource.
	ErrUnknownResource = errors.New("gpucore: unknown resource")

	// ErrFeedbackLoop is returned when a draw samples the texture it renders into.
	ErrFeedbackLoop = errors.New("gpucore: draw samples its own render target")

	// ErrSizeMismatch is returned when uploaded data does not match a texture.
	ErrSizeMismatch = errors.New("gpucore: data size does not match texture")

	// ErrDeviceDestroyed is returned by calls made after Destroy.
	ErrDeviceDestroyed = errors.New("gpucore: device destroyed")
)

// Device abstracts over the GPU backends that can run the simulation.
//
// Resource lifecycle:
//   - Resources are created via Create*/Compile*/Link* methods
//   - Resources must be released via the matching Destroy* method
//   - IDs become invalid after destruction and are never reused
//
// Draw submits work and returns without waiting for the GPU. Commands
// submitted from one goroutine execute in submission order. ReadTexture and
// ReadSurface wait for all previously submitted work.
//
// Implementations are not required to be safe for concurrent use; callers
// submit from a single goroutine.
type Device interface {
	// Limits returns the device limits.
	Limits() Limits

	// SurfaceSize returns the size of the visible surface in pixels.
	SurfaceSize() (width, height int)

	// CompileShader compiles a single stage. The returned error describes
	// why the source was rejected.
	CompileShader(desc *ShaderDesc) (ShaderID, error)

	// DestroyShader releases a compiled stage.
	DestroyShader(id ShaderID)

	// LinkProgram links a vertex and a fragment stage into a program.
	LinkProgram(desc *ProgramDesc) (ProgramID, error)

	// DestroyProgram releases a program.
	DestroyProgram(id ProgramID)

	// CreateBuffer creates a static vertex buffer initialized with desc.Data.
	CreateBuffer(desc *BufferDesc) (BufferID, error)

	// DestroyBuffer releases a buffer.
	DestroyBuffer(id BufferID)

	// CreateTexture allocates an RGBA8 texture. Contents are undefined until
	// written or rendered.
	CreateTexture(desc *TextureDesc) (TextureID, error)

	// DestroyTexture releases a texture.
	DestroyTexture(id TextureID)

	// WriteTexture uploads tightly packed RGBA8 rows to the whole texture.
	WriteTexture(id TextureID, data []byte) error

	// ReadTexture reads the whole texture back as tightly packed RGBA8 rows.
	ReadTexture(id TextureID) ([]byte, error)

	// CreateFramebuffer creates an offscreen render target whose color
	// attachment is the given texture.
	CreateFramebuffer(color TextureID) (FramebufferID, error)

	// DestroyFramebuffer releases a framebuffer. The attached texture is
	// not destroyed.
	DestroyFramebuffer(id FramebufferID)

	// Draw records and submits one draw call.
	Draw(call *DrawCall) error

	// ReadSurface reads the visible surface back as tightly packed RGBA8
	// rows, for devices that own their surface.
	ReadSurface() ([]byte, error)

	// Destroy releases the device and everything it still owns.
	Destroy()
}
