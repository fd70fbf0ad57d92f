// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package gglife

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/gogpu/gglife/gpucore"
)

// Full-screen quad layout: four clip-space corners drawn as a triangle
// strip, one vec2<f32> position per vertex.
const (
	quadVertexCount = 4
	quadStride      = 8
)

var quadCorners = [quadVertexCount][2]float32{{-1, -1}, {1, -1}, {-1, 1}, {1, 1}}

// positionAttribute is the vertex layout shared by both programs.
var positionAttribute = gpucore.VertexAttribute{
	Location: 0,
	Format:   gpucore.VertexFormatFloat32x2,
	Offset:   0,
}

// DeviceContext owns the device handle and the full-screen quad geometry
// shared by the simulation and display pipelines.
type DeviceContext struct {
	dev  gpucore.Device
	quad gpucore.BufferID
}

// NewDeviceContext wraps dev. No GPU resources are created until the
// geometry is requested.
func NewDeviceContext(dev gpucore.Device) *DeviceContext {
	return &DeviceContext{dev: dev}
}

// Device returns the underlying device.
func (c *DeviceContext) Device() gpucore.Device { return c.dev }

// SurfaceSize returns the visible surface size in pixels.
func (c *DeviceContext) SurfaceSize() (int, int) { return c.dev.SurfaceSize() }

// Limits returns the device limits.
func (c *DeviceContext) Limits() gpucore.Limits { return c.dev.Limits() }

func quadBytes() []byte {
	b := make([]byte, 0, quadVertexCount*quadStride)
	for _, v := range quadCorners {
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v[0]))
		b = binary.LittleEndian.AppendUint32(b, math.Float32bits(v[1]))
	}
	return b
}

// createGeometry uploads the quad vertex buffer once.
func (c *DeviceContext) createGeometry() error {
	if c.quad != gpucore.InvalidID {
		return nil
	}
	id, err := c.dev.CreateBuffer(&gpucore.BufferDesc{Label: "fullscreen_quad", Data: quadBytes()})
	if err != nil {
		return &AllocationError{Resource: "quad vertex buffer", Err: err}
	}
	c.quad = id
	slogger().Debug("gglife: quad geometry created")
	return nil
}

// drawQuad draws the shared quad with program into target, sampling tex.
func (c *DeviceContext) drawQuad(p *Program, target gpucore.FramebufferID, tex gpucore.TextureID, uniforms []byte) error {
	if c.quad == gpucore.InvalidID {
		return fmt.Errorf("gglife: %s draw before geometry creation", p.pipeline)
	}
	return c.dev.Draw(&gpucore.DrawCall{
		Program:     p.id,
		Target:      target,
		Vertices:    c.quad,
		VertexCount: quadVertexCount,
		Texture:     tex,
		Uniforms:    uniforms,
	})
}

// release destroys the quad geometry. The device itself is not destroyed.
func (c *DeviceContext) release() {
	if c.quad != gpucore.InvalidID {
		c.dev.DestroyBuffer(c.quad)
		c.quad = gpucore.InvalidID
	}
}
