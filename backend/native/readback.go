// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"fmt"
	"unsafe"

	"github.com/gogpu/gglife/gpucore"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// copyPitchAlignment is the required BytesPerRow alignment of
// texture-to-buffer copies.
const copyPitchAlignment = 256

// ReadTexture copies a texture back to the host and waits for it.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	if d.destroyed {
		return nil, gpucore.ErrDeviceDestroyed
	}
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	return d.readback(t, "state_readback")
}

// ReadSurface reads the offscreen surface of a standalone device.
func (d *Device) ReadSurface() ([]byte, error) {
	if d.destroyed {
		return nil, gpucore.ErrDeviceDestroyed
	}
	if d.screen == nil {
		return nil, ErrSurfaceNotReadable
	}
	return d.readback(d.screen, "surface_readback")
}

// readback copies t into a staging buffer with 256-byte aligned rows,
// waits for the queue, maps the buffer and strips the row padding.
func (d *Device) readback(t *texture, label string) ([]byte, error) {
	bytesPerRow := t.width * 4
	alignedBytesPerRow := (bytesPerRow + copyPitchAlignment - 1) &^ (copyPitchAlignment - 1)
	stagingSize := uint64(alignedBytesPerRow) * uint64(t.height)

	staging, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  stagingSize,
		Usage: gputypes.BufferUsageMapRead | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create staging buffer: %w", err)
	}
	defer d.device.DestroyBuffer(staging)

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: label + "_encoder"})
	if err != nil {
		return nil, fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(label); err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("begin encoding: %w", err)
	}

	prev := t.usage
	b := barriers{encoder: encoder}
	b.transition(t, gputypes.TextureUsageCopySrc)
	encoder.CopyTextureToBuffer(t.tex, staging, []hal.BufferTextureCopy{{
		BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: alignedBytesPerRow, RowsPerImage: t.height},
		TextureBase:  hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		Size:         hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	}})
	if prev != 0 {
		b.transition(t, prev)
	}

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return nil, fmt.Errorf("end encoding: %w", err)
	}
	b.commit()
	if err := d.submit(cmdBuf); err != nil {
		return nil, err
	}
	if err := d.drain(); err != nil {
		return nil, err
	}

	mapping, err := d.device.MapBuffer(staging, 0, stagingSize)
	if err != nil {
		return nil, fmt.Errorf("map staging buffer: %w", err)
	}
	raw := unsafe.Slice((*byte)(mapping.Ptr), stagingSize)

	tight := make([]byte, uint64(bytesPerRow)*uint64(t.height))
	for row := range t.height {
		src := uint64(row) * uint64(alignedBytesPerRow)
		dst := uint64(row) * uint64(bytesPerRow)
		copy(tight[dst:dst+uint64(bytesPerRow)], raw[src:src+uint64(bytesPerRow)])
	}
	if err := d.device.UnmapBuffer(staging); err != nil {
		return nil, fmt.Errorf("unmap staging buffer: %w", err)
	}
	return tight, nil
}
