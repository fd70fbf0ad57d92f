// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"errors"
	"fmt"

	"github.com/gogpu/gglife/backend"
	"github.com/gogpu/gglife/gpucore"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	// Register the Vulkan HAL backend for standalone devices.
	_ "github.com/gogpu/wgpu/hal/vulkan"
)

// Errors returned while opening a device.
var (
	// ErrNoAdapter is returned when the HAL backend exposes no adapter.
	ErrNoAdapter = errors.New("native: no GPU adapters found")

	// ErrBadProvider is returned when a provider does not expose a HAL
	// device and queue.
	ErrBadProvider = errors.New("native: provider does not expose a HAL device")
)

func init() {
	backend.Register(backend.Native, func(cfg backend.Config) (gpucore.Device, error) {
		d, err := Open(Options{
			SurfaceWidth:  cfg.SurfaceWidth,
			SurfaceHeight: cfg.SurfaceHeight,
			Provider:      cfg.Provider,
		})
		if err != nil {
			return nil, err
		}
		return d, nil
	})
}

// Options configures Open.
type Options struct {
	// SurfaceWidth and SurfaceHeight size the visible surface.
	SurfaceWidth, SurfaceHeight int

	// Provider shares an existing device. It must be a
	// gpucontext.DeviceProvider whose Device exposes its HAL device and
	// queue, as gogpu's does. When nil a standalone device is opened.
	Provider any

	// SurfaceFormat is the format of the host surface views passed to
	// SetSurfaceView. Shared devices default to the provider's surface
	// format, or BGRA8Unorm when it reports none. Standalone
	// devices always render the surface as RGBA8Unorm.
	SurfaceFormat gputypes.TextureFormat

	// Backend selects the HAL backend of a standalone device. Defaults to
	// Vulkan.
	Backend gputypes.Backend
}

// halDevice is implemented by the *wgpu.Device a gogpu provider returns.
type halDevice interface {
	HalDevice() hal.Device
	HalQueue() hal.Queue
}

// Open opens a native device, shared when opts.Provider is set and
// standalone otherwise.
func Open(opts Options) (*Device, error) {
	if opts.Provider != nil {
		return openShared(opts)
	}
	return openStandalone(opts)
}

func openShared(opts Options) (*Device, error) {
	dp, ok := opts.Provider.(gpucontext.DeviceProvider)
	if !ok {
		return nil, fmt.Errorf("%w: %T", ErrBadProvider, opts.Provider)
	}
	hd, ok := dp.Device().(halDevice)
	if !ok {
		return nil, fmt.Errorf("%w: device %T has no HAL handles", ErrBadProvider, dp.Device())
	}
	device, queue := hd.HalDevice(), hd.HalQueue()
	if device == nil || queue == nil {
		return nil, fmt.Errorf("%w: device released", ErrBadProvider)
	}
	if opts.SurfaceFormat == gputypes.TextureFormatUndefined {
		opts.SurfaceFormat = dp.SurfaceFormat()
	}
	if opts.SurfaceFormat == gputypes.TextureFormatUndefined {
		opts.SurfaceFormat = gputypes.TextureFormatBGRA8Unorm
	}

	d, err := newDevice(device, queue, opts, true)
	if err != nil {
		return nil, err
	}
	slogger().Info("native: device opened (shared)")
	return d, nil
}

func openStandalone(opts Options) (*Device, error) {
	kind := opts.Backend
	if kind == gputypes.Backend(0) {
		kind = gputypes.BackendVulkan
	}
	b, ok := hal.GetBackend(kind)
	if !ok {
		return nil, fmt.Errorf("native: HAL backend %v not available", kind)
	}
	instance, err := b.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return nil, fmt.Errorf("create instance: %w", err)
	}

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		instance.Destroy()
		return nil, ErrNoAdapter
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	openDev, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		return nil, fmt.Errorf("open device: %w", err)
	}

	opts.SurfaceFormat = gputypes.TextureFormatRGBA8Unorm
	d, err := newDevice(openDev.Device, openDev.Queue, opts, false)
	if err != nil {
		openDev.Device.Destroy()
		instance.Destroy()
		return nil, err
	}
	d.instance = instance
	d.ownsDevice = true
	slogger().Info("native: device opened (standalone)", "adapter", selected.Info.Name)
	return d, nil
}
