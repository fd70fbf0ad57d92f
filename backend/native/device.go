// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

//go:build !nogpu

package native

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gogpu/gglife/gpucore"
	"github.com/gogpu/gglife/internal/cache"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/naga"
	"github.com/gogpu/wgpu/hal"
)

const (
	// drainTimeout bounds waits for queue completion.
	drainTimeout = 5 * time.Second

	// pollInterval is the sleep between completion polls while draining.
	pollInterval = 100 * time.Microsecond

	// bindGroupLimit bounds the bind group cache. The two pipelines need
	// four groups.
	bindGroupLimit = 16
)

// Errors returned by Device.
var (
	// ErrNoSurface is returned when drawing to a shared device's surface
	// before SetSurfaceView.
	ErrNoSurface = errors.New("native: no surface view set")

	// ErrSurfaceNotReadable is returned by ReadSurface on shared devices.
	ErrSurfaceNotReadable = errors.New("native: host surface cannot be read back")

	// ErrGPUTimeout is returned when the queue does not drain in time.
	ErrGPUTimeout = errors.New("native: GPU timeout")
)

type shaderModule struct {
	module hal.ShaderModule
	stage  gpucore.Stage
	label  string
}

type program struct {
	label    string
	desc     gpucore.ProgramDesc
	layout   hal.BindGroupLayout
	pipeLayo hal.PipelineLayout
	pipeline hal.RenderPipeline
}

type buffer struct {
	buf  hal.Buffer
	size uint64
}

type texture struct {
	tex    hal.Texture
	view   hal.TextureView
	width  uint32
	height uint32
	// usage is the last usage the texture was transitioned to.
	usage gputypes.TextureUsage
}

// bindKey identifies a cached bind group: one per program and sampled
// texture. Uniform contents depend only on that pair, so each group owns
// its uniform buffer and rewrites it only when the bytes change.
type bindKey struct {
	program gpucore.ProgramID
	texture gpucore.TextureID
}

type bindGroup struct {
	group    hal.BindGroup
	uniform  hal.Buffer
	uniforms []byte
}

type submission struct {
	index uint64
	cmd   hal.CommandBuffer
}

// Device is a gpucore.Device on a HAL device and queue.
//
// Device is not safe for concurrent use; all calls are expected from the
// goroutine that owns the simulation loop.
type Device struct {
	device     hal.Device
	queue      hal.Queue
	instance   hal.Instance
	ownsDevice bool
	shared     bool

	limits  gpucore.Limits
	sampler hal.Sampler

	surfaceFormat gputypes.TextureFormat
	surfaceView   hal.TextureView
	surfaceWidth  int
	surfaceHeight int
	// screen backs the surface of standalone devices.
	screen *texture

	nextID       uint64
	shaders      map[gpucore.ShaderID]*shaderModule
	programs     map[gpucore.ProgramID]*program
	buffers      map[gpucore.BufferID]*buffer
	textures     map[gpucore.TextureID]*texture
	framebuffers map[gpucore.FramebufferID]gpucore.TextureID
	bindGroups   *cache.Cache[bindKey, *bindGroup]

	inflight []submission

	destroyed bool
}

var _ gpucore.Device = (*Device)(nil)

// NewFromHAL wraps an existing HAL device and queue. The caller keeps
// ownership of both. Without a surface view the surface is rendered
// offscreen and can be read back.
func NewFromHAL(device hal.Device, queue hal.Queue, opts Options) (*Device, error) {
	if opts.Provider == nil {
		opts.SurfaceFormat = gputypes.TextureFormatRGBA8Unorm
	} else if opts.SurfaceFormat == gputypes.TextureFormat(0) {
		opts.SurfaceFormat = gputypes.TextureFormatBGRA8Unorm
	}
	return newDevice(device, queue, opts, opts.Provider != nil)
}

func newDevice(device hal.Device, queue hal.Queue, opts Options, shared bool) (*Device, error) {
	d := &Device{
		device:        device,
		queue:         queue,
		shared:        shared,
		limits:        gpucore.Limits{MaxTextureDimension2D: gputypes.DefaultLimits().MaxTextureDimension2D},
		surfaceFormat: opts.SurfaceFormat,
		surfaceWidth:  max(opts.SurfaceWidth, 1),
		surfaceHeight: max(opts.SurfaceHeight, 1),
		shaders:       make(map[gpucore.ShaderID]*shaderModule),
		programs:      make(map[gpucore.ProgramID]*program),
		buffers:       make(map[gpucore.BufferID]*buffer),
		textures:      make(map[gpucore.TextureID]*texture),
		framebuffers:  make(map[gpucore.FramebufferID]gpucore.TextureID),
	}
	d.bindGroups = cache.New[bindKey, *bindGroup](bindGroupLimit, d.releaseBindGroup)

	sampler, err := device.CreateSampler(&hal.SamplerDescriptor{
		Label:        "gglife_nearest",
		AddressModeU: gputypes.AddressModeClampToEdge,
		AddressModeV: gputypes.AddressModeClampToEdge,
		AddressModeW: gputypes.AddressModeClampToEdge,
		MagFilter:    gputypes.FilterModeNearest,
		MinFilter:    gputypes.FilterModeNearest,
		MipmapFilter: gputypes.FilterModeNearest,
	})
	if err != nil {
		return nil, fmt.Errorf("create sampler: %w", err)
	}
	d.sampler = sampler

	if !shared {
		screen, err := d.newTexture("gglife_screen", d.surfaceWidth, d.surfaceHeight,
			gputypes.TextureUsageRenderAttachment|gputypes.TextureUsageCopySrc)
		if err != nil {
			device.DestroySampler(sampler)
			return nil, err
		}
		d.screen = screen
	}
	slogger().Debug("native: device ready",
		"surface", fmt.Sprintf("%dx%d", d.surfaceWidth, d.surfaceHeight),
		"shared", shared)
	return d, nil
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// Limits returns the device limits.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// SurfaceSize returns the surface size in pixels.
func (d *Device) SurfaceSize() (int, int) { return d.surfaceWidth, d.surfaceHeight }

// SetSurfaceView sets the host surface view for the current frame. The
// caller keeps ownership of view. A nil view detaches the surface until the
// next frame.
func (d *Device) SetSurfaceView(view hal.TextureView, width, height int) {
	d.surfaceView = view
	if view != nil && width > 0 && height > 0 {
		d.surfaceWidth, d.surfaceHeight = width, height
	}
}

// CompileShader validates the WGSL source with naga and creates a shader
// module for one stage.
func (d *Device) CompileShader(desc *gpucore.ShaderDesc) (gpucore.ShaderID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	if strings.TrimSpace(desc.Source) == "" {
		return gpucore.InvalidID, fmt.Errorf("%s: empty shader source", desc.Label)
	}
	if _, err := naga.Compile(desc.Source); err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: %w", desc.Label, err)
	}
	if !strings.Contains(desc.Source, "@"+desc.Stage.String()) {
		return gpucore.InvalidID, fmt.Errorf("%s: no @%s entry point", desc.Label, desc.Stage)
	}

	module, err := d.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  desc.Label,
		Source: hal.ShaderSource{WGSL: desc.Source},
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: create shader module: %w", desc.Label, err)
	}
	id := gpucore.ShaderID(d.id())
	d.shaders[id] = &shaderModule{module: module, stage: desc.Stage, label: desc.Label}
	slogger().Debug("native: shader compiled", "label", desc.Label, "stage", desc.Stage.String())
	return id, nil
}

// DestroyShader releases a shader module.
func (d *Device) DestroyShader(id gpucore.ShaderID) {
	if s, ok := d.shaders[id]; ok {
		d.device.DestroyShaderModule(s.module)
		delete(d.shaders, id)
	}
}

// LinkProgram builds the bind group layout, pipeline layout and render
// pipeline for a vertex/fragment pair.
//
// Bind group 0 layout:
//
//	binding 0: uniform buffer (fragment), omitted when UniformSize is 0
//	binding 1: texture_2d<f32> (fragment)
//	binding 2: sampler (fragment)
func (d *Device) LinkProgram(desc *gpucore.ProgramDesc) (gpucore.ProgramID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	vs, ok := d.shaders[desc.Vertex]
	if !ok || vs.stage != gpucore.StageVertex {
		return gpucore.InvalidID, fmt.Errorf("%s: vertex stage %d is not a compiled vertex shader", desc.Label, desc.Vertex)
	}
	fs, ok := d.shaders[desc.Fragment]
	if !ok || fs.stage != gpucore.StageFragment {
		return gpucore.InvalidID, fmt.Errorf("%s: fragment stage %d is not a compiled fragment shader", desc.Label, desc.Fragment)
	}
	if desc.UniformSize%16 != 0 {
		return gpucore.InvalidID, fmt.Errorf("%s: uniform block size %d is not a multiple of 16", desc.Label, desc.UniformSize)
	}
	if len(desc.Attributes) == 0 || desc.Stride == 0 {
		return gpucore.InvalidID, fmt.Errorf("%s: program has no vertex attributes", desc.Label)
	}

	entries := make([]gputypes.BindGroupLayoutEntry, 0, 3)
	if desc.UniformSize > 0 {
		entries = append(entries, gputypes.BindGroupLayoutEntry{
			Binding:    0,
			Visibility: gputypes.ShaderStageFragment,
			Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
		})
	}
	entries = append(entries,
		gputypes.BindGroupLayoutEntry{
			Binding:    1,
			Visibility: gputypes.ShaderStageFragment,
			Texture: &gputypes.TextureBindingLayout{
				SampleType:    gputypes.TextureSampleTypeFloat,
				ViewDimension: gputypes.TextureViewDimension2D,
			},
		},
		gputypes.BindGroupLayoutEntry{
			Binding:    2,
			Visibility: gputypes.ShaderStageFragment,
			Sampler:    &gputypes.SamplerBindingLayout{Type: gputypes.SamplerBindingTypeFiltering},
		},
	)

	layout, err := d.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label:   desc.Label + "_bgl",
		Entries: entries,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("%s: create bind group layout: %w", desc.Label, err)
	}
	pipeLayout, err := d.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            desc.Label + "_layout",
		BindGroupLayouts: []hal.BindGroupLayout{layout},
	})
	if err != nil {
		d.device.DestroyBindGroupLayout(layout)
		return gpucore.InvalidID, fmt.Errorf("%s: create pipeline layout: %w", desc.Label, err)
	}

	attrs := make([]gputypes.VertexAttribute, len(desc.Attributes))
	for i, a := range desc.Attributes {
		attrs[i] = gputypes.VertexAttribute{
			Format:         gputypes.VertexFormatFloat32x2,
			Offset:         a.Offset,
			ShaderLocation: a.Location,
		}
	}
	format := gputypes.TextureFormatRGBA8Unorm
	if desc.Output == gpucore.OutputSurface {
		format = d.surfaceFormat
	}

	pipeline, err := d.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  desc.Label,
		Layout: pipeLayout,
		Vertex: hal.VertexState{
			Module:     vs.module,
			EntryPoint: gpucore.StageVertex.EntryPoint(),
			Buffers: []gputypes.VertexBufferLayout{{
				ArrayStride: desc.Stride,
				StepMode:    gputypes.VertexStepModeVertex,
				Attributes:  attrs,
			}},
		},
		Fragment: &hal.FragmentState{
			Module:     fs.module,
			EntryPoint: gpucore.StageFragment.EntryPoint(),
			Targets: []gputypes.ColorTargetState{{
				Format:    format,
				WriteMask: gputypes.ColorWriteMaskAll,
			}},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleStrip,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{Count: 1, Mask: 0xFFFFFFFF},
	})
	if err != nil {
		d.device.DestroyPipelineLayout(pipeLayout)
		d.device.DestroyBindGroupLayout(layout)
		return gpucore.InvalidID, fmt.Errorf("%s: create render pipeline: %w", desc.Label, err)
	}

	id := gpucore.ProgramID(d.id())
	p := &program{label: desc.Label, desc: *desc, layout: layout, pipeLayo: pipeLayout, pipeline: pipeline}
	p.desc.Attributes = append([]gpucore.VertexAttribute(nil), desc.Attributes...)
	d.programs[id] = p
	slogger().Debug("native: program linked", "label", desc.Label, "vertex", vs.label, "fragment", fs.label)
	return id, nil
}

// DestroyProgram releases a program and its cached bind groups.
func (d *Device) DestroyProgram(id gpucore.ProgramID) {
	p, ok := d.programs[id]
	if !ok {
		return
	}
	d.dropBindGroups(func(k bindKey) bool { return k.program == id })
	d.device.DestroyRenderPipeline(p.pipeline)
	d.device.DestroyPipelineLayout(p.pipeLayo)
	d.device.DestroyBindGroupLayout(p.layout)
	delete(d.programs, id)
}

// CreateBuffer creates a vertex buffer initialized with desc.Data.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	if len(desc.Data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("%s: empty buffer", desc.Label)
	}
	buf, err := d.device.CreateBuffer(&hal.BufferDescriptor{
		Label: desc.Label,
		Size:  uint64(len(desc.Data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return gpucore.InvalidID, fmt.Errorf("create %s: %w", desc.Label, err)
	}
	if err := d.queue.WriteBuffer(buf, 0, desc.Data); err != nil {
		d.device.DestroyBuffer(buf)
		return gpucore.InvalidID, fmt.Errorf("upload %s: %w", desc.Label, err)
	}

	id := gpucore.BufferID(d.id())
	d.buffers[id] = &buffer{buf: buf, size: uint64(len(desc.Data))}
	return id, nil
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(id gpucore.BufferID) {
	if b, ok := d.buffers[id]; ok {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
}

func (d *Device) newTexture(label string, width, height int, usage gputypes.TextureUsage) (*texture, error) {
	w, h := uint32(width), uint32(height) //nolint:gosec // validated by callers
	tex, err := d.device.CreateTexture(&hal.TextureDescriptor{
		Label:         label,
		Size:          hal.Extent3D{Width: w, Height: h, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Usage:         usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	view, err := d.device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label:         label + "_view",
		Format:        gputypes.TextureFormatRGBA8Unorm,
		Dimension:     gputypes.TextureViewDimension2D,
		Aspect:        gputypes.TextureAspectAll,
		MipLevelCount: 1,
	})
	if err != nil {
		d.device.DestroyTexture(tex)
		return nil, fmt.Errorf("create %s view: %w", label, err)
	}
	return &texture{tex: tex, view: view, width: w, height: h}, nil
}

func (d *Device) destroyTexture(t *texture) {
	d.device.DestroyTextureView(t.view)
	d.device.DestroyTexture(t.tex)
}

// CreateTexture allocates an RGBA8 state texture usable as sampled
// texture, render target and copy source or destination.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	maxDim := int(d.limits.MaxTextureDimension2D)
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > maxDim || desc.Height > maxDim {
		return gpucore.InvalidID, fmt.Errorf("%s: texture size %dx%d outside 1..%d", desc.Label, desc.Width, desc.Height, maxDim)
	}
	t, err := d.newTexture(desc.Label, desc.Width, desc.Height,
		gputypes.TextureUsageTextureBinding|gputypes.TextureUsageRenderAttachment|
			gputypes.TextureUsageCopyDst|gputypes.TextureUsageCopySrc)
	if err != nil {
		return gpucore.InvalidID, err
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = t
	return id, nil
}

// DestroyTexture releases a texture and the bind groups that sample it.
// Pending submissions are drained first.
func (d *Device) DestroyTexture(id gpucore.TextureID) {
	t, ok := d.textures[id]
	if !ok {
		return
	}
	if err := d.drain(); err != nil {
		slogger().Warn("native: drain before texture release failed", "error", err)
	}
	d.dropBindGroups(func(k bindKey) bool { return k.texture == id })
	d.destroyTexture(t)
	delete(d.textures, id)
}

// WriteTexture uploads tightly packed RGBA8 rows to the whole texture.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	if want := int(t.width) * int(t.height) * 4; len(data) != want {
		return fmt.Errorf("texture %d: %w: got %d bytes, want %d", id, gpucore.ErrSizeMismatch, len(data), want)
	}
	if err := d.queue.WriteTexture(
		&hal.ImageCopyTexture{Texture: t.tex, MipLevel: 0},
		data,
		&hal.ImageDataLayout{Offset: 0, BytesPerRow: t.width * 4, RowsPerImage: t.height},
		&hal.Extent3D{Width: t.width, Height: t.height, DepthOrArrayLayers: 1},
	); err != nil {
		return fmt.Errorf("texture %d: upload: %w", id, err)
	}
	t.usage = gputypes.TextureUsageCopyDst
	return nil
}

// CreateFramebuffer attaches a texture as a render target.
func (d *Device) CreateFramebuffer(color gpucore.TextureID) (gpucore.FramebufferID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	if _, ok := d.textures[color]; !ok {
		return gpucore.InvalidID, fmt.Errorf("framebuffer attachment %d: %w", color, gpucore.ErrUnknownResource)
	}
	id := gpucore.FramebufferID(d.id())
	d.framebuffers[id] = color
	return id, nil
}

// DestroyFramebuffer releases a framebuffer.
func (d *Device) DestroyFramebuffer(id gpucore.FramebufferID) { delete(d.framebuffers, id) }

// barriers records texture usage transitions into one encoder. The
// tracked usage of a texture changes only on commit, once the encoder has
// produced a command buffer.
type barriers struct {
	encoder hal.CommandEncoder
	changes []usageChange
}

type usageChange struct {
	t     *texture
	usage gputypes.TextureUsage
}

func (b *barriers) usage(t *texture) gputypes.TextureUsage {
	for i := len(b.changes) - 1; i >= 0; i-- {
		if b.changes[i].t == t {
			return b.changes[i].usage
		}
	}
	return t.usage
}

// transition records a barrier when t is not already in usage.
func (b *barriers) transition(t *texture, usage gputypes.TextureUsage) {
	cur := b.usage(t)
	if cur == usage {
		return
	}
	if cur != 0 {
		b.encoder.TransitionTextures([]hal.TextureBarrier{{
			Texture: t.tex,
			Usage:   hal.TextureUsageTransition{OldUsage: cur, NewUsage: usage},
		}})
	}
	b.changes = append(b.changes, usageChange{t: t, usage: usage})
}

func (b *barriers) commit() {
	for _, c := range b.changes {
		c.t.usage = c.usage
	}
}

func (d *Device) bindGroup(p *program, key bindKey, src *texture) (*bindGroup, error) {
	if bg, ok := d.bindGroups.Get(key); ok {
		return bg, nil
	}

	bg := &bindGroup{}
	entries := make([]gputypes.BindGroupEntry, 0, 3)
	if p.desc.UniformSize > 0 {
		ub, err := d.device.CreateBuffer(&hal.BufferDescriptor{
			Label: p.label + "_uniforms",
			Size:  p.desc.UniformSize,
			Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
		})
		if err != nil {
			return nil, fmt.Errorf("%s: create uniform buffer: %w", p.label, err)
		}
		bg.uniform = ub
		entries = append(entries, gputypes.BindGroupEntry{
			Binding:  0,
			Resource: gputypes.BufferBinding{Buffer: ub.NativeHandle(), Offset: 0, Size: p.desc.UniformSize},
		})
	}
	entries = append(entries,
		gputypes.BindGroupEntry{
			Binding:  1,
			Resource: gputypes.TextureViewBinding{TextureView: src.view.NativeHandle()},
		},
		gputypes.BindGroupEntry{
			Binding:  2,
			Resource: gputypes.SamplerBinding{Sampler: d.sampler.NativeHandle()},
		},
	)

	group, err := d.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:   p.label + "_bg",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		if bg.uniform != nil {
			d.device.DestroyBuffer(bg.uniform)
		}
		return nil, fmt.Errorf("%s: create bind group: %w", p.label, err)
	}
	bg.group = group
	d.bindGroups.Set(key, bg)
	return bg, nil
}

func (d *Device) dropBindGroups(match func(bindKey) bool) {
	d.bindGroups.RemoveFunc(match)
}

// releaseBindGroup destroys an evicted bind group once no submitted work
// can still reference it.
func (d *Device) releaseBindGroup(_ bindKey, bg *bindGroup) {
	if err := d.drain(); err != nil {
		slogger().Warn("native: drain before bind group release failed", "error", err)
	}
	d.device.DestroyBindGroup(bg.group)
	if bg.uniform != nil {
		d.device.DestroyBuffer(bg.uniform)
	}
}

// Draw records one render pass with a single draw and submits it without
// waiting for completion.
func (d *Device) Draw(call *gpucore.DrawCall) error {
	if d.destroyed {
		return gpucore.ErrDeviceDestroyed
	}
	p, ok := d.programs[call.Program]
	if !ok {
		return fmt.Errorf("program %d: %w", call.Program, gpucore.ErrUnknownResource)
	}
	src, ok := d.textures[call.Texture]
	if !ok {
		return fmt.Errorf("sampled texture %d: %w", call.Texture, gpucore.ErrUnknownResource)
	}
	vb, ok := d.buffers[call.Vertices]
	if !ok {
		return fmt.Errorf("vertex buffer %d: %w", call.Vertices, gpucore.ErrUnknownResource)
	}
	if uint64(len(call.Uniforms)) != p.desc.UniformSize {
		return fmt.Errorf("%s: uniform block is %d bytes, want %d", p.label, len(call.Uniforms), p.desc.UniformSize)
	}
	if call.VertexCount < 3 || uint64(call.VertexCount)*p.desc.Stride > vb.size {
		return fmt.Errorf("%s: %d vertices do not fit a %d byte buffer", p.label, call.VertexCount, vb.size)
	}

	var (
		view hal.TextureView
		dst  *texture
	)
	switch {
	case call.Target != gpucore.SurfaceFramebuffer:
		texID, ok := d.framebuffers[call.Target]
		if !ok {
			return fmt.Errorf("framebuffer %d: %w", call.Target, gpucore.ErrUnknownResource)
		}
		if texID == call.Texture {
			return fmt.Errorf("%s: %w", p.label, gpucore.ErrFeedbackLoop)
		}
		dst = d.textures[texID]
		view = dst.view
	case d.shared:
		if d.surfaceView == nil {
			return ErrNoSurface
		}
		view = d.surfaceView
	default:
		dst = d.screen
		view = dst.view
	}

	bg, err := d.bindGroup(p, bindKey{program: call.Program, texture: call.Texture}, src)
	if err != nil {
		return err
	}
	if bg.uniform != nil && !bytes.Equal(bg.uniforms, call.Uniforms) {
		if err := d.queue.WriteBuffer(bg.uniform, 0, call.Uniforms); err != nil {
			return fmt.Errorf("%s: write uniforms: %w", p.label, err)
		}
		bg.uniforms = append(bg.uniforms[:0], call.Uniforms...)
	}

	encoder, err := d.device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{Label: p.label + "_encoder"})
	if err != nil {
		return fmt.Errorf("create command encoder: %w", err)
	}
	if err := encoder.BeginEncoding(p.label); err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("begin encoding: %w", err)
	}

	b := barriers{encoder: encoder}
	b.transition(src, gputypes.TextureUsageTextureBinding)
	if dst != nil {
		b.transition(dst, gputypes.TextureUsageRenderAttachment)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: p.label + "_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, bg.group, nil)
	rp.SetVertexBuffer(0, vb.buf, 0)
	rp.Draw(call.VertexCount, 1, 0, 0)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		encoder.DiscardEncoding()
		return fmt.Errorf("end encoding: %w", err)
	}
	b.commit()
	return d.submit(cmdBuf)
}

// submit queues cmdBuf and reclaims command buffers that already finished.
func (d *Device) submit(cmdBuf hal.CommandBuffer) error {
	index, err := d.queue.Submit([]hal.CommandBuffer{cmdBuf})
	if err != nil {
		d.device.FreeCommandBuffer(cmdBuf)
		return fmt.Errorf("submit: %w", err)
	}
	d.inflight = append(d.inflight, submission{index: index, cmd: cmdBuf})
	d.reclaim(d.queue.PollCompleted())
	return nil
}

// reclaim frees the command buffers of submissions up to completed.
func (d *Device) reclaim(completed uint64) {
	n := 0
	for _, s := range d.inflight {
		if s.index > completed {
			break
		}
		d.device.FreeCommandBuffer(s.cmd)
		n++
	}
	d.inflight = d.inflight[n:]
}

// drain waits for every submission to complete.
func (d *Device) drain() error {
	if len(d.inflight) == 0 {
		return nil
	}
	last := d.inflight[len(d.inflight)-1].index
	deadline := time.Now().Add(drainTimeout)
	for {
		completed := d.queue.PollCompleted()
		if completed >= last {
			d.reclaim(completed)
			return nil
		}
		if time.Now().After(deadline) {
			d.reclaim(completed)
			return fmt.Errorf("%w after %v", ErrGPUTimeout, drainTimeout)
		}
		time.Sleep(pollInterval)
	}
}

// Pending returns the number of submissions not yet reclaimed.
func (d *Device) Pending() int { return len(d.inflight) }

// Destroy drains the queue and releases every resource. A standalone
// device also destroys its HAL device and instance.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	if err := d.drain(); err != nil {
		slogger().Warn("native: drain on destroy failed", "error", err)
	}
	d.destroyed = true

	d.dropBindGroups(func(bindKey) bool { return true })
	for id := range d.framebuffers {
		delete(d.framebuffers, id)
	}
	for id, p := range d.programs {
		d.device.DestroyRenderPipeline(p.pipeline)
		d.device.DestroyPipelineLayout(p.pipeLayo)
		d.device.DestroyBindGroupLayout(p.layout)
		delete(d.programs, id)
	}
	for id, s := range d.shaders {
		d.device.DestroyShaderModule(s.module)
		delete(d.shaders, id)
	}
	for id, b := range d.buffers {
		d.device.DestroyBuffer(b.buf)
		delete(d.buffers, id)
	}
	for id, t := range d.textures {
		d.destroyTexture(t)
		delete(d.textures, id)
	}
	if d.screen != nil {
		d.destroyTexture(d.screen)
		d.screen = nil
	}
	d.device.DestroySampler(d.sampler)

	if d.ownsDevice {
		d.device.Destroy()
		if d.instance != nil {
			d.instance.Destroy()
		}
	}
	slogger().Info("native: device destroyed")
}
