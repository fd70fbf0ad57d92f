// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package software provides a CPU reference implementation of gpucore.Device.
//
// Shader text is validated with naga exactly as the native device would see
// it, so malformed sources fail with the same compile errors. Fragment work
// is executed by Go kernels registered per program label; the reference
// kernels mirror the shipped WGSL programs. Draws are rasterized as
// axis-aligned quads, which is all the full-screen pipelines need.
package software

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/gogpu/gglife/backend"
	"github.com/gogpu/gglife/gpucore"
	"github.com/gogpu/gglife/internal/parallel"
	"github.com/gogpu/naga"
)

// DefaultMaxTextureDimension matches the WebGPU default limit.
const DefaultMaxTextureDimension = 8192

// ErrNoKernel is returned by LinkProgram when no kernel implements the
// program label.
var ErrNoKernel = errors.New("software: no kernel registered for program")

func init() {
	backend.Register(backend.Software, func(cfg backend.Config) (gpucore.Device, error) {
		return New(Options{SurfaceWidth: cfg.SurfaceWidth, SurfaceHeight: cfg.SurfaceHeight}), nil
	})
}

// Options configures a software device.
type Options struct {
	// SurfaceWidth and SurfaceHeight size the visible surface.
	SurfaceWidth, SurfaceHeight int

	// MaxTextureDimension bounds texture sizes. Defaults to
	// DefaultMaxTextureDimension.
	MaxTextureDimension int

	// Kernels implement programs by label. Defaults to ReferenceKernels.
	Kernels Kernels

	// Workers is the number of shading goroutines. 0 uses GOMAXPROCS.
	Workers int
}

// Stats counts live resources and submitted draws.
type Stats struct {
	Shaders      int
	Programs     int
	Buffers      int
	Textures     int
	Framebuffers int
	Draws        uint64
}

type shader struct {
	stage gpucore.Stage
	label string
}

type program struct {
	label  string
	kernel Kernel
	desc   gpucore.ProgramDesc
}

// Device is a CPU implementation of gpucore.Device.
//
// Like a GPU queue, Device executes draws in submission order; unlike one,
// Draw returns only after the pixels are written.
type Device struct {
	limits  gpucore.Limits
	kernels Kernels
	pool    *parallel.WorkerPool

	nextID       uint64
	shaders      map[gpucore.ShaderID]*shader
	programs     map[gpucore.ProgramID]*program
	buffers      map[gpucore.BufferID][]byte
	textures     map[gpucore.TextureID]*Texture
	framebuffers map[gpucore.FramebufferID]gpucore.TextureID
	surface      *Texture

	draws     uint64
	destroyed bool
}

var _ gpucore.Device = (*Device)(nil)

// New creates a software device.
func New(opts Options) *Device {
	maxDim := opts.MaxTextureDimension
	if maxDim <= 0 {
		maxDim = DefaultMaxTextureDimension
	}
	kernels := opts.Kernels
	if kernels == nil {
		kernels = ReferenceKernels()
	}
	w, h := max(opts.SurfaceWidth, 1), max(opts.SurfaceHeight, 1)

	d := &Device{
		limits:       gpucore.Limits{MaxTextureDimension2D: uint32(maxDim)}, //nolint:gosec // positive by construction
		kernels:      kernels,
		pool:         parallel.NewWorkerPool(opts.Workers),
		shaders:      make(map[gpucore.ShaderID]*shader),
		programs:     make(map[gpucore.ProgramID]*program),
		buffers:      make(map[gpucore.BufferID][]byte),
		textures:     make(map[gpucore.TextureID]*Texture),
		framebuffers: make(map[gpucore.FramebufferID]gpucore.TextureID),
		surface:      newTexture(w, h),
	}
	slogger().Debug("software: device created", "surface", fmt.Sprintf("%dx%d", w, h), "workers", d.pool.Workers())
	return d
}

func (d *Device) id() uint64 {
	d.nextID++
	return d.nextID
}

// Limits returns the device limits.
func (d *Device) Limits() gpucore.Limits { return d.limits }

// SurfaceSize returns the surface size in pixels.
func (d *Device) SurfaceSize() (int, int) { return d.surface.Width, d.surface.Height }

// Stats returns live resource counts.
func (d *Device) Stats() Stats {
	return Stats{
		Shaders:      len(d.shaders),
		Programs:     len(d.programs),
		Buffers:      len(d.buffers),
		Textures:     len(d.textures),
		Framebuffers: len(d.framebuffers),
		Draws:        d.draws,
	}
}

// CompileShader validates the WGSL source with naga and checks that it
// declares an entry point for the requested stage.
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

	id := gpucore.ShaderID(d.id())
	d.shaders[id] = &shader{stage: desc.Stage, label: desc.Label}
	return id, nil
}

// DestroyShader releases a compiled stage.
func (d *Device) DestroyShader(id gpucore.ShaderID) { delete(d.shaders, id) }

// LinkProgram checks the stage pairing and binds the program to its kernel.
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
	kernel, ok := d.kernels[desc.Label]
	if !ok {
		return gpucore.InvalidID, fmt.Errorf("%w %q", ErrNoKernel, desc.Label)
	}

	id := gpucore.ProgramID(d.id())
	p := &program{label: desc.Label, kernel: kernel, desc: *desc}
	p.desc.Attributes = append([]gpucore.VertexAttribute(nil), desc.Attributes...)
	d.programs[id] = p
	slogger().Debug("software: program linked", "label", desc.Label, "vertex", vs.label, "fragment", fs.label)
	return id, nil
}

// DestroyProgram releases a program.
func (d *Device) DestroyProgram(id gpucore.ProgramID) { delete(d.programs, id) }

// CreateBuffer copies desc.Data into a new vertex buffer.
func (d *Device) CreateBuffer(desc *gpucore.BufferDesc) (gpucore.BufferID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	if len(desc.Data) == 0 {
		return gpucore.InvalidID, fmt.Errorf("%s: empty buffer", desc.Label)
	}
	id := gpucore.BufferID(d.id())
	d.buffers[id] = append([]byte(nil), desc.Data...)
	return id, nil
}

// DestroyBuffer releases a buffer.
func (d *Device) DestroyBuffer(id gpucore.BufferID) { delete(d.buffers, id) }

// CreateTexture allocates a zeroed RGBA8 texture.
func (d *Device) CreateTexture(desc *gpucore.TextureDesc) (gpucore.TextureID, error) {
	if d.destroyed {
		return gpucore.InvalidID, gpucore.ErrDeviceDestroyed
	}
	maxDim := int(d.limits.MaxTextureDimension2D)
	if desc.Width <= 0 || desc.Height <= 0 || desc.Width > maxDim || desc.Height > maxDim {
		return gpucore.InvalidID, fmt.Errorf("%s: texture size %dx%d outside 1..%d", desc.Label, desc.Width, desc.Height, maxDim)
	}
	id := gpucore.TextureID(d.id())
	d.textures[id] = newTexture(desc.Width, desc.Height)
	return id, nil
}

// DestroyTexture releases a texture.
func (d *Device) DestroyTexture(id gpucore.TextureID) { delete(d.textures, id) }

// WriteTexture replaces the texture contents.
func (d *Device) WriteTexture(id gpucore.TextureID, data []byte) error {
	t, ok := d.textures[id]
	if !ok {
		return fmt.Errorf("texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	if len(data) != len(t.Pix) {
		return fmt.Errorf("texture %d: %w: got %d bytes, want %d", id, gpucore.ErrSizeMismatch, len(data), len(t.Pix))
	}
	copy(t.Pix, data)
	return nil
}

// ReadTexture returns a copy of the texture contents.
func (d *Device) ReadTexture(id gpucore.TextureID) ([]byte, error) {
	t, ok := d.textures[id]
	if !ok {
		return nil, fmt.Errorf("texture %d: %w", id, gpucore.ErrUnknownResource)
	}
	return append([]byte(nil), t.Pix...), nil
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

// Draw shades every target pixel covered by the draw's quad.
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
	if uint64(len(call.Uniforms)) != p.desc.UniformSize {
		return fmt.Errorf("%s: uniform block is %d bytes, want %d", p.label, len(call.Uniforms), p.desc.UniformSize)
	}

	dst := d.surface
	if call.Target != gpucore.SurfaceFramebuffer {
		texID, ok := d.framebuffers[call.Target]
		if !ok {
			return fmt.Errorf("framebuffer %d: %w", call.Target, gpucore.ErrUnknownResource)
		}
		if texID == call.Texture {
			return fmt.Errorf("%s: %w", p.label, gpucore.ErrFeedbackLoop)
		}
		dst = d.textures[texID]
	}

	x0, y0, x1, y1, err := d.coverage(p, call, dst)
	if err != nil {
		return err
	}

	uniforms := append([]byte(nil), call.Uniforms...)
	kernel := p.kernel
	d.pool.ForEachBand(y1-y0, func(b0, b1 int) {
		f := Fragment{Width: dst.Width, Height: dst.Height, Texture: src, Uniforms: uniforms}
		for y := y0 + b0; y < y0+b1; y++ {
			f.Y = y
			for x := x0; x < x1; x++ {
				f.X = x
				dst.store(x, y, kernel(&f))
			}
		}
	})
	d.draws++
	return nil
}

// coverage returns the pixel rectangle covered by the bounding box of the
// draw's positions. Pixel centers inside the box are covered.
func (d *Device) coverage(p *program, call *gpucore.DrawCall, dst *Texture) (x0, y0, x1, y1 int, err error) {
	data, ok := d.buffers[call.Vertices]
	if !ok {
		return 0, 0, 0, 0, fmt.Errorf("vertex buffer %d: %w", call.Vertices, gpucore.ErrUnknownResource)
	}
	if call.VertexCount < 3 {
		return 0, 0, 0, 0, fmt.Errorf("%s: %d vertices do not form a triangle", p.label, call.VertexCount)
	}
	pos := p.desc.Attributes[0]
	if need := uint64(call.VertexCount-1)*p.desc.Stride + pos.Offset + pos.Format.Size(); uint64(len(data)) < need {
		return 0, 0, 0, 0, fmt.Errorf("%s: vertex buffer holds %d bytes, draw needs %d", p.label, len(data), need)
	}

	minX, minY := float32(math.Inf(1)), float32(math.Inf(1))
	maxX, maxY := float32(math.Inf(-1)), float32(math.Inf(-1))
	for i := range uint64(call.VertexCount) {
		off := i*p.desc.Stride + pos.Offset
		vx := math.Float32frombits(binary.LittleEndian.Uint32(data[off:]))
		vy := math.Float32frombits(binary.LittleEndian.Uint32(data[off+4:]))
		minX, maxX = min(minX, vx), max(maxX, vx)
		minY, maxY = min(minY, vy), max(maxY, vy)
	}

	// Clip space to framebuffer space, y pointing down.
	w, h := float32(dst.Width), float32(dst.Height)
	toPixel := func(v, size float32) int {
		return clampInt(int(math.Ceil(float64((v+1)/2*size-0.5))), 0, int(size))
	}
	x0 = toPixel(minX, w)
	x1 = toPixel(maxX, w)
	y0 = toPixel(-maxY, h)
	y1 = toPixel(-minY, h)
	return x0, y0, x1, y1, nil
}

// ReadSurface returns a copy of the surface pixels.
func (d *Device) ReadSurface() ([]byte, error) {
	if d.destroyed {
		return nil, gpucore.ErrDeviceDestroyed
	}
	return append([]byte(nil), d.surface.Pix...), nil
}

// Destroy stops the worker pool and drops every resource.
func (d *Device) Destroy() {
	if d.destroyed {
		return
	}
	d.destroyed = true
	d.pool.Close()
	clear(d.shaders)
	clear(d.programs)
	clear(d.buffers)
	clear(d.textures)
	clear(d.framebuffers)
	slogger().Debug("software: device destroyed", "draws", d.draws)
}
