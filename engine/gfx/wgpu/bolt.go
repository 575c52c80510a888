// Package wgpubackend renders the scene graph through WebGPU. Draws are
// recorded into one command buffer per render.Renderer.Draw and submitted
// when the frame ends.
//
// Every program module sees three bind groups:
//
//	@group(0) @binding(0) var<uniform> camera: Camera;  // projection, view, cameraPosition
//	@group(1) @binding(0) var<uniform> object: Object;  // model, modelView, normal
//	@group(2)                                           // material, see ProgramOptions
package wgpubackend

import (
	"errors"
	"fmt"

	"github.com/chewxy/math32"
	"github.com/cogentcore/webgpu/wgpu"
	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

var (
	ErrUnsupported   = errors.New("wgpu: no suitable adapter")
	ErrShaderCompile = errors.New("wgpu: shader compile error")

	errNoTarget  = errors.New("wgpu: no surface or render target")
	errFrameOpen = errors.New("wgpu: frame already in progress")
)

var (
	cameraFields = []UniformField{
		{Name: render.UniformProjection, Type: Mat4},
		{Name: render.UniformView, Type: Mat4},
		{Name: render.UniformCameraPosition, Type: Vec3},
	}
	objectFields = []UniformField{
		{Name: render.UniformModel, Type: Mat4},
		{Name: render.UniformModelView, Type: Mat4},
		{Name: render.UniformNormal, Type: Mat3},
	}
)

// Object bindings not drawn for this many frames are released.
const staleFrames = 120

// objectBinding is the per-DrawSet object block. Each DrawSet owns its own
// buffer so every draw recorded in a command buffer sees its own matrices.
type objectBinding struct {
	block *UniformBlock
	buf   *wgpu.Buffer
	group *wgpu.BindGroup
	frame uint64
}

func (o *objectBinding) release() {
	o.group = releaseGroup(o.group)
	if o.buf != nil {
		o.buf.Release()
		o.buf = nil
	}
}

// BoltWGPU is the WebGPU renderer. The embedded render.Renderer drives
// Draw; BoltWGPU records and submits the frame.
type BoltWGPU struct {
	*render.Renderer

	instance *wgpu.Instance
	surface  *wgpu.Surface
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	config   *wgpu.SurfaceConfiguration

	canvas core.Canvas
	opts   core.ContextOptions

	width, height int
	dpi           float32
	samples       uint32
	clear         wgpu.Color

	surfaceMSAA  *Texture
	surfaceDepth *Texture
	target       *RenderTarget
	placeholder  *Texture

	cameraLayout *wgpu.BindGroupLayout
	objectLayout *wgpu.BindGroupLayout
	camera       *UniformBlock
	cameraBuf    *wgpu.Buffer
	cameraGroup  *wgpu.BindGroup
	objects      map[*render.DrawSet]*objectBinding

	frame       uint64
	encoder     *wgpu.CommandEncoder
	pass        *wgpu.RenderPassEncoder
	passKey     pipelineKey
	bound       passState
	surfaceTex  *wgpu.Texture
	surfaceView *wgpu.TextureView
}

// Init creates the instance, surface (when surfaceDesc is non-nil), adapter
// and device, then sizes canvas to its display size times the DPI. Without
// a surface the renderer only draws into render targets.
func Init(surfaceDesc *wgpu.SurfaceDescriptor, canvas core.Canvas, opts core.ContextOptions, vsync bool) (*BoltWGPU, error) {
	b := &BoltWGPU{
		instance: wgpu.CreateInstance(nil),
		canvas:   canvas,
		opts:     opts,
		dpi:      1,
		samples:  sampleCount(opts.SampleCount()),
		clear:    wgpu.Color{A: 1},
		objects:  map[*render.DrawSet]*objectBinding{},
	}
	b.Renderer = render.New(b)
	if surfaceDesc != nil {
		b.surface = b.instance.CreateSurface(surfaceDesc)
	}

	var err error
	b.adapter, err = b.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: b.surface,
		PowerPreference:   powerPreference(opts.PowerPreference),
	})
	if err != nil || b.adapter == nil {
		b.Shutdown()
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}
	b.device, err = b.adapter.RequestDevice(&wgpu.DeviceDescriptor{Label: "bolt"})
	if err != nil {
		b.Shutdown()
		return nil, fmt.Errorf("request device: %w", err)
	}
	b.queue = b.device.GetQueue()

	if b.surface != nil {
		caps := b.surface.GetCapabilities(b.adapter)
		b.config = &wgpu.SurfaceConfiguration{
			Usage:       wgpu.TextureUsageRenderAttachment,
			Format:      surfaceFormat(caps.Formats),
			PresentMode: presentMode(vsync),
			AlphaMode:   alphaMode(opts.Alpha, opts.PremultipliedAlpha, caps.AlphaModes),
		}
	}
	if err := b.createBindings(); err != nil {
		b.Shutdown()
		return nil, err
	}
	b.FitCanvas()

	logger.Log.Info("wgpu renderer ready",
		zap.Bool("surface", b.surface != nil),
		zap.String("power_preference", opts.PowerPreference),
		zap.Int("width", b.width),
		zap.Int("height", b.height),
		zap.Float32("dpi", b.dpi),
		zap.Uint32("samples", b.samples))
	return b, nil
}

func (b *BoltWGPU) createBindings() error {
	var err error
	for _, l := range []struct {
		name string
		dst  **wgpu.BindGroupLayout
	}{{"camera", &b.cameraLayout}, {"object", &b.objectLayout}} {
		*l.dst, err = b.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   l.name,
			Entries: []wgpu.BindGroupLayoutEntry{uniformLayoutEntry(0)},
		})
		if err != nil {
			return fmt.Errorf("%s bind group layout: %w", l.name, err)
		}
	}
	if b.camera, err = NewUniformBlock(cameraFields); err != nil {
		return err
	}
	b.cameraBuf, b.cameraGroup, err = b.uniformBinding("camera", b.cameraLayout, b.camera.Size())
	if err != nil {
		return err
	}
	b.placeholder, err = NewTexture(b, 1, 1, TextureOptions{Label: "placeholder", Nearest: true})
	if err != nil {
		return err
	}
	return b.placeholder.SetData([]byte{255, 255, 255, 255})
}

// uniformBinding creates a uniform buffer of size bytes and a bind group
// exposing it at binding 0 of layout.
func (b *BoltWGPU) uniformBinding(label string, layout *wgpu.BindGroupLayout, size int) (*wgpu.Buffer, *wgpu.BindGroup, error) {
	buf, err := b.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(size),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%s buffer: %w", label, err)
	}
	group, err := b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   label,
		Layout:  layout,
		Entries: []wgpu.BindGroupEntry{{Binding: 0, Buffer: buf, Size: wgpu.WholeSize}},
	})
	if err != nil {
		buf.Release()
		return nil, nil, fmt.Errorf("%s bind group: %w", label, err)
	}
	return buf, group, nil
}

func (b *BoltWGPU) compile(label, wgsl string) (*wgpu.ShaderModule, error) {
	m, err := b.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          label,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: wgsl},
	})
	if err != nil {
		return nil, fmt.Errorf("%w (%s): %v", ErrShaderCompile, label, err)
	}
	return m, nil
}

func (b *BoltWGPU) Device() *wgpu.Device { return b.device }
func (b *BoltWGPU) Queue() *wgpu.Queue   { return b.queue }
func (b *BoltWGPU) Width() int           { return b.width }
func (b *BoltWGPU) Height() int          { return b.height }
func (b *BoltWGPU) DPI() float32         { return b.dpi }
func (b *BoltWGPU) Samples() uint32      { return b.samples }

// SetRenderTarget directs following frames into rt; nil restores the
// surface.
func (b *BoltWGPU) SetRenderTarget(rt *RenderTarget) { b.target = rt }

func (b *BoltWGPU) RenderTarget() *RenderTarget { return b.target }

// FitCanvas sizes the canvas drawing buffer to its display size scaled by
// the effective DPI and reconfigures the surface.
func (b *BoltWGPU) FitCanvas() {
	if b.canvas == nil {
		return
	}
	dw, dh := b.canvas.DisplaySize()
	b.dpi = b.opts.EffectiveDPI(b.canvas.DevicePixelRatio())
	w := int(math32.Floor(float32(dw) * b.dpi))
	h := int(math32.Floor(float32(dh) * b.dpi))
	b.canvas.SetDrawingBufferSize(w, h)
	b.Resize(w, h)
}

// Resize reconfigures the surface and its depth and MSAA attachments at
// w×h pixels and updates the bound camera's aspect. Zero sizes (a
// minimised window) are ignored.
func (b *BoltWGPU) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	b.width, b.height = w, h
	if cam := b.Camera(); cam != nil {
		cam.Resize(w, h)
	}
	if b.config == nil {
		return
	}
	b.config.Width, b.config.Height = uint32(w), uint32(h)
	b.surface.Configure(b.adapter, b.device, b.config)
	if err := b.resizeAttachments(w, h); err != nil {
		logger.Log.Error("resize surface attachments", zap.Error(err), zap.Int("width", w), zap.Int("height", h))
	}
}

func (b *BoltWGPU) resizeAttachments(w, h int) error {
	var err error
	if b.surfaceDepth == nil {
		b.surfaceDepth, err = NewTexture(b, w, h, TextureOptions{Label: "surface depth", Format: depthFormat, Samples: b.samples})
	} else {
		err = b.surfaceDepth.Resize(w, h)
	}
	if err != nil || b.samples <= 1 {
		return err
	}
	if b.surfaceMSAA == nil {
		b.surfaceMSAA, err = NewTexture(b, w, h, TextureOptions{Label: "surface msaa", Format: b.config.Format, Samples: b.samples})
		return err
	}
	return b.surfaceMSAA.Resize(w, h)
}

// Clear sets the colour the next frame's pass clears to. Depth is always
// cleared to 1.
func (b *BoltWGPU) Clear(r, g, bl, a float32) {
	b.clear = wgpu.Color{R: float64(r), G: float64(g), B: float64(bl), A: float64(a)}
}

// BeginFrame implements render.Backend: acquire the target, upload the
// camera block and begin the render pass.
func (b *BoltWGPU) BeginFrame(cam *scene.Camera) error {
	if b.pass != nil {
		return errFrameOpen
	}
	var desc *wgpu.RenderPassDescriptor
	if rt := b.target; rt != nil {
		b.passKey = rt.passKey()
		desc = rt.passDescriptor(b.clear)
	} else {
		if b.config == nil || b.width == 0 {
			return errNoTarget
		}
		view, err := b.acquireSurface()
		if err != nil {
			return err
		}
		var msaa *wgpu.TextureView
		if b.surfaceMSAA != nil {
			msaa = b.surfaceMSAA.View()
		}
		b.passKey = pipelineKey{format: b.config.Format, samples: b.samples, depth: true}
		desc = passDescriptor(view, msaa, b.surfaceDepth.View(), b.clear)
	}
	b.frame++

	b.camera.SetMat4(render.UniformProjection, cam.ProjectionMatrix())
	b.camera.SetMat4(render.UniformView, cam.View())
	b.camera.SetVec3(render.UniformCameraPosition, cam.WorldPosition())
	if err := b.queue.WriteBuffer(b.cameraBuf, 0, b.camera.Bytes()); err != nil {
		b.releaseSurfaceFrame()
		return fmt.Errorf("write camera block: %w", err)
	}

	encoder, err := b.device.CreateCommandEncoder(nil)
	if err != nil {
		b.releaseSurfaceFrame()
		return fmt.Errorf("create command encoder: %w", err)
	}
	b.encoder = encoder
	b.pass = encoder.BeginRenderPass(desc)
	b.bound = passState{}
	return nil
}

func (b *BoltWGPU) acquireSurface() (*wgpu.TextureView, error) {
	tex, err := b.surface.GetCurrentTexture()
	if err != nil {
		return nil, fmt.Errorf("acquire surface texture: %w", err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, fmt.Errorf("surface texture view: %w", err)
	}
	b.surfaceTex, b.surfaceView = tex, view
	return view, nil
}

func (b *BoltWGPU) releaseSurfaceFrame() {
	if b.surfaceView != nil {
		b.surfaceView.Release()
		b.surfaceView = nil
	}
	if b.surfaceTex != nil {
		b.surfaceTex.Release()
		b.surfaceTex = nil
	}
}

// DrawItem implements render.Backend: upload the object block, bind the
// program pipeline, the three bind groups and the mesh buffers, and record
// the draw. Pipeline and bind groups already set on the pass are skipped.
func (b *BoltWGPU) DrawItem(ds *render.DrawSet) bool {
	if b.pass == nil {
		return false
	}
	mesh, ok := ds.Mesh.(*Mesh)
	if !ok || !mesh.Valid() {
		return false
	}
	prog, ok := ds.Program.(*Program)
	if !ok || prog == nil || prog.module == nil {
		return false
	}
	layout := prog.VertexLayout()
	if _, ok := cullMode(prog.Cull); !ok || !mesh.covers(layout) {
		return false
	}

	key := b.passKey
	key.topology = topology(mesh.DrawMode)
	key.blend = render.BlendNone
	if prog.Transparent {
		key.blend = prog.Blend
	}
	key.cull, key.depthTest, key.depthWrite = prog.Cull, prog.DepthTest, prog.DepthWrite
	pipeline, err := prog.pipeline(key)
	if err != nil {
		return false
	}
	obj, err := b.object(ds)
	if err != nil {
		return false
	}
	material, err := prog.bindGroup()
	if err != nil {
		return false
	}
	prog.flush(b.frame)

	var set bool
	if b.bound, set = b.bound.setPipeline(pipeline); set {
		b.pass.SetPipeline(pipeline)
	}
	for i, g := range [...]*wgpu.BindGroup{b.cameraGroup, obj.group, material} {
		if b.bound, set = b.bound.setBindGroup(uint32(i), g); set {
			b.pass.SetBindGroup(uint32(i), g, nil)
		}
	}
	mesh.draw(b.pass, layout)
	return true
}

// object returns the object binding for ds with its block updated from the
// node's current matrices.
func (b *BoltWGPU) object(ds *render.DrawSet) (*objectBinding, error) {
	o, ok := b.objects[ds]
	if !ok {
		block, err := NewUniformBlock(objectFields)
		if err != nil {
			return nil, err
		}
		buf, group, err := b.uniformBinding("object", b.objectLayout, block.Size())
		if err != nil {
			return nil, err
		}
		o = &objectBinding{block: block, buf: buf, group: group}
		b.objects[ds] = o
	}
	o.frame = b.frame
	o.block.SetMat4(render.UniformModel, ds.ModelMatrix())
	o.block.SetMat4(render.UniformModelView, ds.ModelViewMatrix())
	o.block.SetMat3(render.UniformNormal, ds.NormalMatrix())
	if err := b.queue.WriteBuffer(o.buf, 0, o.block.Bytes()); err != nil {
		return nil, err
	}
	o.block.clean()
	return o, nil
}

// Forget releases the GPU object block held for ds.
func (b *BoltWGPU) Forget(ds *render.DrawSet) {
	if o, ok := b.objects[ds]; ok {
		o.release()
		delete(b.objects, ds)
	}
}

// EndFrame implements render.Backend: end the pass, submit the command
// buffer and present when drawing to the surface.
func (b *BoltWGPU) EndFrame() error {
	if b.pass == nil {
		return nil
	}
	b.pass.End()
	b.pass.Release()
	b.pass = nil
	b.bound = passState{}

	cmd, err := b.encoder.Finish(nil)
	b.encoder.Release()
	b.encoder = nil
	if err != nil {
		b.releaseSurfaceFrame()
		return fmt.Errorf("finish command encoder: %w", err)
	}
	b.queue.Submit(cmd)
	cmd.Release()

	if b.surfaceTex != nil {
		b.surface.Present()
		b.releaseSurfaceFrame()
	}
	b.sweepObjects()
	return nil
}

func (b *BoltWGPU) sweepObjects() {
	for ds, o := range b.objects {
		if b.frame-o.frame > staleFrames {
			o.release()
			delete(b.objects, ds)
		}
	}
}

// Shutdown releases every GPU object the renderer owns. Programs, meshes,
// textures and render targets are released by their owners.
func (b *BoltWGPU) Shutdown() {
	for ds, o := range b.objects {
		o.release()
		delete(b.objects, ds)
	}
	for _, t := range []*Texture{b.placeholder, b.surfaceDepth, b.surfaceMSAA} {
		if t != nil {
			t.Delete()
		}
	}
	b.placeholder, b.surfaceDepth, b.surfaceMSAA = nil, nil, nil
	b.cameraGroup = releaseGroup(b.cameraGroup)
	if b.cameraBuf != nil {
		b.cameraBuf.Release()
		b.cameraBuf = nil
	}
	for _, l := range []**wgpu.BindGroupLayout{&b.cameraLayout, &b.objectLayout} {
		if *l != nil {
			(*l).Release()
			*l = nil
		}
	}
	b.queue = nil
	if b.device != nil {
		b.device.Release()
		b.device = nil
	}
	if b.adapter != nil {
		b.adapter.Release()
		b.adapter = nil
	}
	if b.surface != nil {
		b.surface.Release()
		b.surface = nil
	}
	if b.instance != nil {
		b.instance.Release()
		b.instance = nil
	}
	logger.Log.Debug("wgpu renderer shutdown")
}
