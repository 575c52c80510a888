// Package glbackend renders the scene graph through an immediate-mode GL
// context (desktop OpenGL 3.3 core or WebGL2).
package glbackend

import (
	"errors"

	"github.com/chewxy/math32"
	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

var (
	ErrContextLost           = errors.New("gl: no context")
	ErrShaderCompile         = errors.New("gl: shader compile error")
	ErrProgramLink           = errors.New("gl: program link error")
	ErrFramebufferIncomplete = errors.New("gl: framebuffer incomplete")
)

// Bolt is the GL renderer. It owns the context, the render-state cache and
// the global toggles; the embedded render.Renderer drives Draw.
type Bolt struct {
	*render.Renderer

	ctx    Context
	canvas core.Canvas
	opts   core.ContextOptions
	state  State

	width, height int
	dpi           float32

	placeholders map[uint32]Texture
}

// Init creates the renderer over ctx, installs the default state (depth
// test, alpha blending, back-face culling) and sizes canvas to its display
// size times the DPI. canvas may be nil for headless targets; call Resize.
func Init(ctx Context, canvas core.Canvas, opts core.ContextOptions) (*Bolt, error) {
	if ctx == nil {
		return nil, ErrContextLost
	}
	b := &Bolt{
		ctx:          ctx,
		canvas:       canvas,
		opts:         opts,
		state:        NewState(),
		dpi:          1,
		placeholders: map[uint32]Texture{},
	}
	b.Renderer = render.New(b)

	b.EnableDepth()
	b.DepthMask(true)
	b.state.depthKnown = true
	b.EnableAlphaBlending()
	b.EnableCullFace()
	b.CullFace(render.CullBack)
	b.FitCanvas()

	logger.Log.Info("gl renderer ready",
		zap.String("version", ctx.GetString(VERSION)),
		zap.String("renderer", ctx.GetString(RENDERER)),
		zap.Int("width", b.width),
		zap.Int("height", b.height),
		zap.Float32("dpi", b.dpi))
	return b, nil
}

func (b *Bolt) Context() Context { return b.ctx }

// State is the current render-state cache.
func (b *Bolt) State() State { return b.state }

func (b *Bolt) Width() int   { return b.width }
func (b *Bolt) Height() int  { return b.height }
func (b *Bolt) DPI() float32 { return b.dpi }

// FitCanvas sizes the canvas drawing buffer to its display size scaled by
// the effective DPI and resets the viewport.
func (b *Bolt) FitCanvas() {
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

// Resize sets the drawing buffer size in pixels, the viewport and the bound
// camera's aspect.
func (b *Bolt) Resize(w, h int) {
	b.width, b.height = w, h
	b.SetViewPort(0, 0, w, h)
	if cam := b.Camera(); cam != nil && h > 0 {
		cam.Resize(w, h)
	}
}

func (b *Bolt) Shutdown() {
	for _, t := range b.placeholders {
		t.Delete()
	}
	clear(b.placeholders)
	logger.Log.Debug("gl renderer shutdown")
}

func (b *Bolt) EnableDepth() {
	b.ctx.Enable(DEPTH_TEST)
	b.ctx.DepthFunc(LEQUAL)
	b.state.depthTest = true
}

func (b *Bolt) DisableDepth() {
	b.ctx.Disable(DEPTH_TEST)
	b.state.depthTest = false
}

func (b *Bolt) DepthMask(write bool) {
	b.ctx.DepthMask(write)
	b.state.depthWrite = write
}

func (b *Bolt) EnableCullFace() {
	b.ctx.Enable(CULL_FACE)
	b.state.cullKnown = false
}

func (b *Bolt) DisableCullFace() {
	b.ctx.Disable(CULL_FACE)
	b.state.cull, b.state.cullKnown = render.CullNone, true
}

// CullFace selects the culled face; CullNone disables culling.
func (b *Bolt) CullFace(face render.CullFace) {
	if face == render.CullNone {
		b.DisableCullFace()
		return
	}
	b.ctx.CullFace(cullMode(face))
	b.state.cullKnown = false
}

func (b *Bolt) EnableAlphaBlending() { b.enableBlending(render.BlendAlpha) }

func (b *Bolt) EnableAdditiveBlending() { b.enableBlending(render.BlendAdditive) }

func (b *Bolt) EnablePremultipliedBlending() { b.enableBlending(render.BlendPremultiplied) }

func (b *Bolt) enableBlending(mode render.BlendMode) {
	src, dst := blendFactors(mode)
	b.ctx.Enable(BLEND)
	b.ctx.BlendFunc(src, dst)
	b.state.blend, b.state.blendKnown = mode, true
}

func (b *Bolt) DisableBlending() {
	b.ctx.Disable(BLEND)
	b.state.blend, b.state.blendKnown = render.BlendNone, true
}

func (b *Bolt) EnableScissor()  { b.ctx.Enable(SCISSOR_TEST) }
func (b *Bolt) DisableScissor() { b.ctx.Disable(SCISSOR_TEST) }

func (b *Bolt) Scissor(x, y, w, h int) {
	b.ctx.Scissor(int32(x), int32(y), int32(w), int32(h))
}

func (b *Bolt) SetViewPort(x, y, w, h int) {
	b.ctx.Viewport(int32(x), int32(y), int32(w), int32(h))
}

// Clear clears colour and depth (and stencil when the context has one)
// of the bound framebuffer.
func (b *Bolt) Clear(r, g, bl, a float32) {
	b.ctx.ClearColor(r, g, bl, a)
	mask := uint32(COLOR_BUFFER_BIT | DEPTH_BUFFER_BIT)
	if b.opts.Stencil {
		mask |= STENCIL_BUFFER_BIT
	}
	b.ctx.Clear(mask)
}

// BeginFrame implements render.Backend. GL needs no per-frame setup.
func (b *Bolt) BeginFrame(*scene.Camera) error { return nil }

// EndFrame implements render.Backend.
func (b *Bolt) EndFrame() error { return nil }

// DrawItem implements render.Backend: activate the program, upload the
// standard matrices, bind its textures, apply blend and cull, draw.
func (b *Bolt) DrawItem(ds *render.DrawSet) bool {
	mesh, ok := ds.Mesh.(*Mesh)
	if !ok || !mesh.Valid() {
		return false
	}
	prog, ok := ds.Program.(*Program)
	if !ok || prog == nil || prog.id == 0 {
		return false
	}
	cam := b.Camera()

	prog.Activate()
	prog.SetMat4(render.UniformProjection, cam.ProjectionMatrix())
	prog.SetMat4(render.UniformView, cam.View())
	prog.SetMat4(render.UniformModel, ds.ModelMatrix())
	prog.SetMat4(render.UniformModelView, ds.ModelViewMatrix())
	prog.SetMat3(render.UniformNormal, ds.NormalMatrix())
	prog.SetVec3(render.UniformCameraPosition, cam.WorldPosition())
	prog.Use()

	blend := render.BlendNone
	if prog.Transparent {
		blend = prog.Blend
	}
	b.state = b.state.SetBlend(b.ctx, blend)
	b.state = b.state.SetCull(b.ctx, prog.Cull)
	b.state = b.state.SetDepth(b.ctx, prog.DepthTest, prog.DepthWrite)

	mesh.Draw(prog)
	return true
}

// placeholder returns the shared 1×1 white texture for a sampler target.
func (b *Bolt) placeholder(target uint32) Texture {
	if t, ok := b.placeholders[target]; ok {
		return t
	}
	white := []byte{255, 255, 255, 255}
	params := TextureParams{MinFilter: NEAREST, MagFilter: NEAREST}
	var t Texture
	switch target {
	case TEXTURE_3D:
		t3 := NewTexture3D(b, 1, 1, 1, params)
		t3.SetData(1, 1, 1, white)
		t = t3
	case TEXTURE_CUBE_MAP:
		tc := NewTextureCube(b, 1, params)
		for face := range 6 {
			tc.SetFace(face, 1, 1, white)
		}
		t = tc
	default:
		t2 := NewTexture2D(b, 1, 1, params)
		t2.SetData(1, 1, white)
		t = t2
	}
	b.placeholders[target] = t
	return t
}

// bindForUpload binds texture on the active unit (unit 0 before any
// activation) so TexImage/TexParameter calls target it.
func (b *Bolt) bindForUpload(target, texture uint32) {
	unit := max(b.state.unit, 0)
	b.state = b.state.BindTexture(b.ctx, unit, target, texture)
}
