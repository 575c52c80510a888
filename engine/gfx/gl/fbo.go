package glbackend

import (
	"errors"
	"fmt"
)

type FBOOptions struct {
	Width, Height int
	// Depth attaches a sampleable depth texture. Without it a depth
	// renderbuffer is used.
	Depth bool
	// Samples above 0 renders into multisample renderbuffers resolved on
	// Unbind.
	Samples int
	// Attachments adds extra color targets at COLOR_ATTACHMENT1 onward.
	// Not supported with Samples.
	Attachments []TextureParams
}

// FBO is an offscreen render target. TargetTexture (and DepthTexture when
// requested) are sampleable after Unbind. Bind and Unbind must be paired.
type FBO struct {
	TargetTexture *Texture2D
	DepthTexture  *Texture2D

	b             *Bolt
	fb            uint32
	depthRBO      *RBO
	attachments   []*Texture2D
	width, height int
	depth         bool
	samples       int

	msaaFB    uint32
	msaaColor *RBO
	msaaDepth *RBO
}

func NewFBO(b *Bolt, opts FBOOptions) (*FBO, error) {
	if opts.Samples > 0 && len(opts.Attachments) > 0 {
		return nil, errors.New("gl: fbo: extra attachments are not supported with multisampling")
	}
	f := &FBO{
		b:       b,
		width:   opts.Width,
		height:  opts.Height,
		depth:   opts.Depth,
		samples: opts.Samples,
	}
	ctx := b.ctx

	f.fb = ctx.CreateFramebuffer()
	ctx.BindFramebuffer(FRAMEBUFFER, f.fb)
	f.TargetTexture = NewTexture2D(b, f.width, f.height, TextureParams{})
	ctx.FramebufferTexture2D(FRAMEBUFFER, COLOR_ATTACHMENT0, TEXTURE_2D, f.TargetTexture.ID(), 0)
	switch {
	case f.depth:
		f.DepthTexture = NewTexture2D(b, f.width, f.height, DepthTextureParams())
		ctx.FramebufferTexture2D(FRAMEBUFFER, DEPTH_ATTACHMENT, TEXTURE_2D, f.DepthTexture.ID(), 0)
	case f.samples == 0:
		f.depthRBO = NewRBO(b, f.width, f.height, DEPTH_COMPONENT24, 0)
		ctx.FramebufferRenderbuffer(FRAMEBUFFER, DEPTH_ATTACHMENT, RENDERBUFFER, f.depthRBO.ID())
	}
	for _, params := range opts.Attachments {
		f.attach(params)
	}
	f.setDrawBuffers()
	if err := f.checkStatus("resolve"); err != nil {
		f.Delete()
		return nil, err
	}

	if f.samples > 0 {
		f.msaaFB = ctx.CreateFramebuffer()
		ctx.BindFramebuffer(FRAMEBUFFER, f.msaaFB)
		f.msaaColor = NewRBO(b, f.width, f.height, RGBA8, int32(f.samples))
		f.msaaDepth = NewRBO(b, f.width, f.height, DEPTH_COMPONENT24, int32(f.samples))
		ctx.FramebufferRenderbuffer(FRAMEBUFFER, COLOR_ATTACHMENT0, RENDERBUFFER, f.msaaColor.ID())
		ctx.FramebufferRenderbuffer(FRAMEBUFFER, DEPTH_ATTACHMENT, RENDERBUFFER, f.msaaDepth.ID())
		if err := f.checkStatus("multisample"); err != nil {
			f.Delete()
			return nil, err
		}
	}
	ctx.BindFramebuffer(FRAMEBUFFER, 0)
	return f, nil
}

func (f *FBO) checkStatus(which string) error {
	if status := f.b.ctx.CheckFramebufferStatus(FRAMEBUFFER); status != FRAMEBUFFER_COMPLETE {
		f.b.ctx.BindFramebuffer(FRAMEBUFFER, 0)
		return fmt.Errorf("%w: %s framebuffer status 0x%X", ErrFramebufferIncomplete, which, status)
	}
	return nil
}

func (f *FBO) Width() int   { return f.width }
func (f *FBO) Height() int  { return f.height }
func (f *FBO) Samples() int { return f.samples }

// DepthRBO is the depth renderbuffer of a single-sample FBO without a depth
// texture.
func (f *FBO) DepthRBO() *RBO { return f.depthRBO }

// Attachments are the extra color targets in attachment order.
func (f *FBO) Attachments() []*Texture2D { return f.attachments }

// Bind directs rendering into the FBO. The multisample path clears its
// buffers here with ClearBufferfv, leaving the global clear colour alone.
func (f *FBO) Bind(updateViewport bool) {
	ctx := f.b.ctx
	if f.samples > 0 {
		ctx.BindFramebuffer(FRAMEBUFFER, f.msaaFB)
	} else {
		ctx.BindFramebuffer(FRAMEBUFFER, f.fb)
	}
	if updateViewport {
		ctx.Viewport(0, 0, int32(f.width), int32(f.height))
	}
	if f.samples > 0 {
		ctx.ClearBufferfv(COLOR, 0, []float32{0, 0, 0, 0})
		ctx.ClearBufferfv(DEPTH, 0, []float32{1})
	}
}

// Unbind resolves the multisample buffers into TargetTexture (and
// DepthTexture), then returns to the default framebuffer and, unless
// suppressed, the full canvas viewport.
func (f *FBO) Unbind(updateViewport bool) {
	ctx := f.b.ctx
	if f.samples > 0 {
		mask := uint32(COLOR_BUFFER_BIT)
		if f.depth {
			mask |= DEPTH_BUFFER_BIT
		}
		w, h := int32(f.width), int32(f.height)
		ctx.BindFramebuffer(READ_FRAMEBUFFER, f.msaaFB)
		ctx.BindFramebuffer(DRAW_FRAMEBUFFER, f.fb)
		ctx.BlitFramebuffer(0, 0, w, h, 0, 0, w, h, mask, NEAREST)
	}
	ctx.BindFramebuffer(FRAMEBUFFER, 0)
	if updateViewport {
		ctx.Viewport(0, 0, int32(f.b.width), int32(f.b.height))
	}
}

// Resize reallocates every attachment at w×h.
func (f *FBO) Resize(w, h int) {
	f.width, f.height = w, h
	f.TargetTexture.Resize(w, h)
	if f.DepthTexture != nil {
		f.DepthTexture.Resize(w, h)
	}
	if f.depthRBO != nil {
		f.depthRBO.Resize(w, h)
	}
	for _, t := range f.attachments {
		t.Resize(w, h)
	}
	if f.msaaColor != nil {
		f.msaaColor.Resize(w, h)
		f.msaaDepth.Resize(w, h)
	}
}

// AddAttachment adds a color target at the next attachment point.
func (f *FBO) AddAttachment(params TextureParams) (*Texture2D, error) {
	if f.samples > 0 {
		return nil, errors.New("gl: fbo: extra attachments are not supported with multisampling")
	}
	f.b.ctx.BindFramebuffer(FRAMEBUFFER, f.fb)
	t := f.attach(params)
	f.setDrawBuffers()
	err := f.checkStatus("resolve")
	f.b.ctx.BindFramebuffer(FRAMEBUFFER, 0)
	return t, err
}

func (f *FBO) attach(params TextureParams) *Texture2D {
	t := NewTexture2D(f.b, f.width, f.height, params)
	point := COLOR_ATTACHMENT0 + uint32(len(f.attachments)+1)
	f.b.ctx.FramebufferTexture2D(FRAMEBUFFER, point, TEXTURE_2D, t.ID(), 0)
	f.attachments = append(f.attachments, t)
	return t
}

func (f *FBO) setDrawBuffers() {
	if len(f.attachments) == 0 {
		return
	}
	bufs := make([]uint32, len(f.attachments)+1)
	for i := range bufs {
		bufs[i] = COLOR_ATTACHMENT0 + uint32(i)
	}
	f.b.ctx.DrawBuffers(bufs)
}

// ReadPixels reads an RGBA8 rectangle of the resolved color target. Call
// it after Unbind.
func (f *FBO) ReadPixels(x, y, w, h int) []byte {
	dst := make([]byte, w*h*4)
	ctx := f.b.ctx
	ctx.BindFramebuffer(READ_FRAMEBUFFER, f.fb)
	ctx.ReadPixels(dst, int32(x), int32(y), int32(w), int32(h), RGBA, UNSIGNED_BYTE)
	ctx.BindFramebuffer(READ_FRAMEBUFFER, 0)
	return dst
}

func (f *FBO) Delete() {
	ctx := f.b.ctx
	if f.msaaFB != 0 {
		ctx.DeleteFramebuffer(f.msaaFB)
		f.msaaFB = 0
	}
	if f.msaaColor != nil {
		f.msaaColor.Delete()
		f.msaaColor = nil
	}
	if f.msaaDepth != nil {
		f.msaaDepth.Delete()
		f.msaaDepth = nil
	}
	if f.fb != 0 {
		ctx.DeleteFramebuffer(f.fb)
		f.fb = 0
	}
	if f.TargetTexture != nil {
		f.TargetTexture.Delete()
	}
	if f.DepthTexture != nil {
		f.DepthTexture.Delete()
	}
	if f.depthRBO != nil {
		f.depthRBO.Delete()
	}
	for _, t := range f.attachments {
		t.Delete()
	}
	f.attachments = nil
}
