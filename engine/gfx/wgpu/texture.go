package wgpubackend

import (
	"fmt"
	"image"
	"image/draw"

	"github.com/cogentcore/webgpu/wgpu"
)

// TextureOptions configure a 2D texture. The zero value is a sampled sRGB
// RGBA8 texture with linear filtering and clamped addressing.
type TextureOptions struct {
	Label   string
	Format  wgpu.TextureFormat
	Nearest bool
	Repeat  bool
	// Samples > 1 makes a multisampled render attachment that cannot be
	// sampled or written from the CPU.
	Samples uint32
	// RenderTarget adds the render attachment usage.
	RenderTarget bool
}

func (o TextureOptions) withDefaults() TextureOptions {
	if o.Format == wgpu.TextureFormatUndefined {
		o.Format = wgpu.TextureFormatRGBA8UnormSrgb
	}
	if o.Samples == 0 {
		o.Samples = 1
	}
	return o
}

func (o TextureOptions) usage() wgpu.TextureUsage {
	switch {
	case o.Samples > 1:
		return wgpu.TextureUsageRenderAttachment
	case isDepth(o.Format):
		return wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding
	}
	u := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	if o.RenderTarget {
		u |= wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageCopySrc
	}
	return u
}

func (o TextureOptions) sampled() bool { return o.Samples <= 1 && !isDepth(o.Format) }

func isDepth(f wgpu.TextureFormat) bool {
	switch f {
	case wgpu.TextureFormatDepth24Plus, wgpu.TextureFormatDepth32Float, wgpu.TextureFormatDepth24PlusStencil8:
		return true
	}
	return false
}

// Texture is a 2D texture, its default view and, when sampled, a sampler.
type Texture struct {
	b       *BoltWGPU
	opts    TextureOptions
	tex     *wgpu.Texture
	view    *wgpu.TextureView
	sampler *wgpu.Sampler

	width, height int
	// generation changes every time the view is recreated so bind groups
	// holding the old view can be rebuilt.
	generation int
}

func NewTexture(b *BoltWGPU, w, h int, opts TextureOptions) (*Texture, error) {
	t := &Texture{b: b, opts: opts.withDefaults()}
	if err := t.create(w, h); err != nil {
		return nil, err
	}
	if t.opts.sampled() {
		s, err := b.device.CreateSampler(samplerDescriptor(t.opts))
		if err != nil {
			t.Delete()
			return nil, fmt.Errorf("create sampler %q: %w", t.opts.Label, err)
		}
		t.sampler = s
	}
	return t, nil
}

func samplerDescriptor(o TextureOptions) *wgpu.SamplerDescriptor {
	filter := wgpu.FilterModeLinear
	if o.Nearest {
		filter = wgpu.FilterModeNearest
	}
	address := wgpu.AddressModeClampToEdge
	if o.Repeat {
		address = wgpu.AddressModeRepeat
	}
	return &wgpu.SamplerDescriptor{
		Label:         o.Label,
		AddressModeU:  address,
		AddressModeV:  address,
		AddressModeW:  address,
		MagFilter:     filter,
		MinFilter:     filter,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMinClamp:   0,
		LodMaxClamp:   32,
		MaxAnisotropy: 1,
	}
}

func (t *Texture) create(w, h int) error {
	tex, err := t.b.device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         t.opts.Label,
		Size:          wgpu.Extent3D{Width: uint32(max(w, 1)), Height: uint32(max(h, 1)), DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   t.opts.Samples,
		Dimension:     wgpu.TextureDimension2D,
		Format:        t.opts.Format,
		Usage:         t.opts.usage(),
	})
	if err != nil {
		return fmt.Errorf("create texture %q: %w", t.opts.Label, err)
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return fmt.Errorf("create texture view %q: %w", t.opts.Label, err)
	}
	t.releaseTexture()
	t.tex, t.view = tex, view
	t.width, t.height = w, h
	t.generation++
	return nil
}

func (t *Texture) Width() int                 { return t.width }
func (t *Texture) Height() int                { return t.height }
func (t *Texture) Format() wgpu.TextureFormat { return t.opts.Format }
func (t *Texture) Samples() uint32            { return t.opts.Samples }
func (t *Texture) View() *wgpu.TextureView    { return t.view }
func (t *Texture) Sampler() *wgpu.Sampler     { return t.sampler }
func (t *Texture) Options() TextureOptions    { return t.opts }

// SetData uploads tightly packed 4-byte pixels covering the whole texture.
func (t *Texture) SetData(pixels []byte) error {
	if t.tex == nil || !t.opts.sampled() {
		return fmt.Errorf("texture %q: not writable", t.opts.Label)
	}
	if want := t.width * t.height * 4; len(pixels) != want {
		return fmt.Errorf("texture %q: got %d bytes, want %d", t.opts.Label, len(pixels), want)
	}
	size := wgpu.Extent3D{Width: uint32(t.width), Height: uint32(t.height), DepthOrArrayLayers: 1}
	t.b.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  t.tex,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(t.width * 4),
			RowsPerImage: uint32(t.height),
		},
		&size,
	)
	return nil
}

// SetImage resizes the texture to img and uploads it as RGBA.
func (t *Texture) SetImage(img image.Image) error {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 {
		b := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	}
	sz := rgba.Rect.Size()
	if err := t.Resize(sz.X, sz.Y); err != nil {
		return err
	}
	return t.SetData(rgba.Pix[:sz.X*sz.Y*4])
}

// Resize recreates the texture at w×h. Contents are lost. Same size is a
// no-op.
func (t *Texture) Resize(w, h int) error {
	if w == t.width && h == t.height && t.tex != nil {
		return nil
	}
	return t.create(w, h)
}

func (t *Texture) releaseTexture() {
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.tex != nil {
		t.tex.Release()
		t.tex = nil
	}
}

func (t *Texture) Delete() {
	t.releaseTexture()
	if t.sampler != nil {
		t.sampler.Release()
		t.sampler = nil
	}
}
