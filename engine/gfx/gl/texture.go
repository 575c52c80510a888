package glbackend

import (
	"image"
	"image/draw"
)

// Texture is a GPU image a sampler uniform can reference.
type Texture interface {
	ID() uint32
	// Target is TEXTURE_2D, TEXTURE_3D or TEXTURE_CUBE_MAP.
	Target() uint32
	Bind(unit int32)
	Delete()
}

// TextureParams is the sampling and storage state of a texture. Zero fields
// take the defaults: linear filtering, clamp to edge, RGBA8 bytes.
type TextureParams struct {
	MinFilter      int32
	MagFilter      int32
	WrapS          int32
	WrapT          int32
	WrapR          int32
	InternalFormat int32
	Format         uint32
	Type           uint32
	// GenerateMipmaps builds the mip chain after every upload.
	GenerateMipmaps bool
}

func (p TextureParams) withDefaults() TextureParams {
	if p.MinFilter == 0 {
		p.MinFilter = LINEAR
	}
	if p.MagFilter == 0 {
		p.MagFilter = LINEAR
	}
	if p.WrapS == 0 {
		p.WrapS = CLAMP_TO_EDGE
	}
	if p.WrapT == 0 {
		p.WrapT = CLAMP_TO_EDGE
	}
	if p.WrapR == 0 {
		p.WrapR = CLAMP_TO_EDGE
	}
	if p.InternalFormat == 0 {
		p.InternalFormat = RGBA8
	}
	if p.Format == 0 {
		p.Format = RGBA
	}
	if p.Type == 0 {
		p.Type = UNSIGNED_BYTE
	}
	return p
}

// DepthTextureParams describes a sampleable 24-bit depth texture.
func DepthTextureParams() TextureParams {
	return TextureParams{
		MinFilter:      NEAREST,
		MagFilter:      NEAREST,
		InternalFormat: DEPTH_COMPONENT24,
		Format:         DEPTH_COMPONENT,
		Type:           UNSIGNED_INT,
	}
}

// texture holds what every texture kind shares.
type texture struct {
	b      *Bolt
	id     uint32
	target uint32
	params TextureParams
}

func newTexture(b *Bolt, target uint32, params TextureParams) texture {
	t := texture{b: b, id: b.ctx.CreateTexture(), target: target, params: params.withDefaults()}
	b.bindForUpload(target, t.id)
	ctx := b.ctx
	ctx.TexParameteri(target, TEXTURE_MIN_FILTER, t.params.MinFilter)
	ctx.TexParameteri(target, TEXTURE_MAG_FILTER, t.params.MagFilter)
	ctx.TexParameteri(target, TEXTURE_WRAP_S, t.params.WrapS)
	ctx.TexParameteri(target, TEXTURE_WRAP_T, t.params.WrapT)
	if target != TEXTURE_2D {
		ctx.TexParameteri(target, TEXTURE_WRAP_R, t.params.WrapR)
	}
	return t
}

func (t *texture) ID() uint32     { return t.id }
func (t *texture) Target() uint32 { return t.target }

func (t *texture) Params() TextureParams { return t.params }

// Bind makes the texture current on unit through the renderer state.
func (t *texture) Bind(unit int32) {
	t.b.state = t.b.state.BindTexture(t.b.ctx, unit, t.target, t.id)
}

func (t *texture) Delete() {
	if t.id == 0 {
		return
	}
	t.b.ctx.DeleteTexture(t.id)
	t.b.state = t.b.state.ForgetTexture(t.id)
	t.id = 0
}

func (t *texture) afterUpload() {
	if t.params.GenerateMipmaps {
		t.b.ctx.GenerateMipmap(t.target)
	}
}

// Texture2D is a 2D texture.
type Texture2D struct {
	texture
	width, height int
}

// NewTexture2D allocates a w×h texture with undefined contents.
func NewTexture2D(b *Bolt, w, h int, params TextureParams) *Texture2D {
	t := &Texture2D{texture: newTexture(b, TEXTURE_2D, params)}
	t.SetData(w, h, nil)
	return t
}

func (t *Texture2D) Width() int  { return t.width }
func (t *Texture2D) Height() int { return t.height }

// SetData uploads pixels (nil allocates only) and records the new size.
func (t *Texture2D) SetData(w, h int, pixels []byte) {
	t.width, t.height = w, h
	t.b.bindForUpload(TEXTURE_2D, t.id)
	t.b.ctx.TexImage2D(TEXTURE_2D, 0, t.params.InternalFormat, int32(w), int32(h), t.params.Format, t.params.Type, pixels)
	if pixels != nil {
		t.afterUpload()
	}
}

// SetImage uploads img as RGBA8.
func (t *Texture2D) SetImage(img image.Image) {
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Rect.Min != (image.Point{}) || rgba.Stride != 4*rgba.Rect.Dx() {
		bounds := img.Bounds()
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)
	}
	t.SetData(rgba.Rect.Dx(), rgba.Rect.Dy(), rgba.Pix)
}

// Resize reallocates storage at w×h; contents are lost.
func (t *Texture2D) Resize(w, h int) {
	if w == t.width && h == t.height {
		return
	}
	t.SetData(w, h, nil)
}
