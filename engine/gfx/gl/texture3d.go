package glbackend

// Texture3D is a volume texture.
type Texture3D struct {
	texture
	width, height, depth int
}

func NewTexture3D(b *Bolt, w, h, d int, params TextureParams) *Texture3D {
	t := &Texture3D{texture: newTexture(b, TEXTURE_3D, params)}
	t.SetData(w, h, d, nil)
	return t
}

func (t *Texture3D) Size() (w, h, d int) { return t.width, t.height, t.depth }

func (t *Texture3D) SetData(w, h, d int, pixels []byte) {
	t.width, t.height, t.depth = w, h, d
	t.b.bindForUpload(TEXTURE_3D, t.id)
	t.b.ctx.TexImage3D(TEXTURE_3D, 0, t.params.InternalFormat, int32(w), int32(h), int32(d), t.params.Format, t.params.Type, pixels)
	if pixels != nil {
		t.afterUpload()
	}
}
