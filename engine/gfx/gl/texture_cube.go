package glbackend

// TextureCube is a cube map. Faces are indexed 0..5 in +X, -X, +Y, -Y, +Z,
// -Z order.
type TextureCube struct {
	texture
	size int
}

// NewTextureCube allocates six size×size faces.
func NewTextureCube(b *Bolt, size int, params TextureParams) *TextureCube {
	t := &TextureCube{texture: newTexture(b, TEXTURE_CUBE_MAP, params), size: size}
	for face := range 6 {
		t.upload(face, size, size, nil)
	}
	return t
}

func (t *TextureCube) Size() int { return t.size }

// SetFace uploads one face. Out-of-range faces are ignored.
func (t *TextureCube) SetFace(face, w, h int, pixels []byte) {
	if face < 0 || face > 5 {
		return
	}
	t.size = w
	t.upload(face, w, h, pixels)
	if pixels != nil && face == 5 {
		t.afterUpload()
	}
}

func (t *TextureCube) upload(face, w, h int, pixels []byte) {
	t.b.bindForUpload(TEXTURE_CUBE_MAP, t.id)
	t.b.ctx.TexImage2D(TEXTURE_CUBE_MAP_POSITIVE_X+uint32(face), 0, t.params.InternalFormat,
		int32(w), int32(h), t.params.Format, t.params.Type, pixels)
}
