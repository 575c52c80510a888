package glbackend

// VAO records attribute bindings for a mesh.
type VAO struct {
	b  *Bolt
	id uint32
}

func NewVAO(b *Bolt) *VAO {
	return &VAO{b: b, id: b.ctx.CreateVertexArray()}
}

func (v *VAO) ID() uint32 { return v.id }

func (v *VAO) Bind()   { v.b.ctx.BindVertexArray(v.id) }
func (v *VAO) Unbind() { v.b.ctx.BindVertexArray(0) }

// LinkAttrib binds vbo and points attribute loc at it. size is the number
// of components, stride and offset are in bytes. A divisor above 0 makes
// the attribute advance per instance. The VAO must be bound.
func (v *VAO) LinkAttrib(vbo *VBO, loc uint32, size int32, typ uint32, stride, offset int32, divisor uint32) {
	vbo.Bind()
	v.b.ctx.EnableVertexAttribArray(loc)
	v.b.ctx.VertexAttribPointer(loc, size, typ, false, stride, offset)
	if divisor > 0 {
		v.b.ctx.VertexAttribDivisor(loc, divisor)
	}
}

func (v *VAO) Delete() {
	if v.id == 0 {
		return
	}
	v.b.ctx.DeleteVertexArray(v.id)
	v.id = 0
}
