package glbackend

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func uint16Bytes(v []uint16) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*2)
}

func uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

// VBO is a float32 vertex buffer.
type VBO struct {
	b     *Bolt
	id    uint32
	usage uint32
	count int
}

func NewVBO(b *Bolt, data []float32, usage uint32) *VBO {
	if usage == 0 {
		usage = STATIC_DRAW
	}
	v := &VBO{b: b, id: b.ctx.CreateBuffer(), usage: usage, count: len(data)}
	b.ctx.BindBuffer(ARRAY_BUFFER, v.id)
	b.ctx.BufferData(ARRAY_BUFFER, float32Bytes(data), usage)
	return v
}

func (v *VBO) ID() uint32 { return v.id }

// Len is the number of floats in the buffer.
func (v *VBO) Len() int { return v.count }

func (v *VBO) Bind()   { v.b.ctx.BindBuffer(ARRAY_BUFFER, v.id) }
func (v *VBO) Unbind() { v.b.ctx.BindBuffer(ARRAY_BUFFER, 0) }

// Update replaces the contents, reallocating when the length changes.
func (v *VBO) Update(data []float32) {
	v.Bind()
	if len(data) == v.count {
		v.b.ctx.BufferSubData(ARRAY_BUFFER, 0, float32Bytes(data))
		return
	}
	v.b.ctx.BufferData(ARRAY_BUFFER, float32Bytes(data), v.usage)
	v.count = len(data)
}

func (v *VBO) Delete() {
	if v.id == 0 {
		return
	}
	v.b.ctx.DeleteBuffer(v.id)
	v.id = 0
}

// IBO is an index buffer. Indices are stored as UNSIGNED_SHORT when every
// index fits, UNSIGNED_INT otherwise.
type IBO struct {
	b     *Bolt
	id    uint32
	count int
	typ   uint32
}

func NewIBO(b *Bolt, indices []uint32) *IBO {
	i := &IBO{b: b, id: b.ctx.CreateBuffer(), count: len(indices), typ: UNSIGNED_SHORT}
	b.ctx.BindBuffer(ELEMENT_ARRAY_BUFFER, i.id)
	if fitsUint16(indices) {
		short := make([]uint16, len(indices))
		for n, idx := range indices {
			short[n] = uint16(idx)
		}
		b.ctx.BufferData(ELEMENT_ARRAY_BUFFER, uint16Bytes(short), STATIC_DRAW)
	} else {
		i.typ = UNSIGNED_INT
		b.ctx.BufferData(ELEMENT_ARRAY_BUFFER, uint32Bytes(indices), STATIC_DRAW)
	}
	return i
}

func fitsUint16(indices []uint32) bool {
	for _, idx := range indices {
		if idx > 0xFFFF {
			return false
		}
	}
	return true
}

func (i *IBO) ID() uint32 { return i.id }

func (i *IBO) Count() int { return i.count }

// Type is UNSIGNED_SHORT or UNSIGNED_INT.
func (i *IBO) Type() uint32 { return i.typ }

func (i *IBO) Bind()   { i.b.ctx.BindBuffer(ELEMENT_ARRAY_BUFFER, i.id) }
func (i *IBO) Unbind() { i.b.ctx.BindBuffer(ELEMENT_ARRAY_BUFFER, 0) }

func (i *IBO) Delete() {
	if i.id == 0 {
		return
	}
	i.b.ctx.DeleteBuffer(i.id)
	i.id = 0
}

// InstancedVBO holds one mat4 per instance and spans four consecutive
// attribute locations.
type InstancedVBO struct {
	*VBO
	count int
}

func NewInstancedVBO(b *Bolt, matrices []mgl32.Mat4) *InstancedVBO {
	return &InstancedVBO{
		VBO:   NewVBO(b, flattenMat4(matrices), DYNAMIC_DRAW),
		count: len(matrices),
	}
}

func (iv *InstancedVBO) Count() int { return iv.count }

func (iv *InstancedVBO) Update(matrices []mgl32.Mat4) {
	iv.VBO.Update(flattenMat4(matrices))
	iv.count = len(matrices)
}

// Link points locations loc..loc+3 at the matrix columns with a per-instance
// divisor. vao must be bound.
func (iv *InstancedVBO) Link(vao *VAO, loc uint32) {
	const stride = 16 * 4
	for col := range uint32(4) {
		vao.LinkAttrib(iv.VBO, loc+col, 4, FLOAT, stride, int32(col*16), 1)
	}
}

func flattenMat4(ms []mgl32.Mat4) []float32 {
	out := make([]float32, 0, len(ms)*16)
	for _, m := range ms {
		out = append(out, m[:]...)
	}
	return out
}
