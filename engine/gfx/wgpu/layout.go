package wgpubackend

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// UniformType is the WGSL type of a uniform block member.
type UniformType int

const (
	Float UniformType = iota // f32
	Int                      // i32
	Vec2                     // vec2<f32>
	Vec3                     // vec3<f32>
	Vec4                     // vec4<f32>
	Mat3                     // mat3x3<f32>
	Mat4                     // mat4x4<f32>
)

func (t UniformType) String() string {
	switch t {
	case Float:
		return "f32"
	case Int:
		return "i32"
	case Vec2:
		return "vec2<f32>"
	case Vec3:
		return "vec3<f32>"
	case Vec4:
		return "vec4<f32>"
	case Mat3:
		return "mat3x3<f32>"
	case Mat4:
		return "mat4x4<f32>"
	}
	return "unknown"
}

// alignSize returns the uniform address space alignment and size of t.
func (t UniformType) alignSize() (align, size int) {
	switch t {
	case Float, Int:
		return 4, 4
	case Vec2:
		return 8, 8
	case Vec3:
		return 16, 12
	case Vec4:
		return 16, 16
	case Mat3:
		return 16, 48
	case Mat4:
		return 16, 64
	}
	return 0, 0
}

// UniformField declares one member of a uniform block. Count > 0 declares
// array<Type, Count>.
type UniformField struct {
	Name  string
	Type  UniformType
	Count int
}

type fieldLayout struct {
	typ    UniformType
	offset int
	stride int
	count  int
}

var errUniformName = errors.New("uniform block: empty or duplicate field name")

// UniformBlock is a CPU copy of one WGSL uniform struct. Setters write into
// it; the owner uploads Bytes when Dirty.
type UniformBlock struct {
	fields map[string]fieldLayout
	order  []string
	data   []byte
	dirty  bool
}

// NewUniformBlock lays fields out in declaration order following the WGSL
// uniform address space rules: members aligned to their type, array
// elements strided to 16 bytes and the struct size rounded to 16.
func NewUniformBlock(fields []UniformField) (*UniformBlock, error) {
	u := &UniformBlock{fields: make(map[string]fieldLayout, len(fields))}
	offset, structAlign := 0, 16
	for _, f := range fields {
		if _, dup := u.fields[f.Name]; f.Name == "" || dup {
			return nil, fmt.Errorf("%w: %q", errUniformName, f.Name)
		}
		align, size := f.Type.alignSize()
		if align == 0 {
			return nil, fmt.Errorf("uniform block: field %q has unknown type %d", f.Name, f.Type)
		}
		l := fieldLayout{typ: f.Type, stride: size, count: 1}
		if f.Count > 0 {
			align = roundUp(16, align)
			l.stride = roundUp(16, roundUp(align, size))
			l.count = f.Count
			size = l.stride * f.Count
		}
		offset = roundUp(align, offset)
		l.offset = offset
		offset += size
		structAlign = max(structAlign, align)
		u.fields[f.Name] = l
		u.order = append(u.order, f.Name)
	}
	u.data = make([]byte, roundUp(structAlign, offset))
	return u, nil
}

func roundUp(align, n int) int {
	return (n + align - 1) / align * align
}

// Size is the byte size of the block as bound to the shader.
func (u *UniformBlock) Size() int { return len(u.data) }

// Bytes is the block contents. The slice aliases the block.
func (u *UniformBlock) Bytes() []byte { return u.data }

func (u *UniformBlock) Dirty() bool { return u.dirty }

func (u *UniformBlock) clean() { u.dirty = false }

// Fields lists member names in declaration order.
func (u *UniformBlock) Fields() []string { return u.order }

// Offset reports the byte offset of name.
func (u *UniformBlock) Offset(name string) (int, bool) {
	l, ok := u.fields[name]
	return l.offset, ok
}

// Has reports whether name is a member of type t.
func (u *UniformBlock) Has(name string, t UniformType) bool {
	l, ok := u.fields[name]
	return ok && l.typ == t
}

func (u *UniformBlock) SetFloat(name string, v float32)   { u.put(name, Float, 0, v) }
func (u *UniformBlock) SetVec2(name string, v mgl32.Vec2) { u.put(name, Vec2, 0, v[:]...) }
func (u *UniformBlock) SetVec3(name string, v mgl32.Vec3) { u.put(name, Vec3, 0, v[:]...) }
func (u *UniformBlock) SetVec4(name string, v mgl32.Vec4) { u.put(name, Vec4, 0, v[:]...) }
func (u *UniformBlock) SetMat4(name string, m mgl32.Mat4) { u.put(name, Mat4, 0, m[:]...) }

func (u *UniformBlock) SetInt(name string, v int32) {
	l, ok := u.fields[name]
	if !ok || l.typ != Int {
		return
	}
	binary.LittleEndian.PutUint32(u.data[l.offset:], uint32(v))
	u.dirty = true
}

// SetMat3 writes m as three columns, each padded to 16 bytes.
func (u *UniformBlock) SetMat3(name string, m mgl32.Mat3) {
	l, ok := u.fields[name]
	if !ok || l.typ != Mat3 {
		return
	}
	for col := range 3 {
		putFloats(u.data[l.offset+col*16:], m[col*3:col*3+3])
	}
	u.dirty = true
}

// SetMat4Array writes up to the declared count of matrices.
func (u *UniformBlock) SetMat4Array(name string, ms []mgl32.Mat4) {
	for i, m := range ms {
		if !u.put(name, Mat4, i, m[:]...) {
			return
		}
	}
}

// SetFloats writes vs into an array<f32, N>, one element per 16 byte slot.
func (u *UniformBlock) SetFloats(name string, vs []float32) {
	for i, v := range vs {
		if !u.put(name, Float, i, v) {
			return
		}
	}
}

// put writes vs at element i of name. Unknown names, type mismatches and
// out of range elements are ignored.
func (u *UniformBlock) put(name string, t UniformType, i int, vs ...float32) bool {
	l, ok := u.fields[name]
	if !ok || l.typ != t || i >= l.count {
		return false
	}
	putFloats(u.data[l.offset+i*l.stride:], vs)
	u.dirty = true
	return true
}

func putFloats(dst []byte, vs []float32) {
	for i, v := range vs {
		binary.LittleEndian.PutUint32(dst[i*4:], math.Float32bits(v))
	}
}
