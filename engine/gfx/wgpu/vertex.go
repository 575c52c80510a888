package wgpubackend

import "github.com/cogentcore/webgpu/wgpu"

// VertexAttrib describes one vertex buffer slot of a program: the mesh
// buffer it reads by name, its first shader location and its float count
// per vertex (or per instance). Sizes above 4 span consecutive locations,
// four floats each, so a mat4 instance matrix is Size 16.
type VertexAttrib struct {
	Name     string
	Location uint32
	Size     int
	Instance bool
}

// Buffer names a mesh looks up for the default attributes.
const (
	BufferPosition = "position"
	BufferNormal   = "normal"
	BufferUV       = "uv"
	BufferInstance = "instanceMatrix"
)

// DefaultVertexLayout reads positions at location 0, normals at 1 and uvs
// at 2, one buffer per attribute.
func DefaultVertexLayout() []VertexAttrib {
	return []VertexAttrib{
		{Name: BufferPosition, Location: 0, Size: 3},
		{Name: BufferNormal, Location: 1, Size: 3},
		{Name: BufferUV, Location: 2, Size: 2},
	}
}

// InstancedVertexLayout is DefaultVertexLayout plus a per-instance mat4 at
// locations 3 to 6.
func InstancedVertexLayout() []VertexAttrib {
	return append(DefaultVertexLayout(), VertexAttrib{Name: BufferInstance, Location: 3, Size: 16, Instance: true})
}

// vertexBufferLayouts converts attribs to one buffer layout per slot.
func vertexBufferLayouts(attribs []VertexAttrib) []wgpu.VertexBufferLayout {
	layouts := make([]wgpu.VertexBufferLayout, len(attribs))
	for i, a := range attribs {
		step := wgpu.VertexStepModeVertex
		if a.Instance {
			step = wgpu.VertexStepModeInstance
		}
		var attrs []wgpu.VertexAttribute
		for off, loc := 0, a.Location; off < a.Size; off, loc = off+4, loc+1 {
			attrs = append(attrs, wgpu.VertexAttribute{
				Format:         vertexFormat(min(4, a.Size-off)),
				Offset:         uint64(off * 4),
				ShaderLocation: loc,
			})
		}
		layouts[i] = wgpu.VertexBufferLayout{
			ArrayStride: uint64(a.Size * 4),
			StepMode:    step,
			Attributes:  attrs,
		}
	}
	return layouts
}
