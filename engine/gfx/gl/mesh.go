package glbackend

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
)

// Default attribute locations of NewMesh.
const (
	LocPosition uint32 = 0
	LocNormal   uint32 = 1
	LocUV       uint32 = 2
	// LocInstanceMatrix is the first of the four locations used by
	// SetInstanceMatrices.
	LocInstanceMatrix uint32 = 3
)

// Buffer names of the default attributes.
const (
	BufferPosition = "position"
	BufferNormal   = "normal"
	BufferUV       = "uv"
	BufferInstance = "instanceMatrix"
)

type MeshOptions struct {
	DrawMode render.DrawMode
	// InstanceCount above 0 draws instanced.
	InstanceCount int
}

// Mesh owns one VAO, its attribute buffers and an optional index buffer.
type Mesh struct {
	DrawMode      render.DrawMode
	InstanceCount int
	// Skin, when set, uploads joint matrices before each draw.
	Skin *render.Skin

	b           *Bolt
	vao         *VAO
	ibo         *IBO
	buffers     map[string]*VBO
	links       map[string]attribLink
	instances   *InstancedVBO
	vertexCount int
}

type attribLink struct {
	size         int32
	loc, divisor uint32
}

// NewMesh uploads geo. Positions go to location 0, normals to 1 and uvs to
// 2; empty attributes are skipped.
func NewMesh(b *Bolt, geo render.GeometryBuffers, opts MeshOptions) (*Mesh, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{
		DrawMode:      opts.DrawMode,
		InstanceCount: opts.InstanceCount,
		b:             b,
		vao:           NewVAO(b),
		buffers:       map[string]*VBO{},
		links:         map[string]attribLink{},
		vertexCount:   geo.VertexCount(),
	}
	m.SetAttribute(BufferPosition, geo.Positions, 3, LocPosition, 0)
	m.SetAttribute(BufferNormal, geo.Normals, 3, LocNormal, 0)
	m.SetAttribute(BufferUV, geo.UVs, 2, LocUV, 0)
	if len(geo.Indices) > 0 {
		// element buffer binding is VAO state
		m.vao.Bind()
		m.ibo = NewIBO(b, geo.Indices)
		m.vao.Unbind()
	}
	return m, nil
}

// SetAttribute creates or replaces the named float buffer and links it at
// loc with size components per vertex (or per instance when divisor > 0).
// An existing buffer is updated in place and relinked if the layout changed.
func (m *Mesh) SetAttribute(name string, data []float32, size int32, loc, divisor uint32) {
	if len(data) == 0 {
		return
	}
	if vbo, ok := m.buffers[name]; ok {
		vbo.Update(data)
		if m.links[name] != (attribLink{size: size, loc: loc, divisor: divisor}) {
			m.link(name, vbo, size, loc, divisor)
		}
		return
	}
	usage := uint32(STATIC_DRAW)
	if divisor > 0 {
		usage = DYNAMIC_DRAW
	}
	m.SetVBO(name, NewVBO(m.b, data, usage), size, loc, divisor)
}

// SetVBO links an existing buffer under name. The mesh takes ownership and
// deletes any buffer previously stored under name.
func (m *Mesh) SetVBO(name string, vbo *VBO, size int32, loc, divisor uint32) {
	if old, ok := m.buffers[name]; ok && old != vbo {
		old.Delete()
	}
	m.buffers[name] = vbo
	m.link(name, vbo, size, loc, divisor)
}

func (m *Mesh) link(name string, vbo *VBO, size int32, loc, divisor uint32) {
	prev, had := m.links[name]
	m.vao.Bind()
	m.vao.LinkAttrib(vbo, loc, size, FLOAT, 0, 0, divisor)
	if had && prev.loc == loc && prev.divisor > 0 && divisor == 0 {
		m.b.ctx.VertexAttribDivisor(loc, 0)
	}
	m.vao.Unbind()
	m.links[name] = attribLink{size: size, loc: loc, divisor: divisor}
}

// SetInstanceMatrices uploads one model matrix per instance at
// LocInstanceMatrix..+3 and sets InstanceCount.
func (m *Mesh) SetInstanceMatrices(matrices []mgl32.Mat4) {
	if m.instances != nil {
		m.instances.Update(matrices)
	} else {
		m.instances = NewInstancedVBO(m.b, matrices)
		m.vao.Bind()
		m.instances.Link(m.vao, LocInstanceMatrix)
		m.vao.Unbind()
	}
	m.InstanceCount = len(matrices)
}

// Buffer returns the named attribute buffer or nil.
func (m *Mesh) Buffer(name string) *VBO {
	if name == BufferInstance && m.instances != nil {
		return m.instances.VBO
	}
	return m.buffers[name]
}

func (m *Mesh) VertexCount() int { return m.vertexCount }

func (m *Mesh) IndexCount() int {
	if m.ibo == nil {
		return 0
	}
	return m.ibo.Count()
}

// Valid implements render.Mesh. A nil mesh is not valid.
func (m *Mesh) Valid() bool { return m != nil && m.vao != nil && m.vao.id != 0 }

// Draw issues the draw call with prog already active.
func (m *Mesh) Draw(prog *Program) {
	if m.Skin != nil {
		prog.SetMat4Array(render.UniformJointTransforms, m.Skin.Update())
	}
	ctx := m.b.ctx
	mode := drawMode(m.DrawMode)
	m.vao.Bind()
	switch {
	case m.ibo != nil && m.InstanceCount > 0:
		ctx.DrawElementsInstanced(mode, int32(m.ibo.count), m.ibo.typ, 0, int32(m.InstanceCount))
	case m.ibo != nil:
		ctx.DrawElements(mode, int32(m.ibo.count), m.ibo.typ, 0)
	case m.InstanceCount > 0:
		ctx.DrawArraysInstanced(mode, 0, int32(m.vertexCount), int32(m.InstanceCount))
	default:
		ctx.DrawArrays(mode, 0, int32(m.vertexCount))
	}
}

func (m *Mesh) Delete() {
	for _, vbo := range m.buffers {
		vbo.Delete()
	}
	clear(m.buffers)
	if m.instances != nil {
		m.instances.Delete()
		m.instances = nil
	}
	if m.ibo != nil {
		m.ibo.Delete()
		m.ibo = nil
	}
	m.vao.Delete()
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh(vertices=%d indices=%d instances=%d)", m.vertexCount, m.IndexCount(), m.InstanceCount)
}

func drawMode(mode render.DrawMode) uint32 {
	switch mode {
	case render.TriangleStrip:
		return TRIANGLE_STRIP
	case render.Lines:
		return LINES
	case render.LineStrip:
		return LINE_STRIP
	case render.Points:
		return POINTS
	}
	return TRIANGLES
}
