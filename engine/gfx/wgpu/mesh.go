package wgpubackend

import (
	"fmt"
	"slices"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
)

// VertexBuffer is a GPU buffer of float32 vertex or instance data.
type VertexBuffer struct {
	b     *BoltWGPU
	buf   *wgpu.Buffer
	count int
}

// NewVertexBuffer uploads data into a new vertex buffer.
func NewVertexBuffer(b *BoltWGPU, label string, data []float32) (*VertexBuffer, error) {
	vb := &VertexBuffer{b: b}
	if err := vb.create(label, data); err != nil {
		return nil, err
	}
	return vb, nil
}

func (vb *VertexBuffer) create(label string, data []float32) error {
	buf, err := vb.b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    label,
		Contents: wgpu.ToBytes(data),
		Usage:    wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create vertex buffer %q: %w", label, err)
	}
	vb.Delete()
	vb.buf, vb.count = buf, len(data)
	return nil
}

// Len is the number of float32 values in the buffer.
func (vb *VertexBuffer) Len() int { return vb.count }

// Update writes data in place when the length is unchanged and
// reallocates otherwise.
func (vb *VertexBuffer) Update(data []float32) error {
	if len(data) == vb.count && vb.buf != nil {
		return vb.b.queue.WriteBuffer(vb.buf, 0, wgpu.ToBytes(data))
	}
	return vb.create("vertex buffer", data)
}

func (vb *VertexBuffer) Delete() {
	if vb.buf != nil {
		vb.buf.Release()
		vb.buf = nil
	}
}

// MeshOptions configure how a mesh is drawn.
type MeshOptions struct {
	DrawMode render.DrawMode
	// InstanceCount > 0 draws that many instances.
	InstanceCount int
}

// Mesh holds named vertex buffers and an optional index buffer. Programs
// select buffers by name through their vertex layout.
type Mesh struct {
	DrawMode      render.DrawMode
	InstanceCount int

	b           *BoltWGPU
	buffers     map[string]*VertexBuffer
	index       *wgpu.Buffer
	indexFormat wgpu.IndexFormat
	indexCount  int
	vertexCount int
}

func NewMesh(b *BoltWGPU, geo render.GeometryBuffers, opts MeshOptions) (*Mesh, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{
		DrawMode:      opts.DrawMode,
		InstanceCount: opts.InstanceCount,
		b:             b,
		buffers:       map[string]*VertexBuffer{},
		vertexCount:   geo.VertexCount(),
	}
	// Missing normals and uvs are zero filled so the default layout can
	// draw position-only geometry.
	n := m.vertexCount
	for _, a := range []struct {
		name string
		data []float32
		size int
	}{
		{BufferPosition, geo.Positions, 3},
		{BufferNormal, geo.Normals, 3},
		{BufferUV, geo.UVs, 2},
	} {
		if n == 0 {
			break
		}
		if len(a.data) == 0 {
			a.data = make([]float32, n*a.size)
		}
		if err := m.SetAttribute(a.name, a.data); err != nil {
			m.Delete()
			return nil, err
		}
	}
	if len(geo.Indices) > 0 {
		if err := m.setIndices(geo.Indices); err != nil {
			m.Delete()
			return nil, err
		}
	}
	return m, nil
}

func (m *Mesh) setIndices(indices []uint32) error {
	fits16 := !slices.ContainsFunc(indices, func(i uint32) bool { return i > 0xFFFF })
	var contents []byte
	if fits16 {
		short := make([]uint16, len(indices), len(indices)+len(indices)%2)
		for i, v := range indices {
			short[i] = uint16(v)
		}
		// buffer writes must be a multiple of 4 bytes
		contents = wgpu.ToBytes(short[:cap(short)])
	} else {
		contents = wgpu.ToBytes(indices)
	}
	buf, err := m.b.device.CreateBufferInit(&wgpu.BufferInitDescriptor{
		Label:    "index buffer",
		Contents: contents,
		Usage:    wgpu.BufferUsageIndex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create index buffer: %w", err)
	}
	m.index = buf
	m.indexFormat = indexFormat(fits16)
	m.indexCount = len(indices)
	return nil
}

// SetAttribute creates or updates the named buffer. The layout (size,
// location, step mode) comes from the program's vertex layout.
func (m *Mesh) SetAttribute(name string, data []float32) error {
	if vb, ok := m.buffers[name]; ok {
		return vb.Update(data)
	}
	vb, err := NewVertexBuffer(m.b, name, data)
	if err != nil {
		return err
	}
	m.buffers[name] = vb
	return nil
}

// SetVBO installs an existing buffer under name, releasing any buffer it
// replaces. Buffers may be shared between meshes.
func (m *Mesh) SetVBO(name string, vb *VertexBuffer) {
	if old, ok := m.buffers[name]; ok && old != vb {
		old.Delete()
	}
	m.buffers[name] = vb
}

// SetInstanceMatrices uploads per-instance model matrices and sets
// InstanceCount to match.
func (m *Mesh) SetInstanceMatrices(mats []mgl32.Mat4) error {
	data := make([]float32, 0, len(mats)*16)
	for _, mat := range mats {
		data = append(data, mat[:]...)
	}
	if err := m.SetAttribute(BufferInstance, data); err != nil {
		return err
	}
	m.InstanceCount = len(mats)
	return nil
}

func (m *Mesh) Buffer(name string) *VertexBuffer { return m.buffers[name] }

func (m *Mesh) VertexCount() int { return m.vertexCount }
func (m *Mesh) IndexCount() int  { return m.indexCount }

// Valid implements render.Mesh.
func (m *Mesh) Valid() bool {
	if m == nil {
		return false
	}
	vb, ok := m.buffers[BufferPosition]
	return ok && vb.buf != nil && m.vertexCount > 0
}

// covers reports whether the mesh has every buffer layout names.
func (m *Mesh) covers(layout []VertexAttrib) bool {
	for _, a := range layout {
		vb, ok := m.buffers[a.Name]
		if !ok || vb.buf == nil {
			return false
		}
	}
	return true
}

// draw binds the buffers layout names, one slot each, and issues the draw.
func (m *Mesh) draw(pass *wgpu.RenderPassEncoder, layout []VertexAttrib) {
	for slot, a := range layout {
		pass.SetVertexBuffer(uint32(slot), m.buffers[a.Name].buf, 0, wgpu.WholeSize)
	}
	instances := uint32(max(m.InstanceCount, 1))
	if m.index != nil {
		pass.SetIndexBuffer(m.index, m.indexFormat, 0, wgpu.WholeSize)
		pass.DrawIndexed(uint32(m.indexCount), instances, 0, 0, 0)
	} else {
		pass.Draw(uint32(m.vertexCount), instances, 0, 0)
	}
}

func (m *Mesh) Delete() {
	for name, vb := range m.buffers {
		vb.Delete()
		delete(m.buffers, name)
	}
	if m.index != nil {
		m.index.Release()
		m.index = nil
	}
}

func (m *Mesh) String() string {
	return fmt.Sprintf("Mesh{vertices: %d, indices: %d, instances: %d}", m.vertexCount, m.indexCount, m.InstanceCount)
}
