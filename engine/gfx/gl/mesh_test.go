package glbackend

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

func TestNewMeshUploadsAttributes(t *testing.T) {
	b, gl := newTestBolt(t)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	assert.True(t, m.Valid())
	assert.Equal(t, 4, m.VertexCount())
	assert.Equal(t, 6, m.IndexCount())
	require.NotNil(t, m.Buffer(BufferPosition))
	require.NotNil(t, m.Buffer(BufferUV))
	assert.Nil(t, m.Buffer(BufferNormal), "empty attributes are skipped")

	data := gl.buffers[m.Buffer(BufferPosition).ID()]
	require.Len(t, data, 12*4)
	assert.Equal(t, float32(1), math.Float32frombits(binary.LittleEndian.Uint32(data[12:16])))

	idx := gl.buffers[m.ibo.ID()]
	assert.Len(t, idx, 6*2, "indices packed as uint16")
}

func TestNewMeshRejectsBadGeometry(t *testing.T) {
	b, _ := newTestBolt(t)
	_, err := NewMesh(b, render.GeometryBuffers{Positions: []float32{0, 0}}, MeshOptions{})
	assert.Error(t, err)
	_, err = NewMesh(b, render.GeometryBuffers{Positions: []float32{0, 0, 0}, Indices: []uint32{3}}, MeshOptions{})
	assert.Error(t, err)
}

func TestIBOIndexType(t *testing.T) {
	b, gl := newTestBolt(t)
	short := NewIBO(b, []uint32{0, 1, 65535})
	assert.Equal(t, uint32(UNSIGNED_SHORT), short.Type())
	assert.Len(t, gl.buffers[short.ID()], 6)

	wide := NewIBO(b, []uint32{0, 1, 70000})
	assert.Equal(t, uint32(UNSIGNED_INT), wide.Type())
	assert.Len(t, gl.buffers[wide.ID()], 12)
	assert.Equal(t, 3, wide.Count())
}

func TestMeshDrawModes(t *testing.T) {
	b, gl := newTestBolt(t)
	prog, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	prog.Activate()

	arrays, err := NewMesh(b, render.GeometryBuffers{
		Positions: []float32{0, 0, 0, 1, 0, 0},
	}, MeshOptions{DrawMode: render.Lines})
	require.NoError(t, err)
	arrays.Draw(prog)

	indexed, err := NewMesh(b, quad(), MeshOptions{InstanceCount: 5})
	require.NoError(t, err)
	indexed.Draw(prog)

	require.Len(t, gl.draws, 2)
	assert.Equal(t, fakeDraw{
		mode: LINES, count: 2, program: prog.ID(), vao: arrays.vao.ID(),
		blend: true, cull: true, cullMode: BACK, depth: true, depthMask: true,
	}, gl.draws[0])
	assert.Equal(t, uint32(TRIANGLES), gl.draws[1].mode)
	assert.True(t, gl.draws[1].indexed)
	assert.Equal(t, int32(6), gl.draws[1].count)
	assert.Equal(t, int32(5), gl.draws[1].instances)
}

func TestMeshInstanceMatrices(t *testing.T) {
	b, gl := newTestBolt(t)
	prog, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	mats := []mgl32.Mat4{mgl32.Ident4(), mgl32.Translate3D(1, 0, 0), mgl32.Translate3D(2, 0, 0)}
	m.SetInstanceMatrices(mats)
	assert.Equal(t, 3, m.InstanceCount)
	for loc := LocInstanceMatrix; loc < LocInstanceMatrix+4; loc++ {
		assert.Equal(t, uint32(1), gl.divisors[loc])
	}
	require.NotNil(t, m.Buffer(BufferInstance))
	assert.Len(t, gl.buffers[m.Buffer(BufferInstance).ID()], 3*16*4)

	m.SetInstanceMatrices(mats[:2])
	assert.Equal(t, 2, m.InstanceCount)
	assert.Equal(t, 4, gl.calls["VertexAttribDivisor"], "relinked only once")

	m.Draw(prog)
	require.Len(t, gl.draws, 1)
	assert.Equal(t, int32(2), gl.draws[0].instances)
}

func TestMeshSetAttribute(t *testing.T) {
	b, gl := newTestBolt(t)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	weights := []float32{1, 0, 1, 0, 1, 0, 1, 0}
	m.SetAttribute("weights", weights, 2, 5, 0)
	vbo := m.Buffer("weights")
	require.NotNil(t, vbo)
	oldID := vbo.ID()
	assert.Equal(t, 8, vbo.Len())
	assert.NotContains(t, gl.divisors, uint32(5))

	// same length updates in place
	m.SetAttribute("weights", []float32{0, 1, 0, 1, 0, 1, 0, 1}, 2, 5, 0)
	assert.Same(t, vbo, m.Buffer("weights"))
	assert.Equal(t, 1, gl.calls["BufferSubData"])

	replacement := NewVBO(b, []float32{1, 2, 3, 4}, DYNAMIC_DRAW)
	m.SetVBO("weights", replacement, 1, 5, 1)
	assert.Same(t, replacement, m.Buffer("weights"))
	assert.NotContains(t, gl.buffers, oldID)
	assert.Equal(t, uint32(1), gl.divisors[5])
}

func TestMeshSetAttributeRelinksChangedLayout(t *testing.T) {
	b, gl := newTestBolt(t)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	m.SetAttribute("offset", []float32{1, 2, 3, 4}, 2, 6, 1)
	vbo := m.Buffer("offset")
	ptrs := gl.attribPtrs
	assert.Equal(t, uint32(1), gl.divisors[6])

	m.SetAttribute("offset", []float32{4, 3, 2, 1}, 2, 6, 1)
	assert.Equal(t, ptrs, gl.attribPtrs, "same layout is not relinked")

	m.SetAttribute("offset", []float32{1, 2, 3, 4}, 4, 6, 0)
	assert.Same(t, vbo, m.Buffer("offset"))
	assert.Equal(t, ptrs+1, gl.attribPtrs)
	assert.Equal(t, uint32(0), gl.divisors[6], "divisor reset for per-vertex data")
}

func TestNilMeshIsInvalid(t *testing.T) {
	var m *Mesh
	assert.False(t, m.Valid())
	var p *Program
	assert.False(t, p.IsTransparent())
}

func TestMeshSkinUploadsJoints(t *testing.T) {
	b, gl := newTestBolt(t)
	skinnedVS := testVS + "uniform mat4 jointTransforms[2];\n"
	prog, err := NewProgram(b, skinnedVS, testFS)
	require.NoError(t, err)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	root, arm := scene.NewNode(), scene.NewNode()
	arm.SetPosition(mgl32.Vec3{0, 2, 0})
	require.NoError(t, root.AddChild(arm))
	root.UpdateModelMatrix(nil)
	m.Skin, err = render.NewSkin([]*scene.Node{root, arm}, []mgl32.Mat4{mgl32.Ident4(), mgl32.Ident4()})
	require.NoError(t, err)

	prog.Activate()
	m.Draw(prog)
	joints, ok := gl.uniforms[prog.Uniform(render.UniformJointTransforms).Location].([]float32)
	require.True(t, ok)
	require.Len(t, joints, 32)
	assert.Equal(t, float32(2), joints[16+13])
}

func TestMeshDelete(t *testing.T) {
	b, gl := newTestBolt(t)
	m, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)
	m.SetInstanceMatrices([]mgl32.Mat4{mgl32.Ident4()})

	m.Delete()
	assert.False(t, m.Valid())
	assert.Empty(t, gl.buffers)
	assert.Empty(t, gl.vaos)
}
