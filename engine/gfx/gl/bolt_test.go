package glbackend

import (
	"errors"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

const testVS = `#version 300 es
layout(location = 0) in vec3 aPosition;
uniform mat4 projection;
uniform mat4 view;
uniform mat4 model;
void main() { gl_Position = projection * view * model * vec4(aPosition, 1.0); }
`

const testFS = `#version 300 es
precision highp float;
uniform vec4 color;
out vec4 fragColor;
void main() { fragColor = color; }
`

func newTestBolt(t *testing.T) (*Bolt, *fakeGL) {
	t.Helper()
	gl := newFakeGL()
	b, err := Init(gl, &fakeCanvas{w: 800, h: 600, dpr: 1}, core.ContextOptions{})
	require.NoError(t, err)
	return b, gl
}

func quad() render.GeometryBuffers {
	return render.GeometryBuffers{
		Positions: []float32{-1, -1, 0, 1, -1, 0, 1, 1, 0, -1, 1, 0},
		UVs:       []float32{0, 0, 1, 0, 1, 1, 0, 1},
		Indices:   []uint32{0, 1, 2, 0, 2, 3},
	}
}

func TestInitNilContext(t *testing.T) {
	_, err := Init(nil, nil, core.ContextOptions{})
	assert.ErrorIs(t, err, ErrContextLost)
}

func TestInitDefaults(t *testing.T) {
	b, gl := newTestBolt(t)

	assert.True(t, gl.enabled[DEPTH_TEST])
	assert.Equal(t, uint32(LEQUAL), gl.depthFunc)
	assert.True(t, gl.enabled[BLEND])
	assert.Equal(t, [2]uint32{SRC_ALPHA, ONE_MINUS_SRC_ALPHA}, [2]uint32{gl.blendSrc, gl.blendDst})
	assert.True(t, gl.enabled[CULL_FACE])
	assert.Equal(t, uint32(BACK), gl.cullMode)

	assert.Equal(t, 800, b.Width())
	assert.Equal(t, 600, b.Height())
	assert.Equal(t, [4]int32{0, 0, 800, 600}, gl.viewport)
}

func TestInitDPI(t *testing.T) {
	tests := []struct {
		name   string
		dpr    float32
		dpi    float32
		wantW  int
		wantH  int
		wantDP float32
	}{
		{"device ratio", 1.5, 0, 1200, 900, 1.5},
		{"clamped", 3, 0, 1600, 1200, 2},
		{"configured", 2, 1, 800, 600, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gl := newFakeGL()
			canvas := &fakeCanvas{w: 800, h: 600, dpr: tt.dpr}
			b, err := Init(gl, canvas, core.ContextOptions{DPI: tt.dpi})
			require.NoError(t, err)
			assert.Equal(t, tt.wantDP, b.DPI())
			assert.Equal(t, tt.wantW, canvas.bw)
			assert.Equal(t, tt.wantH, canvas.bh)
			assert.Equal(t, [4]int32{0, 0, int32(tt.wantW), int32(tt.wantH)}, gl.viewport)
		})
	}
}

func TestResizeUpdatesCameraAspect(t *testing.T) {
	b, gl := newTestBolt(t)
	cam := scene.NewPerspectiveCamera(45, 1, 0.1, 100)
	b.SetCamera(cam)

	b.Resize(400, 200)
	assert.Equal(t, [4]int32{0, 0, 400, 200}, gl.viewport)
	assert.InDelta(t, 2, cam.Projection.(*scene.Perspective).Aspect, 1e-6)
}

func TestClearIncludesStencil(t *testing.T) {
	gl := newFakeGL()
	b, err := Init(gl, nil, core.ContextOptions{Stencil: true})
	require.NoError(t, err)
	b.Clear(0.1, 0.2, 0.3, 1)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, gl.clearColor)
	assert.Equal(t, uint32(COLOR_BUFFER_BIT|DEPTH_BUFFER_BIT|STENCIL_BUFFER_BIT), gl.clearMask)
}

func TestTogglesKeepStateInSync(t *testing.T) {
	b, gl := newTestBolt(t)

	b.DisableBlending()
	before := gl.calls["Disable"]
	b.state = b.state.SetBlend(gl, render.BlendNone)
	assert.Equal(t, before, gl.calls["Disable"], "cache knows blending is off")

	b.CullFace(render.CullNone)
	assert.False(t, gl.enabled[CULL_FACE])
	b.state = b.state.SetCull(gl, render.CullBack)
	assert.True(t, gl.enabled[CULL_FACE])

	b.DisableDepth()
	assert.False(t, gl.enabled[DEPTH_TEST])
	b.state = b.state.SetDepth(gl, true, true)
	assert.True(t, gl.enabled[DEPTH_TEST])
}

// The reference scenario: a red opaque quad behind a blue transparent one.
// Opaque draws first with blending off; the transparent quad follows with
// its blend mode on.
func TestDrawOpaqueThenTransparent(t *testing.T) {
	b, gl := newTestBolt(t)
	cam := scene.NewPerspectiveCamera(45, 800.0/600.0, 0.1, 100)
	cam.SetPosition(mgl32.Vec3{0, 0, 5})
	cam.SetTarget(mgl32.Vec3{})
	b.SetCamera(cam)

	mesh, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)
	red, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	blue, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	blue.Transparent = true
	blue.Blend = render.BlendAdditive
	blue.Cull = render.CullNone
	red.SetVec4("color", mgl32.Vec4{1, 0, 0, 1})
	blue.SetVec4("color", mgl32.Vec4{0, 0, 1, 0.5})

	root := scene.NewNode()
	transparent := render.NewDrawSet(mesh, blue)
	transparent.SetPosition(mgl32.Vec3{0, 0, 1})
	opaque := render.NewDrawSet(mesh, red)
	opaque.SetPosition(mgl32.Vec3{0, 0, -1})
	require.NoError(t, root.AddChild(transparent.Node))
	require.NoError(t, root.AddChild(opaque.Node))

	require.NoError(t, b.Draw(root))

	require.Len(t, gl.draws, 2)
	first, second := gl.draws[0], gl.draws[1]
	assert.Equal(t, red.ID(), first.program)
	assert.False(t, first.blend)
	assert.True(t, first.cull)
	assert.True(t, first.indexed)
	assert.Equal(t, int32(6), first.count)
	assert.Equal(t, uint32(UNSIGNED_SHORT), first.indexType)

	assert.Equal(t, blue.ID(), second.program)
	assert.True(t, second.blend)
	assert.False(t, second.cull)
	assert.Equal(t, [2]uint32{SRC_ALPHA, ONE}, [2]uint32{gl.blendSrc, gl.blendDst})

	model := gl.uniforms[red.Uniform(render.UniformModel).Location].([]float32)
	assert.Equal(t, float32(-1), model[14])

	stats := b.Stats()
	assert.Equal(t, 2, stats.DrawCalls)
	assert.Equal(t, 1, stats.Opaque)
	assert.Equal(t, 1, stats.Transparent)
}

func TestDrawSkipsForeignTypes(t *testing.T) {
	b, gl := newTestBolt(t)
	b.SetCamera(scene.NewPerspectiveCamera(45, 1, 0.1, 100))
	prog, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)

	root := scene.NewNode()
	require.NoError(t, root.AddChild(render.NewDrawSet(foreignMesh{}, prog).Node))
	require.NoError(t, b.Draw(root))
	assert.Empty(t, gl.draws)
	assert.Equal(t, 1, b.Stats().Skipped)
}

func TestDrawSkipsNilMeshAndProgram(t *testing.T) {
	b, gl := newTestBolt(t)
	b.SetCamera(scene.NewPerspectiveCamera(45, 1, 0.1, 100))
	prog, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	mesh, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)

	root := scene.NewNode()
	require.NoError(t, root.AddChild(render.NewDrawSet((*Mesh)(nil), prog).Node))
	require.NoError(t, root.AddChild(render.NewDrawSet(mesh, (*Program)(nil)).Node))
	require.NotPanics(t, func() { require.NoError(t, b.Draw(root)) })
	assert.Empty(t, gl.draws)
	assert.Equal(t, render.Stats{Opaque: 2, Skipped: 2}, b.Stats())
}

func TestDrawWithoutCamera(t *testing.T) {
	b, _ := newTestBolt(t)
	err := b.Draw(scene.NewNode())
	assert.True(t, errors.Is(err, render.ErrNoCamera))
}

func TestDrawDepthFromProgram(t *testing.T) {
	b, gl := newTestBolt(t)
	b.SetCamera(scene.NewPerspectiveCamera(45, 1, 0.1, 100))
	mesh, err := NewMesh(b, quad(), MeshOptions{})
	require.NoError(t, err)
	prog, err := NewProgram(b, testVS, testFS)
	require.NoError(t, err)
	prog.DepthWrite = false

	root := scene.NewNode()
	require.NoError(t, root.AddChild(render.NewDrawSet(mesh, prog).Node))
	require.NoError(t, b.Draw(root))
	require.Len(t, gl.draws, 1)
	assert.True(t, gl.draws[0].depth)
	assert.False(t, gl.draws[0].depthMask)
}

func TestShutdownDeletesPlaceholders(t *testing.T) {
	b, gl := newTestBolt(t)
	_, err := NewProgram(b, testVS, testFS+"uniform sampler2D map;\n")
	require.NoError(t, err)
	require.Len(t, b.placeholders, 1)

	b.Shutdown()
	assert.Empty(t, b.placeholders)
	assert.Equal(t, 1, gl.calls["DeleteTexture"])
}

type foreignMesh struct{}

func (foreignMesh) Valid() bool { return true }
