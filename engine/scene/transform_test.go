package scene

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

// Per-component comparison with an absolute tolerance.
func assertVec3Near(t *testing.T, want, got mgl32.Vec3, delta float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, "got %v", got)
}

func assertMat3Near(t *testing.T, want, got mgl32.Mat3, delta float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, "got %v", got)
}

func assertMat4Near(t *testing.T, want, got mgl32.Mat4, delta float64) {
	t.Helper()
	assert.InDeltaSlice(t, want[:], got[:], delta, "got %v", got)
}

func TestTransformMatrixIsTRS(t *testing.T) {
	tr := NewTransform()
	assert.True(t, tr.RequiresUpdate())
	assert.Equal(t, mgl32.Ident4(), tr.Matrix())
	assert.False(t, tr.RequiresUpdate())

	tr.SetPosition(mgl32.Vec3{1, 2, 3})
	tr.SetScale(mgl32.Vec3{2, 2, 2})
	tr.SetQuaternion(mgl32.QuatRotate(mgl32.DegToRad(90), mgl32.Vec3{0, 1, 0}))
	assert.True(t, tr.RequiresUpdate())

	want := mgl32.Translate3D(1, 2, 3).
		Mul4(mgl32.HomogRotate3DY(mgl32.DegToRad(90))).
		Mul4(mgl32.Scale3D(2, 2, 2))
	assertMat4Near(t, want, tr.Matrix(), 1e-5)
	assert.False(t, tr.RequiresUpdate())

	// +X scaled by 2 and rotated about Y lands on -Z, then translated
	p := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 1}).Vec3()
	assertVec3Near(t, mgl32.Vec3{1, 2, 1}, p, 1e-5)
}

func TestTransformEulerStaging(t *testing.T) {
	tr := NewTransform()
	euler := mgl32.Vec3{0.3, -0.7, 1.1}
	tr.SetRotation(euler)
	assert.True(t, tr.RequiresUpdate())

	q := tr.Quaternion()
	want := mgl32.HomogRotate3DX(0.3).Mul4(mgl32.HomogRotate3DY(-0.7)).Mul4(mgl32.HomogRotate3DZ(1.1))
	assertMat4Near(t, want, q.Mat4(), 1e-5)

	other := NewTransform()
	other.SetQuaternion(q)
	got := other.Rotation()
	assertVec3Near(t, euler, got, 1e-4)
}

func TestTransformRotateAccumulates(t *testing.T) {
	tr := NewTransform()
	tr.Rotate(mgl32.DegToRad(45), mgl32.Vec3{0, 0, 1})
	tr.Rotate(mgl32.DegToRad(45), mgl32.Vec3{0, 0, 2})
	v := tr.Matrix().Mul4x1(mgl32.Vec4{1, 0, 0, 0}).Vec3()
	assertVec3Near(t, mgl32.Vec3{0, 1, 0}, v, 1e-5)
}
