package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a local TRS with a lazily rebuilt matrix. Rotation is stored
// as a quaternion; Euler angles (XYZ order, radians) written through
// SetRotation are staged and folded into the quaternion on next read.
type Transform struct {
	position   mgl32.Vec3
	scale      mgl32.Vec3
	quaternion mgl32.Quat
	rotation   mgl32.Vec3

	eulerStaged    bool // rotation is newer than quaternion
	eulerStale     bool // quaternion is newer than rotation
	requiresUpdate bool
	matrix         mgl32.Mat4
}

func NewTransform() *Transform {
	return &Transform{
		scale:          mgl32.Vec3{1, 1, 1},
		quaternion:     mgl32.QuatIdent(),
		matrix:         mgl32.Ident4(),
		requiresUpdate: true,
	}
}

func (t *Transform) Position() mgl32.Vec3 { return t.position }

func (t *Transform) SetPosition(p mgl32.Vec3) {
	t.position = p
	t.requiresUpdate = true
}

func (t *Transform) Translate(d mgl32.Vec3) { t.SetPosition(t.position.Add(d)) }

func (t *Transform) Scale() mgl32.Vec3 { return t.scale }

func (t *Transform) SetScale(s mgl32.Vec3) {
	t.scale = s
	t.requiresUpdate = true
}

func (t *Transform) Quaternion() mgl32.Quat {
	t.foldEuler()
	return t.quaternion
}

func (t *Transform) SetQuaternion(q mgl32.Quat) {
	t.quaternion = q.Normalize()
	t.eulerStaged = false
	t.eulerStale = true
	t.requiresUpdate = true
}

// Rotation returns Euler angles (XYZ, radians).
func (t *Transform) Rotation() mgl32.Vec3 {
	if t.eulerStale {
		t.rotation = quatToEulerXYZ(t.quaternion)
		t.eulerStale = false
	}
	return t.rotation
}

// SetRotation stages Euler angles (XYZ, radians).
func (t *Transform) SetRotation(euler mgl32.Vec3) {
	t.rotation = euler
	t.eulerStaged = true
	t.eulerStale = false
	t.requiresUpdate = true
}

// Rotate applies an extra local rotation of angle radians about axis.
func (t *Transform) Rotate(angle float32, axis mgl32.Vec3) {
	t.SetQuaternion(t.Quaternion().Mul(mgl32.QuatRotate(angle, axis.Normalize())))
}

func (t *Transform) RequiresUpdate() bool { return t.requiresUpdate }

// Matrix returns T·R·S, rebuilding it only when a setter ran since the last read.
func (t *Transform) Matrix() mgl32.Mat4 {
	if !t.requiresUpdate {
		return t.matrix
	}
	t.foldEuler()
	t.matrix = mgl32.Translate3D(t.position[0], t.position[1], t.position[2]).
		Mul4(t.quaternion.Mat4()).
		Mul4(mgl32.Scale3D(t.scale[0], t.scale[1], t.scale[2]))
	t.requiresUpdate = false
	return t.matrix
}

func (t *Transform) foldEuler() {
	if !t.eulerStaged {
		return
	}
	t.quaternion = eulerXYZToQuat(t.rotation)
	t.eulerStaged = false
}

func eulerXYZToQuat(e mgl32.Vec3) mgl32.Quat {
	qx := mgl32.QuatRotate(e[0], mgl32.Vec3{1, 0, 0})
	qy := mgl32.QuatRotate(e[1], mgl32.Vec3{0, 1, 0})
	qz := mgl32.QuatRotate(e[2], mgl32.Vec3{0, 0, 1})
	return qx.Mul(qy).Mul(qz).Normalize()
}

// quatToEulerXYZ inverts eulerXYZToQuat via the rotation matrix R = Rx·Ry·Rz.
func quatToEulerXYZ(q mgl32.Quat) mgl32.Vec3 {
	m := q.Mat4()
	m13 := mgl32.Clamp(m.At(0, 2), -1, 1)
	var e mgl32.Vec3
	e[1] = math32.Asin(m13)
	if math32.Abs(m13) < 0.9999999 {
		e[0] = math32.Atan2(-m.At(1, 2), m.At(2, 2))
		e[2] = math32.Atan2(-m.At(0, 1), m.At(0, 0))
	} else {
		e[0] = math32.Atan2(m.At(2, 1), m.At(1, 1))
	}
	return e
}
