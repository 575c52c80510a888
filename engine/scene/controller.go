package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
)

// FlyController: WASD move in the view plane, Q/E down/up, scroll zoom.
// When the camera has a Target the target moves with it.
type FlyController struct {
	MoveSpeed float32
	ZoomSpeed float32
	Camera    *Camera
}

func NewFlyController(cam *Camera) *FlyController {
	return &FlyController{
		MoveSpeed: 2,
		ZoomSpeed: 1.1,
		Camera:    cam,
	}
}

func (fc *FlyController) Update(in *core.Input, dt float32) {
	q := fc.Camera.Quaternion()
	forward := q.Rotate(mgl32.Vec3{0, 0, -1})
	right := q.Rotate(mgl32.Vec3{1, 0, 0})
	up := mgl32.Vec3{0, 1, 0}

	var move mgl32.Vec3
	if in.IsKeyDown(core.KeyW) {
		move = move.Add(forward)
	}
	if in.IsKeyDown(core.KeyS) {
		move = move.Sub(forward)
	}
	if in.IsKeyDown(core.KeyD) {
		move = move.Add(right)
	}
	if in.IsKeyDown(core.KeyA) {
		move = move.Sub(right)
	}
	if in.IsKeyDown(core.KeyE) {
		move = move.Add(up)
	}
	if in.IsKeyDown(core.KeyQ) {
		move = move.Sub(up)
	}
	if move.Len() > 0 {
		d := move.Normalize().Mul(fc.MoveSpeed * dt)
		fc.Camera.Transform().Translate(d)
		if fc.Camera.Target != nil {
			fc.Camera.SetTarget(fc.Camera.Target.Add(d))
		}
	}

	if s := float32(in.ConsumeScroll()); s != 0 {
		fc.zoom(math32.Pow(fc.ZoomSpeed, s))
	}
}

// zoom narrows the view by factor f (>1 zooms in).
func (fc *FlyController) zoom(f float32) {
	switch p := fc.Camera.Projection.(type) {
	case *Perspective:
		p.FOV = mgl32.Clamp(p.FOV/f, 5, 120)
	case *Orthographic:
		p.Zoom = math32.Max(p.Zoom*f, minZoom)
	}
}
