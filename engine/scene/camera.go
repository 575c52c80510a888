package scene

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Projection produces a camera's projection matrix.
type Projection interface {
	Matrix() mgl32.Mat4
	SetViewport(w, h float32)
}

// Perspective projection; FOV is the vertical field of view in degrees.
type Perspective struct {
	FOV, Aspect, Near, Far float32
}

func (p *Perspective) Matrix() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(p.FOV), p.Aspect, p.Near, p.Far)
}

func (p *Perspective) SetViewport(w, h float32) {
	if h > 0 {
		p.Aspect = w / h
	}
}

// Orthographic projection. Zoom divides the extents; 1 = no zoom.
type Orthographic struct {
	Left, Right, Bottom, Top float32
	Near, Far                float32
	Zoom                     float32
}

const minZoom = 0.05

func (o *Orthographic) Matrix() mgl32.Mat4 {
	z := math32.Max(o.Zoom, minZoom)
	return mgl32.Ortho(o.Left/z, o.Right/z, o.Bottom/z, o.Top/z, o.Near, o.Far)
}

// SetViewport keeps the vertical extent and recentres the horizontal one on
// the new aspect ratio.
func (o *Orthographic) SetViewport(w, h float32) {
	if h <= 0 {
		return
	}
	halfH := (o.Top - o.Bottom) * 0.5
	cx := (o.Left + o.Right) * 0.5
	halfW := halfH * w / h
	o.Left, o.Right = cx-halfW, cx+halfW
}

// Camera is a Node producing view and projection matrices.
type Camera struct {
	Node
	Projection Projection
	// Target, when set, re-aims the camera on every Update.
	Target *mgl32.Vec3
	Up     mgl32.Vec3

	view           mgl32.Mat4
	projection     mgl32.Mat4
	projectionView mgl32.Mat4
}

func NewCamera(p Projection) *Camera {
	c := &Camera{Projection: p, Up: mgl32.Vec3{0, 1, 0}}
	c.Node.init()
	c.view = mgl32.Ident4()
	c.projection = p.Matrix()
	c.projectionView = c.projection
	return c
}

func NewPerspectiveCamera(fov, aspect, near, far float32) *Camera {
	return NewCamera(&Perspective{FOV: fov, Aspect: aspect, Near: near, Far: far})
}

func NewOrthographicCamera(left, right, bottom, top, near, far float32) *Camera {
	return NewCamera(&Orthographic{Left: left, Right: right, Bottom: bottom, Top: top, Near: near, Far: far, Zoom: 1})
}

func (c *Camera) SetTarget(t mgl32.Vec3) { c.Target = &t }

// Update recomputes view, projection and projection-view for this frame.
func (c *Camera) Update() {
	if c.Target != nil {
		c.Node.LookAt(*c.Target, c.Up)
	}
	if c.parent == nil {
		c.UpdateModelMatrix(nil)
	} else {
		c.UpdateModelMatrix(&c.parent.model)
	}
	c.view = c.model.Inv()
	c.projection = c.Projection.Matrix()
	c.projectionView = c.projection.Mul4(c.view)
}

func (c *Camera) Resize(w, h int) {
	c.Projection.SetViewport(float32(w), float32(h))
}

func (c *Camera) View() mgl32.Mat4             { return c.view }
func (c *Camera) ProjectionMatrix() mgl32.Mat4 { return c.projection }
func (c *Camera) ProjectionView() mgl32.Mat4   { return c.projectionView }

// ClipDepth is the clip-space z of a world position, without the divide by w.
// The renderer sorts on it; it is monotonic in view depth for a fixed
// projection but is not NDC depth.
func (c *Camera) ClipDepth(world mgl32.Vec3) float32 {
	return c.projectionView.Mul4x1(world.Vec4(1)).Z()
}
