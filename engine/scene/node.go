// Package scene is the backend-free scene graph: transforms, nodes and cameras.
package scene

import (
	"errors"

	"github.com/go-gl/mathgl/mgl32"
)

// ErrCycle is returned when reparenting would make a node its own ancestor.
var ErrCycle = errors.New("scene: reparenting would create a cycle")

// Drawable marks a node as renderable. Renderers look for this capability
// during traversal.
type Drawable interface {
	Transparent() bool
}

var nodeID uint32

// Node is a scene-graph element. It owns its Transform; children are held
// by reference and survive the parent's Destroy.
type Node struct {
	ID   uint32
	Name string
	// Visible is the draw flag; false skips the node (and, at the root, the
	// whole subtree).
	Visible bool
	// AutoUpdate lets a parent's UpdateModelMatrix pass recurse into this
	// node. Disable it to drive the subtree's matrices manually.
	AutoUpdate bool
	// CameraDepth is scratch space for the renderer's depth sort.
	CameraDepth float32

	transform *Transform
	parent    *Node
	children  []*Node
	drawable  Drawable

	model        mgl32.Mat4
	modelView    mgl32.Mat4
	invModelView mgl32.Mat4
	normal       mgl32.Mat3
}

func NewNode() *Node {
	n := &Node{}
	n.init()
	return n
}

func (n *Node) init() {
	nodeID++
	n.ID = nodeID
	n.Visible = true
	n.AutoUpdate = true
	n.transform = NewTransform()
	n.model = mgl32.Ident4()
	n.modelView = mgl32.Ident4()
	n.invModelView = mgl32.Ident4()
	n.normal = mgl32.Ident3()
}

func (n *Node) Transform() *Transform { return n.transform }

func (n *Node) Position() mgl32.Vec3         { return n.transform.Position() }
func (n *Node) SetPosition(p mgl32.Vec3)     { n.transform.SetPosition(p) }
func (n *Node) Scale() mgl32.Vec3            { return n.transform.Scale() }
func (n *Node) SetScale(s mgl32.Vec3)        { n.transform.SetScale(s) }
func (n *Node) Rotation() mgl32.Vec3         { return n.transform.Rotation() }
func (n *Node) SetRotation(euler mgl32.Vec3) { n.transform.SetRotation(euler) }
func (n *Node) Quaternion() mgl32.Quat       { return n.transform.Quaternion() }
func (n *Node) SetQuaternion(q mgl32.Quat)   { n.transform.SetQuaternion(q) }

func (n *Node) Rotate(angle float32, axis mgl32.Vec3) { n.transform.Rotate(angle, axis) }

// LookAt orients the node so its -Z axis points at target (local space).
func (n *Node) LookAt(target, up mgl32.Vec3) {
	eye := n.transform.Position()
	if eye.ApproxEqual(target) {
		return
	}
	n.transform.SetQuaternion(mgl32.Mat4ToQuat(mgl32.LookAtV(eye, target, up).Inv()))
}

func (n *Node) Parent() *Node { return n.parent }

// Children is the live child list; callers must not modify it.
func (n *Node) Children() []*Node { return n.children }

func (n *Node) SetDrawable(d Drawable) { n.drawable = d }
func (n *Node) Drawable() Drawable     { return n.drawable }

// SetParent detaches n from its current parent and attaches it to p.
// A nil p only detaches.
func (n *Node) SetParent(p *Node) error {
	for a := p; a != nil; a = a.parent {
		if a == n {
			return ErrCycle
		}
	}
	if n.parent != nil {
		n.parent.removeChild(n)
	}
	n.parent = p
	if p != nil {
		p.children = append(p.children, n)
	}
	return nil
}

func (n *Node) AddChild(c *Node) error { return c.SetParent(n) }

// RemoveChild detaches c; it reports false when c is not a child of n.
func (n *Node) RemoveChild(c *Node) bool {
	if c.parent != n {
		return false
	}
	n.removeChild(c)
	c.parent = nil
	return true
}

func (n *Node) removeChild(c *Node) {
	for i, ch := range n.children {
		if ch == c {
			copy(n.children[i:], n.children[i+1:])
			n.children[len(n.children)-1] = nil
			n.children = n.children[:len(n.children)-1]
			return
		}
	}
}

// Destroy detaches n from its parent and orphans its children without
// destroying them.
func (n *Node) Destroy() {
	for _, c := range n.children {
		c.parent = nil
	}
	n.children = nil
	if n.parent != nil {
		n.parent.removeChild(n)
		n.parent = nil
	}
	n.drawable = nil
}

// Traverse visits n then its descendants in pre-order. Returning false from
// fn skips that node's children.
func (n *Node) Traverse(fn func(*Node) bool) {
	if !fn(n) {
		return
	}
	for _, c := range n.children {
		c.Traverse(fn)
	}
}

// UpdateModelMatrix sets model = parentModel × local (or local when
// parentModel is nil) and recurses into AutoUpdate children. Call it from a
// root; on an interior node a nil parentModel treats the node as a root.
func (n *Node) UpdateModelMatrix(parentModel *mgl32.Mat4) {
	local := n.transform.Matrix()
	if parentModel == nil {
		n.model = local
	} else {
		n.model = parentModel.Mul4(local)
	}
	for _, c := range n.children {
		if c.AutoUpdate {
			c.UpdateModelMatrix(&n.model)
		}
	}
}

func (n *Node) LocalMatrix() mgl32.Mat4 { return n.transform.Matrix() }

// ModelMatrix is the world matrix from the last UpdateModelMatrix pass.
func (n *Node) ModelMatrix() mgl32.Mat4 { return n.model }

// WorldMatrix composes the fresh local matrix with the parent's cached model
// matrix. It equals ModelMatrix after a full pass but can differ when an
// ancestor has AutoUpdate disabled.
func (n *Node) WorldMatrix() mgl32.Mat4 {
	if n.parent == nil {
		return n.transform.Matrix()
	}
	return n.parent.model.Mul4(n.transform.Matrix())
}

func (n *Node) WorldPosition() mgl32.Vec3 { return n.WorldMatrix().Col(3).Vec3() }

// UpdateViewMatrices derives the camera-relative matrices from view and the
// current model matrix.
func (n *Node) UpdateViewMatrices(view mgl32.Mat4) {
	n.modelView = view.Mul4(n.model)
	n.invModelView = n.modelView.Inv()
	n.normal = n.invModelView.Mat3().Transpose()
}

func (n *Node) ModelViewMatrix() mgl32.Mat4        { return n.modelView }
func (n *Node) InverseModelViewMatrix() mgl32.Mat4 { return n.invModelView }
func (n *Node) NormalMatrix() mgl32.Mat3           { return n.normal }
