package render

import "github.com/robsouthgate4/bolt-gl-sub000/engine/scene"

// Mesh is the backend mesh as seen by the draw core.
type Mesh interface {
	// Valid reports whether the mesh has a vertex array/buffer set to draw.
	Valid() bool
}

// Program is the backend shader program as seen by the draw core.
type Program interface {
	IsTransparent() bool
}

// DrawSet is a Node that pairs one Mesh with one Program. Both are
// non-owning and may be swapped between frames.
type DrawSet struct {
	*scene.Node
	Mesh    Mesh
	Program Program
}

func NewDrawSet(mesh Mesh, program Program) *DrawSet {
	ds := &DrawSet{Node: scene.NewNode(), Mesh: mesh, Program: program}
	ds.Node.SetDrawable(ds)
	return ds
}

// Transparent implements scene.Drawable.
func (ds *DrawSet) Transparent() bool {
	return ds.Program != nil && ds.Program.IsTransparent()
}

// hidden reports whether the node or its parent has its draw flag cleared.
func (ds *DrawSet) hidden() bool {
	if !ds.Visible {
		return true
	}
	p := ds.Parent()
	return p != nil && !p.Visible
}
