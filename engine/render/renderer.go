// Package render is the backend-agnostic draw core: traversal, opaque and
// transparent classification, depth sort and ordered dispatch through a
// Backend.
package render

import (
	"cmp"
	"errors"
	"slices"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/profiler"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

// ErrNoCamera is returned by Draw when no camera is bound. Nothing is drawn.
var ErrNoCamera = errors.New("render: no camera bound")

// Backend issues GPU work for a frame. Immediate-mode backends may do all
// their work in DrawItem; command-buffer backends record between BeginFrame
// and EndFrame and submit at EndFrame.
type Backend interface {
	BeginFrame(cam *scene.Camera) error
	// DrawItem binds the pipeline/program and buffers for ds and issues its
	// draw call. It reports false when nothing was drawn.
	DrawItem(ds *DrawSet) bool
	EndFrame() error
}

// Stats describe the last Draw call.
type Stats struct {
	Opaque      int
	Transparent int
	DrawCalls   int
	Skipped     int
}

type Renderer struct {
	backend     Backend
	camera      *scene.Camera
	autoSort    bool
	opaque      []*DrawSet
	transparent []*DrawSet
	stats       Stats
}

// New returns a Renderer dispatching through b with auto-sort enabled.
func New(b Backend) *Renderer {
	return &Renderer{backend: b, autoSort: true}
}

func (r *Renderer) SetCamera(c *scene.Camera) { r.camera = c }
func (r *Renderer) Camera() *scene.Camera     { return r.camera }

func (r *Renderer) SetAutoSort(on bool) { r.autoSort = on }
func (r *Renderer) AutoSort() bool      { return r.autoSort }

// Opaque and Transparent are the lists built by the last Draw, in dispatch
// order. They are reused on the next Draw.
func (r *Renderer) Opaque() []*DrawSet      { return r.opaque }
func (r *Renderer) Transparent() []*DrawSet { return r.transparent }

func (r *Renderer) Stats() Stats { return r.stats }

// Draw renders the graph under root: opaque drawables first, then
// transparent ones, each list depth-sorted when auto-sort is on.
func (r *Renderer) Draw(root *scene.Node) error {
	if r.camera == nil {
		return ErrNoCamera
	}
	r.stats = Stats{}
	r.opaque = r.opaque[:0]
	r.transparent = r.transparent[:0]
	visible := root != nil && root.Visible
	if visible {
		root.UpdateModelMatrix(nil)
	}
	// a camera parented into root composes against this frame's matrices
	r.camera.Update()
	if !visible {
		return nil
	}

	endCollect := profiler.Start("collect")
	r.collect(root)
	endCollect()

	if r.autoSort {
		r.sort()
	}

	if err := r.backend.BeginFrame(r.camera); err != nil {
		return err
	}
	endDispatch := profiler.Start("dispatch")
	r.dispatch(r.opaque)
	r.dispatch(r.transparent)
	endDispatch()
	return r.backend.EndFrame()
}

// ForceDepthSort re-sorts the last-built lists against the camera's current
// matrices without traversing the graph again.
func (r *Renderer) ForceDepthSort() {
	if r.camera == nil {
		return
	}
	r.camera.Update()
	r.sort()
}

func (r *Renderer) collect(root *scene.Node) {
	root.Traverse(func(n *scene.Node) bool {
		d := n.Drawable()
		if d == nil {
			return true
		}
		ds, ok := d.(*DrawSet)
		if !ok || ds.Program == nil {
			return true
		}
		if d.Transparent() {
			r.transparent = append(r.transparent, ds)
		} else {
			r.opaque = append(r.opaque, ds)
		}
		return true
	})
	r.stats.Opaque = len(r.opaque)
	r.stats.Transparent = len(r.transparent)
}

func (r *Renderer) sort() {
	end := profiler.Start("sort")
	DepthSort(r.camera, r.opaque)
	DepthSort(r.camera, r.transparent)
	end()
}

// DepthSort orders list by descending clip-space z of each node's world
// position (see scene.Camera.ClipDepth). The key is not divided by w, so
// ordering is approximate for objects with very different depths under a
// perspective projection. Equal keys keep their relative order.
func DepthSort(cam *scene.Camera, list []*DrawSet) {
	for _, ds := range list {
		ds.CameraDepth = cam.ClipDepth(ds.WorldPosition())
	}
	slices.SortStableFunc(list, func(a, b *DrawSet) int {
		return cmp.Compare(b.CameraDepth, a.CameraDepth)
	})
}

func (r *Renderer) dispatch(list []*DrawSet) {
	view := r.camera.View()
	for _, ds := range list {
		if ds.hidden() || ds.Mesh == nil || !ds.Mesh.Valid() {
			r.stats.Skipped++
			continue
		}
		ds.UpdateViewMatrices(view)
		if r.backend.DrawItem(ds) {
			r.stats.DrawCalls++
		} else {
			r.stats.Skipped++
		}
	}
}
