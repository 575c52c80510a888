package main

import (
	"github.com/robsouthgate4/bolt-gl-sub000/engine/assets"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/colors"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

// stage owns the backend resources of the demo: two coloured quads drawn
// into an offscreen multisampled target, then composited to the screen.
type stage interface {
	// Quads returns the opaque and the transparent quad.
	Quads() (opaque, transparent *render.DrawSet)
	SetCamera(cam *scene.Camera)
	// Render draws root offscreen and presents the result. Stats describe
	// the offscreen pass.
	Render(root *scene.Node) error
	Resize(w, h int) error
	ToggleTransparency()
	Watch(w *assets.ShaderWatcher)
	Stats() render.Stats
	Release()
}

// Shader base names under the configured shader directory.
const (
	shaderBasic = "basic"
	shaderPost  = "post"
)

const (
	uniformColor = "color"
	uniformScene = "scene"
)

var (
	solidColor = colors.Red
	glassColor = colors.Blue.WithAlpha(0.5)
)

func quadGeometry() render.GeometryBuffers { return render.Plane(1, 1) }

// screenGeometry covers clip space; the post shaders ignore the matrices.
func screenGeometry() render.GeometryBuffers { return render.Plane(2, 2) }
