package main

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/profiler"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

var cameraHome = mgl32.Vec3{0, 0.5, 3}

// SceneLayer spins an opaque red quad behind a transparent blue one.
type SceneLayer struct {
	stage  stage
	cam    *scene.Camera
	ctrl   *scene.FlyController
	root   *scene.Node
	pivot  *scene.Node
	solid  *render.DrawSet
	glass  *render.DrawSet
	paused bool
	t      float32
}

func (l *SceneLayer) OnAttach(e *core.Engine) {
	w, h := e.Window.FramebufferSize()
	l.cam = scene.NewPerspectiveCamera(45, float32(max(w, 1))/float32(max(h, 1)), 0.1, 100)
	l.resetCamera()
	l.ctrl = scene.NewFlyController(l.cam)
	l.stage.SetCamera(l.cam)

	l.root = scene.NewNode()
	l.root.Name = "root"
	l.pivot = scene.NewNode()
	l.pivot.Name = "pivot"

	l.solid, l.glass = l.stage.Quads()
	l.solid.Name = "red quad"
	l.solid.SetPosition(mgl32.Vec3{-0.25, 0, -0.5})
	l.glass.Name = "blue quad"
	l.glass.SetPosition(mgl32.Vec3{0.25, 0, 0.5})

	// Parenting fresh nodes cannot cycle.
	_ = l.root.AddChild(l.pivot)
	_ = l.pivot.AddChild(l.solid.Node)
	_ = l.pivot.AddChild(l.glass.Node)
}

func (l *SceneLayer) resetCamera() {
	l.cam.SetPosition(cameraHome)
	l.cam.SetTarget(mgl32.Vec3{})
}

func (l *SceneLayer) OnDetach(e *core.Engine) {}

func (l *SceneLayer) OnUpdate(e *core.Engine, dt float64) {
	l.ctrl.Update(e.Input, float32(dt))
	if !l.paused {
		l.t += float32(dt)
		l.pivot.SetRotation(mgl32.Vec3{0, l.t * 0.6, 0})
	}

	if e.Input.IsKeyDown(core.KeyEscape) {
		e.Window.RequestClose()
	}
}

func (l *SceneLayer) OnRender(e *core.Engine, alpha float64) {
	end := profiler.Start("SceneLayer.OnRender")
	defer end()
	if err := l.stage.Render(l.root); err != nil {
		logger.Log.Error("render", zap.Error(err))
		e.Window.RequestClose()
	}
}

func (l *SceneLayer) OnEvent(e *core.Engine, ev core.Event) bool {
	switch v := ev.(type) {
	case core.EventKey:
		if !v.Down {
			return false
		}
		switch {
		case v.Key == core.KeyP && v.Mods&core.ModCtrl != 0:
			if path, err := profiler.Dump(""); err == nil {
				logger.Log.Info("speedscope dump", zap.String("path", path))
			} else {
				logger.Log.Warn("profiler dump", zap.Error(err))
			}
			return true
		case v.Key == core.KeyT:
			l.stage.ToggleTransparency()
			logger.Log.Info("blue quad transparency", zap.Bool("transparent", l.glass.Transparent()))
			return true
		case v.Key == core.KeyR:
			l.resetCamera()
			return true
		case v.Key == core.KeySpace:
			l.paused = !l.paused
			return true
		}
	case core.EventResize:
		if v.W < 1 || v.H < 1 {
			return false
		}
		l.cam.Resize(v.W, v.H)
		if err := l.stage.Resize(v.W, v.H); err != nil {
			logger.Log.Error("resize offscreen target", zap.Error(err))
		}
	}
	return false
}
