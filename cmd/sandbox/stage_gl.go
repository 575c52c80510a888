package main

import (
	"errors"
	"fmt"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/assets"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	glbackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/gl"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

type glStage struct {
	b     *glbackend.Bolt
	dir   string
	clear [4]float32

	quad, screen *glbackend.Mesh
	solid, glass *glbackend.Program
	post         *glbackend.Program
	opaque       *render.DrawSet
	transparent  *render.DrawSet
	composite    *render.DrawSet
	stats        render.Stats
	fbo          *glbackend.FBO
}

func newGLStage(b *glbackend.Bolt, cfg core.Config) (*glStage, error) {
	s := &glStage{b: b, dir: cfg.ShaderDir, clear: cfg.ClearColor}
	if err := s.build(cfg.Context.SampleCount()); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *glStage) build(samples int) error {
	vs, fs, err := assets.LoadShaderPair(s.dir, shaderBasic)
	if err != nil {
		return err
	}
	if s.solid, err = glbackend.NewProgram(s.b, vs, fs); err != nil {
		return fmt.Errorf("solid program: %w", err)
	}
	s.solid.Name = "solid"
	s.solid.Cull = render.CullNone
	s.solid.SetColor(uniformColor, solidColor)

	if s.glass, err = glbackend.NewProgram(s.b, vs, fs); err != nil {
		return fmt.Errorf("glass program: %w", err)
	}
	s.glass.Name = "glass"
	s.glass.Cull = render.CullNone
	s.glass.Transparent = true
	s.glass.DepthWrite = false
	s.glass.SetColor(uniformColor, glassColor)

	pvs, pfs, err := assets.LoadShaderPair(s.dir, shaderPost)
	if err != nil {
		return err
	}
	if s.post, err = glbackend.NewProgram(s.b, pvs, pfs); err != nil {
		return fmt.Errorf("post program: %w", err)
	}
	s.post.Name = "post"
	s.post.DepthTest = false

	if s.quad, err = glbackend.NewMesh(s.b, quadGeometry(), glbackend.MeshOptions{}); err != nil {
		return err
	}
	if s.screen, err = glbackend.NewMesh(s.b, screenGeometry(), glbackend.MeshOptions{}); err != nil {
		return err
	}

	s.fbo, err = glbackend.NewFBO(s.b, glbackend.FBOOptions{
		Width:   max(s.b.Width(), 1),
		Height:  max(s.b.Height(), 1),
		Samples: samples,
	})
	if err != nil {
		return err
	}
	s.post.SetTexture(uniformScene, s.fbo.TargetTexture)

	s.opaque = render.NewDrawSet(s.quad, s.solid)
	s.transparent = render.NewDrawSet(s.quad, s.glass)
	s.composite = render.NewDrawSet(s.screen, s.post)
	return nil
}

func (s *glStage) Quads() (*render.DrawSet, *render.DrawSet) { return s.opaque, s.transparent }
func (s *glStage) SetCamera(cam *scene.Camera)               { s.b.SetCamera(cam) }
func (s *glStage) Stats() render.Stats                       { return s.stats }

func (s *glStage) Render(root *scene.Node) error {
	s.fbo.Bind(true)
	s.b.Clear(s.clear[0], s.clear[1], s.clear[2], s.clear[3])
	err := s.b.Draw(root)
	s.stats = s.b.Stats()
	s.fbo.Unbind(true)
	if err != nil {
		return err
	}
	return s.b.Draw(s.composite.Node)
}

func (s *glStage) Resize(w, h int) error {
	if w < 1 || h < 1 {
		return nil
	}
	s.fbo.Resize(w, h)
	return nil
}

func (s *glStage) ToggleTransparency() {
	s.glass.Transparent = !s.glass.Transparent
	s.glass.DepthWrite = !s.glass.Transparent
}

// Watch relinks the quad programs when either GLSL file changes.
func (s *glStage) Watch(w *assets.ShaderWatcher) {
	w.OnChange(func() error {
		vs, fs, err := assets.LoadShaderPair(s.dir, shaderBasic)
		if err != nil {
			return err
		}
		return errors.Join(s.solid.Reload(vs, fs), s.glass.Reload(vs, fs))
	}, shaderBasic+assets.ExtVertex, shaderBasic+assets.ExtFragment)

	w.OnChange(func() error {
		vs, fs, err := assets.LoadShaderPair(s.dir, shaderPost)
		if err != nil {
			return err
		}
		return s.post.Reload(vs, fs)
	}, shaderPost+assets.ExtVertex, shaderPost+assets.ExtFragment)
}

func (s *glStage) Release() {
	for _, m := range []*glbackend.Mesh{s.quad, s.screen} {
		if m != nil {
			m.Delete()
		}
	}
	for _, p := range []*glbackend.Program{s.solid, s.glass, s.post} {
		if p != nil {
			p.Delete()
		}
	}
	if s.fbo != nil {
		s.fbo.Delete()
	}
}
