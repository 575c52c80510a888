package main

import (
	"errors"
	"fmt"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/assets"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	wgpubackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/wgpu"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/scene"
)

var (
	basicOptions = wgpubackend.ProgramOptions{
		Uniforms: []wgpubackend.UniformField{{Name: uniformColor, Type: wgpubackend.Vec4}},
	}
	postOptions = wgpubackend.ProgramOptions{
		Label:    "post",
		Textures: []string{uniformScene},
	}
)

type wgpuStage struct {
	b   *wgpubackend.BoltWGPU
	dir string

	quad, screen *wgpubackend.Mesh
	solid, glass *wgpubackend.Program
	post         *wgpubackend.Program
	opaque       *render.DrawSet
	transparent  *render.DrawSet
	composite    *render.DrawSet
	stats        render.Stats
	target       *wgpubackend.RenderTarget
}

func newWGPUStage(b *wgpubackend.BoltWGPU, cfg core.Config) (*wgpuStage, error) {
	s := &wgpuStage{b: b, dir: cfg.ShaderDir}
	if err := s.build(cfg.Context.SampleCount()); err != nil {
		s.Release()
		return nil, err
	}
	return s, nil
}

func (s *wgpuStage) program(label, src string, opts wgpubackend.ProgramOptions) (*wgpubackend.Program, error) {
	opts.Label = label
	p, err := wgpubackend.NewProgram(s.b, src, opts)
	if err != nil {
		return nil, fmt.Errorf("%s program: %w", label, err)
	}
	p.Name = label
	return p, nil
}

func (s *wgpuStage) build(samples int) error {
	src, err := assets.LoadShader(s.dir, shaderBasic+assets.ExtWGSL)
	if err != nil {
		return err
	}
	if s.solid, err = s.program("solid", src, basicOptions); err != nil {
		return err
	}
	s.solid.Cull = render.CullNone
	s.solid.SetColor(uniformColor, solidColor)

	if s.glass, err = s.program("glass", src, basicOptions); err != nil {
		return err
	}
	s.glass.Cull = render.CullNone
	s.glass.Transparent = true
	s.glass.DepthWrite = false
	s.glass.SetColor(uniformColor, glassColor)

	postSrc, err := assets.LoadShader(s.dir, shaderPost+assets.ExtWGSL)
	if err != nil {
		return err
	}
	if s.post, err = s.program("post", postSrc, postOptions); err != nil {
		return err
	}
	s.post.DepthTest = false
	s.post.DepthWrite = false

	if s.quad, err = wgpubackend.NewMesh(s.b, quadGeometry(), wgpubackend.MeshOptions{}); err != nil {
		return err
	}
	if s.screen, err = wgpubackend.NewMesh(s.b, screenGeometry(), wgpubackend.MeshOptions{}); err != nil {
		return err
	}

	s.target, err = wgpubackend.NewRenderTarget(s.b, wgpubackend.RenderTargetOptions{
		Width:   max(s.b.Width(), 1),
		Height:  max(s.b.Height(), 1),
		Depth:   true,
		Samples: samples,
	})
	if err != nil {
		return err
	}
	s.post.SetTexture(uniformScene, s.target.Color)

	s.opaque = render.NewDrawSet(s.quad, s.solid)
	s.transparent = render.NewDrawSet(s.quad, s.glass)
	s.composite = render.NewDrawSet(s.screen, s.post)
	return nil
}

func (s *wgpuStage) Quads() (*render.DrawSet, *render.DrawSet) { return s.opaque, s.transparent }
func (s *wgpuStage) SetCamera(cam *scene.Camera)               { s.b.SetCamera(cam) }
func (s *wgpuStage) Stats() render.Stats                       { return s.stats }

// Render draws root into the multisampled target, which resolves into its
// colour texture, then samples that texture onto the surface.
func (s *wgpuStage) Render(root *scene.Node) error {
	s.b.SetRenderTarget(s.target)
	err := s.b.Draw(root)
	s.stats = s.b.Stats()
	s.b.SetRenderTarget(nil)
	if err != nil {
		return err
	}
	return s.b.Draw(s.composite.Node)
}

func (s *wgpuStage) Resize(w, h int) error {
	if w < 1 || h < 1 {
		return nil
	}
	return s.target.Resize(w, h)
}

func (s *wgpuStage) ToggleTransparency() {
	s.glass.Transparent = !s.glass.Transparent
	s.glass.DepthWrite = !s.glass.Transparent
}

// Watch swaps the shader modules when a WGSL file changes.
func (s *wgpuStage) Watch(w *assets.ShaderWatcher) {
	w.OnChange(func() error {
		src, err := assets.LoadShader(s.dir, shaderBasic+assets.ExtWGSL)
		if err != nil {
			return err
		}
		return errors.Join(s.solid.Reload(src), s.glass.Reload(src))
	}, shaderBasic+assets.ExtWGSL)

	w.OnChange(func() error {
		src, err := assets.LoadShader(s.dir, shaderPost+assets.ExtWGSL)
		if err != nil {
			return err
		}
		return s.post.Reload(src)
	}, shaderPost+assets.ExtWGSL)
}

func (s *wgpuStage) Release() {
	for _, ds := range []*render.DrawSet{s.opaque, s.transparent, s.composite} {
		if ds != nil {
			s.b.Forget(ds)
		}
	}
	for _, m := range []*wgpubackend.Mesh{s.quad, s.screen} {
		if m != nil {
			m.Delete()
		}
	}
	for _, p := range []*wgpubackend.Program{s.solid, s.glass, s.post} {
		if p != nil {
			p.Delete()
		}
	}
	if s.target != nil {
		s.target.Delete()
	}
}
