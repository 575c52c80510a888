package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/colors"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
)

// Entry points every program module must define.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// ProgramOptions describe what a WGSL module binds besides the camera
// (group 0) and object (group 1) blocks.
//
// Group 2 holds the material: binding 0 is the Uniforms block when it has
// fields, and texture i is bound at 1+2i with its sampler at 2+2i.
type ProgramOptions struct {
	Label    string
	Uniforms []UniformField
	Textures []string
	// VertexLayout defaults to DefaultVertexLayout.
	VertexLayout []VertexAttrib
}

type pipelineKey struct {
	format     wgpu.TextureFormat
	samples    uint32
	depth      bool
	topology   wgpu.PrimitiveTopology
	blend      render.BlendMode
	cull       render.CullFace
	depthTest  bool
	depthWrite bool
}

// Program is a WGSL shader module with its material block and the render
// pipelines built from it.
type Program struct {
	Name        string
	Transparent bool
	Blend       render.BlendMode
	Cull        render.CullFace
	DepthTest   bool
	DepthWrite  bool

	b        *BoltWGPU
	opts     ProgramOptions
	module   *wgpu.ShaderModule
	uniforms *UniformBlock
	textures []*Texture

	layout         *wgpu.BindGroupLayout
	pipelineLayout *wgpu.PipelineLayout
	buffer         *wgpu.Buffer
	group          *wgpu.BindGroup
	groupGens      []int
	pipelines      map[pipelineKey]*wgpu.RenderPipeline
	flushedFrame   uint64
}

func NewProgram(b *BoltWGPU, wgsl string, opts ProgramOptions) (*Program, error) {
	if len(opts.VertexLayout) == 0 {
		opts.VertexLayout = DefaultVertexLayout()
	}
	uniforms, err := NewUniformBlock(opts.Uniforms)
	if err != nil {
		return nil, err
	}
	p := &Program{
		Name:       opts.Label,
		Blend:      render.BlendAlpha,
		DepthTest:  true,
		DepthWrite: true,
		b:          b,
		opts:       opts,
		uniforms:   uniforms,
		textures:   make([]*Texture, len(opts.Textures)),
		groupGens:  make([]int, len(opts.Textures)),
		pipelines:  map[pipelineKey]*wgpu.RenderPipeline{},
	}
	if p.module, err = b.compile(opts.Label, wgsl); err != nil {
		return nil, err
	}
	if err := p.createLayout(); err != nil {
		p.Delete()
		return nil, err
	}
	return p, nil
}

func (p *Program) createLayout() error {
	d := p.b.device
	var err error
	p.layout, err = d.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   p.opts.Label + " material",
		Entries: materialLayoutEntries(p.uniforms.Size(), len(p.opts.Textures)),
	})
	if err != nil {
		return fmt.Errorf("program %q: material layout: %w", p.opts.Label, err)
	}
	p.pipelineLayout, err = d.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            p.opts.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.b.cameraLayout, p.b.objectLayout, p.layout},
	})
	if err != nil {
		return fmt.Errorf("program %q: pipeline layout: %w", p.opts.Label, err)
	}
	if p.uniforms.Size() > 0 {
		p.buffer, err = d.CreateBuffer(&wgpu.BufferDescriptor{
			Label: p.opts.Label + " material",
			Size:  uint64(p.uniforms.Size()),
			Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
		})
		if err != nil {
			return fmt.Errorf("program %q: material buffer: %w", p.opts.Label, err)
		}
	}
	return nil
}

func materialLayoutEntries(uniformSize, textures int) []wgpu.BindGroupLayoutEntry {
	var entries []wgpu.BindGroupLayoutEntry
	if uniformSize > 0 {
		entries = append(entries, uniformLayoutEntry(0))
	}
	for i := range textures {
		entries = append(entries,
			wgpu.BindGroupLayoutEntry{
				Binding:    uint32(1 + 2*i),
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			wgpu.BindGroupLayoutEntry{
				Binding:    uint32(2 + 2*i),
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			})
	}
	return entries
}

func uniformLayoutEntry(binding uint32) wgpu.BindGroupLayoutEntry {
	return wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
	}
}

func (p *Program) IsTransparent() bool { return p != nil && p.Transparent }

// Uniforms is the material block. Its contents reach the GPU once per
// frame, on the first draw that uses the program.
func (p *Program) Uniforms() *UniformBlock { return p.uniforms }

func (p *Program) VertexLayout() []VertexAttrib { return p.opts.VertexLayout }

// Reload replaces the shader module. Pipelines are rebuilt on next use.
// On error the program keeps its previous module.
func (p *Program) Reload(wgsl string) error {
	module, err := p.b.compile(p.opts.Label, wgsl)
	if err != nil {
		return err
	}
	p.releasePipelines()
	p.module.Release()
	p.module = module
	return nil
}

func (p *Program) SetFloat(name string, v float32)           { p.uniforms.SetFloat(name, v) }
func (p *Program) SetInt(name string, v int32)               { p.uniforms.SetInt(name, v) }
func (p *Program) SetVec2(name string, v mgl32.Vec2)         { p.uniforms.SetVec2(name, v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3)         { p.uniforms.SetVec3(name, v) }
func (p *Program) SetVec4(name string, v mgl32.Vec4)         { p.uniforms.SetVec4(name, v) }
func (p *Program) SetColor(name string, c colors.Color)      { p.uniforms.SetVec4(name, c.Vec4()) }
func (p *Program) SetMat3(name string, m mgl32.Mat3)         { p.uniforms.SetMat3(name, m) }
func (p *Program) SetMat4(name string, m mgl32.Mat4)         { p.uniforms.SetMat4(name, m) }
func (p *Program) SetMat4Array(name string, ms []mgl32.Mat4) { p.uniforms.SetMat4Array(name, ms) }
func (p *Program) SetFloats(name string, vs []float32)       { p.uniforms.SetFloats(name, vs) }

// SetBool writes an i32 0 or 1; WGSL uniform blocks cannot hold bool.
func (p *Program) SetBool(name string, v bool) {
	var i int32
	if v {
		i = 1
	}
	p.uniforms.SetInt(name, i)
}

// SetTexture binds tex to the named texture slot. Unknown names and
// non-sampled textures are ignored. A nil tex restores the white
// placeholder.
func (p *Program) SetTexture(name string, tex *Texture) {
	if tex != nil && tex.sampler == nil {
		return
	}
	for i, n := range p.opts.Textures {
		if n == name {
			p.textures[i] = tex
			p.group = releaseGroup(p.group)
			return
		}
	}
}

// flush uploads the material block if it changed and this is the first
// use of the program in the frame.
func (p *Program) flush(frame uint64) {
	if p.flushedFrame == frame {
		return
	}
	p.flushedFrame = frame
	if p.buffer == nil || !p.uniforms.Dirty() {
		return
	}
	if err := p.b.queue.WriteBuffer(p.buffer, 0, p.uniforms.Bytes()); err == nil {
		p.uniforms.clean()
	}
}

// bindGroup returns the material bind group, rebuilding it when a bound
// texture was recreated since it was made.
func (p *Program) bindGroup() (*wgpu.BindGroup, error) {
	textures := make([]*Texture, len(p.textures))
	for i, t := range p.textures {
		if t == nil || t.view == nil {
			t = p.b.placeholder
		}
		textures[i] = t
		if p.group != nil && p.groupGens[i] != t.generation {
			p.group = releaseGroup(p.group)
		}
	}
	if p.group != nil {
		return p.group, nil
	}
	var entries []wgpu.BindGroupEntry
	if p.buffer != nil {
		entries = append(entries, wgpu.BindGroupEntry{Binding: 0, Buffer: p.buffer, Size: wgpu.WholeSize})
	}
	for i, t := range textures {
		entries = append(entries,
			wgpu.BindGroupEntry{Binding: uint32(1 + 2*i), TextureView: t.view},
			wgpu.BindGroupEntry{Binding: uint32(2 + 2*i), Sampler: t.sampler})
		p.groupGens[i] = t.generation
	}
	group, err := p.b.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.opts.Label + " material",
		Layout:  p.layout,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	p.group = group
	return group, nil
}

func releaseGroup(g *wgpu.BindGroup) *wgpu.BindGroup {
	if g != nil {
		g.Release()
	}
	return nil
}

// pipeline returns the render pipeline for key, creating it on first use.
func (p *Program) pipeline(key pipelineKey) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}
	cull, _ := cullMode(key.cull)
	desc := &wgpu.RenderPipelineDescriptor{
		Label:  p.opts.Label,
		Layout: p.pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     p.module,
			EntryPoint: VertexEntry,
			Buffers:    vertexBufferLayouts(p.opts.VertexLayout),
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.module,
			EntryPoint: FragmentEntry,
			Targets: []wgpu.ColorTargetState{{
				Format:    key.format,
				Blend:     blendState(key.blend),
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  key.topology,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  cull,
		},
		Multisample: wgpu.MultisampleState{
			Count: key.samples,
			Mask:  0xFFFFFFFF,
		},
	}
	if key.depth {
		desc.DepthStencil = &wgpu.DepthStencilState{
			Format:            depthFormat,
			DepthWriteEnabled: key.depthWrite,
			DepthCompare:      depthCompare(key.depthTest),
			StencilFront:      wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
			StencilBack:       wgpu.StencilFaceState{Compare: wgpu.CompareFunctionAlways},
		}
	}
	rp, err := p.b.device.CreateRenderPipeline(desc)
	if err != nil {
		return nil, fmt.Errorf("program %q: pipeline: %w", p.opts.Label, err)
	}
	p.pipelines[key] = rp
	return rp, nil
}

func (p *Program) releasePipelines() {
	for k, rp := range p.pipelines {
		rp.Release()
		delete(p.pipelines, k)
	}
}

func (p *Program) Delete() {
	p.releasePipelines()
	p.group = releaseGroup(p.group)
	if p.buffer != nil {
		p.buffer.Release()
		p.buffer = nil
	}
	if p.pipelineLayout != nil {
		p.pipelineLayout.Release()
		p.pipelineLayout = nil
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.module != nil {
		p.module.Release()
		p.module = nil
	}
}
