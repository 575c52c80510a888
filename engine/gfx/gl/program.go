package glbackend

import (
	"fmt"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/colors"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
)

// Uniform is one active uniform of a linked program. Array uniforms are
// keyed by their base name.
type Uniform struct {
	Name     string
	Location int32
	Type     uint32
	Size     int32
	// Unit is the texture unit reserved for a sampler, -1 otherwise.
	Unit   int32
	Target uint32
	Value  any
}

func (u *Uniform) IsSampler() bool { return u.Unit >= 0 }

// Program is a linked vertex/fragment pair with its uniforms resolved once
// at link time. Setters for names the linker did not keep are no-ops.
type Program struct {
	Name string
	// Transparent programs are drawn after all opaque ones, with Blend.
	Transparent bool
	Blend       render.BlendMode
	Cull        render.CullFace
	DepthTest   bool
	DepthWrite  bool

	b        *Bolt
	id       uint32
	uniforms map[string]*Uniform
	samplers []*Uniform
}

// NewProgram compiles and links vertexSrc and fragmentSrc. Compile and link
// failures return ErrShaderCompile / ErrProgramLink with the driver log.
func NewProgram(b *Bolt, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := b.linkProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, err
	}
	p := &Program{b: b, id: id, DepthTest: true, DepthWrite: true}
	p.introspect()
	return p, nil
}

func (p *Program) ID() uint32 { return p.id }

// IsTransparent implements render.Program.
func (p *Program) IsTransparent() bool { return p != nil && p.Transparent }

// Uniform returns the named uniform or nil.
func (p *Program) Uniform(name string) *Uniform { return p.uniforms[name] }

// Uniforms is the introspected uniform table; callers must not modify it.
func (p *Program) Uniforms() map[string]*Uniform { return p.uniforms }

// Activate makes p the current program unless it already is.
func (p *Program) Activate() {
	p.b.state = p.b.state.UseProgram(p.b.ctx, p.id)
}

// Use binds every sampler's texture to its reserved unit, skipping units
// that already hold it.
func (p *Program) Use() {
	for _, u := range p.samplers {
		tex, ok := u.Value.(Texture)
		if !ok {
			continue
		}
		p.b.state = p.b.state.BindTexture(p.b.ctx, u.Unit, tex.Target(), tex.ID())
	}
}

// Reload relinks p from new sources. On failure p keeps its old program.
// Values already set are re-applied to uniforms that survive the relink.
func (p *Program) Reload(vertexSrc, fragmentSrc string) error {
	id, err := p.b.linkProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return err
	}
	old := p.uniforms
	p.deleteGL()
	p.id = id
	p.introspect()
	for name, prev := range old {
		u := p.uniforms[name]
		if u == nil || prev.Value == nil {
			continue
		}
		if _, placeholder := prev.Value.(Texture); placeholder && !u.IsSampler() {
			continue
		}
		u.Value = prev.Value
		p.upload(u)
	}
	return nil
}

func (p *Program) Delete() {
	p.deleteGL()
	p.uniforms = nil
	p.samplers = nil
}

func (p *Program) deleteGL() {
	if p.id == 0 {
		return
	}
	p.b.ctx.DeleteProgram(p.id)
	p.b.state = p.b.state.ForgetProgram(p.id)
	p.id = 0
}

func (p *Program) SetBool(name string, v bool)               { p.set(name, v) }
func (p *Program) SetInt(name string, v int32)               { p.set(name, v) }
func (p *Program) SetFloat(name string, v float32)           { p.set(name, v) }
func (p *Program) SetVec2(name string, v mgl32.Vec2)         { p.set(name, v) }
func (p *Program) SetVec3(name string, v mgl32.Vec3)         { p.set(name, v) }
func (p *Program) SetVec4(name string, v mgl32.Vec4)         { p.set(name, v) }
func (p *Program) SetColor(name string, c colors.Color)      { p.set(name, c.Vec4()) }
func (p *Program) SetMat3(name string, m mgl32.Mat3)         { p.set(name, m) }
func (p *Program) SetMat4(name string, m mgl32.Mat4)         { p.set(name, m) }
func (p *Program) SetMat4Array(name string, ms []mgl32.Mat4) { p.set(name, ms) }
func (p *Program) SetFloats(name string, v []float32)        { p.set(name, v) }

// SetTexture assigns tex to a sampler uniform and binds it to the sampler's
// unit.
func (p *Program) SetTexture(name string, tex Texture) {
	u := p.uniforms[name]
	if u == nil || !u.IsSampler() || tex == nil {
		return
	}
	u.Value = tex
	p.b.state = p.b.state.BindTexture(p.b.ctx, u.Unit, tex.Target(), tex.ID())
}

func (p *Program) set(name string, v any) {
	u := p.uniforms[name]
	if u == nil || u.IsSampler() {
		return
	}
	u.Value = v
	p.upload(u)
}

func (p *Program) upload(u *Uniform) {
	ctx := p.b.ctx
	if u.IsSampler() {
		if tex, ok := u.Value.(Texture); ok {
			p.b.state = p.b.state.BindTexture(ctx, u.Unit, tex.Target(), tex.ID())
		}
		return
	}
	p.Activate()
	switch v := u.Value.(type) {
	case bool:
		var i int32
		if v {
			i = 1
		}
		ctx.Uniform1i(u.Location, i)
	case int32:
		ctx.Uniform1i(u.Location, v)
	case float32:
		ctx.Uniform1f(u.Location, v)
	case mgl32.Vec2:
		ctx.Uniform2f(u.Location, v[0], v[1])
	case mgl32.Vec3:
		ctx.Uniform3f(u.Location, v[0], v[1], v[2])
	case mgl32.Vec4:
		ctx.Uniform4f(u.Location, v[0], v[1], v[2], v[3])
	case mgl32.Mat3:
		ctx.UniformMatrix3fv(u.Location, v[:])
	case mgl32.Mat4:
		ctx.UniformMatrix4fv(u.Location, v[:])
	case []mgl32.Mat4:
		if len(v) == 0 {
			return
		}
		flat := make([]float32, 0, 16*len(v))
		for _, m := range v {
			flat = append(flat, m[:]...)
		}
		ctx.UniformMatrix4fv(u.Location, flat)
	case []float32:
		if len(v) == 0 {
			return
		}
		ctx.Uniform1fv(u.Location, v)
	}
}

// introspect resolves every active uniform once. Samplers get the next free
// unit of this program and a placeholder texture so they are valid before
// any SetTexture.
func (p *Program) introspect() {
	ctx := p.b.ctx
	p.uniforms = map[string]*Uniform{}
	p.samplers = p.samplers[:0]

	n := ctx.GetProgrami(p.id, ACTIVE_UNIFORMS)
	var unit int32
	for i := range uint32(max(n, 0)) {
		name, size, typ := ctx.GetActiveUniform(p.id, i)
		base := stripArrayIndex(name)
		if _, dup := p.uniforms[base]; dup {
			continue
		}
		u := &Uniform{
			Name:     base,
			Location: ctx.GetUniformLocation(p.id, name),
			Type:     typ,
			Size:     size,
			Unit:     -1,
		}
		p.uniforms[base] = u

		target, ok := samplerTarget(typ)
		if !ok || unit >= MaxTextureUnits {
			continue
		}
		u.Unit, u.Target = unit, target
		unit++
		p.Activate()
		ctx.Uniform1i(u.Location, u.Unit)
		tex := p.b.placeholder(target)
		u.Value = tex
		p.b.state = p.b.state.BindTexture(ctx, u.Unit, target, tex.ID())
		p.samplers = append(p.samplers, u)
	}
}

// stripArrayIndex turns "lights[0]" into "lights"; "lights[0].color" is
// left alone.
func stripArrayIndex(name string) string {
	if !strings.HasSuffix(name, "]") {
		return name
	}
	if i := strings.LastIndexByte(name, '['); i > 0 {
		return name[:i]
	}
	return name
}

func samplerTarget(typ uint32) (uint32, bool) {
	switch typ {
	case SAMPLER_2D, SAMPLER_2D_SHADOW:
		return TEXTURE_2D, true
	case SAMPLER_3D:
		return TEXTURE_3D, true
	case SAMPLER_CUBE:
		return TEXTURE_CUBE_MAP, true
	}
	return 0, false
}

func (b *Bolt) compileShader(src string, kind uint32) (uint32, error) {
	sh := b.ctx.CreateShader(kind)
	b.ctx.ShaderSource(sh, src)
	b.ctx.CompileShader(sh)
	if b.ctx.GetShaderi(sh, COMPILE_STATUS) == 0 {
		log := b.ctx.GetShaderInfoLog(sh)
		b.ctx.DeleteShader(sh)
		stage := "vertex"
		if kind == FRAGMENT_SHADER {
			stage = "fragment"
		}
		return 0, fmt.Errorf("%w (%s): %s", ErrShaderCompile, stage, log)
	}
	return sh, nil
}

func (b *Bolt) linkProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vs, err := b.compileShader(vertexSrc, VERTEX_SHADER)
	if err != nil {
		return 0, err
	}
	fs, err := b.compileShader(fragmentSrc, FRAGMENT_SHADER)
	if err != nil {
		b.ctx.DeleteShader(vs)
		return 0, err
	}
	prog := b.ctx.CreateProgram()
	b.ctx.AttachShader(prog, vs)
	b.ctx.AttachShader(prog, fs)
	b.ctx.LinkProgram(prog)
	b.ctx.DeleteShader(vs)
	b.ctx.DeleteShader(fs)

	if b.ctx.GetProgrami(prog, LINK_STATUS) == 0 {
		log := b.ctx.GetProgramInfoLog(prog)
		b.ctx.DeleteProgram(prog)
		return 0, fmt.Errorf("%w: %s", ErrProgramLink, log)
	}
	return prog, nil
}
