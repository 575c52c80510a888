package glbackend

import "github.com/robsouthgate4/bolt-gl-sub000/engine/render"

// MaxTextureUnits is the number of texture units State tracks.
const MaxTextureUnits = 32

// State caches the GPU state the renderer has set so repeated binds can be
// skipped. Every bind method takes the Context, issues the call only when
// the cached value differs, and returns the updated State. Any GL call made
// around these methods desynchronises the cache.
type State struct {
	program    uint32
	hasProgram bool
	unit       int32 // -1 until the first ActiveTexture
	textures   [MaxTextureUnits]uint32

	blendKnown bool
	blend      render.BlendMode
	cullKnown  bool
	cull       render.CullFace

	depthKnown bool
	depthTest  bool
	depthWrite bool
}

func NewState() State { return State{unit: -1} }

func (s State) Program() uint32   { return s.program }
func (s State) ActiveUnit() int32 { return s.unit }

func (s State) BoundTexture(unit int32) uint32 {
	if unit < 0 || unit >= MaxTextureUnits {
		return 0
	}
	return s.textures[unit]
}

func (s State) UseProgram(ctx Context, program uint32) State {
	if s.hasProgram && s.program == program {
		return s
	}
	ctx.UseProgram(program)
	s.program, s.hasProgram = program, true
	return s
}

func (s State) ActiveTexture(ctx Context, unit int32) State {
	if s.unit == unit {
		return s
	}
	ctx.ActiveTexture(TEXTURE0 + uint32(unit))
	s.unit = unit
	return s
}

// BindTexture makes texture current on unit, activating the unit first.
func (s State) BindTexture(ctx Context, unit int32, target, texture uint32) State {
	if unit < 0 || unit >= MaxTextureUnits {
		return s
	}
	if s.textures[unit] == texture {
		return s
	}
	s = s.ActiveTexture(ctx, unit)
	ctx.BindTexture(target, texture)
	s.textures[unit] = texture
	return s
}

// SetBlend enables blending with mode's factors; BlendNone disables it.
func (s State) SetBlend(ctx Context, mode render.BlendMode) State {
	if s.blendKnown && s.blend == mode {
		return s
	}
	wasOn := s.blendKnown && s.blend != render.BlendNone
	if mode == render.BlendNone {
		ctx.Disable(BLEND)
	} else {
		if !wasOn {
			ctx.Enable(BLEND)
		}
		src, dst := blendFactors(mode)
		ctx.BlendFunc(src, dst)
	}
	s.blend, s.blendKnown = mode, true
	return s
}

// SetCull culls face; CullNone disables culling.
func (s State) SetCull(ctx Context, face render.CullFace) State {
	if s.cullKnown && s.cull == face {
		return s
	}
	wasOn := s.cullKnown && s.cull != render.CullNone
	if face == render.CullNone {
		ctx.Disable(CULL_FACE)
	} else {
		if !wasOn {
			ctx.Enable(CULL_FACE)
		}
		ctx.CullFace(cullMode(face))
	}
	s.cull, s.cullKnown = face, true
	return s
}

// SetDepth toggles the depth test and depth writes.
func (s State) SetDepth(ctx Context, test, write bool) State {
	if s.depthKnown && s.depthTest == test && s.depthWrite == write {
		return s
	}
	if !s.depthKnown || s.depthTest != test {
		if test {
			ctx.Enable(DEPTH_TEST)
		} else {
			ctx.Disable(DEPTH_TEST)
		}
	}
	if !s.depthKnown || s.depthWrite != write {
		ctx.DepthMask(write)
	}
	s.depthTest, s.depthWrite, s.depthKnown = test, write, true
	return s
}

// ForgetProgram drops program from the cache after it was deleted.
func (s State) ForgetProgram(program uint32) State {
	if s.hasProgram && s.program == program {
		s.program, s.hasProgram = 0, false
	}
	return s
}

// ForgetTexture clears every unit that held texture.
func (s State) ForgetTexture(texture uint32) State {
	for i := range s.textures {
		if s.textures[i] == texture {
			s.textures[i] = 0
		}
	}
	return s
}

func blendFactors(mode render.BlendMode) (src, dst uint32) {
	switch mode {
	case render.BlendAdditive:
		return SRC_ALPHA, ONE
	case render.BlendPremultiplied:
		return ONE, ONE_MINUS_SRC_ALPHA
	default:
		return SRC_ALPHA, ONE_MINUS_SRC_ALPHA
	}
}

func cullMode(face render.CullFace) uint32 {
	switch face {
	case render.CullFront:
		return FRONT
	case render.CullFrontAndBack:
		return FRONT_AND_BACK
	default:
		return BACK
	}
}
