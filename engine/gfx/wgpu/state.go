package wgpubackend

import (
	"slices"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/render"
)

// blendState maps a blend mode to the colour target blend. BlendNone
// returns nil, which writes the fragment colour unblended.
func blendState(mode render.BlendMode) *wgpu.BlendState {
	var src, dst wgpu.BlendFactor
	switch mode {
	case render.BlendAlpha:
		src, dst = wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOneMinusSrcAlpha
	case render.BlendAdditive:
		src, dst = wgpu.BlendFactorSrcAlpha, wgpu.BlendFactorOne
	case render.BlendPremultiplied:
		src, dst = wgpu.BlendFactorOne, wgpu.BlendFactorOneMinusSrcAlpha
	default:
		return nil
	}
	return &wgpu.BlendState{
		Color: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: src, DstFactor: dst},
		Alpha: wgpu.BlendComponent{Operation: wgpu.BlendOperationAdd, SrcFactor: wgpu.BlendFactorOne, DstFactor: wgpu.BlendFactorOneMinusSrcAlpha},
	}
}

// cullMode maps a cull face. WebGPU cannot cull both faces, so
// CullFrontAndBack reports false and the caller skips the draw.
func cullMode(face render.CullFace) (wgpu.CullMode, bool) {
	switch face {
	case render.CullBack:
		return wgpu.CullModeBack, true
	case render.CullFront:
		return wgpu.CullModeFront, true
	case render.CullNone:
		return wgpu.CullModeNone, true
	}
	return wgpu.CullModeNone, false
}

func topology(mode render.DrawMode) wgpu.PrimitiveTopology {
	switch mode {
	case render.TriangleStrip:
		return wgpu.PrimitiveTopologyTriangleStrip
	case render.Lines:
		return wgpu.PrimitiveTopologyLineList
	case render.LineStrip:
		return wgpu.PrimitiveTopologyLineStrip
	case render.Points:
		return wgpu.PrimitiveTopologyPointList
	}
	return wgpu.PrimitiveTopologyTriangleList
}

// depthCompare matches the GL backend's LEQUAL depth function.
func depthCompare(test bool) wgpu.CompareFunction {
	if !test {
		return wgpu.CompareFunctionAlways
	}
	return wgpu.CompareFunctionLessEqual
}

func powerPreference(pref string) wgpu.PowerPreference {
	switch pref {
	case "high-performance":
		return wgpu.PowerPreferenceHighPerformance
	case "low-power":
		return wgpu.PowerPreferenceLowPower
	}
	return wgpu.PowerPreferenceUndefined
}

func presentMode(vsync bool) wgpu.PresentMode {
	if vsync {
		return wgpu.PresentModeFifo
	}
	return wgpu.PresentModeImmediate
}

// sampleCount clamps a requested MSAA count to the 1 or 4 samples every
// WebGPU adapter supports for render attachments.
func sampleCount(requested int) uint32 {
	if requested > 1 {
		return 4
	}
	return 1
}

// alphaMode picks the surface compositing mode from the context options
// among the modes the surface supports.
func alphaMode(alpha, premultiplied bool, supported []wgpu.CompositeAlphaMode) wgpu.CompositeAlphaMode {
	want := wgpu.CompositeAlphaModeOpaque
	if alpha {
		want = wgpu.CompositeAlphaModeUnpremultiplied
		if premultiplied {
			want = wgpu.CompositeAlphaModePremultiplied
		}
	}
	if slices.Contains(supported, want) || len(supported) == 0 {
		return want
	}
	return supported[0]
}

// surfaceFormat prefers an sRGB RGBA or BGRA format.
func surfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8UnormSrgb || f == wgpu.TextureFormatRGBA8UnormSrgb {
			return f
		}
	}
	if len(formats) > 0 {
		return formats[0]
	}
	return wgpu.TextureFormatBGRA8UnormSrgb
}

func indexFormat(fits16 bool) wgpu.IndexFormat {
	if fits16 {
		return wgpu.IndexFormatUint16
	}
	return wgpu.IndexFormatUint32
}

func vertexFormat(size int) wgpu.VertexFormat {
	switch size {
	case 1:
		return wgpu.VertexFormatFloat32
	case 2:
		return wgpu.VertexFormatFloat32x2
	case 3:
		return wgpu.VertexFormatFloat32x3
	}
	return wgpu.VertexFormatFloat32x4
}

// passState is the pipeline and bind groups currently set on the open
// render pass. Each set method returns the updated state and whether the
// pass needs the call.
type passState struct {
	pipeline *wgpu.RenderPipeline
	groups   [3]*wgpu.BindGroup
}

func (s passState) setPipeline(p *wgpu.RenderPipeline) (passState, bool) {
	if s.pipeline == p {
		return s, false
	}
	s.pipeline = p
	return s, true
}

func (s passState) setBindGroup(index uint32, g *wgpu.BindGroup) (passState, bool) {
	if s.groups[index] == g {
		return s, false
	}
	s.groups[index] = g
	return s, true
}
