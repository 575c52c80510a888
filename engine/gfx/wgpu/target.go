package wgpubackend

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

const depthFormat = wgpu.TextureFormatDepth24Plus

// RenderTargetOptions configure an offscreen target. Samples > 1 renders
// into a multisampled colour attachment that resolves into Color at the
// end of the pass.
type RenderTargetOptions struct {
	Width, Height int
	Depth         bool
	Samples       int
	Format        wgpu.TextureFormat
}

// RenderTarget is an offscreen colour texture with optional depth and MSAA.
// Bind it with BoltWGPU.SetRenderTarget; Color can then be sampled by
// other programs.
type RenderTarget struct {
	Color *Texture
	Depth *Texture

	b       *BoltWGPU
	msaa    *Texture
	samples uint32
}

func NewRenderTarget(b *BoltWGPU, opts RenderTargetOptions) (*RenderTarget, error) {
	rt := &RenderTarget{b: b, samples: sampleCount(opts.Samples)}
	var err error
	rt.Color, err = NewTexture(b, opts.Width, opts.Height, TextureOptions{
		Label:        "render target color",
		Format:       opts.Format,
		RenderTarget: true,
	})
	if err != nil {
		return nil, err
	}
	if rt.samples > 1 {
		rt.msaa, err = NewTexture(b, opts.Width, opts.Height, TextureOptions{
			Label:   "render target msaa",
			Format:  rt.Color.Format(),
			Samples: rt.samples,
		})
		if err != nil {
			rt.Delete()
			return nil, err
		}
	}
	if opts.Depth {
		rt.Depth, err = NewTexture(b, opts.Width, opts.Height, TextureOptions{
			Label:   "render target depth",
			Format:  depthFormat,
			Samples: rt.samples,
		})
		if err != nil {
			rt.Delete()
			return nil, err
		}
	}
	return rt, nil
}

func (rt *RenderTarget) Width() int                 { return rt.Color.Width() }
func (rt *RenderTarget) Height() int                { return rt.Color.Height() }
func (rt *RenderTarget) Samples() uint32            { return rt.samples }
func (rt *RenderTarget) Format() wgpu.TextureFormat { return rt.Color.Format() }

// Resize recreates every attachment at w×h.
func (rt *RenderTarget) Resize(w, h int) error {
	for _, t := range []*Texture{rt.Color, rt.msaa, rt.Depth} {
		if t == nil {
			continue
		}
		if err := t.Resize(w, h); err != nil {
			return fmt.Errorf("resize render target: %w", err)
		}
	}
	return nil
}

func (rt *RenderTarget) Delete() {
	for _, t := range []*Texture{rt.Color, rt.msaa, rt.Depth} {
		if t != nil {
			t.Delete()
		}
	}
	if rt.b.target == rt {
		rt.b.target = nil
	}
}

func (rt *RenderTarget) passKey() pipelineKey {
	return pipelineKey{format: rt.Format(), samples: rt.samples, depth: rt.Depth != nil}
}

func (rt *RenderTarget) passDescriptor(clear wgpu.Color) *wgpu.RenderPassDescriptor {
	var msaa, depth *wgpu.TextureView
	if rt.msaa != nil {
		msaa = rt.msaa.View()
	}
	if rt.Depth != nil {
		depth = rt.Depth.View()
	}
	return passDescriptor(rt.Color.View(), msaa, depth, clear)
}

// passDescriptor clears target (or msaa, resolving into target) and depth.
func passDescriptor(target, msaa, depth *wgpu.TextureView, clear wgpu.Color) *wgpu.RenderPassDescriptor {
	color := wgpu.RenderPassColorAttachment{
		View:       target,
		LoadOp:     wgpu.LoadOpClear,
		StoreOp:    wgpu.StoreOpStore,
		ClearValue: clear,
	}
	if msaa != nil {
		color.View = msaa
		color.ResolveTarget = target
		color.StoreOp = wgpu.StoreOpDiscard
	}
	desc := &wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{color},
	}
	if depth != nil {
		desc.DepthStencilAttachment = &wgpu.RenderPassDepthStencilAttachment{
			View:            depth,
			DepthLoadOp:     wgpu.LoadOpClear,
			DepthStoreOp:    wgpu.StoreOpStore,
			DepthClearValue: 1,
		}
	}
	return desc
}
