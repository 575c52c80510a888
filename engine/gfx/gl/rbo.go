package glbackend

// RBO is a renderbuffer, multisampled when samples > 0.
type RBO struct {
	b             *Bolt
	id            uint32
	format        uint32
	samples       int32
	width, height int
}

func NewRBO(b *Bolt, w, h int, format uint32, samples int32) *RBO {
	r := &RBO{b: b, id: b.ctx.CreateRenderbuffer(), format: format, samples: samples}
	r.Resize(w, h)
	return r
}

func (r *RBO) ID() uint32     { return r.id }
func (r *RBO) Format() uint32 { return r.format }
func (r *RBO) Samples() int32 { return r.samples }
func (r *RBO) Width() int     { return r.width }
func (r *RBO) Height() int    { return r.height }

// Resize reallocates storage at w×h.
func (r *RBO) Resize(w, h int) {
	r.width, r.height = w, h
	ctx := r.b.ctx
	ctx.BindRenderbuffer(RENDERBUFFER, r.id)
	if r.samples > 0 {
		ctx.RenderbufferStorageMultisample(RENDERBUFFER, r.samples, r.format, int32(w), int32(h))
	} else {
		ctx.RenderbufferStorage(RENDERBUFFER, r.format, int32(w), int32(h))
	}
	ctx.BindRenderbuffer(RENDERBUFFER, 0)
}

func (r *RBO) Delete() {
	if r.id == 0 {
		return
	}
	r.b.ctx.DeleteRenderbuffer(r.id)
	r.id = 0
}
