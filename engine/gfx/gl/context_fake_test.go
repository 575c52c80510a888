package glbackend

import (
	"regexp"
	"strconv"
	"strings"
)

// fakeGL is a software Context. It tracks objects and bindings, records
// call counts and draws, and moves RGBA8 pixels for clears, blits, reads
// and a flat-fill rasterizer that paints the whole color target with the
// current program's "color" uniform.
type fakeGL struct {
	nextID  uint32
	nextLoc int32
	calls   map[string]int

	failLink     bool
	incompleteFB bool

	enabled    map[uint32]bool
	blendSrc   uint32
	blendDst   uint32
	cullMode   uint32
	depthFunc  uint32
	depthMask  bool
	viewport   [4]int32
	clearColor [4]float32
	clearMask  uint32

	shaders  map[uint32]*fakeShader
	programs map[uint32]*fakeProgram
	program  uint32
	uniforms map[int32]any

	buffers    map[uint32][]byte
	boundBuf   map[uint32]uint32
	vaos       map[uint32]bool
	vao        uint32
	divisors   map[uint32]uint32
	attribPtrs int

	unit       uint32
	unitBinds  map[uint32]map[uint32]uint32
	textures   map[uint32]*fakeImage
	rbs        map[uint32]*fakeImage
	rb         uint32
	fbs        map[uint32]map[uint32]uint32 // attachment point -> object id
	readFB     uint32
	drawFB     uint32
	drawBuffer []uint32

	draws []fakeDraw
}

type fakeShader struct {
	kind     uint32
	src      string
	compiled bool
}

type fakeUniform struct {
	name string
	size int32
	typ  uint32
	loc  int32
}

type fakeProgram struct {
	shaders  []uint32
	linked   bool
	uniforms []fakeUniform
}

type fakeImage struct {
	w, h    int
	samples int32
	format  int32
	pix     []byte
}

type fakeDraw struct {
	mode      uint32
	count     int32
	instances int32
	indexed   bool
	indexType uint32
	program   uint32
	vao       uint32
	blend     bool
	cull      bool
	cullMode  uint32
	depth     bool
	depthMask bool
}

func newFakeGL() *fakeGL {
	return &fakeGL{
		nextLoc:   1,
		calls:     map[string]int{},
		enabled:   map[uint32]bool{},
		depthMask: true,
		shaders:   map[uint32]*fakeShader{},
		programs:  map[uint32]*fakeProgram{},
		uniforms:  map[int32]any{},
		buffers:   map[uint32][]byte{},
		boundBuf:  map[uint32]uint32{},
		vaos:      map[uint32]bool{},
		divisors:  map[uint32]uint32{},
		unitBinds: map[uint32]map[uint32]uint32{},
		textures:  map[uint32]*fakeImage{},
		rbs:       map[uint32]*fakeImage{},
		fbs:       map[uint32]map[uint32]uint32{},
	}
}

func (f *fakeGL) hit(name string) { f.calls[name]++ }

func (f *fakeGL) id() uint32 {
	f.nextID++
	return f.nextID
}

func (f *fakeGL) GetString(name uint32) string {
	switch name {
	case VERSION:
		return "fake 3.0"
	case RENDERER:
		return "software"
	}
	return "fake"
}

func (f *fakeGL) Enable(c uint32) {
	f.hit("Enable")
	f.enabled[c] = true
}

func (f *fakeGL) Disable(c uint32) {
	f.hit("Disable")
	f.enabled[c] = false
}

func (f *fakeGL) BlendFunc(s, d uint32) {
	f.hit("BlendFunc")
	f.blendSrc, f.blendDst = s, d
}

func (f *fakeGL) BlendEquation(uint32) { f.hit("BlendEquation") }

func (f *fakeGL) CullFace(mode uint32) {
	f.hit("CullFace")
	f.cullMode = mode
}

func (f *fakeGL) FrontFace(uint32) { f.hit("FrontFace") }

func (f *fakeGL) DepthFunc(fn uint32) {
	f.hit("DepthFunc")
	f.depthFunc = fn
}

func (f *fakeGL) DepthMask(flag bool) {
	f.hit("DepthMask")
	f.depthMask = flag
}

func (f *fakeGL) Viewport(x, y, w, h int32) {
	f.hit("Viewport")
	f.viewport = [4]int32{x, y, w, h}
}

func (f *fakeGL) Scissor(x, y, w, h int32) { f.hit("Scissor") }

func (f *fakeGL) ClearColor(r, g, b, a float32) {
	f.hit("ClearColor")
	f.clearColor = [4]float32{r, g, b, a}
}

func (f *fakeGL) Clear(mask uint32) {
	f.hit("Clear")
	f.clearMask = mask
	if mask&COLOR_BUFFER_BIT != 0 {
		f.fill(f.drawFB, f.clearColor)
	}
}

func (f *fakeGL) ClearBufferfv(buffer uint32, _ int32, v []float32) {
	f.hit("ClearBufferfv")
	if buffer == COLOR && len(v) == 4 {
		f.fill(f.drawFB, [4]float32{v[0], v[1], v[2], v[3]})
	}
}

func (f *fakeGL) CreateShader(kind uint32) uint32 {
	id := f.id()
	f.shaders[id] = &fakeShader{kind: kind}
	return id
}

func (f *fakeGL) ShaderSource(sh uint32, src string) { f.shaders[sh].src = src }

func (f *fakeGL) CompileShader(sh uint32) {
	s := f.shaders[sh]
	s.compiled = !strings.Contains(s.src, "#error")
}

func (f *fakeGL) GetShaderi(sh, pname uint32) int32 {
	if pname == COMPILE_STATUS && f.shaders[sh].compiled {
		return 1
	}
	return 0
}

func (f *fakeGL) GetShaderInfoLog(uint32) string {
	return "ERROR: 0:1: '#error' : forced failure"
}

func (f *fakeGL) DeleteShader(sh uint32) {
	f.hit("DeleteShader")
	delete(f.shaders, sh)
}

func (f *fakeGL) CreateProgram() uint32 {
	id := f.id()
	f.programs[id] = &fakeProgram{}
	return id
}

func (f *fakeGL) AttachShader(p, sh uint32) {
	f.programs[p].shaders = append(f.programs[p].shaders, sh)
}

var uniformDecl = regexp.MustCompile(`uniform\s+(\w+)\s+(\w+)\s*(?:\[(\d+)\])?\s*;`)

var glslTypes = map[string]uint32{
	"float":       FLOAT,
	"int":         INT,
	"bool":        BOOL,
	"vec2":        FLOAT_VEC2,
	"vec3":        FLOAT_VEC3,
	"vec4":        FLOAT_VEC4,
	"mat3":        FLOAT_MAT3,
	"mat4":        FLOAT_MAT4,
	"sampler2D":   SAMPLER_2D,
	"sampler3D":   SAMPLER_3D,
	"samplerCube": SAMPLER_CUBE,
}

func (f *fakeGL) LinkProgram(p uint32) {
	f.hit("LinkProgram")
	prog := f.programs[p]
	prog.linked = !f.failLink
	seen := map[string]bool{}
	for _, sh := range prog.shaders {
		for _, m := range uniformDecl.FindAllStringSubmatch(f.shaders[sh].src, -1) {
			typ, name := glslTypes[m[1]], m[2]
			if seen[name] {
				continue
			}
			seen[name] = true
			u := fakeUniform{name: name, size: 1, typ: typ, loc: f.nextLoc}
			if m[3] != "" {
				n, _ := strconv.Atoi(m[3])
				u.name, u.size = name+"[0]", int32(n)
			}
			f.nextLoc++
			prog.uniforms = append(prog.uniforms, u)
		}
	}
}

func (f *fakeGL) GetProgrami(p, pname uint32) int32 {
	prog := f.programs[p]
	switch pname {
	case LINK_STATUS:
		if prog.linked {
			return 1
		}
	case ACTIVE_UNIFORMS:
		return int32(len(prog.uniforms))
	}
	return 0
}

func (f *fakeGL) GetProgramInfoLog(uint32) string { return "link failed: varying mismatch" }

func (f *fakeGL) DeleteProgram(p uint32) {
	f.hit("DeleteProgram")
	delete(f.programs, p)
}

func (f *fakeGL) UseProgram(p uint32) {
	f.hit("UseProgram")
	f.program = p
}

func (f *fakeGL) GetActiveUniform(p, index uint32) (string, int32, uint32) {
	u := f.programs[p].uniforms[index]
	return u.name, u.size, u.typ
}

func (f *fakeGL) GetUniformLocation(p uint32, name string) int32 {
	for _, u := range f.programs[p].uniforms {
		if u.name == name || strings.TrimSuffix(u.name, "[0]") == name {
			return u.loc
		}
	}
	return -1
}

func (f *fakeGL) setUniform(name string, loc int32, v any) {
	f.hit(name)
	f.uniforms[loc] = v
}

func (f *fakeGL) Uniform1i(loc, v int32)               { f.setUniform("Uniform1i", loc, v) }
func (f *fakeGL) Uniform1f(loc int32, v float32)       { f.setUniform("Uniform1f", loc, v) }
func (f *fakeGL) Uniform2f(loc int32, x, y float32)    { f.setUniform("Uniform2f", loc, []float32{x, y}) }
func (f *fakeGL) Uniform3f(loc int32, x, y, z float32) { f.setUniform("Uniform3f", loc, []float32{x, y, z}) }
func (f *fakeGL) Uniform4f(loc int32, x, y, z, w float32) {
	f.setUniform("Uniform4f", loc, []float32{x, y, z, w})
}
func (f *fakeGL) Uniform1fv(loc int32, v []float32) {
	f.setUniform("Uniform1fv", loc, append([]float32(nil), v...))
}
func (f *fakeGL) UniformMatrix3fv(loc int32, v []float32) {
	f.setUniform("UniformMatrix3fv", loc, append([]float32(nil), v...))
}
func (f *fakeGL) UniformMatrix4fv(loc int32, v []float32) {
	f.setUniform("UniformMatrix4fv", loc, append([]float32(nil), v...))
}

func (f *fakeGL) CreateBuffer() uint32 {
	id := f.id()
	f.buffers[id] = nil
	return id
}

func (f *fakeGL) BindBuffer(target, buf uint32) { f.boundBuf[target] = buf }

func (f *fakeGL) BufferData(target uint32, data []byte, _ uint32) {
	f.hit("BufferData")
	f.buffers[f.boundBuf[target]] = append([]byte(nil), data...)
}

func (f *fakeGL) BufferSubData(target uint32, offset int, data []byte) {
	f.hit("BufferSubData")
	copy(f.buffers[f.boundBuf[target]][offset:], data)
}

func (f *fakeGL) DeleteBuffer(buf uint32) {
	f.hit("DeleteBuffer")
	delete(f.buffers, buf)
}

func (f *fakeGL) CreateVertexArray() uint32 {
	id := f.id()
	f.vaos[id] = true
	return id
}

func (f *fakeGL) BindVertexArray(v uint32) { f.vao = v }

func (f *fakeGL) DeleteVertexArray(v uint32) {
	f.hit("DeleteVertexArray")
	delete(f.vaos, v)
}

func (f *fakeGL) EnableVertexAttribArray(uint32) {}

func (f *fakeGL) VertexAttribPointer(uint32, int32, uint32, bool, int32, int32) { f.attribPtrs++ }

func (f *fakeGL) VertexAttribDivisor(index, divisor uint32) {
	f.hit("VertexAttribDivisor")
	f.divisors[index] = divisor
}

func (f *fakeGL) draw(mode uint32, count, instances int32, indexed bool, typ uint32) {
	f.hit("Draw")
	f.draws = append(f.draws, fakeDraw{
		mode:      mode,
		count:     count,
		instances: instances,
		indexed:   indexed,
		indexType: typ,
		program:   f.program,
		vao:       f.vao,
		blend:     f.enabled[BLEND],
		cull:      f.enabled[CULL_FACE],
		cullMode:  f.cullMode,
		depth:     f.enabled[DEPTH_TEST],
		depthMask: f.depthMask,
	})
	if prog, ok := f.programs[f.program]; ok {
		loc := int32(-1)
		for _, u := range prog.uniforms {
			if u.name == "color" {
				loc = u.loc
			}
		}
		if c, ok := f.uniforms[loc].([]float32); ok && len(c) == 4 {
			f.fill(f.drawFB, [4]float32{c[0], c[1], c[2], c[3]})
		}
	}
}

func (f *fakeGL) DrawArrays(mode uint32, _, count int32) { f.draw(mode, count, 0, false, 0) }

func (f *fakeGL) DrawElements(mode uint32, count int32, typ uint32, _ int) {
	f.draw(mode, count, 0, true, typ)
}

func (f *fakeGL) DrawArraysInstanced(mode uint32, _, count, n int32) {
	f.draw(mode, count, n, false, 0)
}

func (f *fakeGL) DrawElementsInstanced(mode uint32, count int32, typ uint32, _ int, n int32) {
	f.draw(mode, count, n, true, typ)
}

func (f *fakeGL) CreateTexture() uint32 {
	id := f.id()
	f.textures[id] = &fakeImage{}
	return id
}

func (f *fakeGL) DeleteTexture(t uint32) {
	f.hit("DeleteTexture")
	delete(f.textures, t)
}

func (f *fakeGL) ActiveTexture(unit uint32) {
	f.hit("ActiveTexture")
	f.unit = unit - TEXTURE0
}

func (f *fakeGL) BindTexture(target, t uint32) {
	f.hit("BindTexture")
	if f.unitBinds[f.unit] == nil {
		f.unitBinds[f.unit] = map[uint32]uint32{}
	}
	f.unitBinds[f.unit][target] = t
}

func (f *fakeGL) bound(target uint32) *fakeImage {
	if target >= TEXTURE_CUBE_MAP_POSITIVE_X && target < TEXTURE_CUBE_MAP_POSITIVE_X+6 {
		target = TEXTURE_CUBE_MAP
	}
	return f.textures[f.unitBinds[f.unit][target]]
}

func (f *fakeGL) TexImage2D(target uint32, _ int32, internal, w, h int32, _, _ uint32, pixels []byte) {
	f.hit("TexImage2D")
	img := f.bound(target)
	if img == nil {
		return
	}
	img.w, img.h, img.format = int(w), int(h), internal
	img.pix = make([]byte, int(w)*int(h)*4)
	copy(img.pix, pixels)
}

func (f *fakeGL) TexImage3D(target uint32, _ int32, internal, w, h, d int32, _, _ uint32, pixels []byte) {
	f.hit("TexImage3D")
	img := f.bound(target)
	if img == nil {
		return
	}
	img.w, img.h, img.format = int(w), int(h)*int(d), internal
	img.pix = make([]byte, int(w)*int(h)*int(d)*4)
	copy(img.pix, pixels)
}

func (f *fakeGL) TexParameteri(uint32, uint32, int32) { f.hit("TexParameteri") }
func (f *fakeGL) GenerateMipmap(uint32)               { f.hit("GenerateMipmap") }

func (f *fakeGL) CreateFramebuffer() uint32 {
	id := f.id()
	f.fbs[id] = map[uint32]uint32{}
	return id
}

func (f *fakeGL) DeleteFramebuffer(fb uint32) {
	f.hit("DeleteFramebuffer")
	delete(f.fbs, fb)
}

func (f *fakeGL) BindFramebuffer(target, fb uint32) {
	f.hit("BindFramebuffer")
	switch target {
	case READ_FRAMEBUFFER:
		f.readFB = fb
	case DRAW_FRAMEBUFFER:
		f.drawFB = fb
	default:
		f.readFB, f.drawFB = fb, fb
	}
}

func (f *fakeGL) FramebufferTexture2D(_, attachment, _, t uint32, _ int32) {
	f.fbs[f.drawFB][attachment] = t
}

func (f *fakeGL) FramebufferRenderbuffer(_, attachment, _, rb uint32) {
	f.fbs[f.drawFB][attachment] = rb
}

func (f *fakeGL) CheckFramebufferStatus(uint32) uint32 {
	if f.incompleteFB || f.colorTarget(f.drawFB) == nil {
		return 0x8CD6 // FRAMEBUFFER_INCOMPLETE_ATTACHMENT
	}
	return FRAMEBUFFER_COMPLETE
}

func (f *fakeGL) DrawBuffers(bufs []uint32) { f.drawBuffer = append([]uint32(nil), bufs...) }

func (f *fakeGL) BlitFramebuffer(_, _, _, _, _, _, _, _ int32, mask, _ uint32) {
	f.hit("BlitFramebuffer")
	if mask&COLOR_BUFFER_BIT == 0 {
		return
	}
	src, dst := f.colorTarget(f.readFB), f.colorTarget(f.drawFB)
	if src == nil || dst == nil {
		return
	}
	copy(dst.pix, src.pix)
}

func (f *fakeGL) ReadPixels(dst []byte, x, y, w, h int32, _, _ uint32) {
	f.hit("ReadPixels")
	img := f.colorTarget(f.readFB)
	if img == nil {
		return
	}
	for row := range int(h) {
		start := ((int(y)+row)*img.w + int(x)) * 4
		copy(dst[row*int(w)*4:(row+1)*int(w)*4], img.pix[start:start+int(w)*4])
	}
}

func (f *fakeGL) CreateRenderbuffer() uint32 {
	id := f.id()
	f.rbs[id] = &fakeImage{}
	return id
}

func (f *fakeGL) DeleteRenderbuffer(rb uint32) {
	f.hit("DeleteRenderbuffer")
	delete(f.rbs, rb)
}

func (f *fakeGL) BindRenderbuffer(_, rb uint32) { f.rb = rb }

func (f *fakeGL) RenderbufferStorage(_, internal uint32, w, h int32) {
	f.RenderbufferStorageMultisample(0, 0, internal, w, h)
}

func (f *fakeGL) RenderbufferStorageMultisample(_ uint32, samples int32, internal uint32, w, h int32) {
	img := f.rbs[f.rb]
	if img == nil {
		return
	}
	img.w, img.h, img.samples, img.format = int(w), int(h), samples, int32(internal)
	img.pix = make([]byte, int(w)*int(h)*4)
}

// colorTarget resolves COLOR_ATTACHMENT0 of fb to its texture or
// renderbuffer storage. The default framebuffer has none.
func (f *fakeGL) colorTarget(fb uint32) *fakeImage {
	attach, ok := f.fbs[fb]
	if !ok {
		return nil
	}
	id := attach[COLOR_ATTACHMENT0]
	if img, ok := f.textures[id]; ok {
		return img
	}
	return f.rbs[id]
}

func (f *fakeGL) fill(fb uint32, c [4]float32) {
	img := f.colorTarget(fb)
	if img == nil {
		return
	}
	px := [4]byte{}
	for i, v := range c {
		px[i] = byte(min(max(v, 0), 1)*255 + 0.5)
	}
	for i := 0; i+4 <= len(img.pix); i += 4 {
		copy(img.pix[i:i+4], px[:])
	}
}

// fakeCanvas is a fixed-size display surface.
type fakeCanvas struct {
	w, h   int
	dpr    float32
	bw, bh int
}

func (c *fakeCanvas) DisplaySize() (int, int)       { return c.w, c.h }
func (c *fakeCanvas) DevicePixelRatio() float32     { return c.dpr }
func (c *fakeCanvas) SetDrawingBufferSize(w, h int) { c.bw, c.bh = w, h }
