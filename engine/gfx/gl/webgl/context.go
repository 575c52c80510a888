//go:build js && wasm

// Package webgl implements glbackend.Context on a browser WebGL2 context.
package webgl

import (
	"errors"
	"syscall/js"
	"unsafe"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	glbackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/gl"
)

var _ glbackend.Context = (*Context)(nil)

var ErrNoWebGL2 = errors.New("webgl: webgl2 context unavailable")

// Context maps uint32 object names onto the WebGL2 JS objects they stand
// for. Uniform locations get their own int32 table.
type Context struct {
	gl      js.Value
	objects map[uint32]js.Value
	next    uint32
	locs    map[int32]js.Value
	nextLoc int32
}

// NewContext requests a WebGL2 context on canvas with attributes taken from
// opts.
func NewContext(canvas js.Value, opts core.ContextOptions) (*Context, error) {
	attrs := map[string]any{
		"antialias":             opts.Antialias,
		"alpha":                 opts.Alpha,
		"premultipliedAlpha":    opts.PremultipliedAlpha,
		"stencil":               opts.Stencil,
		"preserveDrawingBuffer": opts.PreserveDrawingBuffer,
		"powerPreference":       powerPreference(opts.PowerPreference),
	}
	gl := canvas.Call("getContext", "webgl2", attrs)
	if gl.IsNull() || gl.IsUndefined() {
		return nil, ErrNoWebGL2
	}
	return &Context{
		gl:      gl,
		objects: map[uint32]js.Value{},
		locs:    map[int32]js.Value{},
	}, nil
}

func powerPreference(p string) string {
	if p == "" {
		return "default"
	}
	return p
}

func (c *Context) put(v js.Value) uint32 {
	if v.IsNull() || v.IsUndefined() {
		return 0
	}
	c.next++
	c.objects[c.next] = v
	return c.next
}

func (c *Context) obj(id uint32) js.Value {
	if id == 0 {
		return js.Null()
	}
	if v, ok := c.objects[id]; ok {
		return v
	}
	return js.Null()
}

func (c *Context) drop(id uint32) js.Value {
	v := c.obj(id)
	delete(c.objects, id)
	return v
}

func (c *Context) GetString(name uint32) string {
	v := c.gl.Call("getParameter", name)
	if v.Type() != js.TypeString {
		return ""
	}
	return v.String()
}

func (c *Context) Enable(flag uint32)               { c.gl.Call("enable", flag) }
func (c *Context) Disable(flag uint32)              { c.gl.Call("disable", flag) }
func (c *Context) BlendFunc(s, d uint32)            { c.gl.Call("blendFunc", s, d) }
func (c *Context) BlendEquation(mode uint32)        { c.gl.Call("blendEquation", mode) }
func (c *Context) CullFace(mode uint32)             { c.gl.Call("cullFace", mode) }
func (c *Context) FrontFace(mode uint32)            { c.gl.Call("frontFace", mode) }
func (c *Context) DepthFunc(fn uint32)              { c.gl.Call("depthFunc", fn) }
func (c *Context) DepthMask(flag bool)              { c.gl.Call("depthMask", flag) }
func (c *Context) Viewport(x, y, w, h int32)        { c.gl.Call("viewport", x, y, w, h) }
func (c *Context) Scissor(x, y, w, h int32)         { c.gl.Call("scissor", x, y, w, h) }
func (c *Context) ClearColor(r, g, b, a float32)    { c.gl.Call("clearColor", r, g, b, a) }
func (c *Context) Clear(mask uint32)                { c.gl.Call("clear", mask) }
func (c *Context) CreateShader(kind uint32) uint32  { return c.put(c.gl.Call("createShader", kind)) }
func (c *Context) ShaderSource(sh uint32, s string) { c.gl.Call("shaderSource", c.obj(sh), s) }
func (c *Context) CompileShader(sh uint32)          { c.gl.Call("compileShader", c.obj(sh)) }
func (c *Context) DeleteShader(sh uint32)           { c.gl.Call("deleteShader", c.drop(sh)) }
func (c *Context) CreateProgram() uint32            { return c.put(c.gl.Call("createProgram")) }
func (c *Context) AttachShader(p, sh uint32)        { c.gl.Call("attachShader", c.obj(p), c.obj(sh)) }
func (c *Context) LinkProgram(p uint32)             { c.gl.Call("linkProgram", c.obj(p)) }
func (c *Context) UseProgram(p uint32)              { c.gl.Call("useProgram", c.obj(p)) }

func (c *Context) ClearBufferfv(buffer uint32, drawBuffer int32, value []float32) {
	c.gl.Call("clearBufferfv", buffer, drawBuffer, float32Array(value))
}

func (c *Context) GetShaderi(sh, pname uint32) int32 {
	return paramInt(c.gl.Call("getShaderParameter", c.obj(sh), pname))
}

func (c *Context) GetShaderInfoLog(sh uint32) string {
	return c.gl.Call("getShaderInfoLog", c.obj(sh)).String()
}

func (c *Context) GetProgrami(p, pname uint32) int32 {
	return paramInt(c.gl.Call("getProgramParameter", c.obj(p), pname))
}

func (c *Context) GetProgramInfoLog(p uint32) string {
	return c.gl.Call("getProgramInfoLog", c.obj(p)).String()
}

// DeleteProgram also releases the uniform locations handed out for it.
func (c *Context) DeleteProgram(p uint32) {
	prog := c.drop(p)
	for loc, v := range c.locs {
		if v.Get("_program").Equal(prog) {
			delete(c.locs, loc)
		}
	}
	c.gl.Call("deleteProgram", prog)
}

func (c *Context) GetActiveUniform(p, index uint32) (string, int32, uint32) {
	info := c.gl.Call("getActiveUniform", c.obj(p), index)
	if info.IsNull() {
		return "", 0, 0
	}
	return info.Get("name").String(), int32(info.Get("size").Int()), uint32(info.Get("type").Int())
}

func (c *Context) GetUniformLocation(p uint32, name string) int32 {
	prog := c.obj(p)
	loc := c.gl.Call("getUniformLocation", prog, name)
	if loc.IsNull() {
		return -1
	}
	loc.Set("_program", prog)
	c.nextLoc++
	c.locs[c.nextLoc] = loc
	return c.nextLoc
}

func (c *Context) loc(l int32) js.Value {
	if v, ok := c.locs[l]; ok {
		return v
	}
	return js.Null()
}

func (c *Context) Uniform1i(l, v int32)                  { c.gl.Call("uniform1i", c.loc(l), v) }
func (c *Context) Uniform1f(l int32, v float32)          { c.gl.Call("uniform1f", c.loc(l), v) }
func (c *Context) Uniform2f(l int32, x, y float32)       { c.gl.Call("uniform2f", c.loc(l), x, y) }
func (c *Context) Uniform3f(l int32, x, y, z float32)    { c.gl.Call("uniform3f", c.loc(l), x, y, z) }
func (c *Context) Uniform4f(l int32, x, y, z, w float32) { c.gl.Call("uniform4f", c.loc(l), x, y, z, w) }

func (c *Context) Uniform1fv(l int32, v []float32) {
	c.gl.Call("uniform1fv", c.loc(l), float32Array(v))
}

func (c *Context) UniformMatrix3fv(l int32, v []float32) {
	c.gl.Call("uniformMatrix3fv", c.loc(l), false, float32Array(v))
}

func (c *Context) UniformMatrix4fv(l int32, v []float32) {
	c.gl.Call("uniformMatrix4fv", c.loc(l), false, float32Array(v))
}

func (c *Context) CreateBuffer() uint32          { return c.put(c.gl.Call("createBuffer")) }
func (c *Context) BindBuffer(target, buf uint32) { c.gl.Call("bindBuffer", target, c.obj(buf)) }
func (c *Context) DeleteBuffer(buf uint32)       { c.gl.Call("deleteBuffer", c.drop(buf)) }

func (c *Context) BufferData(target uint32, data []byte, usage uint32) {
	if len(data) == 0 {
		c.gl.Call("bufferData", target, 0, usage)
		return
	}
	c.gl.Call("bufferData", target, uint8Array(data), usage)
}

func (c *Context) BufferSubData(target uint32, offset int, data []byte) {
	c.gl.Call("bufferSubData", target, offset, uint8Array(data))
}

func (c *Context) CreateVertexArray() uint32            { return c.put(c.gl.Call("createVertexArray")) }
func (c *Context) BindVertexArray(v uint32)             { c.gl.Call("bindVertexArray", c.obj(v)) }
func (c *Context) DeleteVertexArray(v uint32)           { c.gl.Call("deleteVertexArray", c.drop(v)) }
func (c *Context) EnableVertexAttribArray(index uint32) { c.gl.Call("enableVertexAttribArray", index) }
func (c *Context) VertexAttribDivisor(index, d uint32)  { c.gl.Call("vertexAttribDivisor", index, d) }

func (c *Context) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32) {
	c.gl.Call("vertexAttribPointer", index, size, typ, normalized, stride, offset)
}

func (c *Context) DrawArrays(mode uint32, first, count int32) {
	c.gl.Call("drawArrays", mode, first, count)
}

func (c *Context) DrawElements(mode uint32, count int32, typ uint32, offset int) {
	c.gl.Call("drawElements", mode, count, typ, offset)
}

func (c *Context) DrawArraysInstanced(mode uint32, first, count, n int32) {
	c.gl.Call("drawArraysInstanced", mode, first, count, n)
}

func (c *Context) DrawElementsInstanced(mode uint32, count int32, typ uint32, offset int, n int32) {
	c.gl.Call("drawElementsInstanced", mode, count, typ, offset, n)
}

func (c *Context) CreateTexture() uint32                   { return c.put(c.gl.Call("createTexture")) }
func (c *Context) DeleteTexture(t uint32)                  { c.gl.Call("deleteTexture", c.drop(t)) }
func (c *Context) ActiveTexture(unit uint32)               { c.gl.Call("activeTexture", unit) }
func (c *Context) BindTexture(target, t uint32)            { c.gl.Call("bindTexture", target, c.obj(t)) }
func (c *Context) TexParameteri(target, p uint32, v int32) { c.gl.Call("texParameteri", target, p, v) }
func (c *Context) GenerateMipmap(target uint32)            { c.gl.Call("generateMipmap", target) }

func (c *Context) TexImage2D(target uint32, level, internalFormat, w, h int32, format, typ uint32, pixels []byte) {
	c.gl.Call("texImage2D", target, level, internalFormat, w, h, 0, format, typ, pixelView(typ, pixels))
}

func (c *Context) TexImage3D(target uint32, level, internalFormat, w, h, d int32, format, typ uint32, pixels []byte) {
	c.gl.Call("texImage3D", target, level, internalFormat, w, h, d, 0, format, typ, pixelView(typ, pixels))
}

func (c *Context) CreateFramebuffer() uint32         { return c.put(c.gl.Call("createFramebuffer")) }
func (c *Context) DeleteFramebuffer(fb uint32)       { c.gl.Call("deleteFramebuffer", c.drop(fb)) }
func (c *Context) BindFramebuffer(target, fb uint32) { c.gl.Call("bindFramebuffer", target, c.obj(fb)) }
func (c *Context) CheckFramebufferStatus(t uint32) uint32 {
	return uint32(c.gl.Call("checkFramebufferStatus", t).Int())
}

func (c *Context) FramebufferTexture2D(target, attachment, texTarget, t uint32, level int32) {
	c.gl.Call("framebufferTexture2D", target, attachment, texTarget, c.obj(t), level)
}

func (c *Context) FramebufferRenderbuffer(target, attachment, rbTarget, rb uint32) {
	c.gl.Call("framebufferRenderbuffer", target, attachment, rbTarget, c.obj(rb))
}

func (c *Context) DrawBuffers(bufs []uint32) {
	arr := make([]any, len(bufs))
	for i, b := range bufs {
		arr[i] = b
	}
	c.gl.Call("drawBuffers", arr)
}

func (c *Context) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	c.gl.Call("blitFramebuffer", sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (c *Context) ReadPixels(dst []byte, x, y, w, h int32, format, typ uint32) {
	buf := js.Global().Get("Uint8Array").New(len(dst))
	c.gl.Call("readPixels", x, y, w, h, format, typ, buf)
	js.CopyBytesToGo(dst, buf)
}

func (c *Context) CreateRenderbuffer() uint32         { return c.put(c.gl.Call("createRenderbuffer")) }
func (c *Context) DeleteRenderbuffer(rb uint32)       { c.gl.Call("deleteRenderbuffer", c.drop(rb)) }
func (c *Context) BindRenderbuffer(target, rb uint32) { c.gl.Call("bindRenderbuffer", target, c.obj(rb)) }

func (c *Context) RenderbufferStorage(target, format uint32, w, h int32) {
	c.gl.Call("renderbufferStorage", target, format, w, h)
}

func (c *Context) RenderbufferStorageMultisample(target uint32, samples int32, format uint32, w, h int32) {
	c.gl.Call("renderbufferStorageMultisample", target, samples, format, w, h)
}

// paramInt reads a getXParameter result that may be a bool or a number.
func paramInt(v js.Value) int32 {
	switch v.Type() {
	case js.TypeBoolean:
		if v.Bool() {
			return 1
		}
		return 0
	case js.TypeNumber:
		return int32(v.Int())
	}
	return 0
}

func uint8Array(b []byte) js.Value {
	arr := js.Global().Get("Uint8Array").New(len(b))
	js.CopyBytesToJS(arr, b)
	return arr
}

func float32Array(v []float32) js.Value {
	if len(v) == 0 {
		return js.Global().Get("Float32Array").New(0)
	}
	b := unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
	return js.Global().Get("Float32Array").New(uint8Array(b).Get("buffer"))
}

// pixelView wraps pixels in the typed array WebGL expects for typ; nil
// pixels allocate storage only.
func pixelView(typ uint32, pixels []byte) any {
	if pixels == nil {
		return nil
	}
	arr := uint8Array(pixels)
	switch typ {
	case glbackend.FLOAT:
		return js.Global().Get("Float32Array").New(arr.Get("buffer"))
	case glbackend.UNSIGNED_INT:
		return js.Global().Get("Uint32Array").New(arr.Get("buffer"))
	case glbackend.HALF_FLOAT, glbackend.UNSIGNED_SHORT:
		return js.Global().Get("Uint16Array").New(arr.Get("buffer"))
	}
	return arr
}
