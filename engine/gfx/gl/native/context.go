// Package glnative implements glbackend.Context on desktop OpenGL 3.3 core
// through go-gl. A context must be current on the calling thread.
package glnative

import (
	"fmt"
	"strings"
	"unsafe"

	"github.com/go-gl/gl/v3.3-core/gl"

	glbackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/gl"
)

var _ glbackend.Context = (*Context)(nil)

// Context forwards every call to the go-gl bindings.
type Context struct{}

// New loads the GL function pointers for the current context.
func New() (*Context, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("gl init: %w", err)
	}
	return &Context{}, nil
}

func (*Context) GetString(name uint32) string {
	if s := gl.GetString(name); s != nil {
		return gl.GoStr(s)
	}
	return ""
}

func (*Context) Enable(c uint32)                 { gl.Enable(c) }
func (*Context) Disable(c uint32)                { gl.Disable(c) }
func (*Context) BlendFunc(s, d uint32)           { gl.BlendFunc(s, d) }
func (*Context) BlendEquation(mode uint32)       { gl.BlendEquation(mode) }
func (*Context) CullFace(mode uint32)            { gl.CullFace(mode) }
func (*Context) FrontFace(mode uint32)           { gl.FrontFace(mode) }
func (*Context) DepthFunc(fn uint32)             { gl.DepthFunc(fn) }
func (*Context) DepthMask(flag bool)             { gl.DepthMask(flag) }
func (*Context) Viewport(x, y, w, h int32)       { gl.Viewport(x, y, w, h) }
func (*Context) Scissor(x, y, w, h int32)        { gl.Scissor(x, y, w, h) }
func (*Context) ClearColor(r, g, b, a float32)   { gl.ClearColor(r, g, b, a) }
func (*Context) Clear(mask uint32)               { gl.Clear(mask) }
func (*Context) CreateShader(kind uint32) uint32 { return gl.CreateShader(kind) }
func (*Context) CompileShader(sh uint32)         { gl.CompileShader(sh) }
func (*Context) DeleteShader(sh uint32)          { gl.DeleteShader(sh) }
func (*Context) CreateProgram() uint32           { return gl.CreateProgram() }
func (*Context) AttachShader(p, sh uint32)       { gl.AttachShader(p, sh) }
func (*Context) LinkProgram(p uint32)            { gl.LinkProgram(p) }
func (*Context) DeleteProgram(p uint32)          { gl.DeleteProgram(p) }
func (*Context) UseProgram(p uint32)             { gl.UseProgram(p) }

func (*Context) ClearBufferfv(buffer uint32, drawBuffer int32, value []float32) {
	gl.ClearBufferfv(buffer, drawBuffer, &value[0])
}

func (*Context) ShaderSource(sh uint32, src string) {
	csrc, free := gl.Strs(retarget(src) + "\x00")
	defer free()
	gl.ShaderSource(sh, 1, csrc, nil)
}

// retarget rewrites a GLSL ES 3.00 version line to 330 core so one shader
// file serves the browser and the desktop.
func retarget(src string) string {
	if rest, ok := strings.CutPrefix(strings.TrimLeft(src, " \t\r\n"), "#version 300 es"); ok {
		return "#version 330 core" + rest
	}
	return src
}

func (*Context) GetShaderi(sh, pname uint32) int32 {
	var v int32
	gl.GetShaderiv(sh, pname, &v)
	return v
}

func (*Context) GetShaderInfoLog(sh uint32) string {
	var n int32
	gl.GetShaderiv(sh, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n))
	gl.GetShaderInfoLog(sh, n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (*Context) GetProgrami(p, pname uint32) int32 {
	var v int32
	gl.GetProgramiv(p, pname, &v)
	return v
}

func (*Context) GetProgramInfoLog(p uint32) string {
	var n int32
	gl.GetProgramiv(p, gl.INFO_LOG_LENGTH, &n)
	if n == 0 {
		return ""
	}
	log := strings.Repeat("\x00", int(n))
	gl.GetProgramInfoLog(p, n, nil, gl.Str(log))
	return strings.TrimRight(log, "\x00")
}

func (*Context) GetActiveUniform(p, index uint32) (string, int32, uint32) {
	var maxLen int32
	gl.GetProgramiv(p, gl.ACTIVE_UNIFORM_MAX_LENGTH, &maxLen)
	buf := make([]uint8, max(maxLen, 1))
	var length, size int32
	var typ uint32
	gl.GetActiveUniform(p, index, int32(len(buf)), &length, &size, &typ, &buf[0])
	return string(buf[:length]), size, typ
}

func (*Context) GetUniformLocation(p uint32, name string) int32 {
	return gl.GetUniformLocation(p, gl.Str(name+"\x00"))
}

func (*Context) Uniform1i(loc, v int32)                  { gl.Uniform1i(loc, v) }
func (*Context) Uniform1f(loc int32, v float32)          { gl.Uniform1f(loc, v) }
func (*Context) Uniform2f(loc int32, x, y float32)       { gl.Uniform2f(loc, x, y) }
func (*Context) Uniform3f(loc int32, x, y, z float32)    { gl.Uniform3f(loc, x, y, z) }
func (*Context) Uniform4f(loc int32, x, y, z, w float32) { gl.Uniform4f(loc, x, y, z, w) }

func (*Context) Uniform1fv(loc int32, v []float32) {
	gl.Uniform1fv(loc, int32(len(v)), &v[0])
}

func (*Context) UniformMatrix3fv(loc int32, v []float32) {
	gl.UniformMatrix3fv(loc, int32(len(v)/9), false, &v[0])
}

func (*Context) UniformMatrix4fv(loc int32, v []float32) {
	gl.UniformMatrix4fv(loc, int32(len(v)/16), false, &v[0])
}

func (*Context) CreateBuffer() uint32 {
	var id uint32
	gl.GenBuffers(1, &id)
	return id
}

func (*Context) BindBuffer(target, buf uint32) { gl.BindBuffer(target, buf) }

func (*Context) BufferData(target uint32, data []byte, usage uint32) {
	gl.BufferData(target, len(data), ptr(data), usage)
}

func (*Context) BufferSubData(target uint32, offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	gl.BufferSubData(target, offset, len(data), ptr(data))
}

func (*Context) DeleteBuffer(buf uint32) { gl.DeleteBuffers(1, &buf) }

func (*Context) CreateVertexArray() uint32 {
	var id uint32
	gl.GenVertexArrays(1, &id)
	return id
}

func (*Context) BindVertexArray(v uint32)              { gl.BindVertexArray(v) }
func (*Context) DeleteVertexArray(v uint32)            { gl.DeleteVertexArrays(1, &v) }
func (*Context) EnableVertexAttribArray(index uint32)  { gl.EnableVertexAttribArray(index) }
func (*Context) VertexAttribDivisor(index, div uint32) { gl.VertexAttribDivisor(index, div) }

func (*Context) VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32) {
	gl.VertexAttribPointerWithOffset(index, size, typ, normalized, stride, uintptr(offset))
}

func (*Context) DrawArrays(mode uint32, first, count int32) { gl.DrawArrays(mode, first, count) }

func (*Context) DrawElements(mode uint32, count int32, typ uint32, offset int) {
	gl.DrawElements(mode, count, typ, gl.PtrOffset(offset))
}

func (*Context) DrawArraysInstanced(mode uint32, first, count, n int32) {
	gl.DrawArraysInstanced(mode, first, count, n)
}

func (*Context) DrawElementsInstanced(mode uint32, count int32, typ uint32, offset int, n int32) {
	gl.DrawElementsInstanced(mode, count, typ, gl.PtrOffset(offset), n)
}

func (*Context) CreateTexture() uint32 {
	var id uint32
	gl.GenTextures(1, &id)
	return id
}

func (*Context) DeleteTexture(t uint32)                  { gl.DeleteTextures(1, &t) }
func (*Context) ActiveTexture(unit uint32)               { gl.ActiveTexture(unit) }
func (*Context) BindTexture(target, t uint32)            { gl.BindTexture(target, t) }
func (*Context) TexParameteri(target, p uint32, v int32) { gl.TexParameteri(target, p, v) }
func (*Context) GenerateMipmap(target uint32)            { gl.GenerateMipmap(target) }

func (*Context) TexImage2D(target uint32, level, internalFormat, w, h int32, format, typ uint32, pixels []byte) {
	gl.TexImage2D(target, level, internalFormat, w, h, 0, format, typ, ptr(pixels))
}

func (*Context) TexImage3D(target uint32, level, internalFormat, w, h, d int32, format, typ uint32, pixels []byte) {
	gl.TexImage3D(target, level, internalFormat, w, h, d, 0, format, typ, ptr(pixels))
}

func (*Context) CreateFramebuffer() uint32 {
	var id uint32
	gl.GenFramebuffers(1, &id)
	return id
}

func (*Context) DeleteFramebuffer(fb uint32)            { gl.DeleteFramebuffers(1, &fb) }
func (*Context) BindFramebuffer(target, fb uint32)      { gl.BindFramebuffer(target, fb) }
func (*Context) CheckFramebufferStatus(t uint32) uint32 { return gl.CheckFramebufferStatus(t) }
func (*Context) DrawBuffers(bufs []uint32)              { gl.DrawBuffers(int32(len(bufs)), &bufs[0]) }
func (*Context) BindRenderbuffer(target, rb uint32)     { gl.BindRenderbuffer(target, rb) }
func (*Context) DeleteRenderbuffer(rb uint32)           { gl.DeleteRenderbuffers(1, &rb) }

func (*Context) FramebufferTexture2D(target, attachment, texTarget, t uint32, level int32) {
	gl.FramebufferTexture2D(target, attachment, texTarget, t, level)
}

func (*Context) FramebufferRenderbuffer(target, attachment, rbTarget, rb uint32) {
	gl.FramebufferRenderbuffer(target, attachment, rbTarget, rb)
}

func (*Context) BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1 int32, mask, filter uint32) {
	gl.BlitFramebuffer(sx0, sy0, sx1, sy1, dx0, dy0, dx1, dy1, mask, filter)
}

func (*Context) ReadPixels(dst []byte, x, y, w, h int32, format, typ uint32) {
	gl.ReadPixels(x, y, w, h, format, typ, ptr(dst))
}

func (*Context) CreateRenderbuffer() uint32 {
	var id uint32
	gl.GenRenderbuffers(1, &id)
	return id
}

func (*Context) RenderbufferStorage(target, format uint32, w, h int32) {
	gl.RenderbufferStorage(target, format, w, h)
}

func (*Context) RenderbufferStorageMultisample(target uint32, samples int32, format uint32, w, h int32) {
	gl.RenderbufferStorageMultisample(target, samples, format, w, h)
}

// ptr is nil for empty slices so uploads with no data only allocate.
func ptr(b []byte) unsafe.Pointer {
	if len(b) == 0 {
		return nil
	}
	return unsafe.Pointer(&b[0])
}
