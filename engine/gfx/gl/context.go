package glbackend

// Context is the GL function table the backend drives. It mirrors the
// OpenGL ES 3.0 / WebGL2 entry points with Go slices and strings in place
// of raw pointers. Object names are plain uint32 handles; 0 means none.
//
// Implementations: glnative (desktop GL via go-gl) and webgl (browser).
type Context interface {
	GetString(name uint32) string

	Enable(capability uint32)
	Disable(capability uint32)
	BlendFunc(sfactor, dfactor uint32)
	BlendEquation(mode uint32)
	CullFace(mode uint32)
	FrontFace(mode uint32)
	DepthFunc(fn uint32)
	DepthMask(flag bool)
	Viewport(x, y, width, height int32)
	Scissor(x, y, width, height int32)
	ClearColor(r, g, b, a float32)
	Clear(mask uint32)
	ClearBufferfv(buffer uint32, drawBuffer int32, value []float32)

	CreateShader(kind uint32) uint32
	ShaderSource(shader uint32, src string)
	CompileShader(shader uint32)
	GetShaderi(shader, pname uint32) int32
	GetShaderInfoLog(shader uint32) string
	DeleteShader(shader uint32)

	CreateProgram() uint32
	AttachShader(program, shader uint32)
	LinkProgram(program uint32)
	GetProgrami(program, pname uint32) int32
	GetProgramInfoLog(program uint32) string
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	GetActiveUniform(program, index uint32) (name string, size int32, typ uint32)
	// GetUniformLocation returns -1 for names that are not active.
	GetUniformLocation(program uint32, name string) int32

	Uniform1i(location, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform3f(location int32, x, y, z float32)
	Uniform4f(location int32, x, y, z, w float32)
	Uniform1fv(location int32, v []float32)
	UniformMatrix3fv(location int32, v []float32)
	UniformMatrix4fv(location int32, v []float32)

	CreateBuffer() uint32
	BindBuffer(target, buffer uint32)
	BufferData(target uint32, data []byte, usage uint32)
	BufferSubData(target uint32, offset int, data []byte)
	DeleteBuffer(buffer uint32)

	CreateVertexArray() uint32
	BindVertexArray(vao uint32)
	DeleteVertexArray(vao uint32)
	EnableVertexAttribArray(index uint32)
	VertexAttribPointer(index uint32, size int32, typ uint32, normalized bool, stride, offset int32)
	VertexAttribDivisor(index, divisor uint32)

	DrawArrays(mode uint32, first, count int32)
	DrawElements(mode uint32, count int32, typ uint32, offset int)
	DrawArraysInstanced(mode uint32, first, count, instances int32)
	DrawElementsInstanced(mode uint32, count int32, typ uint32, offset int, instances int32)

	CreateTexture() uint32
	DeleteTexture(texture uint32)
	ActiveTexture(unit uint32)
	BindTexture(target, texture uint32)
	TexImage2D(target uint32, level, internalFormat, width, height int32, format, typ uint32, pixels []byte)
	TexImage3D(target uint32, level, internalFormat, width, height, depth int32, format, typ uint32, pixels []byte)
	TexParameteri(target, pname uint32, param int32)
	GenerateMipmap(target uint32)

	CreateFramebuffer() uint32
	DeleteFramebuffer(fb uint32)
	BindFramebuffer(target, fb uint32)
	FramebufferTexture2D(target, attachment, texTarget, texture uint32, level int32)
	FramebufferRenderbuffer(target, attachment, rbTarget, rb uint32)
	CheckFramebufferStatus(target uint32) uint32
	DrawBuffers(buffers []uint32)
	BlitFramebuffer(srcX0, srcY0, srcX1, srcY1, dstX0, dstY0, dstX1, dstY1 int32, mask, filter uint32)
	ReadPixels(dst []byte, x, y, width, height int32, format, typ uint32)

	CreateRenderbuffer() uint32
	DeleteRenderbuffer(rb uint32)
	BindRenderbuffer(target, rb uint32)
	RenderbufferStorage(target, internalFormat uint32, width, height int32)
	RenderbufferStorageMultisample(target uint32, samples int32, internalFormat uint32, width, height int32)
}
