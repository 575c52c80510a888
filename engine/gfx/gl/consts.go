package glbackend

// OpenGL ES 3.0 / WebGL2 enum values used by the backend. They match the
// desktop GL 3.3 core values, so one table serves every Context.
const (
	DEPTH_TEST   = 0x0B71
	CULL_FACE    = 0x0B44
	BLEND        = 0x0BE2
	SCISSOR_TEST = 0x0C11
	STENCIL_TEST = 0x0B90

	FRONT          = 0x0404
	BACK           = 0x0405
	FRONT_AND_BACK = 0x0408
	CW             = 0x0900
	CCW            = 0x0901

	ZERO                = 0
	ONE                 = 1
	SRC_ALPHA           = 0x0302
	ONE_MINUS_SRC_ALPHA = 0x0303
	FUNC_ADD            = 0x8006

	LESS   = 0x0201
	LEQUAL = 0x0203
	ALWAYS = 0x0207

	COLOR_BUFFER_BIT   = 0x4000
	DEPTH_BUFFER_BIT   = 0x0100
	STENCIL_BUFFER_BIT = 0x0400
	COLOR              = 0x1800
	DEPTH              = 0x1801

	VERSION  = 0x1F02
	RENDERER = 0x1F01
	VENDOR   = 0x1F00

	VERTEX_SHADER   = 0x8B31
	FRAGMENT_SHADER = 0x8B30
	COMPILE_STATUS  = 0x8B81
	LINK_STATUS     = 0x8B82
	ACTIVE_UNIFORMS = 0x8B86

	BYTE           = 0x1400
	UNSIGNED_BYTE  = 0x1401
	SHORT          = 0x1402
	UNSIGNED_SHORT = 0x1403
	INT            = 0x1404
	UNSIGNED_INT   = 0x1405
	FLOAT          = 0x1406
	HALF_FLOAT     = 0x140B

	FLOAT_VEC2        = 0x8B50
	FLOAT_VEC3        = 0x8B51
	FLOAT_VEC4        = 0x8B52
	INT_VEC2          = 0x8B53
	INT_VEC3          = 0x8B54
	INT_VEC4          = 0x8B55
	BOOL              = 0x8B56
	FLOAT_MAT2        = 0x8B5A
	FLOAT_MAT3        = 0x8B5B
	FLOAT_MAT4        = 0x8B5C
	SAMPLER_2D        = 0x8B5E
	SAMPLER_3D        = 0x8B5F
	SAMPLER_CUBE      = 0x8B60
	SAMPLER_2D_SHADOW = 0x8B62
	SAMPLER_2D_ARRAY  = 0x8DC1

	ARRAY_BUFFER         = 0x8892
	ELEMENT_ARRAY_BUFFER = 0x8893
	STREAM_DRAW          = 0x88E0
	STATIC_DRAW          = 0x88E4
	DYNAMIC_DRAW         = 0x88E8

	POINTS         = 0x0000
	LINES          = 0x0001
	LINE_STRIP     = 0x0003
	TRIANGLES      = 0x0004
	TRIANGLE_STRIP = 0x0005

	TEXTURE_2D                  = 0x0DE1
	TEXTURE_3D                  = 0x806F
	TEXTURE_CUBE_MAP            = 0x8513
	TEXTURE_CUBE_MAP_POSITIVE_X = 0x8515
	TEXTURE0                    = 0x84C0
	TEXTURE_MAG_FILTER          = 0x2800
	TEXTURE_MIN_FILTER          = 0x2801
	TEXTURE_WRAP_S              = 0x2802
	TEXTURE_WRAP_T              = 0x2803
	TEXTURE_WRAP_R              = 0x8072

	NEAREST                = 0x2600
	LINEAR                 = 0x2601
	NEAREST_MIPMAP_NEAREST = 0x2700
	LINEAR_MIPMAP_NEAREST  = 0x2701
	NEAREST_MIPMAP_LINEAR  = 0x2702
	LINEAR_MIPMAP_LINEAR   = 0x2703
	REPEAT                 = 0x2901
	CLAMP_TO_EDGE          = 0x812F
	MIRRORED_REPEAT        = 0x8370

	RED                = 0x1903
	RGB                = 0x1907
	RGBA               = 0x1908
	R8                 = 0x8229
	RGB8               = 0x8051
	RGBA8              = 0x8058
	RGBA16F            = 0x881A
	RGBA32F            = 0x8814
	DEPTH_COMPONENT    = 0x1902
	DEPTH_COMPONENT16  = 0x81A5
	DEPTH_COMPONENT24  = 0x81A6
	DEPTH_COMPONENT32F = 0x8CAC
	DEPTH_STENCIL      = 0x84F9
	DEPTH24_STENCIL8   = 0x88F0

	FRAMEBUFFER              = 0x8D40
	READ_FRAMEBUFFER         = 0x8CA8
	DRAW_FRAMEBUFFER         = 0x8CA9
	RENDERBUFFER             = 0x8D41
	COLOR_ATTACHMENT0        = 0x8CE0
	DEPTH_ATTACHMENT         = 0x8D00
	STENCIL_ATTACHMENT       = 0x8D20
	DEPTH_STENCIL_ATTACHMENT = 0x821A
	FRAMEBUFFER_COMPLETE     = 0x8CD5
)
