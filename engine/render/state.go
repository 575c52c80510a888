package render

// BlendMode selects the blend equation factors for transparent programs.
type BlendMode int

const (
	BlendAlpha         BlendMode = iota // SRC_ALPHA, ONE_MINUS_SRC_ALPHA
	BlendAdditive                       // SRC_ALPHA, ONE
	BlendPremultiplied                  // ONE, ONE_MINUS_SRC_ALPHA
	BlendNone
)

func (b BlendMode) String() string {
	switch b {
	case BlendAlpha:
		return "alpha"
	case BlendAdditive:
		return "additive"
	case BlendPremultiplied:
		return "premultiplied"
	case BlendNone:
		return "none"
	}
	return "unknown"
}

// CullFace selects which faces are culled; CullNone disables culling.
type CullFace int

const (
	CullBack CullFace = iota
	CullFront
	CullFrontAndBack
	CullNone
)

func (c CullFace) String() string {
	switch c {
	case CullBack:
		return "back"
	case CullFront:
		return "front"
	case CullFrontAndBack:
		return "front_and_back"
	case CullNone:
		return "none"
	}
	return "unknown"
}

// DrawMode is the primitive topology of a mesh.
type DrawMode int

const (
	Triangles DrawMode = iota
	TriangleStrip
	Lines
	LineStrip
	Points
)

// Uniform names the renderer sets on every draw when the program declares them.
const (
	UniformProjection      = "projection"
	UniformView            = "view"
	UniformModel           = "model"
	UniformModelView       = "modelView"
	UniformNormal          = "normal"
	UniformCameraPosition  = "cameraPosition"
	UniformJointTransforms = "jointTransforms"
)
