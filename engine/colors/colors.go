package colors

import "github.com/go-gl/mathgl/mgl32"

// Color is linear RGBA in [0,1].
type Color [4]float32

var (
	White       = Color{1, 1, 1, 1}
	Red         = Color{1, 0, 0, 1}
	Green       = Color{0, 1, 0, 1}
	Blue        = Color{0, 0, 1, 1}
	Black       = Color{0, 0, 0, 1}
	Magenta     = Color{1, 0, 1, 1}
	Cyan        = Color{0, 1, 1, 1}
	Yellow      = Color{1, 1, 0, 1}
	Gray        = Color{0.5, 0.5, 0.5, 1}
	DarkGray    = Color{0.08, 0.10, 0.12, 1}
	Transparent = Color{0, 0, 0, 0}
)

func (c Color) WithAlpha(a float32) Color {
	c[3] = a
	return c
}

// Premultiplied scales RGB by alpha.
func (c Color) Premultiplied() Color {
	return Color{c[0] * c[3], c[1] * c[3], c[2] * c[3], c[3]}
}

func (c Color) Vec3() mgl32.Vec3 { return mgl32.Vec3{c[0], c[1], c[2]} }
func (c Color) Vec4() mgl32.Vec4 { return mgl32.Vec4(c) }

// RGBA8 converts to 8-bit channels, clamping out-of-range values.
func (c Color) RGBA8() [4]byte {
	var out [4]byte
	for i, v := range c {
		switch {
		case v <= 0:
			out[i] = 0
		case v >= 1:
			out[i] = 255
		default:
			out[i] = byte(v*255 + 0.5)
		}
	}
	return out
}

// Hex parses "#rrggbb" or "#rrggbbaa".
func Hex(s string) (Color, bool) {
	if len(s) > 0 && s[0] == '#' {
		s = s[1:]
	}
	if len(s) != 6 && len(s) != 8 {
		return Color{}, false
	}
	var ch [4]byte
	ch[3] = 255
	for i := 0; i < len(s)/2; i++ {
		hi, ok1 := nibble(s[2*i])
		lo, ok2 := nibble(s[2*i+1])
		if !ok1 || !ok2 {
			return Color{}, false
		}
		ch[i] = hi<<4 | lo
	}
	return Color{float32(ch[0]) / 255, float32(ch[1]) / 255, float32(ch[2]) / 255, float32(ch[3]) / 255}, true
}

func nibble(b byte) (byte, bool) {
	switch {
	case b >= '0' && b <= '9':
		return b - '0', true
	case b >= 'a' && b <= 'f':
		return b - 'a' + 10, true
	case b >= 'A' && b <= 'F':
		return b - 'A' + 10, true
	}
	return 0, false
}
