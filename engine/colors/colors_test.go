package colors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRGBA8Clamps(t *testing.T) {
	assert.Equal(t, [4]byte{255, 0, 0, 255}, Red.RGBA8())
	assert.Equal(t, [4]byte{0, 255, 128, 0}, Color{-1, 2, 0.5, 0}.RGBA8())
}

func TestPremultiplied(t *testing.T) {
	c := Color{1, 0.5, 0.25, 0.5}.Premultiplied()
	assert.Equal(t, Color{0.5, 0.25, 0.125, 0.5}, c)
}

func TestHex(t *testing.T) {
	c, ok := Hex("#ff0000")
	assert.True(t, ok)
	assert.Equal(t, Red, c)

	c, ok = Hex("0000FF80")
	assert.True(t, ok)
	assert.InDelta(t, 128.0/255, c[3], 1e-6)
	assert.Equal(t, float32(1), c[2])

	_, ok = Hex("#12345")
	assert.False(t, ok)
	_, ok = Hex("#gg0000")
	assert.False(t, ok)
}
