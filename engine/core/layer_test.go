package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLayerStackOrder(t *testing.T) {
	var ls LayerStack
	a, b := &countingLayer{}, &countingLayer{swallowKeys: true}
	ls.Push(a)
	ls.Push(b)
	assert.Equal(t, 2, ls.Len())

	var order []Layer
	ls.ForEach(func(l Layer) { order = append(order, l) })
	assert.Equal(t, []Layer{a, b}, order)

	assert.True(t, ls.Dispatch(nil, EventKey{Key: KeyA}))
	assert.False(t, ls.Dispatch(nil, EventMouseMove{}))

	top, ok := ls.Pop()
	assert.True(t, ok)
	assert.Same(t, b, top)
	ls.Pop()
	_, ok = ls.Pop()
	assert.False(t, ok)
}

func TestInput(t *testing.T) {
	in := NewInput()
	in.Handle(EventKey{Key: KeyW, Down: true})
	in.Handle(EventMouseMove{X: 3, Y: 4})
	in.Handle(EventScroll{Yoff: 1})
	in.Handle(EventScroll{Yoff: 0.5})

	assert.True(t, in.IsKeyDown(KeyW))
	assert.False(t, in.IsKeyDown(KeyS))
	x, y := in.Mouse()
	assert.Equal(t, 3.0, x)
	assert.Equal(t, 4.0, y)
	assert.Equal(t, 1.5, in.ConsumeScroll())
	assert.Equal(t, 0.0, in.ConsumeScroll())

	in.Handle(EventKey{Key: KeyW, Down: false})
	assert.False(t, in.IsKeyDown(KeyW))
}
