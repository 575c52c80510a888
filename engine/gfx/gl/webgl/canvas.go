//go:build js && wasm

package webgl

import (
	"syscall/js"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
)

var _ core.Canvas = Canvas{}

// Canvas adapts an HTMLCanvasElement to core.Canvas.
type Canvas struct {
	el js.Value
}

func NewCanvas(el js.Value) Canvas { return Canvas{el: el} }

// QueryCanvas finds a canvas element by CSS selector.
func QueryCanvas(selector string) (Canvas, bool) {
	el := js.Global().Get("document").Call("querySelector", selector)
	if el.IsNull() || el.IsUndefined() {
		return Canvas{}, false
	}
	return Canvas{el: el}, true
}

func (c Canvas) Element() js.Value { return c.el }

func (c Canvas) DisplaySize() (int, int) {
	return c.el.Get("clientWidth").Int(), c.el.Get("clientHeight").Int()
}

func (c Canvas) DevicePixelRatio() float32 {
	dpr := js.Global().Get("devicePixelRatio")
	if dpr.Type() != js.TypeNumber {
		return 1
	}
	return float32(dpr.Float())
}

func (c Canvas) SetDrawingBufferSize(w, h int) {
	c.el.Set("width", w)
	c.el.Set("height", h)
}
