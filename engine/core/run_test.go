package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWindow struct {
	polls, closeAfter int
	swaps             int
	closed            bool
	cb                func(Event)
	w, h              int
	pending           []Event
}

func (f *fakeWindow) PollEvents() {
	f.polls++
	for _, ev := range f.pending {
		f.cb(ev)
	}
	f.pending = nil
}
func (f *fakeWindow) SwapBuffers()                    { f.swaps++ }
func (f *fakeWindow) ShouldClose() bool               { return f.closed || f.polls >= f.closeAfter }
func (f *fakeWindow) RequestClose()                   { f.closed = true }
func (f *fakeWindow) FramebufferSize() (int, int)     { return f.w, f.h }
func (f *fakeWindow) SetTitle(string)                 {}
func (f *fakeWindow) SetEventCallback(cb func(Event)) { f.cb = cb }

type fakeRenderer struct {
	clears   int
	resizes  [][2]int
	shutdown bool
}

func (r *fakeRenderer) Resize(w, h int)          { r.resizes = append(r.resizes, [2]int{w, h}) }
func (r *fakeRenderer) Clear(_, _, _, _ float32) { r.clears++ }
func (r *fakeRenderer) Shutdown()                { r.shutdown = true }

type recordingApp struct {
	started, shutdown bool
	renders           int
	events            []Event
	layer             *countingLayer
}

func (a *recordingApp) OnStart(e *Engine) {
	a.started = true
	if a.layer != nil {
		e.Layers.Push(a.layer)
	}
}
func (a *recordingApp) OnUpdate(*Engine, float64)   {}
func (a *recordingApp) OnRender(*Engine, float64)   { a.renders++ }
func (a *recordingApp) OnEvent(_ *Engine, ev Event) { a.events = append(a.events, ev) }
func (a *recordingApp) OnShutdown(*Engine)          { a.shutdown = true }

type countingLayer struct {
	attached, detached bool
	renders            int
	swallowKeys        bool
}

func (l *countingLayer) OnAttach(*Engine)          { l.attached = true }
func (l *countingLayer) OnDetach(*Engine)          { l.detached = true }
func (l *countingLayer) OnUpdate(*Engine, float64) {}
func (l *countingLayer) OnRender(*Engine, float64) { l.renders++ }
func (l *countingLayer) OnEvent(_ *Engine, ev Event) bool {
	_, isKey := ev.(EventKey)
	return isKey && l.swallowKeys
}

func TestRunLoop(t *testing.T) {
	win := &fakeWindow{closeAfter: 3, w: 640, h: 480}
	win.pending = []Event{EventKey{Key: KeyW, Down: true}, EventResize{W: 640, H: 480}}
	rend := &fakeRenderer{}
	layer := &countingLayer{swallowKeys: true}
	app := &recordingApp{layer: layer}

	err := Run(app, DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return rend, nil })
	require.NoError(t, err)

	assert.True(t, app.started)
	assert.True(t, app.shutdown)
	assert.Equal(t, 3, app.renders)
	assert.Equal(t, 3, rend.clears)
	assert.Equal(t, 3, win.swaps)
	assert.True(t, rend.shutdown)

	assert.True(t, layer.attached)
	assert.True(t, layer.detached)
	assert.Equal(t, 3, layer.renders)

	// key swallowed by the layer, resize forwarded to the app
	require.Len(t, app.events, 1)
	assert.IsType(t, EventResize{}, app.events[0])
	assert.Equal(t, [][2]int{{640, 480}, {640, 480}}, rend.resizes)
}

func TestCloseRequestStopsLoop(t *testing.T) {
	win := &fakeWindow{closeAfter: 100, w: 1, h: 1}
	win.pending = []Event{EventCloseRequested{}}
	app := &recordingApp{}
	err := Run(app, DefaultConfig(),
		func(Config) (Window, error) { return win, nil },
		func(Window, Config) (Renderer, error) { return &fakeRenderer{}, nil })
	require.NoError(t, err)
	assert.Equal(t, 1, app.renders)
	assert.Equal(t, 1, win.polls)
}
