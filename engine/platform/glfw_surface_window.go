package platform

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
)

var _ core.Window = (*GLFWSurfaceWindow)(nil)

// GLFWSurfaceWindow is a GLFW window with no client API. The WGPU surface
// owns presentation and vsync, so SwapBuffers does nothing.
type GLFWSurfaceWindow struct {
	*GLFWWindow
}

func NewGLFWSurfaceWindow(cfg core.Config) (*GLFWSurfaceWindow, error) {
	runtime.LockOSThread()
	if err := glfw.Init(); err != nil {
		return nil, fmt.Errorf("glfw init: %w", err)
	}
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	gw, err := open(cfg, false)
	if err != nil {
		return nil, err
	}
	return &GLFWSurfaceWindow{GLFWWindow: gw}, nil
}

func (s *GLFWSurfaceWindow) SwapBuffers() {}

// SurfaceDescriptor describes the native window for Instance.CreateSurface.
func (s *GLFWSurfaceWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return wgpuglfw.GetSurfaceDescriptor(s.w)
}
