package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/robsouthgate4/bolt-gl-sub000/engine/assets"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/core"
	glbackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/gl"
	glnative "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/gl/native"
	wgpubackend "github.com/robsouthgate4/bolt-gl-sub000/engine/gfx/wgpu"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/logger"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/platform"
	"github.com/robsouthgate4/bolt-gl-sub000/engine/profiler"
)

type App struct {
	cfg     core.Config
	stage   stage
	watcher *assets.ShaderWatcher
	window  interface{ Destroy() }
}

func (a *App) OnStart(e *core.Engine) {
	profiler.Init(1 << 14)

	if a.cfg.WatchShaders {
		w, err := assets.NewShaderWatcher(a.cfg.ShaderDir)
		if err != nil {
			logger.Log.Warn("shader hot reload disabled", zap.Error(err))
		} else {
			a.watcher = w
			a.stage.Watch(w)
		}
	}

	e.Layers.Push(&SceneLayer{stage: a.stage})
	e.Layers.Push(&StatsLayer{stage: a.stage})
}

func (a *App) OnUpdate(e *core.Engine, dt float64) {
	if a.watcher != nil {
		a.watcher.Poll()
	}
}

func (a *App) OnRender(e *core.Engine, alpha float64) {}
func (a *App) OnEvent(e *core.Engine, ev core.Event)  {}

func (a *App) OnShutdown(e *core.Engine) {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			logger.Log.Warn("close shader watcher", zap.Error(err))
		}
	}
	if a.stage != nil {
		a.stage.Release()
	}
}

// windowFactory opens the window type the configured backend draws into.
func (a *App) windowFactory(cfg core.Config) (core.Window, error) {
	switch cfg.Backend {
	case core.BackendWGPU:
		w, err := platform.NewGLFWSurfaceWindow(cfg)
		if err != nil {
			return nil, err
		}
		a.window = w
		return w, nil
	default:
		w, err := platform.NewGLFWWindow(cfg)
		if err != nil {
			return nil, err
		}
		a.window = w
		return w, nil
	}
}

// rendererFactory initialises the backend over win and builds the stage
// the layers draw with.
func (a *App) rendererFactory(win core.Window, cfg core.Config) (core.Renderer, error) {
	switch w := win.(type) {
	case *platform.GLFWSurfaceWindow:
		b, err := wgpubackend.Init(w.SurfaceDescriptor(), w, cfg.Context, cfg.VSync)
		if err != nil {
			return nil, err
		}
		s, err := newWGPUStage(b, cfg)
		if err != nil {
			b.Shutdown()
			return nil, err
		}
		a.stage = s
		return b, nil
	case *platform.GLFWWindow:
		ctx, err := glnative.New()
		if err != nil {
			return nil, err
		}
		b, err := glbackend.Init(ctx, w, cfg.Context)
		if err != nil {
			return nil, err
		}
		s, err := newGLStage(b, cfg)
		if err != nil {
			b.Shutdown()
			return nil, err
		}
		a.stage = s
		return b, nil
	}
	return nil, fmt.Errorf("no renderer for window %T", win)
}

func loadConfig(path string) (core.Config, error) {
	cfg, err := core.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		return core.DefaultConfig(), nil
	}
	return cfg, err
}

func main() {
	configPath := flag.String("config", "bolt.toml", "path to the TOML config")
	backend := flag.String("backend", "", `override the config backend ("gl" or "wgpu")`)
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *backend != "" {
		cfg.Backend = *backend
		if err := cfg.Validate(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	if err := logger.Init(cfg.Log.Level, cfg.Log.Development); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer logger.Sync()

	app := &App{cfg: cfg}
	err = core.Run(app, cfg, app.windowFactory, app.rendererFactory)
	if app.window != nil {
		app.window.Destroy()
	}
	if err != nil {
		logger.Log.Error("sandbox", zap.String("backend", cfg.Backend), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}
