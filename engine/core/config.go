package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Backend names accepted in Config.Backend.
const (
	BackendGL   = "gl"
	BackendWGPU = "wgpu"
)

const maxDPI = 2

// ContextOptions configures the GPU context a renderer creates.
type ContextOptions struct {
	Antialias bool `toml:"antialias"`
	// Samples is the MSAA sample count used when Antialias is set.
	Samples int `toml:"samples"`
	// DPI scales the canvas drawing buffer; 0 uses the device pixel ratio.
	DPI                   float32 `toml:"dpi"`
	PowerPreference       string  `toml:"power_preference"` // "default", "high-performance", "low-power"
	Alpha                 bool    `toml:"alpha"`
	PremultipliedAlpha    bool    `toml:"premultiplied_alpha"`
	Stencil               bool    `toml:"stencil"`
	PreserveDrawingBuffer bool    `toml:"preserve_drawing_buffer"`
}

type LogConfig struct {
	Level       string `toml:"level"`
	Development bool   `toml:"development"`
}

// Config for the engine run.
type Config struct {
	Title        string         `toml:"title"`
	Width        int            `toml:"width"`
	Height       int            `toml:"height"`
	VSync        bool           `toml:"vsync"`
	ClearColor   [4]float32     `toml:"clear_color"` // RGBA
	Backend      string         `toml:"backend"`
	Context      ContextOptions `toml:"context"`
	Log          LogConfig      `toml:"log"`
	ShaderDir    string         `toml:"shader_dir"`
	WatchShaders bool           `toml:"watch_shaders"`
}

func DefaultConfig() Config {
	return Config{
		Title:      "bolt",
		Width:      1280,
		Height:     720,
		VSync:      true,
		ClearColor: [4]float32{0, 0, 0, 1},
		Backend:    BackendGL,
		Context: ContextOptions{
			Antialias:          true,
			Samples:            4,
			PowerPreference:    "default",
			Alpha:              true,
			PremultipliedAlpha: true,
		},
		Log:       LogConfig{Level: "info"},
		ShaderDir: "assets/shaders",
	}
}

// LoadConfig overlays the TOML file at path on DefaultConfig. Unknown keys
// are rejected so typos surface at startup.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("open config %q: %w", path, err)
	}
	defer f.Close()

	dec := toml.NewDecoder(f).DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		var sme *toml.StrictMissingError
		if errors.As(err, &sme) {
			return cfg, fmt.Errorf("config %q: %s", path, sme.String())
		}
		return cfg, fmt.Errorf("decode config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Width, c.Height)
	}
	switch c.Backend {
	case BackendGL, BackendWGPU:
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	if c.Context.Samples < 0 {
		return fmt.Errorf("samples must be >= 0, got %d", c.Context.Samples)
	}
	if c.Context.DPI < 0 {
		return fmt.Errorf("dpi must be >= 0, got %v", c.Context.DPI)
	}
	switch c.Context.PowerPreference {
	case "", "default", "high-performance", "low-power":
	default:
		return fmt.Errorf("unknown power preference %q", c.Context.PowerPreference)
	}
	return nil
}

// EffectiveDPI resolves the configured DPI against a device pixel ratio,
// clamped to [1, 2].
func (o ContextOptions) EffectiveDPI(devicePixelRatio float32) float32 {
	dpi := o.DPI
	if dpi == 0 {
		dpi = devicePixelRatio
	}
	if dpi < 1 {
		dpi = 1
	}
	if dpi > maxDPI {
		dpi = maxDPI
	}
	return dpi
}

// SampleCount is the MSAA sample count to request, 0 when antialiasing is off.
func (o ContextOptions) SampleCount() int {
	if !o.Antialias {
		return 0
	}
	if o.Samples == 0 {
		return 4
	}
	return o.Samples
}
