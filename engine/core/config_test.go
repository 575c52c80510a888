package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "bolt.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigOverlaysDefaults(t *testing.T) {
	path := writeConfig(t, `
title = "demo"
backend = "wgpu"
clear_color = [0.1, 0.2, 0.3, 1.0]

[context]
samples = 8
power_preference = "high-performance"

[log]
level = "debug"
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Title)
	assert.Equal(t, BackendWGPU, cfg.Backend)
	assert.Equal(t, [4]float32{0.1, 0.2, 0.3, 1}, cfg.ClearColor)
	assert.Equal(t, 8, cfg.Context.Samples)
	assert.Equal(t, "high-performance", cfg.Context.PowerPreference)
	assert.Equal(t, "debug", cfg.Log.Level)

	// untouched keys keep their defaults
	def := DefaultConfig()
	assert.Equal(t, def.Width, cfg.Width)
	assert.Equal(t, def.Height, cfg.Height)
	assert.True(t, cfg.Context.Antialias)
}

func TestLoadConfigRejectsUnknownKeys(t *testing.T) {
	path := writeConfig(t, "titel = \"typo\"\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "titel")
}

func TestLoadConfigValidates(t *testing.T) {
	_, err := LoadConfig(writeConfig(t, "backend = \"vulkan\"\n"))
	assert.ErrorContains(t, err, "unknown backend")

	_, err = LoadConfig(writeConfig(t, "width = 0\n"))
	assert.ErrorContains(t, err, "invalid window size")

	_, err = LoadConfig(writeConfig(t, "[context]\npower_preference = \"max\"\n"))
	assert.ErrorContains(t, err, "power preference")
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.toml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestEffectiveDPI(t *testing.T) {
	assert.Equal(t, float32(1.5), ContextOptions{}.EffectiveDPI(1.5))
	assert.Equal(t, float32(2), ContextOptions{}.EffectiveDPI(3))
	assert.Equal(t, float32(1), ContextOptions{}.EffectiveDPI(0))
	assert.Equal(t, float32(1.25), ContextOptions{DPI: 1.25}.EffectiveDPI(3))
}

func TestSampleCount(t *testing.T) {
	assert.Equal(t, 0, ContextOptions{Samples: 8}.SampleCount())
	assert.Equal(t, 4, ContextOptions{Antialias: true}.SampleCount())
	assert.Equal(t, 8, ContextOptions{Antialias: true, Samples: 8}.SampleCount())
}
