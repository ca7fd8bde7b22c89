// SPDX-License-Identifier: MIT
package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vortex.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_EmptyPath(t *testing.T) {
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultBufferSize, cfg.BufferSize)
	assert.Equal(t, DefaultSymmetry, cfg.Symmetry)
}

func TestLoadConfig_FileNotFound(t *testing.T) {
	cfg, err := LoadConfig("nonexistent.yaml")
	assert.Error(t, err, "explicit missing file must fail")
	assert.Nil(t, cfg)
}

func TestLoadConfig_UnmarshalError(t *testing.T) {
	path := writeTempConfig(t, ":\n:bad")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadConfig_FileOverridesDefaults(t *testing.T) {
	path := writeTempConfig(t, "buffer_size: 1024\nsymmetry: 6\nnoise_gate: 5\n")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 1024, cfg.BufferSize)
	assert.Equal(t, 6, cfg.Symmetry)
	assert.Equal(t, 5.0, cfg.NoiseGate)
	assert.Equal(t, DefaultTargetFPS, cfg.TargetFPS, "unset fields keep defaults")
}

func TestLoadConfig_InvalidFileRejected(t *testing.T) {
	path := writeTempConfig(t, "buffer_size: 1000\n")
	_, err := LoadConfig(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "power of 2")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("VORTEX_LOG_LEVEL", "debug")
	t.Setenv("VORTEX_HEADLESS", "true")
	t.Setenv("VORTEX_DEVICE", "3")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.NoTUI)
	assert.Equal(t, 3, cfg.DeviceID)
}

func TestValidate(t *testing.T) {
	mutations := map[string]func(*Config){
		"buffer not power of two": func(c *Config) { c.BufferSize = 500 },
		"buffer too small":        func(c *Config) { c.BufferSize = 1 },
		"buffer too large":        func(c *Config) { c.BufferSize = MaxBufferSize * 2 },
		"sample rate too low":     func(c *Config) { c.SampleRate = 100 },
		"zero channels":           func(c *Config) { c.Channels = 0 },
		"zero fps":                func(c *Config) { c.TargetFPS = 0 },
		"zero symmetry":           func(c *Config) { c.Symmetry = 0 },
		"smoothing out of range":  func(c *Config) { c.Smoothing = 1.5 },
		"sub-linear exponent":     func(c *Config) { c.AmplitudeExponent = 0.9 },
		"empty bin range":         func(c *Config) { c.MaxBins = c.MinBin },
		"bins beyond spectrum":    func(c *Config) { c.MaxBins = c.BufferSize },
		"bad log level":           func(c *Config) { c.LogLevel = "loud" },
		"zero failure budget":     func(c *Config) { c.MaxAcquireFailures = 0 },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			cfg := NewConfig()
			mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	assert.NoError(t, NewConfig().Validate(), "defaults must validate")
}
