// SPDX-License-Identifier: MIT
package config

import (
	"fmt"

	"vortex/pkg/bitint"
)

// Core configuration constants that define the boundaries and defaults
// for the visualizer pipeline.
const (
	// Default values for the audio front end
	DefaultBufferSize = 512   // Samples per frame; power of 2 for the radix-2 transform
	DefaultSampleRate = 44100 // CD-quality audio
	DefaultChannels   = 1     // Mono capture
	DefaultDeviceID   = MinDeviceID
	DefaultLowLatency = false
	DefaultWindow     = "hann"

	// Default values for the visual mapping
	DefaultTargetFPS         = 60
	DefaultSymmetry          = 12   // Angular segments of the radial projection
	DefaultAmplitudeExponent = 1.8  // Emphasizes strong peaks over a linear map
	DefaultSmoothing         = 0.2  // EMA weight for the loudness estimate
	DefaultMaxBins           = 80   // Bass/low-mid focus, matches the tuned constants below
	DefaultMinBin            = 2    // Skip DC and its immediate neighbor
	DefaultNoiseGate         = 10.0 // dB threshold below which bins are not drawn
	DefaultRotationGain      = 4e-4 // Rotation step per frame per dB of loudness
	DefaultHueGain           = 1e-4 // Hue drift per frame per dB of loudness
	DefaultMaxRotationStep   = 0.05 // Upper bound on the per-frame rotation step (radians)
	DefaultBrightnessRange   = 60.0 // dB mapped to full brightness
	DefaultRadiusScale       = 3.0  // Base ring spacing per bin
	DefaultPeakScale         = 0.1  // Scale of the amplitude^exponent term
	DefaultDotScale          = 0.15 // Dot size per dB
	DefaultSaturation        = 0.9
	DefaultHueStep           = 0.02 // Hue advance per bin index
	DefaultBinTwist          = 0.1  // Per-bin angular offset (spiral look)
	DefaultTrailAlpha        = 0.06 // Fade strength renderers apply per frame

	// Error handling configuration
	DefaultMaxAcquireFailures = 300 // ~5 s of missing buffers at 60 Hz before aborting

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 selects the system default input device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxBufferSize = 8192   // Maximum samples per frame (power of 2)
)

// Config holds all runtime configuration. It is built from defaults,
// optionally a YAML file, environment overrides and finally command line
// flags; it is read once at startup and never reloaded.
type Config struct {
	// Audio front end
	DeviceID   int     `yaml:"input_device"`
	Channels   int     `yaml:"input_channels"`
	SampleRate float64 `yaml:"sample_rate"`
	BufferSize int     `yaml:"buffer_size"`
	LowLatency bool    `yaml:"low_latency"`
	Window     string  `yaml:"window"`
	WAVFile    string  `yaml:"wav_file,omitempty"` // offline source; empty means live capture
	LoopWAV    bool    `yaml:"loop_wav"`

	// Recording
	Record     bool   `yaml:"record"`
	OutputFile string `yaml:"output_file,omitempty"`

	// Visual mapping
	TargetFPS         int     `yaml:"target_fps"`
	Symmetry          int     `yaml:"symmetry"`
	AmplitudeExponent float64 `yaml:"amplitude_exponent"`
	Smoothing         float64 `yaml:"smoothing"`
	MinBin            int     `yaml:"min_bin"`
	MaxBins           int     `yaml:"max_bins"`
	NoiseGate         float64 `yaml:"noise_gate"`
	RotationGain      float64 `yaml:"rotation_gain"`
	HueGain           float64 `yaml:"hue_gain"`
	MaxRotationStep   float64 `yaml:"max_rotation_step"`
	BrightnessRange   float64 `yaml:"brightness_range"`
	RadiusScale       float64 `yaml:"radius_scale"`
	PeakScale         float64 `yaml:"peak_scale"`
	DotScale          float64 `yaml:"dot_scale"`
	Saturation        float64 `yaml:"saturation"`
	HueStep           float64 `yaml:"hue_step"`
	BinTwist          float64 `yaml:"bin_twist"`
	TrailAlpha        float64 `yaml:"trail_alpha"`

	// Pipeline policy
	MaxAcquireFailures int `yaml:"max_acquire_failures"`

	// Sinks
	WSPort  string `yaml:"ws_port,omitempty"`  // websocket frame broadcast, empty disables
	UDPAddr string `yaml:"udp_addr,omitempty"` // binary frame packets, empty disables
	NoTUI   bool   `yaml:"headless"`           // disable the terminal renderer

	// Debug
	LogLevel string `yaml:"log_level"`
	Verbose  bool   `yaml:"verbose"`
	Command  string `yaml:"-"` // one-off command (e.g. "list"), flags only
}

// NewConfig creates a Config populated with defaults, the base every
// other configuration source layers onto.
func NewConfig() *Config {
	return &Config{
		DeviceID:           DefaultDeviceID,
		Channels:           DefaultChannels,
		SampleRate:         DefaultSampleRate,
		BufferSize:         DefaultBufferSize,
		LowLatency:         DefaultLowLatency,
		Window:             DefaultWindow,
		LoopWAV:            true,
		TargetFPS:          DefaultTargetFPS,
		Symmetry:           DefaultSymmetry,
		AmplitudeExponent:  DefaultAmplitudeExponent,
		Smoothing:          DefaultSmoothing,
		MinBin:             DefaultMinBin,
		MaxBins:            DefaultMaxBins,
		NoiseGate:          DefaultNoiseGate,
		RotationGain:       DefaultRotationGain,
		HueGain:            DefaultHueGain,
		MaxRotationStep:    DefaultMaxRotationStep,
		BrightnessRange:    DefaultBrightnessRange,
		RadiusScale:        DefaultRadiusScale,
		PeakScale:          DefaultPeakScale,
		DotScale:           DefaultDotScale,
		Saturation:         DefaultSaturation,
		HueStep:            DefaultHueStep,
		BinTwist:           DefaultBinTwist,
		TrailAlpha:         DefaultTrailAlpha,
		MaxAcquireFailures: DefaultMaxAcquireFailures,
		LogLevel:           "info",
	}
}

// Validate checks every invariant the pipeline depends on. It runs once
// at startup; failures here are fatal and nothing downstream re-checks.
func (c *Config) Validate() error {
	if !bitint.IsPowerOfTwo(c.BufferSize) || c.BufferSize < 2 {
		return fmt.Errorf("buffer_size must be a power of 2 greater than 1, got %d", c.BufferSize)
	}
	if c.BufferSize > MaxBufferSize {
		return fmt.Errorf("buffer_size %d exceeds maximum %d", c.BufferSize, MaxBufferSize)
	}
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("sample_rate %.0f outside supported range [%d, %d]", c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.Channels < 1 {
		return fmt.Errorf("input_channels must be >= 1, got %d", c.Channels)
	}
	if c.TargetFPS < 1 {
		return fmt.Errorf("target_fps must be >= 1, got %d", c.TargetFPS)
	}
	if c.Symmetry < 1 {
		return fmt.Errorf("symmetry must be >= 1, got %d", c.Symmetry)
	}
	if c.Smoothing <= 0 || c.Smoothing > 1 {
		return fmt.Errorf("smoothing must be in (0, 1], got %f", c.Smoothing)
	}
	if c.AmplitudeExponent < 1 {
		return fmt.Errorf("amplitude_exponent must be >= 1, got %f", c.AmplitudeExponent)
	}
	if c.MinBin < 0 || c.MaxBins <= c.MinBin {
		return fmt.Errorf("bin range [%d, %d) is empty", c.MinBin, c.MaxBins)
	}
	if c.MaxBins > c.BufferSize/2 {
		return fmt.Errorf("max_bins %d exceeds available bins %d", c.MaxBins, c.BufferSize/2)
	}
	if c.BrightnessRange <= 0 {
		return fmt.Errorf("brightness_range must be positive, got %f", c.BrightnessRange)
	}
	if c.MaxAcquireFailures < 1 {
		return fmt.Errorf("max_acquire_failures must be >= 1, got %d", c.MaxAcquireFailures)
	}
	if _, ok := parseLevelNames[c.LogLevel]; c.LogLevel != "" && !ok {
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}

var parseLevelNames = map[string]struct{}{
	"debug": {}, "info": {}, "warn": {}, "warning": {}, "error": {}, "fatal": {},
}
