// SPDX-License-Identifier: MIT
/*
Package pipeline owns the frame loop: acquire samples, run the spectral
analysis, project the spectrum into a frame, emit it to every sink, then
advance the visual state. One tick, one frame, in that order.
*/
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"vortex/internal/analysis"
	"vortex/internal/audio"
	"vortex/internal/config"
	applog "vortex/internal/log"
	"vortex/internal/transport"
	"vortex/internal/visual"
)

// SampleSource is anything the controller can pull fixed-size buffers
// from: the live capture stream or a WAV file.
type SampleSource interface {
	Samples(dst []float64) error
}

// Controller drives the fixed-rate frame loop. All buffers are allocated
// at construction; the loop body does not allocate.
type Controller struct {
	source   SampleSource
	analyzer *analysis.SpectrumAnalyzer
	loudness *analysis.LoudnessMeter
	mapper   *visual.PolarMapper
	sinks    []transport.FrameSink

	targetFPS       int
	rotationGain    float64
	hueGain         float64
	maxRotationStep float64
	maxFailures     int

	state       visual.State
	samples     []float64
	spectrum    []float64
	frame       visual.Frame
	haveSamples bool
	failures    int
}

// NewController wires the stages together. The sink list may be empty,
// which still exercises the full analysis path (useful in tests).
func NewController(cfg *config.Config, source SampleSource, analyzer *analysis.SpectrumAnalyzer,
	loudness *analysis.LoudnessMeter, mapper *visual.PolarMapper, sinks ...transport.FrameSink) (*Controller, error) {
	if source == nil {
		return nil, fmt.Errorf("pipeline: sample source is required")
	}

	return &Controller{
		source:          source,
		analyzer:        analyzer,
		loudness:        loudness,
		mapper:          mapper,
		sinks:           sinks,
		targetFPS:       cfg.TargetFPS,
		rotationGain:    cfg.RotationGain,
		hueGain:         cfg.HueGain,
		maxRotationStep: cfg.MaxRotationStep,
		maxFailures:     cfg.MaxAcquireFailures,
		samples:         make([]float64, cfg.BufferSize),
		spectrum:        make([]float64, cfg.BufferSize/2),
	}, nil
}

// Run executes the frame loop until ctx is cancelled or the acquire
// failure budget is exhausted. Cancellation is a clean nil return.
func (c *Controller) Run(ctx context.Context) error {
	interval := time.Second / time.Duration(c.targetFPS)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	applog.Infof("pipeline: running at %d fps (frame interval %v)", c.targetFPS, interval)

	for {
		select {
		case <-ctx.Done():
			applog.Infof("pipeline: stopped after %d frames", c.state.Frame)
			return nil
		case <-ticker.C:
			if err := c.step(); err != nil {
				return err
			}
		}
	}
}

// step produces exactly one frame. A tick with no fresh audio reuses the
// previous buffer so the display decays smoothly instead of freezing;
// before the first buffer ever arrives there is nothing to show, so the
// tick is skipped entirely.
func (c *Controller) step() error {
	err := c.source.Samples(c.samples)
	switch {
	case err == nil:
		c.failures = 0
		c.haveSamples = true
	case errors.Is(err, audio.ErrNoData):
		c.failures++
		if c.failures >= c.maxFailures {
			return fmt.Errorf("pipeline: no audio data for %d consecutive frames: %w", c.failures, err)
		}
		if !c.haveSamples {
			return nil
		}
	default:
		return fmt.Errorf("pipeline: sample acquisition failed: %w", err)
	}

	c.analyzer.Process(c.samples)
	if err := c.analyzer.SpectrumInto(c.spectrum); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	loud := c.loudness.Update(c.spectrum)

	c.mapper.Map(c.spectrum, &c.state, &c.frame)
	for _, sink := range c.sinks {
		if err := sink.Emit(&c.frame); err != nil {
			applog.Warnf("pipeline: sink emit failed on frame %d: %v", c.frame.Seq, err)
		}
	}

	c.state.Advance(loud, c.rotationGain, c.hueGain, c.maxRotationStep)
	return nil
}

// State returns a copy of the current visual state, for status displays.
func (c *Controller) State() visual.State {
	return c.state
}
