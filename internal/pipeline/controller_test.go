// SPDX-License-Identifier: MIT
package pipeline

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"vortex/internal/analysis"
	"vortex/internal/audio"
	"vortex/internal/config"
	"vortex/internal/visual"
	"vortex/pkg/utils"
)

// scriptedSource replays a fixed per-call error script, then keeps
// returning the final entry. A nil entry delivers the samples.
type scriptedSource struct {
	samples []float64
	script  []error
	calls   int
}

func (s *scriptedSource) Samples(dst []float64) error {
	idx := s.calls
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	s.calls++
	if err := s.script[idx]; err != nil {
		return err
	}
	copy(dst, s.samples)
	return nil
}

type collectSink struct {
	frames []*visual.Frame
	err    error
}

func (c *collectSink) Emit(frame *visual.Frame) error {
	if c.err != nil {
		return c.err
	}
	c.frames = append(c.frames, frame.Clone())
	return nil
}

func (c *collectSink) Close() error { return nil }

func testConfig() *config.Config {
	cfg := config.NewConfig()
	cfg.BufferSize = 256
	cfg.MaxBins = 64
	cfg.MaxAcquireFailures = 5
	return cfg
}

func newTestController(t *testing.T, cfg *config.Config, source SampleSource, sinks ...*collectSink) *Controller {
	t.Helper()

	analyzer, err := analysis.NewSpectrumAnalyzer(cfg.BufferSize, cfg.SampleRate, analysis.Hann)
	if err != nil {
		t.Fatalf("NewSpectrumAnalyzer: %v", err)
	}
	loudness, err := analysis.NewLoudnessMeter(cfg.Smoothing, cfg.MaxBins)
	if err != nil {
		t.Fatalf("NewLoudnessMeter: %v", err)
	}
	mapper, err := visual.NewPolarMapper(visual.MapperParams{
		Symmetry:    cfg.Symmetry,
		MinBin:      cfg.MinBin,
		MaxBins:     cfg.MaxBins,
		NoiseGate:   cfg.NoiseGate,
		Exponent:    cfg.AmplitudeExponent,
		RadiusScale: cfg.RadiusScale,
		PeakScale:   cfg.PeakScale,
		DotScale:    cfg.DotScale,
		Saturation:  cfg.Saturation,
		HueStep:     cfg.HueStep,
		BinTwist:    cfg.BinTwist,
		Brightness:  cfg.BrightnessRange,
		TrailAlpha:  cfg.TrailAlpha,
	})
	if err != nil {
		t.Fatalf("NewPolarMapper: %v", err)
	}

	var ctrl *Controller
	switch len(sinks) {
	case 0:
		ctrl, err = NewController(cfg, source, analyzer, loudness, mapper)
	case 1:
		ctrl, err = NewController(cfg, source, analyzer, loudness, mapper, sinks[0])
	default:
		t.Fatalf("at most one sink supported by helper")
	}
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	return ctrl
}

func TestController_RotationAdvancesWithSignal(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: utils.GenerateSineWave(cfg.BufferSize, cfg.SampleRate, 440),
		script:  []error{nil},
	}
	sink := &collectSink{}
	ctrl := newTestController(t, cfg, source, sink)

	for i := 0; i < 10; i++ {
		if err := ctrl.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	if len(sink.frames) != 10 {
		t.Fatalf("emitted %d frames, expected 10", len(sink.frames))
	}
	// The state advances after Emit, so frame i carries the rotation as
	// of the start of tick i. With a loud signal each step moves forward.
	for i := 1; i < len(sink.frames); i++ {
		if sink.frames[i].Rotation <= sink.frames[i-1].Rotation {
			t.Fatalf("rotation did not advance: frame %d = %g, frame %d = %g",
				i-1, sink.frames[i-1].Rotation, i, sink.frames[i].Rotation)
		}
	}
	if sink.frames[9].Loudness <= 0 {
		t.Errorf("loudness = %g after 10 loud frames, expected > 0", sink.frames[9].Loudness)
	}
}

func TestController_SilenceProducesNoMotionOrNaN(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: make([]float64, cfg.BufferSize),
		script:  []error{nil},
	}
	sink := &collectSink{}
	ctrl := newTestController(t, cfg, source, sink)

	for i := 0; i < 5; i++ {
		if err := ctrl.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	for i, frame := range sink.frames {
		if frame.Rotation != 0 {
			t.Errorf("frame %d rotation = %g, expected no motion on silence", i, frame.Rotation)
		}
		if math.IsNaN(frame.Loudness) || math.IsInf(frame.Loudness, 0) {
			t.Errorf("frame %d loudness = %g", i, frame.Loudness)
		}
		for j, d := range frame.Dots {
			if math.IsNaN(d.X) || math.IsNaN(d.Y) || math.IsNaN(d.Size) {
				t.Fatalf("frame %d dot %d has NaN coordinates: %+v", i, j, d)
			}
		}
	}
}

func TestController_ReusesPreviousBufferOnNoData(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: utils.GenerateSineWave(cfg.BufferSize, cfg.SampleRate, 440),
		script:  []error{nil, audio.ErrNoData},
	}
	sink := &collectSink{}
	ctrl := newTestController(t, cfg, source, sink)

	if err := ctrl.step(); err != nil {
		t.Fatalf("step 0: %v", err)
	}
	// Ticks without fresh data still produce frames from the last buffer.
	for i := 1; i < 4; i++ {
		if err := ctrl.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if len(sink.frames) != 4 {
		t.Fatalf("emitted %d frames, expected 4", len(sink.frames))
	}
	if sink.frames[3].Loudness <= 0 {
		t.Errorf("loudness = %g on reused buffer, expected > 0", sink.frames[3].Loudness)
	}
}

func TestController_SkipsTicksBeforeFirstBuffer(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: utils.GenerateSineWave(cfg.BufferSize, cfg.SampleRate, 440),
		script:  []error{audio.ErrNoData, audio.ErrNoData, nil},
	}
	sink := &collectSink{}
	ctrl := newTestController(t, cfg, source, sink)

	for i := 0; i < 3; i++ {
		if err := ctrl.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if len(sink.frames) != 1 {
		t.Fatalf("emitted %d frames, expected 1 (ticks before first buffer skipped)", len(sink.frames))
	}
}

func TestController_AbortsAfterFailureBudget(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: make([]float64, cfg.BufferSize),
		script:  []error{audio.ErrNoData},
	}
	ctrl := newTestController(t, cfg, source)

	var err error
	for i := 0; i < cfg.MaxAcquireFailures; i++ {
		if err = ctrl.step(); err != nil {
			break
		}
	}
	if err == nil {
		t.Fatal("expected error after exhausting the acquire failure budget")
	}
	if !errors.Is(err, audio.ErrNoData) {
		t.Errorf("err = %v, expected to wrap ErrNoData", err)
	}
}

func TestController_HardSourceErrorStopsImmediately(t *testing.T) {
	cfg := testConfig()
	wantErr := errors.New("device disappeared")
	source := &scriptedSource{
		samples: make([]float64, cfg.BufferSize),
		script:  []error{wantErr},
	}
	ctrl := newTestController(t, cfg, source)

	if err := ctrl.step(); !errors.Is(err, wantErr) {
		t.Errorf("err = %v, expected %v", err, wantErr)
	}
}

func TestController_SinkErrorDoesNotStopLoop(t *testing.T) {
	cfg := testConfig()
	source := &scriptedSource{
		samples: utils.GenerateSineWave(cfg.BufferSize, cfg.SampleRate, 440),
		script:  []error{nil},
	}
	sink := &collectSink{err: errors.New("client gone")}
	ctrl := newTestController(t, cfg, source, sink)

	for i := 0; i < 3; i++ {
		if err := ctrl.step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if got := ctrl.State().Frame; got != 3 {
		t.Errorf("frames advanced = %d, expected 3 despite sink errors", got)
	}
}

func TestController_RunStopsOnCancel(t *testing.T) {
	cfg := testConfig()
	cfg.TargetFPS = 200
	source := &scriptedSource{
		samples: utils.GenerateSineWave(cfg.BufferSize, cfg.SampleRate, 440),
		script:  []error{nil},
	}
	sink := &collectSink{}
	ctrl := newTestController(t, cfg, source, sink)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- ctrl.Run(ctx) }()

	time.Sleep(100 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v, expected nil on cancellation", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
	if len(sink.frames) == 0 {
		t.Error("Run emitted no frames before cancellation")
	}
}
