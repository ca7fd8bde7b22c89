// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vortex/cmd"
	"vortex/internal/analysis"
	"vortex/internal/audio"
	"vortex/internal/config"
	applog "vortex/internal/log"
	"vortex/internal/pipeline"
	"vortex/internal/transport"
	"vortex/internal/transport/udp"
	"vortex/internal/tui"
	"vortex/internal/visual"
	"vortex/pkg/build"
)

// main is the entry point for the visualizer. The program flow is
// divided into three phases:
//
// 1. Startup Phase (Cold Path):
//   - Initialize build information
//   - Parse command line arguments and load configuration
//   - Execute one-off commands if requested
//
// 2. Concurrent Phase (Hot Path):
//   - Start the audio source (capture stream or WAV file)
//   - Run the frame pipeline at the target rate
//   - Render frames in the terminal and broadcast to network sinks
//
// 3. Shutdown Phase (Cold Path):
//   - Handle termination signals and TUI quit
//   - Stop recording if active
//   - Clean up sources and sinks
func main() {
	build.Initialize()

	cfg, err := cmd.ParseArgs()
	if err != nil {
		applog.Fatalf("startup: %v", err)
	}
	if cfg == nil {
		// Help or version output already handled.
		return
	}

	if level, ok := applog.ParseLevel(cfg.LogLevel); ok {
		applog.SetLevel(level)
	}
	if cfg.Verbose {
		applog.SetLevel(applog.LevelDebug)
	}

	if cfg.Command == "list" {
		if err := audio.Initialize(); err != nil {
			applog.Fatalf("startup: %v", err)
		}
		defer audio.Terminate()
		if err := audio.ListDevices(); err != nil {
			applog.Fatalf("startup: %v", err)
		}
		return
	}

	if err := run(cfg); err != nil {
		applog.Fatalf("%v", err)
	}
}

func run(cfg *config.Config) error {
	// Audio source: a WAV file runs the whole pipeline without touching
	// PortAudio, so the subsystem is only initialized for live capture.
	var source pipeline.SampleSource
	if cfg.WAVFile != "" {
		wavSource, err := audio.NewWAVSource(cfg.WAVFile, cfg.BufferSize, cfg.LoopWAV)
		if err != nil {
			return err
		}
		if rate := wavSource.SampleRate(); rate > 0 && rate != cfg.SampleRate {
			applog.Infof("startup: using WAV file sample rate %.0f Hz", rate)
			cfg.SampleRate = rate
		}
		source = wavSource
	} else {
		if err := audio.Initialize(); err != nil {
			return err
		}
		defer audio.Terminate()

		capture, err := audio.NewCapture(cfg)
		if err != nil {
			return err
		}
		if err := capture.Start(); err != nil {
			return err
		}
		defer func() {
			if err := capture.Close(); err != nil {
				applog.Errorf("shutdown: error closing capture: %v", err)
			}
			if cfg.Record {
				applog.Infof("shutdown: recording saved to %s", cfg.OutputFile)
			}
		}()

		if cfg.Record {
			if err := capture.StartRecording(cfg.OutputFile); err != nil {
				return err
			}
		}
		source = capture
	}

	// Analysis stages.
	windowFunc, err := analysis.ParseWindowFunc(cfg.Window)
	if err != nil {
		return err
	}
	analyzer, err := analysis.NewSpectrumAnalyzer(cfg.BufferSize, cfg.SampleRate, windowFunc)
	if err != nil {
		return err
	}
	loudness, err := analysis.NewLoudnessMeter(cfg.Smoothing, cfg.MaxBins)
	if err != nil {
		return err
	}
	mapper, err := visual.NewPolarMapper(mapperParams(cfg))
	if err != nil {
		return err
	}

	// Frame sinks.
	var sinks []transport.FrameSink
	if cfg.WSPort != "" {
		interval := time.Second / time.Duration(2*cfg.TargetFPS)
		sinks = append(sinks, transport.NewWebSocketSink(cfg.WSPort, interval))
	}
	if cfg.UDPAddr != "" {
		sender, err := udp.NewSender(cfg.UDPAddr)
		if err != nil {
			return err
		}
		sinks = append(sinks, udp.NewSink(sender))
	}

	var tuiSink *tui.Sink
	if !cfg.NoTUI {
		tuiSink = tui.NewSink()
		sinks = append(sinks, tuiSink)
	} else if len(sinks) == 0 || cfg.Verbose {
		sinks = append(sinks, transport.NewLogSink())
	}
	defer func() {
		for _, sink := range sinks {
			if err := sink.Close(); err != nil {
				applog.Errorf("shutdown: error closing sink: %v", err)
			}
		}
	}()

	controller, err := pipeline.NewController(cfg, source, analyzer, loudness, mapper, sinks...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if tuiSink == nil {
		return controller.Run(ctx)
	}

	// The TUI owns the terminal; keep stderr logging off the alternate
	// screen while it runs.
	if devNull, err := os.OpenFile(os.DevNull, os.O_WRONLY, 0); err == nil {
		applog.SetOutput(devNull)
		defer func() {
			applog.SetOutput(os.Stderr)
			devNull.Close()
		}()
	}

	program := tui.StartVisualizer(tuiSink, worldRadius(cfg))

	pipelineErr := make(chan error, 1)
	go func() {
		pipelineErr <- controller.Run(ctx)
		program.Quit()
	}()

	if _, err := program.Run(); err != nil {
		stop()
		<-pipelineErr
		return err
	}

	// User quit the TUI; wind the pipeline down.
	stop()
	return <-pipelineErr
}

// mapperParams translates the flat configuration into the polar mapper's
// tuning set.
func mapperParams(cfg *config.Config) visual.MapperParams {
	return visual.MapperParams{
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
	}
}

// worldRadius estimates the largest dot radius the mapper can produce,
// so the terminal grid scales the whole pattern into view.
func worldRadius(cfg *config.Config) float64 {
	return float64(cfg.MaxBins)*cfg.RadiusScale +
		math.Pow(cfg.BrightnessRange, cfg.AmplitudeExponent)*cfg.PeakScale
}
