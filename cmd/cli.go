// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"vortex/internal/config"
	"vortex/pkg/build"
)

// ParseArgs builds the runtime configuration. Sources are layered in
// precedence order: defaults, then the YAML file, then VORTEX_*
// environment variables, then any flag the user actually set.
func ParseArgs() (*config.Config, error) {
	buildInfo := build.GetBuildFlags()

	// Flag value holders. Only flags that were explicitly set are copied
	// onto the loaded configuration, so file and environment values
	// survive unless overridden on the command line.
	flags := config.NewConfig()
	var configPath string
	var cfg *config.Config

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         "Real-time audio spectrum visualizer",
		Version:       buildInfo.Version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})

	load := func() error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}

		set := func(name string, fn func()) {
			if rootCmd.PersistentFlags().Changed(name) {
				fn()
			}
		}
		set("device", func() { loaded.DeviceID = flags.DeviceID })
		set("channels", func() { loaded.Channels = flags.Channels })
		set("sample-rate", func() { loaded.SampleRate = flags.SampleRate })
		set("buffer-size", func() { loaded.BufferSize = flags.BufferSize })
		set("low-latency", func() { loaded.LowLatency = flags.LowLatency })
		set("window", func() { loaded.Window = flags.Window })
		set("wav", func() { loaded.WAVFile = flags.WAVFile })
		set("loop", func() { loaded.LoopWAV = flags.LoopWAV })
		set("record", func() { loaded.Record = flags.Record })
		set("output", func() { loaded.OutputFile = flags.OutputFile })
		set("fps", func() { loaded.TargetFPS = flags.TargetFPS })
		set("symmetry", func() { loaded.Symmetry = flags.Symmetry })
		set("exponent", func() { loaded.AmplitudeExponent = flags.AmplitudeExponent })
		set("smoothing", func() { loaded.Smoothing = flags.Smoothing })
		set("ws-port", func() { loaded.WSPort = flags.WSPort })
		set("udp-addr", func() { loaded.UDPAddr = flags.UDPAddr })
		set("headless", func() { loaded.NoTUI = flags.NoTUI })
		set("log-level", func() { loaded.LogLevel = flags.LogLevel })
		set("verbose", func() { loaded.Verbose = flags.Verbose })

		if err := loaded.Validate(); err != nil {
			return fmt.Errorf("invalid configuration: %w", err)
		}
		cfg = loaded
		return nil
	}

	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return load()
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := load(); err != nil {
				return err
			}
			cfg.Command = "list"
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	// Audio front end
	rootCmd.PersistentFlags().IntVarP(&flags.DeviceID, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	rootCmd.PersistentFlags().IntVarP(&flags.Channels, "channels", "c", config.DefaultChannels,
		"Number of channels to capture (1=mono, 2=stereo)")
	rootCmd.PersistentFlags().Float64VarP(&flags.SampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	rootCmd.PersistentFlags().IntVarP(&flags.BufferSize, "buffer-size", "b", config.DefaultBufferSize,
		"Samples per analysis frame (power of 2)")
	rootCmd.PersistentFlags().BoolVarP(&flags.LowLatency, "low-latency", "l", config.DefaultLowLatency,
		"Use low latency mode for real-time processing")
	rootCmd.PersistentFlags().StringVarP(&flags.Window, "window", "w", config.DefaultWindow,
		"Window function (hann, hamming, blackman, nuttall, lanczos)")
	rootCmd.PersistentFlags().StringVar(&flags.WAVFile, "wav", "",
		"Read audio from a WAV file instead of a capture device")
	rootCmd.PersistentFlags().BoolVar(&flags.LoopWAV, "loop", true,
		"Loop the WAV file when it ends")

	// Recording
	rootCmd.PersistentFlags().BoolVarP(&flags.Record, "record", "r", false,
		"Record captured audio to a WAV file while visualizing")
	rootCmd.PersistentFlags().StringVarP(&flags.OutputFile, "output", "o", "",
		"Output file name. Default is recording-DD-MM-YYYY-HHMMSS.wav")

	// Visual mapping
	rootCmd.PersistentFlags().IntVar(&flags.TargetFPS, "fps", config.DefaultTargetFPS,
		"Target frames per second")
	rootCmd.PersistentFlags().IntVar(&flags.Symmetry, "symmetry", config.DefaultSymmetry,
		"Number of angular segments in the radial pattern")
	rootCmd.PersistentFlags().Float64Var(&flags.AmplitudeExponent, "exponent", config.DefaultAmplitudeExponent,
		"Amplitude exponent emphasizing spectral peaks")
	rootCmd.PersistentFlags().Float64Var(&flags.Smoothing, "smoothing", config.DefaultSmoothing,
		"Loudness smoothing factor in (0, 1]")

	// Sinks
	rootCmd.PersistentFlags().StringVar(&flags.WSPort, "ws-port", "",
		"Broadcast frames as JSON over a websocket on this port")
	rootCmd.PersistentFlags().StringVar(&flags.UDPAddr, "udp-addr", "",
		"Send binary frame packets to this UDP address")
	rootCmd.PersistentFlags().BoolVar(&flags.NoTUI, "headless", false,
		"Run without the terminal renderer")

	// Debug
	rootCmd.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "",
		"Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false,
		"Show verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a YAML configuration file")

	rootCmd.SetArgs(os.Args[1:])
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	if cfg == nil {
		// Help or version output; nothing to run.
		return nil, nil
	}

	if cfg.Record && cfg.OutputFile == "" {
		cfg.OutputFile = "recording-" +
			time.Now().UTC().Format("02-01-2006-150405") + ".wav"
	}

	return cfg, nil
}
