// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/gordonklaus/portaudio"

	"vortex/internal/config"
	applog "vortex/internal/log"
)

// ErrNoData is returned by a source when no fresh buffer has arrived
// since the last successful read. The pipeline's documented policy is to
// reuse the previous snapshot and count the miss.
var ErrNoData = errors.New("audio: no new capture data")

// Capture owns the live PortAudio input stream. The stream callback is
// the single writer of the latest-buffer snapshot; the pipeline is its
// single reader via Samples, which converts to normalized float64 under
// the same lock (copy-on-read, the callback buffer is reused by
// PortAudio).
type Capture struct {
	cfg     *config.Config
	device  *portaudio.DeviceInfo
	latency time.Duration
	stream  *portaudio.Stream

	mu     sync.Mutex
	latest []int32 // most recent interleaved callback buffer
	seq    uint64  // bumped by the callback on every buffer
	read   uint64  // last seq delivered to the pipeline

	// Recording state, managed atomically so the callback can check it
	// without locking.
	isRecording int32
	outputFile  *os.File
	wavEncoder  *wav.Encoder
	sampleBuf   *goaudio.IntBuffer
}

// NewCapture resolves the input device and pre-allocates every buffer
// the callback touches. The stream is not started yet.
func NewCapture(cfg *config.Config) (*Capture, error) {
	device, err := InputDevice(cfg.DeviceID)
	if err != nil {
		return nil, err
	}

	c := &Capture{
		cfg:    cfg,
		device: device,
		latest: make([]int32, cfg.BufferSize*cfg.Channels),
	}
	if cfg.LowLatency {
		c.latency = device.DefaultLowInputLatency
	} else {
		c.latency = device.DefaultHighInputLatency
	}

	return c, nil
}

// Start opens and starts the input stream. The callback begins running
// on PortAudio's thread as soon as this returns.
func (c *Capture) Start() error {
	params := portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Channels: c.cfg.Channels,
			Device:   c.device,
			Latency:  c.latency,
		},
		FramesPerBuffer: c.cfg.BufferSize,
		SampleRate:      c.cfg.SampleRate,
	}

	stream, err := portaudio.OpenStream(params, c.processInput)
	if err != nil {
		return fmt.Errorf("failed to open input stream: %w", err)
	}
	c.stream = stream

	if err := c.stream.Start(); err != nil {
		c.stream.Close()
		c.stream = nil
		return fmt.Errorf("failed to start input stream: %w", err)
	}

	applog.Infof("capture: stream started (device=%q, rate=%.0f Hz, buffer=%d)",
		c.device.Name, c.cfg.SampleRate, c.cfg.BufferSize)
	return nil
}

// processInput is the stream callback. Hot path: pre-allocated buffers
// only, the lock is held just for the copy.
func (c *Capture) processInput(in []int32) {
	c.mu.Lock()
	copy(c.latest, in)
	c.seq++
	c.mu.Unlock()

	if atomic.LoadInt32(&c.isRecording) == 1 && c.wavEncoder != nil {
		n := len(in)
		if n > len(c.sampleBuf.Data) {
			n = len(c.sampleBuf.Data)
		}
		for i := 0; i < n; i++ {
			c.sampleBuf.Data[i] = int(in[i])
		}
		c.sampleBuf.Data = c.sampleBuf.Data[:n]
		if err := c.wavEncoder.Write(c.sampleBuf); err != nil {
			applog.Errorf("capture: error writing to WAV file: %v", err)
		}
	}
}

// Samples copies the latest snapshot into dst as normalized float64
// mono samples. Returns ErrNoData when no buffer has arrived since the
// previous successful call. For multi-channel streams only the first
// channel is taken.
func (c *Capture) Samples(dst []float64) error {
	const normFactor = 1.0 / float64(math.MaxInt32+1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.seq == c.read {
		return ErrNoData
	}
	c.read = c.seq

	stride := c.cfg.Channels
	for i := range dst {
		if i*stride < len(c.latest) {
			dst[i] = float64(c.latest[i*stride]) * normFactor
		} else {
			dst[i] = 0
		}
	}
	return nil
}

// StartRecording begins mirroring the raw input to a 32-bit WAV file.
func (c *Capture) StartRecording(filename string) error {
	if atomic.LoadInt32(&c.isRecording) == 1 {
		return fmt.Errorf("already recording")
	}

	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	c.outputFile = file
	c.wavEncoder = wav.NewEncoder(file, int(c.cfg.SampleRate), 32, c.cfg.Channels, 1)
	c.sampleBuf = &goaudio.IntBuffer{
		Format: &goaudio.Format{
			NumChannels: c.cfg.Channels,
			SampleRate:  int(c.cfg.SampleRate),
		},
		Data: make([]int, c.cfg.BufferSize*c.cfg.Channels),
	}

	atomic.StoreInt32(&c.isRecording, 1)
	applog.Infof("capture: recording to %s", filename)
	return nil
}

// StopRecording flushes and closes the WAV file. Safe to call when not
// recording.
func (c *Capture) StopRecording() error {
	if atomic.LoadInt32(&c.isRecording) == 0 {
		return nil
	}
	atomic.StoreInt32(&c.isRecording, 0)

	if c.wavEncoder != nil {
		if err := c.wavEncoder.Close(); err != nil {
			return err
		}
		c.wavEncoder = nil
	}
	if c.outputFile != nil {
		if err := c.outputFile.Close(); err != nil {
			return err
		}
		c.outputFile = nil
	}
	return nil
}

// Close stops recording and tears the stream down.
func (c *Capture) Close() error {
	if err := c.StopRecording(); err != nil {
		return err
	}
	if c.stream != nil {
		if err := c.stream.Stop(); err != nil {
			return err
		}
		if err := c.stream.Close(); err != nil {
			return err
		}
		c.stream = nil
	}
	return nil
}
