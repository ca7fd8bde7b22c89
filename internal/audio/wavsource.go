// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"
	"os"

	"github.com/go-audio/wav"

	applog "vortex/internal/log"
)

// WAVSource feeds the pipeline from a WAV file instead of a live device,
// which makes the whole pipeline runnable in development and CI without
// a microphone. The file is decoded fully at construction; each Samples
// call returns the next frame-sized slice, optionally looping at EOF.
type WAVSource struct {
	samples    []float64 // normalized mono samples
	frameSize  int
	pos        int
	loop       bool
	sampleRate float64
}

// NewWAVSource decodes path into memory. Multi-channel files are reduced
// to their first channel; integer PCM is normalized to [-1, 1] by bit
// depth.
func NewWAVSource(path string, frameSize int, loop bool) (*WAVSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open WAV file: %w", err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to decode WAV file %s: %w", path, err)
	}
	if buf.Format == nil || buf.Format.NumChannels < 1 {
		return nil, fmt.Errorf("WAV file %s has no usable format", path)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := 1.0 / float64(uint64(1)<<(bitDepth-1))

	channels := buf.Format.NumChannels
	frames := len(buf.Data) / channels
	samples := make([]float64, frames)
	for i := 0; i < frames; i++ {
		samples[i] = float64(buf.Data[i*channels]) * scale
	}

	applog.Infof("wav: loaded %s (%d frames, %d Hz, %d-bit, %d ch)",
		path, frames, buf.Format.SampleRate, bitDepth, channels)

	return &WAVSource{
		samples:    samples,
		frameSize:  frameSize,
		loop:       loop,
		sampleRate: float64(buf.Format.SampleRate),
	}, nil
}

// SampleRate returns the file's sample rate in Hz.
func (s *WAVSource) SampleRate() float64 {
	return s.sampleRate
}

// Samples copies the next frame into dst. Past the end of a non-looping
// file it returns ErrNoData forever, which the pipeline's failure budget
// eventually turns into a clean stop. Short final frames are zero-padded.
func (s *WAVSource) Samples(dst []float64) error {
	if s.pos >= len(s.samples) {
		if !s.loop {
			return ErrNoData
		}
		s.pos = 0
	}

	n := copy(dst, s.samples[s.pos:])
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
	s.pos += s.frameSize
	return nil
}

// Close releases nothing; the decoder's file handle was closed at
// construction.
func (s *WAVSource) Close() error {
	return nil
}
