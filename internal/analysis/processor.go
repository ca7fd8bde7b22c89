// SPDX-License-Identifier: MIT
package analysis

// Defines the standard interface for components that consume sample buffers.
type SampleProcessor interface {
	// Process analyzes one buffer of normalized samples in [-1, 1].
	// Implementations must be efficient; this runs once per frame inside
	// the pipeline loop.
	Process(samples []float64)
}

// SpectrumProvider is an interface for components that expose the latest
// display spectrum. It decouples consumers (loudness metering, the polar
// mapper) from the concrete analyzer implementation.
type SpectrumProvider interface {
	Spectrum() []float64                // Spectrum returns a copy of the latest display spectrum (first N/2 bins, decibel scale).
	SpectrumInto(dst []float64) error   // SpectrumInto copies the latest display spectrum into dst without allocating.
	FrequencyForBin(binIndex int) float64 // FrequencyForBin returns the center frequency (Hz) for a bin index.
	Size() int                          // Size returns the transform length N.
	SampleRate() float64                // SampleRate returns the sample rate in Hz.
}
