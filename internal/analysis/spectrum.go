// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"strings"
	"sync"

	"gonum.org/v1/gonum/dsp/window"

	"vortex/internal/dsp"
	applog "vortex/internal/log"
	"vortex/pkg/bitint"
)

// WindowFunc selects the taper applied before the transform.
type WindowFunc int

// Available window functions. Hann is the default and what the radial
// mapping was tuned against; the rest come from gonum for experimentation.
const (
	Hann WindowFunc = iota
	Hamming
	Blackman
	Nuttall
	Lanczos
)

// ParseWindowFunc converts a name (case-insensitive) to a WindowFunc.
// Returns Hann and an error if the name is unknown.
func ParseWindowFunc(name string) (WindowFunc, error) {
	switch strings.ToLower(name) {
	case "hann", "hanning":
		return Hann, nil
	case "hamming":
		return Hamming, nil
	case "blackman":
		return Blackman, nil
	case "nuttall":
		return Nuttall, nil
	case "lanczos":
		return Lanczos, nil
	default:
		return Hann, fmt.Errorf("unknown window function name: %q", name)
	}
}

// Pre-allocated buffers for the per-frame analysis pass.
type workspace struct {
	windowed  []float64    // windowed input samples
	timeIn    []complex128 // samples promoted to complex for the transform
	freqOut   []complex128 // complex spectrum
	magnitude []float64    // raw magnitudes, first N/2 bins
	spectrum  []float64    // decibel-scaled display spectrum, first N/2 bins
	mu        sync.RWMutex // guards spectrum against concurrent readers
}

// SpectrumAnalyzer runs the window -> FFT -> magnitude -> decibel pass for
// each frame over a fixed-size buffer. All buffers are allocated once at
// construction so Process stays off the garbage collector's radar.
type SpectrumAnalyzer struct {
	fft        *dsp.FFT
	win        *dsp.Window
	size       int
	sampleRate float64
	ws         workspace
}

var _ SampleProcessor = (*SpectrumAnalyzer)(nil)
var _ SpectrumProvider = (*SpectrumAnalyzer)(nil)

// NewSpectrumAnalyzer creates an analyzer for buffers of the given size,
// which must be a power of two greater than 1. The size is fixed for the
// analyzer's lifetime; feeding buffers of another length is a
// configuration error upstream, not something recovered here.
func NewSpectrumAnalyzer(size int, sampleRate float64, windowType WindowFunc) (*SpectrumAnalyzer, error) {
	if !bitint.IsPowerOfTwo(size) || size < 2 {
		return nil, fmt.Errorf("analyzer size must be a power of 2 greater than 1, got %d", size)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	fft, err := dsp.NewFFT(size)
	if err != nil {
		return nil, err
	}
	win, err := buildWindow(size, windowType)
	if err != nil {
		return nil, err
	}

	half := size / 2
	applog.Debugf("analysis: initializing SpectrumAnalyzer (size=%d, rate=%.1f Hz, window=%d)", size, sampleRate, windowType)

	return &SpectrumAnalyzer{
		fft:        fft,
		win:        win,
		size:       size,
		sampleRate: sampleRate,
		ws: workspace{
			windowed:  make([]float64, size),
			timeIn:    make([]complex128, size),
			freqOut:   make([]complex128, size),
			magnitude: make([]float64, half),
			spectrum:  make([]float64, half),
		},
	}, nil
}

// Process consumes one buffer of normalized samples. Inputs shorter than
// the analyzer size are zero-padded; longer inputs are truncated. The
// source buffer is never written to.
func (a *SpectrumAnalyzer) Process(samples []float64) {
	a.ws.mu.Lock()
	defer a.ws.mu.Unlock()

	a.win.Apply(a.ws.windowed, samples)
	for i, s := range a.ws.windowed {
		a.ws.timeIn[i] = complex(s, 0)
	}

	// Length invariants were checked at construction, so a failure here
	// is a programming defect rather than bad runtime input.
	if err := a.fft.Transform(a.ws.freqOut, a.ws.timeIn); err != nil {
		panic(fmt.Sprintf("analysis: transform invariant broken: %v", err))
	}

	dsp.Magnitudes(a.ws.magnitude, a.ws.freqOut)
	dsp.Decibels(a.ws.spectrum, a.ws.magnitude)
}

// Spectrum returns a copy of the latest display spectrum. The copy
// allocates; the pipeline itself uses SpectrumInto.
func (a *SpectrumAnalyzer) Spectrum() []float64 {
	a.ws.mu.RLock()
	defer a.ws.mu.RUnlock()

	out := make([]float64, len(a.ws.spectrum))
	copy(out, a.ws.spectrum)
	return out
}

// SpectrumInto copies the latest display spectrum into dst, which must
// have length Size()/2.
func (a *SpectrumAnalyzer) SpectrumInto(dst []float64) error {
	a.ws.mu.RLock()
	defer a.ws.mu.RUnlock()

	if len(dst) != len(a.ws.spectrum) {
		return fmt.Errorf("destination length %d does not match spectrum length %d", len(dst), len(a.ws.spectrum))
	}
	copy(dst, a.ws.spectrum)
	return nil
}

// FrequencyForBin returns the center frequency in Hz for a bin index, or
// 0 for out-of-range indices.
func (a *SpectrumAnalyzer) FrequencyForBin(binIndex int) float64 {
	if binIndex < 0 || binIndex >= len(a.ws.spectrum) {
		return 0
	}
	return float64(binIndex) * (a.sampleRate / float64(a.size))
}

// Size returns the transform length N.
func (a *SpectrumAnalyzer) Size() int {
	return a.size
}

// SampleRate returns the configured sample rate in Hz.
func (a *SpectrumAnalyzer) SampleRate() float64 {
	return a.sampleRate
}

// buildWindow constructs the coefficient table. Hann uses the closed-form
// recurrence directly; the alternates fill a unit table and let gonum
// shape it.
func buildWindow(size int, windowType WindowFunc) (*dsp.Window, error) {
	if windowType == Hann {
		return dsp.NewHannWindow(size)
	}

	coeffs := make([]float64, size)
	for i := range coeffs {
		coeffs[i] = 1
	}
	switch windowType {
	case Hamming:
		window.Hamming(coeffs)
	case Blackman:
		window.Blackman(coeffs)
	case Nuttall:
		window.Nuttall(coeffs)
	case Lanczos:
		window.Lanczos(coeffs)
	default:
		applog.Warnf("analysis: unknown window function %d, defaulting to Hann", windowType)
		return dsp.NewHannWindow(size)
	}
	return dsp.NewWindow(coeffs)
}
