// SPDX-License-Identifier: MIT
/*
Package dsp implements the numerical core of the visualizer: the Hann
window, a recursive radix-2 FFT and magnitude extraction. Everything here
is pure computation over pre-sized slices so the per-frame path stays
allocation free.
*/
package dsp

import "math"

// Window holds a precomputed taper coefficient per sample index. The
// buffer length is fixed for the process lifetime, so the table is built
// once and shared by every frame.
type Window struct {
	coeffs []float64
}

// NewHannWindow builds the N-point Hann window
//
//	w(n) = 0.5 * (1 - cos(2*pi*n / (N-1)))
//
// which vanishes at both buffer edges and peaks near the center sample,
// reducing the spectral leakage caused by discontinuities at the edges.
// N must be greater than 1.
func NewHannWindow(n int) (*Window, error) {
	if n <= 1 {
		return nil, errWindowSize(n)
	}

	coeffs := make([]float64, n)
	for i := range coeffs {
		coeffs[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1)))
	}
	return &Window{coeffs: coeffs}, nil
}

// NewWindow wraps an externally computed coefficient table (e.g. one of
// the gonum window functions). The table must have at least 2 points.
func NewWindow(coeffs []float64) (*Window, error) {
	if len(coeffs) <= 1 {
		return nil, errWindowSize(len(coeffs))
	}
	c := make([]float64, len(coeffs))
	copy(c, coeffs)
	return &Window{coeffs: c}, nil
}

// Len returns the number of coefficients.
func (w *Window) Len() int {
	return len(w.coeffs)
}

// Coeff returns the coefficient at index i.
func (w *Window) Coeff(i int) float64 {
	return w.coeffs[i]
}

// Apply writes src[i] * w(i) into dst. dst and src may alias. Inputs
// shorter than the window are zero-padded; extra dst capacity beyond the
// window length is left untouched.
func (w *Window) Apply(dst, src []float64) {
	n := len(w.coeffs)
	if len(dst) < n {
		n = len(dst)
	}
	for i := 0; i < n; i++ {
		if i < len(src) {
			dst[i] = src[i] * w.coeffs[i]
		} else {
			dst[i] = 0
		}
	}
}
