// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"math/cmplx"
)

// Magnitudes writes |spectrum[i]| into dst for as many bins as dst holds.
// Output values are always >= 0; NaN or Inf bins are clamped to 0 so one
// degenerate value cannot poison a whole frame. For real input only the
// first N/2 bins carry independent information, so callers typically pass
// a dst of half the spectrum length.
func Magnitudes(dst []float64, spectrum []complex128) {
	n := len(dst)
	if len(spectrum) < n {
		n = len(spectrum)
	}
	for i := 0; i < n; i++ {
		dst[i] = sanitize(cmplx.Abs(spectrum[i]))
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// Decibels compresses raw magnitudes into the display scale
//
//	d = 20 * log10(m + 1)
//
// The +1 offset keeps the logarithm defined at silence and pins d(0) = 0,
// so the output is non-negative whenever the input is. dst and src may
// alias.
func Decibels(dst, src []float64) {
	n := len(dst)
	if len(src) < n {
		n = len(src)
	}
	for i := 0; i < n; i++ {
		m := sanitize(src[i])
		if m < 0 {
			m = 0
		}
		dst[i] = 20 * math.Log10(m+1)
	}
	for i := n; i < len(dst); i++ {
		dst[i] = 0
	}
}

// sanitize clamps NaN and Inf to 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
