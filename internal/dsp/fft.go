// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"math/cmplx"

	"vortex/pkg/bitint"
)

// FFT computes the discrete Fourier transform of complex sequences whose
// length is a fixed power of two, using the recursive radix-2
// Cooley-Tukey decimation in time:
//
//	X[k]       = E[k] + e^{-i*2*pi*k/N} * O[k]
//	X[k + N/2] = E[k] - e^{-i*2*pi*k/N} * O[k]
//
// where E and O are the transforms of the even- and odd-indexed halves.
// Recursion depth is log2(N) and total work is O(N log N).
//
// Twiddle factors e^{-i*2*pi*k/N} are tabulated once at construction; a
// sub-transform of size n at depth d reads the same table with stride
// N/n, so the sign convention is identical at every recursion level.
type FFT struct {
	n       int
	twiddle []complex128 // e^{-i*2*pi*k/n} for k in [0, n/2)
	scratch []complex128
}

// NewFFT creates a transform for sequences of length n. The power-of-two
// precondition is enforced here, once, at configuration time; Transform
// itself does not re-validate per call beyond slice lengths.
func NewFFT(n int) (*FFT, error) {
	if !bitint.IsPowerOfTwo(n) {
		return nil, errTransformSize(n)
	}

	twiddle := make([]complex128, n/2)
	for k := range twiddle {
		angle := -2 * math.Pi * float64(k) / float64(n)
		twiddle[k] = cmplx.Rect(1, angle)
	}

	return &FFT{
		n:       n,
		twiddle: twiddle,
		scratch: make([]complex128, n),
	}, nil
}

// Size returns the transform length N.
func (f *FFT) Size() int {
	return f.n
}

// Transform writes the DFT of src into dst using the convention
// X_k = sum x_n * e^{-i*2*pi*k*n/N}. Both slices must have length N.
// dst and src may alias; no allocations occur either way.
func (f *FFT) Transform(dst, src []complex128) error {
	if len(src) != f.n {
		return errLength(f.n, len(src))
	}
	if len(dst) != f.n {
		return errLength(f.n, len(dst))
	}

	if &dst[0] == &src[0] {
		copy(f.scratch, src)
		src = f.scratch
	}
	f.split(dst, src, f.n, 1)
	return nil
}

// Inverse writes the inverse DFT of src into dst via the conjugation
// identity x = conj(DFT(conj(X))) / N. Both slices must have length N.
func (f *FFT) Inverse(dst, src []complex128) error {
	if len(src) != f.n {
		return errLength(f.n, len(src))
	}
	if len(dst) != f.n {
		return errLength(f.n, len(dst))
	}

	for i, c := range src {
		f.scratch[i] = cmplx.Conj(c)
	}
	f.split(dst, f.scratch, f.n, 1)

	scale := 1 / float64(f.n)
	for i, c := range dst {
		dst[i] = complex(real(c)*scale, -imag(c)*scale)
	}
	return nil
}

// split is the recursive butterfly. It transforms the n samples found at
// src[0], src[stride], src[2*stride], ... into dst[0:n]. The first half
// of dst receives the even-indexed sub-transform and the second half the
// odd-indexed one before the combine pass runs over them in place.
func (f *FFT) split(dst, src []complex128, n, stride int) {
	if n == 1 {
		dst[0] = src[0] // a length-1 signal is its own DFT
		return
	}

	half := n / 2
	f.split(dst[:half], src, half, stride*2)
	f.split(dst[half:], src[stride:], half, stride*2)

	for k := 0; k < half; k++ {
		t := f.twiddle[k*stride] * dst[half+k]
		even := dst[k]
		dst[k] = even + t
		dst[half+k] = even - t
	}
}
