// SPDX-License-Identifier: MIT
package dsp

import (
	"math"
	"testing"
)

func TestNewHannWindow_Degenerate(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if _, err := NewHannWindow(n); err == nil {
			t.Errorf("NewHannWindow(%d) succeeded, expected error", n)
		}
	}
}

func TestHannWindow_EdgesVanish(t *testing.T) {
	for _, n := range []int{2, 16, 512, 513} {
		w, err := NewHannWindow(n)
		if err != nil {
			t.Fatalf("NewHannWindow(%d): %v", n, err)
		}
		if w.Coeff(0) != 0 {
			t.Errorf("N=%d: w(0) = %g, expected 0", n, w.Coeff(0))
		}
		if math.Abs(w.Coeff(n-1)) > 1e-12 {
			t.Errorf("N=%d: w(N-1) = %g, expected 0", n, w.Coeff(n-1))
		}
	}
}

func TestHannWindow_CenterNearMax(t *testing.T) {
	const n = 512
	w, err := NewHannWindow(n)
	if err != nil {
		t.Fatalf("NewHannWindow: %v", err)
	}

	center := w.Coeff((n - 1) / 2)
	if center < 0.99 || center > 1.0 {
		t.Errorf("center coefficient = %g, expected near 1", center)
	}
	for i := 0; i < n; i++ {
		if w.Coeff(i) > 1.0 || w.Coeff(i) < 0 {
			t.Errorf("w(%d) = %g outside [0, 1]", i, w.Coeff(i))
		}
	}
}

func TestWindow_Apply(t *testing.T) {
	w, err := NewHannWindow(8)
	if err != nil {
		t.Fatalf("NewHannWindow: %v", err)
	}

	src := []float64{1, 1, 1, 1, 1, 1, 1, 1}
	dst := make([]float64, 8)
	w.Apply(dst, src)
	for i := range dst {
		if dst[i] != w.Coeff(i) {
			t.Errorf("dst[%d] = %g, expected coefficient %g", i, dst[i], w.Coeff(i))
		}
	}

	// Short input zero-pads the tail.
	w.Apply(dst, src[:3])
	for i := 3; i < 8; i++ {
		if dst[i] != 0 {
			t.Errorf("dst[%d] = %g, expected zero padding", i, dst[i])
		}
	}
}

func TestWindow_ApplyInPlace(t *testing.T) {
	w, err := NewHannWindow(4)
	if err != nil {
		t.Fatalf("NewHannWindow: %v", err)
	}

	buf := []float64{2, 2, 2, 2}
	w.Apply(buf, buf)
	for i := range buf {
		if math.Abs(buf[i]-2*w.Coeff(i)) > 1e-12 {
			t.Errorf("buf[%d] = %g, expected %g", i, buf[i], 2*w.Coeff(i))
		}
	}
}
