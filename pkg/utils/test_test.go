// SPDX-License-Identifier: MIT
package utils

import (
	"math"
	"testing"
)

func TestGenerateSineWave(t *testing.T) {
	buf := GenerateSineWave(512, 44100, 440)
	if len(buf) != 512 {
		t.Fatalf("length = %d, expected 512", len(buf))
	}
	if buf[0] != 0 {
		t.Errorf("first sample = %g, expected 0", buf[0])
	}
	for i, s := range buf {
		if math.Abs(s) > 0.9 {
			t.Errorf("sample %d = %g exceeds amplitude 0.9", i, s)
		}
	}
}

func TestFindPeakBin(t *testing.T) {
	mags := []float64{0, 1, 5, 2, 0}
	if got := FindPeakBin(mags, 0, len(mags)-1); got != 2 {
		t.Errorf("peak = %d, expected 2", got)
	}
	if got := FindPeakBin(mags, 3, 100); got != 3 {
		t.Errorf("peak in clamped range = %d, expected 3", got)
	}
	if got := FindPeakBin(nil, 0, 10); got != 0 {
		t.Errorf("peak of empty slice = %d, expected 0", got)
	}
}
