// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math"
)

// LoudnessMeter derives a scalar loudness estimate from the display
// spectrum: the mean of the low-frequency bins, smoothed by an
// exponential moving average so single-frame jitter does not whip the
// rotation and color drift around.
type LoudnessMeter struct {
	smoothing float64 // EMA weight of the new observation, in (0, 1]
	lowBins   int     // number of leading bins averaged
	value     float64
	primed    bool
}

// NewLoudnessMeter creates a meter. smoothing is the weight given to the
// newest observation (1 disables smoothing entirely); lowBins bounds the
// averaged prefix of the spectrum and must be positive.
func NewLoudnessMeter(smoothing float64, lowBins int) (*LoudnessMeter, error) {
	if smoothing <= 0 || smoothing > 1 {
		return nil, fmt.Errorf("smoothing factor must be in (0, 1], got %f", smoothing)
	}
	if lowBins <= 0 {
		return nil, fmt.Errorf("low bin count must be positive, got %d", lowBins)
	}
	return &LoudnessMeter{smoothing: smoothing, lowBins: lowBins}, nil
}

// Update folds one spectrum into the running estimate and returns the new
// smoothed value. NaN and Inf bins are ignored. The first observation
// seeds the average directly so startup does not ramp from an artificial
// zero.
func (m *LoudnessMeter) Update(spectrum []float64) float64 {
	n := m.lowBins
	if len(spectrum) < n {
		n = len(spectrum)
	}

	var sum float64
	var count int
	for i := 0; i < n; i++ {
		v := spectrum[i]
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if v < 0 {
			v = 0
		}
		sum += v
		count++
	}

	var mean float64
	if count > 0 {
		mean = sum / float64(count)
	}

	if !m.primed {
		m.value = mean
		m.primed = true
		return m.value
	}

	m.value = m.value*(1-m.smoothing) + mean*m.smoothing
	return m.value
}

// Value returns the current smoothed loudness without updating it.
func (m *LoudnessMeter) Value() float64 {
	return m.value
}
