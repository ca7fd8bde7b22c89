// SPDX-License-Identifier: MIT
package visual

import (
	"fmt"
	"math"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Dot is one drawable primitive: a filled circle in a coordinate system
// centered on the origin. Renderers translate to their own center and
// scale as needed.
type Dot struct {
	X     float64 `json:"x"`
	Y     float64 `json:"y"`
	Size  float64 `json:"size"`
	R     uint8   `json:"r"`
	G     uint8   `json:"g"`
	B     uint8   `json:"b"`
	Alpha float64 `json:"alpha"`
}

// Frame is the per-tick output handed to every sink. TrailAlpha tells the
// renderer how strongly to fade the previous frame instead of clearing
// it, which produces the motion-blur trails.
type Frame struct {
	Seq        uint64  `json:"seq"`
	Rotation   float64 `json:"rotation"`
	Loudness   float64 `json:"loudness"`
	TrailAlpha float64 `json:"trailAlpha"`
	Dots       []Dot   `json:"dots"`
}

// Clone returns a deep copy, for sinks that hold frames beyond the Emit
// call while the pipeline reuses its own frame buffer.
func (f *Frame) Clone() *Frame {
	c := *f
	c.Dots = make([]Dot, len(f.Dots))
	copy(c.Dots, f.Dots)
	return &c
}

// MapperParams are the tuning constants of the polar projection. The
// shapes are contractual (monotone radius in magnitude, clamped
// brightness); the exact constants are visual taste.
type MapperParams struct {
	Symmetry   int     // number of angular segments S
	MinBin     int     // first bin drawn (skips DC and its neighbor)
	MaxBins    int     // bins drawn are [MinBin, MaxBins)
	NoiseGate  float64 // bins below this dB level are not drawn; 0 disables the gate
	Exponent   float64 // amplitude exponent emphasizing peaks (1.8)
	RadiusScale float64 // base radius per bin index
	PeakScale  float64 // scale of the amplitude^Exponent term
	DotScale   float64 // dot size per dB
	Saturation float64 // HSV saturation of every dot
	HueStep    float64 // hue advance per bin index
	BinTwist   float64 // per-bin angular offset, gives the spiral look
	Brightness float64 // dB level mapped to full brightness
	TrailAlpha float64 // renderer fade strength per frame
}

// PolarMapper projects the display spectrum into dots. The output slice
// is owned by the mapper and reused every frame.
type PolarMapper struct {
	params MapperParams
	dots   []Dot
}

// NewPolarMapper validates the parameters and pre-allocates the dot
// buffer for the worst case (every drawable bin above the gate).
func NewPolarMapper(params MapperParams) (*PolarMapper, error) {
	if params.Symmetry < 1 {
		return nil, fmt.Errorf("symmetry segment count must be >= 1, got %d", params.Symmetry)
	}
	if params.MinBin < 0 || params.MaxBins <= params.MinBin {
		return nil, fmt.Errorf("bin range [%d, %d) is empty", params.MinBin, params.MaxBins)
	}
	if params.Exponent < 1 {
		return nil, fmt.Errorf("amplitude exponent must be >= 1, got %f", params.Exponent)
	}
	if params.Brightness <= 0 {
		return nil, fmt.Errorf("brightness range must be positive, got %f", params.Brightness)
	}

	capacity := (params.MaxBins - params.MinBin) * params.Symmetry
	return &PolarMapper{
		params: params,
		dots:   make([]Dot, 0, capacity),
	}, nil
}

// Map projects one spectrum against the current state into dst. The
// state is read, never written; advancing it is the pipeline's job.
// Degenerate bins (NaN, Inf, negative) are treated as silence, so a bad
// bin drops out of the frame instead of crashing it.
func (m *PolarMapper) Map(spectrum []float64, state *State, dst *Frame) {
	p := &m.params
	m.dots = m.dots[:0]

	end := p.MaxBins
	if len(spectrum) < end {
		end = len(spectrum)
	}

	segment := twoPi / float64(p.Symmetry)
	for k := p.MinBin; k < end; k++ {
		v := spectrum[k]
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			v = 0
		}
		if p.NoiseGate > 0 && v < p.NoiseGate {
			continue
		}

		hue := math.Mod(float64(k)*p.HueStep+state.HuePhase, 1)
		bright := v / p.Brightness
		if bright > 1 {
			bright = 1
		}
		col := colorful.Hsv(hue*360, p.Saturation, bright)
		r, g, b := col.RGB255()

		radius := m.Radius(k, v)
		size := v * p.DotScale
		twist := float64(k) * p.BinTwist

		for j := 0; j < p.Symmetry; j++ {
			angle := segment*float64(j) + state.Rotation + twist
			m.dots = append(m.dots, Dot{
				X:     math.Cos(angle) * radius,
				Y:     math.Sin(angle) * radius,
				Size:  size,
				R:     r,
				G:     g,
				B:     b,
				Alpha: bright,
			})
		}
	}

	dst.Seq = state.Frame
	dst.Rotation = state.Rotation
	dst.Loudness = state.Loudness
	dst.TrailAlpha = p.TrailAlpha
	dst.Dots = m.dots
}

// Radius returns the radial distance for bin k at display level v. At
// v = 0 this is the documented minimum, the bin's base ring
// k*RadiusScale; it grows strictly with v through the power law.
func (m *PolarMapper) Radius(k int, v float64) float64 {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		v = 0
	}
	return float64(k)*m.params.RadiusScale + math.Pow(v, m.params.Exponent)*m.params.PeakScale
}
