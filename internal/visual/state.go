// SPDX-License-Identifier: MIT
/*
Package visual maps spectrum bins into drawable primitives under N-fold
radial symmetry, and owns the persistent state (rotation, hue phase,
smoothed loudness) that carries across frames.
*/
package visual

import "math"

const twoPi = 2 * math.Pi

// State is the visual state that persists across frames. It is created
// once at startup and advanced exactly once per frame by the pipeline;
// nothing else mutates it.
type State struct {
	Rotation float64 // global rotation angle in radians, wrapped mod 2*pi
	HuePhase float64 // color drift phase in [0, 1)
	Loudness float64 // smoothed loudness carried from the last advance
	Frame    uint64  // frames advanced since startup
}

// Advance performs the per-frame state transition: the rotation angle and
// hue phase move forward by amounts proportional to the smoothed
// loudness, so the pattern spins and shifts color with the music and
// freezes completely on silence. The rotation step is clamped to maxStep
// to keep a loudness spike from snapping the pattern around.
func (s *State) Advance(loudness, rotationGain, hueGain, maxStep float64) {
	if loudness < 0 || math.IsNaN(loudness) || math.IsInf(loudness, 0) {
		loudness = 0
	}

	step := loudness * rotationGain
	if step > maxStep {
		step = maxStep
	}

	s.Rotation = math.Mod(s.Rotation+step, twoPi)
	s.HuePhase += loudness * hueGain
	s.HuePhase -= math.Floor(s.HuePhase)
	s.Loudness = loudness
	s.Frame++
}
