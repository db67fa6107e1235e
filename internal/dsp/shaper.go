package dsp

import "math"

// CurveLength is the resolution of a generated distortion transfer curve.
const CurveLength = 44100

// DistortionCurve builds a nonlinear transfer curve for the given drive
// amount in [0, 1]. Zero means bypass and returns nil. The curve spans
// x in [-1, 1] with k = amount*100:
//
//	curve[i] = (3+k) * x * 20 * (pi/180) / (pi + k*|x|)
//
// It is rebuilt on every trigger that carries nonzero distortion; no cache
// is kept across notes.
func DistortionCurve(amount float64) []float64 {
	if amount == 0 {
		return nil
	}
	k := amount * 100
	deg := math.Pi / 180
	curve := make([]float64, CurveLength)
	for i := range curve {
		x := float64(i)*2/CurveLength - 1
		curve[i] = (3 + k) * x * 20 * deg / (math.Pi + k*math.Abs(x))
	}
	return curve
}

// Shaper maps samples through a transfer curve with linear interpolation.
type Shaper struct {
	curve []float64
}

// NewShaper wraps a transfer curve. A nil curve yields a pass-through.
func NewShaper(curve []float64) *Shaper {
	return &Shaper{curve: curve}
}

// Apply shapes one sample. Inputs outside [-1, 1] clamp to the curve ends.
func (s *Shaper) Apply(x float64) float64 {
	if len(s.curve) == 0 {
		return x
	}
	pos := (x + 1) / 2 * float64(len(s.curve)-1)
	if pos <= 0 {
		return s.curve[0]
	}
	if pos >= float64(len(s.curve)-1) {
		return s.curve[len(s.curve)-1]
	}
	i := int(pos)
	frac := pos - float64(i)
	return s.curve[i] + (s.curve[i+1]-s.curve[i])*frac
}
