package dsp

import "math"

// Lowpass is a resonant lowpass biquad (RBJ cookbook form). Coefficients
// are recomputed on SetCutoff, which the voice render path calls while the
// cutoff envelope is in motion.
type Lowpass struct {
	sampleRate float64
	freq       float64
	q          float64
	b0, b1, b2 float64
	a1, a2     float64
	x1, x2     float64
	y1, y2     float64
}

// NewLowpass creates a lowpass filter at the given cutoff and resonance.
func NewLowpass(sampleRate int, freq, q float64) *Lowpass {
	lp := &Lowpass{sampleRate: float64(sampleRate)}
	lp.SetCutoff(freq, q)
	return lp
}

// SetCutoff retargets the filter. Cutoff clamps to (0, Nyquist); resonance
// floors at a stable minimum.
func (lp *Lowpass) SetCutoff(freq, q float64) {
	nyquist := lp.sampleRate / 2
	if freq >= nyquist {
		freq = nyquist * 0.999
	}
	if freq < 1 {
		freq = 1
	}
	if q < 0.001 {
		q = 0.001
	}
	if freq == lp.freq && q == lp.q {
		return
	}
	lp.freq = freq
	lp.q = q

	omega := 2 * math.Pi * freq / lp.sampleRate
	sn, cs := math.Sincos(omega)
	alpha := sn / (2 * q)

	a0 := 1 + alpha
	lp.b0 = (1 - cs) / 2 / a0
	lp.b1 = (1 - cs) / a0
	lp.b2 = lp.b0
	lp.a1 = -2 * cs / a0
	lp.a2 = (1 - alpha) / a0
}

// Process filters one sample.
func (lp *Lowpass) Process(x float64) float64 {
	y := lp.b0*x + lp.b1*lp.x1 + lp.b2*lp.x2 - lp.a1*lp.y1 - lp.a2*lp.y2
	lp.x2, lp.x1 = lp.x1, x
	lp.y2, lp.y1 = lp.y1, y
	return y
}

// Reset clears the filter state.
func (lp *Lowpass) Reset() {
	lp.x1, lp.x2, lp.y1, lp.y2 = 0, 0, 0, 0
}
