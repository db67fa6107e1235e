// Package dsp holds the signal-processing stages of the engine: the reverb
// kernel generator, the FFT convolver that applies it, the distortion curve
// and waveshaper, a resonant lowpass biquad, and the master compressor.
package dsp

import (
	"math"
	"math/rand"
)

// GenerateImpulse synthesizes a stereo decaying-noise impulse response of
// the given length. Each channel is independent uniform noise in [-1, 1)
// shaped by (1 - n/length)^decay. The result is the convolution kernel for
// the wet reverb path.
func GenerateImpulse(sampleRate int, seconds, decay float64, rng *rand.Rand) (left, right []float64) {
	length := int(float64(sampleRate) * seconds)
	if length < 1 {
		length = 1
	}
	left = make([]float64, length)
	right = make([]float64, length)
	for _, ch := range [][]float64{left, right} {
		for n := range ch {
			noise := rng.Float64()*2 - 1
			env := math.Pow(1-float64(n)/float64(length), decay)
			ch[n] = noise * env
		}
	}
	return left, right
}
