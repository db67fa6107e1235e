package dsp

import (
	"math"
	"math/rand"
	"testing"
)

func TestDistortionCurveBypassAtZero(t *testing.T) {
	if c := DistortionCurve(0); c != nil {
		t.Fatalf("expected nil curve for amount 0, got %d samples", len(c))
	}
}

func TestDistortionCurveShape(t *testing.T) {
	for _, amount := range []float64{0.01, 0.5, 1.0} {
		c := DistortionCurve(amount)
		if len(c) != CurveLength {
			t.Fatalf("amount %v: curve length = %d, want %d", amount, len(c), CurveLength)
		}
		// Odd-ish symmetry: negative inputs map to negative outputs.
		if c[0] >= 0 {
			t.Errorf("amount %v: curve[0] = %v, want negative", amount, c[0])
		}
		if c[len(c)-1] <= 0 {
			t.Errorf("amount %v: curve[end] = %v, want positive", amount, c[len(c)-1])
		}
		// x = 0 lands near the middle and maps near zero.
		mid := c[len(c)/2]
		if math.Abs(mid) > 0.01 {
			t.Errorf("amount %v: curve midpoint = %v, want ~0", amount, mid)
		}
	}
}

func TestShaperInterpolatesAndClamps(t *testing.T) {
	s := NewShaper(DistortionCurve(0.5))
	if out := s.Apply(0); math.Abs(out) > 0.01 {
		t.Errorf("Apply(0) = %v, want ~0", out)
	}
	lo, hi := s.Apply(-2), s.Apply(2)
	if lo != s.Apply(-1) || hi != s.Apply(1) {
		t.Error("out-of-range inputs should clamp to curve ends")
	}
	// Pass-through when no curve is installed.
	pt := NewShaper(nil)
	if out := pt.Apply(0.37); out != 0.37 {
		t.Errorf("nil-curve Apply(0.37) = %v, want 0.37", out)
	}
}

func TestGenerateImpulseDecays(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	left, right := GenerateImpulse(48000, 3.0, 3.0, rng)
	if len(left) != 48000*3 || len(right) != 48000*3 {
		t.Fatalf("kernel length = %d/%d, want %d", len(left), len(right), 48000*3)
	}
	energyAt := func(ch []float64, from, to int) float64 {
		var e float64
		for _, v := range ch[from:to] {
			e += v * v
		}
		return e
	}
	head := energyAt(left, 0, 4800)
	tail := energyAt(left, len(left)-4800, len(left))
	if tail >= head/100 {
		t.Errorf("kernel tail energy %v not well below head energy %v", tail, head)
	}
	// Channels are independent noise.
	same := true
	for i := 0; i < 100; i++ {
		if left[i] != right[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("left and right kernel channels should differ")
	}
}

func TestLowpassAttenuatesAboveCutoff(t *testing.T) {
	const sr = 48000
	amplitudeAt := func(freq, cutoff float64) float64 {
		lp := NewLowpass(sr, cutoff, 0.707)
		var peak float64
		for i := 0; i < sr/2; i++ {
			x := math.Sin(2 * math.Pi * freq * float64(i) / sr)
			y := lp.Process(x)
			// Let the filter settle before measuring.
			if i > sr/4 && math.Abs(y) > peak {
				peak = math.Abs(y)
			}
		}
		return peak
	}
	pass := amplitudeAt(200, 2000)
	stop := amplitudeAt(8000, 2000)
	if pass < 0.9 {
		t.Errorf("passband amplitude = %v, want near 1", pass)
	}
	if stop > 0.2 {
		t.Errorf("stopband amplitude = %v, want strongly attenuated", stop)
	}
}

func TestLowpassResonancePeaksAtCutoff(t *testing.T) {
	const sr = 48000
	peakAt := func(q float64) float64 {
		lp := NewLowpass(sr, 1000, q)
		var peak float64
		for i := 0; i < sr; i++ {
			x := math.Sin(2 * math.Pi * 1000 * float64(i) / sr)
			y := lp.Process(x)
			if i > sr/2 && math.Abs(y) > peak {
				peak = math.Abs(y)
			}
		}
		return peak
	}
	if flat, hot := peakAt(0.707), peakAt(8); hot <= flat {
		t.Errorf("resonant peak %v should exceed flat response %v", hot, flat)
	}
}

func TestCompressorReducesLoudSignals(t *testing.T) {
	c := NewCompressor(48000, -10, 30, 4, 10, 100)
	var out float64
	for i := 0; i < 48000; i++ {
		out, _ = c.Process(1.0, 1.0)
	}
	if out >= 1.0 {
		t.Errorf("compressor should reduce a 0 dBFS signal, got %v", out)
	}
	if out <= 0 {
		t.Errorf("compressor output collapsed to %v", out)
	}
}

func TestCompressorPassesQuietSignals(t *testing.T) {
	c := NewCompressor(48000, -10, 30, 4, 10, 100)
	var out float64
	for i := 0; i < 48000; i++ {
		out, _ = c.Process(0.01, 0.01) // -40 dB, far below knee
	}
	if math.Abs(out-0.01) > 0.001 {
		t.Errorf("quiet signal changed to %v, want ~0.01", out)
	}
}

func TestConvolverIdentityKernel(t *testing.T) {
	// A unit impulse kernel must reproduce the input, delayed by one block.
	kernel := make([]float64, 64)
	kernel[0] = 1
	c := NewConvolver(kernel, kernel)

	input := make([]float64, convolverBlock*3)
	for i := range input {
		input[i] = math.Sin(float64(i)*0.05 + 0.3)
	}
	output := make([]float64, len(input))
	for i, x := range input {
		output[i], _ = c.Process(x, x)
	}
	lat := c.Latency()
	scale := output[lat] / input[0]
	if scale == 0 || math.IsInf(scale, 0) || math.IsNaN(scale) {
		t.Fatalf("unusable reference scale %v after latency", scale)
	}
	for i := 0; i < convolverBlock; i++ {
		want := input[i] * scale
		if math.Abs(output[lat+i]-want) > 1e-6 {
			t.Fatalf("sample %d: got %v, want %v (scaled identity)", i, output[lat+i], want)
		}
	}
}

func TestConvolverProducesTail(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	left, right := GenerateImpulse(8000, 0.5, 3.0, rng)
	c := NewConvolver(left, right)

	// One impulse in, then silence: the tail should ring past the input.
	c.Process(1, 1)
	var tailEnergy float64
	for i := 0; i < 8000; i++ {
		l, r := c.Process(0, 0)
		tailEnergy += l*l + r*r
	}
	if tailEnergy < 1e-6 {
		t.Errorf("expected reverb tail energy, got %v", tailEnergy)
	}
}

func TestFFTRoundTrip(t *testing.T) {
	a := make([]complex128, 16)
	for i := range a {
		a[i] = complex(float64(i%5)-2, 0)
	}
	orig := append([]complex128(nil), a...)
	fft(a, false)
	fft(a, true)
	for i := range a {
		if math.Abs(real(a[i])-real(orig[i])) > 1e-9 || math.Abs(imag(a[i])) > 1e-9 {
			t.Fatalf("round trip mismatch at %d: got %v, want %v", i, a[i], orig[i])
		}
	}
}
