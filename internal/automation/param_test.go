package automation

import (
	"math"
	"testing"
)

func TestLinearRampHitsEndpoints(t *testing.T) {
	p := NewParam(0)
	p.LinearRampToValueAtTime(1.0, 100)
	if got := p.ValueAt(0); got != 0 {
		t.Fatalf("value at frame 0 = %v, want 0", got)
	}
	if got := p.ValueAt(50); math.Abs(got-0.5) > 1e-9 {
		t.Fatalf("value at midpoint = %v, want 0.5", got)
	}
	if got := p.ValueAt(100); got != 1.0 {
		t.Fatalf("value at end = %v, want 1", got)
	}
	if got := p.ValueAt(500); got != 1.0 {
		t.Fatalf("value after end = %v, want 1 (held)", got)
	}
}

func TestExponentialRampIsGeometric(t *testing.T) {
	p := NewParam(100)
	p.ExponentialRampToValueAtTime(400, 200)
	// Geometric midpoint of 100..400 is 200.
	if got := p.ValueAt(100); math.Abs(got-200) > 1e-6 {
		t.Fatalf("value at midpoint = %v, want 200", got)
	}
	if got := p.ValueAt(200); math.Abs(got-400) > 1e-9 {
		t.Fatalf("value at end = %v, want 400", got)
	}
}

func TestStepHoldsUntilTargetFrame(t *testing.T) {
	p := NewParam(1)
	p.SetValueAtTime(5, 10)
	if got := p.ValueAt(9); got != 1 {
		t.Fatalf("value before step = %v, want 1", got)
	}
	if got := p.ValueAt(10); got != 5 {
		t.Fatalf("value at step = %v, want 5", got)
	}
}

func TestChainedEnvelopeSegments(t *testing.T) {
	// Attack-then-decay shape: 0 → 0.4 linear, then exponential down to 0.04.
	p := NewParam(0)
	p.SetValueAtTime(0, 0)
	p.LinearRampToValueAtTime(0.4, 100)
	p.ExponentialRampToValueAtTime(0.04, 300)

	peak := p.ValueAt(100)
	if math.Abs(peak-0.4) > 1e-9 {
		t.Fatalf("peak = %v, want 0.4", peak)
	}
	mid := p.ValueAt(200)
	if mid >= peak || mid <= 0.04 {
		t.Fatalf("decay midpoint = %v, want within (0.04, 0.4)", mid)
	}
	if got := p.ValueAt(300); math.Abs(got-0.04) > 1e-9 {
		t.Fatalf("sustain value = %v, want 0.04", got)
	}
}

func TestZeroDurationRampJumps(t *testing.T) {
	p := NewParam(0.5)
	p.LinearRampToValueAtTime(1.0, 0)
	if got := p.ValueAt(0); got != 1.0 {
		t.Fatalf("zero-duration ramp = %v, want 1", got)
	}
}

func TestSetTargetAtTimeConverges(t *testing.T) {
	p := NewParam(0)
	p.SetTargetAtTime(1.0, 48) // ~1ms at 48kHz
	var v float64
	for f := int64(0); f < 48*10; f++ {
		v = p.ValueAt(f)
	}
	if math.Abs(v-1.0) > 1e-3 {
		t.Fatalf("smoothed value after 10 time constants = %v, want ~1", v)
	}
	// Monotonic approach, never overshooting.
	if v > 1.0 {
		t.Fatalf("smoothed value overshot: %v", v)
	}
}

func TestSetTargetCancelsPendingRamps(t *testing.T) {
	p := NewParam(0)
	p.LinearRampToValueAtTime(1.0, 1000)
	p.ValueAt(100)
	p.SetTargetAtTime(0.2, 1)
	for f := int64(101); f < 200; f++ {
		p.ValueAt(f)
	}
	if got := p.Value(); math.Abs(got-0.2) > 1e-3 {
		t.Fatalf("value after cancel = %v, want ~0.2", got)
	}
	if got := p.Target(); got != 0.2 {
		t.Fatalf("target = %v, want 0.2", got)
	}
}
