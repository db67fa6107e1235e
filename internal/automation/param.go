// Package automation provides sample-clock parameter automation: a Param
// holds a list of future-time value transitions (steps, linear ramps,
// exponential ramps, smoothed targets) and resolves them per render frame.
// Callers submit transitions from the control path; the render path only
// reads. Nothing here sleeps or blocks.
package automation

import "math"

// Curve selects how a transition approaches its target value.
type Curve int

const (
	// CurveStep jumps to the target exactly at the target frame.
	CurveStep Curve = iota
	// CurveLinear interpolates linearly from the previous anchor.
	CurveLinear
	// CurveExponential interpolates geometrically from the previous anchor.
	// Both endpoints must be non-zero and share a sign.
	CurveExponential
)

type segment struct {
	target float64
	at     int64 // frame the target is reached
	curve  Curve
}

// Param is one automatable scalar. The zero value is not usable; construct
// with NewParam.
type Param struct {
	anchor     float64 // value at anchorAt
	anchorAt   int64
	segs       []segment // pending transitions, ascending by frame
	smoothTo   float64   // SetTargetAtTime target
	smoothCoef float64   // per-frame approach coefficient
	smoothing  bool
	value      float64 // last resolved value
}

// NewParam creates a parameter holding v with no scheduled transitions.
func NewParam(v float64) *Param {
	return &Param{anchor: v, value: v}
}

// SetValueAtTime schedules a jump to v at the given frame.
func (p *Param) SetValueAtTime(v float64, frame int64) {
	p.schedule(segment{target: v, at: frame, curve: CurveStep})
}

// LinearRampToValueAtTime schedules a linear ramp ending at v on the given
// frame. The ramp starts from the previous transition's endpoint.
func (p *Param) LinearRampToValueAtTime(v float64, frame int64) {
	p.schedule(segment{target: v, at: frame, curve: CurveLinear})
}

// ExponentialRampToValueAtTime schedules a geometric ramp ending at v on the
// given frame. v must not be zero; the render path guards the start value.
func (p *Param) ExponentialRampToValueAtTime(v float64, frame int64) {
	p.schedule(segment{target: v, at: frame, curve: CurveExponential})
}

// SetTargetAtTime begins an exponential approach toward v with the given
// time constant in frames, starting immediately. It cancels pending ramps:
// the engine uses it for mix smoothing, where the latest command wins.
func (p *Param) SetTargetAtTime(v float64, timeConstantFrames float64) {
	p.segs = p.segs[:0]
	p.anchor = p.value
	p.smoothTo = v
	p.smoothing = true
	if timeConstantFrames <= 0 {
		p.smoothCoef = 1
		return
	}
	p.smoothCoef = 1 - math.Exp(-1/timeConstantFrames)
}

func (p *Param) schedule(s segment) {
	p.smoothing = false
	// Transitions arrive in trigger order with ascending frames; keep the
	// slice sorted for the occasional out-of-order insert.
	i := len(p.segs)
	for i > 0 && p.segs[i-1].at > s.at {
		i--
	}
	p.segs = append(p.segs, segment{})
	copy(p.segs[i+1:], p.segs[i:])
	p.segs[i] = s
}

// ValueAt resolves the parameter at the given frame and retires transitions
// that frame has passed. Frames must be presented in non-decreasing order.
func (p *Param) ValueAt(frame int64) float64 {
	if p.smoothing {
		p.value += p.smoothCoef * (p.smoothTo - p.value)
		return p.value
	}
	for len(p.segs) > 0 && p.segs[0].at <= frame {
		p.anchor = p.segs[0].target
		p.anchorAt = p.segs[0].at
		p.segs = p.segs[1:]
	}
	if len(p.segs) == 0 {
		p.value = p.anchor
		return p.value
	}
	s := p.segs[0]
	switch s.curve {
	case CurveLinear:
		p.value = interpLinear(p.anchor, s.target, p.anchorAt, s.at, frame)
	case CurveExponential:
		p.value = interpExponential(p.anchor, s.target, p.anchorAt, s.at, frame)
	default:
		// Step: hold the anchor until the target frame arrives.
		p.value = p.anchor
	}
	return p.value
}

// Value returns the most recently resolved value without advancing.
func (p *Param) Value() float64 { return p.value }

// Target returns the final scheduled value, or the current value when
// nothing is pending.
func (p *Param) Target() float64 {
	if p.smoothing {
		return p.smoothTo
	}
	if len(p.segs) == 0 {
		return p.anchor
	}
	return p.segs[len(p.segs)-1].target
}

func interpLinear(v0, v1 float64, t0, t1, t int64) float64 {
	if t1 <= t0 {
		return v1
	}
	frac := float64(t-t0) / float64(t1-t0)
	return v0 + (v1-v0)*frac
}

func interpExponential(v0, v1 float64, t0, t1, t int64) float64 {
	if t1 <= t0 {
		return v1
	}
	// A zero start would pin the ramp at zero forever; nudge it the way the
	// envelope floors elsewhere do.
	if v0 == 0 {
		v0 = 1e-4
	}
	if v0*v1 <= 0 {
		return interpLinear(v0, v1, t0, t1, t)
	}
	frac := float64(t-t0) / float64(t1-t0)
	return v0 * math.Pow(v1/v0, frac)
}
