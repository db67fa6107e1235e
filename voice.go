package typetone

import (
	"math"

	"typetone/internal/automation"
	"typetone/internal/dsp"
)

const twoPi = math.Pi * 2

// Envelope timing constants shared by every keyed voice.
const (
	ampPeak       = 0.4  // peak gain before the per-voice amplitude scale
	sustainHold   = 0.1  // seconds the envelope sits at the sustain level
	sustainFloor  = 0.01 // minimum sustain gain
	releaseFloor  = 0.001
	oscStopMargin = 1.0 // seconds past the envelope before the osc stops
	disposeMargin = 1.5 // seconds past the envelope before the slot is reaped
	detuneCents   = 5.0 // uniform detune range, +/- cents
	panSpread     = 0.4 // uniform stereo position range, +/- of center
)

// Error-tone constants.
const (
	errStartHz  = 150.0
	errEndHz    = 50.0
	errSweepSec = 0.3
	errPeak     = 0.2
	errStopSec  = 0.35
	errDispose  = 0.4
)

// voice is one ephemeral signal path: oscillator, optional waveshaper,
// resonant lowpass, amplitude envelope, constant-power pan. Keyed voices
// feed the master input; the error tone bypasses the per-voice filter and
// distortion stages and the dry/wet reverb split.
type voice struct {
	active    bool
	errorTone bool

	wave    Waveform
	freq    *automation.Param // Hz; ramped only by the error tone
	phase   float64
	amp     *automation.Param
	cutoff  *automation.Param
	q       float64
	filter  *dsp.Lowpass
	shaper  *dsp.Shaper // nil when distortion is bypassed
	panL    float64
	panR    float64
	startAt int64 // frame the oscillator begins
	stopAt  int64 // frame the oscillator goes silent
	reapAt  int64 // frame the slot is released
}

// trigger builds one keyed voice from a profile snapshot. delayFrames shifts
// the whole schedule into the future; the harmonizer uses it for its 20/40 ms
// chord offsets without touching the calling goroutine. Caller holds e.mu.
func (e *Engine) trigger(freq float64, p Profile, ampScale float64, delayFrames int64) {
	start := e.clock + delayFrames
	sr := float64(e.sampleRate)
	frames := func(sec float64) int64 { return int64(sec * sr) }

	detune := math.Pow(2, (e.rng.Float64()*2-1)*detuneCents/1200)
	pan := (e.rng.Float64()*2 - 1) * panSpread
	angle := (pan + 1) * math.Pi / 4

	peak := ampPeak * ampScale
	sustain := math.Max(sustainFloor, p.Sustain*peak)
	duration := p.Attack + p.Decay + sustainHold + p.Release

	amp := automation.NewParam(0)
	amp.SetValueAtTime(0, start)
	amp.LinearRampToValueAtTime(peak, start+frames(p.Attack))
	amp.ExponentialRampToValueAtTime(sustain, start+frames(p.Attack+p.Decay))
	amp.SetValueAtTime(sustain, start+frames(p.Attack+p.Decay+sustainHold))
	amp.ExponentialRampToValueAtTime(releaseFloor, start+frames(duration))

	cutoff := automation.NewParam(p.FilterFreq)
	if p.Attack < 0.1 {
		// Pluck: snap shut, fly open across the attack, settle through decay.
		cutoff.SetValueAtTime(100, start)
		cutoff.ExponentialRampToValueAtTime(math.Min(20000, p.FilterFreq*2), start+frames(p.Attack))
		cutoff.ExponentialRampToValueAtTime(math.Max(50, p.FilterFreq), start+frames(p.Attack+p.Decay))
	} else {
		// Swell: open linearly across the attack only.
		cutoff.SetValueAtTime(p.FilterFreq/2, start)
		cutoff.LinearRampToValueAtTime(p.FilterFreq, start+frames(p.Attack))
	}

	var shaper *dsp.Shaper
	if p.Distortion > 0 {
		// Rebuilt on every trigger; no cache across notes.
		shaper = dsp.NewShaper(dsp.DistortionCurve(p.Distortion))
	}

	v := e.allocVoice()
	*v = voice{
		active:  true,
		wave:    p.Waveform,
		freq:    automation.NewParam(freq * detune),
		amp:     amp,
		cutoff:  cutoff,
		q:       p.FilterQ,
		filter:  dsp.NewLowpass(e.sampleRate, p.FilterFreq, p.FilterQ),
		shaper:  shaper,
		panL:    math.Cos(angle),
		panR:    math.Sin(angle),
		startAt: start,
		stopAt:  start + frames(duration+oscStopMargin),
		reapAt:  start + frames(duration+disposeMargin),
	}
}

// triggerError builds the miss tone: a falling sawtooth sweep that sums
// straight into the compressor input. Caller holds e.mu.
func (e *Engine) triggerError() {
	start := e.clock
	sr := float64(e.sampleRate)
	frames := func(sec float64) int64 { return int64(sec * sr) }

	freq := automation.NewParam(errStartHz)
	freq.SetValueAtTime(errStartHz, start)
	freq.ExponentialRampToValueAtTime(errEndHz, start+frames(errSweepSec))

	amp := automation.NewParam(errPeak)
	amp.SetValueAtTime(errPeak, start)
	amp.ExponentialRampToValueAtTime(releaseFloor, start+frames(errSweepSec))

	center := math.Sqrt2 / 2
	v := e.allocVoice()
	*v = voice{
		active:    true,
		errorTone: true,
		wave:      WaveSawtooth,
		freq:      freq,
		amp:       amp,
		panL:      center,
		panR:      center,
		startAt:   start,
		stopAt:    start + frames(errStopSec),
		reapAt:    start + frames(errDispose),
	}
}

// allocVoice returns a free arena slot, growing the arena when every slot
// is sounding. Polyphony is unbounded by contract: rapid input grows the
// pool rather than stealing voices.
func (e *Engine) allocVoice() *voice {
	for i := range e.voices {
		if !e.voices[i].active {
			return &e.voices[i]
		}
	}
	e.voices = append(e.voices, voice{})
	return &e.voices[len(e.voices)-1]
}

// renderVoice produces one mono sample for the voice at the given frame and
// reports whether the slot should be reaped.
func (v *voice) renderVoice(now int64, sampleRate float64) (sample float64, done bool) {
	if now >= v.reapAt {
		return 0, true
	}
	if now < v.startAt {
		return 0, false
	}
	var s float64
	if now < v.stopAt {
		f := v.freq.ValueAt(now)
		v.phase += twoPi * f / sampleRate
		if v.phase > twoPi {
			v.phase -= twoPi
		}
		s = oscSample(v.wave, v.phase)
	}
	if !v.errorTone {
		if v.shaper != nil {
			s = v.shaper.Apply(s)
		}
		v.filter.SetCutoff(v.cutoff.ValueAt(now), v.q)
		s = v.filter.Process(s)
	}
	return s * v.amp.ValueAt(now), false
}

func oscSample(w Waveform, phase float64) float64 {
	switch w {
	case WaveSawtooth:
		return 1 - 2*math.Mod(phase, twoPi)/twoPi
	case WaveTriangle:
		return 2*math.Abs(2*math.Mod(phase, twoPi)/twoPi-1) - 1
	case WaveSquare:
		if math.Mod(phase, twoPi) < math.Pi {
			return 1
		}
		return -1
	default:
		return math.Sin(phase)
	}
}
