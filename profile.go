package typetone

import (
	"fmt"
	"strings"

	"typetone/internal/scale"
)

// Waveform selects the oscillator shape for a voice.
type Waveform int

const (
	WaveSine Waveform = iota
	WaveSquare
	WaveSawtooth
	WaveTriangle
)

func (w Waveform) String() string {
	switch w {
	case WaveSquare:
		return "square"
	case WaveSawtooth:
		return "sawtooth"
	case WaveTriangle:
		return "triangle"
	default:
		return "sine"
	}
}

// ParseWaveform resolves a waveform by name.
func ParseWaveform(name string) (Waveform, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "sine":
		return WaveSine, nil
	case "square":
		return WaveSquare, nil
	case "sawtooth", "saw":
		return WaveSawtooth, nil
	case "triangle", "tri":
		return WaveTriangle, nil
	default:
		return WaveSine, fmt.Errorf("unknown waveform %q (expected sine|square|sawtooth|triangle)", name)
	}
}

// Scale is re-exported so callers can select scales without reaching into
// internal packages.
type Scale = scale.Scale

const (
	ScalePentatonic = scale.Pentatonic
	ScaleMajor      = scale.Major
	ScaleMinor      = scale.Minor
	ScaleBlues      = scale.Blues
	ScaleChromatic  = scale.Chromatic
)

// Profile is the timbre configuration for triggered voices. It is a plain
// value: the engine copies it on SetProfile and every voice copies it again
// at trigger time, so edits never reach a note already sounding.
//
// The engine does not validate or clamp ranges; only the reverb mix is
// clamped when the master mix is computed.
type Profile struct {
	Waveform   Waveform
	Attack     float64 // seconds
	Decay      float64 // seconds
	Sustain    float64 // 0..1, fraction of the amplitude peak
	Release    float64 // seconds
	FilterFreq float64 // lowpass cutoff target, Hz
	FilterQ    float64 // lowpass resonance
	Distortion float64 // 0..1, 0 bypasses the waveshaper
	ReverbMix  float64 // 0..1 dry/wet balance
}

// DefaultProfile is a bright plucked tone that works for bare keystrokes.
func DefaultProfile() Profile {
	return Profile{
		Waveform:   WaveTriangle,
		Attack:     0.005,
		Decay:      0.12,
		Sustain:    0.3,
		Release:    0.25,
		FilterFreq: 2400,
		FilterQ:    1,
		Distortion: 0,
		ReverbMix:  0.25,
	}
}

// Parameter keys accepted by Engine.UpdateParam.
const (
	ParamWaveform   = "waveform"
	ParamAttack     = "attack"
	ParamDecay      = "decay"
	ParamSustain    = "sustain"
	ParamRelease    = "release"
	ParamFilterFreq = "filterFreq"
	ParamFilterQ    = "filterQ"
	ParamDistortion = "distortion"
	ParamReverbMix  = "reverb"
)
