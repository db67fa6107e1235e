// Package typetone is a polyphonic keystroke synthesizer. Each printable key
// maps through a musical scale to a frequency and triggers an ephemeral
// voice; all voices sum into a master bus running a dry/wet convolution
// reverb split into a soft-knee compressor. Everything is rendered on a
// single sample clock, so parameter ramps and harmonizer delays are
// sample-accurate and never block the caller.
package typetone

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"sync"

	"typetone/internal/audio"
	"typetone/internal/automation"
	"typetone/internal/dsp"
	"typetone/internal/scale"
)

// Master bus constants.
const (
	masterGain    = 0.4 // fixed pre-reverb bus gain
	reverbSeconds = 3.0 // impulse response length
	reverbDecay   = 3.0 // impulse response decay exponent
	mixSmoothSec  = 0.01
	harmonyGain   = 0.4 // amplitude scale of harmonizer voices
)

// Harmonizer intervals above the played note, in semitones, and the delay
// before each one sounds.
var harmonyOffsets = []struct {
	semitones int
	delaySec  float64
}{
	{4, 0.02},
	{7, 0.04},
}

// Backend selects the playback route opened by Start.
type Backend int

const (
	// BackendEbiten plays through the process-wide ebiten/v2 audio context.
	BackendEbiten Backend = iota
	// BackendOto plays through a direct oto/v3 stream.
	BackendOto
	// BackendNone opens no device; the host drives Process itself, e.g. for
	// offline rendering.
	BackendNone
)

// Option configures an Engine at construction.
type Option func(*Engine)

// WithBackend selects the playback backend. The default is BackendEbiten.
func WithBackend(b Backend) Option {
	return func(e *Engine) { e.backend = b }
}

// WithSeed fixes the random source used for detune, pan and the reverb
// impulse, making renders reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) { e.rng = rand.New(rand.NewSource(seed)) }
}

// Engine is the synthesizer facade. All methods are safe for concurrent use.
// Play and parameter methods are no-ops until Start has run; Start is
// idempotent and resumes a paused engine.
type Engine struct {
	mu sync.Mutex

	sampleRate int
	backend    Backend
	player     audio.Player
	started    bool

	profile    Profile
	scale      Scale
	harmonizer bool
	rng        *rand.Rand

	clock  int64
	voices []voice

	volume     *automation.Param
	dryGain    *automation.Param
	wetGain    *automation.Param
	convolver  *dsp.Convolver
	compressor *dsp.Compressor
}

// New creates an engine at the given sample rate. Nothing sounds and no
// device is opened until Start.
func New(sampleRate int, opts ...Option) *Engine {
	e := &Engine{
		sampleRate: sampleRate,
		backend:    BackendEbiten,
		profile:    DefaultProfile(),
		scale:      ScalePentatonic,
		rng:        rand.New(rand.NewSource(rand.Int63())),
		volume:     automation.NewParam(1),
		dryGain:    automation.NewParam(1),
		wetGain:    automation.NewParam(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start builds the master effect chain and opens the playback backend.
// Calling Start on a running engine resumes playback and is otherwise a
// no-op: the reverb impulse and compressor state survive.
func (e *Engine) Start() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		if e.player != nil {
			e.player.Play()
		}
		return nil
	}

	left, right := dsp.GenerateImpulse(e.sampleRate, reverbSeconds, reverbDecay, e.rng)
	e.convolver = dsp.NewConvolver(left, right)
	e.compressor = dsp.NewCompressor(e.sampleRate, -10, 30, 4, 10, 100)
	e.updateMixLocked()

	switch e.backend {
	case BackendEbiten:
		p, err := audio.NewEbitenPlayer(e.sampleRate, e)
		if err != nil {
			return fmt.Errorf("start audio: %w", err)
		}
		e.player = p
	case BackendOto:
		p, err := audio.NewOtoPlayer(e.sampleRate, e)
		if err != nil {
			return fmt.Errorf("start audio: %w", err)
		}
		e.player = p
	case BackendNone:
		// Host-driven rendering.
	default:
		return errors.New("unknown backend")
	}

	e.started = true
	if e.player != nil {
		e.player.Play()
	}
	return nil
}

// Close stops playback and releases the output stream. The engine can be
// restarted with Start; voices sounding at Close are discarded.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return nil
	}
	e.started = false
	e.voices = e.voices[:0]
	if e.player == nil {
		return nil
	}
	err := e.player.Close()
	e.player = nil
	return err
}

// SetProfile replaces the timbre used by subsequent triggers. Voices already
// sounding keep the snapshot they copied at trigger time.
func (e *Engine) SetProfile(p Profile) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profile = p
	e.updateMixLocked()
}

// Profile returns the current timbre.
func (e *Engine) Profile() Profile {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.profile
}

// UpdateParam adjusts one profile field by key, parsing the value from its
// string form. Numeric keys take a float; ParamWaveform takes a waveform
// name. Only future triggers see the change, except ParamReverbMix, which
// retargets the master dry/wet split immediately.
func (e *Engine) UpdateParam(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if key == ParamWaveform {
		w, err := ParseWaveform(value)
		if err != nil {
			return err
		}
		e.profile.Waveform = w
		return nil
	}

	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fmt.Errorf("param %s: %w", key, err)
	}
	switch key {
	case ParamAttack:
		e.profile.Attack = f
	case ParamDecay:
		e.profile.Decay = f
	case ParamSustain:
		e.profile.Sustain = f
	case ParamRelease:
		e.profile.Release = f
	case ParamFilterFreq:
		e.profile.FilterFreq = f
	case ParamFilterQ:
		e.profile.FilterQ = f
	case ParamDistortion:
		e.profile.Distortion = f
	case ParamReverbMix:
		e.profile.ReverbMix = f
		e.updateMixLocked()
	default:
		return fmt.Errorf("unknown param %q", key)
	}
	return nil
}

// SetScale selects the scale for subsequent keystrokes. Unknown scales fall
// back to pentatonic at mapping time rather than erroring.
func (e *Engine) SetScale(s Scale) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scale = s
}

// SetHarmonizer toggles the delayed chord voices behind every keystroke.
func (e *Engine) SetHarmonizer(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.harmonizer = on
}

// SetMasterVolume retargets the post-voice bus gain, smoothed over 10 ms.
// It sits before the reverb split, so the tail fades with it.
func (e *Engine) SetMasterVolume(v float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.volume.SetTargetAtTime(math.Max(0, v), mixSmoothSec*float64(e.sampleRate))
}

// PlayKey triggers a voice for one keystroke. The rune is lowercased and
// mapped through the current scale; the profile is copied here, so later
// edits never reach this note. With the harmonizer on, two more voices
// sound a third and a fifth above, 20 and 40 ms later. No-op before Start.
func (e *Engine) PlayKey(r rune) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	p := e.profile
	freq := scale.Frequency(e.scale, scale.KeyIndex(r))
	e.trigger(freq, p, 1, 0)
	if !e.harmonizer {
		return
	}
	for _, h := range harmonyOffsets {
		ratio := math.Pow(2, float64(h.semitones)/12)
		e.trigger(freq*ratio, p, harmonyGain, int64(h.delaySec*float64(e.sampleRate)))
	}
}

// PlayError sounds the miss tone: a short falling sawtooth that skips the
// voice filter chain and the reverb split. No-op before Start.
func (e *Engine) PlayError() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.started {
		return
	}
	e.triggerError()
}

// ActiveVoiceCount reports voices not yet reaped, including scheduled
// harmonizer voices that haven't started sounding.
func (e *Engine) ActiveVoiceCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	n := 0
	for i := range e.voices {
		if e.voices[i].active {
			n++
		}
	}
	return n
}

// updateMixLocked retargets the constant-power dry/wet gains from the
// profile's reverb mix, smoothed so live changes don't click. Both taps obey
// dry^2 + wet^2 = 1 at every settled mix value.
func (e *Engine) updateMixLocked() {
	mix := math.Min(1, math.Max(0, e.profile.ReverbMix))
	tc := mixSmoothSec * float64(e.sampleRate)
	e.dryGain.SetTargetAtTime(math.Cos(mix*math.Pi/2), tc)
	e.wetGain.SetTargetAtTime(math.Sin(mix*math.Pi/2), tc)
}

// Process renders interleaved stereo float32 frames. It implements
// audio.SampleSource and is also the entry point for offline rendering.
// Signal flow per frame: voices → masterGain·volume → dry tap + convolver
// wet tap → (+ error bus) → compressor → clamp.
func (e *Engine) Process(dst []float32) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.started {
		for i := range dst {
			dst[i] = 0
		}
		return
	}

	sr := float64(e.sampleRate)
	for n := 0; n+1 < len(dst); n += 2 {
		now := e.clock
		var busL, busR, errL, errR float64
		for i := range e.voices {
			v := &e.voices[i]
			if !v.active {
				continue
			}
			s, done := v.renderVoice(now, sr)
			if done {
				v.active = false
				continue
			}
			if v.errorTone {
				errL += s * v.panL
				errR += s * v.panR
			} else {
				busL += s * v.panL
				busR += s * v.panR
			}
		}

		gain := masterGain * e.volume.ValueAt(now)
		busL *= gain
		busR *= gain

		dry := e.dryGain.ValueAt(now)
		wet := e.wetGain.ValueAt(now)
		revL, revR := e.convolver.Process(busL, busR)

		outL := busL*dry + revL*wet + errL
		outR := busR*dry + revR*wet + errR
		outL, outR = e.compressor.Process(outL, outR)

		dst[n] = float32(clamp(outL))
		dst[n+1] = float32(clamp(outR))
		e.clock++
	}
}

func clamp(v float64) float64 {
	if v > 1 {
		return 1
	}
	if v < -1 {
		return -1
	}
	return v
}
