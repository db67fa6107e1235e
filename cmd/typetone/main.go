package main

import (
	"bufio"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"typetone"
)

func main() {
	var (
		sampleRate  = flag.Int("sample-rate", 44100, "output sample rate")
		backendName = flag.String("backend", "ebiten", "audio backend: ebiten|oto")
		scaleName   = flag.String("scale", "pentatonic", "scale: pentatonic|major|minor|blues|chromatic")
		waveName    = flag.String("waveform", "triangle", "oscillator: sine|square|sawtooth|triangle")
		harmonize   = flag.Bool("harmonize", false, "add delayed third and fifth above each note")
		attack      = flag.Float64("attack", 0.005, "envelope attack seconds")
		decay       = flag.Float64("decay", 0.12, "envelope decay seconds")
		sustain     = flag.Float64("sustain", 0.3, "sustain level 0..1")
		release     = flag.Float64("release", 0.25, "envelope release seconds")
		filterFreq  = flag.Float64("filter-freq", 2400, "lowpass cutoff Hz")
		filterQ     = flag.Float64("filter-q", 1, "lowpass resonance")
		distortion  = flag.Float64("distortion", 0, "waveshaper amount 0..1")
		reverb      = flag.Float64("reverb", 0.25, "reverb mix 0..1")
		volume      = flag.Float64("volume", 1.0, "master volume scalar")
		text        = flag.String("text", "", "play this text instead of reading the keyboard")
		keyRate     = flag.Float64("key-rate", 8, "keystrokes per second in -text mode")
		wavPath     = flag.String("wav", "", "render -text offline to a WAV file instead of playing")
		live        = flag.Bool("live", false, "raw-terminal mode: every keypress sounds immediately")
	)
	flag.Parse()

	sc, err := parseScale(*scaleName)
	if err != nil {
		log.Fatal(err)
	}
	wave, err := typetone.ParseWaveform(*waveName)
	if err != nil {
		log.Fatal(err)
	}
	profile := typetone.Profile{
		Waveform:   wave,
		Attack:     *attack,
		Decay:      *decay,
		Sustain:    *sustain,
		Release:    *release,
		FilterFreq: *filterFreq,
		FilterQ:    *filterQ,
		Distortion: *distortion,
		ReverbMix:  *reverb,
	}

	if *wavPath != "" {
		if *text == "" {
			log.Fatal("-wav requires -text")
		}
		eng := typetone.New(*sampleRate, typetone.WithBackend(typetone.BackendNone))
		configure(eng, profile, sc, *harmonize, *volume)
		samples, err := typetone.RenderText(eng, *text, 1 / *keyRate, 3)
		if err != nil {
			log.Fatal(err)
		}
		wav := typetone.EncodeWAVFloat32LE(samples, *sampleRate, 2)
		if err := os.WriteFile(*wavPath, wav, 0o644); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s (%0.1fs)\n", *wavPath, float64(len(samples)/2) / float64(*sampleRate))
		return
	}

	backend, err := parseBackend(*backendName)
	if err != nil {
		log.Fatal(err)
	}
	eng := typetone.New(*sampleRate, typetone.WithBackend(backend))
	configure(eng, profile, sc, *harmonize, *volume)
	if err := eng.Start(); err != nil {
		log.Fatal(err)
	}
	defer eng.Close()

	if *text != "" {
		playText(eng, *text, *keyRate)
		return
	}
	if *live {
		if err := liveLoop(eng); err != nil {
			log.Fatal(err)
		}
		return
	}
	lineLoop(eng, *keyRate)
}

func configure(eng *typetone.Engine, p typetone.Profile, sc typetone.Scale, harmonize bool, volume float64) {
	eng.SetProfile(p)
	eng.SetScale(sc)
	eng.SetHarmonizer(harmonize)
	eng.SetMasterVolume(volume)
}

func playText(eng *typetone.Engine, text string, keyRate float64) {
	interval := time.Duration(float64(time.Second) / keyRate)
	for _, r := range text {
		eng.PlayKey(r)
		fmt.Printf("%c", r)
		time.Sleep(interval)
	}
	fmt.Println()
	time.Sleep(3 * time.Second) // let the tail ring out
}

// liveLoop puts the terminal in raw mode so each keypress sounds as it
// lands. Printable runes play notes; control characters play the miss tone.
// Ctrl-C or Escape exits.
func liveLoop(eng *typetone.Engine) error {
	fd := int(os.Stdin.Fd())
	old, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("raw terminal: %w", err)
	}
	defer term.Restore(fd, old)

	fmt.Print("typetone live: type to play, Esc or Ctrl-C to quit\r\n")
	buf := make([]byte, 1)
	for {
		if _, err := os.Stdin.Read(buf); err != nil {
			return err
		}
		switch b := buf[0]; {
		case b == 3 || b == 27: // Ctrl-C, Escape
			fmt.Print("\r\n")
			return nil
		case b >= 32 && b < 127:
			eng.PlayKey(rune(b))
			fmt.Printf("%c", b)
		default:
			eng.PlayError()
		}
	}
}

// lineLoop is the cooked-terminal fallback: each entered line plays as a
// timed keystroke sequence.
func lineLoop(eng *typetone.Engine, keyRate float64) {
	fmt.Println("typetone: type a line and press enter (empty line quits)")
	in := bufio.NewScanner(os.Stdin)
	for in.Scan() {
		line := in.Text()
		if line == "" {
			return
		}
		playText(eng, line, keyRate)
	}
}

func parseScale(name string) (typetone.Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "pentatonic":
		return typetone.ScalePentatonic, nil
	case "major":
		return typetone.ScaleMajor, nil
	case "minor":
		return typetone.ScaleMinor, nil
	case "blues":
		return typetone.ScaleBlues, nil
	case "chromatic":
		return typetone.ScaleChromatic, nil
	default:
		return "", fmt.Errorf("invalid -scale %q (expected pentatonic|major|minor|blues|chromatic)", name)
	}
}

func parseBackend(name string) (typetone.Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ebiten":
		return typetone.BackendEbiten, nil
	case "oto":
		return typetone.BackendOto, nil
	default:
		return 0, fmt.Errorf("invalid -backend %q (expected ebiten|oto)", name)
	}
}
