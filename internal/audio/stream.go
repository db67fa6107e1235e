// Package audio bridges the engine's float32 stereo render callback to a
// playback backend. Two backends are provided: the ebiten/v2 audio context
// and a direct oto/v3 player, both consuming the same little-endian
// float32 stream.
package audio

import (
	"encoding/binary"
	"math"
)

// SampleSource produces interleaved stereo float32 frames. Process is
// called from the backend's reader goroutine; the source owns its locking.
type SampleSource interface {
	Process(dst []float32)
}

// Player is a running output stream attached to a SampleSource.
type Player interface {
	Play()
	Pause()
	Close() error
}

// streamReader adapts a SampleSource to the io.Reader both backends expect:
// interleaved stereo float32, little-endian, 8 bytes per frame.
type streamReader struct {
	source SampleSource
	buf    []float32
}

func newStreamReader(source SampleSource) *streamReader {
	return &streamReader{source: source}
}

func (r *streamReader) Read(p []byte) (int, error) {
	frames := len(p) / 8
	if frames == 0 {
		return 0, nil
	}
	need := frames * 2
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}
	r.buf = r.buf[:need]
	r.source.Process(r.buf)
	for i := 0; i < need; i++ {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(r.buf[i]))
	}
	return frames * 8, nil
}

func (r *streamReader) Close() error { return nil }
