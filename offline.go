package typetone

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
)

// KeyEvent is one scripted keystroke for offline rendering.
type KeyEvent struct {
	At    float64 // seconds from the start of the render
	Char  rune    // key pressed; ignored when Error is set
	Error bool    // trigger the miss tone instead of a note
}

// RenderScript plays a timed keystroke script through an engine and returns
// the interleaved stereo float32 output. The engine must use BackendNone:
// offline rendering drives Process itself and a live device would race it.
// Events are rendered in time order regardless of slice order.
func RenderScript(e *Engine, events []KeyEvent, seconds float64) ([]float32, error) {
	if e.backend != BackendNone {
		return nil, errors.New("offline rendering requires BackendNone")
	}
	if err := e.Start(); err != nil {
		return nil, err
	}

	evs := make([]KeyEvent, len(events))
	copy(evs, events)
	sort.SliceStable(evs, func(i, j int) bool { return evs[i].At < evs[j].At })

	frames := int(float64(e.sampleRate) * seconds)
	out := make([]float32, frames*2)
	next := 0
	for frame := 0; frame < frames; {
		// Render up to the next event so its trigger lands on the right frame.
		limit := frames
		for next < len(evs) {
			at := int(evs[next].At * float64(e.sampleRate))
			if at > frame {
				if at < limit {
					limit = at
				}
				break
			}
			ev := evs[next]
			next++
			if ev.Error {
				e.PlayError()
			} else {
				e.PlayKey(ev.Char)
			}
		}
		if limit == frame {
			continue
		}
		e.Process(out[frame*2 : limit*2])
		frame = limit
	}
	return out, nil
}

// EncodeWAVFloat32LE wraps interleaved float32 samples in a RIFF/WAVE
// container (format 3, IEEE float).
func EncodeWAVFloat32LE(samples []float32, sampleRate, channels int) []byte {
	dataSize := len(samples) * 4
	byteRate := sampleRate * channels * 4
	blockAlign := channels * 4
	chunkSize := 36 + dataSize
	out := make([]byte, 44+dataSize)
	copy(out[0:], []byte("RIFF"))
	binary.LittleEndian.PutUint32(out[4:], uint32(chunkSize))
	copy(out[8:], []byte("WAVE"))
	copy(out[12:], []byte("fmt "))
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 3)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(byteRate))
	binary.LittleEndian.PutUint16(out[32:], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:], 32)
	copy(out[36:], []byte("data"))
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))
	for i, s := range samples {
		binary.LittleEndian.PutUint32(out[44+i*4:], math.Float32bits(s))
	}
	return out
}

// RenderText maps a string to evenly spaced keystrokes, one every interval
// seconds, and renders it with a tail for the reverb to ring out.
func RenderText(e *Engine, text string, interval, tailSeconds float64) ([]float32, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("interval %v must be positive", interval)
	}
	runes := []rune(text)
	events := make([]KeyEvent, 0, len(runes))
	for i, r := range runes {
		events = append(events, KeyEvent{At: float64(i) * interval, Char: r})
	}
	total := float64(len(runes))*interval + tailSeconds
	return RenderScript(e, events, total)
}
