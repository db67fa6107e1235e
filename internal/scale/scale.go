package scale

import "math"

// RootFrequency is the tonic every scale is built on: C3, three octaves
// below the usual middle-C-centric reference.
const RootFrequency = 130.81

// Scale names a fixed set of semitone offsets from the tonic.
type Scale string

const (
	Pentatonic Scale = "pentatonic"
	Major      Scale = "major"
	Minor      Scale = "minor"
	Blues      Scale = "blues"
	Chromatic  Scale = "chromatic"
)

var intervals = map[Scale][]int{
	Pentatonic: {0, 2, 4, 7, 9},
	Major:      {0, 2, 4, 5, 7, 9, 11},
	Minor:      {0, 2, 3, 5, 7, 8, 10},
	Blues:      {0, 3, 5, 6, 7, 10},
	Chromatic:  {0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11},
}

// Intervals returns the semitone offsets for s. Unknown scales fall back to
// pentatonic, which is also the engine default.
func Intervals(s Scale) []int {
	if iv, ok := intervals[s]; ok {
		return iv
	}
	return intervals[Pentatonic]
}

// Valid reports whether s names one of the five known scales.
func Valid(s Scale) bool {
	_, ok := intervals[s]
	return ok
}

// Frequency maps an index within s to a pitch in Hz.
//
// The octave is floored division on the raw index while the note lookup uses
// the absolute value. A negative index therefore drops whole octaves but
// still picks an ascending interval within them. That asymmetry is part of
// the contract: it decides the exact pitch heard for characters that map
// below zero, so it must not be "corrected" to a symmetric mod.
func Frequency(s Scale, index int) float64 {
	iv := Intervals(s)
	span := len(iv)
	octave := int(math.Floor(float64(index) / float64(span)))
	noteIndex := absInt(index) % span
	semitones := octave*12 + iv[noteIndex]
	return RootFrequency * math.Pow(2, float64(semitones)/12)
}

// KeyIndex derives the scale index for a typed character: the lowercase
// ordinal minus 'a'. Characters ordered before 'a' come out negative and
// non-letters pass through the same arithmetic with no special-casing.
func KeyIndex(r rune) int {
	if r >= 'A' && r <= 'Z' {
		r += 'a' - 'A'
	}
	return int(r) - 'a'
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
