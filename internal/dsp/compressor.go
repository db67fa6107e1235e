package dsp

import "math"

// Compressor is the master-bus dynamics stage: a per-channel envelope
// follower driving a soft-knee gain computer in the dB domain.
type Compressor struct {
	thresholdDB float64
	kneeDB      float64
	ratio       float64
	attack      float64 // follower coefficient
	release     float64 // follower coefficient
	envL        float64
	envR        float64
}

// NewCompressor creates a compressor.
// thresholdDB: level above which gain reduction starts (e.g. -10)
// kneeDB: width of the soft knee around the threshold (e.g. 30)
// ratio: compression ratio (e.g. 4 for 4:1)
// attackMs/releaseMs: envelope follower times
func NewCompressor(sampleRate int, thresholdDB, kneeDB, ratio, attackMs, releaseMs float64) *Compressor {
	sr := float64(sampleRate)
	return &Compressor{
		thresholdDB: thresholdDB,
		kneeDB:      kneeDB,
		ratio:       ratio,
		attack:      1 - math.Exp(-1/(attackMs*sr/1000)),
		release:     1 - math.Exp(-1/(releaseMs*sr/1000)),
	}
}

// Process compresses one stereo frame.
func (c *Compressor) Process(l, r float64) (float64, float64) {
	absL := math.Abs(l)
	absR := math.Abs(r)
	if absL > c.envL {
		c.envL += c.attack * (absL - c.envL)
	} else {
		c.envL += c.release * (absL - c.envL)
	}
	if absR > c.envR {
		c.envR += c.attack * (absR - c.envR)
	} else {
		c.envR += c.release * (absR - c.envR)
	}
	return l * c.gainFor(c.envL), r * c.gainFor(c.envR)
}

// gainFor computes linear gain for an envelope level using the soft-knee
// transfer function: unity below the knee, ratio-limited above it, with a
// quadratic blend across the knee region.
func (c *Compressor) gainFor(env float64) float64 {
	if env <= 0 {
		return 1
	}
	inDB := 20 * math.Log10(env)
	over := inDB - c.thresholdDB
	var outDB float64
	switch {
	case 2*over < -c.kneeDB:
		outDB = inDB
	case 2*math.Abs(over) <= c.kneeDB:
		outDB = inDB + (1/c.ratio-1)*(over+c.kneeDB/2)*(over+c.kneeDB/2)/(2*c.kneeDB)
	default:
		outDB = c.thresholdDB + over/c.ratio
	}
	return math.Pow(10, (outDB-inDB)/20)
}

// Reset clears the envelope followers.
func (c *Compressor) Reset() {
	c.envL = 0
	c.envR = 0
}
