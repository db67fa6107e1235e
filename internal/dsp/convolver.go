package dsp

import "math"

// Convolver applies a stereo impulse response with uniformly partitioned
// FFT convolution (a frequency delay line with overlap-save blocks). Input
// is streamed one frame at a time; output lags the input by one block,
// which the master bus absorbs as part of the reverb pre-delay.
type Convolver struct {
	left  *firChannel
	right *firChannel
}

const convolverBlock = 2048

// NewConvolver builds a convolver for the given stereo kernel. The kernel
// is energy-normalized so the wet level does not scale with kernel length.
func NewConvolver(left, right []float64) *Convolver {
	scale := normalizeScale(left, right)
	return &Convolver{
		left:  newFIRChannel(left, scale),
		right: newFIRChannel(right, scale),
	}
}

// Process convolves one stereo frame.
func (c *Convolver) Process(l, r float64) (float64, float64) {
	return c.left.process(l), c.right.process(r)
}

// Latency returns the block delay of the wet path in frames.
func (c *Convolver) Latency() int { return convolverBlock }

// normalizeScale computes a gain that levels the kernel's total energy,
// mirroring how convolution reverbs normalize recorded impulse responses:
// a white-noise kernel of energy E raises signal power by E, so scaling by
// 1/sqrt(E) keeps the wet level independent of kernel length.
func normalizeScale(chans ...[]float64) float64 {
	var energy float64
	for _, ch := range chans {
		for _, v := range ch {
			energy += v * v
		}
	}
	if energy == 0 {
		return 1
	}
	// Calibration keeps the wet tail comfortably under the dry signal.
	const calibration = 0.125
	return calibration / math.Sqrt(energy)
}

// firChannel is one channel of the frequency delay line.
type firChannel struct {
	block int
	n     int // FFT size, 2*block
	parts [][]complex128 // kernel partition spectra
	hist  [][]complex128 // ring of recent input spectra
	hpos  int
	inbuf []float64 // sliding window: previous block | current block
	fill  int
	out   []float64 // output for the block in progress
	acc   []complex128
}

func newFIRChannel(kernel []float64, scale float64) *firChannel {
	f := &firChannel{
		block: convolverBlock,
		n:     convolverBlock * 2,
	}
	nparts := (len(kernel) + f.block - 1) / f.block
	if nparts < 1 {
		nparts = 1
	}
	f.parts = make([][]complex128, nparts)
	for p := 0; p < nparts; p++ {
		spec := make([]complex128, f.n)
		for i := 0; i < f.block; i++ {
			idx := p*f.block + i
			if idx < len(kernel) {
				spec[i] = complex(kernel[idx]*scale, 0)
			}
		}
		fft(spec, false)
		f.parts[p] = spec
	}
	f.hist = make([][]complex128, nparts)
	for i := range f.hist {
		f.hist[i] = make([]complex128, f.n)
	}
	f.inbuf = make([]float64, f.n)
	f.out = make([]float64, f.block)
	f.acc = make([]complex128, f.n)
	return f
}

func (f *firChannel) process(x float64) float64 {
	out := f.out[f.fill]
	f.inbuf[f.block+f.fill] = x
	f.fill++
	if f.fill == f.block {
		f.advanceBlock()
		f.fill = 0
	}
	return out
}

func (f *firChannel) advanceBlock() {
	// Spectrum of [previous block | current block].
	spec := f.hist[f.hpos]
	for i := range spec {
		spec[i] = complex(f.inbuf[i], 0)
	}
	fft(spec, false)

	for i := range f.acc {
		f.acc[i] = 0
	}
	for k, part := range f.parts {
		h := f.hist[(f.hpos-k+len(f.hist))%len(f.hist)]
		for i := range f.acc {
			f.acc[i] += h[i] * part[i]
		}
	}
	fft(f.acc, true)
	// Overlap-save: the second half of the circular convolution is alias-free.
	for i := 0; i < f.block; i++ {
		f.out[i] = real(f.acc[f.block+i])
	}

	copy(f.inbuf[:f.block], f.inbuf[f.block:])
	f.hpos = (f.hpos + 1) % len(f.hist)
}

// fft is an in-place iterative radix-2 transform. inverse applies the
// conjugate transform and 1/n scaling. len(a) must be a power of two.
func fft(a []complex128, inverse bool) {
	n := len(a)
	for i, j := 1, 0; i < n; i++ {
		bit := n >> 1
		for ; j&bit != 0; bit >>= 1 {
			j ^= bit
		}
		j ^= bit
		if i < j {
			a[i], a[j] = a[j], a[i]
		}
	}
	for length := 2; length <= n; length <<= 1 {
		ang := 2 * math.Pi / float64(length)
		if !inverse {
			ang = -ang
		}
		sin, cos := math.Sincos(ang)
		wl := complex(cos, sin)
		for start := 0; start < n; start += length {
			w := complex(1, 0)
			half := length / 2
			for i := start; i < start+half; i++ {
				u := a[i]
				v := a[i+half] * w
				a[i] = u + v
				a[i+half] = u - v
				w *= wl
			}
		}
	}
	if inverse {
		inv := complex(1/float64(n), 0)
		for i := range a {
			a[i] *= inv
		}
	}
}
