// Package features turns raw PCM blocks into normalized spectral bands.
// The pipeline (DC removal, gain, RMS, Hann window, real FFT, banding, dB,
// smoothing, normalization, silence gate) is deterministic and reuses its
// scratch buffers across calls; only the emitted record's power spectrum
// copy is allocated per block.
package features

import (
	"math"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	NumBands = 16

	noiseFloorDB = -80.0
	rangeDB      = 50.0
	rmsGate      = 0.004
	rmsEpsilon   = 1e-12
	powerEpsilon = 1e-12

	bandEdgeHz = 1250.0 // 16 bands * 1250 Hz = 20 kHz
)

// Features is the immutable per-block record emitted by Extractor.Process.
type Features struct {
	RMS           float32
	Bands         [NumBands]float32
	PowerSpectrum []float32 // len == NFFT/2+1
	Bass          float32
	Mid           float32
	Treble        float32
	SampleRate    int
	NFFT          int
}

// Extractor converts one audio block at a time into a Features record,
// carrying only the private smoothing state between calls.
type Extractor struct {
	sampleRate int
	nfft       int

	window []float32
	fft    *fourier.FFT

	bandLo [NumBands]int
	bandHi [NumBands]int

	prevDB [NumBands]float64

	// scratch buffers reused across Process calls
	scratch  []float64
	coeffs   []complex128
	power    []float64
	powerF32 []float32
}

// New builds an Extractor for the given sample rate and FFT length.
// nfft should match the audio block size (typically 1024 at 44100 Hz).
func New(sampleRate, nfft int) *Extractor {
	e := &Extractor{
		sampleRate: sampleRate,
		nfft:       nfft,
		window:     hann(nfft),
		fft:        fourier.NewFFT(nfft),
		scratch:    make([]float64, nfft),
		coeffs:     make([]complex128, nfft/2+1),
		power:      make([]float64, nfft/2+1),
		powerF32:   make([]float32, nfft/2+1),
	}
	e.computeBandEdges()
	return e
}

// hann returns a Hann window of length n.
func hann(n int) []float32 {
	w := make([]float32, n)
	if n == 1 {
		w[0] = 1
		return w
	}
	for i := 0; i < n; i++ {
		w[i] = float32(0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(n-1))))
	}
	return w
}

// computeBandEdges converts the 16 linear 1250 Hz-wide band edges (0..20kHz)
// into FFT bin indices for this sample rate/nfft. The lower bin bound is
// always >= 1 so bin 0 (DC) never contributes.
func (e *Extractor) computeBandEdges() {
	nyquistBin := e.nfft / 2
	hzPerBin := float64(e.sampleRate) / float64(e.nfft)
	for b := 0; b < NumBands; b++ {
		loHz := float64(b) * bandEdgeHz
		hiHz := float64(b+1) * bandEdgeHz
		lo := int(loHz/hzPerBin + 0.5)
		hi := int(hiHz/hzPerBin + 0.5)
		if lo < 1 {
			lo = 1
		}
		if hi <= lo {
			hi = lo + 1
		}
		if hi > nyquistBin+1 {
			hi = nyquistBin + 1
		}
		if lo > nyquistBin+1 {
			lo = nyquistBin + 1
		}
		e.bandLo[b] = lo
		e.bandHi[b] = hi
	}
}

// Process runs the full per-block pipeline on one audio block. The block
// is padded or truncated to e.nfft if its length differs.
func (e *Extractor) Process(block []float32, gain, smoothing float64) Features {
	x := e.scratch
	n := e.nfft
	for i := 0; i < n; i++ {
		if i < len(block) {
			x[i] = float64(block[i])
		} else {
			x[i] = 0
		}
	}

	// 1. DC removal.
	mean := 0.0
	for _, v := range x {
		mean += v
	}
	mean /= float64(n)
	for i := range x {
		x[i] -= mean
	}

	// 2. Gain.
	for i := range x {
		x[i] *= gain
	}

	// 3. RMS (post-gain).
	sumSq := 0.0
	for _, v := range x {
		sumSq += v * v
	}
	rms := math.Sqrt(sumSq/float64(n) + rmsEpsilon)
	rms = sanitize(rms)

	// 4. Window. RMS is already computed, so x can be windowed in place.
	for i := range x {
		x[i] *= float64(e.window[i])
	}

	// 5. Forward real FFT.
	coeffs := e.fft.Coefficients(e.coeffs, x)

	// 6. Power spectrum, DC forced to 0.
	powerLen := n/2 + 1
	power := e.power
	for i := 0; i < powerLen && i < len(coeffs); i++ {
		re := real(coeffs[i])
		im := imag(coeffs[i])
		power[i] = re*re + im*im
	}
	if len(power) > 0 {
		power[0] = 0
	}

	// 7-9. Per-band mean energy, dB, temporal smoothing.
	var bandsDB [NumBands]float64
	s := smoothing
	for b := 0; b < NumBands; b++ {
		lo, hi := e.bandLo[b], e.bandHi[b]
		if hi > len(power) {
			hi = len(power)
		}
		if lo >= hi {
			bandsDB[b] = noiseFloorDB
			continue
		}
		sum := 0.0
		for i := lo; i < hi; i++ {
			sum += power[i]
		}
		energy := sum / float64(hi-lo)
		db := 10 * math.Log10(energy+powerEpsilon)
		db = s*e.prevDB[b] + (1-s)*db
		e.prevDB[b] = db
		bandsDB[b] = db
	}

	// 10. Normalization.
	var bandsNorm [NumBands]float32
	for b := 0; b < NumBands; b++ {
		v := (bandsDB[b] - noiseFloorDB) / rangeDB
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		bandsNorm[b] = float32(sanitize(v))
	}

	// 11. Silence gate: internal prev state (e.prevDB) already updated above,
	// so recovery remains smooth; only the emitted bands are zeroed.
	if rms < rmsGate {
		for b := range bandsNorm {
			bandsNorm[b] = 0
		}
	}

	// 12. Aggregates.
	bass := meanRange(bandsNorm[0:5])
	mid := meanRange(bandsNorm[5:11])
	treble := meanRange(bandsNorm[11:16])

	for i, v := range power {
		if i < len(e.powerF32) {
			e.powerF32[i] = float32(sanitize(v))
		}
	}
	out := make([]float32, len(e.powerF32))
	copy(out, e.powerF32)

	return Features{
		RMS:           float32(rms),
		Bands:         bandsNorm,
		PowerSpectrum: out,
		Bass:          bass,
		Mid:           mid,
		Treble:        treble,
		SampleRate:    e.sampleRate,
		NFFT:          e.nfft,
	}
}

func meanRange(vs []float32) float32 {
	if len(vs) == 0 {
		return 0
	}
	var sum float32
	for _, v := range vs {
		sum += v
	}
	return sum / float32(len(vs))
}

// sanitize replaces NaN/Inf with 0.
func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
