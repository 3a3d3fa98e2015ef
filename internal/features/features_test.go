package features

import (
	"math"
	"testing"
)

const (
	testSR   = 44100
	testNFFT = 1024
)

func TestSilenceBlock(t *testing.T) {
	block := make([]float32, testNFFT)
	e := New(testSR, testNFFT)
	f := e.Process(block, 1.0, 0.0)

	if f.RMS != 0 {
		// rmsEpsilon makes true RMS tiny but non-exactly-zero after sqrt;
		// sqrt(1e-12) ~ 1e-6, well under the gate, so bands must still be 0.
		if f.RMS > 0.001 {
			t.Fatalf("rms = %v, want ~0", f.RMS)
		}
	}
	for i, b := range f.Bands {
		if b != 0 {
			t.Fatalf("band[%d] = %v, want 0 on silence", i, b)
		}
	}
	if f.Bass != 0 || f.Mid != 0 || f.Treble != 0 {
		t.Fatalf("aggregates not zero on silence: bass=%v mid=%v treble=%v", f.Bass, f.Mid, f.Treble)
	}
}

func sineBlock(freq float64, n, sr int) []float32 {
	block := make([]float32, n)
	for i := 0; i < n; i++ {
		block[i] = float32(math.Sin(2 * math.Pi * freq * float64(i) / float64(sr)))
	}
	return block
}

func TestFullScale1kHzSine(t *testing.T) {
	block := sineBlock(1000, testNFFT, testSR)
	e := New(testSR, testNFFT)
	f := e.Process(block, 1.0, 0.0)

	if f.RMS < 0.65 || f.RMS > 0.75 {
		t.Fatalf("rms = %v, want ~0.707", f.RMS)
	}
	// 1kHz falls in band 0 (0-1250Hz).
	if f.Bands[0] < 0.5 {
		t.Fatalf("band[0] = %v, want > 0.5 for a 1kHz tone", f.Bands[0])
	}
	for i := 2; i < NumBands; i++ {
		if f.Bands[i] >= f.Bands[0] {
			t.Fatalf("band[%d] = %v should be well below band[0] = %v", i, f.Bands[i], f.Bands[0])
		}
	}
}

func TestDCRemoved(t *testing.T) {
	block := make([]float32, testNFFT)
	for i := range block {
		block[i] = 1.0 // pure DC
	}
	e := New(testSR, testNFFT)
	f := e.Process(block, 1.0, 0.0)
	for i, b := range f.Bands {
		if b != 0 {
			t.Fatalf("band[%d] = %v, want 0 for pure DC input (DC removed, gated by silence)", i, b)
		}
	}
}

func TestBandsAlwaysInRangeAndFinite(t *testing.T) {
	e := New(testSR, testNFFT)
	block := sineBlock(5000, testNFFT, testSR)
	f := e.Process(block, 3.0, 0.5)
	if len(f.Bands) != NumBands {
		t.Fatalf("len(bands) = %d, want %d", len(f.Bands), NumBands)
	}
	for i, b := range f.Bands {
		if math.IsNaN(float64(b)) || math.IsInf(float64(b), 0) {
			t.Fatalf("band[%d] is not finite: %v", i, b)
		}
		if b < 0 || b > 1 {
			t.Fatalf("band[%d] = %v out of [0,1]", i, b)
		}
	}
	if f.RMS < 0 {
		t.Fatalf("rms < 0: %v", f.RMS)
	}
}

func TestAggregatesAreMeanOfSlices(t *testing.T) {
	e := New(testSR, testNFFT)
	block := sineBlock(3000, testNFFT, testSR)
	f := e.Process(block, 1.0, 0.0)

	wantBass := meanRange(f.Bands[0:5])
	wantMid := meanRange(f.Bands[5:11])
	wantTreble := meanRange(f.Bands[11:16])
	if f.Bass != wantBass || f.Mid != wantMid || f.Treble != wantTreble {
		t.Fatalf("aggregate mismatch: got (%v,%v,%v) want (%v,%v,%v)", f.Bass, f.Mid, f.Treble, wantBass, wantMid, wantTreble)
	}
}

func TestMalformedLengthPaddedOrTruncated(t *testing.T) {
	e := New(testSR, testNFFT)
	short := make([]float32, 100)
	long := make([]float32, 4096)
	if _, err := panicCheck(func() { e.Process(short, 1, 0) }); err != nil {
		t.Fatalf("short block panicked: %v", err)
	}
	if _, err := panicCheck(func() { e.Process(long, 1, 0) }); err != nil {
		t.Fatalf("long block panicked: %v", err)
	}
}

func panicCheck(f func()) (ok bool, err any) {
	defer func() {
		if r := recover(); r != nil {
			err = r
		}
	}()
	f()
	return true, nil
}

func TestSilenceGateZeroesBandsUnderSmoothing(t *testing.T) {
	e := New(testSR, testNFFT)
	loud := sineBlock(1000, testNFFT, testSR)
	quiet := make([]float32, testNFFT)

	e.Process(loud, 1.0, 0.9)
	f2 := e.Process(quiet, 1.0, 0.9)
	// With smoothing 0.9 the internal prevDB decays gradually; since RMS is
	// below the gate on the quiet block, bands are emitted as zero even
	// though internal state is not reset. The loud blocks after it only
	// exercise recovery from that retained state: for this tone band 0
	// normalizes to 1 either way, so no value is asserted for them.
	e.Process(loud, 1.0, 0.9)
	f3 := e.Process(loud, 1.0, 0.9)
	if f2.Bands[0] != 0 {
		t.Fatalf("expected gated silence on the quiet block, got %v", f2.Bands[0])
	}
	_ = f3
}
