package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const (
	oscPhaseK       = 0.6
	oscGlowFraction = 0.25
	oscMaxAmpPx     = float64(Height)/2 - 1.5

	// oscSilenceRMS matches the feature extractor's silence gate; below
	// it there is no line to draw, only a flat midline, which colorFor
	// would otherwise still render at its brightness floor.
	oscSilenceRMS = 0.004
)

// Oscilloscope draws a single sinusoidal line whose amplitude tracks RMS
// and whose phase speed tracks mean band energy. Wave selects the same
// rendering.
type Oscilloscope struct {
	phase float64
}

func NewOscilloscope() *Oscilloscope { return &Oscilloscope{} }

func (o *Oscilloscope) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame

	meanBand := meanOf(feat.Bands[:])
	o.phase += dt * (1.0 + 6.0*float64(meanBand))

	if feat.RMS <= oscSilenceRMS {
		return frame
	}

	amp := math.Min(float64(feat.RMS)*6.0*(0.5+p.Intensity), oscMaxAmpPx)
	mid := float64(Height-1) / 2

	for x := 0; x < Width; x++ {
		y := mid + amp*math.Sin(o.phase+float64(x)*oscPhaseK)
		yi := int(math.Round(y))

		hue := math.Mod(float64(x)/float64(Width)+0.12*p.T, 1.0)
		r, g, b := colorFor(hue, p.T, p.ColorMode, p.Power)
		frame.Set(x, yi, r, g, b)

		frame.Blend(x, yi+1, r*oscGlowFraction, g*oscGlowFraction, b*oscGlowFraction)
		frame.Blend(x, yi-1, r*oscGlowFraction, g*oscGlowFraction, b*oscGlowFraction)
	}
	return frame
}

func meanOf(vs []float32) float32 {
	if len(vs) == 0 {
		return 0
	}
	var sum float32
	for _, v := range vs {
		sum += v
	}
	return sum / float32(len(vs))
}
