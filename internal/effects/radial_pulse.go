package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const (
	radialMaxRadius    = float64(Width) / 2
	radialMinThickness = 0.6
	radialMaxThickness = 3.0
)

// RadialPulse emits concentric pulses from matrix center: radius tracks
// bass, thickness tracks mid, angular swirl tracks treble.
type RadialPulse struct {
	swirl float64
}

func NewRadialPulse() *RadialPulse { return &RadialPulse{} }

func (rp *RadialPulse) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame

	cx, cy := float64(Width-1)/2, float64(Height-1)/2
	radius := float64(feat.Bass) * radialMaxRadius * (0.6 + 0.8*p.Intensity)
	thickness := radialMinThickness + float64(feat.Mid)*(radialMaxThickness-radialMinThickness)

	rp.swirl += dt * float64(feat.Treble) * 2 * math.Pi

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Hypot(dx, dy)
			delta := math.Abs(dist - radius)
			if delta > thickness/2 {
				continue
			}
			angle := math.Atan2(dy, dx) + rp.swirl
			ringStrength := 1.0 - delta/(thickness/2+1e-6)
			hue := math.Mod(angle/(2*math.Pi)+0.5+0.1*p.T, 1.0)
			if hue < 0 {
				hue += 1
			}
			r, g, b := colorFor(hue, p.T, p.ColorMode, p.Power)
			frame.Blend(x, y, r*ringStrength, g*ringStrength, b*ringStrength)
		}
	}
	return frame
}
