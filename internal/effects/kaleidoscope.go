package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	opensimplex "github.com/ojrac/opensimplex-go"
)

const kaleidoSegments = 6

// Kaleidoscope mirrors a single noise-driven wedge across kaleidoSegments
// symmetric segments; motion rate scales with bass, hue cycles with time.
type Kaleidoscope struct {
	noise opensimplex.Noise
	env   driveEnvelope
	t     float64
}

func NewKaleidoscope() *Kaleidoscope {
	return &Kaleidoscope{noise: opensimplex.NewNormalized(7)}
}

func (k *Kaleidoscope) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame
	cx, cy := float64(Width-1)/2, float64(Height-1)/2

	k.t += dt * (0.4 + 2.5*float64(feat.Bass))

	drive := k.env.update(bandDrive(feat.Bands[:]), dt)
	if drive <= 0.01 {
		return frame
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Hypot(dx, dy)
			theta := math.Atan2(dy, dx)

			wedge := 2 * math.Pi / kaleidoSegments
			folded := math.Mod(theta, wedge)
			if folded < 0 {
				folded += wedge
			}
			if folded > wedge/2 {
				folded = wedge - folded
			}

			fx := dist * math.Cos(folded) / 4
			fy := dist * math.Sin(folded) / 4
			n := k.noise.Eval3(fx, fy, k.t)

			hue := math.Mod(n+0.2*p.T, 1.0)
			if hue < 0 {
				hue += 1
			}
			r, g, b := colorFor(hue, p.T, p.ColorMode, p.Power*drive*(0.4+0.6*p.Intensity))
			frame.Set(x, y, r, g, b)
		}
	}
	return frame
}
