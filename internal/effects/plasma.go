package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Plasma renders a simplex-noise field whose evolution rate scales with
// bass and whose hue cycles with time.
type Plasma struct {
	noise opensimplex.Noise
	env   driveEnvelope
	t     float64
}

func NewPlasma() *Plasma {
	return &Plasma{noise: opensimplex.NewNormalized(1)}
}

func (pl *Plasma) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame

	pl.t += dt * (0.3 + 2.0*float64(feat.Bass))

	drive := pl.env.update(bandDrive(feat.Bands[:]), dt)
	if drive <= 0.01 {
		return frame
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			fx, fy := float64(x)/Width*3, float64(y)/Height*3
			n := pl.noise.Eval3(fx, fy, pl.t)
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
