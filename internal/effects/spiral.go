package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const spiralArms = 3

// Spiral rotates a multi-armed spiral whose rotation rate scales with bass
// and whose hue cycles with time.
type Spiral struct {
	angle float64
	env   driveEnvelope
}

func NewSpiral() *Spiral { return &Spiral{} }

func (sp *Spiral) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame
	cx, cy := float64(Width-1)/2, float64(Height-1)/2

	sp.angle += dt * (0.5 + 3.0*float64(feat.Bass))

	drive := sp.env.update(bandDrive(feat.Bands[:]), dt)
	if drive <= 0.01 {
		return frame
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			dist := math.Hypot(dx, dy)
			theta := math.Atan2(dy, dx)

			arm := math.Mod(theta+sp.angle+dist*0.8, 2*math.Pi/spiralArms)
			v := 0.5 + 0.5*math.Cos(arm*spiralArms)
			v *= math.Max(0, 1.0-dist/(float64(Width)/2))

			hue := math.Mod(dist/float64(Width)+0.15*p.T, 1.0)
			r, g, b := colorFor(hue, p.T, p.ColorMode, p.Power*drive*(0.3+0.7*v)*(0.5+0.5*p.Intensity))
			frame.Set(x, y, r, g, b)
		}
	}
	return frame
}
