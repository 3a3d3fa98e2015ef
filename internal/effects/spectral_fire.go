package effects

import (
	"math/rand"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const (
	fireBaseCool = 0.015 // cooling coefficient at the bottom row
	fireTopCool  = 0.12  // cooling coefficient at the top row
	fireFlicker  = 0.08
)

// SpectralFire evolves a 16xH scalar field as a cellular-automaton fire:
// the bottom row is injected from current bands, each row above diffuses
// horizontally and cools with height, and rows shift upward each tick.
type SpectralFire struct {
	field [Height][Width]float64
	rng   *rand.Rand
}

func NewSpectralFire() *SpectralFire {
	return &SpectralFire{rng: rand.New(rand.NewSource(1))}
}

func (sf *SpectralFire) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame

	// Shift every row up by one (waterfall), discarding the old top row.
	for y := Height - 1; y > 0; y-- {
		sf.field[y] = sf.field[y-1]
	}

	// Inject the bottom row from current bands with small random flicker.
	// The flicker is scaled by the band value itself so it vanishes along
	// with the signal instead of injecting noise into an already-silent
	// band; otherwise the field would never fully cool to black.
	for x := 0; x < Width; x++ {
		v := float64(feat.Bands[x]) * (0.7 + 0.6*p.Intensity)
		flicker := (sf.rng.Float64()*2 - 1) * fireFlicker * v
		v += flicker
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		sf.field[0][x] = v
	}

	// Diffuse each row (3-tap mean 0.55/1.0/0.55) and cool by a
	// height-increasing coefficient.
	for y := 1; y < Height; y++ {
		cool := fireBaseCool + (fireTopCool-fireBaseCool)*float64(y)/float64(Height-1)
		var diffused [Width]float64
		for x := 0; x < Width; x++ {
			left := sf.field[y][wrap(x-1)]
			center := sf.field[y][x]
			right := sf.field[y][wrap(x+1)]
			diffused[x] = (0.55*left + 1.0*center + 0.55*right) / 2.1
			diffused[x] -= cool * dt * 10
			if diffused[x] < 0 {
				diffused[x] = 0
			}
		}
		sf.field[y] = diffused
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			v := sf.field[y][x]
			if v <= 0.01 {
				continue
			}
			r, g, b := colorFor(v, p.T, p.ColorMode, p.Power)
			frame.Set(x, y, r, g, b)
		}
	}
	return frame
}

func wrap(x int) int {
	if x < 0 {
		return Width + x
	}
	if x >= Width {
		return x - Width
	}
	return x
}
