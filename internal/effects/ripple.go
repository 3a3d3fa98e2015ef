package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const (
	rippleTransientThreshold = 0.45
	rippleCooldown           = 0.18 // seconds between spawns
	rippleLifetime           = 2.5  // seconds
	rippleRingWidth          = 1.6  // gaussian sigma in pixels
	rippleSpeedPxPerSec      = 5.0
	rippleMaxWavefronts      = 12
)

type wavefront struct {
	age    float64 // seconds since birth
	amp    float64
	cx, cy float64
}

// Ripple spawns an expanding, fading ring each time it detects a rising
// edge of bass energy crossing a threshold (a bass transient), subject to
// a cooldown. Each active wavefront contributes a Gaussian ring to the
// rendered field until it expires.
type Ripple struct {
	wavefronts []wavefront
	prevBass   float64
	sinceSpawn float64
}

func NewRipple() *Ripple {
	return &Ripple{sinceSpawn: rippleCooldown}
}

func (rp *Ripple) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame
	cx, cy := float64(Width-1)/2, float64(Height-1)/2

	rp.sinceSpawn += dt

	bass := float64(feat.Bass)
	risingEdge := bass > rippleTransientThreshold && rp.prevBass <= rippleTransientThreshold
	if risingEdge && rp.sinceSpawn >= rippleCooldown {
		rp.wavefronts = append(rp.wavefronts, wavefront{amp: 0.5 + 0.5*bass, cx: cx, cy: cy})
		rp.sinceSpawn = 0
		if len(rp.wavefronts) > rippleMaxWavefronts {
			rp.wavefronts = rp.wavefronts[len(rp.wavefronts)-rippleMaxWavefronts:]
		}
	}
	rp.prevBass = bass

	live := rp.wavefronts[:0]
	for _, wf := range rp.wavefronts {
		wf.age += dt
		if wf.age < rippleLifetime {
			live = append(live, wf)
		}
	}
	rp.wavefronts = live

	if len(rp.wavefronts) == 0 {
		return frame
	}

	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			var field float64
			for _, wf := range rp.wavefronts {
				radius := wf.age * rippleSpeedPxPerSec
				fade := 1.0 - wf.age/rippleLifetime
				dist := math.Hypot(float64(x)-wf.cx, float64(y)-wf.cy)
				delta := dist - radius
				g := math.Exp(-(delta * delta) / (2 * rippleRingWidth * rippleRingWidth))
				field += g * wf.amp * fade
			}
			if field <= 0.02 {
				continue
			}
			if field > 1 {
				field = 1
			}
			hue := math.Mod(field*0.5+0.1*p.T, 1.0)
			if hue < 0 {
				hue += 1
			}
			r, g, b := colorFor(hue, p.T, p.ColorMode, p.Power*field)
			frame.Blend(x, y, r, g, b)
		}
	}
	return frame
}
