package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
	"github.com/crazy3lf/colorconv"
)

const (
	vuRiseAlpha        = 0.5
	vuFallPxPerSec     = 2.6
	vuPeakFallPxPerSec = 1.2
)

// VUMeter is the same column-per-band layout as Bars, but with slower
// dynamics and a green->yellow->red hue gradient by row height.
type VUMeter struct {
	cols [Width]levelTracker
}

func NewVUMeter() *VUMeter {
	v := &VUMeter{}
	for i := range v.cols {
		v.cols[i] = newLevelTracker(vuRiseAlpha, vuFallPxPerSec, vuPeakFallPxPerSec, Height-1)
	}
	return v
}

// vuColor maps a row fraction [0,1] directly to a green->yellow/orange->red
// gradient, independent of color_mode except for the mono override, which
// takes priority here as in every other effect.
func vuColor(rowFrac float64, mode state.ColorMode, power float64) (r, g, b float64) {
	if mode == state.ColorMono {
		gray := rowFrac * 255 * clamp01(power)
		return gray, gray, gray
	}
	hueDeg := 120 * (1 - rowFrac) // 120deg=green at bottom, 0deg=red at top
	rr, gg, bb, err := colorconv.HSVToRGB(hueDeg, 1.0, math.Max(rowFrac, 0.3))
	if err != nil {
		return 0, 0, 0
	}
	p := clamp01(power)
	return float64(rr) * p, float64(gg) * p, float64(bb) * p
}

func (vu *VUMeter) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame
	scale := 0.75 + 1.25*p.Intensity

	for i := 0; i < Width; i++ {
		band := float64(feat.Bands[i])
		target := band * float64(Height-1) * scale
		vu.cols[i].update(target, dt)

		lit := int(vu.cols[i].level + 0.5) // number of rows lit, not a row index
		if lit > Height {
			lit = Height
		}
		for y := 0; y < lit; y++ {
			r, g, b := vuColor(float64(y)/float64(Height-1), p.ColorMode, p.Power)
			frame.Set(i, y, r, g, b)
		}

		if vu.cols[i].peak >= 0.5 {
			peakY := int(vu.cols[i].peak + 0.5)
			if peakY > Height-1 {
				peakY = Height - 1
			}
			r, g, b := vuColor(float64(peakY)/float64(Height-1), p.ColorMode, 1.0)
			frame.Set(i, peakY, r, g, b)
		}
	}
	return frame
}
