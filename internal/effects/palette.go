package effects

import (
	"math"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
	"github.com/crazy3lf/colorconv"
)

// colorFor is the shared palette function. v is clamped to [0,1]; t is
// the effect clock in seconds (only "auto" uses it, for hue drift); power
// is a final multiplicative cap
// applied to the resulting RGB so loudness never modulates brightness
// directly; only the gradient/geometry upstream of this call does that.
func colorFor(v, t float64, mode state.ColorMode, power float64) (r, g, b float64) {
	v = clamp01(v)
	power = clamp01(power)

	switch mode {
	case state.ColorMono:
		gray := v * 255 * power
		return gray, gray, gray
	case state.ColorRainbow:
		val := math.Max(v, 0.08)
		rr, gg, bb, err := colorconv.HSVToRGB(math.Mod(v, 1.0)*360, 1.0, val)
		if err != nil {
			return 0, 0, 0
		}
		return float64(rr) * power, float64(gg) * power, float64(bb) * power
	default: // auto
		hue := math.Mod(0.15+0.55*v+0.06*t, 1.0)
		if hue < 0 {
			hue += 1.0
		}
		val := math.Max(v, 0.08)
		rr, gg, bb, err := colorconv.HSVToRGB(hue*360, 1.0, val)
		if err != nil {
			return 0, 0, 0
		}
		return float64(rr) * power, float64(gg) * power, float64(bb) * power
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// huePalette7 is a 7-hue palette spread linearly across [0,1), used by
// bars' per-column color selection.
var huePalette7 = [7]float64{0.0, 1.0 / 7, 2.0 / 7, 3.0 / 7, 4.0 / 7, 5.0 / 7, 6.0 / 7}

// paletteForColumn picks the nearest of the 7 palette hues for column x of
// numCols total columns and renders it at full saturation with value
// max(v, 0.08), scaled by power. Mono mode renders through colorFor's
// grayscale instead; auto and rainbow give the same result and t is unused.
func paletteForColumn(x, numCols int, v, t float64, mode state.ColorMode, power float64) (r, g, b float64) {
	frac := float64(x) / float64(numCols-1)
	idx := int(frac*float64(len(huePalette7)-1) + 0.5)
	if idx < 0 {
		idx = 0
	}
	if idx >= len(huePalette7) {
		idx = len(huePalette7) - 1
	}
	hue := huePalette7[idx]
	if mode == state.ColorMono {
		return colorFor(v, t, mode, power)
	}
	// The column hue is used directly, not colorFor's hue formula, so each
	// column keeps a stable color identity.
	val := math.Max(v, 0.08)
	rr, gg, bb, err := colorconv.HSVToRGB(hue*360, 1.0, val)
	if err != nil {
		return 0, 0, 0
	}
	return float64(rr) * power, float64(gg) * power, float64(bb) * power
}
