package effects

import (
	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
)

const (
	barsRiseAlpha        = 0.6
	barsFallPxPerSec     = 3.8
	barsPeakFallPxPerSec = 2.0
	barsVBase            = 0.14
	barsVTop             = 0.30
)

// Bars renders 16 columns, one per band, rising from the bottom with a
// peak marker.
type Bars struct {
	cols [Width]levelTracker
	// permutation, if non-nil, maps logical column i to physical column
	// permutation[i], for matrices wired starting mid-panel.
	permutation []int
}

// NewBars builds a Bars effect. permutation may be nil for identity layout.
func NewBars(permutation []int) *Bars {
	b := &Bars{permutation: permutation}
	for i := range b.cols {
		b.cols[i] = newLevelTracker(barsRiseAlpha, barsFallPxPerSec, barsPeakFallPxPerSec, Height-1)
	}
	return b
}

func (b *Bars) physicalColumn(i int) int {
	if b.permutation == nil || i >= len(b.permutation) {
		return i
	}
	return b.permutation[i]
}

func (b *Bars) Update(feat features.Features, dt float64, p Params) Frame {
	var frame Frame
	scale := 0.75 + 1.25*p.Intensity

	for i := 0; i < Width; i++ {
		band := float64(feat.Bands[i])
		target := band * float64(Height-1) * scale
		b.cols[i].update(target, dt)

		col := b.physicalColumn(i)
		lit := int(b.cols[i].level + 0.5) // number of rows lit, not a row index
		if lit > Height {
			lit = Height
		}
		for y := 0; y < lit; y++ {
			v := barsVBase + (float64(y)/float64(Height-1))*(barsVTop-barsVBase)
			r, g, bl := paletteForColumn(i, Width, v, p.T, p.ColorMode, p.Power)
			frame.Set(col, y, r, g, bl)
		}

		if b.cols[i].peak >= 0.5 {
			peakY := int(b.cols[i].peak + 0.5)
			if peakY > Height-1 {
				peakY = Height - 1
			}
			r, g, bl := paletteForColumn(i, Width, 1.0, p.T, p.ColorMode, p.Power)
			frame.Set(col, peakY, r, g, bl)
		}
	}
	return frame
}
