package display

import (
	"fmt"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

const (
	lineHeight = glyphH + 3
	marginX    = 2
	headerY    = 2
)

// Compose renders the full-panel bitmap for the current snapshot and
// feature record, selecting the mic or bt layout.
func Compose(fb *Framebuffer, snap state.Record, feat features.Features) {
	fb.Clear(colorBlack)
	fb.FillRect(0, 0, fb.Width, lineHeight, colorAccentBlue)
	fb.DrawText(marginX, headerY, "VISUALIZER", colorBlack)

	y := lineHeight + 4
	if snap.Mode == state.ModeBT {
		composeBT(fb, snap, y)
	} else {
		composeMic(fb, snap, feat, y)
	}

	footer := fmt.Sprintf("I:%s C:%s", pctString(snap.Intensity), string(snap.ColorMode))
	fb.DrawText(marginX, fb.Height-glyphH-2, footer, colorAccentBlue)
}

func composeMic(fb *Framebuffer, snap state.Record, feat features.Features, y int) {
	fb.DrawText(marginX, y, "MODE: MIC", colorAccentBlue)
	y += lineHeight
	fb.DrawText(marginX, y, "FX: "+string(snap.Effect), colorAccentBlue)
	y += lineHeight
	fb.DrawText(marginX, y, fmt.Sprintf("RMS %s", pctString(float64(feat.RMS))), colorAccentBlue)
	y += lineHeight
	fb.DrawText(marginX, y, fmt.Sprintf("B%s M%s T%s",
		pctString(float64(feat.Bass)), pctString(float64(feat.Mid)), pctString(float64(feat.Treble))), colorAccentBlue)
}

func composeBT(fb *Framebuffer, snap state.Record, y int) {
	status := "DISCONNECTED"
	if snap.Connected {
		status = "CONNECTED"
	}
	fb.DrawText(marginX, y, "MODE: BT "+status, colorAccentBlue)
	y += lineHeight
	if snap.DeviceName != "" {
		fb.DrawText(marginX, y, snap.DeviceName, colorAccentBlue)
		y += lineHeight
	}
	fb.DrawText(marginX, y, truncateDisplay(snap.Artist, 20), colorAccentBlue)
	y += lineHeight
	fb.DrawText(marginX, y, truncateDisplay(snap.Title, 20), colorAccentBlue)
	y += lineHeight
	fb.DrawText(marginX, y, truncateDisplay(snap.Album, 20), colorAccentBlue)
}

func pctString(v float64) string {
	return fmt.Sprintf("%d%%", int(v*100+0.5))
}

func truncateDisplay(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
