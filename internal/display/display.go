package display

import (
	"log"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

// DefaultWidth/DefaultHeight match the common 320x240 SPI TFT HATs used
// with this class of Raspberry Pi project.
const (
	DefaultWidth  = 320
	DefaultHeight = 240
)

// Display owns the panel and the framebuffer it composes into each tick.
// It is driven synchronously from the orchestrator's LCD tick; it has no
// goroutines of its own.
type Display struct {
	panel *Panel
	fb    *Framebuffer
}

// New builds a Display bound to an already-constructed Panel.
func New(panel *Panel) *Display {
	return &Display{panel: panel, fb: NewFramebuffer(DefaultWidth, DefaultHeight)}
}

// Update composes the current mode's layout from a state snapshot and the
// latest Features, then pushes it to the panel. Push failures are logged
// and swallowed; the display is a best-effort peripheral, not a
// correctness boundary.
func (d *Display) Update(snap state.Record, feat features.Features) {
	Compose(d.fb, snap, feat)
	if err := d.panel.Push(d.fb.Bytes()); err != nil {
		log.Printf("[display] push failed: %v", err)
	}
}

// Close clears the panel to black, mirroring the LED transport's own
// clear-on-shutdown discipline. It does not release the SPI connection or
// GPIO pins.
func (d *Display) Close() {
	d.fb.Clear(colorBlack)
	if err := d.panel.Push(d.fb.Bytes()); err != nil {
		log.Printf("[display] clear on close failed: %v", err)
	}
}
