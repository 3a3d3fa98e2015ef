package display

import (
	"fmt"

	"periph.io/x/periph/conn/gpio"
	"periph.io/x/periph/conn/spi"
)

// Panel drives a SPI TFT panel (command/data + reset GPIO lines). It owns
// the SPI connection and GPIO pins exclusively while running.
type Panel struct {
	conn spi.Conn
	dc   gpio.PinOut // data/command select
	rst  gpio.PinOut // reset
}

// NewPanel wraps an already-opened SPI connection and the panel's DC/RESET
// GPIO pins. Construction is left to the caller (periph's host.Init +
// spireg.Open + gpioreg.ByName), which requires root/hardware access this
// package does not assume.
func NewPanel(conn spi.Conn, dc, rst gpio.PinOut) *Panel {
	return &Panel{conn: conn, dc: dc, rst: rst}
}

// Reset pulses the panel's RESET line.
func (p *Panel) Reset() error {
	if err := p.rst.Out(gpio.Low); err != nil {
		return fmt.Errorf("display: reset low: %w", err)
	}
	if err := p.rst.Out(gpio.High); err != nil {
		return fmt.Errorf("display: reset high: %w", err)
	}
	return nil
}

// Push writes a full RGB565 framebuffer to the panel in data mode.
func (p *Panel) Push(data []byte) error {
	if err := p.dc.Out(gpio.High); err != nil {
		return fmt.Errorf("display: dc high: %w", err)
	}
	if err := p.conn.Tx(data, nil); err != nil {
		return fmt.Errorf("display: spi tx: %w", err)
	}
	return nil
}

// Command sends a single command byte in command mode.
func (p *Panel) Command(cmd byte) error {
	if err := p.dc.Out(gpio.Low); err != nil {
		return fmt.Errorf("display: dc low: %w", err)
	}
	return p.conn.Tx([]byte{cmd}, nil)
}
