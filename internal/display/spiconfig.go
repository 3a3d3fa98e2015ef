package display

import (
	"periph.io/x/periph/conn/physic"
	"periph.io/x/periph/conn/spi"
)

// SPISpeed and SPIMode are the bus parameters the status panel is wired
// for. 24 MHz / mode 0 is a safe default for this class of SPI TFT HAT.
const (
	SPISpeed = 24 * physic.MegaHertz
	SPIMode  = spi.Mode0
)
