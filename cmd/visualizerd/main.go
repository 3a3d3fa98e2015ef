// Command visualizerd is the audio-reactive LED visualizer firmware
// entrypoint: it wires the audio source, feature extractor, effect
// registry, LED transport, BLE control endpoint and status display
// together and runs the orchestrator's main loop until interrupted.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"periph.io/x/periph/conn/gpio/gpioreg"
	"periph.io/x/periph/conn/spi/spireg"
	"periph.io/x/periph/host"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/audio"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/ble"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/config"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/display"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/effects"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/led"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/orchestrator"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

func main() {
	noDisplay := flag.Bool("no-display", false, "run headless, skipping the TFT status panel")
	spiPort := flag.String("spi-port", "", "SPI port name for the status panel (empty autodetects)")
	dcPin := flag.String("dc-pin", "GPIO24", "GPIO pin name wired to the panel's data/command line")
	rstPin := flag.String("rst-pin", "GPIO25", "GPIO pin name wired to the panel's reset line")
	columnPermutation := flag.String("column-permutation", "", "comma-separated 0-15 column order for bars on strip layouts wired starting mid-matrix")
	cfg := config.Load()

	st := state.New()

	audioMgr := audio.NewManager(cfg.MicDeviceIdx, cfg.BTDeviceAddr, st)
	extractor := features.New(audio.SampleRate, audio.BlockSize)
	registry := effects.NewRegistry(parsePermutation(*columnPermutation))

	ledSender, err := led.Open(cfg.SerialPort, cfg.SerialBaud)
	if err != nil {
		log.Fatalf("[visualizerd] opening LED serial port %s: %v", cfg.SerialPort, err)
	}

	var panel *display.Display
	if !*noDisplay {
		panel = setupDisplay(*spiPort, *dcPin, *rstPin)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		log.Println("[visualizerd] shutting down...")
		st.Update(state.Patch{"running": false})
		cancel()
	}()

	bleCtx, bleCancel := context.WithCancel(ctx)
	defer bleCancel()
	go func() {
		server := ble.NewServer(st, cfg.BTAdapterPath)
		if err := server.Run(bleCtx); err != nil {
			log.Printf("[visualizerd] BLE server: %v", err)
		}
	}()

	orch := orchestrator.New(st, audioMgr, extractor, registry, ledSender, panel)
	orch.Run(ctx)
}

// setupDisplay initializes periph's host drivers and opens the SPI/GPIO
// resources for the status panel. A failure here is non-fatal: the
// visualizer runs headless and logs why, since the status display is a
// best-effort peripheral, not a correctness boundary.
func setupDisplay(spiPort, dcPinName, rstPinName string) *display.Display {
	if _, err := host.Init(); err != nil {
		log.Printf("[visualizerd] periph host init failed, running headless: %v", err)
		return nil
	}

	port, err := spireg.Open(spiPort)
	if err != nil {
		log.Printf("[visualizerd] opening SPI port failed, running headless: %v", err)
		return nil
	}
	conn, err := port.Connect(display.SPISpeed, display.SPIMode, 8)
	if err != nil {
		log.Printf("[visualizerd] SPI connect failed, running headless: %v", err)
		return nil
	}

	dc := gpioreg.ByName(dcPinName)
	rst := gpioreg.ByName(rstPinName)
	if dc == nil || rst == nil {
		log.Printf("[visualizerd] could not resolve display GPIO pins %s/%s, running headless", dcPinName, rstPinName)
		return nil
	}

	panel := display.NewPanel(conn, dc, rst)
	if err := panel.Reset(); err != nil {
		log.Printf("[visualizerd] display reset failed, running headless: %v", err)
		return nil
	}

	return display.New(panel)
}

// parsePermutation parses a comma-separated list of 0-15 column indices
// for physical strip layouts wired starting mid-matrix. An empty or
// malformed string yields the identity order.
func parsePermutation(s string) []int {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	if len(parts) != effects.Width {
		log.Printf("[visualizerd] column permutation needs exactly %d entries, got %d; ignoring", effects.Width, len(parts))
		return nil
	}
	perm := make([]int, 0, effects.Width)
	for _, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || v < 0 || v >= effects.Width {
			log.Printf("[visualizerd] ignoring malformed column permutation %q", s)
			return nil
		}
		perm = append(perm, v)
	}
	return perm
}
