// Package orchestrator runs the main real-time loop: pull audio, extract
// features, render the selected effect, and push frames to the LED and
// status-display peripherals at their own paces.
package orchestrator

import (
	"context"
	"log"
	"time"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/audio"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/display"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/effects"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/led"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

const (
	ledFPS = 20
	lcdFPS = 8

	ledTick = time.Second / ledFPS
	lcdTick = time.Second / lcdFPS

	loopSleep     = time.Millisecond
	watchdogLimit = 250 * time.Millisecond
)

// Orchestrator wires the rest of the pipeline together and drives it from
// a single loop goroutine. The Status Display and Feature Extractor run
// synchronously inside that loop; the audio source's background reader,
// the LED sender's worker and the BLE event handler run independently.
type Orchestrator struct {
	st        *state.State
	audioMgr  *audio.Manager
	extractor *features.Extractor
	registry  *effects.Registry
	led       *led.Sender
	disp      *display.Display // nil when no panel is attached

	startTime  time.Time
	lastLED    time.Time
	lastLCD    time.Time
	lastRender time.Time
}

// New builds an Orchestrator from already-constructed components. disp
// may be nil to run headless (no status panel attached).
func New(st *state.State, audioMgr *audio.Manager, extractor *features.Extractor, registry *effects.Registry, ledSender *led.Sender, disp *display.Display) *Orchestrator {
	now := time.Now()
	return &Orchestrator{
		st:         st,
		startTime:  now,
		audioMgr:   audioMgr,
		extractor:  extractor,
		registry:   registry,
		led:        ledSender,
		disp:       disp,
		lastLED:    now,
		lastLCD:    now,
		lastRender: now,
	}
}

// Run executes the main loop until ctx is canceled or SharedState's
// Running field is cleared, then performs an orderly shutdown: stop the
// audio source and close the LED transport (which sends one clear frame
// on Close), and close the display.
func (o *Orchestrator) Run(ctx context.Context) {
	if err := o.audioMgr.Start(); err != nil {
		log.Printf("[orchestrator] initial audio start failed: %v", err)
	}

	for {
		iterStart := time.Now()

		snap := o.st.Snapshot()
		if ctx.Err() != nil || !snap.Running {
			break
		}

		o.reconcileMode(snap)
		effect := o.registry.Select(snap.Effect)

		block := o.audioMgr.ReadBlock()
		feat := o.extractor.Process(block, snap.Gain, snap.Smoothing)

		now := time.Now()
		if now.Sub(o.lastLED) >= ledTick {
			dt := now.Sub(o.lastRender).Seconds()
			o.lastRender = now

			params := effects.ParamsFromState(snap, now.Sub(o.startTime).Seconds())
			frame, err := effects.Render(effect, feat, dt, params)
			if err != nil {
				log.Printf("[orchestrator] effect %s: %v", snap.Effect, err)
				frame = effects.Frame{}
			}
			o.led.Submit(frame)
			o.lastLED = now
		}

		if o.disp != nil && now.Sub(o.lastLCD) >= lcdTick {
			o.disp.Update(snap, feat)
			o.lastLCD = now
		}

		time.Sleep(loopSleep)

		if elapsed := time.Since(iterStart); elapsed > watchdogLimit {
			log.Printf("[orchestrator] loop iteration took %s (effect=%s mode=%s)", elapsed, snap.Effect, snap.Mode)
		}
	}

	o.shutdown()
}

// reconcileMode transitions the audio source when the desired mode
// differs from what is currently running. BT mode additionally requires
// Connected; otherwise it is treated as mic. A failed BT start reverts
// to mic and the fallback is written back to SharedState so the status
// display and BLE clients observe it.
func (o *Orchestrator) reconcileMode(snap state.Record) {
	desired := snap.Mode
	if desired == state.ModeBT && !snap.Connected {
		desired = state.ModeMic
	}

	if desired == o.audioMgr.Mode() {
		return
	}

	actual, err := o.audioMgr.Switch(desired)
	if err != nil || actual != snap.Mode {
		o.st.Update(state.Patch{"mode": string(actual)})
	}
}

func (o *Orchestrator) shutdown() {
	o.audioMgr.Stop()
	o.led.Close()
	if o.disp != nil {
		o.disp.Close()
	}
	log.Println("[orchestrator] shut down")
}
