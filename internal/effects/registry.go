package effects

import (
	"fmt"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/features"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

// Registry holds one live instance per effect so that internal dynamics
// (levels, phases, fire fields, wavefronts) persist across selection
// changes and resume where they left off when an effect is reselected.
//
// Instances live in a fixed-size array indexed by a small integer id.
// Select translates the effect name into that id through a string-keyed
// index map on every call, then reads the instance from the array.
type Registry struct {
	effects [numEffects]Effect
	index   map[state.Effect]int
}

type effectID int

const (
	idBars effectID = iota
	idOscilloscope
	idRadialPulse
	idSpectralFire
	idVUMeter
	idWave
	idPlasma
	idSpiral
	idRipple
	idKaleidoscope
	numEffects
)

// NewRegistry constructs every effect instance up front so Select never
// allocates on the hot path.
func NewRegistry(permutation []int) *Registry {
	reg := &Registry{}
	reg.effects[idBars] = NewBars(permutation)
	reg.effects[idOscilloscope] = NewOscilloscope()
	reg.effects[idRadialPulse] = NewRadialPulse()
	reg.effects[idSpectralFire] = NewSpectralFire()
	reg.effects[idVUMeter] = NewVUMeter()
	reg.effects[idWave] = reg.effects[idOscilloscope]
	reg.effects[idPlasma] = NewPlasma()
	reg.effects[idSpiral] = NewSpiral()
	reg.effects[idRipple] = NewRipple()
	reg.effects[idKaleidoscope] = NewKaleidoscope()

	reg.index = map[state.Effect]int{
		state.EffectBars:         int(idBars),
		state.EffectOscilloscope: int(idOscilloscope),
		state.EffectRadialPulse:  int(idRadialPulse),
		state.EffectSpectralFire: int(idSpectralFire),
		state.EffectVUMeter:      int(idVUMeter),
		state.EffectWave:         int(idWave),
		state.EffectPlasma:       int(idPlasma),
		state.EffectSpiral:       int(idSpiral),
		state.EffectRipple:       int(idRipple),
		state.EffectKaleidoscope: int(idKaleidoscope),
	}
	return reg
}

// Select returns the live Effect instance for name, falling back to bars
// for an unrecognized or empty tag so the orchestrator never renders a
// nil effect.
func (reg *Registry) Select(name state.Effect) Effect {
	if i, ok := reg.index[name]; ok {
		return reg.effects[i]
	}
	return reg.effects[idBars]
}

// Render runs feature extraction output through the effect selected by
// the current state snapshot, recovering to a black frame if the effect
// panics so one bad frame never takes down the orchestrator loop.
func Render(e Effect, feat features.Features, dt float64, p Params) (frame Frame, err error) {
	defer func() {
		if r := recover(); r != nil {
			frame = Frame{}
			err = fmt.Errorf("effect panicked: %v", r)
		}
	}()
	frame = e.Update(feat, dt, p)
	return frame, nil
}
