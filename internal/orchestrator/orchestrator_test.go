package orchestrator

import (
	"testing"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/audio"
	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

func TestReconcileModeStaysOnMicWhenAlreadyMic(t *testing.T) {
	st := state.New()
	mgr := audio.NewManager(-1, "", st)
	o := &Orchestrator{st: st, audioMgr: mgr}

	snap := st.Snapshot()
	snap.Mode = state.ModeMic
	o.reconcileMode(snap)

	if mgr.Mode() != state.ModeMic {
		t.Fatalf("mode = %v, want mic", mgr.Mode())
	}
}

func TestReconcileModeTreatsDisconnectedBTAsMic(t *testing.T) {
	st := state.New()
	mgr := audio.NewManager(-1, "", st)
	o := &Orchestrator{st: st, audioMgr: mgr}

	snap := st.Snapshot()
	snap.Mode = state.ModeBT
	snap.Connected = false

	// Desired collapses to mic, which matches the manager's starting
	// mode, so reconcileMode must not attempt a switch (and therefore
	// never touches the real Bluetooth capture path here).
	o.reconcileMode(snap)

	if mgr.Mode() != state.ModeMic {
		t.Fatalf("mode = %v, want mic", mgr.Mode())
	}
}
