package audio

import (
	"testing"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

func TestDbusAddrToALSA(t *testing.T) {
	got := dbusAddrToALSA("AA:BB:CC:DD:EE:FF")
	want := "AA_BB_CC_DD_EE_FF"
	if got != want {
		t.Fatalf("dbusAddrToALSA = %q, want %q", got, want)
	}
}

func TestBluetoothReadBlockZeroesOnUnderrun(t *testing.T) {
	b := NewBluetoothSource("AA:BB:CC:DD:EE:FF")
	block := b.ReadBlock()
	if len(block) != BlockSize {
		t.Fatalf("len(block) = %d, want %d", len(block), BlockSize)
	}
	for i, v := range block {
		if v != 0 {
			t.Fatalf("block[%d] = %v, want 0 on underrun", i, v)
		}
	}
}

func TestBluetoothReadBlockDownmixesAndConsumes(t *testing.T) {
	b := NewBluetoothSource("AA:BB:CC:DD:EE:FF")

	raw := make([]byte, BlockSize*btBytesPerFrame)
	for i := 0; i < BlockSize; i++ {
		off := i * btBytesPerFrame
		// left = +16384 (0.5 full scale), right = -16384
		raw[off+0], raw[off+1] = 0x00, 0x40
		raw[off+2], raw[off+3] = 0x00, 0xC0
	}
	b.mu.Lock()
	b.ring = raw
	b.mu.Unlock()

	block := b.ReadBlock()
	for i, v := range block {
		if v != 0 {
			t.Fatalf("block[%d] = %v, want 0 (mean of +0.5 and -0.5)", i, v)
		}
	}

	b.mu.Lock()
	remaining := len(b.ring)
	b.mu.Unlock()
	if remaining != 0 {
		t.Fatalf("ring should be fully consumed, %d bytes remain", remaining)
	}
}

func TestBluetoothReadBlockInsufficientDataReturnsZeros(t *testing.T) {
	b := NewBluetoothSource("AA:BB:CC:DD:EE:FF")
	b.mu.Lock()
	b.ring = make([]byte, 10) // far short of one block
	b.mu.Unlock()

	block := b.ReadBlock()
	for _, v := range block {
		if v != 0 {
			t.Fatalf("expected zero block when underfilled")
		}
	}
	b.mu.Lock()
	remaining := len(b.ring)
	b.mu.Unlock()
	if remaining != 10 {
		t.Fatalf("ring should be untouched on underrun, got %d bytes", remaining)
	}
}

func TestBluetoothPassthroughReceivesDownmixedBlock(t *testing.T) {
	b := NewBluetoothSource("AA:BB:CC:DD:EE:FF")
	raw := make([]byte, BlockSize*btBytesPerFrame)
	for i := 0; i < BlockSize; i++ {
		off := i * btBytesPerFrame
		raw[off+0], raw[off+1] = 0xFF, 0x7F // left = max positive
		raw[off+2], raw[off+3] = 0xFF, 0x7F // right = max positive
	}
	b.mu.Lock()
	b.ring = raw
	b.mu.Unlock()

	var got []float32
	b.Passthrough(writerFunc(func(block []float32) { got = block }))

	b.ReadBlock()
	if len(got) != BlockSize {
		t.Fatalf("passthrough block length = %d, want %d", len(got), BlockSize)
	}
	if got[0] <= 0.9 {
		t.Fatalf("passthrough sample = %v, want near full scale", got[0])
	}
}

func TestSourcesInactiveBeforeStart(t *testing.T) {
	if NewMicSource(-1).IsActive() {
		t.Fatalf("mic should be inactive before Start")
	}
	if NewBluetoothSource("AA:BB:CC:DD:EE:FF").IsActive() {
		t.Fatalf("bluetooth should be inactive before Start")
	}
}

func TestBluetoothStartWithoutAddressFails(t *testing.T) {
	b := NewBluetoothSource("")
	if err := b.Start(); err == nil {
		t.Fatalf("expected error starting bluetooth source with no device address")
	}
}

func TestManagerStartsInMicMode(t *testing.T) {
	m := NewManager(-1, "", state.New())
	if m.Mode() != state.ModeMic {
		t.Fatalf("new Manager mode = %v, want mic", m.Mode())
	}
}

func TestManagerSwitchToSameModeIsNoop(t *testing.T) {
	m := NewManager(-1, "", state.New())
	m.current = m.mic
	actual, err := m.Switch(state.ModeMic)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if actual != state.ModeMic {
		t.Fatalf("actual = %v, want mic", actual)
	}
}

type writerFunc func(block []float32)

func (f writerFunc) Write(block []float32) { f(block) }
