package state

import (
	"encoding/json"
	"math"
	"testing"
)

func TestDefaultValues(t *testing.T) {
	d := Default()
	if d.Mode != ModeMic || d.Effect != EffectBars || d.ColorMode != ColorAuto {
		t.Fatalf("unexpected defaults: %+v", d)
	}
	if d.Intensity != 0.75 || d.Brightness != 0.55 || d.Gain != 1.0 || d.Smoothing != 0.65 {
		t.Fatalf("unexpected default numerics: %+v", d)
	}
	if !d.Running {
		t.Fatalf("default Running should be true")
	}
}

func TestUpdateUnknownKeyIgnored(t *testing.T) {
	s := New()
	s.Update(Patch{"foo": 1, "intensity": 0.3})
	snap := s.Snapshot()
	if snap.Intensity != 0.3 {
		t.Fatalf("intensity = %v, want 0.3", snap.Intensity)
	}
	b, _ := json.Marshal(snap)
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatal(err)
	}
	if _, ok := m["foo"]; ok {
		t.Fatalf("unknown field leaked into snapshot: %s", b)
	}
}

func TestUpdateClampsNumerics(t *testing.T) {
	s := New()
	s.Update(Patch{"gain": 100.0, "smoothing": 1.0, "intensity": -5.0, "brightness": 5.0})
	snap := s.Snapshot()
	if snap.Gain != gainMax {
		t.Fatalf("gain = %v, want %v", snap.Gain, gainMax)
	}
	if snap.Smoothing != smoothingMax {
		t.Fatalf("smoothing = %v, want %v", snap.Smoothing, smoothingMax)
	}
	if snap.Intensity != intensityMin {
		t.Fatalf("intensity = %v, want %v", snap.Intensity, intensityMin)
	}
	if snap.Brightness != brightnessMax {
		t.Fatalf("brightness = %v, want %v", snap.Brightness, brightnessMax)
	}
}

func TestGainZeroCoercedToMinimum(t *testing.T) {
	s := New()
	s.Update(Patch{"gain": 0.0})
	if got := s.Snapshot().Gain; got != gainMin {
		t.Fatalf("gain = %v, want %v", got, gainMin)
	}
}

func TestGainNaNKeepsPrevious(t *testing.T) {
	s := New()
	s.Update(Patch{"gain": 2.5})
	s.Update(Patch{"gain": math.NaN()})
	if got := s.Snapshot().Gain; got != 2.5 {
		t.Fatalf("gain = %v, want 2.5 (previous value retained)", got)
	}
}

func TestBLEPatchScenario(t *testing.T) {
	// a typical companion-app patch
	s := New()
	raw := `{"mode":"bt","effect":"spectral_fire","intensity":0.9,"gain":2.5}`
	var patch Patch
	if err := json.Unmarshal([]byte(raw), &patch); err != nil {
		t.Fatal(err)
	}
	s.Update(patch)
	snap := s.Snapshot()
	if snap.Mode != ModeBT || snap.Effect != EffectSpectralFire || snap.Intensity != 0.9 || snap.Gain != 2.5 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.Smoothing != 0.65 || snap.Brightness != 0.55 {
		t.Fatalf("unpatched fields should remain default: %+v", snap)
	}
}

func TestUpdateIdempotent(t *testing.T) {
	s := New()
	patch := Patch{"intensity": 0.4, "effect": "plasma"}
	s.Update(patch)
	first := s.Snapshot()
	s.Update(patch)
	second := s.Snapshot()
	if first != second {
		t.Fatalf("applying the same patch twice changed state: %+v vs %+v", first, second)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := New()
	s.Update(Patch{"intensity": 0.42, "effect": "ripple", "color_mode": "rainbow"})
	snap := s.Snapshot()

	b, err := json.Marshal(snap)
	if err != nil {
		t.Fatal(err)
	}
	var patch Patch
	if err := json.Unmarshal(b, &patch); err != nil {
		t.Fatal(err)
	}

	s2 := New()
	s2.Update(patch)
	if got := s2.Snapshot(); got != snap {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, snap)
	}
}

func TestLastWritePerKeyWins(t *testing.T) {
	s := New()
	s.Update(Patch{"intensity": 0.1})
	s.Update(Patch{"intensity": 0.9})
	if got := s.Snapshot().Intensity; got != 0.9 {
		t.Fatalf("intensity = %v, want 0.9", got)
	}
}

func TestInvalidTypeIgnored(t *testing.T) {
	s := New()
	s.Update(Patch{"intensity": "not-a-number", "mode": 5})
	snap := s.Snapshot()
	if snap.Intensity != Default().Intensity || snap.Mode != Default().Mode {
		t.Fatalf("invalid-typed values should not mutate state: %+v", snap)
	}
}

func TestDeviceNameTruncated(t *testing.T) {
	s := New()
	long := "this-device-name-is-definitely-too-long-for-the-field"
	s.Update(Patch{"device_name": long})
	if got := s.Snapshot().DeviceName; len(got) > deviceNameMaxLen {
		t.Fatalf("device_name not truncated: %q (len %d)", got, len(got))
	}
}
