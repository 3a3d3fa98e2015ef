package ble

import (
	"encoding/json"
	"testing"

	"github.com/godbus/dbus/v5"
)

func TestCmdCharacteristicParsesValidObject(t *testing.T) {
	var got map[string]any
	c := newCmdCharacteristic(func(patch map[string]any) { got = patch })

	payload, _ := json.Marshal(map[string]any{"intensity": 0.3, "mode": "bt"})
	if err := c.WriteValue(payload, nil); err != nil {
		t.Fatalf("WriteValue returned error: %v", err)
	}
	if got["mode"] != "bt" {
		t.Fatalf("onWrite did not receive parsed patch: %v", got)
	}
}

func TestCmdCharacteristicIgnoresMalformedPayload(t *testing.T) {
	called := false
	c := newCmdCharacteristic(func(patch map[string]any) { called = true })

	if err := c.WriteValue([]byte("not json"), nil); err != nil {
		t.Fatalf("malformed payload should be silently ignored, got error: %v", err)
	}
	if called {
		t.Fatalf("onWrite should not fire for malformed JSON")
	}
}

func TestCmdCharacteristicIgnoresNonObjectJSON(t *testing.T) {
	called := false
	c := newCmdCharacteristic(func(patch map[string]any) { called = true })

	if err := c.WriteValue([]byte(`[1,2,3]`), nil); err != nil {
		t.Fatalf("non-object JSON should be silently ignored, got error: %v", err)
	}
	if called {
		t.Fatalf("onWrite should not fire for a JSON array")
	}
}

func TestStateCharacteristicReadValueReturnsSnapshot(t *testing.T) {
	want := []byte(`{"mode":"mic"}`)
	s := newStateCharacteristic(func() []byte { return want })

	got, err := s.ReadValue(nil)
	if err != nil {
		t.Fatalf("ReadValue returned error: %v", err)
	}
	if string(got) != string(want) {
		t.Fatalf("ReadValue = %s, want %s", got, want)
	}
}

func TestStateCharacteristicNotifyToggle(t *testing.T) {
	s := newStateCharacteristic(func() []byte { return nil })
	if s.notifying {
		t.Fatalf("notifying should start false")
	}
	if err := s.StartNotify(); err != nil {
		t.Fatalf("StartNotify error: %v", err)
	}
	if !s.notifying {
		t.Fatalf("StartNotify should set notifying = true")
	}
	if err := s.StopNotify(); err != nil {
		t.Fatalf("StopNotify error: %v", err)
	}
	if s.notifying {
		t.Fatalf("StopNotify should set notifying = false")
	}
}

func TestPropHolderGetAllAndGet(t *testing.T) {
	p := newPropHolder(ifaceGattCharacteristic1, map[string]interface{}{
		"UUID":  cmdUUID,
		"Flags": []string{"write"},
	})

	all, err := p.GetAll(ifaceGattCharacteristic1)
	if err != nil {
		t.Fatalf("GetAll error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("GetAll returned %d properties, want 2", len(all))
	}

	v, err := p.Get(ifaceGattCharacteristic1, "UUID")
	if err != nil {
		t.Fatalf("Get error: %v", err)
	}
	if v.Value().(string) != cmdUUID {
		t.Fatalf("Get(UUID) = %v, want %s", v.Value(), cmdUUID)
	}
}

func TestPropHolderGetUnknownPropertyErrors(t *testing.T) {
	p := newPropHolder(ifaceGattCharacteristic1, map[string]interface{}{"UUID": cmdUUID})
	if _, err := p.Get(ifaceGattCharacteristic1, "NoSuchField"); err == nil {
		t.Fatalf("expected an error for an unknown property")
	}
}

func TestApplicationGetManagedObjectsListsServiceAndCharacteristics(t *testing.T) {
	svc := newGattService()
	cmdChar := newCmdCharacteristic(nil)
	stChar := newStateCharacteristic(func() []byte { return nil })
	app := &application{service: svc, cmdChar: cmdChar, stChar: stChar}

	objs, err := app.GetManagedObjects()
	if err != nil {
		t.Fatalf("GetManagedObjects error: %v", err)
	}
	for _, path := range []dbus.ObjectPath{dbus.ObjectPath(servicePath), dbus.ObjectPath(cmdCharPath), dbus.ObjectPath(statePath)} {
		if _, ok := objs[path]; !ok {
			t.Fatalf("GetManagedObjects missing path %s", path)
		}
	}
}
