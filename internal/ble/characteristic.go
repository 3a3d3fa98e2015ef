package ble

import (
	"encoding/json"

	"github.com/godbus/dbus/v5"
)

// cmdCharacteristic exposes the write-only CMD characteristic (…def9).
// On write, the payload is parsed as a JSON object and handed to onWrite;
// anything that isn't a well-formed JSON object is silently ignored.
type cmdCharacteristic struct {
	propHolder
	onWrite func(map[string]any)
}

func newCmdCharacteristic(onWrite func(map[string]any)) *cmdCharacteristic {
	return &cmdCharacteristic{
		propHolder: newPropHolder(ifaceGattCharacteristic1, map[string]interface{}{
			"UUID":    cmdUUID,
			"Service": dbus.ObjectPath(servicePath),
			"Flags":   []string{"write", "write-without-response"},
		}),
		onWrite: onWrite,
	}
}

// WriteValue implements org.bluez.GattCharacteristic1.WriteValue.
func (c *cmdCharacteristic) WriteValue(value []byte, options map[string]dbus.Variant) *dbus.Error {
	var patch map[string]any
	if err := json.Unmarshal(value, &patch); err != nil || patch == nil {
		return nil
	}
	if c.onWrite != nil {
		c.onWrite(patch)
	}
	return nil
}

// stateCharacteristic exposes the read/notify STATE characteristic (…def8).
type stateCharacteristic struct {
	propHolder
	snapshot  func() []byte
	notifying bool
}

func newStateCharacteristic(snapshot func() []byte) *stateCharacteristic {
	return &stateCharacteristic{
		propHolder: newPropHolder(ifaceGattCharacteristic1, map[string]interface{}{
			"UUID":    stateUUID,
			"Service": dbus.ObjectPath(servicePath),
			"Flags":   []string{"read", "notify"},
		}),
		snapshot: snapshot,
	}
}

// ReadValue implements org.bluez.GattCharacteristic1.ReadValue.
func (s *stateCharacteristic) ReadValue(options map[string]dbus.Variant) ([]byte, *dbus.Error) {
	return s.snapshot(), nil
}

// StartNotify/StopNotify implement org.bluez.GattCharacteristic1's notify
// toggles. The actual notification is emitted by Server as a
// PropertiesChanged signal on a timer plus after every accepted CMD write.
func (s *stateCharacteristic) StartNotify() *dbus.Error {
	s.notifying = true
	return nil
}

func (s *stateCharacteristic) StopNotify() *dbus.Error {
	s.notifying = false
	return nil
}
