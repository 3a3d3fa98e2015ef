package ble

import "github.com/godbus/dbus/v5"

// advertisement implements org.bluez.LEAdvertisement1, advertised under the
// local name "Visualizer".
type advertisement struct {
	propHolder
}

func newAdvertisement() *advertisement {
	return &advertisement{propHolder: newPropHolder(ifaceLEAdvertisement1, map[string]interface{}{
		"Type":        "peripheral",
		"ServiceUUIDs": []string{serviceUUID},
		"LocalName":   advertisingName,
	})}
}

// Release implements org.bluez.LEAdvertisement1.Release, called by BlueZ
// when it unregisters the advertisement (e.g. on adapter reset).
func (a *advertisement) Release() *dbus.Error { return nil }
