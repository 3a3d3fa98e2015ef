package ble

import "github.com/godbus/dbus/v5"

// gattService is the single GattService1 object exported at servicePath. It
// carries only the UUID/Primary/Characteristics properties BlueZ reads while
// registering the application; it has no methods of its own.
type gattService struct {
	propHolder
}

func newGattService() *gattService {
	return &gattService{propHolder: newPropHolder(ifaceGattService1, map[string]interface{}{
		"UUID":            serviceUUID,
		"Primary":         true,
		"Characteristics": []dbus.ObjectPath{cmdCharPath, statePath},
	})}
}
