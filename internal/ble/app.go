package ble

import "github.com/godbus/dbus/v5"

// application implements org.freedesktop.DBus.ObjectManager at appPath,
// describing the single GATT service and its two characteristics so BlueZ
// can discover the tree during RegisterApplication.
type application struct {
	service *gattService
	cmdChar *cmdCharacteristic
	stChar  *stateCharacteristic
}

// GetManagedObjects implements org.freedesktop.DBus.ObjectManager.GetManagedObjects.
func (a *application) GetManagedObjects() (map[dbus.ObjectPath]map[string]map[string]dbus.Variant, *dbus.Error) {
	out := map[dbus.ObjectPath]map[string]map[string]dbus.Variant{
		dbus.ObjectPath(servicePath): a.service.managedObjectProps(),
		dbus.ObjectPath(cmdCharPath): a.cmdChar.managedObjectProps(),
		dbus.ObjectPath(statePath):   a.stChar.managedObjectProps(),
	}
	return out, nil
}
