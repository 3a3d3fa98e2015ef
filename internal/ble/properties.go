package ble

import "github.com/godbus/dbus/v5"

// propHolder implements org.freedesktop.DBus.Properties for one exported
// GATT object. BlueZ calls Get/GetAll while registering and introspecting
// the application tree. Values are set at construction; Set overwrites a
// property of the object's interface.
type propHolder struct {
	props map[string]map[string]dbus.Variant
}

func newPropHolder(iface string, values map[string]interface{}) propHolder {
	variants := make(map[string]dbus.Variant, len(values))
	for k, v := range values {
		variants[k] = dbus.MakeVariant(v)
	}
	return propHolder{props: map[string]map[string]dbus.Variant{iface: variants}}
}

func (p *propHolder) Get(iface, name string) (dbus.Variant, *dbus.Error) {
	m, ok := p.props[iface]
	if !ok {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
	}
	v, ok := m[name]
	if !ok {
		return dbus.Variant{}, dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
	}
	return v, nil
}

func (p *propHolder) GetAll(iface string) (map[string]dbus.Variant, *dbus.Error) {
	m, ok := p.props[iface]
	if !ok {
		return nil, dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
	}
	return m, nil
}

func (p *propHolder) Set(iface, name string, value dbus.Variant) *dbus.Error {
	m, ok := p.props[iface]
	if !ok {
		return dbus.NewError("org.freedesktop.DBus.Error.InvalidArgs", nil)
	}
	m[name] = value
	return nil
}

// managedObjectProps renders this object's properties in the shape
// org.freedesktop.DBus.ObjectManager.GetManagedObjects expects.
func (p *propHolder) managedObjectProps() map[string]map[string]dbus.Variant {
	return p.props
}
