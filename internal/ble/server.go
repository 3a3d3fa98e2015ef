// Package ble implements the BLE GATT control endpoint:
// one primary service with a write-only CMD characteristic and a
// read/notify STATE characteristic, registered with BlueZ over D-Bus.
package ble

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/Klus3kk/rpi-audio-visualizer/internal/state"
)

// notifyInterval paces the periodic STATE notification at roughly 2 Hz.
const notifyInterval = 500 * time.Millisecond

// Server registers and runs the GATT peripheral against a system D-Bus
// connection to BlueZ. It owns the BLE adapter resource exclusively while
// running.
type Server struct {
	st          *state.State
	adapterPath dbus.ObjectPath

	conn *dbus.Conn
	app  *application
}

// NewServer builds a Server bound to the given BlueZ adapter object path
// (e.g. "/org/bluez/hci0").
func NewServer(st *state.State, adapterPath string) *Server {
	return &Server{st: st, adapterPath: dbus.ObjectPath(adapterPath)}
}

func (s *Server) snapshotJSON() []byte {
	b, err := json.Marshal(s.st.Snapshot())
	if err != nil {
		return []byte("{}")
	}
	return b
}

// Run connects to the system bus, exports the GATT application and
// advertisement, registers both with BlueZ, and blocks emitting STATE
// notifications until ctx is canceled.
func (s *Server) Run(ctx context.Context) error {
	conn, err := dbus.ConnectSystemBus()
	if err != nil {
		return fmt.Errorf("ble: connect system bus: %w", err)
	}
	s.conn = conn
	defer conn.Close()

	svc := newGattService()
	cmdChar := newCmdCharacteristic(func(patch map[string]any) {
		s.st.Update(state.Patch(patch))
		s.notify()
	})
	stChar := newStateCharacteristic(s.snapshotJSON)
	adv := newAdvertisement()

	s.app = &application{service: svc, cmdChar: cmdChar, stChar: stChar}

	if err := s.exportTree(svc, cmdChar, stChar, adv); err != nil {
		return err
	}

	if err := s.registerApplication(); err != nil {
		return fmt.Errorf("ble: register application: %w", err)
	}
	if err := s.registerAdvertisement(); err != nil {
		log.Printf("[ble] advertisement registration failed: %v", err)
	}

	ticker := time.NewTicker(notifyInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.unregister()
			return nil
		case <-ticker.C:
			s.notify()
		}
	}
}

func (s *Server) exportTree(svc *gattService, cmdChar *cmdCharacteristic, stChar *stateCharacteristic, adv *advertisement) error {
	exports := []struct {
		obj   interface{}
		path  dbus.ObjectPath
		iface string
	}{
		{s.app, dbus.ObjectPath(appPath), ifaceObjectManager},
		{svc, dbus.ObjectPath(servicePath), ifaceGattService1},
		{svc, dbus.ObjectPath(servicePath), ifaceProperties},
		{cmdChar, dbus.ObjectPath(cmdCharPath), ifaceGattCharacteristic1},
		{cmdChar, dbus.ObjectPath(cmdCharPath), ifaceProperties},
		{stChar, dbus.ObjectPath(statePath), ifaceGattCharacteristic1},
		{stChar, dbus.ObjectPath(statePath), ifaceProperties},
		{adv, dbus.ObjectPath(advertPath), ifaceLEAdvertisement1},
		{adv, dbus.ObjectPath(advertPath), ifaceProperties},
	}
	for _, e := range exports {
		if err := s.conn.Export(e.obj, e.path, e.iface); err != nil {
			return fmt.Errorf("ble: export %s on %s: %w", e.iface, e.path, err)
		}
	}
	return nil
}

func (s *Server) registerApplication() error {
	obj := s.conn.Object(bluezBus, s.adapterPath)
	call := obj.Call(ifaceGattManager1+".RegisterApplication", 0,
		dbus.ObjectPath(appPath), map[string]dbus.Variant{})
	return call.Err
}

func (s *Server) registerAdvertisement() error {
	obj := s.conn.Object(bluezBus, s.adapterPath)
	call := obj.Call(ifaceLEAdvertisingManager1+".RegisterAdvertisement", 0,
		dbus.ObjectPath(advertPath), map[string]dbus.Variant{})
	return call.Err
}

func (s *Server) unregister() {
	obj := s.conn.Object(bluezBus, s.adapterPath)
	obj.Call(ifaceGattManager1+".UnregisterApplication", 0, dbus.ObjectPath(appPath))
	obj.Call(ifaceLEAdvertisingManager1+".UnregisterAdvertisement", 0, dbus.ObjectPath(advertPath))
}

// notify emits a PropertiesChanged signal for STATE's Value property,
// covering both the post-write notify and the periodic timer.
func (s *Server) notify() {
	if s.conn == nil {
		return
	}
	changed := map[string]dbus.Variant{"Value": dbus.MakeVariant(s.snapshotJSON())}
	err := s.conn.Emit(dbus.ObjectPath(statePath), ifaceProperties+".PropertiesChanged",
		ifaceGattCharacteristic1, changed, []string{})
	if err != nil {
		log.Printf("[ble] notify emit failed: %v", err)
	}
}
