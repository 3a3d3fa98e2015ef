package ble

const (
	serviceUUID = "12345678-1234-5678-1234-56789abcdef0"
	cmdUUID     = "12345678-1234-5678-1234-56789abcdef9"
	stateUUID   = "12345678-1234-5678-1234-56789abcdef8"

	advertisingName = "Visualizer"

	appPath     = "/org/visualizer/app"
	servicePath = appPath + "/service0"
	cmdCharPath = servicePath + "/char0"
	statePath   = servicePath + "/char1"
	advertPath  = appPath + "/advertisement0"

	bluezBus = "org.bluez"

	ifaceObjectManager         = "org.freedesktop.DBus.ObjectManager"
	ifaceProperties            = "org.freedesktop.DBus.Properties"
	ifaceGattService1          = "org.bluez.GattService1"
	ifaceGattCharacteristic1   = "org.bluez.GattCharacteristic1"
	ifaceGattManager1          = "org.bluez.GattManager1"
	ifaceLEAdvertisement1      = "org.bluez.LEAdvertisement1"
	ifaceLEAdvertisingManager1 = "org.bluez.LEAdvertisingManager1"
)
