// Package config resolves the small set of deployment-specific values
// this firmware needs at startup: BT device address, serial port path,
// serial baud rate, mic device index. There is no persistent settings
// file; every value is a compile-time default overridable by flag or
// environment variable.
package config

import (
	"flag"
	"os"
	"strconv"
)

const (
	DefaultSerialPort    = "/dev/ttyACM0"
	DefaultSerialBaud    = 115200 // higher rates up to 921600 permitted if both ends agree
	DefaultMicDeviceIdx  = -1     // OS default input device
	DefaultBTAdapterPath = "/org/bluez/hci0"
)

// Config holds the resolved runtime configuration.
type Config struct {
	SerialPort    string
	SerialBaud    int
	MicDeviceIdx  int
	BTDeviceAddr  string
	BTAdapterPath string
}

// Load registers flags (falling back to environment variables, falling
// back to compile-time defaults) and parses them into a Config. Callers
// that define their own flags must do so before calling Load, since this
// is where flag.Parse() runs.
func Load() Config {
	serialPort := flag.String("serial-port", envOrDefault("SERIAL_PORT", DefaultSerialPort), "serial port path to the LED microcontroller")
	serialBaud := flag.Int("serial-baud", envOrDefaultInt("SERIAL_BAUD", DefaultSerialBaud), "serial baud rate to the LED microcontroller")
	micDeviceIdx := flag.Int("mic-device", envOrDefaultInt("MIC_DEVICE_INDEX", DefaultMicDeviceIdx), "PortAudio input device index (-1 for OS default)")
	btDeviceAddr := flag.String("bt-device-addr", os.Getenv("BT_DEVICE_ADDR"), "Bluetooth device address to capture from (empty enables discovery)")
	btAdapterPath := flag.String("bt-adapter", envOrDefault("BT_ADAPTER_PATH", DefaultBTAdapterPath), "BlueZ adapter D-Bus object path for the GATT peripheral")
	flag.Parse()

	return Config{
		SerialPort:    *serialPort,
		SerialBaud:    *serialBaud,
		MicDeviceIdx:  *micDeviceIdx,
		BTDeviceAddr:  *btDeviceAddr,
		BTAdapterPath: *btAdapterPath,
	}
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
