package link

import (
	"fmt"

	"go.bug.st/serial"
)

// DefaultBaudRate is the UART speed of the reference hardware.
const DefaultBaudRate = 9600

// SerialConfig configures a UART link. The frame format is fixed at 8N1.
type SerialConfig struct {
	// Port is the device path, e.g. /dev/ttyUSB0 or COM3.
	Port string

	// BaudRate defaults to DefaultBaudRate.
	BaudRate int
}

// OpenSerial opens a UART and returns a link over it.
func OpenSerial(cfg SerialConfig) (*StreamLink, error) {
	if cfg.Port == "" {
		return nil, fmt.Errorf("serial port is required")
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	port, err := serial.Open(cfg.Port, &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}
	return NewStreamLink(port, cfg.Port), nil
}

// SerialPorts lists the serial ports present on the system.
func SerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
