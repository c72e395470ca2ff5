// Package device provides the byte wide I/O devices of the SIC/XE machine.
// It includes operator input and output streams, a diagnostic stream, and
// lazily opened file backed devices, collected in a 256 entry Table
// addressed by device number.
package device

// Device defines the interface for all SIC/XE I/O devices.
type Device interface {
	// Test returns true if the device is ready.
	Test() bool
	// Read returns the next byte from the device.
	Read() (value byte, err error)
	// Write sends a byte to the device.
	Write(value byte) error
}
