package device

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

const (
	DEVICE_COUNT  = 256    // Number of device slots.
	DEVICE_INPUT  = 0      // Operator input.
	DEVICE_OUTPUT = 1      // Operator output.
	DEVICE_ERROR  = 2      // Diagnostic output.
	FILE_EXT      = ".dev" // Extension of file device names.
)

// FileName returns the backing file name of a file device.
func FileName(index byte) string {
	return fmt.Sprintf("%02X%v", index, FILE_EXT)
}

// Table is the set of devices, addressed by device number.
type Table struct {
	Dir string // Directory of the file devices.

	device [DEVICE_COUNT]Device
}

// NewTable creates a device table with operator input, output and error
// on the process standard streams, and file devices in dir.
func NewTable(dir string) (table *Table) {
	table = &Table{Dir: dir}

	for n := range DEVICE_COUNT {
		table.device[n] = table.defaultDevice(byte(n))
	}

	return
}

func (table *Table) defaultDevice(index byte) Device {
	switch index {
	case DEVICE_INPUT:
		return &Input{Reader: os.Stdin}
	case DEVICE_OUTPUT:
		return &Output{Writer: os.Stdout}
	case DEVICE_ERROR:
		return &Error{Writer: os.Stderr}
	default:
		return &File{Path: filepath.Join(table.Dir, FileName(index))}
	}
}

// Get returns the device at index.
func (table *Table) Get(index byte) Device {
	return table.device[index]
}

// Set replaces the device at index. A nil device restores the default.
func (table *Table) Set(index byte, dev Device) {
	if dev == nil {
		dev = table.defaultDevice(index)
	}
	table.device[index] = dev
}

// Close closes every device that holds an open resource.
func (table *Table) Close() (err error) {
	var errs []error
	for _, dev := range table.device {
		closer, ok := dev.(io.Closer)
		if !ok {
			continue
		}
		errs = append(errs, closer.Close())
	}

	err = errors.Join(errs...)

	return
}
