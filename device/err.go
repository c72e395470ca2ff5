package device

import (
	"errors"

	"github.com/ezrec/sicxe/translate"
)

var f = translate.From

var (
	// Device errors
	ErrIO = errors.New(f("device i/o"))
)

// ErrDevice is an I/O failure of a device, other than end of stream.
type ErrDevice struct {
	Name string // Device name.
	Op   string // "open", "read" or "write".
	Err  error  // Underlying error.
}

func (err *ErrDevice) Error() string {
	return f("device %v: %v: %v", err.Name, err.Op, err.Err)
}

func (err *ErrDevice) Unwrap() error {
	return err.Err
}

func (err *ErrDevice) Is(target error) bool {
	return target == ErrIO
}
