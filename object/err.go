package object

import (
	"errors"

	"github.com/ezrec/sicxe/translate"
)

var f = translate.From

var (
	// Parse errors
	ErrRecord = errors.New(f("record type unknown"))
	ErrShort  = errors.New(f("record too short"))
	ErrHex    = errors.New(f("hexadecimal field invalid"))
	ErrLength = errors.New(f("modification length invalid"))

	// Load errors
	ErrRange = errors.New(f("address out of range"))
)

// ErrSyntax locates a parse error in the object file.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err *ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err *ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrAddress is a record that does not fit in memory.
type ErrAddress struct {
	Record  byte  // Record type.
	Address int32 // Relocated address.
}

func (err *ErrAddress) Error() string {
	return f("%c record at 0x%06x out of range", err.Record, err.Address)
}

func (err *ErrAddress) Is(target error) bool {
	return target == ErrRange
}
