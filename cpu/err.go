package cpu

import (
	"errors"

	"github.com/ezrec/sicxe/translate"
)

var f = translate.From

var (
	// Error classes
	ErrDecode        = errors.New(f("decode failure"))
	ErrUnimplemented = errors.New(f("not implemented"))
	ErrAddressRange  = errors.New(f("address out of range"))

	// Execution errors
	ErrDivideByZero = errors.New(f("division by zero"))
	ErrInternal     = errors.New(f("opcode has no execution semantics"))
)

// ErrOpcode is an unassigned first instruction byte.
type ErrOpcode byte

func (eo ErrOpcode) Error() string {
	return f("bad opcode 0x%02x", byte(eo))
}

func (eo ErrOpcode) Is(err error) bool {
	return err == ErrDecode
}

// ErrAddressing is an inconsistent combination of addressing flags.
type ErrAddressing Flags

func (ea ErrAddressing) Error() string {
	return f("invalid addressing %v", Flags(ea))
}

func (ea ErrAddressing) Is(err error) bool {
	return err == ErrDecode
}

// ErrRegister is a register operand that does not name a register.
type ErrRegister byte

func (er ErrRegister) Error() string {
	return f("invalid register %d", byte(er))
}

func (er ErrRegister) Is(err error) bool {
	return err == ErrDecode
}

// ErrNotImplemented is a recognized instruction without execution semantics.
type ErrNotImplemented struct {
	Opcode Opcode
	Detail string
}

func (eni *ErrNotImplemented) Error() string {
	if eni.Detail != "" {
		return f("%v %v not implemented", eni.Opcode, eni.Detail)
	}
	return f("%v not implemented", eni.Opcode)
}

func (eni *ErrNotImplemented) Is(err error) bool {
	return err == ErrUnimplemented
}

// ErrAddress is an access outside of memory.
type ErrAddress int32

func (ea ErrAddress) Error() string {
	return f("address 0x%06x out of range", int32(ea))
}

func (ea ErrAddress) Is(err error) bool {
	return err == ErrAddressRange
}

// ErrExecute locates a failed instruction.
type ErrExecute struct {
	Pc         int32  // Address of the instruction.
	Opcode     Opcode // Opcode, valid if Classified is set.
	Classified bool
	Err        error
}

func (err *ErrExecute) Error() string {
	if !err.Classified {
		return f("0x%06x: %v", err.Pc, err.Err)
	}
	return f("0x%06x %v: %v", err.Pc, err.Opcode, err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}
