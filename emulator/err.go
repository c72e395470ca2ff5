package emulator

import (
	"errors"

	"github.com/ezrec/sicxe/translate"
)

var f = translate.From

var (
	// Breakpoint errors
	ErrBreakpoint = errors.New(f("breakpoint"))
	ErrCondition  = errors.New(f("breakpoint condition"))
)

// ErrBreak stops the clock when a breakpoint condition holds.
type ErrBreak struct {
	Pc   int32  // PC after the instruction that triggered the breakpoint.
	Expr string // Breakpoint condition.
}

func (err *ErrBreak) Error() string {
	return f("breakpoint '%v' at 0x%06x", err.Expr, err.Pc)
}

func (err *ErrBreak) Is(target error) bool {
	return target == ErrBreakpoint
}

// ErrExpression is a breakpoint condition that fails to compile or evaluate.
type ErrExpression struct {
	Expr string
	Err  error
}

func (err *ErrExpression) Error() string {
	return f("breakpoint '%v': %v", err.Expr, err.Err)
}

func (err *ErrExpression) Unwrap() error {
	return err.Err
}

func (err *ErrExpression) Is(target error) bool {
	return target == ErrCondition
}
