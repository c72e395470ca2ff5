package device

import (
	"errors"
	"io"
)

// Input reads operator input one byte at a time. Writes are ignored.
// Reads block until a byte is available; end of stream reads as 0.
type Input struct {
	Reader io.Reader
}

var _ Device = (*Input)(nil)

func (in *Input) Test() bool {
	return true
}

func (in *Input) Read() (value byte, err error) {
	var one [1]byte
	_, err = io.ReadFull(in.Reader, one[:])
	if errors.Is(err, io.EOF) {
		err = nil
		return
	}
	if err != nil {
		err = &ErrDevice{Name: "input", Op: "read", Err: err}
		return
	}

	value = one[0]
	return
}

func (in *Input) Write(value byte) error {
	return nil
}

// Output writes operator output one byte at a time. Reads yield 0.
type Output struct {
	Writer io.Writer
}

var _ Device = (*Output)(nil)

func (out *Output) Test() bool {
	return true
}

func (out *Output) Read() (value byte, err error) {
	return
}

func (out *Output) Write(value byte) (err error) {
	_, err = out.Writer.Write([]byte{value})
	if err != nil {
		err = &ErrDevice{Name: "output", Op: "write", Err: err}
	}
	return
}

// Error writes to the diagnostic stream one byte at a time. Reads yield 0.
type Error struct {
	Writer io.Writer
}

var _ Device = (*Error)(nil)

func (ed *Error) Test() bool {
	return true
}

func (ed *Error) Read() (value byte, err error) {
	return
}

func (ed *Error) Write(value byte) (err error) {
	_, err = ed.Writer.Write([]byte{value})
	if err != nil {
		err = &ErrDevice{Name: "error", Op: "write", Err: err}
	}
	return
}
