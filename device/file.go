package device

import (
	"errors"
	"io"
	"os"
)

// File is a device backed by a file.
//
// The file is opened for reading and writing, and created if missing, on
// first access, and stays open until Close. Reads and writes share one
// file offset. Reading past the end of the file yields 0.
type File struct {
	Path string // Path of the backing file.

	file *os.File
}

var _ Device = (*File)(nil)

func (fd *File) open() (err error) {
	if fd.file != nil {
		return
	}

	fd.file, err = os.OpenFile(fd.Path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		err = &ErrDevice{Name: fd.Path, Op: "open", Err: err}
	}

	return
}

func (fd *File) Test() bool {
	return true
}

func (fd *File) Read() (value byte, err error) {
	err = fd.open()
	if err != nil {
		return
	}

	var one [1]byte
	_, err = io.ReadFull(fd.file, one[:])
	if errors.Is(err, io.EOF) {
		err = nil
		return
	}
	if err != nil {
		err = &ErrDevice{Name: fd.Path, Op: "read", Err: err}
		return
	}

	value = one[0]
	return
}

func (fd *File) Write(value byte) (err error) {
	err = fd.open()
	if err != nil {
		return
	}

	_, err = fd.file.Write([]byte{value})
	if err != nil {
		err = &ErrDevice{Name: fd.Path, Op: "write", Err: err}
	}

	return
}

// Opened returns true if the backing file has been opened.
func (fd *File) Opened() bool {
	return fd.file != nil
}

// Close closes the backing file, if it was opened.
// A later access opens it again from the start.
func (fd *File) Close() (err error) {
	if fd.file == nil {
		return
	}

	err = fd.file.Close()
	fd.file = nil

	return
}
