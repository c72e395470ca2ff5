package object

import (
	"bufio"
	"encoding/hex"
	"io"
	"strconv"
	"strings"

	"github.com/ezrec/sicxe/machine"
)

// Header is the H record of a program.
type Header struct {
	Name   string // Program name, trailing spaces removed.
	Start  int32  // Load address.
	Length int32  // Program length in bytes.
}

// Text is a T record: a block of bytes at an address.
type Text struct {
	Address int32
	Data    []byte
}

// Modification is an M record: a field to relocate.
type Modification struct {
	Address int32 // First byte of the field.
	Length  int   // Field length, in half-bytes, right aligned in 3 bytes.
}

// Program is a parsed object program.
type Program struct {
	Header       *Header // nil if the program has no H record.
	Text         []Text
	Modification []Modification

	entry    int32
	hasEntry bool
}

// Entry returns the entry address of the program: the E record address if
// present, otherwise the header start address, otherwise 0.
func (prog *Program) Entry() int32 {
	switch {
	case prog.hasEntry:
		return prog.entry
	case prog.Header != nil:
		return prog.Header.Start
	}
	return 0
}

// field parses a fixed width hexadecimal field.
func field(line string, pos, width int) (value int32, err error) {
	if len(line) < pos+width {
		err = ErrShort
		return
	}

	v, err := strconv.ParseUint(line[pos:pos+width], 16, 32)
	if err != nil {
		err = ErrHex
		return
	}

	value = int32(v)
	return
}

// Parse reads an object program.
func Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			prog = nil
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	prog = &Program{}

	for scanner.Scan() {
		lineno++
		line = strings.TrimRight(scanner.Text(), " \t\r")
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case 'H', 'h':
			var header Header
			if len(line) < 19 {
				err = ErrShort
				return
			}
			header.Name = strings.TrimRight(line[1:7], " ")
			header.Start, err = field(line, 7, 6)
			if err != nil {
				return
			}
			header.Length, err = field(line, 13, 6)
			if err != nil {
				return
			}
			prog.Header = &header
		case 'T', 't':
			var text Text
			var count int32
			text.Address, err = field(line, 1, 6)
			if err != nil {
				return
			}
			count, err = field(line, 7, 2)
			if err != nil {
				return
			}
			data := line[9:]
			if len(data) < int(count)*2 {
				err = ErrShort
				return
			}
			text.Data, err = hex.DecodeString(data[:count*2])
			if err != nil {
				err = ErrHex
				return
			}
			prog.Text = append(prog.Text, text)
		case 'M', 'm':
			var mod Modification
			var length int32
			mod.Address, err = field(line, 1, 6)
			if err != nil {
				return
			}
			length, err = field(line, 7, 2)
			if err != nil {
				return
			}
			if length < 1 || length > 2*machine.WORD_SIZE {
				err = ErrLength
				return
			}
			mod.Length = int(length)
			prog.Modification = append(prog.Modification, mod)
		case 'E', 'e':
			if len(line) == 1 {
				continue
			}
			prog.entry, err = field(line, 1, 6)
			if err != nil {
				return
			}
			prog.hasEntry = true
		default:
			err = ErrRecord
			return
		}
	}

	line = ""
	err = scanner.Err()

	return
}

// Load writes the program into memory, relocated by offset, and sets PC
// to the relocated entry address. Modification records are applied only
// when offset is not zero.
func (prog *Program) Load(m *machine.Machine, offset int32) (err error) {
	for _, text := range prog.Text {
		address := text.Address + offset
		if !machine.InRange(address, len(text.Data)) {
			err = &ErrAddress{Record: 'T', Address: address}
			return
		}
		m.Memory.Load(int(address), text.Data)
	}

	if offset != 0 {
		for _, mod := range prog.Modification {
			address := mod.Address + offset
			if !machine.InRange(address, machine.WORD_SIZE) {
				err = &ErrAddress{Record: 'M', Address: address}
				return
			}
			word := uint32(machine.WordValue(m.Memory.Word(int(address)))) & machine.WORD_MASK
			mask := uint32(1)<<(4*mod.Length) - 1
			word = word&^mask | (word+uint32(offset))&mask
			m.Memory.SetWord(int(address), machine.WordBytes(int32(word)))
		}
	}

	m.SetPc(prog.Entry() + offset)

	return
}
