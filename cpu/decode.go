package cpu

import (
	"fmt"

	"github.com/ezrec/sicxe/machine"
)

// Flags are the addressing flags of a SIC, Format 3 or Format 4 instruction.
type Flags struct {
	N bool // Indirect (with I clear).
	I bool // Immediate (with N clear).
	X bool // Indexed.
	B bool // Base relative.
	P bool // PC relative.
	E bool // Extended, Format 4.
}

// ExtractFlags returns the addressing flags of an instruction.
// n and i are the low 2 bits of the first byte; x, b, p and e are the
// high 4 bits of the second.
func ExtractFlags(first, second byte) Flags {
	return Flags{
		N: first&0b0000_0010 != 0,
		I: first&0b0000_0001 != 0,
		X: second&0b1000_0000 != 0,
		B: second&0b0100_0000 != 0,
		P: second&0b0010_0000 != 0,
		E: second&0b0001_0000 != 0,
	}
}

// SIC returns true for SIC compatible instructions: n and i both clear.
func (flags Flags) SIC() bool {
	return !flags.N && !flags.I
}

// Extended returns true for Format 4 instructions.
func (flags Flags) Extended() bool {
	return !flags.SIC() && flags.E
}

// Immediate returns true for immediate addressing: i set, n clear.
func (flags Flags) Immediate() bool {
	return flags.I && !flags.N
}

// Indirect returns true for indirect addressing: n set, i clear.
func (flags Flags) Indirect() bool {
	return flags.N && !flags.I
}

// Length returns the instruction length in bytes.
func (flags Flags) Length() int {
	if flags.Extended() {
		return 4
	}
	return 3
}

func (flags Flags) String() string {
	bit := func(b bool) byte {
		if b {
			return '1'
		}
		return '0'
	}
	return fmt.Sprintf("nixbpe=%c%c%c%c%c%c",
		bit(flags.N), bit(flags.I), bit(flags.X), bit(flags.B), bit(flags.P), bit(flags.E))
}

// Operand extracts the address field of an instruction from its second,
// third and (Format 4 only) fourth bytes:
//
//	SIC:      15 bits, absolute address
//	Format 3: 12 bits, displacement
//	Format 4: 20 bits, absolute address
func Operand(flags Flags, second, third, fourth byte) int32 {
	switch {
	case flags.SIC():
		return int32(second&0x7f)<<8 | int32(third)
	case flags.Extended():
		return int32(second&0x0f)<<16 | int32(third)<<8 | int32(fourth)
	default:
		return int32(second&0x0f)<<8 | int32(third)
	}
}

// SignExtend12 sign extends a 12-bit displacement.
func SignExtend12(disp int32) int32 {
	disp &= 0xfff
	if disp&0x800 != 0 {
		disp |= ^int32(0xfff)
	}
	return disp
}

// Resolve computes the effective address of an instruction from its flags,
// its address field, and the machine state. The program counter must
// already point past the instruction.
//
// For immediate addressing the result is the operand value itself, and
// memory is not accessed. For indirect addressing the word at the computed
// address is the effective address. Indexing applies last.
func Resolve(flags Flags, operand int32, m *machine.Machine) (value int32, err error) {
	regs := &m.Registers

	switch {
	case flags.SIC():
		value = operand
	case flags.Extended():
		if flags.B || flags.P {
			err = ErrAddressing(flags)
			return
		}
		value = operand
	case flags.B && flags.P:
		err = ErrAddressing(flags)
		return
	case flags.P:
		value = regs.Get(machine.REG_PC) + SignExtend12(operand)
	case flags.B:
		value = regs.Get(machine.REG_B) + operand
	case flags.Immediate():
		value = operand
	default:
		err = ErrAddressing(flags)
		return
	}

	if flags.Immediate() {
		return
	}

	if flags.Indirect() {
		if !machine.InRange(value, machine.WORD_SIZE) {
			err = ErrAddress(value)
			return
		}
		value = machine.WordValue(m.Memory.Word(int(value)))
	}

	if flags.X {
		value += regs.Get(machine.REG_X)
	}

	return
}
