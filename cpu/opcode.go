package cpu

import (
	"fmt"
)

// Opcode is an operation code, the upper 6 bits of the first instruction byte.
type Opcode byte

// Format is an instruction format family.
type Format int

const (
	FORMAT_NONE  = Format(0) // Unassigned opcode.
	FORMAT_1     = Format(1) // 1 byte, no operand.
	FORMAT_2     = Format(2) // 2 bytes, register pair.
	FORMAT_SIC_4 = Format(3) // SIC, Format 3 or Format 4.
)

func (format Format) String() string {
	switch format {
	case FORMAT_1:
		return "F1"
	case FORMAT_2:
		return "F2"
	case FORMAT_SIC_4:
		return "F3/F4"
	}
	return "?"
}

const OPCODE_MASK = 0xfc // Opcode bits of the first instruction byte.

const (
	// Load and store
	OP_LDA = Opcode(0x00)
	OP_LDX = Opcode(0x04)
	OP_LDL = Opcode(0x08)
	OP_STA = Opcode(0x0c)
	OP_STX = Opcode(0x10)
	OP_STL = Opcode(0x14)

	// Fixed point arithmetic
	OP_ADD  = Opcode(0x18)
	OP_SUB  = Opcode(0x1c)
	OP_MUL  = Opcode(0x20)
	OP_DIV  = Opcode(0x24)
	OP_COMP = Opcode(0x28)
	OP_TIX  = Opcode(0x2c)

	// Jumps
	OP_JEQ = Opcode(0x30)
	OP_JGT = Opcode(0x34)
	OP_JLT = Opcode(0x38)
	OP_J   = Opcode(0x3c)

	// Bit manipulation
	OP_AND = Opcode(0x40)
	OP_OR  = Opcode(0x44)

	// Subroutines
	OP_JSUB = Opcode(0x48)
	OP_RSUB = Opcode(0x4c)

	// Load and store byte
	OP_LDCH = Opcode(0x50)
	OP_STCH = Opcode(0x54)

	// Floating point arithmetic
	OP_ADDF  = Opcode(0x58)
	OP_SUBF  = Opcode(0x5c)
	OP_MULF  = Opcode(0x60)
	OP_DIVF  = Opcode(0x64)
	OP_COMPF = Opcode(0x88)

	// Load and store, more registers
	OP_LDB = Opcode(0x68)
	OP_LDS = Opcode(0x6c)
	OP_LDF = Opcode(0x70)
	OP_LDT = Opcode(0x74)
	OP_STB = Opcode(0x78)
	OP_STS = Opcode(0x7c)
	OP_STF = Opcode(0x80)
	OP_STT = Opcode(0x84)

	// Format 2
	OP_ADDR   = Opcode(0x90)
	OP_SUBR   = Opcode(0x94)
	OP_MULR   = Opcode(0x98)
	OP_DIVR   = Opcode(0x9c)
	OP_COMPR  = Opcode(0xa0)
	OP_SHIFTL = Opcode(0xa4)
	OP_SHIFTR = Opcode(0xa8)
	OP_RMO    = Opcode(0xac)
	OP_SVC    = Opcode(0xb0)
	OP_CLEAR  = Opcode(0xb4)
	OP_TIXR   = Opcode(0xb8)

	// Format 1
	OP_FLOAT = Opcode(0xc0)
	OP_FIX   = Opcode(0xc4)
	OP_NORM  = Opcode(0xc8)
	OP_SIO   = Opcode(0xf0)
	OP_HIO   = Opcode(0xf4)
	OP_TIO   = Opcode(0xf8)

	// System
	OP_LPS  = Opcode(0xd0)
	OP_STI  = Opcode(0xd4)
	OP_RD   = Opcode(0xd8)
	OP_WD   = Opcode(0xdc)
	OP_TD   = Opcode(0xe0)
	OP_STSW = Opcode(0xe8)
	OP_SSK  = Opcode(0xec)
)

type opcodeInfo struct {
	Mnemonic    string
	Format      Format
	Immediate   bool // Accepts immediate addressing.
	Unsupported bool // Recognized, but has no execution semantics.
}

var opcodeList = map[Opcode]opcodeInfo{
	OP_LDA:  {"LDA", FORMAT_SIC_4, true, false},
	OP_LDX:  {"LDX", FORMAT_SIC_4, true, false},
	OP_LDL:  {"LDL", FORMAT_SIC_4, true, false},
	OP_STA:  {"STA", FORMAT_SIC_4, false, false},
	OP_STX:  {"STX", FORMAT_SIC_4, false, false},
	OP_STL:  {"STL", FORMAT_SIC_4, false, false},
	OP_ADD:  {"ADD", FORMAT_SIC_4, true, false},
	OP_SUB:  {"SUB", FORMAT_SIC_4, true, false},
	OP_MUL:  {"MUL", FORMAT_SIC_4, true, false},
	OP_DIV:  {"DIV", FORMAT_SIC_4, true, false},
	OP_COMP: {"COMP", FORMAT_SIC_4, true, false},
	OP_TIX:  {"TIX", FORMAT_SIC_4, true, false},
	OP_JEQ:  {"JEQ", FORMAT_SIC_4, false, false},
	OP_JGT:  {"JGT", FORMAT_SIC_4, false, false},
	OP_JLT:  {"JLT", FORMAT_SIC_4, false, false},
	OP_J:    {"J", FORMAT_SIC_4, false, false},
	OP_AND:  {"AND", FORMAT_SIC_4, true, false},
	OP_OR:   {"OR", FORMAT_SIC_4, true, false},
	OP_JSUB: {"JSUB", FORMAT_SIC_4, false, false},
	OP_RSUB: {"RSUB", FORMAT_SIC_4, false, false},
	OP_LDCH: {"LDCH", FORMAT_SIC_4, true, false},
	OP_STCH: {"STCH", FORMAT_SIC_4, false, false},
	OP_LDB:  {"LDB", FORMAT_SIC_4, true, false},
	OP_LDS:  {"LDS", FORMAT_SIC_4, true, false},
	OP_LDF:  {"LDF", FORMAT_SIC_4, true, false},
	OP_LDT:  {"LDT", FORMAT_SIC_4, true, false},
	OP_STB:  {"STB", FORMAT_SIC_4, false, false},
	OP_STS:  {"STS", FORMAT_SIC_4, false, false},
	OP_STF:  {"STF", FORMAT_SIC_4, false, false},
	OP_STT:  {"STT", FORMAT_SIC_4, false, false},
	OP_RD:   {"RD", FORMAT_SIC_4, true, false},
	OP_WD:   {"WD", FORMAT_SIC_4, true, false},
	OP_TD:   {"TD", FORMAT_SIC_4, true, false},
	OP_STSW: {"STSW", FORMAT_SIC_4, false, false},

	OP_ADDF:  {"ADDF", FORMAT_SIC_4, true, true},
	OP_SUBF:  {"SUBF", FORMAT_SIC_4, true, true},
	OP_MULF:  {"MULF", FORMAT_SIC_4, true, true},
	OP_DIVF:  {"DIVF", FORMAT_SIC_4, true, true},
	OP_COMPF: {"COMPF", FORMAT_SIC_4, true, true},
	OP_LPS:   {"LPS", FORMAT_SIC_4, false, true},
	OP_STI:   {"STI", FORMAT_SIC_4, false, true},
	OP_SSK:   {"SSK", FORMAT_SIC_4, false, true},

	OP_ADDR:   {"ADDR", FORMAT_2, false, false},
	OP_SUBR:   {"SUBR", FORMAT_2, false, false},
	OP_MULR:   {"MULR", FORMAT_2, false, false},
	OP_DIVR:   {"DIVR", FORMAT_2, false, false},
	OP_COMPR:  {"COMPR", FORMAT_2, false, false},
	OP_SHIFTL: {"SHIFTL", FORMAT_2, false, false},
	OP_SHIFTR: {"SHIFTR", FORMAT_2, false, false},
	OP_RMO:    {"RMO", FORMAT_2, false, false},
	OP_SVC:    {"SVC", FORMAT_2, false, false},
	OP_CLEAR:  {"CLEAR", FORMAT_2, false, false},
	OP_TIXR:   {"TIXR", FORMAT_2, false, false},

	OP_FLOAT: {"FLOAT", FORMAT_1, false, false},
	OP_FIX:   {"FIX", FORMAT_1, false, false},
	OP_NORM:  {"NORM", FORMAT_1, false, true},
	OP_SIO:   {"SIO", FORMAT_1, false, true},
	OP_HIO:   {"HIO", FORMAT_1, false, true},
	OP_TIO:   {"TIO", FORMAT_1, false, true},
}

// opcodeTable is indexed by the masked first instruction byte.
var opcodeTable [256]*opcodeInfo

func init() {
	for op, info := range opcodeList {
		if byte(op)&^OPCODE_MASK != 0 {
			panic(fmt.Sprintf("opcode %#02x has addressing bits set", byte(op)))
		}
		opcodeTable[op] = &info
	}
}

// Classify returns the opcode of a first instruction byte.
// Format 1 and Format 2 opcodes use all 8 bits of the byte; the others
// use the top 6, the low 2 being the n and i flags.
// ok is false if the opcode is unassigned.
func Classify(first byte) (op Opcode, ok bool) {
	op = Opcode(first & OPCODE_MASK)
	info := opcodeTable[op]
	if info == nil {
		return
	}
	switch info.Format {
	case FORMAT_1, FORMAT_2:
		ok = first == byte(op)
	default:
		ok = true
	}
	return
}

// Opcodes returns all assigned opcodes, in numeric order.
func Opcodes() (ops []Opcode) {
	for n, info := range opcodeTable {
		if info != nil {
			ops = append(ops, Opcode(n))
		}
	}
	return
}

// ParseMnemonic returns the opcode for an instruction mnemonic.
func ParseMnemonic(mnemonic string) (op Opcode, ok bool) {
	for code, info := range opcodeList {
		if info.Mnemonic == mnemonic {
			return code, true
		}
	}
	return
}

// Format returns the format family of the opcode.
func (op Opcode) Format() Format {
	info := opcodeTable[op]
	if info == nil {
		return FORMAT_NONE
	}
	return info.Format
}

// Immediate returns true if the opcode accepts immediate addressing.
func (op Opcode) Immediate() bool {
	info := opcodeTable[op]
	return info != nil && info.Immediate
}

// Implemented returns true if the opcode has execution semantics.
func (op Opcode) Implemented() bool {
	info := opcodeTable[op]
	return info != nil && !info.Unsupported
}

// String returns the mnemonic of the opcode.
func (op Opcode) String() string {
	info := opcodeTable[op]
	if info == nil {
		return fmt.Sprintf("?%02X", byte(op))
	}
	return info.Mnemonic
}
