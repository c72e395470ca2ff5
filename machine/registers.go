package machine

import (
	"fmt"
)

// Register is a register index, as encoded in Format 2 instructions.
type Register int

const (
	REG_A  = Register(0) // Accumulator.
	REG_X  = Register(1) // Index.
	REG_L  = Register(2) // Linkage.
	REG_B  = Register(3) // Base.
	REG_S  = Register(4) // General purpose.
	REG_T  = Register(5) // General purpose.
	REG_F  = Register(6) // Floating point accumulator, 48 bits.
	REG_PC = Register(8) // Program counter.
	REG_SW = Register(9) // Status word.

	REG_COUNT = 10 // Size of the register index space.
)

// Condition codes held in SW after a comparison.
const (
	CC_LT = int32(-1)
	CC_EQ = int32(0)
	CC_GT = int32(1)
)

var registerName = [REG_COUNT]string{
	REG_A:  "A",
	REG_X:  "X",
	REG_L:  "L",
	REG_B:  "B",
	REG_S:  "S",
	REG_T:  "T",
	REG_F:  "F",
	REG_PC: "PC",
	REG_SW: "SW",
}

// IntegerRegisters lists the 24-bit registers in display order.
var IntegerRegisters = []Register{REG_A, REG_X, REG_L, REG_B, REG_S, REG_T, REG_PC, REG_SW}

// Valid returns true if the register is a 24-bit register reachable by index.
func (r Register) Valid() bool {
	return r >= 0 && r < REG_COUNT && r != REG_F && registerName[r] != ""
}

func (r Register) String() string {
	if r >= 0 && r < REG_COUNT && registerName[r] != "" {
		return registerName[r]
	}
	return fmt.Sprintf("R%d", int(r))
}

// Registers is the register bank.
//
// Set stores the raw value; Get truncates to 24 bits and sign extends, so
// arithmetic overflow is visible in the stored value until it is read.
type Registers struct {
	value [REG_COUNT]int32
	F     float64 // Floating point accumulator.
}

// Get returns the 24-bit sign extended value of an integer register.
// Panics if the register is not a valid integer register.
func (regs Registers) Get(r Register) int32 {
	if !r.Valid() {
		panic(fmt.Sprintf("register %v has no integer value", r))
	}
	return Word(regs.value[r])
}

// Set stores a raw value in an integer register.
// Panics if the register is not a valid integer register.
func (regs *Registers) Set(r Register, value int32) {
	if !r.Valid() {
		panic(fmt.Sprintf("register %v has no integer value", r))
	}
	regs.value[r] = value
}

// GetBytes returns a register as a big-endian word.
func (regs Registers) GetBytes(r Register) [WORD_SIZE]byte {
	return WordBytes(regs.Get(r))
}

// SetBytes sets a register from a big-endian word.
func (regs *Registers) SetBytes(r Register, data [WORD_SIZE]byte) {
	regs.Set(r, WordValue(data))
}

// Reset clears all registers.
func (regs *Registers) Reset() {
	clear(regs.value[:])
	regs.F = 0
}

// String returns the register bank as text, one register per line.
func (regs Registers) String() (text string) {
	for _, r := range IntegerRegisters {
		val := regs.Get(r)
		text += fmt.Sprintf("% 3s: %06X (%d)\n", r, uint32(val)&WORD_MASK, val)
	}
	text += fmt.Sprintf("% 3s: %g\n", REG_F, regs.F)
	return
}
