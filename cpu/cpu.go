// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"cmp"
	"log"

	"github.com/ezrec/sicxe/machine"
)

// Supervisor handles the SVC instruction.
type Supervisor func(cpu *Cpu, n byte) error

// Cpu is the execution engine of a SIC/XE machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	*machine.Machine // Machine being executed.

	Supervisor Supervisor // SVC handler; SVC is not implemented if nil.

	Ticks int // Instructions executed.
}

var loadRegister = map[Opcode]machine.Register{
	OP_LDA: machine.REG_A,
	OP_LDX: machine.REG_X,
	OP_LDL: machine.REG_L,
	OP_LDB: machine.REG_B,
	OP_LDS: machine.REG_S,
	OP_LDT: machine.REG_T,
}

var storeRegister = map[Opcode]machine.Register{
	OP_STA:  machine.REG_A,
	OP_STX:  machine.REG_X,
	OP_STL:  machine.REG_L,
	OP_STB:  machine.REG_B,
	OP_STS:  machine.REG_S,
	OP_STT:  machine.REG_T,
	OP_STSW: machine.REG_SW,
}

// NewCpu creates a new CPU executing a machine.
// If m is nil, a machine with the default device table is created.
func NewCpu(m *machine.Machine) (cpu *Cpu) {
	if m == nil {
		m = machine.NewMachine(nil)
	}

	cpu = &Cpu{
		Machine: m,
	}

	return
}

// Reset clears the machine registers and memory, and the tick counter.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Machine.Reset()
	cpu.Ticks = 0
}

// String returns the register state as a string.
func (cpu *Cpu) String() string {
	return cpu.Registers.String()
}

// fetch returns the byte at PC, and advances PC.
func (cpu *Cpu) fetch() (value byte, err error) {
	pc := cpu.Pc()
	if !machine.InRange(pc, 1) {
		err = ErrAddress(pc)
		return
	}

	value = cpu.Memory.Byte(int(pc))
	cpu.SetPc(pc + 1)

	return
}

// Step executes a single instruction.
//
// done is set when the instruction left PC at its own address, the
// conventional halt of a SIC program ('J *').
//
// On failure, the error is an *ErrExecute wrapping the cause. PC is left
// after the bytes consumed so far; no other state is changed by an
// instruction that failed to decode.
func (cpu *Cpu) Step() (done bool, err error) {
	pc := cpu.Pc()

	var op Opcode
	var ok bool
	defer func() {
		if err != nil {
			err = &ErrExecute{Pc: pc, Opcode: op, Classified: ok, Err: err}
		}
	}()

	first, err := cpu.fetch()
	if err != nil {
		return
	}

	op, ok = Classify(first)
	if !ok {
		err = ErrOpcode(first)
		return
	}

	if !op.Implemented() {
		err = &ErrNotImplemented{Opcode: op}
		return
	}

	switch op.Format() {
	case FORMAT_1:
		if cpu.Verbose {
			log.Printf("cpu: %06X: %v", pc, op)
		}
		err = cpu.execF1(op)
	case FORMAT_2:
		var operand byte
		operand, err = cpu.fetch()
		if err != nil {
			return
		}
		if cpu.Verbose {
			log.Printf("cpu: %06X: %v %v,%v", pc, op, machine.Register(operand>>4), machine.Register(operand&0xf))
		}
		err = cpu.execF2(op, operand>>4, operand&0xf)
	case FORMAT_SIC_4:
		err = cpu.execF3(pc, op, first)
	default:
		err = ErrInternal
	}

	if err != nil {
		return
	}

	cpu.Ticks++
	done = cpu.Pc() == pc

	return
}

func (cpu *Cpu) execF1(op Opcode) (err error) {
	regs := &cpu.Registers

	switch op {
	case OP_FLOAT:
		regs.F = float64(regs.Get(machine.REG_A))
	case OP_FIX:
		regs.Set(machine.REG_A, int32(regs.F))
	default:
		err = ErrInternal
	}

	return
}

// register validates a Format 2 register operand.
func register(op Opcode, index byte) (r machine.Register, err error) {
	r = machine.Register(index)
	switch {
	case r == machine.REG_F:
		err = &ErrNotImplemented{Opcode: op, Detail: f("with register F")}
	case !r.Valid():
		err = ErrRegister(index)
	}
	return
}

func (cpu *Cpu) execF2(op Opcode, n1, n2 byte) (err error) {
	regs := &cpu.Registers

	if op == OP_SVC {
		if cpu.Supervisor == nil {
			err = &ErrNotImplemented{Opcode: op}
			return
		}
		return cpu.Supervisor(cpu, n1)
	}

	r1, err := register(op, n1)
	if err != nil {
		return
	}

	switch op {
	case OP_CLEAR:
		regs.Set(r1, 0)
		return
	case OP_TIXR:
		x := regs.Get(machine.REG_X) + 1
		regs.Set(machine.REG_X, x)
		regs.Set(machine.REG_SW, int32(cmp.Compare(machine.Word(x), regs.Get(r1))))
		return
	case OP_SHIFTL:
		count := (uint(n2) + 1) % 24
		value := uint32(regs.Get(r1)) & machine.WORD_MASK
		value = (value<<count | value>>(24-count)) & machine.WORD_MASK
		regs.Set(r1, int32(value))
		return
	case OP_SHIFTR:
		count := uint(n2) + 1
		regs.Set(r1, regs.Get(r1)>>count)
		return
	}

	r2, err := register(op, n2)
	if err != nil {
		return
	}

	v1 := regs.Get(r1)
	v2 := regs.Get(r2)

	switch op {
	case OP_ADDR:
		regs.Set(r2, v2+v1)
	case OP_SUBR:
		regs.Set(r2, v2-v1)
	case OP_MULR:
		regs.Set(r2, int32(int64(v2)*int64(v1)))
	case OP_DIVR:
		if v1 == 0 {
			err = ErrDivideByZero
			return
		}
		regs.Set(r2, v2/v1)
	case OP_COMPR:
		regs.Set(machine.REG_SW, int32(cmp.Compare(v1, v2)))
	case OP_RMO:
		regs.Set(r2, v1)
	default:
		err = ErrInternal
	}

	return
}

// wordOperand returns the word operand at the effective address.
func (cpu *Cpu) wordOperand(flags Flags, address int32) (value int32, err error) {
	if flags.Immediate() {
		value = address
		return
	}
	if !machine.InRange(address, machine.WORD_SIZE) {
		err = ErrAddress(address)
		return
	}
	value = machine.WordValue(cpu.Memory.Word(int(address)))
	return
}

// byteOperand returns the byte operand at the effective address.
func (cpu *Cpu) byteOperand(flags Flags, address int32) (value byte, err error) {
	if flags.Immediate() {
		value = byte(address)
		return
	}
	if !machine.InRange(address, 1) {
		err = ErrAddress(address)
		return
	}
	value = cpu.Memory.Byte(int(address))
	return
}

func (cpu *Cpu) execF3(pc int32, op Opcode, first byte) (err error) {
	regs := &cpu.Registers
	mem := cpu.Memory

	second, err := cpu.fetch()
	if err != nil {
		return
	}
	third, err := cpu.fetch()
	if err != nil {
		return
	}

	flags := ExtractFlags(first, second)

	var fourth byte
	if flags.Extended() {
		fourth, err = cpu.fetch()
		if err != nil {
			return
		}
	}

	if op == OP_RSUB {
		if cpu.Verbose {
			log.Printf("cpu: %06X: %v", pc, op)
		}
		cpu.SetPc(regs.Get(machine.REG_L))
		return
	}

	if flags.Immediate() && !op.Immediate() {
		err = ErrAddressing(flags)
		return
	}

	operand := Operand(flags, second, third, fourth)
	address, err := Resolve(flags, operand, cpu.Machine)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: %06X: %v %v %06X", pc, op, flags, uint32(address)&machine.WORD_MASK)
	}

	if r, ok := loadRegister[op]; ok {
		var value int32
		value, err = cpu.wordOperand(flags, address)
		if err != nil {
			return
		}
		regs.Set(r, value)
		return
	}

	if r, ok := storeRegister[op]; ok {
		if !machine.InRange(address, machine.WORD_SIZE) {
			err = ErrAddress(address)
			return
		}
		mem.SetWord(int(address), regs.GetBytes(r))
		return
	}

	a := regs.Get(machine.REG_A)
	sw := regs.Get(machine.REG_SW)

	switch op {
	case OP_LDCH:
		var value byte
		value, err = cpu.byteOperand(flags, address)
		if err != nil {
			return
		}
		regs.Set(machine.REG_A, a&^0xff|int32(value))
	case OP_STCH:
		if !machine.InRange(address, 1) {
			err = ErrAddress(address)
			return
		}
		mem.SetByte(int(address), byte(a))
	case OP_LDF:
		if flags.Immediate() {
			regs.F = float64(address)
			return
		}
		if !machine.InRange(address, machine.FLOAT_SIZE) {
			err = ErrAddress(address)
			return
		}
		regs.F = machine.FloatValue(mem.Float(int(address)))
	case OP_STF:
		if !machine.InRange(address, machine.FLOAT_SIZE) {
			err = ErrAddress(address)
			return
		}
		mem.SetFloat(int(address), machine.Float48(regs.F))
	case OP_ADD, OP_SUB, OP_MUL, OP_DIV, OP_AND, OP_OR, OP_COMP:
		var value int32
		value, err = cpu.wordOperand(flags, address)
		if err != nil {
			return
		}
		switch op {
		case OP_ADD:
			regs.Set(machine.REG_A, a+value)
		case OP_SUB:
			regs.Set(machine.REG_A, a-value)
		case OP_MUL:
			regs.Set(machine.REG_A, int32(int64(a)*int64(value)))
		case OP_DIV:
			if value == 0 {
				err = ErrDivideByZero
				return
			}
			regs.Set(machine.REG_A, a/value)
		case OP_AND:
			regs.Set(machine.REG_A, a&value)
		case OP_OR:
			regs.Set(machine.REG_A, a|value)
		case OP_COMP:
			regs.Set(machine.REG_SW, int32(cmp.Compare(a, value)))
		}
	case OP_TIX:
		var value int32
		value, err = cpu.wordOperand(flags, address)
		if err != nil {
			return
		}
		x := regs.Get(machine.REG_X) + 1
		regs.Set(machine.REG_X, x)
		regs.Set(machine.REG_SW, int32(cmp.Compare(machine.Word(x), value)))
	case OP_J:
		cpu.SetPc(address)
	case OP_JEQ:
		if sw == machine.CC_EQ {
			cpu.SetPc(address)
		}
	case OP_JGT:
		if sw == machine.CC_GT {
			cpu.SetPc(address)
		}
	case OP_JLT:
		if sw == machine.CC_LT {
			cpu.SetPc(address)
		}
	case OP_JSUB:
		regs.Set(machine.REG_L, cpu.Pc())
		cpu.SetPc(address)
	case OP_RD:
		var index, value byte
		index, err = cpu.byteOperand(flags, address)
		if err != nil {
			return
		}
		value, err = cpu.Devices.Get(index).Read()
		if err != nil {
			return
		}
		regs.Set(machine.REG_A, a&^0xff|int32(value))
	case OP_WD:
		var index byte
		index, err = cpu.byteOperand(flags, address)
		if err != nil {
			return
		}
		err = cpu.Devices.Get(index).Write(byte(a))
	case OP_TD:
		var index byte
		index, err = cpu.byteOperand(flags, address)
		if err != nil {
			return
		}
		if cpu.Devices.Get(index).Test() {
			regs.Set(machine.REG_SW, machine.CC_LT)
		} else {
			regs.Set(machine.REG_SW, machine.CC_EQ)
		}
	default:
		err = ErrInternal
	}

	return
}
