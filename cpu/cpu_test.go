package cpu

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/sicxe/device"
	"github.com/ezrec/sicxe/machine"
)

// testCpu creates a CPU with program loaded at address 0, operator input
// from input, and operator output captured.
func testCpu(t *testing.T, program []byte, input string) (cpu *Cpu, out *bytes.Buffer) {
	devices := device.NewTable(t.TempDir())
	t.Cleanup(func() { devices.Close() })

	out = &bytes.Buffer{}
	devices.Set(device.DEVICE_INPUT, &device.Input{Reader: strings.NewReader(input)})
	devices.Set(device.DEVICE_OUTPUT, &device.Output{Writer: out})
	devices.Set(device.DEVICE_ERROR, &device.Error{Writer: io.Discard})

	cpu = NewCpu(machine.NewMachine(devices))
	cpu.Memory.Load(0, program)

	return
}

var errLimit = errors.New("step limit")

// run steps the CPU until it halts.
func run(cpu *Cpu, limit int) (err error) {
	for range limit {
		var done bool
		done, err = cpu.Step()
		if err != nil || done {
			return
		}
	}
	return errLimit
}

func TestStep_Load(t *testing.T) {
	assert := assert.New(t)

	// SIC format LDA 0x0320
	cpu, _ := testCpu(t, []byte{0x00, 0x03, 0x20, 0x00}, "")
	cpu.Memory.SetWord(0x320, [3]byte{0x12, 0x34, 0x56})

	done, err := cpu.Step()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(int32(0x123456), cpu.Registers.Get(machine.REG_A))
	assert.Equal(int32(3), cpu.Pc())
	assert.Equal(1, cpu.Ticks)

	// Format 3 LDA, PC relative
	cpu, _ = testCpu(t, []byte{0x03, 0x20, 0x03}, "")
	cpu.Memory.SetWord(6, [3]byte{0xff, 0xff, 0xfe})

	done, err = cpu.Step()
	assert.NoError(err)
	assert.False(done)
	assert.Equal(int32(-2), cpu.Registers.Get(machine.REG_A))
	assert.Equal(int32(3), cpu.Pc())

	// Format 4 LDA, extended
	cpu, _ = testCpu(t, []byte{0x03, 0x10, 0x20, 0x00}, "")
	cpu.Memory.SetWord(0x2000, [3]byte{0x00, 0x00, 0x2a})

	_, err = cpu.Step()
	assert.NoError(err)
	assert.Equal(int32(42), cpu.Registers.Get(machine.REG_A))
	assert.Equal(int32(4), cpu.Pc())
}

func TestProgram(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []byte
		input   string
		check   func(cpu *Cpu, out string)
	}){
		{"add", []byte{
			0x01, 0x00, 0x05, // LDA #5
			0x19, 0x00, 0x07, // ADD #7
			0x1d, 0x00, 0x02, // SUB #2
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(10), cpu.Registers.Get(machine.REG_A))
			assert.Equal(int32(9), cpu.Pc())
		}},
		{"mul-overflow", []byte{
			0x01, 0x08, 0x00, // LDA #0x800
			0x21, 0x08, 0x00, // MUL #0x800
			0x21, 0x00, 0x02, // MUL #2
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(-0x800000), cpu.Registers.Get(machine.REG_A))
		}},
		{"div", []byte{
			0x01, 0x00, 0x64, // LDA #100
			0x25, 0x00, 0x07, // DIV #7
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(14), cpu.Registers.Get(machine.REG_A))
		}},
		{"and-or", []byte{
			0x01, 0x0f, 0x0f, // LDA #0xF0F
			0x41, 0x00, 0xff, // AND #0x0FF
			0x45, 0x01, 0x00, // OR #0x100
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x10f), cpu.Registers.Get(machine.REG_A))
		}},
		{"tix-loop", []byte{
			0xb4, 0x10,       // CLEAR X
			0x2d, 0x00, 0x03, // TIX #3
			0x3b, 0x2f, 0xfa, // JLT 0x002
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(3), cpu.Registers.Get(machine.REG_X))
			assert.Equal(machine.CC_EQ, cpu.Registers.Get(machine.REG_SW))
			assert.Equal(int32(8), cpu.Pc())
			assert.Equal(8, cpu.Ticks)
		}},
		{"subroutine", []byte{
			0x4b, 0x20, 0x03, // JSUB 0x006
			0x3f, 0x2f, 0xfd, // J *
			0x01, 0x00, 0x2a, // LDA #42
			0x4f, 0x00, 0x00, // RSUB
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(42), cpu.Registers.Get(machine.REG_A))
			assert.Equal(int32(3), cpu.Registers.Get(machine.REG_L))
			assert.Equal(int32(3), cpu.Pc())
		}},
		{"compare-jump", []byte{
			0x01, 0x00, 0x05, // LDA #5
			0x29, 0x00, 0x03, // COMP #3
			0x37, 0x20, 0x03, // JGT 0x00C
			0x01, 0x00, 0x63, // LDA #99
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(5), cpu.Registers.Get(machine.REG_A))
			assert.Equal(machine.CC_GT, cpu.Registers.Get(machine.REG_SW))
		}},
		{"compare-fallthrough", []byte{
			0x01, 0x00, 0x03, // LDA #3
			0x29, 0x00, 0x03, // COMP #3
			0x3b, 0x20, 0x03, // JLT 0x00C
			0x01, 0x00, 0x01, // LDA #1
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(1), cpu.Registers.Get(machine.REG_A))
			assert.Equal(machine.CC_EQ, cpu.Registers.Get(machine.REG_SW))
		}},
		{"sic-store-load", []byte{
			0x01, 0x01, 0x23, // LDA #0x123
			0x0c, 0x01, 0x00, // STA 0x100
			0x04, 0x01, 0x00, // LDX 0x100
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x123), cpu.Registers.Get(machine.REG_X))
			assert.Equal([3]byte{0x00, 0x01, 0x23}, cpu.Memory.Word(0x100))
		}},
		{"base-relative", []byte{
			0x69, 0x02, 0x00, // LDB #0x200
			0x29, 0x00, 0x05, // COMP #5
			0xeb, 0x40, 0x10, // STSW 0x10,B
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x200), cpu.Registers.Get(machine.REG_B))
			assert.Equal([3]byte{0xff, 0xff, 0xff}, cpu.Memory.Word(0x210))
		}},
		{"indirect", []byte{
			0x02, 0x20, 0x03, // LDA @0x006
			0x3f, 0x2f, 0xfd, // J *
			0x00, 0x00, 0x09, // WORD 0x000009
			0x12, 0x34, 0x56, // WORD 0x123456
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x123456), cpu.Registers.Get(machine.REG_A))
		}},
		{"byte-io", []byte{
			0x01, 0x00, 0x41,       // LDA #'A'
			0x57, 0x10, 0x01, 0x00, // +STCH 0x00100
			0xb4, 0x00,             // CLEAR A
			0x53, 0x10, 0x01, 0x00, // +LDCH 0x00100
			0xdd, 0x00, 0x01,       // WD #1
			0x3f, 0x2f, 0xfd,       // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x41), cpu.Registers.Get(machine.REG_A))
			assert.Equal(byte(0x41), cpu.Memory.Byte(0x100))
			assert.Equal("A", out)
		}},
		{"read-test", []byte{
			0xd9, 0x00, 0x00, // RD #0
			0xe1, 0x00, 0x01, // TD #1
			0x3f, 0x2f, 0xfd, // J *
		}, "Z", func(cpu *Cpu, out string) {
			assert.Equal(int32('Z'), cpu.Registers.Get(machine.REG_A))
			assert.Equal(machine.CC_LT, cpu.Registers.Get(machine.REG_SW))
		}},
		{"read-device-byte", []byte{
			0xd8, 0x00, 0x06, // RD 0x006
			0x3f, 0x2f, 0xfd, // J *
			0x00,             // BYTE X'00'
		}, "Q", func(cpu *Cpu, out string) {
			assert.Equal(int32('Q'), cpu.Registers.Get(machine.REG_A))
		}},
		{"read-eof", []byte{
			0x01, 0x00, 0x7f, // LDA #0x7F
			0xd9, 0x00, 0x00, // RD #0
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0), cpu.Registers.Get(machine.REG_A))
		}},
		{"shiftl", []byte{
			0x01, 0x08, 0x01, // LDA #0x801
			0xa4, 0x0f,       // SHIFTL A,16
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(0x010008), cpu.Registers.Get(machine.REG_A))
		}},
		{"shiftr", []byte{
			0x01, 0x08, 0x00, // LDA #0x800
			0x21, 0x08, 0x00, // MUL #0x800
			0x21, 0x00, 0x02, // MUL #2
			0xa8, 0x03,       // SHIFTR A,4
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(-0x80000), cpu.Registers.Get(machine.REG_A))
		}},
		{"registers", []byte{
			0x01, 0x00, 0x0a, // LDA #10
			0xac, 0x04,       // RMO A,S
			0x90, 0x04,       // ADDR A,S
			0x94, 0x04,       // SUBR A,S
			0x98, 0x04,       // MULR A,S
			0x9c, 0x04,       // DIVR A,S
			0xa0, 0x04,       // COMPR A,S
			0xb8, 0x40,       // TIXR S
			0x3f, 0x2f, 0xfd, // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(10), cpu.Registers.Get(machine.REG_S))
			assert.Equal(int32(1), cpu.Registers.Get(machine.REG_X))
			assert.Equal(machine.CC_LT, cpu.Registers.Get(machine.REG_SW))
		}},
		{"float", []byte{
			0x01, 0x00, 0x07,       // LDA #7
			0xc0,                   // FLOAT
			0x83, 0x10, 0x01, 0x00, // +STF 0x00100
			0xb4, 0x00,             // CLEAR A
			0x73, 0x10, 0x01, 0x00, // +LDF 0x00100
			0xc4,                   // FIX
			0x3f, 0x2f, 0xfd,       // J *
		}, "", func(cpu *Cpu, out string) {
			assert.Equal(int32(7), cpu.Registers.Get(machine.REG_A))
			assert.Equal(7.0, cpu.Registers.F)
		}},
	}

	for _, entry := range table {
		cpu, out := testCpu(t, entry.program, entry.input)
		err := run(cpu, 100)
		if !assert.NoError(err, entry.name) {
			continue
		}
		entry.check(cpu, out.String())
	}
}

func TestStep_Decode(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []byte
	}){
		{"opcode", []byte{0xff}},
		{"unassigned", []byte{0x8c, 0x00, 0x00}},
		{"format1-low-bits", []byte{0xc3}},
		{"format1-n-bit", []byte{0xc6}},
		{"format2-low-bits", []byte{0x93, 0x04}},
		{"format2-i-bit", []byte{0xb5, 0x10}},
		{"register-7", []byte{0x90, 0x70}},
		{"register-10", []byte{0x90, 0x0a}},
		{"no-relative", []byte{0x03, 0x00, 0x10}},
		{"both-relative", []byte{0x03, 0x60, 0x10}},
		{"extended-relative", []byte{0x03, 0x30, 0x00, 0x10}},
		{"store-immediate", []byte{0x0d, 0x00, 0x10}},
		{"jump-immediate", []byte{0x3d, 0x00, 0x10}},
	}

	for _, entry := range table {
		cpu, _ := testCpu(t, entry.program, "")
		before := cpu.Registers

		_, err := cpu.Step()
		assert.ErrorIs(err, ErrDecode, entry.name)
		assert.NotErrorIs(err, ErrUnimplemented, entry.name)

		var ee *ErrExecute
		if assert.True(errors.As(err, &ee), entry.name) {
			assert.Equal(int32(0), ee.Pc, entry.name)
		}

		after := cpu.Registers
		after.Set(machine.REG_PC, 0)
		assert.Equal(before, after, entry.name)
		assert.Equal(0, cpu.Ticks, entry.name)
	}
}

func TestStep_BadOpcode(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCpu(t, []byte{0xff}, "")
	memory := cpu.Memory.Dump(0, 0x100)

	_, err := cpu.Step()
	assert.ErrorIs(err, ErrDecode)

	var eo ErrOpcode
	assert.True(errors.As(err, &eo))
	assert.Equal(ErrOpcode(0xff), eo)

	assert.Equal(int32(1), cpu.Pc())
	assert.Equal(memory, cpu.Memory.Dump(0, 0x100))
}

func TestStep_Unimplemented(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []byte
		op      Opcode
	}){
		{"addf", []byte{0x5b, 0x20, 0x00}, OP_ADDF},
		{"compf", []byte{0x8b, 0x20, 0x00}, OP_COMPF},
		{"lps", []byte{0xd3, 0x20, 0x00}, OP_LPS},
		{"ssk", []byte{0xef, 0x20, 0x00}, OP_SSK},
		{"norm", []byte{0xc8}, OP_NORM},
		{"sio", []byte{0xf0}, OP_SIO},
		{"hio", []byte{0xf4}, OP_HIO},
		{"tio", []byte{0xf8}, OP_TIO},
		{"svc", []byte{0xb0, 0x00}, OP_SVC},
		{"register-f", []byte{0x90, 0x60}, OP_ADDR},
		{"register-f-second", []byte{0xac, 0x06}, OP_RMO},
	}

	for _, entry := range table {
		cpu, _ := testCpu(t, entry.program, "")

		_, err := cpu.Step()
		assert.ErrorIs(err, ErrUnimplemented, entry.name)
		assert.NotErrorIs(err, ErrDecode, entry.name)

		var eni *ErrNotImplemented
		if assert.True(errors.As(err, &eni), entry.name) {
			assert.Equal(entry.op, eni.Opcode, entry.name)
		}
	}
}

func TestStep_DivideByZero(t *testing.T) {
	assert := assert.New(t)

	for _, program := range [][]byte{
		{0x25, 0x00, 0x00}, // DIV #0
		{0x9c, 0x40},       // DIVR S,A
	} {
		cpu, _ := testCpu(t, program, "")
		cpu.Registers.Set(machine.REG_A, 10)

		_, err := cpu.Step()
		assert.ErrorIs(err, ErrDivideByZero)
		assert.Equal(int32(10), cpu.Registers.Get(machine.REG_A))
	}
}

func TestStep_AddressRange(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCpu(t, []byte{0x03, 0x1f, 0xff, 0xff}, "") // +LDA 0xFFFFF
	_, err := cpu.Step()
	assert.ErrorIs(err, ErrAddressRange)

	cpu, _ = testCpu(t, nil, "")
	cpu.SetPc(machine.MEMORY_SIZE)
	_, err = cpu.Step()
	assert.ErrorIs(err, ErrAddressRange)
	assert.Equal(int32(machine.MEMORY_SIZE), cpu.Pc())
}

func TestStep_ErrExecute(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name       string
		program    []byte
		pc         int32
		classified bool
		op         Opcode
		prefix     string
		absent     string
	}){
		{"fetch-range", nil, machine.MEMORY_SIZE, false, 0, "0x100000: ", "LDA"},
		{"bad-opcode", []byte{0xc3}, 0, false, 0, "0x000000: ", "FLOAT"},
		{"operand-range", []byte{0x03, 0x1f, 0xff, 0xff}, 0, true, OP_LDA, "0x000000 LDA: ", ""},
		{"unimplemented", []byte{0xc8}, 0, true, OP_NORM, "0x000000 NORM: ", ""},
	}

	for _, entry := range table {
		cpu, _ := testCpu(t, entry.program, "")
		cpu.SetPc(entry.pc)

		_, err := cpu.Step()
		var ee *ErrExecute
		if !assert.True(errors.As(err, &ee), entry.name) {
			continue
		}
		assert.Equal(entry.pc, ee.Pc, entry.name)
		assert.Equal(entry.classified, ee.Classified, entry.name)
		if entry.classified {
			assert.Equal(entry.op, ee.Opcode, entry.name)
		}
		assert.True(strings.HasPrefix(err.Error(), entry.prefix), "%v: %v", entry.name, err)
		if entry.absent != "" {
			assert.NotContains(err.Error(), entry.absent, entry.name)
		}
	}
}

func TestStep_Device(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCpu(t, []byte{0xdd, 0x00, 0x01}, "") // WD #1
	cpu.Devices.Set(device.DEVICE_OUTPUT, &device.Output{Writer: failWriter{}})

	_, err := cpu.Step()
	assert.ErrorIs(err, device.ErrIO)

	// File device
	cpu, _ = testCpu(t, []byte{
		0x01, 0x00, 0x58, // LDA #'X'
		0xdd, 0x00, 0x05, // WD #5
		0x3f, 0x2f, 0xfd, // J *
	}, "")
	assert.NoError(run(cpu, 10))
	assert.NoError(cpu.Devices.Close())
}

type failWriter struct{}

func (fw failWriter) Write(data []byte) (int, error) {
	return 0, errors.New("no paper")
}

func TestStep_Supervisor(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCpu(t, []byte{
		0xb0, 0x50,       // SVC 5
		0x3f, 0x2f, 0xfd, // J *
	}, "")

	var calls []byte
	cpu.Supervisor = func(cpu *Cpu, n byte) error {
		calls = append(calls, n)
		cpu.Registers.Set(machine.REG_A, 99)
		return nil
	}

	assert.NoError(run(cpu, 10))
	assert.Equal([]byte{5}, calls)
	assert.Equal(int32(99), cpu.Registers.Get(machine.REG_A))

	errHalt := errors.New("halt")
	cpu.Supervisor = func(cpu *Cpu, n byte) error {
		return errHalt
	}
	cpu.SetPc(0)
	_, err := cpu.Step()
	assert.ErrorIs(err, errHalt)
}

func TestCpu_Reset(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := testCpu(t, []byte{0x01, 0x00, 0x05}, "")
	_, err := cpu.Step()
	assert.NoError(err)

	assert.Contains(cpu.String(), "  A: 000005 (5)")

	cpu.Reset()
	assert.Equal(0, cpu.Ticks)
	assert.Equal(int32(0), cpu.Registers.Get(machine.REG_A))
	assert.Equal(byte(0), cpu.Memory.Byte(0))
}
