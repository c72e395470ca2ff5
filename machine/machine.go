// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package machine

import (
	"github.com/ezrec/sicxe/device"
)

// Machine is the register bank, memory and device table of one computer.
type Machine struct {
	Registers Registers     // Register bank.
	Memory    *Memory       // Main memory.
	Devices   *device.Table // I/O devices.
}

// NewMachine creates a zeroed machine using the given device table.
// If devices is nil, the default table rooted at the current directory
// is used.
func NewMachine(devices *device.Table) (m *Machine) {
	if devices == nil {
		devices = device.NewTable(".")
	}

	m = &Machine{
		Memory:  NewMemory(),
		Devices: devices,
	}

	return
}

// Reset clears the registers and memory. Devices are left as they are.
func (m *Machine) Reset() {
	m.Registers.Reset()
	m.Memory.Reset()
}

// Pc returns the program counter.
func (m *Machine) Pc() int32 {
	return m.Registers.Get(REG_PC)
}

// SetPc sets the program counter.
func (m *Machine) SetPc(pc int32) {
	m.Registers.Set(REG_PC, pc)
}
