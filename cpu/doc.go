// Package cpu implements the instruction decoder and execution engine of
// the SIC/XE computer.
//
// Instructions come in three format families: 1 byte system operations
// (Format 1), 2 byte register pair operations (Format 2), and 3 or 4 byte
// memory referencing operations (SIC, Format 3 and Format 4). Memory
// referencing instructions carry the n, i, x, b, p and e addressing flags,
// which Resolve turns into an effective address.
//
// The Cpu executes one instruction per Step against a machine.Machine.
package cpu
