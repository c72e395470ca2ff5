// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"io"
	"log"
	"sync"
	"time"

	"github.com/ezrec/sicxe/cpu"
	"github.com/ezrec/sicxe/device"
	"github.com/ezrec/sicxe/machine"
	"github.com/ezrec/sicxe/object"
)

const (
	MAX_SPEED     = 1_000_000_000 // Maximum clock rate, in ticks per second.
	DEFAULT_SPEED = 1_000         // Default clock rate, in ticks per second.
)

// Option configures an emulator.
type Option func(*Emulator) error

// Speed sets the clock rate in ticks per second. See SetSpeed.
func Speed(hz int) Option {
	return func(emu *Emulator) error {
		emu.SetSpeed(hz)
		return nil
	}
}

// Verbose enables logging of the clock and of every executed instruction.
func Verbose(verbose bool) Option {
	return func(emu *Emulator) error {
		emu.verbose = verbose
		emu.cpu.Verbose = verbose
		return nil
	}
}

// Devices replaces the device table of the machine.
func Devices(table *device.Table) Option {
	return func(emu *Emulator) error {
		emu.cpu.Devices = table
		return nil
	}
}

// Supervisor sets the SVC handler.
func Supervisor(handler cpu.Supervisor) Option {
	return func(emu *Emulator) error {
		emu.cpu.Supervisor = handler
		return nil
	}
}

// Breakpoint sets a breakpoint condition. See SetBreakpoint.
func Breakpoint(expr string) Option {
	return func(emu *Emulator) error {
		return emu.SetBreakpoint(expr)
	}
}

// run is one activation of the clock.
type run struct {
	quit chan struct{} // Closed to stop the clock.
	done chan struct{} // Closed when the clock has stopped.
	err  error         // Why the clock stopped; valid once done is closed.
}

// Emulator is a SIC/XE processor driven by a clock.
//
// All access to the machine is serialized by a single lock: a clock tick
// executes one whole instruction while holding it, so an observer never
// sees a partially executed instruction.
type Emulator struct {
	verbose bool

	mu         sync.Mutex // Processor lock.
	cpu        *cpu.Cpu
	breakpoint *breakpoint

	clock  sync.Mutex // Clock state lock.
	speed  int
	active *run // Current or most recent clock activation.
}

// New creates a stopped emulator with a zeroed machine.
func New(opts ...Option) (emu *Emulator, err error) {
	emu = &Emulator{
		cpu:   cpu.NewCpu(nil),
		speed: DEFAULT_SPEED,
	}

	for _, opt := range opts {
		err = opt(emu)
		if err != nil {
			emu = nil
			return
		}
	}

	return
}

// Close stops the clock and closes all devices.
func (emu *Emulator) Close() (err error) {
	emu.Stop()

	emu.mu.Lock()
	defer emu.mu.Unlock()

	err = emu.cpu.Devices.Close()

	return
}

// Speed returns the clock rate in ticks per second.
func (emu *Emulator) Speed() int {
	emu.clock.Lock()
	defer emu.clock.Unlock()

	return emu.speed
}

// SetSpeed sets the clock rate, clamped to 1 .. MAX_SPEED.
// A running clock keeps its rate until the next Start.
func (emu *Emulator) SetSpeed(hz int) {
	emu.clock.Lock()
	defer emu.clock.Unlock()

	emu.speed = min(max(hz, 1), MAX_SPEED)
}

// IsRunning returns true while the clock is running.
func (emu *Emulator) IsRunning() bool {
	emu.clock.Lock()
	defer emu.clock.Unlock()

	if emu.active == nil {
		return false
	}

	select {
	case <-emu.active.done:
		return false
	default:
		return true
	}
}

// Start starts the clock, replacing the clock if it is already running.
// The new clock ticks only once the replaced one has stopped.
//
// The clock executes one instruction per tick until Stop is called, the
// program halts, an instruction fails, or a breakpoint condition holds.
func (emu *Emulator) Start() {
	emu.clock.Lock()
	defer emu.clock.Unlock()

	prev := emu.active
	prev.halt()

	interval := time.Duration(MAX_SPEED / emu.speed)
	if emu.verbose {
		log.Printf("emulator: start, %v Hz (%v)", emu.speed, interval)
	}

	r := &run{
		quit: make(chan struct{}),
		done: make(chan struct{}),
	}
	emu.active = r

	go emu.worker(r, prev, interval)
}

// Stop stops the clock, and waits for an instruction in progress to
// complete.
func (emu *Emulator) Stop() {
	emu.clock.Lock()
	r := emu.active
	r.halt()
	emu.clock.Unlock()

	if r == nil {
		return
	}

	<-r.done

	if emu.verbose {
		log.Printf("emulator: stop")
	}
}

// halt asks the clock to stop. The clock lock must be held.
func (r *run) halt() {
	if r == nil {
		return
	}

	select {
	case <-r.quit:
	default:
		close(r.quit)
	}
}

// Wait waits for the clock to stop, and returns why it stopped: nil when
// stopped or halted, *ErrBreak on a breakpoint, or the instruction fault.
func (emu *Emulator) Wait() error {
	emu.clock.Lock()
	r := emu.active
	emu.clock.Unlock()

	if r == nil {
		return nil
	}

	<-r.done

	return r.err
}

func (emu *Emulator) worker(r *run, prev *run, interval time.Duration) {
	defer close(r.done)

	if prev != nil {
		<-prev.done
		select {
		case <-r.quit:
			return
		default:
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-r.quit:
			return
		case <-ticker.C:
			done, err := emu.tick()
			if err != nil {
				if emu.verbose {
					log.Printf("emulator: %v", err)
				}
				r.err = err
				return
			}
			if done {
				if emu.verbose {
					log.Printf("emulator: halted")
				}
				return
			}
		}
	}
}

// tick executes one instruction, and checks the breakpoint.
func (emu *Emulator) tick() (done bool, err error) {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	done, err = emu.cpu.Step()
	if err != nil || done || emu.breakpoint == nil {
		return
	}

	hit, err := emu.breakpoint.eval(emu.cpu.Machine)
	if err != nil {
		return
	}
	if hit {
		err = &ErrBreak{Pc: emu.cpu.Pc(), Expr: emu.breakpoint.expr}
	}

	return
}

// Step executes a single instruction, outside of the clock.
func (emu *Emulator) Step() (done bool, err error) {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	return emu.cpu.Step()
}

// Do calls fn with exclusive access to the machine, between instructions.
// The clock is held off while fn runs, so fn must not call Stop, Wait or
// Close, which wait on the clock. The other clock methods may be called.
func (emu *Emulator) Do(fn func(m *machine.Machine) error) error {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	return fn(emu.cpu.Machine)
}

// Registers returns a copy of the register bank.
func (emu *Emulator) Registers() (regs machine.Registers) {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	regs = emu.cpu.Registers
	return
}

// Ticks returns the number of instructions executed since the last reset.
func (emu *Emulator) Ticks() int {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	return emu.cpu.Ticks
}

// String returns the register state as a string.
func (emu *Emulator) String() string {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	return emu.cpu.String()
}

// Load reads an object program, writes it into memory at the addresses
// of its text records, and sets PC to its entry address.
func (emu *Emulator) Load(input io.Reader) (err error) {
	return emu.LoadAt(input, 0)
}

// LoadAt reads an object program and writes it into memory relocated by
// offset bytes, applying its modification records. PC is set to the
// relocated entry address.
func (emu *Emulator) LoadAt(input io.Reader, offset int32) (err error) {
	prog, err := object.Parse(input)
	if err != nil {
		return
	}

	emu.mu.Lock()
	defer emu.mu.Unlock()

	if emu.verbose {
		log.Printf("emulator: load %d text records at +0x%06X, entry 0x%06X", len(prog.Text), offset, prog.Entry()+offset)
	}

	err = prog.Load(emu.cpu.Machine, offset)

	return
}

// Reset clears the registers, memory and tick counter.
func (emu *Emulator) Reset() {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	emu.cpu.Reset()
}

// SetBreakpoint sets the condition that stops the clock.
// The condition is a Starlark expression, evaluated after every clocked
// instruction, over the registers A, X, L, B, S, T, F, PC and SW and the
// memory functions byte(addr) and word(addr). For example:
//
//	PC == 0x1030 and word(0x2000) > 5
func (emu *Emulator) SetBreakpoint(expr string) (err error) {
	bp, err := newBreakpoint(expr)
	if err != nil {
		return
	}

	emu.mu.Lock()
	defer emu.mu.Unlock()

	emu.breakpoint = bp

	return
}

// ClearBreakpoint removes the breakpoint condition.
func (emu *Emulator) ClearBreakpoint() {
	emu.mu.Lock()
	defer emu.mu.Unlock()

	emu.breakpoint = nil
}
