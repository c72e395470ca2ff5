package emulator

import (
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/sicxe/cpu"
	"github.com/ezrec/sicxe/machine"
)

// breakpoint is a compiled Starlark condition over the machine state.
//
// The condition sees the integer registers A, X, L, B, S, T, PC and SW as
// ints, F as a float, and the functions byte(addr) and word(addr) reading
// memory.
type breakpoint struct {
	expr    string
	program *starlark.Program
	env     starlark.StringDict
	machine *machine.Machine
}

var breakpointNames = map[string]bool{
	"F":    true,
	"byte": true,
	"word": true,
}

func init() {
	for _, r := range machine.IntegerRegisters {
		breakpointNames[r.String()] = true
	}
}

func isBreakpointName(name string) bool {
	return breakpointNames[name]
}

func newBreakpoint(expr string) (bp *breakpoint, err error) {
	src := "hit = bool(" + expr + ")\n"
	_, program, err := starlark.SourceProgramOptions(&syntax.FileOptions{}, "breakpoint", src, isBreakpointName)
	if err != nil {
		err = &ErrExpression{Expr: expr, Err: err}
		return
	}

	bp = &breakpoint{
		expr:    expr,
		program: program,
		env:     starlark.StringDict{},
	}

	bp.env["byte"] = starlark.NewBuiltin("byte", bp.memoryByte)
	bp.env["word"] = starlark.NewBuiltin("word", bp.memoryWord)

	return
}

func (bp *breakpoint) address(fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple, size int) (address int32, err error) {
	var addr int
	err = starlark.UnpackPositionalArgs(fn.Name(), args, kwargs, 1, &addr)
	if err != nil {
		return
	}
	address = int32(addr)
	if !machine.InRange(address, size) {
		err = cpu.ErrAddress(address)
	}
	return
}

func (bp *breakpoint) memoryByte(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	address, err := bp.address(fn, args, kwargs, 1)
	if err != nil {
		return
	}
	value = starlark.MakeInt(int(bp.machine.Memory.Byte(int(address))))
	return
}

func (bp *breakpoint) memoryWord(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (value starlark.Value, err error) {
	address, err := bp.address(fn, args, kwargs, machine.WORD_SIZE)
	if err != nil {
		return
	}
	value = starlark.MakeInt(int(machine.WordValue(bp.machine.Memory.Word(int(address)))))
	return
}

// eval evaluates the condition against the machine state.
func (bp *breakpoint) eval(m *machine.Machine) (hit bool, err error) {
	bp.machine = m
	for _, r := range machine.IntegerRegisters {
		bp.env[r.String()] = starlark.MakeInt(int(m.Registers.Get(r)))
	}
	bp.env["F"] = starlark.Float(m.Registers.F)

	thread := &starlark.Thread{Name: "breakpoint"}
	globals, err := bp.program.Init(thread, bp.env)
	if err != nil {
		err = &ErrExpression{Expr: bp.expr, Err: err}
		return
	}

	hit = globals["hit"] == starlark.True
	return
}
