// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"

	"golang.org/x/term"

	"github.com/ezrec/sicxe/cpu"
	"github.com/ezrec/sicxe/device"
	"github.com/ezrec/sicxe/emulator"
	"github.com/ezrec/sicxe/translate"
)

var f = translate.From

var (
	ErrUsage  = errors.New(f("usage: sicxe [options] program.obj"))
	ErrOffset = errors.New(f("load offset out of range"))
)

// fault returns the kind of an execution failure.
func fault(err error) string {
	switch {
	case errors.Is(err, cpu.ErrDecode):
		return f("decode failure")
	case errors.Is(err, cpu.ErrUnimplemented):
		return f("unimplemented instruction")
	case errors.Is(err, cpu.ErrDivideByZero):
		return f("arithmetic fault")
	case errors.Is(err, device.ErrIO):
		return f("device fault")
	case errors.Is(err, emulator.ErrBreakpoint):
		return f("breakpoint")
	}
	return f("fault")
}

func run() (code int) {
	cfg, program, err := parseArgs(os.Args[1:], os.Stderr)
	if err != nil {
		log.Printf("%v: %v", os.Args[0], err)
		return 2
	}

	inf, err := os.Open(program)
	if err != nil {
		log.Printf("%v: %v", program, err)
		return 1
	}
	defer inf.Close()

	emu, err := emulator.New(
		emulator.Devices(device.NewTable(cfg.DeviceDir)),
		emulator.Speed(cfg.Speed),
		emulator.Verbose(cfg.Verbose),
	)
	if err != nil {
		log.Printf("%v: %v", os.Args[0], err)
		return 1
	}
	defer emu.Close()

	if len(cfg.Breakpoint) != 0 {
		err = emu.SetBreakpoint(cfg.Breakpoint)
		if err != nil {
			log.Printf("%v: %v", os.Args[0], err)
			return 2
		}
	}

	err = emu.LoadAt(inf, cfg.LoadOffset)
	if err != nil {
		log.Printf("%v: %v", program, err)
		return 1
	}

	stdin := int(os.Stdin.Fd())
	if cfg.RawTerminal && term.IsTerminal(stdin) {
		state, err := term.MakeRaw(stdin)
		if err != nil {
			log.Printf("%v: %v", os.Args[0], err)
			return 1
		}
		defer term.Restore(stdin, state)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt)
	defer signal.Stop(interrupt)
	go func() {
		<-interrupt
		emu.Stop()
	}()

	emu.Start()
	err = emu.Wait()

	if cfg.Verbose || err != nil {
		fmt.Fprint(os.Stderr, emu.String())
	}

	if err != nil {
		log.Printf("%v: %v: %v", program, fault(err), err)
		if !errors.Is(err, emulator.ErrBreakpoint) {
			code = 1
		}
	}

	return
}

func main() {
	os.Exit(run())
}
