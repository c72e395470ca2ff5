package main

import (
	"flag"
	"io"
	"strconv"

	"github.com/BurntSushi/toml"

	"github.com/ezrec/sicxe/emulator"
	"github.com/ezrec/sicxe/machine"
)

// Config is the run configuration, from an optional TOML file and flags.
type Config struct {
	Speed       int    `toml:"speed"`        // Clock rate, in ticks per second.
	Verbose     bool   `toml:"verbose"`      // Log every instruction.
	DeviceDir   string `toml:"device_dir"`   // Directory of the file devices.
	Breakpoint  string `toml:"breakpoint"`   // Starlark breakpoint condition.
	RawTerminal bool   `toml:"raw_terminal"` // Put the terminal in raw mode for device 0.
	LoadOffset  int32  `toml:"load_offset"`  // Relocation applied to the program.
}

// DefaultConfig returns the configuration used without a file or flags.
func DefaultConfig() Config {
	return Config{
		Speed:     emulator.DEFAULT_SPEED,
		DeviceDir: ".",
	}
}

// parseArgs parses the command line. Flags given explicitly override the
// values of the -config file.
func parseArgs(args []string, output io.Writer) (cfg Config, program string, err error) {
	set := flag.NewFlagSet("sicxe", flag.ContinueOnError)
	set.SetOutput(output)

	var configFile string
	var flags Config

	set.StringVar(&configFile, "config", "", "TOML configuration file")
	set.IntVar(&flags.Speed, "speed", emulator.DEFAULT_SPEED, "Clock rate, in instructions per second")
	set.StringVar(&flags.DeviceDir, "dir", ".", "Directory of file devices (03.dev .. FF.dev)")
	set.StringVar(&flags.Breakpoint, "b", "", "Breakpoint condition, e.g. 'PC == 0x1030'")
	set.BoolVar(&flags.RawTerminal, "raw", false, "Raw terminal input")
	set.BoolVar(&flags.Verbose, "v", false, "Verbose mode")
	set.Func("offset", "Relocate the program by this many bytes, e.g. 0x1000", func(value string) (err error) {
		offset, err := strconv.ParseInt(value, 0, 32)
		if err != nil {
			return
		}
		if offset < 0 || offset > machine.MAX_ADDRESS {
			return ErrOffset
		}
		flags.LoadOffset = int32(offset)
		return
	})

	err = set.Parse(args)
	if err != nil {
		return
	}

	if set.NArg() != 1 {
		err = ErrUsage
		return
	}
	program = set.Arg(0)

	cfg = DefaultConfig()
	if len(configFile) != 0 {
		_, err = toml.DecodeFile(configFile, &cfg)
		if err != nil {
			return
		}
	}

	set.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "speed":
			cfg.Speed = flags.Speed
		case "dir":
			cfg.DeviceDir = flags.DeviceDir
		case "b":
			cfg.Breakpoint = flags.Breakpoint
		case "raw":
			cfg.RawTerminal = flags.RawTerminal
		case "v":
			cfg.Verbose = flags.Verbose
		case "offset":
			cfg.LoadOffset = flags.LoadOffset
		}
	})

	return
}
