package cmd

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/mna/vm16/internal/cli"
	"github.com/mna/vm16/internal/console"
	"github.com/mna/vm16/internal/debug"
	"github.com/mna/vm16/internal/device"
	"github.com/mna/vm16/internal/log"
	"github.com/mna/vm16/internal/vm"
)

// Terminal/keyboard base addresses, per the reference device map.
const (
	terminalBase = 0xf000
	keyboardBase = 0xf104
)

// Runner is the command that loads a flat binary and executes it.
//
//	vm16 run program.bin [--debug]
func Runner() cli.Command {
	return &runner{}
}

type runner struct {
	debugMode bool
}

func (runner) Description() string {
	return "run a program"
}

func (runner) Usage(out io.Writer) error {
	_, err := fmt.Fprintln(out, `run program.bin [--debug]

Loads a flat binary at address 0 and executes it.`)

	return err
}

func (r *runner) FlagSet() *cli.FlagSet {
	fs := flag.NewFlagSet("run", flag.ExitOnError)
	fs.BoolVar(&r.debugMode, "debug", false, "enable a single-step driver")

	return fs
}

func (r *runner) Run(ctx context.Context, args []string, out io.Writer, logger *log.Logger) int {
	if len(args) == 0 {
		logger.Error("run: no program given")
		return 1
	}

	// Flag parsing stops at the program path, so a trailing --debug is
	// still a positional argument here.
	if n := len(args); n > 1 && (args[n-1] == "--debug" || args[n-1] == "-debug") {
		r.debugMode = true
		args = args[:n-1]
	}

	words, err := readObject(args[0])
	if err != nil {
		logger.Error("read failed", "file", args[0], "err", err)
		return 1
	}

	mem := vm.NewMemory(vm.MaxMemory)

	term := device.NewTerminal(console.Writer())
	if err := mem.Bus.RegisterDevice(term, terminalBase, device.TerminalSize); err != nil {
		logger.Error("register terminal", "err", err)
		return 1
	}

	kbd := device.NewKeyboard()
	if err := mem.Bus.RegisterDevice(kbd, keyboardBase, device.KeyboardSize); err != nil {
		logger.Error("register keyboard", "err", err)
		return 1
	}

	restore, err := console.Bind(ctx, kbd)
	if err == nil {
		defer restore()
	} else {
		logger.Debug("no console binding", "err", err)
	}

	if err := vm.Load(mem, vm.ObjectCode{Words: words}); err != nil {
		logger.Error("load failed", "err", err)
		return 1
	}

	cpu := vm.New(mem)

	if r.debugMode {
		driver := debug.NewDriver(cpu, os.Stdin, out)

		if err := driver.Run(); err != nil {
			logger.Error("debug run failed", "err", err)
			return 2
		}

		return 0
	}

	if err := cpu.Run(ctx); err != nil {
		logger.Error("run failed", "err", err)
		return 2
	}

	if cpu.Reg[vm.FLAGS].Has(vm.FlagMemFault) {
		logger.Error("halted on memory fault")
		return 2
	}

	return 0
}

func readObject(fn string) ([]vm.Word, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	raw, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if len(raw)%2 != 0 {
		return nil, fmt.Errorf("run: object file has an odd length: %d", len(raw))
	}

	words := make([]vm.Word, len(raw)/2)
	for i := range words {
		words[i] = vm.Word(binary.LittleEndian.Uint16(raw[2*i:]))
	}

	return words, nil
}
