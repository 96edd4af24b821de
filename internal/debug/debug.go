// Package debug implements a single-step driver for the machine, used by
// the run command's --debug flag.
package debug

import (
	"bufio"
	"fmt"
	"io"

	"github.com/mna/vm16/internal/vm"
)

// Driver runs a CPU one instruction at a time, printing the decoded
// instruction and the register file before each step, and waiting for a
// line of input on in before continuing. An empty line steps once; "c"
// runs to completion; "q" stops early.
type Driver struct {
	CPU *vm.CPU
	In  io.Reader
	Out io.Writer
}

// NewDriver creates a Driver bound to cpu, reading commands from in and
// writing state to out.
func NewDriver(cpu *vm.CPU, in io.Reader, out io.Writer) *Driver {
	return &Driver{CPU: cpu, In: in, Out: out}
}

// Run drives the CPU to completion, honoring interactive step/continue/quit
// commands read from d.In.
func (d *Driver) Run() error {
	scanner := bufio.NewScanner(d.In)
	running := false

	for {
		if d.CPU.Halted() {
			fmt.Fprintln(d.Out, "halted")
			return nil
		}

		pc := d.CPU.Reg[vm.PC]

		word, ok := d.CPU.Mem.Read2(pc)
		if !ok {
			fmt.Fprintf(d.Out, "fault: cannot fetch at %s\n", pc)
			return nil
		}

		instr, err := vm.Decode(word, pc)
		if err != nil {
			fmt.Fprintf(d.Out, "%s\n", err)
			return err
		}

		fmt.Fprintf(d.Out, "%s: %s\n", pc, instr)
		d.printRegisters()

		if !running {
			if !scanner.Scan() {
				return nil
			}

			switch scanner.Text() {
			case "q":
				return nil
			case "c":
				running = true
			}
		}

		if _, err := d.CPU.Step(); err != nil {
			return err
		}
	}
}

func (d *Driver) printRegisters() {
	for _, r := range []vm.Reg{vm.A, vm.B, vm.C, vm.M, vm.SP, vm.PC, vm.BP, vm.FLAGS} {
		fmt.Fprintf(d.Out, "  %-5s %s\n", r, d.CPU.Reg[r])
	}
}
