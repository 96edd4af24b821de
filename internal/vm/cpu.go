package vm

// cpu.go implements the fetch-decode-execute cycle: CPU owns the register
// file and a memory, and Step drives it forward one instruction at a time.

import (
	"context"
	"fmt"

	"github.com/mna/vm16/internal/log"
)

// CPU is the register file and execution engine, bound to an Addressable
// memory (linear only, or linear composed with a device bus).
type CPU struct {
	Reg RegisterFile
	Mem Addressable

	log *log.Logger
}

// New creates a CPU with all registers zeroed, bound to mem.
func New(mem Addressable) *CPU {
	return &CPU{Mem: mem, log: log.DefaultLogger()}
}

// Halted reports whether the HALT flag is set.
func (cpu *CPU) Halted() bool {
	return cpu.Reg[FLAGS].Has(FlagHalt)
}

// fault sets HALT and MEMFAULT, the response to any rejected memory access.
func (cpu *CPU) fault() {
	cpu.Reg[FLAGS] = cpu.Reg[FLAGS].Set(FlagHalt).Set(FlagMemFault)
}

func (cpu *CPU) readByte(addr Word) Byte {
	v, ok := cpu.Mem.Read(addr)
	if !ok {
		cpu.fault()
		return 0
	}

	return v
}

func (cpu *CPU) writeByte(addr Word, value Byte) {
	if !cpu.Mem.Write(addr, value) {
		cpu.fault()
	}
}

func (cpu *CPU) readWord(addr Word) Word {
	v, ok := cpu.Mem.Read2(addr)
	if !ok {
		cpu.fault()
		return 0
	}

	return v
}

func (cpu *CPU) writeWord(addr Word, value Word) {
	if !cpu.Mem.Write2(addr, value) {
		cpu.fault()
	}
}

// Step executes a single instruction: it fetches the word at PC, decodes
// it, advances PC by 2, then executes the instruction. Jump, branch and
// call/return variants overwrite PC again during Execute; every other
// instruction leaves the advanced value alone. Step returns false once the
// CPU has halted, either from a prior HALT or because this instruction set
// the flag (an unknown opcode or an out-of-bounds fetch is fatal and also
// halts the CPU).
func (cpu *CPU) Step() (bool, error) {
	if cpu.Halted() {
		return false, nil
	}

	pc := cpu.Reg[PC]

	word, ok := cpu.Mem.Read2(pc)
	if !ok {
		cpu.fault()
		return false, fmt.Errorf("vm: fetch at %s: %w", pc, ErrDecode)
	}

	cpu.log.Debug("fetched", "PC", pc, "IR", word)

	instr, err := Decode(word, pc)
	if err != nil {
		cpu.fault()
		return false, err
	}

	cpu.log.Debug("decoded", "instr", instr)

	cpu.Reg[PC] = pc + 2
	instr.Execute(cpu)

	cpu.log.Debug("executed", "instr", instr, "reg", cpu.Reg)

	return !cpu.Halted(), nil
}

// Run steps the CPU until it halts, ctx is cancelled, or Step returns an
// error.
func (cpu *CPU) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		more, err := cpu.Step()
		if err != nil {
			return err
		}

		if !more {
			return nil
		}
	}
}
