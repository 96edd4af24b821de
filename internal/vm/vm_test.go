package vm_test

import (
	"testing"

	"github.com/mna/vm16/internal/vm"
)

func assemble(t *testing.T, instrs ...vm.Instr) []vm.Word {
	t.Helper()

	words := make([]vm.Word, len(instrs))
	for i, in := range instrs {
		words[i] = in.Encode()
	}

	return words
}

func newRunning(t *testing.T, instrs ...vm.Instr) *vm.CPU {
	t.Helper()

	mem := vm.NewLinearMemory(vm.MaxMemory)
	if err := mem.WriteProgram(assemble(t, instrs...)); err != nil {
		t.Fatalf("write program: %v", err)
	}

	cpu := vm.New(mem)

	for {
		more, err := cpu.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}

		if !more {
			break
		}
	}

	return cpu
}

func TestRegisterFill(t *testing.T) {
	cpu := newRunning(t,
		vm.Mov{Dst: vm.A, Imm: 42},
		vm.Mov{Dst: vm.B, Imm: 7},
		vm.Arith{Dst: vm.A, Op: vm.ArithAdd, RegMode: true, Rhs: vm.B},
		haltInstr(),
	)

	if got := cpu.Reg[vm.A]; got != 49 {
		t.Fatalf("A = %d, want 49", got)
	}
}

func TestForLoop(t *testing.T) {
	// C counts down from 5 to 0, accumulating into A.
	// The loop test is at byte 4; the exit CJP jumps to the halt at 16.
	prog := []vm.Instr{
		vm.Mov{Dst: vm.C, Imm: 5},            // 0
		vm.Mov{Dst: vm.A, Imm: 0},            // 2
		vm.Cmp{Reg: vm.C, Op: vm.CmpEq, Imm: 0}, // 4
		vm.Jump{Cond: true, Imm: 16},         // 6 exit to halt at 16
		vm.Arith{Dst: vm.A, Op: vm.ArithAdd, RegMode: true, Rhs: vm.C}, // 8
		vm.Arith{Dst: vm.C, Op: vm.ArithSub, Imm: 1},                   // 10
		vm.Jump{Cond: false, Imm: 4},                                   // 12
		vm.Noop{},                                                      // 14 (padding, unreached)
		haltInstr(),                                                    // 16
	}

	cpu := newRunning(t, prog...)

	if got := cpu.Reg[vm.A]; got != 15 {
		t.Fatalf("A = %d, want 15 (5+4+3+2+1)", got)
	}
}

func TestReadOnlyFault(t *testing.T) {
	prog := []vm.Instr{
		vm.Mov{Dst: vm.A, Imm: 0},
		vm.MemWord{Store: true, Dst: vm.A, AReg: vm.A, Shift: 0}, // STR A, [A #0] at addr 0: read-only
	}

	cpu := newRunning(t, prog...)

	if !cpu.Reg[vm.FLAGS].Has(vm.FlagHalt) {
		t.Fatalf("expected HALT set")
	}

	if !cpu.Reg[vm.FLAGS].Has(vm.FlagMemFault) {
		t.Fatalf("expected MEMFAULT set")
	}
}

func TestFactorial(t *testing.T) {
	// C = 5!, using B as loop counter, C as accumulator.
	prog := []vm.Instr{
		vm.Mov{Dst: vm.B, Imm: 5},  // 0
		vm.Mov{Dst: vm.C, Imm: 1},  // 2
		vm.Cmp{Reg: vm.B, Op: vm.CmpEq, Imm: 0}, // 4
		vm.Jump{Cond: true, Imm: 14},             // 6
		vm.Arith{Dst: vm.C, Op: vm.ArithMul, RegMode: true, Rhs: vm.B}, // 8
		vm.Arith{Dst: vm.B, Op: vm.ArithSub, Imm: 1},                   // 10
		vm.Jump{Cond: false, Imm: 4},                                    // 12
		haltInstr(),                                                    // 14
	}

	cpu := newRunning(t, prog...)

	if got := cpu.Reg[vm.C]; got != 120 {
		t.Fatalf("C = %d, want 120", got)
	}
}

func TestFibonacci(t *testing.T) {
	// Nine-iteration doubling register swap: the ISA has no direct
	// register-to-register move, so each swap goes through the stack.
	const stackBase = vm.Word(300)

	prog := []vm.Instr{
		vm.Mov{Dst: vm.A, Imm: 0},                                      // 0
		vm.Mov{Dst: vm.B, Imm: 1},                                      // 2
		vm.Mov{Dst: vm.M, Imm: 0},                                      // 4
		vm.Mov{Dst: vm.SP, Imm: stackBase},                             // 6
		vm.Cmp{Reg: vm.M, Op: vm.CmpEq, Imm: 9},                        // 8
		vm.Jump{Cond: true, Imm: 26},                                   // 10: exit when M == 9
		vm.Arith{Dst: vm.A, Op: vm.ArithAdd, RegMode: true, Rhs: vm.B}, // 12: A = oldA+oldB (newB)
		vm.MemWord{Store: true, Dst: vm.A, AReg: vm.SP, Shift: 0},      // 14: stack[0] = newB
		vm.MemWord{Store: true, Dst: vm.B, AReg: vm.SP, Shift: 2},      // 16: stack[2] = oldB
		vm.MemWord{Store: false, Dst: vm.B, AReg: vm.SP, Shift: 0},     // 18: B = newB
		vm.MemWord{Store: false, Dst: vm.A, AReg: vm.SP, Shift: 2},     // 20: A = oldB (newA)
		vm.Arith{Dst: vm.M, Op: vm.ArithAdd, Imm: 1},                   // 22: M++
		vm.Jump{Cond: false, Imm: 8},                                   // 24: loop back
		haltInstr(),                                                    // 26
	}

	cpu := newRunning(t, prog...)

	if got := cpu.Reg[vm.A]; got != 34 {
		t.Fatalf("A = %d, want 34", got)
	}

	if got := cpu.Reg[vm.B]; got != 55 {
		t.Fatalf("B = %d, want 55", got)
	}

	if got := cpu.Reg[vm.M]; got != 9 {
		t.Fatalf("M = %d, want 9", got)
	}
}

func TestCallRet(t *testing.T) {
	// Each instruction is one word (2 bytes), so the subroutine at
	// "Mov A, #7" lands at byte 6, not 8.
	prog := []vm.Instr{
		vm.Call{Imm: 6},            // 0: call subroutine at 6
		vm.Mov{Dst: vm.B, Imm: 99}, // 2: runs after return
		haltInstr(),                // 4
		vm.Mov{Dst: vm.A, Imm: 7},  // 6: subroutine
		vm.Call{Ret: true},         // 8: RET
	}

	cpu := newRunning(t, prog...)

	if got := cpu.Reg[vm.A]; got != 7 {
		t.Fatalf("A = %d, want 7", got)
	}

	if got := cpu.Reg[vm.B]; got != 99 {
		t.Fatalf("B = %d, want 99 (fell through after return)", got)
	}
}

func TestDivWithRemainder(t *testing.T) {
	mem := vm.NewLinearMemory(vm.MaxMemory)

	prog := []vm.Instr{
		vm.Mov{Dst: vm.SP, Imm: 100},
		vm.Mov{Dst: vm.A, Imm: 17},
		vm.Mov{Dst: vm.B, Imm: 5},
		vm.Arith{Dst: vm.FLAGS, Op: vm.ArithAdd, Imm: uint16Flag(vm.FlagDivMod)},
		vm.Arith{Dst: vm.A, Op: vm.ArithDiv, RegMode: true, Rhs: vm.B},
		haltInstr(),
	}

	if err := mem.WriteProgram(assemble(t, prog...)); err != nil {
		t.Fatalf("write program: %v", err)
	}

	cpu := vm.New(mem)

	for {
		more, err := cpu.Step()
		if err != nil {
			t.Fatalf("step: %v", err)
		}

		if !more {
			break
		}
	}

	if got := cpu.Reg[vm.A]; got != 3 {
		t.Fatalf("A = %d, want 3 (17/5)", got)
	}

	rem, ok := mem.Read(100)
	if !ok || rem != 2 {
		t.Fatalf("remainder byte = %d, ok=%v, want 2", rem, ok)
	}
}

func haltInstr() vm.Instr {
	return vm.Arith{Dst: vm.FLAGS, Op: vm.ArithAdd, Imm: uint16Flag(vm.FlagHalt)}
}

func uint16Flag(f vm.Flag) vm.Word { return vm.Word(f) }
