package vm_test

import (
	"errors"
	"testing"

	"github.com/mna/vm16/internal/vm"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []vm.Instr{
		vm.Noop{},
		vm.Mov{Dst: vm.B, Imm: 511},
		vm.Shift{Dst: vm.C, ShAmt: 5, Imm: 3, Left: true},
		vm.Shift{Dst: vm.C, ShAmt: 5, Imm: 3, Left: false},
		vm.Arith{Dst: vm.A, Op: vm.ArithAdd, Imm: 42},
		vm.Arith{Dst: vm.A, Op: vm.ArithMul, RegMode: true, Rhs: vm.B},
		vm.MemWord{Dst: vm.A, AReg: vm.BP, Shift: 9, Store: true},
		vm.MemWord{Dst: vm.A, AReg: vm.BP, Shift: 9, Store: false},
		vm.MemByte{Dst: vm.A, AReg: vm.BP, Shift: 9, Store: true},
		vm.Jump{Cond: false, Imm: 1000},
		vm.Jump{Cond: true, RegMode: true, Reg: vm.C},
		vm.Cmp{Reg: vm.A, Op: vm.CmpGte, Imm: 17},
		vm.Cmp{Reg: vm.A, Op: vm.CmpLt, RegMode: true, Rhs: vm.B},
		vm.Cpy{Dst: vm.B, Src: vm.C},
		vm.Call{Imm: 42},
		vm.Call{Ret: true},
	}

	for _, want := range cases {
		word := want.Encode()

		got, err := vm.Decode(word, 0)
		if err != nil {
			t.Fatalf("decode %s: %v", want, err)
		}

		if got.Encode() != word {
			t.Fatalf("round trip %s: re-encoded %s, want %s", want, got.Encode(), word)
		}
	}
}

func TestDecodeReserved(t *testing.T) {
	_, err := vm.Decode(0x000a, 4)
	if !errors.Is(err, vm.ErrDecode) {
		t.Fatalf("decode reserved opcode: err = %v, want ErrDecode", err)
	}

	var de *vm.DecodeError
	if !errors.As(err, &de) {
		t.Fatalf("decode reserved opcode: err is not *DecodeError")
	}

	if de.Addr != 4 {
		t.Fatalf("DecodeError.Addr = %s, want 4", de.Addr)
	}
}
