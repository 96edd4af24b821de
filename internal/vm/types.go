// Package vm implements the core of the virtual machine: the instruction set,
// the register file and fetch-decode-execute loop, and a byte-addressable
// memory composed with memory-mapped devices.
package vm

import "fmt"

// Word is the base data type the machine operates on: a 16-bit value stored
// little-endian in memory.
type Word uint16

func (w Word) String() string {
	return fmt.Sprintf("%#04x", uint16(w))
}

// Byte is a single addressable unit of memory.
type Byte = uint8

// Reg identifies one of the eight general-purpose registers.
type Reg uint8

// General-purpose registers. PC holds the next instruction's byte address;
// SP is manipulated explicitly by programs; M doubles as the CALL/RET return
// slot; FLAGS is the bitfield described by the Flag constants.
const (
	A Reg = iota
	B
	C
	M
	SP
	PC
	BP
	FLAGS

	NumReg = 8
)

var regNames = [NumReg]string{"A", "B", "C", "M", "SP", "PC", "BP", "FLAGS"}

func (r Reg) String() string {
	if int(r) < len(regNames) {
		return regNames[r]
	}

	return fmt.Sprintf("R?(%d)", uint8(r))
}

// ParseReg returns the register named by s, case-sensitive, or false if s
// does not name a register.
func ParseReg(s string) (Reg, bool) {
	for i, name := range regNames {
		if name == s {
			return Reg(i), true
		}
	}

	return 0, false
}

// RegisterFile holds the eight general-purpose registers.
type RegisterFile [NumReg]Word

// Flag identifies a bit in the FLAGS register.
type Flag Word

// Bits of the FLAGS register. Bits not named here are reserved and must be
// preserved verbatim by instructions that do not explicitly target them.
const (
	FlagHalt    Flag = 1 << 0 // HALT: execution stops at next fetch.
	FlagDivMod  Flag = 1 << 1 // DIVMOD: DIV stores remainder as a byte at [SP].
	FlagMemFault Flag = 1 << 2 // MEMFAULT: set when a memory write is rejected.
	FlagCmpTrue Flag = 1 << 3 // CMPTRUE: set by a true comparison; consumed by CJP.
)

// Set returns flags with bit set to 1.
func (f Word) Set(bit Flag) Word { return f | Word(bit) }

// Clear returns flags with bit set to 0.
func (f Word) Clear(bit Flag) Word { return f &^ Word(bit) }

// Has reports whether bit is set.
func (f Word) Has(bit Flag) bool { return f&Word(bit) != 0 }
