package asm

// gen.go drives the assembler's second pass: given the symbol table and
// parsed lines from a Parser, it encodes every instruction line and
// serializes the result to the flat binary object format.

import (
	"encoding/binary"
	"io"

	"github.com/mna/vm16/internal/vm"
)

// Generator performs code generation for a parsed program.
type Generator struct {
	symbols SymbolTable
	lines   []parsedLine
}

// NewGenerator creates a generator from a parser's accumulated state.
func NewGenerator(symbols SymbolTable, lines []parsedLine) *Generator {
	return &Generator{symbols: symbols, lines: lines}
}

// Encode resolves every instruction line to a word, returning the
// resulting object code or a joined set of syntax errors.
func (g *Generator) Encode() (vm.ObjectCode, error) {
	return ObjectCode(g.lines, g.symbols)
}

// WriteTo writes code as a flat sequence of little-endian 16-bit words.
func WriteTo(out io.Writer, code vm.ObjectCode) (int64, error) {
	var n int64

	buf := make([]byte, 2)

	for _, w := range code.Words {
		binary.LittleEndian.PutUint16(buf, uint16(w))

		wrote, err := out.Write(buf)
		n += int64(wrote)

		if err != nil {
			return n, err
		}
	}

	return n, nil
}
