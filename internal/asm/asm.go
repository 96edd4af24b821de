// Package asm implements a two-pass assembler for the machine's textual
// instruction syntax: the first pass builds a symbol table and a table of
// parsed-but-unresolved source lines, and the second pass resolves labels
// and encodes each line to its final 16-bit word.
package asm

import (
	"errors"
	"fmt"

	"github.com/mna/vm16/internal/vm"
)

// SymbolTable maps a label to the byte address it names.
type SymbolTable map[string]vm.Word

// SyntaxError reports a problem with one line of source.
type SyntaxError struct {
	Line int
	Text string
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("asm: line %d: %s: %s", e.Line, e.Err, e.Text)
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// UndefinedLabelError reports a label referenced but never declared.
type UndefinedLabelError struct {
	Label string
}

func (e *UndefinedLabelError) Error() string {
	return fmt.Sprintf("asm: undefined label: %s", e.Label)
}

// ObjectCode assembles source into a sequence of 16-bit words.
func ObjectCode(src []parsedLine, symbols SymbolTable) (vm.ObjectCode, error) {
	words := make([]vm.Word, 0, len(src))

	var errs []error

	for _, ln := range src {
		if ln.mnemonic == "" {
			continue
		}

		w, err := encodeLine(ln, symbols)
		if err != nil {
			errs = append(errs, &SyntaxError{Line: ln.pos, Text: ln.text, Err: err})
			continue
		}

		words = append(words, w)
	}

	if len(errs) > 0 {
		return vm.ObjectCode{}, errors.Join(errs...)
	}

	return vm.ObjectCode{Words: words}, nil
}
