package vm

// loader.go loads an assembled program into memory: a flat sequence of
// 16-bit words, written starting at address 0 and marked read-only so a
// running program cannot overwrite its own code.

import "fmt"

// ObjectCode is an assembled program: a sequence of 16-bit words meant to
// be loaded starting at address 0.
type ObjectCode struct {
	Words []Word
}

// Load writes code into mem starting at address 0 and marks the code
// region read-only. mem must support MarkReadOnly, i.e. it must be a
// *LinearMemory or a *Memory composed from one.
func Load(mem Addressable, code ObjectCode) error {
	for i, w := range code.Words {
		if !mem.Write2(Word(2*i), w) {
			return fmt.Errorf("vm: load: word %d at %s: %w", i, Word(2*i), ErrReadOnly)
		}
	}

	switch m := mem.(type) {
	case *LinearMemory:
		return m.MarkReadOnly(0, Word(2*len(code.Words)))
	case *Memory:
		return m.Linear.MarkReadOnly(0, Word(2*len(code.Words)))
	default:
		return nil
	}
}
