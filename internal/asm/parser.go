package asm

// parser.go implements the assembler's first pass: it reads source lines,
// strips comments, records labels in the symbol table, and records each
// instruction line's raw operator and operands for the second pass to
// encode once every label is known.

import (
	"bufio"
	"errors"
	"io"
	"regexp"
	"strings"

	"github.com/mna/vm16/internal/log"
	"github.com/mna/vm16/internal/vm"
)

// errUnknownMnemonic is wrapped into a SyntaxError when a line cannot be
// split into an operator and its operands at all, and when the operator
// is not a known mnemonic (see encodeLine).
var errUnknownMnemonic = errors.New("malformed instruction")

var (
	commentPattern     = regexp.MustCompile(`;.*$`)
	labelPattern       = regexp.MustCompile(`^\s*([A-Za-z_][A-Za-z0-9_]*)\s*:\s*(.*)$`)
	instructionPattern = regexp.MustCompile(`^\s*([A-Za-z]+)\s*(.*?)\s*,?\s*$`)
)

// parsedLine is one source line's worth of unresolved instruction data.
type parsedLine struct {
	pos      int
	text     string
	addr     vm.Word
	mnemonic string
	operands []string
}

// Parser builds a symbol table and a list of parsed lines across one or
// more source readers.
type Parser struct {
	symbols SymbolTable
	lines   []parsedLine

	addr vm.Word
	pos  int

	errs []error
	log  *log.Logger
}

// NewParser creates a parser using logger for diagnostics.
func NewParser(logger *log.Logger) *Parser {
	return &Parser{symbols: make(SymbolTable), log: logger}
}

// Symbols returns the symbol table built so far.
func (p *Parser) Symbols() SymbolTable { return p.symbols }

// Lines returns the parsed lines collected so far.
func (p *Parser) Lines() []parsedLine { return p.lines }

// Size returns the number of instruction words parsed so far.
func (p *Parser) Size() int {
	n := 0

	for _, ln := range p.lines {
		if ln.mnemonic != "" {
			n++
		}
	}

	return n
}

// Err returns the accumulated syntax errors, if any.
func (p *Parser) Err() error {
	return errors.Join(p.errs...)
}

// Parse reads and parses every line from in, closing it when done.
func (p *Parser) Parse(in io.ReadCloser) {
	defer in.Close()

	scanner := bufio.NewScanner(in)

	for scanner.Scan() {
		p.pos++
		p.parseLine(scanner.Text())
	}
}

func (p *Parser) parseLine(raw string) {
	line := commentPattern.ReplaceAllString(raw, "")

	if m := labelPattern.FindStringSubmatch(line); m != nil {
		label, rest := m[1], m[2]
		p.symbols[label] = p.addr
		line = rest
	}

	line = strings.TrimSpace(line)
	if line == "" {
		return
	}

	m := instructionPattern.FindStringSubmatch(line)
	if m == nil {
		p.errs = append(p.errs, &SyntaxError{Line: p.pos, Text: raw, Err: errUnknownMnemonic})
		return
	}

	mnemonic := strings.ToUpper(m[1])

	var operands []string

	if strings.TrimSpace(m[2]) != "" {
		for _, op := range strings.Split(m[2], ",") {
			operands = append(operands, strings.TrimSpace(op))
		}
	}

	p.lines = append(p.lines, parsedLine{
		pos:      p.pos,
		text:     raw,
		addr:     p.addr,
		mnemonic: mnemonic,
		operands: operands,
	})

	p.addr += 2
}
