package asm

// inst.go turns one parsed line (a mnemonic plus its raw operand strings)
// into a single encoded instruction word, resolving labels against the
// symbol table built by the parser's first pass.

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/vm16/internal/vm"
)

var (
	errOperandCount = errors.New("wrong number of operands")
	errBadRegister  = errors.New("not a register")
	errBadOperand   = errors.New("invalid operand")
)

func encodeLine(ln parsedLine, symbols SymbolTable) (vm.Word, error) {
	ops := ln.operands

	switch ln.mnemonic {
	case "NOOP":
		return vm.Noop{}.Encode(), requireCount(ops, 0)

	case "MOV":
		if err := requireCount(ops, 2); err != nil {
			return 0, err
		}

		dst, err := parseReg(ops[0])
		if err != nil {
			return 0, err
		}

		imm, err := parseImm(ops[1], symbols)
		if err != nil {
			return 0, err
		}

		return vm.Mov{Dst: dst, Imm: imm}.Encode(), nil

	case "MSL", "MSR":
		if err := requireCount(ops, 2); err != nil {
			return 0, err
		}

		dst, err := parseReg(ops[0])
		if err != nil {
			return 0, err
		}

		imm, shamt, err := parsePair(ops[1])
		if err != nil {
			return 0, err
		}

		return vm.Shift{Dst: dst, Imm: imm, ShAmt: shamt, Left: ln.mnemonic == "MSL"}.Encode(), nil

	case "ADD", "SUB", "MUL", "DIV":
		if err := requireCount(ops, 2); err != nil {
			return 0, err
		}

		dst, err := parseReg(ops[0])
		if err != nil {
			return 0, err
		}

		a := vm.Arith{Dst: dst, Op: arithOps[ln.mnemonic]}

		if rhs, err := parseReg(ops[1]); err == nil {
			a.RegMode = true
			a.Rhs = rhs
		} else if imm, err := parseImm(ops[1], symbols); err == nil {
			a.Imm = imm
		} else {
			return 0, fmt.Errorf("%w: %s", errBadOperand, ops[1])
		}

		return a.Encode(), nil

	case "LDR", "STR":
		dst, areg, shift, err := parseMemOperands(ops)
		if err != nil {
			return 0, err
		}

		return vm.MemWord{Dst: dst, AReg: areg, Shift: shift, Store: ln.mnemonic == "STR"}.Encode(), nil

	case "LDB", "STB":
		dst, areg, shift, err := parseMemOperands(ops)
		if err != nil {
			return 0, err
		}

		return vm.MemByte{Dst: dst, AReg: areg, Shift: shift, Store: ln.mnemonic == "STB"}.Encode(), nil

	case "CPY":
		if err := requireCount(ops, 2); err != nil {
			return 0, err
		}

		src, err := parseReg(ops[0])
		if err != nil {
			return 0, err
		}

		dst, err := parseReg(ops[1])
		if err != nil {
			return 0, err
		}

		return vm.Cpy{Dst: dst, Src: src}.Encode(), nil

	case "JMP", "CJP":
		if err := requireCount(ops, 1); err != nil {
			return 0, err
		}

		j := vm.Jump{Cond: ln.mnemonic == "CJP"}

		if reg, err := parseReg(ops[0]); err == nil {
			j.RegMode = true
			j.Reg = reg
		} else if imm, err := parseTarget(ops[0], ln.addr, symbols); err == nil {
			j.Imm = imm
		} else {
			return 0, err
		}

		return j.Encode(), nil

	case "EQ", "NEQ", "LT", "LTE", "GT", "GTE":
		if err := requireCount(ops, 2); err != nil {
			return 0, err
		}

		reg, err := parseReg(ops[0])
		if err != nil {
			return 0, err
		}

		c := vm.Cmp{Reg: reg, Op: cmpOps[ln.mnemonic]}

		if rhs, err := parseReg(ops[1]); err == nil {
			c.RegMode = true
			c.Rhs = rhs
		} else if imm, err := parseImm(ops[1], symbols); err == nil {
			c.Imm = imm
		} else {
			return 0, fmt.Errorf("%w: %s", errBadOperand, ops[1])
		}

		return c.Encode(), nil

	case "CALL":
		if err := requireCount(ops, 1); err != nil {
			return 0, err
		}

		imm, err := parseTarget(ops[0], ln.addr, symbols)
		if err != nil {
			return 0, err
		}

		return vm.Call{Imm: imm}.Encode(), nil

	case "RET":
		return vm.Call{Ret: true}.Encode(), requireCount(ops, 0)

	default:
		return 0, fmt.Errorf("%w: %s", errUnknownMnemonic, ln.mnemonic)
	}
}

var arithOps = map[string]vm.ArithOp{
	"ADD": vm.ArithAdd, "SUB": vm.ArithSub, "MUL": vm.ArithMul, "DIV": vm.ArithDiv,
}

var cmpOps = map[string]vm.CmpOp{
	"EQ": vm.CmpEq, "NEQ": vm.CmpNeq, "LT": vm.CmpLt,
	"LTE": vm.CmpLte, "GT": vm.CmpGt, "GTE": vm.CmpGte,
}

// parseMemOperands handles the shared LDR/STR/LDB/STB syntax: `reg, reg`
// (implicit zero shift) or `reg, [reg #shift]`.
func parseMemOperands(ops []string) (dst, areg vm.Reg, shift vm.Word, err error) {
	if err = requireCount(ops, 2); err != nil {
		return 0, 0, 0, err
	}

	dst, err = parseReg(ops[0])
	if err != nil {
		return 0, 0, 0, err
	}

	areg, shift, err = parseAddr(ops[1])

	return dst, areg, shift, err
}

// parseAddr parses a memory operand: a bare register (shift 0) or a
// bracketed `[reg #shift]`.
func parseAddr(s string) (vm.Reg, vm.Word, error) {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "[") {
		reg, err := parseReg(s)
		return reg, 0, err
	}

	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	fields := strings.Fields(s)

	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %s", errBadOperand, s)
	}

	reg, err := parseReg(fields[0])
	if err != nil {
		return 0, 0, err
	}

	shift, err := parseImm(fields[1], nil)
	if err != nil {
		return 0, 0, err
	}

	return reg, shift, nil
}

// parsePair parses the `[#imm #shamt]` operand used by MSL/MSR.
func parsePair(s string) (imm, shamt vm.Word, err error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimPrefix(s, "["), "]")
	fields := strings.Fields(s)

	if len(fields) != 2 {
		return 0, 0, fmt.Errorf("%w: %s", errBadOperand, s)
	}

	imm, err = parseImm(fields[0], nil)
	if err != nil {
		return 0, 0, err
	}

	shamt, err = parseImm(fields[1], nil)
	if err != nil {
		return 0, 0, err
	}

	return imm, shamt, nil
}

func parseReg(s string) (vm.Reg, error) {
	r, ok := vm.ParseReg(strings.TrimSpace(s))
	if !ok {
		return 0, fmt.Errorf("%w: %s", errBadRegister, s)
	}

	return r, nil
}

// parseImm parses a `#<decimal>` or `#0x<hex>` literal. symbols is
// consulted only by parseTarget; a bare identifier here is always an
// error, since only jump/call targets may name a label directly.
func parseImm(s string, _ SymbolTable) (vm.Word, error) {
	s = strings.TrimSpace(s)

	if !strings.HasPrefix(s, "#") {
		return 0, fmt.Errorf("%w: %s", errBadOperand, s)
	}

	v, err := strconv.ParseUint(s[1:], 0, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %s", errBadOperand, s, err)
	}

	return vm.Word(v), nil
}

// parseTarget parses a JMP/CJP/CALL immediate operand: a `#imm` literal or
// a bare label name, resolved against symbols. addr is unused by either
// form but kept for symmetry with a future PC-relative mode.
func parseTarget(s string, _ vm.Word, symbols SymbolTable) (vm.Word, error) {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "#") {
		return parseImm(s, nil)
	}

	addr, ok := symbols[s]
	if !ok {
		return 0, &UndefinedLabelError{Label: s}
	}

	return addr, nil
}

func requireCount(ops []string, n int) error {
	if len(ops) != n {
		return fmt.Errorf("%w: got %d, want %d", errOperandCount, len(ops), n)
	}

	return nil
}
