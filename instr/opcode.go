package instr

import (
	"fmt"
	"strings"
)

// OpCode identifies an instruction of the target code.
type OpCode uint8

// Frame and data movement.
const (
	OpMove OpCode = iota
	OpCreateFrame
	OpPushFrame
	OpPopFrame
	OpDefVar

	// Control flow.
	OpCall
	OpReturn
	OpLabel
	OpJump
	OpJumpIfEq
	OpJumpIfNeq
	OpJumpIfEqS
	OpJumpIfNeqS

	// Data stack.
	OpPushS
	OpPopS
	OpClearS

	// Arithmetic, relational and logical.
	OpAdd
	OpSub
	OpMul
	OpDiv
	OpAddS
	OpSubS
	OpMulS
	OpDivS
	OpLt
	OpGt
	OpEq
	OpLtS
	OpGtS
	OpEqS
	OpAnd
	OpOr
	OpNot
	OpAndS
	OpOrS
	OpNotS

	// Conversion.
	OpInt2Float
	OpFloat2Int
	OpFloat2R2EInt
	OpFloat2R2OInt
	OpInt2Char
	OpStri2Int
	OpInt2FloatS
	OpFloat2IntS
	OpFloat2R2EIntS
	OpFloat2R2OIntS
	OpInt2CharS
	OpStri2IntS

	// Input and output.
	OpRead
	OpWrite

	// Strings and types.
	OpConcat
	OpStrLen
	OpGetChar
	OpSetChar
	OpType

	// Diagnostics.
	OpBreak
	OpDPrint
	OpGroot

	numOpCodes
)

type opInfo struct {
	name  string
	arity int
	price int
}

// The price column is the instruction cost class of the benchmark.
var opTable = [numOpCodes]opInfo{
	OpMove:        {"MOVE", 2, 1},
	OpCreateFrame: {"CREATEFRAME", 0, 2},
	OpPushFrame:   {"PUSHFRAME", 0, 2},
	OpPopFrame:    {"POPFRAME", 0, 2},
	OpDefVar:      {"DEFVAR", 1, 1},

	OpCall:       {"CALL", 1, 5},
	OpReturn:     {"RETURN", 0, 5},
	OpLabel:      {"LABEL", 1, 0},
	OpJump:       {"JUMP", 1, 2},
	OpJumpIfEq:   {"JUMPIFEQ", 3, 2},
	OpJumpIfNeq:  {"JUMPIFNEQ", 3, 2},
	OpJumpIfEqS:  {"JUMPIFEQS", 1, 1},
	OpJumpIfNeqS: {"JUMPIFNEQS", 1, 1},

	OpPushS:  {"PUSHS", 1, 1},
	OpPopS:   {"POPS", 1, 1},
	OpClearS: {"CLEARS", 0, 2},

	OpAdd:  {"ADD", 3, 4},
	OpSub:  {"SUB", 3, 4},
	OpMul:  {"MUL", 3, 4},
	OpDiv:  {"DIV", 3, 4},
	OpAddS: {"ADDS", 0, 3},
	OpSubS: {"SUBS", 0, 3},
	OpMulS: {"MULS", 0, 3},
	OpDivS: {"DIVS", 0, 3},
	OpLt:   {"LT", 3, 4},
	OpGt:   {"GT", 3, 4},
	OpEq:   {"EQ", 3, 4},
	OpLtS:  {"LTS", 0, 3},
	OpGtS:  {"GTS", 0, 3},
	OpEqS:  {"EQS", 0, 3},
	OpAnd:  {"AND", 3, 4},
	OpOr:   {"OR", 3, 4},
	OpNot:  {"NOT", 2, 4},
	OpAndS: {"ANDS", 0, 3},
	OpOrS:  {"ORS", 0, 3},
	OpNotS: {"NOTS", 0, 3},

	OpInt2Float:     {"INT2FLOAT", 2, 2},
	OpFloat2Int:     {"FLOAT2INT", 2, 2},
	OpFloat2R2EInt:  {"FLOAT2R2EINT", 2, 2},
	OpFloat2R2OInt:  {"FLOAT2R2OINT", 2, 2},
	OpInt2Char:      {"INT2CHAR", 2, 2},
	OpStri2Int:      {"STRI2INT", 3, 2},
	OpInt2FloatS:    {"INT2FLOATS", 0, 1},
	OpFloat2IntS:    {"FLOAT2INTS", 0, 1},
	OpFloat2R2EIntS: {"FLOAT2R2EINTS", 0, 1},
	OpFloat2R2OIntS: {"FLOAT2R2OINTS", 0, 1},
	OpInt2CharS:     {"INT2CHARS", 0, 1},
	OpStri2IntS:     {"STRI2INTS", 0, 1},

	OpRead:  {"READ", 2, 4},
	OpWrite: {"WRITE", 1, 4},

	OpConcat:  {"CONCAT", 3, 4},
	OpStrLen:  {"STRLEN", 2, 4},
	OpGetChar: {"GETCHAR", 3, 4},
	OpSetChar: {"SETCHAR", 3, 4},
	OpType:    {"TYPE", 2, 2},

	OpBreak:  {"BREAK", 0, 0},
	OpDPrint: {"DPRINT", 1, 0},
	OpGroot:  {"GROOT", 0, 0},
}

var opByName = func() map[string]OpCode {
	m := make(map[string]OpCode, numOpCodes)
	for op := OpCode(0); op < numOpCodes; op++ {
		m[opTable[op].name] = op
	}
	return m
}()

// LookupOpCode finds an opcode by its mnemonic, ignoring case.
func LookupOpCode(mnemonic string) (OpCode, bool) {
	op, ok := opByName[strings.ToUpper(mnemonic)]
	return op, ok
}

// OpCodes lists every opcode of the instruction set in table order.
func OpCodes() []OpCode {
	ops := make([]OpCode, 0, numOpCodes)
	for op := OpCode(0); op < numOpCodes; op++ {
		ops = append(ops, op)
	}
	return ops
}

func (op OpCode) String() string {
	if op < numOpCodes {
		return opTable[op].name
	}

	return fmt.Sprintf("OpCode(%d)", op)
}

// Arity is the exact number of operands the opcode takes.
func (op OpCode) Arity() int {
	return opTable[op].arity
}

// Price is the instruction cost class of the opcode.
func (op OpCode) Price() int {
	return opTable[op].price
}

// IsJump reports whether the opcode transfers control to a label.
func (op OpCode) IsJump() bool {
	switch op {
	case OpJump, OpCall, OpJumpIfEq, OpJumpIfNeq, OpJumpIfEqS, OpJumpIfNeqS:
		return true
	}

	return false
}
