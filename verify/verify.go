// Package verify performs static checks over loaded programs and combines
// them with a reference run into a verification report.
package verify

import (
	"github.com/sarchlab/tacvm/instr"
)

// IssueType categorizes lint issues
type IssueType string

const (
	IssueStruct IssueType = "STRUCT" // Operand kinds and label table (unknown or duplicate labels)
	IssueFlow   IssueType = "FLOW"   // Control flow (unreachable code, unused labels)
)

// Issue represents a single lint issue
type Issue struct {
	Type    IssueType              // STRUCT or FLOW
	Line    int                    // Source line (-1 if not applicable)
	OpID    int                    // Instruction index or -1
	Message string                 // Human-readable description
	Details map[string]interface{} // Additional structured data
}

// operandClass is the kind of operand an instruction position accepts.
type operandClass byte

const (
	classVar    operandClass = 'v' // variable
	classSymbol operandClass = 's' // constant or variable
	classType   operandClass = 't' // data type name
	classLabel  operandClass = 'l' // label
)

// signatures lists the operand classes of every opcode that takes
// operands.
var signatures = map[instr.OpCode]string{
	instr.OpMove:   "vs",
	instr.OpDefVar: "v",

	instr.OpCall:       "l",
	instr.OpLabel:      "l",
	instr.OpJump:       "l",
	instr.OpJumpIfEq:   "lss",
	instr.OpJumpIfNeq:  "lss",
	instr.OpJumpIfEqS:  "l",
	instr.OpJumpIfNeqS: "l",

	instr.OpPushS: "s",
	instr.OpPopS:  "v",

	instr.OpAdd: "vss",
	instr.OpSub: "vss",
	instr.OpMul: "vss",
	instr.OpDiv: "vss",
	instr.OpLt:  "vss",
	instr.OpGt:  "vss",
	instr.OpEq:  "vss",
	instr.OpAnd: "vss",
	instr.OpOr:  "vss",
	instr.OpNot: "vs",

	instr.OpInt2Float:    "vs",
	instr.OpFloat2Int:    "vs",
	instr.OpFloat2R2EInt: "vs",
	instr.OpFloat2R2OInt: "vs",
	instr.OpInt2Char:     "vs",
	instr.OpStri2Int:     "vss",

	instr.OpRead:  "vt",
	instr.OpWrite: "s",

	instr.OpConcat:  "vss",
	instr.OpStrLen:  "vs",
	instr.OpGetChar: "vss",
	instr.OpSetChar: "vss",
	instr.OpType:    "vs",

	instr.OpDPrint: "s",
}

func (c operandClass) accepts(op instr.Operand) bool {
	switch c {
	case classVar:
		return op.Kind == instr.KindVariable
	case classSymbol:
		return op.Kind == instr.KindConstant || op.Kind == instr.KindVariable
	case classType:
		return op.Kind == instr.KindDataType
	case classLabel:
		_, ok := op.LabelName()
		return ok
	}

	return false
}

func (c operandClass) String() string {
	switch c {
	case classVar:
		return "variable"
	case classSymbol:
		return "symbol"
	case classType:
		return "type"
	case classLabel:
		return "label"
	}

	return "operand"
}
