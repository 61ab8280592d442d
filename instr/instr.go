package instr

import (
	"fmt"
	"strings"
)

// Inst is one parsed line of target code.
type Inst struct {
	OpCode   OpCode
	Operands []Operand

	// Line is the 1-based source line and Text the line without comment.
	Line int
	Text string
}

// Parse reads an instruction from a line stripped of comments. Failures are
// returned as *LineError.
func Parse(line string, lineNumber int) (Inst, error) {
	text := strings.TrimSpace(line)
	tokens := strings.Fields(text)
	if len(tokens) == 0 {
		return Inst{}, &LineError{Line: lineNumber, Text: text, Err: ErrUnknownInstruction}
	}

	op, ok := LookupOpCode(tokens[0])
	if !ok {
		return Inst{}, &LineError{
			Line: lineNumber,
			Text: text,
			Err:  fmt.Errorf("%w %q", ErrUnknownInstruction, tokens[0]),
		}
	}

	if len(tokens)-1 != op.Arity() {
		return Inst{}, &LineError{
			Line: lineNumber,
			Text: text,
			Err: fmt.Errorf("%w: %s takes %d, got %d",
				ErrInvalidOperandCount, op, op.Arity(), len(tokens)-1),
		}
	}

	inst := Inst{
		OpCode:   op,
		Operands: make([]Operand, 0, op.Arity()),
		Line:     lineNumber,
		Text:     text,
	}

	for _, token := range tokens[1:] {
		operand, err := ParseOperand(token)
		if err != nil {
			return Inst{}, &LineError{Line: lineNumber, Text: text, Err: err}
		}

		inst.Operands = append(inst.Operands, operand)
	}

	return inst, nil
}

// Operand returns the i-th operand or the zero operand when absent.
func (i Inst) Operand(n int) Operand {
	if n < len(i.Operands) {
		return i.Operands[n]
	}

	return Operand{}
}

func (i Inst) String() string {
	parts := make([]string, 0, len(i.Operands)+1)
	parts = append(parts, i.OpCode.String())
	for _, o := range i.Operands {
		parts = append(parts, o.String())
	}

	return strings.Join(parts, " ")
}
