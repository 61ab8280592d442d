package instr

import (
	"errors"
	"fmt"
)

// Load-time errors.
var (
	ErrUnknownInstruction  = errors.New("unknown instruction")
	ErrInvalidOperand      = errors.New("invalid operand")
	ErrInvalidOperandCount = errors.New("invalid operand count")
)

// LineError annotates an error with the source line it was raised on.
type LineError struct {
	Line int
	Text string
	Err  error
}

func (e *LineError) Error() string {
	if e.Text == "" {
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	}

	return fmt.Sprintf("line %d: %v: %s", e.Line, e.Err, e.Text)
}

func (e *LineError) Unwrap() error {
	return e.Err
}
