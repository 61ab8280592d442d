package core

import "errors"

// Load-time errors raised by the program loader. Instruction level load
// errors live in the instr package.
var (
	ErrEmptyCode     = errors.New("empty code")
	ErrMissingHeader = errors.New("missing header")
)

// Runtime errors. They reach the caller wrapped in an *instr.LineError.
var (
	ErrEmptyDataStack     = errors.New("empty data stack")
	ErrUndefinedVariable  = errors.New("undefined variable")
	ErrUndeclaredVariable = errors.New("undeclared variable")
	ErrUnknownLabel       = errors.New("unknown label")
	ErrInvalidReturn      = errors.New("invalid return")
	ErrFrame              = errors.New("frame error")
	ErrInvalidOperandType = errors.New("invalid operand type")
	ErrStringIndex        = errors.New("string index out of range")
	ErrUnknownDataType    = errors.New("unknown data type")
	ErrZeroDivision       = errors.New("division by zero")
	ErrStepLimit          = errors.New("step limit exceeded")
)
