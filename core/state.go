package core

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/tacvm/instr"
)

// State is the mutable runtime of one run or debug session.
type State struct {
	GlobalFrame *VarFrame
	TempFrame   *VarFrame // nil when no temporary frame is pending
	FrameStack  []*VarFrame

	DataStack []instr.Value
	CallStack []int
	Labels    map[string]int

	ProgramCounter       int
	ExecutedInstructions int
	ProgramLine          int

	InstructionPrice int
	OperandPrice     int

	Stdout io.Writer
	Stderr io.Writer
	stdin  *bufio.Reader

	jumped bool
}

// NewState creates a state with empty frames. Nil sinks default to
// in-memory buffers.
func NewState(labels map[string]int, stdout, stderr io.Writer, stdin io.Reader) *State {
	if stdout == nil {
		stdout = &bytes.Buffer{}
	}

	if stderr == nil {
		stderr = &bytes.Buffer{}
	}

	if stdin == nil {
		stdin = strings.NewReader("")
	}

	if labels == nil {
		labels = make(map[string]int)
	}

	return &State{
		GlobalFrame: NewVarFrame(),
		Labels:      labels,
		ProgramLine: -1,
		Stdout:      stdout,
		Stderr:      stderr,
		stdin:       bufio.NewReader(stdin),
	}
}

// Price is the total cost of the instructions executed so far.
func (s *State) Price() int {
	return s.InstructionPrice + s.OperandPrice
}

// LocalFrame is the top of the frame stack, nil when the stack is empty.
func (s *State) LocalFrame() *VarFrame {
	if len(s.FrameStack) == 0 {
		return nil
	}

	return s.FrameStack[len(s.FrameStack)-1]
}

// Frame resolves a frame tag.
func (s *State) Frame(f instr.Frame) (*VarFrame, error) {
	var frame *VarFrame

	switch f {
	case instr.FrameGlobal:
		frame = s.GlobalFrame
	case instr.FrameLocal:
		frame = s.LocalFrame()
	case instr.FrameTemporary:
		frame = s.TempFrame
	}

	if frame == nil {
		return nil, fmt.Errorf("%w: %s does not exist", ErrFrame, f)
	}

	return frame, nil
}

func (s *State) variable(op instr.Operand) (*Variable, error) {
	if op.Kind != instr.KindVariable {
		return nil, fmt.Errorf("%w: expected variable, got %s %s",
			ErrInvalidOperandType, op.Kind, op)
	}

	frame, err := s.Frame(op.Frame)
	if err != nil {
		return nil, err
	}

	v, ok := frame.Lookup(op.Name)
	if !ok {
		return nil, fmt.Errorf("%w %s", ErrUndeclaredVariable, op)
	}

	return v, nil
}

// Declare creates the variable in its frame.
func (s *State) Declare(op instr.Operand) error {
	if op.Kind != instr.KindVariable {
		return fmt.Errorf("%w: expected variable, got %s %s",
			ErrInvalidOperandType, op.Kind, op)
	}

	frame, err := s.Frame(op.Frame)
	if err != nil {
		return err
	}

	frame.Declare(op.Name)
	s.OperandPrice += instr.AccessVariable.Price()

	return nil
}

// Get resolves a constant or a defined variable.
func (s *State) Get(op instr.Operand) (instr.Value, error) {
	switch op.Kind {
	case instr.KindConstant:
		s.OperandPrice += instr.AccessConstant.Price()
		return op.Value, nil
	case instr.KindVariable:
		v, err := s.variable(op)
		if err != nil {
			return instr.Value{}, err
		}

		if !v.Defined {
			return instr.Value{}, fmt.Errorf("%w %s", ErrUndefinedVariable, op)
		}

		s.OperandPrice += instr.AccessVariable.Price()

		return v.Value, nil
	}

	return instr.Value{}, fmt.Errorf("%w: expected symbol, got %s %s",
		ErrInvalidOperandType, op.Kind, op)
}

// Lookup resolves a declared variable without requiring a value.
func (s *State) Lookup(op instr.Operand) (*Variable, error) {
	v, err := s.variable(op)
	if err != nil {
		return nil, err
	}

	s.OperandPrice += instr.AccessVariable.Price()

	return v, nil
}

// Set assigns a value to a declared variable.
func (s *State) Set(op instr.Operand, value instr.Value) error {
	v, err := s.variable(op)
	if err != nil {
		return err
	}

	v.Value = value
	v.Defined = true
	s.OperandPrice += instr.AccessVariable.Price()

	return nil
}

// Push puts a value on the data stack.
func (s *State) Push(v instr.Value) {
	s.DataStack = append(s.DataStack, v)
	s.OperandPrice += instr.AccessStack.Price()
}

// Pop removes the top of the data stack.
func (s *State) Pop() (instr.Value, error) {
	if len(s.DataStack) == 0 {
		return instr.Value{}, ErrEmptyDataStack
	}

	v := s.DataStack[len(s.DataStack)-1]
	s.DataStack = s.DataStack[:len(s.DataStack)-1]
	s.OperandPrice += instr.AccessStack.Price()

	return v, nil
}

// ClearStack empties the data stack.
func (s *State) ClearStack() {
	s.DataStack = s.DataStack[:0]
}

// CreateFrame replaces the temporary frame with an empty one.
func (s *State) CreateFrame() {
	s.TempFrame = NewVarFrame()
}

// PushFrame moves the temporary frame onto the frame stack.
func (s *State) PushFrame() error {
	if s.TempFrame == nil {
		return fmt.Errorf("%w: no temporary frame to push", ErrFrame)
	}

	s.FrameStack = append(s.FrameStack, s.TempFrame)
	s.TempFrame = nil

	return nil
}

// PopFrame moves the top of the frame stack back to the temporary frame.
func (s *State) PopFrame() error {
	if len(s.FrameStack) == 0 {
		return fmt.Errorf("%w: frame stack is empty", ErrFrame)
	}

	s.TempFrame = s.FrameStack[len(s.FrameStack)-1]
	s.FrameStack = s.FrameStack[:len(s.FrameStack)-1]

	return nil
}

// Jump moves the program counter to a label.
func (s *State) Jump(label string) error {
	index, ok := s.Labels[label]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownLabel, label)
	}

	s.setPC(index)

	return nil
}

// Call saves the program counter and jumps to a label.
func (s *State) Call(label string) error {
	index, ok := s.Labels[label]
	if !ok {
		return fmt.Errorf("%w %q", ErrUnknownLabel, label)
	}

	s.CallStack = append(s.CallStack, s.ProgramCounter)
	s.setPC(index)

	return nil
}

// Return resumes after the most recent call.
func (s *State) Return() error {
	if len(s.CallStack) == 0 {
		return ErrInvalidReturn
	}

	from := s.CallStack[len(s.CallStack)-1]
	s.CallStack = s.CallStack[:len(s.CallStack)-1]
	s.setPC(from + 1)

	return nil
}

func (s *State) setPC(pc int) {
	s.ProgramCounter = pc
	s.jumped = true
}

// Write prints a value to the standard output sink.
func (s *State) Write(v instr.Value) error {
	_, err := io.WriteString(s.Stdout, v.String())
	return err
}

// ReadLine reads one line from the input sink without the line break. At
// end of input it returns the empty string and false.
func (s *State) ReadLine() (string, bool) {
	line, err := s.stdin.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}

	return strings.TrimRight(line, "\r\n"), true
}

func (s *State) String() string {
	return fmt.Sprintf(
		"State(TF=(%s), LF=(%s)(%d), GF=(%s), STACK=[%s], PC=%d, EXECUTED=%d)",
		formatFrame(s.TempFrame),
		formatFrame(s.LocalFrame()),
		len(s.FrameStack),
		formatFrame(s.GlobalFrame),
		formatStack(s.DataStack),
		s.ProgramCounter,
		s.ExecutedInstructions,
	)
}

func formatFrame(f *VarFrame) string {
	if f == nil || f.Len() == 0 {
		return "-"
	}

	parts := make([]string, 0, f.Len())
	for _, v := range f.Variables() {
		parts = append(parts, v.Name+": "+v.Value.Literal())
	}

	return strings.Join(parts, ", ")
}

func formatStack(stack []instr.Value) string {
	parts := make([]string, 0, len(stack))
	for i := len(stack) - 1; i >= 0; i-- {
		parts = append(parts, stack[i].Literal())
	}

	return strings.Join(parts, ", ")
}
