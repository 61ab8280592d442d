package core

import (
	"context"
	"fmt"
	"io"
	"sync/atomic"

	"github.com/sarchlab/tacvm/instr"
)

// Interpreter runs a loaded program against a set of I/O sinks.
type Interpreter struct {
	program  *Program
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	maxSteps int
}

// Program returns the loaded program.
func (i *Interpreter) Program() *Program {
	return i.program
}

// NewSession creates a fresh state positioned on the first instruction.
func (i *Interpreter) NewSession() *Session {
	s := &Session{
		program:  i.program,
		state:    NewState(i.program.Labels, i.stdout, i.stderr, i.stdin),
		maxSteps: i.maxSteps,
	}
	s.state.ProgramLine = i.program.Line(0)

	return s
}

// Run executes the program to completion and returns the final state.
func (i *Interpreter) Run(ctx context.Context) (*State, error) {
	s := i.NewSession()
	err := s.Run(ctx)
	LogState(s.State())

	return s.State(), err
}

// Session is a single execution of a program that can be advanced one
// instruction at a time. Stop may be called from any goroutine.
type Session struct {
	program  *Program
	state    *State
	emu      instEmulator
	maxSteps int

	stopped atomic.Bool
	err     error
}

// State exposes the live state of the session.
func (s *Session) State() *State {
	return s.state
}

// Program returns the program being executed.
func (s *Session) Program() *Program {
	return s.program
}

// Err is the error that terminated the session, if any.
func (s *Session) Err() error {
	return s.err
}

// Line is the source line of the next instruction, -1 after the end.
func (s *Session) Line() int {
	return s.program.Line(s.state.ProgramCounter)
}

// Stop requests the session to end before its next instruction.
func (s *Session) Stop() {
	s.stopped.Store(true)
}

// Stopped reports whether Stop was called.
func (s *Session) Stopped() bool {
	return s.stopped.Load()
}

// Done reports whether no further instruction will run.
func (s *Session) Done() bool {
	return s.err != nil ||
		s.stopped.Load() ||
		s.state.ProgramCounter < 0 ||
		s.state.ProgramCounter >= s.program.Len()
}

// Step executes the next instruction. It is a no-op once the session is
// done.
func (s *Session) Step() error {
	if s.Done() {
		return s.err
	}

	inst := s.program.Insts[s.state.ProgramCounter]

	if s.maxSteps > 0 && s.state.ExecutedInstructions >= s.maxSteps {
		s.err = &instr.LineError{
			Line: inst.Line,
			Text: inst.Text,
			Err:  fmt.Errorf("%w: %d", ErrStepLimit, s.maxSteps),
		}

		return s.err
	}

	Trace("Inst",
		"PC", s.state.ProgramCounter,
		"Line", inst.Line,
		"Inst", inst.String(),
	)

	if err := s.apply(inst); err != nil {
		s.err = err
		return err
	}

	s.state.ProgramLine = s.program.Line(s.state.ProgramCounter)

	return nil
}

func (s *Session) apply(inst instr.Inst) error {
	state := s.state
	state.jumped = false

	if err := s.emu.RunInst(inst, state); err != nil {
		return &instr.LineError{Line: inst.Line, Text: inst.Text, Err: err}
	}

	state.InstructionPrice += inst.OpCode.Price()
	state.ExecutedInstructions++

	if !state.jumped {
		state.ProgramCounter++
	}

	return nil
}

// Run steps the session until it is done or the context is cancelled.
func (s *Session) Run(ctx context.Context) error {
	for !s.Done() {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := s.Step(); err != nil {
			return err
		}
	}

	return s.err
}
