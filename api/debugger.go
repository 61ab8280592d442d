package api

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/tacvm/core"
)

// ErrNotActive is returned when a step command arrives without a paused
// debug session.
var ErrNotActive = errors.New("no active debug session")

// Status is the life cycle position of a debug session.
type Status int32

// Debug session states.
const (
	StatusIdle Status = iota
	StatusRunning
	StatusPaused
	StatusEnded
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusPaused:
		return "paused"
	case StatusEnded:
		return "ended"
	case StatusStopped:
		return "stopped"
	}

	return "unknown"
}

type runMode int

const (
	modeNone runMode = iota
	modeLine
	modeBreakpoint
	modeEnd
)

// CallStackEntry is one active call as seen by a debugger front end. Label
// is the call target, empty for the innermost entry.
type CallStackEntry struct {
	Line  int
	Label string
}

// Debugger executes programs with source-line breakpoints. Stop may be
// called from any goroutine; all other commands come from one goroutine at
// a time.
type Debugger struct {
	builder core.Builder

	mu          sync.Mutex
	breakpoints map[int]bool
	err         error

	session atomic.Pointer[core.Session]
	status  atomic.Int32
	started bool
}

// NewDebugger creates a debugger whose sessions are built by the builder.
func NewDebugger(builder core.Builder) *Debugger {
	return &Debugger{
		builder:     builder,
		breakpoints: make(map[int]bool),
	}
}

// Status returns the current life cycle state.
func (d *Debugger) Status() Status {
	return Status(d.status.Load())
}

func (d *Debugger) setStatus(s Status) {
	d.status.Store(int32(s))
}

// Err is the error that ended the last session, if any.
func (d *Debugger) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.err
}

func (d *Debugger) setErr(err error) {
	d.mu.Lock()
	d.err = err
	d.mu.Unlock()
}

// AddBreakpoint marks a source line.
func (d *Debugger) AddBreakpoint(line int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.breakpoints[line] = true
}

// RemoveBreakpoint unmarks a source line.
func (d *Debugger) RemoveBreakpoint(line int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	delete(d.breakpoints, line)
}

// HasBreakpoint reports whether a source line is marked.
func (d *Debugger) HasBreakpoint(line int) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.breakpoints[line]
}

// SetBreakpoints replaces the breakpoint set.
func (d *Debugger) SetBreakpoints(lines []int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.breakpoints = make(map[int]bool, len(lines))
	for _, l := range lines {
		d.breakpoints[l] = true
	}
}

// Breakpoints lists the marked lines in ascending order.
func (d *Debugger) Breakpoints() []int {
	d.mu.Lock()
	defer d.mu.Unlock()

	lines := make([]int, 0, len(d.breakpoints))
	for l := range d.breakpoints {
		lines = append(lines, l)
	}

	sort.Ints(lines)

	return lines
}

func (d *Debugger) load(code string) (*core.Session, error) {
	d.setErr(nil)
	d.started = false

	program, err := core.LoadProgram(code)
	if err != nil {
		d.session.Store(nil)
		d.setErr(err)
		d.setStatus(StatusEnded)

		return nil, err
	}

	s := d.builder.Build(program).NewSession()
	d.session.Store(s)

	return s, nil
}

// Debug starts a fresh session and runs it to the first breakpoint. A nil
// breakpoint list keeps the current breakpoints.
func (d *Debugger) Debug(code string, breakpoints []int) error {
	if err := d.prepare(code, breakpoints); err != nil {
		return err
	}

	return d.runUntil(modeBreakpoint)
}

// prepare loads the program and pauses before its first instruction.
func (d *Debugger) prepare(code string, breakpoints []int) error {
	if breakpoints != nil {
		d.SetBreakpoints(breakpoints)
	}

	if _, err := d.load(code); err != nil {
		return err
	}

	d.setStatus(StatusPaused)

	return nil
}

// Run loads the program and executes it to the end, ignoring breakpoints.
func (d *Debugger) Run(code string) (*core.State, error) {
	s, err := d.load(code)
	if err != nil {
		return nil, err
	}

	d.setStatus(StatusRunning)
	err = s.Run(context.Background())
	d.finish(s)

	return s.State(), err
}

// RunToNextBreakpoint executes until the next instruction sits on a
// breakpoint line or the program ends. Right after Debug the first
// instruction is checked before anything runs.
func (d *Debugger) RunToNextBreakpoint() error {
	return d.runUntil(modeBreakpoint)
}

// RunToNextLine executes a single instruction.
func (d *Debugger) RunToNextLine() error {
	return d.runUntil(modeLine)
}

func (d *Debugger) runUntil(mode runMode) error {
	if d.Status() != StatusPaused {
		return ErrNotActive
	}

	for {
		more, err := d.advance(mode)
		if err != nil || !more {
			return err
		}
	}
}

// advance moves the session by one instruction in the given mode and
// reports whether the command should keep running.
func (d *Debugger) advance(mode runMode) (more bool, err error) {
	s := d.session.Load()
	if s == nil {
		return false, ErrNotActive
	}

	d.setStatus(StatusRunning)

	if mode == modeBreakpoint && !d.started {
		d.started = true

		if !s.Done() && d.HasBreakpoint(s.Line()) {
			d.setStatus(StatusPaused)
			return false, nil
		}
	}

	d.started = true

	if err := s.Step(); err != nil {
		d.finish(s)
		return false, err
	}

	if s.Done() {
		d.finish(s)
		return false, nil
	}

	switch mode {
	case modeLine:
		d.setStatus(StatusPaused)
		return false, nil
	case modeBreakpoint:
		if d.HasBreakpoint(s.Line()) {
			d.setStatus(StatusPaused)
			return false, nil
		}
	}

	return true, nil
}

func (d *Debugger) finish(s *core.Session) {
	switch {
	case s.Err() != nil:
		d.setErr(s.Err())
		d.setStatus(StatusEnded)
	case s.Stopped():
		d.setStatus(StatusStopped)
	default:
		d.setStatus(StatusEnded)
	}
}

// Stop ends the session before its next instruction. A paused session
// stops immediately.
func (d *Debugger) Stop() {
	s := d.session.Load()
	if s == nil {
		return
	}

	s.Stop()

	if d.Status() == StatusPaused {
		d.setStatus(StatusStopped)
	}
}

// Session is the current session, nil before the first load.
func (d *Debugger) Session() *core.Session {
	return d.session.Load()
}

// State is the state of the current session, nil when there is none.
func (d *Debugger) State() *core.State {
	s := d.session.Load()
	if s == nil {
		return nil
	}

	return s.State()
}

// Line is the source line of the pending instruction, -1 when nothing is
// pending.
func (d *Debugger) Line() int {
	s := d.session.Load()
	if s == nil || s.Done() {
		return -1
	}

	return s.Line()
}

// ProgramLine maps an instruction index of the loaded program to its
// source line.
func (d *Debugger) ProgramLine(pc int) int {
	s := d.session.Load()
	if s == nil {
		return -1
	}

	return s.Program().Line(pc)
}

// CallStack lists the active calls, innermost first. The innermost entry is
// the pending instruction.
func (d *Debugger) CallStack() []CallStackEntry {
	s := d.session.Load()
	if s == nil {
		return nil
	}

	state := s.State()
	program := s.Program()
	frames := append(append([]int{}, state.CallStack...), state.ProgramCounter)

	entries := make([]CallStackEntry, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		entry := CallStackEntry{Line: program.Line(frames[i])}
		if i != len(frames)-1 {
			if label, ok := program.Insts[frames[i]].Operand(0).LabelName(); ok {
				entry.Label = label
			}
		}

		entries = append(entries, entry)
	}

	return entries
}
