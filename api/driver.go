// Package api defines the control surface of the virtual machine.
package api

import (
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/sarchlab/akita/v4/sim"
)

// ErrBusy is returned when a command arrives while another one is running.
var ErrBusy = errors.New("driver is busy")

// Driver provides the interface an editor uses to run and debug programs.
type Driver interface {
	// AddBreakpoint marks a source line.
	AddBreakpoint(line int)

	// RemoveBreakpoint unmarks a source line.
	RemoveBreakpoint(line int)

	// ToggleBreakpoint flips the mark of a source line.
	ToggleBreakpoint(line int)

	// Breakpoints lists the marked lines in ascending order.
	Breakpoints() []int

	// HandleAddedLines shifts breakpoints down for every line inserted at
	// the given positions.
	HandleAddedLines(lines []int)

	// HandleRemovedLines drops breakpoints on removed lines and shifts the
	// ones below up.
	HandleRemovedLines(lines []int)

	// Start loads the program and runs it to the first breakpoint.
	Start(code string) error

	// Run loads the program and runs it to the end, ignoring breakpoints.
	Run(code string) error

	// StepLine executes one instruction of the paused program.
	StepLine() error

	// StepToBreakpoint resumes the paused program until the next
	// breakpoint.
	StepToBreakpoint() error

	// Stop ends the running or paused program.
	Stop()

	// Wait blocks until the running command has finished.
	Wait()

	// Debugger exposes the underlying debugger.
	Debugger() *Debugger
}

type driverImpl struct {
	*sim.TickingComponent

	debugger *Debugger
	listener Listener

	mode runMode
	busy atomic.Bool
	wg   sync.WaitGroup
}

// Tick advances the program by one instruction.
func (d *driverImpl) Tick() (madeProgress bool) {
	if d.mode == modeNone {
		return false
	}

	more, err := d.debugger.advance(d.mode)
	if more {
		return true
	}

	d.mode = modeNone
	d.publish(err)

	return true
}

func (d *driverImpl) Debugger() *Debugger {
	return d.debugger
}

func (d *driverImpl) AddBreakpoint(line int) {
	d.debugger.AddBreakpoint(line)
	d.publishBreakpoints()
}

func (d *driverImpl) RemoveBreakpoint(line int) {
	d.debugger.RemoveBreakpoint(line)
	d.publishBreakpoints()
}

func (d *driverImpl) ToggleBreakpoint(line int) {
	if d.debugger.HasBreakpoint(line) {
		d.debugger.RemoveBreakpoint(line)
	} else {
		d.debugger.AddBreakpoint(line)
	}

	d.publishBreakpoints()
}

func (d *driverImpl) Breakpoints() []int {
	return d.debugger.Breakpoints()
}

func (d *driverImpl) HandleAddedLines(lines []int) {
	breakpoints := d.debugger.Breakpoints()

	for _, added := range lines {
		for i, b := range breakpoints {
			if b >= added {
				breakpoints[i] = b + 1
			}
		}
	}

	d.debugger.SetBreakpoints(breakpoints)
	d.publishBreakpoints()
}

func (d *driverImpl) HandleRemovedLines(lines []int) {
	breakpoints := d.debugger.Breakpoints()

	for _, removed := range lines {
		kept := breakpoints[:0]
		for _, b := range breakpoints {
			switch {
			case b == removed:
				continue
			case b > removed:
				kept = append(kept, b-1)
			default:
				kept = append(kept, b)
			}
		}

		breakpoints = kept
	}

	d.debugger.SetBreakpoints(breakpoints)
	d.publishBreakpoints()
}

func (d *driverImpl) Start(code string) error {
	return d.load(code, modeBreakpoint)
}

func (d *driverImpl) Run(code string) error {
	return d.load(code, modeEnd)
}

func (d *driverImpl) load(code string, mode runMode) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	if err := d.debugger.prepare(code, nil); err != nil {
		d.busy.Store(false)
		d.publish(err)

		return err
	}

	d.launch(mode)

	return nil
}

func (d *driverImpl) StepLine() error {
	return d.resume(modeLine)
}

func (d *driverImpl) StepToBreakpoint() error {
	return d.resume(modeBreakpoint)
}

func (d *driverImpl) resume(mode runMode) error {
	if !d.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}

	if d.debugger.Status() != StatusPaused {
		d.busy.Store(false)
		return ErrNotActive
	}

	d.launch(mode)

	return nil
}

// launch runs the engine on a worker goroutine until the command is done.
func (d *driverImpl) launch(mode runMode) {
	d.mode = mode
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()
		defer d.busy.Store(false)

		d.TickLater()

		if err := d.Engine.Run(); err != nil {
			slog.Error("engine failed", "driver", d.Name(), "error", err)
		}
	}()
}

func (d *driverImpl) Stop() {
	d.debugger.Stop()

	if !d.busy.Load() {
		d.publishStopped()
	}
}

func (d *driverImpl) Wait() {
	d.wg.Wait()
}

func (d *driverImpl) publish(err error) {
	if d.listener == nil {
		return
	}

	if err == nil && d.debugger.Status() == StatusStopped {
		d.publishStopped()
		return
	}

	d.listener.CurrentLineChanged(d.debugger.Line())

	switch {
	case err != nil:
		d.listener.ProgramEndedWithError(err.Error())
	case d.debugger.Status() == StatusPaused:
		d.listener.StateChanged(d.debugger.State())
		d.listener.CallStackChanged(d.debugger.CallStack())
	default:
		d.listener.ProgramEnded()
	}
}

func (d *driverImpl) publishStopped() {
	if d.listener == nil {
		return
	}

	d.listener.CallStackChanged([]CallStackEntry{})
	d.listener.CurrentLineChanged(-1)
}

func (d *driverImpl) publishBreakpoints() {
	if d.listener == nil {
		return
	}

	d.listener.BreakpointsChanged(d.debugger.Breakpoints())
}
