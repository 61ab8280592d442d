package core

import (
	"github.com/sarchlab/akita/v4/sim"
)

// Core executes a program on an akita engine. An instruction occupies the
// core for as many cycles as its price, and at least one.
type Core struct {
	*sim.TickingComponent

	session *Session
	stall   int

	cycles     int
	finishedAt sim.VTimeInSec
}

// Start schedules the first tick.
func (c *Core) Start() {
	c.TickLater()
}

// Stop ends the program before its next instruction.
func (c *Core) Stop() {
	c.session.Stop()
}

// Session is the execution driven by the core.
func (c *Core) Session() *Session {
	return c.session
}

// State is the state of the running program.
func (c *Core) State() *State {
	return c.session.State()
}

// Err is the runtime error that ended the program, if any.
func (c *Core) Err() error {
	return c.session.Err()
}

// Cycles is the number of cycles the core has been busy.
func (c *Core) Cycles() int {
	return c.cycles
}

// FinishedAt is the simulated time the last instruction completed.
func (c *Core) FinishedAt() sim.VTimeInSec {
	return c.finishedAt
}

// Tick runs the program for one cycle.
func (c *Core) Tick() (madeProgress bool) {
	if c.stall > 0 {
		c.stall--
		c.cycles++

		if c.stall == 0 {
			c.finishedAt = c.Engine.CurrentTime()
		}

		return true
	}

	if c.session.Done() {
		return false
	}

	before := c.session.State().Price()
	pc := c.session.State().ProgramCounter

	err := c.session.Step()
	c.cycles++

	cost := c.session.State().Price() - before
	if cost > 1 {
		c.stall = cost - 1
	} else {
		c.finishedAt = c.Engine.CurrentTime()
	}

	Trace("Tick",
		"Core", c.Name(),
		"Time", float64(c.Engine.CurrentTime()*1e9),
		"PC", pc,
		"Cost", cost,
	)

	if err != nil {
		c.stall = 0
		c.finishedAt = c.Engine.CurrentTime()
		Trace("Fault", "Core", c.Name(), "Error", err.Error())

		return false
	}

	return true
}
