package api

import (
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tacvm/core"
)

// DriverBuilder creates a new instance of Driver.
type DriverBuilder struct {
	engine      sim.Engine
	freq        sim.Freq
	coreBuilder core.Builder
	listener    Listener
	breakpoints []int
}

// NewDriverBuilder returns a builder with a 1 GHz clock.
func NewDriverBuilder() DriverBuilder {
	return DriverBuilder{
		freq:        1 * sim.GHz,
		coreBuilder: core.NewBuilder(),
	}
}

// WithEngine sets the engine.
func (b DriverBuilder) WithEngine(engine sim.Engine) DriverBuilder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the driver.
func (b DriverBuilder) WithFreq(freq sim.Freq) DriverBuilder {
	b.freq = freq
	return b
}

// WithCoreBuilder sets how sessions are built, including their I/O sinks.
func (b DriverBuilder) WithCoreBuilder(cb core.Builder) DriverBuilder {
	b.coreBuilder = cb
	return b
}

// WithListener sets the receiver of driver events.
func (b DriverBuilder) WithListener(l Listener) DriverBuilder {
	b.listener = l
	return b
}

// WithBreakpoints sets the initial breakpoint lines.
func (b DriverBuilder) WithBreakpoints(lines []int) DriverBuilder {
	b.breakpoints = lines
	return b
}

// Build create a driver.
func (b DriverBuilder) Build(name string) Driver {
	engine := b.engine
	if engine == nil {
		engine = sim.NewSerialEngine()
	}

	d := &driverImpl{
		debugger: NewDebugger(b.coreBuilder),
		listener: b.listener,
	}
	d.debugger.SetBreakpoints(b.breakpoints)

	d.TickingComponent = sim.NewTickingComponent(name, engine, b.freq, d)

	return d
}
