package core

import (
	"io"

	"github.com/sarchlab/akita/v4/sim"
)

// Builder can create new interpreters and timed cores.
type Builder struct {
	engine   sim.Engine
	freq     sim.Freq
	stdout   io.Writer
	stderr   io.Writer
	stdin    io.Reader
	maxSteps int
}

// NewBuilder returns a builder with a 1 GHz clock and no step limit.
func NewBuilder() Builder {
	return Builder{
		freq: 1 * sim.GHz,
	}
}

// WithEngine sets the engine.
func (b Builder) WithEngine(engine sim.Engine) Builder {
	b.engine = engine
	return b
}

// WithFreq sets the frequency of the core.
func (b Builder) WithFreq(freq sim.Freq) Builder {
	b.freq = freq
	return b
}

// WithStdout sets the sink of WRITE.
func (b Builder) WithStdout(w io.Writer) Builder {
	b.stdout = w
	return b
}

// WithStderr sets the sink of the diagnostic instructions.
func (b Builder) WithStderr(w io.Writer) Builder {
	b.stderr = w
	return b
}

// WithStdin sets the source of READ.
func (b Builder) WithStdin(r io.Reader) Builder {
	b.stdin = r
	return b
}

// WithMaxSteps bounds the number of executed instructions. Zero means no
// bound.
func (b Builder) WithMaxSteps(n int) Builder {
	b.maxSteps = n
	return b
}

// Build creates an interpreter for the program.
func (b Builder) Build(program *Program) *Interpreter {
	return &Interpreter{
		program:  program,
		stdout:   b.stdout,
		stderr:   b.stderr,
		stdin:    b.stdin,
		maxSteps: b.maxSteps,
	}
}

// BuildCore creates a timed core that executes the program on the engine.
func (b Builder) BuildCore(name string, program *Program) *Core {
	if b.engine == nil {
		panic("engine is not set")
	}

	c := &Core{
		session: b.Build(program).NewSession(),
	}
	c.TickingComponent = sim.NewTickingComponent(name, b.engine, b.freq, c)

	return c
}
