package config

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/sarchlab/akita/v4/monitoring"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/tacvm/core"
)

// ParseLevel resolves a log level name. "trace" is the per-instruction
// level of the core package.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "trace":
		return core.LevelTrace, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}

	return 0, fmt.Errorf("unknown log level %q", name)
}

// NewLogger creates the logger described by the log section.
func (c *Config) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := ParseLevel(c.Log.Level)
	if err != nil {
		return nil, err
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if c.Log.Format == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler), nil
}

// Freq returns the configured core frequency.
func (c *Config) Freq() sim.Freq {
	return sim.Freq(c.Run.FreqGHz) * sim.GHz
}

// Platform is the simulation a timed run executes on.
type Platform struct {
	Engine  sim.Engine
	Monitor *monitoring.Monitor
	Builder core.Builder
}

// PlatformBuilder can build platforms.
type PlatformBuilder struct {
	config *Config
	stdout io.Writer
	stderr io.Writer
	stdin  io.Reader
}

// NewPlatformBuilder creates a builder from a configuration.
func NewPlatformBuilder(c *Config) PlatformBuilder {
	return PlatformBuilder{config: c}
}

// WithStdout sets the WRITE sink.
func (b PlatformBuilder) WithStdout(w io.Writer) PlatformBuilder {
	b.stdout = w
	return b
}

// WithStderr sets the DPRINT and BREAK sink.
func (b PlatformBuilder) WithStderr(w io.Writer) PlatformBuilder {
	b.stderr = w
	return b
}

// WithStdin sets the READ source.
func (b PlatformBuilder) WithStdin(r io.Reader) PlatformBuilder {
	b.stdin = r
	return b
}

// Build creates the engine, the optional monitor and the interpreter
// builder wired to them.
func (b PlatformBuilder) Build() *Platform {
	p := &Platform{Engine: sim.NewSerialEngine()}

	if b.config.Run.Monitor {
		p.Monitor = monitoring.NewMonitor()
		p.Monitor.RegisterEngine(p.Engine)
	}

	p.Builder = core.NewBuilder().
		WithEngine(p.Engine).
		WithFreq(b.config.Freq()).
		WithMaxSteps(b.config.Run.MaxSteps).
		WithStdout(b.stdout).
		WithStderr(b.stderr).
		WithStdin(b.stdin)

	return p
}

// BuildCore creates a timed core for the program and registers it with the
// monitor when there is one.
func (p *Platform) BuildCore(name string, program *core.Program) *core.Core {
	c := p.Builder.BuildCore(name, program)

	if p.Monitor != nil {
		p.Monitor.RegisterComponent(c)
	}

	return c
}
