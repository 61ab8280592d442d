package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sarchlab/tacvm/api"
	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/core"
)

// consoleListener prints debugger events as they arrive.
type consoleListener struct {
	w   io.Writer
	err string
}

func (l *consoleListener) CurrentLineChanged(line int) {
	if line >= 0 {
		fmt.Fprintf(l.w, "-- paused at line %d\n", line)
	}
}

func (l *consoleListener) StateChanged(state *core.State) {
	core.RenderState(l.w, state)
}

func (l *consoleListener) ProgramEnded() {
	fmt.Fprintln(l.w, "-- program ended")
}

func (l *consoleListener) ProgramEndedWithError(msg string) {
	l.err = msg
	fmt.Fprintf(l.w, "-- program ended with error: %s\n", msg)
}

func (l *consoleListener) BreakpointsChanged(lines []int) {}

func (l *consoleListener) CallStackChanged(entries []api.CallStackEntry) {
	for _, e := range entries {
		if e.Label == "" {
			fmt.Fprintf(l.w, "   at line %d\n", e.Line)
			continue
		}
		fmt.Fprintf(l.w, "   at line %d (%s)\n", e.Line, e.Label)
	}
}

func parseLines(s string) ([]int, error) {
	var lines []int

	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		line, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint %q: %w", field, err)
		}
		lines = append(lines, line)
	}

	return lines, nil
}

func debugCommand(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("debug", flag.ContinueOnError)
	breakpoints := fs.String("b", "", "Comma separated breakpoint lines")
	step := fs.Bool("step", false, "Pause after every instruction")

	path, ok := fileArg(fs, args)
	if !ok {
		return 2
	}

	lines, err := parseLines(*breakpoints)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	code, err := readProgram(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	platform := config.NewPlatformBuilder(cfg).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStdin(os.Stdin).
		Build()

	listener := &consoleListener{w: os.Stderr}
	driver := api.NewDriverBuilder().
		WithEngine(platform.Engine).
		WithFreq(cfg.Freq()).
		WithCoreBuilder(platform.Builder).
		WithListener(listener).
		WithBreakpoints(lines).
		Build("Debugger")

	if err := driver.Start(code); err != nil {
		return 1
	}
	driver.Wait()

	for driver.Debugger().Status() == api.StatusPaused {
		if *step {
			err = driver.StepLine()
		} else {
			err = driver.StepToBreakpoint()
		}

		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		driver.Wait()
	}

	if listener.err != "" {
		return 1
	}

	return 0
}
