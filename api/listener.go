package api

import "github.com/sarchlab/tacvm/core"

// Listener receives the events a Driver publishes. Events are delivered on
// the goroutine that executes the command.
type Listener interface {
	CurrentLineChanged(line int)
	StateChanged(state *core.State)
	ProgramEnded()
	ProgramEndedWithError(msg string)
	BreakpointsChanged(lines []int)
	CallStackChanged(entries []CallStackEntry)
}
