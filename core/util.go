package core

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/jedib0t/go-pretty/v6/table"
)

const (
	LevelTrace slog.Level = slog.LevelInfo + 1
)

func Trace(msg string, args ...any) {
	slog.Log(context.Background(), LevelTrace, msg, args...)
}

// RenderState writes the frames, the data stack and the counters as tables.
func RenderState(w io.Writer, state *State) {
	fmt.Fprintf(w, "==============State@PC=%d==============\n", state.ProgramCounter)

	frameTable := table.NewWriter()
	frameTable.SetTitle("Frames")
	frameTable.AppendHeader(table.Row{"Frame", "Variable", "Value"})
	appendFrame(frameTable, "GF", state.GlobalFrame)
	for i := len(state.FrameStack) - 1; i >= 0; i-- {
		name := "LF"
		if i != len(state.FrameStack)-1 {
			name = fmt.Sprintf("LF-%d", len(state.FrameStack)-1-i)
		}
		appendFrame(frameTable, name, state.FrameStack[i])
	}
	appendFrame(frameTable, "TF", state.TempFrame)
	fmt.Fprintln(w, frameTable.Render())

	stackTable := table.NewWriter()
	stackTable.SetTitle("Data Stack")
	stackTable.AppendHeader(table.Row{"#", "Value"})
	// The title wraps when it is wider than the columns.
	stackTable.SetColumnConfigs([]table.ColumnConfig{{Number: 2, WidthMin: 16}})
	for i := len(state.DataStack) - 1; i >= 0; i-- {
		stackTable.AppendRow(table.Row{i, state.DataStack[i].Literal()})
	}
	fmt.Fprintln(w, stackTable.Render())

	counterTable := table.NewWriter()
	counterTable.AppendHeader(table.Row{"PC", "Line", "Executed", "Calls", "Price"})
	counterTable.AppendRow(table.Row{
		state.ProgramCounter,
		state.ProgramLine,
		state.ExecutedInstructions,
		len(state.CallStack),
		fmt.Sprintf("%d (%d+%d)", state.Price(), state.InstructionPrice, state.OperandPrice),
	})
	fmt.Fprintln(w, counterTable.Render())
	fmt.Fprintln(w, "================================================")
}

func appendFrame(t table.Writer, name string, frame *VarFrame) {
	if frame == nil {
		t.AppendRow(table.Row{name, "-", "-"})
		return
	}

	if frame.Len() == 0 {
		t.AppendRow(table.Row{name, "", ""})
		return
	}

	for _, v := range frame.Variables() {
		t.AppendRow(table.Row{name, v.Name, v.Value.Literal()})
	}
}

func LogState(state *State) {
	slog.Debug("StateCheckpoint",
		"PC", state.ProgramCounter,
		"Line", state.ProgramLine,
		"Executed", state.ExecutedInstructions,
		"Frames", len(state.FrameStack),
		"Stack", len(state.DataStack),
		"Price", state.Price(),
	)
}
