// Package report turns finished runs into price reports, encodes reports
// and state snapshots as canonical CBOR, and keeps reports in a local sqlite
// store.
package report

import (
	"io"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tacvm/core"
)

// Report is the cost summary of one run.
type Report struct {
	ID               int64     `cbor:"-"`
	Name             string    `cbor:"name"`
	Price            int       `cbor:"price"`
	InstructionPrice int       `cbor:"instruction_price"`
	OperandPrice     int       `cbor:"operand_price"`
	Executed         int       `cbor:"executed"`
	Error            string    `cbor:"error,omitempty"`
	CreatedAt        time.Time `cbor:"created_at"`
}

// OK reports whether the run finished without error.
func (r Report) OK() bool {
	return r.Error == ""
}

// New builds the report of a run. A nil state yields a zero-priced report
// that still carries the error.
func New(name string, state *core.State, runErr error) Report {
	r := Report{
		Name:      name,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	if state != nil {
		r.Price = state.Price()
		r.InstructionPrice = state.InstructionPrice
		r.OperandPrice = state.OperandPrice
		r.Executed = state.ExecutedInstructions
	}

	if runErr != nil {
		r.Error = runErr.Error()
	}

	return r
}

// WriteTable renders reports as a table.
func WriteTable(w io.Writer, reports []Report) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("Price Reports")
	t.AppendHeader(table.Row{"ID", "Name", "Price", "Instr", "Operand", "Executed", "Result", "Created"})

	for _, r := range reports {
		result := "OK"
		if !r.OK() {
			result = r.Error
		}

		t.AppendRow(table.Row{
			r.ID,
			r.Name,
			r.Price,
			r.InstructionPrice,
			r.OperandPrice,
			r.Executed,
			result,
			r.CreatedAt.Format(time.RFC3339),
		})
	}

	t.Render()
}
