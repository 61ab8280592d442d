package conformance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/instr"
)

// TestResult represents the outcome of running a single test
type TestResult struct {
	Test       LoadedTest
	Passed     bool
	Skipped    bool
	SkipReason string
	Error      error

	Stdout   string
	Price    int
	Executed int
}

// Runner executes conformance tests in-process
type Runner struct {
	maxSteps int
}

// NewRunner creates a test runner. maxSteps bounds every run, zero means
// unbounded.
func NewRunner(maxSteps int) *Runner {
	return &Runner{maxSteps: maxSteps}
}

// errorNames maps the corpus spelling of an error to its sentinel.
var errorNames = map[string]error{
	"unknown_instruction":   instr.ErrUnknownInstruction,
	"invalid_operand":       instr.ErrInvalidOperand,
	"invalid_operand_count": instr.ErrInvalidOperandCount,
	"missing_header":        core.ErrMissingHeader,
	"empty_code":            core.ErrEmptyCode,
	"empty_data_stack":      core.ErrEmptyDataStack,
	"undefined_variable":    core.ErrUndefinedVariable,
	"undeclared_variable":   core.ErrUndeclaredVariable,
	"unknown_label":         core.ErrUnknownLabel,
	"invalid_return":        core.ErrInvalidReturn,
	"frame":                 core.ErrFrame,
	"invalid_operand_type":  core.ErrInvalidOperandType,
	"string_index":          core.ErrStringIndex,
	"unknown_data_type":     core.ErrUnknownDataType,
	"zero_division":         core.ErrZeroDivision,
	"step_limit":            core.ErrStepLimit,
}

// ErrorName returns the corpus spelling of the sentinel wrapped by err.
func ErrorName(err error) string {
	if err == nil {
		return ""
	}

	for name, sentinel := range errorNames {
		if errors.Is(err, sentinel) {
			return name
		}
	}

	return "unknown"
}

// Run executes a single test
func (r *Runner) Run(test LoadedTest) TestResult {
	result := TestResult{Test: test}

	if skip, reason := test.Test.IsSkipped(); skip {
		result.Skipped = true
		result.SkipReason = reason
		return result
	}

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	var (
		state  *core.State
		runErr error
	)

	program, err := core.LoadProgram(test.Test.Code)
	if err != nil {
		runErr = err
	} else {
		state, runErr = core.NewBuilder().
			WithStdout(stdout).
			WithStderr(stderr).
			WithStdin(strings.NewReader(test.Test.Stdin)).
			WithMaxSteps(r.maxSteps).
			Build(program).
			Run(context.Background())
	}

	result.Stdout = stdout.String()
	if state != nil {
		result.Price = state.Price()
		result.Executed = state.ExecutedInstructions
	}

	result.Passed, result.Error = r.checkExpectation(test.Test.Expect, result, stderr.String(), runErr)

	return result
}

// RunAll executes all tests in order
func (r *Runner) RunAll(tests []LoadedTest) []TestResult {
	results := make([]TestResult, 0, len(tests))
	for _, test := range tests {
		results = append(results, r.Run(test))
	}
	return results
}

// SummaryStats counts results by outcome
type SummaryStats struct {
	Total   int
	Passed  int
	Failed  int
	Skipped int
}

// ComputeStats calculates summary statistics
func ComputeStats(results []TestResult) SummaryStats {
	stats := SummaryStats{Total: len(results)}
	for _, r := range results {
		if r.Skipped {
			stats.Skipped++
		} else if r.Passed {
			stats.Passed++
		} else {
			stats.Failed++
		}
	}
	return stats
}

// FormatStats returns a human-readable summary
func FormatStats(stats SummaryStats) string {
	return fmt.Sprintf("%d passed, %d failed, %d skipped (%d total)",
		stats.Passed, stats.Failed, stats.Skipped, stats.Total)
}

// WriteResults renders one row per test followed by the summary.
func WriteResults(w io.Writer, results []TestResult) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"File", "Suite", "Test", "State", "Price", "Executed", "Detail"})

	for _, r := range results {
		status, detail := "PASS", ""
		switch {
		case r.Skipped:
			status, detail = "SKIP", r.SkipReason
		case !r.Passed:
			status = "FAIL"
			if r.Error != nil {
				detail = r.Error.Error()
			}
		}

		t.AppendRow(table.Row{
			r.Test.File,
			r.Test.Suite.Name,
			r.Test.Test.Name,
			status,
			r.Price,
			r.Executed,
			detail,
		})
	}

	t.AppendFooter(table.Row{"", "", "", FormatStats(ComputeStats(results))})
	t.Render()
}

// checkExpectation checks if the run matches the expected outcome
func (r *Runner) checkExpectation(
	expect Expectation,
	result TestResult,
	stderr string,
	runErr error,
) (bool, error) {
	if expect.Error != "" {
		sentinel, ok := errorNames[expect.Error]
		if !ok {
			return false, fmt.Errorf("unknown error name: %s", expect.Error)
		}

		if runErr == nil {
			return false, fmt.Errorf("expected error %s, run succeeded", expect.Error)
		}

		if !errors.Is(runErr, sentinel) {
			return false, fmt.Errorf("expected error %s, got %s (%v)",
				expect.Error, ErrorName(runErr), runErr)
		}
	} else if runErr != nil {
		return false, fmt.Errorf("unexpected error: %w", runErr)
	}

	if expect.Stdout != nil && *expect.Stdout != result.Stdout {
		return false, fmt.Errorf("expected stdout %q, got %q", *expect.Stdout, result.Stdout)
	}

	if expect.Stderr != "" && !strings.Contains(stderr, expect.Stderr) {
		return false, fmt.Errorf("expected stderr to contain %q, got %q", expect.Stderr, stderr)
	}

	if expect.Price != nil && *expect.Price != result.Price {
		return false, fmt.Errorf("expected price %d, got %d", *expect.Price, result.Price)
	}

	if expect.Executed != nil && *expect.Executed != result.Executed {
		return false, fmt.Errorf("expected %d executed instructions, got %d",
			*expect.Executed, result.Executed)
	}

	return true, nil
}
