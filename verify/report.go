package verify

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sarchlab/tacvm/core"
)

// VerificationReport represents a complete verification report
type VerificationReport struct {
	Name             string
	InstructionCount int
	LintIssues       []Issue
	StructIssues     []Issue
	FlowIssues       []Issue
	RunErr           error
	RunOK            bool
	State            *core.State
	Program          *core.Program
}

// GenerateReport runs lint and a bounded reference run, returns a report
func GenerateReport(
	name string,
	p *core.Program,
	builder core.Builder,
	maxSteps int,
) *VerificationReport {
	report := &VerificationReport{
		Name:             name,
		InstructionCount: p.Len(),
		Program:          p,
	}

	// Run lint
	report.LintIssues = RunLint(p)

	// Categorize issues
	for _, issue := range report.LintIssues {
		if issue.Type == IssueStruct {
			report.StructIssues = append(report.StructIssues, issue)
		} else {
			report.FlowIssues = append(report.FlowIssues, issue)
		}
	}

	// Run the program
	report.State, report.RunErr = builder.
		WithMaxSteps(maxSteps).
		Build(p).
		Run(context.Background())
	report.RunOK = report.RunErr == nil

	return report
}

// WriteReport writes a formatted report to a writer
func (r *VerificationReport) WriteReport(w io.Writer) {
	separator := strings.Repeat("=", 60)
	dash := strings.Repeat("-", 60)

	fmt.Fprintln(w, separator)
	fmt.Fprintf(w, "VERIFICATION REPORT: %s\n", r.Name)
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "\n✓ Loaded %d instructions, %d labels\n",
		r.InstructionCount, len(r.Program.Labels))

	// STAGE 1: LINT
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 1: STATIC LINT CHECKS")
	fmt.Fprintln(w, separator)

	if len(r.LintIssues) == 0 {
		fmt.Fprintln(w, "✓ No lint issues found!")
	} else {
		fmt.Fprintf(w, "⚠ Found %d lint issues:\n", len(r.LintIssues))
		writeIssues(w, dash, "STRUCT", r.StructIssues)
		writeIssues(w, dash, "FLOW", r.FlowIssues)
	}

	// STAGE 2: RUN
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "STAGE 2: REFERENCE RUN")
	fmt.Fprintln(w, separator)

	if r.RunOK {
		fmt.Fprintln(w, "✓ Run completed successfully")
	} else {
		fmt.Fprintf(w, "⚠ Run error: %v\n", r.RunErr)
	}

	if r.State != nil {
		fmt.Fprintf(w, "Executed instructions: %d\n", r.State.ExecutedInstructions)
		fmt.Fprintf(w, "Price: %d (%d+%d)\n",
			r.State.Price(), r.State.InstructionPrice, r.State.OperandPrice)
	}

	// STAGE 3: SUMMARY
	fmt.Fprintln(w, "\n"+separator)
	fmt.Fprintln(w, "VERIFICATION SUMMARY")
	fmt.Fprintln(w, separator)

	fmt.Fprintf(w, "Lint Result: %d issues detected (%d STRUCT, %d FLOW)\n",
		len(r.LintIssues), len(r.StructIssues), len(r.FlowIssues))
	runStatus := "SUCCESS"
	if !r.RunOK {
		runStatus = "FAILED: " + r.RunErr.Error()
	}
	fmt.Fprintf(w, "Run Result: %s\n", runStatus)

	fmt.Fprintln(w)
}

func writeIssues(w io.Writer, dash, title string, issues []Issue) {
	if len(issues) == 0 {
		return
	}

	fmt.Fprintf(w, "\n%s ISSUES (%d):\n", title, len(issues))
	fmt.Fprintln(w, dash)
	for _, issue := range issues {
		fmt.Fprintf(w, "  [line %d op=%d] %s\n", issue.Line, issue.OpID, issue.Message)
	}
}

// SaveReportToFile saves the report to a file
func (r *VerificationReport) SaveReportToFile(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	defer file.Close()

	r.WriteReport(file)
	return nil
}
