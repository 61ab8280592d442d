package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/verify"
)

func lintCommand(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("lint", flag.ContinueOnError)
	output := fs.String("o", "", "Also save the report to this file")
	maxSteps := fs.Int("max-steps", cfg.Run.MaxSteps, "Step bound of the reference run")

	path, ok := fileArg(fs, args)
	if !ok {
		return 2
	}

	code, err := readProgram(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	program, err := core.LoadProgram(code)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	// The reference run gets no input and its output is discarded.
	builder := core.NewBuilder().WithStdout(io.Discard).WithStderr(io.Discard)
	report := verify.GenerateReport(filepath.Base(path), program, builder, *maxSteps)
	report.WriteReport(os.Stdout)

	if *output != "" {
		if err := report.SaveReportToFile(*output); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if len(report.StructIssues) > 0 || !report.RunOK {
		return 1
	}

	return 0
}
