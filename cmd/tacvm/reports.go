package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/report"
)

func reportsCommand(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("reports", flag.ContinueOnError)
	name := fs.String("name", "", "Only list reports of this program")
	best := fs.Bool("best", false, "Only show the cheapest successful report")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	store, err := openStore(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer store.Close()

	var reports []report.Report

	if *best {
		r, err := store.Best(*name)
		if errors.Is(err, report.ErrReportNotFound) {
			fmt.Fprintf(os.Stderr, "No successful report for %q\n", *name)
			return 1
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		reports = append(reports, r)
	} else {
		reports, err = store.List(*name)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	report.WriteTable(os.Stdout, reports)

	return 0
}
