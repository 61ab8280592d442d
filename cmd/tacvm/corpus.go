package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/conformance"
	"github.com/sarchlab/tacvm/report"
)

func corpusCommand(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("corpus", flag.ContinueOnError)
	maxSteps := fs.Int("max-steps", cfg.Run.MaxSteps, "Step bound of every test")
	record := fs.Bool("record", false, "Save a price report for every passing test")

	if err := fs.Parse(args); err != nil {
		return 2
	}

	dir := cfg.Path(cfg.Corpus.Dir)
	if fs.NArg() > 0 {
		dir = fs.Arg(0)
	}

	tests, err := conformance.LoadAllTests(dir)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	results := conformance.NewRunner(*maxSteps).RunAll(tests)
	conformance.WriteResults(os.Stdout, results)

	if *record {
		if err := recordResults(cfg, results); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if conformance.ComputeStats(results).Failed > 0 {
		return 1
	}

	return 0
}

func recordResults(cfg *config.Config, results []conformance.TestResult) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, r := range results {
		if r.Skipped || !r.Passed {
			continue
		}

		rep := report.New(r.Test.Suite.Name+"/"+r.Test.Test.Name, nil, nil)
		rep.Price = r.Price
		rep.Executed = r.Executed

		if _, err := store.Save(rep); err != nil {
			return err
		}
	}

	return nil
}
