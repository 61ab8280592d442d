package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/report"
)

func runCommand(cfg *config.Config, args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	timed := fs.Bool("timed", cfg.Run.Timed, "Run on the simulation engine, one cycle per price unit")
	maxSteps := fs.Int("max-steps", cfg.Run.MaxSteps, "Maximum number of executed instructions, 0 for no limit")
	monitor := fs.Bool("monitor", cfg.Run.Monitor, "Serve the simulation monitor during timed runs")
	price := fs.Bool("price", false, "Print the price to stderr after the run")
	record := fs.String("record", "", "Save a price report under this name, - for the file name")
	snapshot := fs.String("snapshot", "", "Write the final state as CBOR to this file")

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

	runCfg := *cfg
	runCfg.Run.MaxSteps = *maxSteps
	runCfg.Run.Monitor = *monitor && *timed

	platform := config.NewPlatformBuilder(&runCfg).
		WithStdout(os.Stdout).
		WithStderr(os.Stderr).
		WithStdin(os.Stdin).
		Build()

	var (
		state  *core.State
		runErr error
	)

	if *timed {
		state, runErr = runTimed(platform, program)
	} else {
		state, runErr = platform.Builder.Build(program).Run(context.Background())
	}

	if runErr != nil {
		fmt.Fprintln(os.Stderr, runErr)
	}

	if *price && state != nil {
		fmt.Fprintf(os.Stderr, "Price: %d (%d+%d)\n",
			state.Price(), state.InstructionPrice, state.OperandPrice)
	}

	if *snapshot != "" && state != nil {
		if err := writeSnapshot(*snapshot, state); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if *record != "" {
		name := *record
		if name == "-" {
			name = filepath.Base(path)
		}

		if err := recordReport(cfg, report.New(name, state, runErr)); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
	}

	if runErr != nil {
		return 1
	}

	return 0
}

func runTimed(platform *config.Platform, program *core.Program) (*core.State, error) {
	vm := platform.BuildCore("VM", program)

	if platform.Monitor != nil {
		platform.Monitor.StartServer()
	}

	vm.Start()
	if err := platform.Engine.Run(); err != nil {
		return vm.State(), err
	}

	fmt.Fprintf(os.Stderr, "Cycles: %d, finished at %.9fs\n", vm.Cycles(), float64(vm.FinishedAt()))

	return vm.State(), vm.Err()
}

func writeSnapshot(path string, state *core.State) error {
	data, err := report.MarshalSnapshot(report.TakeSnapshot(state))
	if err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	return os.WriteFile(path, data, 0o644)
}

func openStore(cfg *config.Config) (*report.Store, error) {
	if cfg.Report.DB == "" {
		return nil, errors.New("no report database configured, set [report] db")
	}

	return report.Open(cfg.Path(cfg.Report.DB))
}

func recordReport(cfg *config.Config, r report.Report) error {
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	_, err = store.Save(r)

	return err
}
