// Command tacvm runs, debugs and checks IFJcode17 programs.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tebeka/atexit"

	"github.com/sarchlab/tacvm/config"
	"github.com/sarchlab/tacvm/samples"
)

const usage = `Usage: tacvm [-config DIR] <command> [flags] [args]

Commands:
  run FILE       interpret a program
  debug FILE     run a program, dumping the state at every breakpoint
  lint FILE      static checks and a bounded reference run
  corpus [DIR]   run the YAML conformance corpus
  reports        list stored price reports
  samples        list bundled sample programs

FILE may be sample:NAME to use a bundled sample.
`

func main() {
	configDir := flag.String("config", ".", "Directory to search for "+config.FileName)
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, usage)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		atexit.Exit(2)
	}

	cfg, err := config.FindAndLoad(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		atexit.Exit(2)
	}

	if err := setupLogging(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error setting up logging: %v\n", err)
		atexit.Exit(2)
	}

	cmd, args := flag.Arg(0), flag.Args()[1:]

	var code int
	switch cmd {
	case "run":
		code = runCommand(cfg, args)
	case "debug":
		code = debugCommand(cfg, args)
	case "lint":
		code = lintCommand(cfg, args)
	case "corpus":
		code = corpusCommand(cfg, args)
	case "reports":
		code = reportsCommand(cfg, args)
	case "samples":
		for _, name := range samples.Names() {
			fmt.Println(name)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", cmd)
		flag.Usage()
		code = 2
	}

	atexit.Exit(code)
}

func setupLogging(cfg *config.Config) error {
	var w io.Writer = os.Stderr

	if cfg.Log.File != "" {
		logFile, err := os.OpenFile(cfg.Path(cfg.Log.File),
			os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
		if err != nil {
			return err
		}

		atexit.Register(func() { logFile.Close() })
		w = logFile
	}

	logger, err := cfg.NewLogger(w)
	if err != nil {
		return err
	}

	slog.SetDefault(logger)

	return nil
}

// readProgram reads a program file. "sample:NAME" names a bundled sample.
func readProgram(path string) (string, error) {
	if name, ok := strings.CutPrefix(path, "sample:"); ok {
		return samples.Code(name)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("cannot load code from file %s: %w", path, err)
	}

	return string(data), nil
}

// fileArg parses the flags of a command that takes exactly one file.
func fileArg(fs *flag.FlagSet, args []string) (string, bool) {
	if err := fs.Parse(args); err != nil {
		return "", false
	}

	if fs.NArg() != 1 {
		fs.Usage()
		return "", false
	}

	return fs.Arg(0), true
}
