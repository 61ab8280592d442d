// Package config handles tacvm.toml configuration for the command line
// tool.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// FileName is the name of the configuration file.
const FileName = "tacvm.toml"

// Config represents a tacvm.toml configuration.
type Config struct {
	Run    RunConfig    `toml:"run"`
	Log    LogConfig    `toml:"log"`
	Report ReportConfig `toml:"report"`
	Corpus CorpusConfig `toml:"corpus"`

	// Dir is the directory containing the tacvm.toml file (set at load time).
	Dir string `toml:"-"`
}

// RunConfig configures program execution.
type RunConfig struct {
	// MaxSteps bounds the number of executed instructions. Zero means
	// unbounded.
	MaxSteps int `toml:"max_steps"`

	// Timed runs the program on the simulation engine, one cycle per price
	// unit.
	Timed   bool    `toml:"timed"`
	FreqGHz float64 `toml:"freq_ghz"`
	Monitor bool    `toml:"monitor"`
}

// LogConfig configures the default logger.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
	File   string `toml:"file"`
}

// ReportConfig configures the price report store.
type ReportConfig struct {
	DB string `toml:"db"`
}

// CorpusConfig configures the conformance corpus.
type CorpusConfig struct {
	Dir string `toml:"dir"`
}

// Default returns the configuration used when no tacvm.toml exists.
func Default() *Config {
	return &Config{
		Run: RunConfig{
			MaxSteps: 1_000_000,
			FreqGHz:  1,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Corpus: CorpusConfig{
			Dir: "conformance/testdata",
		},
	}
}

// Load parses a tacvm.toml file from the given directory. Keys missing from
// the file keep their default values.
func Load(dir string) (*Config, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	c, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse error in %s: %w", path, err)
	}

	c.Dir, err = filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("cannot resolve path %s: %w", dir, err)
	}

	return c, nil
}

// Parse decodes configuration text over the defaults and validates it.
func Parse(text string) (*Config, error) {
	c := Default()

	md, err := toml.Decode(text, c)
	if err != nil {
		return nil, err
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		return nil, fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}

// FindAndLoad walks up from startDir to find a tacvm.toml file, then loads
// and returns it. Returns the defaults if no file is found.
func FindAndLoad(startDir string) (*Config, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, err
	}

	for {
		path := filepath.Join(dir, FileName)
		if _, err := os.Stat(path); err == nil {
			return Load(dir)
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return Default(), nil
		}
		dir = parent
	}
}

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var errs []error

	if c.Run.MaxSteps < 0 {
		errs = append(errs, fmt.Errorf("run.max_steps must not be negative, got %d", c.Run.MaxSteps))
	}

	if c.Run.FreqGHz <= 0 {
		errs = append(errs, fmt.Errorf("run.freq_ghz must be positive, got %g", c.Run.FreqGHz))
	}

	if _, err := ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format must be text or json, got %q", c.Log.Format))
	}

	return errors.Join(errs...)
}

// Path resolves a configured path against the configuration directory.
func (c *Config) Path(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Dir == "" {
		return p
	}
	return filepath.Join(c.Dir, p)
}
