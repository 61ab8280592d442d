package conformance

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

// LoadedTest represents a test with its source file path
type LoadedTest struct {
	File  string
	Suite TestSuite
	Test  TestCase
}

// LoadAllTests walks the directory and loads all test cases. Files that do
// not parse are logged and skipped.
func LoadAllTests(testDir string) ([]LoadedTest, error) {
	var loaded []LoadedTest

	info, err := os.Stat(testDir)
	if err != nil {
		return nil, fmt.Errorf("could not open corpus directory: %w", err)
	}

	if !info.IsDir() {
		return nil, fmt.Errorf("corpus path %s is not a directory", testDir)
	}

	err = filepath.Walk(testDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		ext := filepath.Ext(path)
		if info.IsDir() || (ext != ".yaml" && ext != ".yml") {
			return nil
		}

		relPath, _ := filepath.Rel(testDir, path)

		tests, err := loadTestFile(path)
		if err != nil {
			slog.Warn("skipping corpus file", "file", relPath, "error", err)
			return nil
		}

		for _, test := range tests {
			test.File = relPath
			loaded = append(loaded, test)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	sort.SliceStable(loaded, func(i, j int) bool {
		return loaded[i].File < loaded[j].File
	})

	return loaded, nil
}

// loadTestFile parses a single YAML file and returns all test cases
func loadTestFile(path string) ([]LoadedTest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return parseSuite(data)
}

func parseSuite(data []byte) ([]LoadedTest, error) {
	var suite TestSuite
	if err := yaml.Unmarshal(data, &suite); err != nil {
		return nil, err
	}

	names := make(map[string]bool, len(suite.Tests))
	for _, test := range suite.Tests {
		if names[test.Name] {
			return nil, fmt.Errorf("suite %q has conflicting test name %q", suite.Name, test.Name)
		}
		names[test.Name] = true
	}

	tests := make([]LoadedTest, 0, len(suite.Tests))
	for _, test := range suite.Tests {
		tests = append(tests, LoadedTest{
			Suite: suite,
			Test:  test,
		})
	}

	return tests, nil
}
