package core

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/sarchlab/tacvm/instr"
)

var (
	intInputRE   = regexp.MustCompile(`^[+-]?\d+`)
	floatInputRE = regexp.MustCompile(`^[+-]?(\d+\.\d*([eE][+-]?\d+)?|\.\d+([eE][+-]?\d+)?|\d+[eE][+-]?\d+)`)
)

// parseInput converts one input line to a value of the requested type.
// Input that does not parse yields the zero value of the type.
func parseInput(line string, t instr.DataType) instr.Value {
	line = strings.TrimSpace(line)

	switch t {
	case instr.TypeString:
		return instr.String(readQuoted(line))
	case instr.TypeInt:
		if m := intInputRE.FindString(line); m != "" {
			if i, err := strconv.ParseInt(m, 10, 64); err == nil {
				return instr.Int(i)
			}
		}
	case instr.TypeFloat:
		if m := floatInputRE.FindString(line); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return instr.Float(f)
			}
		}

		if m := intInputRE.FindString(line); m != "" {
			if f, err := strconv.ParseFloat(m, 64); err == nil {
				return instr.Float(f)
			}
		}
	case instr.TypeBool:
		return instr.Bool(strings.EqualFold(line, "true"))
	}

	return instr.Zero(t)
}

// readQuoted returns the text between the opening quote and the first
// closing quote. Unquoted input is taken verbatim.
func readQuoted(line string) string {
	if !strings.HasPrefix(line, `"`) {
		return line
	}

	rest := line[1:]
	if end := strings.IndexByte(rest, '"'); end >= 0 {
		return rest[:end]
	}

	return rest
}
