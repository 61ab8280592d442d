package core

import (
	"strings"

	"github.com/sarchlab/tacvm/instr"
)

// Header is the mandatory first code line of a program.
const Header = ".IFJcode17"

// Program is a loaded instruction sequence with its label table. Line
// numbers are 1-based source lines.
type Program struct {
	Insts  []instr.Inst
	Labels map[string]int
}

// LoadProgram parses source text. Comments start with '#' and run to the end
// of the line. Blank lines are ignored. The first code line must be the
// header. When a label is defined twice the first definition wins.
func LoadProgram(code string) (*Program, error) {
	p := &Program{Labels: make(map[string]int)}

	headerSeen := false
	lastLine := 0

	for i, raw := range strings.Split(code, "\n") {
		lineNumber := i + 1
		lastLine = lineNumber

		line := stripComment(raw)
		if line == "" {
			continue
		}

		if !headerSeen {
			if !strings.EqualFold(line, Header) {
				return nil, &instr.LineError{Line: lineNumber, Text: line, Err: ErrMissingHeader}
			}

			headerSeen = true

			continue
		}

		inst, err := instr.Parse(line, lineNumber)
		if err != nil {
			return nil, err
		}

		if inst.OpCode == instr.OpLabel {
			label, ok := inst.Operand(0).LabelName()
			if !ok {
				return nil, &instr.LineError{
					Line: lineNumber,
					Text: line,
					Err:  instr.ErrInvalidOperand,
				}
			}

			if _, dup := p.Labels[label]; !dup {
				p.Labels[label] = len(p.Insts)
			}
		}

		p.Insts = append(p.Insts, inst)
	}

	if !headerSeen {
		return nil, &instr.LineError{Line: lastLine, Err: ErrEmptyCode}
	}

	return p, nil
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, '#'); i >= 0 {
		line = line[:i]
	}

	return strings.TrimSpace(line)
}

// Len is the number of instructions.
func (p *Program) Len() int {
	return len(p.Insts)
}

// Line is the source line of the instruction at pc, or -1 when pc is
// outside the program.
func (p *Program) Line(pc int) int {
	if pc < 0 || pc >= len(p.Insts) {
		return -1
	}

	return p.Insts[pc].Line
}
