package verify

import (
	"fmt"

	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/instr"
)

// RunLint performs static lint checks on a loaded program.
// STRUCT issues are operand kinds that would fail at run time and problems
// with the label table. FLOW issues are code the program can never reach
// and labels nothing jumps to.
// Returns a list of issues found, or empty list if no issues.
func RunLint(p *core.Program) []Issue {
	var issues []Issue

	issues = append(issues, checkOperands(p)...)
	issues = append(issues, checkLabels(p)...)
	issues = append(issues, checkUnusedLabels(p)...)
	issues = append(issues, checkUnreachable(p)...)

	return issues
}

func checkOperands(p *core.Program) []Issue {
	var issues []Issue

	for opID, inst := range p.Insts {
		signature := signatures[inst.OpCode]

		for i, class := range []byte(signature) {
			operand := inst.Operand(i)
			if operandClass(class).accepts(operand) {
				continue
			}

			issues = append(issues, Issue{
				Type: IssueStruct,
				Line: inst.Line,
				OpID: opID,
				Message: fmt.Sprintf("%s operand %d must be a %s, got %s %s",
					inst.OpCode, i+1, operandClass(class), operand.Kind, operand),
				Details: map[string]interface{}{
					"opcode":   inst.OpCode.String(),
					"position": i + 1,
					"expected": operandClass(class).String(),
				},
			})
		}
	}

	return issues
}

func checkLabels(p *core.Program) []Issue {
	var issues []Issue

	for opID, inst := range p.Insts {
		label, ok := inst.Operand(0).LabelName()
		if !ok {
			continue
		}

		switch {
		case inst.OpCode == instr.OpLabel:
			first := p.Labels[label]
			if first == opID {
				continue
			}

			issues = append(issues, Issue{
				Type: IssueStruct,
				Line: inst.Line,
				OpID: opID,
				Message: fmt.Sprintf("label %q redefined, first defined on line %d",
					label, p.Line(first)),
				Details: map[string]interface{}{
					"label":      label,
					"first_line": p.Line(first),
				},
			})
		case inst.OpCode.IsJump():
			if _, defined := p.Labels[label]; defined {
				continue
			}

			issues = append(issues, Issue{
				Type:    IssueStruct,
				Line:    inst.Line,
				OpID:    opID,
				Message: fmt.Sprintf("%s to undefined label %q", inst.OpCode, label),
				Details: map[string]interface{}{"label": label},
			})
		}
	}

	return issues
}

func checkUnusedLabels(p *core.Program) []Issue {
	referenced := make(map[string]bool)

	for _, inst := range p.Insts {
		if !inst.OpCode.IsJump() {
			continue
		}

		if label, ok := inst.Operand(0).LabelName(); ok {
			referenced[label] = true
		}
	}

	var issues []Issue

	for opID, inst := range p.Insts {
		if inst.OpCode != instr.OpLabel {
			continue
		}

		label, ok := inst.Operand(0).LabelName()
		if !ok || referenced[label] || p.Labels[label] != opID {
			continue
		}

		issues = append(issues, Issue{
			Type:    IssueFlow,
			Line:    inst.Line,
			OpID:    opID,
			Message: fmt.Sprintf("label %q is never used", label),
			Details: map[string]interface{}{"label": label},
		})
	}

	return issues
}

// checkUnreachable reports the first instruction of every run of code that
// follows an unconditional transfer and precedes the next label.
func checkUnreachable(p *core.Program) []Issue {
	var issues []Issue

	dead, reported := false, false
	transferLine := -1

	for opID, inst := range p.Insts {
		if inst.OpCode == instr.OpLabel {
			dead = false
			continue
		}

		if dead {
			if !reported {
				issues = append(issues, Issue{
					Type:    IssueFlow,
					Line:    inst.Line,
					OpID:    opID,
					Message: fmt.Sprintf("%s is unreachable", inst.OpCode),
					Details: map[string]interface{}{"after_line": transferLine},
				})
				reported = true
			}

			continue
		}

		if inst.OpCode == instr.OpJump || inst.OpCode == instr.OpReturn {
			dead, reported = true, false
			transferLine = inst.Line
		}
	}

	return issues
}
