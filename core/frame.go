package core

import (
	"sort"

	"github.com/sarchlab/tacvm/instr"
)

// Variable is a declared slot in a frame. Defined stays false until the
// first assignment.
type Variable struct {
	Name    string
	Value   instr.Value
	Defined bool
}

// VarFrame maps variable names to slots. A name missing from the map is not
// declared.
type VarFrame struct {
	vars map[string]*Variable
}

// NewVarFrame creates an empty frame.
func NewVarFrame() *VarFrame {
	return &VarFrame{vars: make(map[string]*Variable)}
}

// Declare creates the slot, or resets an existing one to unassigned.
func (f *VarFrame) Declare(name string) {
	if v, ok := f.vars[name]; ok {
		v.Value = instr.Value{}
		v.Defined = false
		return
	}

	f.vars[name] = &Variable{Name: name}
}

// Lookup returns the slot of a declared variable.
func (f *VarFrame) Lookup(name string) (*Variable, bool) {
	v, ok := f.vars[name]
	return v, ok
}

// Len is the number of declared variables.
func (f *VarFrame) Len() int {
	return len(f.vars)
}

// Variables lists the slots sorted by name.
func (f *VarFrame) Variables() []*Variable {
	vars := make([]*Variable, 0, len(f.vars))
	for _, v := range f.vars {
		vars = append(vars, v)
	}

	sort.Slice(vars, func(i, j int) bool { return vars[i].Name < vars[j].Name })

	return vars
}
