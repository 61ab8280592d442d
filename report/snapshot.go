package report

import (
	"github.com/sarchlab/tacvm/core"
	"github.com/sarchlab/tacvm/instr"
)

// Value is the portable form of a runtime value. Type is empty for a
// declared variable that holds nothing yet.
type Value struct {
	Type   string  `cbor:"t,omitempty"`
	Bool   bool    `cbor:"b,omitempty"`
	Int    int64   `cbor:"i,omitempty"`
	Float  float64 `cbor:"f,omitempty"`
	String string  `cbor:"s,omitempty"`
}

// Variable is one slot of a frame.
type Variable struct {
	Name  string `cbor:"name"`
	Value Value  `cbor:"value"`
}

// Frame lists the variables of a frame in name order.
type Frame []Variable

// Snapshot is a copy of a state detached from its sinks.
type Snapshot struct {
	GlobalFrame Frame   `cbor:"gf"`
	TempFrame   *Frame  `cbor:"tf,omitempty"`
	LocalFrames []Frame `cbor:"lf,omitempty"`
	DataStack   []Value `cbor:"stack,omitempty"`
	CallStack   []int   `cbor:"calls,omitempty"`

	ProgramCounter   int `cbor:"pc"`
	ProgramLine      int `cbor:"line"`
	Executed         int `cbor:"executed"`
	InstructionPrice int `cbor:"instruction_price"`
	OperandPrice     int `cbor:"operand_price"`
}

// TakeSnapshot copies the observable part of a state.
func TakeSnapshot(state *core.State) *Snapshot {
	s := &Snapshot{
		GlobalFrame:      snapshotFrame(state.GlobalFrame),
		CallStack:        append([]int(nil), state.CallStack...),
		ProgramCounter:   state.ProgramCounter,
		ProgramLine:      state.ProgramLine,
		Executed:         state.ExecutedInstructions,
		InstructionPrice: state.InstructionPrice,
		OperandPrice:     state.OperandPrice,
	}

	if state.TempFrame != nil {
		tf := snapshotFrame(state.TempFrame)
		s.TempFrame = &tf
	}

	for _, f := range state.FrameStack {
		s.LocalFrames = append(s.LocalFrames, snapshotFrame(f))
	}

	for _, v := range state.DataStack {
		s.DataStack = append(s.DataStack, FromValue(v))
	}

	return s
}

func snapshotFrame(f *core.VarFrame) Frame {
	vars := f.Variables()
	frame := make(Frame, 0, len(vars))

	for _, v := range vars {
		sv := Variable{Name: v.Name}
		if v.Defined {
			sv.Value = FromValue(v.Value)
		}
		frame = append(frame, sv)
	}

	return frame
}

// Price is the total cost recorded in the snapshot.
func (s *Snapshot) Price() int {
	return s.InstructionPrice + s.OperandPrice
}

// FromValue converts a runtime value.
func FromValue(v instr.Value) Value {
	pv := Value{Type: v.Type.String()}

	switch v.Type {
	case instr.TypeBool:
		pv.Bool = v.AsBool()
	case instr.TypeInt:
		pv.Int = v.AsInt()
	case instr.TypeFloat:
		pv.Float = v.AsFloat()
	case instr.TypeString:
		pv.String = v.AsString()
	}

	return pv
}

// Value converts back to a runtime value. Unknown type names give the
// undefined value.
func (v Value) Value() instr.Value {
	t, ok := instr.ParseDataType(v.Type)
	if !ok {
		return instr.Value{}
	}

	switch t {
	case instr.TypeBool:
		return instr.Bool(v.Bool)
	case instr.TypeInt:
		return instr.Int(v.Int)
	case instr.TypeFloat:
		return instr.Float(v.Float)
	case instr.TypeString:
		return instr.String(v.String)
	}

	return instr.Value{}
}
