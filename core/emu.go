package core

import (
	"fmt"
	"math"
	"unicode/utf8"

	"github.com/sarchlab/tacvm/instr"
)

type instEmulator struct {
}

// RunInst applies one instruction to the state. Every opcode of the
// instruction set has a case; the default case only guards against opcodes
// added to the table without a handler.
func (i instEmulator) RunInst(inst instr.Inst, state *State) error {
	switch op := inst.OpCode; op {
	case instr.OpMove:
		return i.runMove(inst, state)
	case instr.OpDefVar:
		return state.Declare(inst.Operand(0))
	case instr.OpCreateFrame:
		state.CreateFrame()
		return nil
	case instr.OpPushFrame:
		return state.PushFrame()
	case instr.OpPopFrame:
		return state.PopFrame()

	case instr.OpLabel:
		return nil
	case instr.OpJump:
		return i.runJump(inst, state)
	case instr.OpCall:
		return i.runCall(inst, state)
	case instr.OpReturn:
		return state.Return()
	case instr.OpJumpIfEq, instr.OpJumpIfNeq:
		return i.runJumpIf(inst, state, op == instr.OpJumpIfEq)
	case instr.OpJumpIfEqS, instr.OpJumpIfNeqS:
		return i.runJumpIfStack(inst, state, op == instr.OpJumpIfEqS)

	case instr.OpPushS:
		return i.runPushS(inst, state)
	case instr.OpPopS:
		return i.runPopS(inst, state)
	case instr.OpClearS:
		state.ClearStack()
		return nil

	case instr.OpAdd, instr.OpSub, instr.OpMul, instr.OpDiv,
		instr.OpLt, instr.OpGt, instr.OpEq,
		instr.OpAnd, instr.OpOr,
		instr.OpConcat, instr.OpGetChar, instr.OpStri2Int:
		return i.runBinary(inst, state, op)
	case instr.OpAddS, instr.OpSubS, instr.OpMulS, instr.OpDivS,
		instr.OpLtS, instr.OpGtS, instr.OpEqS,
		instr.OpAndS, instr.OpOrS, instr.OpStri2IntS:
		return i.runBinaryStack(state, stackBase[op])

	case instr.OpNot,
		instr.OpInt2Float, instr.OpFloat2Int,
		instr.OpFloat2R2EInt, instr.OpFloat2R2OInt,
		instr.OpInt2Char, instr.OpStrLen:
		return i.runUnary(inst, state, op)
	case instr.OpNotS,
		instr.OpInt2FloatS, instr.OpFloat2IntS,
		instr.OpFloat2R2EIntS, instr.OpFloat2R2OIntS,
		instr.OpInt2CharS:
		return i.runUnaryStack(state, stackBase[op])

	case instr.OpSetChar:
		return i.runSetChar(inst, state)
	case instr.OpType:
		return i.runType(inst, state)

	case instr.OpRead:
		return i.runRead(inst, state)
	case instr.OpWrite:
		return i.runWrite(inst, state)

	case instr.OpBreak:
		RenderState(state.Stderr, state)
		return nil
	case instr.OpDPrint:
		return i.runDPrint(inst, state)
	case instr.OpGroot:
		_, err := fmt.Fprintf(state.Stderr, "Price: %d (%d+%d)\n",
			state.Price(), state.InstructionPrice, state.OperandPrice)
		return err

	default:
		return fmt.Errorf("%w %s", instr.ErrUnknownInstruction, op)
	}
}

// stackBase maps stack-operand opcodes to the opcode computing the same
// result from explicit operands.
var stackBase = map[instr.OpCode]instr.OpCode{
	instr.OpAddS:          instr.OpAdd,
	instr.OpSubS:          instr.OpSub,
	instr.OpMulS:          instr.OpMul,
	instr.OpDivS:          instr.OpDiv,
	instr.OpLtS:           instr.OpLt,
	instr.OpGtS:           instr.OpGt,
	instr.OpEqS:           instr.OpEq,
	instr.OpAndS:          instr.OpAnd,
	instr.OpOrS:           instr.OpOr,
	instr.OpNotS:          instr.OpNot,
	instr.OpStri2IntS:     instr.OpStri2Int,
	instr.OpInt2FloatS:    instr.OpInt2Float,
	instr.OpFloat2IntS:    instr.OpFloat2Int,
	instr.OpFloat2R2EIntS: instr.OpFloat2R2EInt,
	instr.OpFloat2R2OIntS: instr.OpFloat2R2OInt,
	instr.OpInt2CharS:     instr.OpInt2Char,
}

func (i instEmulator) runMove(inst instr.Inst, state *State) error {
	v, err := state.Get(inst.Operand(1))
	if err != nil {
		return err
	}

	return state.Set(inst.Operand(0), v)
}

func (i instEmulator) label(op instr.Operand) (string, error) {
	label, ok := op.LabelName()
	if !ok {
		return "", fmt.Errorf("%w: expected label, got %s %s",
			instr.ErrInvalidOperand, op.Kind, op)
	}

	return label, nil
}

func (i instEmulator) runJump(inst instr.Inst, state *State) error {
	label, err := i.label(inst.Operand(0))
	if err != nil {
		return i.asTypeError(err)
	}

	return state.Jump(label)
}

func (i instEmulator) runCall(inst instr.Inst, state *State) error {
	label, err := i.label(inst.Operand(0))
	if err != nil {
		return i.asTypeError(err)
	}

	return state.Call(label)
}

func (i instEmulator) asTypeError(err error) error {
	return fmt.Errorf("%w: %v", ErrInvalidOperandType, err)
}

func (i instEmulator) runJumpIf(inst instr.Inst, state *State, positive bool) error {
	a, err := state.Get(inst.Operand(1))
	if err != nil {
		return err
	}

	b, err := state.Get(inst.Operand(2))
	if err != nil {
		return err
	}

	return i.jumpIf(inst, state, a, b, positive)
}

func (i instEmulator) runJumpIfStack(inst instr.Inst, state *State, positive bool) error {
	b, err := state.Pop()
	if err != nil {
		return err
	}

	a, err := state.Pop()
	if err != nil {
		return err
	}

	return i.jumpIf(inst, state, a, b, positive)
}

func (i instEmulator) jumpIf(
	inst instr.Inst,
	state *State,
	a, b instr.Value,
	positive bool,
) error {
	label, err := i.label(inst.Operand(0))
	if err != nil {
		return i.asTypeError(err)
	}

	if _, ok := state.Labels[label]; !ok {
		return fmt.Errorf("%w %q", ErrUnknownLabel, label)
	}

	equal, ok := a.Equal(b)
	if !ok {
		return fmt.Errorf("%w: cannot compare %s and %s",
			ErrInvalidOperandType, a.Literal(), b.Literal())
	}

	if equal != positive {
		return nil
	}

	return state.Jump(label)
}

func (i instEmulator) runPushS(inst instr.Inst, state *State) error {
	v, err := state.Get(inst.Operand(0))
	if err != nil {
		return err
	}

	state.Push(v)

	return nil
}

func (i instEmulator) runPopS(inst instr.Inst, state *State) error {
	v, err := state.Pop()
	if err != nil {
		return err
	}

	return state.Set(inst.Operand(0), v)
}

func (i instEmulator) runBinary(inst instr.Inst, state *State, op instr.OpCode) error {
	a, err := state.Get(inst.Operand(1))
	if err != nil {
		return err
	}

	b, err := state.Get(inst.Operand(2))
	if err != nil {
		return err
	}

	result, err := binary(op, a, b)
	if err != nil {
		return err
	}

	return state.Set(inst.Operand(0), result)
}

func (i instEmulator) runBinaryStack(state *State, op instr.OpCode) error {
	b, err := state.Pop()
	if err != nil {
		return err
	}

	a, err := state.Pop()
	if err != nil {
		return err
	}

	result, err := binary(op, a, b)
	if err != nil {
		return err
	}

	state.Push(result)

	return nil
}

func (i instEmulator) runUnary(inst instr.Inst, state *State, op instr.OpCode) error {
	a, err := state.Get(inst.Operand(1))
	if err != nil {
		return err
	}

	result, err := unary(op, a)
	if err != nil {
		return err
	}

	return state.Set(inst.Operand(0), result)
}

func (i instEmulator) runUnaryStack(state *State, op instr.OpCode) error {
	a, err := state.Pop()
	if err != nil {
		return err
	}

	result, err := unary(op, a)
	if err != nil {
		return err
	}

	state.Push(result)

	return nil
}

func (i instEmulator) runSetChar(inst instr.Inst, state *State) error {
	target, err := state.Get(inst.Operand(0))
	if err != nil {
		return err
	}

	index, err := state.Get(inst.Operand(1))
	if err != nil {
		return err
	}

	source, err := state.Get(inst.Operand(2))
	if err != nil {
		return err
	}

	if target.Type != instr.TypeString ||
		index.Type != instr.TypeInt ||
		source.Type != instr.TypeString {
		return fmt.Errorf("%w: SETCHAR needs string, int, string", ErrInvalidOperandType)
	}

	runes := []rune(target.AsString())
	replacement := []rune(source.AsString())
	at := index.AsInt()
	if at < 0 || at >= int64(len(runes)) || len(replacement) == 0 {
		return fmt.Errorf("%w: index %d of %q", ErrStringIndex, at, target.AsString())
	}

	runes[at] = replacement[0]

	return state.Set(inst.Operand(0), instr.String(string(runes)))
}

func (i instEmulator) runType(inst instr.Inst, state *State) error {
	src := inst.Operand(1)

	var name string
	if src.Kind == instr.KindVariable {
		v, err := state.Lookup(src)
		if err != nil {
			return err
		}

		if v.Defined {
			name = v.Value.Type.String()
		}
	} else {
		v, err := state.Get(src)
		if err != nil {
			return err
		}

		name = v.Type.String()
	}

	return state.Set(inst.Operand(0), instr.String(name))
}

func (i instEmulator) runRead(inst instr.Inst, state *State) error {
	witness := inst.Operand(1)
	if witness.Kind != instr.KindDataType {
		return fmt.Errorf("%w %s", ErrUnknownDataType, witness)
	}

	line, _ := state.ReadLine()

	return state.Set(inst.Operand(0), parseInput(line, witness.DataType))
}

func (i instEmulator) runWrite(inst instr.Inst, state *State) error {
	v, err := state.Get(inst.Operand(0))
	if err != nil {
		return err
	}

	return state.Write(v)
}

func (i instEmulator) runDPrint(inst instr.Inst, state *State) error {
	v, err := state.Get(inst.Operand(0))
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(state.Stderr, v.String())

	return err
}

func typeMismatch(op instr.OpCode, values ...instr.Value) error {
	literals := make([]string, 0, len(values))
	for _, v := range values {
		literals = append(literals, v.Literal())
	}

	return fmt.Errorf("%w: %s %v", ErrInvalidOperandType, op, literals)
}

func binary(op instr.OpCode, a, b instr.Value) (instr.Value, error) {
	switch op {
	case instr.OpAdd, instr.OpSub, instr.OpMul, instr.OpDiv:
		return arithmetic(op, a, b)
	case instr.OpLt, instr.OpGt, instr.OpEq:
		return relational(op, a, b)
	case instr.OpAnd, instr.OpOr:
		if a.Type != instr.TypeBool || b.Type != instr.TypeBool {
			return instr.Value{}, typeMismatch(op, a, b)
		}

		if op == instr.OpAnd {
			return instr.Bool(a.AsBool() && b.AsBool()), nil
		}

		return instr.Bool(a.AsBool() || b.AsBool()), nil
	case instr.OpConcat:
		if a.Type != instr.TypeString || b.Type != instr.TypeString {
			return instr.Value{}, typeMismatch(op, a, b)
		}

		return instr.String(a.AsString() + b.AsString()), nil
	case instr.OpGetChar:
		r, err := charAt(op, a, b)
		if err != nil {
			return instr.Value{}, err
		}

		return instr.String(string(r)), nil
	case instr.OpStri2Int:
		r, err := charAt(op, a, b)
		if err != nil {
			return instr.Value{}, err
		}

		return instr.Int(int64(r)), nil
	}

	return instr.Value{}, fmt.Errorf("%w %s", instr.ErrUnknownInstruction, op)
}

func arithmetic(op instr.OpCode, a, b instr.Value) (instr.Value, error) {
	switch {
	case a.Type == instr.TypeInt && b.Type == instr.TypeInt:
		x, y := a.AsInt(), b.AsInt()
		switch op {
		case instr.OpAdd:
			return instr.Int(x + y), nil
		case instr.OpSub:
			return instr.Int(x - y), nil
		case instr.OpMul:
			return instr.Int(x * y), nil
		default:
			if y == 0 {
				return instr.Value{}, ErrZeroDivision
			}

			return instr.Float(float64(x) / float64(y)), nil
		}
	case a.Type == instr.TypeFloat && b.Type == instr.TypeFloat:
		x, y := a.AsFloat(), b.AsFloat()
		switch op {
		case instr.OpAdd:
			return instr.Float(x + y), nil
		case instr.OpSub:
			return instr.Float(x - y), nil
		case instr.OpMul:
			return instr.Float(x * y), nil
		default:
			if y == 0 {
				return instr.Value{}, ErrZeroDivision
			}

			return instr.Float(x / y), nil
		}
	}

	return instr.Value{}, typeMismatch(op, a, b)
}

func relational(op instr.OpCode, a, b instr.Value) (instr.Value, error) {
	var (
		result bool
		ok     bool
	)

	switch op {
	case instr.OpLt:
		result, ok = a.Less(b)
	case instr.OpGt:
		result, ok = b.Less(a)
	default:
		result, ok = a.Equal(b)
	}

	if !ok {
		return instr.Value{}, typeMismatch(op, a, b)
	}

	return instr.Bool(result), nil
}

func charAt(op instr.OpCode, s, index instr.Value) (rune, error) {
	if s.Type != instr.TypeString || index.Type != instr.TypeInt {
		return 0, typeMismatch(op, s, index)
	}

	runes := []rune(s.AsString())
	at := index.AsInt()
	if at < 0 || at >= int64(len(runes)) {
		return 0, fmt.Errorf("%w: index %d of %q", ErrStringIndex, at, s.AsString())
	}

	return runes[at], nil
}

func unary(op instr.OpCode, a instr.Value) (instr.Value, error) {
	switch op {
	case instr.OpNot:
		if a.Type != instr.TypeBool {
			return instr.Value{}, typeMismatch(op, a)
		}

		return instr.Bool(!a.AsBool()), nil
	case instr.OpStrLen:
		if a.Type != instr.TypeString {
			return instr.Value{}, typeMismatch(op, a)
		}

		return instr.Int(int64(utf8.RuneCountInString(a.AsString()))), nil
	case instr.OpInt2Float:
		if a.Type != instr.TypeInt {
			return instr.Value{}, typeMismatch(op, a)
		}

		return instr.Float(float64(a.AsInt())), nil
	case instr.OpInt2Char:
		if a.Type != instr.TypeInt {
			return instr.Value{}, typeMismatch(op, a)
		}

		r := a.AsInt()
		if r < 0 || r > utf8.MaxRune || !utf8.ValidRune(rune(r)) {
			return instr.Value{}, fmt.Errorf("%w: %d is not a character", ErrStringIndex, r)
		}

		return instr.String(string(rune(r))), nil
	case instr.OpFloat2Int, instr.OpFloat2R2EInt, instr.OpFloat2R2OInt:
		if a.Type != instr.TypeFloat {
			return instr.Value{}, typeMismatch(op, a)
		}

		f := a.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return instr.Value{}, typeMismatch(op, a)
		}

		switch op {
		case instr.OpFloat2R2EInt:
			f = RoundHalfToEven(f)
		case instr.OpFloat2R2OInt:
			f = RoundHalfToOdd(f)
		}

		return instr.Int(int64(f)), nil
	}

	return instr.Value{}, fmt.Errorf("%w %s", instr.ErrUnknownInstruction, op)
}

// RoundHalfToEven rounds to the nearest integer, resolving exact halves to
// the even neighbour.
func RoundHalfToEven(f float64) float64 {
	return math.RoundToEven(f)
}

// RoundHalfToOdd rounds to the nearest integer, resolving exact halves to
// the odd neighbour.
func RoundHalfToOdd(f float64) float64 {
	floor := math.Floor(f)
	if f-floor != 0.5 {
		return math.Round(f)
	}

	if math.Mod(floor, 2) != 0 {
		return floor
	}

	return floor + 1
}
