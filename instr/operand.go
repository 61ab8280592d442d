package instr

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// OperandKind tells which variant of an operand is populated.
type OperandKind uint8

// Operand kinds.
const (
	KindConstant OperandKind = iota + 1
	KindVariable
	KindDataType
	KindLabel
)

func (k OperandKind) String() string {
	switch k {
	case KindConstant:
		return "constant"
	case KindVariable:
		return "variable"
	case KindDataType:
		return "type"
	case KindLabel:
		return "label"
	}

	return fmt.Sprintf("OperandKind(%d)", k)
}

// Frame names a variable scope.
type Frame uint8

// Frames.
const (
	FrameGlobal Frame = iota + 1
	FrameLocal
	FrameTemporary
)

func (f Frame) String() string {
	switch f {
	case FrameGlobal:
		return "GF"
	case FrameLocal:
		return "LF"
	case FrameTemporary:
		return "TF"
	}

	return fmt.Sprintf("Frame(%d)", f)
}

const identifier = `[A-Za-z_\-$&%*!?][A-Za-z0-9_\-$&%*!?]*`

var (
	constantRE = regexp.MustCompile(`^(?i:(bool|int|string|float))@(.*)$`)
	variableRE = regexp.MustCompile(`^(?i:([GLT]F))@(` + identifier + `)$`)
	dataTypeRE = regexp.MustCompile(`^(?i:int|string|bool|float)$`)
	labelRE    = regexp.MustCompile(`^` + identifier + `$`)
)

// Operand is one argument of an instruction. Exactly one variant, selected
// by Kind, is populated.
type Operand struct {
	Kind OperandKind

	// constant
	Value Value

	// variable
	Frame Frame
	Name  string

	// data type
	DataType DataType

	// label
	Label string
}

// Constant creates a constant operand.
func Constant(v Value) Operand {
	return Operand{Kind: KindConstant, Value: v}
}

// Variable creates a variable operand.
func Variable(frame Frame, name string) Operand {
	return Operand{Kind: KindVariable, Frame: frame, Name: name}
}

// ParseOperand classifies a token. The constant grammar is tried first,
// then the variable grammar, then a bare type name and finally a label.
func ParseOperand(token string) (Operand, error) {
	if m := constantRE.FindStringSubmatch(token); m != nil {
		v, err := parseConstant(strings.ToLower(m[1]), m[2])
		if err != nil {
			return Operand{}, fmt.Errorf("%w %q: %v", ErrInvalidOperand, token, err)
		}

		return Constant(v), nil
	}

	if m := variableRE.FindStringSubmatch(token); m != nil {
		return Variable(parseFrame(m[1]), m[2]), nil
	}

	if dataTypeRE.MatchString(token) {
		t, _ := ParseDataType(token)
		return Operand{Kind: KindDataType, DataType: t}, nil
	}

	if labelRE.MatchString(token) {
		return Operand{Kind: KindLabel, Label: token}, nil
	}

	return Operand{}, fmt.Errorf("%w %q", ErrInvalidOperand, token)
}

func parseFrame(tag string) Frame {
	switch strings.ToUpper(tag) {
	case "GF":
		return FrameGlobal
	case "LF":
		return FrameLocal
	default:
		return FrameTemporary
	}
}

func parseConstant(typeName, literal string) (Value, error) {
	switch typeName {
	case "bool":
		switch strings.ToLower(literal) {
		case "true":
			return Bool(true), nil
		case "false":
			return Bool(false), nil
		}

		return Value{}, fmt.Errorf("not a bool literal")
	case "int":
		i, err := strconv.ParseInt(literal, 10, 64)
		if err != nil {
			return Value{}, err
		}

		return Int(i), nil
	case "float":
		// ParseFloat also accepts the hexadecimal form, e.g. 0x1.8p+1.
		f, err := strconv.ParseFloat(literal, 64)
		if err != nil {
			return Value{}, err
		}

		return Float(f), nil
	default:
		s, err := UnescapeString(literal)
		if err != nil {
			return Value{}, err
		}

		return String(s), nil
	}
}

// UnescapeString decodes \ddd decimal escapes into the code point ddd.
func UnescapeString(literal string) (string, error) {
	if !strings.ContainsRune(literal, '\\') {
		return literal, nil
	}

	var b strings.Builder
	runes := []rune(literal)
	for i := 0; i < len(runes); i++ {
		if runes[i] != '\\' {
			b.WriteRune(runes[i])
			continue
		}

		if i+3 >= len(runes) {
			return "", fmt.Errorf("truncated escape at %d", i)
		}

		code := 0
		for _, d := range runes[i+1 : i+4] {
			if d < '0' || d > '9' {
				return "", fmt.Errorf("bad escape at %d", i)
			}
			code = code*10 + int(d-'0')
		}

		b.WriteRune(rune(code))
		i += 3
	}

	return b.String(), nil
}

// String renders the operand in source syntax.
func (o Operand) String() string {
	switch o.Kind {
	case KindConstant:
		return o.Value.Literal()
	case KindVariable:
		return o.Frame.String() + "@" + o.Name
	case KindDataType:
		return o.DataType.String()
	case KindLabel:
		return o.Label
	}

	return "<invalid>"
}

// LabelName returns the operand as a label reference. Bare type names are
// valid label identifiers too.
func (o Operand) LabelName() (string, bool) {
	switch o.Kind {
	case KindLabel:
		return o.Label, true
	case KindDataType:
		return o.DataType.String(), true
	}

	return "", false
}
