package instr

import (
	"fmt"
	"strconv"
	"strings"
)

// DataType is the dynamic type of a value.
type DataType uint8

// The data types of the target code. TypeNone marks the absence of a value.
const (
	TypeNone DataType = iota
	TypeBool
	TypeInt
	TypeFloat
	TypeString
)

var dataTypeNames = [...]string{
	TypeNone:   "",
	TypeBool:   "bool",
	TypeInt:    "int",
	TypeFloat:  "float",
	TypeString: "string",
}

func (t DataType) String() string {
	if int(t) < len(dataTypeNames) {
		return dataTypeNames[t]
	}

	return fmt.Sprintf("DataType(%d)", t)
}

// ParseDataType resolves a type name, ignoring case.
func ParseDataType(name string) (DataType, bool) {
	switch strings.ToLower(name) {
	case "bool":
		return TypeBool, true
	case "int":
		return TypeInt, true
	case "float":
		return TypeFloat, true
	case "string":
		return TypeString, true
	}

	return TypeNone, false
}

// Value is a typed runtime value. The zero Value has TypeNone.
type Value struct {
	Type DataType

	b bool
	i int64
	f float64
	s string
}

// Bool creates a bool value.
func Bool(b bool) Value { return Value{Type: TypeBool, b: b} }

// Int creates an int value.
func Int(i int64) Value { return Value{Type: TypeInt, i: i} }

// Float creates a float value.
func Float(f float64) Value { return Value{Type: TypeFloat, f: f} }

// String creates a string value.
func String(s string) Value { return Value{Type: TypeString, s: s} }

// Zero returns the zero value of the given type.
func Zero(t DataType) Value {
	return Value{Type: t}
}

// AsBool returns the payload of a bool value.
func (v Value) AsBool() bool { return v.b }

// AsInt returns the payload of an int value.
func (v Value) AsInt() int64 { return v.i }

// AsFloat returns the payload of a float value.
func (v Value) AsFloat() float64 { return v.f }

// AsString returns the payload of a string value.
func (v Value) AsString() string { return v.s }

// IsNone reports whether the value carries no data.
func (v Value) IsNone() bool { return v.Type == TypeNone }

// Equal compares two values of the same type. The second result is false
// when the types do not match.
func (v Value) Equal(o Value) (equal bool, ok bool) {
	if v.Type != o.Type || v.Type == TypeNone {
		return false, false
	}

	switch v.Type {
	case TypeBool:
		return v.b == o.b, true
	case TypeInt:
		return v.i == o.i, true
	case TypeFloat:
		return v.f == o.f, true
	case TypeString:
		return v.s == o.s, true
	}

	return false, false
}

// Less orders two values of the same type. Strings compare by code points
// and false orders before true.
func (v Value) Less(o Value) (less bool, ok bool) {
	if v.Type != o.Type || v.Type == TypeNone {
		return false, false
	}

	switch v.Type {
	case TypeBool:
		return !v.b && o.b, true
	case TypeInt:
		return v.i < o.i, true
	case TypeFloat:
		return v.f < o.f, true
	case TypeString:
		return v.s < o.s, true
	}

	return false, false
}

// String renders the value the way WRITE prints it.
func (v Value) String() string {
	switch v.Type {
	case TypeBool:
		if v.b {
			return "true"
		}
		return "false"
	case TypeInt:
		return strconv.FormatInt(v.i, 10)
	case TypeFloat:
		return strconv.FormatFloat(v.f, 'g', 6, 64)
	case TypeString:
		return v.s
	}

	return ""
}

// Literal renders the value in the constant operand syntax, e.g. int@5.
func (v Value) Literal() string {
	if v.Type == TypeNone {
		return "<undefined>"
	}

	if v.Type == TypeString {
		return "string@" + EscapeString(v.s)
	}

	return v.Type.String() + "@" + v.String()
}

// EscapeString encodes whitespace, backslash, hash and control characters
// with the \ddd decimal escape.
func EscapeString(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r <= 32 || r == '#' || r == '\\' {
			fmt.Fprintf(&b, "\\%03d", r)
			continue
		}
		b.WriteRune(r)
	}

	return b.String()
}
