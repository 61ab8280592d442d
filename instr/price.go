package instr

// OperandAccess is the way an instruction touches an operand.
type OperandAccess uint8

// Operand access kinds.
const (
	AccessConstant OperandAccess = iota
	AccessStack
	AccessVariable
)

// Operand cost classes of the benchmark.
const (
	PriceConstant = 1
	PriceStack    = 2
	PriceVariable = 4
)

// Price is the operand cost class of the access kind.
func (a OperandAccess) Price() int {
	switch a {
	case AccessConstant:
		return PriceConstant
	case AccessStack:
		return PriceStack
	case AccessVariable:
		return PriceVariable
	}

	return 0
}
