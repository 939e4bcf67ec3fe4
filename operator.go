package keyset

import "fmt"

// Operator defines a comparison operator used in seek conditions.
type Operator string

const (
	OperatorGT  Operator = ">"
	OperatorLT  Operator = "<"
	OperatorGTE Operator = ">="
	OperatorLTE Operator = "<="

	// operatorEq is only used for tie-break conditions.
	operatorEq Operator = "="
)

func (o Operator) Valid() bool {
	switch o {
	case OperatorGT, OperatorLT, OperatorGTE, OperatorLTE:
		return true
	default:
		return false
	}
}

// ForOrdering returns the direction in which rows matching the operator come
// after the compared value.
func (o Operator) ForOrdering() Direction {
	switch o {
	case OperatorGT, OperatorGTE:
		return DirectionASC
	case OperatorLT, OperatorLTE:
		return DirectionDESC
	default:
		panic(fmt.Errorf("cannot map operator '%s' to ordering", o))
	}
}

// Inclusive returns the non-strict form of a strict operator.
func (o Operator) Inclusive() Operator {
	switch o {
	case OperatorGT:
		return OperatorGTE
	case OperatorLT:
		return OperatorLTE
	default:
		return o
	}
}

// seekOperator picks the comparison for rows on the given side of a value in
// direction dir: ">" for after+ASC and before+DESC, "<" otherwise.
func seekOperator(dir Direction, side Side, strict bool) Operator {
	op := dir.ForOperator()
	if side == SideBefore {
		op = dir.Reverse().ForOperator()
	}

	if !strict {
		op = op.Inclusive()
	}

	return op
}
