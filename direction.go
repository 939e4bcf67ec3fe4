package keyset

import (
	"fmt"
	"strings"
)

// Direction defines the sort direction of a column.
type Direction string

const (
	DirectionASC  Direction = "ASC"
	DirectionDESC Direction = "DESC"
)

var _directions = []Direction{DirectionASC, DirectionDESC}

func (d Direction) Valid() bool {
	return d == DirectionASC || d == DirectionDESC
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	switch d {
	case DirectionASC:
		return DirectionDESC
	case DirectionDESC:
		return DirectionASC
	default:
		panic(fmt.Errorf("cannot reverse direction '%s'", d))
	}
}

// ForOperator returns the operator selecting rows that follow a value in
// this direction.
func (d Direction) ForOperator() Operator {
	switch d {
	case DirectionASC:
		return OperatorGT
	case DirectionDESC:
		return OperatorLT
	default:
		panic(fmt.Errorf("cannot map direction '%s' to operator", d))
	}
}

// ParseDirection accepts a Direction or a case-insensitive "asc"/"desc" string.
func ParseDirection(token any) (Direction, error) {
	var raw string
	switch v := token.(type) {
	case Direction:
		raw = string(v)
	case string:
		raw = v
	default:
		return "", fmt.Errorf("%w: must be in %s, is %#v", ErrInvalidDirection, legalTokens(_directions), token)
	}

	d := Direction(strings.ToUpper(strings.TrimSpace(raw)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: must be in %s, is %q", ErrInvalidDirection, legalTokens(_directions), raw)
	}

	return d, nil
}

// NullsPosition defines where NULL values are placed in an ordering.
type NullsPosition string

const (
	NullsFirst NullsPosition = "FIRST"
	NullsLast  NullsPosition = "LAST"
)

var _nullsPositions = []NullsPosition{NullsFirst, NullsLast}

func (n NullsPosition) Valid() bool {
	return n == NullsFirst || n == NullsLast
}

// Reverse returns the opposite position.
func (n NullsPosition) Reverse() NullsPosition {
	switch n {
	case NullsFirst:
		return NullsLast
	case NullsLast:
		return NullsFirst
	default:
		panic(fmt.Errorf("cannot reverse nulls position '%s'", n))
	}
}

// ParseNullsPosition accepts a NullsPosition or a case-insensitive "first"/"last" string.
func ParseNullsPosition(token any) (NullsPosition, error) {
	var raw string
	switch v := token.(type) {
	case NullsPosition:
		raw = string(v)
	case string:
		raw = v
	default:
		return "", fmt.Errorf("%w: must be in %s, is %#v", ErrInvalidNullsPosition, legalTokens(_nullsPositions), token)
	}

	n := NullsPosition(strings.ToUpper(strings.TrimSpace(raw)))
	if !n.Valid() {
		return "", fmt.Errorf("%w: must be in %s, is %q", ErrInvalidNullsPosition, legalTokens(_nullsPositions), raw)
	}

	return n, nil
}

// Side selects the rows before or after a reference point.
type Side string

const (
	SideBefore Side = "before"
	SideAfter  Side = "after"
)

func (s Side) Valid() bool {
	return s == SideBefore || s == SideAfter
}

func legalTokens[T ~string](tokens []T) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		parts = append(parts, fmt.Sprintf("%q", strings.ToLower(string(t))))
	}

	return strings.Join(parts, ", ")
}
