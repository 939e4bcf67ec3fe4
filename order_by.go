package keyset

import (
	"strings"

	"github.com/samber/lo"
)

// BuildOrderBy builds the ORDER BY list for columns, or for their exact
// reverse. Domain values are bound as parameters.
//
// Example, for [pinned [true, false]], [priority ["high", "low"]], [id desc]:
//
//	"posts"."pinned" DESC, "posts"."priority" = ? DESC, "posts"."priority" = ? DESC, "posts"."id" DESC
func BuildOrderBy(columns []*Column, reverse bool) Expr {
	clauses := make([]string, 0, len(columns))
	vars := make([]any, 0)

	for _, col := range columns {
		clause, clauseVars := orderByColumnClause(col, reverse)
		clauses = append(clauses, clause)
		vars = append(vars, clauseVars...)
	}

	return Expr{SQL: strings.Join(clauses, ", "), Vars: vars}
}

func orderByColumnClause(col *Column, reverse bool) (string, []any) {
	if col.domain == nil {
		return orderByRay(col, col.directionFor(reverse), col.nullsFor(reverse)), nil
	}

	if dir, ok := boolDomainDirection(col); ok {
		return orderByRay(col, directionFor(dir, reverse), col.nullsFor(reverse)), nil
	}

	return orderByEnum(col, reverse)
}

// orderByRay orders by the column value itself. A leading "IS NULL" clause is
// added when the requested NULL placement differs from what the engine does
// for this direction.
func orderByRay(col *Column, dir Direction, nulls NullsPosition) string {
	expr := col.Expression()
	clause := expr + " " + string(dir)

	if col.nullable && nulls != col.dialect.NullsDefault(dir) {
		return orderByNulls(expr, nulls) + ", " + clause
	}

	return clause
}

// orderByNulls sorts on "expr IS NULL": DESC puts NULLs first.
func orderByNulls(expr string, nulls NullsPosition) string {
	if nulls == NullsFirst {
		return expr + " IS NULL " + string(DirectionDESC)
	}

	return expr + " IS NULL " + string(DirectionASC)
}

// orderByEnum emits one "expr = v" clause per domain value. Rows equal to the
// first traversed value sort first.
func orderByEnum(col *Column, reverse bool) (string, []any) {
	expr := col.Expression()
	dir := col.directionFor(reverse)
	withNulls := containsNil(col.domain)

	clauses := make([]string, 0, len(col.domain)+1)
	vars := make([]any, 0, len(col.domain))

	if !withNulls && col.nullable {
		if nulls := col.nullsFor(reverse); nulls != col.dialect.NullsDefault(dir) {
			clauses = append(clauses, orderByNulls(expr, nulls))
		}
	}

	for _, v := range col.domain {
		v = normalizeValue(v)
		switch {
		case v == nil:
			clauses = append(clauses, expr+" IS NULL "+string(dir))
		case withNulls:
			clauses = append(clauses, expr+" IS NOT NULL AND "+expr+" = ? "+string(dir))
			vars = append(vars, v)
		default:
			clauses = append(clauses, expr+" = ? "+string(dir))
			vars = append(vars, v)
		}
	}

	return strings.Join(clauses, ", "), vars
}

// boolDomainDirection detects domains covering true and false (optionally
// with nil at either end) and returns the plain-column direction yielding
// the same row order. NULL placement is handled by the column's nulls
// position, which a domain with nil already derives.
func boolDomainDirection(col *Column) (Direction, bool) {
	bools := make([]bool, 0, 2)
	nilIdx := -1

	for i, v := range col.domain {
		switch vt := normalizeValue(v).(type) {
		case nil:
			nilIdx = i
		case bool:
			bools = append(bools, vt)
		default:
			return "", false
		}
	}

	if len(bools) != 2 || bools[0] == bools[1] {
		return "", false
	}
	if nilIdx != -1 && nilIdx != 0 && nilIdx != len(col.domain)-1 {
		return "", false
	}

	// DESC walks the domain front to back.
	first := lo.Ternary(col.direction == DirectionDESC, bools[0], bools[1])

	return lo.Ternary(first, DirectionDESC, DirectionASC), true
}

func directionFor(dir Direction, reverse bool) Direction {
	if reverse {
		return dir.Reverse()
	}

	return dir
}
