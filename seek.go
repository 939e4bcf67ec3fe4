package keyset

import (
	"fmt"
	"strings"
)

// SeekBuilder compiles the condition selecting the rows strictly before or
// after a reference point of an ordering.
type SeekBuilder struct {
	// WrapTopLevel ANDs the compiled condition with the non-strict range
	// condition on the first column. The extra condition is implied by the
	// rest, but lets the planner use an index range scan on that column.
	WrapTopLevel bool
}

// Build compiles the seek condition. values holds the reference point's value
// for each column, in column order. A non-strict condition also matches the
// reference point itself.
//
// For columns c0..cn (cn unique) the condition is the lexicographic
// comparison
//
//	side(c0) OR (eq(c0) AND (side(c1) OR (eq(c1) AND ... side(cn))))
//
// where side(ci) compares strictly except for cn, which honours strict.
func (b SeekBuilder) Build(columns []*Column, values []any, side Side, strict bool) (Expr, error) {
	p, err := b.build(columns, values, side, strict)
	if err != nil {
		return Expr{}, err
	}

	return p.toExpr(), nil
}

func (b SeekBuilder) build(columns []*Column, values []any, side Side, strict bool) (tPredicate, error) {
	if len(columns) == 0 {
		return tPredicate{}, fmt.Errorf("%w: no columns to seek by", ErrInvalidColumnSpec)
	}
	if len(columns) != len(values) {
		return tPredicate{}, fmt.Errorf("seek values mismatch: %d columns, %d values", len(columns), len(values))
	}
	if !side.Valid() {
		return tPredicate{}, fmt.Errorf("invalid seek side '%s'", side)
	}

	last := len(columns) - 1
	acc := sideTest(columns[last], values[last], side, strict)
	for i := last - 1; i >= 0; i-- {
		acc = or(
			sideTest(columns[i], values[i], side, true),
			and(eqTest(columns[i], values[i]), acc),
		)
	}

	if !b.WrapTopLevel || last == 0 || acc.kind != predicateOr {
		return acc, nil
	}

	top := columns[0]
	if top.domain != nil || top.unique {
		return acc, nil
	}

	strictTest := sideTest(top, values[0], side, true)
	looseTest := sideTest(top, values[0], side, false)
	if strictTest.isConstant() || looseTest.isConstant() {
		return acc, nil
	}

	return and(looseTest, acc), nil
}

// nullsOnSide reports whether the NULL group of col lies at the far end of
// side, i.e. after every non-NULL value when seeking after.
func nullsOnSide(col *Column, side Side) bool {
	if side == SideAfter {
		return col.nulls == NullsLast
	}

	return col.nulls == NullsFirst
}

// sideTest matches rows whose col value lies on side of value.
func sideTest(col *Column, value any, side Side, strict bool) tPredicate {
	value = normalizeValue(value)
	expr := col.Expression()

	if col.domain != nil {
		return domainSideTest(col, value, side, strict)
	}

	if value == nil {
		return nullSideTest(col, side, strict)
	}

	cmp := term(fmt.Sprintf("%s %s ?", expr, seekOperator(col.direction, side, strict)), value)
	if col.nullable && nullsOnSide(col, side) {
		return or(cmp, term(expr+" IS NULL"))
	}

	return cmp
}

// nullSideTest is the side test of a NULL reference value. NULLs form one tie
// group at one end of the order.
func nullSideTest(col *Column, side Side, strict bool) tPredicate {
	expr := col.Expression()

	if nullsOnSide(col, side) {
		if strict {
			return _predicateFalse
		}
		return term(expr + " IS NULL")
	}

	if strict {
		return term(expr + " IS NOT NULL")
	}
	return _predicateTrue
}

// domainSideTest matches the domain values on side of value. A nullable
// column whose domain lacks nil keeps its NULLs as an implicit group at the
// column's nulls position.
func domainSideTest(col *Column, value any, side Side, strict bool) tPredicate {
	expr := col.Expression()
	implicitNulls := col.nullable && !containsNil(col.domain)

	if implicitNulls && value == nil {
		return nullSideTest(col, side, strict)
	}

	values := col.EnumSide(value, side, strict)
	if !implicitNulls {
		switch len(values) {
		case 0:
			return _predicateFalse
		case len(col.domain):
			return _predicateTrue
		default:
			return inTest(expr, values)
		}
	}

	if !nullsOnSide(col, side) {
		return inTest(expr, values)
	}
	if len(values) == len(col.domain) {
		return _predicateTrue
	}

	return or(inTest(expr, values), term(expr+" IS NULL"))
}

// eqTest matches rows tied with value on col.
func eqTest(col *Column, value any) tPredicate {
	value = normalizeValue(value)
	expr := col.Expression()

	if value == nil {
		return term(expr + " IS NULL")
	}

	return term(fmt.Sprintf("%s %s ?", expr, operatorEq), value)
}

// inTest matches rows whose value is one of values; nil matches NULL.
func inTest(expr string, values []any) tPredicate {
	nonNil := make([]any, 0, len(values))
	withNull := false
	for _, v := range values {
		if v = normalizeValue(v); v == nil {
			withNull = true
			continue
		}
		nonNil = append(nonNil, v)
	}

	var p tPredicate
	switch len(nonNil) {
	case 0:
		p = _predicateFalse
	case 1:
		p = term(fmt.Sprintf("%s %s ?", expr, operatorEq), nonNil[0])
	default:
		placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(nonNil)), ", ")
		p = term(fmt.Sprintf("%s IN (%s)", expr, placeholders), nonNil...)
	}

	if withNull {
		return or(p, term(expr+" IS NULL"))
	}

	return p
}
