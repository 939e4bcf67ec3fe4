package keyset

import (
	"fmt"
	"strings"
)

type predicateKind int

const (
	predicateTrue predicateKind = iota
	predicateFalse
	predicateTerm
	predicateAnd
	predicateOr
)

// tPredicate is a boolean SQL expression tree. Constants never survive inside
// an AND/OR: and() and or() fold them away, so a rendered predicate is either
// a constant or free of constants.
//
//	or(x0, and(y0, or(x1, and(y1, x2))))
//
// renders as
//
//	x0 OR (y0 AND (x1 OR (y1 AND x2)))
type tPredicate struct {
	kind  predicateKind
	sql   string
	vars  []any
	items []tPredicate
}

var (
	_predicateTrue  = tPredicate{kind: predicateTrue}
	_predicateFalse = tPredicate{kind: predicateFalse}
)

// term is an atomic condition with "?" placeholders.
func term(sql string, vars ...any) tPredicate {
	return tPredicate{kind: predicateTerm, sql: sql, vars: vars}
}

// and joins predicates: TRUE operands are dropped, a FALSE operand makes the
// whole conjunction FALSE.
func and(items ...tPredicate) tPredicate {
	return join(predicateAnd, _predicateTrue, _predicateFalse, items)
}

// or joins predicates: FALSE operands are dropped, a TRUE operand makes the
// whole disjunction TRUE.
func or(items ...tPredicate) tPredicate {
	return join(predicateOr, _predicateFalse, _predicateTrue, items)
}

func join(kind predicateKind, identity, absorbing tPredicate, items []tPredicate) tPredicate {
	operands := make([]tPredicate, 0, len(items))
	for _, item := range items {
		switch item.kind {
		case identity.kind:
			continue
		case absorbing.kind:
			return absorbing
		case kind:
			operands = append(operands, item.items...)
		default:
			operands = append(operands, item)
		}
	}

	switch len(operands) {
	case 0:
		return identity
	case 1:
		return operands[0]
	default:
		return tPredicate{kind: kind, items: operands}
	}
}

func (p tPredicate) isConstant() bool {
	return p.kind == predicateTrue || p.kind == predicateFalse
}

// toSQLClause renders the predicate and collects the placeholder values in
// the order they appear in the text.
//
// Example:
//
//	or(term("id < ?", 10), and(term("id = ?", 10), term("name < ?", "abc")))
//
// Result:
//
//	("id < ? OR (id = ? AND name < ?)", [10, 10, "abc"])
func (p tPredicate) toSQLClause() (string, []any) {
	var (
		sb   strings.Builder
		vars []any
	)

	p.build(&sb, &vars)

	return sb.String(), vars
}

func (p tPredicate) build(sb *strings.Builder, vars *[]any) {
	switch p.kind {
	case predicateTrue:
		sb.WriteString("1=1")
	case predicateFalse:
		sb.WriteString("1=0")
	case predicateTerm:
		sb.WriteString(p.sql)
		*vars = append(*vars, p.vars...)
	case predicateAnd, predicateOr:
		sep := " AND "
		if p.kind == predicateOr {
			sep = " OR "
		}

		for i, item := range p.items {
			if i > 0 {
				sb.WriteString(sep)
			}

			if item.kind == predicateAnd || item.kind == predicateOr {
				sb.WriteByte('(')
				item.build(sb, vars)
				sb.WriteByte(')')
			} else {
				item.build(sb, vars)
			}
		}
	default:
		panic(fmt.Errorf("unknown predicate kind %d", p.kind))
	}
}

// toExpr renders the predicate as an Expr. TRUE yields an empty Expr, which
// relations treat as "no filter".
func (p tPredicate) toExpr() Expr {
	if p.kind == predicateTrue {
		return Expr{}
	}

	sql, vars := p.toSQLClause()

	return Expr{SQL: sql, Vars: vars}
}

func (p tPredicate) String() string {
	sql, _ := p.toSQLClause()
	return sql
}
