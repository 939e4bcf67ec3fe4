package keyset

import (
	"context"
	"strings"
)

// Expr is a SQL fragment with "?" placeholders and the values bound to them,
// in the order the placeholders appear.
type Expr struct {
	SQL  string
	Vars []any
}

// IsEmpty reports whether the fragment holds no SQL.
func (e Expr) IsEmpty() bool {
	return strings.TrimSpace(e.SQL) == ""
}

// Meta describes the relation's table to the compiler.
type Meta struct {
	// Table qualifies column references; empty leaves them unqualified.
	Table string
	// PrimaryKey is appended as the final tie-breaker when the ordering does
	// not end with a unique column.
	PrimaryKey string
	Dialect    Dialect
}

func (m Meta) dialect() Dialect {
	if m.Dialect == nil {
		return Postgres
	}

	return m.Dialect
}

// Relation is the query the compiler orders and filters. Implementations are
// immutable: every With method returns a derived relation.
type Relation[T any] interface {
	// WithOrder replaces the ordering of the relation.
	WithOrder(order Expr) Relation[T]
	// WithFilter ANDs the condition into the relation's WHERE clause.
	WithFilter(filter Expr) Relation[T]
	// WithLimit caps the number of returned rows.
	WithLimit(limit int) Relation[T]

	Count(ctx context.Context) (int64, error)
	// First returns the first row, or false if the relation is empty.
	First(ctx context.Context) (T, bool, error)
	Find(ctx context.Context) ([]T, error)

	Meta() Meta
	// Value reads a column by name from a row of this relation.
	Value(row T, column string) (any, error)
}
