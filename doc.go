// Package keyset compiles keyset (seek) pagination queries.
//
// Overview
//
// An OrderSet is a total ordering of a relation: a list of columns, each
// ascending or descending, optionally grouped by an explicit value domain
// ("enum" order), optionally nullable with NULLs first or last, ending with a
// unique column. From it keyset derives
//   - the ORDER BY clause of the ordering and of its exact reverse, and
//   - for a reference row (a Point), the WHERE condition selecting exactly
//     the rows before or after it.
//
// Everything is compiled to SQL text with "?" placeholders plus the bound
// values; no value is ever interpolated. Queries are run by a Relation:
// GORMRelation wraps a gorm query, SQLRelation a database/sql table.
//
// Key concepts
//   - ColumnSpec / Col: declarative column description.
//   - OrderSet: resolved columns, forward and reverse ordered relations.
//   - Point: Next, Previous, Position, After and Before of a row.
//   - Registry: named orderings defined once per model.
//   - CursorPager / Cursor: page tokens carrying the reference point.
//
// Example:
//
//	rel, _ := keyset.NewGORMRelation[Post](db)
//	set, _ := keyset.NewOrderSet[Post](rel, []keyset.ColumnSpec{
//		keyset.Col("pinned", []any{true, false}),
//		keyset.Col("published_at", "desc").WithNulls(keyset.NullsFirst),
//	})
//
//	next, ok, err := set.At(post).Next(ctx, true)
package keyset
