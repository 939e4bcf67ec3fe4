package keyset

import "errors"

var (
	// ErrInvalidDirection is returned for a sort direction token other than ASC or DESC.
	ErrInvalidDirection = errors.New("invalid sort direction")
	// ErrInvalidNullsPosition is returned for a nulls token other than FIRST or LAST.
	ErrInvalidNullsPosition = errors.New("invalid nulls position")
	// ErrInvalidColumnSpec is returned when a column spec is malformed or
	// contradicts itself (unique column not last, nulls policy together with a
	// domain containing nil, unsupported positional arguments).
	ErrInvalidColumnSpec = errors.New("invalid column spec")
	// ErrNonNullableColumnIsNull is returned when the reference row holds NULL in
	// a column that was not declared nullable. It signals a data/schema mismatch:
	// set the column's nulls policy.
	ErrNonNullableColumnIsNull = errors.New("non-nullable column is null")
	// ErrUnknownOrdering is returned by Registry lookups of undefined names.
	ErrUnknownOrdering = errors.New("unknown ordering")
	// ErrInvalidCursor is returned when a cursor token does not match the order set.
	ErrInvalidCursor = errors.New("invalid cursor")
)
