package keyset

import (
	"fmt"
	"reflect"
	"strings"
)

// ColumnSpec is the declarative description of one sort column. Zero fields
// mean "derive the default": see Column for the derivation rules.
type ColumnSpec struct {
	// Name is the attribute the reference row is read by.
	Name string
	// Domain optionally lists the column values in the order rows are grouped by.
	// It may contain nil, meaning NULL values form a group at that position.
	Domain []any
	// Direction is ASC or DESC (case-insensitive). Defaults to DESC when a
	// domain is given and ASC otherwise.
	Direction Direction
	// Unique marks the column as ordering all rows on its own. Defaults to
	// Name matching the relation's primary key.
	Unique *bool
	// Nulls makes the column nullable and places NULLs FIRST or LAST.
	Nulls NullsPosition
	// SQL replaces the quoted table.column reference. Either a string or a
	// func() string evaluated once on first use.
	SQL any

	extra []any
}

// Col builds a ColumnSpec from the positional form
//
//	Col("published_at", "desc")
//	Col("pinned", []any{true, false})
//	Col("priority", []string{"high", "medium", "low"}, "asc")
//
// An optional domain slice comes first, then an optional direction. Other
// arguments are kept and rejected by NewOrderSet.
func Col(name string, args ...any) ColumnSpec {
	spec := ColumnSpec{Name: name}

	for i, arg := range args {
		switch v := arg.(type) {
		case Direction:
			if spec.Direction == "" {
				spec.Direction = v
				continue
			}
		case string:
			if spec.Direction == "" {
				spec.Direction = Direction(v)
				continue
			}
		default:
			if values, ok := asDomain(arg); ok && i == 0 {
				spec.Domain = values
				continue
			}
		}

		spec.extra = append(spec.extra, arg)
	}

	return spec
}

// Asc sets the direction to ASC.
func (s ColumnSpec) Asc() ColumnSpec {
	s.Direction = DirectionASC
	return s
}

// Desc sets the direction to DESC.
func (s ColumnSpec) Desc() ColumnSpec {
	s.Direction = DirectionDESC
	return s
}

func (s ColumnSpec) WithDirection(direction Direction) ColumnSpec {
	s.Direction = direction
	return s
}

func (s ColumnSpec) WithDomain(values ...any) ColumnSpec {
	s.Domain = values
	return s
}

func (s ColumnSpec) WithUnique(unique bool) ColumnSpec {
	s.Unique = &unique
	return s
}

func (s ColumnSpec) WithNulls(nulls NullsPosition) ColumnSpec {
	s.Nulls = nulls
	return s
}

// WithSQL sets a custom SQL expression: a string or a func() string.
func (s ColumnSpec) WithSQL(sql any) ColumnSpec {
	s.SQL = sql
	return s
}

func (s ColumnSpec) String() string {
	parts := []string{s.Name}
	if s.Domain != nil {
		parts = append(parts, formatDomain(s.Domain))
	}
	if s.Direction != "" {
		parts = append(parts, strings.ToLower(string(s.Direction)))
	}
	if s.Nulls != "" {
		parts = append(parts, "nulls "+strings.ToLower(string(s.Nulls)))
	}

	return "[" + strings.Join(parts, " ") + "]"
}

func (s ColumnSpec) validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: empty column name in %s", ErrInvalidColumnSpec, s)
	}

	if len(s.extra) > 0 {
		return fmt.Errorf("%w: unsupported arguments %v in %s", ErrInvalidColumnSpec, s.extra, s)
	}

	if s.Domain != nil {
		if len(s.Domain) == 0 {
			return fmt.Errorf("%w: empty domain in %s", ErrInvalidColumnSpec, s)
		}
		for i := range s.Domain {
			if indexOfValue(s.Domain[:i], s.Domain[i]) != -1 {
				return fmt.Errorf("%w: duplicate domain value %v in %s", ErrInvalidColumnSpec, s.Domain[i], s)
			}
		}
	}

	switch s.SQL.(type) {
	case nil, string, func() string:
	default:
		return fmt.Errorf("%w: sql must be a string or func() string, is %T in %s", ErrInvalidColumnSpec, s.SQL, s)
	}

	return nil
}

// asDomain converts any slice or array (except []byte) into []any.
func asDomain(v any) ([]any, bool) {
	if values, ok := v.([]any); ok {
		return values, true
	}
	if _, ok := v.([]byte); ok {
		return nil, false
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}

	values := make([]any, rv.Len())
	for i := range values {
		values[i] = rv.Index(i).Interface()
	}

	return values, true
}

func formatDomain(values []any) string {
	parts := make([]string, 0, len(values))
	for _, v := range values {
		v = normalizeValue(v)
		switch vt := v.(type) {
		case nil:
			parts = append(parts, "nil")
		case string:
			parts = append(parts, fmt.Sprintf("%q", vt))
		default:
			parts = append(parts, fmt.Sprint(vt))
		}
	}

	return "[" + strings.Join(parts, ", ") + "]"
}
