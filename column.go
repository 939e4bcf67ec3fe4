package keyset

import (
	"fmt"
	"slices"
	"strings"
	"sync"
)

// Column is one resolved sort key of an OrderSet. It is immutable once built.
type Column struct {
	name      string
	domain    []any
	direction Direction
	unique    bool
	nullable  bool
	nulls     NullsPosition
	dialect   Dialect
	custom    bool

	expression func() string
}

func newColumn(spec ColumnSpec, meta Meta) (*Column, error) {
	err := spec.validate()
	if err != nil {
		return nil, err
	}

	c := &Column{
		name:    spec.Name,
		domain:  slices.Clone(spec.Domain),
		dialect: meta.dialect(),
	}

	switch {
	case spec.Direction != "":
		c.direction, err = ParseDirection(spec.Direction)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", spec.Name, err)
		}
	case c.domain != nil:
		c.direction = DirectionDESC
	default:
		c.direction = DirectionASC
	}

	if spec.Unique != nil {
		c.unique = *spec.Unique
	} else {
		c.unique = meta.PrimaryKey != "" && spec.Name == meta.PrimaryKey
	}

	if nilIdx := slices.IndexFunc(c.domain, func(v any) bool { return normalizeValue(v) == nil }); nilIdx != -1 {
		if spec.Nulls != "" {
			return nil, fmt.Errorf(
				"%w: column '%s' has nil in its domain, the nulls position follows from it and cannot be set to %s",
				ErrInvalidColumnSpec, spec.Name, spec.Nulls,
			)
		}

		c.nullable = true
		c.nulls = domainNullsPosition(nilIdx == 0, c.direction)
	} else if spec.Nulls != "" {
		c.nulls, err = ParseNullsPosition(spec.Nulls)
		if err != nil {
			return nil, fmt.Errorf("column '%s': %w", spec.Name, err)
		}
		c.nullable = true
	} else {
		c.nulls = c.dialect.NullsDefault(c.direction)
	}

	switch sql := spec.SQL.(type) {
	case string:
		c.custom = true
		c.expression = func() string { return sql }
	case func() string:
		c.custom = true
		c.expression = sync.OnceValue(sql)
	default:
		quoted := c.dialect.QuoteIdent(spec.Name)
		if meta.Table != "" {
			quoted = c.dialect.QuoteIdent(meta.Table) + "." + quoted
		}
		c.expression = func() string { return quoted }
	}

	return c, nil
}

// domainNullsPosition translates the domain position of nil through the
// direction: DESC walks the domain front to back, ASC back to front.
func domainNullsPosition(nilFirstInDomain bool, dir Direction) NullsPosition {
	if nilFirstInDomain == (dir == DirectionDESC) {
		return NullsFirst
	}

	return NullsLast
}

func (c *Column) Name() string {
	return c.name
}

// Domain returns a copy of the ordered value domain, nil for plain columns.
func (c *Column) Domain() []any {
	return slices.Clone(c.domain)
}

func (c *Column) HasDomain() bool {
	return c.domain != nil
}

func (c *Column) Direction() Direction {
	return c.direction
}

func (c *Column) Unique() bool {
	return c.unique
}

func (c *Column) Nullable() bool {
	return c.nullable
}

// NullsPosition returns where NULLs are placed in the forward ordering.
func (c *Column) NullsPosition() NullsPosition {
	return c.nulls
}

// Expression returns the SQL the column sorts and compares by.
func (c *Column) Expression() string {
	return c.expression()
}

func (c *Column) directionFor(reverse bool) Direction {
	if reverse {
		return c.direction.Reverse()
	}

	return c.direction
}

func (c *Column) nullsFor(reverse bool) NullsPosition {
	if reverse {
		return c.nulls.Reverse()
	}

	return c.nulls
}

// EnumSide returns the domain values lying before or after value in the
// column order, including value itself when strict is false.
//
// For [difficulty, [Easy, Normal, Hard]] (DESC):
//
//	EnumSide("Normal", SideAfter, true)  // [Hard]
//	EnumSide("Normal", SideAfter, false) // [Normal, Hard]
//
// A value outside of the domain yields the whole domain.
func (c *Column) EnumSide(value any, side Side, strict bool) []any {
	pos := indexOfValue(c.domain, value)
	if pos == -1 {
		return slices.Clone(c.domain)
	}

	if (side == SideAfter) == (c.direction == DirectionDESC) {
		if strict {
			pos++
		}
		return slices.Clone(c.domain[pos:])
	}

	if !strict {
		pos++
	}
	return slices.Clone(c.domain[:pos])
}

func (c *Column) String() string {
	parts := []string{c.name}
	if c.domain != nil {
		parts = append(parts, formatDomain(c.domain))
	}
	if c.unique {
		parts = append(parts, "unique")
	}
	if c.custom {
		parts = append(parts, c.Expression())
	}
	if c.nullable {
		parts = append(parts, "nulls "+strings.ToLower(string(c.nulls)))
	}
	parts = append(parts, strings.ToLower(string(c.direction)))

	return "(" + strings.Join(parts, " ") + ")"
}
