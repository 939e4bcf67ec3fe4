package keyset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Point is a reference row of an OrderSet. It selects the rows before and
// after it and locates its neighbours.
type Point[T any] struct {
	set    *OrderSet[T]
	row    T
	values []any

	mu    sync.Mutex
	count *int64
}

// Row returns the reference row. It is the zero value for points built from
// raw values.
func (p *Point[T]) Row() T {
	return p.row
}

// Value reads the reference value of a column.
func (p *Point[T]) Value(column string) (any, error) {
	for i, col := range p.set.columns {
		if col.name == column {
			return p.value(i)
		}
	}

	return nil, fmt.Errorf("%w: column '%s' is not part of the ordering", ErrInvalidColumnSpec, column)
}

func (p *Point[T]) value(i int) (any, error) {
	col := p.set.columns[i]

	var v any
	if p.values != nil {
		v = p.values[i]
	} else {
		var err error
		if v, err = p.set.base.Value(p.row, col.name); err != nil {
			return nil, fmt.Errorf("failed to read column '%s': %w", col.name, err)
		}
	}

	v = normalizeValue(v)
	if v == nil && !col.nullable {
		return nil, fmt.Errorf("%w: column '%s'", ErrNonNullableColumnIsNull, col.name)
	}

	return v, nil
}

// Values returns the reference values of all columns, in column order.
func (p *Point[T]) Values() ([]any, error) {
	values := make([]any, len(p.set.columns))
	for i := range p.set.columns {
		v, err := p.value(i)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}

	return values, nil
}

// Predicate compiles the condition selecting rows on side of the point. A
// non-strict condition also matches the point itself. An empty Expr matches
// every row.
func (p *Point[T]) Predicate(side Side, strict bool) (Expr, error) {
	values, err := p.Values()
	if err != nil {
		return Expr{}, err
	}

	expr, err := p.set.seek.Build(p.set.columns, values, side, strict)
	if err != nil {
		return Expr{}, err
	}

	p.set.logger.Debug("seek predicate compiled",
		zap.String("side", string(side)),
		zap.Bool("strict", strict),
		zap.String("where", expr.SQL),
		zap.Int("vars", len(expr.Vars)),
	)

	return expr, nil
}

// After returns the rows following the point, in order.
func (p *Point[T]) After(strict bool) (Relation[T], error) {
	expr, err := p.Predicate(SideAfter, strict)
	if err != nil {
		return nil, err
	}

	return filtered(p.set.Forward(), expr), nil
}

// Before returns the rows preceding the point, nearest first.
func (p *Point[T]) Before(strict bool) (Relation[T], error) {
	expr, err := p.Predicate(SideBefore, strict)
	if err != nil {
		return nil, err
	}

	return filtered(p.set.Reverse(), expr), nil
}

// Next returns the row following the point. With loop, the last row is
// followed by the first one. The point itself is never its own successor.
func (p *Point[T]) Next(ctx context.Context, loop bool) (T, bool, error) {
	after, err := p.After(true)
	if err != nil {
		var zero T
		return zero, false, err
	}

	return p.neighbour(ctx, after, p.set.First, loop)
}

// Previous returns the row preceding the point. With loop, the first row is
// preceded by the last one.
func (p *Point[T]) Previous(ctx context.Context, loop bool) (T, bool, error) {
	before, err := p.Before(true)
	if err != nil {
		var zero T
		return zero, false, err
	}

	return p.neighbour(ctx, before, p.set.Last, loop)
}

func (p *Point[T]) neighbour(
	ctx context.Context,
	rel Relation[T],
	wrap func(context.Context) (T, bool, error),
	loop bool,
) (T, bool, error) {
	var zero T

	row, ok, err := rel.First(ctx)
	if err != nil {
		return zero, false, err
	}
	if !ok {
		if !loop {
			return zero, false, nil
		}
		if row, ok, err = wrap(ctx); err != nil || !ok {
			return zero, false, err
		}
	}

	self, err := p.isSelf(row)
	if err != nil {
		return zero, false, err
	}
	if self {
		return zero, false, nil
	}

	return row, true, nil
}

// isSelf reports whether row holds the point's values in every column.
func (p *Point[T]) isSelf(row T) (bool, error) {
	for i, col := range p.set.columns {
		ref, err := p.value(i)
		if err != nil {
			return false, err
		}

		v, err := p.set.base.Value(row, col.name)
		if err != nil {
			return false, fmt.Errorf("failed to read column '%s': %w", col.name, err)
		}
		if !sameValue(ref, v) {
			return false, nil
		}
	}

	return true, nil
}

// Position returns the 1-based rank of the point in the ordering.
func (p *Point[T]) Position(ctx context.Context) (int64, error) {
	total, err := p.total(ctx)
	if err != nil {
		return 0, err
	}

	after, err := p.After(true)
	if err != nil {
		return 0, err
	}

	n, err := after.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows after point: %w", err)
	}

	return total - n, nil
}

func (p *Point[T]) total(ctx context.Context) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.count != nil {
		return *p.count, nil
	}

	n, err := p.set.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}
	p.count = &n

	return n, nil
}

func (p *Point[T]) String() string {
	values, err := p.Values()
	if err != nil {
		return "Point(" + err.Error() + ")"
	}

	parts := make([]string, len(values))
	for i, col := range p.set.columns {
		parts[i] = fmt.Sprintf("%s=%v", col.name, values[i])
	}

	return "Point(" + strings.Join(parts, ", ") + ")"
}

func filtered[T any](rel Relation[T], expr Expr) Relation[T] {
	if expr.IsEmpty() {
		return rel
	}

	return rel.WithFilter(expr)
}
