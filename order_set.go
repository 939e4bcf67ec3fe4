package keyset

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

type config struct {
	wrapTopLevel bool
	logger       *zap.Logger
}

// Option configures an OrderSet.
type Option func(*config)

// WithTopLevelRangeWrap toggles the redundant range condition on the first
// column of seek conditions (on by default). Some planners and datasets do
// better without it.
func WithTopLevelRangeWrap(enabled bool) Option {
	return func(c *config) {
		c.wrapTopLevel = enabled
	}
}

// WithLogger makes the order set log compiled SQL at debug level.
func WithLogger(logger *zap.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.logger = logger
		}
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		wrapTopLevel: true,
		logger:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

// OrderSet is a total ordering of a base relation: an ordered list of columns
// ending with a unique one.
type OrderSet[T any] struct {
	base    Relation[T]
	columns []*Column
	seek    SeekBuilder
	logger  *zap.Logger

	orderBy        Expr
	reverseOrderBy Expr

	forward func() Relation[T]
	reverse func() Relation[T]
}

// NewOrderSet resolves specs against the base relation. The relation's
// primary key is appended when the last column is not unique.
func NewOrderSet[T any](base Relation[T], specs []ColumnSpec, opts ...Option) (*OrderSet[T], error) {
	if base == nil {
		return nil, fmt.Errorf("cannot build order set: nil relation")
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("cannot build order set: %w: empty ordering", ErrInvalidColumnSpec)
	}

	cfg := newConfig(opts)
	meta := base.Meta()

	columns := make([]*Column, 0, len(specs)+1)
	for _, spec := range specs {
		col, err := newColumn(spec, meta)
		if err != nil {
			return nil, fmt.Errorf("cannot build order set: %w", err)
		}
		columns = append(columns, col)
	}

	if !lo.LastOrEmpty(columns).Unique() {
		if meta.PrimaryKey == "" {
			return nil, fmt.Errorf(
				"cannot build order set: %w: last column must be unique and the relation has no primary key",
				ErrInvalidColumnSpec,
			)
		}

		pk, err := newColumn(ColumnSpec{Name: meta.PrimaryKey}.WithUnique(true), meta)
		if err != nil {
			return nil, fmt.Errorf("cannot build order set: %w", err)
		}
		columns = append(columns, pk)
	}

	for _, col := range columns[:len(columns)-1] {
		if col.Unique() {
			return nil, fmt.Errorf(
				"cannot build order set: %w: unique column '%s' must be last",
				ErrInvalidColumnSpec, col.Name(),
			)
		}
	}

	s := &OrderSet[T]{
		base:           base,
		columns:        columns,
		seek:           SeekBuilder{WrapTopLevel: cfg.wrapTopLevel},
		logger:         cfg.logger,
		orderBy:        BuildOrderBy(columns, false),
		reverseOrderBy: BuildOrderBy(columns, true),
	}
	s.forward = sync.OnceValue(func() Relation[T] { return s.base.WithOrder(s.orderBy) })
	s.reverse = sync.OnceValue(func() Relation[T] { return s.base.WithOrder(s.reverseOrderBy) })

	s.logger.Debug("order set built",
		zap.Stringer("columns", s),
		zap.String("order_by", s.orderBy.SQL),
		zap.Int("order_by_vars", len(s.orderBy.Vars)),
	)

	return s, nil
}

// Columns returns the resolved columns, the unique one last.
func (s *OrderSet[T]) Columns() []*Column {
	return append([]*Column(nil), s.columns...)
}

// Column looks a column up by name.
func (s *OrderSet[T]) Column(name string) (*Column, bool) {
	return lo.Find(s.columns, func(c *Column) bool { return c.name == name })
}

// OrderBy returns the ORDER BY list of the ordering.
func (s *OrderSet[T]) OrderBy() Expr {
	return s.orderBy
}

// ReverseOrderBy returns the ORDER BY list of the reversed ordering.
func (s *OrderSet[T]) ReverseOrderBy() Expr {
	return s.reverseOrderBy
}

// Forward returns the base relation in this order.
func (s *OrderSet[T]) Forward() Relation[T] {
	return s.forward()
}

// Reverse returns the base relation in reverse order.
func (s *OrderSet[T]) Reverse() Relation[T] {
	return s.reverse()
}

func (s *OrderSet[T]) Count(ctx context.Context) (int64, error) {
	return s.base.Count(ctx)
}

// First returns the first row of the ordering.
func (s *OrderSet[T]) First(ctx context.Context) (T, bool, error) {
	return s.Forward().First(ctx)
}

// Last returns the last row of the ordering.
func (s *OrderSet[T]) Last(ctx context.Context) (T, bool, error) {
	return s.Reverse().First(ctx)
}

// At returns the point of row in the ordering.
func (s *OrderSet[T]) At(row T) *Point[T] {
	return &Point[T]{set: s, row: row}
}

// AtValues returns a point from raw column values, one per column in column
// order. It is used to resume from cursors where no row is at hand.
func (s *OrderSet[T]) AtValues(values []any) (*Point[T], error) {
	if len(values) != len(s.columns) {
		return nil, fmt.Errorf("cannot build point: %d values for %d columns", len(values), len(s.columns))
	}

	return &Point[T]{set: s, values: append([]any(nil), values...)}, nil
}

func (s *OrderSet[T]) String() string {
	return "[" + strings.Join(lo.Map(s.columns, func(c *Column, _ int) string { return c.String() }), ", ") + "]"
}
