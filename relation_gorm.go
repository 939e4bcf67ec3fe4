package keyset

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/schema"
)

// Getters maps column names to functions reading them from a row. Use it for
// columns that are not plain model fields (computed or joined columns):
//
//	keyset.Getters[models.Post]{
//		"author_name": func(p models.Post) any { return p.Author.Name },
//	}
type Getters[T any] map[string]func(T) any

// GORMRelation is a Relation over a gorm query of model T.
type GORMRelation[T any] struct {
	db      *gorm.DB
	schema  *schema.Schema
	meta    Meta
	getters Getters[T]
}

var _schemaCache = &sync.Map{}

// NewGORMRelation wraps a gorm query. The table and primary key come from the
// model schema, the dialect from the gorm dialector. Conditions already on db
// are kept as the base scope.
func NewGORMRelation[T any](db *gorm.DB) (*GORMRelation[T], error) {
	if db == nil {
		return nil, fmt.Errorf("cannot build gorm relation: nil db")
	}

	sch, err := schema.Parse(new(T), _schemaCache, db.NamingStrategy)
	if err != nil {
		return nil, fmt.Errorf("cannot build gorm relation: failed to parse model: %w", err)
	}

	table := sch.Table
	if db.Statement != nil && db.Statement.Table != "" {
		table = db.Statement.Table
	}

	var primaryKey string
	if sch.PrioritizedPrimaryField != nil {
		primaryKey = sch.PrioritizedPrimaryField.DBName
	}

	return &GORMRelation[T]{
		db:     db.Model(new(T)).Session(&gorm.Session{}),
		schema: sch,
		meta: Meta{
			Table:      table,
			PrimaryKey: primaryKey,
			Dialect:    gormDialect(db.Dialector),
		},
	}, nil
}

// gormDialect quotes identifiers the way the dialector does.
func gormDialect(d gorm.Dialector) Dialect {
	quote := func(name string) string {
		var sb strings.Builder
		d.QuoteTo(&sb, name)
		return sb.String()
	}

	return NewDialect(d.Name(), quote, NullsOrderFor(d.Name()))
}

// WithGetters sets the column readers consulted before the model fields.
func (r *GORMRelation[T]) WithGetters(getters Getters[T]) *GORMRelation[T] {
	ret := *r
	ret.getters = getters

	return &ret
}

// DB returns the underlying query.
func (r *GORMRelation[T]) DB() *gorm.DB {
	return r.db
}

func (r *GORMRelation[T]) derive(db *gorm.DB) *GORMRelation[T] {
	ret := *r
	ret.db = db.Session(&gorm.Session{})

	return &ret
}

// WithOrder implements Relation. The ORDER BY carries bind parameters, so it
// is attached as a clause instead of through db.Order.
func (r *GORMRelation[T]) WithOrder(order Expr) Relation[T] {
	if order.IsEmpty() {
		return r
	}

	return r.derive(r.db.Clauses(clause.OrderBy{
		Expression: clause.Expr{SQL: order.SQL, Vars: order.Vars},
	}))
}

func (r *GORMRelation[T]) WithFilter(filter Expr) Relation[T] {
	if filter.IsEmpty() {
		return r
	}

	return r.derive(r.db.Where(clause.Expr{SQL: filter.SQL, Vars: filter.Vars}))
}

func (r *GORMRelation[T]) WithLimit(limit int) Relation[T] {
	if limit == NoLimit {
		return r
	}

	return r.derive(r.db.Limit(limit))
}

func (r *GORMRelation[T]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return n, nil
}

// First implements Relation. db.First is avoided since it adds a primary key
// ordering of its own.
func (r *GORMRelation[T]) First(ctx context.Context) (T, bool, error) {
	var rows []T
	if err := r.db.WithContext(ctx).Limit(1).Find(&rows).Error; err != nil {
		var zero T
		return zero, false, fmt.Errorf("failed to fetch row: %w", err)
	}
	if len(rows) == 0 {
		var zero T
		return zero, false, nil
	}

	return rows[0], true, nil
}

func (r *GORMRelation[T]) Find(ctx context.Context) ([]T, error) {
	var rows []T
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch rows: %w", err)
	}

	return rows, nil
}

func (r *GORMRelation[T]) Meta() Meta {
	return r.meta
}

// Value implements Relation: getters first, then the model field with that
// column (or field) name.
func (r *GORMRelation[T]) Value(row T, column string) (any, error) {
	if getter, ok := r.getters[column]; ok {
		return normalizeValue(getter(row)), nil
	}

	field := r.schema.LookUpField(column)
	if field == nil {
		return nil, fmt.Errorf("cannot find field for column '%s' in %s", column, r.schema.Name)
	}

	rv := reflect.ValueOf(row)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return nil, fmt.Errorf("cannot read column '%s' of nil row", column)
	}

	v, _ := field.ValueOf(context.Background(), rv)

	return normalizeValue(v), nil
}

var _ Relation[struct{}] = (*GORMRelation[struct{}])(nil)
