package keyset

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Row is a row of an SQLRelation keyed by column name.
type Row = map[string]any

// Queryer is satisfied by *sql.DB, *sql.Conn and *sql.Tx.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLRelation is a Relation over a single table queried through database/sql.
type SQLRelation struct {
	db      Queryer
	meta    Meta
	columns []string
	where   []Expr
	order   Expr
	limit   int
}

// SQLOption configures an SQLRelation.
type SQLOption func(*SQLRelation)

// WithPrimaryKey sets the primary key column ("id" by default).
func WithPrimaryKey(column string) SQLOption {
	return func(r *SQLRelation) {
		r.meta.PrimaryKey = column
	}
}

// WithDialect sets the SQL dialect (Postgres by default). It also decides
// the bind placeholder style.
func WithDialect(dialect Dialect) SQLOption {
	return func(r *SQLRelation) {
		r.meta.Dialect = dialect
	}
}

// WithSelect restricts the selected columns ("*" by default).
func WithSelect(columns ...string) SQLOption {
	return func(r *SQLRelation) {
		r.columns = columns
	}
}

// WithScope adds a base condition every query of the relation carries.
func WithScope(cond Expr) SQLOption {
	return func(r *SQLRelation) {
		if !cond.IsEmpty() {
			r.where = append(r.where, cond)
		}
	}
}

func NewSQLRelation(db Queryer, table string, opts ...SQLOption) *SQLRelation {
	r := &SQLRelation{
		db: db,
		meta: Meta{
			Table:      table,
			PrimaryKey: "id",
			Dialect:    Postgres,
		},
		limit: NoLimit,
	}
	for _, opt := range opts {
		opt(r)
	}

	return r
}

func (r *SQLRelation) clone() *SQLRelation {
	ret := *r
	ret.where = append([]Expr(nil), r.where...)

	return &ret
}

func (r *SQLRelation) WithOrder(order Expr) Relation[Row] {
	ret := r.clone()
	ret.order = order

	return ret
}

func (r *SQLRelation) WithFilter(filter Expr) Relation[Row] {
	if filter.IsEmpty() {
		return r
	}

	ret := r.clone()
	ret.where = append(ret.where, filter)

	return ret
}

func (r *SQLRelation) WithLimit(limit int) Relation[Row] {
	ret := r.clone()
	ret.limit = limit

	return ret
}

func (r *SQLRelation) Meta() Meta {
	return r.meta
}

// Value implements Relation.
func (r *SQLRelation) Value(row Row, column string) (any, error) {
	v, ok := row[column]
	if !ok {
		return nil, fmt.Errorf("row has no column '%s'", column)
	}

	return normalizeValue(v), nil
}

// ToSQL renders the SELECT statement of the relation with "?" placeholders.
func (r *SQLRelation) ToSQL() (string, []any) {
	return r.selectSQL(r.limit)
}

func (r *SQLRelation) selectSQL(limit int) (string, []any) {
	dialect := r.meta.dialect()

	var (
		sb   strings.Builder
		vars []any
	)

	sb.WriteString("SELECT ")
	if len(r.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(strings.Join(lo.Map(r.columns, func(c string, _ int) string {
			return dialect.QuoteIdent(c)
		}), ", "))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(dialect.QuoteIdent(r.meta.Table))

	vars = r.writeWhere(&sb, vars)

	if !r.order.IsEmpty() {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(r.order.SQL)
		vars = append(vars, r.order.Vars...)
	}

	if limit != NoLimit {
		if dialect.Name() == SQLServer.Name() {
			if r.order.IsEmpty() {
				sb.WriteString(" ORDER BY (SELECT NULL)")
			}
			sb.WriteString(" OFFSET 0 ROWS FETCH NEXT " + strconv.Itoa(limit) + " ROWS ONLY")
		} else {
			sb.WriteString(" LIMIT " + strconv.Itoa(limit))
		}
	}

	return sb.String(), vars
}

func (r *SQLRelation) countSQL() (string, []any) {
	var sb strings.Builder

	sb.WriteString("SELECT COUNT(*) FROM ")
	sb.WriteString(r.meta.dialect().QuoteIdent(r.meta.Table))
	vars := r.writeWhere(&sb, nil)

	return sb.String(), vars
}

func (r *SQLRelation) writeWhere(sb *strings.Builder, vars []any) []any {
	if len(r.where) == 0 {
		return vars
	}

	sb.WriteString(" WHERE ")
	for i, cond := range r.where {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		if len(r.where) > 1 {
			sb.WriteString("(" + cond.SQL + ")")
		} else {
			sb.WriteString(cond.SQL)
		}
		vars = append(vars, cond.Vars...)
	}

	return vars
}

func (r *SQLRelation) Count(ctx context.Context) (int64, error) {
	query, vars := r.countSQL()

	var n int64
	if err := r.db.QueryRowContext(ctx, rebind(r.meta.dialect(), query), vars...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows: %w", err)
	}

	return n, nil
}

func (r *SQLRelation) First(ctx context.Context) (Row, bool, error) {
	query, vars := r.selectSQL(1)

	rows, err := r.query(ctx, query, vars)
	if err != nil {
		return nil, false, err
	}
	if len(rows) == 0 {
		return nil, false, nil
	}

	return rows[0], true, nil
}

func (r *SQLRelation) Find(ctx context.Context) ([]Row, error) {
	query, vars := r.selectSQL(r.limit)

	return r.query(ctx, query, vars)
}

func (r *SQLRelation) query(ctx context.Context, query string, vars []any) ([]Row, error) {
	rows, err := r.db.QueryContext(ctx, rebind(r.meta.dialect(), query), vars...)
	if err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("columns: %w", err)
	}

	var ret []Row
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}

		row := make(Row, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		ret = append(ret, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}

	return ret, nil
}

// rebind rewrites "?" placeholders into the dialect's bind style ($1 for
// Postgres, @p1 for SQL Server). Quoted literals and identifiers are skipped.
func rebind(dialect Dialect, query string) string {
	var placeholder func(int) string
	switch dialect.Name() {
	case Postgres.Name():
		placeholder = func(i int) string { return "$" + strconv.Itoa(i) }
	case SQLServer.Name():
		placeholder = func(i int) string { return "@p" + strconv.Itoa(i) }
	default:
		return query
	}

	var (
		sb    strings.Builder
		quote byte
		n     int
	)
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"' || c == '`':
			quote = c
		case c == '?':
			n++
			sb.WriteString(placeholder(n))
			continue
		}
		sb.WriteByte(c)
	}

	return sb.String()
}

var _ Relation[Row] = (*SQLRelation)(nil)
