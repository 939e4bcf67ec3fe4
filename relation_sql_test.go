package keyset

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_rebind(t *testing.T) {
	query := `SELECT * FROM "t?" WHERE a = ? AND b = '?' AND c IN (?, ?)`

	tests := []struct {
		name    string
		dialect Dialect
		want    string
	}{
		{"postgres", Postgres, `SELECT * FROM "t?" WHERE a = $1 AND b = '?' AND c IN ($2, $3)`},
		{"sqlserver", SQLServer, `SELECT * FROM "t?" WHERE a = @p1 AND b = '?' AND c IN (@p2, @p3)`},
		{"sqlite", SQLite, query},
		{"mysql", MySQL, query},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, rebind(tt.dialect, query))
		})
	}
}

func Test_SQLRelation_ToSQL(t *testing.T) {
	base := NewSQLRelation(nil, "posts", WithScope(Expr{SQL: "deleted_at IS NULL"}))

	tests := []struct {
		name     string
		rel      Relation[Row]
		wantSQL  string
		wantVars []any
	}{
		{
			name:    "scope only",
			rel:     base,
			wantSQL: `SELECT * FROM "posts" WHERE deleted_at IS NULL`,
		},
		{
			name:     "filters are parenthesized together",
			rel:      base.WithFilter(Expr{SQL: "a = ? OR b = ?", Vars: []any{1, 2}}).WithLimit(5),
			wantSQL:  `SELECT * FROM "posts" WHERE (deleted_at IS NULL) AND (a = ? OR b = ?) LIMIT 5`,
			wantVars: []any{1, 2},
		},
		{
			name:     "order vars follow filter vars",
			rel:      base.WithOrder(Expr{SQL: "x = ? DESC", Vars: []any{"v"}}).WithFilter(Expr{SQL: "y > ?", Vars: []any{3}}),
			wantSQL:  `SELECT * FROM "posts" WHERE (deleted_at IS NULL) AND (y > ?) ORDER BY x = ? DESC`,
			wantVars: []any{3, "v"},
		},
		{
			name:    "empty filter is ignored",
			rel:     base.WithFilter(Expr{}),
			wantSQL: `SELECT * FROM "posts" WHERE deleted_at IS NULL`,
		},
		{
			name:    "selected columns on sql server",
			rel:     NewSQLRelation(nil, "posts", WithDialect(SQLServer), WithSelect("id", "title")).WithLimit(5),
			wantSQL: `SELECT [id], [title] FROM [posts] ORDER BY (SELECT NULL) OFFSET 0 ROWS FETCH NEXT 5 ROWS ONLY`,
		},
		{
			name:    "mysql",
			rel:     NewSQLRelation(nil, "posts", WithDialect(MySQL)).WithOrder(Expr{SQL: "`posts`.`id` ASC"}).WithLimit(1),
			wantSQL: "SELECT * FROM `posts` ORDER BY `posts`.`id` ASC LIMIT 1",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, vars := tt.rel.(*SQLRelation).ToSQL()
			assert.Equal(t, tt.wantSQL, sql)
			assert.Equal(t, tt.wantVars, vars)
		})
	}

	// Derived relations leave the base untouched.
	sql, _ := base.ToSQL()
	assert.Equal(t, `SELECT * FROM "posts" WHERE deleted_at IS NULL`, sql)
}

func Test_SQLRelation_Postgres(t *testing.T) {
	ctx := context.Background()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	set, err := NewOrderSet[Row](NewSQLRelation(db, "posts"), []ColumnSpec{Col("title", "desc")})
	require.NoError(t, err)

	point := set.At(Row{"id": int64(4), "title": "d"})

	mock.ExpectQuery(`SELECT * FROM "posts" WHERE "posts"."title" <= $1 AND ("posts"."title" < $2 OR ("posts"."title" = $3 AND "posts"."id" > $4)) ORDER BY "posts"."title" DESC, "posts"."id" ASC LIMIT 1`).
		WithArgs("d", "d", "d", 4).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(2), []byte("c")))

	next, ok, err := point.Next(ctx, false)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, Row{"id": int64(2), "title": "c"}, next)

	mock.ExpectQuery(`SELECT COUNT(*) FROM "posts"`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(9)))
	mock.ExpectQuery(`SELECT COUNT(*) FROM "posts" WHERE "posts"."title" <= $1 AND ("posts"."title" < $2 OR ("posts"."title" = $3 AND "posts"."id" > $4))`).
		WithArgs("d", "d", "d", 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	pos, err := point.Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	// The total is counted once per point.
	mock.ExpectQuery(`SELECT COUNT(*) FROM "posts" WHERE "posts"."title" <= $1 AND ("posts"."title" < $2 OR ("posts"."title" = $3 AND "posts"."id" > $4))`).
		WithArgs("d", "d", "d", 4).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(3)))

	pos, err = point.Position(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), pos)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func Test_SQLRelation_Value(t *testing.T) {
	rel := NewSQLRelation(nil, "posts")

	v, err := rel.Value(Row{"id": ptr(int64(3))}, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(3), v)

	_, err = rel.Value(Row{}, "id")
	require.Error(t, err)
}
