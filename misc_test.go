package keyset

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	_ "modernc.org/sqlite"
)

func newGORMMySQLMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := mysql.New(mysql.Config{
		Conn:                      mockDB,
		SkipInitializeWithVersion: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "mysql", db.Debug(), mock, nil
}

func newGORMPostgresMock() (string, *gorm.DB, sqlmock.Sqlmock, error) {
	mockDB, mock, err := sqlmock.New()
	if err != nil {
		return "", nil, nil, err
	}

	dialector := postgres.New(postgres.Config{
		Conn: mockDB,
	})

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return "", nil, nil, err
	}

	return "postgres", db.Debug(), mock, nil
}

// newTestSet builds an order set over a table that is never queried.
func newTestSet(t *testing.T, dialect Dialect, specs []ColumnSpec, opts ...Option) *OrderSet[Row] {
	t.Helper()

	set, err := NewOrderSet[Row](NewSQLRelation(nil, "posts", WithDialect(dialect)), specs, opts...)
	require.NoError(t, err)

	return set
}

// newSQLiteDB opens a private in-memory database. A single connection keeps
// every query on the same database.
func newSQLiteDB(t *testing.T, schema ...string) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	for _, stmt := range schema {
		_, err = db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	return db
}

func ptr[T any](v T) *T {
	return &v
}
