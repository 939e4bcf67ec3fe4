package keyset

import (
	"regexp"
	"strings"
)

// NullsOrder describes how an engine sorts NULL relative to other values
// when no explicit NULL placement is requested.
type NullsOrder int

const (
	// NullsLargest treats NULL as the largest value: ASC puts NULLs last.
	// PostgreSQL and Oracle behave this way.
	NullsLargest NullsOrder = iota
	// NullsSmallest treats NULL as the smallest value: ASC puts NULLs first.
	// MySQL, MariaDB, SQLite and SQL Server behave this way.
	NullsSmallest
)

// Dialect is the part of a SQL engine the compiler depends on.
type Dialect interface {
	Name() string
	// QuoteIdent quotes a single identifier (table or column name).
	QuoteIdent(name string) string
	// NullsDefault returns where the engine puts NULLs for ORDER BY <col> <dir>.
	NullsDefault(dir Direction) NullsPosition
}

type sqlDialect struct {
	name  string
	quote func(string) string
	nulls NullsOrder
}

// NewDialect builds a Dialect from a name, an identifier quoting function and
// the engine's default NULL order. A nil quote function leaves identifiers as-is.
func NewDialect(name string, quote func(string) string, nulls NullsOrder) Dialect {
	if quote == nil {
		quote = func(s string) string { return s }
	}

	return &sqlDialect{name: name, quote: quote, nulls: nulls}
}

func (d *sqlDialect) Name() string {
	return d.name
}

func (d *sqlDialect) QuoteIdent(name string) string {
	return d.quote(name)
}

func (d *sqlDialect) NullsDefault(dir Direction) NullsPosition {
	return nullsDefault(d.nulls, dir)
}

func nullsDefault(order NullsOrder, dir Direction) NullsPosition {
	if order == NullsSmallest {
		if dir == DirectionASC {
			return NullsFirst
		}
		return NullsLast
	}

	if dir == DirectionASC {
		return NullsLast
	}
	return NullsFirst
}

var (
	Postgres  = NewDialect("postgres", doubleQuote, NullsLargest)
	MySQL     = NewDialect("mysql", backtick, NullsSmallest)
	SQLite    = NewDialect("sqlite", doubleQuote, NullsSmallest)
	SQLServer = NewDialect("sqlserver", bracket, NullsSmallest)
)

var _nullsSmallestAdapters = regexp.MustCompile(`(?i)mysql|maria|sqlite|sqlserver`)

// NullsOrderFor guesses the default NULL order from an adapter name. Names
// matching mysql, maria, sqlite or sqlserver sort NULL as the smallest value,
// everything else as the largest. Use NewDialect when the guess is wrong for
// the engine at hand.
func NullsOrderFor(adapter string) NullsOrder {
	if _nullsSmallestAdapters.MatchString(adapter) {
		return NullsSmallest
	}

	return NullsLargest
}

// DialectFor returns a built-in dialect for an adapter or driver name.
func DialectFor(adapter string) Dialect {
	name := strings.ToLower(adapter)
	switch {
	case strings.Contains(name, "postgres"), name == "pgx":
		return Postgres
	case strings.Contains(name, "mysql"), strings.Contains(name, "maria"):
		return MySQL
	case strings.Contains(name, "sqlite"):
		return SQLite
	case strings.Contains(name, "sqlserver"), strings.Contains(name, "mssql"):
		return SQLServer
	default:
		return NewDialect(adapter, doubleQuote, NullsOrderFor(adapter))
	}
}

// doubleQuote quotes an identifier with double quotes (PostgreSQL, SQLite, ANSI SQL).
func doubleQuote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// backtick quotes an identifier with backticks (MySQL).
func backtick(s string) string {
	return "`" + strings.ReplaceAll(s, "`", "``") + "`"
}

// bracket quotes an identifier with square brackets (SQL Server).
func bracket(s string) string {
	return "[" + strings.ReplaceAll(s, "]", "]]") + "]"
}
