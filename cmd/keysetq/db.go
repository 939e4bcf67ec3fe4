package main

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/Alp4ka/keyset"
	"github.com/Alp4ka/keyset/internal/config"
)

var driverName = map[string]string{
	"postgres": "pgx",
	"mysql":    "mysql",
	"sqlite":   "sqlite",
}

// session is an opened database plus the order set of the chosen ordering.
type session struct {
	db     *sql.DB
	logger *zap.Logger
	engine string
	rel    *keyset.SQLRelation
	set    *keyset.OrderSet[keyset.Row]
}

func connect(engine, dsn string) (*sql.DB, error) {
	driver, ok := driverName[engine]
	if !ok {
		return nil, fmt.Errorf("no driver for engine %q", engine)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}

func openSession() (*session, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	engine := firstNonEmpty(opts.engine, cfg.Engine)
	dsn := firstNonEmpty(opts.dsn, cfg.DSN)
	if engine == "" || dsn == "" {
		return nil, fmt.Errorf("engine and dsn are required, set them in %s or with --engine/--dsn", opts.configPath)
	}

	if opts.ordering == "" {
		return nil, fmt.Errorf("--ordering is required, defined: %v", cfg.OrderingNames())
	}
	ordering, err := cfg.Ordering(opts.ordering)
	if err != nil {
		return nil, err
	}
	specs, err := ordering.Specs()
	if err != nil {
		return nil, err
	}

	db, err := connect(engine, dsn)
	if err != nil {
		return nil, err
	}

	relOpts := []keyset.SQLOption{keyset.WithDialect(keyset.DialectFor(engine))}
	if ordering.PrimaryKey != "" {
		relOpts = append(relOpts, keyset.WithPrimaryKey(ordering.PrimaryKey))
	}
	rel := keyset.NewSQLRelation(db, ordering.Table, relOpts...)

	logger, err := newLogger()
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("logger: %w", err)
	}

	set, err := keyset.NewOrderSet[keyset.Row](rel, specs,
		keyset.WithLogger(logger.Named("keyset")),
		keyset.WithTopLevelRangeWrap(!opts.noWrap),
	)
	if err != nil {
		_ = logger.Sync()
		_ = db.Close()
		return nil, err
	}

	logger.Debug("session opened",
		zap.String("engine", engine),
		zap.String("table", ordering.Table),
		zap.String("ordering", opts.ordering),
	)

	return &session{db: db, logger: logger, engine: engine, rel: rel, set: set}, nil
}

func (s *session) close() {
	_ = s.logger.Sync()
	_ = s.db.Close()
}

// row loads a row by primary key.
func (s *session) row(ctx context.Context, id string) (keyset.Row, error) {
	meta := s.rel.Meta()

	row, ok, err := s.rel.WithFilter(keyset.Expr{
		SQL:  meta.Dialect.QuoteIdent(meta.PrimaryKey) + " = ?",
		Vars: []any{primaryKeyValue(id)},
	}).First(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("no row with %s = %s in %s", meta.PrimaryKey, id, meta.Table)
	}

	return row, nil
}

// primaryKeyValue binds id as an integer only when it is the canonical
// decimal form of one, so text keys such as "007" stay strings.
func primaryKeyValue(id string) any {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil || strconv.FormatInt(n, 10) != id {
		return id
	}

	return n
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}

	return ""
}
