package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/bgunnarsson/dictbase/internal/config"
	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/db/duckdb"
	"github.com/bgunnarsson/dictbase/internal/db/mssql"
	"github.com/bgunnarsson/dictbase/internal/db/mysql"
	"github.com/bgunnarsson/dictbase/internal/db/postgres"
	"github.com/bgunnarsson/dictbase/internal/db/sqlite"
	"github.com/bgunnarsson/dictbase/internal/logging"
	"github.com/bgunnarsson/dictbase/internal/record"
)

type Driver string

const (
	DriverSqlite   Driver = "sqlite"
	DriverPostgres Driver = "postgres"
	DriverMssql    Driver = "mssql"
	DriverMysql    Driver = "mysql"
	DriverDuckdb   Driver = "duckdb"
)

// central factory
func OpenDB(driver Driver, dsn string) (db.DB, error) {
	switch driver {
	case "", DriverSqlite:
		return sqlite.Open(dsn)
	case DriverPostgres:
		return postgres.Open(dsn)
	case DriverMssql:
		return mssql.Open(dsn)
	case DriverMysql:
		return mysql.Open(dsn)
	case DriverDuckdb:
		return duckdb.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// Session is an open connection plus, when a table is configured, the
// accessor bound to it.
type Session struct {
	DB    db.DB
	Table *record.Table
	Label string
	log   zerolog.Logger
}

// Open connects per cfg. The table is bound only when cfg.Table is set, so
// commands such as "tables" work without one.
func Open(ctx context.Context, cfg config.Config, log zerolog.Logger) (*Session, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	conn, err := OpenDB(Driver(cfg.Driver), cfg.DSN)
	if err != nil {
		return nil, err
	}
	log.Debug().Str("driver", cfg.Driver).Msg("connected")

	s := &Session{DB: conn, Label: cfg.Driver, log: log}
	if cfg.Table == "" {
		return s, nil
	}

	s.Table, err = record.New(ctx, conn, cfg.Table,
		record.WithTimestamps(cfg.Timestamps),
		record.WithLogger(log.With().Str("component", "record").Logger()),
	)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *Session) Close() {
	logging.DeferClose(s.log, s.DB, "close database")
}

// RequireTable fails when no table was bound.
func (s *Session) RequireTable() (*record.Table, error) {
	if s.Table == nil {
		return nil, fmt.Errorf("no table given: use --table or --model: %w", record.ErrArgument)
	}
	return s.Table, nil
}
