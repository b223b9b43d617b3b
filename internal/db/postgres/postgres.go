package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx stdlib driver

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

var _ db.DB = (*PostgresDB)(nil)

type PostgresDB struct {
	db *sql.DB
}

func Open(dsn string) (*PostgresDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("postgres: %w", db.ErrEmptyDSN)
	}

	sqldb, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// Sane defaults for a small CLI tool.
	sqldb.SetMaxOpenConns(4)
	sqldb.SetMaxIdleConns(4)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return New(sqldb), nil
}

// New wraps an already opened handle.
func New(sqldb *sql.DB) *PostgresDB {
	return &PostgresDB{db: sqldb}
}

func (p *PostgresDB) Close() error {
	if p.db == nil {
		return nil
	}
	return p.db.Close()
}

func (p *PostgresDB) Placeholder() query.Placeholder { return query.Dollar }

func (p *PostgresDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_schema || '.' || table_name AS name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema NOT IN ('pg_catalog', 'information_schema')
ORDER BY table_schema, table_name;
`
	rows, err := p.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanStrings(rows)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (p *PostgresDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema := "public"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = $1
  AND table_name = $2
ORDER BY ordinal_position;
`
	rows, err := p.db.QueryContext(ctx, q, schema, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []db.Column
	for rows.Next() {
		var colName, dataType string
		if err := rows.Scan(&colName, &dataType); err != nil {
			return nil, err
		}
		cols = append(cols, db.Column{
			Name: colName,
			Type: dataType,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return cols, nil
}

func (p *PostgresDB) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := p.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return db.ColumnNames(cols), nil
}

func (p *PostgresDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := p.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanRows(rows, normalize)
}

// Exec runs a statement. pgx does not implement LastInsertId, so the
// result only carries RowsAffected; use RETURNING through Query for ids.
func (p *PostgresDB) Exec(ctx context.Context, sqlQuery string, args ...any) (db.Result, error) {
	res, err := p.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return db.Result{}, err
	}
	return db.ExecResult(res)
}

func normalize(_ string, v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
