//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package duckdb

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

// Available reports whether this build links the duckdb driver.
const Available = true

var _ db.DB = (*DuckDB)(nil)

type DuckDB struct {
	db *sql.DB
}

// Open opens a duckdb file, or an in-memory database for an empty path.
func Open(path string) (*DuckDB, error) {
	sqldb, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, err
	}

	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := sqldb.PingContext(ctx); err != nil {
		sqldb.Close()
		return nil, err
	}

	return &DuckDB{db: sqldb}, nil
}

func (d *DuckDB) Close() error {
	return d.db.Close()
}

func (d *DuckDB) Placeholder() query.Placeholder { return query.Question }

func (d *DuckDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_name
FROM information_schema.tables
WHERE table_schema = current_schema()
ORDER BY table_name;
`
	rows, err := d.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanStrings(rows)
}

func (d *DuckDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = current_schema()
  AND table_name = ?
ORDER BY ordinal_position;
`
	rows, err := d.db.QueryContext(ctx, q, table)
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
		cols = append(cols, db.Column{Name: colName, Type: dataType})
	}
	return cols, rows.Err()
}

func (d *DuckDB) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := d.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return db.ColumnNames(cols), nil
}

func (d *DuckDB) Query(ctx context.Context, sqlStr string, args ...any) (*db.Rows, error) {
	rows, err := d.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanRows(rows, normalize)
}

func (d *DuckDB) Exec(ctx context.Context, sqlStr string, args ...any) (db.Result, error) {
	res, err := d.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return db.Result{}, err
	}
	return db.ExecResult(res)
}

func normalize(_ string, v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
