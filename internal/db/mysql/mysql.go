package mysql

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

var _ db.DB = (*MysqlDB)(nil)

type MysqlDB struct {
	db *sql.DB
}

func Open(dsn string) (*MysqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mysql: %w", db.ErrEmptyDSN)
	}

	sqldb, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

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
func New(sqldb *sql.DB) *MysqlDB {
	return &MysqlDB{db: sqldb}
}

// --- db.DB implementation ---

func (m *MysqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MysqlDB) Placeholder() query.Placeholder { return query.Question }

func (m *MysqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT table_name
FROM information_schema.tables
WHERE table_type = 'BASE TABLE'
  AND table_schema = DATABASE()
ORDER BY table_name;
`
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanStrings(rows)
}

func (m *MysqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	const q = `
SELECT column_name, data_type
FROM information_schema.columns
WHERE table_schema = DATABASE()
  AND table_name = ?
ORDER BY ordinal_position;
`
	rows, err := m.db.QueryContext(ctx, q, table)
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

func (m *MysqlDB) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := m.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return db.ColumnNames(cols), nil
}

func (m *MysqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanRows(rows, normalize)
}

func (m *MysqlDB) Exec(ctx context.Context, sqlQuery string, args ...any) (db.Result, error) {
	res, err := m.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return db.Result{}, err
	}
	return db.ExecResult(res)
}

func normalize(_ string, v any) any {
	switch x := v.(type) {
	case []byte:
		// MySQL returns TEXT/VARCHAR as []byte
		return string(x)
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}
