package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite" // register driver

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

var _ db.DB = (*SqliteDB)(nil)

type SqliteDB struct {
	db *sql.DB
}

func Open(path string) (*SqliteDB, error) {
	// Keep it simple: open by plain path, then enable pragmas explicitly.
	sqldb, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// One connection: ":memory:" databases are per connection.
	sqldb.SetMaxOpenConns(1)
	sqldb.SetConnMaxLifetime(5 * time.Minute)

	// Enable foreign keys.
	if _, err := sqldb.Exec(`PRAGMA foreign_keys = ON;`); err != nil {
		_ = sqldb.Close()
		return nil, err
	}

	return New(sqldb), nil
}

// New wraps an already opened handle.
func New(sqldb *sql.DB) *SqliteDB {
	return &SqliteDB{db: sqldb}
}

func (s *SqliteDB) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SqliteDB) Placeholder() query.Placeholder { return query.Question }

func (s *SqliteDB) ListTables(ctx context.Context) ([]string, error) {
	// Use sqlite_master (works everywhere), include tables + views,
	// hide internal sqlite_% objects.
	const q = `
		SELECT name
		FROM sqlite_master
		WHERE type IN ('table', 'view')
		  AND name NOT LIKE 'sqlite_%'
		ORDER BY lower(name);
	`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanStrings(rows)
}

func (s *SqliteDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	q := fmt.Sprintf("PRAGMA table_info(%s);", quoteIdent(table))
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []db.Column
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			return nil, err
		}
		cols = append(cols, db.Column{
			Name: name,
			Type: ctype,
		})
	}
	return cols, rows.Err()
}

func (s *SqliteDB) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := s.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return db.ColumnNames(cols), nil
}

func (s *SqliteDB) Query(ctx context.Context, sqlStr string, args ...any) (*db.Rows, error) {
	rows, err := s.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	// modernc already hands back TEXT as string; raw values pass through.
	return db.ScanRows(rows, nil)
}

func (s *SqliteDB) Exec(ctx context.Context, sqlStr string, args ...any) (db.Result, error) {
	res, err := s.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return db.Result{}, err
	}
	return db.ExecResult(res)
}

// very basic identifier quoting - enough for sqlite
func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}
