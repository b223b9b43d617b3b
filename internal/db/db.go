package db

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/bgunnarsson/dictbase/internal/query"
)

type Column struct {
	Name string
	Type string
}

type Row []any

type Rows struct {
	Columns []Column
	Data    []Row
}

// Index returns the position of the named column, or -1. An exact match
// wins; otherwise the first column equal under case folding is used.
func (r *Rows) Index(name string) int {
	fold := -1
	for i, c := range r.Columns {
		if c.Name == name {
			return i
		}
		if fold < 0 && strings.EqualFold(c.Name, name) {
			fold = i
		}
	}
	return fold
}

// Result is the acknowledgment of a statement that returns no rows.
type Result struct {
	RowsAffected int64
	// LastInsertID stays 0 on drivers without LastInsertId support (pgx, sqlserver).
	LastInsertID int64
}

type DB interface {
	Close() error
	Placeholder() query.Placeholder
	ListTables(ctx context.Context) ([]string, error)
	DescribeTable(ctx context.Context, table string) ([]Column, error)
	Columns(ctx context.Context, table string) ([]string, error)
	Query(ctx context.Context, sql string, args ...any) (*Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (Result, error)
}

// ColumnNames keeps only the names, in order.
func ColumnNames(cols []Column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.Name
	}
	return out
}

// Normalizer maps a raw scanned value to what callers see. dbType is the
// lower-cased DatabaseTypeName of the column.
type Normalizer func(dbType string, v any) any

// ScanRows drains rows into a Rows. It does not close rows.
func ScanRows(rows *sql.Rows, normalize Normalizer) (*Rows, error) {
	colNames, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	colTypes, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	header := make([]Column, len(colNames))
	for i, name := range colNames {
		typ := ""
		if i < len(colTypes) && colTypes[i] != nil {
			typ = strings.ToLower(colTypes[i].DatabaseTypeName())
		}
		header[i] = Column{
			Name: name,
			Type: typ,
		}
	}

	var data []Row
	for rows.Next() {
		values := make([]any, len(colNames))
		ptrs := make([]any, len(colNames))
		for i := range values {
			ptrs[i] = &values[i]
		}

		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		if normalize != nil {
			for i, v := range values {
				values[i] = normalize(header[i].Type, v)
			}
		}

		data = append(data, Row(values))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &Rows{
		Columns: header,
		Data:    data,
	}, nil
}

// ExecResult converts a sql.Result. Drivers that cannot report LastInsertId
// return an error from it; that case yields 0 rather than a failure.
func ExecResult(res sql.Result) (Result, error) {
	affected, err := res.RowsAffected()
	if err != nil {
		return Result{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		id = 0
	}
	return Result{RowsAffected: affected, LastInsertID: id}, nil
}

// ScanStrings reads a single string column from every row.
func ScanStrings(rows *sql.Rows) ([]string, error) {
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ErrEmptyDSN is returned by Open when no DSN was given.
var ErrEmptyDSN = errors.New("empty DSN")
