package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/microsoft/go-mssqldb"
	"github.com/microsoft/go-mssqldb/azuread"

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

var _ db.DB = (*MssqlDB)(nil)

type MssqlDB struct {
	db *sql.DB
}

// Open opens a MSSQL connection.
// If the DSN contains "fedauth=", we use the Azure AD driver (azuresql)
// so things like ActiveDirectoryInteractive / AzCli work.
func Open(dsn string) (*MssqlDB, error) {
	if dsn == "" {
		return nil, fmt.Errorf("mssql: %w", db.ErrEmptyDSN)
	}

	sqldb, err := sql.Open(DriverName(dsn), dsn)
	if err != nil {
		return nil, err
	}

	// small CLI defaults
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

// DriverName picks the registered database/sql driver for a DSN.
func DriverName(dsn string) string {
	if strings.Contains(strings.ToLower(dsn), "fedauth=") {
		return azuread.DriverName // "azuresql"
	}
	return "sqlserver"
}

// New wraps an already opened handle.
func New(sqldb *sql.DB) *MssqlDB {
	return &MssqlDB{db: sqldb}
}

// --- db.DB implementation ---

func (m *MssqlDB) Close() error {
	if m.db == nil {
		return nil
	}
	return m.db.Close()
}

func (m *MssqlDB) Placeholder() query.Placeholder { return query.AtP }

func (m *MssqlDB) ListTables(ctx context.Context) ([]string, error) {
	const q = `
SELECT TABLE_SCHEMA + '.' + TABLE_NAME AS name
FROM INFORMATION_SCHEMA.TABLES
WHERE TABLE_TYPE = 'BASE TABLE'
ORDER BY TABLE_SCHEMA, TABLE_NAME;
`
	rows, err := m.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanStrings(rows)
}

// DescribeTable returns column name + data type.
// Accepts either "table" or "schema.table".
func (m *MssqlDB) DescribeTable(ctx context.Context, table string) ([]db.Column, error) {
	schema := "dbo"
	name := table
	if dot := strings.Index(table, "."); dot != -1 {
		schema = table[:dot]
		name = table[dot+1:]
	}

	const q = `
SELECT COLUMN_NAME, DATA_TYPE
FROM INFORMATION_SCHEMA.COLUMNS
WHERE TABLE_SCHEMA = @p1 AND TABLE_NAME = @p2
ORDER BY ORDINAL_POSITION;
`
	rows, err := m.db.QueryContext(ctx, q, schema, name)
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

func (m *MssqlDB) Columns(ctx context.Context, table string) ([]string, error) {
	cols, err := m.DescribeTable(ctx, table)
	if err != nil {
		return nil, err
	}
	return db.ColumnNames(cols), nil
}

func (m *MssqlDB) Query(ctx context.Context, sqlQuery string, args ...any) (*db.Rows, error) {
	rows, err := m.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return db.ScanRows(rows, normalize)
}

func (m *MssqlDB) Exec(ctx context.Context, sqlQuery string, args ...any) (db.Result, error) {
	res, err := m.db.ExecContext(ctx, sqlQuery, args...)
	if err != nil {
		return db.Result{}, err
	}
	return db.ExecResult(res)
}

func normalize(dbType string, v any) any {
	switch x := v.(type) {
	case []byte:
		// NEVER string() binary; it wrecks the table.
		switch dbType {
		case "uniqueidentifier":
			return formatUniqueIdentifier(x)
		case "varchar", "nvarchar", "char", "nchar", "text", "ntext", "decimal", "numeric", "money":
			return string(x)
		default:
			// safe hex representation for any other binary
			return fmt.Sprintf("0x%x", x)
		}
	case time.Time:
		return x.Format(time.RFC3339Nano)
	default:
		return x
	}
}

func formatUniqueIdentifier(b []byte) string {
	if len(b) != 16 {
		return fmt.Sprintf("%x", b)
	}

	return fmt.Sprintf("%02x%02x%02x%02x-%02x%02x-%02x%02x-%02x%02x-%02x%02x%02x%02x%02x%02x",
		b[3], b[2], b[1], b[0],
		b[5], b[4],
		b[7], b[6],
		b[8], b[9],
		b[10], b[11], b[12], b[13], b[14], b[15],
	)
}
