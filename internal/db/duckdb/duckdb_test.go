//go:build cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64)))

package duckdb

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuckDB_ColumnsAndRows(t *testing.T) {
	ctx := context.Background()
	d, err := Open("")
	require.NoError(t, err)
	defer d.Close()

	_, err = d.Exec(ctx, `CREATE TABLE patients (id INTEGER, name VARCHAR, updated BIGINT, created BIGINT)`)
	require.NoError(t, err)

	cols, err := d.Columns(ctx, "patients")
	require.NoError(t, err)
	assert.Equal(t, []string{"id", "name", "updated", "created"}, cols)

	res, err := d.Exec(ctx, `INSERT INTO patients (id, name) VALUES (?, ?)`, 1, "Ana")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowsAffected)

	rows, err := d.Query(ctx, `SELECT name FROM patients WHERE id = ?`, 1)
	require.NoError(t, err)
	require.Len(t, rows.Data, 1)
	assert.Equal(t, "Ana", rows.Data[0][0])

	tables, err := d.ListTables(ctx)
	require.NoError(t, err)
	assert.Contains(t, tables, "patients")

	missing, err := d.Columns(ctx, "ghosts")
	require.NoError(t, err)
	assert.Empty(t, missing)
}
