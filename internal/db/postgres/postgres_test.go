package postgres

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/dictbase/internal/db"
)

func setupPostgresTestDB(t *testing.T) (*PostgresDB, sqlmock.Sqlmock) {
	t.Helper()

	sqldb, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqldb.Close() })

	return New(sqldb), mock
}

func TestPostgresDB_DescribeTable(t *testing.T) {
	tests := []struct {
		give       string
		wantSchema string
		wantTable  string
	}{
		{give: "patients", wantSchema: "public", wantTable: "patients"},
		{give: "clinic.patients", wantSchema: "clinic", wantTable: "patients"},
	}

	for _, tt := range tests {
		t.Run(tt.give, func(t *testing.T) {
			p, mock := setupPostgresTestDB(t)

			mock.ExpectQuery(`FROM information_schema.columns`).
				WithArgs(tt.wantSchema, tt.wantTable).
				WillReturnRows(sqlmock.NewRows([]string{"column_name", "data_type"}).
					AddRow("id", "integer").
					AddRow("name", "text"))

			cols, err := p.DescribeTable(context.Background(), tt.give)
			require.NoError(t, err)
			assert.Equal(t, []db.Column{{Name: "id", Type: "integer"}, {Name: "name", Type: "text"}}, cols)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestPostgresDB_Exec_NoLastInsertID(t *testing.T) {
	p, mock := setupPostgresTestDB(t)

	mock.ExpectExec(`UPDATE patients SET name = \$1`).
		WithArgs("Bea").
		WillReturnResult(sqlmock.NewErrorResult(errors.New("LastInsertId is not supported by this driver")))

	_, err := p.Exec(context.Background(), "UPDATE patients SET name = $1", "Bea")
	assert.Error(t, err, "RowsAffected fails too on an error result")

	mock.ExpectExec(`UPDATE patients SET name = \$1`).
		WithArgs("Bea").
		WillReturnResult(sqlmock.NewResult(0, 4))

	res, err := p.Exec(context.Background(), "UPDATE patients SET name = $1", "Bea")
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.RowsAffected)
}

func TestPostgresDB_Placeholder(t *testing.T) {
	p, _ := setupPostgresTestDB(t)
	assert.Equal(t, "$2", p.Placeholder()(2))
}
