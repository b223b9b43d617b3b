package record_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tsuite "github.com/stretchr/testify/suite"

	"github.com/bgunnarsson/dictbase/internal/db/sqlite"
	"github.com/bgunnarsson/dictbase/internal/query"
	"github.com/bgunnarsson/dictbase/internal/record"
)

// SQLiteTestSuite runs the accessor against a real sqlite file.
type SQLiteTestSuite struct {
	tsuite.Suite
	ctx  context.Context
	conn *sqlite.SqliteDB
	tbl  *record.Table
}

func TestSQLiteTestSuite(t *testing.T) {
	tsuite.Run(t, new(SQLiteTestSuite))
}

func (suite *SQLiteTestSuite) SetupTest() {
	suite.ctx = context.Background()
	r := suite.Require()

	conn, err := sqlite.Open(filepath.Join(suite.T().TempDir(), "test.db"))
	r.NoError(err)
	suite.conn = conn

	_, err = conn.Exec(suite.ctx, `CREATE TABLE patients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		updated INTEGER,
		created INTEGER
	)`)
	r.NoError(err)

	suite.tbl, err = record.New(suite.ctx, conn, "patients")
	r.NoError(err)
}

func (suite *SQLiteTestSuite) TearDownTest() {
	suite.NoError(suite.conn.Close())
}

func (suite *SQLiteTestSuite) insert(name string) int64 {
	res, err := suite.tbl.Insert(suite.ctx, query.Values{{Column: "name", Value: name}})
	suite.Require().NoError(err)
	suite.Equal(int64(1), res.RowsAffected)
	return res.LastInsertID
}

func (suite *SQLiteTestSuite) TestColumns() {
	suite.Equal([]string{"id", "name", "updated", "created"}, suite.tbl.Columns())
}

func (suite *SQLiteTestSuite) TestMissingTable() {
	_, err := record.New(suite.ctx, suite.conn, "ghosts")
	suite.ErrorIs(err, record.ErrSchema)
}

func (suite *SQLiteTestSuite) TestInsertFindRoundTrip() {
	t := suite.T()

	id := suite.insert("X")
	require.NotZero(t, id)

	row, err := suite.tbl.Find(suite.ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "X", row["name"])
	assert.Len(t, row, 4)
	assert.Equal(t, row["updated"], row["created"])
	assert.NotNil(t, row["created"])
}

func (suite *SQLiteTestSuite) TestFindMissing() {
	row, err := suite.tbl.Find(suite.ctx, 999)
	suite.NoError(err)
	suite.NotNil(row)
	suite.Empty(row)
}

func (suite *SQLiteTestSuite) TestAll() {
	suite.insert("Ana")
	suite.insert("Bea")

	rows, err := suite.tbl.All(suite.ctx)
	suite.Require().NoError(err)
	suite.Len(rows, 2)
	for _, row := range rows {
		suite.ElementsMatch([]string{"id", "name", "updated", "created"}, keys(row))
	}
}

func (suite *SQLiteTestSuite) TestWhereAndOnly() {
	suite.insert("Ana")
	suite.insert("Bea")
	suite.insert("Ana")

	rows, err := suite.tbl.Where(suite.ctx, query.Conditions{{Column: "name", Value: "Ana"}})
	suite.Require().NoError(err)
	suite.Len(rows, 2)

	names, err := suite.tbl.Only(suite.ctx, []string{"name"}, query.Conditions{{Column: "name", Value: "Bea"}})
	suite.Require().NoError(err)
	suite.Equal([]record.Row{{"name": "Bea"}}, names)

	all, err := suite.tbl.Only(suite.ctx, []string{"id", "name"}, nil)
	suite.Require().NoError(err)
	suite.Len(all, 3)
}

func (suite *SQLiteTestSuite) TestOnlyMixedCaseFields() {
	suite.insert("Ana")

	rows, err := suite.tbl.Only(suite.ctx, []string{"NAME", "Id"}, nil)
	suite.Require().NoError(err)
	suite.Require().Len(rows, 1)
	suite.Equal("Ana", rows[0]["NAME"])
	suite.Equal(int64(1), rows[0]["Id"])
	suite.NotContains(rows[0], "name")

	rows, err = suite.tbl.Custom(suite.ctx, "SELECT name FROM patients", "Name")
	suite.Require().NoError(err)
	suite.Equal([]record.Row{{"Name": "Ana"}}, rows)
}

func (suite *SQLiteTestSuite) TestUpdateWithoutConditionsTouchesEveryRow() {
	suite.insert("Ana")
	suite.insert("Caio")

	res, err := suite.tbl.Update(suite.ctx, query.Values{{Column: "name", Value: "Bea"}}, nil)
	suite.Require().NoError(err)
	suite.Equal(int64(2), res.RowsAffected)

	rows, err := suite.tbl.All(suite.ctx)
	suite.Require().NoError(err)
	for _, row := range rows {
		suite.Equal("Bea", row["name"])
	}
}

func (suite *SQLiteTestSuite) TestUpdateWithConditions() {
	id := suite.insert("Ana")
	suite.insert("Caio")

	res, err := suite.tbl.Update(suite.ctx,
		query.Values{{Column: "name", Value: "O'Brien"}},
		query.Conditions{{Column: "id", Value: id}})
	suite.Require().NoError(err)
	suite.Equal(int64(1), res.RowsAffected)

	row, err := suite.tbl.Find(suite.ctx, id)
	suite.Require().NoError(err)
	suite.Equal("O'Brien", row["name"])
}

func (suite *SQLiteTestSuite) TestCustom() {
	suite.insert("Ana")
	suite.insert("Bea")

	rows, err := suite.tbl.Custom(suite.ctx, "SELECT COUNT(*) AS total FROM patients", "total")
	suite.Require().NoError(err)
	suite.Equal([]record.Row{{"total": int64(2)}}, rows)

	rows, err = suite.tbl.Custom(suite.ctx, "SELECT * FROM patients ORDER BY id DESC")
	suite.Require().NoError(err)
	suite.Require().Len(rows, 2)
	suite.Equal("Bea", rows[0]["name"])
}

func (suite *SQLiteTestSuite) TestDriverError() {
	_, err := suite.tbl.Custom(suite.ctx, "SELEC nonsense")
	var de *record.DriverError
	suite.ErrorAs(err, &de)
}

func keys(r record.Row) []string {
	out := make([]string, 0, len(r))
	for k := range r {
		out = append(out, k)
	}
	return out
}
