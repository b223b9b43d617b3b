package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/dictbase/internal/db/sqlite"
)

func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clinic.db")
	conn, err := sqlite.Open(path)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec(context.Background(), `CREATE TABLE patients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		updated INTEGER,
		created INTEGER
	)`)
	require.NoError(t, err)
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestCLI_RoundTrip(t *testing.T) {
	dsn := seedDB(t)

	out, err := run(t, "--dsn", dsn, "--model", "Patient", "insert", "name=Ana")
	require.NoError(t, err)
	assert.Equal(t, "inserted 1 row(s), last id 1\n", out)

	out, err = run(t, "--dsn", dsn, "-t", "patients", "--json", "find", "1")
	require.NoError(t, err)
	assert.Contains(t, out, `"name": "Ana"`)

	out, err = run(t, "--dsn", dsn, "-t", "patients", "update", "name=Bea", "--where", "id=1")
	require.NoError(t, err)
	assert.Equal(t, "updated 1 row(s)\n", out)

	out, err = run(t, "--dsn", dsn, "-t", "patients", "--json", "only", "name", "id=1")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"name":"Bea"}]`, out)

	out, err = run(t, "--dsn", dsn, "-t", "patients", "--json", "custom", "SELECT COUNT(*) AS n FROM patients", "n")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"n":1}]`, out)

	out, err = run(t, "--dsn", dsn, "tables")
	require.NoError(t, err)
	assert.Equal(t, "patients\n", out)
}

func TestCLI_DryRun(t *testing.T) {
	dsn := seedDB(t)

	out, err := run(t, "--dsn", dsn, "-t", "patients", "--timestamps=false", "insert", "--dry-run", "name=Ana")
	require.NoError(t, err)
	assert.Equal(t, "INSERT INTO patients (name) VALUES ('Ana')\n", out)
}

func TestCLI_ConfigFile(t *testing.T) {
	dsn := seedDB(t)
	cfgPath := filepath.Join(t.TempDir(), "dictbase.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("driver: sqlite\ndsn: "+dsn+"\ntable: patients\n"), 0o600))

	out, err := run(t, "--config", cfgPath, "columns")
	require.NoError(t, err)
	assert.Equal(t, "id\nname\nupdated\ncreated\n", out)
}

func TestCLI_Errors(t *testing.T) {
	dsn := seedDB(t)

	_, err := run(t, "--dsn", dsn, "-t", "patients", "where", "oops")
	assert.Error(t, err)

	_, err = run(t, "--dsn", dsn, "-t", "ghosts", "all")
	assert.Error(t, err)

	_, err = run(t, "--dsn", dsn, "all")
	assert.Error(t, err)

	_, err = run(t, "--driver", "oracle", "--dsn", "x", "tables")
	assert.Error(t, err)
}

func TestParseID(t *testing.T) {
	assert.Equal(t, int64(7), parseID("7"))
	assert.Equal(t, "abc-1", parseID("abc-1"))
}

func TestSplitList(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, splitList(" id, ,name "))
	assert.Nil(t, splitList(""))
}
