package print

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bgunnarsson/dictbase/internal/record"
)

func TestHeader(t *testing.T) {
	rows := []record.Row{
		{"name": "Ana", "id": int64(1), "zeta": 1},
		{"name": "Bea", "alpha": 2},
	}
	got := Header(rows, []string{"id", "name", "missing"})
	assert.Equal(t, []string{"id", "name", "alpha", "zeta"}, got)
}

func TestRenderTable(t *testing.T) {
	rows := []record.Row{
		{"id": int64(1), "name": "Ana"},
		{"id": int64(2), "name": nil},
	}

	var buf bytes.Buffer
	RenderTable(&buf, []string{"id", "name"}, rows, Options{})

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "+----+------+", lines[0])
	assert.Equal(t, "| id | name |", lines[1])
	assert.Equal(t, "+====+======+", lines[2])
	assert.Equal(t, "| 1  | Ana  |", lines[3])
	assert.Equal(t, "| 2  | NULL |", lines[4])
}

func TestRenderTable_NoColumns(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, nil, nil, Options{})
	assert.Equal(t, "(no columns)\n", buf.String())
}

func TestRenderTable_Truncates(t *testing.T) {
	var buf bytes.Buffer
	RenderTable(&buf, []string{"note"}, []record.Row{{"note": strings.Repeat("x", 20)}}, Options{MaxWidth: 8})
	assert.Contains(t, buf.String(), "| xxxxx... |")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderJSON(&buf, nil))
	assert.Equal(t, "[]\n", buf.String())

	buf.Reset()
	require.NoError(t, RenderJSON(&buf, []record.Row{{"name": "Ana"}}))
	assert.JSONEq(t, `[{"name":"Ana"}]`, buf.String())
}

func TestRenderStyled(t *testing.T) {
	var buf bytes.Buffer
	RenderStyled(&buf, []string{"id", "name"}, []record.Row{{"id": int64(1), "name": "Ana"}}, Options{})
	out := buf.String()
	assert.Contains(t, out, "Ana")
	assert.Contains(t, out, "(1 rows)")
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "NULL", FormatCell(nil))
	assert.Equal(t, "42", FormatCell(int64(42)))
	assert.Equal(t, "1.5", FormatCell(1.5))
	assert.Equal(t, "abc", FormatCell([]byte("abc")))
	assert.Equal(t, "<blob 2 bytes>", FormatCell([]byte{0x00, 0x01}))
}
