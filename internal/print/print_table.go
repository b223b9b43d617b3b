package print

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/bgunnarsson/dictbase/internal/record"
)

type Options struct {
	MaxWidth int // max width for each column, 0 = 40
}

// Header returns the column order for rows: preferred columns first (when
// any row has them), then any remaining keys sorted.
func Header(rows []record.Row, preferred []string) []string {
	seen := make(map[string]bool)
	for _, r := range rows {
		for k := range r {
			seen[k] = true
		}
	}

	var out []string
	for _, c := range preferred {
		if seen[c] {
			out = append(out, c)
			delete(seen, c)
		}
	}
	rest := make([]string, 0, len(seen))
	for k := range seen {
		rest = append(rest, k)
	}
	sort.Strings(rest)
	return append(out, rest...)
}

// Cells renders rows as strings in header order. A key missing from a row
// renders empty, a nil value renders NULL.
func Cells(rows []record.Row, header []string) [][]string {
	out := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, len(header))
		for j, col := range header {
			v, ok := r[col]
			if !ok {
				continue
			}
			cells[j] = FormatCell(v)
		}
		out[i] = cells
	}
	return out
}

func RenderTable(w io.Writer, header []string, rows []record.Row, opts Options) {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 40
	}

	cols := len(header)
	if cols == 0 {
		fmt.Fprintln(w, "(no columns)")
		return
	}

	data := Cells(rows, header)

	// compute widths
	widths := make([]int, cols)
	for i, name := range header {
		widths[i] = len(name)
	}

	for _, r := range data {
		for i, s := range r {
			if l := len(s); l > widths[i] {
				if l > opts.MaxWidth {
					l = opts.MaxWidth
				}
				widths[i] = l
			}
		}
	}

	// helpers
	sep := func(ch string) string {
		var b strings.Builder
		b.WriteString("+")
		for i := range widths {
			b.WriteString(strings.Repeat(ch, widths[i]+2))
			b.WriteString("+")
		}
		return b.String()
	}

	writeRow := func(cells []string) {
		var b strings.Builder
		b.WriteString("|")
		for i, c := range cells {
			cut := truncate(c, widths[i])
			b.WriteString(" ")
			b.WriteString(padRight(cut, widths[i]))
			b.WriteString(" |")
		}
		fmt.Fprintln(w, b.String())
	}

	fmt.Fprintln(w, sep("-"))
	writeRow(header)
	fmt.Fprintln(w, sep("="))

	for _, r := range data {
		writeRow(r)
	}
	fmt.Fprintln(w, sep("-"))
}

// RenderJSON writes rows as an indented JSON array.
func RenderJSON(w io.Writer, rows []record.Row) error {
	if rows == nil {
		rows = []record.Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rows)
}

func FormatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	switch t := v.(type) {
	case []byte:
		// heuristic: treat as string if printable, else show len
		s := string(t)
		if isPrintable(s) {
			return s
		}
		return fmt.Sprintf("<blob %d bytes>", len(t))
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func isPrintable(s string) bool {
	for _, r := range s {
		if r < 32 && r != '\n' && r != '\t' {
			return false
		}
	}
	return true
}

func padRight(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}

func truncate(s string, w int) string {
	if len(s) <= w {
		return s
	}
	if w <= 1 {
		return s[:w]
	}
	if w == 2 {
		return s[:2]
	}
	return s[:w-3] + "..."
}
