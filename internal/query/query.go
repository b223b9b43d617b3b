// Package query builds the SQL statements used by the record accessor.
//
// Every builder collects discrete clause items and joins them once. Values are
// never interpolated into the SQL text; they travel as bound arguments in
// Statement.Args, rendered with the dialect's Placeholder.
package query

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrArgument is returned when a builder gets an empty set of conditions,
// fields, values or assignments where at least one is required.
var ErrArgument = errors.New("invalid argument")

// Placeholder renders the bind parameter for the n-th argument (1-based).
type Placeholder func(n int) string

// Question renders "?" (mysql, sqlite, duckdb).
func Question(int) string { return "?" }

// Dollar renders "$n" (postgres).
func Dollar(n int) string { return "$" + strconv.Itoa(n) }

// AtP renders "@pn" (sqlserver).
func AtP(n int) string { return "@p" + strconv.Itoa(n) }

// Pair is one column/value item. Used for equality conditions, insert values
// and update assignments.
type Pair struct {
	Column string
	Value  any
}

// Pairs keeps the caller's column order.
type Pairs []Pair

// Conditions are AND-joined equality predicates. A nil value matches NULL.
type Conditions = Pairs

// Values are insert values or update assignments.
type Values = Pairs

// FromMap converts a map into pairs sorted by column name, so that map input
// still produces deterministic SQL.
func FromMap[V any](m map[string]V) Pairs {
	if len(m) == 0 {
		return nil
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make(Pairs, 0, len(keys))
	for _, k := range keys {
		out = append(out, Pair{Column: k, Value: m[k]})
	}
	return out
}

// Columns returns the column names in order.
func (p Pairs) Columns() []string {
	out := make([]string, len(p))
	for i, pair := range p {
		out[i] = pair.Column
	}
	return out
}

// Has reports whether column is set, compared case-insensitively.
func (p Pairs) Has(column string) bool {
	for _, pair := range p {
		if strings.EqualFold(pair.Column, column) {
			return true
		}
	}
	return false
}

// Statement is a SQL string plus its bound arguments.
type Statement struct {
	SQL  string
	Args []any
}

// Inline renders the statement with every argument substituted as a quoted
// SQL string literal. It is meant for logs and dry runs, never for execution.
func (s Statement) Inline() string {
	if len(s.Args) == 0 {
		return s.SQL
	}

	var b strings.Builder
	b.Grow(len(s.SQL) + 16*len(s.Args))

	next := 0
	sql := s.SQL
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '?' && next < len(s.Args):
			b.WriteString(literal(s.Args[next]))
			next++
		case (c == '$' || c == '@') && next < len(s.Args):
			j := i + 1
			if c == '@' && j < len(sql) && sql[j] == 'p' {
				j++
			}
			k := j
			for k < len(sql) && sql[k] >= '0' && sql[k] <= '9' {
				k++
			}
			if k == j {
				b.WriteByte(c)
				continue
			}
			n, _ := strconv.Atoi(sql[j:k])
			if n >= 1 && n <= len(s.Args) {
				b.WriteString(literal(s.Args[n-1]))
			} else {
				b.WriteString(sql[i:k])
			}
			next++
			i = k - 1
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func (s Statement) String() string { return s.Inline() }

func literal(v any) string {
	if v == nil {
		return "NULL"
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []byte:
		s = string(x)
	default:
		s = fmt.Sprint(x)
	}
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// args hands out placeholders in order and collects the bound values.
type args struct {
	ph   Placeholder
	vals []any
}

func newArgs(ph Placeholder) *args {
	if ph == nil {
		ph = Question
	}
	return &args{ph: ph}
}

func (a *args) bind(v any) string {
	a.vals = append(a.vals, v)
	return a.ph(len(a.vals))
}

// assignments renders "col = ph" items.
func (a *args) assignments(p Pairs) []string {
	items := make([]string, len(p))
	for i, pair := range p {
		items[i] = pair.Column + " = " + a.bind(pair.Value)
	}
	return items
}

// where renders AND-joined predicates. A nil value becomes "col IS NULL";
// "col = NULL" never matches.
func (a *args) where(conds Conditions) string {
	if len(conds) == 0 {
		return ""
	}
	items := make([]string, len(conds))
	for i, pair := range conds {
		if pair.Value == nil {
			items[i] = pair.Column + " IS NULL"
			continue
		}
		items[i] = pair.Column + " = " + a.bind(pair.Value)
	}
	return " WHERE " + strings.Join(items, " AND ")
}

// SelectAll builds "SELECT * FROM table".
func SelectAll(table string) Statement {
	return Statement{SQL: "SELECT * FROM " + table}
}

// SelectByID builds a point lookup on the id column.
func SelectByID(ph Placeholder, table string, id any) Statement {
	a := newArgs(ph)
	sql := "SELECT * FROM " + table + a.where(Conditions{{Column: "id", Value: id}})
	return Statement{SQL: sql, Args: a.vals}
}

// SelectWhere builds a filtered select. At least one condition is required.
func SelectWhere(ph Placeholder, table string, conds Conditions) (Statement, error) {
	if len(conds) == 0 {
		return Statement{}, fmt.Errorf("select %s: no conditions: %w", table, ErrArgument)
	}
	a := newArgs(ph)
	sql := "SELECT * FROM " + table + a.where(conds)
	return Statement{SQL: sql, Args: a.vals}, nil
}

// SelectFields builds a projected select with optional conditions.
func SelectFields(ph Placeholder, table string, fields []string, conds Conditions) (Statement, error) {
	if len(fields) == 0 {
		return Statement{}, fmt.Errorf("select %s: no fields: %w", table, ErrArgument)
	}
	a := newArgs(ph)
	sql := "SELECT " + strings.Join(fields, ",") + " FROM " + table + a.where(conds)
	return Statement{SQL: sql, Args: a.vals}, nil
}

// Insert builds an INSERT. When stamp is non-nil its value is bound to the
// updated and created columns, appended after the caller's values. A stamp
// column the caller already set keeps the caller's value.
func Insert(ph Placeholder, table string, values Values, stamp *int64) (Statement, error) {
	if len(values) == 0 {
		return Statement{}, fmt.Errorf("insert %s: no values: %w", table, ErrArgument)
	}
	a := newArgs(ph)

	cols := values.Columns()
	vals := make([]string, 0, len(values)+2)
	for _, pair := range values {
		vals = append(vals, a.bind(pair.Value))
	}
	if stamp != nil {
		for _, col := range []string{"updated", "created"} {
			if values.Has(col) {
				continue
			}
			cols = append(cols, col)
			vals = append(vals, a.bind(*stamp))
		}
	}

	sql := "INSERT INTO " + table + " (" + strings.Join(cols, ",") + ") VALUES (" + strings.Join(vals, ",") + ")"
	return Statement{SQL: sql, Args: a.vals}, nil
}

// Update builds an UPDATE. Without conditions it targets every row.
func Update(ph Placeholder, table string, rows Values, conds Conditions) (Statement, error) {
	if len(rows) == 0 {
		return Statement{}, fmt.Errorf("update %s: no assignments: %w", table, ErrArgument)
	}
	a := newArgs(ph)
	sql := "UPDATE " + table + " SET " + strings.Join(a.assignments(rows), ",") + a.where(conds)
	return Statement{SQL: sql, Args: a.vals}, nil
}

// ParseFilter parses a one-line filter such as "name=Ana Smith id=3". A word
// containing "=" starts a new pair; other words extend the previous value.
func ParseFilter(s string) (Pairs, error) {
	var items []string
	for _, word := range strings.Fields(s) {
		if strings.Contains(word, "=") || len(items) == 0 {
			items = append(items, word)
			continue
		}
		items[len(items)-1] += " " + word
	}
	return ParsePairs(items)
}

// ParsePairs parses "col=val" items, keeping their order.
func ParsePairs(items []string) (Pairs, error) {
	out := make(Pairs, 0, len(items))
	for _, item := range items {
		col, val, ok := strings.Cut(item, "=")
		col = strings.TrimSpace(col)
		if !ok || col == "" {
			return nil, fmt.Errorf("expected col=val, got %q: %w", item, ErrArgument)
		}
		out = append(out, Pair{Column: col, Value: val})
	}
	return out, nil
}
