// Package record maps one relational table to dictionary-shaped rows.
//
// A Table discovers its columns once, when it is created, and builds every
// statement from that snapshot. Values always travel as bound parameters.
package record

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/bgunnarsson/dictbase/internal/db"
	"github.com/bgunnarsson/dictbase/internal/query"
)

// Table is bound to a single table of a caller-owned connection.
type Table struct {
	conn       db.DB
	ph         query.Placeholder
	name       string
	columns    []string
	timestamps bool
	now        func() time.Time
	log        zerolog.Logger
}

type Option func(*Table)

// WithTimestamps toggles filling the updated/created columns on Insert.
// Enabled by default.
func WithTimestamps(on bool) Option {
	return func(t *Table) { t.timestamps = on }
}

func WithLogger(log zerolog.Logger) Option {
	return func(t *Table) { t.log = log }
}

// WithClock replaces time.Now for the insert timestamps.
func WithClock(now func() time.Time) Option {
	return func(t *Table) { t.now = now }
}

// New binds a Table to name and loads its column list.
func New(ctx context.Context, conn db.DB, name string, opts ...Option) (*Table, error) {
	t := &Table{
		conn:       conn,
		ph:         conn.Placeholder(),
		name:       name,
		timestamps: true,
		now:        time.Now,
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.log = t.log.With().Str("table", name).Logger()

	cols, err := t.loadColumns(ctx)
	if err != nil {
		return nil, err
	}
	t.columns = cols
	return t, nil
}

// NewFor binds a Table named after a type, see TableName.
func NewFor(ctx context.Context, conn db.DB, typeName string, opts ...Option) (*Table, error) {
	return New(ctx, conn, TableName(typeName), opts...)
}

// TableName derives the conventional table name of a type: lower-cased
// with an "s" appended ("Patient" -> "patients").
func TableName(typeName string) string {
	if i := strings.LastIndex(typeName, "."); i >= 0 {
		typeName = typeName[i+1:]
	}
	return strings.ToLower(strings.TrimPrefix(typeName, "*")) + "s"
}

func (t *Table) loadColumns(ctx context.Context) ([]string, error) {
	cols, err := t.conn.Columns(ctx, t.name)
	if err != nil {
		return nil, &SchemaError{Table: t.name, Err: err}
	}
	if len(cols) == 0 {
		return nil, &SchemaError{Table: t.name}
	}
	t.log.Debug().Strs("columns", cols).Msg("columns loaded")
	return cols, nil
}

// Name returns the bound table name.
func (t *Table) Name() string { return t.name }

// Columns returns a copy of the column snapshot taken at construction.
func (t *Table) Columns() []string {
	out := make([]string, len(t.columns))
	copy(out, t.columns)
	return out
}

// Timestamps reports whether Insert fills updated/created.
func (t *Table) Timestamps() bool { return t.timestamps }

func (t *Table) query(ctx context.Context, op string, st query.Statement) (*db.Rows, error) {
	t.log.Debug().Str("op", op).Str("sql", st.SQL).Str("stmt", st.Inline()).Msg("query")
	rows, err := t.conn.Query(ctx, st.SQL, st.Args...)
	if err != nil {
		t.log.Warn().Err(err).Str("op", op).Str("sql", st.SQL).Msg("query failed")
		return nil, &DriverError{Op: op, SQL: st.SQL, Err: err}
	}
	return rows, nil
}

func (t *Table) exec(ctx context.Context, op string, st query.Statement) (db.Result, error) {
	t.log.Debug().Str("op", op).Str("sql", st.SQL).Str("stmt", st.Inline()).Msg("exec")
	res, err := t.conn.Exec(ctx, st.SQL, st.Args...)
	if err != nil {
		t.log.Warn().Err(err).Str("op", op).Str("sql", st.SQL).Msg("exec failed")
		return db.Result{}, &DriverError{Op: op, SQL: st.SQL, Err: err}
	}
	return res, nil
}

// All returns every row keyed by the cached columns.
func (t *Table) All(ctx context.Context) ([]Row, error) {
	rows, err := t.query(ctx, "all", query.SelectAll(t.name))
	if err != nil {
		return nil, err
	}
	return materializeAll(rows, t.columns)
}

// Find returns the row whose id equals id, or an empty Row.
func (t *Table) Find(ctx context.Context, id any) (Row, error) {
	rows, err := t.query(ctx, "find", query.SelectByID(t.ph, t.name, id))
	if err != nil {
		return nil, err
	}
	return materializeOne(rows, t.columns)
}

// Where returns the rows matching every condition.
func (t *Table) Where(ctx context.Context, conds query.Conditions) ([]Row, error) {
	st, err := query.SelectWhere(t.ph, t.name, conds)
	if err != nil {
		return nil, err
	}
	rows, err := t.query(ctx, "where", st)
	if err != nil {
		return nil, err
	}
	return materializeAll(rows, t.columns)
}

// Only returns the requested fields of the rows matching conds. Empty conds
// select every row.
func (t *Table) Only(ctx context.Context, fields []string, conds query.Conditions) ([]Row, error) {
	st, err := query.SelectFields(t.ph, t.name, fields, conds)
	if err != nil {
		return nil, err
	}
	rows, err := t.query(ctx, "only", st)
	if err != nil {
		return nil, err
	}
	return materializeAll(rows, fields)
}

// Custom runs a caller-supplied statement. Rows are keyed by fields, or by
// the cached columns when none are given. The statement is executed as is.
func (t *Table) Custom(ctx context.Context, sql string, fields ...string) ([]Row, error) {
	rows, err := t.query(ctx, "custom", query.Statement{SQL: sql})
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		fields = t.columns
	}
	return materializeAll(rows, fields)
}

// stamp captures one instant for both timestamp columns, nil when disabled.
func (t *Table) stamp() *int64 {
	if !t.timestamps {
		return nil
	}
	ts := t.now().Unix()
	return &ts
}

// Insert adds one row. With timestamps enabled, updated and created are set
// to the same Unix time in seconds.
func (t *Table) Insert(ctx context.Context, values query.Values) (db.Result, error) {
	st, err := query.Insert(t.ph, t.name, values, t.stamp())
	if err != nil {
		return db.Result{}, err
	}
	return t.exec(ctx, "insert", st)
}

// Update assigns rows on every record matching conds. Without conditions
// every record of the table is updated.
func (t *Table) Update(ctx context.Context, rows query.Values, conds query.Conditions) (db.Result, error) {
	st, err := query.Update(t.ph, t.name, rows, conds)
	if err != nil {
		return db.Result{}, err
	}
	return t.exec(ctx, "update", st)
}

// Statement builds what op would run without executing it. Supported ops
// are insert, update, where, only and all.
func (t *Table) Statement(op string, values query.Values, conds query.Conditions, fields []string) (query.Statement, error) {
	switch op {
	case "all":
		return query.SelectAll(t.name), nil
	case "where":
		return query.SelectWhere(t.ph, t.name, conds)
	case "only":
		return query.SelectFields(t.ph, t.name, fields, conds)
	case "insert":
		return query.Insert(t.ph, t.name, values, t.stamp())
	case "update":
		return query.Update(t.ph, t.name, values, conds)
	default:
		return query.Statement{}, fmt.Errorf("unknown op %q: %w", op, ErrArgument)
	}
}
