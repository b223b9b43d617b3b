package app

import (
	"context"
	"fmt"
	"io"

	"github.com/bgunnarsson/dictbase/internal/print"
	"github.com/bgunnarsson/dictbase/internal/query"
	"github.com/bgunnarsson/dictbase/internal/record"
)

// Output controls how command results are written.
type Output struct {
	W io.Writer
	// Styled renders lipgloss tables; set when stdout is a terminal.
	Styled bool
	JSON   bool
	// Split reproduces the one-mapping-per-field shape of Where and Only.
	Split bool
}

func (o Output) rows(rows []record.Row, columns []string) error {
	if o.JSON {
		return print.RenderJSON(o.W, rows)
	}
	header := print.Header(rows, columns)
	if len(header) == 0 {
		header = columns
	}
	if o.Styled {
		print.RenderStyled(o.W, header, rows, print.Options{MaxWidth: 60})
		return nil
	}
	print.RenderTable(o.W, header, rows, print.Options{MaxWidth: 60})
	return nil
}

func (o Output) lines(items []string) {
	for _, it := range items {
		fmt.Fprintln(o.W, it)
	}
}

func (o Output) split(rows []record.Row, fields []string) []record.Row {
	if !o.Split {
		return rows
	}
	return record.SplitFields(rows, fields)
}

func (s *Session) RunTables(ctx context.Context, out Output) error {
	tables, err := s.DB.ListTables(ctx)
	if err != nil {
		return err
	}
	out.lines(tables)
	return nil
}

func (s *Session) RunColumns(out Output) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	out.lines(t.Columns())
	return nil
}

func (s *Session) RunAll(ctx context.Context, out Output) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	rows, err := t.All(ctx)
	if err != nil {
		return err
	}
	return out.rows(rows, t.Columns())
}

func (s *Session) RunFind(ctx context.Context, out Output, id any) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	row, err := t.Find(ctx, id)
	if err != nil {
		return err
	}
	if len(row) == 0 {
		return out.rows(nil, t.Columns())
	}
	return out.rows([]record.Row{row}, t.Columns())
}

func (s *Session) RunWhere(ctx context.Context, out Output, conds query.Conditions) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	rows, err := t.Where(ctx, conds)
	if err != nil {
		return err
	}
	return out.rows(out.split(rows, t.Columns()), t.Columns())
}

func (s *Session) RunOnly(ctx context.Context, out Output, fields []string, conds query.Conditions) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	rows, err := t.Only(ctx, fields, conds)
	if err != nil {
		return err
	}
	return out.rows(out.split(rows, fields), fields)
}

func (s *Session) RunCustom(ctx context.Context, out Output, sql string, fields []string) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	rows, err := t.Custom(ctx, sql, fields...)
	if err != nil {
		return err
	}
	if len(fields) == 0 {
		fields = t.Columns()
	}
	return out.rows(rows, fields)
}

// RunInsert inserts values. With dryRun the statement is printed instead.
func (s *Session) RunInsert(ctx context.Context, out Output, values query.Values, dryRun bool) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	if dryRun {
		return s.printStatement(out, t, "insert", values, nil)
	}
	res, err := t.Insert(ctx, values)
	if err != nil {
		return err
	}
	fmt.Fprintf(out.W, "inserted %d row(s), last id %d\n", res.RowsAffected, res.LastInsertID)
	return nil
}

// RunUpdate updates rows matching conds, or every row when conds is empty.
func (s *Session) RunUpdate(ctx context.Context, out Output, values query.Values, conds query.Conditions, dryRun bool) error {
	t, err := s.RequireTable()
	if err != nil {
		return err
	}
	if dryRun {
		return s.printStatement(out, t, "update", values, conds)
	}
	if len(conds) == 0 {
		s.log.Warn().Str("table", t.Name()).Msg("update without conditions, every row is affected")
	}
	res, err := t.Update(ctx, values, conds)
	if err != nil {
		return err
	}
	fmt.Fprintf(out.W, "updated %d row(s)\n", res.RowsAffected)
	return nil
}

func (s *Session) printStatement(out Output, t *record.Table, op string, values query.Values, conds query.Conditions) error {
	st, err := t.Statement(op, values, conds, nil)
	if err != nil {
		return err
	}
	fmt.Fprintln(out.W, st.Inline())
	return nil
}
