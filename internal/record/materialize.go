package record

import (
	"fmt"

	"github.com/bgunnarsson/dictbase/internal/db"
)

// Row is one record keyed by column name.
type Row map[string]any

// fieldIndexes resolves each field to its position in the result set.
func fieldIndexes(rows *db.Rows, fields []string) ([]int, error) {
	idx := make([]int, len(fields))
	for i, f := range fields {
		idx[i] = rows.Index(f)
		if idx[i] < 0 {
			return nil, fmt.Errorf("field %q not in result: %w", f, ErrArgument)
		}
	}
	return idx, nil
}

func toRow(data db.Row, fields []string, idx []int) Row {
	row := make(Row, len(fields))
	for i, f := range fields {
		row[f] = data[idx[i]]
	}
	return row
}

// materializeOne returns the first row, or an empty non-nil Row.
func materializeOne(rows *db.Rows, fields []string) (Row, error) {
	if rows == nil || len(rows.Data) == 0 {
		return Row{}, nil
	}
	idx, err := fieldIndexes(rows, fields)
	if err != nil {
		return nil, err
	}
	return toRow(rows.Data[0], fields, idx), nil
}

// materializeAll returns one Row per result row, in result order.
func materializeAll(rows *db.Rows, fields []string) ([]Row, error) {
	out := []Row{}
	if rows == nil || len(rows.Data) == 0 {
		return out, nil
	}
	idx, err := fieldIndexes(rows, fields)
	if err != nil {
		return nil, err
	}
	for _, data := range rows.Data {
		out = append(out, toRow(data, fields, idx))
	}
	return out, nil
}

// SplitFields breaks every row into one single-key Row per field, in field
// order. This is the shape older callers of Where and Only received.
func SplitFields(rows []Row, fields []string) []Row {
	out := make([]Row, 0, len(rows)*len(fields))
	for _, r := range rows {
		for _, f := range fields {
			v, ok := r[f]
			if !ok {
				continue
			}
			out = append(out, Row{f: v})
		}
	}
	return out
}
