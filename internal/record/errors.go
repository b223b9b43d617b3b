package record

import (
	"errors"
	"fmt"

	"github.com/bgunnarsson/dictbase/internal/query"
)

var (
	// ErrArgument marks empty conditions, fields or values where at least one
	// entry is required, and requested fields missing from a result.
	ErrArgument = query.ErrArgument

	// ErrSchema matches every *SchemaError.
	ErrSchema = errors.New("schema discovery failed")
)

// SchemaError reports that the columns of a table could not be discovered.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("table %q: no columns found", e.Table)
	}
	return fmt.Sprintf("table %q: load columns: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// DriverError wraps a failure returned by the driver. The driver's error is
// kept as is and reachable through errors.As / errors.Is.
type DriverError struct {
	Op  string
	SQL string
	Err error
}

func (e *DriverError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *DriverError) Unwrap() error { return e.Err }
