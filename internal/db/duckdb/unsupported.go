//go:build !(cgo && ((darwin && (amd64 || arm64)) || (linux && (amd64 || arm64 || riscv64))))

package duckdb

import (
	"errors"

	"github.com/bgunnarsson/dictbase/internal/db"
)

// Available reports whether this build links the duckdb driver.
const Available = false

// ErrUnsupported is returned by Open on builds without cgo.
var ErrUnsupported = errors.New("duckdb: not supported in this build (requires cgo)")

// Open always fails on this platform.
func Open(string) (db.DB, error) {
	return nil, ErrUnsupported
}
