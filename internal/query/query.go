package query

import (
	"context"
	"time"
)

// Request carries one validated SQL statement to the engine. The statement
// is executed verbatim; the engine never rewrites it.
type Request struct {
	SQL string
}

// Result holds the materialized rows of one execution. Columns preserves the
// order of the statement's result descriptor; every row maps those column
// names to values.
type Result struct {
	Columns  []string
	Rows     []map[string]any
	Count    int
	Duration time.Duration
}

type Engine interface {
	Execute(ctx context.Context, request Request) (Result, error)
}

// ExecError reports that the database processed the statement and rejected
// it, as opposed to a connection or pool level fault. Most of these stem
// from a malformed generated query.
type ExecError struct {
	Err error
}

func (e *ExecError) Error() string {
	return "query execution failed: " + e.Err.Error()
}

func (e *ExecError) Unwrap() error {
	return e.Err
}
