package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pitwall/pitwall/internal/query"
)

const defaultQueryTimeout = 10 * time.Second

// Engine executes validated SELECT statements against a pooled Postgres
// connection and materializes the rows.
type Engine struct {
	db      *sql.DB
	timeout time.Duration
}

func NewEngine(db *sql.DB, timeout time.Duration) *Engine {
	if timeout <= 0 {
		timeout = defaultQueryTimeout
	}
	return &Engine{db: db, timeout: timeout}
}

func (e *Engine) Execute(ctx context.Context, request query.Request) (query.Result, error) {
	start := time.Now()
	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.QueryContext(queryCtx, request.SQL)
	if err != nil {
		return query.Result{}, classify(err)
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return query.Result{}, &query.ExecError{Err: err}
	}

	out := make([]map[string]any, 0)
	values := make([]any, len(columns))
	targets := make([]any, len(columns))
	for i := range values {
		targets[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(targets...); err != nil {
			return query.Result{}, &query.ExecError{Err: err}
		}
		row := make(map[string]any, len(columns))
		for i, name := range columns {
			row[name] = normalize(values[i])
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return query.Result{}, &query.ExecError{Err: err}
	}

	return query.Result{
		Columns:  columns,
		Rows:     out,
		Count:    len(out),
		Duration: time.Since(start),
	}, nil
}

// classify separates statement-level rejections (the database processed the
// query and refused it, or it timed out) from connection and pool faults.
// A *pgconn.PgError means the server itself answered.
func classify(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return &query.ExecError{Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &query.ExecError{Err: err}
	}
	return fmt.Errorf("acquire database connection: %w", err)
}

// normalize converts driver byte slices to strings so rows serialize as
// readable JSON instead of base64.
func normalize(value any) any {
	if b, ok := value.([]byte); ok {
		return string(b)
	}
	return value
}
