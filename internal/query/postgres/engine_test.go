package postgres

import (
	"context"
	"errors"
	"net"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pitwall/pitwall/internal/query"
)

func newSQLMock(t *testing.T) (*Engine, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewEngine(db, time.Second), mock
}

func assertSQLMock(t *testing.T, mock sqlmock.Sqlmock) {
	t.Helper()
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet sqlmock expectations: %v", err)
	}
}

const winnerSQL = `SELECT drivers."forename", drivers."surname" FROM results JOIN drivers ON results."driverId" = drivers."driverId" LIMIT 1`

func TestExecuteMaterializesRowsInColumnOrder(t *testing.T) {
	engine, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(winnerSQL)).
		WillReturnRows(sqlmock.NewRows([]string{"forename", "surname"}).
			AddRow("Max", "Verstappen").
			AddRow("Sergio", "Perez"))

	result, err := engine.Execute(context.Background(), query.Request{SQL: winnerSQL})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Count != 2 || len(result.Rows) != 2 {
		t.Fatalf("Count = %d, len(Rows) = %d", result.Count, len(result.Rows))
	}
	if len(result.Columns) != 2 || result.Columns[0] != "forename" || result.Columns[1] != "surname" {
		t.Fatalf("Columns = %v", result.Columns)
	}
	if result.Rows[0]["forename"] != "Max" || result.Rows[0]["surname"] != "Verstappen" {
		t.Fatalf("Rows[0] = %v", result.Rows[0])
	}
	assertSQLMock(t, mock)
}

func TestExecuteNormalizesBytesToStrings(t *testing.T) {
	engine, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "country" FROM circuits`)).
		WillReturnRows(sqlmock.NewRows([]string{"country"}).AddRow([]byte("Monaco")))

	result, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT "country" FROM circuits`})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got, ok := result.Rows[0]["country"].(string); !ok || got != "Monaco" {
		t.Fatalf("country = %#v, want string %q", result.Rows[0]["country"], "Monaco")
	}
	assertSQLMock(t, mock)
}

func TestExecuteEmptyResultSet(t *testing.T) {
	engine, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "name" FROM races`)).
		WillReturnRows(sqlmock.NewRows([]string{"name"}))

	result, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT "name" FROM races`})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.Count != 0 {
		t.Fatalf("Count = %d", result.Count)
	}
	if result.Rows == nil {
		t.Fatal("Rows should be empty, not nil")
	}
	assertSQLMock(t, mock)
}

func TestExecuteServerRejectionIsExecError(t *testing.T) {
	engine, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT nope FROM drivers`)).
		WillReturnError(&pgconn.PgError{Code: "42703", Message: `column "nope" does not exist`})

	_, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT nope FROM drivers`})
	var execErr *query.ExecError
	if !errors.As(err, &execErr) {
		t.Fatalf("Execute() error = %v, want ExecError", err)
	}
	assertSQLMock(t, mock)
}

func TestExecuteConnectionFaultIsNotExecError(t *testing.T) {
	engine, mock := newSQLMock(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT 1 FROM drivers`)).
		WillReturnError(&net.OpError{Op: "dial", Err: errors.New("connection refused")})

	_, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT 1 FROM drivers`})
	if err == nil {
		t.Fatal("expected error")
	}
	var execErr *query.ExecError
	if errors.As(err, &execErr) {
		t.Fatalf("connection fault classified as ExecError: %v", err)
	}
	assertSQLMock(t, mock)
}

func TestExecuteReturnsConnectionOnFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	db.SetMaxOpenConns(1)
	engine := NewEngine(db, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT bad FROM drivers`)).
		WillReturnError(&pgconn.PgError{Code: "42703", Message: "bad column"})
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT "code" FROM drivers`)).
		WillReturnRows(sqlmock.NewRows([]string{"code"}).AddRow("VER"))

	if _, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT bad FROM drivers`}); err == nil {
		t.Fatal("expected failure for first query")
	}

	// With a single-connection pool this only succeeds if the failed
	// execution released its connection.
	done := make(chan error, 1)
	go func() {
		_, err := engine.Execute(context.Background(), query.Request{SQL: `SELECT "code" FROM drivers`})
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("second Execute() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("second query blocked; connection was not returned to the pool")
	}
	assertSQLMock(t, mock)
}
