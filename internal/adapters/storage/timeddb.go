package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
)

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// Scanner is satisfied by *sql.Row and *sql.Rows.
type Scanner interface {
	Scan(dest ...any) error
}

// Querier is the read/write surface shared by connections and transactions.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Tx is a transaction whose statements are rebound and timed like TimedDB's.
type Tx interface {
	Querier
	Commit() error
	Rollback() error
}

// SQLDB is the database interface used by all stores.
// Queries are written with ? placeholders and rebound for the active dialect.
type SQLDB interface {
	Querier
	BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error)
}

// QueryObserver receives the duration of every statement.
type QueryObserver interface {
	ObserveQuery(op string, d time.Duration)
}

// TimedDB wraps a *sqlx.DB to rebind placeholders, log slow queries and report timings.
type TimedDB struct {
	db        *sqlx.DB
	observer  QueryObserver
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps db with timing instrumentation.
// PRE: db is a valid database connection; observer may be nil
// POST: Returns a TimedDB; a non-positive threshold selects DefaultSlowQuery
func NewTimedDB(db *sqlx.DB, observer QueryObserver, threshold time.Duration) *TimedDB {
	if threshold <= 0 {
		threshold = DefaultSlowQuery
	}
	return &TimedDB{db: db, observer: observer, threshold: threshold}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db.DB
}

// Dialect returns the driver name of the wrapped connection.
func (t *TimedDB) Dialect() string {
	return t.db.DriverName()
}

func (t *TimedDB) logQuery(op string, start time.Time) {
	elapsed := time.Since(start)
	durationMs := float64(elapsed.Microseconds()) / 1000.0
	if elapsed >= t.threshold {
		slog.Warn("slow_query", "op", op, "duration_ms", durationMs)
	} else {
		slog.Debug("query", "op", op, "duration_ms", durationMs)
	}
	if t.observer != nil {
		t.observer.ObserveQuery(op, elapsed)
	}
}

// ExecContext rebinds and executes query with timing.
// PRE: ctx is valid, query is non-empty
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.db.Rebind(query), args...)
	t.logQuery("exec", start)
	return result, err
}

// QueryContext rebinds and runs query with timing.
// PRE: ctx is valid, query is non-empty
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.db.Rebind(query), args...)
	t.logQuery("query", start)
	return rows, err
}

// QueryRowContext rebinds and runs a single-row query with timing.
// PRE: ctx is valid, query is non-empty
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.db.Rebind(query), args...)
	t.logQuery("query_row", start)
	return row
}

// BeginTx starts a transaction whose statements are rebound and timed.
// PRE: ctx is valid
// POST: Caller must Commit or Rollback
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTxx(ctx, opts)
	t.logQuery("begin", start)
	if err != nil {
		return nil, err
	}
	return &TimedTx{tx: tx, parent: t}, nil
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// SetMaxOpenConns sets the maximum number of open connections.
// PRE: n >= 0
func (t *TimedDB) SetMaxOpenConns(n int) {
	t.db.SetMaxOpenConns(n)
}

// TimedTx is a transaction opened by TimedDB.
type TimedTx struct {
	tx     *sqlx.Tx
	parent *TimedDB
}

// ExecContext rebinds and executes query inside the transaction.
func (t *TimedTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.tx.ExecContext(ctx, t.tx.Rebind(query), args...)
	t.parent.logQuery("tx_exec", start)
	return result, err
}

// QueryContext rebinds and runs query inside the transaction.
func (t *TimedTx) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.tx.QueryContext(ctx, t.tx.Rebind(query), args...)
	t.parent.logQuery("tx_query", start)
	return rows, err
}

// QueryRowContext rebinds and runs a single-row query inside the transaction.
func (t *TimedTx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.tx.QueryRowContext(ctx, t.tx.Rebind(query), args...)
	t.parent.logQuery("tx_query_row", start)
	return row
}

// Commit commits the transaction.
func (t *TimedTx) Commit() error {
	start := time.Now()
	err := t.tx.Commit()
	t.parent.logQuery("commit", start)
	return err
}

// Rollback aborts the transaction. Rolling back a committed transaction is a no-op error.
func (t *TimedTx) Rollback() error {
	return t.tx.Rollback()
}

// In expands slice arguments in query for use in an IN clause.
// The returned query still uses ? placeholders and is rebound on execution.
func In(query string, args ...any) (string, []any, error) {
	return sqlx.In(query, args...)
}
