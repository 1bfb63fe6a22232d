package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (r *recordingObserver) ObserveQuery(op string, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ops = append(r.ops, op)
}

func (r *recordingObserver) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.ops)
}

func openTimedTestDB(t *testing.T, observer QueryObserver) *TimedDB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("CREATE TABLE test (id TEXT PRIMARY KEY, val TEXT)"); err != nil {
		t.Fatalf("create table: %v", err)
	}
	tdb := NewTimedDB(db, observer, 0)
	t.Cleanup(func() { tdb.Close() })
	return tdb
}

// TestTimedDB_ObservesStatements verifies every statement reaches the observer.
func TestTimedDB_ObservesStatements(t *testing.T) {
	obs := &recordingObserver{}
	tdb := openTimedTestDB(t, obs)
	ctx := context.Background()

	if _, err := tdb.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "1", "hello"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	var val string
	if err := tdb.QueryRowContext(ctx, "SELECT val FROM test WHERE id = ?", "1").Scan(&val); err != nil {
		t.Fatalf("QueryRowContext: %v", err)
	}
	if val != "hello" {
		t.Errorf("val = %q, want hello", val)
	}
	rows, err := tdb.QueryContext(ctx, "SELECT id FROM test")
	if err != nil {
		t.Fatalf("QueryContext: %v", err)
	}
	rows.Close()

	if obs.count() != 3 {
		t.Errorf("observed %d statements, want 3", obs.count())
	}
}

// TestTimedDB_TxCommitAndRollback verifies transactions through TimedTx.
func TestTimedDB_TxCommitAndRollback(t *testing.T) {
	tdb := openTimedTestDB(t, nil)
	ctx := context.Background()

	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "a", "kept"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	tx, err = tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO test (id, val) VALUES (?, ?)", "b", "dropped"); err != nil {
		t.Fatal(err)
	}
	if err := tx.Rollback(); err != nil {
		t.Fatalf("Rollback: %v", err)
	}

	var n int
	if err := tdb.QueryRowContext(ctx, "SELECT COUNT(*) FROM test").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("rows = %d, want 1", n)
	}
}

// TestTimedDB_RebindsForPostgres verifies ? placeholders become $n on Postgres.
func TestTimedDB_RebindsForPostgres(t *testing.T) {
	mockDB, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer mockDB.Close()

	tdb := NewTimedDB(sqlx.NewDb(mockDB, DialectPostgres), nil, time.Second)
	mock.ExpectExec("UPDATE lead SET status = $1 WHERE id = $2").
		WithArgs("contacted", "lead-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM lead WHERE id = $1").
		WithArgs("lead-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ctx := context.Background()
	if _, err := tdb.ExecContext(ctx, "UPDATE lead SET status = ? WHERE id = ?", "contacted", "lead-1"); err != nil {
		t.Fatalf("ExecContext: %v", err)
	}
	tx, err := tdb.BeginTx(ctx, nil)
	if err != nil {
		t.Fatalf("BeginTx: %v", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM lead WHERE id = ?", "lead-2"); err != nil {
		t.Fatalf("tx ExecContext: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestIn_ExpandsSlice(t *testing.T) {
	q, args, err := In("SELECT id FROM lead WHERE status IN (?) AND source = ?", []string{"new", "contacted"}, "website")
	if err != nil {
		t.Fatal(err)
	}
	if q != "SELECT id FROM lead WHERE status IN (?, ?) AND source = ?" {
		t.Errorf("query = %q", q)
	}
	if len(args) != 3 {
		t.Errorf("args = %v, want 3", args)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2026, 10, 19, 9, 30, 15, 123456000, time.FixedZone("IST", 19800))
	got, err := ParseTime(FormatTime(in))
	if err != nil {
		t.Fatal(err)
	}
	if !got.Equal(in) {
		t.Errorf("round trip = %v, want %v", got, in)
	}
	if OptionalTime(time.Time{}) != "" {
		t.Error("zero time should store as empty string")
	}
	if zero, err := ParseTime(""); err != nil || !zero.IsZero() {
		t.Errorf("ParseTime(\"\") = %v, %v", zero, err)
	}
}
