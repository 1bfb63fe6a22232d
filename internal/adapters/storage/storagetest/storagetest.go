// Package storagetest opens migrated in-memory databases for store tests.
package storagetest

import (
	"testing"

	"fitstudio/internal/adapters/storage"
)

// Open returns a TimedDB over a fresh in-memory SQLite database with every migration applied.
// The pool is pinned to one connection because each :memory: connection is its own database.
func Open(t *testing.T) *storage.TimedDB {
	t.Helper()
	db, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := storage.MigrateDB(db.DB, storage.DialectSQLite); err != nil {
		db.Close()
		t.Fatalf("migrate test db: %v", err)
	}
	tdb := storage.NewTimedDB(db, nil, 0)
	t.Cleanup(func() { tdb.Close() })
	return tdb
}
