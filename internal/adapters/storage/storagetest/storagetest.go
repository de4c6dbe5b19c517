// Package storagetest opens migrated databases for store tests.
package storagetest

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"bookly/internal/adapters/storage"
)

// PostgresDSNEnv names the variable that enables Postgres store tests.
const PostgresDSNEnv = "BOOKLY_TEST_POSTGRES_DSN"

// OpenSQLite returns a migrated SQLite database in a temp directory.
func OpenSQLite(t *testing.T) *storage.TimedDB {
	t.Helper()
	db, err := sql.Open("sqlite", storage.SQLiteDSN(filepath.Join(t.TempDir(), "bookly.db")))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigrateDB(context.Background(), db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return storage.NewTimedDB(db, nil, 0)
}

// OpenPostgres returns a migrated, emptied Postgres database, or skips the
// test when BOOKLY_TEST_POSTGRES_DSN is unset.
func OpenPostgres(t *testing.T) *sqlx.DB {
	t.Helper()
	dsn := os.Getenv(PostgresDSNEnv)
	if dsn == "" {
		t.Skipf("%s not set", PostgresDSNEnv)
	}
	ctx := context.Background()
	db, err := storage.OpenPostgres(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to open postgres: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := storage.MigratePostgres(ctx, db); err != nil {
		t.Fatalf("failed to migrate postgres: %v", err)
	}
	if _, err := db.ExecContext(ctx, "TRUNCATE bookings, event_types, users RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("failed to reset postgres: %v", err)
	}
	return db
}
