package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// TimeLayout is the fixed-width UTC layout used for timestamp columns.
// Fixed width keeps lexicographic order equal to chronological order, which
// the overlap trigger relies on.
const TimeLayout = "2006-01-02T15:04:05.000000000Z"

// FormatTime renders t for a TEXT timestamp column.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a TEXT timestamp column.
func ParseTime(s string) (time.Time, error) {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t.UTC(), nil
}

// SQLiteDSN builds a modernc.org/sqlite DSN with WAL, foreign keys and a busy timeout.
func SQLiteDSN(path string) string {
	return path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)&_pragma=synchronous(NORMAL)"
}

// IsConstraintError reports whether err came from a SQLite constraint or
// trigger abort whose message contains marker.
func IsConstraintError(err error, marker string) bool {
	return err != nil && strings.Contains(err.Error(), marker)
}

// migration is one forward-only schema step.
type migration struct {
	version     int
	description string
	up          string
}

// migrations is the ordered SQLite schema history. Append only.
var migrations = []migration{
	{
		version:     1,
		description: "users, event types and bookings",
		up: `
		CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY,
			username TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS event_types (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			slug TEXT NOT NULL,
			duration INTEGER NOT NULL CHECK (duration > 0),
			description TEXT NOT NULL DEFAULT '',
			user_id INTEGER NOT NULL,
			UNIQUE (user_id, slug),
			FOREIGN KEY (user_id) REFERENCES users(id)
		);

		CREATE TABLE IF NOT EXISTS bookings (
			id INTEGER PRIMARY KEY,
			uid TEXT NOT NULL UNIQUE,
			booker_name TEXT NOT NULL,
			booker_email TEXT NOT NULL,
			start_time TEXT NOT NULL,
			end_time TEXT NOT NULL,
			event_type_id INTEGER NOT NULL,
			CHECK (end_time > start_time),
			FOREIGN KEY (event_type_id) REFERENCES event_types(id)
		);

		CREATE TRIGGER IF NOT EXISTS booking_no_overlap
		BEFORE INSERT ON bookings
		WHEN EXISTS (
			SELECT 1 FROM bookings
			WHERE event_type_id = NEW.event_type_id
			  AND start_time < NEW.end_time
			  AND end_time > NEW.start_time
		)
		BEGIN
			SELECT RAISE(ABORT, 'booking_overlap');
		END;
		`,
	},
	{
		version:     2,
		description: "booking lookup index",
		up:          `CREATE INDEX IF NOT EXISTS idx_booking_event_type_start ON bookings (event_type_id, start_time);`,
	},
}

// LatestSchemaVersion returns the version the migration chain ends at.
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// SchemaVersion returns the applied schema version, or 0 for an empty database.
// PRE: db is a valid connection
// POST: Returns the highest recorded version
func SchemaVersion(ctx context.Context, db SQLDB) (int, error) {
	var exists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'").Scan(&exists)
	if err != nil {
		return 0, fmt.Errorf("failed to inspect schema: %w", err)
	}
	if exists == 0 {
		return 0, nil
	}
	var v sql.NullInt64
	if err := db.QueryRowContext(ctx, "SELECT MAX(version) FROM schema_version").Scan(&v); err != nil {
		return 0, fmt.Errorf("failed to read schema version: %w", err)
	}
	return int(v.Int64), nil
}

// MigrateDB applies every pending migration, each in its own transaction.
// PRE: db is a valid connection with foreign keys enabled
// POST: Schema is at LatestSchemaVersion
// INVARIANT: Applied migrations are never re-run
func MigrateDB(ctx context.Context, db SQLDB) error {
	if _, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_version (
		version INTEGER PRIMARY KEY,
		description TEXT NOT NULL,
		applied_at TEXT NOT NULL
	)`); err != nil {
		return fmt.Errorf("failed to create schema_version: %w", err)
	}

	current, err := SchemaVersion(ctx, db)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("migration %d: begin: %w", m.version, err)
		}
		if _, err := tx.ExecContext(ctx, m.up); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.description, err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_version (version, description, applied_at) VALUES (?, ?, ?)",
			m.version, m.description, FormatTime(time.Now())); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: record version: %w", m.version, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d: commit: %w", m.version, err)
		}
	}
	return nil
}
