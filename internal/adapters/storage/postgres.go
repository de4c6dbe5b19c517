package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Postgres SQLSTATE codes the stores translate into domain errors.
const (
	PGUniqueViolation     = "23505"
	PGForeignKeyViolation = "23503"
	PGExclusionViolation  = "23P01"
)

// postgresSchema is idempotent; the exclusion constraint is what makes
// concurrent double-booking impossible across processes.
const postgresSchema = `
CREATE EXTENSION IF NOT EXISTS btree_gist;

CREATE TABLE IF NOT EXISTS users (
	id BIGINT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS event_types (
	id BIGSERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	slug TEXT NOT NULL,
	duration INTEGER NOT NULL CHECK (duration > 0),
	description TEXT NOT NULL DEFAULT '',
	user_id BIGINT NOT NULL REFERENCES users(id),
	CONSTRAINT event_types_user_slug_key UNIQUE (user_id, slug)
);

CREATE TABLE IF NOT EXISTS bookings (
	id BIGSERIAL PRIMARY KEY,
	uid TEXT NOT NULL UNIQUE,
	booker_name TEXT NOT NULL,
	booker_email TEXT NOT NULL,
	start_time TIMESTAMPTZ NOT NULL,
	end_time TIMESTAMPTZ NOT NULL,
	event_type_id BIGINT NOT NULL REFERENCES event_types(id),
	CHECK (end_time > start_time),
	CONSTRAINT bookings_no_overlap EXCLUDE USING gist (
		event_type_id WITH =,
		tstzrange(start_time, end_time, '[)') WITH &&
	)
);
`

// OpenPostgres connects to Postgres through lib/pq and verifies the connection.
// PRE: dsn is a lib/pq connection string
// POST: Returns a pinged *sqlx.DB
func OpenPostgres(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	return db, nil
}

// MigratePostgres creates the schema if it does not exist yet.
func MigratePostgres(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("failed to migrate postgres schema: %w", err)
	}
	return nil
}

// PGErrorCode returns the SQLSTATE of a lib/pq error, or "" for anything else.
func PGErrorCode(err error) string {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code)
	}
	return ""
}
