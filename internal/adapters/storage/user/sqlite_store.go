package user

import (
	"context"
	"database/sql"
	"errors"

	"bookly/internal/adapters/storage"
	domain "bookly/internal/domain/user"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new UserStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

// GetByID retrieves a User by its ID.
// PRE: id > 0
// POST: Returns the user or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, "SELECT id, username, email FROM users WHERE id = ?", id))
}

// GetByUsername retrieves a User by username.
func (s *SQLiteStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, "SELECT id, username, email FROM users WHERE username = ?", username))
}

func (s *SQLiteStore) scanOne(row *sql.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return u, err
}

// Count returns the number of users.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&n)
	return n, err
}

// Save persists a User to the database.
// PRE: value has been validated
// POST: Entity is persisted (insert or update)
func (s *SQLiteStore) Save(ctx context.Context, value domain.User) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users (id, username, email) VALUES (?, ?, ?) ON CONFLICT(id) DO UPDATE SET username=excluded.username, email=excluded.email",
		value.ID, value.Username, value.Email,
	)
	return err
}
