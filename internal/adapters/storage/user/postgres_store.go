package user

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	domain "bookly/internal/domain/user"
)

// PostgresStore implements Store using Postgres through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new UserStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type userRow struct {
	ID       int64  `db:"id"`
	Username string `db:"username"`
	Email    string `db:"email"`
}

func (r userRow) toDomain() domain.User {
	return domain.User{ID: r.ID, Username: r.Username, Email: r.Email}
}

// GetByID retrieves a User by its ID.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT id, username, email FROM users WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return row.toDomain(), err
}

// GetByUsername retrieves a User by username.
func (s *PostgresStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, "SELECT id, username, email FROM users WHERE username = $1", username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, domain.ErrNotFound
	}
	return row.toDomain(), err
}

// Count returns the number of users.
func (s *PostgresStore) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM users")
	return n, err
}

// Save persists a User to the database.
// PRE: value has been validated
// POST: Entity is persisted (insert or update)
func (s *PostgresStore) Save(ctx context.Context, value domain.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email) VALUES ($1, $2, $3)
		 ON CONFLICT (id) DO UPDATE SET username = EXCLUDED.username, email = EXCLUDED.email`,
		value.ID, value.Username, value.Email,
	)
	return err
}
