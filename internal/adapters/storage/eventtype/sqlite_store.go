package eventtype

import (
	"context"
	"database/sql"
	"errors"

	"bookly/internal/adapters/storage"
	domain "bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

const selectColumns = "SELECT e.id, e.title, e.slug, e.duration, e.description, e.user_id FROM event_types e"

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new EventTypeStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEventType(row scanner) (domain.EventType, error) {
	var e domain.EventType
	err := row.Scan(&e.ID, &e.Title, &e.Slug, &e.Duration, &e.Description, &e.UserID)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EventType{}, domain.ErrNotFound
	}
	return e, err
}

// GetByID retrieves an EventType by its ID.
// PRE: id > 0
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.EventType, error) {
	return scanEventType(s.db.QueryRowContext(ctx, selectColumns+" WHERE e.id = ?", id))
}

// GetByUserAndSlug retrieves the EventType a user published under slug.
func (s *SQLiteStore) GetByUserAndSlug(ctx context.Context, userID int64, slug string) (domain.EventType, error) {
	return scanEventType(s.db.QueryRowContext(ctx, selectColumns+" WHERE e.user_id = ? AND e.slug = ?", userID, slug))
}

// FindByUsernameAndSlug resolves username to a user, then slug within that user.
// POST: domain.ErrNotFound if either lookup fails
func (s *SQLiteStore) FindByUsernameAndSlug(ctx context.Context, username, slug string) (domain.EventType, error) {
	return scanEventType(s.db.QueryRowContext(ctx,
		selectColumns+" JOIN users u ON u.id = e.user_id WHERE u.username = ? AND e.slug = ?",
		username, slug))
}

// ListByUserID retrieves a user's EventTypes ordered by id.
func (s *SQLiteStore) ListByUserID(ctx context.Context, userID int64) ([]domain.EventType, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE e.user_id = ? ORDER BY e.id", userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.EventType{}
	for rows.Next() {
		e, err := scanEventType(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, e)
	}
	return results, rows.Err()
}

// Insert stores value under max(id)+1 in a single statement.
// PRE: value has been validated
// POST: Returns the stored entity with its assigned ID
// INVARIANT: UNIQUE(user_id, slug) rejects duplicates inside the INSERT
func (s *SQLiteStore) Insert(ctx context.Context, value domain.EventType) (domain.EventType, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO event_types (id, title, slug, duration, description, user_id)
		 SELECT COALESCE(MAX(id), 0) + 1, ?, ?, ?, ?, ? FROM event_types
		 RETURNING id`,
		value.Title, value.Slug, value.Duration, value.Description, value.UserID,
	).Scan(&value.ID)
	switch {
	case err == nil:
		return value, nil
	case storage.IsConstraintError(err, "UNIQUE constraint failed: event_types"):
		return domain.EventType{}, domain.ErrSlugConflict
	case storage.IsConstraintError(err, "FOREIGN KEY constraint failed"):
		return domain.EventType{}, user.ErrNotFound
	default:
		return domain.EventType{}, err
	}
}
