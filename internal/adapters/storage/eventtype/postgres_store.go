package eventtype

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"bookly/internal/adapters/storage"
	domain "bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// PostgresStore implements Store using Postgres through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new EventTypeStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type eventTypeRow struct {
	ID          int64  `db:"id"`
	Title       string `db:"title"`
	Slug        string `db:"slug"`
	Duration    int    `db:"duration"`
	Description string `db:"description"`
	UserID      int64  `db:"user_id"`
}

func (r eventTypeRow) toDomain() domain.EventType {
	return domain.EventType{
		ID:          r.ID,
		Title:       r.Title,
		Slug:        r.Slug,
		Duration:    r.Duration,
		Description: r.Description,
		UserID:      r.UserID,
	}
}

func (s *PostgresStore) getOne(ctx context.Context, query string, args ...any) (domain.EventType, error) {
	var row eventTypeRow
	err := s.db.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.EventType{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.EventType{}, err
	}
	return row.toDomain(), nil
}

// GetByID retrieves an EventType by its ID.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (domain.EventType, error) {
	return s.getOne(ctx, "SELECT * FROM event_types WHERE id = $1", id)
}

// GetByUserAndSlug retrieves the EventType a user published under slug.
func (s *PostgresStore) GetByUserAndSlug(ctx context.Context, userID int64, slug string) (domain.EventType, error) {
	return s.getOne(ctx, "SELECT * FROM event_types WHERE user_id = $1 AND slug = $2", userID, slug)
}

// FindByUsernameAndSlug resolves username to a user, then slug within that user.
func (s *PostgresStore) FindByUsernameAndSlug(ctx context.Context, username, slug string) (domain.EventType, error) {
	return s.getOne(ctx,
		`SELECT e.* FROM event_types e JOIN users u ON u.id = e.user_id
		 WHERE u.username = $1 AND e.slug = $2`, username, slug)
}

// ListByUserID retrieves a user's EventTypes ordered by id.
func (s *PostgresStore) ListByUserID(ctx context.Context, userID int64) ([]domain.EventType, error) {
	var rows []eventTypeRow
	if err := s.db.SelectContext(ctx, &rows, "SELECT * FROM event_types WHERE user_id = $1 ORDER BY id", userID); err != nil {
		return nil, err
	}
	results := make([]domain.EventType, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// Insert stores value under the next sequence id.
// PRE: value has been validated
// POST: Returns the stored entity with its assigned ID
// INVARIANT: event_types_user_slug_key rejects duplicates inside the INSERT
func (s *PostgresStore) Insert(ctx context.Context, value domain.EventType) (domain.EventType, error) {
	err := s.db.QueryRowxContext(ctx,
		`INSERT INTO event_types (title, slug, duration, description, user_id)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		value.Title, value.Slug, value.Duration, value.Description, value.UserID,
	).Scan(&value.ID)
	switch storage.PGErrorCode(err) {
	case "":
		if err != nil {
			return domain.EventType{}, err
		}
		return value, nil
	case storage.PGUniqueViolation:
		return domain.EventType{}, domain.ErrSlugConflict
	case storage.PGForeignKeyViolation:
		return domain.EventType{}, user.ErrNotFound
	default:
		return domain.EventType{}, err
	}
}
