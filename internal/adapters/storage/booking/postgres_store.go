package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"bookly/internal/adapters/storage"
	domain "bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
)

// PostgresStore implements Store using Postgres through sqlx.
type PostgresStore struct {
	db *sqlx.DB
}

// NewPostgresStore creates a new BookingStore.
func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

type bookingRow struct {
	ID          int64     `db:"id"`
	UID         string    `db:"uid"`
	BookerName  string    `db:"booker_name"`
	BookerEmail string    `db:"booker_email"`
	StartTime   time.Time `db:"start_time"`
	EndTime     time.Time `db:"end_time"`
	EventTypeID int64     `db:"event_type_id"`
}

func (r bookingRow) toDomain() domain.Booking {
	return domain.Booking{
		ID:          r.ID,
		UID:         r.UID,
		BookerName:  r.BookerName,
		BookerEmail: r.BookerEmail,
		StartTime:   r.StartTime.UTC(),
		EndTime:     r.EndTime.UTC(),
		EventTypeID: r.EventTypeID,
	}
}

type bookingWithTitleRow struct {
	bookingRow
	EventTypeTitle string `db:"event_type_title"`
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	var rows []bookingRow
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	results := make([]domain.Booking, 0, len(rows))
	for _, r := range rows {
		results = append(results, r.toDomain())
	}
	return results, nil
}

// GetByID retrieves a Booking by its ID.
func (s *PostgresStore) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	var row bookingRow
	err := s.db.GetContext(ctx, &row, "SELECT * FROM bookings WHERE id = $1", id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Booking{}, domain.ErrNotFound
	}
	if err != nil {
		return domain.Booking{}, err
	}
	return row.toDomain(), nil
}

// Insert stores value under the next sequence id with uid derived from it.
// PRE: value has been validated
// POST: Returns the stored entity with ID and UID set
// INVARIANT: bookings_no_overlap rejects an overlapping INSERT even across processes
func (s *PostgresStore) Insert(ctx context.Context, value domain.Booking) (domain.Booking, error) {
	var row bookingRow
	err := s.db.GetContext(ctx, &row,
		`INSERT INTO bookings (id, uid, booker_name, booker_email, start_time, end_time, event_type_id)
		 SELECT n.id, $1::text || n.id, $2::text, $3::text, $4::timestamptz, $5::timestamptz, $6::bigint
		 FROM (SELECT nextval(pg_get_serial_sequence('bookings', 'id')) AS id) n
		 RETURNING *`,
		domain.UIDPrefix, value.BookerName, value.BookerEmail,
		value.StartTime.UTC(), value.EndTime.UTC(), value.EventTypeID,
	)
	switch storage.PGErrorCode(err) {
	case "":
		if err != nil {
			return domain.Booking{}, err
		}
		return row.toDomain(), nil
	case storage.PGExclusionViolation:
		return domain.Booking{}, domain.ErrSlotUnavailable
	case storage.PGForeignKeyViolation:
		return domain.Booking{}, eventtype.ErrNotFound
	default:
		return domain.Booking{}, err
	}
}

// ListOverlapping returns bookings on eventTypeID sharing an instant with [start, end).
func (s *PostgresStore) ListOverlapping(ctx context.Context, eventTypeID int64, start, end time.Time) ([]domain.Booking, error) {
	return s.list(ctx,
		`SELECT * FROM bookings
		 WHERE event_type_id = $1 AND start_time < $2 AND end_time > $3
		 ORDER BY start_time, id`,
		eventTypeID, end.UTC(), start.UTC())
}

// ListByEventTypeID returns an event type's bookings ordered by start time.
func (s *PostgresStore) ListByEventTypeID(ctx context.Context, eventTypeID int64) ([]domain.Booking, error) {
	return s.list(ctx, "SELECT * FROM bookings WHERE event_type_id = $1 ORDER BY start_time, id", eventTypeID)
}

// ListForUser joins bookings to the user's event types.
func (s *PostgresStore) ListForUser(ctx context.Context, userID int64) ([]domain.WithEventType, error) {
	var rows []bookingWithTitleRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT b.*, e.title AS event_type_title
		 FROM bookings b JOIN event_types e ON e.id = b.event_type_id
		 WHERE e.user_id = $1 ORDER BY b.start_time, b.id`, userID)
	if err != nil {
		return nil, err
	}
	results := make([]domain.WithEventType, 0, len(rows))
	for _, r := range rows {
		results = append(results, domain.WithEventType{Booking: r.toDomain(), EventTypeTitle: r.EventTypeTitle})
	}
	return results, nil
}

// Delete removes a Booking from the database.
func (s *PostgresStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
