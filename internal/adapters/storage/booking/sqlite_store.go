package booking

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"bookly/internal/adapters/storage"
	domain "bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
)

const (
	columns       = "b.id, b.uid, b.booker_name, b.booker_email, b.start_time, b.end_time, b.event_type_id"
	selectColumns = "SELECT " + columns + " FROM bookings b"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db storage.SQLDB
}

// NewSQLiteStore creates a new BookingStore.
func NewSQLiteStore(db storage.SQLDB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBooking(row scanner, extra ...any) (domain.Booking, error) {
	var b domain.Booking
	var start, end string
	dest := append([]any{&b.ID, &b.UID, &b.BookerName, &b.BookerEmail, &start, &end, &b.EventTypeID}, extra...)
	if err := row.Scan(dest...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Booking{}, domain.ErrNotFound
		}
		return domain.Booking{}, err
	}
	var err error
	if b.StartTime, err = storage.ParseTime(start); err != nil {
		return domain.Booking{}, err
	}
	if b.EndTime, err = storage.ParseTime(end); err != nil {
		return domain.Booking{}, err
	}
	return b, nil
}

func (s *SQLiteStore) list(ctx context.Context, query string, args ...any) ([]domain.Booking, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, b)
	}
	return results, rows.Err()
}

// GetByID retrieves a Booking by its ID.
// PRE: id > 0
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLiteStore) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	return scanBooking(s.db.QueryRowContext(ctx, selectColumns+" WHERE b.id = ?", id))
}

// Insert stores value under max(id)+1 with uid derived from that id.
// PRE: value has been validated
// POST: Returns the stored entity with ID and UID set
// INVARIANT: The booking_no_overlap trigger aborts an overlapping INSERT
func (s *SQLiteStore) Insert(ctx context.Context, value domain.Booking) (domain.Booking, error) {
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO bookings (id, uid, booker_name, booker_email, start_time, end_time, event_type_id)
		 SELECT next_id, ? || next_id, ?, ?, ?, ?, ?
		 FROM (SELECT COALESCE(MAX(id), 0) + 1 AS next_id FROM bookings)
		 RETURNING id, uid`,
		domain.UIDPrefix, value.BookerName, value.BookerEmail,
		storage.FormatTime(value.StartTime), storage.FormatTime(value.EndTime), value.EventTypeID,
	).Scan(&value.ID, &value.UID)
	switch {
	case err == nil:
		value.StartTime = value.StartTime.UTC()
		value.EndTime = value.EndTime.UTC()
		return value, nil
	case storage.IsConstraintError(err, "booking_overlap"):
		return domain.Booking{}, domain.ErrSlotUnavailable
	case storage.IsConstraintError(err, "FOREIGN KEY constraint failed"):
		return domain.Booking{}, eventtype.ErrNotFound
	default:
		return domain.Booking{}, err
	}
}

// ListOverlapping returns bookings on eventTypeID sharing an instant with [start, end).
func (s *SQLiteStore) ListOverlapping(ctx context.Context, eventTypeID int64, start, end time.Time) ([]domain.Booking, error) {
	return s.list(ctx,
		selectColumns+" WHERE b.event_type_id = ? AND b.start_time < ? AND b.end_time > ? ORDER BY b.start_time, b.id",
		eventTypeID, storage.FormatTime(end), storage.FormatTime(start))
}

// ListByEventTypeID returns an event type's bookings ordered by start time.
func (s *SQLiteStore) ListByEventTypeID(ctx context.Context, eventTypeID int64) ([]domain.Booking, error) {
	return s.list(ctx, selectColumns+" WHERE b.event_type_id = ? ORDER BY b.start_time, b.id", eventTypeID)
}

// ListForUser joins bookings to the user's event types.
// POST: Bookings on event types outside the user's set are excluded
func (s *SQLiteStore) ListForUser(ctx context.Context, userID int64) ([]domain.WithEventType, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+columns+`, e.title FROM bookings b JOIN event_types e ON e.id = b.event_type_id
		 WHERE e.user_id = ? ORDER BY b.start_time, b.id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	results := []domain.WithEventType{}
	for rows.Next() {
		var title string
		b, err := scanBooking(rows, &title)
		if err != nil {
			return nil, err
		}
		results = append(results, domain.WithEventType{Booking: b, EventTypeTitle: title})
	}
	return results, rows.Err()
}

// Delete removes a Booking from the database.
// POST: Returns true when a row was removed
func (s *SQLiteStore) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, "DELETE FROM bookings WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
