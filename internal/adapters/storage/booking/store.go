package booking

import (
	"context"
	"time"

	domain "bookly/internal/domain/booking"
)

// Store persists Booking state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.Booking, error)
	// Insert assigns the next id and uid and rejects an interval overlapping
	// an existing booking on the same event type with domain.ErrSlotUnavailable.
	// The overlap check and the write are one atomic step.
	Insert(ctx context.Context, value domain.Booking) (domain.Booking, error)
	// ListOverlapping returns bookings on eventTypeID sharing an instant with [start, end).
	ListOverlapping(ctx context.Context, eventTypeID int64, start, end time.Time) ([]domain.Booking, error)
	ListByEventTypeID(ctx context.Context, eventTypeID int64) ([]domain.Booking, error)
	// ListForUser joins bookings to the user's event types, ordered by start time.
	ListForUser(ctx context.Context, userID int64) ([]domain.WithEventType, error)
	// Delete hard-deletes a booking and reports whether one was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}
