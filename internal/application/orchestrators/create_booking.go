package orchestrators

import (
	"context"
	"log/slog"
	"time"

	"bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
)

// BookingStoreForOrchestrator defines the booking store methods orchestrators need.
type BookingStoreForOrchestrator interface {
	Insert(ctx context.Context, b booking.Booking) (booking.Booking, error)
	ListOverlapping(ctx context.Context, eventTypeID int64, start, end time.Time) ([]booking.Booking, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

// EventTypeLookup resolves an event type by id.
type EventTypeLookup interface {
	GetByID(ctx context.Context, id int64) (eventtype.EventType, error)
}

// CreateBookingInput carries input for the create booking orchestrator.
type CreateBookingInput struct {
	EventTypeID int64
	BookerName  string
	BookerEmail string
	StartTime   time.Time
	// DurationMinutes is optional. When non-zero it must equal the event
	// type's stored duration, which is always what EndTime is computed from.
	DurationMinutes int
}

// CreateBookingDeps holds dependencies for CreateBooking.
type CreateBookingDeps struct {
	EventTypeStore EventTypeLookup
	BookingStore   BookingStoreForOrchestrator
}

// ExecuteCreateBooking reserves [StartTime, StartTime+duration) on an event type.
// PRE: EventTypeID refers to an existing event type
// POST: Booking persisted with ID and UID assigned
// INVARIANT: No two bookings on one event type overlap; the store re-checks atomically
func ExecuteCreateBooking(ctx context.Context, input CreateBookingInput, deps CreateBookingDeps) (booking.Booking, error) {
	if input.DurationMinutes < 0 {
		return booking.Booking{}, invalid(booking.ErrInvalidDuration)
	}
	// Validate the visitor's fields before touching the store; the interval
	// is recomputed below from the stored duration.
	b := booking.New(input.EventTypeID, input.BookerName, input.BookerEmail, input.StartTime, 1)
	if err := b.Validate(); err != nil {
		return booking.Booking{}, invalid(err)
	}

	et, err := deps.EventTypeStore.GetByID(ctx, input.EventTypeID)
	if err != nil {
		return booking.Booking{}, storageErr(err)
	}
	if input.DurationMinutes != 0 && input.DurationMinutes != et.Duration {
		return booking.Booking{}, invalid(booking.ErrDurationMismatch)
	}
	b = booking.New(et.ID, b.BookerName, b.BookerEmail, b.StartTime, et.Duration)

	taken, err := deps.BookingStore.ListOverlapping(ctx, et.ID, b.StartTime, b.EndTime)
	if err != nil {
		return booking.Booking{}, storageErr(err)
	}
	if len(taken) > 0 {
		slog.Info("booking_event", "event", "slot_unavailable", "event_type_id", et.ID,
			"start", b.StartTime, "conflict_id", taken[0].ID)
		return booking.Booking{}, booking.ErrSlotUnavailable
	}

	created, err := deps.BookingStore.Insert(ctx, b)
	if err != nil {
		return booking.Booking{}, storageErr(err)
	}

	slog.Info("booking_event", "event", "booking_created", "booking_id", created.ID,
		"event_type_id", et.ID, "start", created.StartTime, "end", created.EndTime)
	return created, nil
}
