package projections

import (
	"context"

	domainBooking "bookly/internal/domain/booking"
	domainEventType "bookly/internal/domain/eventtype"
	domainUser "bookly/internal/domain/user"
)

// UserStore interface for user queries.
type UserStore interface {
	GetByID(ctx context.Context, id int64) (domainUser.User, error)
	GetByUsername(ctx context.Context, username string) (domainUser.User, error)
}

// EventTypeStore interface for event type queries.
type EventTypeStore interface {
	ListByUserID(ctx context.Context, userID int64) ([]domainEventType.EventType, error)
	FindByUsernameAndSlug(ctx context.Context, username, slug string) (domainEventType.EventType, error)
}

// BookingStore interface for booking queries.
type BookingStore interface {
	ListForUser(ctx context.Context, userID int64) ([]domainBooking.WithEventType, error)
	ListByEventTypeID(ctx context.Context, eventTypeID int64) ([]domainBooking.Booking, error)
}

// BookingLookup resolves a single booking.
type BookingLookup interface {
	GetByID(ctx context.Context, id int64) (domainBooking.Booking, error)
}

// EventTypeLookup resolves a single event type.
type EventTypeLookup interface {
	GetByID(ctx context.Context, id int64) (domainEventType.EventType, error)
}
