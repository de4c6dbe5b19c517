package projections

import (
	"context"

	domainBooking "bookly/internal/domain/booking"
	domainEventType "bookly/internal/domain/eventtype"
	domainUser "bookly/internal/domain/user"
)

// GetBookingDetailQuery carries query parameters.
type GetBookingDetailQuery struct {
	BookingID int64
}

// GetBookingDetailResult carries the query result.
type GetBookingDetailResult struct {
	Booking   domainBooking.WithEventType
	EventType domainEventType.EventType
	Host      domainUser.User
}

// GetBookingDetailDeps holds dependencies for GetBookingDetail.
type GetBookingDetailDeps struct {
	BookingStore   BookingLookup
	EventTypeStore EventTypeLookup
	UserStore      UserStore
}

// QueryGetBookingDetail loads one booking with its event type and host, as
// needed for a calendar invite.
// PRE: BookingID > 0
// POST: Returns booking.ErrNotFound for an unknown booking
func QueryGetBookingDetail(ctx context.Context, query GetBookingDetailQuery, deps GetBookingDetailDeps) (GetBookingDetailResult, error) {
	if query.BookingID <= 0 {
		return GetBookingDetailResult{}, domainBooking.ErrNotFound
	}
	b, err := deps.BookingStore.GetByID(ctx, query.BookingID)
	if err != nil {
		return GetBookingDetailResult{}, err
	}
	et, err := deps.EventTypeStore.GetByID(ctx, b.EventTypeID)
	if err != nil {
		return GetBookingDetailResult{}, err
	}
	host, err := deps.UserStore.GetByID(ctx, et.UserID)
	if err != nil {
		return GetBookingDetailResult{}, err
	}
	return GetBookingDetailResult{
		Booking:   domainBooking.WithEventType{Booking: b, EventTypeTitle: et.Title},
		EventType: et,
		Host:      host,
	}, nil
}
