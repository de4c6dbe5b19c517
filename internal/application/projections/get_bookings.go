package projections

import (
	"context"
	"slices"
	"time"

	domainBooking "bookly/internal/domain/booking"
)

// GetBookingsQuery carries query parameters.
type GetBookingsQuery struct {
	UserID int64
	Now    time.Time
}

// GetBookingsResult carries the query result.
type GetBookingsResult struct {
	Upcoming []domainBooking.WithEventType // start >= Now, soonest first
	Past     []domainBooking.WithEventType // start < Now, most recent first
}

// GetBookingsDeps holds dependencies for GetBookings.
type GetBookingsDeps struct {
	BookingStore BookingStore
}

// QueryGetBookings lists a host's bookings split around Now.
// PRE: UserID > 0
// POST: Every booking on the host's event types appears exactly once
func QueryGetBookings(ctx context.Context, query GetBookingsQuery, deps GetBookingsDeps) (GetBookingsResult, error) {
	all, err := deps.BookingStore.ListForUser(ctx, query.UserID)
	if err != nil {
		return GetBookingsResult{}, err
	}

	result := GetBookingsResult{
		Upcoming: []domainBooking.WithEventType{},
		Past:     []domainBooking.WithEventType{},
	}
	// all is ascending by start time.
	for _, b := range all {
		if b.StartTime.Before(query.Now) {
			result.Past = append(result.Past, b)
		} else {
			result.Upcoming = append(result.Upcoming, b)
		}
	}
	slices.Reverse(result.Past)
	return result, nil
}
