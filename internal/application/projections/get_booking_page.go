package projections

import (
	"context"
	"time"

	domainEventType "bookly/internal/domain/eventtype"
	domainUser "bookly/internal/domain/user"
)

// GetBookingPageQuery carries query parameters.
type GetBookingPageQuery struct {
	Username string
	Slug     string
	Now      time.Time
}

// TakenSlot is an interval a visitor can no longer book.
type TakenSlot struct {
	Start time.Time
	End   time.Time
}

// GetBookingPageResult carries the query result.
type GetBookingPageResult struct {
	Host      domainUser.User
	EventType domainEventType.EventType
	Taken     []TakenSlot // upcoming only, ascending
}

// GetBookingPageDeps holds dependencies for GetBookingPage.
type GetBookingPageDeps struct {
	UserStore      UserStore
	EventTypeStore EventTypeStore
	BookingStore   BookingStore
}

// QueryGetBookingPage resolves /{username}/{slug} to the public booking view.
// PRE: Username and Slug are non-empty
// POST: Returns eventtype.ErrNotFound if either lookup fails
func QueryGetBookingPage(ctx context.Context, query GetBookingPageQuery, deps GetBookingPageDeps) (GetBookingPageResult, error) {
	et, err := deps.EventTypeStore.FindByUsernameAndSlug(ctx, query.Username, query.Slug)
	if err != nil {
		return GetBookingPageResult{}, err
	}
	host, err := deps.UserStore.GetByUsername(ctx, query.Username)
	if err != nil {
		return GetBookingPageResult{}, err
	}
	bookings, err := deps.BookingStore.ListByEventTypeID(ctx, et.ID)
	if err != nil {
		return GetBookingPageResult{}, err
	}

	taken := []TakenSlot{}
	for _, b := range bookings {
		if !query.Now.IsZero() && !b.EndTime.After(query.Now) {
			continue
		}
		taken = append(taken, TakenSlot{Start: b.StartTime, End: b.EndTime})
	}
	return GetBookingPageResult{Host: host, EventType: et, Taken: taken}, nil
}
