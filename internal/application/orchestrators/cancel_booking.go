package orchestrators

import (
	"context"
	"log/slog"

	"bookly/internal/domain/booking"
)

// CancelBookingInput carries input for the cancel booking orchestrator.
type CancelBookingInput struct {
	BookingID int64
}

// CancelBookingDeps holds dependencies for CancelBooking.
type CancelBookingDeps struct {
	BookingStore BookingStoreForOrchestrator
}

// ExecuteCancelBooking hard-deletes a booking.
// PRE: BookingID > 0
// POST: Booking removed, or booking.ErrNotFound if it did not exist
func ExecuteCancelBooking(ctx context.Context, input CancelBookingInput, deps CancelBookingDeps) error {
	if input.BookingID <= 0 {
		return booking.ErrNotFound
	}
	found, err := deps.BookingStore.Delete(ctx, input.BookingID)
	if err != nil {
		return storageErr(err)
	}
	if !found {
		return booking.ErrNotFound
	}
	slog.Info("booking_event", "event", "booking_cancelled", "booking_id", input.BookingID)
	return nil
}
