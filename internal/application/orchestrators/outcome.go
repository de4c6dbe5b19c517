package orchestrators

import (
	"errors"
	"fmt"
	"strings"

	"bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// Error categories. Orchestrators wrap causes as fmt.Errorf("%w: %w", category, cause)
// so both the category and the domain cause stay matchable with errors.Is.
var (
	ErrValidation = errors.New("invalid input")
	ErrStorage    = errors.New("storage failure")
)

// Kind classifies a failed operation for callers.
type Kind string

// Kinds returned by Describe.
const (
	KindNone            Kind = ""
	KindSlotUnavailable Kind = "slot_unavailable"
	KindSlugConflict    Kind = "slug_conflict"
	KindNotFound        Kind = "not_found"
	KindValidation      Kind = "validation"
	KindStorage         Kind = "storage"
)

// User-facing messages. Storage details never reach these.
const (
	MsgSlotUnavailable = "That time slot is no longer available."
	MsgSlugConflict    = "An event type with this slug already exists."
	MsgStorage         = "Something went wrong saving your changes. Please try again."
)

// Outcome is the uniform result of a mutation.
type Outcome struct {
	Success bool
	Kind    Kind
	Message string
}

// Describe classifies err into an Outcome. A nil error is a success.
// POST: Message never contains text from a storage-layer error
func Describe(err error) Outcome {
	switch {
	case err == nil:
		return Outcome{Success: true}
	case errors.Is(err, booking.ErrSlotUnavailable):
		return Outcome{Kind: KindSlotUnavailable, Message: MsgSlotUnavailable}
	case errors.Is(err, eventtype.ErrSlugConflict):
		return Outcome{Kind: KindSlugConflict, Message: MsgSlugConflict}
	case errors.Is(err, booking.ErrNotFound):
		return Outcome{Kind: KindNotFound, Message: "Booking not found."}
	case errors.Is(err, eventtype.ErrNotFound):
		return Outcome{Kind: KindNotFound, Message: "Event type not found."}
	case errors.Is(err, user.ErrNotFound):
		return Outcome{Kind: KindNotFound, Message: "User not found."}
	case errors.Is(err, ErrValidation):
		cause := strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
		return Outcome{Kind: KindValidation, Message: "Invalid input: " + cause + "."}
	default:
		return Outcome{Kind: KindStorage, Message: MsgStorage}
	}
}

func invalid(cause error) error {
	return fmt.Errorf("%w: %w", ErrValidation, cause)
}

// storageErr passes domain errors from a store through and wraps everything
// else as ErrStorage.
func storageErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, booking.ErrSlotUnavailable),
		errors.Is(err, booking.ErrNotFound),
		errors.Is(err, eventtype.ErrSlugConflict),
		errors.Is(err, eventtype.ErrNotFound),
		errors.Is(err, user.ErrNotFound):
		return err
	default:
		return fmt.Errorf("%w: %w", ErrStorage, err)
	}
}
