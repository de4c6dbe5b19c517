package booking

import (
	"errors"
	"fmt"
	"net/mail"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Domain errors
var (
	ErrNotFound          = errors.New("booking not found")
	ErrSlotUnavailable   = errors.New("time slot is no longer available")
	ErrEmptyBookerName   = errors.New("booker name cannot be empty")
	ErrInvalidEmail      = errors.New("booker email is not a valid address")
	ErrMissingStartTime  = errors.New("start time is required")
	ErrInvalidInterval   = errors.New("end time must be after start time")
	ErrMissingEventType  = errors.New("booking must reference an event type")
	ErrDurationMismatch  = errors.New("duration does not match the event type")
	ErrInvalidDuration   = errors.New("duration must be a positive number of minutes")
	ErrBookerNameTooLong = fmt.Errorf("booker name cannot exceed %d characters", MaxBookerNameLength)
)

// MaxBookerNameLength bounds the visitor's display name.
const MaxBookerNameLength = 200

// maxYear is the last year RFC 3339 and the stores can represent.
const maxYear = 9999

// UIDPrefix is prepended to the numeric id to build the opaque booking uid.
const UIDPrefix = "uid-"

// Booking is a reserved [StartTime, EndTime) interval against an event type.
type Booking struct {
	ID          int64     `json:"id"`
	BookerName  string    `json:"bookerName"`
	BookerEmail string    `json:"bookerEmail"`
	StartTime   time.Time `json:"startTime"`
	EndTime     time.Time `json:"endTime"`
	EventTypeID int64     `json:"eventTypeId"`
	UID         string    `json:"uid"`
}

// WithEventType is a booking joined to the title of its event type.
type WithEventType struct {
	Booking
	EventTypeTitle string `json:"eventTypeTitle"`
}

// New builds an unsaved booking whose end time is start plus duration minutes.
// PRE: durationMinutes > 0
// POST: EndTime = StartTime + duration; ID and UID are left for the store
func New(eventTypeID int64, name, email string, start time.Time, durationMinutes int) Booking {
	start = start.UTC()
	return Booking{
		BookerName:  strings.TrimSpace(name),
		BookerEmail: strings.TrimSpace(email),
		StartTime:   start,
		EndTime:     start.Add(time.Duration(durationMinutes) * time.Minute),
		EventTypeID: eventTypeID,
	}
}

// UIDFor derives the uid for a store-assigned id.
func UIDFor(id int64) string {
	return UIDPrefix + strconv.FormatInt(id, 10)
}

// Validate checks if the Booking has valid data.
// PRE: Booking struct is populated
// POST: Returns nil if valid, error otherwise
func (b *Booking) Validate() error {
	if b.EventTypeID <= 0 {
		return ErrMissingEventType
	}
	if strings.TrimSpace(b.BookerName) == "" {
		return ErrEmptyBookerName
	}
	if utf8.RuneCountInString(b.BookerName) > MaxBookerNameLength {
		return ErrBookerNameTooLong
	}
	if err := ValidateEmail(b.BookerEmail); err != nil {
		return err
	}
	if b.StartTime.IsZero() {
		return ErrMissingStartTime
	}
	if !b.EndTime.After(b.StartTime) || b.EndTime.Year() > maxYear {
		return ErrInvalidInterval
	}
	return nil
}

// ValidateEmail accepts a bare address such as a@x.com.
func ValidateEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != strings.TrimSpace(email) {
		return ErrInvalidEmail
	}
	return nil
}

// Overlaps reports whether b and the interval [start, end) share an instant.
// Touching endpoints do not overlap.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return b.StartTime.Before(end) && b.EndTime.After(start)
}
