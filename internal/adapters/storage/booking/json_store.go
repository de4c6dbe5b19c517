package booking

import (
	"context"
	"errors"
	"sort"
	"time"

	"bookly/internal/adapters/storage/jsonfile"
	domain "bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
)

// JSONStore implements Store over the shared JSON document.
type JSONStore struct {
	file *jsonfile.File
}

// NewJSONStore creates a new BookingStore backed by file.
func NewJSONStore(file *jsonfile.File) *JSONStore {
	return &JSONStore{file: file}
}

// GetByID retrieves a Booking by its ID.
// PRE: id > 0
// POST: Returns the entity or domain.ErrNotFound
func (s *JSONStore) GetByID(ctx context.Context, id int64) (domain.Booking, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.Booking{}, err
	}
	for _, b := range doc.Bookings {
		if b.ID == id {
			return b, nil
		}
	}
	return domain.Booking{}, domain.ErrNotFound
}

// Insert appends value with the next id and its derived uid.
// PRE: value has been validated
// POST: Returns the stored entity with ID and UID set
// INVARIANT: The overlap re-check and the append share one document update
func (s *JSONStore) Insert(ctx context.Context, value domain.Booking) (domain.Booking, error) {
	var stored domain.Booking
	err := s.file.Update(ctx, func(doc *jsonfile.Document) error {
		if !hasEventType(doc, value.EventTypeID) {
			return eventtype.ErrNotFound
		}
		if len(overlapping(doc.Bookings, value.EventTypeID, value.StartTime, value.EndTime)) > 0 {
			return domain.ErrSlotUnavailable
		}
		stored = value
		stored.ID = doc.NextBookingID()
		stored.UID = domain.UIDFor(stored.ID)
		doc.Bookings = append(doc.Bookings, stored)
		return nil
	})
	if err != nil {
		return domain.Booking{}, err
	}
	return stored, nil
}

// ListOverlapping returns bookings on eventTypeID sharing an instant with [start, end).
func (s *JSONStore) ListOverlapping(ctx context.Context, eventTypeID int64, start, end time.Time) ([]domain.Booking, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return nil, err
	}
	return overlapping(doc.Bookings, eventTypeID, start, end), nil
}

// ListByEventTypeID returns an event type's bookings ordered by start time.
func (s *JSONStore) ListByEventTypeID(ctx context.Context, eventTypeID int64) ([]domain.Booking, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return nil, err
	}
	results := []domain.Booking{}
	for _, b := range doc.Bookings {
		if b.EventTypeID == eventTypeID {
			results = append(results, b)
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return startsBefore(results[i], results[j]) })
	return results, nil
}

// ListForUser joins bookings to the user's event types.
// POST: Bookings on event types outside the user's set are excluded
func (s *JSONStore) ListForUser(ctx context.Context, userID int64) ([]domain.WithEventType, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return nil, err
	}
	titles := make(map[int64]string)
	for _, e := range doc.EventTypes {
		if e.UserID == userID {
			titles[e.ID] = e.Title
		}
	}
	results := []domain.WithEventType{}
	for _, b := range doc.Bookings {
		if title, ok := titles[b.EventTypeID]; ok {
			results = append(results, domain.WithEventType{Booking: b, EventTypeTitle: title})
		}
	}
	sort.SliceStable(results, func(i, j int) bool { return startsBefore(results[i].Booking, results[j].Booking) })
	return results, nil
}

// Delete removes the booking with id if present.
// POST: Returns true when a record was removed; the document is only rewritten then
func (s *JSONStore) Delete(ctx context.Context, id int64) (bool, error) {
	found := false
	err := s.file.Update(ctx, func(doc *jsonfile.Document) error {
		// Update may retry against a fresher document.
		found = false
		kept := doc.Bookings[:0]
		for _, b := range doc.Bookings {
			if b.ID == id {
				found = true
				continue
			}
			kept = append(kept, b)
		}
		if !found {
			return errNothingDeleted
		}
		doc.Bookings = kept
		return nil
	})
	if errors.Is(err, errNothingDeleted) {
		return false, nil
	}
	return found, err
}

// errNothingDeleted aborts the update so a miss does not rewrite the file.
var errNothingDeleted = errors.New("nothing deleted")

func overlapping(bookings []domain.Booking, eventTypeID int64, start, end time.Time) []domain.Booking {
	results := []domain.Booking{}
	for _, b := range bookings {
		if b.EventTypeID == eventTypeID && b.Overlaps(start, end) {
			results = append(results, b)
		}
	}
	return results
}

func hasEventType(doc *jsonfile.Document, id int64) bool {
	for _, e := range doc.EventTypes {
		if e.ID == id {
			return true
		}
	}
	return false
}

// startsBefore orders by start time, then id.
func startsBefore(a, b domain.Booking) bool {
	if !a.StartTime.Equal(b.StartTime) {
		return a.StartTime.Before(b.StartTime)
	}
	return a.ID < b.ID
}
