package web

import (
	"errors"
	"net/http"

	"bookly/internal/application/projections"
	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// handleHome lists the host's event types with links to their booking pages.
func (s *server) handleHome(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetHostPage(r.Context(), projections.GetHostPageQuery{UserID: s.opts.HostUserID},
		projections.GetHostPageDeps{UserStore: s.stores.UserStore, EventTypeStore: s.stores.EventTypeStore})
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.Error(w, "host not found", http.StatusNotFound)
			return
		}
		internalError(w, r, err)
		return
	}
	s.renderTemplate(w, r, "home.html", "Event types", res)
}

// eventTypeFormData pre-fills the new event type form.
type eventTypeFormData struct {
	DefaultDuration int
	MaxDuration     int
}

func (s *server) handleNewEventTypeForm(w http.ResponseWriter, r *http.Request) {
	s.renderTemplate(w, r, "event_type_new.html", "New event type", eventTypeFormData{
		DefaultDuration: eventtype.DefaultDuration,
		MaxDuration:     eventtype.MaxDurationMinutes,
	})
}

// handleBookingsPage shows the host's upcoming and past bookings.
func (s *server) handleBookingsPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetBookings(r.Context(),
		projections.GetBookingsQuery{UserID: s.opts.HostUserID, Now: s.opts.Now()},
		projections.GetBookingsDeps{BookingStore: s.stores.BookingStore})
	if err != nil {
		internalError(w, r, err)
		return
	}
	s.renderTemplate(w, r, "bookings.html", "Bookings", res)
}

// bookingPageData is the public booking view.
type bookingPageData struct {
	projections.GetBookingPageResult
	Booked bool
}

// handleBookingPage serves /{username}/{slug}.
func (s *server) handleBookingPage(w http.ResponseWriter, r *http.Request) {
	res, err := projections.QueryGetBookingPage(r.Context(),
		projections.GetBookingPageQuery{
			Username: r.PathValue("username"),
			Slug:     r.PathValue("slug"),
			Now:      s.opts.Now(),
		},
		projections.GetBookingPageDeps{
			UserStore:      s.stores.UserStore,
			EventTypeStore: s.stores.EventTypeStore,
			BookingStore:   s.stores.BookingStore,
		})
	if err != nil {
		if errors.Is(err, eventtype.ErrNotFound) || errors.Is(err, user.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}
	s.renderTemplate(w, r, "booking_page.html", res.EventType.Title, bookingPageData{
		GetBookingPageResult: res,
		Booked:               r.URL.Query().Get("booked") == "1",
	})
}
