package web

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"bookly/internal/adapters/icalendar"
	"bookly/internal/application/projections"
	"bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// handleBookingsFeed serves every host booking as one subscribable calendar.
func (s *server) handleBookingsFeed(w http.ResponseWriter, r *http.Request) {
	host, err := s.stores.UserStore.GetByID(r.Context(), s.opts.HostUserID)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}
	all, err := s.stores.BookingStore.ListForUser(r.Context(), host.ID)
	if err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", icalendar.ContentType)
	w.Write([]byte(icalendar.Feed(host, all, s.opts.Now())))
}

// handleBookingInvite serves a single booking as a METHOD:REQUEST invite.
func (s *server) handleBookingInvite(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	res, err := projections.QueryGetBookingDetail(r.Context(), projections.GetBookingDetailQuery{BookingID: id},
		projections.GetBookingDetailDeps{
			BookingStore:   s.stores.BookingStore,
			EventTypeStore: s.stores.EventTypeStore,
			UserStore:      s.stores.UserStore,
		})
	if err != nil {
		if errors.Is(err, booking.ErrNotFound) || errors.Is(err, eventtype.ErrNotFound) || errors.Is(err, user.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", icalendar.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.ics"`, res.Booking.UID))
	w.Write([]byte(icalendar.Invite(res.Host, res.Booking, res.EventType.Description, s.opts.Now())))
}
