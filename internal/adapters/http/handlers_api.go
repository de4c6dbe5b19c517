package web

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"bookly/internal/adapters/http/middleware"
	"bookly/internal/application/orchestrators"
	"bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
)

// localTimeLayout is what an <input type="datetime-local"> submits.
const localTimeLayout = "2006-01-02T15:04"

// createBookingRequest is the JSON body of POST /api/bookings.
type createBookingRequest struct {
	EventTypeID     int64  `json:"eventTypeId"`
	Name            string `json:"name"`
	Email           string `json:"email"`
	StartTime       string `json:"startTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// createEventTypeRequest is the JSON body of POST /api/event-types.
type createEventTypeRequest struct {
	Title           string  `json:"title"`
	Slug            string  `json:"slug"`
	DurationMinutes int     `json:"durationMinutes"`
	Description     *string `json:"description"`
}

// parseStartTime accepts RFC 3339 or a datetime-local value, read as UTC.
// An empty value yields the zero time and is rejected by booking validation.
func parseStartTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	if t, err := time.ParseInLocation(localTimeLayout, v, time.UTC); err == nil {
		return t, nil
	}
	return time.Time{}, badRequest("start time must be an RFC 3339 timestamp")
}

// formInt reads an optional integer form field; blank is 0.
func formInt(r *http.Request, field string) (int64, error) {
	v := strings.TrimSpace(r.PostFormValue(field))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, badRequest("%s must be a whole number", field)
	}
	return n, nil
}

// decodeCreateBooking reads either body shape into orchestrator input.
func decodeCreateBooking(w http.ResponseWriter, r *http.Request) (orchestrators.CreateBookingInput, error) {
	var req createBookingRequest
	if middleware.IsJSON(r) {
		if err := strictDecode(w, r, &req); err != nil {
			return orchestrators.CreateBookingInput{}, err
		}
	} else {
		if err := parseForm(w, r); err != nil {
			return orchestrators.CreateBookingInput{}, err
		}
		id, err := formInt(r, "eventTypeId")
		if err != nil {
			return orchestrators.CreateBookingInput{}, err
		}
		dur, err := formInt(r, "durationMinutes")
		if err != nil {
			return orchestrators.CreateBookingInput{}, err
		}
		req = createBookingRequest{
			EventTypeID:     id,
			Name:            r.PostFormValue("name"),
			Email:           r.PostFormValue("email"),
			StartTime:       r.PostFormValue("startTime"),
			DurationMinutes: int(dur),
		}
	}

	start, err := parseStartTime(req.StartTime)
	if err != nil {
		return orchestrators.CreateBookingInput{}, err
	}
	return orchestrators.CreateBookingInput{
		EventTypeID:     req.EventTypeID,
		BookerName:      req.Name,
		BookerEmail:     req.Email,
		StartTime:       start,
		DurationMinutes: req.DurationMinutes,
	}, nil
}

// handleCreateBooking serves POST /api/bookings.
func (s *server) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	input, err := decodeCreateBooking(w, r)
	if err == nil {
		var created booking.Booking
		created, err = orchestrators.ExecuteCreateBooking(r.Context(), input, orchestrators.CreateBookingDeps{
			EventTypeStore: s.stores.EventTypeStore,
			BookingStore:   s.stores.BookingStore,
		})
		if err == nil && !middleware.IsJSON(r) {
			s.recorder.BookingCreated(outcomeLabel(orchestrators.KindNone))
			http.Redirect(w, r, s.bookingPagePath(r, created.EventTypeID)+"?booked=1", http.StatusSeeOther)
			return
		}
	}
	out := writeResult(w, r, err)
	s.recorder.BookingCreated(outcomeLabel(out.Kind))
}

// bookingPagePath finds the public page of an event type for the post-booking
// redirect, falling back to the site root.
func (s *server) bookingPagePath(r *http.Request, eventTypeID int64) string {
	et, err := s.stores.EventTypeStore.GetByID(r.Context(), eventTypeID)
	if err != nil {
		return "/"
	}
	host, err := s.stores.UserStore.GetByID(r.Context(), et.UserID)
	if err != nil {
		return "/"
	}
	return "/" + url.PathEscape(host.Username) + "/" + url.PathEscape(et.Slug)
}

// handleCancelBooking serves POST /api/bookings/{id}/cancel and DELETE /api/bookings/{id}.
func (s *server) handleCancelBooking(w http.ResponseWriter, r *http.Request) {
	// A malformed id parses as 0, which cancels nothing and reports not found.
	id, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	err := orchestrators.ExecuteCancelBooking(r.Context(), orchestrators.CancelBookingInput{BookingID: id},
		orchestrators.CancelBookingDeps{BookingStore: s.stores.BookingStore})
	if err == nil && r.Method == http.MethodPost && !middleware.IsJSON(r) {
		s.recorder.BookingCanceled(outcomeLabel(orchestrators.KindNone))
		http.Redirect(w, r, "/bookings", http.StatusSeeOther)
		return
	}
	out := writeResult(w, r, err)
	s.recorder.BookingCanceled(outcomeLabel(out.Kind))
}

// handleCreateEventType serves POST /api/event-types. A form submission
// redirects to the home page on success; a blank form slug is derived from
// the title.
func (s *server) handleCreateEventType(w http.ResponseWriter, r *http.Request) {
	var req createEventTypeRequest
	var err error
	form := !middleware.IsJSON(r)
	if form {
		err = parseForm(w, r)
		if err == nil {
			var dur int64
			dur, err = formInt(r, "durationMinutes")
			req = createEventTypeRequest{
				Title:           r.PostFormValue("title"),
				Slug:            r.PostFormValue("slug"),
				DurationMinutes: int(dur),
			}
			if _, ok := r.PostForm["description"]; ok {
				d := r.PostFormValue("description")
				req.Description = &d
			}
			if strings.TrimSpace(req.Slug) == "" {
				req.Slug = eventtype.GenerateSlug(req.Title)
			}
		}
	} else {
		err = strictDecode(w, r, &req)
	}

	if err == nil {
		_, err = orchestrators.ExecuteCreateEventType(r.Context(), orchestrators.CreateEventTypeInput{
			Title:           req.Title,
			Slug:            req.Slug,
			DurationMinutes: req.DurationMinutes,
			Description:     req.Description,
		}, orchestrators.CreateEventTypeDeps{
			UserStore:      s.stores.UserStore,
			EventTypeStore: s.stores.EventTypeStore,
			DefaultUserID:  s.opts.HostUserID,
		})
		if err == nil && form {
			s.recorder.EventTypeCreated(outcomeLabel(orchestrators.KindNone))
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
	}
	out := writeResult(w, r, err)
	s.recorder.EventTypeCreated(outcomeLabel(out.Kind))
}

// outcomeLabel is the metrics label for a mutation outcome.
func outcomeLabel(kind orchestrators.Kind) string {
	if kind == orchestrators.KindNone {
		return "success"
	}
	return string(kind)
}
