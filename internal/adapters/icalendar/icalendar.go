// Package icalendar renders bookings as iCalendar (RFC 5545) documents.
package icalendar

import (
	"time"

	ical "github.com/arran4/golang-ical"

	"bookly/internal/domain/booking"
	"bookly/internal/domain/user"
)

// ProductID identifies this application in PRODID.
const ProductID = "-//bookly//bookly scheduling//EN"

// Content lines end in CRLF on every platform; golang-ical defaults to the
// host's line ending.

// ContentType is the media type for served calendars.
const ContentType = "text/calendar; charset=utf-8"

// Feed builds a METHOD:PUBLISH calendar with one VEVENT per booking.
// PRE: bookings are the host's, enriched with event type titles
// POST: Each VEVENT UID equals the booking uid
func Feed(host user.User, bookings []booking.WithEventType, now time.Time) string {
	cal := newCalendar(ical.MethodPublish, host)
	for _, b := range bookings {
		addEvent(cal, host, b, now)
	}
	return cal.Serialize(ical.WithNewLineWindows)
}

// Invite builds a METHOD:REQUEST calendar for one booking with the host as
// organizer and the booker as attendee.
func Invite(host user.User, b booking.WithEventType, description string, now time.Time) string {
	cal := newCalendar(ical.MethodRequest, host)
	ev := addEvent(cal, host, b, now)
	if description != "" {
		ev.SetDescription(description)
	}
	// AddAttendee adds the mailto: scheme itself.
	ev.AddAttendee(b.BookerEmail,
		ical.WithCN(b.BookerName),
		ical.ParticipationRoleReqParticipant,
		ical.ParticipationStatusNeedsAction,
		ical.WithRSVP(true),
	)
	return cal.Serialize(ical.WithNewLineWindows)
}

// Summary is the event title shown in calendar clients.
func Summary(b booking.WithEventType) string {
	return b.EventTypeTitle + " with " + b.BookerName
}

func newCalendar(method ical.Method, host user.User) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetMethod(method)
	cal.SetProductId(ProductID)
	cal.SetName(host.Username + " bookings")
	return cal
}

func addEvent(cal *ical.Calendar, host user.User, b booking.WithEventType, now time.Time) *ical.VEvent {
	ev := cal.AddEvent(b.UID)
	ev.SetDtStampTime(now.UTC())
	ev.SetStartAt(b.StartTime.UTC())
	ev.SetEndAt(b.EndTime.UTC())
	ev.SetSummary(Summary(b))
	ev.SetStatus(ical.ObjectStatusConfirmed)
	ev.SetOrganizer("mailto:"+host.Email, ical.WithCN(host.Username))
	return ev
}
