package icalendar

import (
	"strings"
	"testing"
	"time"

	ical "github.com/arran4/golang-ical"

	"bookly/internal/domain/booking"
	"bookly/internal/domain/user"
)

var now = time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

func sample(id int64, start time.Time) booking.WithEventType {
	b := booking.New(1, "Alice", "a@x.com", start, 30)
	b.ID = id
	b.UID = booking.UIDFor(id)
	return booking.WithEventType{Booking: b, EventTypeTitle: "30 Min Meeting"}
}

// unfold joins folded content lines.
func unfold(s string) string {
	return strings.ReplaceAll(s, "\r\n ", "")
}

// TestSerialize_CRLFLines verifies every content line ends in CRLF and none
// exceeds 75 octets, including the folded attendee line.
func TestSerialize_CRLFLines(t *testing.T) {
	b := sample(7, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	b.BookerName = "Alice With A Rather Long Display Name"
	doc := Invite(user.Default(), b, "Intro", now)
	if !strings.HasSuffix(doc, "END:VCALENDAR\r\n") {
		t.Errorf("document does not end in CRLF: %q", doc[len(doc)-20:])
	}
	for i, line := range strings.Split(strings.TrimSuffix(doc, "\r\n"), "\r\n") {
		if strings.ContainsAny(line, "\r\n") {
			t.Errorf("line %d has a bare line break: %q", i, line)
		}
		if len(line) > 75 {
			t.Errorf("line %d is %d octets: %q", i, len(line), line)
		}
	}
	if !strings.Contains(unfold(doc), "mailto:a@x.com") {
		t.Errorf("attendee missing after unfolding:\n%s", doc)
	}
}

func parse(t *testing.T, doc string) *ical.Calendar {
	t.Helper()
	cal, err := ical.ParseCalendar(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("ParseCalendar: %v\n%s", err, doc)
	}
	return cal
}

// TestFeed_RoundTrip verifies UIDs, summaries and times survive parsing.
func TestFeed_RoundTrip(t *testing.T) {
	items := []booking.WithEventType{
		sample(1, time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		sample(2, time.Date(2024, 1, 1, 10, 30, 0, 0, time.UTC)),
	}
	doc := Feed(user.Default(), items, now)
	if !strings.Contains(doc, "METHOD:PUBLISH") {
		t.Errorf("feed missing METHOD:PUBLISH:\n%s", doc)
	}

	events := parse(t, doc).Events()
	if len(events) != len(items) {
		t.Fatalf("events = %d, want %d", len(events), len(items))
	}
	for i, ev := range events {
		want := items[i]
		if ev.Id() != want.UID {
			t.Errorf("event %d UID = %q, want %q", i, ev.Id(), want.UID)
		}
		start, err := ev.GetStartAt()
		if err != nil || !start.Equal(want.StartTime) {
			t.Errorf("event %d start = %v (%v), want %v", i, start, err, want.StartTime)
		}
		end, err := ev.GetEndAt()
		if err != nil || !end.Equal(want.EndTime) {
			t.Errorf("event %d end = %v (%v), want %v", i, end, err, want.EndTime)
		}
		if p := ev.GetProperty(ical.ComponentPropertySummary); p == nil || p.Value != "30 Min Meeting with Alice" {
			t.Errorf("event %d summary = %+v", i, p)
		}
	}
}

// TestFeed_Empty still produces a valid calendar.
func TestFeed_Empty(t *testing.T) {
	cal := parse(t, Feed(user.Default(), nil, now))
	if n := len(cal.Events()); n != 0 {
		t.Errorf("events = %d, want 0", n)
	}
}

// TestInvite carries organizer, attendee and METHOD:REQUEST.
func TestInvite(t *testing.T) {
	raw := Invite(user.Default(), sample(7, time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)), "Intro", now)
	doc := unfold(raw)
	for _, want := range []string{"METHOD:REQUEST", "mailto:kavya@example.com", "mailto:a@x.com", "uid-7"} {
		if !strings.Contains(doc, want) {
			t.Errorf("invite missing %q:\n%s", want, doc)
		}
	}
	events := parse(t, raw).Events()
	if len(events) != 1 {
		t.Fatalf("events = %d, want 1", len(events))
	}
	if a := events[0].Attendees(); len(a) != 1 || a[0].Email() != "a@x.com" {
		t.Errorf("attendees = %+v", a)
	}
	if p := events[0].GetProperty(ical.ComponentPropertyDescription); p == nil || p.Value != "Intro" {
		t.Errorf("description = %+v", p)
	}
}
