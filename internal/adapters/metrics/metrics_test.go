package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// TestRegister_Idempotent verifies repeated registration does not panic.
func TestRegister_Idempotent(t *testing.T) {
	Register()
	Register()
}

// TestCollector_Counts verifies each recorder moves its collector.
func TestCollector_Counts(t *testing.T) {
	Register()
	var c Collector

	before := testutil.ToFloat64(bookingCreated.WithLabelValues("ok"))
	c.BookingCreated("ok")
	if got := testutil.ToFloat64(bookingCreated.WithLabelValues("ok")); got != before+1 {
		t.Errorf("booking_created_total{ok} = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(bookingCanceled.WithLabelValues("not_found"))
	c.BookingCanceled("not_found")
	if got := testutil.ToFloat64(bookingCanceled.WithLabelValues("not_found")); got != before+1 {
		t.Errorf("booking_canceled_total{not_found} = %v, want %v", got, before+1)
	}

	before = testutil.ToFloat64(eventTypeCreated.WithLabelValues("slug_conflict"))
	c.EventTypeCreated("slug_conflict")
	if got := testutil.ToFloat64(eventTypeCreated.WithLabelValues("slug_conflict")); got != before+1 {
		t.Errorf("event_type_created_total{slug_conflict} = %v, want %v", got, before+1)
	}

	c.ObserveQuery("exec", 3*time.Millisecond)
	c.ObserveRequest("GET", "GET /bookings", 200, 10*time.Millisecond)
	if n := testutil.CollectAndCount(queryDuration); n == 0 {
		t.Error("query histogram has no series")
	}
	if n := testutil.CollectAndCount(requestDuration); n == 0 {
		t.Error("request histogram has no series")
	}
}

// TestHandler_ServesRegistry verifies the exposition contains bookly series.
func TestHandler_ServesRegistry(t *testing.T) {
	Register()
	Collector{}.BookingCanceled("success")

	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "bookly_booking_canceled_total") {
		t.Error("metrics output missing bookly_booking_canceled_total")
	}
}
