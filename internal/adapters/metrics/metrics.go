// Package metrics exposes prometheus collectors for requests, statements and
// booking outcomes.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "bookly"

var (
	once sync.Once

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by route pattern and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)

	queryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "db_query_duration_seconds",
			Help:      "Database statement latency by operation.",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"op"},
	)

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_created_total",
			Help:      "Count of booking attempts by outcome kind.",
		},
		[]string{"outcome"},
	)

	bookingCanceled = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "booking_canceled_total",
			Help:      "Count of cancel attempts by outcome kind.",
		},
		[]string{"outcome"},
	)

	eventTypeCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "event_type_created_total",
			Help:      "Count of event type creation attempts by outcome kind.",
		},
		[]string{"outcome"},
	)
)

// Register registers metrics with the default registry (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(requestDuration, queryDuration, bookingCreated, bookingCanceled, eventTypeCreated)
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Collector adapts the package collectors to the observer interfaces the
// storage and HTTP layers accept.
type Collector struct{}

// ObserveQuery records one database statement.
func (Collector) ObserveQuery(op string, d time.Duration) {
	queryDuration.WithLabelValues(op).Observe(d.Seconds())
}

// ObserveRequest records one HTTP request.
func (Collector) ObserveRequest(method, route string, status int, d time.Duration) {
	requestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// BookingCreated counts a create-booking attempt; outcome is "success" or an error kind.
func (Collector) BookingCreated(outcome string) {
	bookingCreated.WithLabelValues(outcome).Inc()
}

// BookingCanceled counts a cancel attempt; outcome is "success" or an error kind.
func (Collector) BookingCanceled(outcome string) {
	bookingCanceled.WithLabelValues(outcome).Inc()
}

// EventTypeCreated counts a create-event-type attempt.
func (Collector) EventTypeCreated(outcome string) {
	eventTypeCreated.WithLabelValues(outcome).Inc()
}
