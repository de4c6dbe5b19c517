package web

import (
	"embed"
	"html/template"
	"net/http"
	"time"

	"bookly/internal/adapters/http/middleware"
	"bookly/internal/adapters/metrics"
	bookingStore "bookly/internal/adapters/storage/booking"
	eventTypeStore "bookly/internal/adapters/storage/eventtype"
	userStore "bookly/internal/adapters/storage/user"
	"bookly/internal/domain/user"
)

//go:embed templates/*.html
var templateFS embed.FS

// Stores holds the persistence ports the handlers depend on. All three must
// come from the same backend.
type Stores struct {
	UserStore      userStore.Store
	EventTypeStore eventTypeStore.Store
	BookingStore   bookingStore.Store
}

// Recorder receives request timings and domain counters.
// metrics.Collector satisfies it.
type Recorder interface {
	middleware.RequestObserver
	BookingCreated(outcome string)
	BookingCanceled(outcome string)
	EventTypeCreated(outcome string)
}

var _ Recorder = metrics.Collector{}

// Options configures NewMux.
type Options struct {
	StaticDir      string
	CSRFKey        []byte // 32 bytes
	Secure         bool   // TLS in front; CSRF cookie and Referer checks follow it
	TrustedOrigins []string
	// RateLimitPerSecond is the per-client refill rate. Zero disables limiting.
	RateLimitPerSecond float64
	HostUserID         int64
	Metrics            Recorder // nil disables request metrics and counters
	SlowRequest        time.Duration
	Now                func() time.Time
}

// server carries the dependencies of every handler.
type server struct {
	stores   *Stores
	opts     Options
	recorder Recorder
	pages    map[string]*template.Template
}

// NewMux builds the application handler: routes plus the middleware chain.
// PRE: s has all three stores set; opts.CSRFKey is 32 bytes
// POST: Returns a handler safe for concurrent use
func NewMux(s *Stores, opts Options) (http.Handler, error) {
	if opts.HostUserID <= 0 {
		opts.HostUserID = user.DefaultID
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.StaticDir == "" {
		opts.StaticDir = "static"
	}

	pages, err := parsePages()
	if err != nil {
		return nil, err
	}

	srv := &server{stores: s, opts: opts, recorder: opts.Metrics, pages: pages}
	if srv.recorder == nil {
		srv.recorder = nopRecorder{}
	}

	mux := http.NewServeMux()
	srv.registerRoutes(mux)

	var limiter *middleware.RateLimiter
	if opts.RateLimitPerSecond > 0 {
		burst := int(opts.RateLimitPerSecond * 2)
		limiter = middleware.NewRateLimiter(opts.RateLimitPerSecond, burst)
	}

	var observer middleware.RequestObserver
	if opts.Metrics != nil {
		observer = opts.Metrics
	}

	return middleware.Chain(mux,
		middleware.SecurityHeaders,
		middleware.CSRF(opts.CSRFKey, middleware.CSRFOptions{Secure: opts.Secure, TrustedOrigins: opts.TrustedOrigins}),
		middleware.RateLimit(limiter),
		middleware.Timing(observer, opts.SlowRequest),
	), nil
}

// registerRoutes wires every pattern through middleware.Route so request
// metrics are labelled by pattern rather than raw path.
func (s *server) registerRoutes(mux *http.ServeMux) {
	handle := func(pattern string, h http.HandlerFunc) {
		mux.Handle(pattern, middleware.Route(pattern, h))
	}

	handle("GET /{$}", s.handleHome)
	handle("GET /event-types/new", s.handleNewEventTypeForm)
	handle("GET /bookings", s.handleBookingsPage)
	handle("GET /bookings.ics", s.handleBookingsFeed)
	handle("GET /{username}/{slug}", s.handleBookingPage)

	handle("POST /api/event-types", s.handleCreateEventType)
	handle("POST /api/bookings", s.handleCreateBooking)
	handle("POST /api/bookings/{id}/cancel", s.handleCancelBooking)
	handle("DELETE /api/bookings/{id}", s.handleCancelBooking)
	handle("GET /api/bookings/{id}/ics", s.handleBookingInvite)

	handle("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", middleware.Route("GET /metrics", metrics.Handler()))

	static := http.StripPrefix("/static", http.FileServer(http.Dir(s.opts.StaticDir)))
	mux.Handle("GET /static/{file}", static)
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte("ok"))
}

type nopRecorder struct{}

func (nopRecorder) ObserveRequest(string, string, int, time.Duration) {}
func (nopRecorder) BookingCreated(string)                             {}
func (nopRecorder) BookingCanceled(string)                            {}
func (nopRecorder) EventTypeCreated(string)                           {}
