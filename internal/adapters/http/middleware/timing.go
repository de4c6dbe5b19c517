package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultSlowRequest is the default threshold for slow request warnings.
const DefaultSlowRequest = 500 * time.Millisecond

// RequestIDHeader carries the per-request id back to the client.
const RequestIDHeader = "X-Request-ID"

// UnmatchedRoute labels requests no registered pattern served.
const UnmatchedRoute = "unmatched"

// RequestObserver receives one observation per timed request.
type RequestObserver interface {
	ObserveRequest(method, route string, status int, d time.Duration)
}

type ctxKey int

const (
	requestIDKey ctxKey = iota
	routeKey
)

// routeSlot is filled in by Route once the mux has picked a handler. Other
// middleware may clone the request, so the slot travels in the context.
type routeSlot struct {
	pattern string
}

// RequestID returns the id Timing assigned to the request, or "".
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// Route records pattern as the route label for the current request.
func Route(pattern string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if slot, ok := r.Context().Value(routeKey).(*routeSlot); ok {
			slot.pattern = pattern
		}
		h.ServeHTTP(w, r)
	})
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

// WriteHeader captures the status code and delegates to the underlying ResponseWriter.
// PRE: code is a valid HTTP status code
// POST: status stored, header written to underlying ResponseWriter
func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (sw *statusWriter) Unwrap() http.ResponseWriter {
	return sw.ResponseWriter
}

// statusWriterPool reduces allocations on the hot path.
var statusWriterPool = sync.Pool{
	New: func() any {
		return &statusWriter{}
	},
}

// Timing returns middleware that assigns a request id and logs request duration.
// Requests to /static/ are excluded.
// Normal requests log at DEBUG; requests at or above slow log at WARN.
// If observer is non-nil, every timed request is reported to it.
func Timing(observer RequestObserver, slow time.Duration) func(http.Handler) http.Handler {
	if slow <= 0 {
		slow = DefaultSlowRequest
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path

			if strings.HasPrefix(path, "/static/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			reqID := uuid.NewString()
			w.Header().Set(RequestIDHeader, reqID)

			slot := &routeSlot{}
			ctx := context.WithValue(r.Context(), requestIDKey, reqID)
			ctx = context.WithValue(ctx, routeKey, slot)
			r = r.WithContext(ctx)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			defer func() {
				d := time.Since(start)
				durationMs := float64(d.Microseconds()) / 1000.0
				route := slot.pattern
				if route == "" {
					route = UnmatchedRoute
				}

				attrs := []any{
					"request_id", reqID,
					"method", r.Method,
					"path", path,
					"route", route,
					"status", sw.status,
					"duration_ms", durationMs,
				}
				if d >= slow {
					slog.Warn("slow_request", attrs...)
				} else {
					slog.Debug("http_request", attrs...)
				}

				if observer != nil {
					observer.ObserveRequest(r.Method, route, sw.status, d)
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
