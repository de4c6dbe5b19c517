package web

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"bookly/internal/adapters/http/middleware"
	"bookly/internal/application/orchestrators"
)

// maxBodyBytes bounds JSON and form bodies.
const maxBodyBytes = 1 << 20

// mdRenderer renders event type descriptions. Raw HTML in the source is
// dropped, so descriptions cannot inject markup.
var mdRenderer = goldmark.New(
	goldmark.WithExtensions(extension.Linkify),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

// result is the body of every mutation response.
type result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// statusFor maps an outcome kind to its HTTP status.
func statusFor(kind orchestrators.Kind) int {
	switch kind {
	case orchestrators.KindNone:
		return http.StatusOK
	case orchestrators.KindValidation:
		return http.StatusBadRequest
	case orchestrators.KindNotFound:
		return http.StatusNotFound
	case orchestrators.KindSlotUnavailable, orchestrators.KindSlugConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// writeResult classifies err and writes the {success,error} body.
// POST: Storage error text is logged, never written to the client
func writeResult(w http.ResponseWriter, r *http.Request, err error) orchestrators.Outcome {
	out := orchestrators.Describe(err)
	if out.Kind == orchestrators.KindStorage {
		slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()),
			"method", r.Method, "path", r.URL.Path, "error", err.Error())
	}
	writeJSON(w, statusFor(out.Kind), result{Success: out.Success, Error: out.Message})
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("encode_error", "error", err.Error())
	}
}

// internalError logs err and writes a generic 500 for page handlers.
func internalError(w http.ResponseWriter, r *http.Request, err error) {
	slog.Error("internal_error", "request_id", middleware.RequestID(r.Context()),
		"path", r.URL.Path, "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}

// badRequest wraps a decoding problem as a validation error.
func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %w", orchestrators.ErrValidation, fmt.Errorf(format, args...))
}

// strictDecode decodes JSON from the request body, rejecting unknown fields
// and trailing data.
func strictDecode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &typeErr):
			return badRequest("field %s has the wrong type", typeErr.Field)
		case errors.As(err, &syntaxErr):
			return badRequest("malformed JSON body")
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			return badRequest("%s", strings.TrimPrefix(err.Error(), "json: "))
		default:
			return badRequest("unreadable request body")
		}
	}
	if dec.More() {
		return badRequest("unexpected data after JSON body")
	}
	return nil
}

// parseForm parses a urlencoded or multipart body within maxBodyBytes.
func parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return badRequest("unreadable form")
		}
		return nil
	}
	if err := r.ParseForm(); err != nil {
		return badRequest("unreadable form")
	}
	return nil
}

// pageFiles lists the page templates; each is parsed together with layout.html.
var pageFiles = []string{
	"home.html",
	"event_type_new.html",
	"bookings.html",
	"booking_page.html",
}

var templateFuncs = template.FuncMap{
	"renderMarkdown": func(md string) template.HTML {
		var buf bytes.Buffer
		if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
			return template.HTML(template.HTMLEscapeString(md))
		}
		return template.HTML(buf.String())
	},
	"formatTime": func(t time.Time) string {
		return t.UTC().Format("Mon 2 Jan 2006, 15:04 UTC")
	},
	"isoTime": func(t time.Time) string {
		return t.UTC().Format(time.RFC3339)
	},
}

func parsePages() (map[string]*template.Template, error) {
	pages := make(map[string]*template.Template, len(pageFiles))
	for _, name := range pageFiles {
		t, err := template.New(name).Funcs(templateFuncs).ParseFS(templateFS, "templates/layout.html", "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[name] = t
	}
	return pages, nil
}

// pageData is what every page template receives.
type pageData struct {
	Title     string
	CSRFField template.HTML
	CSRFToken string
	Data      any
}

// renderTemplate executes the named page inside layout.html. Output is
// buffered so a template error still produces a clean 500.
func (s *server) renderTemplate(w http.ResponseWriter, r *http.Request, name, title string, data any) {
	t, ok := s.pages[name]
	if !ok {
		internalError(w, r, fmt.Errorf("unknown template %s", name))
		return
	}
	pd := pageData{
		Title:     title,
		CSRFField: csrf.TemplateField(r),
		CSRFToken: csrf.Token(r),
		Data:      data,
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", pd); err != nil {
		internalError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
