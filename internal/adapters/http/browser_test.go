package web_test

import (
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/playwright-community/playwright-go"

	web "bookly/internal/adapters/http"
	bookingStore "bookly/internal/adapters/storage/booking"
	eventTypeStore "bookly/internal/adapters/storage/eventtype"
	"bookly/internal/adapters/storage/jsonfile"
	userStore "bookly/internal/adapters/storage/user"
)

// newBrowserPage starts the app over a JSON store and opens a headless page.
// The test is skipped when no Playwright driver is installed.
func newBrowserPage(t *testing.T) (string, playwright.Page) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping browser test in short mode")
	}

	f := jsonfile.New(filepath.Join(t.TempDir(), "db.json"))
	h, err := web.NewMux(&web.Stores{
		UserStore:      userStore.NewJSONStore(f),
		EventTypeStore: eventTypeStore.NewJSONStore(f),
		BookingStore:   bookingStore.NewJSONStore(f),
	}, web.Options{
		StaticDir: filepath.Join("..", "..", "..", "static"),
		CSRFKey:   make([]byte, 32),
	})
	if err != nil {
		t.Fatalf("NewMux() error = %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	pw, err := playwright.Run()
	if err != nil {
		t.Skipf("playwright driver unavailable: %v", err)
	}
	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		pw.Stop()
		t.Skipf("chromium unavailable: %v", err)
	}
	t.Cleanup(func() {
		browser.Close()
		pw.Stop()
	})

	page, err := browser.NewPage()
	if err != nil {
		t.Fatalf("failed to open page: %v", err)
	}
	return srv.URL, page
}

// TestBrowser_BookAndCancel books the seeded event type through the public
// page and cancels it from the bookings list.
func TestBrowser_BookAndCancel(t *testing.T) {
	baseURL, page := newBrowserPage(t)
	wait := playwright.LocatorWaitForOptions{Timeout: playwright.Float(5000)}

	if _, err := page.Goto(baseURL + "/kavya/30-min"); err != nil {
		t.Fatalf("failed to open booking page: %v", err)
	}
	if err := page.Locator("input[name=name]").Fill("Alice"); err != nil {
		t.Fatalf("fill name: %v", err)
	}
	if err := page.Locator("input[name=email]").Fill("a@x.com"); err != nil {
		t.Fatalf("fill email: %v", err)
	}
	if err := page.Locator("input[name=startTime]").Fill("2099-01-01T10:00"); err != nil {
		t.Fatalf("fill start: %v", err)
	}
	if err := page.Locator("#booking-form button[type=submit]").Click(); err != nil {
		t.Fatalf("submit booking: %v", err)
	}
	if err := page.Locator("#booked").WaitFor(wait); err != nil {
		t.Fatal("booking confirmation not shown")
	}

	if _, err := page.Goto(baseURL + "/bookings"); err != nil {
		t.Fatalf("failed to open bookings: %v", err)
	}
	row := page.Locator("#upcoming tr[data-uid=uid-1]")
	if err := row.WaitFor(wait); err != nil {
		t.Fatal("new booking not listed as upcoming")
	}
	if err := row.Locator("button[type=submit]").Click(); err != nil {
		t.Fatalf("cancel booking: %v", err)
	}
	if err := page.Locator("text=No upcoming bookings.").WaitFor(wait); err != nil {
		t.Error("booking still listed after cancel")
	}
}

// TestBrowser_CreateEventType creates an event type from the form with a
// derived slug.
func TestBrowser_CreateEventType(t *testing.T) {
	baseURL, page := newBrowserPage(t)

	if _, err := page.Goto(baseURL + "/event-types/new"); err != nil {
		t.Fatalf("failed to open form: %v", err)
	}
	if err := page.Locator("input[name=title]").Fill("Office Hours"); err != nil {
		t.Fatalf("fill title: %v", err)
	}
	if err := page.Locator("#event-type-form button[type=submit]").Click(); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := page.Locator("a[href='/kavya/office-hours']").WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(5000),
	}); err != nil {
		t.Error("new event type not linked from home")
	}
}
