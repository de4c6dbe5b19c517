// Package jsonfile persists users, event types and bookings as one JSON
// document on disk.
//
// Every read loads the whole document and every write replaces it. Writes go
// to a temp file in the same directory and are renamed over the target, so a
// failed write leaves the previous document intact. A version sequence in the
// document lets writers detect a concurrent writer from another process.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// ErrConcurrentWrite is returned when another writer kept changing the file
// underneath every attempt.
var ErrConcurrentWrite = errors.New("document changed by a concurrent writer")

// ErrUnreadable is returned from Update when the existing file cannot be read,
// since overwriting it would destroy data that is still durable.
var ErrUnreadable = errors.New("document is unreadable")

// maxWriteAttempts bounds optimistic retries in Update.
const maxWriteAttempts = 3

// Document is the on-disk layout.
type Document struct {
	Version    int64                 `json:"version"`
	Users      []user.User           `json:"users"`
	EventTypes []eventtype.EventType `json:"eventTypes"`
	Bookings   []booking.Booking     `json:"bookings"`
}

// Seed returns the document an absent or corrupt file is initialized with:
// one default user, one default event type and no bookings.
func Seed() Document {
	return Document{
		Users:      []user.User{user.Default()},
		EventTypes: []eventtype.EventType{eventtype.Default(user.DefaultID)},
		Bookings:   []booking.Booking{},
	}
}

// File is a JSON document store rooted at a single path.
type File struct {
	path string
	mu   sync.Mutex // serializes writers in this process
	now  func() time.Time

	beforeCommit func() // runs between applying fn and the version check
}

// New creates a File for path. Nothing is touched on disk until first use.
func New(path string) *File {
	return &File{path: path, now: time.Now}
}

// BeforeCommit registers fn to run after each Update attempt has applied its
// change and before the on-disk version is checked. Tests use it to interleave
// a writer from another process.
func (f *File) BeforeCommit(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.beforeCommit = fn
}

// Path returns the document location.
func (f *File) Path() string {
	return f.path
}

// loadResult says how a document was obtained.
type loadResult int

const (
	loadedFromDisk loadResult = iota
	loadedSeed                // file was absent or corrupt; seed is now on disk
	loadedFallback            // file exists but could not be read; seed is in memory only
)

// Read returns the current document.
// PRE: none
// POST: An absent file is created from the seed. A corrupt file is moved
// aside and replaced by the seed. An unreadable file yields the seed without
// touching disk.
func (f *File) Read(ctx context.Context) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()

	doc, _, err := f.load()
	if err != nil {
		slog.Error("json_store_event", "event", "read_failed", "path", f.path, "error", err)
		return Seed(), nil
	}
	return doc, nil
}

// Update applies fn to the current document and writes the result back.
// fn may return an error to abort without writing; that error is returned as is.
// PRE: fn does not retain doc
// POST: On success the document on disk reflects fn with Version incremented
// INVARIANT: A failed write never replaces the previous file
func (f *File) Update(ctx context.Context, fn func(doc *Document) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for attempt := 1; attempt <= maxWriteAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		doc, how, err := f.load()
		if err != nil {
			return err
		}
		if how == loadedFallback {
			return fmt.Errorf("%w: %s", ErrUnreadable, f.path)
		}

		base := doc.Version
		if err := fn(&doc); err != nil {
			return err
		}
		doc.Version = base + 1
		if f.beforeCommit != nil {
			f.beforeCommit()
		}

		onDisk, err := f.diskVersion()
		if err != nil {
			return err
		}
		if onDisk != base {
			slog.Warn("json_store_event", "event", "concurrent_write", "path", f.path,
				"attempt", attempt, "expected_version", base, "disk_version", onDisk)
			continue
		}
		return f.write(doc)
	}
	return ErrConcurrentWrite
}

// load reads and decodes the file, recovering absent and corrupt files.
// Caller holds f.mu.
func (f *File) load() (Document, loadResult, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		seed := Seed()
		if werr := f.write(seed); werr != nil {
			return Document{}, 0, fmt.Errorf("failed to initialize %s: %w", f.path, werr)
		}
		slog.Info("json_store_event", "event", "seeded", "path", f.path)
		return seed, loadedSeed, nil
	}
	if err != nil {
		slog.Error("json_store_event", "event", "unreadable", "path", f.path, "error", err)
		return Seed(), loadedFallback, nil
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		aside := fmt.Sprintf("%s.corrupt-%d", f.path, f.now().Unix())
		if rerr := os.Rename(f.path, aside); rerr != nil {
			return Document{}, 0, fmt.Errorf("failed to quarantine corrupt %s: %w", f.path, rerr)
		}
		slog.Error("json_store_event", "event", "corrupt", "path", f.path, "moved_to", aside, "error", err)
		seed := Seed()
		if werr := f.write(seed); werr != nil {
			return Document{}, 0, fmt.Errorf("failed to reinitialize %s: %w", f.path, werr)
		}
		return seed, loadedSeed, nil
	}
	doc.normalize()
	return doc, loadedFromDisk, nil
}

// diskVersion re-reads only the version field.
func (f *File) diskVersion() (int64, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	var head struct {
		Version int64 `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return 0, err
	}
	return head.Version, nil
}

// write replaces the file atomically: temp file, fsync, rename.
func (f *File) write(doc Document) error {
	doc.normalize()
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(f.path)+"-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, f.path)
}

// normalize replaces nil collections so the document always has three arrays,
// and puts timestamps in UTC.
func (d *Document) normalize() {
	if d.Users == nil {
		d.Users = []user.User{}
	}
	if d.EventTypes == nil {
		d.EventTypes = []eventtype.EventType{}
	}
	if d.Bookings == nil {
		d.Bookings = []booking.Booking{}
	}
	for i := range d.Bookings {
		d.Bookings[i].StartTime = d.Bookings[i].StartTime.UTC()
		d.Bookings[i].EndTime = d.Bookings[i].EndTime.UTC()
	}
}

// NextEventTypeID returns max(existing ids, 0) + 1.
func (d *Document) NextEventTypeID() int64 {
	var max int64
	for _, e := range d.EventTypes {
		if e.ID > max {
			max = e.ID
		}
	}
	return max + 1
}

// NextBookingID returns max(existing ids, 0) + 1.
func (d *Document) NextBookingID() int64 {
	var max int64
	for _, b := range d.Bookings {
		if b.ID > max {
			max = b.ID
		}
	}
	return max + 1
}
