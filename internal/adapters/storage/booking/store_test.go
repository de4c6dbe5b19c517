package booking_test

import (
	"context"
	"errors"
	"path/filepath"
	"reflect"
	"sync"
	"testing"
	"time"

	store "bookly/internal/adapters/storage/booking"
	eventtypestore "bookly/internal/adapters/storage/eventtype"
	"bookly/internal/adapters/storage/jsonfile"
	"bookly/internal/adapters/storage/storagetest"
	userstore "bookly/internal/adapters/storage/user"
	domain "bookly/internal/domain/booking"
	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// fixture is a booking store over seeded data: the default host owns event
// types 1 and 2, a second host owns event type 3.
type fixture struct {
	bookings store.Store
}

func seed(t *testing.T, users userstore.Store, types eventtypestore.Store) {
	t.Helper()
	ctx := context.Background()
	other := user.User{ID: 2, Username: "rua", Email: "rua@example.com"}
	for _, u := range []user.User{user.Default(), other} {
		if err := users.Save(ctx, u); err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	for _, e := range []eventtype.EventType{
		{Title: "30 Min Meeting", Slug: "30-min", Duration: 30, UserID: 1},
		{Title: "Deep Dive", Slug: "deep-dive", Duration: 60, UserID: 1},
		{Title: "Other Host", Slug: "30-min", Duration: 30, UserID: 2},
	} {
		if _, err := types.Insert(ctx, e); err != nil {
			t.Fatalf("seed event type: %v", err)
		}
	}
}

func backends() map[string]func(t *testing.T) fixture {
	return map[string]func(t *testing.T) fixture{
		"json": func(t *testing.T) fixture {
			f := jsonfile.New(filepath.Join(t.TempDir(), "db.json"))
			if err := f.Update(context.Background(), func(doc *jsonfile.Document) error {
				doc.EventTypes = nil
				return nil
			}); err != nil {
				t.Fatal(err)
			}
			seed(t, userstore.NewJSONStore(f), eventtypestore.NewJSONStore(f))
			return fixture{bookings: store.NewJSONStore(f)}
		},
		"sqlite": func(t *testing.T) fixture {
			db := storagetest.OpenSQLite(t)
			seed(t, userstore.NewSQLiteStore(db), eventtypestore.NewSQLiteStore(db))
			return fixture{bookings: store.NewSQLiteStore(db)}
		},
		"postgres": func(t *testing.T) fixture {
			db := storagetest.OpenPostgres(t)
			seed(t, userstore.NewPostgresStore(db), eventtypestore.NewPostgresStore(db))
			return fixture{bookings: store.NewPostgresStore(db)}
		},
	}
}

func at(h, m int) time.Time {
	return time.Date(2024, 1, 1, h, m, 0, 0, time.UTC)
}

func newBooking(eventTypeID int64, name string, start time.Time, minutes int) domain.Booking {
	return domain.New(eventTypeID, name, "a@x.com", start, minutes)
}

// TestStore_Scenario books 10:00, rejects 10:15 and accepts the adjacent 10:30.
func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings

			first, err := s.Insert(ctx, newBooking(1, "Alice", at(10, 0), 30))
			if err != nil {
				t.Fatalf("first Insert: %v", err)
			}
			if first.ID != 1 || first.UID != "uid-1" {
				t.Errorf("first = id %d uid %q, want 1 uid-1", first.ID, first.UID)
			}
			if !first.EndTime.Equal(at(10, 30)) {
				t.Errorf("end = %v, want 10:30", first.EndTime)
			}

			_, err = s.Insert(ctx, newBooking(1, "Bob", at(10, 15), 30))
			if !errors.Is(err, domain.ErrSlotUnavailable) {
				t.Errorf("overlapping Insert error = %v, want ErrSlotUnavailable", err)
			}

			third, err := s.Insert(ctx, newBooking(1, "Carol", at(10, 30), 30))
			if err != nil {
				t.Fatalf("adjacent Insert: %v", err)
			}
			if third.ID != 2 || third.UID != "uid-2" {
				t.Errorf("third = id %d uid %q, want 2 uid-2", third.ID, third.UID)
			}
		})
	}
}

// TestStore_OverlapIsPerEventType verifies the same interval on another event type is free.
func TestStore_OverlapIsPerEventType(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			if _, err := s.Insert(ctx, newBooking(1, "Alice", at(9, 0), 60)); err != nil {
				t.Fatal(err)
			}
			if _, err := s.Insert(ctx, newBooking(2, "Bob", at(9, 0), 60)); err != nil {
				t.Errorf("other event type Insert: %v", err)
			}
		})
	}
}

// TestStore_OverlapShapes checks containment, enclosure and both edges.
func TestStore_OverlapShapes(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		start   time.Time
		minutes int
		wantErr bool
	}{
		{"inside", at(10, 10), 10, true},
		{"enclosing", at(9, 30), 120, true},
		{"straddles start", at(9, 45), 30, true},
		{"straddles end", at(10, 45), 30, true},
		{"ends at start", at(9, 0), 60, false},
		{"starts at end", at(11, 0), 15, false},
	}
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			for _, tt := range tests {
				t.Run(tt.name, func(t *testing.T) {
					s := open(t).bookings
					if _, err := s.Insert(ctx, newBooking(2, "Existing", at(10, 0), 60)); err != nil {
						t.Fatal(err)
					}
					_, err := s.Insert(ctx, newBooking(2, "New", tt.start, tt.minutes))
					if tt.wantErr && !errors.Is(err, domain.ErrSlotUnavailable) {
						t.Errorf("error = %v, want ErrSlotUnavailable", err)
					}
					if !tt.wantErr && err != nil {
						t.Errorf("unexpected error: %v", err)
					}

					// Either the existing booking blocked the new one or the new
					// one was stored; the window overlaps exactly one booking.
					got, err := s.ListOverlapping(ctx, 2, tt.start, tt.start.Add(time.Duration(tt.minutes)*time.Minute))
					if err != nil {
						t.Fatalf("ListOverlapping: %v", err)
					}
					if len(got) != 1 {
						t.Errorf("ListOverlapping = %d bookings, want 1", len(got))
					}
				})
			}
		})
	}
}

// TestStore_RoundTrip verifies fields and timestamps survive storage.
func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			// Microsecond precision is the finest every backend stores.
			start := time.Date(2024, 3, 5, 14, 7, 9, 123456000, time.UTC)
			in := domain.New(1, "Åsa Ngata", "asa@example.com", start, 30)
			created, err := s.Insert(ctx, in)
			if err != nil {
				t.Fatalf("Insert: %v", err)
			}
			got, err := s.GetByID(ctx, created.ID)
			if err != nil {
				t.Fatalf("GetByID: %v", err)
			}
			if got.BookerName != in.BookerName || got.BookerEmail != in.BookerEmail || got.EventTypeID != in.EventTypeID {
				t.Errorf("GetByID = %+v, want fields of %+v", got, in)
			}
			if !got.StartTime.Equal(in.StartTime) || !got.EndTime.Equal(in.EndTime) {
				t.Errorf("times = [%v, %v), want [%v, %v)", got.StartTime, got.EndTime, in.StartTime, in.EndTime)
			}
			if got.UID != created.UID {
				t.Errorf("uid = %q, want %q", got.UID, created.UID)
			}
		})
	}
}

// TestStore_ListForUser verifies the join, the exclusion of other hosts and ordering.
func TestStore_ListForUser(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			for _, b := range []domain.Booking{
				newBooking(2, "Late", at(15, 0), 60),
				newBooking(1, "Early", at(8, 0), 30),
				newBooking(3, "Elsewhere", at(9, 0), 30),
			} {
				if _, err := s.Insert(ctx, b); err != nil {
					t.Fatal(err)
				}
			}

			got, err := s.ListForUser(ctx, 1)
			if err != nil {
				t.Fatalf("ListForUser: %v", err)
			}
			if len(got) != 2 {
				t.Fatalf("ListForUser = %d rows, want 2", len(got))
			}
			if got[0].BookerName != "Early" || got[0].EventTypeTitle != "30 Min Meeting" {
				t.Errorf("row 0 = %+v", got[0])
			}
			if got[1].BookerName != "Late" || got[1].EventTypeTitle != "Deep Dive" {
				t.Errorf("row 1 = %+v", got[1])
			}

			again, err := s.ListForUser(ctx, 1)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, again) {
				t.Errorf("second listing differs:\n%+v\n%+v", got, again)
			}

			byType, err := s.ListByEventTypeID(ctx, 3)
			if err != nil || len(byType) != 1 || byType[0].BookerName != "Elsewhere" {
				t.Errorf("ListByEventTypeID(3) = %+v, %v", byType, err)
			}
		})
	}
}

// TestStore_Delete verifies found and not-found deletes.
func TestStore_Delete(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			b, err := s.Insert(ctx, newBooking(1, "Alice", at(10, 0), 30))
			if err != nil {
				t.Fatal(err)
			}

			found, err := s.Delete(ctx, 999)
			if err != nil || found {
				t.Errorf("Delete(999) = %v, %v; want false, nil", found, err)
			}

			found, err = s.Delete(ctx, b.ID)
			if err != nil || !found {
				t.Fatalf("Delete(%d) = %v, %v; want true, nil", b.ID, found, err)
			}
			if _, err := s.GetByID(ctx, b.ID); !errors.Is(err, domain.ErrNotFound) {
				t.Errorf("GetByID after delete error = %v, want ErrNotFound", err)
			}
			list, _ := s.ListForUser(ctx, 1)
			if len(list) != 0 {
				t.Errorf("listing still contains %+v", list)
			}

			// The freed slot can be booked again.
			if _, err := s.Insert(ctx, newBooking(1, "Bob", at(10, 0), 30)); err != nil {
				t.Errorf("rebook freed slot: %v", err)
			}
		})
	}
}

// TestJSONStore_DeleteRaceWithForeignWriter verifies a delete that loses a
// race to another process reports the booking as already gone.
func TestJSONStore_DeleteRaceWithForeignWriter(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "db.json")
	f := jsonfile.New(path)
	s := store.NewJSONStore(f)
	b, err := s.Insert(ctx, newBooking(1, "Alice", at(10, 0), 30))
	if err != nil {
		t.Fatal(err)
	}

	other := store.NewJSONStore(jsonfile.New(path))
	raced := false
	f.BeforeCommit(func() {
		if raced {
			return
		}
		raced = true
		if ok, err := other.Delete(ctx, b.ID); err != nil || !ok {
			t.Fatalf("foreign Delete = %v, %v; want true, nil", ok, err)
		}
	})

	found, err := s.Delete(ctx, b.ID)
	if err != nil || found {
		t.Errorf("Delete after foreign delete = %v, %v; want false, nil", found, err)
	}
	if !raced {
		t.Error("foreign writer never ran")
	}
}

// TestStore_InsertUnknownEventType verifies the reference must exist.
func TestStore_InsertUnknownEventType(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			_, err := s.Insert(ctx, newBooking(42, "Alice", at(10, 0), 30))
			if !errors.Is(err, eventtype.ErrNotFound) {
				t.Errorf("Insert error = %v, want eventtype.ErrNotFound", err)
			}
		})
	}
}

// TestStore_ConcurrentSameSlot races writers for one slot; exactly one may win.
func TestStore_ConcurrentSameSlot(t *testing.T) {
	ctx := context.Background()
	for name, open := range backends() {
		t.Run(name, func(t *testing.T) {
			s := open(t).bookings
			const writers = 8
			var (
				wg   sync.WaitGroup
				mu   sync.Mutex
				wins int
			)
			for i := 0; i < writers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					if _, err := s.Insert(ctx, newBooking(1, "Racer", at(12, 0), 30)); err == nil {
						mu.Lock()
						wins++
						mu.Unlock()
					}
				}()
			}
			wg.Wait()

			if wins > 1 {
				t.Errorf("%d writers booked the same slot", wins)
			}
			list, err := s.ListByEventTypeID(ctx, 1)
			if err != nil {
				t.Fatal(err)
			}
			if len(list) > 1 {
				t.Errorf("store holds %d overlapping bookings", len(list))
			}
		})
	}
}
