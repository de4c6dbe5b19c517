package orchestrators

import (
	"context"
	"errors"
	"strings"
	"testing"

	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// mockUserStore implements the user store interfaces for testing.
type mockUserStore struct {
	users   map[int64]user.User
	err     error
	saveErr error
}

func newMockUserStore(users ...user.User) *mockUserStore {
	m := &mockUserStore{users: make(map[int64]user.User)}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

// GetByID implements UserLookup.
func (m *mockUserStore) GetByID(_ context.Context, id int64) (user.User, error) {
	if m.err != nil {
		return user.User{}, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}
	return u, nil
}

// Count implements UserStoreForSeed.
func (m *mockUserStore) Count(_ context.Context) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	return len(m.users), nil
}

// Save implements UserStoreForSeed.
func (m *mockUserStore) Save(_ context.Context, u user.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.users[u.ID] = u
	return nil
}

func strPtr(s string) *string { return &s }

func eventTypeDeps(types *mockEventTypeStore) CreateEventTypeDeps {
	return CreateEventTypeDeps{
		UserStore:      newMockUserStore(user.Default(), user.User{ID: 2, Username: "rua", Email: "rua@example.com"}),
		EventTypeStore: types,
		DefaultUserID:  user.DefaultID,
	}
}

// TestExecuteCreateEventType_Valid creates an event type for the default host.
func TestExecuteCreateEventType_Valid(t *testing.T) {
	types := newMockEventTypeStore(seededType)
	e, err := ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		Title:           "Deep Dive",
		Slug:            "deep-dive",
		DurationMinutes: 60,
		Description:     strPtr("  **Bring** notes  "),
	}, eventTypeDeps(types))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.ID != 2 || e.UserID != user.DefaultID {
		t.Errorf("got id=%d user=%d, want 2 and %d", e.ID, e.UserID, user.DefaultID)
	}
	if e.Description != "**Bring** notes" {
		t.Errorf("description = %q", e.Description)
	}
}

// TestExecuteCreateEventType_NilDescription normalizes to empty.
func TestExecuteCreateEventType_NilDescription(t *testing.T) {
	e, err := ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		Title: "Quick", Slug: "quick", DurationMinutes: 15,
	}, eventTypeDeps(newMockEventTypeStore()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Description != "" {
		t.Errorf("description = %q, want empty", e.Description)
	}
}

// TestExecuteCreateEventType_SlugConflict rejects a duplicate for the same
// user and accepts it for a different one.
func TestExecuteCreateEventType_SlugConflict(t *testing.T) {
	types := newMockEventTypeStore(seededType)
	deps := eventTypeDeps(types)

	_, err := ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		Title: "Another", Slug: "30-min", DurationMinutes: 30,
	}, deps)
	if !errors.Is(err, eventtype.ErrSlugConflict) {
		t.Errorf("same user error = %v, want ErrSlugConflict", err)
	}

	_, err = ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		UserID: 2, Title: "Another", Slug: "30-min", DurationMinutes: 30,
	}, deps)
	if err != nil {
		t.Errorf("different user: %v", err)
	}
}

// TestExecuteCreateEventType_StoreConflict passes the store's atomic conflict through.
func TestExecuteCreateEventType_StoreConflict(t *testing.T) {
	types := newMockEventTypeStore()
	types.insertErr = eventtype.ErrSlugConflict
	_, err := ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		Title: "Race", Slug: "race", DurationMinutes: 30,
	}, eventTypeDeps(types))
	if !errors.Is(err, eventtype.ErrSlugConflict) || errors.Is(err, ErrStorage) {
		t.Errorf("error = %v, want bare ErrSlugConflict", err)
	}
}

// TestExecuteCreateEventType_Validation covers rejected input.
func TestExecuteCreateEventType_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input CreateEventTypeInput
	}{
		{"empty title", CreateEventTypeInput{Title: "", Slug: "x", DurationMinutes: 30}},
		{"long title", CreateEventTypeInput{Title: strings.Repeat("t", 201), Slug: "x", DurationMinutes: 30}},
		{"zero duration", CreateEventTypeInput{Title: "T", Slug: "x", DurationMinutes: 0}},
		{"negative duration", CreateEventTypeInput{Title: "T", Slug: "x", DurationMinutes: -1}},
		{"too long", CreateEventTypeInput{Title: "T", Slug: "x", DurationMinutes: 1441}},
		{"uppercase slug", CreateEventTypeInput{Title: "T", Slug: "Intro", DurationMinutes: 30}},
		{"leading hyphen", CreateEventTypeInput{Title: "T", Slug: "-intro", DurationMinutes: 30}},
		{"trailing hyphen", CreateEventTypeInput{Title: "T", Slug: "intro-", DurationMinutes: 30}},
		{"empty slug", CreateEventTypeInput{Title: "T", Slug: "", DurationMinutes: 30}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			types := newMockEventTypeStore()
			_, err := ExecuteCreateEventType(context.Background(), tt.input, eventTypeDeps(types))
			if !errors.Is(err, ErrValidation) {
				t.Errorf("error = %v, want ErrValidation", err)
			}
			if len(types.types) != 0 {
				t.Error("invalid input reached the store")
			}
		})
	}
}

// TestExecuteCreateEventType_UnknownOwner returns user.ErrNotFound.
func TestExecuteCreateEventType_UnknownOwner(t *testing.T) {
	_, err := ExecuteCreateEventType(context.Background(), CreateEventTypeInput{
		UserID: 42, Title: "T", Slug: "t", DurationMinutes: 30,
	}, eventTypeDeps(newMockEventTypeStore()))
	if !errors.Is(err, user.ErrNotFound) {
		t.Errorf("error = %v, want user.ErrNotFound", err)
	}
}
