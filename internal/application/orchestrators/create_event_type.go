package orchestrators

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// EventTypeStoreForOrchestrator defines the event type store methods orchestrators need.
type EventTypeStoreForOrchestrator interface {
	GetByUserAndSlug(ctx context.Context, userID int64, slug string) (eventtype.EventType, error)
	Insert(ctx context.Context, e eventtype.EventType) (eventtype.EventType, error)
}

// UserLookup resolves a user by id.
type UserLookup interface {
	GetByID(ctx context.Context, id int64) (user.User, error)
}

// CreateEventTypeInput carries input for the create event type orchestrator.
type CreateEventTypeInput struct {
	UserID          int64 // 0 means DefaultUserID
	Title           string
	Slug            string
	DurationMinutes int
	Description     *string
}

// CreateEventTypeDeps holds dependencies for CreateEventType.
type CreateEventTypeDeps struct {
	UserStore      UserLookup
	EventTypeStore EventTypeStoreForOrchestrator
	DefaultUserID  int64
}

// ExecuteCreateEventType publishes a new event type for a host.
// PRE: Title non-empty, DurationMinutes in 1..1440, Slug syntactically valid
// POST: Event type persisted with ID assigned and Description normalized to ""
// INVARIANT: (UserID, Slug) is unique
func ExecuteCreateEventType(ctx context.Context, input CreateEventTypeInput, deps CreateEventTypeDeps) (eventtype.EventType, error) {
	ownerID := input.UserID
	if ownerID == 0 {
		ownerID = deps.DefaultUserID
	}
	if ownerID == 0 {
		ownerID = user.DefaultID
	}

	e := eventtype.EventType{
		Title:    strings.TrimSpace(input.Title),
		Slug:     strings.TrimSpace(input.Slug),
		Duration: input.DurationMinutes,
		UserID:   ownerID,
	}
	if input.Description != nil {
		e.Description = strings.TrimSpace(*input.Description)
	}
	if err := e.Validate(); err != nil {
		return eventtype.EventType{}, invalid(err)
	}

	if _, err := deps.UserStore.GetByID(ctx, ownerID); err != nil {
		return eventtype.EventType{}, storageErr(err)
	}

	_, err := deps.EventTypeStore.GetByUserAndSlug(ctx, ownerID, e.Slug)
	switch {
	case err == nil:
		return eventtype.EventType{}, eventtype.ErrSlugConflict
	case !errors.Is(err, eventtype.ErrNotFound):
		return eventtype.EventType{}, storageErr(err)
	}

	created, err := deps.EventTypeStore.Insert(ctx, e)
	if err != nil {
		return eventtype.EventType{}, storageErr(err)
	}

	slog.Info("event_type_event", "event", "event_type_created", "event_type_id", created.ID,
		"user_id", ownerID, "slug", created.Slug)
	return created, nil
}
