package orchestrators

import (
	"context"
	"log/slog"

	"bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// UserStoreForSeed defines the user store methods seeding needs.
type UserStoreForSeed interface {
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, u user.User) error
}

// EventTypeInserter inserts event types.
type EventTypeInserter interface {
	Insert(ctx context.Context, e eventtype.EventType) (eventtype.EventType, error)
}

// SeedDefaultsDeps holds dependencies for SeedDefaults.
type SeedDefaultsDeps struct {
	UserStore      UserStoreForSeed
	EventTypeStore EventTypeInserter
}

// ExecuteSeedDefaults stores the default host and its 30 minute event type
// when the store has no users yet.
// PRE: Store is migrated
// POST: At least one user exists
// INVARIANT: Idempotent; a populated store is left untouched
func ExecuteSeedDefaults(ctx context.Context, deps SeedDefaultsDeps) error {
	n, err := deps.UserStore.Count(ctx)
	if err != nil {
		return storageErr(err)
	}
	if n > 0 {
		return nil
	}

	u := user.Default()
	if err := deps.UserStore.Save(ctx, u); err != nil {
		return storageErr(err)
	}
	et, err := deps.EventTypeStore.Insert(ctx, eventtype.Default(u.ID))
	if err != nil {
		return storageErr(err)
	}

	slog.Info("seed_event", "event", "defaults_seeded", "user_id", u.ID, "event_type_id", et.ID)
	return nil
}
