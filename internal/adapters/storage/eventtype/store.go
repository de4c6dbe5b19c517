package eventtype

import (
	"context"

	domain "bookly/internal/domain/eventtype"
)

// Store persists EventType state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.EventType, error)
	GetByUserAndSlug(ctx context.Context, userID int64, slug string) (domain.EventType, error)
	FindByUsernameAndSlug(ctx context.Context, username, slug string) (domain.EventType, error)
	ListByUserID(ctx context.Context, userID int64) ([]domain.EventType, error)
	// Insert assigns the next id and rejects a duplicate (user, slug) with
	// domain.ErrSlugConflict in the same atomic step.
	Insert(ctx context.Context, value domain.EventType) (domain.EventType, error)
}
