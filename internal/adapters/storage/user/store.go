package user

import (
	"context"

	domain "bookly/internal/domain/user"
)

// Store persists User state.
type Store interface {
	GetByID(ctx context.Context, id int64) (domain.User, error)
	GetByUsername(ctx context.Context, username string) (domain.User, error)
	Count(ctx context.Context) (int, error)
	Save(ctx context.Context, value domain.User) error
}
