package projections

import (
	"context"

	domainEventType "bookly/internal/domain/eventtype"
	domainUser "bookly/internal/domain/user"
)

// GetHostPageQuery carries query parameters.
type GetHostPageQuery struct {
	UserID int64
}

// GetHostPageResult carries the query result.
type GetHostPageResult struct {
	User       domainUser.User
	EventTypes []domainEventType.EventType
}

// GetHostPageDeps holds dependencies for GetHostPage.
type GetHostPageDeps struct {
	UserStore      UserStore
	EventTypeStore EventTypeStore
}

// QueryGetHostPage loads a host and the event types they publish.
// PRE: UserID > 0
// POST: Returns user.ErrNotFound for an unknown host
func QueryGetHostPage(ctx context.Context, query GetHostPageQuery, deps GetHostPageDeps) (GetHostPageResult, error) {
	u, err := deps.UserStore.GetByID(ctx, query.UserID)
	if err != nil {
		return GetHostPageResult{}, err
	}
	types, err := deps.EventTypeStore.ListByUserID(ctx, u.ID)
	if err != nil {
		return GetHostPageResult{}, err
	}
	return GetHostPageResult{User: u, EventTypes: types}, nil
}
