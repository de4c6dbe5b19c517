package eventtype

import (
	"context"
	"sort"

	"bookly/internal/adapters/storage/jsonfile"
	domain "bookly/internal/domain/eventtype"
	"bookly/internal/domain/user"
)

// JSONStore implements Store over the shared JSON document.
type JSONStore struct {
	file *jsonfile.File
}

// NewJSONStore creates a new EventTypeStore backed by file.
func NewJSONStore(file *jsonfile.File) *JSONStore {
	return &JSONStore{file: file}
}

// GetByID retrieves an EventType by its ID.
// PRE: id > 0
// POST: Returns the entity or domain.ErrNotFound
func (s *JSONStore) GetByID(ctx context.Context, id int64) (domain.EventType, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.EventType{}, err
	}
	for _, e := range doc.EventTypes {
		if e.ID == id {
			return e, nil
		}
	}
	return domain.EventType{}, domain.ErrNotFound
}

// GetByUserAndSlug retrieves the EventType a user published under slug.
func (s *JSONStore) GetByUserAndSlug(ctx context.Context, userID int64, slug string) (domain.EventType, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.EventType{}, err
	}
	if e, ok := findSlug(&doc, userID, slug); ok {
		return e, nil
	}
	return domain.EventType{}, domain.ErrNotFound
}

// FindByUsernameAndSlug resolves username to a user, then slug within that user.
// POST: domain.ErrNotFound if either lookup fails
func (s *JSONStore) FindByUsernameAndSlug(ctx context.Context, username, slug string) (domain.EventType, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.EventType{}, err
	}
	for _, u := range doc.Users {
		if u.Username != username {
			continue
		}
		if e, ok := findSlug(&doc, u.ID, slug); ok {
			return e, nil
		}
		break
	}
	return domain.EventType{}, domain.ErrNotFound
}

// ListByUserID retrieves a user's EventTypes ordered by id.
func (s *JSONStore) ListByUserID(ctx context.Context, userID int64) ([]domain.EventType, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return nil, err
	}
	results := []domain.EventType{}
	for _, e := range doc.EventTypes {
		if e.UserID == userID {
			results = append(results, e)
		}
	}
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })
	return results, nil
}

// Insert appends value with the next id.
// PRE: value has been validated
// POST: Returns the stored entity with its assigned ID
// INVARIANT: (UserID, Slug) stays unique; the check and append share one document update
func (s *JSONStore) Insert(ctx context.Context, value domain.EventType) (domain.EventType, error) {
	var stored domain.EventType
	err := s.file.Update(ctx, func(doc *jsonfile.Document) error {
		if !hasUser(doc, value.UserID) {
			return user.ErrNotFound
		}
		if _, ok := findSlug(doc, value.UserID, value.Slug); ok {
			return domain.ErrSlugConflict
		}
		stored = value
		stored.ID = doc.NextEventTypeID()
		doc.EventTypes = append(doc.EventTypes, stored)
		return nil
	})
	if err != nil {
		return domain.EventType{}, err
	}
	return stored, nil
}

func findSlug(doc *jsonfile.Document, userID int64, slug string) (domain.EventType, bool) {
	for _, e := range doc.EventTypes {
		if e.UserID == userID && e.Slug == slug {
			return e, true
		}
	}
	return domain.EventType{}, false
}

func hasUser(doc *jsonfile.Document, id int64) bool {
	for _, u := range doc.Users {
		if u.ID == id {
			return true
		}
	}
	return false
}
