package user

import (
	"context"

	"bookly/internal/adapters/storage/jsonfile"
	domain "bookly/internal/domain/user"
)

// JSONStore implements Store over the shared JSON document.
type JSONStore struct {
	file *jsonfile.File
}

// NewJSONStore creates a new UserStore backed by file.
func NewJSONStore(file *jsonfile.File) *JSONStore {
	return &JSONStore{file: file}
}

// GetByID retrieves a User by its ID.
// PRE: id > 0
// POST: Returns the user or domain.ErrNotFound
func (s *JSONStore) GetByID(ctx context.Context, id int64) (domain.User, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range doc.Users {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// GetByUsername retrieves a User by username.
func (s *JSONStore) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range doc.Users {
		if u.Username == username {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

// Count returns the number of users.
func (s *JSONStore) Count(ctx context.Context) (int, error) {
	doc, err := s.file.Read(ctx)
	if err != nil {
		return 0, err
	}
	return len(doc.Users), nil
}

// Save inserts or replaces a User by ID.
// PRE: value has been validated
// POST: The document holds exactly one user with value.ID
func (s *JSONStore) Save(ctx context.Context, value domain.User) error {
	return s.file.Update(ctx, func(doc *jsonfile.Document) error {
		for i, u := range doc.Users {
			if u.ID == value.ID {
				doc.Users[i] = value
				return nil
			}
		}
		doc.Users = append(doc.Users, value)
		return nil
	})
}
