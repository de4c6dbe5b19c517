package user

import (
	"errors"
	"strings"
)

// Domain errors
var (
	ErrNotFound      = errors.New("user not found")
	ErrEmptyUsername = errors.New("username cannot be empty")
	ErrEmptyEmail    = errors.New("email cannot be empty")
)

// Default host seeded into an empty store.
const (
	DefaultID       int64 = 1
	DefaultUsername       = "kavya"
	DefaultEmail          = "kavya@example.com"
)

// User is a host who publishes event types. Users are created out-of-band and
// never change once stored.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Default returns the seed host.
func Default() User {
	return User{ID: DefaultID, Username: DefaultUsername, Email: DefaultEmail}
}

// Validate checks if the User has valid data.
// PRE: User struct is populated
// POST: Returns nil if valid, error otherwise
func (u *User) Validate() error {
	if strings.TrimSpace(u.Username) == "" {
		return ErrEmptyUsername
	}
	if strings.TrimSpace(u.Email) == "" {
		return ErrEmptyEmail
	}
	return nil
}
