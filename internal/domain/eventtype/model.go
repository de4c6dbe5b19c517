package eventtype

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Domain errors
var (
	ErrNotFound        = errors.New("event type not found")
	ErrSlugConflict    = errors.New("an event type with this slug already exists")
	ErrEmptyTitle      = errors.New("title cannot be empty")
	ErrInvalidSlug     = errors.New("slug may only contain lowercase letters, digits and inner hyphens")
	ErrInvalidDuration = errors.New("duration must be a positive number of minutes")
	ErrMissingOwner    = errors.New("event type must belong to a user")
)

// Max length constants.
const (
	MaxTitleLength       = 200
	MaxSlugLength        = 100
	MaxDescriptionLength = 2000
	MaxDurationMinutes   = 24 * 60
)

// Seed event type for the default host.
const (
	DefaultTitle       = "30 Min Meeting"
	DefaultSlug        = "30-min"
	DefaultDuration    = 30
	DefaultDescription = "Intro"
)

var (
	slugPattern     = regexp.MustCompile(`^[a-z0-9](?:[a-z0-9-]*[a-z0-9])?$`)
	nonSlugCharRuns = regexp.MustCompile(`[^a-z0-9]+`)
)

// EventType is a reusable meeting template published by a host.
type EventType struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Duration    int    `json:"duration"` // minutes
	Description string `json:"description"`
	UserID      int64  `json:"userId"`
}

// Default returns the seed event type owned by userID.
func Default(userID int64) EventType {
	return EventType{
		ID:          1,
		Title:       DefaultTitle,
		Slug:        DefaultSlug,
		Duration:    DefaultDuration,
		Description: DefaultDescription,
		UserID:      userID,
	}
}

// Validate checks if the EventType has valid data.
// PRE: EventType struct is populated
// POST: Returns nil if valid, error otherwise
func (e *EventType) Validate() error {
	if strings.TrimSpace(e.Title) == "" {
		return ErrEmptyTitle
	}
	if utf8.RuneCountInString(e.Title) > MaxTitleLength {
		return fmt.Errorf("title cannot exceed %d characters", MaxTitleLength)
	}
	if err := ValidateSlug(e.Slug); err != nil {
		return err
	}
	if e.Duration <= 0 {
		return ErrInvalidDuration
	}
	if e.Duration > MaxDurationMinutes {
		return fmt.Errorf("duration cannot exceed %d minutes", MaxDurationMinutes)
	}
	if utf8.RuneCountInString(e.Description) > MaxDescriptionLength {
		return fmt.Errorf("description cannot exceed %d characters", MaxDescriptionLength)
	}
	if e.UserID <= 0 {
		return ErrMissingOwner
	}
	return nil
}

// ValidateSlug reports whether slug is lowercase alphanumerics and hyphens,
// with no hyphen at either end.
func ValidateSlug(slug string) error {
	if len(slug) > MaxSlugLength {
		return fmt.Errorf("slug cannot exceed %d characters", MaxSlugLength)
	}
	if !slugPattern.MatchString(slug) {
		return ErrInvalidSlug
	}
	return nil
}

// GenerateSlug derives a slug from a title: lower-cased, every run of
// non-alphanumerics collapsed to one hyphen, edge hyphens trimmed.
// The result may be empty when the title has no usable characters.
func GenerateSlug(title string) string {
	s := nonSlugCharRuns.ReplaceAllString(strings.ToLower(title), "-")
	return strings.Trim(s, "-")
}
