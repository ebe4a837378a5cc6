// Package userdir defines the persistent user directory consumed by the
// session edge. The event core never touches it; it only stores and
// retrieves opaque user profiles.
package userdir

import (
	"context"
	"time"
)

// User is one stored profile.
type User struct {
	ID        string
	Username  string
	CreatedAt time.Time
}

// Store persists user profiles.
type Store interface {
	// CreateUser stores a new profile and returns it with a generated ID.
	CreateUser(ctx context.Context, username string) (User, error)
	// GetUser retrieves a profile by ID.
	GetUser(ctx context.Context, id string) (User, error)
	Close() error
}
