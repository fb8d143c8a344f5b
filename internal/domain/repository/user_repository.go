// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"evault/internal/domain/entity"
)

// ErrUserNotFound is a domain-specific error returned when a user is not found.
var ErrUserNotFound = errors.New("user not found")

// UserRepository defines the standard operations for user persistence.
// The application layer will depend on this interface, not the concrete implementation.
type UserRepository interface {
	// FindByID retrieves a single user by their GitHub numeric id.
	FindByID(ctx context.Context, id int64) (*entity.User, error)

	// Upsert creates the user row on first login and refreshes login, name
	// and email on subsequent logins.
	Upsert(ctx context.Context, user *entity.User) error
}
