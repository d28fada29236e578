// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// UserRepository defines the interface for user persistence operations.
type UserRepository interface {
	// Create creates a new user in the database. It returns an error matching
	// domainerror.ErrConstraintViolation when the email is already taken.
	Create(ctx context.Context, user *entity.User) error

	// FindByID retrieves a user by their ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByEmail retrieves a user by their email address. It returns
	// domainerror.ErrUserNotFound when no row exists.
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
}
