// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// GroupRepository defines the interface for group persistence operations.
type GroupRepository interface {
	// CreateGroup creates a new group in the database.
	CreateGroup(ctx context.Context, group *entity.Group) error

	// FindGroupByID retrieves a group by its ID.
	FindGroupByID(ctx context.Context, id uuid.UUID) (*entity.Group, error)

	// FindGroupsByUserID retrieves all groups a user belongs to, oldest membership first.
	FindGroupsByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.GroupListItem, error)

	// CreateMember adds a new member to a group.
	CreateMember(ctx context.Context, member *entity.GroupMember) error

	// IsUserMemberOfGroup checks if a user is an active member of a group.
	IsUserMemberOfGroup(ctx context.Context, groupID, userID uuid.UUID) (bool, error)

	// LockGroup takes a row lock on the group for the rest of the transaction
	// carried by ctx. Outside a transaction the lock is released immediately.
	LockGroup(ctx context.Context, groupID uuid.UUID) error
}
