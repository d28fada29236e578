// Package entity defines the core business entities for the domain layer.
package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// GroupType represents the kind of ledger a group holds.
type GroupType string

const (
	GroupTypePersonal GroupType = "personal"
	GroupTypeFamily   GroupType = "family"
	GroupTypeShared   GroupType = "shared"
)

// MemberRole represents the role of a member in a group.
type MemberRole string

const (
	MemberRoleAdmin    MemberRole = "admin"
	MemberRoleMember   MemberRole = "member"
	MemberRoleReadonly MemberRole = "readonly"
)

// PersonalGroupDescription is the description given to every personal ledger.
const PersonalGroupDescription = "Personal ledger"

// Group represents a ledger container shared by one or more users.
type Group struct {
	ID          uuid.UUID
	Name        string
	Description string
	Type        GroupType
	CreatedBy   uuid.UUID
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewGroup creates a new Group entity.
func NewGroup(name, description string, groupType GroupType, createdBy uuid.UUID) *Group {
	now := time.Now().UTC()

	return &Group{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Type:        groupType,
		CreatedBy:   createdBy,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewPersonalGroup creates the personal ledger owned by a freshly provisioned user.
func NewPersonalGroup(owner *User) *Group {
	return NewGroup(
		fmt.Sprintf("%s's Ledger", owner.DisplayName),
		PersonalGroupDescription,
		GroupTypePersonal,
		owner.ID,
	)
}

// GroupMember represents a membership of a user in a group.
type GroupMember struct {
	ID       uuid.UUID
	GroupID  uuid.UUID
	UserID   uuid.UUID
	Role     MemberRole
	IsActive bool
	JoinedAt time.Time
}

// NewGroupMember creates a new GroupMember entity.
func NewGroupMember(groupID, userID uuid.UUID, role MemberRole) *GroupMember {
	return &GroupMember{
		ID:       uuid.New(),
		GroupID:  groupID,
		UserID:   userID,
		Role:     role,
		IsActive: true,
		JoinedAt: time.Now().UTC(),
	}
}

// GroupListItem represents a group the user belongs to, with the user's role.
type GroupListItem struct {
	ID        uuid.UUID
	Name      string
	Type      GroupType
	Role      MemberRole
	JoinedAt  time.Time
	CreatedAt time.Time
}
