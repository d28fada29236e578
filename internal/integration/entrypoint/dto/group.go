// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// GroupResponse represents a single group in API responses.
type GroupResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedBy   string    `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupListItemResponse represents a membership of the current user.
type GroupListItemResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Role      string    `json:"role"`
	JoinedAt  time.Time `json:"joined_at"`
	CreatedAt time.Time `json:"created_at"`
}

// ToGroupResponse converts a domain Group entity to a GroupResponse DTO.
func ToGroupResponse(group *entity.Group) GroupResponse {
	return GroupResponse{
		ID:          group.ID.String(),
		Name:        group.Name,
		Description: group.Description,
		Type:        string(group.Type),
		CreatedBy:   group.CreatedBy.String(),
		CreatedAt:   group.CreatedAt,
	}
}

// ToGroupListItemResponses converts memberships to DTOs.
func ToGroupListItemResponses(groups []*entity.GroupListItem) []GroupListItemResponse {
	items := make([]GroupListItemResponse, len(groups))
	for i, g := range groups {
		items[i] = GroupListItemResponse{
			ID:        g.ID.String(),
			Name:      g.Name,
			Type:      string(g.Type),
			Role:      string(g.Role),
			JoinedAt:  g.JoinedAt,
			CreatedAt: g.CreatedAt,
		}
	}
	return items
}
