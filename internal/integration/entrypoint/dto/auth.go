// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"time"

	"github.com/household-ledger/backend/internal/application/usecase/provisioning"
	"github.com/household-ledger/backend/internal/domain/entity"
)

// RepairRequest represents the optional request body for a ledger repair.
type RepairRequest struct {
	GroupID string `json:"group_id,omitempty" binding:"omitempty,uuid"`
}

// SessionResponse is returned by the initialization triggers.
type SessionResponse struct {
	User            UserResponse            `json:"user"`
	Group           *GroupResponse          `json:"group,omitempty"`
	Groups          []GroupListItemResponse `json:"groups"`
	Status          string                  `json:"status"`
	Degraded        bool                    `json:"degraded"`
	RepairAvailable bool                    `json:"repair_available"`
	FailedSteps     []string                `json:"failed_steps,omitempty"`
}

// RepairResponse reports what a repair added to a ledger.
type RepairResponse struct {
	GroupID        string `json:"group_id"`
	Repaired       bool   `json:"repaired"`
	Categories     int    `json:"categories"`
	PaymentMethods int    `json:"payment_methods"`
	BudgetCreated  bool   `json:"budget_created"`
}

// UserResponse represents the user data in API responses.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	Username    string    `json:"username"`
	DisplayName string    `json:"display_name"`
	Phone       string    `json:"phone,omitempty"`
	Timezone    string    `json:"timezone"`
	Language    string    `json:"language"`
	Currency    string    `json:"currency"`
	CreatedAt   time.Time `json:"created_at"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   string `json:"details,omitempty"`
	Retryable bool   `json:"retryable,omitempty"`
}

// ToUserResponse converts a domain User entity to a UserResponse DTO.
func ToUserResponse(user *entity.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Timezone:    user.Timezone,
		Language:    user.Language,
		Currency:    user.Currency,
		CreatedAt:   user.CreatedAt,
	}
}

// ToSessionResponse converts a provisioning output to a SessionResponse DTO.
func ToSessionResponse(output *provisioning.ProvisionUserOutput) SessionResponse {
	resp := SessionResponse{
		User:            ToUserResponse(output.User),
		Groups:          ToGroupListItemResponses(output.Groups),
		Status:          string(output.Status),
		Degraded:        output.Degraded,
		RepairAvailable: output.Degraded,
	}

	if output.Group != nil {
		group := ToGroupResponse(output.Group)
		resp.Group = &group
	}

	for _, failure := range output.SeedFailures {
		resp.FailedSteps = append(resp.FailedSteps, failure.Step)
	}

	return resp
}

// ToRepairResponse converts a repair output to a RepairResponse DTO.
func ToRepairResponse(output *provisioning.RepairUserDataOutput) RepairResponse {
	return RepairResponse{
		GroupID:        output.GroupID.String(),
		Repaired:       output.Repaired(),
		Categories:     output.Categories,
		PaymentMethods: output.PaymentMethods,
		BudgetCreated:  output.BudgetCreated,
	}
}
