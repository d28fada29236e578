// Package entity defines the core business entities for the domain layer.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultDisplayName is used when the identity profile carries no usable name.
const DefaultDisplayName = "User"

// User represents a ledger user, created once per identity-provider account.
type User struct {
	ID          uuid.UUID
	Email       string
	Username    string
	DisplayName string
	Phone       string
	Timezone    string
	Language    string
	Currency    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserDefaults holds the locale and currency applied to newly provisioned users.
type UserDefaults struct {
	Timezone string
	Language string
	Currency string
}

// NewUser creates a new User from an identity profile.
func NewUser(profile IdentityProfile, defaults UserDefaults) *User {
	now := time.Now().UTC()
	return &User{
		ID:          uuid.New(),
		Email:       profile.Email,
		Username:    profile.Username(),
		DisplayName: profile.DisplayName(),
		Phone:       profile.Phone,
		Timezone:    defaults.Timezone,
		Language:    defaults.Language,
		Currency:    defaults.Currency,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IdentityProfile is the verified identity handed over by the external
// identity provider when a session starts.
type IdentityProfile struct {
	Subject  string
	Email    string
	FullName string
	Name     string
	Phone    string
}

// Username derives the account username from the email local part.
func (p IdentityProfile) Username() string {
	local, _, _ := strings.Cut(p.Email, "@")
	return local
}

// DisplayName resolves the display name: full name, then name, then the
// email local part, then DefaultDisplayName.
func (p IdentityProfile) DisplayName() string {
	for _, candidate := range []string{p.FullName, p.Name, p.Username()} {
		if name := strings.TrimSpace(candidate); name != "" {
			return name
		}
	}
	return DefaultDisplayName
}
