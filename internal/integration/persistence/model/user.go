// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// UserModel represents the user table in the database.
type UserModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	Email       string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username    string    `gorm:"type:varchar(100);not null"`
	DisplayName string    `gorm:"type:varchar(100);not null"`
	Phone       string    `gorm:"type:varchar(30)"`
	Timezone    string    `gorm:"type:varchar(50);default:'Asia/Seoul'"`
	Language    string    `gorm:"type:varchar(10);default:'ko'"`
	Currency    string    `gorm:"type:varchar(3);default:'KRW'"`
	IsActive    bool      `gorm:"default:true"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
}

// TableName returns the table name for the UserModel.
func (UserModel) TableName() string {
	return "users"
}

// ToEntity converts a UserModel to a domain User entity.
func (m *UserModel) ToEntity() *entity.User {
	return &entity.User{
		ID:          m.ID,
		Email:       m.Email,
		Username:    m.Username,
		DisplayName: m.DisplayName,
		Phone:       m.Phone,
		Timezone:    m.Timezone,
		Language:    m.Language,
		Currency:    m.Currency,
		IsActive:    m.IsActive,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromEntity creates a UserModel from a domain User entity.
func FromEntity(user *entity.User) *UserModel {
	return &UserModel{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		DisplayName: user.DisplayName,
		Phone:       user.Phone,
		Timezone:    user.Timezone,
		Language:    user.Language,
		Currency:    user.Currency,
		IsActive:    user.IsActive,
		CreatedAt:   user.CreatedAt,
		UpdatedAt:   user.UpdatedAt,
	}
}
