// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// BudgetModel represents the budgets table in the database.
type BudgetModel struct {
	ID             uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Name           string          `gorm:"type:varchar(100);not null"`
	Amount         decimal.Decimal `gorm:"type:decimal(15,2);not null"`
	Period         string          `gorm:"type:varchar(10);not null"`
	StartDate      time.Time       `gorm:"type:date;not null"`
	EndDate        time.Time       `gorm:"type:date;not null"`
	CategoryID     *uuid.UUID      `gorm:"type:uuid"`
	AlertThreshold int             `gorm:"not null;default:80"`
	IsActive       bool            `gorm:"default:true"`
	OwnerUserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	GroupID        uuid.UUID       `gorm:"type:uuid;not null;index"`
	CreatedAt      time.Time       `gorm:"not null"`
	UpdatedAt      time.Time       `gorm:"not null"`
}

// TableName returns the table name for the BudgetModel.
func (BudgetModel) TableName() string {
	return "budgets"
}

// ToEntity converts a BudgetModel to a domain Budget entity.
func (m *BudgetModel) ToEntity() *entity.Budget {
	return &entity.Budget{
		ID:             m.ID,
		Name:           m.Name,
		Amount:         m.Amount,
		Period:         entity.BudgetPeriod(m.Period),
		StartDate:      m.StartDate,
		EndDate:        m.EndDate,
		CategoryID:     m.CategoryID,
		AlertThreshold: m.AlertThreshold,
		IsActive:       m.IsActive,
		OwnerUserID:    m.OwnerUserID,
		GroupID:        m.GroupID,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

// BudgetFromEntity creates a BudgetModel from a domain Budget entity.
func BudgetFromEntity(budget *entity.Budget) *BudgetModel {
	return &BudgetModel{
		ID:             budget.ID,
		Name:           budget.Name,
		Amount:         budget.Amount,
		Period:         string(budget.Period),
		StartDate:      budget.StartDate,
		EndDate:        budget.EndDate,
		CategoryID:     budget.CategoryID,
		AlertThreshold: budget.AlertThreshold,
		IsActive:       budget.IsActive,
		OwnerUserID:    budget.OwnerUserID,
		GroupID:        budget.GroupID,
		CreatedAt:      budget.CreatedAt,
		UpdatedAt:      budget.UpdatedAt,
	}
}
