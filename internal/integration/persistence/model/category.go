// Package model defines database models for persistence layer.
package model

import (
	"time"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// TaxonomyNodeModel holds the columns shared by the categories and
// payment_methods tables. Queries select the table explicitly.
type TaxonomyNodeModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey"`
	Name        string     `gorm:"type:varchar(100);not null"`
	Code        string     `gorm:"type:varchar(50);index"`
	ParentID    *uuid.UUID `gorm:"type:uuid;index"`
	Description string     `gorm:"type:varchar(255)"`
	Icon        string     `gorm:"type:varchar(50)"`
	Color       string     `gorm:"type:varchar(7)"`
	IsTemplate  bool       `gorm:"not null;default:false;index"`
	IsActive    bool       `gorm:"not null;default:true"`
	SortOrder   int        `gorm:"not null;default:0"`
	OwnerUserID *uuid.UUID `gorm:"type:uuid;index"`
	GroupID     *uuid.UUID `gorm:"type:uuid;index"`
	CreatedAt   time.Time  `gorm:"not null"`
	UpdatedAt   time.Time  `gorm:"not null"`
}

// CategoryModel represents the categories table in the database.
type CategoryModel struct {
	TaxonomyNodeModel
}

// TableName returns the table name for the CategoryModel.
func (CategoryModel) TableName() string {
	return "categories"
}

// PaymentMethodModel represents the payment_methods table in the database.
type PaymentMethodModel struct {
	TaxonomyNodeModel
}

// TableName returns the table name for the PaymentMethodModel.
func (PaymentMethodModel) TableName() string {
	return "payment_methods"
}

// TaxonomyTable returns the table holding nodes of the given kind.
func TaxonomyTable(kind entity.NodeKind) (string, bool) {
	switch kind {
	case entity.NodeKindCategory:
		return CategoryModel{}.TableName(), true
	case entity.NodeKindPaymentMethod:
		return PaymentMethodModel{}.TableName(), true
	default:
		return "", false
	}
}

// ToEntity converts a TaxonomyNodeModel to a domain TaxonomyNode entity.
func (m *TaxonomyNodeModel) ToEntity(kind entity.NodeKind) *entity.TaxonomyNode {
	return &entity.TaxonomyNode{
		ID:          m.ID,
		Kind:        kind,
		Name:        m.Name,
		Code:        m.Code,
		ParentID:    m.ParentID,
		Description: m.Description,
		Icon:        m.Icon,
		Color:       m.Color,
		IsTemplate:  m.IsTemplate,
		IsActive:    m.IsActive,
		SortOrder:   m.SortOrder,
		OwnerUserID: m.OwnerUserID,
		GroupID:     m.GroupID,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// TaxonomyNodeFromEntity creates a TaxonomyNodeModel from a domain TaxonomyNode entity.
func TaxonomyNodeFromEntity(node *entity.TaxonomyNode) TaxonomyNodeModel {
	return TaxonomyNodeModel{
		ID:          node.ID,
		Name:        node.Name,
		Code:        node.Code,
		ParentID:    node.ParentID,
		Description: node.Description,
		Icon:        node.Icon,
		Color:       node.Color,
		IsTemplate:  node.IsTemplate,
		IsActive:    node.IsActive,
		SortOrder:   node.SortOrder,
		OwnerUserID: node.OwnerUserID,
		GroupID:     node.GroupID,
		CreatedAt:   node.CreatedAt,
		UpdatedAt:   node.UpdatedAt,
	}
}
