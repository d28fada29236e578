// Package dto defines data transfer objects for API requests and responses.
package dto

import (
	"github.com/household-ledger/backend/internal/application/usecase/taxonomy"
	"github.com/household-ledger/backend/internal/domain/entity"
)

// TaxonomyNodeResponse represents a category or payment method with its children.
type TaxonomyNodeResponse struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Code        string                 `json:"code"`
	ParentID    *string                `json:"parent_id"`
	Description string                 `json:"description,omitempty"`
	Icon        string                 `json:"icon,omitempty"`
	Color       string                 `json:"color,omitempty"`
	SortOrder   int                    `json:"sort_order"`
	Children    []TaxonomyNodeResponse `json:"children"`
}

// TaxonomyTreeResponse represents the owned taxonomy of a group.
type TaxonomyTreeResponse struct {
	Kind  string                 `json:"kind"`
	Total int                    `json:"total"`
	Items []TaxonomyNodeResponse `json:"items"`
}

// ToTaxonomyTreeResponse converts a listing output to a TaxonomyTreeResponse DTO.
func ToTaxonomyTreeResponse(output *taxonomy.ListGroupTaxonomyOutput) TaxonomyTreeResponse {
	return TaxonomyTreeResponse{
		Kind:  string(output.Kind),
		Total: output.Total,
		Items: toTaxonomyNodeResponses(output.Tree),
	}
}

func toTaxonomyNodeResponses(tree []*entity.TaxonomyTreeNode) []TaxonomyNodeResponse {
	items := make([]TaxonomyNodeResponse, len(tree))
	for i, t := range tree {
		var parentID *string
		if t.Node.ParentID != nil {
			id := t.Node.ParentID.String()
			parentID = &id
		}

		items[i] = TaxonomyNodeResponse{
			ID:          t.Node.ID.String(),
			Name:        t.Node.Name,
			Code:        t.Node.Code,
			ParentID:    parentID,
			Description: t.Node.Description,
			Icon:        t.Node.Icon,
			Color:       t.Node.Color,
			SortOrder:   t.Node.SortOrder,
			Children:    toTaxonomyNodeResponses(t.Children),
		}
	}
	return items
}
