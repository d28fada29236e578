// Package entity defines the core business entities for the domain layer.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// NodeKind identifies which taxonomy a node belongs to. Each kind has its own
// hierarchy and its own code namespace.
type NodeKind string

const (
	NodeKindCategory      NodeKind = "category"
	NodeKindPaymentMethod NodeKind = "payment_method"
)

// NodeKinds lists every taxonomy kind in the order they are seeded.
var NodeKinds = []NodeKind{NodeKindCategory, NodeKindPaymentMethod}

// IsValid reports whether k is a known taxonomy kind.
func (k NodeKind) IsValid() bool {
	return k == NodeKindCategory || k == NodeKindPaymentMethod
}

// TaxonomyNode is a category or payment method. Template nodes are shared and
// ownerless; owned nodes belong to exactly one group.
type TaxonomyNode struct {
	ID          uuid.UUID
	Kind        NodeKind
	Name        string
	Code        string
	ParentID    *uuid.UUID
	Description string
	Icon        string
	Color       string
	IsTemplate  bool
	IsActive    bool
	SortOrder   int
	OwnerUserID *uuid.UUID
	GroupID     *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsRoot reports whether the node has no parent.
func (n *TaxonomyNode) IsRoot() bool {
	return n.ParentID == nil
}

// NewTemplateNode creates a shared template node.
func NewTemplateNode(kind NodeKind, name, code string, parentID *uuid.UUID, icon, color string, sortOrder int) *TaxonomyNode {
	now := time.Now().UTC()
	return &TaxonomyNode{
		ID:         uuid.New(),
		Kind:       kind,
		Name:       name,
		Code:       code,
		ParentID:   parentID,
		Icon:       icon,
		Color:      color,
		IsTemplate: true,
		IsActive:   true,
		SortOrder:  sortOrder,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewOwnedCopy creates an owned copy of a template node for a group. The copy
// is always active and never a template.
func NewOwnedCopy(template *TaxonomyNode, ownerUserID, groupID uuid.UUID, parentID *uuid.UUID) *TaxonomyNode {
	now := time.Now().UTC()
	owner := ownerUserID
	group := groupID
	return &TaxonomyNode{
		ID:          uuid.New(),
		Kind:        template.Kind,
		Name:        template.Name,
		Code:        template.Code,
		ParentID:    parentID,
		Description: template.Description,
		Icon:        template.Icon,
		Color:       template.Color,
		IsTemplate:  false,
		IsActive:    true,
		SortOrder:   template.SortOrder,
		OwnerUserID: &owner,
		GroupID:     &group,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// TaxonomyTreeNode is a node with its children, used for presenting a group's
// owned taxonomy.
type TaxonomyTreeNode struct {
	Node     *TaxonomyNode
	Children []*TaxonomyTreeNode
}

// BuildTaxonomyTree arranges flat nodes into a forest. Nodes whose parent is
// not part of the input are returned as roots.
func BuildTaxonomyTree(nodes []*TaxonomyNode) []*TaxonomyTreeNode {
	byID := make(map[uuid.UUID]*TaxonomyTreeNode, len(nodes))
	for _, n := range nodes {
		byID[n.ID] = &TaxonomyTreeNode{Node: n}
	}

	roots := make([]*TaxonomyTreeNode, 0)
	for _, n := range nodes {
		treeNode := byID[n.ID]
		if n.ParentID != nil {
			if parent, ok := byID[*n.ParentID]; ok && parent != treeNode {
				parent.Children = append(parent.Children, treeNode)
				continue
			}
		}
		roots = append(roots, treeNode)
	}
	return roots
}
