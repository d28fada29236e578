// Package adapter defines interfaces that will be implemented in the integration layer.
package adapter

import (
	"context"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/domain/entity"
)

// TaxonomyRepository defines persistence operations for categories and
// payment methods. Every method is scoped to a single node kind.
type TaxonomyRepository interface {
	// FindTemplates retrieves all active template nodes of a kind.
	FindTemplates(ctx context.Context, kind entity.NodeKind) ([]*entity.TaxonomyNode, error)

	// CreateOwned bulk-inserts owned nodes and returns them as stored.
	CreateOwned(ctx context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) ([]*entity.TaxonomyNode, error)

	// CountOwned counts the owned nodes of a kind belonging to a group.
	CountOwned(ctx context.Context, kind entity.NodeKind, groupID uuid.UUID) (int64, error)

	// FindOwnedByGroup retrieves the owned nodes of a kind for a group, ordered by sort order.
	FindOwnedByGroup(ctx context.Context, kind entity.NodeKind, groupID uuid.UUID) ([]*entity.TaxonomyNode, error)

	// UpsertTemplates inserts template nodes whose code does not exist yet.
	UpsertTemplates(ctx context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) (int, error)
}
