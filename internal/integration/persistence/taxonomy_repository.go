// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/persistence/model"
)

// taxonomyRepository implements the adapter.TaxonomyRepository interface.
// Categories and payment methods live in separate tables with identical columns.
type taxonomyRepository struct {
	db *gorm.DB
}

// NewTaxonomyRepository creates a new taxonomy repository instance.
func NewTaxonomyRepository(db *gorm.DB) adapter.TaxonomyRepository {
	return &taxonomyRepository{
		db: db,
	}
}

// table starts a fresh statement on the table holding nodes of kind.
func (r *taxonomyRepository) table(ctx context.Context, kind entity.NodeKind) (*gorm.DB, error) {
	name, ok := model.TaxonomyTable(kind)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domainerror.ErrInvalidNodeKind, kind)
	}
	return conn(ctx, r.db).Table(name).Session(&gorm.Session{}), nil
}

// FindTemplates retrieves all active template nodes of a kind.
func (r *taxonomyRepository) FindTemplates(ctx context.Context, kind entity.NodeKind) ([]*entity.TaxonomyNode, error) {
	db, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}

	var rows []model.TaxonomyNodeModel
	result := db.
		Where("is_template = ? AND is_active = ?", true, true).
		Order("sort_order ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return toTaxonomyEntities(kind, rows), nil
}

// CreateOwned bulk-inserts owned nodes and returns them as stored.
func (r *taxonomyRepository) CreateOwned(ctx context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) ([]*entity.TaxonomyNode, error) {
	if len(nodes) == 0 {
		return []*entity.TaxonomyNode{}, nil
	}

	db, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}

	rows := make([]model.TaxonomyNodeModel, len(nodes))
	for i, n := range nodes {
		rows[i] = model.TaxonomyNodeFromEntity(n)
	}

	if err := db.Create(&rows).Error; err != nil {
		return nil, translateWriteError(err)
	}

	return toTaxonomyEntities(kind, rows), nil
}

// CountOwned counts the owned nodes of a kind belonging to a group.
func (r *taxonomyRepository) CountOwned(ctx context.Context, kind entity.NodeKind, groupID uuid.UUID) (int64, error) {
	db, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}

	var count int64
	result := db.
		Where("is_template = ? AND group_id = ?", false, groupID).
		Count(&count)
	if result.Error != nil {
		return 0, result.Error
	}
	return count, nil
}

// FindOwnedByGroup retrieves the active owned nodes of a kind for a group.
func (r *taxonomyRepository) FindOwnedByGroup(ctx context.Context, kind entity.NodeKind, groupID uuid.UUID) ([]*entity.TaxonomyNode, error) {
	db, err := r.table(ctx, kind)
	if err != nil {
		return nil, err
	}

	var rows []model.TaxonomyNodeModel
	result := db.
		Where("is_template = ? AND is_active = ? AND group_id = ?", false, true, groupID).
		Order("sort_order ASC").
		Order("name ASC").
		Find(&rows)
	if result.Error != nil {
		return nil, result.Error
	}

	return toTaxonomyEntities(kind, rows), nil
}

// UpsertTemplates inserts template nodes whose code does not exist yet. Nodes
// whose parent already exists are attached to the stored parent.
func (r *taxonomyRepository) UpsertTemplates(ctx context.Context, kind entity.NodeKind, nodes []*entity.TaxonomyNode) (int, error) {
	if len(nodes) == 0 {
		return 0, nil
	}

	db, err := r.table(ctx, kind)
	if err != nil {
		return 0, err
	}

	var existing []model.TaxonomyNodeModel
	if err := db.Where("is_template = ?", true).Find(&existing).Error; err != nil {
		return 0, err
	}

	storedByCode := make(map[string]uuid.UUID, len(existing))
	for _, e := range existing {
		if e.Code != "" {
			storedByCode[e.Code] = e.ID
		}
	}

	// Input ids of nodes that are already stored, mapped to the stored ids.
	remap := make(map[uuid.UUID]uuid.UUID)
	for _, n := range nodes {
		if id, ok := storedByCode[n.Code]; ok && n.Code != "" {
			remap[n.ID] = id
		}
	}

	rows := make([]model.TaxonomyNodeModel, 0, len(nodes))
	for _, n := range nodes {
		if _, stored := remap[n.ID]; stored {
			continue
		}
		row := model.TaxonomyNodeFromEntity(n)
		row.IsTemplate = true
		row.OwnerUserID = nil
		row.GroupID = nil
		if row.ParentID != nil {
			if id, ok := remap[*row.ParentID]; ok {
				row.ParentID = &id
			}
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return 0, nil
	}

	if err := db.Create(&rows).Error; err != nil {
		return 0, translateWriteError(err)
	}
	return len(rows), nil
}

func toTaxonomyEntities(kind entity.NodeKind, rows []model.TaxonomyNodeModel) []*entity.TaxonomyNode {
	nodes := make([]*entity.TaxonomyNode, len(rows))
	for i := range rows {
		nodes[i] = rows[i].ToEntity(kind)
	}
	return nodes
}
