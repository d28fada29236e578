// Package persistence implements repository interfaces for database operations.
package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/persistence/model"
)

// groupRepository implements the adapter.GroupRepository interface.
type groupRepository struct {
	db *gorm.DB
}

// NewGroupRepository creates a new group repository instance.
func NewGroupRepository(db *gorm.DB) adapter.GroupRepository {
	return &groupRepository{
		db: db,
	}
}

// CreateGroup creates a new group in the database.
func (r *groupRepository) CreateGroup(ctx context.Context, group *entity.Group) error {
	groupModel := model.GroupFromEntity(group)
	result := conn(ctx, r.db).Create(groupModel)
	return translateWriteError(result.Error)
}

// FindGroupByID retrieves a group by its ID.
func (r *groupRepository) FindGroupByID(ctx context.Context, id uuid.UUID) (*entity.Group, error) {
	var groupModel model.GroupModel
	result := conn(ctx, r.db).Where("id = ?", id).First(&groupModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, domainerror.ErrGroupNotFound
		}
		return nil, result.Error
	}
	return groupModel.ToEntity(), nil
}

// FindGroupsByUserID retrieves all active groups a user belongs to, oldest
// membership first.
func (r *groupRepository) FindGroupsByUserID(ctx context.Context, userID uuid.UUID) ([]*entity.GroupListItem, error) {
	db := conn(ctx, r.db)

	var memberModels []model.GroupMemberModel
	result := db.
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("joined_at ASC").
		Find(&memberModels)
	if result.Error != nil {
		return nil, result.Error
	}
	if len(memberModels) == 0 {
		return []*entity.GroupListItem{}, nil
	}

	groupIDs := make([]uuid.UUID, len(memberModels))
	for i, m := range memberModels {
		groupIDs[i] = m.GroupID
	}

	var groupModels []model.GroupModel
	if err := db.Where("id IN ? AND is_active = ?", groupIDs, true).Find(&groupModels).Error; err != nil {
		return nil, err
	}

	groupMap := make(map[uuid.UUID]model.GroupModel, len(groupModels))
	for _, g := range groupModels {
		groupMap[g.ID] = g
	}

	groups := make([]*entity.GroupListItem, 0, len(memberModels))
	for _, m := range memberModels {
		g, ok := groupMap[m.GroupID]
		if !ok {
			continue
		}
		groups = append(groups, &entity.GroupListItem{
			ID:        g.ID,
			Name:      g.Name,
			Type:      entity.GroupType(g.Type),
			Role:      entity.MemberRole(m.Role),
			JoinedAt:  m.JoinedAt,
			CreatedAt: g.CreatedAt,
		})
	}

	return groups, nil
}

// CreateMember adds a new member to a group.
func (r *groupRepository) CreateMember(ctx context.Context, member *entity.GroupMember) error {
	memberModel := model.GroupMemberFromEntity(member)
	result := conn(ctx, r.db).Create(memberModel)
	return translateWriteError(result.Error)
}

// IsUserMemberOfGroup checks if a user is an active member of a group.
func (r *groupRepository) IsUserMemberOfGroup(ctx context.Context, groupID, userID uuid.UUID) (bool, error) {
	var count int64
	result := conn(ctx, r.db).Model(&model.GroupMemberModel{}).
		Where("group_id = ? AND user_id = ? AND is_active = ?", groupID, userID, true).
		Count(&count)
	if result.Error != nil {
		return false, result.Error
	}
	return count > 0, nil
}

// LockGroup selects the group row FOR UPDATE so that writers scoped to the
// group queue behind the current transaction.
func (r *groupRepository) LockGroup(ctx context.Context, groupID uuid.UUID) error {
	var groupModel model.GroupModel
	result := conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Select("id").
		Where("id = ?", groupID).
		Take(&groupModel)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return domainerror.ErrGroupNotFound
		}
		return result.Error
	}
	return nil
}
