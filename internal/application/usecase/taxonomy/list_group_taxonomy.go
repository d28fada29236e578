package taxonomy

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// ListGroupTaxonomyInput represents the input for listing a group's owned nodes.
type ListGroupTaxonomyInput struct {
	Kind    entity.NodeKind
	GroupID uuid.UUID
	UserID  uuid.UUID
}

// ListGroupTaxonomyOutput represents the output of listing a group's owned nodes.
type ListGroupTaxonomyOutput struct {
	Kind  entity.NodeKind
	Tree  []*entity.TaxonomyTreeNode
	Total int
}

// ListGroupTaxonomyUseCase handles listing the owned categories or payment
// methods of a group as a tree.
type ListGroupTaxonomyUseCase struct {
	taxonomyRepo adapter.TaxonomyRepository
	groupRepo    adapter.GroupRepository
}

// NewListGroupTaxonomyUseCase creates a new ListGroupTaxonomyUseCase instance.
func NewListGroupTaxonomyUseCase(taxonomyRepo adapter.TaxonomyRepository, groupRepo adapter.GroupRepository) *ListGroupTaxonomyUseCase {
	return &ListGroupTaxonomyUseCase{
		taxonomyRepo: taxonomyRepo,
		groupRepo:    groupRepo,
	}
}

// Execute performs the listing.
func (uc *ListGroupTaxonomyUseCase) Execute(ctx context.Context, input ListGroupTaxonomyInput) (*ListGroupTaxonomyOutput, error) {
	if !input.Kind.IsValid() {
		return nil, domainerror.ErrInvalidNodeKind
	}

	isMember, err := uc.groupRepo.IsUserMemberOfGroup(ctx, input.GroupID, input.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to check group membership: %w", err)
	}
	if !isMember {
		return nil, domainerror.NewGroupError(
			domainerror.ErrCodeNotGroupMember,
			"user is not a member of this group",
			domainerror.ErrNotGroupMember,
		)
	}

	nodes, err := uc.taxonomyRepo.FindOwnedByGroup(ctx, input.Kind, input.GroupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s nodes: %w", input.Kind, err)
	}

	return &ListGroupTaxonomyOutput{
		Kind:  input.Kind,
		Tree:  entity.BuildTaxonomyTree(nodes),
		Total: len(nodes),
	}, nil
}
