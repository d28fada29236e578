package taxonomy

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

func TestListGroupTaxonomy(t *testing.T) {
	repo := newFakeTaxonomyRepository()
	userID, groupID := uuid.New(), uuid.New()
	groups := &fakeGroupRepository{members: map[uuid.UUID][]uuid.UUID{groupID: {userID}}}

	food := newTemplate(entity.NodeKindCategory, "Food", "FOOD", nil, 1)
	groceries := newTemplate(entity.NodeKindCategory, "Groceries", "GROCERIES", food, 1)
	_, err := NewCopyTreeUseCase(repo, &fakeTransactor{repo: repo}, time.Second).Execute(context.Background(), CopyTreeInput{
		Kind:        entity.NodeKindCategory,
		Templates:   []*entity.TaxonomyNode{food, groceries},
		OwnerUserID: userID,
		GroupID:     groupID,
	})
	require.NoError(t, err)

	uc := NewListGroupTaxonomyUseCase(repo, groups)

	t.Run("member sees the tree", func(t *testing.T) {
		output, err := uc.Execute(context.Background(), ListGroupTaxonomyInput{
			Kind:    entity.NodeKindCategory,
			GroupID: groupID,
			UserID:  userID,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, output.Total)
		require.Len(t, output.Tree, 1)
		assert.Equal(t, "FOOD", output.Tree[0].Node.Code)
		require.Len(t, output.Tree[0].Children, 1)
		assert.Equal(t, "GROCERIES", output.Tree[0].Children[0].Node.Code)
	})

	t.Run("non member is rejected", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), ListGroupTaxonomyInput{
			Kind:    entity.NodeKindCategory,
			GroupID: groupID,
			UserID:  uuid.New(),
		})
		assert.ErrorIs(t, err, domainerror.ErrNotGroupMember)

		var groupErr *domainerror.GroupError
		require.True(t, errors.As(err, &groupErr))
		assert.Equal(t, domainerror.ErrCodeNotGroupMember, groupErr.Code)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), ListGroupTaxonomyInput{
			Kind:    entity.NodeKind("tag"),
			GroupID: groupID,
			UserID:  userID,
		})
		assert.ErrorIs(t, err, domainerror.ErrInvalidNodeKind)
	})

	t.Run("empty group", func(t *testing.T) {
		output, err := uc.Execute(context.Background(), ListGroupTaxonomyInput{
			Kind:    entity.NodeKindPaymentMethod,
			GroupID: groupID,
			UserID:  userID,
		})
		require.NoError(t, err)
		assert.Zero(t, output.Total)
		assert.Empty(t, output.Tree)
	})
}
