package persistence_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
	"github.com/household-ledger/backend/internal/integration/persistence"
	"github.com/household-ledger/backend/internal/integration/persistence/persistencetest"
)

var defaults = entity.UserDefaults{Timezone: "Asia/Seoul", Language: "ko", Currency: "KRW"}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := persistence.NewUserRepository(db)

	user := entity.NewUser(entity.IdentityProfile{Email: "minji@example.com", FullName: "Kim Minji"}, defaults)
	require.NoError(t, repo.Create(ctx, user))

	t.Run("find by email", func(t *testing.T) {
		found, err := repo.FindByEmail(ctx, "minji@example.com")
		require.NoError(t, err)
		assert.Equal(t, user.ID, found.ID)
		assert.Equal(t, "minji", found.Username)
		assert.Equal(t, "Kim Minji", found.DisplayName)
		assert.Equal(t, "KRW", found.Currency)
	})

	t.Run("find by id", func(t *testing.T) {
		found, err := repo.FindByID(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.Email, found.Email)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.FindByEmail(ctx, "nobody@example.com")
		assert.ErrorIs(t, err, domainerror.ErrUserNotFound)

		_, err = repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domainerror.ErrUserNotFound)
	})

	t.Run("duplicate email is a constraint violation", func(t *testing.T) {
		dup := entity.NewUser(entity.IdentityProfile{Email: "minji@example.com"}, defaults)
		err := repo.Create(ctx, dup)
		assert.ErrorIs(t, err, domainerror.ErrConstraintViolation)
	})
}

func TestGroupRepository(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	users := persistence.NewUserRepository(db)
	repo := persistence.NewGroupRepository(db)

	user := entity.NewUser(entity.IdentityProfile{Email: "jisoo@example.com"}, defaults)
	require.NoError(t, users.Create(ctx, user))

	personal := entity.NewPersonalGroup(user)
	require.NoError(t, repo.CreateGroup(ctx, personal))
	first := entity.NewGroupMember(personal.ID, user.ID, entity.MemberRoleAdmin)
	require.NoError(t, repo.CreateMember(ctx, first))

	family := entity.NewGroup("Family", "", entity.GroupTypeFamily, uuid.New())
	require.NoError(t, repo.CreateGroup(ctx, family))
	second := entity.NewGroupMember(family.ID, user.ID, entity.MemberRoleMember)
	second.JoinedAt = first.JoinedAt.Add(time.Hour)
	require.NoError(t, repo.CreateMember(ctx, second))

	t.Run("groups ordered by membership age", func(t *testing.T) {
		groups, err := repo.FindGroupsByUserID(ctx, user.ID)
		require.NoError(t, err)
		require.Len(t, groups, 2)
		assert.Equal(t, personal.ID, groups[0].ID)
		assert.Equal(t, entity.MemberRoleAdmin, groups[0].Role)
		assert.Equal(t, entity.GroupTypePersonal, groups[0].Type)
		assert.Equal(t, family.ID, groups[1].ID)
	})

	t.Run("no groups", func(t *testing.T) {
		groups, err := repo.FindGroupsByUserID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Empty(t, groups)
	})

	t.Run("membership", func(t *testing.T) {
		ok, err := repo.IsUserMemberOfGroup(ctx, personal.ID, user.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.IsUserMemberOfGroup(ctx, personal.ID, uuid.New())
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("duplicate membership", func(t *testing.T) {
		err := repo.CreateMember(ctx, entity.NewGroupMember(personal.ID, user.ID, entity.MemberRoleMember))
		assert.ErrorIs(t, err, domainerror.ErrConstraintViolation)
	})

	t.Run("find group", func(t *testing.T) {
		found, err := repo.FindGroupByID(ctx, personal.ID)
		require.NoError(t, err)
		assert.Equal(t, "jisoo's Ledger", found.Name)

		_, err = repo.FindGroupByID(ctx, uuid.New())
		assert.ErrorIs(t, err, domainerror.ErrGroupNotFound)
	})

	t.Run("lock group", func(t *testing.T) {
		err := persistence.NewTransactor(db).WithinTransaction(ctx, func(txCtx context.Context) error {
			return repo.LockGroup(txCtx, family.ID)
		})
		require.NoError(t, err)

		assert.ErrorIs(t, repo.LockGroup(ctx, uuid.New()), domainerror.ErrGroupNotFound)
	})
}

func TestTaxonomyRepository(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := persistence.NewTaxonomyRepository(db)

	templates := persistence.DefaultTemplates()[entity.NodeKindPaymentMethod]
	inserted, err := repo.UpsertTemplates(ctx, entity.NodeKindPaymentMethod, templates)
	require.NoError(t, err)
	assert.Equal(t, len(templates), inserted)

	t.Run("upsert is idempotent", func(t *testing.T) {
		again, err := repo.UpsertTemplates(ctx, entity.NodeKindPaymentMethod, persistence.DefaultTemplates()[entity.NodeKindPaymentMethod])
		require.NoError(t, err)
		assert.Zero(t, again)
		assert.Equal(t, int64(len(templates)), persistencetest.Count(t, db, "payment_methods"))
	})

	t.Run("new child attaches to the stored parent", func(t *testing.T) {
		fresh := persistence.DefaultTemplates()[entity.NodeKindPaymentMethod]
		var cash *entity.TaxonomyNode
		for _, n := range fresh {
			if n.Code == "CASH" {
				cash = n
			}
		}
		require.NotNil(t, cash)
		coins := entity.NewTemplateNode(entity.NodeKindPaymentMethod, "Coins", "CASH_COINS", &cash.ID, "", "", 1)

		count, err := repo.UpsertTemplates(ctx, entity.NodeKindPaymentMethod, append(fresh, coins))
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		stored, err := repo.FindTemplates(ctx, entity.NodeKindPaymentMethod)
		require.NoError(t, err)
		byCode := map[string]*entity.TaxonomyNode{}
		for _, n := range stored {
			byCode[n.Code] = n
		}
		require.NotNil(t, byCode["CASH_COINS"].ParentID)
		assert.Equal(t, byCode["CASH"].ID, *byCode["CASH_COINS"].ParentID)
	})

	t.Run("templates are separated by kind", func(t *testing.T) {
		categories, err := repo.FindTemplates(ctx, entity.NodeKindCategory)
		require.NoError(t, err)
		assert.Empty(t, categories)
	})

	t.Run("owned nodes", func(t *testing.T) {
		owner, group := uuid.New(), uuid.New()
		stored, err := repo.FindTemplates(ctx, entity.NodeKindPaymentMethod)
		require.NoError(t, err)

		root := entity.NewOwnedCopy(stored[0], owner, group, nil)
		rootID := root.ID
		child := entity.NewOwnedCopy(stored[1], owner, group, &rootID)

		created, err := repo.CreateOwned(ctx, entity.NodeKindPaymentMethod, []*entity.TaxonomyNode{root})
		require.NoError(t, err)
		require.Len(t, created, 1)
		assert.Equal(t, entity.NodeKindPaymentMethod, created[0].Kind)

		_, err = repo.CreateOwned(ctx, entity.NodeKindPaymentMethod, []*entity.TaxonomyNode{child})
		require.NoError(t, err)

		count, err := repo.CountOwned(ctx, entity.NodeKindPaymentMethod, group)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)

		count, err = repo.CountOwned(ctx, entity.NodeKindCategory, group)
		require.NoError(t, err)
		assert.Zero(t, count)

		owned, err := repo.FindOwnedByGroup(ctx, entity.NodeKindPaymentMethod, group)
		require.NoError(t, err)
		require.Len(t, owned, 2)
		for _, n := range owned {
			assert.False(t, n.IsTemplate)
			assert.Equal(t, group, *n.GroupID)
		}

		afterTemplates, err := repo.FindTemplates(ctx, entity.NodeKindPaymentMethod)
		require.NoError(t, err)
		assert.Len(t, afterTemplates, len(stored))
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := repo.FindTemplates(ctx, entity.NodeKind("tag"))
		assert.ErrorIs(t, err, domainerror.ErrInvalidNodeKind)
	})
}

func TestBudgetRepository(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	repo := persistence.NewBudgetRepository(db)

	group := uuid.New()
	now := time.Date(2024, time.February, 17, 9, 30, 0, 0, time.UTC)
	budget := entity.NewMonthlyBudget(entity.DefaultBudgetName, decimal.NewFromInt(1000000), 80, uuid.New(), group, now)
	require.NoError(t, repo.Create(ctx, budget))

	count, err := repo.CountByGroup(ctx, group)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.CountByGroup(ctx, uuid.New())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestTransactor(t *testing.T) {
	ctx := context.Background()
	db := persistencetest.NewDB(t)
	users := persistence.NewUserRepository(db)
	transactor := persistence.NewTransactor(db)

	t.Run("rolls back on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			user := entity.NewUser(entity.IdentityProfile{Email: "rollback@example.com"}, defaults)
			if err := users.Create(txCtx, user); err != nil {
				return err
			}
			return boom
		})
		assert.ErrorIs(t, err, boom)

		_, err = users.FindByEmail(ctx, "rollback@example.com")
		assert.ErrorIs(t, err, domainerror.ErrUserNotFound)
	})

	t.Run("nested call joins the outer transaction", func(t *testing.T) {
		err := transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
			return transactor.WithinTransaction(txCtx, func(innerCtx context.Context) error {
				return users.Create(innerCtx, entity.NewUser(entity.IdentityProfile{Email: "nested@example.com"}, defaults))
			})
		})
		require.NoError(t, err)

		_, err = users.FindByEmail(ctx, "nested@example.com")
		assert.NoError(t, err)
	})
}
