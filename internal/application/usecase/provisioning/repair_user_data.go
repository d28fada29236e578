package provisioning

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/household-ledger/backend/internal/application/adapter"
	"github.com/household-ledger/backend/internal/domain/entity"
	domainerror "github.com/household-ledger/backend/internal/domain/error"
)

// RepairUserDataInput represents the input for repairing a ledger. A nil
// GroupID selects the user's personal ledger.
type RepairUserDataInput struct {
	UserID  uuid.UUID
	GroupID uuid.UUID
}

// RepairUserDataOutput reports what the repair added.
type RepairUserDataOutput struct {
	GroupID        uuid.UUID
	Categories     int
	PaymentMethods int
	BudgetCreated  bool
}

// Repaired reports whether anything was added.
func (o *RepairUserDataOutput) Repaired() bool {
	return o.Categories > 0 || o.PaymentMethods > 0 || o.BudgetCreated
}

// RepairUserDataUseCase backfills default categories, payment methods and the
// default budget of a ledger that has none. Calling it again once the data is
// present changes nothing.
type RepairUserDataUseCase struct {
	userRepo     adapter.UserRepository
	groupRepo    adapter.GroupRepository
	taxonomyRepo adapter.TaxonomyRepository
	budgetRepo   adapter.BudgetRepository
	copier       TaxonomyCopier
	transactor   adapter.Transactor
	guard        adapter.ProvisioningGuard
	budgets      *budgetSeeder
	settings     Settings
}

// NewRepairUserDataUseCase creates a new RepairUserDataUseCase instance.
func NewRepairUserDataUseCase(
	userRepo adapter.UserRepository,
	groupRepo adapter.GroupRepository,
	taxonomyRepo adapter.TaxonomyRepository,
	budgetRepo adapter.BudgetRepository,
	copier TaxonomyCopier,
	transactor adapter.Transactor,
	guard adapter.ProvisioningGuard,
	settings Settings,
) *RepairUserDataUseCase {
	return &RepairUserDataUseCase{
		userRepo:     userRepo,
		groupRepo:    groupRepo,
		taxonomyRepo: taxonomyRepo,
		budgetRepo:   budgetRepo,
		copier:       copier,
		transactor:   transactor,
		guard:        guard,
		budgets:      &budgetSeeder{budgetRepo: budgetRepo, settings: settings},
		settings:     settings,
	}
}

// Execute performs the repair.
func (uc *RepairUserDataUseCase) Execute(ctx context.Context, input RepairUserDataInput) (*RepairUserDataOutput, error) {
	var user *entity.User
	err := uc.step(ctx, func(stepCtx context.Context) error {
		var err error
		user, err = uc.userRepo.FindByID(stepCtx, input.UserID)
		return err
	})
	if err != nil {
		return nil, err
	}

	groupID := input.GroupID
	if groupID == uuid.Nil {
		var groups []*entity.GroupListItem
		err := uc.step(ctx, func(stepCtx context.Context) error {
			var err error
			groups, err = uc.groupRepo.FindGroupsByUserID(stepCtx, user.ID)
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list groups: %w", err)
		}
		personal := personalGroup(groups)
		if personal == nil {
			return nil, domainerror.NewGroupError(
				domainerror.ErrCodeGroupNotFound,
				"user has no ledger to repair",
				domainerror.ErrNoPersonalGroup,
			)
		}
		groupID = personal.ID
	}

	var isMember bool
	err = uc.step(ctx, func(stepCtx context.Context) error {
		var err error
		isMember, err = uc.groupRepo.IsUserMemberOfGroup(stepCtx, groupID, user.ID)
		return err
	})
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

	release := uc.lock(ctx, repairLockPrefix+groupID.String())
	defer release()

	output := &RepairUserDataOutput{GroupID: groupID}
	var failures []error

	for _, kind := range entity.NodeKinds {
		inserted, err := uc.fillTaxonomy(ctx, kind, user.ID, groupID)
		if err != nil {
			failures = append(failures, err)
			continue
		}
		if kind == entity.NodeKindCategory {
			output.Categories = inserted
		} else {
			output.PaymentMethods = inserted
		}
	}

	created, err := uc.fillBudget(ctx, user, groupID)
	if err != nil {
		failures = append(failures, err)
	}
	output.BudgetCreated = created

	if len(failures) > 0 {
		slog.WarnContext(ctx, "Repair incomplete", "user_id", user.ID, "group_id", groupID, "failures", len(failures))
		return nil, errors.Join(failures...)
	}

	slog.InfoContext(ctx, "Repair finished",
		"user_id", user.ID,
		"group_id", groupID,
		"categories", output.Categories,
		"payment_methods", output.PaymentMethods,
		"budget_created", output.BudgetCreated,
	)

	return output, nil
}

// fillTaxonomy copies the templates of kind into the group when it owns no
// node of that kind. A populated group is left untouched without opening a
// transaction. Otherwise the count is taken again under the group row lock,
// so a repair that lost the race sees the winner's rows and inserts nothing.
func (uc *RepairUserDataUseCase) fillTaxonomy(ctx context.Context, kind entity.NodeKind, ownerUserID, groupID uuid.UUID) (int, error) {
	count, err := uc.countOwned(ctx, kind, groupID)
	if err != nil || count > 0 {
		return 0, err
	}

	inserted := 0
	err = uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.lockGroup(txCtx, groupID); err != nil {
			return domainerror.NewCopyFailedError(fmt.Sprintf("failed to lock group for %s", kind), err)
		}

		count, err := uc.countOwned(txCtx, kind, groupID)
		if err != nil || count > 0 {
			return err
		}

		copied, err := uc.copier.CopyFromTemplates(txCtx, kind, ownerUserID, groupID)
		if err != nil {
			return err
		}
		inserted = copied.Roots + copied.Children
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// fillBudget seeds the default budget when the group has none, under the
// same row lock as fillTaxonomy.
func (uc *RepairUserDataUseCase) fillBudget(ctx context.Context, user *entity.User, groupID uuid.UUID) (bool, error) {
	created := false
	err := uc.transactor.WithinTransaction(ctx, func(txCtx context.Context) error {
		if err := uc.lockGroup(txCtx, groupID); err != nil {
			return domainerror.NewSeedFailedError("failed to lock group for budget", err)
		}

		var budgets int64
		err := uc.step(txCtx, func(stepCtx context.Context) error {
			var err error
			budgets, err = uc.budgetRepo.CountByGroup(stepCtx, groupID)
			return err
		})
		if err != nil {
			return domainerror.NewSeedFailedError("failed to count budgets", err)
		}
		if budgets > 0 {
			return nil
		}

		if _, err := uc.budgets.seed(txCtx, user, groupID); err != nil {
			return err
		}
		created = true
		return nil
	})
	return created, err
}

func (uc *RepairUserDataUseCase) countOwned(ctx context.Context, kind entity.NodeKind, groupID uuid.UUID) (int64, error) {
	var count int64
	err := uc.step(ctx, func(stepCtx context.Context) error {
		var err error
		count, err = uc.taxonomyRepo.CountOwned(stepCtx, kind, groupID)
		return err
	})
	if err != nil {
		return 0, domainerror.NewCopyFailedError(fmt.Sprintf("failed to count %s nodes", kind), err)
	}
	return count, nil
}

func (uc *RepairUserDataUseCase) lockGroup(ctx context.Context, groupID uuid.UUID) error {
	return uc.step(ctx, func(stepCtx context.Context) error {
		return uc.groupRepo.LockGroup(stepCtx, groupID)
	})
}

func (uc *RepairUserDataUseCase) step(ctx context.Context, fn func(ctx context.Context) error) error {
	stepCtx, cancel := withStepTimeout(ctx, uc.settings.StepTimeout)
	defer cancel()
	return fn(stepCtx)
}

// lock serializes repairs of one group on a best-effort basis. When the guard
// stays held past the wait window, or is unavailable, the repair proceeds.
func (uc *RepairUserDataUseCase) lock(ctx context.Context, key string) func() {
	deadline := time.Now().Add(uc.settings.LockWait)
	for {
		release, acquired, err := uc.guard.Acquire(ctx, key, uc.settings.LockTTL)
		if err != nil {
			slog.WarnContext(ctx, "Repair guard unavailable", "key", key, "error", err)
			return func() {}
		}
		if acquired {
			return release
		}
		if time.Now().After(deadline) {
			slog.WarnContext(ctx, "Repair guard still held, continuing", "key", key)
			return func() {}
		}

		select {
		case <-ctx.Done():
			return func() {}
		case <-time.After(lockPollInterval):
		}
	}
}
